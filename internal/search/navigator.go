package search

import (
	"go.uber.org/zap"

	"chatsearch/internal/domain"
)

// Navigator moves the cursor over the loaded results, asks for more pages
// when the cursor runs off the loaded edge, and chases locate targets.
type Navigator struct {
	dispatcher     *Dispatcher
	delegate       Delegate
	locateMaxPages int
	logger         *zap.Logger
}

func newNavigator(d *Dispatcher, delegate Delegate, locateMaxPages int, logger *zap.Logger) *Navigator {
	return &Navigator{
		dispatcher:     d,
		delegate:       delegate,
		locateMaxPages: locateMaxPages,
		logger:         logger,
	}
}

// MoveTo steps the cursor one position in dir
func (n *Navigator) MoveTo(s *session, dir domain.Direction) error {
	if s == nil {
		return ErrNoSession
	}
	switch s.state {
	case domain.StateEmpty:
		return ErrNoSession
	case domain.StateDebouncing, domain.StateLoading:
		// bounds are about to change
		return ErrBusy
	}

	candidate := s.cursor + dir.Step()

	if candidate < 0 {
		n.delegate.OnRequestOlderPage()
		return nil
	}

	if m, ok := s.store.At(candidate); ok {
		s.cursor = candidate
		n.delegate.OnResult(candidate, s.totalCount, m.ID)
		return nil
	}

	// Past the loaded edge: either at the reported end or the backend
	// under-delivered. Both mean "load more" if anything is left.
	if !s.canLoadMore() {
		n.delegate.OnRequestNewerPage()
		return nil
	}
	n.delegate.OnAwaitNext(dir)
	return n.dispatcher.Issue(s, s.nextPage(reasonNavigate, dir))
}

// Locate makes target the session's pending locate target and jumps to it
// as soon as it is loaded, paging forward as needed
func (n *Navigator) Locate(s *session, target domain.MessageID) error {
	if s == nil || s.state == domain.StateEmpty {
		return ErrNoSession
	}
	if s.state == domain.StateNoResults {
		return nil
	}
	s.locate = target
	s.locatePages = 0
	switch s.state {
	case domain.StateDebouncing, domain.StateLoading:
		// checked when the pending page lands
		return nil
	}
	n.chase(s)
	return nil
}

// pageApplied reacts to a page that was folded into the active session
func (n *Navigator) pageApplied(s *session, req pageRequest, out pageOutcome) {
	switch out.kind {
	case outcomeFailed:
		n.delegate.OnSearchError(out.err)
		if req.first {
			n.showNoResults(s)
			return
		}
		if out.totalChanged {
			n.delegate.OnTotalCountChanged(s.cursor, s.totalCount)
		}
		n.settle(s, req)

	case outcomeNoResults:
		n.showNoResults(s)

	case outcomeExhausted:
		if out.totalChanged {
			n.delegate.OnTotalCountChanged(s.cursor, s.totalCount)
		}
		n.settle(s, req)

	case outcomeLoaded:
		if !s.locate.IsZero() {
			n.chase(s)
			return
		}
		if req.first {
			n.show(s, 0)
			return
		}
		if out.totalChanged {
			n.delegate.OnTotalCountChanged(s.cursor, s.totalCount)
		}
		n.show(s, out.firstNew)
	}
}

// settle finishes a follow-up page that brought nothing new
func (n *Navigator) settle(s *session, req pageRequest) {
	if !s.locate.IsZero() {
		n.chase(s)
		return
	}
	if req.reason == reasonNavigate {
		// clear the "awaiting next" state on the current position
		n.show(s, s.cursor)
	}
}

// chase looks for the locate target in what is loaded and pages forward
// until it shows up, the results run out, or the page budget is spent
func (n *Navigator) chase(s *session) {
	target := s.locate
	if idx := s.store.IndexOf(target); idx != NotFound {
		s.locate = domain.MessageID{}
		s.locatePages = 0
		s.cursor = idx
		n.delegate.OnResult(idx, s.totalCount, target)
		return
	}

	if s.canLoadMore() && s.locatePages < n.locateMaxPages {
		s.locatePages++
		if err := n.dispatcher.Issue(s, s.nextPage(reasonLocate, domain.DirectionNext)); err == nil {
			return
		}
	}

	n.logger.Debug("locate target dropped",
		zap.Uint64("session", s.id),
		zap.Stringer("target", target),
		zap.Int("pages", s.locatePages))
	s.locate = domain.MessageID{}
	s.locatePages = 0
	n.show(s, max(s.cursor, 0))
}

func (n *Navigator) show(s *session, idx int) {
	m, ok := s.store.At(idx)
	if !ok {
		return
	}
	s.cursor = idx
	n.delegate.OnResult(idx, s.totalCount, m.ID)
}

func (n *Navigator) showNoResults(s *session) {
	s.locate = domain.MessageID{}
	s.locatePages = 0
	n.delegate.OnResult(domain.IndexNoResults, 0, domain.MessageID{})
}
