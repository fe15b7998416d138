package search

import (
	"fmt"

	"go.uber.org/zap"

	"chatsearch/internal/backend"
	"chatsearch/internal/domain"
)

// dispatchHooks connect the dispatcher back to the session owner
type dispatchHooks struct {
	active  func() *session
	applied func(s *session, req pageRequest, out pageOutcome)
	counted func(sessionID uint64, n int)
}

// Dispatcher turns session parameters into backend queries and routes the
// answers back onto the owner executor, dropping answers from old generations.
type Dispatcher struct {
	backend  backend.Backend
	exec     Executor
	spawn    func(func())
	pageSize int
	logger   *zap.Logger
	hooks    dispatchHooks
}

func newDispatcher(b backend.Backend, exec Executor, spawn func(func()), pageSize int, logger *zap.Logger) *Dispatcher {
	return &Dispatcher{
		backend:  b,
		exec:     exec,
		spawn:    spawn,
		pageSize: pageSize,
		logger:   logger,
	}
}

// Issue sends req for s. At most one request per session is in flight.
func (d *Dispatcher) Issue(s *session, req pageRequest) error {
	if s.state == domain.StateLoading {
		return ErrBusy
	}
	s.state = domain.StateLoading

	ctx := s.ctx
	p := s.params

	switch p.Variant {
	case domain.VariantRestricted:
		q := backend.RestrictedQuery{
			ChatID: p.ChatID,
			Query:  p.Query,
			Author: p.Author,
			Kind:   p.Kind,
			Token:  req.token,
			Limit:  d.pageSize,
		}
		d.spawn(func() {
			page, err := d.backend.SearchRestricted(ctx, q)
			res := pageResult{messages: page.Messages, nextToken: page.NextToken, err: wrapBackend(err)}
			d.exec.Post(func() { d.complete(req, res) })
		})
		if req.first {
			d.requestCount(s, q)
		}
	default:
		q := backend.StandardQuery{
			ChatID:          p.ChatID,
			ThreadID:        p.ThreadID,
			Query:           p.Query,
			Author:          p.Author,
			Kind:            p.Kind,
			BeforeMessageID: req.beforeID,
			Limit:           d.pageSize,
		}
		d.spawn(func() {
			page, err := d.backend.SearchStandard(ctx, q)
			res := pageResult{messages: page.Messages, totalCount: page.TotalCount, err: wrapBackend(err)}
			d.exec.Post(func() { d.complete(req, res) })
		})
	}

	d.logger.Debug("page requested",
		zap.Uint64("session", s.id),
		zap.Stringer("variant", p.Variant),
		zap.Stringer("reason", req.reason),
		zap.Int64("before", req.beforeID),
		zap.Bool("first", req.first))
	return nil
}

// requestCount asks a counting backend to size a restricted result set
func (d *Dispatcher) requestCount(s *session, q backend.RestrictedQuery) {
	counter, ok := d.backend.(backend.Counter)
	if !ok {
		return
	}
	id, ctx := s.id, s.ctx
	q.Token = ""
	d.spawn(func() {
		n, err := counter.CountRestricted(ctx, q)
		if err != nil {
			d.logger.Debug("restricted count unavailable", zap.Uint64("session", id), zap.Error(err))
			return
		}
		d.exec.Post(func() { d.hooks.counted(id, n) })
	})
}

// complete runs on the owner executor
func (d *Dispatcher) complete(req pageRequest, res pageResult) {
	s := d.hooks.active()
	if s == nil || s.id != req.sessionID {
		d.logger.Debug("stale page discarded", zap.Uint64("session", req.sessionID))
		return
	}
	out := d.apply(s, req, res)
	d.hooks.applied(s, req, out)
}

// apply folds a page into the session. It never leaves the session loading.
func (d *Dispatcher) apply(s *session, req pageRequest, res pageResult) pageOutcome {
	if res.err != nil {
		d.logger.Warn("search failed", zap.Uint64("session", s.id), zap.Error(res.err))
		if req.first {
			d.markNoResults(s)
			return pageOutcome{kind: outcomeFailed, err: res.err}
		}
		changed := d.markExhausted(s)
		return pageOutcome{kind: outcomeFailed, totalChanged: changed, err: res.err}
	}

	if len(res.messages) == 0 {
		if req.first {
			d.markNoResults(s)
			return pageOutcome{kind: outcomeNoResults}
		}
		changed := d.markExhausted(s)
		return pageOutcome{kind: outcomeExhausted, totalChanged: changed}
	}

	firstNew := s.store.Len()
	s.store.Append(res.messages...)
	loaded := s.store.Len()
	previous := s.totalCount

	switch s.params.Variant {
	case domain.VariantRestricted:
		s.nextToken = res.nextToken
		s.hasMore = res.nextToken != ""
		s.totalCount = max(s.totalCount, loaded)
	default:
		s.totalCount = max(res.totalCount, loaded)
		s.hasMore = loaded < s.totalCount
	}
	s.state = domain.StateReady

	return pageOutcome{
		kind:         outcomeLoaded,
		firstNew:     firstNew,
		totalChanged: s.totalCount != previous,
	}
}

func (d *Dispatcher) markNoResults(s *session) {
	s.state = domain.StateNoResults
	s.hasMore = false
	s.totalCount = 0
	s.cursor = -1
}

// markExhausted settles the total on what was actually loaded
func (d *Dispatcher) markExhausted(s *session) bool {
	s.state = domain.StateExhausted
	s.hasMore = false
	if s.totalCount == s.store.Len() {
		return false
	}
	s.totalCount = s.store.Len()
	return true
}

func wrapBackend(err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrBackend, err)
}
