package search

import (
	"context"

	"chatsearch/internal/domain"
)

// session is one search generation. Its parameters are fixed at creation;
// only paging progress and the cursor change until the next reset.
type session struct {
	id     uint64
	params Params

	state      domain.State
	cursor     int
	totalCount int
	store      *ResultStore

	locate      domain.MessageID
	locatePages int

	// hasMore is the backend's own view: loaded < total for standard
	// sessions, a non-empty continuation token for restricted ones
	hasMore   bool
	nextToken string

	ctx    context.Context
	cancel context.CancelFunc
}

func newSession(id uint64, params Params, store *ResultStore) *session {
	ctx, cancel := context.WithCancel(context.Background())
	return &session{
		id:     id,
		params: params,
		state:  domain.StateEmpty,
		cursor: -1,
		store:  store,
		locate: params.Locate,
		ctx:    ctx,
		cancel: cancel,
	}
}

// canLoadMore reports whether another page may exist
func (s *session) canLoadMore() bool {
	switch s.state {
	case domain.StateExhausted, domain.StateNoResults, domain.StateEmpty:
		return false
	}
	return s.hasMore
}

// nextPage builds the request continuing after the last loaded message
func (s *session) nextPage(reason requestReason, dir domain.Direction) pageRequest {
	req := pageRequest{
		sessionID: s.id,
		reason:    reason,
		direction: dir,
	}
	switch s.params.Variant {
	case domain.VariantRestricted:
		req.token = s.nextToken
	default:
		if last, ok := s.store.Last(); ok {
			req.beforeID = last.ID.MessageID
		}
	}
	return req
}

func (s *session) current() domain.Message {
	m, _ := s.store.At(s.cursor)
	return m
}

func (s *session) snapshot() Snapshot {
	return Snapshot{
		SessionID:   s.id,
		ChatID:      s.params.ChatID,
		Query:       s.params.Query,
		Variant:     s.params.Variant,
		State:       s.state,
		Cursor:      s.cursor,
		TotalCount:  s.totalCount,
		Loaded:      s.store.Len(),
		CanLoadMore: s.canLoadMore(),
		Locating:    !s.locate.IsZero(),
		Current:     s.current(),
	}
}
