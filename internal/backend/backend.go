// Package backend defines the search endpoints a search session pages
// through, plus a local SQLite implementation and a caching decorator.
package backend

import (
	"context"
	"errors"

	"chatsearch/internal/domain"
)

var (
	// ErrInvalidToken is returned when a continuation token was not produced by this backend
	ErrInvalidToken = errors.New("invalid continuation token")
	// ErrClosed is returned by a backend used after Close
	ErrClosed = errors.New("backend closed")
)

// StandardQuery pages backwards from BeforeMessageID (0 starts at the newest match)
type StandardQuery struct {
	ChatID          int64
	ThreadID        int64
	Query           string
	Author          string
	Kind            domain.ContentKind
	BeforeMessageID int64
	Limit           int
}

// StandardPage is one page of a standard search plus the size of the whole result set
type StandardPage struct {
	Messages   []domain.Message
	TotalCount int
}

// RestrictedQuery pages with an opaque continuation token ("" starts at the newest match)
type RestrictedQuery struct {
	ChatID int64
	Query  string
	Author string
	Kind   domain.ContentKind
	Token  string
	Limit  int
}

// RestrictedPage is one page of a restricted search. NextToken is empty when no
// further page exists.
type RestrictedPage struct {
	Messages  []domain.Message
	NextToken string
}

// Backend is the remote (or local) index a search session queries
type Backend interface {
	SearchStandard(ctx context.Context, q StandardQuery) (StandardPage, error)
	SearchRestricted(ctx context.Context, q RestrictedQuery) (RestrictedPage, error)
}

// Counter is implemented by backends that can size a restricted result set
// without paging through it
type Counter interface {
	CountRestricted(ctx context.Context, q RestrictedQuery) (int, error)
}
