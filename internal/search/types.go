package search

import (
	"errors"

	"chatsearch/internal/domain"
)

var (
	// ErrBusy is returned when a page request is made while one is in flight
	ErrBusy = errors.New("search: page request already in flight")
	// ErrNoSession is returned by navigation when no search is active
	ErrNoSession = errors.New("search: no active search")
	// ErrBackend wraps failures reported by the backend
	ErrBackend = errors.New("search: backend error")
)

// Params describes one search invocation
type Params struct {
	ChatID   int64
	ThreadID int64
	Query    string
	Author   string             // "" for any author
	Kind     domain.ContentKind // ContentAny for any content
	Variant  domain.Variant
	Locate   domain.MessageID // message to jump to once loaded, zero for none
}

// IsEmpty reports whether there is nothing to search for
func (p Params) IsEmpty() bool {
	return p.Query == "" && p.Author == "" && p.Kind == domain.ContentAny
}

// Snapshot is a read-only view of the active session for presentation
type Snapshot struct {
	SessionID   uint64
	ChatID      int64
	Query       string
	Variant     domain.Variant
	State       domain.State
	Cursor      int
	TotalCount  int
	Loaded      int
	CanLoadMore bool
	Locating    bool
	Current     domain.Message // zero when Cursor is -1
}

// requestReason records why a page was requested so its result lands correctly
type requestReason int

const (
	reasonInitial requestReason = iota
	reasonNavigate
	reasonLocate
)

func (r requestReason) String() string {
	switch r {
	case reasonNavigate:
		return "navigate"
	case reasonLocate:
		return "locate"
	default:
		return "initial"
	}
}

// pageRequest carries the generation it was issued for by value
type pageRequest struct {
	sessionID uint64
	first     bool
	reason    requestReason
	direction domain.Direction
	beforeID  int64  // standard
	token     string // restricted
}

// pageResult is the backend answer, normalized across variants
type pageResult struct {
	messages   []domain.Message
	totalCount int
	nextToken  string
	err        error
}

type outcomeKind int

const (
	outcomeLoaded outcomeKind = iota
	outcomeNoResults
	outcomeExhausted
	outcomeFailed
)

// pageOutcome is what applying a page did to the session
type pageOutcome struct {
	kind         outcomeKind
	firstNew     int // position of the first appended message
	totalChanged bool
	err          error
}
