package domain

import (
	"fmt"
	"time"
)

// Sentinel indices passed to the result callback instead of a cursor position
const (
	IndexNoInput   = -1
	IndexLoading   = -2
	IndexNoResults = -3
)

// MessageID identifies a message across conversations
type MessageID struct {
	ChatID    int64
	MessageID int64
}

// IsZero reports whether the id carries no message
func (id MessageID) IsZero() bool {
	return id.ChatID == 0 && id.MessageID == 0
}

func (id MessageID) String() string {
	return fmt.Sprintf("%d/%d", id.ChatID, id.MessageID)
}

// ContentKind narrows a search to one kind of message content
type ContentKind string

const (
	ContentAny      ContentKind = ""
	ContentText     ContentKind = "text"
	ContentPhoto    ContentKind = "photo"
	ContentVideo    ContentKind = "video"
	ContentDocument ContentKind = "document"
	ContentVoice    ContentKind = "voice"
	ContentLink     ContentKind = "link"
)

// ContentKinds lists the filterable kinds in display order
var ContentKinds = []ContentKind{
	ContentText,
	ContentPhoto,
	ContentVideo,
	ContentDocument,
	ContentVoice,
	ContentLink,
}

// Message is a single search hit as returned by the backend
type Message struct {
	ID       MessageID
	ThreadID int64 // 0 when the message is not part of a thread
	Author   string
	Kind     ContentKind
	Text     string
	Date     time.Time
}

// Variant selects the backend query shape and its pagination mechanics
type Variant int

const (
	// VariantStandard pages by message id and reports a total count
	VariantStandard Variant = iota
	// VariantRestricted pages by an opaque continuation token without a total count
	VariantRestricted
)

func (v Variant) String() string {
	switch v {
	case VariantStandard:
		return "standard"
	case VariantRestricted:
		return "restricted"
	default:
		return fmt.Sprintf("variant(%d)", int(v))
	}
}

// State is the lifecycle state of a search session
type State int

const (
	StateEmpty State = iota
	StateDebouncing
	StateLoading
	StateReady
	StateExhausted
	StateNoResults
)

func (s State) String() string {
	switch s {
	case StateEmpty:
		return "empty"
	case StateDebouncing:
		return "debouncing"
	case StateLoading:
		return "loading"
	case StateReady:
		return "ready"
	case StateExhausted:
		return "exhausted"
	case StateNoResults:
		return "no_results"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Direction of a cursor move over the result set
type Direction int

const (
	DirectionNext Direction = iota
	DirectionPrevious
)

func (d Direction) String() string {
	if d == DirectionPrevious {
		return "previous"
	}
	return "next"
}

// Step returns the cursor delta for the direction
func (d Direction) Step() int {
	if d == DirectionPrevious {
		return -1
	}
	return 1
}
