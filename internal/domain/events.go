package domain

// EventType represents the type of domain event
type EventType string

// Event types
const (
	EventResultShown        EventType = "ResultShown"
	EventTotalCountChanged  EventType = "TotalCountChanged"
	EventAwaitNext          EventType = "AwaitNext"
	EventOlderPageRequested EventType = "OlderPageRequested"
	EventNewerPageRequested EventType = "NewerPageRequested"
	EventSearchFailed       EventType = "SearchFailed"
	EventConfigLoaded       EventType = "ConfigLoaded"
	EventConfigSaved        EventType = "ConfigSaved"
	EventIndexImported      EventType = "IndexImported"
)

// DomainEvent is the interface for all domain events
type DomainEvent interface {
	Type() EventType
}

// ResultShownEvent is emitted when the search cursor lands on a position or a
// sentinel state (IndexNoInput, IndexLoading, IndexNoResults)
type ResultShownEvent struct {
	SessionID  uint64
	Index      int
	TotalCount int
	Message    MessageID // zero for sentinel indices
}

func (e ResultShownEvent) Type() EventType { return EventResultShown }

// Positional reports whether the event carries a real cursor position
func (e ResultShownEvent) Positional() bool { return e.Index >= 0 }

// TotalCountChangedEvent is emitted when the known size of the result set changes
type TotalCountChangedEvent struct {
	SessionID  uint64
	Index      int
	TotalCount int
}

func (e TotalCountChangedEvent) Type() EventType { return EventTotalCountChanged }

// AwaitNextEvent is emitted when a cursor move has to wait for another page
type AwaitNextEvent struct {
	SessionID uint64
	Direction Direction
}

func (e AwaitNextEvent) Type() EventType { return EventAwaitNext }

// OlderPageRequestedEvent asks the host to page the chat history outside the result set
type OlderPageRequestedEvent struct {
	SessionID uint64
}

func (e OlderPageRequestedEvent) Type() EventType { return EventOlderPageRequested }

// NewerPageRequestedEvent asks the host to continue past the end of the result set
type NewerPageRequestedEvent struct {
	SessionID uint64
}

func (e NewerPageRequestedEvent) Type() EventType { return EventNewerPageRequested }

// SearchFailedEvent is emitted when the backend rejected a query
type SearchFailedEvent struct {
	SessionID uint64
	Err       error
}

func (e SearchFailedEvent) Type() EventType { return EventSearchFailed }

// ConfigLoadedEvent is emitted when configuration is loaded
type ConfigLoadedEvent struct {
	Path     string
	Database string
}

func (e ConfigLoadedEvent) Type() EventType { return EventConfigLoaded }

// ConfigSavedEvent is emitted when configuration is saved
type ConfigSavedEvent struct {
	Path string
}

func (e ConfigSavedEvent) Type() EventType { return EventConfigSaved }

// IndexImportedEvent is emitted after messages were written to the local index
type IndexImportedEvent struct {
	Count int
}

func (e IndexImportedEvent) Type() EventType { return EventIndexImported }
