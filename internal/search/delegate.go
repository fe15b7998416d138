package search

import (
	"chatsearch/internal/domain"
	"chatsearch/internal/eventbus"
)

// Delegate receives presentation callbacks. All calls happen on the owner
// executor. Index is a cursor position, or one of domain.IndexNoInput,
// domain.IndexLoading, domain.IndexNoResults with a zero message id.
type Delegate interface {
	OnResult(index, totalCount int, id domain.MessageID)
	OnTotalCountChanged(index, totalCount int)
	OnAwaitNext(dir domain.Direction)
	OnRequestOlderPage()
	OnRequestNewerPage()
	OnSearchError(err error)
}

// SessionAware delegates are told the id of every new search generation
// before any callback belonging to it
type SessionAware interface {
	BeginSession(id uint64)
}

// NopDelegate ignores every callback
type NopDelegate struct{}

func (NopDelegate) OnResult(int, int, domain.MessageID) {}
func (NopDelegate) OnTotalCountChanged(int, int)        {}
func (NopDelegate) OnAwaitNext(domain.Direction)        {}
func (NopDelegate) OnRequestOlderPage()                 {}
func (NopDelegate) OnRequestNewerPage()                 {}
func (NopDelegate) OnSearchError(error)                 {}

// BusDelegate republishes callbacks as domain events, tagged with the
// session generation they belong to.
//
// Each callback is one Publish, which never blocks the owner goroutine: a
// subscriber that forwards into the same loop would otherwise deadlock it.
// A search emits a handful of events per keystroke or page, far below
// eventbus.QueueSize; if subscribers stall long enough to fill the queue,
// further events are dropped and logged.
type BusDelegate struct {
	bus       eventbus.EventBus
	sessionID uint64
}

// NewBusDelegate creates a delegate publishing on bus
func NewBusDelegate(bus eventbus.EventBus) *BusDelegate {
	return &BusDelegate{bus: bus}
}

func (d *BusDelegate) BeginSession(id uint64) {
	d.sessionID = id
}

func (d *BusDelegate) OnResult(index, totalCount int, id domain.MessageID) {
	d.bus.Publish(eventbus.ResultShownEvent{
		SessionID:  d.sessionID,
		Index:      index,
		TotalCount: totalCount,
		Message:    id,
	})
}

func (d *BusDelegate) OnTotalCountChanged(index, totalCount int) {
	d.bus.Publish(eventbus.TotalCountChangedEvent{
		SessionID:  d.sessionID,
		Index:      index,
		TotalCount: totalCount,
	})
}

func (d *BusDelegate) OnAwaitNext(dir domain.Direction) {
	d.bus.Publish(eventbus.AwaitNextEvent{SessionID: d.sessionID, Direction: dir})
}

func (d *BusDelegate) OnRequestOlderPage() {
	d.bus.Publish(eventbus.OlderPageRequestedEvent{SessionID: d.sessionID})
}

func (d *BusDelegate) OnRequestNewerPage() {
	d.bus.Publish(eventbus.NewerPageRequestedEvent{SessionID: d.sessionID})
}

func (d *BusDelegate) OnSearchError(err error) {
	d.bus.Publish(eventbus.SearchFailedEvent{SessionID: d.sessionID, Err: err})
}
