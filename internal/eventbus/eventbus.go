package eventbus

import (
	"sync"

	"go.uber.org/zap"

	"chatsearch/internal/domain"
)

// Re-export domain types for convenience
type DomainEvent = domain.DomainEvent
type EventType = domain.EventType

// Event type constants
const (
	EventResultShown        = domain.EventResultShown
	EventTotalCountChanged  = domain.EventTotalCountChanged
	EventAwaitNext          = domain.EventAwaitNext
	EventOlderPageRequested = domain.EventOlderPageRequested
	EventNewerPageRequested = domain.EventNewerPageRequested
	EventSearchFailed       = domain.EventSearchFailed
	EventConfigLoaded       = domain.EventConfigLoaded
	EventConfigSaved        = domain.EventConfigSaved
	EventIndexImported      = domain.EventIndexImported
)

// Re-export domain event types
type ResultShownEvent = domain.ResultShownEvent
type TotalCountChangedEvent = domain.TotalCountChangedEvent
type AwaitNextEvent = domain.AwaitNextEvent
type OlderPageRequestedEvent = domain.OlderPageRequestedEvent
type NewerPageRequestedEvent = domain.NewerPageRequestedEvent
type SearchFailedEvent = domain.SearchFailedEvent
type ConfigLoadedEvent = domain.ConfigLoadedEvent
type ConfigSavedEvent = domain.ConfigSavedEvent
type IndexImportedEvent = domain.IndexImportedEvent

// QueueSize is how many events may wait for delivery. Publish never blocks;
// events beyond it are dropped and logged.
const QueueSize = 1000

// EventHandler is a function that handles domain events
type EventHandler func(DomainEvent)

// EventBus is the interface for the event bus
type EventBus interface {
	Publish(event DomainEvent)
	Subscribe(eventType EventType, handler EventHandler) func()
	Close()
}

type subscription struct {
	id      uint64
	handler EventHandler
}

// bus is the concrete implementation of EventBus
type bus struct {
	mu        sync.RWMutex
	handlers  map[EventType][]subscription
	nextID    uint64
	eventChan chan DomainEvent
	wg        sync.WaitGroup
	quit      chan struct{}
	closeOnce sync.Once
}

// New creates a new event bus
func New() EventBus {
	b := &bus{
		handlers:  make(map[EventType][]subscription),
		eventChan: make(chan DomainEvent, QueueSize),
		quit:      make(chan struct{}),
	}

	b.wg.Add(1)
	go b.dispatch()

	return b
}

// Publish queues an event for delivery to all subscribers.
// Events are delivered in publish order.
func (b *bus) Publish(event DomainEvent) {
	select {
	case <-b.quit:
		return
	default:
	}

	select {
	case b.eventChan <- event:
	default:
		// Channel full, log and drop
		zap.L().Warn("event bus channel full, dropping event", zap.String("event", string(event.Type())))
	}
}

// Subscribe subscribes to events of a specific type
// Returns an unsubscribe function
func (b *bus) Subscribe(eventType EventType, handler EventHandler) func() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextID++
	id := b.nextID
	b.handlers[eventType] = append(b.handlers[eventType], subscription{id: id, handler: handler})

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()

		subs := b.handlers[eventType]
		for i, s := range subs {
			if s.id == id {
				b.handlers[eventType] = append(subs[:i:i], subs[i+1:]...)
				break
			}
		}
	}
}

// Close stops the dispatcher after draining queued events
func (b *bus) Close() {
	b.closeOnce.Do(func() {
		close(b.quit)
	})
	b.wg.Wait()
}

// dispatch handles event distribution to subscribers
func (b *bus) dispatch() {
	defer b.wg.Done()

	for {
		select {
		case event := <-b.eventChan:
			b.deliver(event)
		case <-b.quit:
			for {
				select {
				case event := <-b.eventChan:
					b.deliver(event)
				default:
					return
				}
			}
		}
	}
}

func (b *bus) deliver(event DomainEvent) {
	b.mu.RLock()
	subs := b.handlers[event.Type()]
	// Copy so handlers run without holding the lock
	subsCopy := make([]subscription, len(subs))
	copy(subsCopy, subs)
	b.mu.RUnlock()

	for _, s := range subsCopy {
		func(h EventHandler) {
			defer func() {
				if r := recover(); r != nil {
					zap.L().Error("event handler panic",
						zap.String("event", string(event.Type())),
						zap.Any("panic", r),
						zap.Stack("stack"))
				}
			}()
			h(event)
		}(s.handler)
	}
}
