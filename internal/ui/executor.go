package ui

import (
	tea "github.com/charmbracelet/bubbletea"

	"chatsearch/internal/eventbus"
)

// Executor hands search callbacks to the tea update loop, which makes the
// program's goroutine the owner of all search state. Post must not be called
// from inside Update.
type Executor struct {
	program *tea.Program
}

// NewExecutor creates an executor; Bind it before the first search
func NewExecutor() *Executor {
	return &Executor{}
}

// Bind attaches the program whose update loop runs posted callbacks
func (e *Executor) Bind(p *tea.Program) {
	e.program = p
}

// Post implements search.Executor
func (e *Executor) Post(fn func()) {
	if e.program == nil {
		return
	}
	e.program.Send(runMsg{fn: fn})
}

// searchEvents are the bus events the model renders
var searchEvents = []eventbus.EventType{
	eventbus.EventResultShown,
	eventbus.EventTotalCountChanged,
	eventbus.EventAwaitNext,
	eventbus.EventOlderPageRequested,
	eventbus.EventNewerPageRequested,
	eventbus.EventSearchFailed,
}

// Forward subscribes to search events on bus and sends them into p.
// It returns a function that removes the subscriptions.
func Forward(bus eventbus.EventBus, p *tea.Program) func() {
	unsubscribes := make([]func(), 0, len(searchEvents))
	for _, eventType := range searchEvents {
		unsubscribes = append(unsubscribes, bus.Subscribe(eventType, func(e eventbus.DomainEvent) {
			p.Send(EventMsg{Event: e})
		}))
	}
	return func() {
		for _, unsubscribe := range unsubscribes {
			unsubscribe()
		}
	}
}
