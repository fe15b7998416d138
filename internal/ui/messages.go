package ui

import (
	"chatsearch/internal/eventbus"
)

// EventMsg wraps a domain event for the UI
type EventMsg struct {
	Event eventbus.DomainEvent
}

// runMsg carries a search callback onto the update loop
type runMsg struct {
	fn func()
}

// messagePagerMsg contains the result of showing a message in the pager
type messagePagerMsg struct {
	err error
}

// copiedMsg reports the outcome of copying the current message
type copiedMsg struct {
	err error
}
