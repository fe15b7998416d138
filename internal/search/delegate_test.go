package search

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chatsearch/internal/domain"
	"chatsearch/internal/eventbus"
)

type eventLog struct {
	mu     sync.Mutex
	events []eventbus.DomainEvent
}

func (l *eventLog) record(e eventbus.DomainEvent) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.events = append(l.events, e)
}

func TestBusDelegateTagsSessions(t *testing.T) {
	bus := eventbus.New()
	log := &eventLog{}
	for _, et := range []eventbus.EventType{
		eventbus.EventResultShown,
		eventbus.EventAwaitNext,
		eventbus.EventNewerPageRequested,
		eventbus.EventSearchFailed,
	} {
		bus.Subscribe(et, log.record)
	}

	exec := &manualExecutor{}
	sched := &manualScheduler{}
	spawner := &manualSpawner{}
	b := &fakeBackend{messages: makeMessages(3, "note")}
	m := NewManager(b, NewBusDelegate(bus), exec, WithScheduler(sched), WithSpawner(spawner.spawn))
	settle := func() {
		for sched.fireAll() || spawner.runAll() || exec.drain() {
		}
	}

	first := m.Search(Params{ChatID: testChat, Query: "note"})
	second := m.Search(Params{ChatID: testChat, Query: "note 1"})
	settle()
	require.NoError(t, m.MoveTo(domain.DirectionNext))
	bus.Close()

	require.Len(t, log.events, 4)
	assert.Equal(t, eventbus.ResultShownEvent{SessionID: first, Index: domain.IndexLoading}, log.events[0])
	assert.Equal(t, eventbus.ResultShownEvent{SessionID: second, Index: domain.IndexLoading}, log.events[1])
	assert.Equal(t, eventbus.ResultShownEvent{
		SessionID:  second,
		Index:      0,
		TotalCount: 1,
		Message:    b.messages[1].ID,
	}, log.events[2])
	assert.Equal(t, eventbus.NewerPageRequestedEvent{SessionID: second}, log.events[3])
}

func TestBusDelegatePublishesErrors(t *testing.T) {
	bus := eventbus.New()
	log := &eventLog{}
	bus.Subscribe(eventbus.EventSearchFailed, log.record)

	d := NewBusDelegate(bus)
	d.BeginSession(9)
	boom := errors.New("boom")
	d.OnSearchError(boom)
	bus.Close()

	require.Len(t, log.events, 1)
	failed := log.events[0].(eventbus.SearchFailedEvent)
	assert.Equal(t, uint64(9), failed.SessionID)
	assert.ErrorIs(t, failed.Err, boom)
}
