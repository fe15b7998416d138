package search

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"chatsearch/internal/backend"
	"chatsearch/internal/domain"
)

const testChat = 7

// manualExecutor queues posted callbacks until drained by the test
type manualExecutor struct {
	queue []func()
}

func (e *manualExecutor) Post(fn func()) { e.queue = append(e.queue, fn) }

func (e *manualExecutor) drain() bool {
	ran := false
	for len(e.queue) > 0 {
		fn := e.queue[0]
		e.queue = e.queue[1:]
		fn()
		ran = true
	}
	return ran
}

// manualTimer and manualScheduler let tests decide when debounce expires
type manualTimer struct {
	delay    time.Duration
	fn       func()
	canceled bool
	fired    bool
}

func (t *manualTimer) Cancel() { t.canceled = true }

type manualScheduler struct {
	timers []*manualTimer
}

func (s *manualScheduler) Schedule(delay time.Duration, fn func()) Timer {
	t := &manualTimer{delay: delay, fn: fn}
	s.timers = append(s.timers, t)
	return t
}

func (s *manualScheduler) fireAll() bool {
	ran := false
	for _, t := range s.timers {
		if t.canceled || t.fired {
			continue
		}
		t.fired = true
		t.fn()
		ran = true
	}
	return ran
}

// manualSpawner holds backend calls so tests can resolve them in any order
type manualSpawner struct {
	pending []func()
}

func (s *manualSpawner) spawn(fn func()) { s.pending = append(s.pending, fn) }

func (s *manualSpawner) run(i int) {
	fn := s.pending[i]
	s.pending = append(s.pending[:i:i], s.pending[i+1:]...)
	fn()
}

func (s *manualSpawner) runAll() bool {
	ran := len(s.pending) > 0
	for len(s.pending) > 0 {
		s.run(0)
	}
	return ran
}

// fakeBackend serves pages out of an in-memory slice ordered newest first.
// Messages match when their text contains the query.
type fakeBackend struct {
	messages []domain.Message
	total    int // overrides the reported standard total when non-zero
	err      error

	standardCalls   []backend.StandardQuery
	restrictedCalls []backend.RestrictedQuery
	contexts        []context.Context
}

func (b *fakeBackend) matching(query string) []domain.Message {
	var out []domain.Message
	for _, m := range b.messages {
		if strings.Contains(m.Text, query) {
			out = append(out, m)
		}
	}
	return out
}

func (b *fakeBackend) SearchStandard(ctx context.Context, q backend.StandardQuery) (backend.StandardPage, error) {
	b.standardCalls = append(b.standardCalls, q)
	b.contexts = append(b.contexts, ctx)
	if b.err != nil {
		return backend.StandardPage{}, b.err
	}
	all := b.matching(q.Query)
	var page []domain.Message
	for _, m := range all {
		if q.BeforeMessageID != 0 && m.ID.MessageID >= q.BeforeMessageID {
			continue
		}
		if len(page) == q.Limit {
			break
		}
		page = append(page, m)
	}
	total := len(all)
	if b.total != 0 {
		total = b.total
	}
	return backend.StandardPage{Messages: page, TotalCount: total}, nil
}

func (b *fakeBackend) SearchRestricted(ctx context.Context, q backend.RestrictedQuery) (backend.RestrictedPage, error) {
	b.restrictedCalls = append(b.restrictedCalls, q)
	b.contexts = append(b.contexts, ctx)
	if b.err != nil {
		return backend.RestrictedPage{}, b.err
	}
	all := b.matching(q.Query)
	offset := 0
	if q.Token != "" {
		n, err := strconv.Atoi(strings.TrimPrefix(q.Token, "o"))
		if err != nil {
			return backend.RestrictedPage{}, backend.ErrInvalidToken
		}
		offset = n
	}
	end := min(offset+q.Limit, len(all))
	page := backend.RestrictedPage{Messages: all[offset:end]}
	if end < len(all) {
		page.NextToken = fmt.Sprintf("o%d", end)
	}
	return page, nil
}

// countingBackend also sizes restricted result sets
type countingBackend struct {
	*fakeBackend
	count int
}

func (b *countingBackend) CountRestricted(ctx context.Context, q backend.RestrictedQuery) (int, error) {
	return b.count, nil
}

// makeMessages returns n messages of testChat with descending ids
func makeMessages(n int, text string) []domain.Message {
	out := make([]domain.Message, n)
	for i := range out {
		out[i] = domain.Message{
			ID:   domain.MessageID{ChatID: testChat, MessageID: int64(1000 - i)},
			Text: fmt.Sprintf("%s %d", text, i),
			Kind: domain.ContentText,
		}
	}
	return out
}

type call struct {
	name  string
	index int
	total int
	id    domain.MessageID
	dir   domain.Direction
	err   error
}

// recorder captures delegate callbacks in order
type recorder struct {
	calls    []call
	sessions []uint64
}

func (r *recorder) BeginSession(id uint64) { r.sessions = append(r.sessions, id) }

func (r *recorder) OnResult(index, totalCount int, id domain.MessageID) {
	r.calls = append(r.calls, call{name: "result", index: index, total: totalCount, id: id})
}

func (r *recorder) OnTotalCountChanged(index, totalCount int) {
	r.calls = append(r.calls, call{name: "total", index: index, total: totalCount})
}

func (r *recorder) OnAwaitNext(dir domain.Direction) {
	r.calls = append(r.calls, call{name: "await", dir: dir})
}

func (r *recorder) OnRequestOlderPage() { r.calls = append(r.calls, call{name: "older"}) }

func (r *recorder) OnRequestNewerPage() { r.calls = append(r.calls, call{name: "newer"}) }

func (r *recorder) OnSearchError(err error) {
	r.calls = append(r.calls, call{name: "error", err: err})
}

func (r *recorder) last() call {
	if len(r.calls) == 0 {
		return call{}
	}
	return r.calls[len(r.calls)-1]
}

// positional returns the OnResult calls that carried a real cursor position
func (r *recorder) positional() []call {
	var out []call
	for _, c := range r.calls {
		if c.name == "result" && c.index >= 0 {
			out = append(out, c)
		}
	}
	return out
}

func (r *recorder) reset() { r.calls = nil }

type harness struct {
	t        *testing.T
	exec     *manualExecutor
	sched    *manualScheduler
	spawner  *manualSpawner
	backend  backend.Backend
	delegate *recorder
	m        *Manager
}

func newHarness(t *testing.T, b backend.Backend, opts ...Option) *harness {
	t.Helper()
	h := &harness{
		t:        t,
		exec:     &manualExecutor{},
		sched:    &manualScheduler{},
		spawner:  &manualSpawner{},
		backend:  b,
		delegate: &recorder{},
	}
	opts = append([]Option{
		WithScheduler(h.sched),
		WithSpawner(h.spawner.spawn),
	}, opts...)
	h.m = NewManager(b, h.delegate, h.exec, opts...)
	return h
}

// settle runs timers, backend calls and posted completions until quiet
func (h *harness) settle() {
	h.t.Helper()
	for i := 0; i < 100; i++ {
		progressed := h.sched.fireAll()
		progressed = h.spawner.runAll() || progressed
		progressed = h.exec.drain() || progressed
		if !progressed {
			return
		}
	}
	require.FailNow(h.t, "harness did not settle")
}

func (h *harness) moveNext(n int) {
	h.t.Helper()
	for i := 0; i < n; i++ {
		require.NoError(h.t, h.m.MoveTo(domain.DirectionNext))
	}
}
