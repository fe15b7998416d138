// Package search drives paginated message searches against a backend and
// keeps a navigable cursor over the growing result set.
//
// A Manager owns one search session at a time. Each Search or Reset starts
// a new generation: the debounce timer of the previous one is canceled, its
// in-flight request is canceled and any answer it still produces is dropped.
// All Manager methods must run on the goroutine behind the Executor given to
// NewManager.
package search

import (
	"time"

	"go.uber.org/zap"

	"chatsearch/internal/backend"
	"chatsearch/internal/domain"
)

// Defaults used when no option overrides them
const (
	DefaultDebounce       = 100 * time.Millisecond
	DefaultPageSize       = 20
	DefaultLocateMaxPages = 10
)

type options struct {
	scheduler      Scheduler
	spawn          func(func())
	debounce       time.Duration
	pageSize       int
	locateMaxPages int
	logger         *zap.Logger
}

// Option configures a Manager
type Option func(*options)

// WithScheduler replaces the wall-clock debounce scheduler
func WithScheduler(s Scheduler) Option {
	return func(o *options) { o.scheduler = s }
}

// WithSpawner replaces the goroutine launcher used for backend calls
func WithSpawner(spawn func(func())) Option {
	return func(o *options) { o.spawn = spawn }
}

// WithDebounce sets the typing debounce for standard searches
func WithDebounce(d time.Duration) Option {
	return func(o *options) { o.debounce = d }
}

// WithPageSize sets how many messages each backend page asks for
func WithPageSize(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.pageSize = n
		}
	}
}

// WithLocateMaxPages bounds the extra pages a locate may fetch
func WithLocateMaxPages(n int) Option {
	return func(o *options) {
		if n >= 0 {
			o.locateMaxPages = n
		}
	}
}

// WithLogger sets the logger
func WithLogger(l *zap.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// Manager coordinates the lifecycle of search sessions
type Manager struct {
	exec       Executor
	scheduler  Scheduler
	dispatcher *Dispatcher
	navigator  *Navigator
	delegate   Delegate
	debounce   time.Duration
	logger     *zap.Logger

	generation uint64
	session    *session
	store      *ResultStore
	timer      Timer
}

// NewManager creates a Manager searching b and reporting to delegate
func NewManager(b backend.Backend, delegate Delegate, exec Executor, opts ...Option) *Manager {
	o := options{
		spawn:          func(fn func()) { go fn() },
		debounce:       DefaultDebounce,
		pageSize:       DefaultPageSize,
		locateMaxPages: DefaultLocateMaxPages,
		logger:         zap.NewNop(),
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.scheduler == nil {
		o.scheduler = NewClockScheduler(nil, exec)
	}
	if delegate == nil {
		delegate = NopDelegate{}
	}

	m := &Manager{
		exec:      exec,
		scheduler: o.scheduler,
		delegate:  delegate,
		debounce:  o.debounce,
		logger:    o.logger,
		store:     NewResultStore(),
	}
	m.dispatcher = newDispatcher(b, exec, o.spawn, o.pageSize, o.logger)
	m.navigator = newNavigator(m.dispatcher, delegate, o.locateMaxPages, o.logger)
	m.dispatcher.hooks = dispatchHooks{
		active:  func() *session { return m.session },
		applied: m.navigator.pageApplied,
		counted: m.UpdateTotalCount,
	}
	return m
}

// Search starts a new generation for p and returns its id. It never blocks:
// the first page is requested after the debounce delay.
func (m *Manager) Search(p Params) uint64 {
	s := m.reset(p)

	if p.IsEmpty() {
		m.delegate.OnResult(domain.IndexNoInput, 0, domain.MessageID{})
		return s.id
	}

	s.state = domain.StateDebouncing
	m.delegate.OnResult(domain.IndexLoading, 0, domain.MessageID{})

	delay := m.debounce
	if p.Variant == domain.VariantRestricted {
		delay = 0
	}
	id := s.id
	m.timer = m.scheduler.Schedule(delay, func() { m.fire(id) })

	m.logger.Debug("search scheduled",
		zap.Uint64("session", id),
		zap.Int64("chat", p.ChatID),
		zap.Stringer("variant", p.Variant),
		zap.Duration("delay", delay))
	return id
}

// Reset abandons the current search and returns the new generation id
func (m *Manager) Reset(chatID, threadID int64, query string) uint64 {
	return m.reset(Params{ChatID: chatID, ThreadID: threadID, Query: query}).id
}

// Dismiss resets to an empty session, e.g. when the search UI closes
func (m *Manager) Dismiss() {
	m.reset(Params{})
}

// MoveTo steps the cursor. It returns ErrBusy while a page is pending and
// ErrNoSession when there is nothing to navigate.
func (m *Manager) MoveTo(dir domain.Direction) error {
	return m.navigator.MoveTo(m.session, dir)
}

// Locate jumps to target once it is loaded, paging forward to find it
func (m *Manager) Locate(target domain.MessageID) error {
	return m.navigator.Locate(m.session, target)
}

// UpdateTotalCount applies a refined result count reported for sessionID.
// Counts for other generations are ignored, and once no further page can be
// loaded the total stays at the loaded count.
func (m *Manager) UpdateTotalCount(sessionID uint64, n int) {
	s := m.session
	if s == nil || s.id != sessionID {
		m.logger.Debug("stale count discarded", zap.Uint64("session", sessionID))
		return
	}
	switch s.state {
	case domain.StateEmpty, domain.StateNoResults:
		return
	}
	n = max(n, s.store.Len())
	if s.state != domain.StateLoading && !s.canLoadMore() {
		// everything there is has been loaded
		n = s.store.Len()
	}
	if n == s.totalCount {
		return
	}
	s.totalCount = n
	m.delegate.OnTotalCountChanged(s.cursor, n)
}

// IsMessageFound reports whether id is one of the loaded matches of the
// current search
func (m *Manager) IsMessageFound(id domain.MessageID) bool {
	s := m.session
	if s == nil || id.ChatID != s.params.ChatID {
		return false
	}
	return s.store.Contains(id)
}

// Message returns the loaded match at position i
func (m *Manager) Message(i int) (domain.Message, bool) {
	if m.session == nil {
		return domain.Message{}, false
	}
	return m.session.store.At(i)
}

// Snapshot describes the current session
func (m *Manager) Snapshot() Snapshot {
	if m.session == nil {
		return Snapshot{Cursor: -1}
	}
	return m.session.snapshot()
}

// reset cancels all outstanding work and starts a new generation
func (m *Manager) reset(p Params) *session {
	if m.timer != nil {
		m.timer.Cancel()
		m.timer = nil
	}
	if m.session != nil {
		m.session.cancel()
	}
	m.store.Clear()

	m.generation++
	m.session = newSession(m.generation, p, m.store)
	if aware, ok := m.delegate.(SessionAware); ok {
		aware.BeginSession(m.generation)
	}
	return m.session
}

// fire runs when the debounce timer of generation id expires
func (m *Manager) fire(id uint64) {
	s := m.session
	if s == nil || s.id != id || s.state != domain.StateDebouncing {
		m.logger.Debug("stale debounce discarded", zap.Uint64("session", id))
		return
	}
	m.timer = nil
	req := pageRequest{sessionID: id, first: true, reason: reasonInitial}
	if err := m.dispatcher.Issue(s, req); err != nil {
		m.logger.Warn("first page not issued", zap.Uint64("session", id), zap.Error(err))
	}
}
