// Package ui is the terminal front end of a search session: a query line,
// filter controls, a result counter and the current match.
package ui

import (
	"errors"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"chatsearch/internal/config"
	"chatsearch/internal/domain"
	"chatsearch/internal/eventbus"
	"chatsearch/internal/search"
)

// Searcher is the part of search.Manager the model drives
type Searcher interface {
	Search(p search.Params) uint64
	MoveTo(dir domain.Direction) error
	Dismiss()
	Message(i int) (domain.Message, bool)
}

// Options configures a Model
type Options struct {
	ChatID   int64
	ThreadID int64
	Variant  domain.Variant
	Settings config.UISettings
	Logger   *zap.Logger
}

// Model represents the UI state
type Model struct {
	searcher Searcher
	opts     Options
	logger   *zap.Logger
	styles   *Styles
	keys     keyMap
	help     help.Model
	pager    *Pager

	query   textinput.Model
	author  textinput.Model
	kindIdx int // index into domain.ContentKinds, -1 for any kind

	// last state reported for the current session
	sessionID uint64
	index     int
	total     int
	current   domain.Message
	awaiting  bool
	notice    string
	lastErr   error

	width  int
	height int

	inPagerMode bool
	copyText    func(string) error
}

// NewModel creates a new UI model
func NewModel(searcher Searcher, opts Options) *Model {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	query := textinput.New()
	query.Prompt = "search: "
	query.Placeholder = "type to search messages"
	query.CharLimit = 256
	query.Focus()

	author := textinput.New()
	author.Prompt = "from: "
	author.Placeholder = "anyone"
	author.CharLimit = 64

	return &Model{
		searcher: searcher,
		opts:     opts,
		logger:   logger,
		styles:   NewStyles(),
		keys:     newKeyMap(),
		help:     help.New(),
		pager:    NewPager(),
		query:    query,
		author:   author,
		kindIdx:  -1,
		index:    domain.IndexNoInput,
		copyText: clipboard.WriteAll,
	}
}

// SetProgram sets the program reference for terminal management
func (m *Model) SetProgram(p *tea.Program) {
	m.pager.SetProgram(p)
}

// Init returns an initial command
func (m *Model) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles messages
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.query.Width = max(msg.Width-len(m.query.Prompt)-2, 10)
		return m, nil

	case runMsg:
		msg.fn()
		return m, nil

	case EventMsg:
		m.handleEvent(msg.Event)
		return m, nil

	case messagePagerMsg:
		m.inPagerMode = false
		if msg.err != nil {
			m.logger.Warn("pager failed", zap.Error(msg.err))
			m.lastErr = msg.err
		}
		return m, nil

	case copiedMsg:
		if msg.err != nil {
			m.lastErr = msg.err
		} else {
			m.notice = "Copied to clipboard"
		}
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m, nil
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Back):
		if m.author.Focused() {
			m.focusQuery()
			return m, nil
		}
		if m.hasInput() {
			m.clear()
			return m, nil
		}
		return m, tea.Quit

	case key.Matches(msg, m.keys.Next):
		m.move(domain.DirectionNext)
		return m, nil

	case key.Matches(msg, m.keys.Prev):
		m.move(domain.DirectionPrevious)
		return m, nil

	case key.Matches(msg, m.keys.Open):
		if m.current.ID.IsZero() || m.inPagerMode {
			return m, nil
		}
		m.inPagerMode = true
		return m, m.openPager(renderMessageDocument(m.current, m.opts.Settings))

	case key.Matches(msg, m.keys.Kind):
		m.kindIdx++
		if m.kindIdx >= len(domain.ContentKinds) {
			m.kindIdx = -1
		}
		m.search()
		return m, nil

	case key.Matches(msg, m.keys.Author):
		if m.author.Focused() {
			m.focusQuery()
		} else {
			m.query.Blur()
			m.author.Focus()
		}
		return m, nil

	case key.Matches(msg, m.keys.Copy):
		if m.current.ID.IsZero() {
			return m, nil
		}
		text, copyText := m.current.Text, m.copyText
		return m, func() tea.Msg {
			return copiedMsg{err: copyText(text)}
		}
	}

	// Everything else edits the focused input
	input := &m.query
	if m.author.Focused() {
		input = &m.author
	}
	before := input.Value()
	var cmd tea.Cmd
	*input, cmd = input.Update(msg)
	if input.Value() != before {
		m.search()
	}
	return m, cmd
}

// params describes the search for the current inputs
func (m *Model) params() search.Params {
	p := search.Params{
		ChatID:   m.opts.ChatID,
		ThreadID: m.opts.ThreadID,
		Query:    m.query.Value(),
		Author:   m.author.Value(),
		Variant:  m.opts.Variant,
	}
	if m.kindIdx >= 0 {
		p.Kind = domain.ContentKinds[m.kindIdx]
	}
	return p
}

func (m *Model) search() {
	m.notice = ""
	m.lastErr = nil
	m.awaiting = false
	m.current = domain.Message{}
	m.sessionID = m.searcher.Search(m.params())
}

func (m *Model) move(dir domain.Direction) {
	m.notice = ""
	err := m.searcher.MoveTo(dir)
	switch {
	case err == nil:
	case errors.Is(err, search.ErrBusy), errors.Is(err, search.ErrNoSession):
		// nothing to move over yet
	default:
		m.lastErr = err
	}
}

func (m *Model) clear() {
	m.query.SetValue("")
	m.author.SetValue("")
	m.kindIdx = -1
	m.focusQuery()
	m.searcher.Dismiss()
	m.sessionID = 0
	m.index = domain.IndexNoInput
	m.total = 0
	m.current = domain.Message{}
	m.awaiting = false
	m.notice = ""
	m.lastErr = nil
}

func (m *Model) focusQuery() {
	m.author.Blur()
	m.query.Focus()
}

func (m *Model) hasInput() bool {
	return m.query.Value() != "" || m.author.Value() != "" || m.kindIdx >= 0
}

// handleEvent applies a search event of the current session
func (m *Model) handleEvent(event eventbus.DomainEvent) {
	switch e := event.(type) {
	case eventbus.ResultShownEvent:
		if e.SessionID != m.sessionID {
			return
		}
		m.awaiting = false
		m.index = e.Index
		m.total = e.TotalCount
		m.current = domain.Message{}
		if e.Positional() {
			if msg, ok := m.searcher.Message(e.Index); ok {
				m.current = msg
			}
		}

	case eventbus.TotalCountChangedEvent:
		if e.SessionID != m.sessionID {
			return
		}
		m.total = e.TotalCount

	case eventbus.AwaitNextEvent:
		if e.SessionID != m.sessionID {
			return
		}
		m.awaiting = true

	case eventbus.OlderPageRequestedEvent:
		if e.SessionID != m.sessionID {
			return
		}
		m.notice = "Already at the newest match"

	case eventbus.NewerPageRequestedEvent:
		if e.SessionID != m.sessionID {
			return
		}
		m.notice = "No older matches"

	case eventbus.SearchFailedEvent:
		if e.SessionID != m.sessionID {
			return
		}
		m.lastErr = e.Err
	}
}

// openPager returns a command that shows content in the ov pager
func (m *Model) openPager(content string) tea.Cmd {
	pager := m.pager
	return func() tea.Msg {
		return messagePagerMsg{err: pager.Show(content)}
	}
}
