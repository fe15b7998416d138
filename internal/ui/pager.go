package ui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/noborus/ov/oviewer"

	"chatsearch/internal/config"
	"chatsearch/internal/domain"
)

// Pager shows long message bodies full-screen in ov
type Pager struct {
	program *tea.Program // reference to Bubble Tea program for terminal management
}

// NewPager creates a new pager
func NewPager() *Pager {
	return &Pager{}
}

// SetProgram sets the program reference for terminal management
func (p *Pager) SetProgram(program *tea.Program) {
	p.program = program
}

// Show hands the terminal to ov until the user leaves the pager
func (p *Pager) Show(content string) error {
	if p.program == nil {
		return fmt.Errorf("program not set")
	}

	// Release terminal control to run ov
	if err := p.program.ReleaseTerminal(); err != nil {
		return err
	}

	// Ensure terminal is restored even if ov fails
	defer func() {
		// Small delay to ensure ov has fully exited before restoring terminal
		time.Sleep(100 * time.Millisecond)
		_ = p.program.RestoreTerminal()
	}()

	root, err := oviewer.NewRoot(strings.NewReader(content))
	if err != nil {
		return err
	}

	// Configure ov to not write on exit (to avoid messing with our screen)
	cfg := oviewer.NewConfig()
	cfg.IsWriteOnExit = false
	cfg.IsWriteOriginal = false
	root.SetConfig(cfg)

	return root.Run()
}

// renderMessageDocument formats a message for the pager
func renderMessageDocument(m domain.Message, settings config.UISettings) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Message %s\n", m.ID)
	if settings.ShowAuthors && m.Author != "" {
		fmt.Fprintf(&b, "From:   %s\n", m.Author)
	}
	if settings.ShowDates && !m.Date.IsZero() {
		fmt.Fprintf(&b, "Date:   %s\n", m.Date.Local().Format(time.RFC1123))
	}
	if m.ThreadID != 0 {
		fmt.Fprintf(&b, "Thread: %d\n", m.ThreadID)
	}
	if m.Kind != domain.ContentAny && m.Kind != domain.ContentText {
		fmt.Fprintf(&b, "Kind:   %s\n", m.Kind)
	}
	b.WriteString("\n")
	b.WriteString(m.Text)
	b.WriteString("\n")

	return b.String()
}
