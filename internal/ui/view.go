package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"chatsearch/internal/domain"
)

// View renders the UI
func (m *Model) View() string {
	var b strings.Builder

	b.WriteString(m.renderTitle())
	b.WriteString("\n\n")
	b.WriteString(m.query.View())
	b.WriteString("\n")
	b.WriteString(m.renderFilters())
	b.WriteString("\n\n")
	b.WriteString(m.renderStatus())

	if !m.current.ID.IsZero() {
		b.WriteString("\n")
		b.WriteString(m.renderCard())
	}

	if m.lastErr != nil {
		b.WriteString("\n")
		b.WriteString(m.styles.Error.Render("error: " + m.lastErr.Error()))
	}

	b.WriteString("\n")
	b.WriteString(m.styles.Help.Render(m.help.View(m.keys)))
	return b.String()
}

func (m *Model) renderTitle() string {
	title := m.styles.Title.Render("chatsearch") + " " + m.styles.Dim.Render(fmt.Sprintf("chat %d", m.opts.ChatID))
	if m.opts.ThreadID != 0 {
		title += m.styles.Dim.Render(fmt.Sprintf(" · thread %d", m.opts.ThreadID))
	}
	if m.opts.Variant == domain.VariantRestricted {
		title += " " + m.styles.Badge.Render("secret")
	}
	return title
}

func (m *Model) renderFilters() string {
	kind := "any"
	if m.kindIdx >= 0 {
		kind = string(domain.ContentKinds[m.kindIdx])
	}
	return m.author.View() + "   " + m.styles.Label.Render("kind: ") + kind
}

// statusText describes the reported position in words
func (m *Model) statusText() string {
	switch {
	case m.sessionID == 0 || m.index == domain.IndexNoInput:
		return "Type to search"
	case m.index == domain.IndexLoading:
		return "Searching…"
	case m.index == domain.IndexNoResults:
		return "No results"
	}
	status := fmt.Sprintf("%d of %d", m.index+1, m.total)
	if m.awaiting {
		status += " · loading more…"
	}
	return status
}

func (m *Model) renderStatus() string {
	text := m.statusText()

	var status string
	switch m.index {
	case domain.IndexLoading:
		status = m.styles.Loading.Render(text)
	case domain.IndexNoResults:
		status = m.styles.Empty.Render(text)
	case domain.IndexNoInput:
		status = m.styles.Dim.Render(text)
	default:
		status = m.styles.Counter.Render(text)
	}

	if m.notice != "" {
		status += "  " + m.styles.Notice.Render(m.notice)
	}
	return status
}

func (m *Model) renderCard() string {
	msg := m.current

	var header []string
	if m.opts.Settings.ShowAuthors && msg.Author != "" {
		header = append(header, m.styles.Author.Render(msg.Author))
	}
	if m.opts.Settings.ShowDates && !msg.Date.IsZero() {
		header = append(header, m.styles.Date.Render(msg.Date.Local().Format("2006-01-02 15:04")))
	}
	if msg.Kind != domain.ContentAny && msg.Kind != domain.ContentText {
		header = append(header, m.styles.Label.Render("["+string(msg.Kind)+"]"))
	}

	body := highlight(msg.Text, m.query.Value(), m.styles.Highlight)

	card := m.styles.Card
	if m.width > 4 {
		card = card.Width(m.width - 4)
	}
	if len(header) == 0 {
		return card.Render(body)
	}
	return card.Render(strings.Join(header, " ") + "\n" + body)
}

// highlight marks case-insensitive occurrences of the query's words in text
func highlight(text, query string, style lipgloss.Style) string {
	words := strings.Fields(strings.ToLower(query))
	if len(words) == 0 {
		return text
	}

	lower := strings.ToLower(text)
	if len(lower) != len(text) {
		// case folding changed byte offsets; skip marking
		return text
	}

	var b strings.Builder
	for i := 0; i < len(text); {
		matched := 0
		for _, w := range words {
			if strings.HasPrefix(lower[i:], w) && len(w) > matched {
				matched = len(w)
			}
		}
		if matched == 0 {
			b.WriteByte(text[i])
			i++
			continue
		}
		b.WriteString(style.Render(text[i : i+matched]))
		i += matched
	}
	return b.String()
}
