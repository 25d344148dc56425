package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/Zuo-Peng/chatx/internal/search"
)

// linesPerItem is the number of terminal lines each result occupies.
const linesPerItem = 2

// renderList renders the left panel: matching messages with scrolling.
func (m model) renderList(width, height int) string {
	if len(m.hits) == 0 {
		return lipgloss.NewStyle().
			Foreground(colorDim).
			Width(width).
			Height(height).
			Align(lipgloss.Center, lipgloss.Center).
			Render("No results")
	}

	var lines []string
	for i, h := range m.hits {
		if i < m.listOffset {
			continue
		}
		if len(lines)+linesPerItem > height {
			break
		}
		lines = append(lines, formatHitLines(h, m.query, width, i == m.cursor)...)
	}

	// Pad remaining lines
	for len(lines) < height {
		lines = append(lines, strings.Repeat(" ", width))
	}

	return strings.Join(lines, "\n")
}

// formatHitLines formats a single hit as two lines:
//
//	line 1: [>] sender  date
//	line 2:    snippet (dimmed)
func formatHitLines(h search.Hit, query string, width int, selected bool) []string {
	msg := h.Message

	// "2024-02-01T09:15:00" -> "2024-02-01 09:15", raw text when unparsed
	date := msg.RawTimestamp
	if ts := msg.FormatTime(); ts != "" {
		date = strings.Replace(ts[:16], "T", " ", 1)
	}

	sender := msg.Sender
	senderMax := max(width-2-runewidth.StringWidth(date)-1, 0)
	if runewidth.StringWidth(sender) > senderMax {
		sender = runewidth.Truncate(sender, senderMax, "")
	}

	line1 := fmt.Sprintf("%s %s", styleSender.Render(sender), lipgloss.NewStyle().Foreground(colorDim).Render(date))
	if selected {
		line1 = styleListSelected.Render("> ") + line1
	} else {
		line1 = "  " + line1
	}

	snippet := search.Snippet(msg.Body, query, 40)
	snippet = strings.NewReplacer("\n", " ", "\t", " ", ">>>", "", "<<<", "").Replace(snippet)
	snippetMax := max(width-4, 0) // indent
	if runewidth.StringWidth(snippet) > snippetMax {
		snippet = runewidth.Truncate(snippet, snippetMax, "")
	}
	line2 := "    " + lipgloss.NewStyle().Foreground(colorDim).Render(snippet)

	return []string{line1, line2}
}

// adjustListScroll keeps the cursor visible within the list viewport.
func (m *model) adjustListScroll(listHeight int) {
	visibleItems := max(listHeight/linesPerItem, 1)
	if m.cursor < m.listOffset {
		m.listOffset = m.cursor
	}
	if m.cursor >= m.listOffset+visibleItems {
		m.listOffset = m.cursor - visibleItems + 1
	}
}
