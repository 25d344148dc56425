package tui

import (
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/Zuo-Peng/chatx/internal/parse"
	"github.com/Zuo-Peng/chatx/internal/render"
)

// previewRenderedMsg is sent when an async preview render completes.
type previewRenderedMsg struct {
	hit     int
	content string
	hitLine int
}

// loadPreviewCmd returns a tea.Cmd that renders the conversation preview async.
func loadPreviewCmd(chat *parse.Chat, hit int, query string, width int) tea.Cmd {
	return func() tea.Msg {
		content, hitLine := render.Conversation(chat.Messages, render.Options{
			Hit:     hit,
			Context: -1,
			Width:   width,
			Query:   query,
			Title:   chat.Path,
		})
		return previewRenderedMsg{hit: hit, content: content, hitLine: hitLine}
	}
}

// newViewport creates a new viewport model with the given dimensions.
func newViewport(width, height int) viewport.Model {
	vp := viewport.New(width, height)
	vp.Style = stylePanelBorder
	return vp
}
