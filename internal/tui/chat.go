package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"

	"github.com/avoronov/go-chat-keeper/models"
)

const (
	defaultWidth  = 80
	defaultHeight = 24
	inputHeight   = 3
)

type chatLine struct {
	role    models.MessageRole
	content string
}

type chatModel struct {
	viewport viewport.Model
	input    textarea.Model
	spinner  spinner.Model

	username  string
	provider  string
	lines     []chatLine
	loading   bool
	streaming bool
	status    string
	width     int
	height    int
}

func newChatModel() chatModel {
	input := textarea.New()
	input.Placeholder = "Type a message..."
	input.ShowLineNumbers = false
	input.CharLimit = 0
	input.SetHeight(inputHeight)
	input.KeyMap.InsertNewline.SetEnabled(false)
	input.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	m := chatModel{
		viewport: viewport.New(defaultWidth-4, defaultHeight-inputHeight-7),
		input:    input,
		spinner:  sp,
		width:    defaultWidth,
		height:   defaultHeight,
	}
	m.input.SetWidth(defaultWidth - 4)
	return m
}

func (m *chatModel) resize(width, height int) {
	m.width = width
	m.height = height

	// title, status and help lines plus the outer padding eat seven rows
	inner := width - 4
	if inner < 20 {
		inner = 20
	}
	body := height - inputHeight - 7
	if body < 3 {
		body = 3
	}

	m.viewport.Width = inner
	m.viewport.Height = body
	m.input.SetWidth(inner)
	m.refresh()
}

// refresh re-renders the transcript into the viewport and pins the view to
// the newest message.
func (m *chatModel) refresh() {
	m.viewport.SetContent(renderTranscript(m.lines, m.viewport.Width))
	m.viewport.GotoBottom()
}

// appendChunk extends the content of the trailing line. Used while an
// assistant reply is streaming in.
func (m *chatModel) appendChunk(chunk string) {
	if len(m.lines) == 0 {
		return
	}
	m.lines[len(m.lines)-1].content += chunk
	m.refresh()
}

// lastAssistantReply returns the text of the most recent assistant message.
func (m *chatModel) lastAssistantReply() (string, bool) {
	for i := len(m.lines) - 1; i >= 0; i-- {
		if m.lines[i].role == models.RoleAssistant && m.lines[i].content != "" {
			return m.lines[i].content, true
		}
	}
	return "", false
}

func (m chatModel) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(fmt.Sprintf("go-chat-keeper │ %s @ %s", m.username, m.provider)))
	b.WriteString("\n\n")
	b.WriteString(m.viewport.View())
	b.WriteString("\n")

	switch {
	case m.loading:
		b.WriteString(statusStyle.Render(m.spinner.View() + " loading history..."))
	case m.streaming:
		b.WriteString(statusStyle.Render(m.spinner.View() + " thinking..."))
	case m.status != "":
		b.WriteString(statusStyle.Render(m.status))
	default:
		b.WriteString(" ")
	}
	b.WriteString("\n\n")

	b.WriteString(m.input.View())
	b.WriteString("\n")
	b.WriteString(helpStyle.Render("enter: send │ ctrl+y: copy reply │ ctrl+l: clear history │ esc: change user │ ctrl+c: quit"))
	return b.String()
}
