package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
)

type welcomeModel struct {
	input      textinput.Model
	submitting bool
}

func newWelcomeModel() welcomeModel {
	input := textinput.New()
	input.Placeholder = "username"
	input.CharLimit = 64
	input.Width = 40
	input.Focus()

	return welcomeModel{input: input}
}

func (m welcomeModel) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("go-chat-keeper"))
	b.WriteString("\n\nWho is chatting?\n\n")
	b.WriteString("Username │ [")
	b.WriteString(m.input.View())
	b.WriteString("]\n")

	if m.submitting {
		b.WriteString("\n[Connecting...]\n")
	} else {
		b.WriteString("\n[Start]\n")
	}

	b.WriteString("\n")
	b.WriteString(helpStyle.Render("enter: start │ ctrl+c: quit"))
	return b.String()
}
