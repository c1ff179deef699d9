package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/avoronov/go-chat-keeper/models"
)

// renderTranscript lays out the conversation oldest first, each message as a
// role label followed by word-wrapped content.
func renderTranscript(lines []chatLine, width int) string {
	if len(lines) == 0 {
		return helpStyle.Render("No messages yet. Say something!")
	}

	body := lipgloss.NewStyle().Width(width)

	var b strings.Builder
	for i, line := range lines {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(roleLabel(line.role))
		b.WriteString("\n")
		b.WriteString(body.Render(line.content))
		b.WriteString("\n")
	}
	return b.String()
}

func roleLabel(role models.MessageRole) string {
	switch role {
	case models.RoleAssistant:
		return assistantLabelStyle.Render("Assistant")
	case models.RoleSystem:
		return helpStyle.Render("System")
	default:
		return userLabelStyle.Render("You")
	}
}
