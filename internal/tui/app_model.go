package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/avoronov/go-chat-keeper/internal/service"
	"github.com/avoronov/go-chat-keeper/models"
)

// historyPageSize is how many stored messages the chat screen loads when a
// session opens.
const historyPageSize = 200

type screen int

const (
	screenWelcome screen = iota
	screenChat
)

type appModel struct {
	ctx           context.Context
	services      *service.Services
	currentScreen screen

	welcome welcomeModel
	chat    chatModel

	user         models.User
	stream       chan tea.Msg
	showError    bool
	errorOverlay errorOverlayModel
	showConfirm  bool
	confirm      confirmModel
	err          error
}

func newAppModel(ctx context.Context, services *service.Services) appModel {
	m := appModel{
		ctx:           ctx,
		services:      services,
		currentScreen: screenWelcome,
		welcome:       newWelcomeModel(),
		chat:          newChatModel(),
	}
	m.chat.provider = services.Chat.ProviderName()
	return m
}

func (m appModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m appModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if key.Matches(msg, keys.quit) {
			m.err = ErrUserQuit
			return m, tea.Quit
		}
		if m.showError {
			if key.Matches(msg, keys.enter) || key.Matches(msg, keys.esc) {
				m.showError = false
				m.errorOverlay.message = ""
			}
			return m, nil
		}
		if m.showConfirm {
			if key.Matches(msg, keys.yes) {
				m.showConfirm = false
				return m, m.cmdClearHistory()
			}
			if key.Matches(msg, keys.no) {
				m.showConfirm = false
			}
			return m, nil
		}
	case tea.WindowSizeMsg:
		m.chat.resize(msg.Width, msg.Height)
		return m, nil
	case spinner.TickMsg:
		if m.chat.loading || m.chat.streaming {
			var cmd tea.Cmd
			m.chat.spinner, cmd = m.chat.spinner.Update(msg)
			return m, cmd
		}
		return m, nil
	case sessionOpenedMsg:
		m.welcome.submitting = false
		if msg.err != nil {
			m.showErrorf(msg.err.Error())
			return m, nil
		}
		m.user = msg.user
		m.chat.username = msg.user.Username
		m.chat.loading = true
		m.currentScreen = screenChat
		return m, tea.Batch(m.chat.spinner.Tick, m.cmdLoadHistory())
	case historyLoadedMsg:
		m.chat.loading = false
		if msg.err != nil {
			m.showErrorf(msg.err.Error())
			return m, nil
		}
		// stored history arrives most recent first
		m.chat.lines = m.chat.lines[:0]
		for i := len(msg.messages) - 1; i >= 0; i-- {
			m.chat.lines = append(m.chat.lines, chatLine{
				role:    msg.messages[i].Role,
				content: msg.messages[i].Content,
			})
		}
		m.chat.refresh()
		return m, nil
	case streamChunkMsg:
		m.chat.appendChunk(msg.chunk)
		return m, m.waitForStream()
	case streamDoneMsg:
		m.chat.streaming = false
		m.stream = nil
		if msg.err != nil {
			// the user's message is already persisted; drop the
			// half-rendered reply and surface the failure
			if n := len(m.chat.lines); n > 0 && m.chat.lines[n-1].role == models.RoleAssistant {
				m.chat.lines = m.chat.lines[:n-1]
			}
			m.chat.refresh()
			m.showErrorf(msg.err.Error())
			return m, nil
		}
		if n := len(m.chat.lines); n > 0 && m.chat.lines[n-1].role == models.RoleAssistant {
			m.chat.lines[n-1].content = msg.message.Content
		}
		m.chat.refresh()
		return m, nil
	case historyClearedMsg:
		if msg.err != nil {
			m.showErrorf(msg.err.Error())
			return m, nil
		}
		m.chat.lines = nil
		m.chat.status = fmt.Sprintf("History cleared (%d messages removed)", msg.removed)
		m.chat.refresh()
		return m, cmdClearStatus()
	case copiedMsg:
		m.chat.status = "Copied!"
		return m, cmdClearStatus()
	case errorMsg:
		m.showErrorf(msg.err.Error())
		return m, nil
	case clearStatusMsg:
		m.chat.status = ""
		return m, nil
	}

	switch m.currentScreen {
	case screenWelcome:
		return m.updateWelcome(msg)
	case screenChat:
		return m.updateChat(msg)
	}

	return m, nil
}

func (m appModel) View() string {
	var body string
	switch m.currentScreen {
	case screenWelcome:
		body = m.welcome.View()
	case screenChat:
		body = m.chat.View()
	}

	if m.showConfirm {
		body += "\n\n" + m.confirm.View()
	}
	if m.showError {
		body += "\n\n" + m.errorOverlay.View()
	}

	return appStyle.Render(body)
}

func (m *appModel) showErrorf(message string) {
	m.showError = true
	m.errorOverlay.message = message
}

func (m appModel) updateWelcome(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if ok {
		switch {
		case key.Matches(keyMsg, keys.esc):
			m.err = ErrUserQuit
			return m, tea.Quit
		case key.Matches(keyMsg, keys.enter):
			if m.welcome.submitting {
				return m, nil
			}
			username := strings.TrimSpace(m.welcome.input.Value())
			if username == "" {
				m.showErrorf("Username is required")
				return m, nil
			}
			m.welcome.submitting = true
			return m, m.cmdOpenSession(username)
		}
	}

	var cmd tea.Cmd
	m.welcome.input, cmd = m.welcome.input.Update(msg)
	return m, cmd
}

func (m appModel) updateChat(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if ok {
		switch {
		case key.Matches(keyMsg, keys.esc):
			m.currentScreen = screenWelcome
			m.welcome = newWelcomeModel()
			m.chat.lines = nil
			m.chat.input.Reset()
			return m, nil
		case key.Matches(keyMsg, keys.copyReply):
			text, found := m.chat.lastAssistantReply()
			if !found {
				return m, nil
			}
			return m, cmdCopyToClipboard(text)
		case key.Matches(keyMsg, keys.clear):
			if m.chat.streaming {
				return m, nil
			}
			m.showConfirm = true
			m.confirm.message = fmt.Sprintf("Delete the whole history for %s?", m.user.Username)
			return m, nil
		case key.Matches(keyMsg, keys.pageUp):
			m.chat.viewport.HalfViewUp()
			return m, nil
		case key.Matches(keyMsg, keys.pageDown):
			m.chat.viewport.HalfViewDown()
			return m, nil
		case key.Matches(keyMsg, keys.enter):
			if m.chat.streaming || m.chat.loading {
				return m, nil
			}
			content := strings.TrimSpace(m.chat.input.Value())
			if content == "" {
				return m, nil
			}
			m.chat.input.Reset()
			m.chat.lines = append(m.chat.lines,
				chatLine{role: models.RoleUser, content: content},
				chatLine{role: models.RoleAssistant})
			m.chat.streaming = true
			m.chat.refresh()
			m.stream = make(chan tea.Msg, 16)
			return m, tea.Batch(m.chat.spinner.Tick, m.cmdSend(content), m.waitForStream())
		}
	}

	var cmd tea.Cmd
	m.chat.input, cmd = m.chat.input.Update(msg)
	return m, cmd
}

func (m appModel) cmdOpenSession(username string) tea.Cmd {
	ctx := m.ctx
	sessions := m.services.Session
	return func() tea.Msg {
		user, _, err := sessions.Open(ctx, username)
		return sessionOpenedMsg{user: user, err: err}
	}
}

func (m appModel) cmdLoadHistory() tea.Cmd {
	ctx := m.ctx
	history := m.services.History
	userID := m.user.ID
	return func() tea.Msg {
		messages, err := history.Messages(ctx, userID, historyPageSize, 0)
		return historyLoadedMsg{messages: messages, err: err}
	}
}

// cmdSend runs the chat turn in the background and feeds stream events
// through the model's channel. waitForStream drains them one at a time so
// every chunk repaints the transcript.
func (m appModel) cmdSend(content string) tea.Cmd {
	ctx := m.ctx
	chat := m.services.Chat
	userID := m.user.ID
	stream := m.stream
	return func() tea.Msg {
		go func() {
			message, err := chat.Send(ctx, userID, content, func(chunk string) error {
				stream <- streamChunkMsg{chunk: chunk}
				return nil
			})
			stream <- streamDoneMsg{message: message, err: err}
			close(stream)
		}()
		return nil
	}
}

func (m appModel) waitForStream() tea.Cmd {
	stream := m.stream
	if stream == nil {
		return nil
	}
	return func() tea.Msg {
		return <-stream
	}
}

func (m appModel) cmdClearHistory() tea.Cmd {
	ctx := m.ctx
	history := m.services.History
	userID := m.user.ID
	return func() tea.Msg {
		removed, err := history.Clear(ctx, userID)
		return historyClearedMsg{removed: removed, err: err}
	}
}

func cmdCopyToClipboard(text string) tea.Cmd {
	return func() tea.Msg {
		if err := clipboard.WriteAll(text); err != nil {
			return errorMsg{err: fmt.Errorf("copy to clipboard: %w", err)}
		}
		return copiedMsg{}
	}
}

func cmdClearStatus() tea.Cmd {
	return tea.Tick(2*time.Second, func(time.Time) tea.Msg {
		return clearStatusMsg{}
	})
}
