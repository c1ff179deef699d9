package tui

import (
	"github.com/avoronov/go-chat-keeper/models"
)

type sessionOpenedMsg struct {
	user models.User
	err  error
}

type historyLoadedMsg struct {
	messages []models.ChatMessage
	err      error
}

type streamChunkMsg struct {
	chunk string
}

type streamDoneMsg struct {
	message models.ChatMessage
	err     error
}

type historyClearedMsg struct {
	removed int64
	err     error
}

type copiedMsg struct{}

type errorMsg struct {
	err error
}

type clearStatusMsg struct{}
