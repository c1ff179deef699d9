// Package tui implements the terminal chat client on top of Bubble Tea.
//
// The interface has two screens: a welcome screen that asks for a username
// and a chat screen with a scrollable transcript and a message input.
// Assistant replies stream into the transcript token by token.
package tui
