package tui

import "errors"

// ErrUserQuit reports that the user closed the application deliberately.
var ErrUserQuit = errors.New("user quit")
