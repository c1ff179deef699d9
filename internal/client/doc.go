// Package client implements the interactive chat client runtime.
//
// It wires the terminal UI and the in-process service stack into a single
// process lifecycle: open the store, run the UI, close everything down.
package client
