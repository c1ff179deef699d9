package client

// Client is the lifecycle contract a runnable client fulfills.
type Client interface {
	// Run starts the client and blocks until it exits.
	Run() error
}
