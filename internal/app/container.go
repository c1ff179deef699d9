// Package app assembles the application object graph. The Container builds
// each component lazily on first request and caches it, so construction
// order follows use and tests can swap any piece before it is first built.
package app

import (
	"context"
	"sync"

	"github.com/avoronov/go-chat-keeper/internal/config"
	"github.com/avoronov/go-chat-keeper/internal/logger"
	"github.com/avoronov/go-chat-keeper/internal/provider"
	"github.com/avoronov/go-chat-keeper/internal/service"
	"github.com/avoronov/go-chat-keeper/internal/store"
)

// Container owns the lazily-built application components. All getters are
// safe for concurrent use; each component is built at most once until Reset.
type Container struct {
	cfg    *config.StructuredConfig
	logger *logger.Logger

	mu       sync.Mutex
	db       *store.DB
	repos    *store.Repositories
	provider provider.Provider
	services *service.Services
}

// NewContainer constructs an empty container over the given configuration.
// Nothing is built until the first getter call.
func NewContainer(cfg *config.StructuredConfig, log *logger.Logger) *Container {
	return &Container{
		cfg:    cfg,
		logger: log,
	}
}

// Init eagerly opens the database and runs migrations. Calling it is
// optional: the first repository access triggers the same initialization.
func (c *Container) Init(ctx context.Context) error {
	return c.DB().Init(ctx)
}

// Close releases the database connection. The container stays usable; the
// next access re-initializes.
func (c *Container) Close() error {
	c.mu.Lock()
	db := c.db
	c.mu.Unlock()

	if db == nil {
		return nil
	}
	return db.Close()
}

// DB returns the shared connection manager, building it on first call.
func (c *Container) DB() *store.DB {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.db == nil {
		c.db = store.NewDB(c.cfg.Storage, c.logger)
	}
	return c.db
}

// Repositories returns the shared repository set over an initialized
// database. Initialization failures surface here. An overridden set is
// returned as-is without touching the database.
func (c *Container) Repositories(ctx context.Context) (*store.Repositories, error) {
	c.mu.Lock()
	if c.repos != nil {
		repos := c.repos
		c.mu.Unlock()
		return repos, nil
	}
	c.mu.Unlock()

	db := c.DB()
	if err := db.Init(ctx); err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.repos == nil {
		c.repos = store.NewRepositories(db, c.logger)
	}
	return c.repos, nil
}

// Provider returns the configured language-model backend.
func (c *Container) Provider() (provider.Provider, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.provider == nil {
		p, err := provider.New(c.cfg.Provider, c.logger)
		if err != nil {
			return nil, err
		}
		c.provider = p
	}
	return c.provider, nil
}

// Services returns the use-case layer over the shared repositories and
// provider, building the whole chain on first call.
func (c *Container) Services(ctx context.Context) (*service.Services, error) {
	repos, err := c.Repositories(ctx)
	if err != nil {
		return nil, err
	}
	p, err := c.Provider()
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.services == nil {
		c.services = service.NewServices(repos, c.cfg, p, c.logger)
	}
	return c.services, nil
}

// OverrideRepositories replaces the repository set before first use.
// Intended for tests and the in-memory mode.
func (c *Container) OverrideRepositories(repos *store.Repositories) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.repos = repos
	c.services = nil
}

// OverrideProvider replaces the provider backend before first use.
func (c *Container) OverrideProvider(p provider.Provider) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.provider = p
	c.services = nil
}

// Reset drops every cached component so the next access rebuilds from the
// current configuration. An open database connection is closed first.
func (c *Container) Reset() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	var err error
	if c.db != nil {
		err = c.db.Close()
	}
	c.db = nil
	c.repos = nil
	c.provider = nil
	c.services = nil

	return err
}
