package container

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"idsampler/adapters/ledger"
	"idsampler/app"
	"idsampler/internal/config"
	"idsampler/internal/reconcile"
	"idsampler/ports"
)

// Container holds all application dependencies and manages their lifecycle
type Container struct {
	Config *config.Config
	Logger *zap.Logger

	// Infrastructure
	Ledger ports.RunLedgerPort
	ledger *ledger.Repository

	// Services
	Runs *app.RunService
}

// New creates a new dependency injection container
func New(cfg *config.Config, logger *zap.Logger) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Container{
		Config: cfg,
		Logger: logger,
	}, nil
}

// Init opens the run ledger when one is configured and builds the services
func (c *Container) Init(ctx context.Context) error {
	if err := c.initLedger(ctx); err != nil {
		return fmt.Errorf("failed to initialize run ledger: %w", err)
	}

	c.Runs = app.NewRunService(reconcile.MT19937{}, c.Ledger, c.Logger, config.Version)

	c.Logger.Info("container initialized",
		zap.Bool("ledger", c.Config.Ledger.Enabled()),
		zap.String("version", config.Version))
	return nil
}

func (c *Container) initLedger(ctx context.Context) error {
	if !c.Config.Ledger.Enabled() {
		c.Ledger = ledger.Noop{}
		return nil
	}

	repo, err := ledger.Open(ctx, c.Config.Ledger.Driver, c.Config.Ledger.DSN, c.Logger)
	if err != nil {
		return err
	}
	c.ledger = repo
	c.Ledger = repo
	return nil
}

// Shutdown gracefully shuts down all components
func (c *Container) Shutdown(ctx context.Context) error {
	if c.ledger != nil {
		return c.ledger.Close()
	}
	return nil
}
