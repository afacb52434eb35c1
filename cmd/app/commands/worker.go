package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/allisson/payments/internal/app"
	"github.com/allisson/payments/internal/config"
)

// RunWorker starts the outbox processor and the reconciliation sweeper as
// long-running loops. Blocks until receiving SIGINT/SIGTERM or until one of
// the loops fails.
func RunWorker(ctx context.Context) error {
	// Load configuration
	cfg := config.Load()

	// Create DI container
	container := app.NewContainer(cfg)

	// Get logger from container
	logger := container.Logger()
	logger.Info("starting workers")

	// Ensure cleanup on exit
	defer closeContainer(container, logger)

	outboxUseCase, err := container.OutboxUseCase()
	if err != nil {
		return fmt.Errorf("failed to initialize outbox use case: %w", err)
	}

	reconciliationUseCase, err := container.ReconciliationUseCase()
	if err != nil {
		return fmt.Errorf("failed to initialize reconciliation use case: %w", err)
	}

	// Setup graceful shutdown
	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		return outboxUseCase.Start(groupCtx)
	})
	group.Go(func() error {
		return reconciliationUseCase.Start(groupCtx)
	})

	if err := group.Wait(); err != nil && ctx.Err() == nil {
		return fmt.Errorf("worker error: %w", err)
	}

	logger.Info("workers stopped")
	return nil
}
