package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/allisson/payments/internal/app"
	"github.com/allisson/payments/internal/config"
	outboxUsecase "github.com/allisson/payments/internal/outbox/usecase"
)

// RunOutboxBatch processes one batch of pending outbox events and prints the
// result. Supports text and JSON output formats.
//
// Requirements: Database must be migrated and accessible.
func RunOutboxBatch(ctx context.Context, format string) error {
	// Load configuration
	cfg := config.Load()

	// Create DI container
	container := app.NewContainer(cfg)

	// Get logger from container
	logger := container.Logger()

	// Ensure cleanup on exit
	defer closeContainer(container, logger)

	outboxUseCase, err := container.OutboxUseCase()
	if err != nil {
		return fmt.Errorf("failed to initialize outbox use case: %w", err)
	}

	result, err := outboxUseCase.ProcessEvents(ctx)
	if err != nil {
		return fmt.Errorf("failed to process outbox events: %w", err)
	}

	if format == "json" {
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		return encoder.Encode(result)
	}

	outputOutboxText(result)
	return nil
}

func outputOutboxText(result outboxUsecase.Result) {
	fmt.Printf("Processed events: %d\n", result.Processed)
	fmt.Printf("Failed events:    %d\n", result.Failed)
}
