package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/allisson/payments/internal/app"
	"github.com/allisson/payments/internal/config"
	reconciliationUsecase "github.com/allisson/payments/internal/reconciliation/usecase"
)

// RunReconcileSweep runs one reconciliation sweep over stale intents and
// refunds and prints the result. Supports text and JSON output formats.
//
// Requirements: Database must be migrated and accessible, and provider
// credentials must be configured for the stores being reconciled.
func RunReconcileSweep(ctx context.Context, format string) error {
	// Load configuration
	cfg := config.Load()

	// Create DI container
	container := app.NewContainer(cfg)

	// Get logger from container
	logger := container.Logger()

	// Ensure cleanup on exit
	defer closeContainer(container, logger)

	reconciliationUseCase, err := container.ReconciliationUseCase()
	if err != nil {
		return fmt.Errorf("failed to initialize reconciliation use case: %w", err)
	}

	result, err := reconciliationUseCase.Run(ctx)
	if err != nil {
		return fmt.Errorf("failed to run reconciliation sweep: %w", err)
	}

	if format == "json" {
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		return encoder.Encode(result)
	}

	outputReconcileText(result)
	return nil
}

func outputReconcileText(result reconciliationUsecase.Result) {
	fmt.Printf("Checked intents: %d\n", result.CheckedIntents)
	fmt.Printf("Synced intents:  %d\n", result.SyncedIntents)
	fmt.Printf("Checked refunds: %d\n", result.CheckedRefunds)
	fmt.Printf("Synced refunds:  %d\n", result.SyncedRefunds)
	fmt.Printf("Failed items:    %d\n", result.Failed)
}
