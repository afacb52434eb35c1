package http

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/allisson/payments/internal/httputil"
	outboxUsecase "github.com/allisson/payments/internal/outbox/usecase"
	reconciliationUsecase "github.com/allisson/payments/internal/reconciliation/usecase"
)

// reconcileTimeout bounds a triggered sweep; the periodic worker picks up
// whatever a cut-off sweep left behind.
const reconcileTimeout = 5 * time.Minute

// WorkerHandler exposes on-demand triggers for the background workers, used
// by operators and scheduled jobs instead of waiting for the next tick.
type WorkerHandler struct {
	outbox     outboxUsecase.UseCase
	reconciler reconciliationUsecase.UseCase
	logger     *slog.Logger
}

// NewWorkerHandler creates a new worker handler with required dependencies.
func NewWorkerHandler(
	outbox outboxUsecase.UseCase,
	reconciler reconciliationUsecase.UseCase,
	logger *slog.Logger,
) *WorkerHandler {
	return &WorkerHandler{
		outbox:     outbox,
		reconciler: reconciler,
		logger:     logger,
	}
}

// RunOutboxHandler drains one batch of pending outbox events.
// POST /v1/workers/outbox
// Returns 200 OK with the batch result.
func (h *WorkerHandler) RunOutboxHandler(c *gin.Context) {
	result, err := h.outbox.ProcessEvents(c.Request.Context())
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, result)
}

// RunReconcileHandler schedules one reconciliation sweep.
// POST /v1/workers/reconcile
// Returns 202 Accepted immediately; a sweep queries every provider and can
// take far longer than a sane request timeout.
func (h *WorkerHandler) RunReconcileHandler(c *gin.Context) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), reconcileTimeout)
		defer cancel()

		result, err := h.reconciler.Run(ctx)
		if err != nil {
			h.logger.Error("triggered reconciliation sweep failed", slog.Any("error", err))
			return
		}
		h.logger.Info("triggered reconciliation sweep finished",
			slog.Int("checked_intents", result.CheckedIntents),
			slog.Int("synced_intents", result.SyncedIntents),
			slog.Int("checked_refunds", result.CheckedRefunds),
			slog.Int("synced_refunds", result.SyncedRefunds),
			slog.Int("failed", result.Failed),
		)
	}()

	c.JSON(http.StatusAccepted, gin.H{"status": "scheduled"})
}
