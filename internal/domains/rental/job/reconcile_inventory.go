package job

import (
	"context"
	"fmt"

	"github.com/hibiken/asynq"

	"bookrental-backend/internal/domains/rental/service"
	"bookrental-backend/pkg/logger"
)

// ================================================
// INVENTORY RECONCILIATION JOB HANDLER
// ================================================

// ReconcileInventoryHandler only reports drift; counters are fixed by hand
type ReconcileInventoryHandler struct {
	rentalService service.ServiceInterface
}

func NewReconcileInventoryHandler(rentalService service.ServiceInterface) *ReconcileInventoryHandler {
	return &ReconcileInventoryHandler{rentalService: rentalService}
}

func (h *ReconcileInventoryHandler) ProcessTask(ctx context.Context, _ *asynq.Task) error {
	mismatches, err := h.rentalService.ReconcileInventory(ctx)
	if err != nil {
		return fmt.Errorf("reconcile inventory: %w", err)
	}

	if len(mismatches) > 0 {
		logger.Warn("Inventory drift detected", map[string]interface{}{
			"books": len(mismatches),
		})
	}
	return nil
}
