package job

import (
	"context"
	"fmt"

	"github.com/hibiken/asynq"

	"bookrental-backend/internal/domains/rental/service"
	"bookrental-backend/pkg/logger"
)

// ================================================
// SWEEP OVERDUE RENTALS JOB HANDLER
// ================================================

type SweepOverdueHandler struct {
	rentalService service.ServiceInterface
}

func NewSweepOverdueHandler(rentalService service.ServiceInterface) *SweepOverdueHandler {
	return &SweepOverdueHandler{rentalService: rentalService}
}

func (h *SweepOverdueHandler) ProcessTask(ctx context.Context, _ *asynq.Task) error {
	logger.Info("Starting SweepOverdue job", map[string]interface{}{})

	updated, err := h.rentalService.SweepOverdue(ctx)
	if err != nil {
		return fmt.Errorf("sweep overdue rentals: %w", err)
	}

	logger.Info("Completed SweepOverdue job", map[string]interface{}{
		"updated_count": updated,
	})
	return nil
}
