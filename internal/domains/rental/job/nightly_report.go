package job

import (
	"context"
	"fmt"
	"time"

	"github.com/hibiken/asynq"

	"bookrental-backend/internal/domains/rental/model"
	"bookrental-backend/internal/domains/rental/service"
	"bookrental-backend/internal/shared/utils"
	"bookrental-backend/pkg/logger"
)

const (
	reportPrefix      = "reports/rentals/"
	reportContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// ReportStore is where finished reports land (MinIO in production)
type ReportStore interface {
	Upload(ctx context.Context, key string, data []byte, contentType string) (string, error)
	DeleteOlderThan(ctx context.Context, prefix string, cutoff time.Time) (int, error)
}

// NightlyReportPayload may pin the report to a status; empty means all rentals
type NightlyReportPayload struct {
	Status model.Status `json:"status,omitempty"`
}

// ================================================
// NIGHTLY RENTAL REPORT JOB HANDLER
// ================================================

type NightlyReportHandler struct {
	rentalService service.ServiceInterface
	store         ReportStore
	retention     time.Duration
	now           func() time.Time
}

func NewNightlyReportHandler(rentalService service.ServiceInterface, store ReportStore, retention time.Duration) *NightlyReportHandler {
	return &NightlyReportHandler{
		rentalService: rentalService,
		store:         store,
		retention:     retention,
		now:           func() time.Time { return time.Now().UTC() },
	}
}

func reportKey(at time.Time, status model.Status) string {
	name := "all"
	if status != "" {
		name = string(status)
	}
	return fmt.Sprintf("%s%s_%s.xlsx", reportPrefix, at.Format("2006-01-02"), name)
}

func (h *NightlyReportHandler) ProcessTask(ctx context.Context, t *asynq.Task) error {
	var payload NightlyReportPayload
	if err := utils.UnmarshalTask(t, &payload); err != nil {
		logger.Error("Failed to unmarshal nightly report payload, reporting all rentals", err)
		payload = NightlyReportPayload{}
	}

	now := h.now()
	f, rows, err := h.rentalService.ExportRentals(ctx, model.RentalFilter{Status: payload.Status})
	if err != nil {
		return fmt.Errorf("build rental report: %w", err)
	}
	defer f.Close()

	buf, err := f.WriteToBuffer()
	if err != nil {
		return fmt.Errorf("serialize rental report: %w", err)
	}

	key := reportKey(now, payload.Status)
	url, err := h.store.Upload(ctx, key, buf.Bytes(), reportContentType)
	if err != nil {
		return fmt.Errorf("upload rental report: %w", err)
	}

	logger.Info("Nightly rental report uploaded", map[string]interface{}{
		"key":  key,
		"url":  url,
		"rows": rows,
	})

	if h.retention > 0 {
		removed, err := h.store.DeleteOlderThan(ctx, reportPrefix, now.Add(-h.retention))
		if err != nil {
			// the new report is already stored
			logger.Error("Failed to prune old rental reports", err)
			return nil
		}
		if removed > 0 {
			logger.Info("Pruned old rental reports", map[string]interface{}{"removed": removed})
		}
	}
	return nil
}
