package main

import (
	"time"

	"github.com/hibiken/asynq"

	rentalJob "bookrental-backend/internal/domains/rental/job"
	"bookrental-backend/internal/shared"
	"bookrental-backend/pkg/container"
)

// HandlerRegistry holds all job handlers
type HandlerRegistry struct {
	// Maintenance handlers
	sweepOverdue *rentalJob.SweepOverdueHandler
	reconcile    *rentalJob.ReconcileInventoryHandler

	// Report handlers
	nightlyReport *rentalJob.NightlyReportHandler
}

// initializeHandlers creates all job handlers with their dependencies
func initializeHandlers(c *container.Container, cfg *Config, reports rentalJob.ReportStore) *HandlerRegistry {
	retention := time.Duration(cfg.Worker.ReportRetentionHours) * time.Hour

	return &HandlerRegistry{
		sweepOverdue:  rentalJob.NewSweepOverdueHandler(c.RentalService),
		reconcile:     rentalJob.NewReconcileInventoryHandler(c.RentalService),
		nightlyReport: rentalJob.NewNightlyReportHandler(c.RentalService, reports, retention),
	}
}

// RegisterHandlers registers all handlers with the mux
func (h *HandlerRegistry) RegisterHandlers(mux *asynq.ServeMux) {
	// Maintenance tasks
	mux.HandleFunc(shared.TypeSweepOverdueRentals, h.sweepOverdue.ProcessTask)
	mux.HandleFunc(shared.TypeReconcileInventory, h.reconcile.ProcessTask)

	// Report tasks
	mux.HandleFunc(shared.TypeNightlyReport, h.nightlyReport.ProcessTask)
}
