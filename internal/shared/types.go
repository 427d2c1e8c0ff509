package shared

// Asynq task types
const (
	TypeSweepOverdueRentals = "rental:sweep_overdue"
	TypeReconcileInventory  = "inventory:reconcile"
	TypeNightlyReport       = "report:nightly"
)

// Asynq queues
const (
	QueueMaintenance = "maintenance"
	QueueReports     = "reports"
)

// Context keys set by the auth middleware
const (
	ContextStaffID   = "staff_id"
	ContextStaffRole = "staff_role"
	ContextEmail     = "staff_email"
	ContextRequestID = "request_id"
)
