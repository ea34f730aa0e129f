package models

// Coverage audit status values.
const (
	AuditStatusEnqueued  = "enqueued"
	AuditStatusRunning   = "running"
	AuditStatusCompleted = "completed"
	AuditStatusFailed    = "failed"
)
