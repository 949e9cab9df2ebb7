// Package ops implements the merge and split element operations:
// precondition validation, preview, transactional execute, and rollback.
package ops

// Status is an operation's lifecycle state.
type Status string

const (
	StatusPending    Status = "pending"
	StatusValidating Status = "validating"
	StatusRunning    Status = "running"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
	StatusCancelled  Status = "cancelled"
)
