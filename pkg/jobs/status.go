package jobs

import "strings"

// Status is the lifecycle state of a job or project update as reported
// by the Tower API.
//
// A job only moves forward: pending/new -> waiting -> running -> one of
// the terminal states. No terminal status ever reverts.
type Status string

const (
	// transient states
	StatusNew     Status = "new"
	StatusPending Status = "pending"
	StatusWaiting Status = "waiting"
	StatusRunning Status = "running"

	// terminal states
	StatusSuccessful Status = "successful"
	StatusFailed     Status = "failed"
	StatusError      Status = "error"
	StatusCanceled   Status = "canceled"
)

// IsTerminal reports whether no further transition can occur.
func (s Status) IsTerminal() bool {
	switch s {
	case StatusSuccessful, StatusFailed, StatusError, StatusCanceled:
		return true
	default:
		return false
	}
}

// ToStatus normalizes a raw API status string.
func ToStatus(s string) Status {
	return Status(strings.ToLower(strings.TrimSpace(s)))
}
