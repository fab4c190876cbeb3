// Package dispatch runs ordered capability plans with per-entry fault
// isolation and assembles the task result returned to the caller.
package dispatch

// Status is the outcome of one plan entry or of a whole task.
type Status string

const (
	StatusSuccess Status = "success"
	StatusError   Status = "error"
)

// CallResult is the outcome of one plan entry.
type CallResult struct {
	Name    string
	Status  Status
	Payload any
	Message string

	// err keeps the typed failure for in-process classification; it never
	// crosses the wire.
	err error
}

// Err returns the typed failure behind an error result, if any.
func (r CallResult) Err() error {
	return r.err
}

// TaskResult is the ordered outcome of one plan. It is created per request
// and discarded; nothing in it is shared across tasks.
type TaskResult struct {
	TaskID  string
	Status  Status
	Results []CallResult
}
