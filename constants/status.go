package constants

// TaskStatus is the lifecycle state of one candidate's unit of work.
type TaskStatus string

// Stable values (exported as-is in CSV/JSON and the results store).
const (
	TaskPending   TaskStatus = "PENDING"   // submitted, not yet picked up by a worker
	TaskRunning   TaskStatus = "RUNNING"   // extraction in progress
	TaskSucceeded TaskStatus = "SUCCEEDED" // record complete
	TaskFailed    TaskStatus = "FAILED"    // terminal failure, record carries sentinels
)

// Terminal reports whether no further transition is allowed.
func (s TaskStatus) Terminal() bool {
	return s == TaskSucceeded || s == TaskFailed
}

// CanTransition enforces PENDING -> RUNNING -> {SUCCEEDED, FAILED}. A task
// that never started (run canceled) may go straight from PENDING to FAILED.
func (s TaskStatus) CanTransition(next TaskStatus) bool {
	switch s {
	case TaskPending:
		return next == TaskRunning || next == TaskFailed
	case TaskRunning:
		return next.Terminal()
	default:
		return false
	}
}
