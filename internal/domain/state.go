package domain

import "fmt"

// TaskState represents the lifecycle state of a task.
type TaskState string

const (
	TaskStateOpen           TaskState = "open"
	TaskStateWaiting        TaskState = "waiting"
	TaskStateWorkInProgress TaskState = "work_in_progress"
	TaskStateFinished       TaskState = "finished"
	TaskStateCancelled      TaskState = "cancelled"
)

// AllTaskStates returns all valid task states in display order.
func AllTaskStates() []TaskState {
	return []TaskState{
		TaskStateOpen,
		TaskStateWaiting,
		TaskStateWorkInProgress,
		TaskStateFinished,
		TaskStateCancelled,
	}
}

// IsValid returns true if the state is a known value.
func (s TaskState) IsValid() bool {
	switch s {
	case TaskStateOpen, TaskStateWaiting, TaskStateWorkInProgress, TaskStateFinished, TaskStateCancelled:
		return true
	}
	return false
}

// Display returns a human-readable representation of the state.
func (s TaskState) Display() string {
	switch s {
	case TaskStateOpen:
		return "Open"
	case TaskStateWaiting:
		return "Waiting"
	case TaskStateWorkInProgress:
		return "In Progress"
	case TaskStateFinished:
		return "Finished"
	case TaskStateCancelled:
		return "Cancelled"
	default:
		return string(s)
	}
}

// IsDone returns true for the finished state.
func (s TaskState) IsDone() bool {
	return s == TaskStateFinished
}

// Toggled returns the state a checkbox toggle moves to:
// finished goes back to open, everything else becomes finished.
func (s TaskState) Toggled() TaskState {
	if s == TaskStateFinished {
		return TaskStateOpen
	}
	return TaskStateFinished
}

// Next returns the following state in AllTaskStates order, wrapping around.
func (s TaskState) Next() TaskState {
	states := AllTaskStates()
	for i, st := range states {
		if st == s {
			return states[(i+1)%len(states)]
		}
	}
	return TaskStateOpen
}

// ParseTaskState parses a state name.
func ParseTaskState(s string) (TaskState, error) {
	st := TaskState(s)
	if !st.IsValid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidState, s)
	}
	return st, nil
}
