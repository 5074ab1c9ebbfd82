package domain

import (
	"errors"
	"testing"
)

func TestTaskState_IsValid(t *testing.T) {
	tests := []struct {
		state  TaskState
		expect bool
	}{
		{TaskStateOpen, true},
		{TaskStateWaiting, true},
		{TaskStateWorkInProgress, true},
		{TaskStateFinished, true},
		{TaskStateCancelled, true},
		{"done", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(string(tt.state), func(t *testing.T) {
			if got := tt.state.IsValid(); got != tt.expect {
				t.Errorf("TaskState(%q).IsValid() = %v, want %v", tt.state, got, tt.expect)
			}
		})
	}
}

func TestTaskState_Toggled(t *testing.T) {
	tests := []struct {
		from TaskState
		to   TaskState
	}{
		{TaskStateOpen, TaskStateFinished},
		{TaskStateFinished, TaskStateOpen},
		{TaskStateWaiting, TaskStateFinished},
		{TaskStateWorkInProgress, TaskStateFinished},
		{TaskStateCancelled, TaskStateFinished},
	}

	for _, tt := range tests {
		t.Run(string(tt.from), func(t *testing.T) {
			if got := tt.from.Toggled(); got != tt.to {
				t.Errorf("Toggled() = %q, want %q", got, tt.to)
			}
		})
	}
}

func TestTaskState_Next_Cycles(t *testing.T) {
	s := TaskStateOpen
	seen := map[TaskState]bool{}
	for range AllTaskStates() {
		seen[s] = true
		s = s.Next()
	}
	if s != TaskStateOpen {
		t.Errorf("Next() did not wrap around, ended at %q", s)
	}
	if len(seen) != len(AllTaskStates()) {
		t.Errorf("Next() visited %d states, want %d", len(seen), len(AllTaskStates()))
	}
}

func TestParseTaskState(t *testing.T) {
	got, err := ParseTaskState("work_in_progress")
	if err != nil {
		t.Fatalf("ParseTaskState() error = %v", err)
	}
	if got != TaskStateWorkInProgress {
		t.Errorf("ParseTaskState() = %q", got)
	}

	_, err = ParseTaskState("bogus")
	if !errors.Is(err, ErrInvalidState) {
		t.Errorf("ParseTaskState(bogus) error = %v, want ErrInvalidState", err)
	}
}
