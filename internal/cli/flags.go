package cli

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/pflag"

	"github.com/runoshun/opus/internal/domain"
)

// stateValue is a pflag.Value that only accepts known task states.
type stateValue struct {
	state domain.TaskState
}

// Ensure stateValue implements pflag.Value.
var _ pflag.Value = (*stateValue)(nil)

func (v *stateValue) String() string {
	return string(v.state)
}

func (v *stateValue) Set(s string) error {
	state, err := domain.ParseTaskState(s)
	if err != nil {
		return err
	}
	v.state = state
	return nil
}

func (v *stateValue) Type() string {
	return "state"
}

// stateNames lists the accepted state values for help text and completion.
func stateNames() []string {
	states := domain.AllTaskStates()
	names := make([]string, len(states))
	for i, s := range states {
		names[i] = string(s)
	}
	return names
}

// parseTaskID parses a task ID from string (accepts "1" or "#1").
func parseTaskID(s string) (domain.TaskID, error) {
	// Remove leading # if present
	s = strings.TrimPrefix(s, "#")
	var id int64
	if _, err := fmt.Sscanf(s, "%d", &id); err != nil {
		return 0, err
	}
	if id <= 0 {
		return 0, errors.New("task ID must be positive")
	}
	return domain.TaskID(id), nil
}

// parseTaskIDs parses every entry of a repeated ID flag.
func parseTaskIDs(values []string) ([]domain.TaskID, error) {
	ids := make([]domain.TaskID, 0, len(values))
	for _, v := range values {
		id, err := parseTaskID(v)
		if err != nil {
			return nil, fmt.Errorf("invalid task ID %q: %w", v, err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// parseDeadline accepts a date (2006-01-02) or an RFC 3339 timestamp.
// A bare date is taken as midnight UTC.
func parseDeadline(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.DateOnly, s); err == nil {
		return &t, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return nil, fmt.Errorf("invalid deadline %q: use YYYY-MM-DD or RFC 3339", s)
	}
	return &t, nil
}

// formatIDs renders ids as "#1, #2", or "none" when empty.
func formatIDs(ids []domain.TaskID) string {
	if len(ids) == 0 {
		return "none"
	}
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = fmt.Sprintf("#%d", id)
	}
	return strings.Join(parts, ", ")
}
