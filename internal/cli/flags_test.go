package cli

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/runoshun/opus/internal/domain"
)

func TestParseTaskID(t *testing.T) {
	tests := []struct {
		input   string
		want    domain.TaskID
		wantErr bool
	}{
		{input: "1", want: 1},
		{input: "#42", want: 42},
		{input: "1700000000000", want: 1700000000000},
		{input: "0", wantErr: true},
		{input: "#-1", wantErr: true},
		{input: "abc", wantErr: true},
		{input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := parseTaskID(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseTaskIDs(t *testing.T) {
	ids, err := parseTaskIDs([]string{"1", "#3"})
	require.NoError(t, err)
	assert.Equal(t, []domain.TaskID{1, 3}, ids)

	_, err = parseTaskIDs([]string{"1", "x"})
	assert.ErrorContains(t, err, `invalid task ID "x"`)
}

func TestStateValue(t *testing.T) {
	var v stateValue
	assert.Equal(t, "", v.String())
	assert.Equal(t, "state", v.Type())

	require.NoError(t, v.Set("work_in_progress"))
	assert.Equal(t, domain.TaskStateWorkInProgress, v.state)
	assert.Equal(t, "work_in_progress", v.String())

	err := v.Set("done")
	assert.ErrorIs(t, err, domain.ErrInvalidState)
	assert.Equal(t, domain.TaskStateWorkInProgress, v.state, "a rejected value keeps the previous one")
}

func TestParseDeadline(t *testing.T) {
	got, err := parseDeadline("")
	require.NoError(t, err)
	assert.Nil(t, got)

	got, err = parseDeadline("2025-03-01")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC), *got)

	got, err = parseDeadline("2025-03-01T09:30:00+02:00")
	require.NoError(t, err)
	assert.True(t, time.Date(2025, 3, 1, 7, 30, 0, 0, time.UTC).Equal(*got))

	_, err = parseDeadline("next week")
	assert.ErrorContains(t, err, "invalid deadline")
}

func TestFormatIDs(t *testing.T) {
	assert.Equal(t, "none", formatIDs(nil))
	assert.Equal(t, "#1, #12", formatIDs([]domain.TaskID{1, 12}))
}
