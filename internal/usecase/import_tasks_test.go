package usecase

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/runoshun/opus/internal/domain"
)

func TestImportTasks_YAML(t *testing.T) {
	s := newTestStore(t)
	seed(t, s, domain.TaskData{Name: "existing"})

	content := `
tasks:
  - name: Plan release
    description: cut the branch
  - name: Write notes
    under: [1]
    state: work_in_progress
  - name: Tag
    under: [1]
    parents: [1]
    ticket:
      id: REL-7
      name: release
`
	out, err := NewImportTasks(s, domain.NopLogger{}).Execute(context.Background(), ImportTasksInput{
		Content: []byte(content),
		Format:  ImportFormatYAML,
	})
	require.NoError(t, err)
	require.Len(t, out.Tasks, 3)

	assert.Equal(t, []domain.TaskID{2, 3, 4}, ids(out.Tasks))
	assert.Equal(t, []domain.TaskID{2}, out.Tasks[1].Parents)
	assert.Equal(t, domain.TaskStateWorkInProgress, out.Tasks[1].State)
	assert.Equal(t, []domain.TaskID{1, 2}, out.Tasks[2].Parents)
	assert.Equal(t, domain.TicketID("REL-7"), out.Tasks[2].TicketReference.ID)
	assert.Len(t, s.State().Tasks.TaskList, 4)
}

func TestImportTasks_JSONC(t *testing.T) {
	s := newTestStore(t)
	content := `[
  // top level list
  {"name": "one"},
  {"name": "two", "under": [1]}, /* trailing comma below */
]`
	out, err := NewImportTasks(s, domain.NopLogger{}).Execute(context.Background(), ImportTasksInput{
		Content: []byte(content),
		Format:  ImportFormatJSONC,
	})
	require.NoError(t, err)
	assert.Equal(t, []domain.TaskID{1, 2}, ids(out.Tasks))
	assert.Equal(t, []domain.TaskID{1}, out.Tasks[1].Parents)
}

func TestImportTasks_DryRun(t *testing.T) {
	s := newTestStore(t)
	out, err := NewImportTasks(s, domain.NopLogger{}).Execute(context.Background(), ImportTasksInput{
		Content: []byte(`{"tasks": [{"name": "a"}, {"name": "b"}]}`),
		Format:  ImportFormatJSON,
		DryRun:  true,
	})
	require.NoError(t, err)
	assert.Len(t, out.Tasks, 2)
	assert.Empty(t, s.State().Tasks.TaskList)
}

func TestImportTasks_DryRunPreviewsValidatedTasks(t *testing.T) {
	s := newTestStore(t)
	seed(t, s, domain.TaskData{Name: "existing"})

	content := `
- name: "  Plan release  "
  parents: [1, 1]
  state: waiting
- name: Notes
  under: [1]
`
	out, err := NewImportTasks(s, domain.NopLogger{}).Execute(context.Background(), ImportTasksInput{
		Content: []byte(content),
		Format:  ImportFormatYAML,
		DryRun:  true,
	})
	require.NoError(t, err)
	require.Len(t, out.Tasks, 2)

	assert.Equal(t, []domain.TaskID{1, 2}, ids(out.Tasks))
	assert.Equal(t, "Plan release", out.Tasks[0].Name)
	assert.Equal(t, domain.TaskStateWaiting, out.Tasks[0].State)
	assert.Equal(t, []domain.TaskID{1}, out.Tasks[0].Parents)
	assert.Equal(t, "Notes", out.Tasks[1].Name)
	assert.Equal(t, domain.TaskStateOpen, out.Tasks[1].State)
	assert.Empty(t, out.Tasks[1].Parents)
	assert.Len(t, s.State().Tasks.TaskList, 1)
}

func TestImportTasks_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
		format  ImportFormat
	}{
		{name: "empty", content: "", format: ImportFormatYAML},
		{name: "unknown field", content: "- name: a\n  owner: bob\n", format: ImportFormatYAML},
		{name: "unknown json field", content: `[{"name": "a", "owner": "bob"}]`, format: ImportFormatJSON},
		{name: "malformed", content: "{", format: ImportFormatJSON},
		{name: "blank name", content: "- name: a\n- name: ' '\n", format: ImportFormatYAML},
		{name: "forward reference", content: "- name: a\n  under: [2]\n- name: b\n", format: ImportFormatYAML},
		{name: "self reference", content: "- name: a\n  under: [1]\n", format: ImportFormatYAML},
		{name: "missing parent", content: "- name: a\n  parents: [9]\n", format: ImportFormatYAML},
		{name: "bad state", content: "- name: a\n  state: later\n", format: ImportFormatYAML},
		{name: "bad format", content: "- name: a\n", format: "toml"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestStore(t)
			_, err := NewImportTasks(s, domain.NopLogger{}).Execute(context.Background(), ImportTasksInput{
				Content: []byte(tt.content),
				Format:  tt.format,
			})
			require.ErrorIs(t, err, domain.ErrInvalidImport)
			assert.Empty(t, s.State().Tasks.TaskList, "nothing is added when any entry is invalid")
		})
	}
}

func TestImportFormatFromPath(t *testing.T) {
	assert.Equal(t, ImportFormatJSON, ImportFormatFromPath("tasks.json"))
	assert.Equal(t, ImportFormatJSONC, ImportFormatFromPath("tasks.jsonc"))
	assert.Equal(t, ImportFormatYAML, ImportFormatFromPath("tasks.yml"))
}
