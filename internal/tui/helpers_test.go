package tui

import (
	"context"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/require"

	"github.com/runoshun/opus/internal/app"
	"github.com/runoshun/opus/internal/domain"
	"github.com/runoshun/opus/internal/infra/snapshot"
	"github.com/runoshun/opus/internal/testutil"
)

func newTestContainer(t *testing.T) *app.Container {
	t.Helper()
	codec, err := snapshot.New(snapshot.Options{})
	require.NoError(t, err)

	clock := testutil.NewFakeClock(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	c := app.NewWithDeps(clock, nil, codec, domain.NewDefaultConfig(), nil, nil)
	c.Start(context.Background())
	t.Cleanup(c.Runner.Close)
	return c
}

func newTestModel(t *testing.T) (*Model, *app.Container) {
	t.Helper()
	c := newTestContainer(t)
	m := New(c)
	m.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	return m, c
}

func keyRunes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func press(m *Model, msg tea.KeyMsg) tea.Cmd {
	_, cmd := m.Update(msg)
	return cmd
}

// run executes an action command and feeds its result back to the model.
func run(t *testing.T, m *Model, cmd tea.Cmd) tea.Msg {
	t.Helper()
	require.NotNil(t, cmd)
	msg := cmd()
	m.Update(msg)
	return msg
}

func findByName(t *testing.T, c *app.Container, name string) domain.Task {
	t.Helper()
	for _, task := range c.Store.State().Tasks.TaskList {
		if task.Name == name {
			return task
		}
	}
	t.Fatalf("task %q not found", name)
	return domain.Task{}
}
