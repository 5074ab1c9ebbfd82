package tui

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/runoshun/opus/internal/domain"
)

func TestUpdate_NavigationClamps(t *testing.T) {
	m, c := newTestModel(t)
	a := c.Store.Add(domain.TaskData{Name: "a"})
	b := c.Store.Add(domain.TaskData{Name: "b"})
	m.Update(MsgStateChanged{State: c.Store.State()})

	press(m, keyRunes("k"))
	task, ok := m.SelectedTask()
	require.True(t, ok)
	assert.Equal(t, a, task.ID)

	press(m, keyRunes("j"))
	press(m, tea.KeyMsg{Type: tea.KeyDown})
	task, _ = m.SelectedTask()
	assert.Equal(t, b, task.ID)
}

func TestUpdate_SelectionFollowsTaskAcrossChanges(t *testing.T) {
	m, c := newTestModel(t)
	c.Store.Add(domain.TaskData{Name: "a"})
	b := c.Store.Add(domain.TaskData{Name: "b"})
	m.Update(MsgStateChanged{State: c.Store.State()})
	press(m, keyRunes("j"))

	// removing a shifts b up a row
	c.Store.Dispatch(domain.ActionRemove{ID: findByName(t, c, "a").ID})
	m.Update(MsgStateChanged{State: c.Store.State()})

	task, ok := m.SelectedTask()
	require.True(t, ok)
	assert.Equal(t, b, task.ID)
	assert.Equal(t, 0, m.cursor)
}

func TestUpdate_CursorStaysOnSecondRowOfSharedTask(t *testing.T) {
	m, c := newTestModel(t)
	a := c.Store.Add(domain.TaskData{Name: "a"})
	b := c.Store.Add(domain.TaskData{Name: "b", Parents: []domain.TaskID{a}})
	d := c.Store.Add(domain.TaskData{Name: "d", Parents: []domain.TaskID{b, a}})
	m.Update(MsgStateChanged{State: c.Store.State()})

	// rows: a, b, d (under b), d (under a)
	require.Len(t, m.nodes, 4)
	press(m, keyRunes("j"))
	press(m, keyRunes("j"))
	press(m, keyRunes("j"))
	require.Equal(t, 3, m.cursor)

	m.Update(MsgStateChanged{State: c.Store.State()})
	assert.Equal(t, 3, m.cursor)
	task, ok := m.SelectedTask()
	require.True(t, ok)
	assert.Equal(t, d, task.ID)

	// the first copy is picked once the current row no longer holds d
	c.Store.Dispatch(domain.ActionRemove{ID: a})
	m.Update(MsgStateChanged{State: c.Store.State()})
	task, ok = m.SelectedTask()
	require.True(t, ok)
	assert.Equal(t, d, task.ID)
	assert.Equal(t, 1, m.cursor)
}

func TestUpdate_ToggleTask(t *testing.T) {
	m, c := newTestModel(t)
	id := c.Store.Add(domain.TaskData{Name: "a"})
	m.Update(MsgStateChanged{State: c.Store.State()})

	msg := run(t, m, press(m, tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}))
	assert.Equal(t, MsgTaskStateUpdated{TaskID: id, State: domain.TaskStateFinished}, msg)
	task := findByName(t, c, "a")
	assert.True(t, task.IsFinished())
	assert.Contains(t, m.View(), "[x] a")

	run(t, m, press(m, keyRunes("x")))
	assert.Equal(t, domain.TaskStateOpen, findByName(t, c, "a").State)
}

func TestUpdate_CycleState(t *testing.T) {
	m, c := newTestModel(t)
	c.Store.Add(domain.TaskData{Name: "a"})
	m.Update(MsgStateChanged{State: c.Store.State()})

	var seen []domain.TaskState
	for range domain.AllTaskStates() {
		run(t, m, press(m, keyRunes("s")))
		seen = append(seen, findByName(t, c, "a").State)
	}
	assert.Equal(t, []domain.TaskState{
		domain.TaskStateWaiting,
		domain.TaskStateWorkInProgress,
		domain.TaskStateFinished,
		domain.TaskStateCancelled,
		domain.TaskStateOpen,
	}, seen)
}

func TestUpdate_DeleteRequiresConfirmation(t *testing.T) {
	m, c := newTestModel(t)
	c.Store.Add(domain.TaskData{Name: "a"})
	m.Update(MsgStateChanged{State: c.Store.State()})

	press(m, keyRunes("d"))
	assert.Equal(t, ModeConfirm, m.mode)
	assert.Equal(t, ConfirmDelete, m.confirmAction)

	assert.Nil(t, press(m, keyRunes("n")))
	assert.Equal(t, ModeNormal, m.mode)
	assert.Len(t, c.Store.State().Tasks.TaskList, 1)

	press(m, keyRunes("d"))
	run(t, m, press(m, keyRunes("y")))
	assert.Equal(t, ModeNormal, m.mode)
	assert.Empty(t, c.Store.State().Tasks.TaskList)
	assert.Contains(t, m.View(), "No open tasks found")
}

func TestUpdate_NewTaskForm(t *testing.T) {
	m, c := newTestModel(t)

	press(m, keyRunes("n"))
	require.Equal(t, ModeNewTask, m.mode)
	assert.True(t, m.mode.IsInputMode())

	// empty name is rejected and the form stays open
	assert.Nil(t, press(m, tea.KeyMsg{Type: tea.KeyEnter}))
	assert.ErrorIs(t, m.err, domain.ErrEmptyName)
	assert.Equal(t, ModeNewTask, m.mode)

	press(m, keyRunes("Buy milk"))
	press(m, tea.KeyMsg{Type: tea.KeyTab})
	assert.Equal(t, FieldDesc, m.formField)
	press(m, keyRunes("two litres"))

	msg := run(t, m, press(m, tea.KeyMsg{Type: tea.KeyCtrlS}))
	require.IsType(t, MsgTaskCreated{}, msg)

	task := findByName(t, c, "Buy milk")
	assert.Equal(t, "two litres", task.Description)
	assert.Equal(t, domain.TaskStateOpen, task.State)
	assert.True(t, task.IsRoot())

	assert.Equal(t, ModeNormal, m.mode)
	assert.Empty(t, m.nameInput.Value())
	assert.Empty(t, m.descInput.Value())
	selected, _ := m.SelectedTask()
	assert.Equal(t, task.ID, selected.ID)
}

func TestUpdate_NewSubTask(t *testing.T) {
	m, c := newTestModel(t)
	parent := c.Store.Add(domain.TaskData{Name: "parent"})
	m.Update(MsgStateChanged{State: c.Store.State()})

	press(m, keyRunes("a"))
	require.Equal(t, ModeNewTask, m.mode)
	assert.Contains(t, m.View(), `New sub-task of "parent"`)

	press(m, keyRunes("child"))
	run(t, m, press(m, tea.KeyMsg{Type: tea.KeyEnter}))

	child := findByName(t, c, "child")
	assert.Equal(t, []domain.TaskID{parent}, child.Parents)
	assert.Contains(t, m.View(), "  [ ] child")
}

func TestUpdate_EscapeClosesForm(t *testing.T) {
	m, c := newTestModel(t)

	press(m, keyRunes("n"))
	press(m, keyRunes("draft"))
	press(m, tea.KeyMsg{Type: tea.KeyEsc})

	assert.Equal(t, ModeNormal, m.mode)
	assert.Empty(t, m.nameInput.Value())
	assert.Empty(t, c.Store.State().Tasks.TaskList)
}

func TestUpdate_KeysWithoutSelectionAreIgnored(t *testing.T) {
	m, _ := newTestModel(t)

	for _, k := range []string{"x", "s", "d", "a"} {
		assert.Nil(t, press(m, keyRunes(k)), k)
		assert.Equal(t, ModeNormal, m.mode, k)
	}
}

func TestUpdate_Quit(t *testing.T) {
	m, _ := newTestModel(t)

	cmd := press(m, keyRunes("q"))
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
}

func TestInit_ResumesSync(t *testing.T) {
	m, _ := newTestModel(t)

	msg := m.Init()()
	assert.Equal(t, MsgSyncResumed{Count: 0}, msg)
}
