package tui

import (
	"context"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/runoshun/opus/internal/app"
	"github.com/runoshun/opus/internal/domain"
	"github.com/runoshun/opus/internal/usecase"
)

// Model is the main bubbletea model for the TUI.
type Model struct {
	// Dependencies (pointers first for alignment)
	container  *app.Container
	err        error
	formParent *domain.TaskID // Parent of the task being created; nil for a root task

	// State (slices - contain pointers)
	tasks []domain.Task
	nodes []domain.TreeNode // Display order, one entry per rendered row

	// Components (structs with pointers)
	keys   KeyMap
	styles Styles
	help   help.Model

	// Input state (large structs)
	nameInput textinput.Model
	descInput textarea.Model

	// Numeric state (smaller types last)
	mode            Mode
	confirmAction   ConfirmAction
	formField       FormField
	width           int
	height          int
	cursor          int
	selectedID      domain.TaskID
	confirmTaskID   domain.TaskID
	showDescription bool
}

// New creates a new TUI Model with the given container.
func New(c *app.Container) *Model {
	ni := textinput.New()
	ni.Placeholder = "Task name"
	ni.CharLimit = 200

	di := textarea.New()
	di.Placeholder = "Description (optional)"
	di.ShowLineNumbers = false
	di.CharLimit = 2000
	di.SetHeight(3)

	styles := DefaultStyles()
	m := &Model{
		container:       c,
		keys:            DefaultKeyMap(),
		styles:          styles,
		help:            newHelp(styles),
		nameInput:       ni,
		descInput:       di,
		mode:            ModeNormal,
		showDescription: c.AppConfig.TUI.ShowDescription,
	}
	m.setTasks(c.Store.State().Tasks.TaskList)
	return m
}

// Init initializes the model.
func (m *Model) Init() tea.Cmd {
	return m.resumeSync()
}

// Run starts the TUI and blocks until it exits. Store changes reach the
// model as MsgStateChanged through the program's message queue.
func Run(c *app.Container, opts ...tea.ProgramOption) error {
	p := tea.NewProgram(New(c), opts...)
	unsubscribe := c.Store.Subscribe(func(state domain.RootState) {
		p.Send(MsgStateChanged{State: state})
	})
	defer unsubscribe()

	_, err := p.Run()
	return err
}

// SelectedTask returns the task under the cursor.
func (m *Model) SelectedTask() (domain.Task, bool) {
	if m.cursor < 0 || m.cursor >= len(m.nodes) {
		return domain.Task{}, false
	}
	return m.nodes[m.cursor].Task, true
}

// setTasks replaces the task list and keeps the cursor on the same task
// when it still exists. A task with several parents has one row per
// parent, so the current row wins over the first match.
func (m *Model) setTasks(tasks []domain.Task) {
	m.tasks = tasks
	m.nodes = domain.Flatten(tasks)

	if m.cursor < len(m.nodes) && m.nodes[m.cursor].Task.ID == m.selectedID {
		return
	}
	for i, n := range m.nodes {
		if n.Task.ID == m.selectedID {
			m.cursor = i
			return
		}
	}
	m.moveCursor(0)
}

func (m *Model) refresh() {
	m.setTasks(m.container.Store.State().Tasks.TaskList)
}

func (m *Model) moveCursor(delta int) {
	m.cursor += delta
	if m.cursor >= len(m.nodes) {
		m.cursor = len(m.nodes) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
	if task, ok := m.SelectedTask(); ok {
		m.selectedID = task.ID
	}
}

func (m *Model) selectTask(id domain.TaskID) {
	m.selectedID = id
	for i, n := range m.nodes {
		if n.Task.ID == id {
			m.cursor = i
			return
		}
	}
}

// openForm shows the new task form. parent is nil for a root task.
func (m *Model) openForm(parent *domain.TaskID) tea.Cmd {
	m.mode = ModeNewTask
	m.formParent = parent
	m.formField = FieldName
	m.nameInput.Reset()
	m.descInput.Reset()
	return m.focusFormField()
}

func (m *Model) closeForm() {
	m.mode = ModeNormal
	m.formParent = nil
	m.nameInput.Reset()
	m.nameInput.Blur()
	m.descInput.Reset()
	m.descInput.Blur()
}

func (m *Model) focusFormField() tea.Cmd {
	m.nameInput.Blur()
	m.descInput.Blur()
	if m.formField == FieldDesc {
		return m.descInput.Focus()
	}
	return m.nameInput.Focus()
}

// resumeSync returns a command that restarts unfinished syncs.
func (m *Model) resumeSync() tea.Cmd {
	return func() tea.Msg {
		return MsgSyncResumed{Count: m.container.ResumeSync()}
	}
}

// createTask returns a command that creates a new open task.
func (m *Model) createTask(name, desc string, parent *domain.TaskID) tea.Cmd {
	in := usecase.AddTaskInput{
		Name:        name,
		Description: desc,
		State:       domain.TaskStateOpen,
	}
	if parent != nil {
		in.Parents = []domain.TaskID{*parent}
	}
	return func() tea.Msg {
		out, err := m.container.AddTaskUseCase().Execute(context.Background(), in)
		if err != nil {
			return MsgError{Err: err}
		}
		return MsgTaskCreated{TaskID: out.Task.ID}
	}
}

// toggleTask returns a command that flips a task between finished and open.
func (m *Model) toggleTask(taskID domain.TaskID) tea.Cmd {
	return func() tea.Msg {
		out, err := m.container.ToggleTaskUseCase().Execute(
			context.Background(),
			usecase.ToggleTaskInput{TaskID: taskID},
		)
		if err != nil {
			return MsgError{Err: err}
		}
		return MsgTaskStateUpdated{TaskID: taskID, State: out.Task.State}
	}
}

// changeState returns a command that moves a task to state.
func (m *Model) changeState(taskID domain.TaskID, state domain.TaskState) tea.Cmd {
	return func() tea.Msg {
		out, err := m.container.ChangeTaskStateUseCase().Execute(
			context.Background(),
			usecase.ChangeTaskStateInput{TaskID: taskID, State: state},
		)
		if err != nil {
			return MsgError{Err: err}
		}
		return MsgTaskStateUpdated{TaskID: taskID, State: out.Task.State}
	}
}

// removeTask returns a command that removes a task.
func (m *Model) removeTask(taskID domain.TaskID) tea.Cmd {
	return func() tea.Msg {
		_, err := m.container.RemoveTaskUseCase().Execute(
			context.Background(),
			usecase.RemoveTaskInput{TaskID: taskID},
		)
		if err != nil {
			return MsgError{Err: err}
		}
		return MsgTaskRemoved{TaskID: taskID}
	}
}
