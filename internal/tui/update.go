package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/runoshun/opus/internal/domain"
)

// Update handles messages and updates the model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyMsg(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.descInput.SetWidth(max(msg.Width-12, 20))
		return m, nil

	case MsgStateChanged:
		m.setTasks(msg.State.Tasks.TaskList)
		return m, nil

	case MsgTaskCreated:
		m.closeForm()
		m.refresh()
		m.selectTask(msg.TaskID)
		return m, nil

	case MsgTaskRemoved:
		m.mode = ModeNormal
		m.confirmAction = ConfirmNone
		m.refresh()
		return m, nil

	case MsgTaskStateUpdated:
		m.refresh()
		return m, nil

	case MsgSyncResumed:
		m.refresh()
		return m, nil

	case MsgError:
		// The form stays open so the input can be corrected.
		m.err = msg.Err
		if m.mode == ModeConfirm {
			m.mode = ModeNormal
			m.confirmAction = ConfirmNone
		}
		return m, nil
	}

	return m, nil
}

func (m *Model) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// Clear error on any key press
	if m.err != nil {
		m.err = nil
	}

	if msg.Type == tea.KeyCtrlC {
		return m, tea.Quit
	}

	switch m.mode {
	case ModeNormal:
		return m.handleNormalMode(msg)
	case ModeConfirm:
		return m.handleConfirmMode(msg)
	case ModeNewTask:
		return m.handleNewTaskMode(msg)
	case ModeHelp:
		return m.handleHelpMode(msg)
	}

	return m, nil
}

// handleNormalMode handles keys in normal mode.
func (m *Model) handleNormalMode(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Up):
		m.moveCursor(-1)
		return m, nil

	case key.Matches(msg, m.keys.Down):
		m.moveCursor(1)
		return m, nil

	case key.Matches(msg, m.keys.Toggle):
		task, ok := m.SelectedTask()
		if !ok {
			return m, nil
		}
		return m, m.toggleTask(task.ID)

	case key.Matches(msg, m.keys.CycleState):
		task, ok := m.SelectedTask()
		if !ok {
			return m, nil
		}
		return m, m.changeState(task.ID, task.State.Next())

	case key.Matches(msg, m.keys.New):
		return m, m.openForm(nil)

	case key.Matches(msg, m.keys.NewChild):
		task, ok := m.SelectedTask()
		if !ok {
			return m, nil
		}
		parent := task.ID
		return m, m.openForm(&parent)

	case key.Matches(msg, m.keys.Delete):
		task, ok := m.SelectedTask()
		if !ok {
			return m, nil
		}
		m.mode = ModeConfirm
		m.confirmAction = ConfirmDelete
		m.confirmTaskID = task.ID
		return m, nil

	case key.Matches(msg, m.keys.Help):
		m.mode = ModeHelp
		return m, nil
	}

	return m, nil
}

// handleConfirmMode handles keys in confirmation mode.
func (m *Model) handleConfirmMode(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Escape), key.Matches(msg, m.keys.Deny):
		m.mode = ModeNormal
		m.confirmAction = ConfirmNone
		return m, nil

	case key.Matches(msg, m.keys.Confirm):
		switch m.confirmAction {
		case ConfirmNone:
			// Nothing to confirm
		case ConfirmDelete:
			return m, m.removeTask(m.confirmTaskID)
		}
	}

	return m, nil
}

// handleNewTaskMode handles keys in the new task form.
func (m *Model) handleNewTaskMode(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Escape):
		m.closeForm()
		return m, nil

	case key.Matches(msg, m.keys.NextField):
		m.formField = m.formField.Next()
		return m, m.focusFormField()

	case key.Matches(msg, m.keys.Submit),
		msg.Type == tea.KeyEnter && m.formField == FieldName:
		return m, m.submitForm()
	}

	// Forward to current input field
	var cmd tea.Cmd
	switch m.formField {
	case FieldName:
		m.nameInput, cmd = m.nameInput.Update(msg)
	case FieldDesc:
		m.descInput, cmd = m.descInput.Update(msg)
	}
	return m, cmd
}

// submitForm validates the form and returns the create command. The form
// stays open when the name is empty.
func (m *Model) submitForm() tea.Cmd {
	name := strings.TrimSpace(m.nameInput.Value())
	if name == "" {
		m.err = domain.ErrEmptyName
		return nil
	}
	return m.createTask(name, m.descInput.Value(), m.formParent)
}

// handleHelpMode handles keys in help mode.
func (m *Model) handleHelpMode(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Help), key.Matches(msg, m.keys.Escape), key.Matches(msg, m.keys.Quit):
		m.mode = ModeNormal
	}
	return m, nil
}
