package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/runoshun/opus/internal/domain"
)

// emptyListText is shown when there is no root task.
const emptyListText = "No open tasks found"

// View renders the TUI.
func (m *Model) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	var content string
	switch m.mode {
	case ModeHelp:
		content = m.viewHelp()
	case ModeNormal, ModeConfirm, ModeNewTask:
		content = m.viewMain()
	}

	return m.styles.App.Render(content)
}

// viewMain renders the task tree with any open dialog below it.
func (m *Model) viewMain() string {
	var b strings.Builder

	b.WriteString(m.viewHeader())
	b.WriteString("\n")

	if m.err != nil {
		b.WriteString(m.styles.ErrorMsg.Render("Error: "+m.err.Error()) + "\n\n")
	}

	b.WriteString(m.viewTaskTree())

	switch m.mode {
	case ModeNormal, ModeHelp:
	case ModeConfirm:
		b.WriteString("\n")
		b.WriteString(m.viewConfirmDialog())
	case ModeNewTask:
		b.WriteString("\n")
		b.WriteString(m.viewNewTaskForm())
	}

	b.WriteString("\n")
	b.WriteString(m.viewFooter())

	return b.String()
}

// viewHeader renders the title and the open/total counts.
func (m *Model) viewHeader() string {
	title := m.styles.HeaderText.Render("Tasks")

	open := 0
	for _, t := range m.tasks {
		if !t.IsFinished() {
			open++
		}
	}
	countText := fmt.Sprintf("%d open of %d tasks", open, len(m.tasks))
	rightText := lipgloss.NewStyle().Foreground(Colors.Muted).Render(countText)

	headerWidth := max(m.width-6, 40)
	spacing := max(headerWidth-lipgloss.Width(title)-lipgloss.Width(rightText), 1)

	return m.styles.Header.Render(title + strings.Repeat(" ", spacing) + rightText)
}

// viewTaskTree renders the flattened task tree. Row i is cursor position i.
func (m *Model) viewTaskTree() string {
	if len(m.nodes) == 0 {
		return m.styles.Empty.Render(emptyListText) + "\n"
	}

	var b strings.Builder
	for i, n := range m.nodes {
		b.WriteString(m.renderTaskRow(n.Task, n.Depth, i == m.cursor))
		b.WriteString("\n")
	}
	return b.String()
}

// renderTaskRow renders one task line: cursor, indent, checkbox, name,
// syncing marker, state and description.
func (m *Model) renderTaskRow(task domain.Task, depth int, selected bool) string {
	cursor := "  "
	if selected {
		cursor = m.styles.Cursor.Render(">") + " "
	}
	indent := strings.Repeat("  ", depth)
	checkbox := m.styles.Checkbox.Render(Checkbox(task))

	var suffix string
	if task.IsSyncing {
		suffix += " " + m.styles.Syncing.Render("*")
	}
	if task.State != domain.TaskStateOpen && task.State != domain.TaskStateFinished {
		suffix += " " + m.styles.StateStyle(task.State).Render("("+task.State.Display()+")")
	}

	prefixWidth := 2 + runewidth.StringWidth(indent) + 4
	available := max(m.width-6-prefixWidth-lipgloss.Width(suffix), 10)

	name := escapeNewlines(task.Name)
	if runewidth.StringWidth(name) > available {
		name = runewidth.Truncate(name, available, "...")
	}

	nameStyle := m.styles.TaskName
	switch {
	case task.IsFinished():
		nameStyle = m.styles.TaskNameFinished
	case selected:
		nameStyle = m.styles.TaskNameSelected
	}
	line := cursor + indent + checkbox + " " + nameStyle.Render(name) + suffix

	if m.showDescription && task.Description != "" {
		rest := available - runewidth.StringWidth(name) - 3
		if rest >= 10 {
			desc := escapeNewlines(task.Description)
			if runewidth.StringWidth(desc) > rest {
				desc = runewidth.Truncate(desc, rest, "...")
			}
			line += m.styles.TaskDesc.Render(" - " + desc)
		}
	}
	return line
}

// escapeNewlines replaces newline characters with spaces for single-line display.
func escapeNewlines(s string) string {
	s = strings.ReplaceAll(s, "\r\n", " ")
	s = strings.ReplaceAll(s, "\n", " ")
	s = strings.ReplaceAll(s, "\r", " ")
	return s
}

// viewConfirmDialog renders the y/n confirmation.
func (m *Model) viewConfirmDialog() string {
	name := fmt.Sprintf("#%d", m.confirmTaskID)
	if task, ok := domain.Find(m.tasks, m.confirmTaskID); ok {
		name = fmt.Sprintf("%q", task.Name)
	}
	title := m.styles.DialogTitle.Render(fmt.Sprintf("Confirm %s", m.confirmAction))
	var question string
	switch m.confirmAction {
	case ConfirmDelete:
		question = fmt.Sprintf("Delete task %s? Sub-tasks are kept.", name)
	case ConfirmNone:
	}
	prompt := m.styles.DialogPrompt.Render(question)
	hint := m.styles.Footer.Render("y confirm · n cancel")
	return m.styles.Dialog.Render(lipgloss.JoinVertical(lipgloss.Left, title, "", prompt, "", hint))
}

// viewNewTaskForm renders the name input and description textarea.
func (m *Model) viewNewTaskForm() string {
	heading := "New task"
	if m.formParent != nil {
		heading = fmt.Sprintf("New sub-task of #%d", *m.formParent)
		if parent, ok := domain.Find(m.tasks, *m.formParent); ok {
			heading = fmt.Sprintf("New sub-task of %q", parent.Name)
		}
	}

	title := m.styles.DialogTitle.Render(heading)
	name := m.styles.InputPrompt.Render("Name: ") + m.nameInput.View()
	desc := m.styles.InputPrompt.Render("Description:") + "\n" + m.descInput.View()
	hint := m.styles.Footer.Render("tab switch field · enter/ctrl+s save · esc cancel")
	return m.styles.Dialog.Render(lipgloss.JoinVertical(lipgloss.Left, title, "", name, "", desc, "", hint))
}

// viewFooter renders the short help line.
func (m *Model) viewFooter() string {
	switch m.mode {
	case ModeNormal:
		return m.help.ShortHelpView(m.keys.ShortHelp())
	case ModeConfirm, ModeNewTask, ModeHelp:
		// Hints are shown in the dialogs themselves
		return ""
	}
	return ""
}

// viewHelp renders the help view.
func (m *Model) viewHelp() string {
	title := m.styles.HeaderText.Render("KEYBOARD SHORTCUTS")
	content := m.help.FullHelpView(m.keys.FullHelp())
	hint := m.styles.Footer.Render("? or esc to close")
	return m.styles.Dialog.Render(lipgloss.JoinVertical(lipgloss.Left, title, "", content, "", hint))
}
