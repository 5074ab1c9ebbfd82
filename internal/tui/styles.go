package tui

import (
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/lipgloss"

	"github.com/runoshun/opus/internal/domain"
)

// Colors defines the color palette for the TUI.
var Colors = struct {
	Primary   lipgloss.Color
	Secondary lipgloss.Color
	Muted     lipgloss.Color
	Error     lipgloss.Color
	Warning   lipgloss.Color

	// Title/text colors
	TitleNormal   lipgloss.Color
	TitleSelected lipgloss.Color
	DescNormal    lipgloss.Color

	// State colors
	Open       lipgloss.Color
	Waiting    lipgloss.Color
	InProgress lipgloss.Color
	Finished   lipgloss.Color
	Cancelled  lipgloss.Color
}{
	Primary:   lipgloss.Color("#6C5CE7"), // Purple
	Secondary: lipgloss.Color("#A29BFE"), // Lavender
	Muted:     lipgloss.Color("#636E72"), // Gray
	Error:     lipgloss.Color("#D63031"), // Red
	Warning:   lipgloss.Color("#FDCB6E"), // Yellow

	TitleNormal:   lipgloss.Color("#DFE6E9"),
	TitleSelected: lipgloss.Color("#FFEAA7"),
	DescNormal:    lipgloss.Color("#636E72"),

	Open:       lipgloss.Color("#74B9FF"), // Light blue
	Waiting:    lipgloss.Color("#A29BFE"), // Lavender
	InProgress: lipgloss.Color("#FDCB6E"), // Yellow
	Finished:   lipgloss.Color("#00B894"), // Green
	Cancelled:  lipgloss.Color("#636E72"), // Gray
}

// Styles contains all the lipgloss styles for the TUI.
type Styles struct {
	// App
	App lipgloss.Style

	// Header
	Header     lipgloss.Style
	HeaderText lipgloss.Style

	// Task tree
	Cursor           lipgloss.Style
	Checkbox         lipgloss.Style
	TaskName         lipgloss.Style
	TaskNameSelected lipgloss.Style
	TaskNameFinished lipgloss.Style
	TaskDesc         lipgloss.Style
	Syncing          lipgloss.Style
	Empty            lipgloss.Style

	// State badges
	StateOpen       lipgloss.Style
	StateWaiting    lipgloss.Style
	StateInProgress lipgloss.Style
	StateFinished   lipgloss.Style
	StateCancelled  lipgloss.Style

	// Footer
	Footer    lipgloss.Style
	FooterKey lipgloss.Style

	// Dialog
	Dialog       lipgloss.Style
	DialogTitle  lipgloss.Style
	DialogPrompt lipgloss.Style

	// Input
	InputPrompt lipgloss.Style

	// Error
	ErrorMsg lipgloss.Style
}

// DefaultStyles returns the default styles for the TUI.
func DefaultStyles() Styles {
	return Styles{
		App: lipgloss.NewStyle().
			Padding(1, 2),

		Header: lipgloss.NewStyle().
			Bold(true).
			Foreground(Colors.Primary).
			MarginBottom(1),

		HeaderText: lipgloss.NewStyle().
			Bold(true),

		Cursor: lipgloss.NewStyle().
			Foreground(Colors.TitleSelected).
			Bold(true),

		Checkbox: lipgloss.NewStyle().
			Foreground(Colors.Secondary),

		TaskName: lipgloss.NewStyle().
			Foreground(Colors.TitleNormal),

		TaskNameSelected: lipgloss.NewStyle().
			Foreground(Colors.TitleSelected).
			Bold(true),

		TaskNameFinished: lipgloss.NewStyle().
			Foreground(Colors.Muted).
			Strikethrough(true),

		TaskDesc: lipgloss.NewStyle().
			Foreground(Colors.DescNormal),

		Syncing: lipgloss.NewStyle().
			Foreground(Colors.Warning).
			Bold(true),

		Empty: lipgloss.NewStyle().
			Foreground(Colors.Muted).
			Italic(true),

		StateOpen: lipgloss.NewStyle().
			Foreground(Colors.Open),

		StateWaiting: lipgloss.NewStyle().
			Foreground(Colors.Waiting),

		StateInProgress: lipgloss.NewStyle().
			Foreground(Colors.InProgress),

		StateFinished: lipgloss.NewStyle().
			Foreground(Colors.Finished),

		StateCancelled: lipgloss.NewStyle().
			Foreground(Colors.Cancelled),

		Footer: lipgloss.NewStyle().
			Foreground(Colors.Muted),

		FooterKey: lipgloss.NewStyle().
			Foreground(Colors.Primary).
			Bold(true),

		Dialog: lipgloss.NewStyle().
			Padding(1, 2).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(Colors.Primary),

		DialogTitle: lipgloss.NewStyle().
			Bold(true).
			Foreground(Colors.Primary),

		DialogPrompt: lipgloss.NewStyle(),

		InputPrompt: lipgloss.NewStyle().
			Foreground(Colors.Primary).
			Bold(true),

		ErrorMsg: lipgloss.NewStyle().
			Foreground(Colors.Error).
			Bold(true),
	}
}

// StateStyle returns the style for a given task state.
func (s Styles) StateStyle(state domain.TaskState) lipgloss.Style {
	switch state {
	case domain.TaskStateOpen:
		return s.StateOpen
	case domain.TaskStateWaiting:
		return s.StateWaiting
	case domain.TaskStateWorkInProgress:
		return s.StateInProgress
	case domain.TaskStateFinished:
		return s.StateFinished
	case domain.TaskStateCancelled:
		return s.StateCancelled
	default:
		return s.StateOpen
	}
}

// Checkbox returns the checkbox for a task: "[x]" iff finished.
func Checkbox(task domain.Task) string {
	if task.IsFinished() {
		return "[x]"
	}
	return "[ ]"
}

// newHelp returns a help model whose key names use FooterKey.
func newHelp(styles Styles) help.Model {
	h := help.New()
	h.Styles.ShortKey = styles.FooterKey
	h.Styles.FullKey = styles.FooterKey
	h.Styles.ShortDesc = styles.Footer
	h.Styles.ShortSeparator = styles.Footer
	return h
}
