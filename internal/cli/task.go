package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/runoshun/opus/internal/app"
	"github.com/runoshun/opus/internal/domain"
	"github.com/runoshun/opus/internal/usecase"
)

// newAddCommand creates the add command for creating tasks.
func newAddCommand(factory Factory, global *globalOptions) *cobra.Command {
	var opts struct {
		Name        string
		Description string
		Deadline    string
		Ticket      string
		TicketURL   string
		From        string
		Parents     []string
		State       stateValue
		DryRun      bool
	}

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Create a new task",
		Long: `Create a new task.

The task starts syncing right away and the command returns once the
sync has finished and the session snapshot is written.

Examples:
  # Create a root task
  opus add --name "Plan release"

  # Create a sub-task under tasks #1 and #4
  opus add --name "Write changelog" --parent 1 --parent 4

  # Create a task that is already in progress, with a deadline
  opus add --name "Fix login" --state work_in_progress --deadline 2025-03-01

  # Link an external ticket
  opus add --name "Fix login" --ticket BUG-12 --ticket-url https://tracker/BUG-12

  # Create tasks from a file (YAML, JSON or JSONC)
  opus add --from tasks.yaml

  # Validate a file without creating anything
  opus add --from tasks.yaml --dry-run

File format for --from:
  tasks:
    - name: Release
    - name: Changelog
      under: [1]        # Relative: the 1st task in this file
    - name: Announce
      parents: [12]     # Absolute: existing task #12
      state: waiting`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if opts.From != "" {
				return run(cmd, factory, global, func(c *app.Container) error {
					return addTasksFromFile(cmd, c, opts.From, opts.DryRun)
				})
			}
			if opts.DryRun {
				return fmt.Errorf("--dry-run requires --from")
			}

			// Require --name when not using --from
			if opts.Name == "" {
				return fmt.Errorf("required flag(s) \"name\" not set")
			}

			parents, err := parseTaskIDs(opts.Parents)
			if err != nil {
				return err
			}
			deadline, err := parseDeadline(opts.Deadline)
			if err != nil {
				return err
			}

			input := usecase.AddTaskInput{
				Deadline:    deadline,
				Name:        opts.Name,
				Description: opts.Description,
				State:       opts.State.state,
				Parents:     parents,
			}
			if opts.Ticket != "" {
				input.Ticket = &domain.Ticket{
					ID:   domain.TicketID(opts.Ticket),
					Name: opts.Ticket,
					URL:  opts.TicketURL,
				}
			}

			return run(cmd, factory, global, func(c *app.Container) error {
				out, err := c.AddTaskUseCase().Execute(cmd.Context(), input)
				if err != nil {
					return err
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Created task #%d\n", out.Task.ID)
				return nil
			})
		},
	}

	// Flags (--name is conditionally required based on --from)
	cmd.Flags().StringVar(&opts.Name, "name", "", "Task name (required unless --from is used)")
	cmd.Flags().StringVar(&opts.Description, "desc", "", "Task description")
	cmd.Flags().StringArrayVar(&opts.Parents, "parent", nil, "Parent task ID (can specify multiple)")
	cmd.Flags().Var(&opts.State, "state", "Initial state: "+strings.Join(stateNames(), ", ")+" (default: open)")
	cmd.Flags().StringVar(&opts.Deadline, "deadline", "", "Deadline as YYYY-MM-DD or RFC 3339")
	cmd.Flags().StringVar(&opts.Ticket, "ticket", "", "External ticket ID")
	cmd.Flags().StringVar(&opts.TicketURL, "ticket-url", "", "External ticket URL")
	cmd.Flags().StringVar(&opts.From, "from", "", "Create tasks from a YAML, JSON or JSONC file")
	cmd.Flags().BoolVar(&opts.DryRun, "dry-run", false, "Validate the file without creating tasks (requires --from)")

	_ = cmd.RegisterFlagCompletionFunc("state", func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
		return stateNames(), cobra.ShellCompDirectiveNoFileComp
	})

	return cmd
}

// addTasksFromFile creates tasks from an import file.
func addTasksFromFile(cmd *cobra.Command, c *app.Container, filePath string, dryRun bool) error {
	content, err := os.ReadFile(filePath)
	if err != nil {
		return fmt.Errorf("read file: %w", err)
	}

	out, err := c.ImportTasksUseCase().Execute(cmd.Context(), usecase.ImportTasksInput{
		Content: content,
		Format:  usecase.ImportFormatFromPath(filePath),
		DryRun:  dryRun,
	})
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	if dryRun {
		_, _ = fmt.Fprintln(w, "Dry run - tasks that would be created:")
		_, _ = fmt.Fprintln(w, "")
	}
	for i, task := range out.Tasks {
		if dryRun {
			_, _ = fmt.Fprintf(w, "Task %d: %s\n", i+1, task.Name)
		} else {
			_, _ = fmt.Fprintf(w, "Created task #%d: %s\n", task.ID, task.Name)
		}
		if len(task.Parents) > 0 && !dryRun {
			_, _ = fmt.Fprintf(w, "  Parents: %s\n", formatIDs(task.Parents))
		}
		if task.State != domain.TaskStateOpen {
			_, _ = fmt.Fprintf(w, "  State: %s\n", task.State)
		}
	}
	return nil
}

// newListCommand creates the list command.
func newListCommand(factory Factory, global *globalOptions) *cobra.Command {
	var opts struct {
		Parent string
		Open   bool
		JSON   bool
	}

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List tasks",
		Long: `Display the task tree.

Sub-tasks are indented under their parents. A task with several parents
is listed under each of them.

Output format is tab-separated with columns:
  ID, STATE, SYNC, NAME

SYNC is "syncing" while the background sync runs, "synced" once it has
succeeded and "failed" when it did not.

Examples:
  # List every task
  opus list

  # Hide finished tasks and everything below them
  opus list --open

  # List the subtree of task #3
  opus list --parent 3

  # Output in JSON format
  opus list --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			input := usecase.ListTasksInput{HideFinished: opts.Open}
			if opts.Parent != "" {
				id, err := parseTaskID(opts.Parent)
				if err != nil {
					return fmt.Errorf("invalid parent ID: %w", err)
				}
				input.Parent = &id
			}

			return run(cmd, factory, global, func(c *app.Container) error {
				out, err := c.ListTasksUseCase().Execute(cmd.Context(), input)
				if err != nil {
					return err
				}
				if opts.JSON {
					return writeTaskTreeJSON(cmd.OutOrStdout(), out.Nodes)
				}
				printTaskTree(cmd.OutOrStdout(), out.Nodes)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&opts.Parent, "parent", "", "Show only the subtree of this task")
	cmd.Flags().BoolVar(&opts.Open, "open", false, "Hide finished tasks")
	cmd.Flags().BoolVar(&opts.JSON, "json", false, "Output in JSON format")

	return cmd
}

// printTaskTree prints tree nodes in TSV format with indented names.
func printTaskTree(w io.Writer, nodes []domain.TreeNode) {
	if len(nodes) == 0 {
		_, _ = fmt.Fprintln(w, "No tasks found")
		return
	}

	tw := tabwriter.NewWriter(w, 0, 0, 3, ' ', 0)
	defer func() { _ = tw.Flush() }()

	// Header
	_, _ = fmt.Fprintln(tw, "ID\tSTATE\tSYNC\tNAME")

	// Rows
	for _, node := range nodes {
		_, _ = fmt.Fprintf(tw, "%d\t%s\t%s\t%s%s\n",
			node.Task.ID,
			node.Task.State,
			syncStatus(node.Task),
			strings.Repeat("  ", node.Depth),
			node.Task.Name,
		)
	}
}

// jsonNode is a task with its depth in the listed tree.
type jsonNode struct {
	domain.Task
	Depth int `json:"depth"`
}

func writeTaskTreeJSON(w io.Writer, nodes []domain.TreeNode) error {
	out := make([]jsonNode, len(nodes))
	for i, n := range nodes {
		out[i] = jsonNode{Task: n.Task, Depth: n.Depth}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

// syncStatus describes where a task is in its sync sequence.
func syncStatus(t domain.Task) string {
	switch {
	case t.IsSyncing:
		return "syncing"
	case t.HasBeenSynced:
		return "synced"
	default:
		return "failed"
	}
}

// newShowCommand creates the show command.
func newShowCommand(factory Factory, global *globalOptions) *cobra.Command {
	var opts struct {
		JSON bool
	}

	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Display task details",
		Long: `Display detailed information about a task.

Output includes:
  - Task ID and name
  - Description
  - State, sync status, parents, ticket, deadline
  - Sub-tasks (if any)

Examples:
  # Show task by ID
  opus show 1

  # Output in JSON format
  opus show 1 --json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			taskID, err := parseTaskID(args[0])
			if err != nil {
				return fmt.Errorf("invalid task ID: %w", err)
			}

			return run(cmd, factory, global, func(c *app.Container) error {
				out, err := c.ShowTaskUseCase().Execute(cmd.Context(), usecase.ShowTaskInput{TaskID: taskID})
				if err != nil {
					return err
				}

				if opts.JSON {
					type jsonTask struct {
						Task     domain.Task   `json:"task"`
						Parents  []domain.Task `json:"parents"`
						Children []domain.Task `json:"children"`
					}
					enc := json.NewEncoder(cmd.OutOrStdout())
					enc.SetIndent("", "  ")
					return enc.Encode(jsonTask{
						Task:     out.Task,
						Parents:  out.Parents,
						Children: out.Children,
					})
				}

				printTaskDetails(cmd.OutOrStdout(), out)
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&opts.JSON, "json", false, "Output in JSON format")

	return cmd
}

// printTaskDetails prints a task and its direct relatives.
func printTaskDetails(w io.Writer, out *usecase.ShowTaskOutput) {
	task := out.Task

	// Header
	_, _ = fmt.Fprintf(w, "# Task %d: %s\n\n", task.ID, task.Name)

	// Description
	if task.Description != "" {
		_, _ = fmt.Fprintf(w, "%s\n\n", task.Description)
	}

	// Fields
	_, _ = fmt.Fprintf(w, "State: %s\n", task.State.Display())
	_, _ = fmt.Fprintf(w, "Sync: %s\n", syncStatus(task))
	_, _ = fmt.Fprintf(w, "Parents: %s\n", formatIDs(task.Parents))

	if task.TicketReference != nil {
		ticket := task.TicketReference
		if ticket.URL != "" {
			_, _ = fmt.Fprintf(w, "Ticket: %s (%s)\n", ticket.ID, ticket.URL)
		} else {
			_, _ = fmt.Fprintf(w, "Ticket: %s\n", ticket.ID)
		}
	}
	if task.Deadline != nil {
		_, _ = fmt.Fprintf(w, "Deadline: %s\n", task.Deadline.Format(time.RFC3339))
	}

	_, _ = fmt.Fprintf(w, "Created: %s\n", task.CreationDatetime.Format(time.RFC3339))

	// Sub-tasks
	if len(out.Children) > 0 {
		_, _ = fmt.Fprintln(w, "\nSub-tasks:")
		for _, child := range out.Children {
			_, _ = fmt.Fprintf(w, "  #%d [%s] %s\n", child.ID, child.State, child.Name)
		}
	}
}

// newDoneCommand creates the done command.
func newDoneCommand(factory Factory, global *globalOptions) *cobra.Command {
	return newSetStateCommand(factory, global, domain.TaskStateFinished, &cobra.Command{
		Use:   "done <id>",
		Short: "Mark a task as finished",
		Long: `Mark a task as finished.

Examples:
  opus done 3
  opus done "#3"`,
	})
}

// newReopenCommand creates the reopen command.
func newReopenCommand(factory Factory, global *globalOptions) *cobra.Command {
	return newSetStateCommand(factory, global, domain.TaskStateOpen, &cobra.Command{
		Use:   "reopen <id>",
		Short: "Move a task back to open",
		Long: `Move a task back to the open state, whatever state it is in.

Examples:
  opus reopen 3`,
	})
}

// newSetStateCommand fills cmd with a RunE that moves one task to state.
func newSetStateCommand(factory Factory, global *globalOptions, state domain.TaskState, cmd *cobra.Command) *cobra.Command {
	cmd.Args = cobra.ExactArgs(1)
	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		taskID, err := parseTaskID(args[0])
		if err != nil {
			return fmt.Errorf("invalid task ID: %w", err)
		}
		return changeTaskState(cmd, factory, global, taskID, state)
	}
	return cmd
}

// newStateCommand creates the state command.
func newStateCommand(factory Factory, global *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "state <id> <state>",
		Short: "Set the state of a task",
		Long: `Set the state of a task.

Valid states: ` + strings.Join(stateNames(), ", ") + `

Examples:
  opus state 3 waiting
  opus state 3 work_in_progress`,
		Args: cobra.ExactArgs(2),
		ValidArgsFunction: func(_ *cobra.Command, args []string, _ string) ([]string, cobra.ShellCompDirective) {
			if len(args) == 1 {
				return stateNames(), cobra.ShellCompDirectiveNoFileComp
			}
			return nil, cobra.ShellCompDirectiveNoFileComp
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			taskID, err := parseTaskID(args[0])
			if err != nil {
				return fmt.Errorf("invalid task ID: %w", err)
			}
			state, err := domain.ParseTaskState(args[1])
			if err != nil {
				return err
			}
			return changeTaskState(cmd, factory, global, taskID, state)
		},
	}
}

func changeTaskState(cmd *cobra.Command, factory Factory, global *globalOptions, taskID domain.TaskID, state domain.TaskState) error {
	return run(cmd, factory, global, func(c *app.Container) error {
		out, err := c.ChangeTaskStateUseCase().Execute(cmd.Context(), usecase.ChangeTaskStateInput{
			State:  state,
			TaskID: taskID,
		})
		if err != nil {
			return err
		}
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Task #%d: %s -> %s\n", taskID, out.Previous, out.Task.State)
		return nil
	})
}

// newRmCommand creates the rm command.
func newRmCommand(factory Factory, global *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "rm <id>",
		Short: "Delete a task",
		Long: `Delete a task.

Sub-tasks are kept. They lose the link to the deleted task, and those
that had no other parent become root tasks.

Examples:
  # Delete task by ID
  opus rm 1

  # Delete task using # prefix
  opus rm "#1"`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			taskID, err := parseTaskID(args[0])
			if err != nil {
				return fmt.Errorf("invalid task ID: %w", err)
			}

			return run(cmd, factory, global, func(c *app.Container) error {
				out, err := c.RemoveTaskUseCase().Execute(cmd.Context(), usecase.RemoveTaskInput{TaskID: taskID})
				if err != nil {
					return err
				}
				w := cmd.OutOrStdout()
				_, _ = fmt.Fprintf(w, "Removed task #%d\n", out.Task.ID)
				if len(out.Promoted) > 0 {
					_, _ = fmt.Fprintf(w, "Now root tasks: %s\n", formatIDs(out.Promoted))
				}
				return nil
			})
		},
	}
}
