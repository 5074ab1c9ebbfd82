package usecase

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"
	"time"

	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"

	"github.com/runoshun/opus/internal/domain"
)

// ImportFormat selects the parser for an import file.
type ImportFormat string

// Supported import formats.
const (
	ImportFormatYAML  ImportFormat = "yaml"
	ImportFormatJSON  ImportFormat = "json"
	ImportFormatJSONC ImportFormat = "jsonc"
)

// ImportFormatFromPath guesses the format from a file extension.
// Unknown extensions default to YAML.
func ImportFormatFromPath(path string) ImportFormat {
	switch {
	case strings.HasSuffix(path, ".jsonc"):
		return ImportFormatJSONC
	case strings.HasSuffix(path, ".json"):
		return ImportFormatJSON
	default:
		return ImportFormatYAML
	}
}

// importEntry is one task in an import file.
type importEntry struct {
	Ticket      *domain.Ticket  `json:"ticket" yaml:"ticket"`
	Deadline    *time.Time      `json:"deadline" yaml:"deadline"`
	Name        string          `json:"name" yaml:"name"`
	Description string          `json:"description" yaml:"description"`
	State       string          `json:"state" yaml:"state"`
	Parents     []domain.TaskID `json:"parents" yaml:"parents"`
	Under       []int           `json:"under" yaml:"under"`
}

type importFile struct {
	Tasks []importEntry `json:"tasks" yaml:"tasks"`
}

// ImportTasksInput contains the parameters for a bulk import.
type ImportTasksInput struct {
	Content []byte
	Format  ImportFormat
	DryRun  bool // Validate only
}

// ImportTasksOutput contains the created (or, on a dry run, validated) tasks.
type ImportTasksOutput struct {
	Tasks []domain.Task
}

// ImportTasks is the use case for creating many tasks from a file.
// Entries may nest under earlier entries of the same file by 1-based index.
type ImportTasks struct {
	store  domain.TaskStore
	logger domain.Logger
}

// NewImportTasks creates a new ImportTasks use case.
func NewImportTasks(store domain.TaskStore, logger domain.Logger) *ImportTasks {
	return &ImportTasks{store: store, logger: logger}
}

// Execute parses and validates every entry before adding any of them.
func (uc *ImportTasks) Execute(ctx context.Context, in ImportTasksInput) (*ImportTasksOutput, error) {
	entries, err := parseImport(in.Content, in.Format)
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return nil, fmt.Errorf("%w: no tasks", domain.ErrInvalidImport)
	}

	existing := uc.store.State().Tasks.TaskList
	inputs := make([]AddTaskInput, len(entries))
	validated := make([]domain.TaskData, len(entries))
	for i, e := range entries {
		add, data, err := validateEntry(existing, e, i)
		if err != nil {
			return nil, fmt.Errorf("%w: task %d: %w", domain.ErrInvalidImport, i+1, err)
		}
		inputs[i] = add
		validated[i] = data
	}

	out := &ImportTasksOutput{}
	if in.DryRun {
		// Placeholder ids follow entry order; parents list existing tasks only.
		for i, data := range validated {
			out.Tasks = append(out.Tasks, domain.Task{ID: domain.TaskID(i + 1), TaskData: data})
		}
		return out, nil
	}

	ids := make([]domain.TaskID, len(entries))
	for i, e := range entries {
		add := inputs[i]
		add.Parents = slices.Clone(add.Parents)
		for _, idx := range e.Under {
			add.Parents = append(add.Parents, ids[idx-1])
		}
		data, err := buildTaskData(uc.store.State().Tasks.TaskList, add)
		if err != nil {
			// A parent was removed concurrently; earlier entries stay.
			return out, fmt.Errorf("task %d: %w", i+1, err)
		}
		ids[i] = uc.store.AddContext(ctx, data)
		if task, ok := domain.Find(uc.store.State().Tasks.TaskList, ids[i]); ok {
			out.Tasks = append(out.Tasks, task)
		}
	}

	uc.logger.Info(0, "usecase", fmt.Sprintf("imported %d tasks", len(out.Tasks)))
	return out, nil
}

// validateEntry checks entry i against the existing tasks. References to
// earlier entries are checked by index only.
func validateEntry(existing []domain.Task, e importEntry, i int) (AddTaskInput, domain.TaskData, error) {
	for _, idx := range e.Under {
		if idx < 1 || idx > i {
			return AddTaskInput{}, domain.TaskData{}, fmt.Errorf("under %d: must reference an earlier entry", idx)
		}
	}
	in := AddTaskInput{
		Name:        e.Name,
		Description: e.Description,
		Parents:     e.Parents,
		Ticket:      e.Ticket,
		Deadline:    e.Deadline,
	}
	if e.State != "" {
		state, err := domain.ParseTaskState(e.State)
		if err != nil {
			return AddTaskInput{}, domain.TaskData{}, err
		}
		in.State = state
	}
	data, err := buildTaskData(existing, in)
	if err != nil {
		return AddTaskInput{}, domain.TaskData{}, err
	}
	return in, data, nil
}

func parseImport(content []byte, format ImportFormat) ([]importEntry, error) {
	switch format {
	case ImportFormatYAML, "":
		return parseYAMLImport(content)
	case ImportFormatJSON, ImportFormatJSONC:
		return parseJSONImport(jsonc.ToJSON(content))
	default:
		return nil, fmt.Errorf("%w: unsupported format %q", domain.ErrInvalidImport, format)
	}
}

func parseYAMLImport(content []byte) ([]importEntry, error) {
	var node yaml.Node
	if err := yaml.Unmarshal(content, &node); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrInvalidImport, err)
	}
	if len(node.Content) == 0 {
		return nil, nil
	}

	root := node.Content[0]
	if root.Kind == yaml.SequenceNode {
		var entries []importEntry
		if err := decodeYAMLStrict(content, &entries); err != nil {
			return nil, err
		}
		return entries, nil
	}

	var file importFile
	if err := decodeYAMLStrict(content, &file); err != nil {
		return nil, err
	}
	return file.Tasks, nil
}

func decodeYAMLStrict(content []byte, v any) error {
	dec := yaml.NewDecoder(bytes.NewReader(content))
	dec.KnownFields(true)
	if err := dec.Decode(v); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("%w: %w", domain.ErrInvalidImport, err)
	}
	return nil
}

func parseJSONImport(content []byte) ([]importEntry, error) {
	trimmed := bytes.TrimSpace(content)
	if len(trimmed) == 0 {
		return nil, nil
	}

	if trimmed[0] == '[' {
		var entries []importEntry
		if err := decodeJSONStrict(trimmed, &entries); err != nil {
			return nil, err
		}
		return entries, nil
	}

	var file importFile
	if err := decodeJSONStrict(trimmed, &file); err != nil {
		return nil, err
	}
	return file.Tasks, nil
}

func decodeJSONStrict(content []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(content))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrInvalidImport, err)
	}
	return nil
}
