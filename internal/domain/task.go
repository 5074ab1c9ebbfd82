// Package domain contains core business entities and interfaces.
package domain

import (
	"slices"
	"time"
)

// TaskID identifies a task. IDs are unique within a collection and never reused.
type TaskID int64

// UserID identifies a user.
type UserID int

// User is a person referenced by a task as employer or worker.
type User struct {
	Firstname string `json:"firstname" yaml:"firstname" cbor:"firstname"`
	Lastname  string `json:"lastname" yaml:"lastname" cbor:"lastname"`
	ID        UserID `json:"id" yaml:"id" cbor:"id"`
}

// TicketID identifies an external ticket.
type TicketID string

// Ticket is an external reference attached to a task.
type Ticket struct {
	ID   TicketID `json:"id" yaml:"id" cbor:"id"`
	Name string   `json:"name" yaml:"name" cbor:"name"`
	URL  string   `json:"url,omitempty" yaml:"url,omitempty" cbor:"url,omitempty"`
}

// TaskData holds the user-supplied fields of a task.
// Fields are ordered to minimize memory padding.
type TaskData struct {
	TicketReference *Ticket    `json:"ticket_reference,omitempty" yaml:"ticket_reference,omitempty" cbor:"ticket_reference,omitempty"`
	Deadline        *time.Time `json:"deadline,omitempty" yaml:"deadline,omitempty" cbor:"deadline,omitempty"`
	Name            string     `json:"name" yaml:"name" cbor:"name"`
	Description     string     `json:"description,omitempty" yaml:"description,omitempty" cbor:"description,omitempty"`
	State           TaskState  `json:"state" yaml:"state" cbor:"state"`
	Parents         []TaskID   `json:"parents,omitempty" yaml:"parents,omitempty" cbor:"parents,omitempty"`
	Children        []TaskID   `json:"children,omitempty" yaml:"children,omitempty" cbor:"children,omitempty"`
	Employer        []User     `json:"employer,omitempty" yaml:"employer,omitempty" cbor:"employer,omitempty"`
	Worker          []User     `json:"worker,omitempty" yaml:"worker,omitempty" cbor:"worker,omitempty"`
}

// Task is a tracked to-do item.
// The sync flags are owned by the sync effect and never set by user actions.
type Task struct {
	CreationDatetime time.Time `json:"creation_datetime" yaml:"creation_datetime" cbor:"creation_datetime"`
	TaskData         `yaml:",inline"`
	ID               TaskID `json:"id" yaml:"id" cbor:"id"`
	HasBeenSynced    bool   `json:"has_been_synced" yaml:"has_been_synced" cbor:"has_been_synced"`
	IsSyncing        bool   `json:"is_syncing" yaml:"is_syncing" cbor:"is_syncing"`
}

// IsRoot returns true if the task has no parents.
func (t *Task) IsRoot() bool {
	return len(t.Parents) == 0
}

// HasParent reports whether id is one of the task's parents.
func (t *Task) HasParent(id TaskID) bool {
	return slices.Contains(t.Parents, id)
}

// IsFinished returns true if the task is in the finished state.
func (t *Task) IsFinished() bool {
	return t.State.IsDone()
}

// Clone returns a deep copy of the task so the copy shares no slices
// or pointers with t.
func (t Task) Clone() Task {
	c := t
	c.Parents = slices.Clone(t.Parents)
	c.Children = slices.Clone(t.Children)
	c.Employer = slices.Clone(t.Employer)
	c.Worker = slices.Clone(t.Worker)
	if t.TicketReference != nil {
		ticket := *t.TicketReference
		c.TicketReference = &ticket
	}
	if t.Deadline != nil {
		deadline := *t.Deadline
		c.Deadline = &deadline
	}
	return c
}

// TasksState is the task slice of the application state.
type TasksState struct {
	TaskList []Task `json:"task_list" yaml:"task_list" cbor:"task_list"`
}

// RootState is the whole application state tree, as persisted.
type RootState struct {
	Tasks TasksState `json:"tasks" yaml:"tasks" cbor:"tasks"`
}

// NewRootState returns the default (empty) application state.
func NewRootState() RootState {
	return RootState{Tasks: TasksState{TaskList: []Task{}}}
}

// Clone returns a deep copy of the state.
func (s RootState) Clone() RootState {
	list := make([]Task, len(s.Tasks.TaskList))
	for i, t := range s.Tasks.TaskList {
		list[i] = t.Clone()
	}
	return RootState{Tasks: TasksState{TaskList: list}}
}

// MaxID returns the largest task ID in the state, or 0 if empty.
func (s RootState) MaxID() TaskID {
	var maxID TaskID
	for _, t := range s.Tasks.TaskList {
		if t.ID > maxID {
			maxID = t.ID
		}
	}
	return maxID
}
