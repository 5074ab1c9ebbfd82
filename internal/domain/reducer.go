package domain

import "slices"

// Reduce computes the next task collection for an action.
//
// Reduce never mutates state. Actions that do not change anything
// (unknown types, missing ids, duplicate adds) return state as is, so
// callers can detect "unchanged" by comparing the backing slice.
func Reduce(state TasksState, action Action) TasksState {
	switch a := action.(type) {
	case ActionAdd:
		return reduceAdd(state, a)
	case ActionAddPending:
		return modifyTask(state, a.ID, func(t *Task) {
			t.IsSyncing = true
			t.HasBeenSynced = false
		})
	case ActionAddSuccess:
		return modifyTask(state, a.ID, func(t *Task) {
			t.IsSyncing = false
			t.HasBeenSynced = true
		})
	case ActionAddFail:
		return modifyTask(state, a.ID, func(t *Task) {
			t.IsSyncing = false
			t.HasBeenSynced = false
		})
	case ActionChangeState:
		if !a.State.IsValid() {
			return state
		}
		return modifyTask(state, a.ID, func(t *Task) {
			t.State = a.State
		})
	case ActionRemove:
		return reduceRemove(state, a.ID)
	default:
		return state
	}
}

// ReduceRoot applies Reduce to the tasks slice of the state tree.
func ReduceRoot(state RootState, action Action) RootState {
	next := Reduce(state.Tasks, action)
	if sameList(next.TaskList, state.Tasks.TaskList) {
		return state
	}
	return RootState{Tasks: next}
}

func reduceAdd(state TasksState, a ActionAdd) TasksState {
	if indexOf(state.TaskList, a.ID) >= 0 {
		return state
	}

	data := a.Data
	if data.State == "" {
		data.State = TaskStateOpen
	}
	task := Task{
		ID:               a.ID,
		CreationDatetime: a.Created,
		TaskData:         data,
		HasBeenSynced:    false,
		IsSyncing:        false,
	}
	task = task.Clone()

	next := make([]Task, 0, len(state.TaskList)+1)
	for _, t := range state.TaskList {
		if task.HasParent(t.ID) && !slices.Contains(t.Children, a.ID) {
			t.Children = append(slices.Clone(t.Children), a.ID)
		}
		next = append(next, t)
	}
	next = append(next, task)
	return TasksState{TaskList: next}
}

// reduceRemove drops the task and strips its id from the hierarchy links
// of the remaining tasks; children that lose their last parent become roots.
func reduceRemove(state TasksState, id TaskID) TasksState {
	if indexOf(state.TaskList, id) < 0 {
		return state
	}

	next := make([]Task, 0, len(state.TaskList)-1)
	for _, t := range state.TaskList {
		if t.ID == id {
			continue
		}
		if slices.Contains(t.Parents, id) {
			t.Parents = withoutID(t.Parents, id)
		}
		if slices.Contains(t.Children, id) {
			t.Children = withoutID(t.Children, id)
		}
		next = append(next, t)
	}
	return TasksState{TaskList: next}
}

// modifyTask replaces the task with the given id by a modified copy.
func modifyTask(state TasksState, id TaskID, fn func(*Task)) TasksState {
	idx := indexOf(state.TaskList, id)
	if idx < 0 {
		return state
	}

	next := slices.Clone(state.TaskList)
	updated := next[idx]
	fn(&updated)
	next[idx] = updated
	return TasksState{TaskList: next}
}

func indexOf(tasks []Task, id TaskID) int {
	return slices.IndexFunc(tasks, func(t Task) bool {
		return t.ID == id
	})
}

func withoutID(ids []TaskID, id TaskID) []TaskID {
	out := make([]TaskID, 0, len(ids))
	for _, v := range ids {
		if v != id {
			out = append(out, v)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// sameList reports whether a and b share the same backing array and length.
func sameList(a, b []Task) bool {
	if len(a) != len(b) {
		return false
	}
	if len(a) == 0 {
		return true
	}
	return &a[0] == &b[0]
}
