package domain

// FilterByParent returns the tasks directly under parent, in collection order.
// A nil parent selects the root tasks.
func FilterByParent(tasks []Task, parent *TaskID) []Task {
	out := make([]Task, 0)
	for _, t := range tasks {
		if parent == nil {
			if t.IsRoot() {
				out = append(out, t)
			}
			continue
		}
		if t.HasParent(*parent) {
			out = append(out, t)
		}
	}
	return out
}

// Find returns the task with the given id.
func Find(tasks []Task, id TaskID) (Task, bool) {
	idx := indexOf(tasks, id)
	if idx < 0 {
		return Task{}, false
	}
	return tasks[idx], true
}

// TreeNode is a task with its depth in the rendered tree.
type TreeNode struct {
	Task  Task
	Depth int
}

// Flatten walks the tree depth first from the roots and returns every
// reachable task with its depth. A task with several parents appears
// once under each of them. Cycles are cut at the first repeated id on
// the current path.
func Flatten(tasks []Task) []TreeNode {
	return FlattenFrom(tasks, nil)
}

// FlattenFrom is Flatten restricted to the descendants of parent.
// A nil parent starts at the roots.
func FlattenFrom(tasks []Task, parent *TaskID) []TreeNode {
	var out []TreeNode
	var walk func(parent *TaskID, depth int, path map[TaskID]bool)
	walk = func(parent *TaskID, depth int, path map[TaskID]bool) {
		for _, t := range FilterByParent(tasks, parent) {
			if path[t.ID] {
				continue
			}
			out = append(out, TreeNode{Task: t, Depth: depth})
			path[t.ID] = true
			id := t.ID
			walk(&id, depth+1, path)
			delete(path, t.ID)
		}
	}
	path := map[TaskID]bool{}
	if parent != nil {
		path[*parent] = true
	}
	walk(parent, 0, path)
	return out
}
