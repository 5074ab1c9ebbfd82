package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func treeFixture() []Task {
	mk := func(id TaskID, name string, parents ...TaskID) Task {
		return Task{ID: id, TaskData: TaskData{Name: name, State: TaskStateOpen, Parents: parents}}
	}
	return []Task{
		mk(1, "task1"),
		mk(2, "task2", 1),
		mk(3, "task3", 1),
		mk(4, "task4", 2, 1),
		mk(5, "task5"),
		{ID: 6, TaskData: TaskData{Name: "task6", Parents: []TaskID{}}},
	}
}

func ids(tasks []Task) []TaskID {
	out := make([]TaskID, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, t.ID)
	}
	return out
}

func TestFilterByParent(t *testing.T) {
	tasks := treeFixture()
	p1, p2, p5 := TaskID(1), TaskID(2), TaskID(5)

	tests := []struct {
		name   string
		parent *TaskID
		want   []TaskID
	}{
		{"roots include nil and empty parents", nil, []TaskID{1, 5, 6}},
		{"children of 1", &p1, []TaskID{2, 3, 4}},
		{"children of 2", &p2, []TaskID{4}},
		{"leaf", &p5, []TaskID{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ids(FilterByParent(tasks, tt.parent)))
		})
	}
}

func TestFlatten(t *testing.T) {
	nodes := Flatten(treeFixture())

	var got []TaskID
	var depths []int
	for _, n := range nodes {
		got = append(got, n.Task.ID)
		depths = append(depths, n.Depth)
	}

	// task4 has two parents and is listed under both
	assert.Equal(t, []TaskID{1, 2, 4, 3, 4, 5, 6}, got)
	assert.Equal(t, []int{0, 1, 2, 1, 1, 0, 0}, depths)
}

func TestFlatten_CutsCycles(t *testing.T) {
	tasks := []Task{
		{ID: 1, TaskData: TaskData{Name: "root"}},
		{ID: 2, TaskData: TaskData{Name: "a", Parents: []TaskID{1, 3}}},
		{ID: 3, TaskData: TaskData{Name: "b", Parents: []TaskID{2}}},
	}

	nodes := Flatten(tasks)
	assert.Len(t, nodes, 3)
}

func TestTask_Clone_DoesNotAlias(t *testing.T) {
	task := Task{ID: 1, TaskData: TaskData{Parents: []TaskID{2}, TicketReference: &Ticket{ID: "T-1"}}}

	c := task.Clone()
	c.Parents[0] = 9
	c.TicketReference.Name = "changed"

	assert.Equal(t, TaskID(2), task.Parents[0])
	assert.Empty(t, task.TicketReference.Name)
}

func TestFlattenFrom(t *testing.T) {
	p1 := TaskID(1)
	nodes := FlattenFrom(treeFixture(), &p1)

	var got []TaskID
	for _, n := range nodes {
		got = append(got, n.Task.ID)
	}
	assert.Equal(t, []TaskID{2, 4, 3, 4}, got)
	assert.Equal(t, 0, nodes[0].Depth)
}
