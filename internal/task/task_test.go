package task

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// mockTask is a Task whose behaviour is supplied by a function.
type mockTask struct {
	id        uuid.UUID
	taskType  string
	executeFn func(ctx context.Context) error

	mu       sync.Mutex
	executed int
}

func newMockTask(fn func(ctx context.Context) error) *mockTask {
	return &mockTask{id: uuid.New(), taskType: "mock", executeFn: fn}
}

func (m *mockTask) ID() uuid.UUID { return m.id }
func (m *mockTask) Type() string  { return m.taskType }

func (m *mockTask) Execute(ctx context.Context) error {
	m.mu.Lock()
	m.executed++
	m.mu.Unlock()
	if m.executeFn == nil {
		return nil
	}
	return m.executeFn(ctx)
}

func (m *mockTask) Executions() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.executed
}
