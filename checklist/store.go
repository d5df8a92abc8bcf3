// Package checklist holds the in-memory onboarding checklist.
//
// Membership is fixed at construction: tasks are never added or removed,
// only their done flag changes. State lives for the process lifetime.
package checklist

import (
	"fmt"
	"sync"
)

// Store manages checklist state
type Store struct {
	mu sync.RWMutex

	tasks []Task
	index map[string]int
}

// NewStore creates a store seeded with the given tasks, in order.
// Later duplicates of an id are ignored so ids stay unique.
func NewStore(seed []Task) *Store {
	s := &Store{
		tasks: make([]Task, 0, len(seed)),
		index: make(map[string]int, len(seed)),
	}
	for _, t := range seed {
		if _, dup := s.index[t.ID]; dup {
			continue
		}
		s.index[t.ID] = len(s.tasks)
		s.tasks = append(s.tasks, t)
	}
	return s
}

// NewDefaultStore creates a store seeded with DefaultTasks
func NewDefaultStore() *Store {
	return NewStore(DefaultTasks())
}

// ListTasks returns a copy of all tasks in seed order
func (s *Store) ListTasks() []Task {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]Task, len(s.tasks))
	copy(result, s.tasks)
	return result
}

// Get returns a task by id
func (s *Store) Get(id string) (Task, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i, ok := s.index[id]
	if !ok {
		return Task{}, false
	}
	return s.tasks[i], true
}

// Toggle updates a task's done flag. A nil done flips the current value,
// otherwise done is set to exactly *done. Concurrent toggles of the same id
// are last-write-wins.
func (s *Store) Toggle(id string, done *bool) (Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i, ok := s.index[id]
	if !ok {
		return Task{}, fmt.Errorf("%w: %q", ErrTaskNotFound, id)
	}

	if done != nil {
		s.tasks[i].Done = *done
	} else {
		s.tasks[i].Done = !s.tasks[i].Done
	}
	return s.tasks[i], nil
}

// Len returns the number of tasks
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.tasks)
}
