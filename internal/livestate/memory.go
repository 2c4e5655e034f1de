package livestate

import (
	"context"
	"slices"
	"sync"
)

// Operation kinds recorded by Memory
const (
	OpAdd    = "add"
	OpRemove = "remove"
)

// Operation is a write applied to a Memory live state
type Operation struct {
	Op  string
	URL string
}

// Memory is an in-memory LiveState that records every write
type Memory struct {
	mu       sync.Mutex
	sources  map[string]struct{}
	ops      []Operation
	failures map[Operation]error
	listErr  error
}

// NewMemory creates an in-memory live state holding the given sources
func NewMemory(urls ...string) *Memory {
	m := &Memory{
		sources:  make(map[string]struct{}, len(urls)),
		failures: make(map[Operation]error),
	}
	for _, url := range urls {
		m.sources[url] = struct{}{}
	}
	return m
}

// FailOn makes the given operation on url return err instead of applying
func (m *Memory) FailOn(op, url string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failures[Operation{Op: op, URL: url}] = err
}

// FailList makes CurrentSources return err
func (m *Memory) FailList(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listErr = err
}

// Operations returns the writes applied so far, in order
func (m *Memory) Operations() []Operation {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.ops)
}

// CurrentSources implements LiveState
func (m *Memory) CurrentSources(_ context.Context) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.listErr != nil {
		return nil, m.listErr
	}
	result := make([]string, 0, len(m.sources))
	for url := range m.sources {
		result = append(result, url)
	}
	slices.Sort(result)
	return result, nil
}

// AddSource implements LiveState
func (m *Memory) AddSource(_ context.Context, url string) error {
	return m.apply(Operation{Op: OpAdd, URL: url})
}

// RemoveSource implements LiveState
func (m *Memory) RemoveSource(_ context.Context, url string) error {
	return m.apply(Operation{Op: OpRemove, URL: url})
}

func (m *Memory) apply(op Operation) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err, ok := m.failures[op]; ok {
		return err
	}
	if op.Op == OpAdd {
		m.sources[op.URL] = struct{}{}
	} else {
		delete(m.sources, op.URL)
	}
	m.ops = append(m.ops, op)
	return nil
}
