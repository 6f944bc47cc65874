package remote

import (
	"context"
	"sync"
)

// Memory is an in-process Store with subscription fan-out. Writes
// notify every subscriber of the path synchronously.
//
// Test hooks: SetWriteErr makes subsequent writes fail, simulating an
// offline or unauthorized remote; DenyPrefix rejects writes under a
// path prefix with ErrUnauthorized, simulating a permission boundary.
type Memory struct {
	mu         sync.RWMutex
	values     map[string]Value
	subs       map[string]map[int]func(Value)
	nextSub    int
	writeErr   error
	deniedPath string
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		values: make(map[string]Value),
		subs:   make(map[string]map[int]func(Value)),
	}
}

// Read returns the value at path, or ErrNotFound.
func (m *Memory) Read(_ context.Context, path string) (Value, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.values[path]
	if !ok {
		return nil, ErrNotFound
	}
	return v, nil
}

// Write stores v at path and notifies subscribers.
func (m *Memory) Write(_ context.Context, path string, v Value) error {
	m.mu.Lock()
	if err := m.writeBlocked(path); err != nil {
		m.mu.Unlock()
		return err
	}
	cp := make(Value, len(v))
	copy(cp, v)
	m.values[path] = cp
	fns := m.subscribers(path)
	m.mu.Unlock()

	for _, fn := range fns {
		fn(cp)
	}
	return nil
}

// Delete removes the value at path. Missing paths are ignored.
func (m *Memory) Delete(_ context.Context, path string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.writeBlocked(path); err != nil {
		return err
	}
	delete(m.values, path)
	return nil
}

// Subscribe registers fn for pushes at path. When a value already
// exists, fn fires once immediately with it.
func (m *Memory) Subscribe(path string, fn func(Value)) (cancel func()) {
	m.mu.Lock()
	id := m.nextSub
	m.nextSub++
	if m.subs[path] == nil {
		m.subs[path] = make(map[int]func(Value))
	}
	m.subs[path][id] = fn
	current, ok := m.values[path]
	m.mu.Unlock()

	if ok {
		fn(current)
	}
	return func() {
		m.mu.Lock()
		delete(m.subs[path], id)
		m.mu.Unlock()
	}
}

// Push injects a value as if another device wrote it. Unlike Write it
// ignores the error hooks, since it models inbound traffic.
func (m *Memory) Push(path string, v Value) {
	m.mu.Lock()
	cp := make(Value, len(v))
	copy(cp, v)
	m.values[path] = cp
	fns := m.subscribers(path)
	m.mu.Unlock()

	for _, fn := range fns {
		fn(cp)
	}
}

// SetWriteErr makes every subsequent Write/Delete fail with err.
// Pass nil to restore normal operation.
func (m *Memory) SetWriteErr(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.writeErr = err
}

// DenyPrefix rejects writes under the given path prefix with
// ErrUnauthorized. Pass "" to clear.
func (m *Memory) DenyPrefix(prefix string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deniedPath = prefix
}

// Value returns the stored value at path, for assertions.
func (m *Memory) Value(path string) (Value, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.values[path]
	return v, ok
}

func (m *Memory) writeBlocked(path string) error {
	if m.writeErr != nil {
		return m.writeErr
	}
	if m.deniedPath != "" && len(path) >= len(m.deniedPath) && path[:len(m.deniedPath)] == m.deniedPath {
		return ErrUnauthorized
	}
	return nil
}

func (m *Memory) subscribers(path string) []func(Value) {
	fns := make([]func(Value), 0, len(m.subs[path]))
	for _, fn := range m.subs[path] {
		fns = append(fns, fn)
	}
	return fns
}
