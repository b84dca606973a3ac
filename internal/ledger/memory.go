package ledger

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
)

// Memory is an in-process Store used by tests and as a default when no
// ledger path is configured.
type Memory struct {
	mu    sync.Mutex
	locks map[Namespace]*sync.Mutex
	data  map[Namespace]map[string][]byte
}

// NewMemory creates an empty in-memory ledger.
func NewMemory() *Memory {
	return &Memory{
		locks: make(map[Namespace]*sync.Mutex),
		data:  make(map[Namespace]map[string][]byte),
	}
}

func (m *Memory) lock(ns Namespace) *sync.Mutex {
	m.mu.Lock()
	defer m.mu.Unlock()
	l, ok := m.locks[ns]
	if !ok {
		l = &sync.Mutex{}
		m.locks[ns] = l
		m.data[ns] = make(map[string][]byte)
	}
	return l
}

func (m *Memory) Get(ctx context.Context, ns Namespace, key string, out any) (bool, error) {
	l := m.lock(ns)
	l.Lock()
	defer l.Unlock()

	raw, ok := m.data[ns][key]
	if !ok {
		return false, nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return false, fmt.Errorf("decode %s/%s: %w", ns, key, err)
	}
	return true, nil
}

func (m *Memory) Set(ctx context.Context, ns Namespace, key string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode %s/%s: %w", ns, key, err)
	}

	l := m.lock(ns)
	l.Lock()
	defer l.Unlock()
	m.data[ns][key] = raw
	return nil
}

func (m *Memory) Update(ctx context.Context, ns Namespace, key string, fn func(raw []byte) ([]byte, error)) error {
	l := m.lock(ns)
	l.Lock()
	defer l.Unlock()

	prev := m.data[ns][key]
	next, err := fn(prev)
	if err != nil {
		return err
	}
	if next == nil {
		delete(m.data[ns], key)
		return nil
	}
	m.data[ns][key] = next
	return nil
}

func (m *Memory) Delete(ctx context.Context, ns Namespace, key string) error {
	l := m.lock(ns)
	l.Lock()
	defer l.Unlock()
	delete(m.data[ns], key)
	return nil
}

func (m *Memory) ListKeys(ctx context.Context, ns Namespace) ([]string, error) {
	l := m.lock(ns)
	l.Lock()
	defer l.Unlock()

	keys := make([]string, 0, len(m.data[ns]))
	for k := range m.data[ns] {
		keys = append(keys, k)
	}
	return keys, nil
}

func (m *Memory) Close() error { return nil }
