package store

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
)

// Memory provides a thread-safe in-memory document store. Используется в
// режиме memory и как дублёр хранилища в тестах.
type Memory struct {
	data  map[string]json.RawMessage
	mutex sync.RWMutex
}

// NewMemory initializes an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{data: make(map[string]json.RawMessage)}
}

func (m *Memory) Read(_ context.Context, path string) (json.RawMessage, bool, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	raw, ok := m.data[path]
	if !ok {
		return nil, false, nil
	}
	return raw, true, nil
}

func (m *Memory) Write(_ context.Context, path string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal document %q: %w", path, err)
	}

	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.data[path] = raw
	return nil
}

func (m *Memory) Update(_ context.Context, path string, fields map[string]any) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	doc := make(map[string]any)
	if raw, ok := m.data[path]; ok {
		if err := json.Unmarshal(raw, &doc); err != nil {
			return fmt.Errorf("failed to decode document %q: %w", path, err)
		}
	}
	for k, v := range fields {
		doc[k] = v
	}

	raw, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to marshal document %q: %w", path, err)
	}
	m.data[path] = raw
	return nil
}

func (m *Memory) Remove(_ context.Context, path string) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	delete(m.data, path)
	prefix := path + "/"
	for p := range m.data {
		if strings.HasPrefix(p, prefix) {
			delete(m.data, p)
		}
	}
	return nil
}

func (m *Memory) Exists(_ context.Context, path string) (bool, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	_, ok := m.data[path]
	return ok, nil
}

func (m *Memory) CreateIfAbsent(_ context.Context, path string, value any) (bool, error) {
	raw, err := json.Marshal(value)
	if err != nil {
		return false, fmt.Errorf("failed to marshal document %q: %w", path, err)
	}

	m.mutex.Lock()
	defer m.mutex.Unlock()

	if _, ok := m.data[path]; ok {
		return false, nil
	}
	m.data[path] = raw
	return true, nil
}

func (m *Memory) IncrementField(_ context.Context, path, field string, delta int64) (int64, error) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	raw, ok := m.data[path]
	if !ok {
		return 0, fmt.Errorf("document %q does not exist", path)
	}

	doc := make(map[string]any)
	if err := json.Unmarshal(raw, &doc); err != nil {
		return 0, fmt.Errorf("failed to decode document %q: %w", path, err)
	}

	var current int64
	if v, ok := doc[field]; ok {
		// json.Unmarshal в map даёт числа как float64
		if f, ok := v.(float64); ok {
			current = int64(f)
		}
	}
	next := current + delta
	doc[field] = next

	updated, err := json.Marshal(doc)
	if err != nil {
		return 0, fmt.Errorf("failed to marshal document %q: %w", path, err)
	}
	m.data[path] = updated
	return next, nil
}

func (m *Memory) List(_ context.Context, prefix string) (map[string]json.RawMessage, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	result := make(map[string]json.RawMessage)
	p := strings.TrimSuffix(prefix, "/") + "/"
	for path, raw := range m.data {
		if !strings.HasPrefix(path, p) {
			continue
		}
		rest := strings.TrimPrefix(path, p)
		if strings.Contains(rest, "/") {
			continue // не прямой потомок
		}
		result[rest] = raw
	}
	return result, nil
}
