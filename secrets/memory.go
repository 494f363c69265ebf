package secrets

import (
	"context"
	"sync"
)

// Memory is an in-process Store, used for tests and dry runs.
type Memory struct {
	sync.RWMutex
	values map[string][]byte
}

func NewMemory(values map[string]string) *Memory {
	m := Memory{
		values: map[string][]byte{},
	}

	for k, v := range values {
		m.values[k] = []byte(v)
	}

	return &m
}

func (m *Memory) Get(ctx context.Context, key string) ([]byte, error) {
	if err := validate(key); err != nil {
		return nil, err
	}

	m.RLock()
	defer m.RUnlock()

	if v, ok := m.values[key]; ok {
		return append([]byte(nil), v...), nil
	}

	return nil, nil
}

func (m *Memory) Set(ctx context.Context, key string, value []byte) error {
	if err := validate(key); err != nil {
		return err
	}

	m.Lock()
	defer m.Unlock()

	m.values[key] = append([]byte(nil), value...)

	return nil
}

func (m *Memory) Delete(ctx context.Context, key string) error {
	if err := validate(key); err != nil {
		return err
	}

	m.Lock()
	defer m.Unlock()

	delete(m.values, key)

	return nil
}
