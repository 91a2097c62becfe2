package storage

import (
	"context"
	"sort"
	"sync"
)

// MemoryStore реализует BlobStore в памяти.
// Используется в тестах и когда постоянное хранилище не нужно.
// ВНИМАНИЕ: Данные теряются при перезапуске!
type MemoryStore struct {
	mu   sync.RWMutex
	data map[string][]byte
}

// NewMemoryStore создаёт пустое хранилище
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[string][]byte)}
}

// Put сохраняет копию блоба
func (s *MemoryStore) Put(ctx context.Context, key string, data []byte) error {
	// Проверяем контекст на отмену
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = append([]byte(nil), data...)
	return nil
}

// Get читает блоб
func (s *MemoryStore) Get(ctx context.Context, key string) ([]byte, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	data, ok := s.data[key]
	if !ok {
		return nil, ErrNoSave
	}
	return append([]byte(nil), data...), nil
}

// Latest возвращает блоб с наибольшим ключом
func (s *MemoryStore) Latest(ctx context.Context) (string, []byte, error) {
	keys, err := s.Keys(ctx)
	if err != nil {
		return "", nil, err
	}
	if len(keys) == 0 {
		return "", nil, ErrNoSave
	}
	key := keys[len(keys)-1]
	data, err := s.Get(ctx, key)
	return key, data, err
}

// Keys возвращает все ключи по возрастанию
func (s *MemoryStore) Keys(ctx context.Context) ([]string, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	keys := make([]string, 0, len(s.data))
	for k := range s.data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys, nil
}

// Close ничего не делает
func (s *MemoryStore) Close() error {
	return nil
}
