package storage

import (
	"context"
	"sync"
)

// MemoryStorage реализует CursorStore в памяти.
type MemoryStorage struct {
	mu     sync.Mutex
	offset int
	saved  bool
}

// NewMemoryStorage создаёт новый MemoryStorage.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{}
}

// Load возвращает сохранённый offset.
func (s *MemoryStorage) Load(ctx context.Context) (int, bool, error) {
	if err := ctx.Err(); err != nil {
		return 0, false, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	return s.offset, s.saved, nil
}

// Save сохраняет offset.
func (s *MemoryStorage) Save(ctx context.Context, offset int) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if offset < 0 {
		return ErrNegativeOffset
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.offset = offset
	s.saved = true

	return nil
}
