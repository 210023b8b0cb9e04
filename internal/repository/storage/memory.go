package storage

import (
	"context"
	"sync"

	"storefront/internal/domain"
)

type memoryRepo struct {
	mu     sync.RWMutex
	values map[string]string
}

// NewMemory is process-lifetime storage, used when no durable storage is configured and in tests.
func NewMemory() Repository {
	return &memoryRepo{values: make(map[string]string)}
}

func (r *memoryRepo) Get(_ context.Context, key string) (string, error) {
	r.mu.RLock()
	v, ok := r.values[key]
	r.mu.RUnlock()
	if !ok {
		return "", domain.ErrNotFound
	}
	return v, nil
}

func (r *memoryRepo) Set(_ context.Context, key, value string) error {
	r.mu.Lock()
	r.values[key] = value
	r.mu.Unlock()
	return nil
}

func (r *memoryRepo) Delete(_ context.Context, key string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.values[key]; !ok {
		return domain.ErrNotFound
	}
	delete(r.values, key)
	return nil
}
