package storage

import (
	"context"
	"sync"
	"time"
)

// InMemoryStore is a thread-safe store used when a database is not configured.
type InMemoryStore struct {
	mu    sync.RWMutex
	rooms map[string]Room
}

// NewInMemoryStore constructs an empty in-memory store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{rooms: make(map[string]Room)}
}

// CreateRoom assigns an id and stores the room.
func (s *InMemoryStore) CreateRoom(_ context.Context, input Room) (Room, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if input.ID == "" {
		input.ID = newRoomID()
	}
	if input.CreatedAt.IsZero() {
		input.CreatedAt = time.Now()
	}

	s.rooms[input.ID] = input
	return input, nil
}

// GetRoom returns a room by ID.
func (s *InMemoryStore) GetRoom(_ context.Context, id string) (Room, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	room, ok := s.rooms[id]
	if !ok {
		return Room{}, ErrNotFound
	}
	return room, nil
}

// Close satisfies the Store interface.
func (s *InMemoryStore) Close() {}
