package storage

import (
	"context"
	"crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrNotFound indicates that a room could not be located in the backing store.
var ErrNotFound = errors.New("room not found")

// Box is a unit-square-relative placement rectangle.
type Box struct {
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	W     float64 `json:"w"`
	H     float64 `json:"h"`
	Label string  `json:"label,omitempty"`
}

// Room represents a generated room snapshot. Records are immutable after
// creation; there is no update path.
type Room struct {
	ID              string          `json:"id"`
	Seed            int64           `json:"seed"`
	ImageURL        string          `json:"imageUrl"`
	Boxes           []Box           `json:"boxes,omitempty"`
	ProductIDs      []string        `json:"productIds,omitempty"`
	PersonalityType string          `json:"personalityType,omitempty"`
	Theme           json.RawMessage `json:"theme,omitempty"`
	CreatedAt       time.Time       `json:"createdAt"`
}

// Store defines the persistence behaviors the application relies on.
type Store interface {
	CreateRoom(ctx context.Context, input Room) (Room, error)
	GetRoom(ctx context.Context, id string) (Room, error)
	Close()
}

// NewStore selects a backing store based on whether a database URL is provided.
// Without one, rooms live in memory for the process lifetime.
func NewStore(ctx context.Context, databaseURL string) (Store, error) {
	if databaseURL == "" {
		return NewInMemoryStore(), nil
	}

	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := ensureSchema(ctx, pool); err != nil {
		pool.Close()
		return nil, err
	}

	return &PostgresStore{pool: pool}, nil
}

const idAlphabet = "abcdefghijklmnopqrstuvwxyz0123456789"

// newRoomID returns an 8-character opaque token. The 36^8 space makes
// collisions negligible for a process-lifetime store; there is no retry on
// duplicate.
func newRoomID() string {
	buf := make([]byte, 8)
	if _, err := rand.Read(buf); err != nil {
		panic(fmt.Sprintf("storage: read random bytes: %v", err))
	}
	for i, b := range buf {
		buf[i] = idAlphabet[int(b)%len(idAlphabet)]
	}
	return string(buf)
}

func ensureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	_, err := pool.Exec(ctx, `CREATE TABLE IF NOT EXISTS rooms (
        id TEXT PRIMARY KEY,
        seed BIGINT NOT NULL,
        image_url TEXT NOT NULL,
        boxes JSONB DEFAULT '[]'::jsonb,
        product_ids TEXT[],
        personality_type TEXT,
        theme JSONB,
        created_at TIMESTAMPTZ NOT NULL DEFAULT now()
    )`)
	if err != nil {
		return fmt.Errorf("create rooms table: %w", err)
	}
	return nil
}
