package storage

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore persists rooms in a Postgres database.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// CreateRoom inserts a room row. A duplicate id surfaces as an error; there is
// no retry.
func (s *PostgresStore) CreateRoom(ctx context.Context, input Room) (Room, error) {
	if input.ID == "" {
		input.ID = newRoomID()
	}
	if input.CreatedAt.IsZero() {
		input.CreatedAt = time.Now()
	}

	_, err := s.pool.Exec(ctx,
		`INSERT INTO rooms (id, seed, image_url, boxes, product_ids, personality_type, theme, created_at)
         VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		input.ID, input.Seed, input.ImageURL, input.Boxes, input.ProductIDs, input.PersonalityType, input.Theme, input.CreatedAt)
	if err != nil {
		return Room{}, err
	}
	return input, nil
}

// GetRoom fetches a room row by id.
func (s *PostgresStore) GetRoom(ctx context.Context, id string) (Room, error) {
	var room Room
	err := s.pool.QueryRow(ctx,
		`SELECT id, seed, image_url, boxes, product_ids, personality_type, theme, created_at
         FROM rooms WHERE id = $1`, id).
		Scan(&room.ID, &room.Seed, &room.ImageURL, &room.Boxes, &room.ProductIDs, &room.PersonalityType, &room.Theme, &room.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Room{}, ErrNotFound
	}
	if err != nil {
		return Room{}, err
	}
	return room, nil
}

// Close releases the connection pool.
func (s *PostgresStore) Close() {
	s.pool.Close()
}
