package db

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// DefaultEventLimit caps event searches that do not set a limit
const DefaultEventLimit = 20

// Event is a row of the events table
type Event struct {
	ID          int64      `json:"id"`
	ProviderID  *int64     `json:"providerId,omitempty"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Location    string     `json:"location"`
	StartsAt    *time.Time `json:"startsAt,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
}

// SearchEvents finds events whose title or description contains term, case-insensitively.
// The term is matched literally; % and _ carry no wildcard meaning.
func (db *DB) SearchEvents(ctx context.Context, term string, limit int) ([]Event, error) {
	if limit <= 0 {
		limit = DefaultEventLimit
	}

	rows, err := db.pool.Query(ctx,
		`SELECT id, provider_id, title, description, location, starts_at, created_at
		 FROM events
		 WHERE title ILIKE $1 ESCAPE '\' OR description ILIKE $1 ESCAPE '\'
		 ORDER BY starts_at NULLS LAST, id
		 LIMIT $2`,
		likePattern(term), limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to search events: %w", err)
	}
	defer rows.Close()

	events := []Event{}
	for rows.Next() {
		var e Event
		if err := rows.Scan(&e.ID, &e.ProviderID, &e.Title, &e.Description, &e.Location, &e.StartsAt, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read events: %w", err)
	}
	return events, nil
}

// InsertEvent stores an event and returns its ID
func (db *DB) InsertEvent(ctx context.Context, e *Event) (int64, error) {
	var id int64
	err := db.pool.QueryRow(ctx,
		`INSERT INTO events (provider_id, title, description, location, starts_at)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id`,
		e.ProviderID, e.Title, e.Description, e.Location, e.StartsAt,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to insert event: %w", err)
	}
	return id, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// likePattern wraps term for a substring ILIKE match
func likePattern(term string) string {
	return "%" + likeEscaper.Replace(strings.TrimSpace(term)) + "%"
}
