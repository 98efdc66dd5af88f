package db

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jonathan/family-activities/internal/types"
)

const activityColumns = `data, created_at, updated_at`

// ListActivities returns the whole catalog ordered by provider and program
func (db *DB) ListActivities(ctx context.Context) ([]types.ActivityMetadata, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT `+activityColumns+` FROM activities ORDER BY provider_id, program_id NULLS FIRST`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list activities: %w", err)
	}
	defer rows.Close()

	return scanActivities(rows)
}

// GetActivitiesByRefs resolves catalog references, keyed by ActivityRef.Key().
// Unknown references are absent from the map.
func (db *DB) GetActivitiesByRefs(ctx context.Context, refs []types.ActivityRef) (map[string]types.ActivityMetadata, error) {
	out := make(map[string]types.ActivityMetadata, len(refs))
	if len(refs) == 0 {
		return out, nil
	}

	providerIDs := make([]int64, 0, len(refs))
	wanted := make(map[string]bool, len(refs))
	for _, ref := range refs {
		if !wanted[ref.Key()] {
			providerIDs = append(providerIDs, ref.ProviderID)
		}
		wanted[ref.Key()] = true
	}

	rows, err := db.pool.Query(ctx,
		`SELECT `+activityColumns+` FROM activities WHERE provider_id = ANY($1)`,
		providerIDs,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get activities: %w", err)
	}
	defer rows.Close()

	activities, err := scanActivities(rows)
	if err != nil {
		return nil, err
	}
	for _, a := range activities {
		if key := a.Ref().Key(); wanted[key] {
			out[key] = a
		}
	}
	return out, nil
}

// UpsertActivity validates and stores a catalog record, replacing any record with the same reference
func (db *DB) UpsertActivity(ctx context.Context, a *types.ActivityMetadata) error {
	if err := types.Validate(a); err != nil {
		return err
	}
	data, err := json.Marshal(a)
	if err != nil {
		return fmt.Errorf("failed to marshal activity: %w", err)
	}

	_, err = db.pool.Exec(ctx,
		`INSERT INTO activities (provider_id, program_id, name, category, neighborhood, latitude, longitude, data)
		 VALUES ($1, $2, $3, $4, NULLIF($5, ''), $6, $7, $8)
		 ON CONFLICT (provider_id, COALESCE(program_id, 0)) DO UPDATE SET
		   name = EXCLUDED.name, category = EXCLUDED.category, neighborhood = EXCLUDED.neighborhood,
		   latitude = EXCLUDED.latitude, longitude = EXCLUDED.longitude, data = EXCLUDED.data,
		   updated_at = NOW()`,
		a.ProviderID, a.ProgramID, a.Name, a.Category, a.Location.Neighborhood,
		a.Location.Latitude, a.Location.Longitude, data,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert activity %s: %w", a.Ref().Key(), err)
	}
	return nil
}

func scanActivities(rows pgx.Rows) ([]types.ActivityMetadata, error) {
	activities := []types.ActivityMetadata{}
	for rows.Next() {
		var data []byte
		var createdAt, updatedAt time.Time
		if err := rows.Scan(&data, &createdAt, &updatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan activity: %w", err)
		}
		a, err := decodeActivity(data, createdAt, updatedAt)
		if err != nil {
			return nil, err
		}
		activities = append(activities, *a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read activities: %w", err)
	}
	return activities, nil
}

// decodeActivity restores a stored record; the row timestamps win over the stored JSON
func decodeActivity(data []byte, createdAt, updatedAt time.Time) (*types.ActivityMetadata, error) {
	var a types.ActivityMetadata
	if err := json.Unmarshal(data, &a); err != nil {
		return nil, fmt.Errorf("failed to decode activity: %w", err)
	}
	a.ApplyDefaults()
	a.CreatedAt = createdAt.UTC()
	a.UpdatedAt = updatedAt.UTC()
	return &a, nil
}
