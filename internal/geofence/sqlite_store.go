package geofence

import (
	"context"
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"

	"github.com/safetrail/sentinel-agent/internal/models"
)

// SQLiteStore fetches geofences from a locally synced SQLite mirror, for
// deployments where devices receive fence updates out of band instead of
// querying the remote data store on every cycle.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens or creates the mirror database at the given path. A
// fresh device starts with an empty table, which reads as zero fences.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(wal)")
	if err != nil {
		return nil, fmt.Errorf("open geofence db: %w", err)
	}

	schema := `
	CREATE TABLE IF NOT EXISTS geofences (
		id        INTEGER PRIMARY KEY AUTOINCREMENT,
		latitude  REAL NOT NULL,
		longitude REAL NOT NULL,
		radius    REAL NOT NULL
	);`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate geofence db: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Fetch returns all mirrored geofence rows.
func (s *SQLiteStore) Fetch(ctx context.Context) ([]models.GeofenceRegion, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT latitude, longitude, radius FROM geofences")
	if err != nil {
		return nil, fmt.Errorf("query geofences: %w", err)
	}
	defer rows.Close()

	var regions []models.GeofenceRegion
	for rows.Next() {
		var r models.GeofenceRegion
		if err := rows.Scan(&r.Latitude, &r.Longitude, &r.RadiusMeters); err != nil {
			return nil, fmt.Errorf("scan geofence row: %w", err)
		}
		regions = append(regions, r)
	}

	return regions, rows.Err()
}

// Replace swaps the mirror contents for a freshly synced fence set.
func (s *SQLiteStore) Replace(ctx context.Context, regions []models.GeofenceRegion) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM geofences"); err != nil {
		return err
	}
	for _, r := range regions {
		_, err := tx.ExecContext(ctx,
			"INSERT INTO geofences (latitude, longitude, radius) VALUES (?, ?, ?)",
			r.Latitude, r.Longitude, r.RadiusMeters)
		if err != nil {
			return err
		}
	}

	return tx.Commit()
}

// Close releases the database handle.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
