package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/glebarez/go-sqlite"
	_ "github.com/mattn/go-sqlite3"

	"github.com/abrezinsky/swishfeed/internal/models"
)

// Supported database/sql driver names
const (
	DriverCGO  = "sqlite3" // mattn/go-sqlite3
	DriverPure = "sqlite"  // glebarez/go-sqlite
)

// Repository provides data access methods
type Repository struct {
	db *sql.DB
}

// New creates a Repository using the cgo sqlite driver
func New(dbPath string) (*Repository, error) {
	return Open(DriverCGO, dbPath)
}

// Open creates a Repository with the named driver and runs migrations
func Open(driver, dbPath string) (*Repository, error) {
	if driver != DriverCGO && driver != DriverPure {
		return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, driver)
	}

	db, err := sql.Open(driver, dbPath)
	if err != nil {
		return nil, err
	}

	// SQLite works best with a single connection; it also keeps :memory: databases alive
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, err
	}

	repo := &Repository{db: db}
	if err := repo.migrate(); err != nil {
		db.Close()
		return nil, err
	}

	return repo, nil
}

// DB returns the underlying database connection
func (r *Repository) DB() *sql.DB {
	return r.db
}

// Close closes the database connection
func (r *Repository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Ping checks if the database connection is alive
func (r *Repository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// migrate runs database migrations
func (r *Repository) migrate() error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS shots (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			ts_release REAL,
			ts_apex REAL,
			classification INTEGER NOT NULL,
			scored BOOLEAN NOT NULL DEFAULT 0,
			grip_peak INTEGER,
			jump_height REAL,
			created_at INTEGER NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_shots_created ON shots(created_at)`,
	}

	for _, migration := range migrations {
		if _, err := r.db.Exec(migration); err != nil {
			return err
		}
	}
	return nil
}

const shotColumns = `id, ts_release, ts_apex, classification, scored, grip_peak, jump_height, created_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanShot(row rowScanner) (*models.Shot, error) {
	var (
		shot       models.Shot
		tsRelease  sql.NullFloat64
		tsApex     sql.NullFloat64
		gripPeak   sql.NullInt64
		jumpHeight sql.NullFloat64
		createdAt  int64
	)

	err := row.Scan(&shot.ID, &tsRelease, &tsApex, &shot.Classification, &shot.Scored, &gripPeak, &jumpHeight, &createdAt)
	if err != nil {
		return nil, err
	}

	if tsRelease.Valid {
		shot.TsRelease = &tsRelease.Float64
	}
	if tsApex.Valid {
		shot.TsApex = &tsApex.Float64
	}
	if gripPeak.Valid {
		v := int(gripPeak.Int64)
		shot.GripPeak = &v
	}
	if jumpHeight.Valid {
		shot.JumpHeight = &jumpHeight.Float64
	}
	shot.CreatedAt = time.UnixMilli(createdAt).UTC()
	return &shot, nil
}

// CreateShot inserts a shot and returns it with its ID and creation time set.
// A zero CreatedAt is replaced with the current time.
func (r *Repository) CreateShot(ctx context.Context, shot models.Shot) (*models.Shot, error) {
	if shot.CreatedAt.IsZero() {
		shot.CreatedAt = time.Now().UTC()
	}

	res, err := r.db.ExecContext(ctx, `
		INSERT INTO shots (ts_release, ts_apex, classification, scored, grip_peak, jump_height, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		shot.TsRelease, shot.TsApex, shot.Classification, shot.Scored, shot.GripPeak, shot.JumpHeight,
		shot.CreatedAt.UnixMilli(),
	)
	if err != nil {
		return nil, err
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	shot.ID = id
	shot.CreatedAt = time.UnixMilli(shot.CreatedAt.UnixMilli()).UTC()
	return &shot, nil
}

// GetShot retrieves a shot by ID
func (r *Repository) GetShot(ctx context.Context, id int64) (*models.Shot, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+shotColumns+` FROM shots WHERE id = ?`, id)
	shot, err := scanShot(row)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	return shot, err
}

// ListRecentShots returns up to limit shots, newest first
func (r *Repository) ListRecentShots(ctx context.Context, limit int) ([]models.Shot, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+shotColumns+` FROM shots ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	shots := make([]models.Shot, 0, limit)
	for rows.Next() {
		shot, err := scanShot(rows)
		if err != nil {
			return nil, err
		}
		shots = append(shots, *shot)
	}
	return shots, rows.Err()
}

// ShotStats returns totals per classification
func (r *Repository) ShotStats(ctx context.Context) (*models.ShotStats, error) {
	var stats models.ShotStats
	err := r.db.QueryRowContext(ctx, `
		SELECT
			COUNT(*),
			COALESCE(SUM(CASE WHEN classification = 1 THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN classification = 0 THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN classification NOT IN (0, 1) THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN scored THEN 1 ELSE 0 END), 0)
		FROM shots`,
	).Scan(&stats.Total, &stats.Perfect, &stats.Early, &stats.Late, &stats.Scored)
	if err != nil {
		return nil, err
	}
	return &stats, nil
}
