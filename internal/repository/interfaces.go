package repository

import (
	"context"

	"github.com/abrezinsky/swishfeed/internal/models"
)

// ShotRepository defines shot data operations
type ShotRepository interface {
	CreateShot(ctx context.Context, shot models.Shot) (*models.Shot, error)
	GetShot(ctx context.Context, id int64) (*models.Shot, error)
	// ListRecentShots returns up to limit shots, newest first
	ListRecentShots(ctx context.Context, limit int) ([]models.Shot, error)
	ShotStats(ctx context.Context) (*models.ShotStats, error)
	Ping(ctx context.Context) error
}

// Ensure Repository implements all interfaces
var _ ShotRepository = (*Repository)(nil)
