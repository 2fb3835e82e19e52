package services

import (
	"context"

	"github.com/abrezinsky/swishfeed/internal/feed"
	"github.com/abrezinsky/swishfeed/internal/models"
)

// Broadcaster pushes events to connected live clients
type Broadcaster interface {
	BroadcastShot(shot models.Shot)
	BroadcastJump(jump models.JumpSummary)
}

// ShotServicer defines the interface for shot operations
type ShotServicer interface {
	RecordShot(ctx context.Context, in models.ShotInput) (*models.Shot, error)
	GetShot(ctx context.Context, id int64) (*models.Shot, error)
	ListRecent(ctx context.Context, limit int) ([]models.Shot, error)
	Stats(ctx context.Context) (*models.ShotStats, error)
	Recent() feed.Source
}

// QRServicer renders QR codes pointing at the feed
type QRServicer interface {
	FeedQRImage(ctx context.Context) ([]byte, error)
}

// Ensure concrete types implement interfaces
var (
	_ ShotServicer = (*ShotService)(nil)
	_ QRServicer   = (*QRService)(nil)
)
