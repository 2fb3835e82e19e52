package services

import (
	"context"
	"math"
	"strconv"

	"github.com/abrezinsky/swishfeed/internal/errors"
	"github.com/abrezinsky/swishfeed/internal/feed"
	"github.com/abrezinsky/swishfeed/internal/logger"
	"github.com/abrezinsky/swishfeed/internal/metrics"
	"github.com/abrezinsky/swishfeed/internal/models"
	"github.com/abrezinsky/swishfeed/internal/repository"
)

// Defaults applied when Options leaves a field zero
const (
	DefaultRecentLimit     = 20
	DefaultMaxRecentLimit  = 100
	DefaultPerfectWindowMS = 60
)

// Options tunes ShotService
type Options struct {
	RecentLimit     int
	MaxRecentLimit  int
	PerfectWindowMS float64
}

func (o Options) withDefaults() Options {
	if o.RecentLimit <= 0 {
		o.RecentLimit = DefaultRecentLimit
	}
	if o.MaxRecentLimit <= 0 {
		o.MaxRecentLimit = DefaultMaxRecentLimit
	}
	if o.MaxRecentLimit < o.RecentLimit {
		o.MaxRecentLimit = o.RecentLimit
	}
	if o.PerfectWindowMS <= 0 {
		o.PerfectWindowMS = DefaultPerfectWindowMS
	}
	return o
}

// ShotService handles shot-related business logic
type ShotService struct {
	log         logger.Logger
	repo        repository.ShotRepository
	broadcaster Broadcaster
	metrics     *metrics.Manager
	opts        Options
}

// NewShotService creates a new ShotService. broadcaster and m may be nil.
func NewShotService(log logger.Logger, repo repository.ShotRepository, broadcaster Broadcaster, m *metrics.Manager, opts Options) *ShotService {
	return &ShotService{
		log:         log,
		repo:        repo,
		broadcaster: broadcaster,
		metrics:     m,
		opts:        opts.withDefaults(),
	}
}

// SetBroadcaster sets the broadcaster for sending shots to clients
func (s *ShotService) SetBroadcaster(b Broadcaster) {
	s.broadcaster = b
}

// Classify derives a classification code from release and apex timestamps.
// A release within windowMS of the apex is perfect; otherwise the sign of
// the gap decides early or late.
func Classify(tsRelease, tsApex, windowMS float64) int {
	delta := tsRelease - tsApex
	switch {
	case math.Abs(delta) <= windowMS:
		return models.ClassificationPerfect
	case delta < 0:
		return models.ClassificationEarly
	default:
		return models.ClassificationLate
	}
}

func (s *ShotService) resolveClassification(in models.ShotInput) (int, error) {
	if in.Classification != nil {
		switch *in.Classification {
		case models.ClassificationEarly, models.ClassificationPerfect, models.ClassificationLate:
			return *in.Classification, nil
		default:
			return 0, ErrInvalidClassification
		}
	}
	if in.TsRelease == nil || in.TsApex == nil {
		return 0, ErrMissingTiming
	}
	return Classify(*in.TsRelease, *in.TsApex, s.opts.PerfectWindowMS), nil
}

// RecordShot validates and stores a shot, then pushes it to live clients
func (s *ShotService) RecordShot(ctx context.Context, in models.ShotInput) (*models.Shot, error) {
	classification, err := s.resolveClassification(in)
	if err != nil {
		return nil, err
	}

	shot, err := s.repo.CreateShot(ctx, models.Shot{
		TsRelease:      in.TsRelease,
		TsApex:         in.TsApex,
		Classification: classification,
		Scored:         in.Scored,
		GripPeak:       in.GripPeak,
		JumpHeight:     in.JumpHeight,
	})
	if err != nil {
		s.log.Error("Failed to record shot", "error", err)
		return nil, errors.Internal(err)
	}

	label := feed.ClassificationFromCode(float64(shot.Classification)).Tag()
	s.metrics.RecordShot(label, shot.Scored)
	s.log.Info("Shot recorded", "id", shot.ID, "classification", label, "scored", shot.Scored)

	if s.broadcaster != nil {
		s.broadcaster.BroadcastShot(*shot)
		s.metrics.RecordBroadcast()
	}
	return shot, nil
}

// GetShot returns one shot by ID
func (s *ShotService) GetShot(ctx context.Context, id int64) (*models.Shot, error) {
	shot, err := s.repo.GetShot(ctx, id)
	if err == repository.ErrNotFound {
		return nil, errors.NotFoundf("shot %d not found", id)
	}
	if err != nil {
		return nil, errors.Internal(err)
	}
	return shot, nil
}

// ListRecent returns the most recent shots in the order they were recorded,
// oldest first. A zero limit selects the configured default.
func (s *ShotService) ListRecent(ctx context.Context, limit int) ([]models.Shot, error) {
	if limit == 0 {
		limit = s.opts.RecentLimit
	}
	if limit < 0 || limit > s.opts.MaxRecentLimit {
		return nil, ErrInvalidLimit
	}

	shots, err := s.repo.ListRecentShots(ctx, limit)
	if err != nil {
		return nil, errors.Internal(err)
	}

	for i, j := 0, len(shots)-1; i < j; i, j = i+1, j-1 {
		shots[i], shots[j] = shots[j], shots[i]
	}
	return shots, nil
}

// Stats returns totals per classification
func (s *ShotService) Stats(ctx context.Context) (*models.ShotStats, error) {
	stats, err := s.repo.ShotStats(ctx)
	if err != nil {
		return nil, errors.Internal(err)
	}
	return stats, nil
}

// Recent exposes the default recent window as a feed.Source
func (s *ShotService) Recent() feed.Source {
	return feed.SourceFunc(func(ctx context.Context) ([]feed.ShotRecord, error) {
		shots, err := s.ListRecent(ctx, 0)
		if err != nil {
			return nil, err
		}
		records := make([]feed.ShotRecord, len(shots))
		for i, shot := range shots {
			records[i] = ToRecord(shot)
		}
		return records, nil
	})
}

// ToRecord converts a stored shot to its feed record
func ToRecord(shot models.Shot) feed.ShotRecord {
	return feed.NewRecord(
		strconv.FormatInt(shot.ID, 10),
		feed.ClassificationFromCode(float64(shot.Classification)),
		shot.Scored,
	)
}
