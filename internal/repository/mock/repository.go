package mock

import (
	"context"
	"sync"

	"github.com/abrezinsky/swishfeed/internal/models"
	"github.com/abrezinsky/swishfeed/internal/repository"
)

// Repository wraps a real repository and allows injecting errors for testing.
//
// Usage:
//
//	realRepo := testutil.NewTestRepository(t)
//	mockRepo := mock.NewRepository(realRepo)
//	mockRepo.CreateShotError = errors.New("database error")
//	svc := services.NewShotService(log, mockRepo, hub, m, services.Options{})
type Repository struct {
	repository.ShotRepository

	CreateShotError      error
	GetShotError         error
	ListRecentShotsError error
	ShotStatsError       error
	PingError            error

	mu         sync.Mutex
	createCall int
}

// NewRepository creates a mock repository wrapping a real one
func NewRepository(real repository.ShotRepository) *Repository {
	return &Repository{ShotRepository: real}
}

// CreateCalls returns how many times CreateShot was invoked
func (m *Repository) CreateCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.createCall
}

func (m *Repository) CreateShot(ctx context.Context, shot models.Shot) (*models.Shot, error) {
	m.mu.Lock()
	m.createCall++
	m.mu.Unlock()
	if m.CreateShotError != nil {
		return nil, m.CreateShotError
	}
	return m.ShotRepository.CreateShot(ctx, shot)
}

func (m *Repository) GetShot(ctx context.Context, id int64) (*models.Shot, error) {
	if m.GetShotError != nil {
		return nil, m.GetShotError
	}
	return m.ShotRepository.GetShot(ctx, id)
}

func (m *Repository) ListRecentShots(ctx context.Context, limit int) ([]models.Shot, error) {
	if m.ListRecentShotsError != nil {
		return nil, m.ListRecentShotsError
	}
	return m.ShotRepository.ListRecentShots(ctx, limit)
}

func (m *Repository) ShotStats(ctx context.Context) (*models.ShotStats, error) {
	if m.ShotStatsError != nil {
		return nil, m.ShotStatsError
	}
	return m.ShotRepository.ShotStats(ctx)
}

func (m *Repository) Ping(ctx context.Context) error {
	if m.PingError != nil {
		return m.PingError
	}
	return m.ShotRepository.Ping(ctx)
}
