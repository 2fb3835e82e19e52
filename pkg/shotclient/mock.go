package shotclient

import (
	"context"
	"strconv"
	"sync"

	"github.com/abrezinsky/swishfeed/internal/feed"
	"github.com/abrezinsky/swishfeed/internal/models"
)

// MockClient is an in-memory Client for testing
type MockClient struct {
	mu       sync.Mutex
	shots    []feed.ShotRecord
	stats    models.ShotStats
	baseURL  string
	fetchErr error
	statsErr error
	postErr  error
	posted   []models.ShotInput
	nextID   int64
}

// MockOption configures the mock client
type MockOption func(*MockClient)

// WithShots sets the records returned by FetchShots, oldest first
func WithShots(shots []feed.ShotRecord) MockOption {
	return func(m *MockClient) {
		m.shots = shots
	}
}

// WithStats sets the totals returned by Stats
func WithStats(stats models.ShotStats) MockOption {
	return func(m *MockClient) {
		m.stats = stats
	}
}

// WithFetchError sets an error to return from FetchShots and FetchRecent
func WithFetchError(err error) MockOption {
	return func(m *MockClient) {
		m.fetchErr = err
	}
}

// WithStatsError sets an error to return from Stats
func WithStatsError(err error) MockOption {
	return func(m *MockClient) {
		m.statsErr = err
	}
}

// WithRecordError sets an error to return from RecordShot
func WithRecordError(err error) MockOption {
	return func(m *MockClient) {
		m.postErr = err
	}
}

// WithBaseURL sets the value returned by BaseURL
func WithBaseURL(url string) MockOption {
	return func(m *MockClient) {
		m.baseURL = url
	}
}

// NewMockClient creates a mock client
func NewMockClient(opts ...MockOption) *MockClient {
	m := &MockClient{baseURL: "http://mock-feed.local"}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

var _ Client = (*MockClient)(nil)

func (m *MockClient) FetchShots(ctx context.Context) ([]feed.ShotRecord, error) {
	return m.FetchRecent(ctx, 0)
}

func (m *MockClient) FetchRecent(ctx context.Context, limit int) ([]feed.ShotRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fetchErr != nil {
		return nil, m.fetchErr
	}
	shots := m.shots
	if limit > 0 && len(shots) > limit {
		shots = shots[len(shots)-limit:]
	}
	return append([]feed.ShotRecord{}, shots...), nil
}

func (m *MockClient) Stats(ctx context.Context) (*models.ShotStats, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.statsErr != nil {
		return nil, m.statsErr
	}
	stats := m.stats
	return &stats, nil
}

// RecordShot stores the input and appends a matching record to the window
func (m *MockClient) RecordShot(ctx context.Context, in models.ShotInput) (*models.Shot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.postErr != nil {
		return nil, m.postErr
	}
	m.posted = append(m.posted, in)
	m.nextID++

	classification := models.ClassificationLate
	if in.Classification != nil {
		classification = *in.Classification
	}
	shot := &models.Shot{ID: m.nextID, Classification: classification, Scored: in.Scored}
	m.shots = append(m.shots, feed.NewRecord(
		strconv.FormatInt(shot.ID, 10),
		feed.ClassificationFromCode(float64(classification)),
		in.Scored,
	))
	return shot, nil
}

func (m *MockClient) BaseURL() string {
	return m.baseURL
}

// Posted returns every input passed to RecordShot
func (m *MockClient) Posted() []models.ShotInput {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]models.ShotInput{}, m.posted...)
}
