package services_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	apperrors "github.com/abrezinsky/swishfeed/internal/errors"
	"github.com/abrezinsky/swishfeed/internal/feed"
	"github.com/abrezinsky/swishfeed/internal/logger"
	"github.com/abrezinsky/swishfeed/internal/metrics"
	"github.com/abrezinsky/swishfeed/internal/models"
	"github.com/abrezinsky/swishfeed/internal/repository/mock"
	"github.com/abrezinsky/swishfeed/internal/services"
	"github.com/abrezinsky/swishfeed/internal/testutil"
)

// recordingBroadcaster captures broadcasts for assertions
type recordingBroadcaster struct {
	mu    sync.Mutex
	shots []models.Shot
	jumps []models.JumpSummary
}

func (b *recordingBroadcaster) BroadcastShot(shot models.Shot) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.shots = append(b.shots, shot)
}

func (b *recordingBroadcaster) BroadcastJump(jump models.JumpSummary) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.jumps = append(b.jumps, jump)
}

func setupShotService(t *testing.T, opts services.Options) (*services.ShotService, *mock.Repository, *recordingBroadcaster) {
	t.Helper()
	repo := mock.NewRepository(testutil.NewTestRepository(t))
	b := &recordingBroadcaster{}
	svc := services.NewShotService(logger.NewNop(), repo, b, metrics.NewManager(), opts)
	return svc, repo, b
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name    string
		release float64
		apex    float64
		want    int
	}{
		{"exact apex", 1000, 1000, models.ClassificationPerfect},
		{"just before window edge", 940, 1000, models.ClassificationPerfect},
		{"just after window edge", 1060, 1000, models.ClassificationPerfect},
		{"too early", 900, 1000, models.ClassificationEarly},
		{"too late", 1100, 1000, models.ClassificationLate},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := services.Classify(tt.release, tt.apex, 60); got != tt.want {
				t.Errorf("Classify(%v, %v) = %d, want %d", tt.release, tt.apex, got, tt.want)
			}
		})
	}
}

func TestRecordShot_ExplicitClassificationWins(t *testing.T) {
	svc, _, b := setupShotService(t, services.Options{})
	ctx := context.Background()

	// Timestamps say perfect, the explicit code says late.
	shot, err := svc.RecordShot(ctx, models.ShotInput{
		TsRelease:      testutil.Float64(1000),
		TsApex:         testutil.Float64(1000),
		Classification: testutil.Int(models.ClassificationLate),
		Scored:         true,
	})
	if err != nil {
		t.Fatalf("RecordShot failed: %v", err)
	}
	if shot.Classification != models.ClassificationLate {
		t.Errorf("expected late, got %d", shot.Classification)
	}
	if len(b.shots) != 1 || b.shots[0].ID != shot.ID {
		t.Errorf("expected one broadcast of shot %d, got %+v", shot.ID, b.shots)
	}
}

func TestRecordShot_ClassifiesFromTimestamps(t *testing.T) {
	svc, _, _ := setupShotService(t, services.Options{PerfectWindowMS: 10})
	ctx := context.Background()

	shot, err := svc.RecordShot(ctx, models.ShotInput{
		TsRelease: testutil.Float64(980),
		TsApex:    testutil.Float64(1000),
	})
	if err != nil {
		t.Fatalf("RecordShot failed: %v", err)
	}
	if shot.Classification != models.ClassificationEarly {
		t.Errorf("expected early with a 10ms window, got %d", shot.Classification)
	}
}

func TestRecordShot_KeepsJumpEnrichment(t *testing.T) {
	svc, _, _ := setupShotService(t, services.Options{})
	ctx := context.Background()

	shot, err := svc.RecordShot(ctx, models.ShotInput{
		Classification: testutil.Int(models.ClassificationPerfect),
		GripPeak:       testutil.Int(900),
		JumpHeight:     testutil.Float64(0.31),
	})
	if err != nil {
		t.Fatalf("RecordShot failed: %v", err)
	}

	stored, err := svc.GetShot(ctx, shot.ID)
	if err != nil {
		t.Fatalf("GetShot failed: %v", err)
	}
	if stored.GripPeak == nil || *stored.GripPeak != 900 {
		t.Errorf("expected grip_peak 900, got %v", stored.GripPeak)
	}
	if stored.JumpHeight == nil || *stored.JumpHeight != 0.31 {
		t.Errorf("expected jump_height 0.31, got %v", stored.JumpHeight)
	}
}

func TestRecordShot_ValidationErrors(t *testing.T) {
	tests := []struct {
		name string
		in   models.ShotInput
		want error
	}{
		{"unknown code", models.ShotInput{Classification: testutil.Int(5)}, services.ErrInvalidClassification},
		{"negative code", models.ShotInput{Classification: testutil.Int(-1)}, services.ErrInvalidClassification},
		{"no timing", models.ShotInput{}, services.ErrMissingTiming},
		{"release only", models.ShotInput{TsRelease: testutil.Float64(1)}, services.ErrMissingTiming},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, repo, b := setupShotService(t, services.Options{})
			_, err := svc.RecordShot(context.Background(), tt.in)
			if err != tt.want {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
			if repo.CreateCalls() != 0 {
				t.Error("expected nothing persisted")
			}
			if len(b.shots) != 0 {
				t.Error("expected nothing broadcast")
			}
		})
	}
}

func TestRecordShot_RepositoryError(t *testing.T) {
	svc, repo, b := setupShotService(t, services.Options{})
	repo.CreateShotError = errors.New("database is locked")

	_, err := svc.RecordShot(context.Background(), models.ShotInput{Classification: testutil.Int(1)})
	if !apperrors.IsKind(err, apperrors.ErrInternal) {
		t.Errorf("expected internal error, got %v", err)
	}
	if len(b.shots) != 0 {
		t.Error("expected no broadcast after a failed insert")
	}
}

func TestRecordShot_NilBroadcaster(t *testing.T) {
	repo := testutil.NewTestRepository(t)
	svc := services.NewShotService(logger.NewNop(), repo, nil, nil, services.Options{})

	if _, err := svc.RecordShot(context.Background(), models.ShotInput{Classification: testutil.Int(0)}); err != nil {
		t.Fatalf("RecordShot failed: %v", err)
	}
}

func TestGetShot_NotFound(t *testing.T) {
	svc, _, _ := setupShotService(t, services.Options{})

	_, err := svc.GetShot(context.Background(), 42)
	if !apperrors.IsKind(err, apperrors.ErrNotFound) {
		t.Errorf("expected not found, got %v", err)
	}
}

func TestGetShot_RepositoryError(t *testing.T) {
	svc, repo, _ := setupShotService(t, services.Options{})
	repo.GetShotError = errors.New("boom")

	_, err := svc.GetShot(context.Background(), 1)
	if !apperrors.IsKind(err, apperrors.ErrInternal) {
		t.Errorf("expected internal error, got %v", err)
	}
}

func seedShots(t *testing.T, svc *services.ShotService, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		if _, err := svc.RecordShot(context.Background(), models.ShotInput{Classification: testutil.Int(i % 3)}); err != nil {
			t.Fatalf("RecordShot failed: %v", err)
		}
	}
}

func TestListRecent_ChronologicalWindow(t *testing.T) {
	svc, _, _ := setupShotService(t, services.Options{RecentLimit: 3})
	seedShots(t, svc, 5)

	shots, err := svc.ListRecent(context.Background(), 0)
	if err != nil {
		t.Fatalf("ListRecent failed: %v", err)
	}
	if len(shots) != 3 {
		t.Fatalf("expected 3 shots, got %d", len(shots))
	}
	for i, want := range []int64{3, 4, 5} {
		if shots[i].ID != want {
			t.Errorf("shots[%d].ID = %d, want %d", i, shots[i].ID, want)
		}
	}
}

func TestListRecent_LimitBounds(t *testing.T) {
	svc, _, _ := setupShotService(t, services.Options{RecentLimit: 5, MaxRecentLimit: 10})
	ctx := context.Background()

	for _, limit := range []int{-1, 11} {
		if _, err := svc.ListRecent(ctx, limit); err != services.ErrInvalidLimit {
			t.Errorf("limit %d: expected ErrInvalidLimit, got %v", limit, err)
		}
	}
	if _, err := svc.ListRecent(ctx, 10); err != nil {
		t.Errorf("limit at the cap should succeed, got %v", err)
	}
}

func TestListRecent_RepositoryError(t *testing.T) {
	svc, repo, _ := setupShotService(t, services.Options{})
	repo.ListRecentShotsError = errors.New("boom")

	if _, err := svc.ListRecent(context.Background(), 0); err == nil {
		t.Error("expected error")
	}
}

func TestStats(t *testing.T) {
	svc, repo, _ := setupShotService(t, services.Options{})
	seedShots(t, svc, 6)

	stats, err := svc.Stats(context.Background())
	if err != nil {
		t.Fatalf("Stats failed: %v", err)
	}
	want := models.ShotStats{Total: 6, Perfect: 2, Early: 2, Late: 2}
	if *stats != want {
		t.Errorf("expected %+v, got %+v", want, *stats)
	}

	repo.ShotStatsError = errors.New("boom")
	if _, err := svc.Stats(context.Background()); err == nil {
		t.Error("expected error")
	}
}

func TestRecent_FeedsRendererWithNewestOnTop(t *testing.T) {
	svc, _, _ := setupShotService(t, services.Options{})
	ctx := context.Background()

	svc.RecordShot(ctx, models.ShotInput{Classification: testutil.Int(0)})
	svc.RecordShot(ctx, models.ShotInput{Classification: testutil.Int(1), Scored: true})

	table := feed.NewTable()
	r := feed.NewRenderer(logger.NewNop(), table, svc.Recent(), nil)
	if err := r.LoadInitial(ctx); err != nil {
		t.Fatalf("LoadInitial failed: %v", err)
	}

	rows := table.Rows()
	want := []feed.Row{
		{Tag: "perfect", ID: "2", Label: "Perfect", Glyph: feed.GlyphScored},
		{Tag: "early", ID: "1", Label: "Early", Glyph: feed.GlyphMissed},
	}
	if len(rows) != len(want) {
		t.Fatalf("expected %d rows, got %d", len(want), len(rows))
	}
	for i := range want {
		if rows[i] != want[i] {
			t.Errorf("row %d = %+v, want %+v", i, rows[i], want[i])
		}
	}
}

func TestRecent_PropagatesErrors(t *testing.T) {
	svc, repo, _ := setupShotService(t, services.Options{})
	repo.ListRecentShotsError = errors.New("boom")

	if _, err := svc.Recent().FetchShots(context.Background()); err == nil {
		t.Error("expected error")
	}
}

func TestToRecord(t *testing.T) {
	rec := services.ToRecord(models.Shot{ID: 7, Classification: 2, Scored: true})
	if rec.ID != "7" || rec.Classification != feed.Late || !bool(rec.Scored) {
		t.Errorf("unexpected record %+v", rec)
	}
}

func TestServiceError_Error(t *testing.T) {
	err := &services.ServiceError{Message: "test error message"}
	if err.Error() != "test error message" {
		t.Errorf("expected 'test error message', got %q", err.Error())
	}
}
