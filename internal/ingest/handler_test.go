package ingest

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/abrezinsky/swishfeed/internal/errors"
	"github.com/abrezinsky/swishfeed/internal/jump"
	"github.com/abrezinsky/swishfeed/internal/logger"
	"github.com/abrezinsky/swishfeed/internal/metrics"
	"github.com/abrezinsky/swishfeed/internal/models"
	"github.com/abrezinsky/swishfeed/internal/services"
	"github.com/abrezinsky/swishfeed/internal/testutil"
)

type jumpRecorder struct {
	mu    sync.Mutex
	jumps []models.JumpSummary
}

func (r *jumpRecorder) BroadcastJump(j models.JumpSummary) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.jumps = append(r.jumps, j)
}

func (r *jumpRecorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.jumps)
}

type failingRecorder struct{ err error }

func (f failingRecorder) RecordShot(ctx context.Context, in models.ShotInput) (*models.Shot, error) {
	return nil, f.err
}

func setupHandler(t *testing.T) (*Handler, *services.ShotService, *jumpRecorder) {
	t.Helper()
	repo := testutil.NewTestRepository(t)
	svc := services.NewShotService(logger.NewNop(), repo, nil, nil, services.Options{})
	jr := &jumpRecorder{}
	h := NewHandler(logger.NewNop(), svc, jump.NewDetector(0, 0), jr, metrics.NewManager(), DefaultTopics())
	return h, svc, jr
}

func TestDispatch_JumpThenShotEnrichesShot(t *testing.T) {
	h, svc, jr := setupHandler(t)
	ctx := context.Background()

	require.NoError(t, h.Dispatch(ctx, DefaultTopicFootRaw, []byte(`{"az":26190,"ts":1000}`)))
	require.NoError(t, h.Dispatch(ctx, DefaultTopicGloveRaw, []byte(`{"fsr1":610,"fsr2":875,"ts":1100}`)))
	require.NoError(t, h.Dispatch(ctx, DefaultTopicFootRaw, []byte(`{"az":16000,"ts":1500}`)))
	assert.Equal(t, 1, jr.count())

	require.NoError(t, h.Dispatch(ctx, DefaultTopicHoopEvent, []byte(`{"ts_release":1490,"ts_apex":1500,"scored":true}`)))

	shots, err := svc.ListRecent(ctx, 0)
	require.NoError(t, err)
	require.Len(t, shots, 1)

	shot := shots[0]
	assert.Equal(t, models.ClassificationPerfect, shot.Classification)
	assert.True(t, shot.Scored)
	require.NotNil(t, shot.GripPeak)
	assert.Equal(t, 875, *shot.GripPeak)
	require.NotNil(t, shot.JumpHeight)
	assert.Equal(t, 1.0, *shot.JumpHeight)
}

func TestHandleHoop_JumpEnrichesOnlyOneShot(t *testing.T) {
	h, _, _ := setupHandler(t)
	ctx := context.Background()

	require.NoError(t, h.HandleFoot([]byte(`{"az":25000,"ts":0}`)))
	require.NoError(t, h.HandleFoot([]byte(`{"az":0,"ts":400}`)))

	first, err := h.HandleHoop(ctx, []byte(`{"classification":1}`))
	require.NoError(t, err)
	assert.NotNil(t, first.JumpHeight)

	second, err := h.HandleHoop(ctx, []byte(`{"classification":2}`))
	require.NoError(t, err)
	assert.Nil(t, second.JumpHeight)
	assert.Nil(t, second.GripPeak)
}

func TestHandleHoop_RejectedEventKeepsJump(t *testing.T) {
	h, _, _ := setupHandler(t)
	ctx := context.Background()

	require.NoError(t, h.Dispatch(ctx, DefaultTopicFootRaw, []byte(`{"az":26190,"ts":1000}`)))
	require.NoError(t, h.Dispatch(ctx, DefaultTopicGloveRaw, []byte(`{"fsr1":610,"fsr2":875,"ts":1100}`)))
	require.NoError(t, h.Dispatch(ctx, DefaultTopicFootRaw, []byte(`{"az":16000,"ts":1500}`)))

	_, err := h.HandleHoop(ctx, []byte(`{"scored":true}`))
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrValidation, apperrors.KindOf(err))

	shot, err := h.HandleHoop(ctx, []byte(`{"ts_release":1000,"ts_apex":1000,"scored":true}`))
	require.NoError(t, err)
	require.NotNil(t, shot.JumpHeight)
	require.NotNil(t, shot.GripPeak)
	assert.Equal(t, 875, *shot.GripPeak)
}

func TestHandleHoop_FailedWriteKeepsJump(t *testing.T) {
	detector := jump.NewDetector(0, 0)
	boom := apperrors.Internal(errors.New("disk full"))
	h := NewHandler(logger.NewNop(), failingRecorder{err: boom}, detector, nil, nil, DefaultTopics())

	require.NoError(t, h.HandleFoot([]byte(`{"az":25000,"ts":0}`)))
	require.NoError(t, h.HandleFoot([]byte(`{"az":0,"ts":400}`)))

	_, err := h.HandleHoop(context.Background(), []byte(`{"classification":1}`))
	require.Error(t, err)

	_, ok := detector.Last()
	assert.True(t, ok)
}

func TestHandleHoop_EventValuesWin(t *testing.T) {
	h, _, _ := setupHandler(t)

	require.NoError(t, h.HandleFoot([]byte(`{"az":25000,"ts":0}`)))
	require.NoError(t, h.HandleFoot([]byte(`{"az":0,"ts":400}`)))

	shot, err := h.HandleHoop(context.Background(), []byte(`{"classification":0,"grip_peak":12,"jump_height":0.5}`))
	require.NoError(t, err)
	assert.Equal(t, 12, *shot.GripPeak)
	assert.Equal(t, 0.5, *shot.JumpHeight)
}

func TestDispatch_Rejections(t *testing.T) {
	tests := []struct {
		name    string
		topic   string
		payload string
	}{
		{"foot not json", DefaultTopicFootRaw, `az=1`},
		{"glove not json", DefaultTopicGloveRaw, `{`},
		{"hoop not json", DefaultTopicHoopEvent, `[`},
		{"hoop without timing", DefaultTopicHoopEvent, `{"scored":true}`},
		{"hoop bad classification", DefaultTopicHoopEvent, `{"classification":9}`},
		{"unknown topic", "basket/other", `{}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, svc, _ := setupHandler(t)
			err := h.Dispatch(context.Background(), tt.topic, []byte(tt.payload))
			require.Error(t, err)
			kind := apperrors.KindOf(err)
			assert.True(t, kind == apperrors.ErrInvalidInput || kind == apperrors.ErrValidation, "kind %v", kind)

			shots, err := svc.ListRecent(context.Background(), 0)
			require.NoError(t, err)
			assert.Empty(t, shots)
		})
	}
}

func TestHandleHoop_RecorderFailureIsNotValidation(t *testing.T) {
	boom := apperrors.Internal(errors.New("disk full"))
	h := NewHandler(logger.NewNop(), failingRecorder{err: boom}, jump.NewDetector(0, 0), nil, nil, DefaultTopics())

	err := h.Dispatch(context.Background(), DefaultTopicHoopEvent, []byte(`{"classification":1}`))
	assert.Equal(t, apperrors.ErrInternal, apperrors.KindOf(err))
}

func TestNewHandler_NilBroadcaster(t *testing.T) {
	h := NewHandler(logger.NewNop(), failingRecorder{}, jump.NewDetector(0, 0), nil, nil, DefaultTopics())

	assert.NotPanics(t, func() {
		h.HandleFoot([]byte(`{"az":25000,"ts":0}`))
		h.HandleFoot([]byte(`{"az":0,"ts":10}`))
	})
}

func TestTopics_List(t *testing.T) {
	assert.Equal(t, []string{DefaultTopicFootRaw, DefaultTopicGloveRaw, DefaultTopicHoopEvent}, DefaultTopics().List())
}
