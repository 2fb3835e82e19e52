// Package ingest turns sensor messages into detector samples and recorded
// shots. Handler is transport independent; Subscriber feeds it from MQTT.
package ingest

import (
	"context"
	"encoding/json"
	stderrors "errors"

	"github.com/abrezinsky/swishfeed/internal/errors"
	"github.com/abrezinsky/swishfeed/internal/jump"
	"github.com/abrezinsky/swishfeed/internal/logger"
	"github.com/abrezinsky/swishfeed/internal/metrics"
	"github.com/abrezinsky/swishfeed/internal/models"
	"github.com/abrezinsky/swishfeed/internal/services"
)

// Default topics published by the sensor firmware
const (
	DefaultTopicGloveRaw  = "basket/glove/raw"
	DefaultTopicFootRaw   = "basket/foot/raw"
	DefaultTopicHoopEvent = "basket/hoop/event"
)

// Topics names the three sensor topics
type Topics struct {
	GloveRaw  string
	FootRaw   string
	HoopEvent string
}

// DefaultTopics returns the firmware's topic names
func DefaultTopics() Topics {
	return Topics{
		GloveRaw:  DefaultTopicGloveRaw,
		FootRaw:   DefaultTopicFootRaw,
		HoopEvent: DefaultTopicHoopEvent,
	}
}

// List returns the topics in subscription order
func (t Topics) List() []string {
	return []string{t.FootRaw, t.GloveRaw, t.HoopEvent}
}

// ShotRecorder persists a shot reported by the hoop
type ShotRecorder interface {
	RecordShot(ctx context.Context, in models.ShotInput) (*models.Shot, error)
}

// JumpBroadcaster pushes completed jumps to live clients
type JumpBroadcaster interface {
	BroadcastJump(jump models.JumpSummary)
}

// Handler routes sensor payloads by topic
type Handler struct {
	log         logger.Logger
	shots       ShotRecorder
	detector    *jump.Detector
	broadcaster JumpBroadcaster
	metrics     *metrics.Manager
	topics      Topics
}

// NewHandler creates a Handler. broadcaster and m may be nil.
func NewHandler(log logger.Logger, shots ShotRecorder, detector *jump.Detector, broadcaster JumpBroadcaster, m *metrics.Manager, topics Topics) *Handler {
	h := &Handler{
		log:         log,
		shots:       shots,
		detector:    detector,
		broadcaster: broadcaster,
		metrics:     m,
		topics:      topics,
	}
	detector.OnLanding(h.jumpCompleted)
	return h
}

// Topics returns the topics this handler accepts
func (h *Handler) Topics() Topics {
	return h.topics
}

// Dispatch handles one message and records the outcome
func (h *Handler) Dispatch(ctx context.Context, topic string, payload []byte) error {
	var err error
	switch topic {
	case h.topics.FootRaw:
		err = h.HandleFoot(payload)
	case h.topics.GloveRaw:
		err = h.HandleGlove(payload)
	case h.topics.HoopEvent:
		_, err = h.HandleHoop(ctx, payload)
	default:
		err = errors.InvalidInputf("unknown topic %q", topic)
	}

	switch {
	case err == nil:
		h.metrics.RecordIngest(topic, metrics.ResultOK)
	case errors.IsKind(err, errors.ErrInvalidInput), errors.IsKind(err, errors.ErrValidation):
		h.metrics.RecordIngest(topic, metrics.ResultRejected)
		h.log.Warn("Rejected sensor message", "topic", topic, "error", err)
	default:
		h.metrics.RecordIngest(topic, metrics.ResultError)
		h.log.Error("Failed to handle sensor message", "topic", topic, "error", err)
	}
	return err
}

// HandleFoot feeds a foot IMU sample to the jump detector
func (h *Handler) HandleFoot(payload []byte) error {
	var sample models.FootSample
	if err := json.Unmarshal(payload, &sample); err != nil {
		return errors.Wrap(err, errors.ErrInvalidInput, "invalid foot sample")
	}
	h.detector.Foot(sample)
	return nil
}

// HandleGlove feeds a glove grip sample to the jump detector
func (h *Handler) HandleGlove(payload []byte) error {
	var sample models.GloveSample
	if err := json.Unmarshal(payload, &sample); err != nil {
		return errors.Wrap(err, errors.ErrInvalidInput, "invalid glove sample")
	}
	h.detector.Glove(sample)
	return nil
}

// HandleHoop records a shot from a hoop event. Jump height and grip peak
// come from the last completed jump unless the event carries its own.
func (h *Handler) HandleHoop(ctx context.Context, payload []byte) (*models.Shot, error) {
	var in models.ShotInput
	if err := json.Unmarshal(payload, &in); err != nil {
		return nil, errors.Wrap(err, errors.ErrInvalidInput, "invalid hoop event")
	}

	j, jumped := h.detector.Last()
	if jumped {
		if in.JumpHeight == nil {
			height := j.Metrics.HeightMeters
			in.JumpHeight = &height
		}
		if in.GripPeak == nil {
			grip := j.GripPeak()
			in.GripPeak = &grip
		}
	}

	shot, err := h.shots.RecordShot(ctx, in)
	var svcErr *services.ServiceError
	if stderrors.As(err, &svcErr) {
		return nil, errors.Wrap(err, errors.ErrValidation, "hoop event rejected")
	}
	if err != nil {
		return nil, err
	}

	// The jump stays available to the next hoop event until a shot is stored
	if jumped {
		h.detector.Forget(j)
	}
	return shot, nil
}

func (h *Handler) jumpCompleted(j models.JumpSummary) {
	h.metrics.RecordJump()
	h.log.Info("Jump detected", "duration_s", j.Metrics.DurationSeconds, "height_m", j.Metrics.HeightMeters, "grip_peak", j.GripPeak())
	if h.broadcaster != nil {
		h.broadcaster.BroadcastJump(j)
	}
}
