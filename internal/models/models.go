package models

import "time"

// Classification codes as stored and sent on the wire
const (
	ClassificationEarly   = 0
	ClassificationPerfect = 1
	ClassificationLate    = 2
)

// Shot is a recorded shot attempt
type Shot struct {
	ID             int64     `json:"id"`
	TsRelease      *float64  `json:"ts_release,omitempty"` // ms timestamp
	TsApex         *float64  `json:"ts_apex,omitempty"`
	Classification int       `json:"classification"`
	Scored         bool      `json:"scored"`
	GripPeak       *int      `json:"grip_peak,omitempty"`
	JumpHeight     *float64  `json:"jump_height,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

// ShotInput is a shot as reported by the hoop sensor or the ingest API.
// A nil Classification is derived from the release and apex timestamps.
type ShotInput struct {
	TsRelease      *float64 `json:"ts_release,omitempty"`
	TsApex         *float64 `json:"ts_apex,omitempty"`
	Classification *int     `json:"classification,omitempty"`
	Scored         bool     `json:"scored"`
	GripPeak       *int     `json:"grip_peak,omitempty"`
	JumpHeight     *float64 `json:"jump_height,omitempty"`
}

// ShotStats summarizes all recorded shots
type ShotStats struct {
	Total   int `json:"total"`
	Perfect int `json:"perfect"`
	Early   int `json:"early"`
	Late    int `json:"late"`
	Scored  int `json:"scored"`
}

// FootSample is one reading from the foot IMU
type FootSample struct {
	Az int64   `json:"az"`
	Ts float64 `json:"ts"`
}

// GloveSample is one reading from the grip glove
type GloveSample struct {
	Fsr1 int     `json:"fsr1"`
	Fsr2 int     `json:"fsr2"`
	Ts   float64 `json:"ts"`
}

// JumpMetrics are derived from a completed jump
type JumpMetrics struct {
	DurationSeconds float64 `json:"duration_s"`
	HeightMeters    float64 `json:"height_m"`
	MaxFSR          [2]int  `json:"max_fsr"`
}

// JumpSummary describes one jump from take-off to landing
type JumpSummary struct {
	StartTs   float64       `json:"start_ts"`
	EndTs     float64       `json:"end_ts"`
	PeakAz    int64         `json:"peak_az"`
	Metrics   JumpMetrics   `json:"metrics"`
	GloveData []GloveSample `json:"glove_data"`
}

// GripPeak returns the strongest finger reading during the jump
func (j JumpSummary) GripPeak() int {
	return max(j.Metrics.MaxFSR[0], j.Metrics.MaxFSR[1])
}

// WSMessage represents a WebSocket message
type WSMessage struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

// WebSocket message types
const (
	MessageTypeShot = "shot"
	MessageTypeJump = "jump"
)
