// Package jump detects jumps from foot IMU samples and collects the glove
// grip readings taken while the player is in the air.
package jump

import (
	"math"
	"sync"

	"github.com/abrezinsky/swishfeed/internal/models"
)

// Raw accelerometer units per g
const oneG = 16384

// Default thresholds in raw accelerometer units
const (
	DefaultStartAz   = 20000
	DefaultLandingAz = oneG
)

// Gravity in m/s²
const gravity = 9.81

// Detector is a take-off/landing state machine. It is safe for concurrent use.
type Detector struct {
	startAz   int64
	landingAz int64

	mu        sync.Mutex
	active    bool
	startTs   float64
	peakAz    int64
	glove     []models.GloveSample
	maxFSR    [2]int
	last      *models.JumpSummary
	onLanding func(models.JumpSummary)
}

// NewDetector creates a Detector. Zero thresholds select the defaults.
func NewDetector(startAz, landingAz int64) *Detector {
	if startAz == 0 {
		startAz = DefaultStartAz
	}
	if landingAz == 0 {
		landingAz = DefaultLandingAz
	}
	return &Detector{startAz: startAz, landingAz: landingAz}
}

// OnLanding registers a callback run with every completed jump. It is called
// without the detector's lock held.
func (d *Detector) OnLanding(fn func(models.JumpSummary)) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.onLanding = fn
}

// Active reports whether a jump is in progress
func (d *Detector) Active() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.active
}

// Foot feeds one foot sample. It returns the summary when the sample
// completes a jump.
func (d *Detector) Foot(s models.FootSample) (models.JumpSummary, bool) {
	d.mu.Lock()

	switch {
	case !d.active && s.Az > d.startAz:
		d.active = true
		d.startTs = s.Ts
		d.peakAz = s.Az
		d.mu.Unlock()
		return models.JumpSummary{}, false

	case d.active && s.Az <= d.landingAz:
		summary := models.JumpSummary{
			StartTs: d.startTs,
			EndTs:   s.Ts,
			PeakAz:  d.peakAz,
			Metrics: models.JumpMetrics{
				DurationSeconds: round2((s.Ts - d.startTs) / 1000),
				HeightMeters:    round2(float64(d.peakAz-oneG) * 0.001 / gravity),
				MaxFSR:          d.maxFSR,
			},
			GloveData: d.glove,
		}
		if summary.GloveData == nil {
			summary.GloveData = []models.GloveSample{}
		}
		d.reset()
		d.last = &summary
		fn := d.onLanding
		d.mu.Unlock()

		if fn != nil {
			fn(summary)
		}
		return summary, true

	case d.active && s.Az > d.peakAz:
		d.peakAz = s.Az
	}

	d.mu.Unlock()
	return models.JumpSummary{}, false
}

// Glove feeds one glove sample. Samples outside a jump are ignored.
func (d *Detector) Glove(s models.GloveSample) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.active {
		return
	}
	d.glove = append(d.glove, s)
	d.maxFSR[0] = max(d.maxFSR[0], s.Fsr1)
	d.maxFSR[1] = max(d.maxFSR[1], s.Fsr2)
}

// Last returns the most recently completed jump
func (d *Detector) Last() (models.JumpSummary, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.last == nil {
		return models.JumpSummary{}, false
	}
	return *d.last, true
}

// Forget clears the last completed jump if it is still j, so a jump
// enriches at most one shot. A newer jump is left in place.
func (d *Detector) Forget(j models.JumpSummary) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.last != nil && d.last.StartTs == j.StartTs && d.last.EndTs == j.EndTs {
		d.last = nil
	}
}

func (d *Detector) reset() {
	d.active = false
	d.startTs = 0
	d.peakAz = 0
	d.glove = nil
	d.maxFSR = [2]int{}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
