// Package feed renders shot records into a live, classified feed.
//
// A Renderer turns each ShotRecord into a Row and inserts it at the top of
// an injected Surface. The initial batch and live events go through the same
// Render call, so both paths produce identical rows.
package feed

import (
	"context"
	"sync"

	"github.com/abrezinsky/swishfeed/internal/logger"
)

// Scored glyphs
const (
	GlyphScored = "✅"
	GlyphMissed = "❌"
)

// EventShot is the live channel event name carrying one ShotRecord
const EventShot = "shot"

// Row is one rendered feed line
type Row struct {
	Tag   string `json:"tag"`
	ID    string `json:"id"`
	Label string `json:"label"`
	Glyph string `json:"glyph"`
}

// Cells returns the displayed cells in column order
func (r Row) Cells() [3]string {
	return [3]string{r.ID, r.Label, r.Glyph}
}

// BuildRow converts a record into its row
func BuildRow(rec ShotRecord) Row {
	glyph := GlyphMissed
	if rec.Scored {
		glyph = GlyphScored
	}
	return Row{
		Tag:   rec.Classification.Tag(),
		ID:    rec.ID.String(),
		Label: rec.Classification.Label(),
		Glyph: glyph,
	}
}

// Surface is the render target. Prepend inserts a row above all existing rows.
type Surface interface {
	Prepend(row Row)
}

// SurfaceFunc adapts a function to Surface
type SurfaceFunc func(row Row)

func (f SurfaceFunc) Prepend(row Row) { f(row) }

// Source supplies the initial batch in server order
type Source interface {
	FetchShots(ctx context.Context) ([]ShotRecord, error)
}

// SourceFunc adapts a function to Source
type SourceFunc func(ctx context.Context) ([]ShotRecord, error)

func (f SourceFunc) FetchShots(ctx context.Context) ([]ShotRecord, error) { return f(ctx) }

// Subscription is a standing registration on a Channel
type Subscription interface {
	Cancel()
}

// Channel delivers live shot events. Handlers run once per event in
// delivery order until their subscription is cancelled.
type Channel interface {
	OnShot(handler func(ShotRecord)) Subscription
}

// SubscriptionFunc adapts a cancel function to Subscription
type SubscriptionFunc func()

func (f SubscriptionFunc) Cancel() { f() }

type noopSubscription struct{}

func (noopSubscription) Cancel() {}

// Renderer owns the feed's row insertion policy
type Renderer struct {
	log     logger.Logger
	surface Surface
	source  Source
	live    Channel

	mu sync.Mutex
}

// NewRenderer creates a Renderer. source and live may be nil when the caller
// only renders records directly.
func NewRenderer(log logger.Logger, surface Surface, source Source, live Channel) *Renderer {
	return &Renderer{
		log:     log,
		surface: surface,
		source:  source,
		live:    live,
	}
}

// Render inserts one row for rec at the top of the surface. It never
// merges or deduplicates: rendering a record twice yields two rows.
func (r *Renderer) Render(rec ShotRecord) {
	row := BuildRow(rec)

	r.mu.Lock()
	defer r.mu.Unlock()
	r.surface.Prepend(row)
}

// LoadInitial fetches the initial batch and renders it front to back, so the
// last record of the server's list ends on top. A failed fetch renders
// nothing; the error is logged and returned for the caller to ignore or report.
func (r *Renderer) LoadInitial(ctx context.Context) error {
	if r.source == nil {
		return nil
	}

	records, err := r.source.FetchShots(ctx)
	if err != nil {
		r.log.Error("Failed to load initial shots", "error", err)
		return err
	}

	for _, rec := range records {
		r.Render(rec)
	}
	r.log.Debug("Initial shots rendered", "count", len(records))
	return nil
}

// SubscribeLive renders every live shot event as it arrives. Events are not
// reordered. Cancel the returned subscription to stop rendering.
func (r *Renderer) SubscribeLive() Subscription {
	if r.live == nil {
		return noopSubscription{}
	}
	return r.live.OnShot(r.Render)
}
