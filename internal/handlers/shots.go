package handlers

import (
	"net/http"

	"github.com/abrezinsky/swishfeed/internal/feed"
	"github.com/abrezinsky/swishfeed/internal/models"
)

// IndexPageData is passed to the feed page template
type IndexPageData struct {
	Title      string
	Rows       []feed.Row
	LoadFailed bool
}

// handleIndex renders the feed page with the recent window already in the
// table, newest first. A failed load still serves the page with an empty table.
func (h *Handlers) handleIndex(w http.ResponseWriter, r *http.Request) {
	if h.templates == nil {
		h.respondError(w, r, ErrInternalServer)
		return
	}

	table := feed.NewTable()
	renderer := feed.NewRenderer(h.log, table, h.Shots.Recent(), nil)
	loadErr := renderer.LoadInitial(r.Context())

	data := IndexPageData{
		Title:      "Shot Feed",
		Rows:       table.Rows(),
		LoadFailed: loadErr != nil,
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := h.templates.Index.Execute(w, data); err != nil {
		h.log.Error("Failed to render index", "error", err)
	}
}

// handleListShots returns the recent window in recording order
func (h *Handlers) handleListShots(w http.ResponseWriter, r *http.Request) {
	limit, err := parseLimitQuery(r)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	shots, err := h.Shots.ListRecent(r.Context(), limit)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respondOK(w, ShotsResponse{Shots: shots})
}

func (h *Handlers) handleGetShot(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	shot, err := h.Shots.GetShot(r.Context(), id)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respondOK(w, shot)
}

// handleCreateShot records a shot posted by a sensor bridge or a test client
func (h *Handlers) handleCreateShot(w http.ResponseWriter, r *http.Request) {
	var in models.ShotInput
	if err := decodeJSON(r, &in); err != nil {
		h.respondError(w, r, err)
		return
	}

	shot, err := h.Shots.RecordShot(r.Context(), in)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respondCreated(w, shot)
}

func (h *Handlers) handleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.Shots.Stats(r.Context())
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respondOK(w, stats)
}

// handleFeedQR serves a PNG QR code linking to the feed page
func (h *Handlers) handleFeedQR(w http.ResponseWriter, r *http.Request) {
	png, err := h.QR.FeedQRImage(r.Context())
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-cache")
	w.Write(png)
}

func (h *Handlers) handleHealth(w http.ResponseWriter, r *http.Request) {
	resp := HealthResponse{Status: "ok", Database: "ok"}
	if h.Hub != nil {
		resp.Clients = h.Hub.ClientCount()
	}

	status := http.StatusOK
	if h.DB != nil {
		if err := h.DB.Ping(r.Context()); err != nil {
			h.log.Warn("Health check failed", "error", err)
			resp.Status = "degraded"
			resp.Database = err.Error()
			status = http.StatusServiceUnavailable
		}
	}
	respondJSON(w, status, resp)
}
