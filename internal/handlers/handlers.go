package handlers

import (
	"context"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"

	"github.com/abrezinsky/swishfeed/internal/logger"
	"github.com/abrezinsky/swishfeed/internal/metrics"
	"github.com/abrezinsky/swishfeed/internal/services"
)

// NewStaticServer creates a static file server from an fs.FS
func NewStaticServer(staticFS fs.FS) http.Handler {
	return http.FileServer(http.FS(staticFS))
}

// Templates holds all parsed HTML templates
type Templates struct {
	Index *template.Template
}

// LiveHub is the websocket endpoint clients subscribe to
type LiveHub interface {
	ServeWs(w http.ResponseWriter, r *http.Request)
	ClientCount() int
}

// Pinger reports whether the database is reachable
type Pinger interface {
	Ping(ctx context.Context) error
}

// Handlers holds all HTTP handler dependencies
type Handlers struct {
	Shots        services.ShotServicer
	QR           services.QRServicer
	Hub          LiveHub
	DB           Pinger
	Metrics      *metrics.Manager
	log          logger.Logger
	templates    *Templates
	staticServer http.Handler
}

// New creates a new Handlers instance with all dependencies
func New(
	shots services.ShotServicer,
	qr services.QRServicer,
	templatesFS fs.FS,
	staticServer http.Handler,
	hub LiveHub,
	db Pinger,
	m *metrics.Manager,
	log logger.Logger,
) (*Handlers, error) {
	templates, err := loadTemplates(templatesFS)
	if err != nil {
		return nil, fmt.Errorf("failed to load templates: %w", err)
	}

	return &Handlers{
		Shots:        shots,
		QR:           qr,
		Hub:          hub,
		DB:           db,
		Metrics:      m,
		log:          log,
		templates:    templates,
		staticServer: staticServer,
	}, nil
}

// NewForTesting creates a Handlers instance without loading templates (for testing API endpoints)
func NewForTesting(shots services.ShotServicer, qr services.QRServicer) *Handlers {
	return &Handlers{
		Shots: shots,
		QR:    qr,
		log:   logger.NewNop(),
		// templates left nil - API endpoints don't use templates
	}
}

// loadTemplates parses all templates once at startup
func loadTemplates(templatesFS fs.FS) (*Templates, error) {
	t := &Templates{}
	var err error

	if t.Index, err = template.ParseFS(templatesFS, "index.html"); err != nil {
		return nil, fmt.Errorf("index template: %w", err)
	}
	return t, nil
}
