// Package app wires the shot feed server together and runs it.
package app

import (
	"context"
	stderrors "errors"
	"fmt"
	"io/fs"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"golang.org/x/sync/errgroup"

	"github.com/abrezinsky/swishfeed/internal/config"
	"github.com/abrezinsky/swishfeed/internal/handlers"
	"github.com/abrezinsky/swishfeed/internal/ingest"
	"github.com/abrezinsky/swishfeed/internal/jump"
	"github.com/abrezinsky/swishfeed/internal/logger"
	"github.com/abrezinsky/swishfeed/internal/metrics"
	"github.com/abrezinsky/swishfeed/internal/repository"
	"github.com/abrezinsky/swishfeed/internal/services"
	"github.com/abrezinsky/swishfeed/internal/websocket"
)

const (
	readHeaderTimeout = 10 * time.Second
	shutdownTimeout   = 5 * time.Second
)

// App holds all application dependencies
type App struct {
	cfg        *config.Config
	log        logger.Logger
	repo       *repository.Repository
	metrics    *metrics.Manager
	hub        *websocket.Hub
	shots      *services.ShotService
	detector   *jump.Detector
	subscriber *ingest.Subscriber
	handlers   *handlers.Handlers
	feedURL    string
}

// New creates and initializes a new application instance
func New(cfg *config.Config, log logger.Logger, templatesFS, staticFS fs.FS) (*App, error) {
	return newApp(cfg, log, templatesFS, staticFS, realNetworkProvider{})
}

func newApp(cfg *config.Config, log logger.Logger, templatesFS, staticFS fs.FS, network networkProvider) (*App, error) {
	repo, err := repository.Open(cfg.DBDriver, cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	m := metrics.NewManager()
	hub := websocket.New(log, m)

	shots := services.NewShotService(log, repo, hub, m, services.Options{
		RecentLimit:     cfg.RecentLimit,
		MaxRecentLimit:  cfg.MaxRecentLimit,
		PerfectWindowMS: cfg.PerfectWindowMS,
	})

	// A localhost feed URL is useless in a QR code scanned by a phone
	feedURL := cfg.FeedURL
	if feedURL == "" || strings.Contains(feedURL, "localhost") || strings.Contains(feedURL, "127.0.0.1") {
		feedURL = lanFeedURL(cfg.Addr, network)
	}
	qr := services.NewQRService(feedURL)

	a := &App{
		cfg:      cfg,
		log:      log,
		repo:     repo,
		metrics:  m,
		hub:      hub,
		shots:    shots,
		detector: jump.NewDetector(cfg.JumpStartAz, cfg.LandingAz),
		feedURL:  qr.FeedURL(),
	}

	if cfg.MQTTEnabled() {
		topics := ingest.Topics{
			GloveRaw:  cfg.TopicGloveRaw,
			FootRaw:   cfg.TopicFootRaw,
			HoopEvent: cfg.TopicHoopEvent,
		}
		handler := ingest.NewHandler(log, shots, a.detector, hub, m, topics)
		a.subscriber = ingest.NewSubscriber(ingest.Config{
			Broker:   cfg.MQTTBroker,
			Port:     cfg.MQTTPort,
			Username: cfg.MQTTUser,
			Password: cfg.MQTTPassword,
			ClientID: cfg.MQTTClientID,
		}, handler, log)
	}

	h, err := handlers.New(
		shots,
		qr,
		templatesFS,
		handlers.NewStaticServer(staticFS),
		hub,
		repo,
		m,
		log,
	)
	if err != nil {
		repo.Close()
		return nil, fmt.Errorf("failed to initialize handlers: %w", err)
	}
	a.handlers = h

	return a, nil
}

// Router returns the configured HTTP router
func (a *App) Router() chi.Router {
	return a.handlers.Router()
}

// FeedURL returns the URL the feed page is reachable at from the LAN
func (a *App) FeedURL() string {
	return a.feedURL
}

// MQTTEnabled reports whether sensor ingest will run
func (a *App) MQTTEnabled() bool {
	return a.subscriber != nil
}

// Close releases the database
func (a *App) Close() error {
	return a.repo.Close()
}

// Run listens on the configured address and serves until ctx is cancelled
func (a *App) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", a.cfg.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", a.cfg.Addr, err)
	}
	return a.Serve(ctx, ln)
}

// Serve runs the HTTP server, the websocket hub and, when configured, the
// MQTT subscriber on ln. All three stop when ctx is cancelled or any of
// them fails; the HTTP server is shut down gracefully.
func (a *App) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           a.Router(),
		ReadHeaderTimeout: readHeaderTimeout,
	}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return a.hub.Run(ctx)
	})

	if a.subscriber != nil {
		g.Go(func() error {
			// The feed stays up without sensors; ingest failure is logged, not fatal
			if err := a.subscriber.Run(ctx); err != nil {
				a.log.Error("MQTT ingest stopped", "error", err)
			}
			return nil
		})
	}

	g.Go(func() error {
		a.log.Info("Server starting", "addr", ln.Addr().String(), "url", a.feedURL)
		if err := srv.Serve(ln); err != nil && !stderrors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		a.log.Info("Server shutting down")
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
