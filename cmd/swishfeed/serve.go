package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/abrezinsky/swishfeed/internal/app"
	"github.com/abrezinsky/swishfeed/internal/browser"
	"github.com/abrezinsky/swishfeed/internal/config"
	"github.com/abrezinsky/swishfeed/internal/logger"
	"github.com/abrezinsky/swishfeed/web"
)

const bannerFrameDelay = 70 * time.Millisecond

var serveFlags struct {
	addr       string
	dbPath     string
	dbDriver   string
	logLevel   string
	noAnimate  bool
	noKeyboard bool
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the feed server",
	Long: `Serves the feed page, the /shots window, the /ws live channel and the
JSON API. When mqtt_broker is configured, sensor messages are ingested from
the glove, foot and hoop topics.

Keyboard shortcuts (when enabled):
  o              Open the feed in a browser
  h              Toggle HTTP request logging
  l              Cycle log level (debug → info → warn → error)
  q              Quit server
  ?              Show keyboard help`,
	Example: `  swishfeed serve                         # :8000 with shots.db
  swishfeed serve --addr :9000 --db /data/shots.db
  swishfeed serve --db-driver sqlite      # pure Go sqlite driver
  SWISHFEED_MQTT_BROKER=10.0.0.5 swishfeed serve`,
	RunE: runServe,
}

func init() {
	f := serveCmd.Flags()
	f.StringVar(&serveFlags.addr, "addr", "", "HTTP listen address (default \":8000\")")
	f.StringVar(&serveFlags.dbPath, "db", "", "SQLite database path (default \"shots.db\")")
	f.StringVar(&serveFlags.dbDriver, "db-driver", "", "database driver: sqlite3 (cgo) or sqlite (pure Go)")
	f.StringVar(&serveFlags.logLevel, "loglevel", "", "log level: debug, info, warn, error")
	f.BoolVar(&serveFlags.noAnimate, "noanimate", false, "show logo only, skip the animation")
	f.BoolVar(&serveFlags.noKeyboard, "nokeyboard", false, "disable keyboard shortcuts")
}

// loadServeConfig layers changed flags over the environment and file config
func loadServeConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(cmd.Context())
	if err != nil {
		return nil, err
	}

	f := cmd.Flags()
	if f.Changed("addr") {
		cfg.Addr = serveFlags.addr
	}
	if f.Changed("db") {
		cfg.DBPath = serveFlags.dbPath
	}
	if f.Changed("db-driver") {
		cfg.DBDriver = serveFlags.dbDriver
	}
	if f.Changed("loglevel") {
		cfg.LogLevel = serveFlags.logLevel
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadServeConfig(cmd)
	if err != nil {
		return err
	}

	showBanner(os.Stdout, serveFlags.noAnimate, bannerFrameDelay)

	appLog := logger.NewWithLevel(logger.ParseLevel(cfg.LogLevel))
	defer appLog.Sync()
	if cfg.HTTPLogging {
		appLog.EnableHTTPLogging()
	}

	a, err := app.New(cfg, appLog, web.Templates(), web.Static())
	if err != nil {
		appLog.Error("Failed to initialize application", "error", err)
		return err
	}
	defer a.Close()

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	fmt.Printf("  %sFeed:%s %s\n", bold, reset, a.FeedURL())
	if a.MQTTEnabled() {
		fmt.Printf("  %sMQTT:%s %s:%d\n", bold, reset, cfg.MQTTBroker, cfg.MQTTPort)
	}

	if serveFlags.noKeyboard {
		fmt.Printf("\n%sKeyboard shortcuts disabled (use --nokeyboard=false to enable)%s\n\n", yellow, reset)
	} else {
		keys := &keyActions{
			out:     os.Stdout,
			log:     appLog,
			feedURL: a.FeedURL(),
			opener:  browser.New(),
			quit:    cancel,
		}
		if listenForKeyboard(ctx, keys) {
			printKeyboardHelp(os.Stdout)
		}
	}

	return a.Run(ctx)
}
