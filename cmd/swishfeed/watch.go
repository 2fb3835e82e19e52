package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/abrezinsky/swishfeed/internal/config"
	"github.com/abrezinsky/swishfeed/internal/feed"
	"github.com/abrezinsky/swishfeed/internal/logger"
	"github.com/abrezinsky/swishfeed/internal/tui"
	"github.com/abrezinsky/swishfeed/pkg/shotclient"
)

var watchFlags struct {
	url   string
	once  bool
	limit int
}

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Follow a feed server in the terminal",
	Long: `Loads the recent window from a running server, newest shot on top, then
adds each live shot above it as it is recorded. With --once the table is
printed and the command exits.`,
	Example: `  swishfeed watch --url http://192.168.1.20:8000
  swishfeed watch --once --limit 50`,
	RunE: runWatch,
}

func init() {
	f := watchCmd.Flags()
	f.StringVar(&watchFlags.url, "url", "", "feed server base URL (default feed_url)")
	f.BoolVar(&watchFlags.once, "once", false, "print the recent window and exit")
	f.IntVar(&watchFlags.limit, "limit", 0, "number of recent shots to load (server default when 0)")
}

// serverURL returns the --url flag when given, else the configured feed_url
func serverURL(cmd *cobra.Command, flagValue string) (string, error) {
	if cmd.Flags().Changed("url") {
		return flagValue, nil
	}
	cfg, err := config.Load(cmd.Context())
	if err != nil {
		return "", err
	}
	return cfg.FeedURL, nil
}

// recentSource adapts the client to a feed.Source honouring --limit
func recentSource(client shotclient.Client, limit int) feed.Source {
	return feed.SourceFunc(func(ctx context.Context) ([]feed.ShotRecord, error) {
		return client.FetchRecent(ctx, limit)
	})
}

// loadInitial renders the recent window into a table, newest first
func loadInitial(ctx context.Context, log logger.Logger, src feed.Source) (*feed.Table, error) {
	table := feed.NewTable()
	err := feed.NewRenderer(log, table, src, nil).LoadInitial(ctx)
	return table, err
}

func runWatch(cmd *cobra.Command, args []string) error {
	baseURL, err := serverURL(cmd, watchFlags.url)
	if err != nil {
		return err
	}
	ctx := cmd.Context()

	if watchFlags.once {
		log := logger.NewWithWriter(os.Stderr, logger.ParseLevel("warn"))
		client := shotclient.NewHTTPClient(baseURL, log)
		table, err := loadInitial(ctx, log, recentSource(client, watchFlags.limit))
		if err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), tui.RenderTable(table.Rows()))
		return nil
	}

	// The terminal belongs to the TUI, so logs are discarded
	log := logger.NewWithWriter(io.Discard, logger.ParseLevel("info"))
	client := shotclient.NewHTTPClient(baseURL, log)

	// A failed initial load leaves the table empty; live shots still render
	table, loadErr := loadInitial(ctx, log, recentSource(client, watchFlags.limit))

	liveURL, err := feed.LiveURL(baseURL)
	if err != nil {
		return err
	}
	// Shots recorded between the initial load and this dial are not shown
	ch, err := feed.Dial(ctx, liveURL, log)
	if err != nil {
		return fmt.Errorf("failed to connect to %s: %w", liveURL, err)
	}
	defer ch.Close()

	p := tea.NewProgram(tui.New("Shot Feed", baseURL, table.Rows()), tea.WithContext(ctx))

	sub := feed.NewRenderer(log, tui.NewSurface(p), nil, ch).SubscribeLive()
	defer sub.Cancel()

	go func() {
		p.Send(tui.StatusMsg{Connected: true, Err: loadErr})
		<-ch.Done()
		p.Send(tui.StatusMsg{Connected: false, Err: ch.Err()})
	}()

	_, err = p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}
