package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abrezinsky/swishfeed/internal/logger"
	"github.com/abrezinsky/swishfeed/internal/models"
	"github.com/abrezinsky/swishfeed/pkg/shotclient"
)

var sendFlags struct {
	url            string
	classification int
	release        float64
	apex           float64
	scored         bool
}

var sendCmd = &cobra.Command{
	Use:   "send",
	Short: "Record a shot on a running server",
	Long: `Posts one shot to /api/shots and prints the server's totals. Give either
--classification (0 early, 1 perfect, 2 late) or both --release and --apex
in milliseconds and let the server classify it.`,
	Example: `  swishfeed send --classification 1 --scored
  swishfeed send --release 1000 --apex 1090`,
	RunE: runSend,
}

func init() {
	f := sendCmd.Flags()
	f.StringVar(&sendFlags.url, "url", "", "feed server base URL (default feed_url)")
	f.IntVar(&sendFlags.classification, "classification", 0, "explicit classification code")
	f.Float64Var(&sendFlags.release, "release", 0, "release timestamp in ms")
	f.Float64Var(&sendFlags.apex, "apex", 0, "apex timestamp in ms")
	f.BoolVar(&sendFlags.scored, "scored", false, "the shot went in")
}

// shotInput builds the request from whichever flags were given
func shotInput(cmd *cobra.Command) models.ShotInput {
	f := cmd.Flags()
	in := models.ShotInput{Scored: sendFlags.scored}
	if f.Changed("classification") {
		c := sendFlags.classification
		in.Classification = &c
	}
	if f.Changed("release") {
		v := sendFlags.release
		in.TsRelease = &v
	}
	if f.Changed("apex") {
		v := sendFlags.apex
		in.TsApex = &v
	}
	return in
}

func runSend(cmd *cobra.Command, args []string) error {
	baseURL, err := serverURL(cmd, sendFlags.url)
	if err != nil {
		return err
	}

	client := shotclient.NewHTTPClient(baseURL, logger.NewNop())
	return sendShot(cmd, client, shotInput(cmd))
}

func sendShot(cmd *cobra.Command, client shotclient.Client, in models.ShotInput) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	shot, err := client.RecordShot(ctx, in)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "recorded shot %d (classification %d, scored %t)\n", shot.ID, shot.Classification, shot.Scored)

	stats, err := client.Stats(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "totals: %d shots, %d perfect, %d early, %d late, %d scored\n",
		stats.Total, stats.Perfect, stats.Early, stats.Late, stats.Scored)
	return nil
}
