package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var version = "dev"

var rootCmd = &cobra.Command{
	Use:   "swishfeed",
	Short: "SwishFeed - live shot timing feed",
	Long: `SwishFeed records basketball shots classified as perfect, early or late
and pushes them to every connected browser or terminal as they happen.

Configuration is read from SWISHFEED_* environment variables and, when
SWISHFEED_CONFIG names a file, from YAML. Flags override both.`,
	SilenceUsage: true,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "swishfeed %s\n", version)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd, watchCmd, sendCmd, versionCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}
