package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "widget",
	Short: "Terminal front end for the support chat relay",
	Long: `Terminal front end for the support chat relay.

Examples:
  widget chat --relay http://localhost:5000
  widget ask "What are your hours?"
  widget probe queries.json --out results`,
	SilenceUsage: true,
}

func init() {
	def := strings.TrimSpace(os.Getenv("RELAY_URL"))
	if def == "" {
		def = "http://localhost:5000"
	}
	rootCmd.PersistentFlags().String("relay", def, "relay base URL (env RELAY_URL)")
	rootCmd.AddCommand(chatCmd, askCmd, probeCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
