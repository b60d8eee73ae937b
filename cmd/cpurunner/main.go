package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"

	"github.com/FabianRolfMatthiasNoll/sm83core/internal/statsview"
	"github.com/spf13/cobra"
)

// exitError ends the process with code without printing anything further.
type exitError struct{ code int }

func (e exitError) Error() string { return fmt.Sprintf("exit status %d", e.code) }

func main() {
	var verbose bool
	var stats bool
	var statsAddr string

	rootCmd := &cobra.Command{
		Use:           "cpurunner",
		Short:         "Headless SM83 runner for Game Boy CPU test ROMs",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := slog.LevelInfo
			if verbose {
				level = slog.LevelDebug
			}
			slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
			if stats {
				statsview.Launch(statsAddr, slog.Default())
			}
		},
	}
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Debug logging on stderr")
	rootCmd.PersistentFlags().BoolVar(&stats, "statsview", false, "Serve live runtime statistics over HTTP")
	rootCmd.PersistentFlags().StringVar(&statsAddr, "statsview-addr", statsview.DefaultAddress, "Listen address for --statsview")

	rootCmd.AddCommand(newRunCmd(), newDisasmCmd())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		var ee exitError
		if errors.As(err, &ee) {
			os.Exit(ee.code)
		}
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
