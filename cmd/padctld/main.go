package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	padctlerrors "github.com/padctl/padctl/internal/errors"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "padctld",
		Short: "The padctl desktop daemon",
		Long: `padctld turns this machine into a remotely controlled desktop.

A paired touch device connects over the local network and drives the
pointer and keyboard. Features:

  • PIN-paired sessions over WebSocket
  • Trackpad-style pointer with sub-pixel precision
  • Multi-touch gestures: scroll, pinch, rotate, swipe
  • Text input with Unicode support
  • Prometheus metrics and health endpoints`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(
		serveCmd(),
		initCmd(),
		versionCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "\033[31mError:\033[0m %s\n", err)
		var perr *padctlerrors.Error
		if errors.As(err, &perr) && perr.Suggestion != "" {
			fmt.Fprintf(os.Stderr, "  %s\n", perr.Suggestion)
		}
		os.Exit(1)
	}
}

// success prints a success message.
func success(format string, args ...any) {
	fmt.Printf("\033[32m✓\033[0m %s\n", fmt.Sprintf(format, args...))
}

// info prints an info message.
func info(format string, args ...any) {
	fmt.Printf("  %s\n", fmt.Sprintf(format, args...))
}
