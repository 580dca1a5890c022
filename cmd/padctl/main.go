package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/padctl/padctl/internal/config"
	"github.com/padctl/padctl/internal/logging"
	"github.com/padctl/padctl/pkg/client"
)

var version = "dev"

// Connection flags shared by every subcommand.
var (
	flagHost     string
	flagPort     int
	flagPIN      string
	flagLogLevel string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "padctl",
		Short: "Control a padctld desktop from the command line",
		Long: `padctl is the command-line controlling peer for a padctld daemon.

It speaks the same protocol as the touch-device apps, which makes it
useful for pairing checks and scripted input.

Examples:
  padctl --host 192.168.1.20 --pin 4821 status
  padctl --host 192.168.1.20 --pin 4821 move 10 -5
  padctl --host 192.168.1.20 --pin 4821 type "hello from the couch"`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVarP(&flagHost, "host", "H", "127.0.0.1", "Daemon address")
	rootCmd.PersistentFlags().IntVarP(&flagPort, "port", "p", config.DefaultPort, "Daemon port")
	rootCmd.PersistentFlags().StringVar(&flagPIN, "pin", "", "Pairing PIN (or PADCTL_PIN)")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "warn", "Log level")

	rootCmd.AddCommand(
		statusCmd(),
		moveCmd(),
		typeCmd(),
		watchCmd(),
		&cobra.Command{
			Use:   "version",
			Short: "Print version information",
			Run: func(cmd *cobra.Command, args []string) {
				fmt.Println(version)
			},
		},
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "\033[31mError:\033[0m %s\n", err)
		os.Exit(1)
	}
}

// dialAndAuth connects and authenticates with the configured daemon.
// The caller must Disconnect the returned client.
func dialAndAuth(ctx context.Context) (*client.Client, error) {
	pin := flagPIN
	if pin == "" {
		pin = os.Getenv("PADCTL_PIN")
	}
	if pin == "" {
		return nil, fmt.Errorf("no PIN given; pass --pin or export PADCTL_PIN")
	}

	logger := logging.New(logging.Options{Level: flagLogLevel})
	c := client.New(nil, logger)
	if err := c.Connect(flagHost, flagPort); err != nil {
		return nil, err
	}

	waitCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()
	if err := c.WaitFor(waitCtx, client.StateConnected); err != nil {
		c.Disconnect()
		return nil, fmt.Errorf("connecting to %s:%d: %w", flagHost, flagPort, err)
	}

	host, _ := os.Hostname()
	resp, err := c.Authenticate(ctx, pin, "padctl-cli", host)
	if err != nil {
		c.Disconnect()
		return nil, err
	}
	if !resp.Success {
		c.Disconnect()
		return nil, fmt.Errorf("authentication refused: %s", resp.Reason)
	}
	return c, nil
}
