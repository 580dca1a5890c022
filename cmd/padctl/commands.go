package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/padctl/padctl/pkg/protocol"
)

func statusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Pair with the daemon and report the session",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			c, err := dialAndAuth(ctx)
			if err != nil {
				return err
			}
			defer c.Disconnect()

			fmt.Printf("connected to %s:%d\n", flagHost, flagPort)
			fmt.Printf("session %s\n", c.SessionID())
			return nil
		},
	}
}

func moveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "move <dx> <dy>",
		Short: "Move the remote pointer by a relative delta",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			dx, err := strconv.ParseFloat(args[0], 64)
			if err != nil {
				return fmt.Errorf("bad dx %q: %w", args[0], err)
			}
			dy, err := strconv.ParseFloat(args[1], 64)
			if err != nil {
				return fmt.Errorf("bad dy %q: %w", args[1], err)
			}

			c, err := dialAndAuth(cmd.Context())
			if err != nil {
				return err
			}
			defer c.Disconnect()

			if err := c.Send(&protocol.MouseMove{DeltaX: dx, DeltaY: dy}); err != nil {
				return err
			}
			// Give the write a moment to flush before the close frame.
			time.Sleep(50 * time.Millisecond)
			return nil
		},
	}
}

func typeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "type <text>...",
		Short: "Type text on the remote desktop",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text := strings.Join(args, " ")

			c, err := dialAndAuth(cmd.Context())
			if err != nil {
				return err
			}
			defer c.Disconnect()

			if err := c.Send(&protocol.TextInput{Text: text}); err != nil {
				return err
			}
			time.Sleep(50 * time.Millisecond)
			return nil
		},
	}
}

func watchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Stay paired and print server messages until interrupted",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()

			c, err := dialAndAuth(ctx)
			if err != nil {
				return err
			}
			defer c.Disconnect()

			fmt.Printf("session %s, watching (Ctrl-C to stop)\n", c.SessionID())

			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

			for {
				select {
				case <-sigCh:
					return nil
				case env := <-c.Messages():
					switch p := env.Data.(type) {
					case *protocol.StatusUpdate:
						fmt.Printf("[%s] %s %s\n", env.Type, p.Status, p.Message)
					case *protocol.ErrorPayload:
						fmt.Printf("[%s] %s: %s\n", env.Type, p.Code, p.Message)
					default:
						fmt.Printf("[%s]\n", env.Type)
					}
				}
			}
		},
	}
}
