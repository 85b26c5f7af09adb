package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var connectCmd = &cobra.Command{
	Use:   "connect",
	Short: "Join the configured network, or leave it with --leave",
	RunE: func(cmd *cobra.Command, args []string) error {
		config, logger, err := setup(cmd)
		if err != nil {
			return err
		}
		leave, _ := cmd.Flags().GetBool("leave")

		if !leave && config.SSID == "" {
			return errors.New("an SSID is required to join a network")
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		m, err := openModem(ctx, config, logger)
		if err != nil {
			return err
		}
		defer func() {
			if err := m.Close(); err != nil {
				logger.Error("Failed to close modem", "error", err)
			}
		}()

		if leave {
			err = m.Disconnect(ctx)
		} else {
			err = m.Connect(ctx, config.SSID, config.Password)
		}
		if err != nil {
			return err
		}

		fmt.Fprintln(cmd.OutOrStdout(), m.State())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(connectCmd)
	connectCmd.Flags().Bool("leave", false, "Leave the current network instead of joining")
}
