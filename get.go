package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var getCmd = &cobra.Command{
	Use:   "get HOST [PATH]",
	Short: "Join the configured network and send one HTTP GET",
	Long: `Opens the modem, joins the configured network when an SSID is set and sends a
single HTTP GET for PATH (default "/") on HOST. The TCP session is always
closed afterwards, whether the request succeeded or not.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		config, logger, err := setup(cmd)
		if err != nil {
			return err
		}
		port, _ := cmd.Flags().GetInt("port")

		host, path := args[0], "/"
		if len(args) == 2 {
			path = args[1]
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

		if config.SSID != "" {
			if err := m.Connect(ctx, config.SSID, config.Password); err != nil {
				return fmt.Errorf("join %q: %w", config.SSID, err)
			}
		}

		if err := m.Get(ctx, host, path, port); err != nil {
			return fmt.Errorf("GET http://%s:%d%s: %w", host, port, path, err)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "GET http://%s:%d%s sent\n", host, port, path)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(getCmd)
	getCmd.Flags().IntP("port", "p", 80, "TCP port of the HTTP server")
}
