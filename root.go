package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"i4.energy/across/wifigw/modem"
)

var rootCmd = &cobra.Command{
	Use:   "wifigw",
	Short: "wifigw drives an AT-command WiFi modem",
	Long: `wifigw joins a wireless network through an ESP8266-style modem attached to a
serial port and issues plain HTTP GET requests over short-lived TCP sessions.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.String("config", "", "Path to a YAML configuration file")
	flags.String("serial-port", "/dev/ttyUSB0", "Serial port to connect to the modem")
	flags.Int("baud-rate", modem.DefaultBaudRate, "Baud rate for serial communication")
	flags.String("log-level", "info", "Log level (debug, info, warn, error)")
	flags.String("log-format", "json", "Log format (json, console)")
	flags.String("ssid", "", "SSID of the network to join")
	flags.String("password", "", "Password of the network to join")
	flags.String("user-agent", "", "User-Agent header sent with requests")
}

// setup loads the configuration for cmd and builds the logger.
func setup(cmd *cobra.Command) (*Config, *slog.Logger, error) {
	path, _ := cmd.Flags().GetString("config")

	config, err := LoadConfig(WithDefaults(), WithFile(path), WithEnv(), WithFlags(cmd.Flags()))
	if err != nil {
		return nil, nil, fmt.Errorf("load configuration: %w", err)
	}

	return config, newLogger(config.LogLevel, config.LogFormat, os.Stderr), nil
}

// openModem dials and initializes the modem described by config.
func openModem(ctx context.Context, config *Config, logger *slog.Logger) (*modem.Modem, error) {
	modemConfig, err := config.ModemConfig(logger.With("component", "modem"))
	if err != nil {
		return nil, fmt.Errorf("create modem config: %w", err)
	}

	m, err := modem.New(ctx, modemConfig)
	if err != nil {
		return nil, fmt.Errorf("create modem: %w", err)
	}
	return m, nil
}
