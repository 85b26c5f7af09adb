package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"i4.energy/across/wifigw/modem"
)

const shutdownTimeout = 30 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Expose the modem over an HTTP control API",
	RunE: func(cmd *cobra.Command, args []string) error {
		config, logger, err := setup(cmd)
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		return runServe(ctx, config, logger, func(ctx context.Context) (*modem.Modem, error) {
			return openModem(ctx, config, logger)
		})
	},
}

// runServe opens the modem and serves the control API until ctx is done or
// the listener fails. The modem is closed on every return path once opened.
func runServe(ctx context.Context, config *Config, logger *slog.Logger, open func(context.Context) (*modem.Modem, error)) error {
	m, err := open(ctx)
	if err != nil {
		return err
	}
	defer func() {
		logger.Info("Closing modem connection")
		if err := m.Close(); err != nil {
			logger.Error("Failed to close modem", "error", err)
		}
	}()

	logger.Info("Starting WiFi Gateway", "serial_port", config.SerialPort, "baud_rate", config.BaudRate)

	if config.SSID != "" {
		if err := m.Connect(ctx, config.SSID, config.Password); err != nil {
			logger.Warn("Initial network join failed", "ssid", config.SSID, "error", err)
		}
	}

	if ctx.Err() != nil {
		logger.Info("Shutdown requested during startup")
		return nil
	}

	registry := prometheus.NewRegistry()
	if err := registerMetrics(registry, m.Metrics(), m.IsConnected); err != nil {
		return fmt.Errorf("register metrics: %w", err)
	}

	httpServer := &http.Server{
		Addr: config.BindAddress,
		Handler: &Server{
			Logger:   logger.With("component", "server"),
			Gateway:  m,
			SSID:     config.SSID,
			Password: config.Password,
			Metrics:  promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		},
	}

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("Starting HTTP server", "address", httpServer.Addr)
		serverErrors <- httpServer.ListenAndServe()
	}()

	var serveErr error
	select {
	case err := <-serverErrors:
		serveErr = fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
		logger.Info("Received shutdown signal")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	logger.Info("Closing HTTP server")
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("Failed to gracefully shutdown server", "error", err)
	}

	return serveErr
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().String("bind-address", "0.0.0.0:8080", "Bind address for the HTTP server")
}
