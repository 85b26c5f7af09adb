package main

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"

	"i4.energy/across/wifigw/modem"
)

// Config holds the application configuration
type Config struct {
	// BindAddress is the address the server listens on (e.g. "0.0.0.0:8080")
	BindAddress string `yaml:"bind_address"`
	// SerialPort is the path to the modem's serial port (e.g. "/dev/ttyUSB0")
	SerialPort string `yaml:"serial_port"`
	// BaudRate is the baud rate for serial communication with the modem (e.g. 9600)
	BaudRate int `yaml:"baud_rate"`
	// LogLevel sets the logging level (e.g. "debug", "info", "warn", "error")
	LogLevel string `yaml:"log_level"`
	// LogFormat selects "json" or "console" log output
	LogFormat string `yaml:"log_format"`
	// SSID and Password are the credentials of the network to join
	SSID     string `yaml:"ssid"`
	Password string `yaml:"password"`
	// UserAgent is sent with every HTTP request
	UserAgent string `yaml:"user_agent"`
	// Timeouts override the modem defaults; zero keeps the default
	Timeouts Timeouts `yaml:"timeouts"`
}

// Timeouts are decoded from duration strings such as "8s".
type Timeouts struct {
	AT          time.Duration `yaml:"at"`
	NetworkJoin time.Duration `yaml:"network_join"`
	TCPConnect  time.Duration `yaml:"tcp_connect"`
	Prompt      time.Duration `yaml:"prompt"`
	Send        time.Duration `yaml:"send"`
	Close       time.Duration `yaml:"close"`
}

// ConfigOption is a function that modifies a Config
type ConfigOption func(*Config) error

// LoadConfig creates a new config by applying the given options in order
func LoadConfig(opts ...ConfigOption) (*Config, error) {
	config := &Config{}

	for _, opt := range opts {
		if err := opt(config); err != nil {
			return nil, err
		}
	}

	return config, nil
}

// WithDefaults applies default configuration values
func WithDefaults() ConfigOption {
	return func(c *Config) error {
		c.BindAddress = "0.0.0.0:8080"
		c.SerialPort = "/dev/ttyUSB0"
		c.BaudRate = modem.DefaultBaudRate
		c.LogLevel = "info"
		c.LogFormat = "json"
		return nil
	}
}

// WithFile overlays the YAML file at path. An empty path is a no-op.
func WithFile(path string) ConfigOption {
	return func(c *Config) error {
		if path == "" {
			return nil
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, c); err != nil {
			return fmt.Errorf("parse config file %s: %w", path, err)
		}
		return nil
	}
}

// WithEnv loads configuration from environment variables
func WithEnv() ConfigOption {
	return func(c *Config) error {
		if addr := os.Getenv("BIND_ADDRESS"); addr != "" {
			c.BindAddress = addr
		}

		if serial := os.Getenv("SERIAL_PORT"); serial != "" {
			c.SerialPort = serial
		}

		if baud := os.Getenv("BAUD_RATE"); baud != "" {
			if b, err := strconv.Atoi(baud); err == nil {
				c.BaudRate = b
			}
		}

		if level := os.Getenv("LOG_LEVEL"); level != "" {
			c.LogLevel = level
		}

		if format := os.Getenv("LOG_FORMAT"); format != "" {
			c.LogFormat = format
		}

		if ssid := os.Getenv("WIFI_SSID"); ssid != "" {
			c.SSID = ssid
		}

		if password := os.Getenv("WIFI_PASSWORD"); password != "" {
			c.Password = password
		}

		if ua := os.Getenv("USER_AGENT"); ua != "" {
			c.UserAgent = ua
		}

		return nil
	}
}

// WithFlags loads configuration from command-line flags. Only flags set on
// the command line are applied.
func WithFlags(fSet *pflag.FlagSet) ConfigOption {
	return func(c *Config) error {
		fSet.Visit(func(f *pflag.Flag) {
			switch f.Name {
			case "bind-address":
				c.BindAddress = f.Value.String()
			case "serial-port":
				c.SerialPort = f.Value.String()
			case "baud-rate":
				if b, err := strconv.Atoi(f.Value.String()); err == nil {
					c.BaudRate = b
				}
			case "log-level":
				c.LogLevel = f.Value.String()
			case "log-format":
				c.LogFormat = f.Value.String()
			case "ssid":
				c.SSID = f.Value.String()
			case "password":
				c.Password = f.Value.String()
			case "user-agent":
				c.UserAgent = f.Value.String()
			}
		})
		return nil
	}
}

// ModemConfig translates the application configuration into a modem
// configuration dialing the configured serial port.
func (c *Config) ModemConfig(logger *slog.Logger) (modem.Config, error) {
	return modem.NewConfigBuilder().
		WithDialer(modem.SerialDialer{
			PortName: c.SerialPort,
			BaudRate: c.BaudRate,
		}).
		WithLogger(logger).
		WithATTimeout(c.Timeouts.AT).
		WithNetworkJoinTimeout(c.Timeouts.NetworkJoin).
		WithTCPConnectTimeout(c.Timeouts.TCPConnect).
		WithPromptTimeout(c.Timeouts.Prompt).
		WithSendTimeout(c.Timeouts.Send).
		WithCloseTimeout(c.Timeouts.Close).
		WithUserAgent(c.UserAgent).
		Build()
}
