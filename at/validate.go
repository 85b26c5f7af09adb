package at

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidArgument is returned when a value cannot be placed into a command
// without changing its framing.
var ErrInvalidArgument = errors.New("invalid command argument")

// CheckQuoted validates a value written between double quotes, such as an
// SSID or password. Quotes would end the argument and CR or LF would end the
// command.
func CheckQuoted(name, value string) error {
	if i := strings.IndexAny(value, "\"\r\n"); i >= 0 {
		return fmt.Errorf("%w: %s contains %q", ErrInvalidArgument, name, value[i])
	}
	return nil
}

// CheckHost validates a TCP destination. It is quoted in AT+CIPSTART and
// followed by the port, so a comma is rejected as well.
func CheckHost(host string) error {
	if host == "" {
		return fmt.Errorf("%w: host is empty", ErrInvalidArgument)
	}
	if i := strings.IndexAny(host, "\"\r\n, "); i >= 0 {
		return fmt.Errorf("%w: host contains %q", ErrInvalidArgument, host[i])
	}
	return nil
}

// CheckHeader validates a value placed on an HTTP request or header line.
func CheckHeader(name, value string) error {
	if i := strings.IndexAny(value, "\r\n"); i >= 0 {
		return fmt.Errorf("%w: %s contains %q", ErrInvalidArgument, name, value[i])
	}
	return nil
}

// CheckPath validates a request target: it sits between the method and the
// protocol version, so spaces are rejected besides line breaks.
func CheckPath(path string) error {
	if i := strings.IndexAny(path, "\r\n "); i >= 0 {
		return fmt.Errorf("%w: path contains %q", ErrInvalidArgument, path[i])
	}
	return nil
}
