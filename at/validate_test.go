package at_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"i4.energy/across/wifigw/at"
)

func TestCheckArguments(t *testing.T) {
	tests := []struct {
		name  string
		err   error
		valid bool
	}{
		{"plain ssid", at.CheckQuoted("ssid", "Home WiFi 5G"), true},
		{"empty password", at.CheckQuoted("password", ""), true},
		{"quote in ssid", at.CheckQuoted("ssid", `net","x`), false},
		{"CR in password", at.CheckQuoted("password", "pw\rAT+RST"), false},
		{"LF in password", at.CheckQuoted("password", "pw\nAT+RST"), false},
		{"hostname", at.CheckHost("example.com"), true},
		{"ip address", at.CheckHost("192.168.4.1"), true},
		{"empty host", at.CheckHost(""), false},
		{"quote in host", at.CheckHost(`x",80`), false},
		{"comma in host", at.CheckHost("x,80"), false},
		{"command in host", at.CheckHost("x\r\nAT+CWJAP=\"attacker\",\"pw\""), false},
		{"path with query", at.CheckPath("/api?id=1&v=2"), true},
		{"CRLF in path", at.CheckPath("/\r\nHost: evil"), false},
		{"space in path", at.CheckPath("/ HTTP/1.0"), false},
		{"user agent", at.CheckHeader("user agent", "wifigw/1.0 (esp8266)"), true},
		{"LF in user agent", at.CheckHeader("user agent", "ua\nX-Injected: 1"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.valid {
				assert.NoError(t, tt.err)
			} else {
				assert.ErrorIs(t, tt.err, at.ErrInvalidArgument)
			}
		})
	}
}
