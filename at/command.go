package at

import (
	"fmt"
	"strconv"
	"time"
)

// Command is a single request to the modem together with the replies that
// count as success and how long to wait for them. A Command is immutable
// once built.
type Command struct {
	text    string
	tokens  []string
	timeout time.Duration
	raw     bool
}

// NewCommand builds a line command. Its wire form is text followed by CRLF.
func NewCommand(text string, timeout time.Duration, tokens ...string) Command {
	return Command{
		text:    text,
		tokens:  append([]string(nil), tokens...),
		timeout: timeout,
	}
}

// NewRawCommand builds a command whose text is written as-is, without a line
// terminator. It is used for payload bytes after the send prompt.
func NewRawCommand(payload string, timeout time.Duration, tokens ...string) Command {
	c := NewCommand(payload, timeout, tokens...)
	c.raw = true
	return c
}

func (c Command) Text() string           { return c.text }
func (c Command) Timeout() time.Duration { return c.timeout }
func (c Command) Raw() bool              { return c.raw }

// Tokens returns a copy of the success tokens as byte slices, in order.
func (c Command) Tokens() [][]byte {
	out := make([][]byte, len(c.tokens))
	for i, t := range c.tokens {
		out[i] = []byte(t)
	}
	return out
}

// Wire returns the exact bytes written to the transport.
func (c Command) Wire() []byte {
	if c.raw {
		return []byte(c.text)
	}
	return []byte(c.text + CRLF)
}

// String implements fmt.Stringer. Raw payloads are summarized by length.
func (c Command) String() string {
	if c.raw {
		return fmt.Sprintf("<%d raw bytes>", len(c.text))
	}
	return c.text
}

// The builders below perform no escaping. Values from outside must pass
// CheckQuoted, CheckHost, CheckPath or CheckHeader first.

// JoinNetwork joins the access point identified by ssid.
func JoinNetwork(ssid, password string) string {
	return `AT+CWJAP="` + ssid + `","` + password + `"`
}

// LeaveNetwork disconnects from the current access point.
func LeaveNetwork() string { return "AT+CWQAP" }

// OpenTCP starts a single TCP link to host:port.
func OpenTCP(host string, port int) string {
	return `AT+CIPSTART="TCP","` + host + `",` + strconv.Itoa(port)
}

// SendLength announces n payload bytes; the modem answers with the prompt.
func SendLength(n int) string {
	return "AT+CIPSEND=" + strconv.Itoa(n)
}

// CloseTCP tears down the TCP link.
func CloseTCP() string { return "AT+CIPCLOSE" }

func Attention() string        { return "AT" }
func EchoOff() string          { return "ATE0" }
func StationMode() string      { return "AT+CWMODE=1" }
func SingleConnection() string { return "AT+CIPMUX=0" }

// HTTPGet formats a GET request identifying itself as DefaultUserAgent.
func HTTPGet(host, path string) string {
	return HTTPGetAs(host, path, DefaultUserAgent)
}

// HTTPGetAs formats a GET request with the given User-Agent. The header block
// is terminated by an empty line.
func HTTPGetAs(host, path, userAgent string) string {
	return "GET " + path + " HTTP/1.1" + CRLF +
		"Host: " + host + CRLF +
		"Connection: keep-alive" + CRLF +
		"User-Agent: " + userAgent + CRLF +
		CRLF
}
