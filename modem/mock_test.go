package modem_test

import (
	"strings"

	"i4.energy/across/wifigw/modem"
)

type MockSequenceBuilder struct {
	transport *modem.MockTransport
	calls     []any
}

func NewMockSequence(transport *modem.MockTransport) *MockSequenceBuilder {
	return &MockSequenceBuilder{
		transport: transport,
		calls:     []any{},
	}
}

// command expects input to be cleared, cmd to be written and resp to be
// delivered in a single polling cycle.
func (b *MockSequenceBuilder) command(cmd, resp string) *MockSequenceBuilder {
	wire := cmd + "\r\n"
	r := strings.NewReader(resp)
	b.calls = append(b.calls,
		b.transport.EXPECT().ResetInput().Return(nil),
		b.transport.EXPECT().Write([]byte(wire)).Return(len(wire), nil),
		b.transport.EXPECT().Available().Return(len(resp), nil),
		b.transport.EXPECT().ReadByte().DoAndReturn(r.ReadByte).Times(len(resp)),
	)
	return b
}

func (b *MockSequenceBuilder) AT() *MockSequenceBuilder {
	return b.command("AT", "AT\r\n\r\nOK\r\n")
}

func (b *MockSequenceBuilder) EchoOff() *MockSequenceBuilder {
	return b.command("ATE0", "ATE0\r\n\r\nOK\r\n")
}

func (b *MockSequenceBuilder) StationMode() *MockSequenceBuilder {
	return b.command("AT+CWMODE=1", "\r\nOK\r\n")
}

func (b *MockSequenceBuilder) SingleConnection() *MockSequenceBuilder {
	return b.command("AT+CIPMUX=0", "\r\nOK\r\n")
}

func (b *MockSequenceBuilder) Join(ssid, password string) *MockSequenceBuilder {
	return b.command(`AT+CWJAP="`+ssid+`","`+password+`"`, "WIFI CONNECTED\r\nWIFI GOT IP\r\n\r\nOK\r\n")
}

func (b *MockSequenceBuilder) Leave() *MockSequenceBuilder {
	return b.command("AT+CWQAP", "\r\nOK\r\nWIFI DISCONNECT\r\n")
}

func (b *MockSequenceBuilder) Build() []any {
	return b.calls
}

// initMockCalls returns the expectations of a successful init sequence.
func initMockCalls(transport *modem.MockTransport) []any {
	return NewMockSequence(transport).
		AT().
		EchoOff().
		StationMode().
		SingleConnection().
		Build()
}
