package at

const (
	// Terminal Control
	CRLF   = "\r\n"
	Prompt = ">"

	// Response Codes
	OK               = "OK"
	ERROR            = "ERROR"
	Fail             = "FAIL"
	SendOK           = "SEND OK"
	SendFail         = "SEND FAIL"
	AlreadyConnected = "ALREADY CONNECTED"
	Linked           = "Linked"
	Unlink           = "Unlink"
	Closed           = "CLOSED"
	Busy             = "busy p..."
	MustRestart      = "we must restart"
	Ready            = "ready"

	// URCs (Unsolicited Result Codes)
	UrcWifiConnected    = "WIFI CONNECTED"
	UrcWifiGotIP        = "WIFI GOT IP"
	UrcWifiDisconnected = "WIFI DISCONNECT"
	UrcReceive          = "+IPD,"

	// Request identification
	DefaultUserAgent = "Arduino"
)

type ResponseType int

const (
	TypeFinal  ResponseType = iota // OK, ERROR, SEND OK
	TypeURC                        // Asynchronous notifications
	TypeData                       // Echo and intermediate output
	TypePrompt                     // CIPSEND input prompt
)

// String returns the lowercase name used in log records.
func (t ResponseType) String() string {
	switch t {
	case TypeFinal:
		return "final"
	case TypeURC:
		return "urc"
	case TypeData:
		return "data"
	case TypePrompt:
		return "prompt"
	default:
		return "unknown"
	}
}
