package modem

import "errors"

var (
	// ErrNoDialer is returned when a Modem is constructed without a Dialer.
	//
	// This indicates a configuration error. A Dialer is required in order to
	// establish a connection to the modem.
	ErrNoDialer = errors.New("no dialer configured")

	// ErrNotInitialized is returned when an operation is attempted on a Modem
	// that has not been successfully initialized.
	//
	// This can occur if the Dialer returned no transport or if the Modem was
	// not created via New.
	ErrNotInitialized = errors.New("modem not initialized")

	// ErrAlreadyClosed is returned when Close is called on a Modem that has
	// already been closed, and by every operation attempted after Close.
	ErrAlreadyClosed = errors.New("modem already closed")

	// ErrNotImplemented is returned by operations that are part of the
	// public surface but have no behavior yet.
	ErrNotImplemented = errors.New("not implemented")

	// ErrScanTimeout is returned by Scanner.Scan when no success token
	// arrived before the timeout elapsed.
	ErrScanTimeout = errors.New("no success token before timeout")

	// ErrBufferAllocation is returned when the response buffer cannot grow,
	// either because the allocation failed or because the reply exceeded the
	// configured maximum size. The scan fails immediately.
	ErrBufferAllocation = errors.New("response buffer allocation failed")

	// ErrInvalidTransition is returned when a request session is asked to
	// move backwards.
	ErrInvalidTransition = errors.New("invalid session transition")
)

// Stage errors identify which step of an operation failed. They wrap the
// underlying cause, so both can be tested with errors.Is.
var (
	ErrInit          = errors.New("modem init failed")
	ErrNetworkJoin   = errors.New("network join failed")
	ErrNetworkLeave  = errors.New("network leave failed")
	ErrTCPOpen       = errors.New("tcp open failed")
	ErrPromptTimeout = errors.New("send prompt not received")
	ErrPayloadSend   = errors.New("payload send failed")
	ErrCloseTimeout  = errors.New("tcp close failed")
)

var stages = []struct {
	err  error
	name string
}{
	{ErrInit, "init"},
	{ErrNetworkJoin, "network-join"},
	{ErrNetworkLeave, "network-leave"},
	{ErrTCPOpen, "tcp-open"},
	{ErrPromptTimeout, "prompt"},
	{ErrPayloadSend, "payload-send"},
	{ErrCloseTimeout, "tcp-close"},
}

// FailedStage names the stage an error returned by this package belongs to,
// or "" when err is nil or carries no stage.
func FailedStage(err error) string {
	if err == nil {
		return ""
	}
	for _, s := range stages {
		if errors.Is(err, s.err) {
			return s.name
		}
	}
	return ""
}
