package at

import (
	"bufio"
	"bytes"
	"strings"
)

// Splitter is used for tokenizing AT command modem responses. It uses
// the signature of bufio.SplitFunc so it can be directly used with bufio.Scanner.
//
// It splits the input by CRLF line endings and also recognizes the
// CIPSEND input prompt (">", optionally followed by a space), which the
// modem emits without a line ending.
//
// The atEOF parameter indicates whether any more data will be available.
// When true, any remaining data is returned as the final token.
func Splitter(data []byte, atEOF bool) (advance int, token []byte, err error) {
	if atEOF && len(data) == 0 {
		return 0, nil, nil
	}

	// 1. Match send prompt
	if data[0] == Prompt[0] {
		switch {
		case len(data) > 1 && data[1] == ' ':
			return 2, data[0:1], nil
		case len(data) > 1 || atEOF:
			return 1, data[0:1], nil
		default:
			// A trailing space may still follow.
			return 0, nil, nil
		}
	}

	// 2. Match standard line ending with CRLF
	if i := bytes.Index(data, []byte(CRLF)); i >= 0 {
		return i + len(CRLF), data[0:i], nil
	}

	if atEOF {
		return len(data), data, nil
	}
	return 0, nil, nil
}

var _ bufio.SplitFunc = Splitter

// Classify identifies the nature of the modem output
func Classify(line string) ResponseType {
	if line == Prompt {
		return TypePrompt
	}

	// Direct matches for final results
	switch line {
	case OK, ERROR, Fail, SendOK, SendFail, AlreadyConnected, Linked, Unlink, MustRestart:
		return TypeFinal
	case UrcWifiConnected, UrcWifiGotIP, UrcWifiDisconnected, Closed, Ready:
		return TypeURC
	}

	// Prefix matches
	switch {
	case strings.HasPrefix(line, Busy):
		return TypeFinal
	case strings.HasPrefix(line, UrcReceive):
		return TypeURC
	default:
		return TypeData
	}
}

// Lines tokenizes a complete reply into its non-empty lines, prompts
// included, in arrival order.
func Lines(data []byte) []string {
	scanner := bufio.NewScanner(bytes.NewReader(data))
	scanner.Buffer(make([]byte, 0, 256), len(data)+1)
	scanner.Split(Splitter)

	var lines []string
	for scanner.Scan() {
		if line := strings.TrimSpace(scanner.Text()); line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}
