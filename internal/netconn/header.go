package netconn

import (
	"fmt"
	"strconv"
)

// EncodeHeader reproduces the original parent/child pipe envelope: one
// ASCII digit for the status followed by a 5-digit zero-padded length of
// the trailing string, e.g. status OK with no message is "000000".
func EncodeHeader(status Status, message string) string {
	return fmt.Sprintf("%d%05d%s", int(status), len(message), message)
}

// DecodeHeader reverses EncodeHeader, returning the status, the message,
// and how many bytes of header+message were consumed.
func DecodeHeader(raw string) (status Status, message string, n int, err error) {
	if len(raw) < 6 {
		return 0, "", 0, fmt.Errorf("netconn: header too short")
	}
	statusDigit := raw[0]
	length, err := strconv.Atoi(raw[1:6])
	if err != nil {
		return 0, "", 0, fmt.Errorf("netconn: invalid header length: %w", err)
	}
	if 6+length > len(raw) {
		return 0, "", 0, fmt.Errorf("netconn: truncated header payload")
	}
	return Status(statusDigit - '0'), raw[6 : 6+length], 6 + length, nil
}
