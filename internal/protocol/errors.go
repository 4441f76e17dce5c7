package protocol

import (
	"errors"
	"fmt"
)

var ErrEmptyCapture = errors.New("protocol: empty capture")

// MalformedStreamError reports a byte run that matches no recognized
// record pattern. Fatal for the capture: the tokenizer never attempts
// resynchronization, since guessing structure in an undocumented
// protocol risks silent corruption.
type MalformedStreamError struct {
	Offset int
	Byte   byte
	Reason string
}

func (e MalformedStreamError) Error() string {
	return fmt.Sprintf("protocol: malformed stream at offset %d (byte 0x%02X): %s",
		e.Offset, e.Byte, e.Reason)
}

func malformed(offset int, b byte, reason string) error {
	return MalformedStreamError{Offset: offset, Byte: b, Reason: reason}
}
