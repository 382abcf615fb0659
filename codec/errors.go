package codec

import (
	"errors"
	"fmt"
)

var (
	ErrMalformedRecord   = errors.New("malformed record")
	ErrChecksum          = errors.New("checksum mismatch")
	ErrUnsupportedRecord = errors.New("unsupported record type")
	ErrInvalidToken      = errors.New("invalid token")
	ErrUnsupportedFormat = errors.New("unsupported file format")
	// ErrNoStartAddress is returned when binary input is decoded without start address.
	ErrNoStartAddress = errors.New("start address is required for binary input")
	// ErrAddressRange is returned when image data doesn't fit into the address space of the format.
	ErrAddressRange = errors.New("address out of range")
)

/*
ParseError describes failure to decode line of input. Err is one of the sentinel
errors of the package (or error of the image) so errors.Is can be used to classify
the failure.
*/
type ParseError struct {
	File string // empty when decoding from reader which is not a file
	Line int    // 1-based line number
	Err  error
	Msg  string // additional details, ie read and calculated checksum
}

func (e *ParseError) Error() string {
	s := fmt.Sprintf("line %d: %v", e.Line, e.Err)
	if e.File != "" {
		s = fmt.Sprintf("%s:%d: %v", e.File, e.Line, e.Err)
	}
	if e.Msg != "" {
		s += ": " + e.Msg
	}
	return s
}

func (e *ParseError) Unwrap() error { return e.Err }

func parseErr(line int, err error, format string, a ...any) *ParseError {
	return &ParseError{Line: line, Err: err, Msg: fmt.Sprintf(format, a...)}
}

func checksumErr(line int, read, calculated byte) *ParseError {
	return parseErr(line, ErrChecksum, "read 0x%02X, calculated 0x%02X", read, calculated)
}
