package image

import "errors"

var (
	// ErrInvalidRange is returned when address window start is higher than its end.
	ErrInvalidRange = errors.New("invalid address range")
	// ErrImageFull is returned when operation would grow the image past its size limit.
	ErrImageFull = errors.New("memory image size limit exceeded")
	// ErrIndexRange is returned for entry index ranges outside of the image.
	ErrIndexRange = errors.New("index out of range")
	// ErrAddressOverflow is returned when target addresses do not fit into 64 bits.
	ErrAddressOverflow = errors.New("address overflows 64 bit address space")
)
