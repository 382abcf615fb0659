/*
Package rangeop implements the user facing edit commands of the memory image.

Every operation checks its address window before touching the image and returns the
number of bytes it affected. An operation either succeeds completely or leaves the
image unchanged.
*/
package rangeop

import (
	"fmt"

	"github.com/alphabill-org/hexmerge/image"
)

// names of the operations, used in RangeError
const (
	OpFill       = "fill"
	OpFillRandom = "fillrand"
	OpClip       = "clip"
	OpCut        = "cut"
	OpCopy       = "copy"
	OpMove       = "move"
)

/*
RangeError is returned when the start of an address window is higher than its stop.
It unwraps to image.ErrInvalidRange.
*/
type RangeError struct {
	Op    string
	Start uint64
	Stop  uint64
}

func (e *RangeError) Error() string {
	return fmt.Sprintf("%s: %v: start 0x%X is higher than stop 0x%X", e.Op, image.ErrInvalidRange, e.Start, e.Stop)
}

func (e *RangeError) Unwrap() error { return image.ErrInvalidRange }

func check(op string, start, stop uint64) error {
	if start > stop {
		return &RangeError{Op: op, Start: start, Stop: stop}
	}
	return nil
}

// Fill sets every address in [start, stop] to "value", returns number of bytes written.
func Fill(img *image.Image, start, stop uint64, value byte) (int, error) {
	if err := check(OpFill, start, stop); err != nil {
		return 0, err
	}
	if err := img.FillValue(start, stop, value); err != nil {
		return 0, fmt.Errorf("%s: %w", OpFill, err)
	}
	return int(stop - start + 1), nil
}

// FillRandom sets every address in [start, stop] to random value.
func FillRandom(img *image.Image, start, stop uint64) (int, error) {
	if err := check(OpFillRandom, start, stop); err != nil {
		return 0, err
	}
	if err := img.FillRandom(start, stop); err != nil {
		return 0, fmt.Errorf("%s: %w", OpFillRandom, err)
	}
	return int(stop - start + 1), nil
}

// Clip deletes data outside of [start, stop], returns number of deleted bytes.
func Clip(img *image.Image, start, stop uint64) (int, error) {
	if err := check(OpClip, start, stop); err != nil {
		return 0, err
	}
	n := img.Len()
	if err := img.Clip(start, stop); err != nil {
		return 0, fmt.Errorf("%s: %w", OpClip, err)
	}
	return n - img.Len(), nil
}

// Cut deletes data inside of [start, stop], returns number of deleted bytes.
func Cut(img *image.Image, start, stop uint64) (int, error) {
	if err := check(OpCut, start, stop); err != nil {
		return 0, err
	}
	n := img.Len()
	if err := img.Cut(start, stop); err != nil {
		return 0, fmt.Errorf("%s: %w", OpCut, err)
	}
	return n - img.Len(), nil
}

/*
Copy copies data in [fromStart, fromStop] to addresses starting at "to", returns
number of copied bytes. Undefined source addresses are skipped.
*/
func Copy(img *image.Image, fromStart, fromStop, to uint64) (int, error) {
	if err := check(OpCopy, fromStart, fromStop); err != nil {
		return 0, err
	}
	n := img.CountRange(fromStart, fromStop)
	if err := img.CopyRange(fromStart, fromStop, to); err != nil {
		return 0, fmt.Errorf("%s: %w", OpCopy, err)
	}
	return n, nil
}

// Move moves data in [fromStart, fromStop] to addresses starting at "to".
func Move(img *image.Image, fromStart, fromStop, to uint64) (int, error) {
	if err := check(OpMove, fromStart, fromStop); err != nil {
		return 0, err
	}
	n := img.CountRange(fromStart, fromStop)
	if err := img.MoveRange(fromStart, fromStop, to); err != nil {
		return 0, fmt.Errorf("%s: %w", OpMove, err)
	}
	return n, nil
}
