package codec

import (
	"bufio"
	"fmt"
	"io"

	"github.com/alphabill-org/hexmerge/image"
)

func decodeBinary(r io.Reader, img *image.Image, start uint64) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("reading binary data: %w", err)
	}
	return img.WriteBlock(start, data)
}

/*
encodeBinary writes every byte from the lowest to the highest address of the image,
undefined addresses are written as 0x00. Empty image results in empty output.
*/
func encodeBinary(w io.Writer, img *image.Image) error {
	lo, _, ok := img.Bounds()
	if !ok {
		return nil
	}
	bw := bufio.NewWriter(w)
	zeros := make([]byte, 4096)
	next := lo
	for i := 0; i < img.Len(); i++ {
		e := img.At(i)
		for gap := e.Address - next; gap > 0; {
			n := min(gap, uint64(len(zeros)))
			if _, err := bw.Write(zeros[:n]); err != nil {
				return err
			}
			gap -= n
		}
		if err := bw.WriteByte(e.Data); err != nil {
			return err
		}
		next = e.Address + 1
	}
	return bw.Flush()
}

// BinarySize returns number of bytes binary encoding of the image takes.
func BinarySize(img *image.Image) uint64 {
	lo, hi, ok := img.Bounds()
	if !ok {
		return 0
	}
	// whole 64 bit address space doesn't fit, saturate
	if hi-lo == ^uint64(0) {
		return hi - lo
	}
	return hi - lo + 1
}
