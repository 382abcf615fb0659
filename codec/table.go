package codec

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/alphabill-org/hexmerge/image"
	"github.com/alphabill-org/hexmerge/util"
)

// PrintTable writes human readable address/value table of the image into "w".
func PrintTable(w io.Writer, img *image.Image) error {
	return encodeTable(w, img, true)
}

func encodeTable(w io.Writer, img *image.Image, console bool) error {
	header, indent := "# address\tvalue", ""
	if console {
		header, indent = "    address\tvalue", "    "
	}
	bw := bufio.NewWriter(w)
	fmt.Fprintln(bw, header)
	for i := 0; i < img.Len(); i++ {
		e := img.At(i)
		if _, err := fmt.Fprintf(bw, "%s0x%x\t0x%02x\n", indent, e.Address, e.Data); err != nil {
			return err
		}
	}
	return bw.Flush()
}

/*
decodeTable reads lines of "address value" pairs, both either "0x" prefixed
hexadecimal or decimal numbers. Lines starting with '#' are comments.
*/
func decodeTable(r io.Reader, img *image.Image) error {
	return scanLines(r, func(lineNum int, line string) (bool, error) {
		if line[0] == '#' {
			return false, nil
		}
		fields := strings.Fields(line)
		if len(fields) < 2 {
			return false, parseErr(lineNum, ErrMalformedRecord, "expected address and value, got %q", line)
		}
		addr, err := util.ParseNumber(fields[0])
		if err != nil {
			return false, parseErr(lineNum, ErrInvalidToken, "address: %v", err)
		}
		value, err := util.ParseNumber(fields[1])
		if err != nil {
			return false, parseErr(lineNum, ErrInvalidToken, "value: %v", err)
		}
		if value > 0xFF {
			return false, parseErr(lineNum, ErrInvalidToken, "value %s doesn't fit into byte", fields[1])
		}
		if err := img.AddData(addr, byte(value)); err != nil {
			return false, &ParseError{Line: lineNum, Err: err}
		}
		return false, nil
	})
}
