package codec

import (
	"bufio"
	"encoding/hex"
	"fmt"
	"io"

	"github.com/alphabill-org/hexmerge/checksum"
	"github.com/alphabill-org/hexmerge/image"
)

const (
	// header record with "hello" as module name, avoids warnings of some srecord tools
	srecHeader = "S00F000068656C6C6F202020202000003C"
)

// termination record for given data record type (1, 2 or 3)
var srecTerminator = [4]string{
	1: "S9030000FC",
	2: "S804000000FB",
	3: "S70500000000FA",
}

/*
srecDataType returns data record type to use for images with highest address "maxAddr":
S1 for 16 bit, S2 for 24 bit and S3 for 32 bit addresses.
*/
func srecDataType(maxAddr uint64) int {
	switch {
	case maxAddr <= 0xFFFF:
		return 1
	case maxAddr <= 0xFFFFFF:
		return 2
	default:
		return 3
	}
}

func decodeSRecord(r io.Reader, img *image.Image) error {
	return scanLines(r, func(lineNum int, line string) (bool, error) {
		if line[0] != 'S' {
			return false, parseErr(lineNum, ErrMalformedRecord, "line must start with 'S'")
		}
		if len(line) < 2 || line[1] < '0' || line[1] > '9' {
			return false, parseErr(lineNum, ErrUnsupportedRecord, "invalid record type in %q", line)
		}
		typ := int(line[1] - '0')
		rec, err := hex.DecodeString(line[2:])
		if err != nil {
			return false, parseErr(lineNum, ErrMalformedRecord, "%v", err)
		}
		if len(rec) < 2 {
			return false, parseErr(lineNum, ErrMalformedRecord, "record is too short")
		}
		body, chk := rec[:len(rec)-1], rec[len(rec)-1]
		if c := checksum.SRecord(body); c != chk {
			return false, checksumErr(lineNum, chk, c)
		}
		if int(body[0]) != len(body) {
			return false, parseErr(lineNum, ErrMalformedRecord, "length field is 0x%02X but record has %d bytes", body[0], len(body))
		}

		switch typ {
		case 1, 2, 3:
			addrLen := typ + 1
			if len(body) < 1+addrLen {
				return false, parseErr(lineNum, ErrMalformedRecord, "S%d record must have %d byte address", typ, addrLen)
			}
			var addr uint64
			for _, b := range body[1 : 1+addrLen] {
				addr = addr<<8 | uint64(b)
			}
			if err := img.WriteBlock(addr, body[1+addrLen:]); err != nil {
				return false, &ParseError{Line: lineNum, Err: err}
			}
		case 0, 5, 6, 7, 8, 9:
			// header, record count and termination records carry no data
		default:
			return false, parseErr(lineNum, ErrUnsupportedRecord, "S%d", typ)
		}
		return false, nil
	})
}

func encodeSRecord(w io.Writer, img *image.Image) error {
	maxAddr, err := maxAddress32(img, SRecord)
	if err != nil {
		return err
	}
	typ := srecDataType(maxAddr)
	addrLen := typ + 1

	bw := bufio.NewWriter(w)
	fmt.Fprintln(bw, srecHeader)
	rec := make([]byte, 0, 1+addrLen+lineLength+1)
	_ = forEachLine(img, func(addr uint64, data []byte) error {
		rec = append(rec[:0], byte(addrLen+len(data)+1))
		for i := addrLen - 1; i >= 0; i-- {
			rec = append(rec, byte(addr>>(8*i)))
		}
		rec = append(rec, data...)
		rec = append(rec, checksum.SRecord(rec))
		_, err := fmt.Fprintf(bw, "S%d%X\n", typ, rec)
		return err
	})
	fmt.Fprintln(bw, srecTerminator[typ])
	// bufio.Writer keeps the first write error and returns it on Flush
	return bw.Flush()
}
