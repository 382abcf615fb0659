package codec

import (
	"bufio"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"io"

	"github.com/alphabill-org/hexmerge/checksum"
	"github.com/alphabill-org/hexmerge/image"
)

// Intel HEX record types
const (
	ihexData         = 0x00
	ihexEOF          = 0x01
	ihexExtSegment   = 0x02
	ihexStartSegment = 0x03
	ihexExtLinear    = 0x04
	ihexStartLinear  = 0x05
)

const ihexEOFRecord = ":00000001FF"

func decodeIntelHex(r io.Reader, img *image.Image) error {
	var offset uint64
	return scanLines(r, func(lineNum int, line string) (bool, error) {
		if line[0] != ':' {
			return false, parseErr(lineNum, ErrMalformedRecord, "line must start with ':'")
		}
		rec, err := hex.DecodeString(line[1:])
		if err != nil {
			return false, parseErr(lineNum, ErrMalformedRecord, "%v", err)
		}
		if len(rec) < 2 {
			return false, parseErr(lineNum, ErrMalformedRecord, "record is too short")
		}
		body, chk := rec[:len(rec)-1], rec[len(rec)-1]
		if c := checksum.IntelHex(body); c != chk {
			return false, checksumErr(lineNum, chk, c)
		}
		// length + 16 bit address + type
		if len(body) < 4 || int(body[0]) != len(body)-4 {
			return false, parseErr(lineNum, ErrMalformedRecord, "length field is 0x%02X but record has %d data bytes", body[0], len(body)-4)
		}
		addr := uint64(binary.BigEndian.Uint16(body[1:3]))
		data := body[4:]

		switch typ := body[3]; typ {
		case ihexData:
			if err := img.WriteBlock(offset+addr, data); err != nil {
				return false, &ParseError{Line: lineNum, Err: err}
			}
		case ihexEOF:
			return true, nil
		case ihexExtSegment:
			return false, parseErr(lineNum, ErrUnsupportedRecord, "extended segment address record (type 0x02)")
		case ihexStartSegment, ihexStartLinear:
			// start address of the program is irrelevant for memory image
		case ihexExtLinear:
			if len(data) != 2 {
				return false, parseErr(lineNum, ErrMalformedRecord, "extended linear address record must have 2 data bytes, got %d", len(data))
			}
			offset = uint64(binary.BigEndian.Uint16(data)) << 16
		default:
			return false, parseErr(lineNum, ErrUnsupportedRecord, "type 0x%02X", typ)
		}
		return false, nil
	})
}

func encodeIntelHex(w io.Writer, img *image.Image) error {
	maxAddr, err := maxAddress32(img, IntelHex)
	if err != nil {
		return err
	}
	useELA := maxAddr > 0xFFFF
	var ela uint64
	elaWritten := false

	bw := bufio.NewWriter(w)
	rec := make([]byte, 0, 4+lineLength+1)
	writeRecord := func(typ byte, addr uint16, data []byte) error {
		rec = append(rec[:0], byte(len(data)), byte(addr>>8), byte(addr), typ)
		rec = append(rec, data...)
		rec = append(rec, checksum.IntelHex(rec))
		_, err := fmt.Fprintf(bw, ":%X\n", rec)
		return err
	}

	err = forEachLine(img, func(addr uint64, data []byte) error {
		if useELA && (!elaWritten || addr>>16 != ela) {
			ela = addr >> 16
			elaWritten = true
			if err := writeRecord(ihexExtLinear, 0, []byte{byte(ela >> 8), byte(ela)}); err != nil {
				return err
			}
		}
		return writeRecord(ihexData, uint16(addr), data)
	})
	if err != nil {
		return err
	}
	fmt.Fprintln(bw, ihexEOFRecord)
	return bw.Flush()
}
