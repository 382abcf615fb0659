/*
Package codec decodes memory image file formats into image.Image and encodes images
back into files.

Supported formats are Motorola S-record, Intel HEX, raw binary and text table of
address/value pairs. Decoders add data into the image they are given so decoding
multiple inputs into the same image merges them, later inputs overwriting earlier
data at the same address.
*/
package codec

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/alphabill-org/hexmerge/image"
)

type Format int

const (
	FormatUnknown Format = iota
	SRecord
	IntelHex
	Binary
	Table
)

const (
	// max number of data bytes in S-record and Intel HEX data record, lines are aligned to it
	lineLength = 32

	maxTextLine = 1024 * 1024
)

var formatNames = map[Format]string{
	SRecord:  "Motorola S-record",
	IntelHex: "Intel HEX",
	Binary:   "binary",
	Table:    "text table",
}

func (f Format) String() string {
	if s, ok := formatNames[f]; ok {
		return s
	}
	return fmt.Sprintf("Format(%d)", int(f))
}

var extensions = map[string]Format{
	".s19":  SRecord,
	".S19":  SRecord,
	".srec": SRecord,
	".mot":  SRecord,
	".hex":  IntelHex,
	".HEX":  IntelHex,
	".ihx":  IntelHex,
	".IHX":  IntelHex,
	".txt":  Table,
	".TXT":  Table,
	".bin":  Binary,
	".BIN":  Binary,
}

// FormatFromPath returns file format based on the extension of the file name.
func FormatFromPath(name string) (Format, error) {
	if f, ok := extensions[filepath.Ext(name)]; ok {
		return f, nil
	}
	return FormatUnknown, fmt.Errorf("%w: %q (supported *.s19, *.srec, *.mot, *.hex, *.ihx, *.txt, *.bin)", ErrUnsupportedFormat, name)
}

type (
	Option func(*options)

	options struct {
		startAddr    uint64
		hasStartAddr bool
	}
)

// WithStartAddress sets the address of the first byte of binary input.
func WithStartAddress(addr uint64) Option {
	return func(o *options) {
		o.startAddr = addr
		o.hasStartAddr = true
	}
}

/*
Decode reads data of format "f" from "r" into "img". Decoding stops on the first
error, data decoded before it stays in the image.
*/
func Decode(f Format, r io.Reader, img *image.Image, opts ...Option) error {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}
	switch f {
	case SRecord:
		return decodeSRecord(r, img)
	case IntelHex:
		return decodeIntelHex(r, img)
	case Table:
		return decodeTable(r, img)
	case Binary:
		if !o.hasStartAddr {
			return ErrNoStartAddress
		}
		return decodeBinary(r, img, o.startAddr)
	default:
		return fmt.Errorf("%w: %s", ErrUnsupportedFormat, f)
	}
}

// Encode writes content of "img" into "w" in format "f".
func Encode(f Format, w io.Writer, img *image.Image) error {
	switch f {
	case SRecord:
		return encodeSRecord(w, img)
	case IntelHex:
		return encodeIntelHex(w, img)
	case Table:
		return encodeTable(w, img, false)
	case Binary:
		return encodeBinary(w, img)
	default:
		return fmt.Errorf("%w: %s", ErrUnsupportedFormat, f)
	}
}

/*
ImportFile decodes file "name" into "img", format is detected from the file extension.
Parse errors carry the name of the file.
*/
func ImportFile(name string, img *image.Image, opts ...Option) error {
	f, err := FormatFromPath(name)
	if err != nil {
		return err
	}
	fd, err := os.Open(name)
	if err != nil {
		return fmt.Errorf("opening input file: %w", err)
	}
	defer fd.Close()

	if err := Decode(f, fd, img, opts...); err != nil {
		var pe *ParseError
		if errors.As(err, &pe) {
			pe.File = name
		}
		return fmt.Errorf("decoding %s file %q: %w", f, name, err)
	}
	return nil
}

// ExportFile creates (or truncates) file "name" and encodes "img" into it.
func ExportFile(name string, img *image.Image) (rErr error) {
	f, err := FormatFromPath(name)
	if err != nil {
		return err
	}
	fd, err := os.Create(name)
	if err != nil {
		return fmt.Errorf("creating output file: %w", err)
	}
	defer func() {
		if err := fd.Close(); err != nil && rErr == nil {
			rErr = fmt.Errorf("closing output file: %w", err)
		}
	}()

	if err := Encode(f, fd, img); err != nil {
		return fmt.Errorf("encoding %s file %q: %w", f, name, err)
	}
	return nil
}

/*
scanLines calls "fn" for every non-blank line of "r" with trailing white space removed.
Scanning stops when "fn" returns error or "stop" == true.
*/
func scanLines(r io.Reader, fn func(lineNum int, line string) (stop bool, err error)) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 4096), maxTextLine)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := strings.TrimRight(scanner.Text(), " \t\r")
		if line == "" {
			continue
		}
		stop, err := fn(lineNum, line)
		if err != nil || stop {
			return err
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("reading line %d: %w", lineNum+1, err)
	}
	return nil
}

/*
forEachLine splits data of the image into record sized chunks: runs of consecutive
addresses, at most lineLength bytes long, not crossing lineLength aligned boundary.
*/
func forEachLine(img *image.Image, fn func(addr uint64, data []byte) error) error {
	buf := make([]byte, 0, lineLength)
	addr := uint64(0)
	for {
		idxStart, idxEnd, ok := img.GetMemoryBlock(addr)
		if !ok {
			return nil
		}
		for i := idxStart; i <= idxEnd; {
			start := img.At(i).Address
			buf = buf[:0]
			for i <= idxEnd && len(buf) < lineLength {
				e := img.At(i)
				buf = append(buf, e.Data)
				i++
				if (e.Address+1)%lineLength == 0 {
					break
				}
			}
			if err := fn(start, buf); err != nil {
				return err
			}
		}
		last := img.At(idxEnd).Address
		if last == math.MaxUint64 {
			return nil
		}
		addr = last + 1
	}
}

// maxAddress32 returns the highest address of the image, error when it doesn't fit into 32 bits.
func maxAddress32(img *image.Image, f Format) (uint64, error) {
	_, hi, _ := img.Bounds()
	if hi > math.MaxUint32 {
		return 0, fmt.Errorf("%w: address 0x%X can't be encoded in %s format", ErrAddressRange, hi, f)
	}
	return hi, nil
}
