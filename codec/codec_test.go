package codec

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/alphabill-org/hexmerge/image"
	"github.com/alphabill-org/hexmerge/internal/testutils/random"
)

func Test_FormatFromPath(t *testing.T) {
	var tests = []struct {
		name   string
		format Format
	}{
		{"app.s19", SRecord},
		{"dir/app.S19", SRecord},
		{"app.srec", SRecord},
		{"app.mot", SRecord},
		{"app.hex", IntelHex},
		{"app.HEX", IntelHex},
		{"app.ihx", IntelHex},
		{"dump.txt", Table},
		{"flash.bin", Binary},
		{"FLASH.BIN", Binary},
	}
	for _, tc := range tests {
		f, err := FormatFromPath(tc.name)
		require.NoError(t, err, tc.name)
		require.Equal(t, tc.format, f, tc.name)
	}

	for _, name := range []string{"app.elf", "app", "app.s19.bak", ".hexrc", "app.Hex"} {
		f, err := FormatFromPath(name)
		require.ErrorIs(t, err, ErrUnsupportedFormat, name)
		require.Equal(t, FormatUnknown, f)
	}
}

func Test_Format_String(t *testing.T) {
	require.Equal(t, "Motorola S-record", SRecord.String())
	require.Equal(t, "Intel HEX", IntelHex.String())
	require.Equal(t, "binary", Binary.String())
	require.Equal(t, "text table", Table.String())
	require.Equal(t, "Format(0)", FormatUnknown.String())
}

func Test_unsupportedFormat(t *testing.T) {
	img := image.New()
	require.ErrorIs(t, Decode(FormatUnknown, strings.NewReader(""), img), ErrUnsupportedFormat)
	require.ErrorIs(t, Encode(Format(42), &strings.Builder{}, img), ErrUnsupportedFormat)
}

func Test_ImportExportFile(t *testing.T) {
	dir := t.TempDir()
	img := image.New()
	require.NoError(t, img.WriteBlock(0x0800, random.Bytes(100)))
	require.NoError(t, img.WriteBlock(0x1_0000, random.Bytes(10)))

	for _, name := range []string{"out.s19", "out.hex", "out.txt"} {
		fn := filepath.Join(dir, name)
		require.NoError(t, ExportFile(fn, img))
		out := image.New()
		require.NoError(t, ImportFile(fn, out))
		require.Equal(t, random.Dump(img), random.Dump(out), name)
	}

	t.Run("binary", func(t *testing.T) {
		fn := filepath.Join(dir, "out.bin")
		require.NoError(t, ExportFile(fn, img))
		fi, err := os.Stat(fn)
		require.NoError(t, err)
		require.EqualValues(t, BinarySize(img), fi.Size())

		out := image.New()
		require.ErrorIs(t, ImportFile(fn, out), ErrNoStartAddress)
		require.NoError(t, ImportFile(fn, out, WithStartAddress(0x0800)))
		// holes were filled with zeros
		require.EqualValues(t, BinarySize(img), out.Len())
		require.Equal(t, img.At(0), out.At(0))
	})

	t.Run("parse error has file name", func(t *testing.T) {
		fn := filepath.Join(dir, "broken.hex")
		require.NoError(t, os.WriteFile(fn, []byte(":01001000AA45\n\n:01001000AA46\n"), 0600))
		err := ImportFile(fn, image.New())
		require.ErrorIs(t, err, ErrChecksum)
		var pe *ParseError
		require.ErrorAs(t, err, &pe)
		require.Equal(t, fn, pe.File)
		require.Equal(t, 3, pe.Line)
		require.ErrorContains(t, err, fn+":3: checksum mismatch: read 0x46, calculated 0x45")
	})

	t.Run("missing input", func(t *testing.T) {
		err := ImportFile(filepath.Join(dir, "nope.s19"), image.New())
		require.ErrorIs(t, err, os.ErrNotExist)
	})

	t.Run("unsupported extension", func(t *testing.T) {
		require.ErrorIs(t, ImportFile(filepath.Join(dir, "a.elf"), image.New()), ErrUnsupportedFormat)
		require.ErrorIs(t, ExportFile(filepath.Join(dir, "a.elf"), img), ErrUnsupportedFormat)
		_, err := os.Stat(filepath.Join(dir, "a.elf"))
		require.ErrorIs(t, err, os.ErrNotExist)
	})
}

func Test_ParseError(t *testing.T) {
	err := error(&ParseError{Line: 7, Err: ErrInvalidToken})
	require.EqualError(t, err, "line 7: invalid token")
	require.True(t, errors.Is(err, ErrInvalidToken))

	err = &ParseError{File: "a.txt", Line: 1, Err: ErrMalformedRecord, Msg: "details"}
	require.EqualError(t, err, "a.txt:1: malformed record: details")
}

func Test_forEachLine(t *testing.T) {
	type chunk struct {
		addr uint64
		size int
	}
	collect := func(img *image.Image) []chunk {
		var chunks []chunk
		require.NoError(t, forEachLine(img, func(addr uint64, data []byte) error {
			chunks = append(chunks, chunk{addr, len(data)})
			return nil
		}))
		return chunks
	}

	require.Empty(t, collect(image.New()))

	img := image.New()
	require.NoError(t, img.FillValue(0x05, 0x45, 1))
	require.NoError(t, img.AddData(0x50, 1))
	require.Equal(t, []chunk{{0x05, 27}, {0x20, 32}, {0x40, 6}, {0x50, 1}}, collect(img))

	// data at the end of the address space
	img = image.New()
	require.NoError(t, img.FillValue(0xFFFFFFFF_FFFFFFF0, 0xFFFFFFFF_FFFFFFFF, 1))
	require.Equal(t, []chunk{{0xFFFFFFFF_FFFFFFF0, 16}}, collect(img))

	errStop := errors.New("stop")
	calls := 0
	err := forEachLine(img, func(addr uint64, data []byte) error {
		calls++
		return errStop
	})
	require.ErrorIs(t, err, errStop)
	require.Equal(t, 1, calls)
}
