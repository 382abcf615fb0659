package cmd

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/alphabill-org/hexmerge/codec"
	"github.com/alphabill-org/hexmerge/image"
	"github.com/alphabill-org/hexmerge/pipeline"
)

func Test_runCmd(t *testing.T) {
	homeDir := t.TempDir()
	in := writeFile(t, homeDir, "a.s19", "S1050010AABB85\nS9030000FC\n")
	out := filepath.Join(homeDir, "out.hex")

	app, console := newTestApp(t, "run --home "+homeDir+" -v 3 import "+in+" fill 20 2F FF move 10 11 30000 export "+out)
	require.NoError(t, app.Execute(context.Background()))
	require.Contains(t, console.String(), "  read Motorola S19 file 'a.s19' ... done (2B in [0x10; 0x11])\n")
	require.Contains(t, console.String(), "  move image data ... done, moved 2B from 0x10-0x11 to 0x30000\n")
	require.Contains(t, console.String(), "finished\n")

	img := image.New()
	require.NoError(t, codec.ImportFile(out, img))
	require.Equal(t, 18, img.Len())
	v, ok := img.GetData(0x30001)
	require.True(t, ok)
	require.EqualValues(t, 0xBB, v)

	t.Run("invalid step", func(t *testing.T) {
		app, _ := newTestApp(t, "run --home "+homeDir+" import "+in+" clip 20 10")
		err := app.Execute(context.Background())
		require.ErrorIs(t, err, image.ErrInvalidRange)
	})

	t.Run("unknown step", func(t *testing.T) {
		app, _ := newTestApp(t, "run --home "+homeDir+" import "+in+" merge")
		err := app.Execute(context.Background())
		require.ErrorIs(t, err, pipeline.ErrInvalidArgument)
		require.ErrorContains(t, err, `unknown command "merge"`)
	})

	t.Run("no steps", func(t *testing.T) {
		app, _ := newTestApp(t, "run --home "+homeDir)
		require.ErrorContains(t, app.Execute(context.Background()), "requires at least 1 arg(s)")
	})
}

func Test_convertCmd(t *testing.T) {
	homeDir := t.TempDir()
	a := writeFile(t, homeDir, "a.hex", ":02001000AABB89\n:00000001FF\n")
	b := writeFile(t, homeDir, "b.bin", "\x01\x02")
	out := filepath.Join(homeDir, "out.txt")

	app, _ := newTestApp(t, "convert --home "+homeDir+" -v 0 "+a+" "+b+" --bin-start 0x11 -o "+out)
	require.NoError(t, app.Execute(context.Background()))
	data, err := os.ReadFile(out)
	require.NoError(t, err)
	require.Equal(t, "# address\tvalue\n0x10\t0xaa\n0x11\t0x01\n0x12\t0x02\n", string(data))

	t.Run("binary input without start address", func(t *testing.T) {
		app, _ := newTestApp(t, "convert --home "+homeDir+" "+b+" -o "+out)
		require.ErrorContains(t, app.Execute(context.Background()), `requires --bin-start flag`)
	})

	t.Run("output is required", func(t *testing.T) {
		app, _ := newTestApp(t, "convert --home "+homeDir+" "+a)
		require.ErrorContains(t, app.Execute(context.Background()), `required flag(s) "output" not set`)
	})

	t.Run("unsupported output format", func(t *testing.T) {
		app, _ := newTestApp(t, "convert --home "+homeDir+" "+a+" -o out.elf")
		err := app.Execute(context.Background())
		require.ErrorIs(t, err, codec.ErrUnsupportedFormat)
		require.ErrorContains(t, err, "invalid arguments: ")
	})
}

func Test_printCmd(t *testing.T) {
	homeDir := t.TempDir()
	a := writeFile(t, homeDir, "a.txt", "0x10 1\n0x11 2\n")

	app, console := newTestApp(t, "print --home "+homeDir+" -v 0 "+a)
	require.NoError(t, app.Execute(context.Background()))
	require.Equal(t, "    address\tvalue\n    0x10\t0x01\n    0x11\t0x02\n", console.String())
}

func Test_checksumCmd(t *testing.T) {
	homeDir := t.TempDir()
	a := writeFile(t, homeDir, "a.txt", "0x0 0x01\n0x1 0x02\n")

	app, console := newTestApp(t, "checksum --home "+homeDir+" -v 0 "+a)
	require.NoError(t, app.Execute(context.Background()))
	require.Equal(t, "  CRC32-IEEE:\n    [0x0000; 0x0001]: 0xB6CC4292\n", console.String())

	app, console = newTestApp(t, "checksum --home "+homeDir+" -v 0 --fletcher16 "+a)
	require.NoError(t, app.Execute(context.Background()))
	require.Equal(t, "  Fletcher-16:\n    [0x0000; 0x0001]: 0x0403\n", console.String())
}

func Test_versionCmd(t *testing.T) {
	app, console := newTestApp(t, "version --home "+t.TempDir())
	require.NoError(t, app.Execute(context.Background()))
	require.Regexp(t, `^hexmerge \S+`, console.String())
}
