/*
Package pipeline runs a list of commands (import, export, edit, print, checksum)
against a single memory image.

Files are imported and exported in the given order, ie later imports may overwrite
data of previous imports and an export only contains data merged up to that point.
*/
package pipeline

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math/rand"

	"github.com/alphabill-org/hexmerge/codec"
	"github.com/alphabill-org/hexmerge/image"
	"github.com/alphabill-org/hexmerge/logger"
	"github.com/alphabill-org/hexmerge/rangeop"
)

type Config struct {
	// amount of console messages
	Verbosity Verbosity
	// console messages, printed tables and checksums go here, discarded when nil
	Out io.Writer
	Log *slog.Logger
	// source of values for "fillrand", when nil random seed is used
	Rand *rand.Rand
	// limit for the backing buffer of the image in bytes, image.DefaultMaxSize when zero
	MaxImageSize int
}

/*
Run executes "steps" in order. The first failing step aborts the run, the returned
error names the step.
*/
func Run(ctx context.Context, cfg Config, steps []Step) error {
	if !cfg.Verbosity.Valid() {
		return fmt.Errorf("invalid verbosity level %d", cfg.Verbosity)
	}
	r := newRunner(cfg)
	defer r.img.Free()

	for i, s := range steps {
		if err := ctx.Err(); err != nil {
			return err
		}
		r.log.DebugContext(ctx, "executing step", logger.Step(i+1, s.String()))
		if err := r.exec(s); err != nil {
			r.log.ErrorContext(ctx, "step failed", logger.Step(i+1, s.String()), logger.Error(err))
			return fmt.Errorf("step %d (%s): %w", i+1, s, err)
		}
	}
	r.log.DebugContext(ctx, fmt.Sprintf("finished %d steps", len(steps)), logger.Data(r.img.Len()))
	r.con.printf(Silent, "finished\n\n")
	return nil
}

type runner struct {
	img *image.Image
	con console
	log *slog.Logger
}

func newRunner(cfg Config) *runner {
	var opts []image.Option
	if cfg.Rand != nil {
		opts = append(opts, image.WithRand(cfg.Rand))
	}
	if cfg.MaxImageSize > 0 {
		opts = append(opts, image.WithMaxSize(cfg.MaxImageSize))
	}
	out := cfg.Out
	if out == nil {
		out = io.Discard
	}
	log := cfg.Log
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &runner{
		img: image.New(opts...),
		con: console{w: out, v: cfg.Verbosity},
		log: log,
	}
}

func (r *runner) exec(s Step) error {
	switch s.Cmd {
	case Import:
		return r.importFile(s)
	case Export:
		return r.exportFile(s)
	case Print:
		return r.print()
	case Checksum:
		return r.checksum(s.Algorithm)
	case Fill:
		r.con.opStart("fill image", "fill memory image")
		n, err := rangeop.Fill(r.img, s.Start, s.Stop, s.Value)
		if err != nil {
			return err
		}
		r.con.opDone(n, "no data filled", "filled %s with 0x%02x in [0x%x; 0x%x]", s.Value, s.Start, s.Stop)
	case FillRandom:
		r.con.opStart("random fill image", "random fill memory image")
		n, err := rangeop.FillRandom(r.img, s.Start, s.Stop)
		if err != nil {
			return err
		}
		r.con.opDone(n, "no data filled", "filled %s in [0x%x; 0x%x]", s.Start, s.Stop)
	case Clip:
		r.con.opStart("clip image", "clip memory image")
		n, err := rangeop.Clip(r.img, s.Start, s.Stop)
		if err != nil {
			return err
		}
		r.con.opDone(n, "no data cleared", "clipped %s outside 0x%x - 0x%x", s.Start, s.Stop)
	case Cut:
		r.con.opStart("clear image", "clear memory image")
		n, err := rangeop.Cut(r.img, s.Start, s.Stop)
		if err != nil {
			return err
		}
		r.con.opDone(n, "no data cut", "cut %s within 0x%x - 0x%x", s.Start, s.Stop)
	case Copy:
		r.con.opStart("copy data", "copy image data")
		n, err := rangeop.Copy(r.img, s.Start, s.Stop, s.Dest)
		if err != nil {
			return err
		}
		r.con.opDone(n, "no data copied", "copied %s from 0x%x-0x%x to 0x%x", s.Start, s.Stop, s.Dest)
	case Move:
		r.con.opStart("move data", "move image data")
		n, err := rangeop.Move(r.img, s.Start, s.Stop, s.Dest)
		if err != nil {
			return err
		}
		r.con.opDone(n, "no data moved", "moved %s from 0x%x-0x%x to 0x%x", s.Start, s.Stop, s.Dest)
	default:
		return fmt.Errorf("%w: unknown command %q", ErrInvalidArgument, s.Cmd)
	}
	return nil
}

func (r *runner) importFile(s Step) error {
	r.con.fileStart("read", s.File, "", importNames[s.Format])
	var opts []codec.Option
	if s.Format == codec.Binary {
		opts = append(opts, codec.WithStartAddress(s.Start))
	}
	if err := codec.ImportFile(s.File, r.img, opts...); err != nil {
		return err
	}
	r.log.Debug("imported file", logger.File(s.File), logger.Data(r.img.Len()))
	r.con.imageDone(r.img, uint64(r.img.Len()))
	return nil
}

func (r *runner) exportFile(s Step) error {
	names := exportNames[s.Format]
	r.con.fileStart("export", s.File, names[0], names[1])
	if err := codec.ExportFile(s.File, r.img); err != nil {
		return err
	}
	r.log.Debug("exported file", logger.File(s.File), logger.Data(r.img.Len()))
	size := uint64(r.img.Len())
	if s.Format == codec.Binary {
		size = codec.BinarySize(r.img)
	}
	r.con.imageDone(r.img, size)
	return nil
}

func (r *runner) print() error {
	r.con.printf(Silent, "  print memory\n")
	if err := codec.PrintTable(r.con.w, r.img); err != nil {
		return fmt.Errorf("printing image: %w", err)
	}
	r.con.printf(Silent, "  ")
	r.con.imageDone(r.img, uint64(r.img.Len()))
	return nil
}

/*
checksum prints checksum of every block of consecutive addresses. The output
doesn't depend on verbosity.
*/
func (r *runner) checksum(alg Algorithm) error {
	title, short := "CRC32-IEEE", "CRC32"
	if alg == Fletcher16 {
		title, short = "Fletcher-16", "Fletcher-16"
	}
	if r.img.IsEmpty() {
		r.con.printf(Mute, "  %s chk skipped for empty image\n", short)
		return nil
	}

	r.con.printf(Mute, "  %s:\n", title)
	addr := uint64(0)
	for {
		idxStart, idxEnd, ok := r.img.GetMemoryBlock(addr)
		if !ok {
			return nil
		}
		start, end := r.img.At(idxStart).Address, r.img.At(idxEnd).Address
		switch alg {
		case Fletcher16:
			chk, err := r.img.ChecksumFletcher16(idxStart, idxEnd)
			if err != nil {
				return err
			}
			r.con.printf(Mute, "    [0x%04X; 0x%04X]: 0x%04X\n", start, end, chk)
		default:
			chk, err := r.img.ChecksumCRC32(idxStart, idxEnd)
			if err != nil {
				return err
			}
			r.con.printf(Mute, "    [0x%04X; 0x%04X]: 0x%08X\n", start, end, chk)
		}
		if end == ^uint64(0) {
			return nil
		}
		addr = end + 1
	}
}
