package pipeline

import (
	"errors"
	"fmt"
	"strings"

	"github.com/alphabill-org/hexmerge/codec"
	"github.com/alphabill-org/hexmerge/rangeop"
	"github.com/alphabill-org/hexmerge/util"
)

// ErrInvalidArgument is returned by Parse for unknown commands and bad command arguments.
var ErrInvalidArgument = errors.New("invalid argument")

type Command string

const (
	Import     Command = "import"
	Export     Command = "export"
	Print      Command = "print"
	Checksum   Command = "checksum"
	Fill       Command = "fill"
	FillRandom Command = "fillrand"
	Clip       Command = "clip"
	Cut        Command = "cut"
	Copy       Command = "copy"
	Move       Command = "move"
)

var commands = map[string]Command{
	"import":   Import,
	"export":   Export,
	"print":    Print,
	"checksum": Checksum,
	"fill":     Fill,
	"fillrand": FillRandom,
	"clip":     Clip,
	"cut":      Cut,
	"copy":     Copy,
	"move":     Move,
}

// Algorithm of the checksum step.
type Algorithm string

const (
	CRC32      Algorithm = "crc32"
	Fletcher16 Algorithm = "fletcher16"
)

/*
Step is a single command of the pipeline with its arguments. Which fields are
used depends on the command:

	import    File, Format, Start (binary input only)
	export    File, Format
	checksum  Algorithm
	fill      Start, Stop, Value
	fillrand  Start, Stop
	clip, cut Start, Stop
	copy,move Start, Stop, Dest
*/
type Step struct {
	Cmd       Command
	File      string
	Format    codec.Format
	Start     uint64
	Stop      uint64
	Dest      uint64
	Value     byte
	Algorithm Algorithm
}

func (s Step) String() string {
	switch s.Cmd {
	case Import:
		if s.Format == codec.Binary {
			return fmt.Sprintf("%s %s 0x%X", s.Cmd, s.File, s.Start)
		}
		return fmt.Sprintf("%s %s", s.Cmd, s.File)
	case Export:
		return fmt.Sprintf("%s %s", s.Cmd, s.File)
	case Checksum:
		return fmt.Sprintf("%s %s", s.Cmd, s.Algorithm)
	case Fill:
		return fmt.Sprintf("%s 0x%X 0x%X 0x%02X", s.Cmd, s.Start, s.Stop, s.Value)
	case FillRandom, Clip, Cut:
		return fmt.Sprintf("%s 0x%X 0x%X", s.Cmd, s.Start, s.Stop)
	case Copy, Move:
		return fmt.Sprintf("%s 0x%X 0x%X 0x%X", s.Cmd, s.Start, s.Stop, s.Dest)
	default:
		return string(s.Cmd)
	}
}

/*
Parse converts command line arguments into list of steps. All arguments are
validated before returning so that a run doesn't fail halfway because of a typo
in the last command.

Addresses and values are hexadecimal numbers, the "0x" prefix is optional. Command
names are case insensitive.
*/
func Parse(args []string) ([]Step, error) {
	var steps []Step
	ar := &argReader{args: args}
	for ar.more() {
		name := ar.args[ar.pos]
		cmd, ok := commands[strings.ToLower(name)]
		if !ok {
			return nil, fmt.Errorf("%w: unknown command %q", ErrInvalidArgument, name)
		}
		ar.pos++
		ar.cmd = cmd

		s, err := ar.step()
		if err != nil {
			return nil, err
		}
		steps = append(steps, s)
	}
	return steps, nil
}

type argReader struct {
	args []string
	pos  int
	cmd  Command
}

func (ar *argReader) more() bool {
	return ar.pos < len(ar.args)
}

func (ar *argReader) next(what string) (string, error) {
	if !ar.more() {
		return "", fmt.Errorf("%w: command %q requires %s", ErrInvalidArgument, ar.cmd, what)
	}
	ar.pos++
	return ar.args[ar.pos-1], nil
}

func (ar *argReader) hex(what string) (uint64, error) {
	s, err := ar.next(what)
	if err != nil {
		return 0, err
	}
	v, err := util.ParseHex(s)
	if err != nil {
		return 0, fmt.Errorf("%w: command %q %s: %v", ErrInvalidArgument, ar.cmd, what, err)
	}
	return v, nil
}

// window reads start and stop address of the command.
func (ar *argReader) window() (start, stop uint64, err error) {
	if start, err = ar.hex("start address"); err != nil {
		return 0, 0, err
	}
	if stop, err = ar.hex("stop address"); err != nil {
		return 0, 0, err
	}
	if start > stop {
		return 0, 0, &rangeop.RangeError{Op: string(ar.cmd), Start: start, Stop: stop}
	}
	return start, stop, nil
}

func (ar *argReader) step() (s Step, err error) {
	s.Cmd = ar.cmd
	switch ar.cmd {
	case Import, Export:
		if s.File, err = ar.next("file name"); err != nil {
			return s, err
		}
		if s.Format, err = codec.FormatFromPath(s.File); err != nil {
			return s, fmt.Errorf("%w: command %q: %w", ErrInvalidArgument, ar.cmd, err)
		}
		if ar.cmd == Import && s.Format == codec.Binary {
			s.Start, err = ar.hex("start address for binary file")
		}
	case Print:
	case Checksum:
		s.Algorithm = CRC32
		if ar.more() {
			switch a := Algorithm(strings.ToLower(ar.args[ar.pos])); a {
			case CRC32, Fletcher16:
				s.Algorithm = a
				ar.pos++
			}
		}
	case Fill:
		if s.Start, s.Stop, err = ar.window(); err != nil {
			return s, err
		}
		var v uint64
		if v, err = ar.hex("fill value"); err != nil {
			return s, err
		}
		if v > 0xFF {
			return s, fmt.Errorf("%w: command %q fill value 0x%X doesn't fit into byte", ErrInvalidArgument, ar.cmd, v)
		}
		s.Value = byte(v)
	case FillRandom, Clip, Cut:
		s.Start, s.Stop, err = ar.window()
	case Copy, Move:
		if s.Start, s.Stop, err = ar.window(); err != nil {
			return s, err
		}
		s.Dest, err = ar.hex("destination address")
	}
	return s, err
}
