package pipeline

import (
	"fmt"
	"io"
	"path/filepath"

	"github.com/alphabill-org/hexmerge/codec"
	"github.com/alphabill-org/hexmerge/image"
)

// Verbosity controls the amount of console messages.
type Verbosity int

const (
	Mute Verbosity = iota
	Silent
	Inform
	Chatty
)

func (v Verbosity) Valid() bool {
	return Mute <= v && v <= Chatty
}

var importNames = map[codec.Format]string{
	codec.SRecord:  "Motorola S19 file",
	codec.IntelHex: "Intel IHX file",
	codec.Table:    "ASCII table file",
	codec.Binary:   "binary file",
}

// short and long name of the output format
var exportNames = map[codec.Format][2]string{
	codec.SRecord:  {"S19 file", "Motorola S19 file"},
	codec.IntelHex: {"IHX file", "Intel HEX file"},
	codec.Table:    {"table", "ASCII table to file"},
	codec.Binary:   {"binary", "binary file"},
}

type console struct {
	w io.Writer
	v Verbosity
}

// printf writes message when verbosity is at least "min".
func (c console) printf(min Verbosity, format string, a ...any) {
	if c.v >= min {
		fmt.Fprintf(c.w, format, a...)
	}
}

func (c console) fileStart(verb, file, informName, chattyName string) {
	file = filepath.Base(file)
	switch {
	case c.v == Chatty:
		c.printf(Chatty, "  %s %s '%s' ... ", verb, chattyName, file)
	case c.v == Inform && informName != "":
		c.printf(Inform, "  %s %s '%s' ... ", verb, informName, file)
	default:
		c.printf(Silent, "  %s '%s' ... ", verb, file)
	}
}

// imageDone completes import/export message, "size" is number of bytes processed.
func (c console) imageDone(img *image.Image, size uint64) {
	switch c.v {
	case Silent:
		c.printf(Silent, "done\n")
	case Inform, Chatty:
		lo, hi, ok := img.Bounds()
		switch {
		case !ok || size == 0:
			c.printf(Inform, "done, no data\n")
		case c.v == Chatty:
			c.printf(Chatty, "done (%s in [0x%x; 0x%x])\n", formatSize(size), lo, hi)
		default:
			c.printf(Inform, "done (%s)\n", formatSize(size))
		}
	}
}

func (c console) opStart(informMsg, chattyMsg string) {
	switch c.v {
	case Inform:
		c.printf(Inform, "  %s ... ", informMsg)
	case Chatty:
		c.printf(Chatty, "  %s ... ", chattyMsg)
	}
}

/*
opDone completes edit operation message. In chatty mode "format" is used for the
details, its first verb is the formatted number of affected bytes "n".
*/
func (c console) opDone(n int, noData string, format string, a ...any) {
	switch c.v {
	case Inform:
		c.printf(Inform, "done\n")
	case Chatty:
		if n == 0 {
			c.printf(Chatty, "done, %s\n", noData)
			return
		}
		c.printf(Chatty, "done, "+format+"\n", append([]any{formatSize(uint64(n))}, a...)...)
	}
}

func formatSize(n uint64) string {
	switch {
	case n > 1024*1024:
		return fmt.Sprintf("%1.1fMB", float64(n)/1024/1024)
	case n > 1024:
		return fmt.Sprintf("%1.1fkB", float64(n)/1024)
	default:
		return fmt.Sprintf("%dB", n)
	}
}
