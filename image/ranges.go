package image

import (
	"fmt"
	"math"

	"golang.org/x/exp/slices"
)

// FillValue sets every address in [start, end] to "value".
func (m *Image) FillValue(start, end uint64, value byte) error {
	run, err := m.newRun(start, end)
	if err != nil {
		return err
	}
	for i := range run {
		run[i].Data = value
	}
	return m.overlay(run)
}

// FillRandom sets every address in [start, end] to pseudo-random value.
func (m *Image) FillRandom(start, end uint64) error {
	run, err := m.newRun(start, end)
	if err != nil {
		return err
	}
	for i := range run {
		run[i].Data = byte(m.rnd.Intn(256))
	}
	return m.overlay(run)
}

/*
WriteBlock stores "data" at consecutive addresses starting from "address",
overwriting existing values.
*/
func (m *Image) WriteBlock(address uint64, data []byte) error {
	if len(data) == 0 {
		return nil
	}
	if uint64(len(data)-1) > math.MaxUint64-address {
		return fmt.Errorf("%w: %d bytes at 0x%X", ErrAddressOverflow, len(data), address)
	}
	run, err := m.newRun(address, address+uint64(len(data)-1))
	if err != nil {
		return err
	}
	for i := range run {
		run[i].Data = data[i]
	}
	return m.overlay(run)
}

// Clip deletes all data outside of the address window [start, end].
func (m *Image) Clip(start, end uint64) error {
	if err := checkWindow(start, end); err != nil {
		return err
	}
	lo, hi := m.window(start, end)
	n := copy(m.entries, m.entries[lo:hi])
	m.entries = m.entries[:n]
	m.shrink()
	return nil
}

// Cut deletes all data inside of the address window [start, end].
func (m *Image) Cut(start, end uint64) error {
	if err := checkWindow(start, end); err != nil {
		return err
	}
	lo, hi := m.window(start, end)
	m.entries = slices.Delete(m.entries, lo, hi)
	m.shrink()
	return nil
}

/*
CopyRange copies data in [start, end] to addresses starting at "dest". Existing data
at destination is overwritten, undefined source addresses leave the destination
unchanged. Source data is read before anything is written so overlapping windows
are handled correctly.
*/
func (m *Image) CopyRange(start, end, dest uint64) error {
	run, err := m.shiftedRun(start, end, dest)
	if err != nil {
		return err
	}
	return m.overlay(run)
}

/*
MoveRange moves data in [start, end] to addresses starting at "dest". Source window
is undefined afterwards except where the destination window overlaps it.
*/
func (m *Image) MoveRange(start, end, dest uint64) error {
	run, err := m.shiftedRun(start, end, dest)
	if err != nil {
		return err
	}
	lo, hi := m.window(start, end)
	m.entries = slices.Delete(m.entries, lo, hi)
	// can't fail: entry count stays the same as before the move
	return m.overlay(run)
}

// Clone returns independent deep copy of the image.
func (m *Image) Clone() *Image {
	c := &Image{maxEntries: m.maxEntries, rnd: m.rnd}
	if len(m.entries) > 0 {
		c.entries = make([]Entry, len(m.entries), m.capacityFor(len(m.entries)))
		copy(c.entries, m.entries)
	}
	return c
}

/*
Clone replaces content of "dst" with a deep copy of "src". The size limit of
"dst" applies.
*/
func Clone(src, dst *Image) error {
	if src == dst {
		return nil
	}
	if len(src.entries) > dst.maxEntries {
		return fmt.Errorf("%w: %d entries needed, limit is %d", ErrImageFull, len(src.entries), dst.maxEntries)
	}
	dst.entries = dst.entries[:0]
	if err := dst.reserve(len(src.entries)); err != nil {
		return err
	}
	dst.entries = append(dst.entries, src.entries...)
	dst.shrink()
	return nil
}

/*
Merge writes all data of "src" into "dst". Values of "src" win where both images
define an address, addresses only defined in "dst" are preserved.
*/
func Merge(src, dst *Image) error {
	if src == dst {
		return nil
	}
	return dst.overlay(src.entries)
}

/*
newRun allocates entries for every address in [start, end], data is left zero.
*/
func (m *Image) newRun(start, end uint64) ([]Entry, error) {
	if err := checkWindow(start, end); err != nil {
		return nil, err
	}
	if end-start >= uint64(m.maxEntries) {
		return nil, fmt.Errorf("%w: window [0x%X; 0x%X] exceeds limit of %d entries", ErrImageFull, start, end, m.maxEntries)
	}
	run := make([]Entry, end-start+1)
	for i := range run {
		run[i].Address = start + uint64(i)
	}
	return run, nil
}

// shiftedRun returns copy of the entries in [start, end] relocated to start at "dest".
func (m *Image) shiftedRun(start, end, dest uint64) ([]Entry, error) {
	if err := checkWindow(start, end); err != nil {
		return nil, err
	}
	if end-start > math.MaxUint64-dest {
		return nil, fmt.Errorf("%w: window [0x%X; 0x%X] relocated to 0x%X", ErrAddressOverflow, start, end, dest)
	}
	lo, hi := m.window(start, end)
	run := make([]Entry, hi-lo)
	for i, e := range m.entries[lo:hi] {
		run[i] = Entry{Address: dest + (e.Address - start), Data: e.Data}
	}
	return run, nil
}

/*
overlay merges sorted run of entries into the image, values in the run win. The
image is not modified when the result would not fit into the size limit.
*/
func (m *Image) overlay(run []Entry) error {
	if len(run) == 0 {
		return nil
	}
	lo, hi := m.window(run[0].Address, run[len(run)-1].Address)
	mid := mergeRuns(m.entries[lo:hi], run)
	tail := slices.Clone(m.entries[hi:])
	if err := m.reserve(lo + len(mid) + len(tail)); err != nil {
		return err
	}
	m.entries = append(append(m.entries[:lo], mid...), tail...)
	return nil
}

// mergeRuns merges two sorted runs into new slice, on equal address "b" wins.
func mergeRuns(a, b []Entry) []Entry {
	out := make([]Entry, 0, len(a)+len(b))
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		switch {
		case a[i].Address < b[j].Address:
			out = append(out, a[i])
			i++
		case a[i].Address > b[j].Address:
			out = append(out, b[j])
			j++
		default:
			out = append(out, b[j])
			i++
			j++
		}
	}
	out = append(out, a[i:]...)
	return append(out, b[j:]...)
}

func checkWindow(start, end uint64) error {
	if start > end {
		return fmt.Errorf("%w: start address 0x%X higher than end address 0x%X", ErrInvalidRange, start, end)
	}
	return nil
}
