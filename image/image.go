// Package image implements the sparse memory image shared by all file format codecs.
package image

import (
	"fmt"
	"math/rand"
	"time"

	"golang.org/x/exp/slices"
)

const (
	// DefaultMaxSize is the default limit for the backing buffer of an image [B].
	DefaultMaxSize = 50 * 1024 * 1024

	// in-memory size of Entry: 64 bit address + data byte, padded
	entrySize = 16

	// grow/shrink factor of the backing buffer, must be > 1.0
	bufferMargin = 1.3

	minCapacity = 16
)

type (
	// Entry is one defined byte of the image.
	Entry struct {
		Address uint64
		Data    byte
	}

	/*
		Image is a sparse memory image: ordered set of (address, byte) pairs. Addresses not
		present in the image are undefined, which is different from value 0x00.

		Entries are kept in a contiguous slice sorted strictly ascending by address so point
		lookups are binary searches and consecutive blocks are plain index ranges.

		This implementation is not safe for concurrent use by multiple goroutines. Image has
		exactly one owner which mutates it in place.
	*/
	Image struct {
		entries    []Entry
		maxEntries int
		rnd        *rand.Rand
	}

	Option func(*Image)
)

/*
WithMaxSize sets the limit for the backing buffer size in bytes. Operations which would
need to grow the buffer past the limit fail with ErrImageFull.
*/
func WithMaxSize(size int) Option {
	return func(m *Image) {
		m.maxEntries = max(size/entrySize, 1)
	}
}

// WithRand sets the source of random values used by FillRandom.
func WithRand(r *rand.Rand) Option {
	return func(m *Image) {
		m.rnd = r
	}
}

// New returns an empty image with zero capacity.
func New(opts ...Option) *Image {
	m := &Image{maxEntries: DefaultMaxSize / entrySize}
	for _, opt := range opts {
		opt(m)
	}
	if m.rnd == nil {
		m.rnd = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return m
}

// Free releases the backing buffer, the image is empty afterwards.
func (m *Image) Free() {
	m.entries = nil
}

// Len returns number of defined bytes in the image.
func (m *Image) Len() int {
	return len(m.entries)
}

// Cap returns capacity of the backing buffer (in entries).
func (m *Image) Cap() int {
	return cap(m.entries)
}

// MaxEntries returns the maximum number of entries the image may hold.
func (m *Image) MaxEntries() int {
	return m.maxEntries
}

func (m *Image) IsEmpty() bool {
	return len(m.entries) == 0
}

// At returns entry at index idx. It panics when idx is out of range.
func (m *Image) At(idx int) Entry {
	return m.entries[idx]
}

/*
Bounds returns the lowest and the highest defined address. When the image is
empty "ok" is false.
*/
func (m *Image) Bounds() (lo, hi uint64, ok bool) {
	if len(m.entries) == 0 {
		return 0, 0, false
	}
	return m.entries[0].Address, m.entries[len(m.entries)-1].Address, true
}

/*
AddData stores "data" at "address", overwriting existing value. Fails only when the
backing buffer would have to grow past the size limit.
*/
func (m *Image) AddData(address uint64, data byte) error {
	idx, found := m.search(address)
	if found {
		m.entries[idx].Data = data
		return nil
	}
	if err := m.reserve(len(m.entries) + 1); err != nil {
		return err
	}
	m.entries = slices.Insert(m.entries, idx, Entry{Address: address, Data: data})
	return nil
}

// DeleteData removes byte at "address" from the image, returns false when it wasn't defined.
func (m *Image) DeleteData(address uint64) bool {
	idx, found := m.search(address)
	if !found {
		return false
	}
	m.entries = slices.Delete(m.entries, idx, idx+1)
	m.shrink()
	return true
}

// GetData returns byte at "address", "ok" is false when the address is undefined.
func (m *Image) GetData(address uint64) (data byte, ok bool) {
	idx, found := m.search(address)
	if !found {
		return 0, false
	}
	return m.entries[idx].Data, true
}

/*
GetIndex returns index of the "address" in the image. When the address is not defined
"found" is false and the index of the next higher address is returned (which is Len()
when there is no higher address).
*/
func (m *Image) GetIndex(address uint64) (idx int, found bool) {
	return m.search(address)
}

/*
GetMemoryBlock returns index range (both inclusive) of the next block of consecutive
addresses starting at or after "addrStart". "ok" is false when the image has no data
at or above "addrStart".
*/
func (m *Image) GetMemoryBlock(addrStart uint64) (idxStart, idxEnd int, ok bool) {
	idxStart, _ = m.search(addrStart)
	if idxStart >= len(m.entries) {
		return 0, 0, false
	}
	idxEnd = idxStart
	for idxEnd+1 < len(m.entries) && m.entries[idxEnd+1].Address == m.entries[idxEnd].Address+1 {
		idxEnd++
	}
	return idxStart, idxEnd, true
}

// CountRange returns number of defined bytes with address in [start, end].
func (m *Image) CountRange(start, end uint64) int {
	if start > end {
		return 0
	}
	lo, hi := m.window(start, end)
	return hi - lo
}

func (m *Image) search(address uint64) (int, bool) {
	return slices.BinarySearchFunc(m.entries, address, func(e Entry, a uint64) int {
		switch {
		case e.Address < a:
			return -1
		case e.Address > a:
			return 1
		default:
			return 0
		}
	})
}

// window returns index range [lo, hi) of entries with address in [start, end].
func (m *Image) window(start, end uint64) (lo, hi int) {
	lo, _ = m.search(start)
	hi, found := m.search(end)
	if found {
		hi++
	}
	return lo, hi
}

/*
reserve makes sure the backing buffer has capacity for at least n entries. The buffer
grows by bufferMargin but never past maxEntries.
*/
func (m *Image) reserve(n int) error {
	if n <= cap(m.entries) {
		return nil
	}
	if n > m.maxEntries {
		return fmt.Errorf("%w: %d entries needed, limit is %d", ErrImageFull, n, m.maxEntries)
	}
	buf := make([]Entry, len(m.entries), m.capacityFor(n))
	copy(buf, m.entries)
	m.entries = buf
	return nil
}

/*
shrink releases part of the backing buffer once occupancy drops below 1/margin² so
that alternating insert/delete around the threshold doesn't reallocate every time.
*/
func (m *Image) shrink() {
	c := cap(m.entries)
	if c <= minCapacity || float64(len(m.entries))*bufferMargin*bufferMargin >= float64(c) {
		return
	}
	buf := make([]Entry, len(m.entries), m.capacityFor(len(m.entries)))
	copy(buf, m.entries)
	m.entries = buf
}

// capacityFor returns buffer capacity for n entries, n must not exceed maxEntries.
func (m *Image) capacityFor(n int) int {
	return min(max(int(float64(n)*bufferMargin), minCapacity), m.maxEntries)
}
