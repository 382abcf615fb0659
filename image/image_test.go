package image

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"
)

func addresses(m *Image) []uint64 {
	r := make([]uint64, m.Len())
	for i := range r {
		r[i] = m.At(i).Address
	}
	return r
}

func requireSorted(t *testing.T, m *Image) {
	t.Helper()
	for i := 1; i < m.Len(); i++ {
		require.Less(t, m.At(i-1).Address, m.At(i).Address, "entries at index %d and %d", i-1, i)
	}
	require.GreaterOrEqual(t, m.Cap(), m.Len())
	require.LessOrEqual(t, m.Cap(), m.MaxEntries())
}

func Test_New(t *testing.T) {
	m := New()
	require.True(t, m.IsEmpty())
	require.Zero(t, m.Len())
	require.Zero(t, m.Cap())
	require.Equal(t, DefaultMaxSize/entrySize, m.MaxEntries())
	_, _, ok := m.Bounds()
	require.False(t, ok)

	m = New(WithMaxSize(160))
	require.Equal(t, 10, m.MaxEntries())
	// limit is never below one entry
	m = New(WithMaxSize(1))
	require.Equal(t, 1, m.MaxEntries())
}

func Test_AddData(t *testing.T) {
	t.Run("out of order inserts stay sorted", func(t *testing.T) {
		m := New()
		for _, a := range []uint64{0x10, 0x2, math.MaxUint64, 0x0, 0x11, 0x5} {
			require.NoError(t, m.AddData(a, byte(a)))
		}
		requireSorted(t, m)
		require.Equal(t, []uint64{0x0, 0x2, 0x5, 0x10, 0x11, math.MaxUint64}, addresses(m))
		lo, hi, ok := m.Bounds()
		require.True(t, ok)
		require.EqualValues(t, 0, lo)
		require.EqualValues(t, uint64(math.MaxUint64), hi)
	})

	t.Run("overwrite", func(t *testing.T) {
		m := New()
		require.NoError(t, m.AddData(0x100, 1))
		require.NoError(t, m.AddData(0x100, 2))
		require.Equal(t, 1, m.Len())
		v, ok := m.GetData(0x100)
		require.True(t, ok)
		require.EqualValues(t, 2, v)
	})

	t.Run("zero is defined value", func(t *testing.T) {
		m := New()
		require.NoError(t, m.AddData(7, 0))
		v, ok := m.GetData(7)
		require.True(t, ok)
		require.Zero(t, v)
		_, ok = m.GetData(6)
		require.False(t, ok)
	})

	t.Run("size limit", func(t *testing.T) {
		m := New(WithMaxSize(4 * entrySize))
		for a := uint64(0); a < 4; a++ {
			require.NoError(t, m.AddData(a, 0xAA))
		}
		require.ErrorIs(t, m.AddData(10, 0xAA), ErrImageFull)
		require.Equal(t, 4, m.Len())
		// overwriting existing address doesn't need more room
		require.NoError(t, m.AddData(2, 0xBB))
	})
}

func Test_DeleteData(t *testing.T) {
	m := New()
	require.False(t, m.DeleteData(1))

	require.NoError(t, m.AddData(1, 0x42))
	require.True(t, m.DeleteData(1))
	_, ok := m.GetData(1)
	require.False(t, ok)
	require.False(t, m.DeleteData(1))
	require.True(t, m.IsEmpty())
}

func Test_sparseCorrectness(t *testing.T) {
	rnd := rand.New(rand.NewSource(42))
	m := New()
	written := map[uint64]byte{}
	for i := 0; i < 2000; i++ {
		a := uint64(rnd.Intn(5000))
		v := byte(rnd.Intn(256))
		require.NoError(t, m.AddData(a, v))
		written[a] = v
	}
	for i := 0; i < 500; i++ {
		a := uint64(rnd.Intn(5000))
		_, exists := written[a]
		require.Equal(t, exists, m.DeleteData(a))
		delete(written, a)
	}
	requireSorted(t, m)
	require.Equal(t, len(written), m.Len())
	for a := uint64(0); a < 5000; a++ {
		v, ok := m.GetData(a)
		exp, exists := written[a]
		require.Equal(t, exists, ok, "address 0x%X", a)
		require.Equal(t, exp, v, "address 0x%X", a)
	}
}

func Test_capacity(t *testing.T) {
	m := New()
	for a := uint64(0); a < 1000; a++ {
		require.NoError(t, m.AddData(a, 1))
		require.GreaterOrEqual(t, m.Cap(), m.Len())
	}
	grown := m.Cap()
	require.Less(t, grown, 1000*2)

	// deleting just a few doesn't trigger reallocation
	for a := uint64(0); a < 10; a++ {
		require.True(t, m.DeleteData(a))
	}
	require.Equal(t, grown, m.Cap())

	for a := uint64(10); a < 990; a++ {
		require.True(t, m.DeleteData(a))
	}
	require.Equal(t, 10, m.Len())
	require.Less(t, m.Cap(), grown)
	require.GreaterOrEqual(t, m.Cap(), m.Len())

	m.Free()
	require.True(t, m.IsEmpty())
	require.Zero(t, m.Cap())
	// image is usable after Free
	require.NoError(t, m.AddData(5, 5))
	require.Equal(t, 1, m.Len())
}

func Test_GetIndex(t *testing.T) {
	m := New()
	idx, found := m.GetIndex(10)
	require.False(t, found)
	require.Zero(t, idx)

	for _, a := range []uint64{10, 20, 30} {
		require.NoError(t, m.AddData(a, 0))
	}
	var tests = []struct {
		addr  uint64
		idx   int
		found bool
	}{
		{addr: 0, idx: 0, found: false},
		{addr: 10, idx: 0, found: true},
		{addr: 11, idx: 1, found: false},
		{addr: 20, idx: 1, found: true},
		{addr: 29, idx: 2, found: false},
		{addr: 30, idx: 2, found: true},
		{addr: 31, idx: 3, found: false},
	}
	for _, tt := range tests {
		idx, found := m.GetIndex(tt.addr)
		require.Equal(t, tt.idx, idx, "address %d", tt.addr)
		require.Equal(t, tt.found, found, "address %d", tt.addr)
	}
}

func Test_GetMemoryBlock(t *testing.T) {
	m := New()
	_, _, ok := m.GetMemoryBlock(0)
	require.False(t, ok)

	// blocks: [0x10..0x13], [0x20], [0x30..0x31]
	for _, a := range []uint64{0x10, 0x11, 0x12, 0x13, 0x20, 0x30, 0x31} {
		require.NoError(t, m.AddData(a, byte(a)))
	}

	s, e, ok := m.GetMemoryBlock(0)
	require.True(t, ok)
	require.Equal(t, 0, s)
	require.Equal(t, 3, e)

	// starting inside the block returns the remainder of it
	s, e, ok = m.GetMemoryBlock(0x12)
	require.True(t, ok)
	require.Equal(t, 2, s)
	require.Equal(t, 3, e)

	s, e, ok = m.GetMemoryBlock(0x14)
	require.True(t, ok)
	require.Equal(t, 4, s)
	require.Equal(t, 4, e)

	s, e, ok = m.GetMemoryBlock(0x21)
	require.True(t, ok)
	require.Equal(t, 5, s)
	require.Equal(t, 6, e)

	_, _, ok = m.GetMemoryBlock(0x32)
	require.False(t, ok)
}

func Test_CountRange(t *testing.T) {
	m := New()
	require.Zero(t, m.CountRange(0, math.MaxUint64))
	for _, a := range []uint64{0x10, 0x11, 0x12, 0x20, math.MaxUint64} {
		require.NoError(t, m.AddData(a, 1))
	}
	require.Equal(t, 5, m.CountRange(0, math.MaxUint64))
	require.Equal(t, 3, m.CountRange(0x10, 0x1F))
	require.Equal(t, 2, m.CountRange(0x11, 0x20))
	require.Equal(t, 0, m.CountRange(0x13, 0x1F))
	require.Equal(t, 1, m.CountRange(math.MaxUint64, math.MaxUint64))
	require.Equal(t, 0, m.CountRange(0x20, 0x10))
}

func Test_GetMemoryBlock_addressSpaceEnd(t *testing.T) {
	m := New()
	require.NoError(t, m.AddData(math.MaxUint64-1, 1))
	require.NoError(t, m.AddData(math.MaxUint64, 2))
	s, e, ok := m.GetMemoryBlock(0)
	require.True(t, ok)
	require.Equal(t, 0, s)
	require.Equal(t, 1, e)
}

func Test_Checksum(t *testing.T) {
	m := New()
	_, err := m.ChecksumCRC32(0, 0)
	require.ErrorIs(t, err, ErrIndexRange)

	// "123456789" split into two blocks, gap must not matter
	for i, c := range []byte("12345") {
		require.NoError(t, m.AddData(uint64(0x1000+i), c))
	}
	for i, c := range []byte("6789") {
		require.NoError(t, m.AddData(uint64(0x2000+i), c))
	}

	crc, err := m.ChecksumCRC32(0, m.Len()-1)
	require.NoError(t, err)
	require.EqualValues(t, 0xCBF43926, crc)

	f, err := m.ChecksumFletcher16(0, 4)
	require.NoError(t, err)
	require.EqualValues(t, 0xF500, f)

	_, err = m.ChecksumCRC32(-1, 2)
	require.ErrorIs(t, err, ErrIndexRange)
	_, err = m.ChecksumCRC32(3, 2)
	require.ErrorIs(t, err, ErrIndexRange)
	_, err = m.ChecksumFletcher16(0, m.Len())
	require.ErrorIs(t, err, ErrIndexRange)
}
