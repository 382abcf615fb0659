package checksum

import "hash"

// Size16 is the size of a Fletcher-16 checksum in bytes.
const Size16 = 2

type fletcher16 struct {
	sum1, sum2 uint16
}

var _ hash.Hash = (*fletcher16)(nil)

/*
Fletcher16 is a hash.Hash computing the classic Fletcher-16 checksum: two running
sums modulo 255, the second one accumulating the first. Sum appends the result big
endian ie sum2 first.
*/
type Fletcher16 interface {
	hash.Hash
	Sum16() uint16
}

// NewFletcher16 returns empty Fletcher-16 hash.
func NewFletcher16() Fletcher16 {
	return &fletcher16{}
}

// Fletcher16Sum returns the Fletcher-16 checksum of data.
func Fletcher16Sum(data []byte) uint16 {
	h := fletcher16{}
	_, _ = h.Write(data)
	return h.Sum16()
}

func (f *fletcher16) Write(p []byte) (int, error) {
	n0 := len(p)
	s1, s2 := uint32(f.sum1), uint32(f.sum2)
	// sums do not overflow uint32 within 5802 bytes
	for len(p) > 0 {
		n := min(len(p), 5802)
		for _, b := range p[:n] {
			s1 += uint32(b)
			s2 += s1
		}
		s1 %= 255
		s2 %= 255
		p = p[n:]
	}
	f.sum1, f.sum2 = uint16(s1), uint16(s2)
	return n0, nil
}

func (f *fletcher16) Sum16() uint16 {
	return f.sum2<<8 | f.sum1
}

func (f *fletcher16) Sum(b []byte) []byte {
	s := f.Sum16()
	return append(b, byte(s>>8), byte(s))
}

func (f *fletcher16) Reset() {
	f.sum1, f.sum2 = 0, 0
}

func (f *fletcher16) Size() int { return Size16 }

func (f *fletcher16) BlockSize() int { return 1 }
