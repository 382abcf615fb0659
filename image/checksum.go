package image

import (
	"encoding/binary"
	"fmt"
	"hash"

	"github.com/alphabill-org/hexmerge/checksum"
)

// when true the address of every entry is hashed (8 bytes, little endian) before its data
const checksumIncludesAddress = false

/*
ChecksumCRC32 returns CRC32-IEEE over the data of entries with index in
[idxStart, idxEnd] (both inclusive).
*/
func (m *Image) ChecksumCRC32(idxStart, idxEnd int) (uint32, error) {
	h := checksum.NewCRC32()
	if err := m.hashEntries(h, idxStart, idxEnd); err != nil {
		return 0, err
	}
	return h.Sum32(), nil
}

/*
ChecksumFletcher16 returns Fletcher-16 over the data of entries with index in
[idxStart, idxEnd] (both inclusive).
*/
func (m *Image) ChecksumFletcher16(idxStart, idxEnd int) (uint16, error) {
	h := checksum.NewFletcher16()
	if err := m.hashEntries(h, idxStart, idxEnd); err != nil {
		return 0, err
	}
	return h.Sum16(), nil
}

func (m *Image) hashEntries(h hash.Hash, idxStart, idxEnd int) error {
	if idxStart < 0 || idxStart > idxEnd || idxEnd >= len(m.entries) {
		return fmt.Errorf("%w: [%d; %d], image has %d entries", ErrIndexRange, idxStart, idxEnd, len(m.entries))
	}
	entries := m.entries[idxStart : idxEnd+1]
	buf := make([]byte, 0, len(entries))
	var addr [8]byte
	for _, e := range entries {
		if checksumIncludesAddress {
			binary.LittleEndian.PutUint64(addr[:], e.Address)
			buf = append(buf, addr[:]...)
		}
		buf = append(buf, e.Data)
	}
	_, err := h.Write(buf)
	return err
}
