/*
Package checksum implements the checksums used by the image tool: CRC32-IEEE and
Fletcher-16 for user facing integrity checks, and the one byte record checksums of
the Motorola S-record and Intel HEX formats.

All functions are pure, none of them keeps state between calls.
*/
package checksum

import (
	"hash"
	"hash/crc32"
)

// CRC32Polynomial is the bit reversed IEEE 802.3 polynomial.
const CRC32Polynomial = crc32.IEEE

/*
NewCRC32 returns CRC32-IEEE hash (init 0xFFFFFFFF, final XOR 0xFFFFFFFF).

	h := checksum.NewCRC32()
	h.Write(data)
	sum := h.Sum32()
*/
func NewCRC32() hash.Hash32 {
	return crc32.NewIEEE()
}

// CRC32 returns CRC32-IEEE checksum of data.
func CRC32(data []byte) uint32 {
	return crc32.ChecksumIEEE(data)
}

// Sum returns the sum of all bytes modulo 256.
func Sum(data []byte) byte {
	var sum byte
	for _, b := range data {
		sum += b
	}
	return sum
}

/*
SRecord returns the Motorola S-record checksum of the record bytes (length, address
and data fields), ie the ones' complement of the least significant byte of the sum.
*/
func SRecord(data []byte) byte {
	return 0xFF ^ Sum(data)
}

/*
IntelHex returns the Intel HEX checksum of the record bytes (length, address, type
and data fields), ie the two's complement of the least significant byte of the sum.
*/
func IntelHex(data []byte) byte {
	return -Sum(data)
}
