package checksum

import (
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/require"
)

func decodeHex(t *testing.T, s string) []byte {
	t.Helper()
	data, err := hex.DecodeString(s)
	require.NoError(t, err)
	return data
}

func TestCRC32(t *testing.T) {
	require.EqualValues(t, 0xCBF43926, CRC32([]byte("123456789")))
	require.EqualValues(t, 0, CRC32(nil))

	h := NewCRC32()
	_, err := h.Write([]byte("12345"))
	require.NoError(t, err)
	_, err = h.Write([]byte("6789"))
	require.NoError(t, err)
	require.EqualValues(t, 0xCBF43926, h.Sum32())
	require.EqualValues(t, 0xEDB88320, CRC32Polynomial)
}

func TestFletcher16(t *testing.T) {
	var cases = []struct {
		in  string
		sum uint16
	}{
		{"", 0},
		{"abcde", 0xC8F0},
		{"abcdef", 0x2057},
		{"abcdefgh", 0x0627},
	}
	for _, tc := range cases {
		require.Equal(t, tc.sum, Fletcher16Sum([]byte(tc.in)), "input %q", tc.in)
	}

	t.Run("streaming equals one shot", func(t *testing.T) {
		data := make([]byte, 20000)
		for i := range data {
			data[i] = byte(i*7 + 3)
		}
		h := NewFletcher16()
		for i := 0; i < len(data); i += 333 {
			_, err := h.Write(data[i:min(i+333, len(data))])
			require.NoError(t, err)
		}
		require.Equal(t, Fletcher16Sum(data), h.Sum16())
		sum := h.Sum(nil)
		require.Equal(t, []byte{byte(h.Sum16() >> 8), byte(h.Sum16())}, sum)
		require.Equal(t, Size16, h.Size())

		h.Reset()
		require.Zero(t, h.Sum16())
	})

	t.Run("all 0xFF", func(t *testing.T) {
		data := make([]byte, 10000)
		for i := range data {
			data[i] = 0xFF
		}
		// 0xFF == 0 mod 255
		require.Zero(t, Fletcher16Sum(data))
	})
}

func TestRecordChecksums(t *testing.T) {
	rec := decodeHex(t, "130000285F245F2212226F00007E02A6EFFD02")
	require.EqualValues(t, 0x09, SRecord(rec))
	// S0 dummy header
	require.EqualValues(t, 0x3C, SRecord(decodeHex(t, "0F000068656C6C6F20202020200000")))
	require.EqualValues(t, 0xFC, SRecord(decodeHex(t, "030000")))

	require.EqualValues(t, 0x1E, IntelHex(decodeHex(t, "0300300002337A")))
	require.EqualValues(t, 0x40, IntelHex(decodeHex(t, "10010000214601360121470136007EFE09D21901")))
	require.EqualValues(t, 0xFF, IntelHex(decodeHex(t, "00000001")))
	require.EqualValues(t, 0x00, IntelHex(nil))
	require.EqualValues(t, 0xFF, SRecord(nil))
}
