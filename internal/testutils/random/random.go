package random

import (
	"crypto/rand"
	mrand "math/rand"
	"testing"

	"github.com/alphabill-org/hexmerge/image"
)

func Bytes(len int) []byte {
	bytes := make([]byte, len)
	if _, err := rand.Read(bytes); err != nil {
		panic(err)
	}
	return bytes
}

/*
Image returns image with at least "size" defined bytes at addresses in [0, maxAddr].
Data is written as blocks of random length so the image has both holes and runs
crossing record line boundaries. "maxAddr" must be in range [100, 2^64-2].
*/
func Image(t testing.TB, rnd *mrand.Rand, size int, maxAddr uint64) *image.Image {
	t.Helper()
	img := image.New()
	for img.Len() < size {
		blockLen := 1 + rnd.Intn(100)
		addr := rnd.Uint64() % (maxAddr + 1)
		if maxAddr-addr < uint64(blockLen-1) {
			addr = maxAddr - uint64(blockLen-1)
		}
		data := make([]byte, blockLen)
		rnd.Read(data)
		if err := img.WriteBlock(addr, data); err != nil {
			t.Fatalf("writing random block: %v", err)
		}
	}
	return img
}

/*
Dump returns content of the image as map, useful for comparing images in tests.
*/
func Dump(img *image.Image) map[uint64]byte {
	m := make(map[uint64]byte, img.Len())
	for i := 0; i < img.Len(); i++ {
		e := img.At(i)
		m[e.Address] = e.Data
	}
	return m
}
