// Package hashers implements the storage-key hash primitives of the chain:
// blake2b at the substrate sizes, and the twox family (seeded xxHash64
// digests concatenated little-endian).
package hashers

import (
	"encoding/binary"

	"github.com/cespare/xxhash/v2"
	"golang.org/x/crypto/blake2b"
)

// Hash lengths in bytes.
const (
	Blake2b128Len = 16
	Blake2b256Len = 32
	Blake2b512Len = 64
	Twox64Len     = 8
	Twox128Len    = 16
	Twox256Len    = 32
)

// Blake2b128 returns the 16-byte blake2b digest of data.
func Blake2b128(data []byte) [Blake2b128Len]byte {
	var out [Blake2b128Len]byte
	h, err := blake2b.New(Blake2b128Len, nil)
	if err != nil {
		panic(err) // unkeyed blake2b with a valid size never fails
	}
	h.Write(data)
	copy(out[:], h.Sum(nil))
	return out
}

// Blake2b256 returns the 32-byte blake2b digest of data.
func Blake2b256(data []byte) [Blake2b256Len]byte {
	return blake2b.Sum256(data)
}

// Blake2b512 returns the 64-byte blake2b digest of data.
func Blake2b512(data []byte) [Blake2b512Len]byte {
	return blake2b.Sum512(data)
}

// Twox64 returns xxHash64 of data with seed 0, little-endian.
func Twox64(data []byte) [Twox64Len]byte {
	var out [Twox64Len]byte
	binary.LittleEndian.PutUint64(out[:], sum64Seeded(0, data))
	return out
}

// Twox128 concatenates xxHash64 with seeds 0 and 1, each little-endian.
func Twox128(data []byte) [Twox128Len]byte {
	var out [Twox128Len]byte
	for seed := uint64(0); seed < 2; seed++ {
		binary.LittleEndian.PutUint64(out[seed*8:], sum64Seeded(seed, data))
	}
	return out
}

// Twox256 concatenates xxHash64 with seeds 0 through 3, each little-endian.
func Twox256(data []byte) [Twox256Len]byte {
	var out [Twox256Len]byte
	for seed := uint64(0); seed < 4; seed++ {
		binary.LittleEndian.PutUint64(out[seed*8:], sum64Seeded(seed, data))
	}
	return out
}

func sum64Seeded(seed uint64, data []byte) uint64 {
	d := xxhash.NewWithSeed(seed)
	d.Write(data)
	return d.Sum64()
}
