package hashers

import (
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/require"
)

// The twox128 values of well-known pallet and storage names are fixed points
// of the substrate storage layout and are easy to cross-check against any
// chain explorer.
func TestTwox128KnownPrefixes(t *testing.T) {
	system := Twox128([]byte("System"))
	require.Equal(t, "26aa394eea5630e07c48ae0c9558cef7", hex.EncodeToString(system[:]))

	account := Twox128([]byte("Account"))
	require.Equal(t, "b99d880ec681799c0cf30e8886371da9", hex.EncodeToString(account[:]))

	balances := Twox128([]byte("Balances"))
	require.Equal(t, "c2261276cc9d1f8598ea4b6a74b15c2f", hex.EncodeToString(balances[:]))
}

func TestTwox64(t *testing.T) {
	// xxHash64 of the empty input with seed 0 is 0xef46db3751d8e999;
	// twox stores it little-endian.
	empty := Twox64(nil)
	require.Equal(t, "99e9d85137db46ef", hex.EncodeToString(empty[:]))

	// The first 8 bytes of twox128 are twox64 of the same input.
	h64 := Twox64([]byte("System"))
	h128 := Twox128([]byte("System"))
	require.Equal(t, h128[:8], h64[:])

	// And twox256 extends twox128.
	h256 := Twox256([]byte("System"))
	require.Equal(t, h128[:], h256[:16])
}

func TestBlake2b(t *testing.T) {
	// blake2b-512 of the empty input.
	empty512 := Blake2b512(nil)
	require.Equal(t,
		"786a02f742015903c6c6fd852552d272912f4740e15847618a86e217f71f5419"+
			"d25e1031afee585313896444934eb04b903a685b1448b755d56f701afe9be2ce",
		hex.EncodeToString(empty512[:]))

	// blake2b-256 of the empty input.
	empty256 := Blake2b256(nil)
	require.Equal(t,
		"0e5751c026e543b2e8ab2eb06099daa1d1e5df47778f7787faab45cdf12fe3a8",
		hex.EncodeToString(empty256[:]))

	// Sizes and determinism for the 128-bit variant.
	a := Blake2b128([]byte("hello"))
	b := Blake2b128([]byte("hello"))
	c := Blake2b128([]byte("hellp"))
	require.Equal(t, a, b)
	require.NotEqual(t, a, c)
	require.Len(t, a[:], Blake2b128Len)
}
