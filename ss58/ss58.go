// Package ss58 renders and parses SS58 addresses: base58 over a network
// prefix, the public key, and a truncated blake2b-512 checksum over the
// "SS58PRE" preimage.
package ss58

import (
	"errors"
	"fmt"

	"github.com/mr-tron/base58"

	"github.com/rpcpool/polkadot-faithful/hashers"
)

// checksumPreimage precedes the payload when computing the checksum.
var checksumPreimage = []byte("SS58PRE")

const checksumLen = 2

// Well-known network prefixes.
const (
	PrefixPolkadot  uint16 = 0
	PrefixKusama    uint16 = 2
	PrefixSubstrate uint16 = 42
)

var (
	ErrInvalidPrefix   = errors.New("network prefix out of range")
	ErrInvalidChecksum = errors.New("invalid address checksum")
)

// Encode renders a 32-byte account id as an SS58 address under the given
// network prefix.
func Encode(prefix uint16, accountID [32]byte) (string, error) {
	if prefix > 0x3FFF {
		return "", ErrInvalidPrefix
	}
	var data []byte
	if prefix < 64 {
		data = []byte{byte(prefix)}
	} else {
		// Two-byte form: the 14-bit ident is spread over the low bits with
		// the 0b01 marker in the top bits of the first byte.
		data = []byte{
			byte(prefix&0x00FC)>>2 | 0x40,
			byte(prefix>>8) | byte(prefix&0x0003)<<6,
		}
	}
	data = append(data, accountID[:]...)

	checksum := hashers.Blake2b512(append(append([]byte(nil), checksumPreimage...), data...))
	data = append(data, checksum[:checksumLen]...)
	return base58.Encode(data), nil
}

// Decode parses an SS58 address back into its network prefix and 32-byte
// account id.
func Decode(address string) (uint16, [32]byte, error) {
	var accountID [32]byte
	raw, err := base58.Decode(address)
	if err != nil {
		return 0, accountID, fmt.Errorf("invalid base58: %w", err)
	}

	var prefix uint16
	var prefixLen int
	switch {
	case len(raw) >= 1 && raw[0] < 64:
		prefix = uint16(raw[0])
		prefixLen = 1
	case len(raw) >= 2 && raw[0] >= 64 && raw[0] < 128:
		lower := uint16(raw[0]-0x40)<<2 | uint16(raw[1])>>6
		upper := uint16(raw[1]&0x3F) << 8
		prefix = lower | upper
		prefixLen = 2
	default:
		return 0, accountID, ErrInvalidPrefix
	}

	if len(raw) != prefixLen+32+checksumLen {
		return 0, accountID, fmt.Errorf("unexpected address length %d", len(raw))
	}
	payload := raw[:len(raw)-checksumLen]
	checksum := hashers.Blake2b512(append(append([]byte(nil), checksumPreimage...), payload...))
	if checksum[0] != raw[len(raw)-2] || checksum[1] != raw[len(raw)-1] {
		return 0, accountID, ErrInvalidChecksum
	}
	copy(accountID[:], raw[prefixLen:prefixLen+32])
	return prefix, accountID, nil
}
