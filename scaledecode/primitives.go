package scaledecode

import (
	"encoding/binary"
	"math/big"
	"unicode/utf8"

	"github.com/rpcpool/polkadot-faithful/scalebuf"
)

// Fixed-width primitive codecs. All integers are little-endian on the wire;
// 256-bit words are 32 little-endian bytes (two's complement for the signed
// variant). Each reader advances the position past exactly the bytes it
// consumed.

func decodeFixedU8(b scalebuf.Buffer, pos *int) (uint8, error) {
	out, err := b.ReadByteAt(*pos)
	if err != nil {
		return 0, err
	}
	*pos++
	return out, nil
}

func decodeFixedU16(b scalebuf.Buffer, pos *int) (uint16, error) {
	raw, err := b.ReadSliceAt(*pos, 2)
	if err != nil {
		return 0, err
	}
	*pos += 2
	return binary.LittleEndian.Uint16(raw), nil
}

func decodeFixedU32(b scalebuf.Buffer, pos *int) (uint32, error) {
	raw, err := b.ReadSliceAt(*pos, 4)
	if err != nil {
		return 0, err
	}
	*pos += 4
	return binary.LittleEndian.Uint32(raw), nil
}

func decodeFixedU64(b scalebuf.Buffer, pos *int) (uint64, error) {
	raw, err := b.ReadSliceAt(*pos, 8)
	if err != nil {
		return 0, err
	}
	*pos += 8
	return binary.LittleEndian.Uint64(raw), nil
}

func decodeFixedU128(b scalebuf.Buffer, pos *int) (*big.Int, error) {
	raw, err := b.ReadSliceAt(*pos, 16)
	if err != nil {
		return nil, err
	}
	*pos += 16
	return bigFromLittleEndian(raw), nil
}

func decodeBool(b scalebuf.Buffer, pos *int) (bool, error) {
	raw, err := b.ReadByteAt(*pos)
	if err != nil {
		return false, err
	}
	switch raw {
	case 0:
		*pos++
		return false, nil
	case 1:
		*pos++
		return true, nil
	default:
		return false, TypeFailureError{Position: *pos, Ty: "bool"}
	}
}

// decodeChar reads 4 bytes as a little-endian u32 and accepts it iff it is
// a valid unicode scalar value.
func decodeChar(b scalebuf.Buffer, pos *int) (rune, error) {
	raw, err := b.ReadSliceAt(*pos, 4)
	if err != nil {
		return 0, err
	}
	value := binary.LittleEndian.Uint32(raw)
	if value > utf8.MaxRune || (value >= 0xD800 && value <= 0xDFFF) {
		return 0, TypeFailureError{Position: *pos, Ty: "char"}
	}
	*pos += 4
	return rune(value), nil
}

// decodeBigU256 reads a 256-bit little-endian unsigned word.
func decodeBigU256(b scalebuf.Buffer, pos *int) (*big.Int, error) {
	raw, err := b.ReadSliceAt(*pos, 32)
	if err != nil {
		return nil, err
	}
	*pos += 32
	return bigFromLittleEndian(raw), nil
}

// decodeBigI256 reads a 256-bit little-endian two's-complement word.
func decodeBigI256(b scalebuf.Buffer, pos *int) (*big.Int, error) {
	raw, err := b.ReadSliceAt(*pos, 32)
	if err != nil {
		return nil, err
	}
	*pos += 32
	out := bigFromLittleEndian(raw)
	if raw[31]&0x80 != 0 {
		// Negative: subtract 2^256.
		wrap := new(big.Int).Lsh(big.NewInt(1), 256)
		out.Sub(out, wrap)
	}
	return out, nil
}

func i128Wrap() *big.Int {
	return new(big.Int).Lsh(big.NewInt(1), 128)
}

// decodeStr reads a compact length followed by that many bytes of UTF-8.
func decodeStr(b scalebuf.Buffer, pos *int) (string, error) {
	length, err := DecodeCompactU32(b, pos)
	if err != nil {
		return "", err
	}
	start := *pos
	raw, err := b.ReadSliceAt(start, int(length))
	if err != nil {
		return "", err
	}
	if !utf8.Valid(raw) {
		return "", TypeFailureError{Position: start, Ty: "str"}
	}
	*pos = start + int(length)
	return string(raw), nil
}
