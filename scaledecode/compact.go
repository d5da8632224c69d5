package scaledecode

import (
	"encoding/binary"
	"math/big"

	"github.com/rpcpool/polkadot-faithful/scalebuf"
)

// SCALE compact integers: the low two bits of the first byte select the
// encoding class (single byte, two bytes, four bytes, or a length-prefixed
// big integer). The encoding is canonical: each value has exactly one valid
// form, and the decoder accepts only that form, advancing past exactly the
// bytes consumed. Anything else is NoCompactError at the start position.

const (
	compactModeMask   = 0b0000_0011
	compactModeSingle = 0b00
	compactModeTwo    = 0b01
	compactModeFour   = 0b10
	compactModeBig    = 0b11
)

// decodeCompact reads a compact integer bounded by maxBytes (the byte width
// of the target type: 1, 2, 4, 8 or 16) and advances the position.
func decodeCompact(b scalebuf.Buffer, pos *int, maxBytes int) (*big.Int, error) {
	start := *pos
	first, err := b.ReadByteAt(start)
	if err != nil {
		return nil, NoCompactError{Position: start}
	}
	maxValue := compactMaxValue(maxBytes)

	switch first & compactModeMask {
	case compactModeSingle:
		*pos = start + 1
		return big.NewInt(int64(first >> 2)), nil

	case compactModeTwo:
		raw, err := b.ReadSliceAt(start, 2)
		if err != nil {
			return nil, NoCompactError{Position: start}
		}
		value := uint64(binary.LittleEndian.Uint16(raw)) >> 2
		if value <= 0x3F {
			return nil, NoCompactError{Position: start}
		}
		out := new(big.Int).SetUint64(value)
		if out.Cmp(maxValue) > 0 {
			return nil, NoCompactError{Position: start}
		}
		*pos = start + 2
		return out, nil

	case compactModeFour:
		raw, err := b.ReadSliceAt(start, 4)
		if err != nil {
			return nil, NoCompactError{Position: start}
		}
		value := uint64(binary.LittleEndian.Uint32(raw)) >> 2
		if value <= 0x3FFF {
			return nil, NoCompactError{Position: start}
		}
		out := new(big.Int).SetUint64(value)
		if out.Cmp(maxValue) > 0 {
			return nil, NoCompactError{Position: start}
		}
		*pos = start + 4
		return out, nil

	default: // compactModeBig
		n := int(first>>2) + 4
		if n < 4 || n > maxBytes {
			return nil, NoCompactError{Position: start}
		}
		raw, err := b.ReadSliceAt(start+1, n)
		if err != nil {
			return nil, NoCompactError{Position: start}
		}
		if raw[n-1] == 0 {
			// Non-minimal length.
			return nil, NoCompactError{Position: start}
		}
		out := bigFromLittleEndian(raw)
		if out.Cmp(big.NewInt(0x3FFF_FFFF)) <= 0 {
			return nil, NoCompactError{Position: start}
		}
		if out.Cmp(maxValue) > 0 {
			return nil, NoCompactError{Position: start}
		}
		*pos = start + 1 + n
		return out, nil
	}
}

func compactMaxValue(maxBytes int) *big.Int {
	one := big.NewInt(1)
	out := new(big.Int).Lsh(one, uint(maxBytes)*8)
	return out.Sub(out, one)
}

func bigFromLittleEndian(raw []byte) *big.Int {
	be := make([]byte, len(raw))
	for i, x := range raw {
		be[len(raw)-1-i] = x
	}
	return new(big.Int).SetBytes(be)
}

// DecodeCompactU8 reads a compact u8 and advances the position.
func DecodeCompactU8(b scalebuf.Buffer, pos *int) (uint8, error) {
	value, err := decodeCompact(b, pos, 1)
	if err != nil {
		return 0, err
	}
	return uint8(value.Uint64()), nil
}

// DecodeCompactU16 reads a compact u16 and advances the position.
func DecodeCompactU16(b scalebuf.Buffer, pos *int) (uint16, error) {
	value, err := decodeCompact(b, pos, 2)
	if err != nil {
		return 0, err
	}
	return uint16(value.Uint64()), nil
}

// DecodeCompactU32 reads a compact u32 and advances the position.
func DecodeCompactU32(b scalebuf.Buffer, pos *int) (uint32, error) {
	value, err := decodeCompact(b, pos, 4)
	if err != nil {
		return 0, err
	}
	return uint32(value.Uint64()), nil
}

// DecodeCompactU64 reads a compact u64 and advances the position.
func DecodeCompactU64(b scalebuf.Buffer, pos *int) (uint64, error) {
	value, err := decodeCompact(b, pos, 8)
	if err != nil {
		return 0, err
	}
	return value.Uint64(), nil
}

// DecodeCompactU128 reads a compact u128 and advances the position.
func DecodeCompactU128(b scalebuf.Buffer, pos *int) (*big.Int, error) {
	return decodeCompact(b, pos, 16)
}
