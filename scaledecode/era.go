package scaledecode

import "github.com/rpcpool/polkadot-faithful/scalebuf"

// decodeEra reads a transaction mortality: a single zero byte for the
// immortal era, otherwise two bytes combined into the mortal (period,
// phase) pair. The period exponent lives in the low four bits, the
// quantized phase in the remaining twelve.
func decodeEra(b scalebuf.Buffer, pos *int) (Era, error) {
	start := *pos
	first, err := b.ReadByteAt(start)
	if err != nil {
		return Era{}, err
	}
	if first == 0 {
		*pos = start + 1
		return Era{Immortal: true}, nil
	}
	second, err := b.ReadByteAt(start + 1)
	if err != nil {
		return Era{}, err
	}
	encoded := uint64(first) | uint64(second)<<8
	period := uint64(2) << (encoded % (1 << 4))
	quantizeFactor := period >> 12
	if quantizeFactor < 1 {
		quantizeFactor = 1
	}
	phase := (encoded >> 4) * quantizeFactor
	if period < 4 || phase >= period {
		return Era{}, TypeFailureError{Position: start, Ty: "Era"}
	}
	*pos = start + 2
	return Era{Period: period, Phase: phase}, nil
}
