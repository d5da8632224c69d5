package scaledecode

import (
	"errors"
	"fmt"

	"github.com/rpcpool/polkadot-faithful/scalebuf"
	"github.com/rpcpool/polkadot-faithful/scaleinfo"
)

// Unchecked extrinsics arrive as SCALE-encoded opaque byte vectors: a
// compact length prefix, a version byte, then either just the call
// (unsigned) or address, signature, extra data and call (signed). The first
// bit of the version byte tells signed from unsigned; the remaining seven
// bits must match the extrinsic version from the metadata.

const (
	versionLength   = 1
	versionMask     = 0b0111_1111
	versionUnsigned = 0
)

// Type parameter names of the unchecked extrinsic type.
const (
	addressIndicator   = "Address"
	signatureIndicator = "Signature"
	extraIndicator     = "Extra"
	callIndicator      = "Call"
)

// ErrFormatNoCompact reports an extrinsic blob without the leading compact
// length.
var ErrFormatNoCompact = errors.New("unchecked extrinsic was expected to be a SCALE-encoded opaque Vec<u8>; have not found a compact indicating vector length")

// Missing unchecked extrinsic type parameters.
var (
	ErrNoAddressParam   = errors.New("unchecked extrinsic type in provided metadata has no specified address parameter")
	ErrNoCallParam      = errors.New("unchecked extrinsic type in provided metadata has no specified call parameter")
	ErrNoExtraParam     = errors.New("unchecked extrinsic type in provided metadata has no specified extra parameter")
	ErrNoSignatureParam = errors.New("unchecked extrinsic type in provided metadata has no specified signature parameter")
)

// VersionMismatchError reports a version byte that does not match the
// metadata extrinsic version.
type VersionMismatchError struct {
	VersionByte uint8
	Version     uint8
}

func (e VersionMismatchError) Error() string {
	return fmt.Sprintf("version byte in unchecked extrinsic %d does not match with version %d from provided metadata; last 7 bits were expected to be identical", e.VersionByte, e.Version)
}

// UnexpectedCallTyError reports a call type parameter that did not decode
// into a call.
type UnexpectedCallTyError struct {
	CallTyID uint32
}

func (e UnexpectedCallTyError) Error() string {
	return fmt.Sprintf("parameter type for call %d in metadata type registry is not a call type, and does not match known call type descriptors", e.CallTyID)
}

func wrapExtrinsicParsing(err error) error {
	return fmt.Errorf("error parsing unchecked extrinsic data: %w", err)
}

// UncheckedExtrinsic is a decoded unchecked extrinsic. Address, Signature
// and Extra are nil for the unsigned kind.
type UncheckedExtrinsic struct {
	Signed    bool
	Address   *ExtendedData
	Signature *ExtendedData
	Extra     *ExtendedData
	Call      Call
}

// extrinsicTypeParams resolves the extrinsic type and returns its type
// parameters. The type is expected to resolve into the opaque byte-vector
// shape (a composite newtype or a byte sequence).
func extrinsicTypeParams(meta *scaleinfo.Metadata) ([]scaleinfo.TypeParam, error) {
	extrinsicTy, err := meta.Types.ResolveTy(meta.Extrinsic.Ty)
	if err != nil {
		return nil, err
	}
	switch def := extrinsicTy.Def.(type) {
	case scaleinfo.TypeDefComposite:
		return extrinsicTy.TypeParams, nil
	case scaleinfo.TypeDefSequence:
		elem, err := meta.Types.ResolveTy(def.Elem)
		if err != nil {
			return nil, err
		}
		if prim, ok := elem.Def.(scaleinfo.TypeDefPrimitive); ok && prim.Kind == scaleinfo.PrimitiveU8 {
			return extrinsicTy.TypeParams, nil
		}
		return nil, UnexpectedExtrinsicTypeError{ExtrinsicTyID: meta.Extrinsic.Ty}
	default:
		return nil, UnexpectedExtrinsicTypeError{ExtrinsicTyID: meta.Extrinsic.Ty}
	}
}

func findParam(params []scaleinfo.TypeParam, name string) *uint32 {
	for i := range params {
		if params[i].Name == name && params[i].Ty != nil {
			return params[i].Ty
		}
	}
	return nil
}

// DecodeAsUncheckedExtrinsic decodes a length-prefixed unchecked extrinsic
// against the metadata.
func DecodeAsUncheckedExtrinsic(input scalebuf.Buffer, meta *scaleinfo.Metadata) (*UncheckedExtrinsic, error) {
	params, err := extrinsicTypeParams(meta)
	if err != nil {
		return nil, wrapExtrinsicParsing(err)
	}

	// The length prefix is decoded step by step rather than through the
	// generic decoder, to trace positions from the very start and keep the
	// framing errors descriptive.
	extrinsicStart := 0
	declaredLength, err := DecodeCompactU32(input, &extrinsicStart)
	if err != nil {
		return nil, ErrFormatNoCompact
	}
	extrinsicLength := int(declaredLength)
	totalLen := input.TotalLen()
	switch {
	case extrinsicStart+extrinsicLength > totalLen:
		return nil, wrapExtrinsicParsing(scalebuf.DataTooShortError{
			Position:      totalLen,
			MinimalLength: extrinsicStart + extrinsicLength - totalLen,
		})
	case extrinsicStart+extrinsicLength < totalLen:
		return nil, wrapExtrinsicParsing(SomeDataNotUsedBlobError{From: extrinsicStart + extrinsicLength})
	}

	position := extrinsicStart
	versionByte, err := input.ReadByteAt(position)
	if err != nil {
		return nil, wrapExtrinsicParsing(err)
	}
	position += versionLength

	version := meta.Extrinsic.Version
	if versionByte&versionMask != version {
		return nil, VersionMismatchError{VersionByte: versionByte, Version: version}
	}

	if versionByte&^uint8(versionMask) == versionUnsigned {
		callTy := findParam(params, callIndicator)
		if callTy == nil {
			return nil, wrapExtrinsicParsing(ErrExtrinsicNoCallParam)
		}
		callData, err := DecodeWithType(*callTy, input, &position, meta.Types, NewPropagated())
		if err != nil {
			return nil, wrapExtrinsicParsing(err)
		}
		call, ok := callData.Data.(Call)
		if !ok {
			return nil, UnexpectedCallTyError{CallTyID: *callTy}
		}
		return &UncheckedExtrinsic{Call: call}, nil
	}

	addressTy := findParam(params, addressIndicator)
	if addressTy == nil {
		return nil, ErrNoAddressParam
	}
	address, err := DecodeWithType(*addressTy, input, &position, meta.Types, NewPropagated())
	if err != nil {
		return nil, wrapExtrinsicParsing(err)
	}

	signatureTy := findParam(params, signatureIndicator)
	if signatureTy == nil {
		return nil, ErrNoSignatureParam
	}
	signature, err := DecodeWithType(*signatureTy, input, &position, meta.Types, NewPropagated())
	if err != nil {
		return nil, wrapExtrinsicParsing(err)
	}

	extraTy := findParam(params, extraIndicator)
	if extraTy == nil {
		return nil, ErrNoExtraParam
	}
	extra, err := DecodeWithType(*extraTy, input, &position, meta.Types, NewPropagated())
	if err != nil {
		return nil, wrapExtrinsicParsing(err)
	}

	callTy := findParam(params, callIndicator)
	if callTy == nil {
		return nil, ErrNoCallParam
	}
	callData, err := DecodeWithType(*callTy, input, &position, meta.Types, NewPropagated())
	if err != nil {
		return nil, wrapExtrinsicParsing(err)
	}
	call, ok := callData.Data.(Call)
	if !ok {
		return nil, UnexpectedCallTyError{CallTyID: *callTy}
	}

	return &UncheckedExtrinsic{
		Signed:    true,
		Address:   &address,
		Signature: &signature,
		Extra:     &extra,
		Call:      call,
	}, nil
}
