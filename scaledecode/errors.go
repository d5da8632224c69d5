package scaledecode

import (
	"errors"
	"fmt"
)

// Parser errors. Registry resolution errors (type id not resolved, shortened
// registry gaps) originate in package scaleinfo and flow through unchanged;
// buffer exhaustion surfaces as scalebuf.DataTooShortError.

// CyclicMetadataError reports that resolving a type id results in cycling.
type CyclicMetadataError struct {
	ID uint32
}

func (e CyclicMetadataError) Error() string {
	return fmt.Sprintf("resolving type id %d in metadata type registry results in cycling", e.ID)
}

// ErrExtrinsicNoCallParam reports an extrinsic type without a call
// parameter.
var ErrExtrinsicNoCallParam = errors.New("extrinsic type in provided metadata has no specified call parameter")

// NoCompactError reports that no compact could be decoded at a position.
type NoCompactError struct {
	Position int
}

func (e NoCompactError) Error() string {
	return fmt.Sprintf("expected compact starting at position %d, not found one", e.Position)
}

// NotBitOrderTypeError reports a bit sequence with an unexpected bit order
// type.
type NotBitOrderTypeError struct {
	ID uint32
}

func (e NotBitOrderTypeError) Error() string {
	return fmt.Sprintf("bit sequence type %d in metadata type registry has unexpected bit order type", e.ID)
}

// NotBitStoreTypeError reports a bit sequence with an unexpected bit store
// type.
type NotBitStoreTypeError struct {
	ID uint32
}

func (e NotBitStoreTypeError) Error() string {
	return fmt.Sprintf("bit sequence type %d in metadata type registry has unexpected bit store type", e.ID)
}

// SomeDataNotUsedBlobError reports input left over after a decode that was
// expected to consume everything.
type SomeDataNotUsedBlobError struct {
	From int
}

func (e SomeDataNotUsedBlobError) Error() string {
	return fmt.Sprintf("some data (input positions [%d..]) remained unused after decoding", e.From)
}

// TypeFailureError reports bytes that do not form a valid value of the
// expected primitive.
type TypeFailureError struct {
	Position int
	Ty       string
}

func (e TypeFailureError) Error() string {
	return fmt.Sprintf("unable to decode data starting at position %d as %s", e.Position, e.Ty)
}

// UnexpectedCompactInsidesError reports a compact wrapper around a type
// that cannot be compact-encoded.
type UnexpectedCompactInsidesError struct {
	ID uint32
}

func (e UnexpectedCompactInsidesError) Error() string {
	return fmt.Sprintf("compact type %d in metadata type registry has unexpected type inside compact", e.ID)
}

// UnexpectedEnumVariantError reports a discriminant byte matching no
// declared variant.
type UnexpectedEnumVariantError struct {
	Position int
}

func (e UnexpectedEnumVariantError) Error() string {
	return fmt.Sprintf("encountered unexpected enum variant at position %d", e.Position)
}

// UnexpectedExtrinsicTypeError reports an extrinsic type that does not
// resolve into the expected opaque byte-vector shape.
type UnexpectedExtrinsicTypeError struct {
	ExtrinsicTyID uint32
}

func (e UnexpectedExtrinsicTypeError) Error() string {
	return fmt.Sprintf("decoding is based on assumption that extrinsic type resolves into a SCALE-encoded opaque Vec<u8>; unexpected type description is found for type %d in metadata type registry", e.ExtrinsicTyID)
}
