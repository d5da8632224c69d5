package scaledecode

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/rpcpool/polkadot-faithful/scalebuf"
	"github.com/rpcpool/polkadot-faithful/scaleinfo"
)

func u32Ptr(v uint32) *uint32 {
	return &v
}

func testRegistry(types map[uint32]*scaleinfo.Type) *scaleinfo.PortableRegistry {
	return scaleinfo.NewPortableRegistry(types)
}

func primitiveTy(kind scaleinfo.Primitive) *scaleinfo.Type {
	return &scaleinfo.Type{Def: scaleinfo.TypeDefPrimitive{Kind: kind}}
}

func TestDecodeFixedU32(t *testing.T) {
	reg := testRegistry(map[uint32]*scaleinfo.Type{0: primitiveTy(scaleinfo.PrimitiveU32)})

	out, err := DecodeAllAsType(0, scalebuf.Bytes{0x78, 0x56, 0x34, 0x12}, reg)
	require.NoError(t, err)
	require.Equal(t, U32{Value: 0x12345678}, out.Data)

	_, err = DecodeAllAsType(0, scalebuf.Bytes{0x78, 0x56, 0x34}, reg)
	require.Equal(t, scalebuf.DataTooShortError{Position: 3, MinimalLength: 1}, err)
}

func TestDecodeAllRejectsResidue(t *testing.T) {
	reg := testRegistry(map[uint32]*scaleinfo.Type{0: primitiveTy(scaleinfo.PrimitiveU32)})
	_, err := DecodeAllAsType(0, scalebuf.Bytes{1, 2, 3, 4, 5}, reg)
	require.Equal(t, SomeDataNotUsedBlobError{From: 4}, err)
}

func TestDecodeBool(t *testing.T) {
	reg := testRegistry(map[uint32]*scaleinfo.Type{0: primitiveTy(scaleinfo.PrimitiveBool)})

	out, err := DecodeAllAsType(0, scalebuf.Bytes{0x01}, reg)
	require.NoError(t, err)
	require.Equal(t, Bool{Value: true}, out.Data)

	out, err = DecodeAllAsType(0, scalebuf.Bytes{0x00}, reg)
	require.NoError(t, err)
	require.Equal(t, Bool{Value: false}, out.Data)

	_, err = DecodeAllAsType(0, scalebuf.Bytes{0x02}, reg)
	require.Equal(t, TypeFailureError{Position: 0, Ty: "bool"}, err)
}

func TestDecodeChar(t *testing.T) {
	reg := testRegistry(map[uint32]*scaleinfo.Type{0: primitiveTy(scaleinfo.PrimitiveChar)})

	out, err := DecodeAllAsType(0, scalebuf.Bytes{0x41, 0x00, 0x00, 0x00}, reg)
	require.NoError(t, err)
	require.Equal(t, Char{Value: 'A'}, out.Data)

	// Surrogate code points are not scalar values.
	_, err = DecodeAllAsType(0, scalebuf.Bytes{0x00, 0xD8, 0x00, 0x00}, reg)
	require.Equal(t, TypeFailureError{Position: 0, Ty: "char"}, err)
}

func TestDecodeStr(t *testing.T) {
	reg := testRegistry(map[uint32]*scaleinfo.Type{0: primitiveTy(scaleinfo.PrimitiveStr)})

	out, err := DecodeAllAsType(0, scalebuf.Bytes{0x08, 'h', 'i'}, reg)
	require.NoError(t, err)
	require.Equal(t, Text{Text: "hi"}, out.Data)

	_, err = DecodeAllAsType(0, scalebuf.Bytes{0x08, 0xFF, 0xFE}, reg)
	require.Equal(t, TypeFailureError{Position: 1, Ty: "str"}, err)
}

func TestDecodeBigWords(t *testing.T) {
	reg := testRegistry(map[uint32]*scaleinfo.Type{
		0: primitiveTy(scaleinfo.PrimitiveU256),
		1: primitiveTy(scaleinfo.PrimitiveI256),
		2: primitiveTy(scaleinfo.PrimitiveI128),
	})

	word := make([]byte, 32)
	word[0] = 0x2A
	out, err := DecodeAllAsType(0, scalebuf.Bytes(word), reg)
	require.NoError(t, err)
	require.Equal(t, U256{Value: big.NewInt(42)}, out.Data)

	// All-ones is -1 in two's complement.
	ones := make([]byte, 32)
	for i := range ones {
		ones[i] = 0xFF
	}
	out, err = DecodeAllAsType(1, scalebuf.Bytes(ones), reg)
	require.NoError(t, err)
	require.Equal(t, I256{Value: big.NewInt(-1)}, out.Data)

	negOne16 := make([]byte, 16)
	for i := range negOne16 {
		negOne16[i] = 0xFF
	}
	out, err = DecodeAllAsType(2, scalebuf.Bytes(negOne16), reg)
	require.NoError(t, err)
	require.Equal(t, I128{Value: big.NewInt(-1)}, out.Data)
}

func TestDecodeSequences(t *testing.T) {
	reg := testRegistry(map[uint32]*scaleinfo.Type{
		0: primitiveTy(scaleinfo.PrimitiveU8),
		1: {Def: scaleinfo.TypeDefSequence{Elem: 0}},
		2: primitiveTy(scaleinfo.PrimitiveU32),
		3: {Def: scaleinfo.TypeDefSequence{Elem: 2}},
	})

	// Vec<u8> collapses into a blob.
	out, err := DecodeAllAsType(1, scalebuf.Bytes{0x0C, 0xAA, 0xBB, 0xCC}, reg)
	require.NoError(t, err)
	require.Equal(t, SequenceU8{Bytes: []byte{0xAA, 0xBB, 0xCC}}, out.Data)

	// Vec<u32> keeps one node per element.
	out, err = DecodeAllAsType(3, scalebuf.Bytes{0x08, 1, 0, 0, 0, 2, 0, 0, 0}, reg)
	require.NoError(t, err)
	seq, ok := out.Data.(Sequence)
	require.True(t, ok)
	require.Len(t, seq.Elems, 2)
	require.Equal(t, U32{Value: 1}, seq.Elems[0].Data)
	require.Equal(t, U32{Value: 2}, seq.Elems[1].Data)
}

func TestDecodeArray(t *testing.T) {
	reg := testRegistry(map[uint32]*scaleinfo.Type{
		0: primitiveTy(scaleinfo.PrimitiveU16),
		1: {Def: scaleinfo.TypeDefArray{Len: 2, Elem: 0}},
	})

	out, err := DecodeAllAsType(1, scalebuf.Bytes{0x01, 0x00, 0x02, 0x00}, reg)
	require.NoError(t, err)
	arr, ok := out.Data.(Array)
	require.True(t, ok)
	require.Len(t, arr.Elems, 2)
	require.Equal(t, U16{Value: 1}, arr.Elems[0].Data)
	require.Equal(t, U16{Value: 2}, arr.Elems[1].Data)
}

func TestDecodeTuple(t *testing.T) {
	reg := testRegistry(map[uint32]*scaleinfo.Type{
		0: primitiveTy(scaleinfo.PrimitiveU32),
		1: primitiveTy(scaleinfo.PrimitiveU8),
		2: {Def: scaleinfo.TypeDefTuple{Fields: []uint32{0, 1}}},
	})

	out, err := DecodeAllAsType(2, scalebuf.Bytes{0x05, 0, 0, 0, 0x07}, reg)
	require.NoError(t, err)
	tup, ok := out.Data.(Tuple)
	require.True(t, ok)
	require.Len(t, tup.Elems, 2)
	require.Equal(t, U32{Value: 5}, tup.Elems[0].Data)
	require.Equal(t, U8{Value: 7}, tup.Elems[1].Data)
}

func TestDecodeOptionVariant(t *testing.T) {
	reg := testRegistry(map[uint32]*scaleinfo.Type{
		0: primitiveTy(scaleinfo.PrimitiveU32),
		1: {
			Path: scaleinfo.Path{"Option"},
			Def: scaleinfo.TypeDefVariant{Variants: []scaleinfo.VariantDef{
				{Name: "None", Index: 0},
				{Name: "Some", Index: 1, Fields: []scaleinfo.Field{{Ty: 0}}},
			}},
		},
	})

	out, err := DecodeAllAsType(1, scalebuf.Bytes{0x00}, reg)
	require.NoError(t, err)
	require.Equal(t, Variant{Name: "None", Index: 0}, out.Data)

	out, err = DecodeAllAsType(1, scalebuf.Bytes{0x01, 0x2A, 0, 0, 0}, reg)
	require.NoError(t, err)
	some, ok := out.Data.(Variant)
	require.True(t, ok)
	require.Equal(t, "Some", some.Name)
	require.Equal(t, U32{Value: 42}, some.Fields[0].Data.Data)

	_, err = DecodeAllAsType(1, scalebuf.Bytes{0x02}, reg)
	require.Equal(t, UnexpectedEnumVariantError{Position: 0}, err)
}

func TestCompactIntoPrimitive(t *testing.T) {
	reg := testRegistry(map[uint32]*scaleinfo.Type{
		0: {Def: scaleinfo.TypeDefCompact{Inner: 1}},
		1: primitiveTy(scaleinfo.PrimitiveU32),
	})

	out, err := DecodeAllAsType(0, scalebuf.Bytes{0xB1, 0x04}, reg)
	require.NoError(t, err)
	require.Equal(t, U32{Value: 300}, out.Data)
}

func TestCompactBalancePassthrough(t *testing.T) {
	// Compact<BalanceOf> where the balance is a newtype over u128: the
	// compact flag passes through the single-field wrapper and the path
	// tags the value as a balance.
	reg := testRegistry(map[uint32]*scaleinfo.Type{
		0: {Def: scaleinfo.TypeDefCompact{Inner: 1}},
		1: {
			Path: scaleinfo.Path{"types", "Balance"},
			Def:  scaleinfo.TypeDefComposite{Fields: []scaleinfo.Field{{Ty: 2}}},
		},
		2: primitiveTy(scaleinfo.PrimitiveU128),
	})

	out, err := DecodeAllAsType(0, scalebuf.Bytes{0x04}, reg)
	require.NoError(t, err)
	composite, ok := out.Data.(Composite)
	require.True(t, ok)
	require.Len(t, composite.Fields, 1)
	require.Equal(t, U128{Value: big.NewInt(1), Specialty: UnsignedBalance}, composite.Fields[0].Data.Data)
}

func TestCompactOverMultiFieldComposite(t *testing.T) {
	reg := testRegistry(map[uint32]*scaleinfo.Type{
		0: {Def: scaleinfo.TypeDefCompact{Inner: 1}},
		1: {Def: scaleinfo.TypeDefComposite{Fields: []scaleinfo.Field{{Ty: 2}, {Ty: 2}}}},
		2: primitiveTy(scaleinfo.PrimitiveU32),
	})

	_, err := DecodeAllAsType(0, scalebuf.Bytes{0x04, 0x04}, reg)
	require.Equal(t, UnexpectedCompactInsidesError{ID: 0}, err)
}

func TestCompactOverBool(t *testing.T) {
	reg := testRegistry(map[uint32]*scaleinfo.Type{
		0: {Def: scaleinfo.TypeDefCompact{Inner: 1}},
		1: primitiveTy(scaleinfo.PrimitiveBool),
	})

	_, err := DecodeAllAsType(0, scalebuf.Bytes{0x01}, reg)
	require.Equal(t, UnexpectedCompactInsidesError{ID: 0}, err)
}

func TestCyclicMetadata(t *testing.T) {
	reg := testRegistry(map[uint32]*scaleinfo.Type{
		0: {Def: scaleinfo.TypeDefComposite{Fields: []scaleinfo.Field{{Ty: 0}}}},
	})
	_, err := DecodeAllAsType(0, scalebuf.Bytes{0x00}, reg)
	require.Equal(t, CyclicMetadataError{ID: 0}, err)
}

func TestCyclicCompact(t *testing.T) {
	reg := testRegistry(map[uint32]*scaleinfo.Type{
		0: {Def: scaleinfo.TypeDefCompact{Inner: 0}},
	})
	_, err := DecodeAllAsType(0, scalebuf.Bytes{0x00}, reg)
	require.Equal(t, CyclicMetadataError{ID: 0}, err)
}

// A self-referential type behind a variant must not trip the cycle check:
// the consumed discriminant byte is data progress.
func TestRecursiveVariantTerminates(t *testing.T) {
	reg := testRegistry(map[uint32]*scaleinfo.Type{
		0: {
			Path: scaleinfo.Path{"List"},
			Def: scaleinfo.TypeDefVariant{Variants: []scaleinfo.VariantDef{
				{Name: "Nil", Index: 0},
				{Name: "Cons", Index: 1, Fields: []scaleinfo.Field{{Ty: 1}, {Ty: 0}}},
			}},
		},
		1: primitiveTy(scaleinfo.PrimitiveU8),
	})

	// Cons(1, Cons(2, Nil))
	out, err := DecodeAllAsType(0, scalebuf.Bytes{0x01, 0x01, 0x01, 0x02, 0x00}, reg)
	require.NoError(t, err)
	cons, ok := out.Data.(Variant)
	require.True(t, ok)
	require.Equal(t, "Cons", cons.Name)
	inner, ok := cons.Fields[1].Data.Data.(Variant)
	require.True(t, ok)
	require.Equal(t, "Cons", inner.Name)
}

func TestTypeNotResolved(t *testing.T) {
	reg := testRegistry(map[uint32]*scaleinfo.Type{})
	_, err := DecodeAllAsType(7, scalebuf.Bytes{0x00}, reg)
	require.Equal(t, scaleinfo.V14TypeNotResolvedError{ID: 7}, err)
}

func TestSpecialCaseHashes(t *testing.T) {
	reg := testRegistry(map[uint32]*scaleinfo.Type{
		0: primitiveTy(scaleinfo.PrimitiveU8),
		1: {Def: scaleinfo.TypeDefArray{Len: 32, Elem: 0}},
		2: {
			Path: scaleinfo.Path{"primitive_types", "H256"},
			Def:  scaleinfo.TypeDefComposite{Fields: []scaleinfo.Field{{Ty: 1}}},
		},
		3: {
			Path: scaleinfo.Path{"sp_core", "crypto", "AccountId32"},
			Def:  scaleinfo.TypeDefComposite{Fields: []scaleinfo.Field{{Ty: 1}}},
		},
	})

	blob := make([]byte, 32)
	for i := range blob {
		blob[i] = byte(i)
	}

	out, err := DecodeAllAsType(2, scalebuf.Bytes(blob), reg)
	require.NoError(t, err)
	h256, ok := out.Data.(H256)
	require.True(t, ok)
	require.Equal(t, blob, h256.Value[:])

	out, err = DecodeAllAsType(3, scalebuf.Bytes(blob), reg)
	require.NoError(t, err)
	account, ok := out.Data.(AccountID32)
	require.True(t, ok)
	require.Equal(t, blob, account.Value[:])
}

func TestEraDecoding(t *testing.T) {
	reg := testRegistry(map[uint32]*scaleinfo.Type{
		0: {
			Path: scaleinfo.Path{"sp_runtime", "generic", "era", "Era"},
			Def:  scaleinfo.TypeDefVariant{},
		},
	})

	out, err := DecodeAllAsType(0, scalebuf.Bytes{0x00}, reg)
	require.NoError(t, err)
	require.Equal(t, Era{Immortal: true}, out.Data)

	out, err = DecodeAllAsType(0, scalebuf.Bytes{0xA5, 0x02}, reg)
	require.NoError(t, err)
	require.Equal(t, Era{Period: 64, Phase: 42}, out.Data)

	// Phase beyond the period is invalid.
	_, err = DecodeAllAsType(0, scalebuf.Bytes{0x51, 0x00}, reg)
	require.Equal(t, TypeFailureError{Position: 0, Ty: "Era"}, err)
}

func TestBitSequence(t *testing.T) {
	reg := testRegistry(map[uint32]*scaleinfo.Type{
		0: primitiveTy(scaleinfo.PrimitiveU8),
		1: {Path: scaleinfo.Path{"bitvec", "order", "Lsb0"}, Def: scaleinfo.TypeDefComposite{}},
		2: {Path: scaleinfo.Path{"bitvec", "order", "Msb0"}, Def: scaleinfo.TypeDefComposite{}},
		3: {Def: scaleinfo.TypeDefBitSequence{BitStoreTy: 0, BitOrderTy: 1}},
		4: {Def: scaleinfo.TypeDefBitSequence{BitStoreTy: 0, BitOrderTy: 2}},
		5: primitiveTy(scaleinfo.PrimitiveBool),
		6: {Def: scaleinfo.TypeDefBitSequence{BitStoreTy: 5, BitOrderTy: 1}},
		7: {Path: scaleinfo.Path{"bitvec", "order", "Weird"}, Def: scaleinfo.TypeDefComposite{}},
		8: {Def: scaleinfo.TypeDefBitSequence{BitStoreTy: 0, BitOrderTy: 7}},
	})

	// Four bits out of 0b0000_0101, least significant first.
	out, err := DecodeAllAsType(3, scalebuf.Bytes{0x10, 0x05}, reg)
	require.NoError(t, err)
	require.Equal(t, BitSeq{Bits: []bool{true, false, true, false}}, out.Data)

	// The same four bits stored most significant first, in 0b1010_0000.
	out, err = DecodeAllAsType(4, scalebuf.Bytes{0x10, 0xA0}, reg)
	require.NoError(t, err)
	require.Equal(t, BitSeq{Bits: []bool{true, false, true, false}}, out.Data)

	_, err = DecodeAllAsType(6, scalebuf.Bytes{0x10, 0x05}, reg)
	require.Equal(t, NotBitStoreTypeError{ID: 6}, err)

	_, err = DecodeAllAsType(8, scalebuf.Bytes{0x10, 0x05}, reg)
	require.Equal(t, NotBitOrderTypeError{ID: 8}, err)
}

func TestFieldHints(t *testing.T) {
	reg := testRegistry(map[uint32]*scaleinfo.Type{
		0: {Def: scaleinfo.TypeDefComposite{Fields: []scaleinfo.Field{
			{Name: "nonce", Ty: 1},
			{Name: "tip", Ty: 2},
		}}},
		1: primitiveTy(scaleinfo.PrimitiveU32),
		2: {Def: scaleinfo.TypeDefCompact{Inner: 3}},
		3: primitiveTy(scaleinfo.PrimitiveU128),
	})

	out, err := DecodeAllAsType(0, scalebuf.Bytes{0x05, 0, 0, 0, 0x04}, reg)
	require.NoError(t, err)
	composite, ok := out.Data.(Composite)
	require.True(t, ok)
	require.Equal(t, U32{Value: 5, Specialty: UnsignedNonce}, composite.Fields[0].Data.Data)
	require.Equal(t, U128{Value: big.NewInt(1), Specialty: UnsignedTip}, composite.Fields[1].Data.Data)
}

// Field-name hints dominate for that field's subtree only; sibling
// subtrees see the original (empty) hint.
func TestHintSiblingIndependence(t *testing.T) {
	reg := testRegistry(map[uint32]*scaleinfo.Type{
		0: {Def: scaleinfo.TypeDefComposite{Fields: []scaleinfo.Field{
			{Name: "tip", Ty: 1},
			{Name: "other", Ty: 1},
		}}},
		1: primitiveTy(scaleinfo.PrimitiveU32),
	})

	out, err := DecodeAllAsType(0, scalebuf.Bytes{1, 0, 0, 0, 2, 0, 0, 0}, reg)
	require.NoError(t, err)
	composite := out.Data.(Composite)
	require.Equal(t, U32{Value: 1, Specialty: UnsignedTip}, composite.Fields[0].Data.Data)
	require.Equal(t, U32{Value: 2}, composite.Fields[1].Data.Data)
}

func TestDecodeTwiceIsEqual(t *testing.T) {
	reg := testRegistry(map[uint32]*scaleinfo.Type{
		0: primitiveTy(scaleinfo.PrimitiveU8),
		1: {Def: scaleinfo.TypeDefSequence{Elem: 0}},
	})
	input := scalebuf.Bytes{0x0C, 1, 2, 3}

	first, err := DecodeAllAsType(1, input, reg)
	require.NoError(t, err)
	second, err := DecodeAllAsType(1, input, reg)
	require.NoError(t, err)
	require.Equal(t, first, second)
}

func TestPerThings(t *testing.T) {
	reg := testRegistry(map[uint32]*scaleinfo.Type{
		0: {Path: scaleinfo.Path{"sp_arithmetic", "per_things", "Perbill"}, Def: scaleinfo.TypeDefComposite{Fields: []scaleinfo.Field{{Ty: 1}}}},
		1: primitiveTy(scaleinfo.PrimitiveU32),
		2: {Def: scaleinfo.TypeDefCompact{Inner: 0}},
		3: {Path: scaleinfo.Path{"sp_arithmetic", "per_things", "Percent"}, Def: scaleinfo.TypeDefComposite{Fields: []scaleinfo.Field{{Ty: 4}}}},
		4: primitiveTy(scaleinfo.PrimitiveU8),
	})

	out, err := DecodeAllAsType(0, scalebuf.Bytes{0x00, 0xCA, 0x9A, 0x3B}, reg)
	require.NoError(t, err)
	require.Equal(t, Perbill{Value: 1_000_000_000}, out.Data)

	// Per-things are legal inside compact.
	out, err = DecodeAllAsType(2, scalebuf.Bytes{0x04}, reg)
	require.NoError(t, err)
	require.Equal(t, Perbill{Value: 1}, out.Data)

	out, err = DecodeAllAsType(3, scalebuf.Bytes{0x64}, reg)
	require.NoError(t, err)
	require.Equal(t, Percent{Value: 100}, out.Data)
}

func TestInfoCollected(t *testing.T) {
	reg := testRegistry(map[uint32]*scaleinfo.Type{
		0: {
			Path: scaleinfo.Path{"pallet_demo", "Thing"},
			Docs: []string{"A documented thing."},
			Def:  scaleinfo.TypeDefComposite{Fields: []scaleinfo.Field{{Ty: 1}}},
		},
		1: primitiveTy(scaleinfo.PrimitiveU8),
	})

	out, err := DecodeAllAsType(0, scalebuf.Bytes{0x07}, reg)
	require.NoError(t, err)
	require.Len(t, out.Info, 1)
	require.Equal(t, scaleinfo.Path{"pallet_demo", "Thing"}, out.Info[0].Path)
	require.Equal(t, "A documented thing.", out.Info[0].Docs)
}
