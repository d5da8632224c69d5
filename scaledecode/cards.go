// Package scaledecode is the metadata-directed SCALE decoder: given a
// portable type registry and an opaque byte blob, it walks the registry and
// reconstructs a tagged data tree suitable for human-readable rendering.
//
// The tree (ParsedData) preserves semantic annotations found along the way:
// compact-encoded integers, balance/nonce/spec-version primitives, account
// ids, fixed-size hashes, eras, calls.
package scaledecode

import (
	"math/big"
	"strings"

	"github.com/rpcpool/polkadot-faithful/scaleinfo"
)

// SpecialtyUnsignedInteger tags an unsigned integer with the role it was
// observed in.
type SpecialtyUnsignedInteger int

const (
	UnsignedNone SpecialtyUnsignedInteger = iota
	UnsignedBalance
	UnsignedTip
	UnsignedNonce
	UnsignedSpecVersion
	UnsignedTxVersion
)

// SpecialtyStr tags a decoded string.
type SpecialtyStr int

const (
	StrNone SpecialtyStr = iota
	StrSpecName
)

// SpecialtyH256 tags a decoded 32-byte hash.
type SpecialtyH256 int

const (
	Hash256None SpecialtyH256 = iota
	Hash256GenesisHash
	Hash256BlockHash
)

// ParsedData is the decoded data tree. Exactly one of the concrete variant
// structs below. Two decodes of the same input against the same registry
// produce equal trees.
type ParsedData interface {
	isParsedData()
}

type (
	U8 struct {
		Value     uint8
		Specialty SpecialtyUnsignedInteger
	}
	U16 struct {
		Value     uint16
		Specialty SpecialtyUnsignedInteger
	}
	U32 struct {
		Value     uint32
		Specialty SpecialtyUnsignedInteger
	}
	U64 struct {
		Value     uint64
		Specialty SpecialtyUnsignedInteger
	}
	U128 struct {
		Value     *big.Int
		Specialty SpecialtyUnsignedInteger
	}
	// U256 is a 256-bit little-endian unsigned word.
	U256 struct {
		Value *big.Int
	}

	I8  struct{ Value int8 }
	I16 struct{ Value int16 }
	I32 struct{ Value int32 }
	I64 struct{ Value int64 }
	I128 struct {
		Value *big.Int
	}
	// I256 is a 256-bit little-endian two's-complement word.
	I256 struct {
		Value *big.Int
	}

	Bool struct{ Value bool }
	Char struct{ Value rune }

	Text struct {
		Text      string
		Specialty SpecialtyStr
	}

	H160 struct{ Value [20]byte }
	H256 struct {
		Value     [32]byte
		Specialty SpecialtyH256
	}
	H512 struct{ Value [64]byte }

	// AccountID32 is a 32-byte opaque account id.
	AccountID32 struct{ Value [32]byte }

	// PerU16, Percent, Permill, Perbill and Perquintill are the
	// parts-per-thing fractions; all of them may appear compact-encoded.
	PerU16      struct{ Value uint16 }
	Percent     struct{ Value uint8 }
	Permill     struct{ Value uint32 }
	Perbill     struct{ Value uint32 }
	Perquintill struct{ Value uint64 }

	Composite struct {
		Fields []FieldData
	}

	Variant struct {
		Name   string
		Index  uint8
		Docs   string
		Fields []FieldData
	}

	Sequence struct {
		Elems []ExtendedData
	}

	// SequenceU8 is a byte sequence (Vec<u8>), kept as a blob instead of
	// one node per byte.
	SequenceU8 struct {
		Bytes []byte
	}

	Array struct {
		Elems []ExtendedData
	}

	Tuple struct {
		Elems []ExtendedData
	}

	// BitSeq is a decoded bit sequence, materialized in bit order.
	BitSeq struct {
		Bits []bool
	}

	// Era is a transaction mortality. Period and Phase are zero for the
	// immortal era.
	Era struct {
		Immortal bool
		Period   uint64
		Phase    uint64
	}

	// Call is a recognized runtime call: pallet, dispatchable, arguments.
	Call struct {
		Pallet     string
		PalletDocs string
		Name       string
		Docs       string
		Fields     []FieldData
	}
)

func (U8) isParsedData()          {}
func (U16) isParsedData()         {}
func (U32) isParsedData()         {}
func (U64) isParsedData()         {}
func (U128) isParsedData()        {}
func (U256) isParsedData()        {}
func (I8) isParsedData()          {}
func (I16) isParsedData()         {}
func (I32) isParsedData()         {}
func (I64) isParsedData()         {}
func (I128) isParsedData()        {}
func (I256) isParsedData()        {}
func (Bool) isParsedData()        {}
func (Char) isParsedData()        {}
func (Text) isParsedData()        {}
func (H160) isParsedData()        {}
func (H256) isParsedData()        {}
func (H512) isParsedData()        {}
func (AccountID32) isParsedData() {}
func (PerU16) isParsedData()      {}
func (Percent) isParsedData()     {}
func (Permill) isParsedData()     {}
func (Perbill) isParsedData()     {}
func (Perquintill) isParsedData() {}
func (Composite) isParsedData()   {}
func (Variant) isParsedData()     {}
func (Sequence) isParsedData()    {}
func (SequenceU8) isParsedData()  {}
func (Array) isParsedData()       {}
func (Tuple) isParsedData()       {}
func (BitSeq) isParsedData()      {}
func (Era) isParsedData()         {}
func (Call) isParsedData()        {}

// FieldData is a single decoded field of a composite, variant or call.
type FieldData struct {
	// Name is empty for unnamed fields.
	Name     string
	TypeName string
	Docs     string
	Data     ExtendedData
}

// Info is type information collected while resolving a type: its docs and
// its path.
type Info struct {
	Docs string
	Path scaleinfo.Path
}

// IsEmpty reports whether the Info carries nothing worth keeping.
func (i Info) IsEmpty() bool {
	return i.Docs == "" && len(i.Path) == 0
}

// InfoFromTy collects the Info of a registry type.
func InfoFromTy(ty *scaleinfo.Type) Info {
	return Info{
		Docs: collectDocs(ty.Docs),
		Path: ty.Path,
	}
}

func collectDocs(docs []string) string {
	return strings.Join(docs, "\n")
}

// ExtendedData is a decoded subtree together with the non-empty Info
// records collected while resolving it.
type ExtendedData struct {
	Data ParsedData
	Info []Info
}
