// Package scaleinfo models the self-describing type information embedded in
// V14 runtime metadata: the portable type registry, and the slices of the
// metadata the decoders need (pallets, extrinsic descriptor, storage
// entries, signed extensions).
//
// The registry is authoritative: decoding is directed entirely by it, no
// schema inference happens anywhere downstream.
package scaleinfo

import "fmt"

// Primitive enumerates the primitive type kinds of the portable registry.
type Primitive int

const (
	PrimitiveBool Primitive = iota
	PrimitiveChar
	PrimitiveStr
	PrimitiveU8
	PrimitiveU16
	PrimitiveU32
	PrimitiveU64
	PrimitiveU128
	PrimitiveU256
	PrimitiveI8
	PrimitiveI16
	PrimitiveI32
	PrimitiveI64
	PrimitiveI128
	PrimitiveI256
)

func (p Primitive) String() string {
	switch p {
	case PrimitiveBool:
		return "bool"
	case PrimitiveChar:
		return "char"
	case PrimitiveStr:
		return "str"
	case PrimitiveU8:
		return "u8"
	case PrimitiveU16:
		return "u16"
	case PrimitiveU32:
		return "u32"
	case PrimitiveU64:
		return "u64"
	case PrimitiveU128:
		return "u128"
	case PrimitiveU256:
		return "u256"
	case PrimitiveI8:
		return "i8"
	case PrimitiveI16:
		return "i16"
	case PrimitiveI32:
		return "i32"
	case PrimitiveI64:
		return "i64"
	case PrimitiveI128:
		return "i128"
	case PrimitiveI256:
		return "i256"
	default:
		return fmt.Sprintf("primitive(%d)", int(p))
	}
}

// Path is the namespaced name of a type, e.g. ["sp_core", "crypto",
// "AccountId32"].
type Path []string

// Ident returns the last path segment, or "" for an empty path.
func (p Path) Ident() string {
	if len(p) == 0 {
		return ""
	}
	return p[len(p)-1]
}

// Field is a single field of a composite or variant type.
//
// Name is empty for unnamed (tuple-struct) fields.
type Field struct {
	Name     string
	Ty       uint32
	TypeName string
	Docs     []string
}

// VariantDef is a single variant of a variant (enum) type. Index is the
// discriminant byte on the wire.
type VariantDef struct {
	Name   string
	Index  uint8
	Fields []Field
	Docs   []string
}

// TypeParam is a generic type parameter of a registry type. Ty is nil when
// the parameter is unbound.
type TypeParam struct {
	Name string
	Ty   *uint32
}

// TypeDef is the definition part of a registry type. Exactly one of the
// concrete TypeDef* structs.
type TypeDef interface {
	isTypeDef()
}

type (
	// TypeDefComposite is a struct-like type.
	TypeDefComposite struct {
		Fields []Field
	}

	// TypeDefVariant is an enum.
	TypeDefVariant struct {
		Variants []VariantDef
	}

	// TypeDefSequence is a variable-length sequence (Vec<T>), encoded as a
	// compact length followed by the elements.
	TypeDefSequence struct {
		Elem uint32
	}

	// TypeDefArray is a fixed-length array ([T; N]).
	TypeDefArray struct {
		Len  uint32
		Elem uint32
	}

	// TypeDefTuple is an anonymous tuple.
	TypeDefTuple struct {
		Fields []uint32
	}

	// TypeDefPrimitive is a primitive.
	TypeDefPrimitive struct {
		Kind Primitive
	}

	// TypeDefCompact is a compact-encoded wrapper (Compact<T>).
	TypeDefCompact struct {
		Inner uint32
	}

	// TypeDefBitSequence is a bit vector, parameterized by its store unit
	// type and its bit ordering type.
	TypeDefBitSequence struct {
		BitStoreTy uint32
		BitOrderTy uint32
	}
)

func (TypeDefComposite) isTypeDef()   {}
func (TypeDefVariant) isTypeDef()     {}
func (TypeDefSequence) isTypeDef()    {}
func (TypeDefArray) isTypeDef()       {}
func (TypeDefTuple) isTypeDef()       {}
func (TypeDefPrimitive) isTypeDef()   {}
func (TypeDefCompact) isTypeDef()     {}
func (TypeDefBitSequence) isTypeDef() {}

// Type is a single entry of the portable type registry.
type Type struct {
	Path       Path
	TypeParams []TypeParam
	Def        TypeDef
	Docs       []string
}

// FindParam returns the type parameter with the given name, or nil.
func (t *Type) FindParam(name string) *TypeParam {
	for i := range t.TypeParams {
		if t.TypeParams[i].Name == name {
			return &t.TypeParams[i]
		}
	}
	return nil
}
