package scaleinfo

import (
	"encoding/hex"
	"fmt"
	"strings"

	jsoniter "github.com/json-iterator/go"
)

// JSON (un)marshalling of the portable registry and the metadata slice.
//
// The registry follows the scale-info JSON shape (the one produced by
// serde-serializing a PortableRegistry): a list of {"id": N, "type": {...}}
// entries where the type definition is keyed by kind ("composite",
// "variant", "sequence", "array", "tuple", "primitive", "compact",
// "bitsequence").

var jsonCodec = jsoniter.ConfigCompatibleWithStandardLibrary

type jsonRegistryEntry struct {
	ID   uint32   `json:"id"`
	Type jsonType `json:"type"`
}

type jsonType struct {
	Path   []string        `json:"path,omitempty"`
	Params []jsonTypeParam `json:"params,omitempty"`
	Def    jsonTypeDef     `json:"def"`
	Docs   []string        `json:"docs,omitempty"`
}

type jsonTypeParam struct {
	Name string  `json:"name"`
	Type *uint32 `json:"type,omitempty"`
}

type jsonTypeDef struct {
	Composite *jsonComposite   `json:"composite,omitempty"`
	Variant   *jsonVariant     `json:"variant,omitempty"`
	Sequence  *jsonSequence    `json:"sequence,omitempty"`
	Array     *jsonArray       `json:"array,omitempty"`
	Tuple     *[]uint32        `json:"tuple,omitempty"`
	Primitive *string          `json:"primitive,omitempty"`
	Compact   *jsonCompact     `json:"compact,omitempty"`
	BitSeq    *jsonBitSequence `json:"bitsequence,omitempty"`
}

type jsonComposite struct {
	Fields []jsonField `json:"fields,omitempty"`
}

type jsonVariant struct {
	Variants []jsonVariantDef `json:"variants,omitempty"`
}

type jsonVariantDef struct {
	Name   string      `json:"name"`
	Index  uint8       `json:"index"`
	Fields []jsonField `json:"fields,omitempty"`
	Docs   []string    `json:"docs,omitempty"`
}

type jsonField struct {
	Name     string   `json:"name,omitempty"`
	Type     uint32   `json:"type"`
	TypeName string   `json:"typeName,omitempty"`
	Docs     []string `json:"docs,omitempty"`
}

type jsonSequence struct {
	Type uint32 `json:"type"`
}

type jsonArray struct {
	Len  uint32 `json:"len"`
	Type uint32 `json:"type"`
}

type jsonCompact struct {
	Type uint32 `json:"type"`
}

type jsonBitSequence struct {
	BitStoreType uint32 `json:"bit_store_type"`
	BitOrderType uint32 `json:"bit_order_type"`
}

var jsonPrimitives = map[string]Primitive{
	"bool": PrimitiveBool,
	"char": PrimitiveChar,
	"str":  PrimitiveStr,
	"u8":   PrimitiveU8,
	"u16":  PrimitiveU16,
	"u32":  PrimitiveU32,
	"u64":  PrimitiveU64,
	"u128": PrimitiveU128,
	"u256": PrimitiveU256,
	"i8":   PrimitiveI8,
	"i16":  PrimitiveI16,
	"i32":  PrimitiveI32,
	"i64":  PrimitiveI64,
	"i128": PrimitiveI128,
	"i256": PrimitiveI256,
}

func (j *jsonType) toType() (*Type, error) {
	out := &Type{
		Path: Path(j.Path),
		Docs: j.Docs,
	}
	for _, p := range j.Params {
		out.TypeParams = append(out.TypeParams, TypeParam{Name: p.Name, Ty: p.Type})
	}
	def := j.Def
	switch {
	case def.Composite != nil:
		out.Def = TypeDefComposite{Fields: toFields(def.Composite.Fields)}
	case def.Variant != nil:
		v := TypeDefVariant{}
		for _, jv := range def.Variant.Variants {
			v.Variants = append(v.Variants, VariantDef{
				Name:   jv.Name,
				Index:  jv.Index,
				Fields: toFields(jv.Fields),
				Docs:   jv.Docs,
			})
		}
		out.Def = v
	case def.Sequence != nil:
		out.Def = TypeDefSequence{Elem: def.Sequence.Type}
	case def.Array != nil:
		out.Def = TypeDefArray{Len: def.Array.Len, Elem: def.Array.Type}
	case def.Tuple != nil:
		out.Def = TypeDefTuple{Fields: *def.Tuple}
	case def.Primitive != nil:
		kind, ok := jsonPrimitives[*def.Primitive]
		if !ok {
			return nil, fmt.Errorf("unknown primitive kind %q", *def.Primitive)
		}
		out.Def = TypeDefPrimitive{Kind: kind}
	case def.Compact != nil:
		out.Def = TypeDefCompact{Inner: def.Compact.Type}
	case def.BitSeq != nil:
		out.Def = TypeDefBitSequence{BitStoreTy: def.BitSeq.BitStoreType, BitOrderTy: def.BitSeq.BitOrderType}
	default:
		return nil, fmt.Errorf("type definition has no known kind")
	}
	return out, nil
}

func toFields(in []jsonField) []Field {
	out := make([]Field, 0, len(in))
	for _, f := range in {
		out = append(out, Field{Name: f.Name, Ty: f.Type, TypeName: f.TypeName, Docs: f.Docs})
	}
	return out
}

// RegistryFromJSON parses a portable registry from its scale-info JSON
// form: a list of {"id", "type"} entries.
func RegistryFromJSON(data []byte) (*PortableRegistry, error) {
	var entries []jsonRegistryEntry
	if err := jsonCodec.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("failed to unmarshal type registry: %w", err)
	}
	types := make(map[uint32]*Type, len(entries))
	for _, e := range entries {
		ty, err := e.Type.toType()
		if err != nil {
			return nil, fmt.Errorf("type id %d: %w", e.ID, err)
		}
		types[e.ID] = ty
	}
	return NewPortableRegistry(types), nil
}

type jsonMetadata struct {
	Pallets   []jsonPallet        `json:"pallets"`
	Extrinsic jsonExtrinsic       `json:"extrinsic"`
	Types     []jsonRegistryEntry `json:"types"`
}

type jsonPallet struct {
	Name      string             `json:"name"`
	Index     uint8              `json:"index"`
	Constants []jsonConstant     `json:"constants,omitempty"`
	Storage   *jsonPalletStorage `json:"storage,omitempty"`
}

type jsonConstant struct {
	Name  string   `json:"name"`
	Type  uint32   `json:"type"`
	Value string   `json:"value"` // hex, 0x-prefixed
	Docs  []string `json:"docs,omitempty"`
}

type jsonPalletStorage struct {
	Prefix string             `json:"prefix"`
	Items  []jsonStorageEntry `json:"items"`
}

type jsonStorageEntry struct {
	Name string               `json:"name"`
	Type jsonStorageEntryType `json:"type"`
	Docs []string             `json:"docs,omitempty"`
}

type jsonStorageEntryType struct {
	Plain *uint32         `json:"plain,omitempty"`
	Map   *jsonStorageMap `json:"map,omitempty"`
}

type jsonStorageMap struct {
	Hashers []string `json:"hashers"`
	Key     uint32   `json:"key"`
	Value   uint32   `json:"value"`
}

type jsonExtrinsic struct {
	Type             uint32              `json:"type"`
	Version          uint8               `json:"version"`
	SignedExtensions []jsonSignedExtMeta `json:"signedExtensions,omitempty"`
}

type jsonSignedExtMeta struct {
	Identifier       string `json:"identifier"`
	Type             uint32 `json:"type"`
	AdditionalSigned uint32 `json:"additionalSigned"`
}

var jsonHashers = map[string]StorageHasher{
	"Blake2_128":       HasherBlake2_128,
	"Blake2_256":       HasherBlake2_256,
	"Blake2_128Concat": HasherBlake2_128Concat,
	"Twox128":          HasherTwox128,
	"Twox256":          HasherTwox256,
	"Twox64Concat":     HasherTwox64Concat,
	"Identity":         HasherIdentity,
}

// MetadataFromJSON parses the metadata slice (pallets, extrinsic
// descriptor, type registry) from JSON.
func MetadataFromJSON(data []byte) (*Metadata, error) {
	var jm jsonMetadata
	if err := jsonCodec.Unmarshal(data, &jm); err != nil {
		return nil, fmt.Errorf("failed to unmarshal metadata: %w", err)
	}

	types := make(map[uint32]*Type, len(jm.Types))
	for _, e := range jm.Types {
		ty, err := e.Type.toType()
		if err != nil {
			return nil, fmt.Errorf("type id %d: %w", e.ID, err)
		}
		types[e.ID] = ty
	}

	meta := &Metadata{
		Extrinsic: ExtrinsicMeta{
			Ty:      jm.Extrinsic.Type,
			Version: jm.Extrinsic.Version,
		},
		Types: NewPortableRegistry(types),
	}
	for _, ext := range jm.Extrinsic.SignedExtensions {
		meta.Extrinsic.SignedExtensions = append(meta.Extrinsic.SignedExtensions, SignedExtensionMeta{
			Identifier:       ext.Identifier,
			Ty:               ext.Type,
			AdditionalSigned: ext.AdditionalSigned,
		})
	}

	for _, jp := range jm.Pallets {
		pallet := PalletMeta{Name: jp.Name, Index: jp.Index}
		for _, jc := range jp.Constants {
			value, err := DecodeHex(jc.Value)
			if err != nil {
				return nil, fmt.Errorf("pallet %s constant %s: %w", jp.Name, jc.Name, err)
			}
			pallet.Constants = append(pallet.Constants, ConstantMeta{
				Name:  jc.Name,
				Ty:    jc.Type,
				Value: value,
				Docs:  jc.Docs,
			})
		}
		if jp.Storage != nil {
			storage := &PalletStorageMeta{Prefix: jp.Storage.Prefix}
			for _, ji := range jp.Storage.Items {
				entry := StorageEntryMeta{Name: ji.Name, Docs: ji.Docs}
				switch {
				case ji.Type.Plain != nil:
					entry.Ty = StorageEntryPlain{Value: *ji.Type.Plain}
				case ji.Type.Map != nil:
					m := StorageEntryMap{Key: ji.Type.Map.Key, Value: ji.Type.Map.Value}
					for _, h := range ji.Type.Map.Hashers {
						hasher, ok := jsonHashers[h]
						if !ok {
							return nil, fmt.Errorf("pallet %s storage %s: unknown hasher %q", jp.Name, ji.Name, h)
						}
						m.Hashers = append(m.Hashers, hasher)
					}
					entry.Ty = m
				default:
					return nil, fmt.Errorf("pallet %s storage %s: entry type is neither plain nor map", jp.Name, ji.Name)
				}
				storage.Items = append(storage.Items, entry)
			}
			pallet.Storage = storage
		}
		meta.Pallets = append(meta.Pallets, pallet)
	}
	return meta, nil
}

// DecodeHex decodes a hex string, tolerating a 0x prefix.
func DecodeHex(s string) ([]byte, error) {
	s = strings.TrimPrefix(s, "0x")
	out, err := hex.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("invalid hex: %w", err)
	}
	return out, nil
}
