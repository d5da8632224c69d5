package scaleinfo

// StorageHasher is the hash applied to one part of a storage map key.
//
// The *Concat variants append the raw encoded key after the hash, so the key
// can be recovered (and the hash re-verified) from the storage key alone.
type StorageHasher int

const (
	HasherBlake2_128 StorageHasher = iota
	HasherBlake2_256
	HasherBlake2_128Concat
	HasherTwox128
	HasherTwox256
	HasherTwox64Concat
	HasherIdentity
)

func (h StorageHasher) String() string {
	switch h {
	case HasherBlake2_128:
		return "Blake2_128"
	case HasherBlake2_256:
		return "Blake2_256"
	case HasherBlake2_128Concat:
		return "Blake2_128Concat"
	case HasherTwox128:
		return "Twox128"
	case HasherTwox256:
		return "Twox256"
	case HasherTwox64Concat:
		return "Twox64Concat"
	case HasherIdentity:
		return "Identity"
	default:
		return "UnknownHasher"
	}
}

// StorageEntryType describes the shape of a storage entry: either a plain
// value or a (possibly multi-part) map.
type StorageEntryType interface {
	isStorageEntryType()
}

// StorageEntryPlain is a plain storage value; the key is the bare
// twox128(pallet prefix) ++ twox128(entry name) prefix.
type StorageEntryPlain struct {
	Value uint32
}

// StorageEntryMap is a storage map; the key carries one hashed part per
// hasher after the prefix. With more than one hasher the key type must be a
// tuple of matching arity.
type StorageEntryMap struct {
	Hashers []StorageHasher
	Key     uint32
	Value   uint32
}

func (StorageEntryPlain) isStorageEntryType() {}
func (StorageEntryMap) isStorageEntryType()   {}

// StorageEntryMeta describes one storage entry of a pallet.
type StorageEntryMeta struct {
	Name string
	Ty   StorageEntryType
	Docs []string
}

// PalletStorageMeta is the storage section of a pallet.
type PalletStorageMeta struct {
	Prefix string
	Items  []StorageEntryMeta
}

// ConstantMeta is a pallet constant: a name, a type id, and the
// SCALE-encoded value.
type ConstantMeta struct {
	Name  string
	Ty    uint32
	Value []byte
	Docs  []string
}

// PalletMeta is the slice of pallet metadata the decoders consume.
type PalletMeta struct {
	Name      string
	Index     uint8
	Constants []ConstantMeta
	Storage   *PalletStorageMeta
}

// SignedExtensionMeta describes one signed extension: the data it
// contributes to the extrinsic body (Ty) and to the signed payload
// (AdditionalSigned).
type SignedExtensionMeta struct {
	Identifier       string
	Ty               uint32
	AdditionalSigned uint32
}

// ExtrinsicMeta describes the chain's extrinsic type.
type ExtrinsicMeta struct {
	// Ty is the unchecked extrinsic type id; its type parameters name the
	// Address, Call, Signature and Extra types.
	Ty uint32

	// Version is the extrinsic format version, matched against the low 7
	// bits of the version byte on the wire.
	Version uint8

	SignedExtensions []SignedExtensionMeta
}

// Metadata is the V14 runtime metadata slice consumed by the decoders.
type Metadata struct {
	Pallets   []PalletMeta
	Extrinsic ExtrinsicMeta
	Types     *PortableRegistry
}

// FindPallet returns the pallet with the given name, or nil.
func (m *Metadata) FindPallet(name string) *PalletMeta {
	for i := range m.Pallets {
		if m.Pallets[i].Name == name {
			return &m.Pallets[i]
		}
	}
	return nil
}

// FindConstant returns the constant with the given name, or nil.
func (p *PalletMeta) FindConstant(name string) *ConstantMeta {
	for i := range p.Constants {
		if p.Constants[i].Name == name {
			return &p.Constants[i]
		}
	}
	return nil
}
