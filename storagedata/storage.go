// Package storagedata interprets chain storage entries: the raw storage key
// (prefix plus hasher-wrapped key parts) and the corresponding value.
//
// A storage key starts with twox128(pallet prefix) ++ twox128(entry name).
// Plain entries stop there; map entries append one part per hasher. The
// *Concat hashers carry the encoded key after the hash, so the part can be
// decoded and the hash re-verified against it.
package storagedata

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/rpcpool/polkadot-faithful/hashers"
	"github.com/rpcpool/polkadot-faithful/scalebuf"
	"github.com/rpcpool/polkadot-faithful/scaledecode"
	"github.com/rpcpool/polkadot-faithful/scaleinfo"
)

// PrefixLen is the length of the full storage key prefix, two twox128
// hashes.
const PrefixLen = 2 * hashers.Twox128Len

// Storage entry parsing errors.
var (
	ErrKeyPartHashMismatch          = errors.New("hash part of the storage key does not match the key data")
	ErrKeyPartsUnused               = errors.New("during the storage key parsing a part of the key remained unused")
	ErrKeyShorterThanPrefix         = errors.New("provided storage key is shorter than the expected prefix")
	ErrMultipleHashesNotATuple      = errors.New("hashers length is not 1, but the key type is not a tuple")
	ErrMultipleHashesNumberMismatch = errors.New("hashers length does not match the number of fields in a tuple key type")
	ErrPlainKeyExceedsPrefix        = errors.New("plain storage key contains data other than the prefix")
)

func wrapParsingKey(err error) error {
	return fmt.Errorf("error parsing the storage key: %w", err)
}

func wrapParsingValue(err error) error {
	return fmt.Errorf("error parsing the storage value: %w", err)
}

// Storage is a parsed storage entry: key, value, and the entry docs shared
// by every key under the same prefix.
type Storage struct {
	Key   KeyData
	Value scaledecode.ExtendedData
	Docs  string
}

// KeyData is the processed key. Exactly one of KeyPlain, KeySingleHash,
// KeyTupleHash.
type KeyData interface {
	isKeyData()
}

type (
	// KeyPlain is a plain storage key: prefix only.
	KeyPlain struct{}

	// KeySingleHash is a map key with a single hasher.
	KeySingleHash struct {
		Content KeyPart
	}

	// KeyTupleHash is a map key with several hashers; one part per tuple
	// field.
	KeyTupleHash struct {
		Content []KeyPart
		Info    scaledecode.Info
	}
)

func (KeyPlain) isKeyData()      {}
func (KeySingleHash) isKeyData() {}
func (KeyTupleHash) isKeyData()  {}

// KeyPart is one processed key part. Exactly one of KeyPartHash,
// KeyPartParsed.
type KeyPart interface {
	isKeyPart()
}

type (
	// KeyPartHash is an opaque hash with no concatenated raw part; nothing
	// to decode in-band.
	KeyPartHash struct {
		Hash HashData
	}

	// KeyPartParsed is the decoded data following a concat hash (or an
	// identity "hash").
	KeyPartParsed struct {
		Data scaledecode.ExtendedData
	}
)

func (KeyPartHash) isKeyPart()   {}
func (KeyPartParsed) isKeyPart() {}

// HashData is a hash that was cut from the key without decoding, tagged
// with the key component type id so callers can attempt out-of-band
// decoding.
type HashData struct {
	Hasher scaleinfo.StorageHasher
	Hash   []byte
	TypeID uint32
}

// DecodeAsStorageEntry parses a storage entry: both the key (used as-is,
// prefix included but not verified) and the corresponding value. Both must
// be consumed completely.
func DecodeAsStorageEntry(keyInput, valueInput scalebuf.Buffer, entry *scaleinfo.StorageEntryMeta, reg scaleinfo.Registry) (*Storage, error) {
	docs := collectDocs(entry.Docs)

	positionAfterPrefix := PrefixLen
	if positionAfterPrefix > keyInput.TotalLen() {
		return nil, ErrKeyShorterThanPrefix
	}

	switch ty := entry.Ty.(type) {
	case scaleinfo.StorageEntryPlain:
		if positionAfterPrefix != keyInput.TotalLen() {
			return nil, ErrPlainKeyExceedsPrefix
		}
		value, err := scaledecode.DecodeAllAsType(ty.Value, valueInput, reg)
		if err != nil {
			return nil, wrapParsingValue(err)
		}
		return &Storage{Key: KeyPlain{}, Value: value, Docs: docs}, nil

	case scaleinfo.StorageEntryMap:
		key, err := ProcessKeyMapped(ty.Hashers, ty.Key, keyInput, positionAfterPrefix, reg)
		if err != nil {
			return nil, err
		}
		value, err := scaledecode.DecodeAllAsType(ty.Value, valueInput, reg)
		if err != nil {
			return nil, wrapParsingValue(err)
		}
		return &Storage{Key: key, Value: value, Docs: docs}, nil

	default:
		return nil, wrapParsingKey(fmt.Errorf("unknown storage entry type %T", entry.Ty))
	}
}

// ProcessKeyMapped parses the key of a map storage entry, starting at the
// given position: PrefixLen for an as-is key, 0 for a key with the prefix
// trimmed. The key must be consumed completely.
func ProcessKeyMapped(hasherList []scaleinfo.StorageHasher, keyTy uint32, keyInput scalebuf.Buffer, position int, reg scaleinfo.Registry) (KeyData, error) {
	var out KeyData
	if len(hasherList) == 1 {
		content, err := processKeyPart(hasherList[0], keyTy, keyInput, &position, reg)
		if err != nil {
			return nil, err
		}
		out = KeySingleHash{Content: content}
	} else {
		keyTyResolved, err := reg.ResolveTy(keyTy)
		if err != nil {
			return nil, wrapParsingKey(err)
		}
		info := scaledecode.InfoFromTy(keyTyResolved)
		tuple, ok := keyTyResolved.Def.(scaleinfo.TypeDefTuple)
		if !ok {
			return nil, ErrMultipleHashesNotATuple
		}
		if len(tuple.Fields) != len(hasherList) {
			return nil, ErrMultipleHashesNumberMismatch
		}
		content := make([]KeyPart, 0, len(hasherList))
		for i, hasher := range hasherList {
			part, err := processKeyPart(hasher, tuple.Fields[i], keyInput, &position, reg)
			if err != nil {
				return nil, err
			}
			content = append(content, part)
		}
		out = KeyTupleHash{Content: content, Info: info}
	}
	if position != keyInput.TotalLen() {
		return nil, ErrKeyPartsUnused
	}
	return out, nil
}

func processKeyPart(hasher scaleinfo.StorageHasher, keyTy uint32, keyInput scalebuf.Buffer, position *int, reg scaleinfo.Registry) (KeyPart, error) {
	switch hasher {
	case scaleinfo.HasherBlake2_128:
		return cutHash(hasher, hashers.Blake2b128Len, keyTy, keyInput, position)
	case scaleinfo.HasherBlake2_256:
		return cutHash(hasher, hashers.Blake2b256Len, keyTy, keyInput, position)
	case scaleinfo.HasherTwox128:
		return cutHash(hasher, hashers.Twox128Len, keyTy, keyInput, position)
	case scaleinfo.HasherTwox256:
		return cutHash(hasher, hashers.Twox256Len, keyTy, keyInput, position)
	case scaleinfo.HasherBlake2_128Concat:
		return checkHash(hashers.Blake2b128Len, func(data []byte) []byte {
			h := hashers.Blake2b128(data)
			return h[:]
		}, keyTy, keyInput, position, reg)
	case scaleinfo.HasherTwox64Concat:
		return checkHash(hashers.Twox64Len, func(data []byte) []byte {
			h := hashers.Twox64(data)
			return h[:]
		}, keyTy, keyInput, position, reg)
	case scaleinfo.HasherIdentity:
		parsed, err := scaledecode.DecodeWithType(keyTy, keyInput, position, reg, scaledecode.NewPropagated())
		if err != nil {
			return nil, wrapParsingKey(err)
		}
		return KeyPartParsed{Data: parsed}, nil
	default:
		return nil, wrapParsingKey(fmt.Errorf("unknown storage hasher %d", hasher))
	}
}

// cutHash handles hashers with a known length and no concatenated
// decodeable part: the hash is cut from the key, nothing is parsed.
func cutHash(hasher scaleinfo.StorageHasher, hashLen int, keyTy uint32, keyInput scalebuf.Buffer, position *int) (KeyPart, error) {
	raw, err := keyInput.ReadSliceAt(*position, hashLen)
	if err != nil {
		return nil, wrapParsingKey(err)
	}
	*position += hashLen
	return KeyPartHash{Hash: HashData{
		Hasher: hasher,
		Hash:   append([]byte(nil), raw...),
		TypeID: keyTy,
	}}, nil
}

// checkHash handles the concat hashers: the hash is cut, the data after it
// is decoded, and the slice that was decoded is re-hashed and matched
// against the cut hash.
func checkHash(hashLen int, rehash func([]byte) []byte, keyTy uint32, keyInput scalebuf.Buffer, position *int, reg scaleinfo.Registry) (KeyPart, error) {
	hashPart, err := keyInput.ReadSliceAt(*position, hashLen)
	if err != nil {
		return nil, wrapParsingKey(err)
	}
	hashPart = append([]byte(nil), hashPart...)
	*position += hashLen

	decoderStart := *position
	parsed, err := scaledecode.DecodeWithType(keyTy, keyInput, position, reg, scaledecode.NewPropagated())
	if err != nil {
		return nil, wrapParsingKey(err)
	}
	decodedSlice, err := keyInput.ReadSliceAt(decoderStart, *position-decoderStart)
	if err != nil {
		return nil, wrapParsingKey(err)
	}
	if !bytes.Equal(hashPart, rehash(decodedSlice)) {
		return nil, ErrKeyPartHashMismatch
	}
	return KeyPartParsed{Data: parsed}, nil
}

// FindEntryForKey locates the pallet and storage entry whose prefix opens
// the given key. Returns nil, nil when no entry matches.
func FindEntryForKey(meta *scaleinfo.Metadata, key []byte) (*scaleinfo.PalletMeta, *scaleinfo.StorageEntryMeta, error) {
	if len(key) < PrefixLen {
		return nil, nil, ErrKeyShorterThanPrefix
	}
	for i := range meta.Pallets {
		pallet := &meta.Pallets[i]
		if pallet.Storage == nil {
			continue
		}
		palletHash := hashers.Twox128([]byte(pallet.Storage.Prefix))
		if !bytes.Equal(key[:hashers.Twox128Len], palletHash[:]) {
			continue
		}
		for j := range pallet.Storage.Items {
			entry := &pallet.Storage.Items[j]
			entryHash := hashers.Twox128([]byte(entry.Name))
			if bytes.Equal(key[hashers.Twox128Len:PrefixLen], entryHash[:]) {
				return pallet, entry, nil
			}
		}
	}
	return nil, nil, nil
}

func collectDocs(docs []string) string {
	out := ""
	for i, d := range docs {
		if i > 0 {
			out += "\n"
		}
		out += d
	}
	return out
}
