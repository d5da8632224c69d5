package scaledecode

import (
	"errors"
	"fmt"

	"github.com/rpcpool/polkadot-faithful/scalebuf"
	"github.com/rpcpool/polkadot-faithful/scaleinfo"
)

// Spec name and version discovery: the `Version` constant of the `System`
// pallet decodes into a runtime version composite, whose spec-version and
// spec-name fields are recognized through their hints.

// Metadata version constant search errors.
var (
	ErrNoSpecNameIdentifier           = errors.New("no spec name found in decoded Version constant")
	ErrNoSpecVersionIdentifier        = errors.New("no spec version found in decoded Version constant")
	ErrNoSystemPallet                 = errors.New("no System pallet in metadata")
	ErrNoVersionInConstants           = errors.New("no Version constant in metadata System pallet")
	ErrRuntimeVersionNotDecodeable    = errors.New("Version constant from metadata System pallet could not be decoded")
	ErrSpecNameIdentifierTwice        = errors.New("spec name associated identifier found twice when decoding Version constant")
	ErrSpecVersionIdentifierTwice     = errors.New("spec version associated identifier found twice when decoding Version constant")
	ErrUnexpectedRuntimeVersionFormat = errors.New("decoded Version constant is not a composite")
)

// SpecNameVersion is the chain spec name and printed spec version from the
// metadata.
type SpecNameVersion struct {
	SpecName           string
	PrintedSpecVersion string
}

// SpecNameVersionFromMetadata locates the System pallet Version constant,
// decodes it against its declared type, and pulls out the spec name and
// spec version. Both must occur exactly once.
func SpecNameVersionFromMetadata(meta *scaleinfo.Metadata) (*SpecNameVersion, error) {
	system := meta.FindPallet("System")
	if system == nil {
		return nil, ErrNoSystemPallet
	}
	constant := system.FindConstant("Version")
	if constant == nil {
		return nil, ErrNoVersionInConstants
	}
	decoded, err := DecodeAllAsType(constant.Ty, scalebuf.Bytes(constant.Value), meta.Types)
	if err != nil {
		return nil, ErrRuntimeVersionNotDecodeable
	}
	composite, ok := decoded.Data.(Composite)
	if !ok {
		return nil, ErrUnexpectedRuntimeVersionFormat
	}

	var specVersion, specName *string
	for _, field := range composite.Fields {
		if value, ok := specVersionValue(field.Data.Data); ok {
			if specVersion != nil {
				return nil, ErrSpecVersionIdentifierTwice
			}
			specVersion = &value
		}
		if text, ok := field.Data.Data.(Text); ok && text.Specialty == StrSpecName {
			if specName != nil {
				return nil, ErrSpecNameIdentifierTwice
			}
			name := text.Text
			specName = &name
		}
	}
	if specVersion == nil {
		return nil, ErrNoSpecVersionIdentifier
	}
	if specName == nil {
		return nil, ErrNoSpecNameIdentifier
	}
	return &SpecNameVersion{SpecName: *specName, PrintedSpecVersion: *specVersion}, nil
}

// specVersionValue returns the printed value of an unsigned integer tagged
// as the spec version.
func specVersionValue(data ParsedData) (string, bool) {
	switch value := data.(type) {
	case U8:
		if value.Specialty == UnsignedSpecVersion {
			return fmt.Sprint(value.Value), true
		}
	case U16:
		if value.Specialty == UnsignedSpecVersion {
			return fmt.Sprint(value.Value), true
		}
	case U32:
		if value.Specialty == UnsignedSpecVersion {
			return fmt.Sprint(value.Value), true
		}
	case U64:
		if value.Specialty == UnsignedSpecVersion {
			return fmt.Sprint(value.Value), true
		}
	case U128:
		if value.Specialty == UnsignedSpecVersion {
			return value.Value.String(), true
		}
	}
	return "", false
}
