package scaledecode

import (
	"strings"

	"github.com/rpcpool/polkadot-faithful/scaleinfo"
)

// Hint is a semantic tag derived from type paths, field names or signed
// extension identifiers, propagated down the tree until an applicable value
// consumes it. A hint that never finds an applicable value is dropped
// silently; hints never fail a decode.
type Hint int

const (
	HintNone Hint = iota
	HintBalance
	HintTip
	HintNonce
	HintSpecVersion
	HintTxVersion
	HintGenesisHash
	HintBlockHash
	HintCheckMetadataHash
	HintSpecName
)

// HintFromPath derives a hint from a type path.
func HintFromPath(path scaleinfo.Path) Hint {
	if strings.HasSuffix(path.Ident(), "Balance") {
		return HintBalance
	}
	return HintNone
}

// HintFromField derives a hint from a field name or field type name.
func HintFromField(field *scaleinfo.Field) Hint {
	switch field.Name {
	case "tip":
		return HintTip
	case "nonce":
		return HintNonce
	case "spec_version":
		return HintSpecVersion
	case "transaction_version":
		return HintTxVersion
	case "spec_name":
		return HintSpecName
	}
	if strings.Contains(field.TypeName, "Balance") {
		return HintBalance
	}
	return HintNone
}

// HintFromExtMeta derives a hint from a signed extension identifier.
func HintFromExtMeta(ext *scaleinfo.SignedExtensionMeta) Hint {
	switch ext.Identifier {
	case "CheckSpecVersion":
		return HintSpecVersion
	case "CheckTxVersion":
		return HintTxVersion
	case "CheckGenesis":
		return HintGenesisHash
	case "CheckMortality":
		return HintBlockHash
	case "CheckNonce":
		return HintNonce
	case "ChargeTransactionPayment":
		return HintTip
	case "CheckMetadataHash":
		return HintCheckMetadataHash
	}
	return HintNone
}

// UnsignedInteger finalizes the hint for an unsigned integer value.
func (h Hint) UnsignedInteger() SpecialtyUnsignedInteger {
	switch h {
	case HintBalance:
		return UnsignedBalance
	case HintTip:
		return UnsignedTip
	case HintNonce:
		return UnsignedNonce
	case HintSpecVersion:
		return UnsignedSpecVersion
	case HintTxVersion:
		return UnsignedTxVersion
	}
	return UnsignedNone
}

// Hash256 finalizes the hint for an H256 value.
func (h Hint) Hash256() SpecialtyH256 {
	switch h {
	case HintGenesisHash:
		return Hash256GenesisHash
	case HintBlockHash:
		return Hash256BlockHash
	}
	return Hash256None
}

// Str finalizes the hint for a text value.
func (h Hint) Str() SpecialtyStr {
	if h == HintSpecName {
		return StrSpecName
	}
	return StrNone
}

// specialtyTypeHinted marks types whose path alone selects a dedicated
// decoding routine, regardless of their structural definition.
type specialtyTypeHinted int

const (
	specialtyNone specialtyTypeHinted = iota
	specialtyAccountID32
	specialtyEra
	specialtyH160
	specialtyH256
	specialtyH512
	specialtyPerU16
	specialtyPercent
	specialtyPermill
	specialtyPerbill
	specialtyPerquintill
	specialtyCall
)

func specialtyFromPath(path scaleinfo.Path) specialtyTypeHinted {
	switch path.Ident() {
	case "AccountId32":
		return specialtyAccountID32
	case "Era":
		return specialtyEra
	case "H160":
		return specialtyH160
	case "H256":
		return specialtyH256
	case "H512":
		return specialtyH512
	case "PerU16":
		return specialtyPerU16
	case "Percent":
		return specialtyPercent
	case "Permill":
		return specialtyPermill
	case "Perbill":
		return specialtyPerbill
	case "Perquintill":
		return specialtyPerquintill
	case "Call", "RuntimeCall":
		return specialtyCall
	}
	return specialtyNone
}
