package scaledecode

import (
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/rpcpool/polkadot-faithful/scalebuf"
	"github.com/rpcpool/polkadot-faithful/scaleinfo"
)

// A signable payload is the call followed by the signed-extension data, in
// the order the metadata lists the extensions: first every extension's
// in-extrinsic value, then every extension's additional-signed value.
//
// Decoding puts a set of requirements on the extensions: the metadata spec
// version and the chain genesis hash must each occur exactly once, era and
// block hash at most once, and a transaction with an immortal era must
// carry the genesis hash as its block hash. The spec version and genesis
// hash are what ties the payload to the correct chain and metadata.

// Signable extension-list violations.
var (
	ErrBlockHashTwice   = errors.New("signable transaction extensions contain more than one block hash entry")
	ErrEraTwice         = errors.New("signable transaction extensions contain more than one era entry")
	ErrGenesisHashTwice = errors.New("signable transaction extensions contain more than one genesis hash entry; unable to verify that correct chain is used for parsing")
	ErrNoGenesisHash    = errors.New("signable transaction extensions do not include chain genesis hash; unable to verify that correct chain is used for parsing")
	ErrNoSpecVersion    = errors.New("signable transaction extensions do not include metadata spec version; unable to verify that correct metadata version is used for parsing")
	ErrSpecVersionTwice = errors.New("signable transaction extensions contain more than one metadata spec version; unable to verify that correct metadata version is used for parsing")
)

// ErrCutSignable reports a payload that cannot be separated into call data
// and extensions data.
var ErrCutSignable = errors.New("unable to separate signable transaction data into call data and extensions data")

// ErrImmortalHashMismatch reports a block hash differing from the genesis
// hash in a transaction with an immortal era.
var ErrImmortalHashMismatch = errors.New("block hash does not match the chain genesis hash in transaction with immortal era")

// NotACallError reports a signable payload whose leading data is not a
// call.
type NotACallError struct {
	ID uint32
}

func (e NotACallError) Error() string {
	return fmt.Sprintf("decoded signable transaction is not a call; unexpected structure of calls descriptor type %d", e.ID)
}

// SomeDataNotUsedExtensionsError reports extensions data left over after
// the extension schedule was decoded in full.
type SomeDataNotUsedExtensionsError struct {
	From int
}

func (e SomeDataNotUsedExtensionsError) Error() string {
	return fmt.Sprintf("some extensions data (input positions [%d..]) remained unused after decoding", e.From)
}

// WrongGenesisHashError reports a genesis hash in the extensions differing
// from the expected one.
type WrongGenesisHashError struct {
	AsDecoded [32]byte
	Expected  [32]byte
}

func (e WrongGenesisHashError) Error() string {
	return fmt.Sprintf("wrong chain: apparent genesis hash in extensions %s does not match the expected one %s", hex.EncodeToString(e.AsDecoded[:]), hex.EncodeToString(e.Expected[:]))
}

// WrongSpecVersionError reports a spec version in the extensions differing
// from the metadata's.
type WrongSpecVersionError struct {
	AsDecoded  string
	InMetadata string
}

func (e WrongSpecVersionError) Error() string {
	return fmt.Sprintf("wrong metadata spec version: when decoding extensions data with metadata version %s, the apparent spec version in extensions is %s", e.InMetadata, e.AsDecoded)
}

func wrapSignableParsing(err error) error {
	return fmt.Errorf("error parsing signable transaction data: %w", err)
}

func wrapExtensionsList(err error) error {
	return fmt.Errorf("extensions list error: %w", err)
}

// Signable is a decoded signable payload.
type Signable struct {
	Call       Call
	Extensions []ExtendedData
}

// DecodeAsSignable decodes a signable payload (call bytes followed by
// extensions bytes) against the metadata. genesisHash, when known, is
// checked against the genesis hash found in the extensions.
func DecodeAsSignable(input scalebuf.Buffer, meta *scaleinfo.Metadata, genesisHash *[32]byte) (*Signable, error) {
	params, err := extrinsicTypeParams(meta)
	if err != nil {
		return nil, wrapSignableParsing(err)
	}
	callTy := findParam(params, callIndicator)
	if callTy == nil {
		return nil, wrapSignableParsing(ErrExtrinsicNoCallParam)
	}

	position := 0
	callData, err := DecodeWithType(*callTy, input, &position, meta.Types, NewPropagated())
	if err != nil {
		return nil, wrapSignableParsing(err)
	}
	call, ok := callData.Data.(Call)
	if !ok {
		return nil, NotACallError{ID: *callTy}
	}

	extensionsMeta := meta.Extrinsic.SignedExtensions
	if len(extensionsMeta) == 0 && position != input.TotalLen() {
		return nil, ErrCutSignable
	}

	extensions := make([]ExtendedData, 0, 2*len(extensionsMeta))
	for i := range extensionsMeta {
		ext := &extensionsMeta[i]
		decoded, err := DecodeWithType(ext.Ty, input, &position, meta.Types, PropagatedFromExtMeta(ext))
		if err != nil {
			return nil, wrapSignableParsing(err)
		}
		extensions = append(extensions, decoded)
	}
	for i := range extensionsMeta {
		ext := &extensionsMeta[i]
		decoded, err := DecodeWithType(ext.AdditionalSigned, input, &position, meta.Types, PropagatedFromExtMeta(ext))
		if err != nil {
			return nil, wrapSignableParsing(err)
		}
		extensions = append(extensions, decoded)
	}
	if position != input.TotalLen() {
		return nil, SomeDataNotUsedExtensionsError{From: position}
	}

	if err := checkExtensions(extensions, meta, genesisHash); err != nil {
		return nil, err
	}
	return &Signable{Call: call, Extensions: extensions}, nil
}

type extensionFacts struct {
	specVersions  []string
	genesisHashes [][32]byte
	blockHashes   [][32]byte
	eras          []Era
}

func checkExtensions(extensions []ExtendedData, meta *scaleinfo.Metadata, genesisHash *[32]byte) error {
	var facts extensionFacts
	for i := range extensions {
		collectExtensionFacts(extensions[i].Data, &facts)
	}

	switch {
	case len(facts.specVersions) == 0:
		return wrapExtensionsList(ErrNoSpecVersion)
	case len(facts.specVersions) > 1:
		return wrapExtensionsList(ErrSpecVersionTwice)
	}
	switch {
	case len(facts.genesisHashes) == 0:
		return wrapExtensionsList(ErrNoGenesisHash)
	case len(facts.genesisHashes) > 1:
		return wrapExtensionsList(ErrGenesisHashTwice)
	}
	if len(facts.eras) > 1 {
		return wrapExtensionsList(ErrEraTwice)
	}
	if len(facts.blockHashes) > 1 {
		return wrapExtensionsList(ErrBlockHashTwice)
	}

	inMetadata, err := SpecNameVersionFromMetadata(meta)
	if err != nil {
		return fmt.Errorf("unexpected structure of the metadata: %w", err)
	}
	if facts.specVersions[0] != inMetadata.PrintedSpecVersion {
		return WrongSpecVersionError{AsDecoded: facts.specVersions[0], InMetadata: inMetadata.PrintedSpecVersion}
	}

	decodedGenesis := facts.genesisHashes[0]
	if genesisHash != nil && decodedGenesis != *genesisHash {
		return WrongGenesisHashError{AsDecoded: decodedGenesis, Expected: *genesisHash}
	}
	if len(facts.eras) == 1 && facts.eras[0].Immortal && len(facts.blockHashes) == 1 {
		if facts.blockHashes[0] != decodedGenesis {
			return ErrImmortalHashMismatch
		}
	}
	return nil
}

func collectExtensionFacts(data ParsedData, facts *extensionFacts) {
	switch value := data.(type) {
	case Era:
		facts.eras = append(facts.eras, value)
	case H256:
		switch value.Specialty {
		case Hash256GenesisHash:
			facts.genesisHashes = append(facts.genesisHashes, value.Value)
		case Hash256BlockHash:
			facts.blockHashes = append(facts.blockHashes, value.Value)
		}
	default:
		if printed, ok := specVersionValue(data); ok {
			facts.specVersions = append(facts.specVersions, printed)
			return
		}
		forEachChild(data, func(child ParsedData) {
			collectExtensionFacts(child, facts)
		})
	}
}

// forEachChild visits the direct children of a ParsedData node.
func forEachChild(data ParsedData, visit func(ParsedData)) {
	switch value := data.(type) {
	case Composite:
		for i := range value.Fields {
			visit(value.Fields[i].Data.Data)
		}
	case Variant:
		for i := range value.Fields {
			visit(value.Fields[i].Data.Data)
		}
	case Call:
		for i := range value.Fields {
			visit(value.Fields[i].Data.Data)
		}
	case Sequence:
		for i := range value.Elems {
			visit(value.Elems[i].Data)
		}
	case Array:
		for i := range value.Elems {
			visit(value.Elems[i].Data)
		}
	case Tuple:
		for i := range value.Elems {
			visit(value.Elems[i].Data)
		}
	}
}
