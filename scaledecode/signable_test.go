package scaledecode

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/rpcpool/polkadot-faithful/scalebuf"
	"github.com/rpcpool/polkadot-faithful/scaleinfo"
)

func testGenesisHash() [32]byte {
	var out [32]byte
	for i := range out {
		out[i] = 0xAB
	}
	return out
}

// signablePayload assembles call ++ extension values ++ additional-signed
// values for the testMetadata extension schedule.
func signablePayload(era byte, blockHash [32]byte, genesis [32]byte, specVersion []byte) []byte {
	out := append([]byte(nil), remarkCallBytes...)
	out = append(out, era)  // CheckMortality value
	out = append(out, 0x14) // CheckNonce value: compact(5)
	out = append(out, 0x00) // ChargeTransactionPayment value: compact(0)
	// CheckSpecVersion and CheckGenesis contribute no in-body value.
	out = append(out, blockHash[:]...)   // CheckMortality additional
	out = append(out, specVersion...)    // CheckSpecVersion additional
	out = append(out, genesis[:]...)     // CheckGenesis additional
	return out
}

func TestDecodeSignable(t *testing.T) {
	meta := testMetadata()
	genesis := testGenesisHash()

	payload := signablePayload(0x00, genesis, genesis, []byte{0x09, 0, 0, 0})
	signable, err := DecodeAsSignable(scalebuf.Bytes(payload), meta, &genesis)
	require.NoError(t, err)

	require.Equal(t, "System", signable.Call.Pallet)
	require.Equal(t, "remark", signable.Call.Name)
	// One entry per extension value, one per additional-signed value.
	require.Len(t, signable.Extensions, 10)
	require.Equal(t, Era{Immortal: true}, signable.Extensions[0].Data)
	require.Equal(t, U32{Value: 5, Specialty: UnsignedNonce}, signable.Extensions[1].Data)

	blockHash, ok := signable.Extensions[5].Data.(H256)
	require.True(t, ok)
	require.Equal(t, Hash256BlockHash, blockHash.Specialty)

	genesisHash, ok := signable.Extensions[9].Data.(H256)
	require.True(t, ok)
	require.Equal(t, Hash256GenesisHash, genesisHash.Specialty)
}

func TestSignableNoSpecVersion(t *testing.T) {
	meta := testMetadata()
	genesis := testGenesisHash()
	// Drop CheckSpecVersion from the schedule; its additional u32 goes too.
	exts := meta.Extrinsic.SignedExtensions
	meta.Extrinsic.SignedExtensions = append(append([]scaleinfo.SignedExtensionMeta(nil), exts[:3]...), exts[4])

	payload := append([]byte(nil), remarkCallBytes...)
	payload = append(payload, 0x00, 0x14, 0x00)
	payload = append(payload, genesis[:]...) // CheckMortality additional
	payload = append(payload, genesis[:]...) // CheckGenesis additional

	_, err := DecodeAsSignable(scalebuf.Bytes(payload), meta, &genesis)
	require.ErrorIs(t, err, ErrNoSpecVersion)
}

func TestSignableGenesisHashTwice(t *testing.T) {
	meta := testMetadata()
	genesis := testGenesisHash()
	meta.Extrinsic.SignedExtensions = append(meta.Extrinsic.SignedExtensions, scaleinfo.SignedExtensionMeta{
		Identifier: "CheckGenesis", Ty: 17, AdditionalSigned: 16,
	})

	payload := signablePayload(0x00, genesis, genesis, []byte{0x09, 0, 0, 0})
	payload = append(payload, genesis[:]...)

	_, err := DecodeAsSignable(scalebuf.Bytes(payload), meta, &genesis)
	require.ErrorIs(t, err, ErrGenesisHashTwice)
}

func TestSignableImmortalHashMismatch(t *testing.T) {
	meta := testMetadata()
	genesis := testGenesisHash()
	var otherHash [32]byte
	for i := range otherHash {
		otherHash[i] = 0xCD
	}

	payload := signablePayload(0x00, otherHash, genesis, []byte{0x09, 0, 0, 0})
	_, err := DecodeAsSignable(scalebuf.Bytes(payload), meta, &genesis)
	require.ErrorIs(t, err, ErrImmortalHashMismatch)
}

func TestSignableWrongSpecVersion(t *testing.T) {
	meta := testMetadata()
	genesis := testGenesisHash()

	payload := signablePayload(0x00, genesis, genesis, []byte{0x08, 0, 0, 0})
	_, err := DecodeAsSignable(scalebuf.Bytes(payload), meta, &genesis)
	require.Equal(t, WrongSpecVersionError{AsDecoded: "8", InMetadata: "9"}, err)
}

func TestSignableWrongGenesisHash(t *testing.T) {
	meta := testMetadata()
	genesis := testGenesisHash()
	var expected [32]byte
	for i := range expected {
		expected[i] = 0xEF
	}

	payload := signablePayload(0x00, genesis, genesis, []byte{0x09, 0, 0, 0})
	_, err := DecodeAsSignable(scalebuf.Bytes(payload), meta, &expected)
	require.Equal(t, WrongGenesisHashError{AsDecoded: genesis, Expected: expected}, err)
}

func TestSignableLeftoverExtensions(t *testing.T) {
	meta := testMetadata()
	genesis := testGenesisHash()

	payload := signablePayload(0x00, genesis, genesis, []byte{0x09, 0, 0, 0})
	expectedEnd := len(payload)
	payload = append(payload, 0xFF)

	_, err := DecodeAsSignable(scalebuf.Bytes(payload), meta, &genesis)
	require.Equal(t, SomeDataNotUsedExtensionsError{From: expectedEnd}, err)
}

func TestSignableNotACall(t *testing.T) {
	meta := testMetadata()
	genesis := testGenesisHash()
	extrinsicTy, err := meta.Types.ResolveTy(15)
	require.NoError(t, err)
	extrinsicTy.FindParam("Call").Ty = u32Ptr(2)

	payload := []byte{0x04, 0xAA} // Vec<u8> with one byte
	_, err = DecodeAsSignable(scalebuf.Bytes(payload), meta, &genesis)
	require.Equal(t, NotACallError{ID: 2}, err)
}

func TestSignableCutSignable(t *testing.T) {
	meta := testMetadata()
	genesis := testGenesisHash()
	meta.Extrinsic.SignedExtensions = nil

	payload := append([]byte(nil), remarkCallBytes...)
	payload = append(payload, 0xFF) // dangling byte with no extensions to absorb it
	_, err := DecodeAsSignable(scalebuf.Bytes(payload), meta, &genesis)
	require.ErrorIs(t, err, ErrCutSignable)
}

func TestSignableMortalEraSkipsGenesisComparison(t *testing.T) {
	meta := testMetadata()
	genesis := testGenesisHash()
	var blockHash [32]byte
	for i := range blockHash {
		blockHash[i] = 0x11
	}

	// A mortal era: the block hash legitimately differs from genesis.
	payload := append([]byte(nil), remarkCallBytes...)
	payload = append(payload, 0xA5, 0x02) // era mortal(64, 42)
	payload = append(payload, 0x14, 0x00)
	payload = append(payload, blockHash[:]...)
	payload = append(payload, 0x09, 0, 0, 0)
	payload = append(payload, genesis[:]...)

	signable, err := DecodeAsSignable(scalebuf.Bytes(payload), meta, &genesis)
	require.NoError(t, err)
	require.Equal(t, Era{Period: 64, Phase: 42}, signable.Extensions[0].Data)
}
