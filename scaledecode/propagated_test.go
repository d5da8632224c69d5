package scaledecode

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/rpcpool/polkadot-faithful/scaleinfo"
)

func TestCheckerCycle(t *testing.T) {
	checker := NewChecker()
	require.NoError(t, checker.CheckID(1))
	require.NoError(t, checker.CheckID(2))
	require.Equal(t, CyclicMetadataError{ID: 1}, checker.CheckID(1))

	checker.DropCycleCheck()
	require.NoError(t, checker.CheckID(1))
}

func TestCheckerCloneIndependence(t *testing.T) {
	parent := NewChecker()
	require.NoError(t, parent.CheckID(1))

	field := scaleinfo.Field{Name: "tip", Ty: 2}
	childA, err := parent.UpdateForField(&field)
	require.NoError(t, err)
	require.Equal(t, HintTip, childA.SpecialtySet.Hint)

	// The sibling neither sees childA's hint nor its cycle entry.
	other := scaleinfo.Field{Name: "plain", Ty: 2}
	childB, err := parent.UpdateForField(&other)
	require.NoError(t, err)
	require.Equal(t, HintNone, childB.SpecialtySet.Hint)
	require.NoError(t, childB.CheckID(3))

	// The parent set is untouched by both children.
	require.NoError(t, parent.CheckID(2))
}

func TestHintMergeOnEmptyOnly(t *testing.T) {
	checker := NewChecker()
	checker.SpecialtySet.Hint = HintNonce

	field := scaleinfo.Field{Name: "tip", Ty: 2}
	child, err := checker.UpdateForField(&field)
	require.NoError(t, err)
	require.Equal(t, HintNonce, child.SpecialtySet.Hint)

	child.ForgetHint()
	require.Equal(t, HintNone, child.SpecialtySet.Hint)
}

func TestRejectCompact(t *testing.T) {
	p := NewPropagated()
	require.NoError(t, p.RejectCompact())

	id := uint32(9)
	p.Checker.SpecialtySet.CompactAt = &id
	require.Equal(t, UnexpectedCompactInsidesError{ID: 9}, p.RejectCompact())
}

func TestPropagatedFromExtMeta(t *testing.T) {
	ext := scaleinfo.SignedExtensionMeta{Identifier: "ChargeTransactionPayment"}
	p := PropagatedFromExtMeta(&ext)
	require.Equal(t, HintTip, p.Checker.SpecialtySet.Hint)

	ext = scaleinfo.SignedExtensionMeta{Identifier: "CheckSpecVersion"}
	p = PropagatedFromExtMeta(&ext)
	require.Equal(t, HintSpecVersion, p.Checker.SpecialtySet.Hint)
	require.Equal(t, UnsignedSpecVersion, p.Checker.SpecialtySet.Hint.UnsignedInteger())
}

func TestAddInfoSkipsEmpty(t *testing.T) {
	p := NewPropagated()
	p.AddInfo(Info{})
	require.Empty(t, p.Info)

	p.AddInfo(Info{Docs: "something"})
	require.Len(t, p.Info, 1)
}
