package scaledecode

import "github.com/rpcpool/polkadot-faithful/scaleinfo"

// SpecialtySet is the type specialty state (hint and compact flag) that
// propagates down the tree during decoding.
//
// The compact flag impacts decoding; the hint only determines how decoded
// data is tagged.
type SpecialtySet struct {
	// CompactAt is the type id of the Compact wrapper currently in effect,
	// nil when none. Once set it never reverts to nil within the same
	// SpecialtySet; it is cleared only by constructing a fresh one.
	//
	// Only unsigned integers and parts-per-thing fractions may decode while
	// the flag is set; anything else is UnexpectedCompactInsidesError.
	CompactAt *uint32

	// Hint is overwritten only while it is HintNone, and may be explicitly
	// forgotten when a type boundary makes it irrelevant.
	Hint Hint
}

// RejectCompact errors if a compact wrapper is in effect.
func (s *SpecialtySet) RejectCompact() error {
	if s.CompactAt != nil {
		return UnexpectedCompactInsidesError{ID: *s.CompactAt}
	}
	return nil
}

// updateFromPath merges a path-derived hint, if no hint existed.
func (s *SpecialtySet) updateFromPath(path scaleinfo.Path) {
	if s.Hint == HintNone {
		s.Hint = HintFromPath(path)
	}
}

// ForgetHint discards a previously found hint.
func (s *SpecialtySet) ForgetHint() {
	s.Hint = HintNone
}

// Checker bundles the SpecialtySet with the set of type ids encountered so
// far, used to catch endless type resolution cycles.
type Checker struct {
	SpecialtySet SpecialtySet

	// CycleCheck holds the type ids on the current resolution path that
	// have consumed no data yet.
	CycleCheck []uint32
}

// NewChecker returns an empty Checker.
func NewChecker() Checker {
	return Checker{}
}

// clone returns an independent copy; siblings must not see each other's
// cycle set or specialty updates.
func (c *Checker) clone() Checker {
	out := Checker{SpecialtySet: c.SpecialtySet}
	if len(c.CycleCheck) > 0 {
		out.CycleCheck = append([]uint32(nil), c.CycleCheck...)
	}
	return out
}

// CheckID registers a type id on the resolution path. A repeat means the
// decoding has entered a cycle and must stop.
func (c *Checker) CheckID(id uint32) error {
	for _, seen := range c.CycleCheck {
		if seen == id {
			return CyclicMetadataError{ID: id}
		}
	}
	c.CycleCheck = append(c.CycleCheck, id)
	return nil
}

// DropCycleCheck discards the collected cycle set. Called at progress
// boundaries: once data was consumed, independent branches may legitimately
// revisit the same type ids.
func (c *Checker) DropCycleCheck() {
	c.CycleCheck = nil
}

// ForgetHint discards a previously found hint.
func (c *Checker) ForgetHint() {
	c.SpecialtySet.ForgetHint()
}

// RejectCompact errors if a compact wrapper is in effect.
func (c *Checker) RejectCompact() error {
	return c.SpecialtySet.RejectCompact()
}

// UpdateForField builds the Checker for descending into an individual
// field: merge the field hint (if none existed) and cycle-check the field
// type id.
func (c *Checker) UpdateForField(field *scaleinfo.Field) (Checker, error) {
	out := c.clone()
	if out.SpecialtySet.Hint == HintNone {
		out.SpecialtySet.Hint = HintFromField(field)
	}
	if err := out.CheckID(field.Ty); err != nil {
		return Checker{}, err
	}
	return out, nil
}

// UpdateForTy builds the Checker for descending into a type known by id:
// cycle-check the id and merge the path hint.
func (c *Checker) UpdateForTy(ty *scaleinfo.Type, id uint32) (Checker, error) {
	out := c.clone()
	if err := out.CheckID(id); err != nil {
		return Checker{}, err
	}
	out.SpecialtySet.updateFromPath(ty.Path)
	return out, nil
}

// Propagated carries the Checker plus the type Info collected while
// resolving, through one branch of the decoding recursion. It is freshly
// constructed at each top-level entry and cloned at each descent, so
// sibling branches are independent.
type Propagated struct {
	Checker Checker

	// Info collected while resolving the type; only non-empty entries are
	// added.
	Info []Info
}

// NewPropagated returns an empty carrier for a fresh decoding sequence.
func NewPropagated() Propagated {
	return Propagated{}
}

// PropagatedFromExtMeta returns a carrier for a signed extension instance,
// seeded with the extension-derived hint.
func PropagatedFromExtMeta(ext *scaleinfo.SignedExtensionMeta) Propagated {
	return Propagated{
		Checker: Checker{
			SpecialtySet: SpecialtySet{Hint: HintFromExtMeta(ext)},
		},
	}
}

// WithChecker returns a carrier continuing from a known checker, with a
// fresh Info collection.
func WithChecker(checker Checker) Propagated {
	return Propagated{Checker: checker}
}

// ForField returns the carrier for an individual field.
func ForField(checker *Checker, field *scaleinfo.Field) (Propagated, error) {
	out, err := checker.UpdateForField(field)
	if err != nil {
		return Propagated{}, err
	}
	return Propagated{Checker: out}, nil
}

// ForTy returns the carrier for a type known by id.
func ForTy(checker *Checker, ty *scaleinfo.Type, id uint32) (Propagated, error) {
	out, err := checker.UpdateForTy(ty, id)
	if err != nil {
		return Propagated{}, err
	}
	return Propagated{Checker: out}, nil
}

// CompactAt returns the compact flag.
func (p *Propagated) CompactAt() *uint32 {
	return p.Checker.SpecialtySet.CompactAt
}

// RejectCompact errors if a compact wrapper is in effect.
func (p *Propagated) RejectCompact() error {
	return p.Checker.RejectCompact()
}

// ForgetHint discards a previously found hint.
func (p *Propagated) ForgetHint() {
	p.Checker.ForgetHint()
}

// AddInfo appends an Info entry, if non-empty.
func (p *Propagated) AddInfo(info Info) {
	if !info.IsEmpty() {
		p.Info = append(p.Info, info)
	}
}
