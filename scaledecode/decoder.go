package scaledecode

import (
	"github.com/rpcpool/polkadot-faithful/scalebuf"
	"github.com/rpcpool/polkadot-faithful/scaleinfo"
)

// DecodeAllAsType decodes the whole buffer as a single value of the given
// type. The decode must consume the buffer exactly: leftover bytes are
// SomeDataNotUsedBlobError, missing bytes surface as the buffer error of
// whatever leaf ran short.
func DecodeAllAsType(tyID uint32, b scalebuf.Buffer, reg scaleinfo.Registry) (ExtendedData, error) {
	pos := 0
	out, err := DecodeWithType(tyID, b, &pos, reg, NewPropagated())
	if err != nil {
		return ExtendedData{}, err
	}
	if pos != b.TotalLen() {
		return ExtendedData{}, SomeDataNotUsedBlobError{From: pos}
	}
	return out, nil
}

// DecodeWithType decodes one value of the given type starting at *pos and
// advances *pos past the consumed bytes. The carrier threads specialty
// state (compact flag, hint, cycle set) through the recursion.
func DecodeWithType(tyID uint32, b scalebuf.Buffer, pos *int, reg scaleinfo.Registry, p Propagated) (ExtendedData, error) {
	return decodeWithType(tyRef{id: tyID}, b, pos, reg, p)
}

// tyRef names a registry type either by id alone or with the resolution
// already at hand.
type tyRef struct {
	id       uint32
	resolved *scaleinfo.Type
}

func decodeWithType(t tyRef, b scalebuf.Buffer, pos *int, reg scaleinfo.Registry, p Propagated) (ExtendedData, error) {
	ty := t.resolved
	if ty == nil {
		var err error
		ty, err = reg.ResolveTy(t.id)
		if err != nil {
			return ExtendedData{}, err
		}
	}
	p.Checker.SpecialtySet.updateFromPath(ty.Path)
	p.AddInfo(InfoFromTy(ty))

	// Some types are recognized by path alone and get a dedicated routine,
	// whatever their structural definition says.
	switch specialtyFromPath(ty.Path) {
	case specialtyAccountID32:
		return decodeSpecial(&p, func() (ParsedData, error) {
			return specialCaseAccountID32(b, pos)
		})
	case specialtyEra:
		return decodeSpecial(&p, func() (ParsedData, error) {
			era, err := decodeEra(b, pos)
			if err != nil {
				return nil, err
			}
			return era, nil
		})
	case specialtyH160:
		return decodeSpecial(&p, func() (ParsedData, error) {
			raw, err := b.ReadSliceAt(*pos, 20)
			if err != nil {
				return nil, err
			}
			*pos += 20
			out := H160{}
			copy(out.Value[:], raw)
			return out, nil
		})
	case specialtyH256:
		return decodeSpecial(&p, func() (ParsedData, error) {
			raw, err := b.ReadSliceAt(*pos, 32)
			if err != nil {
				return nil, err
			}
			*pos += 32
			out := H256{Specialty: p.Checker.SpecialtySet.Hint.Hash256()}
			copy(out.Value[:], raw)
			return out, nil
		})
	case specialtyH512:
		return decodeSpecial(&p, func() (ParsedData, error) {
			raw, err := b.ReadSliceAt(*pos, 64)
			if err != nil {
				return nil, err
			}
			*pos += 64
			out := H512{}
			copy(out.Value[:], raw)
			return out, nil
		})
	case specialtyPerU16:
		value, err := decodePerThingU16(b, pos, &p)
		if err != nil {
			return ExtendedData{}, err
		}
		return ExtendedData{Data: PerU16{Value: value}, Info: p.Info}, nil
	case specialtyPercent:
		value, err := decodePerThingU8(b, pos, &p)
		if err != nil {
			return ExtendedData{}, err
		}
		return ExtendedData{Data: Percent{Value: value}, Info: p.Info}, nil
	case specialtyPermill:
		value, err := decodePerThingU32(b, pos, &p)
		if err != nil {
			return ExtendedData{}, err
		}
		return ExtendedData{Data: Permill{Value: value}, Info: p.Info}, nil
	case specialtyPerbill:
		value, err := decodePerThingU32(b, pos, &p)
		if err != nil {
			return ExtendedData{}, err
		}
		return ExtendedData{Data: Perbill{Value: value}, Info: p.Info}, nil
	case specialtyPerquintill:
		value, err := decodePerThingU64(b, pos, &p)
		if err != nil {
			return ExtendedData{}, err
		}
		return ExtendedData{Data: Perquintill{Value: value}, Info: p.Info}, nil
	}

	switch def := ty.Def.(type) {
	case scaleinfo.TypeDefPrimitive:
		return decodePrimitive(def.Kind, b, pos, p)

	case scaleinfo.TypeDefComposite:
		if p.CompactAt() != nil && len(def.Fields) != 1 {
			// A compact wrapper may pass through a single-field newtype
			// only; the flag then reaches the inner unsigned integer.
			return ExtendedData{}, UnexpectedCompactInsidesError{ID: *p.CompactAt()}
		}
		fields, err := decodeFields(def.Fields, b, pos, reg, &p.Checker)
		if err != nil {
			return ExtendedData{}, err
		}
		return ExtendedData{Data: Composite{Fields: fields}, Info: p.Info}, nil

	case scaleinfo.TypeDefVariant:
		if err := p.RejectCompact(); err != nil {
			return ExtendedData{}, err
		}
		return decodeVariant(ty, def, b, pos, reg, p)

	case scaleinfo.TypeDefSequence:
		if err := p.RejectCompact(); err != nil {
			return ExtendedData{}, err
		}
		length, err := DecodeCompactU32(b, pos)
		if err != nil {
			return ExtendedData{}, err
		}
		// Length consumed: data progress, independent branches may revisit
		// the same ids from here on.
		p.Checker.DropCycleCheck()
		return decodeElems(def.Elem, int(length), true, b, pos, reg, p)

	case scaleinfo.TypeDefArray:
		if err := p.RejectCompact(); err != nil {
			return ExtendedData{}, err
		}
		return decodeElems(def.Elem, int(def.Len), false, b, pos, reg, p)

	case scaleinfo.TypeDefTuple:
		if err := p.RejectCompact(); err != nil {
			return ExtendedData{}, err
		}
		elems := make([]ExtendedData, 0, len(def.Fields))
		for _, elemID := range def.Fields {
			elemTy, err := reg.ResolveTy(elemID)
			if err != nil {
				return ExtendedData{}, err
			}
			child, err := ForTy(&p.Checker, elemTy, elemID)
			if err != nil {
				return ExtendedData{}, err
			}
			elem, err := decodeWithType(tyRef{id: elemID, resolved: elemTy}, b, pos, reg, child)
			if err != nil {
				return ExtendedData{}, err
			}
			elems = append(elems, elem)
		}
		return ExtendedData{Data: Tuple{Elems: elems}, Info: p.Info}, nil

	case scaleinfo.TypeDefCompact:
		id := t.id
		p.Checker.SpecialtySet.CompactAt = &id
		if err := p.Checker.CheckID(def.Inner); err != nil {
			return ExtendedData{}, err
		}
		inner, err := decodeWithType(tyRef{id: def.Inner}, b, pos, reg, p)
		if err != nil {
			return ExtendedData{}, err
		}
		return inner, nil

	case scaleinfo.TypeDefBitSequence:
		if err := p.RejectCompact(); err != nil {
			return ExtendedData{}, err
		}
		bits, err := decodeBitSequence(t.id, def, b, pos, reg)
		if err != nil {
			return ExtendedData{}, err
		}
		return ExtendedData{Data: bits, Info: p.Info}, nil

	default:
		return ExtendedData{}, scaleinfo.V14TypeNotResolvedError{ID: t.id}
	}
}

// decodeSpecial wraps the path-recognized routines that are never legal
// under a compact wrapper.
func decodeSpecial(p *Propagated, decode func() (ParsedData, error)) (ExtendedData, error) {
	if err := p.RejectCompact(); err != nil {
		return ExtendedData{}, err
	}
	data, err := decode()
	if err != nil {
		return ExtendedData{}, err
	}
	return ExtendedData{Data: data, Info: p.Info}, nil
}

// specialCaseAccountID32 reads a 32-byte account id.
func specialCaseAccountID32(b scalebuf.Buffer, pos *int) (ParsedData, error) {
	raw, err := b.ReadSliceAt(*pos, 32)
	if err != nil {
		return nil, err
	}
	*pos += 32
	out := AccountID32{}
	copy(out.Value[:], raw)
	return out, nil
}

func decodePrimitive(kind scaleinfo.Primitive, b scalebuf.Buffer, pos *int, p Propagated) (ExtendedData, error) {
	set := &p.Checker.SpecialtySet
	specialty := set.Hint.UnsignedInteger()

	var data ParsedData
	switch kind {
	case scaleinfo.PrimitiveU8:
		var value uint8
		var err error
		if set.CompactAt != nil {
			value, err = DecodeCompactU8(b, pos)
		} else {
			value, err = decodeFixedU8(b, pos)
		}
		if err != nil {
			return ExtendedData{}, err
		}
		data = U8{Value: value, Specialty: specialty}

	case scaleinfo.PrimitiveU16:
		var value uint16
		var err error
		if set.CompactAt != nil {
			value, err = DecodeCompactU16(b, pos)
		} else {
			value, err = decodeFixedU16(b, pos)
		}
		if err != nil {
			return ExtendedData{}, err
		}
		data = U16{Value: value, Specialty: specialty}

	case scaleinfo.PrimitiveU32:
		var value uint32
		var err error
		if set.CompactAt != nil {
			value, err = DecodeCompactU32(b, pos)
		} else {
			value, err = decodeFixedU32(b, pos)
		}
		if err != nil {
			return ExtendedData{}, err
		}
		data = U32{Value: value, Specialty: specialty}

	case scaleinfo.PrimitiveU64:
		var value uint64
		var err error
		if set.CompactAt != nil {
			value, err = DecodeCompactU64(b, pos)
		} else {
			value, err = decodeFixedU64(b, pos)
		}
		if err != nil {
			return ExtendedData{}, err
		}
		data = U64{Value: value, Specialty: specialty}

	case scaleinfo.PrimitiveU128:
		if set.CompactAt != nil {
			value, err := DecodeCompactU128(b, pos)
			if err != nil {
				return ExtendedData{}, err
			}
			data = U128{Value: value, Specialty: specialty}
		} else {
			value, err := decodeFixedU128(b, pos)
			if err != nil {
				return ExtendedData{}, err
			}
			data = U128{Value: value, Specialty: specialty}
		}

	default:
		if err := set.RejectCompact(); err != nil {
			return ExtendedData{}, err
		}
		var err error
		data, err = decodeNonCompactPrimitive(kind, b, pos, &p)
		if err != nil {
			return ExtendedData{}, err
		}
	}
	return ExtendedData{Data: data, Info: p.Info}, nil
}

func decodeNonCompactPrimitive(kind scaleinfo.Primitive, b scalebuf.Buffer, pos *int, p *Propagated) (ParsedData, error) {
	switch kind {
	case scaleinfo.PrimitiveBool:
		value, err := decodeBool(b, pos)
		if err != nil {
			return nil, err
		}
		return Bool{Value: value}, nil
	case scaleinfo.PrimitiveChar:
		value, err := decodeChar(b, pos)
		if err != nil {
			return nil, err
		}
		return Char{Value: value}, nil
	case scaleinfo.PrimitiveStr:
		value, err := decodeStr(b, pos)
		if err != nil {
			return nil, err
		}
		return Text{Text: value, Specialty: p.Checker.SpecialtySet.Hint.Str()}, nil
	case scaleinfo.PrimitiveI8:
		value, err := decodeFixedU8(b, pos)
		if err != nil {
			return nil, err
		}
		return I8{Value: int8(value)}, nil
	case scaleinfo.PrimitiveI16:
		value, err := decodeFixedU16(b, pos)
		if err != nil {
			return nil, err
		}
		return I16{Value: int16(value)}, nil
	case scaleinfo.PrimitiveI32:
		value, err := decodeFixedU32(b, pos)
		if err != nil {
			return nil, err
		}
		return I32{Value: int32(value)}, nil
	case scaleinfo.PrimitiveI64:
		value, err := decodeFixedU64(b, pos)
		if err != nil {
			return nil, err
		}
		return I64{Value: int64(value)}, nil
	case scaleinfo.PrimitiveI128:
		raw, err := b.ReadSliceAt(*pos, 16)
		if err != nil {
			return nil, err
		}
		*pos += 16
		value := bigFromLittleEndian(raw)
		if raw[15]&0x80 != 0 {
			value.Sub(value, i128Wrap())
		}
		return I128{Value: value}, nil
	case scaleinfo.PrimitiveU256:
		value, err := decodeBigU256(b, pos)
		if err != nil {
			return nil, err
		}
		return U256{Value: value}, nil
	case scaleinfo.PrimitiveI256:
		value, err := decodeBigI256(b, pos)
		if err != nil {
			return nil, err
		}
		return I256{Value: value}, nil
	default:
		return nil, TypeFailureError{Position: *pos, Ty: kind.String()}
	}
}

func decodeFields(fields []scaleinfo.Field, b scalebuf.Buffer, pos *int, reg scaleinfo.Registry, checker *Checker) ([]FieldData, error) {
	if len(fields) == 0 {
		return nil, nil
	}
	out := make([]FieldData, 0, len(fields))
	for i := range fields {
		field := &fields[i]
		child, err := ForField(checker, field)
		if err != nil {
			return nil, err
		}
		data, err := decodeWithType(tyRef{id: field.Ty}, b, pos, reg, child)
		if err != nil {
			return nil, err
		}
		out = append(out, FieldData{
			Name:     field.Name,
			TypeName: field.TypeName,
			Docs:     collectDocs(field.Docs),
			Data:     data,
		})
	}
	return out, nil
}

func decodeVariant(ty *scaleinfo.Type, def scaleinfo.TypeDefVariant, b scalebuf.Buffer, pos *int, reg scaleinfo.Registry, p Propagated) (ExtendedData, error) {
	discriminantAt := *pos
	discriminant, err := b.ReadByteAt(discriminantAt)
	if err != nil {
		return ExtendedData{}, err
	}
	var chosen *scaleinfo.VariantDef
	for i := range def.Variants {
		if def.Variants[i].Index == discriminant {
			chosen = &def.Variants[i]
			break
		}
	}
	if chosen == nil {
		return ExtendedData{}, UnexpectedEnumVariantError{Position: discriminantAt}
	}
	*pos = discriminantAt + 1

	// The discriminant byte is data progress: distinct recursive branches
	// below may legitimately share type ids with the path above.
	p.Checker.DropCycleCheck()

	fields, err := decodeFields(chosen.Fields, b, pos, reg, &p.Checker)
	if err != nil {
		return ExtendedData{}, err
	}
	variant := Variant{
		Name:   chosen.Name,
		Index:  chosen.Index,
		Docs:   collectDocs(chosen.Docs),
		Fields: fields,
	}

	// The runtime call enum decodes like any variant chain, but is emitted
	// as a Call node when the (pallet, call) shape is recognized from the
	// path.
	if specialtyFromPath(ty.Path) == specialtyCall && len(fields) == 1 && fields[0].Name == "" {
		if inner, ok := fields[0].Data.Data.(Variant); ok {
			return ExtendedData{
				Data: Call{
					Pallet:     variant.Name,
					PalletDocs: variant.Docs,
					Name:       inner.Name,
					Docs:       inner.Docs,
					Fields:     inner.Fields,
				},
				Info: p.Info,
			}, nil
		}
	}
	return ExtendedData{Data: variant, Info: p.Info}, nil
}

// decodeElems decodes count elements of the given type; the byte elements
// of a sequence collapse into a blob, while an array keeps one node per
// element.
func decodeElems(elemID uint32, count int, isSequence bool, b scalebuf.Buffer, pos *int, reg scaleinfo.Registry, p Propagated) (ExtendedData, error) {
	elemTy, err := reg.ResolveTy(elemID)
	if err != nil {
		return ExtendedData{}, err
	}

	if prim, ok := elemTy.Def.(scaleinfo.TypeDefPrimitive); ok && prim.Kind == scaleinfo.PrimitiveU8 && isSequence {
		raw, err := b.ReadSliceAt(*pos, count)
		if err != nil {
			return ExtendedData{}, err
		}
		*pos += count
		return ExtendedData{Data: SequenceU8{Bytes: append([]byte(nil), raw...)}, Info: p.Info}, nil
	}

	var elems []ExtendedData
	for i := 0; i < count; i++ {
		child, err := ForTy(&p.Checker, elemTy, elemID)
		if err != nil {
			return ExtendedData{}, err
		}
		elem, err := decodeWithType(tyRef{id: elemID, resolved: elemTy}, b, pos, reg, child)
		if err != nil {
			return ExtendedData{}, err
		}
		elems = append(elems, elem)
	}
	if isSequence {
		return ExtendedData{Data: Sequence{Elems: elems}, Info: p.Info}, nil
	}
	return ExtendedData{Data: Array{Elems: elems}, Info: p.Info}, nil
}

func decodeBitSequence(id uint32, def scaleinfo.TypeDefBitSequence, b scalebuf.Buffer, pos *int, reg scaleinfo.Registry) (BitSeq, error) {
	storeTy, err := reg.ResolveTy(def.BitStoreTy)
	if err != nil {
		return BitSeq{}, err
	}
	var unitBits int
	if prim, ok := storeTy.Def.(scaleinfo.TypeDefPrimitive); ok {
		switch prim.Kind {
		case scaleinfo.PrimitiveU8:
			unitBits = 8
		case scaleinfo.PrimitiveU16:
			unitBits = 16
		case scaleinfo.PrimitiveU32:
			unitBits = 32
		case scaleinfo.PrimitiveU64:
			unitBits = 64
		}
	}
	if unitBits == 0 {
		return BitSeq{}, NotBitStoreTypeError{ID: id}
	}

	orderTy, err := reg.ResolveTy(def.BitOrderTy)
	if err != nil {
		return BitSeq{}, err
	}
	var lsbFirst bool
	switch orderTy.Path.Ident() {
	case "Lsb0":
		lsbFirst = true
	case "Msb0":
		lsbFirst = false
	default:
		return BitSeq{}, NotBitOrderTypeError{ID: id}
	}

	bitLen, err := DecodeCompactU32(b, pos)
	if err != nil {
		return BitSeq{}, err
	}
	unitCount := (int(bitLen) + unitBits - 1) / unitBits
	byteCount := unitCount * unitBits / 8
	raw, err := b.ReadSliceAt(*pos, byteCount)
	if err != nil {
		return BitSeq{}, err
	}
	*pos += byteCount

	bits := make([]bool, 0, bitLen)
	unitBytes := unitBits / 8
	for i := 0; i < int(bitLen); i++ {
		unit := i / unitBits
		offset := i % unitBits
		var value uint64
		for j := 0; j < unitBytes; j++ {
			value |= uint64(raw[unit*unitBytes+j]) << (8 * j)
		}
		if lsbFirst {
			bits = append(bits, value>>offset&1 == 1)
		} else {
			bits = append(bits, value>>(unitBits-1-offset)&1 == 1)
		}
	}
	return BitSeq{Bits: bits}, nil
}

func decodePerThingU8(b scalebuf.Buffer, pos *int, p *Propagated) (uint8, error) {
	if p.CompactAt() != nil {
		return DecodeCompactU8(b, pos)
	}
	return decodeFixedU8(b, pos)
}

func decodePerThingU16(b scalebuf.Buffer, pos *int, p *Propagated) (uint16, error) {
	if p.CompactAt() != nil {
		return DecodeCompactU16(b, pos)
	}
	return decodeFixedU16(b, pos)
}

func decodePerThingU32(b scalebuf.Buffer, pos *int, p *Propagated) (uint32, error) {
	if p.CompactAt() != nil {
		return DecodeCompactU32(b, pos)
	}
	return decodeFixedU32(b, pos)
}

func decodePerThingU64(b scalebuf.Buffer, pos *int, p *Propagated) (uint64, error) {
	if p.CompactAt() != nil {
		return DecodeCompactU64(b, pos)
	}
	return decodeFixedU64(b, pos)
}
