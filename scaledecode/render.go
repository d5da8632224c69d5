package scaledecode

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/rpcpool/polkadot-faithful/jsonbuilder"
	"github.com/rpcpool/polkadot-faithful/ss58"
)

// RenderOptions control the human-readable rendering of decoded trees.
type RenderOptions struct {
	// SS58Prefix, when set, renders account ids as SS58 addresses.
	SS58Prefix *uint16

	// TokenSymbol and TokenDecimals, when set, pretty-print balances and
	// tips.
	TokenSymbol   string
	TokenDecimals *uint8
}

// RenderExtended renders a decoded subtree with its collected type info.
func RenderExtended(data ExtendedData, opts RenderOptions) *jsonbuilder.OrderedObject {
	out := jsonbuilder.NewObject()
	for _, info := range data.Info {
		if len(info.Path) > 0 {
			out.String("type", strings.Join(info.Path, "::"))
			break
		}
	}
	return out.Value("value", renderData(data.Data, opts))
}

// RenderUncheckedExtrinsic renders a decoded unchecked extrinsic.
func RenderUncheckedExtrinsic(extrinsic *UncheckedExtrinsic, opts RenderOptions) *jsonbuilder.OrderedObject {
	out := jsonbuilder.NewObject()
	if extrinsic.Signed {
		out.String("kind", "signed")
		out.Value("address", renderData(extrinsic.Address.Data, opts))
		out.Value("signature", renderData(extrinsic.Signature.Data, opts))
		out.Value("extra", renderData(extrinsic.Extra.Data, opts))
	} else {
		out.String("kind", "unsigned")
	}
	return out.Value("call", renderData(extrinsic.Call, opts))
}

func renderData(data ParsedData, opts RenderOptions) any {
	switch value := data.(type) {
	case U8:
		return renderUnsigned(new(big.Int).SetUint64(uint64(value.Value)), value.Specialty, opts)
	case U16:
		return renderUnsigned(new(big.Int).SetUint64(uint64(value.Value)), value.Specialty, opts)
	case U32:
		return renderUnsigned(new(big.Int).SetUint64(uint64(value.Value)), value.Specialty, opts)
	case U64:
		return renderUnsigned(new(big.Int).SetUint64(value.Value), value.Specialty, opts)
	case U128:
		return renderUnsigned(value.Value, value.Specialty, opts)
	case U256:
		return value.Value.String()
	case I8:
		return int64(value.Value)
	case I16:
		return int64(value.Value)
	case I32:
		return int64(value.Value)
	case I64:
		return value.Value
	case I128:
		return value.Value.String()
	case I256:
		return value.Value.String()
	case Bool:
		return value.Value
	case Char:
		return string(value.Value)
	case Text:
		return value.Text
	case H160:
		return hexValue(value.Value[:])
	case H256:
		return hexValue(value.Value[:])
	case H512:
		return hexValue(value.Value[:])
	case AccountID32:
		if opts.SS58Prefix != nil {
			if address, err := ss58.Encode(*opts.SS58Prefix, value.Value); err == nil {
				return address
			}
		}
		return hexValue(value.Value[:])
	case PerU16:
		return jsonbuilder.NewObject().Uint("per_u16", uint64(value.Value))
	case Percent:
		return fmt.Sprintf("%d%%", value.Value)
	case Permill:
		return jsonbuilder.NewObject().Uint("permill", uint64(value.Value))
	case Perbill:
		return jsonbuilder.NewObject().Uint("perbill", uint64(value.Value))
	case Perquintill:
		return jsonbuilder.NewObject().Uint("perquintill", value.Value)
	case Composite:
		return renderFields(value.Fields, opts)
	case Variant:
		if len(value.Fields) == 0 {
			return value.Name
		}
		return jsonbuilder.NewObject().Value(value.Name, renderFields(value.Fields, opts))
	case Call:
		return jsonbuilder.NewObject().
			String("pallet", value.Pallet).
			String("call", value.Name).
			Value("args", renderFields(value.Fields, opts))
	case Sequence:
		return renderElems(value.Elems, opts)
	case SequenceU8:
		return hexValue(value.Bytes)
	case Array:
		if raw, ok := byteArray(value.Elems); ok {
			return hexValue(raw)
		}
		return renderElems(value.Elems, opts)
	case Tuple:
		return renderElems(value.Elems, opts)
	case BitSeq:
		var sb strings.Builder
		for _, bit := range value.Bits {
			if bit {
				sb.WriteByte('1')
			} else {
				sb.WriteByte('0')
			}
		}
		return sb.String()
	case Era:
		if value.Immortal {
			return "immortal"
		}
		return jsonbuilder.NewObject().
			Uint("phase", value.Phase).
			Uint("period", value.Period)
	default:
		return fmt.Sprintf("%v", data)
	}
}

func renderUnsigned(value *big.Int, specialty SpecialtyUnsignedInteger, opts RenderOptions) any {
	switch specialty {
	case UnsignedBalance, UnsignedTip:
		if opts.TokenDecimals != nil {
			return jsonbuilder.NewObject().
				BigInt("raw", value).
				String("formatted", FormatBalance(value, *opts.TokenDecimals, opts.TokenSymbol))
		}
		return value.String()
	case UnsignedNonce:
		return jsonbuilder.NewObject().BigInt("nonce", value)
	case UnsignedSpecVersion:
		return jsonbuilder.NewObject().BigInt("spec_version", value)
	case UnsignedTxVersion:
		return jsonbuilder.NewObject().BigInt("tx_version", value)
	default:
		if value.IsUint64() {
			return value.Uint64()
		}
		return value.String()
	}
}

// FormatBalance renders a raw chain balance with the token decimal point
// applied, comma-grouped, with the token symbol appended when known.
func FormatBalance(raw *big.Int, decimals uint8, symbol string) string {
	scale := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(decimals)), nil)
	quo, rem := new(big.Int).QuoRem(raw, scale, new(big.Int))

	out := humanize.BigComma(quo)
	if rem.Sign() != 0 {
		frac := fmt.Sprintf("%0*s", decimals, rem.String())
		frac = strings.TrimRight(frac, "0")
		out += "." + frac
	}
	if symbol != "" {
		out += " " + symbol
	}
	return out
}

func renderFields(fields []FieldData, opts RenderOptions) any {
	named := len(fields) > 0
	for _, f := range fields {
		if f.Name == "" {
			named = false
			break
		}
	}
	if named {
		out := jsonbuilder.NewObject()
		for _, f := range fields {
			out.Value(f.Name, renderData(f.Data.Data, opts))
		}
		return out
	}
	if len(fields) == 1 {
		return renderData(fields[0].Data.Data, opts)
	}
	out := jsonbuilder.NewArray()
	for _, f := range fields {
		out.Add(renderData(f.Data.Data, opts))
	}
	return out
}

func renderElems(elems []ExtendedData, opts RenderOptions) *jsonbuilder.ArrayBuilder {
	out := jsonbuilder.NewArray()
	for i := range elems {
		out.Add(renderData(elems[i].Data, opts))
	}
	return out
}

// byteArray flattens an array of plain u8 nodes back into bytes.
func byteArray(elems []ExtendedData) ([]byte, bool) {
	out := make([]byte, 0, len(elems))
	for i := range elems {
		u8, ok := elems[i].Data.(U8)
		if !ok {
			return nil, false
		}
		out = append(out, u8.Value)
	}
	return out, len(out) > 0
}

func hexValue(raw []byte) string {
	return fmt.Sprintf("0x%x", raw)
}
