package findash

import "github.com/shopspring/decimal"

type number interface {
	float32 | float64 | int | int32 | int64 | uint | uint32 | uint64 | decimal.Decimal
}

// newDecimal is a convenient factory for decimal.Decimal
func newDecimal[T number](value T) decimal.Decimal {
	switch v := any(value).(type) {
	case decimal.Decimal:
		return v
	case float32:
		return decimal.NewFromFloat32(v)
	case float64:
		return decimal.NewFromFloat(v)
	case int:
		return decimal.NewFromInt(int64(v))
	case int32:
		return decimal.NewFromInt32(v)
	case int64:
		return decimal.NewFromInt(v)
	case uint:
		return decimal.NewFromUint64(uint64(v))
	case uint32:
		return decimal.NewFromUint64(uint64(v))
	case uint64:
		return decimal.NewFromUint64(v)
	default:
		panic("unsupported type")
	}
}

// ratioDigits is the number of decimals kept on financial ratios.
const ratioDigits = 2

// Ratio is a dimensionless financial ratio, kept with two decimals.
type Ratio struct {
	value decimal.Decimal
}

// R returns a Ratio rounded to two decimals.
func R[T number](value T) Ratio {
	return Ratio{value: newDecimal(value).Round(ratioDigits)}
}

func (r Ratio) Equal(p Ratio) bool       { return r.value.Equal(p.value) }
func (r Ratio) IsZero() bool             { return r.value.IsZero() }
func (r Ratio) Decimal() decimal.Decimal { return r.value }
func (r Ratio) String() string           { return r.value.StringFixed(ratioDigits) }
func (r Ratio) Float64() float64         { return r.value.InexactFloat64() }

// MarshalJSON implements the json.Marshaler interface.
func (r Ratio) MarshalJSON() ([]byte, error) { return r.value.MarshalJSON() }

func (r *Ratio) UnmarshalJSON(decimalBytes []byte) error {
	return r.value.UnmarshalJSON(decimalBytes)
}
