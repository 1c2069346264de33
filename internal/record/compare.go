package record

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

// ErrIncomparable is returned when two values belong to different families
// (e.g. a string and a number) or to a family with no ordering (objects).
var ErrIncomparable = errors.New("values are not comparable")

// ErrNotNumeric is returned by arithmetic helpers for non-numeric operands.
var ErrNotNumeric = errors.New("value is not numeric")

// Equal reports whether a and b hold the same value.
// Int and Float are equal when numerically equal. Null equals only Null.
func Equal(a, b Value) bool {
	if IsNull(a) || IsNull(b) {
		return IsNull(a) && IsNull(b)
	}

	if af, ok := AsFloat(a); ok {
		bf, ok := AsFloat(b)
		if !ok {
			return false
		}
		ai, aInt := a.(Int)
		bi, bInt := b.(Int)
		if aInt && bInt {
			return ai == bi
		}
		return af == bf
	}

	switch av := a.(type) {
	case String:
		bv, ok := b.(String)
		return ok && av == bv
	case Bool:
		bv, ok := b.(Bool)
		return ok && av == bv
	case Time:
		bv, ok := b.(Time)
		return ok && av.Time.Equal(bv.Time)
	case Array:
		bv, ok := b.(Array)
		if !ok || len(av) != len(bv) {
			return false
		}
		for i := range av {
			if !Equal(av[i], bv[i]) {
				return false
			}
		}
		return true
	case Object:
		bv, ok := b.(Object)
		if !ok || len(av) != len(bv) {
			return false
		}
		for k, v := range av {
			other, ok := bv[k]
			if !ok || !Equal(v, other) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

// Compare orders a relative to b, returning -1, 0 or +1.
//
// Null sorts before every other value. Numbers compare numerically across
// Int and Float, strings by bytes, false before true, times chronologically
// and arrays lexicographically. Any other pairing returns ErrIncomparable.
func Compare(a, b Value) (int, error) {
	aNull, bNull := IsNull(a), IsNull(b)
	switch {
	case aNull && bNull:
		return 0, nil
	case aNull:
		return -1, nil
	case bNull:
		return 1, nil
	}

	if ai, ok := a.(Int); ok {
		if bi, ok := b.(Int); ok {
			return cmpOrdered(ai, bi), nil
		}
	}
	if af, ok := AsFloat(a); ok {
		bf, ok := AsFloat(b)
		if !ok {
			return 0, incomparable(a, b)
		}
		return cmpOrdered(af, bf), nil
	}

	switch av := a.(type) {
	case String:
		bv, ok := b.(String)
		if !ok {
			return 0, incomparable(a, b)
		}
		return strings.Compare(string(av), string(bv)), nil
	case Bool:
		bv, ok := b.(Bool)
		if !ok {
			return 0, incomparable(a, b)
		}
		switch {
		case av == bv:
			return 0, nil
		case !bool(av):
			return -1, nil
		default:
			return 1, nil
		}
	case Time:
		bv, ok := b.(Time)
		if !ok {
			return 0, incomparable(a, b)
		}
		return av.Time.Compare(bv.Time), nil
	case Array:
		bv, ok := b.(Array)
		if !ok {
			return 0, incomparable(a, b)
		}
		for i := 0; i < len(av) && i < len(bv); i++ {
			c, err := Compare(av[i], bv[i])
			if err != nil {
				return 0, err
			}
			if c != 0 {
				return c, nil
			}
		}
		return cmpOrdered(len(av), len(bv)), nil
	default:
		return 0, incomparable(a, b)
	}
}

func cmpOrdered[T int | Int | float64](a, b T) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func incomparable(a, b Value) error {
	return fmt.Errorf("%w: %s and %s", ErrIncomparable, TypeName(a), TypeName(b))
}

// AsFloat returns the numeric value of an Int or Float.
func AsFloat(v Value) (float64, bool) {
	switch val := v.(type) {
	case Int:
		return float64(val), true
	case Float:
		return float64(val), true
	default:
		return 0, false
	}
}

// Add returns a + b. Int + Int stays Int unless it overflows int64, in
// which case the result is a Float. Any Float operand yields Float.
func Add(a, b Value) (Value, error) {
	ai, aInt := a.(Int)
	bi, bInt := b.(Int)
	if aInt && bInt {
		if (bi > 0 && ai > math.MaxInt64-bi) || (bi < 0 && ai < math.MinInt64-bi) {
			return Float(float64(ai) + float64(bi)), nil
		}
		return ai + bi, nil
	}
	af, aok := AsFloat(a)
	bf, bok := AsFloat(b)
	if !aok || !bok {
		return nil, notNumeric(a, b)
	}
	return Float(af + bf), nil
}

// Sub returns a - b with the same typing rules as Add.
// Two times subtract to a Float number of seconds.
func Sub(a, b Value) (Value, error) {
	if at, ok := a.(Time); ok {
		if bt, ok := b.(Time); ok {
			return Float(at.Sub(bt.Time).Seconds()), nil
		}
	}
	ai, aInt := a.(Int)
	bi, bInt := b.(Int)
	if aInt && bInt {
		if (bi < 0 && ai > math.MaxInt64+bi) || (bi > 0 && ai < math.MinInt64+bi) {
			return Float(float64(ai) - float64(bi)), nil
		}
		return ai - bi, nil
	}
	af, aok := AsFloat(a)
	bf, bok := AsFloat(b)
	if !aok || !bok {
		return nil, notNumeric(a, b)
	}
	return Float(af - bf), nil
}

func notNumeric(a, b Value) error {
	bad := a
	if _, ok := AsFloat(a); ok {
		bad = b
	}
	return fmt.Errorf("%w: %s", ErrNotNumeric, TypeName(bad))
}
