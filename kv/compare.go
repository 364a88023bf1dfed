package kv

import (
	"bytes"
	"math"

	"github.com/spf13/cast"
)

// CompareValues implements the predicate evaluator's widening/nullness
// comparison rules (§4.E): null compares higher than non-null by default;
// a negative signed integer sorts below every unsigned integer, and
// otherwise mixed signed/unsigned integers are compared in the unsigned
// domain; floating point values are widened to float64 and compared by
// CompareFloats, so NaN and -0.0 behave deterministically; everything else
// promotes through github.com/spf13/cast.
//
// The result is -1, 0, or 1, as with a standard three-way comparator.
func CompareValues(a, b interface{}) (int, error) {
	if a == nil && b == nil {
		return 0, nil
	}
	if a == nil {
		return 1, nil // null sorts higher than non-null
	}
	if b == nil {
		return -1, nil
	}

	switch a.(type) {
	case float32, float64:
		return CompareFloats(a, b)
	}
	switch b.(type) {
	case float32, float64:
		return CompareFloats(a, b)
	}

	switch a.(type) {
	case string:
		bs, err := cast.ToStringE(b)
		if err != nil {
			return 0, err
		}
		as := a.(string)
		switch {
		case as < bs:
			return -1, nil
		case as > bs:
			return 1, nil
		default:
			return 0, nil
		}
	case []byte:
		bs, err := cast.ToStringE(b)
		if err != nil {
			return 0, err
		}
		return bytes.Compare(a.([]byte), []byte(bs)), nil
	case bool:
		ab := a.(bool)
		bb, err := cast.ToBoolE(b)
		if err != nil {
			return 0, err
		}
		if ab == bb {
			return 0, nil
		}
		if !ab {
			return -1, nil
		}
		return 1, nil
	}

	// Integer domain: normalize both sides into a signed 64-bit space,
	// flipping the sign bit of unsigned values so unsigned ordering maps
	// onto signed ordering. A mixed pair with a negative signed side is
	// decided up front; otherwise both sides are compared as unsigned.
	ai, aUnsigned, err := toNormalizedInt(a)
	if err != nil {
		return 0, err
	}
	bi, bUnsigned, err := toNormalizedInt(b)
	if err != nil {
		return 0, err
	}
	if aUnsigned != bUnsigned {
		if !aUnsigned && ai < 0 {
			return -1, nil
		}
		if !bUnsigned && bi < 0 {
			return 1, nil
		}
		aUnsigned, bUnsigned = true, true
	}
	if aUnsigned {
		ai ^= math.MinInt64
	}
	if bUnsigned {
		bi ^= math.MinInt64
	}
	switch {
	case ai < bi:
		return -1, nil
	case ai > bi:
		return 1, nil
	default:
		return 0, nil
	}
}

func toNormalizedInt(v interface{}) (int64, bool, error) {
	switch v.(type) {
	case uint, uint8, uint16, uint32, uint64:
		u, err := cast.ToUint64E(v)
		if err != nil {
			return 0, false, err
		}
		return int64(u), true, nil
	default:
		i, err := cast.ToInt64E(v)
		if err != nil {
			return 0, false, err
		}
		return i, false, nil
	}
}

// FloatEqual reports bit-level equality of a and b widened to float64,
// after canonicalizing -0.0 to 0.0. Two NaNs with the same bit pattern
// compare equal here (deterministic), unlike IEEE-754 NaN semantics.
func FloatEqual(a, b interface{}) (bool, error) {
	af, err := cast.ToFloat64E(a)
	if err != nil {
		return false, err
	}
	bf, err := cast.ToFloat64E(b)
	if err != nil {
		return false, err
	}
	return math.Float64bits(canonicalZero(af)) == math.Float64bits(canonicalZero(bf)), nil
}

func canonicalZero(f float64) float64 {
	if f == 0 {
		return 0
	}
	return f
}

// CompareFloats three-way compares a and b widened to float64. NaN is
// ordered above every other value (including +Inf) and equal only to
// another NaN, for a deterministic total order usable by range operators.
func CompareFloats(a, b interface{}) (int, error) {
	af, err := cast.ToFloat64E(a)
	if err != nil {
		return 0, err
	}
	bf, err := cast.ToFloat64E(b)
	if err != nil {
		return 0, err
	}
	aNaN, bNaN := math.IsNaN(af), math.IsNaN(bf)
	switch {
	case aNaN && bNaN:
		return 0, nil
	case aNaN:
		return 1, nil
	case bNaN:
		return -1, nil
	}
	af, bf = canonicalZero(af), canonicalZero(bf)
	switch {
	case af < bf:
		return -1, nil
	case af > bf:
		return 1, nil
	default:
		return 0, nil
	}
}
