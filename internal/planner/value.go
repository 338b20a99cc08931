package planner

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// Sentinel is a key value that sorts below (MinKey) or above (MaxKey)
// every other value. Sentinels only ever appear in index bounds.
type Sentinel int

const (
	MinKey Sentinel = iota + 1
	MaxKey
)

func (s Sentinel) String() string {
	switch s {
	case MinKey:
		return "MINVAL"
	case MaxKey:
		return "MAXVAL"
	default:
		return "UNKNOWN"
	}
}

const (
	rankMin = iota
	rankNull
	rankBool
	rankNumber
	rankString
	rankTime
	rankOther
	rankMax
)

func rankOf(v any) int {
	switch aVal := v.(type) {
	case Sentinel:
		if aVal == MinKey {
			return rankMin
		}
		return rankMax
	case nil:
		return rankNull
	case bool:
		return rankBool
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64, float32, float64:
		return rankNumber
	case string:
		return rankString
	case time.Time:
		return rankTime
	default:
		return rankOther
	}
}

// Compare orders two values. Values of different kinds are ordered by kind:
// MinKey < null < bool < number < string < time < anything else < MaxKey.
// Integers and floats compare numerically, NaN below every other number.
func Compare(a, b any) int {
	rankA, rankB := rankOf(a), rankOf(b)
	if rankA != rankB {
		if rankA < rankB {
			return -1
		}
		return 1
	}

	switch rankA {
	case rankBool:
		aVal, bVal := a.(bool), b.(bool)
		if aVal == bVal {
			return 0
		}
		if aVal {
			return 1
		}
		return -1
	case rankNumber:
		return compareNumbers(a, b)
	case rankString:
		return strings.Compare(a.(string), b.(string))
	case rankTime:
		return a.(time.Time).Compare(b.(time.Time))
	case rankOther:
		return strings.Compare(fmt.Sprint(a), fmt.Sprint(b))
	default:
		// MinKey, null and MaxKey are each equal to themselves
		return 0
	}
}

// Equal reports whether a and b are equal under Compare.
func Equal(a, b any) bool {
	return Compare(a, b) == 0
}

// CompareTuples compares compound keys lexicographically. A tuple that is
// a strict prefix of another sorts first.
func CompareTuples(a, b []any) int {
	for i := 0; i < len(a) && i < len(b); i++ {
		if cmp := Compare(a[i], b[i]); cmp != 0 {
			return cmp
		}
	}
	switch {
	case len(a) < len(b):
		return -1
	case len(a) > len(b):
		return 1
	default:
		return 0
	}
}

func compareNumbers(a, b any) int {
	intA, okA := asInt64(a)
	intB, okB := asInt64(b)
	if okA && okB {
		switch {
		case intA < intB:
			return -1
		case intA > intB:
			return 1
		default:
			return 0
		}
	}

	floatA, floatB := asFloat64(a), asFloat64(b)
	// NaN sorts below every other number and equals itself
	nanA, nanB := math.IsNaN(floatA), math.IsNaN(floatB)
	switch {
	case nanA && nanB:
		return 0
	case nanA:
		return -1
	case nanB:
		return 1
	case floatA < floatB:
		return -1
	case floatA > floatB:
		return 1
	default:
		return 0
	}
}

func asInt64(v any) (int64, bool) {
	switch aVal := v.(type) {
	case int:
		return int64(aVal), true
	case int8:
		return int64(aVal), true
	case int16:
		return int64(aVal), true
	case int32:
		return int64(aVal), true
	case int64:
		return aVal, true
	case uint:
		if uint64(aVal) > math.MaxInt64 {
			return 0, false
		}
		return int64(aVal), true
	case uint8:
		return int64(aVal), true
	case uint16:
		return int64(aVal), true
	case uint32:
		return int64(aVal), true
	case uint64:
		if aVal > math.MaxInt64 {
			return 0, false
		}
		return int64(aVal), true
	default:
		return 0, false
	}
}

func asFloat64(v any) float64 {
	switch aVal := v.(type) {
	case float32:
		return float64(aVal)
	case float64:
		return aVal
	case uint:
		return float64(aVal)
	case uint64:
		return float64(aVal)
	default:
		intVal, _ := asInt64(v)
		return float64(intVal)
	}
}

func formatValue(v any) string {
	switch aVal := v.(type) {
	case nil:
		return "null"
	case string:
		return fmt.Sprintf("%q", aVal)
	case time.Time:
		return aVal.Format(time.RFC3339Nano)
	case []any:
		parts := make([]string, 0, len(aVal))
		for _, item := range aVal {
			parts = append(parts, formatValue(item))
		}
		return "[" + strings.Join(parts, ", ") + "]"
	default:
		return fmt.Sprint(aVal)
	}
}
