package machine

import (
	"math"
	"strconv"
)

// Number is the machine's sole numeric type: a double-precision float used
// for both integral and fractional values.
type Number float64

func (n Number) Type() string { return "number" }

func (n Number) String() string {
	f := float64(n)
	switch {
	case math.IsNaN(f):
		return "nan"
	case math.IsInf(f, 1):
		return "inf"
	case math.IsInf(f, -1):
		return "-inf"
	}
	return strconv.FormatFloat(f, 'g', -1, 64)
}

// truncToInt64 truncates a double to a 64-bit signed integer for the
// bitwise operators, per the language's documented bitwise semantics.
func truncToInt64(n Number) int64 {
	return int64(float64(n))
}
