package safe

import (
	"fmt"
	"math"
)

// SafeAdd returns a + b. Panics on int64 overflow.
// Balances and prices are hard int64 invariants; overflowing them means the
// process state is already garbage, so the halt policy applies.
func SafeAdd(a, b int64) int64 {
	if (b > 0 && a > math.MaxInt64-b) || (b < 0 && a < math.MinInt64-b) {
		panic(fmt.Sprintf("SAFE_ADD_OVERFLOW: %d + %d", a, b))
	}
	return a + b
}

// SafeSub returns a - b. Panics on int64 overflow.
func SafeSub(a, b int64) int64 {
	if (b < 0 && a > math.MaxInt64+b) || (b > 0 && a < math.MinInt64+b) {
		panic(fmt.Sprintf("SAFE_SUB_OVERFLOW: %d - %d", a, b))
	}
	return a - b
}

// SafeMul returns a * b. Panics on int64 overflow.
func SafeMul(a, b int64) int64 {
	if a == 0 || b == 0 {
		return 0
	}
	res := a * b
	if res/b != a {
		panic(fmt.Sprintf("SAFE_MUL_OVERFLOW: %d * %d", a, b))
	}
	return res
}

// AddChecked returns a + b and whether the sum stayed in int64 range.
// For validating caller-supplied values, where overflow is a rejection
// rather than state corruption.
func AddChecked(a, b int64) (int64, bool) {
	if (b > 0 && a > math.MaxInt64-b) || (b < 0 && a < math.MinInt64-b) {
		return 0, false
	}
	return a + b, true
}

// MulChecked returns a * b and whether the product stayed in int64 range.
func MulChecked(a, b int64) (int64, bool) {
	if a == 0 || b == 0 {
		return 0, true
	}
	res := a * b
	if res/b != a {
		return 0, false
	}
	return res, true
}
