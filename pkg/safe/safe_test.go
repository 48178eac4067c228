package safe

import (
	"math"
	"testing"
)

func TestSafeAdd(t *testing.T) {
	if got := SafeAdd(2, 3); got != 5 {
		t.Errorf("SafeAdd(2,3) = %d, want 5", got)
	}
	if got := SafeAdd(-2, -3); got != -5 {
		t.Errorf("SafeAdd(-2,-3) = %d, want -5", got)
	}

	t.Run("overflow panics", func(t *testing.T) {
		defer func() {
			if recover() == nil {
				t.Error("expected panic on overflow")
			}
		}()
		SafeAdd(math.MaxInt64, 1)
	})
}

func TestSafeSub(t *testing.T) {
	if got := SafeSub(10, 3); got != 7 {
		t.Errorf("SafeSub(10,3) = %d, want 7", got)
	}

	t.Run("underflow panics", func(t *testing.T) {
		defer func() {
			if recover() == nil {
				t.Error("expected panic on underflow")
			}
		}()
		SafeSub(math.MinInt64, 1)
	})
}

func TestSafeMul(t *testing.T) {
	if got := SafeMul(1000, 101); got != 101000 {
		t.Errorf("SafeMul(1000,101) = %d, want 101000", got)
	}
	if got := SafeMul(0, math.MaxInt64); got != 0 {
		t.Errorf("SafeMul(0,max) = %d, want 0", got)
	}

	t.Run("overflow panics", func(t *testing.T) {
		defer func() {
			if recover() == nil {
				t.Error("expected panic on overflow")
			}
		}()
		SafeMul(math.MaxInt64/2, 3)
	})
}

func TestAddChecked(t *testing.T) {
	if got, ok := AddChecked(2, 3); !ok || got != 5 {
		t.Errorf("AddChecked(2,3) = %d,%v", got, ok)
	}
	if _, ok := AddChecked(math.MaxInt64, 1); ok {
		t.Error("AddChecked(max,1) reported no overflow")
	}
	if _, ok := AddChecked(math.MinInt64, -1); ok {
		t.Error("AddChecked(min,-1) reported no overflow")
	}
}

func TestMulChecked(t *testing.T) {
	if got, ok := MulChecked(1000, 101); !ok || got != 101000 {
		t.Errorf("MulChecked(1000,101) = %d,%v", got, ok)
	}
	if got, ok := MulChecked(0, math.MaxInt64); !ok || got != 0 {
		t.Errorf("MulChecked(0,max) = %d,%v", got, ok)
	}
	if _, ok := MulChecked(1<<62, 100); ok {
		t.Error("MulChecked(1<<62,100) reported no overflow")
	}
}
