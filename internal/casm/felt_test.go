package casm

import (
	"math"
	"testing"
)

func TestPrime(t *testing.T) {
	const want = "3618502788666131213697322783095070105623107215331596699973092056135872020481"
	if got := Prime.Dec(); got != want {
		t.Fatalf("prime = %s, want %s", got, want)
	}
}

func TestFeltSigned(t *testing.T) {
	for _, n := range []int64{0, 1, -1, 42, -42, math.MaxInt64, math.MinInt64} {
		f := FeltFromInt64(n)
		got, ok := f.Int64()
		if !ok || got != n {
			t.Errorf("Int64(FeltFromInt64(%d)) = %d, %v", n, got, ok)
		}
	}
	if s := FeltFromInt64(-5).String(); s != "-5" {
		t.Fatalf("String() = %q, want -5", s)
	}
	if !FeltFromInt64(-1).Add(FeltFromInt64(1)).IsZero() {
		t.Fatalf("-1 + 1 should be zero")
	}
	if got, _ := FeltFromInt64(3).Sub(FeltFromInt64(10)).Int64(); got != -7 {
		t.Fatalf("3 - 10 = %d", got)
	}
}

func TestFeltFromBytesLE(t *testing.T) {
	got, ok := FeltFromBytesLE([]byte{0x01, 0x02}).Int64()
	if !ok || got != 0x0201 {
		t.Fatalf("got %d, want %d", got, 0x0201)
	}
	sel := FeltFromBytesLE([]byte("call_contract"))
	if _, ok := sel.Int64(); ok {
		t.Fatalf("selector should not fit in int64")
	}
	if !sel.Lt(AddressBound) {
		t.Fatalf("selector should be below the address bound")
	}
}
