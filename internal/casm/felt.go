package casm

import (
	"github.com/holiman/uint256"
)

// Prime is the field modulus 2^251 + 17*2^192 + 1.
var Prime = func() *uint256.Int {
	p := new(uint256.Int).Lsh(uint256.NewInt(1), 251)
	p.Add(p, new(uint256.Int).Lsh(uint256.NewInt(17), 192))
	return p.AddUint64(p, 1)
}()

// AddressBound is the exclusive upper bound of a contract address.
var AddressBound = func() *uint256.Int {
	b := new(uint256.Int).Lsh(uint256.NewInt(1), 251)
	return b.SubUint64(b, 256)
}()

var halfPrime = new(uint256.Int).Rsh(Prime, 1)

// Felt is a field element. The zero value is 0.
type Felt struct {
	v uint256.Int
}

// FeltFromInt64 maps n into the field; negative values wrap to Prime-|n|.
func FeltFromInt64(n int64) Felt {
	var f Felt
	if n >= 0 {
		f.v.SetUint64(uint64(n))
		return f
	}
	mag := uint64(-(n + 1)) + 1
	f.v.Sub(Prime, uint256.NewInt(mag))
	return f
}

// FeltFromUint256 reduces u modulo Prime.
func FeltFromUint256(u *uint256.Int) Felt {
	var f Felt
	f.v.Mod(u, Prime)
	return f
}

// FeltFromBytesLE interprets b as a little-endian unsigned integer. Inputs
// longer than 32 bytes are truncated to their low 32 bytes.
func FeltFromBytesLE(b []byte) Felt {
	if len(b) > 32 {
		b = b[:32]
	}
	be := make([]byte, len(b))
	for i, c := range b {
		be[len(b)-1-i] = c
	}
	return FeltFromUint256(new(uint256.Int).SetBytes(be))
}

// Uint256 returns a copy of the canonical representative.
func (f Felt) Uint256() *uint256.Int { return new(uint256.Int).Set(&f.v) }

func (f Felt) IsZero() bool { return f.v.IsZero() }

func (f Felt) Equal(o Felt) bool { return f.v.Eq(&o.v) }

// Lt compares canonical representatives.
func (f Felt) Lt(u *uint256.Int) bool { return f.v.Lt(u) }

func (f Felt) Add(o Felt) Felt {
	var r Felt
	r.v.AddMod(&f.v, &o.v, Prime)
	return r
}

func (f Felt) Neg() Felt {
	if f.IsZero() {
		return f
	}
	var r Felt
	r.v.Sub(Prime, &f.v)
	return r
}

func (f Felt) Sub(o Felt) Felt { return f.Add(o.Neg()) }

// Int64 returns the signed value of f when it fits, treating the upper half
// of the field as negative.
func (f Felt) Int64() (int64, bool) {
	if f.v.Gt(halfPrime) {
		neg := new(uint256.Int).Sub(Prime, &f.v)
		if !neg.IsUint64() || neg.Uint64() > 1<<63 {
			return 0, false
		}
		return -int64(neg.Uint64()-1) - 1, true
	}
	if !f.v.IsUint64() || f.v.Uint64() > 1<<63-1 {
		return 0, false
	}
	return int64(f.v.Uint64()), true
}

// String prints values in the upper half of the field as negatives.
func (f Felt) String() string {
	if f.v.Gt(halfPrime) {
		return "-" + new(uint256.Int).Sub(Prime, &f.v).Dec()
	}
	return f.v.Dec()
}
