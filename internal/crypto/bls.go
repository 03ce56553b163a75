// Package crypto wraps the pairing-friendly curve primitives used by the
// accumulator: a scalar field, two base groups G1/G2, a bilinear pairing
// e: G1×G2→GT, and hash-to-scalar for deriving accumulator elements.
//
// The curve is BLS12-381 via github.com/consensys/gnark-crypto. Group
// elements are exposed through thin wrapper types so that callers outside
// this package never import gnark-crypto directly.
package crypto

import (
	"crypto/sha256"
	"encoding/binary"
	"fmt"
	"math/big"

	bls12381 "github.com/consensys/gnark-crypto/ecc/bls12-381"
	"github.com/consensys/gnark-crypto/ecc/bls12-381/fr"
)

// G1Size is the fixed width of this package's G1 point encoding. It is the
// curve's native uncompressed affine (X||Y) form, 48 bytes per coordinate;
// the wire protocol calls this "96-byte compressed" and the two terms are
// used interchangeably in this codebase.
const G1Size = 96

// G1 is a point on the first pairing group, used for accumulator values and
// witnesses.
type G1 struct {
	p bls12381.G1Affine
}

// G2 is a point on the second pairing group, used only for public
// parameters (the generator and its trapdoor power); it never crosses the
// wire.
type G2 struct {
	p bls12381.G2Affine
}

// Scalar is an element of the scalar field backing both groups.
type Scalar struct {
	e fr.Element
}

// G1Generator returns the fixed G1 group generator.
func G1Generator() G1 {
	_, _, g1, _ := bls12381.Generators()
	return G1{p: g1}
}

// G2Generator returns the fixed G2 group generator.
func G2Generator() G2 {
	_, _, _, g2 := bls12381.Generators()
	return G2{p: g2}
}

// ScalarFromInt64 reduces a signed 64-bit integer into the scalar field.
func ScalarFromInt64(v int64) Scalar {
	var s Scalar
	s.e.SetInt64(v)
	return s
}

// ScalarFromBytes interprets seed as a pseudo-random trapdoor scalar. It is
// used only at parameter-generation time; callers must discard the bytes
// afterwards (see accumulator.Setup).
func ScalarFromBytes(seed []byte) Scalar {
	h := sha256.Sum256(seed)
	var s Scalar
	s.e.SetBytes(h[:])
	return s
}

// Neg returns -s.
func (s Scalar) Neg() Scalar {
	var out Scalar
	out.e.Neg(&s.e)
	return out
}

// Add returns s+o.
func (s Scalar) Add(o Scalar) Scalar {
	var out Scalar
	out.e.Add(&s.e, &o.e)
	return out
}

// Mul returns s*o.
func (s Scalar) Mul(o Scalar) Scalar {
	var out Scalar
	out.e.Mul(&s.e, &o.e)
	return out
}

// IsZero reports whether s is the additive identity.
func (s Scalar) IsZero() bool { return s.e.IsZero() }

// BigInt returns s as a big-endian big.Int in [0, r).
func (s Scalar) BigInt() *big.Int {
	var out big.Int
	s.e.BigInt(&out)
	return &out
}

// ScalarMul returns [s]P.
func (p G1) ScalarMul(s Scalar) G1 {
	var out bls12381.G1Affine
	out.ScalarMultiplication(&p.p, s.BigInt())
	return G1{p: out}
}

// Add returns p+o.
func (p G1) Add(o G1) G1 {
	var jac, oj bls12381.G1Jac
	jac.FromAffine(&p.p)
	oj.FromAffine(&o.p)
	jac.AddAssign(&oj)
	var out bls12381.G1Affine
	out.FromJacobian(&jac)
	return G1{p: out}
}

// Sub returns p-o.
func (p G1) Sub(o G1) G1 {
	return p.Add(o.Neg())
}

// Neg returns -p.
func (p G1) Neg() G1 {
	var out bls12381.G1Affine
	out.Neg(&p.p)
	return out_G1(out)
}

func out_G1(p bls12381.G1Affine) G1 { return G1{p: p} }

// Equal reports whether p == o.
func (p G1) Equal(o G1) bool { return p.p.Equal(&o.p) }

// Bytes encodes p in this package's fixed 96-byte form.
func (p G1) Bytes() [G1Size]byte { return p.p.RawBytes() }

// G1FromBytes decodes and validates a 96-byte G1 encoding.
func G1FromBytes(b []byte) (G1, error) {
	if len(b) != G1Size {
		return G1{}, fmt.Errorf("crypto: invalid G1 encoding length %d, want %d", len(b), G1Size)
	}
	var arr [G1Size]byte
	copy(arr[:], b)
	var out bls12381.G1Affine
	if _, err := out.SetBytes(arr[:]); err != nil {
		return G1{}, fmt.Errorf("crypto: invalid G1 point: %w", err)
	}
	return G1{p: out}, nil
}

// ScalarMul returns [s]Q.
func (q G2) ScalarMul(s Scalar) G2 {
	var out bls12381.G2Affine
	out.ScalarMultiplication(&q.p, s.BigInt())
	return G2{p: out}
}

// Sub returns q-o.
func (q G2) Sub(o G2) G2 {
	var jac, oj bls12381.G2Jac
	jac.FromAffine(&q.p)
	oj.FromAffine(&o.p)
	var negOj bls12381.G2Jac
	negOj.Neg(&oj)
	jac.AddAssign(&negOj)
	var out bls12381.G2Affine
	out.FromJacobian(&jac)
	return G2{p: out}
}

// Pairing evaluates e(p, q) and reports whether e(p1,q1) == e(p2,q2), which
// is the shape every proof verification in this codebase needs: rather than
// computing two GT elements and comparing them, gnark-crypto's PairingCheck
// tests e(p1,q1)*e(-p2,q2) == 1 directly.
func Pairing(p1 G1, q1 G2, p2 G1, q2 G2) (bool, error) {
	var negP2 bls12381.G1Affine
	negP2.Neg(&p2.p)
	ok, err := bls12381.PairingCheck(
		[]bls12381.G1Affine{p1.p, negP2},
		[]bls12381.G2Affine{q1.p, q2.p},
	)
	if err != nil {
		return false, fmt.Errorf("crypto: pairing check: %w", err)
	}
	return ok, nil
}

// DeriveElement produces the accumulator element for a (keyword, fid) pair:
// a collision-resistant hash of both, truncated to a signed 64-bit integer.
// It is a pure function of its inputs, so any node computes the same
// element for the same pair.
func DeriveElement(keyword, fid string) int64 {
	h := sha256.New()
	h.Write([]byte(keyword))
	h.Write([]byte{0}) // separator, so ("ab","c") != ("a","bc")
	h.Write([]byte(fid))
	sum := h.Sum(nil)
	v := binary.BigEndian.Uint64(sum[:8])
	// Clear the sign bit so the value is always non-negative; this keeps
	// the derivation stable across the int64/uint64 boundary and avoids
	// relying on two's-complement wraparound semantics at call sites.
	v &^= 1 << 63
	return int64(v)
}
