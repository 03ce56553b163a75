package accumulator

import (
	"encoding/binary"
	"fmt"

	"github.com/dreamware/torua/internal/crypto"
)

// ProofSize is the fixed wire size of an accumulator proof: 96 bytes G1,
// 8 bytes little-endian signed element, 96 bytes G1, 1 byte valid flag.
const ProofSize = crypto.G1Size + 8 + crypto.G1Size + 1

// Proof is the shared 201-byte layout used by Add, Delete, and Membership.
// Field A is old_acc for Add/Delete or witness for Membership; field B is
// new_acc for Add/Delete or the acc value for Membership.
type Proof struct {
	A       crypto.G1
	Element int64
	B       crypto.G1
	Valid   bool
}

// Bytes serializes the proof to its fixed 201-byte wire form.
func (p Proof) Bytes() []byte {
	out := make([]byte, ProofSize)
	aBytes := p.A.Bytes()
	copy(out[0:96], aBytes[:])
	binary.LittleEndian.PutUint64(out[96:104], uint64(p.Element))
	bBytes := p.B.Bytes()
	copy(out[104:200], bBytes[:])
	if p.Valid {
		out[200] = 1
	}
	return out
}

// ParseProof decodes a 201-byte accumulator proof, validating the embedded
// curve points. A structural failure here is itself an InvalidProof
// condition: the caller should treat a decode error as proof verification
// failure, not as a separate class of error.
func ParseProof(b []byte) (Proof, error) {
	if len(b) != ProofSize {
		return Proof{}, fmt.Errorf("accumulator: invalid proof length %d, want %d", len(b), ProofSize)
	}
	a, err := crypto.G1FromBytes(b[0:96])
	if err != nil {
		return Proof{}, fmt.Errorf("accumulator: decode field A: %w", err)
	}
	element := int64(binary.LittleEndian.Uint64(b[96:104]))
	bPoint, err := crypto.G1FromBytes(b[104:200])
	if err != nil {
		return Proof{}, fmt.Errorf("accumulator: decode field B: %w", err)
	}
	return Proof{A: a, Element: element, B: bPoint, Valid: b[200] == 1}, nil
}

// VerifyAdd checks an Add proof: either it is a no-op (old_acc == new_acc,
// accepted unconditionally under the duplicate-handling rule) or the
// pairing relation e(new_acc, g2) == e(old_acc, g2^tau / g2^e) holds.
func VerifyAdd(params *PublicParams, p Proof) bool {
	if p.A.Equal(p.B) {
		return true
	}
	g2e := params.g2Gen.ScalarMul(crypto.ScalarFromInt64(p.Element))
	rhs := params.g2Tau.Sub(g2e)
	ok, err := crypto.Pairing(p.B, params.g2Gen, p.A, rhs)
	return err == nil && ok
}

// VerifyDelete checks a Delete proof: the dual of VerifyAdd, old_acc plays
// the role Add's new_acc plays and vice versa.
func VerifyDelete(params *PublicParams, p Proof) bool {
	if p.A.Equal(p.B) {
		return true
	}
	g2e := params.g2Gen.ScalarMul(crypto.ScalarFromInt64(p.Element))
	rhs := params.g2Tau.Sub(g2e)
	ok, err := crypto.Pairing(p.A, params.g2Gen, p.B, rhs)
	return err == nil && ok
}

// VerifyMembership checks that witness (field A) attests element is a
// member of the set committed to by acc (field B): e(witness, g2^tau/g2^e)
// == e(acc, g2).
func VerifyMembership(params *PublicParams, p Proof) bool {
	g2e := params.g2Gen.ScalarMul(crypto.ScalarFromInt64(p.Element))
	rhs := params.g2Tau.Sub(g2e)
	ok, err := crypto.Pairing(p.A, rhs, p.B, params.g2Gen)
	return err == nil && ok
}
