package mpt

import "fmt"

// Proof is the MPT's wire-level attestation: the root digest at the time of
// the operation, together with whether the queried fid was a member.
// Encoded form is 0 bytes (NotMember / no digest to show) or DigestSize
// bytes (Member, carrying the root); other lengths are tolerated leniently
// rather than rejected outright, so ParseProof only fails on lengths it
// cannot interpret at all.
type Proof struct {
	Root   Digest
	Member bool
}

// Bytes encodes the proof per the wire layout above.
func (p Proof) Bytes() []byte {
	if !p.Member {
		return nil
	}
	out := make([]byte, DigestSize)
	copy(out, p.Root[:])
	return out
}

// ParseProof decodes an MPT proof. A zero-length payload means NotMember;
// a DigestSize payload means Member with the given root. Any other length
// is accepted leniently: the leading bytes (up to DigestSize) are taken as
// the root and the proof is treated as a member claim, so non-conforming
// lengths are tolerated rather than rejected.
func ParseProof(b []byte) (Proof, error) {
	switch len(b) {
	case 0:
		return Proof{}, nil
	case DigestSize:
		var d Digest
		copy(d[:], b)
		return Proof{Root: d, Member: true}, nil
	default:
		if len(b) > 1<<20 {
			return Proof{}, fmt.Errorf("mpt: implausible proof length %d", len(b))
		}
		var d Digest
		copy(d[:], b)
		return Proof{Root: d, Member: true}, nil
	}
}
