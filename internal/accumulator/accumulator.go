package accumulator

import (
	"sync"

	"github.com/dreamware/torua/internal/adserr"
	"github.com/dreamware/torua/internal/crypto"
)

// Accumulator holds the per-keyword state: the committed group element,
// the multiset of accumulated elements, and the ordered list of fids not
// yet removed, kept in 1-to-1 correspondence.
//
// Concurrency: the storage node (internal/storagenode) takes no lock of its
// own around a mutation; the mutex here is what serializes mutations on the
// same keyword's instance, so Accumulator is safe for concurrent use.
type Accumulator struct {
	params *PublicParams

	mu      sync.RWMutex
	acc     crypto.G1
	coeffs  []crypto.Scalar
	present map[int64]int // element -> index into fids
	fids    []string
}

// New creates an empty accumulator, acc(∅) = g1.
func New(params *PublicParams) *Accumulator {
	return &Accumulator{
		params:  params,
		acc:     crypto.G1Generator(),
		coeffs:  []crypto.Scalar{crypto.ScalarFromInt64(1)},
		present: make(map[int64]int),
	}
}

// RootDigest returns the current committed G1 value, encoded in the wire
// protocol's 96-byte form.
func (a *Accumulator) RootDigest() []byte {
	a.mu.RLock()
	defer a.mu.RUnlock()
	b := a.acc.Bytes()
	return b[:]
}

// Fids returns the chronological fid list, excluding removed entries.
func (a *Accumulator) Fids() []string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	out := make([]string, len(a.fids))
	copy(out, a.fids)
	return out
}

// Add inserts element e (derived from keyword+fid by the caller) with fid
// as its payload. A duplicate is a no-op: the returned proof has A == B and
// adserr.ErrDuplicate is returned alongside it as a warning, not a failure.
func (a *Accumulator) Add(element int64, fid string) (Proof, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if _, ok := a.present[element]; ok {
		p := Proof{A: a.acc, Element: element, B: a.acc, Valid: true}
		return p, adserr.ErrDuplicate
	}

	newCoeffs := mulLinear(a.coeffs, crypto.ScalarFromInt64(element))
	newAcc, err := a.params.commit(newCoeffs)
	if err != nil {
		return Proof{}, adserr.New(adserr.KindInternal, "commit: %v", err)
	}

	p := Proof{A: a.acc, Element: element, B: newAcc}
	p.Valid = VerifyAdd(a.params, p)
	if !p.Valid {
		return p, adserr.New(adserr.KindInvalidProof, "self-verification failed for add")
	}

	a.present[element] = len(a.fids)
	a.fids = append(a.fids, fid)
	a.coeffs = newCoeffs
	a.acc = newAcc
	return p, nil
}

// Delete removes element e. Deleting an absent element fails deterministically
// with adserr.ErrNotMember and a proof whose Valid flag is false.
func (a *Accumulator) Delete(element int64) (Proof, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	idx, ok := a.present[element]
	if !ok {
		p := Proof{A: a.acc, Element: element, B: a.acc, Valid: false}
		return p, adserr.ErrNotMember
	}

	newCoeffs, remainder := divLinear(a.coeffs, crypto.ScalarFromInt64(element))
	if !remainder.IsZero() {
		return Proof{}, adserr.New(adserr.KindInternal, "non-zero remainder dividing out member element")
	}
	newAcc, err := a.params.commit(newCoeffs)
	if err != nil {
		return Proof{}, adserr.New(adserr.KindInternal, "commit: %v", err)
	}

	p := Proof{A: a.acc, Element: element, B: newAcc}
	p.Valid = VerifyDelete(a.params, p)
	if !p.Valid {
		return p, adserr.New(adserr.KindInvalidProof, "self-verification failed for delete")
	}

	a.removeFid(idx)
	delete(a.present, element)
	a.coeffs = newCoeffs
	a.acc = newAcc
	return p, nil
}

// removeFid drops fids[idx] and reindexes present for every fid shifted
// left by the removal, keeping the element-to-index invariant intact.
func (a *Accumulator) removeFid(idx int) {
	a.fids = append(a.fids[:idx], a.fids[idx+1:]...)
	for e, i := range a.present {
		if i > idx {
			a.present[e] = i - 1
		}
	}
}

// Membership proves element is currently a member, failing with
// adserr.ErrNotMember if it is not.
func (a *Accumulator) Membership(element int64) (Proof, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	if _, ok := a.present[element]; !ok {
		return Proof{}, adserr.ErrNotMember
	}

	witnessCoeffs, remainder := divLinear(a.coeffs, crypto.ScalarFromInt64(element))
	if !remainder.IsZero() {
		return Proof{}, adserr.New(adserr.KindInternal, "non-zero remainder computing witness")
	}
	witness, err := a.params.commit(witnessCoeffs)
	if err != nil {
		return Proof{}, adserr.New(adserr.KindInternal, "commit: %v", err)
	}

	p := Proof{A: witness, Element: element, B: a.acc}
	p.Valid = VerifyMembership(a.params, p)
	if !p.Valid {
		return p, adserr.New(adserr.KindInvalidProof, "self-verification failed for membership")
	}
	return p, nil
}

// Len reports the number of elements currently accumulated.
func (a *Accumulator) Len() int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return len(a.fids)
}
