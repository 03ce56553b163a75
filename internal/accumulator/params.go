// Package accumulator implements a dynamic bilinear accumulator: a
// constant-size commitment to a set of derived elements, supporting Add,
// Delete, and Membership with proofs any holder of the public parameters
// can verify without touching the storage node's state.
package accumulator

import (
	"fmt"

	"github.com/dreamware/torua/internal/crypto"
)

// DefaultMaxDegree bounds the size any single keyword's element set may
// reach. It is an implementation choice, not part of the wire contract;
// raising it only costs SRS memory at Setup time.
const DefaultMaxDegree = 4096

// PublicParams is the one-time, shared "powers of tau" ceremony output every
// storage node must load identically. The trapdoor scalar used to derive it
// is never stored here: Setup discards it the moment the SRS is built.
// Regenerating tau per-process would make accumulators on different nodes
// permanently incompatible.
type PublicParams struct {
	// srs holds g1^(tau^0), g1^(tau^1), ..., g1^(tau^maxDegree).
	srs []crypto.G1

	g2Gen crypto.G2
	g2Tau crypto.G2

	maxDegree int
}

// MaxDegree returns the largest element-set size these parameters support.
func (p *PublicParams) MaxDegree() int { return p.maxDegree }

// Setup runs the one-time parameter ceremony. seed deterministically derives
// the trapdoor so that every storage node calling Setup with the same seed
// and maxDegree obtains byte-identical parameters; production deployments
// would instead load a parameter file generated once and distributed to
// every node, but a fixed seed serves the same purpose for this exercise.
func Setup(seed []byte, maxDegree int) (*PublicParams, error) {
	if maxDegree <= 0 {
		return nil, fmt.Errorf("accumulator: maxDegree must be positive, got %d", maxDegree)
	}

	tau := crypto.ScalarFromBytes(seed) // discarded when Setup returns

	g1 := crypto.G1Generator()
	g2 := crypto.G2Generator()

	srs := make([]crypto.G1, maxDegree+1)
	power := crypto.ScalarFromInt64(1)
	for i := 0; i <= maxDegree; i++ {
		srs[i] = g1.ScalarMul(power)
		power = power.Mul(tau)
	}

	return &PublicParams{
		srs:       srs,
		g2Gen:     g2,
		g2Tau:     g2.ScalarMul(tau),
		maxDegree: maxDegree,
	}, nil
}

// commit evaluates the KZG-style commitment of the polynomial whose
// coefficients are given (index i is the coefficient of x^i) against the
// SRS, without ever needing the trapdoor itself.
func (p *PublicParams) commit(coeffs []crypto.Scalar) (crypto.G1, error) {
	if len(coeffs) > len(p.srs) {
		return crypto.G1{}, fmt.Errorf("accumulator: degree %d exceeds max %d", len(coeffs)-1, p.maxDegree)
	}
	acc := p.srs[0].ScalarMul(coeffs[0])
	for i := 1; i < len(coeffs); i++ {
		acc = acc.Add(p.srs[i].ScalarMul(coeffs[i]))
	}
	return acc, nil
}
