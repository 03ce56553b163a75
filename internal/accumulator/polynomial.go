package accumulator

import "github.com/dreamware/torua/internal/crypto"

// mulLinear multiplies the polynomial represented by coeffs (index i is the
// coefficient of x^i) by (x - root), returning a polynomial one degree
// higher. This is how add(e) extends the characteristic polynomial f_S
// without ever evaluating it at the trapdoor.
func mulLinear(coeffs []crypto.Scalar, root crypto.Scalar) []crypto.Scalar {
	n := len(coeffs)
	out := make([]crypto.Scalar, n+1)
	negRoot := root.Neg()

	out[0] = coeffs[0].Mul(negRoot)
	for i := 1; i < n; i++ {
		out[i] = coeffs[i-1].Add(coeffs[i].Mul(negRoot))
	}
	out[n] = coeffs[n-1]
	return out
}

// divLinear performs synthetic division of coeffs by (x - root), returning
// the quotient (one degree lower) and the remainder. For a root actually
// present in the set, the remainder is zero; callers that expect this to
// hold should check it to catch state corruption.
func divLinear(coeffs []crypto.Scalar, root crypto.Scalar) (quotient []crypto.Scalar, remainder crypto.Scalar) {
	n := len(coeffs) - 1
	if n < 0 {
		return nil, crypto.ScalarFromInt64(0)
	}
	q := make([]crypto.Scalar, n)
	if n == 0 {
		return q, coeffs[0]
	}

	q[n-1] = coeffs[n]
	for i := n - 1; i >= 1; i-- {
		q[i-1] = coeffs[i].Add(root.Mul(q[i]))
	}
	remainder = coeffs[0].Add(root.Mul(q[0]))
	return q, remainder
}
