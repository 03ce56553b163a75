package coordinator

import (
	"context"
	"fmt"

	"github.com/dreamware/torua/internal/adserr"
	"github.com/dreamware/torua/internal/boolq"
)

// AddressBook resolves a node ID to the address the coordinator dials,
// satisfied by *server's in-memory node list in cmd/coordinator.
type AddressBook interface {
	AddrForNode(nodeID string) (string, bool)
}

// Planner decomposes boolean keyword queries into per-leaf storage-node
// calls, verifies every leaf proof, and assembles the composite proof
// described by DecodeComposite below.
type Planner struct {
	ring     *KeywordRing
	book     AddressBook
	verifier *Verifier
	roots    *RootRegistry
}

// NewPlanner wires together the components a boolean query needs to
// resolve: the ring (routing), the address book (node_id -> addr), the
// verifier (proof checking), and the root registry (post-verification
// bookkeeping).
func NewPlanner(ring *KeywordRing, book AddressBook, verifier *Verifier, roots *RootRegistry) *Planner {
	return &Planner{ring: ring, book: book, verifier: verifier, roots: roots}
}

// leafResult captures one keyword's verified query outcome.
type leafResult struct {
	keyword string
	fids    []string
	proof   []byte
}

// compositeProofKind tags the composite proof's first byte; today there is
// only one planner, but the tag leaves room for a future aggregation
// scheme without breaking the wire format.
const compositeProofKindConcat byte = 1

// Execute runs a boolean query expression end-to-end: parse, route each
// leaf keyword to its storage node, verify every leaf proof, evaluate the
// expression's set algebra, and return the fid list with the composite
// proof.
func (p *Planner) Execute(ctx context.Context, expression string) (fids []string, composite []byte, err error) {
	expr, err := boolq.Parse(expression)
	if err != nil {
		return nil, nil, err
	}

	leaves := expr.Leaves()
	leafResults := make(map[string][]string, len(leaves))
	var proofs [][]byte

	for _, keyword := range leaves {
		res, err := p.queryLeaf(ctx, keyword)
		if err != nil {
			return nil, nil, adserr.New(adserr.KindOf(err), "leaf %q: %v", keyword, err)
		}
		leafResults[res.keyword] = res.fids
		proofs = append(proofs, res.proof)
	}

	result, err := boolq.Evaluate(expr, leafResults)
	if err != nil {
		return nil, nil, err
	}

	return result, encodeComposite(proofs), nil
}

// queryLeaf routes keyword to its storage node, queries it, and verifies
// the returned proof before accepting the fid list as trustworthy.
func (p *Planner) queryLeaf(ctx context.Context, keyword string) (leafResult, error) {
	nodeID, err := p.ring.NodeForKeyword(keyword)
	if err != nil {
		return leafResult{}, adserr.New(adserr.KindRouting, "%v", err)
	}
	addr, ok := p.book.AddrForNode(nodeID)
	if !ok {
		return leafResult{}, adserr.New(adserr.KindRouting, "node %q not registered", nodeID)
	}

	fids, proof, err := queryKeyword(ctx, addr, keyword)
	if err != nil {
		return leafResult{}, err
	}
	if err := p.verifier.VerifyMembership(proof); err != nil {
		return leafResult{}, err
	}
	return leafResult{keyword: keyword, fids: fids, proof: proof}, nil
}

// encodeComposite assembles the composite proof: a one-byte kind tag, a
// two-byte big-endian component count, then the concatenated component
// proofs. There is no delimiter between components; a verifier re-checking
// an individual component must already know its ADS's fixed stride.
func encodeComposite(proofs [][]byte) []byte {
	out := make([]byte, 0, 3)
	out = append(out, compositeProofKindConcat)
	count := len(proofs)
	out = append(out, byte(count>>8), byte(count))
	for _, p := range proofs {
		out = append(out, p...)
	}
	return out
}

// DecodeComposite splits a composite proof's header from its concatenated
// component bytes, for callers (such as tests) that want to
// re-verify individual components.
func DecodeComposite(composite []byte) (kind byte, count int, rest []byte, err error) {
	if len(composite) < 3 {
		return 0, 0, nil, fmt.Errorf("coordinator: composite proof too short: %d bytes", len(composite))
	}
	kind = composite[0]
	count = int(composite[1])<<8 | int(composite[2])
	return kind, count, composite[3:], nil
}
