// Package coordinator implements the orchestration layer for torua's
// verifiable keyword index: routing, proof verification, root-digest
// tracking, and boolean-query planning. See doc.go for package docs.
package coordinator

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/cespare/xxhash/v2"
)

// VirtualNodesPerNode is how many points each storage node occupies on the
// ring. More points smooth the distribution at the cost of a larger sorted
// index; a small cluster needs virtual nodes so it doesn't skew badly under
// a non-uniform keyword distribution.
const VirtualNodesPerNode = 150

// KeywordRing is the coordinator's consistent-hash ring: a deterministic,
// immutable-after-construction mapping from 64-bit hash positions to
// storage-node identities. Dynamic ring membership changes at runtime are
// out of scope, so the ring is rebuilt wholesale rather
// than incrementally updated; SetNodes is the only write path and it
// replaces the full point set.
type KeywordRing struct {
	mu     sync.RWMutex
	points []ringPoint // sorted by hash
	nodes  map[string]bool
}

type ringPoint struct {
	hash   uint64
	nodeID string
}

// NewKeywordRing constructs an empty ring; nodes are added all at once with
// SetNodes.
func NewKeywordRing() *KeywordRing {
	return &KeywordRing{nodes: make(map[string]bool)}
}

// SetNodes rebuilds the ring from scratch for the given node IDs. Existing
// points are discarded; this is the only supported way to change cluster
// membership. The ring is immutable between explicit (re)builds, since the
// storage-node set is loaded once from static configuration.
func (r *KeywordRing) SetNodes(nodeIDs []string) error {
	if len(nodeIDs) == 0 {
		return errors.New("coordinator: ring requires at least one node")
	}

	points := make([]ringPoint, 0, len(nodeIDs)*VirtualNodesPerNode)
	nodes := make(map[string]bool, len(nodeIDs))
	for _, id := range nodeIDs {
		nodes[id] = true
		for v := 0; v < VirtualNodesPerNode; v++ {
			key := fmt.Sprintf("%s#%d", id, v)
			points = append(points, ringPoint{hash: xxhash.Sum64String(key), nodeID: id})
		}
	}
	sort.Slice(points, func(i, j int) bool { return points[i].hash < points[j].hash })

	r.mu.Lock()
	defer r.mu.Unlock()
	r.points = points
	r.nodes = nodes
	return nil
}

// NodeForKeyword returns the storage node that owns keyword, selected by
// walking clockwise from keyword's hash position to the first ring point.
func (r *KeywordRing) NodeForKeyword(keyword string) (string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if len(r.points) == 0 {
		return "", errors.New("coordinator: ring has no nodes registered")
	}

	h := xxhash.Sum64String(keyword)
	idx := sort.Search(len(r.points), func(i int) bool { return r.points[i].hash >= h })
	if idx == len(r.points) {
		idx = 0
	}
	return r.points[idx].nodeID, nil
}

// Nodes returns the distinct node IDs currently on the ring, in no
// particular order.
func (r *KeywordRing) Nodes() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.nodes))
	for id := range r.nodes {
		out = append(out, id)
	}
	return out
}

// HasNode reports whether nodeID currently holds any ring points.
func (r *KeywordRing) HasNode(nodeID string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.nodes[nodeID]
}
