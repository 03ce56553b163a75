// Package storagenode implements the per-process storage-node service: a
// map from keyword to its ADS instance, guarded by the reader/writer lock
// discipline the concurrency model calls for — a shared read lock over the
// map to locate or create an entry, upgraded to an exclusive lock on the
// specific keyword's instance for mutations, with a brief exclusive map
// lock only when a new keyword entry must be created.
package storagenode

import (
	"strings"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/dreamware/torua/internal/accumulator"
	"github.com/dreamware/torua/internal/ads"
	"github.com/dreamware/torua/internal/adserr"
	"github.com/dreamware/torua/internal/storage"
)

// DefaultCacheSize bounds how many keyword ADS instances stay resident
// before the least-recently-used one is evicted. Eviction here only drops
// the in-memory instance from the cache map; it is not the same as a
// keyword's fid list emptying out, since a fresh instance for the same
// keyword starts over at acc(∅) — this is a deliberate implementation
// bound for an in-memory-only core, recorded in DESIGN.md.
const DefaultCacheSize = 4096

// Node is a storage node's runtime state: one ADS instance per keyword,
// created lazily on first mention.
type Node struct {
	kind   ads.Kind
	params *accumulator.PublicParams

	mu      sync.RWMutex
	entries *lru.Cache[string, ads.ADS]

	// snapshot, if set, is written through on every successful Add/Delete
	// with the keyword's current fid list. It is not consulted on startup
	// or on the read path — Query always answers from the live ADS
	// instance — so it is strictly an out-of-band mirror for admin
	// inspection and crash-forensics, not a source of truth the node
	// reloads from.
	snapshot storage.Store
}

// Option configures optional Node behavior at construction time.
type Option func(*Node)

// WithSnapshotStore mirrors every successful Add/Delete's resulting fid
// list for keyword into store, keyed by keyword. It is a write-through
// side channel: Node never reads from store to answer a Query, so a
// store swapped in after construction only affects what an operator can
// inspect out of band, not query results.
func WithSnapshotStore(store storage.Store) Option {
	return func(n *Node) { n.snapshot = store }
}

// New constructs a Node running the given ADS kind. params is required
// when kind is ads.KindAccumulator and ignored for ads.KindMPT.
func New(kind ads.Kind, params *accumulator.PublicParams, opts ...Option) (*Node, error) {
	cache, err := lru.New[string, ads.ADS](DefaultCacheSize)
	if err != nil {
		return nil, adserr.New(adserr.KindInternal, "allocate ADS cache: %v", err)
	}
	n := &Node{kind: kind, params: params, entries: cache}
	for _, opt := range opts {
		opt(n)
	}
	return n, nil
}

// snapshotKeyword writes the keyword's current fid list to the snapshot
// store, if one is configured. An empty fid list still writes an empty
// value rather than deleting the key, so the keyword's last-known state
// (empty) is distinguishable from never having been mirrored at all.
func (n *Node) snapshotKeyword(keyword string, fids []string) {
	if n.snapshot == nil {
		return
	}
	n.snapshot.Put(keyword, []byte(strings.Join(fids, "\n")))
}

// SnapshotStats reports the configured snapshot store's statistics, or
// the zero value if no snapshot store was configured.
func (n *Node) SnapshotStats() storage.StoreStats {
	if n.snapshot == nil {
		return storage.StoreStats{}
	}
	return n.snapshot.Stats()
}

// instance returns the ADS for keyword, creating it under a brief
// exclusive map lock if this is the keyword's first mention.
func (n *Node) instance(keyword string) (ads.ADS, error) {
	n.mu.RLock()
	inst, ok := n.entries.Get(keyword)
	n.mu.RUnlock()
	if ok {
		return inst, nil
	}

	n.mu.Lock()
	defer n.mu.Unlock()
	if inst, ok := n.entries.Get(keyword); ok {
		return inst, nil
	}
	inst, err := ads.New(n.kind, n.params, keyword)
	if err != nil {
		return nil, err
	}
	n.entries.Add(keyword, inst)
	return inst, nil
}

// existingInstance looks up a keyword's ADS without creating one, used by
// Query so that a never-mentioned keyword reports the empty case instead of
// fabricating state.
func (n *Node) existingInstance(keyword string) (ads.ADS, bool) {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.entries.Get(keyword)
}

// Add associates fid with keyword, returning the mutation proof and the
// instance's new root digest. A duplicate (keyword, fid) pair is reported
// via adserr.ErrDuplicate alongside a valid no-op proof, not a hard error.
func (n *Node) Add(keyword, fid string) (proof []byte, root []byte, err error) {
	inst, err := n.instance(keyword)
	if err != nil {
		return nil, nil, err
	}
	proof, err = inst.Add(fid)
	n.snapshotKeyword(keyword, inst.Fids())
	return proof, inst.RootDigest(), err
}

// Delete removes fid from keyword, failing with adserr.ErrNotMember if it
// was not present. The keyword's ADS instance is kept even if the fid list
// becomes empty; the storage node makes no promise either way, and the
// coordinator must not assume eviction.
func (n *Node) Delete(keyword, fid string) (proof []byte, root []byte, err error) {
	inst, err := n.instance(keyword)
	if err != nil {
		return nil, nil, err
	}
	proof, err = inst.Delete(fid)
	n.snapshotKeyword(keyword, inst.Fids())
	return proof, inst.RootDigest(), err
}

// Query returns the current fid list for keyword together with a
// representative membership proof over the most recently inserted
// still-present fid. A keyword with no ADS instance yet (never mentioned)
// returns an empty list and an empty proof, which the coordinator treats
// as a verified success without calling the verifier.
func (n *Node) Query(keyword string) (fids []string, proof []byte, err error) {
	inst, ok := n.existingInstance(keyword)
	if !ok {
		return nil, nil, nil
	}
	fids = inst.Fids()
	if len(fids) == 0 {
		return fids, nil, nil
	}
	proof, err = inst.Query(fids[len(fids)-1])
	return fids, proof, err
}
