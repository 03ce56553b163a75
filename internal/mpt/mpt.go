// Package mpt implements a Merkle-Patricia authenticated index: one radix
// trie per keyword, holding a single key — the keyword itself — mapped to
// the canonical encoding of the fid list currently associated with it, and
// committing to that value via a 32-byte digest.
//
// The trie storage itself is github.com/hashicorp/go-immutable-radix, a
// path-compressed, copy-on-write radix tree commonly pulled in transitively
// through raft implementations. go-immutable-radix gives us structural
// sharing and a persistent node graph but, unlike a content-addressed
// Merkle trie, it does not expose a per-node cryptographic hash — so
// RootDigest folds a SHA-256 over the canonical fid-list encoding stored
// under the tree's one key to produce the commitment the wire protocol
// calls the MPT root.
package mpt

import (
	"crypto/sha256"
	"encoding/binary"
	"sync"

	iradix "github.com/hashicorp/go-immutable-radix"

	"github.com/dreamware/torua/internal/adserr"
)

// DigestSize is the fixed size of an MPT root digest.
const DigestSize = 32

// Digest is a 32-byte root commitment.
type Digest [DigestSize]byte

// MPT is the per-keyword authenticated index. The trie holds exactly one
// entry, keyed by keyword, whose value is the canonical encoding of the
// ordered fid list — this keeps Add/Delete/Membership/Fids/RootDigest all
// derived from a single source of truth instead of two structures that
// could drift out of sync.
type MPT struct {
	mu      sync.RWMutex
	keyword string
	tree    *iradix.Tree
}

// New returns an empty MPT for keyword, whose digest is the hash of the
// empty fid list.
func New(keyword string) *MPT {
	return &MPT{keyword: keyword, tree: iradix.New()}
}

// encodeFidList canonically encodes an ordered fid list as a length-prefixed
// concatenation of UTF-8 fid bytes: each entry is a 4-byte big-endian length
// followed by that many bytes. This is order-sensitive by construction, so
// the resulting digest reflects insertion order, not lexicographic order.
func encodeFidList(fids []string) []byte {
	var out []byte
	var lenBuf [4]byte
	for _, fid := range fids {
		binary.BigEndian.PutUint32(lenBuf[:], uint32(len(fid)))
		out = append(out, lenBuf[:]...)
		out = append(out, fid...)
	}
	return out
}

// decodeFidList reverses encodeFidList, recovering the fids in the order
// they were encoded.
func decodeFidList(b []byte) []string {
	var fids []string
	for len(b) >= 4 {
		n := binary.BigEndian.Uint32(b[:4])
		b = b[4:]
		if uint32(len(b)) < n {
			break
		}
		fids = append(fids, string(b[:n]))
		b = b[n:]
	}
	return fids
}

// fidsLocked reads the current ordered fid list out of the tree's single
// entry. Callers must hold m.mu.
func (m *MPT) fidsLocked() []string {
	v, ok := m.tree.Get([]byte(m.keyword))
	if !ok {
		return nil
	}
	return decodeFidList(v.([]byte))
}

// commitLocked writes fids back into the tree's single entry. Callers must
// hold m.mu (write-locked).
func (m *MPT) commitLocked(fids []string) {
	txn := m.tree.Txn()
	txn.Insert([]byte(m.keyword), encodeFidList(fids))
	m.tree = txn.Commit()
}

func (m *MPT) digestFromFids(fids []string) Digest {
	h := sha256.New()
	h.Write(encodeFidList(fids))
	var d Digest
	copy(d[:], h.Sum(nil))
	return d
}

// Add inserts fid into the set, preserving insertion order. Re-adding an
// already-present fid is a no-op and reported via adserr.ErrDuplicate,
// matching the accumulator's contract.
func (m *MPT) Add(fid string) (Digest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	fids := m.fidsLocked()
	for _, existing := range fids {
		if existing == fid {
			return m.digestFromFids(fids), adserr.ErrDuplicate
		}
	}
	fids = append(fids, fid)
	m.commitLocked(fids)
	return m.digestFromFids(fids), nil
}

// Delete removes fid from the set, failing with adserr.ErrNotMember if it
// was not present. The relative order of the remaining fids is preserved.
func (m *MPT) Delete(fid string) (Digest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	fids := m.fidsLocked()
	idx := -1
	for i, existing := range fids {
		if existing == fid {
			idx = i
			break
		}
	}
	if idx == -1 {
		return m.digestFromFids(fids), adserr.ErrNotMember
	}
	remaining := make([]string, 0, len(fids)-1)
	remaining = append(remaining, fids[:idx]...)
	remaining = append(remaining, fids[idx+1:]...)
	m.commitLocked(remaining)
	return m.digestFromFids(remaining), nil
}

// Membership reports whether fid is present, returning the current root
// digest either way; the caller is expected to treat a false member result
// as adserr.ErrNotMember at the ADS facade level.
func (m *MPT) Membership(fid string) (member bool, digest Digest) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	fids := m.fidsLocked()
	for _, existing := range fids {
		if existing == fid {
			return true, m.digestFromFids(fids)
		}
	}
	return false, m.digestFromFids(fids)
}

// Fids returns the fid list in the order the fids were added, matching the
// chronological Add(K, fid) order regardless of lexicographic value.
func (m *MPT) Fids() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	fids := m.fidsLocked()
	out := make([]string, len(fids))
	copy(out, fids)
	return out
}

// RootDigest returns the current 32-byte commitment.
func (m *MPT) RootDigest() Digest {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.digestFromFids(m.fidsLocked())
}
