package coordinator

import (
	"context"

	"github.com/dreamware/torua/internal/adserr"
)

// AddFid associates fid with every keyword in keywords: for each keyword it
// routes to the owning storage node, issues Add, and verifies the returned
// proof before recording the node's new root digest. A verification failure
// on any keyword fails the whole call; keywords already applied before the
// failure are NOT rolled back — the caller is responsible for compensating
// updates.
func (p *Planner) AddFid(ctx context.Context, fid string, keywords []string) error {
	for _, keyword := range keywords {
		if err := p.mutateOne(ctx, keyword, fid, true); err != nil {
			return adserr.New(adserr.KindOf(err), "add fid %q to keyword %q: %v", fid, keyword, err)
		}
	}
	return nil
}

// DeleteFid removes fid from every keyword in keywords, with the same
// per-keyword verification and no-rollback-on-partial-failure policy as
// AddFid.
func (p *Planner) DeleteFid(ctx context.Context, fid string, keywords []string) error {
	for _, keyword := range keywords {
		if err := p.mutateOne(ctx, keyword, fid, false); err != nil {
			return adserr.New(adserr.KindOf(err), "delete fid %q from keyword %q: %v", fid, keyword, err)
		}
	}
	return nil
}

// UpdateFid renames fid from oldKeyword to newKeyword: a Delete on
// oldKeyword followed by an Add on newKeyword, each independently verified.
// If the Delete succeeds but the Add fails, the Delete is NOT undone —
// partial failure is surfaced honestly rather than papered over with a
// synthetic rollback.
func (p *Planner) UpdateFid(ctx context.Context, fid, oldKeyword, newKeyword string) error {
	if err := p.mutateOne(ctx, oldKeyword, fid, false); err != nil {
		return adserr.New(adserr.KindOf(err), "update: delete fid %q from keyword %q: %v", fid, oldKeyword, err)
	}
	if err := p.mutateOne(ctx, newKeyword, fid, true); err != nil {
		return adserr.New(adserr.KindOf(err), "update: add fid %q to keyword %q (old keyword already removed): %v", fid, newKeyword, err)
	}
	return nil
}

// mutateOne performs a single Add or Delete against the storage node
// owning keyword, verifies the returned proof, and on success records the
// node's new root digest in the registry.
func (p *Planner) mutateOne(ctx context.Context, keyword, fid string, isAdd bool) error {
	nodeID, err := p.ring.NodeForKeyword(keyword)
	if err != nil {
		return adserr.New(adserr.KindRouting, "%v", err)
	}
	addr, ok := p.book.AddrForNode(nodeID)
	if !ok {
		return adserr.New(adserr.KindRouting, "node %q not registered", nodeID)
	}

	var proof, root []byte
	if isAdd {
		proof, root, err = addFid(ctx, addr, keyword, fid)
	} else {
		proof, root, err = deleteFid(ctx, addr, keyword, fid)
	}
	if err != nil {
		return err
	}

	if isAdd {
		err = p.verifier.VerifyAdd(proof)
	} else {
		err = p.verifier.VerifyDelete(proof)
	}
	if err != nil {
		return err
	}

	p.roots.Record(nodeID, root)
	return nil
}
