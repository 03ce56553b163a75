package coordinator

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/dreamware/torua/internal/adserr"
	"github.com/dreamware/torua/internal/cluster"
)

// storageAddResponse mirrors storagenode's addResponse wire shape.
type storageAddResponse struct {
	Message string `json:"message,omitempty"`
	Proof   []byte `json:"proof"`
	Root    []byte `json:"root_hash"`
}

// storageQueryResponse mirrors storagenode's queryResponse wire shape.
type storageQueryResponse struct {
	Fids  []string `json:"fids"`
	Proof []byte   `json:"proof"`
}

// nodeTimeout bounds a single storage-node RPC; exceeding it is reported as
// adserr.KindTimeout by the callers in this file.
const nodeTimeout = 5 * time.Second

// addFid calls Add(keyword, fid) on the storage node at addr.
func addFid(ctx context.Context, addr, keyword, fid string) (proof, root []byte, err error) {
	ctx, cancel := context.WithTimeout(ctx, nodeTimeout)
	defer cancel()

	u := fmt.Sprintf("%s/keyword/%s/fid/%s", addr, url.PathEscape(keyword), url.PathEscape(fid))
	var resp storageAddResponse
	if err := cluster.PutJSON(ctx, u, &resp); err != nil {
		return nil, nil, classifyNodeError(err)
	}
	return resp.Proof, resp.Root, nil
}

// deleteFid calls Delete(keyword, fid) on the storage node at addr.
func deleteFid(ctx context.Context, addr, keyword, fid string) (proof, root []byte, err error) {
	ctx, cancel := context.WithTimeout(ctx, nodeTimeout)
	defer cancel()

	u := fmt.Sprintf("%s/keyword/%s/fid/%s", addr, url.PathEscape(keyword), url.PathEscape(fid))
	var resp storageAddResponse
	if err := cluster.DeleteJSON(ctx, u, &resp); err != nil {
		return nil, nil, classifyNodeError(err)
	}
	return resp.Proof, resp.Root, nil
}

// queryKeyword calls Query(keyword) on the storage node at addr.
func queryKeyword(ctx context.Context, addr, keyword string) (fids []string, proof []byte, err error) {
	ctx, cancel := context.WithTimeout(ctx, nodeTimeout)
	defer cancel()

	u := fmt.Sprintf("%s/keyword/%s", addr, url.PathEscape(keyword))
	var resp storageQueryResponse
	if err := cluster.GetJSON(ctx, u, &resp); err != nil {
		return nil, nil, classifyNodeError(err)
	}
	return resp.Fids, resp.Proof, nil
}

// classifyNodeError labels a failed storage-node call with the taxonomy
// kind the coordinator's propagation policy (§7) needs: a deadline means
// adserr.KindTimeout, a transport-level failure means adserr.KindRouting.
// The storage node's own taxonomy errors (InvalidProof, NotMember, ...)
// already arrive as *adserr.Error via cluster's response decoding and pass
// through unchanged.
func classifyNodeError(err error) error {
	if err == nil {
		return nil
	}
	if adserr.KindOf(err) != adserr.KindInternal {
		return err
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return adserr.New(adserr.KindTimeout, "%v", err)
	}
	return adserr.New(adserr.KindRouting, "%v", err)
}
