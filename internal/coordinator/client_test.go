package coordinator

import (
	"context"
	"errors"
	"net/http/httptest"
	"testing"

	"github.com/dreamware/torua/internal/accumulator"
	"github.com/dreamware/torua/internal/ads"
	"github.com/dreamware/torua/internal/adserr"
	"github.com/dreamware/torua/internal/storagenode"
)

func newTestStorageServer(t *testing.T) (*httptest.Server, *accumulator.PublicParams) {
	t.Helper()
	params, err := accumulator.Setup([]byte("client-test-seed"), 64)
	if err != nil {
		t.Fatalf("Setup: %v", err)
	}
	node, err := storagenode.New(ads.KindAccumulator, params)
	if err != nil {
		t.Fatalf("storagenode.New: %v", err)
	}
	return httptest.NewServer(node.Handler()), params
}

func TestAddDeleteQueryFidRoundTrip(t *testing.T) {
	srv, _ := newTestStorageServer(t)
	defer srv.Close()
	ctx := context.Background()

	proof, root, err := addFid(ctx, srv.URL, "rust", "file1")
	if err != nil {
		t.Fatalf("addFid: %v", err)
	}
	if len(proof) == 0 || len(root) == 0 {
		t.Fatalf("expected non-empty proof and root, got proof=%d root=%d", len(proof), len(root))
	}

	fids, qproof, err := queryKeyword(ctx, srv.URL, "rust")
	if err != nil {
		t.Fatalf("queryKeyword: %v", err)
	}
	if len(fids) != 1 || fids[0] != "file1" || len(qproof) == 0 {
		t.Fatalf("queryKeyword = %v, proof len %d", fids, len(qproof))
	}

	if _, _, err := deleteFid(ctx, srv.URL, "rust", "file1"); err != nil {
		t.Fatalf("deleteFid: %v", err)
	}

	fids, _, err = queryKeyword(ctx, srv.URL, "rust")
	if err != nil {
		t.Fatalf("queryKeyword after delete: %v", err)
	}
	if len(fids) != 0 {
		t.Fatalf("fids after delete = %v, want empty", fids)
	}
}

func TestDeleteFidOfAbsentMemberReportsNotMember(t *testing.T) {
	srv, _ := newTestStorageServer(t)
	defer srv.Close()

	_, _, err := deleteFid(context.Background(), srv.URL, "rust", "ghost")
	if !errors.Is(err, adserr.ErrNotMember) {
		t.Fatalf("expected NotMember, got %v", err)
	}
}

func TestClassifyNodeErrorPassesThroughTaxonomyErrors(t *testing.T) {
	taxErr := adserr.New(adserr.KindNotMember, "not a member")
	if got := classifyNodeError(taxErr); got != taxErr {
		t.Fatalf("expected taxonomy error to pass through unchanged, got %v", got)
	}
}

func TestClassifyNodeErrorLabelsTransportFailureAsRouting(t *testing.T) {
	err := classifyNodeError(errors.New("connection refused"))
	if adserr.KindOf(err) != adserr.KindRouting {
		t.Fatalf("expected KindRouting, got %v", adserr.KindOf(err))
	}
}

func TestClassifyNodeErrorNilIsNil(t *testing.T) {
	if err := classifyNodeError(nil); err != nil {
		t.Fatalf("classifyNodeError(nil) = %v, want nil", err)
	}
}
