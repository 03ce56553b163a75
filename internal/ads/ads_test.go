package ads

import (
	"testing"

	"github.com/dreamware/torua/internal/accumulator"
	"github.com/dreamware/torua/internal/adserr"
)

func TestADSFacadeBothBackends(t *testing.T) {
	params, err := accumulator.Setup([]byte("facade-test"), 32)
	if err != nil {
		t.Fatalf("Setup: %v", err)
	}

	for _, kind := range []Kind{KindAccumulator, KindMPT} {
		t.Run(string(kind), func(t *testing.T) {
			instance, err := New(kind, params, "keyword-x")
			if err != nil {
				t.Fatalf("New(%s): %v", kind, err)
			}

			if _, err := instance.Add("doc-1"); err != nil {
				t.Fatalf("add: %v", err)
			}
			if instance.Len() != 1 {
				t.Fatalf("expected len 1, got %d", instance.Len())
			}

			proof, err := instance.Query("doc-1")
			if err != nil {
				t.Fatalf("query member: %v", err)
			}
			if len(proof) == 0 {
				t.Fatalf("expected non-empty membership proof")
			}

			if _, err := instance.Query("ghost"); adserr.KindOf(err) != adserr.KindNotMember {
				t.Fatalf("expected NotMember for absent fid, got %v", err)
			}

			if _, err := instance.Delete("doc-1"); err != nil {
				t.Fatalf("delete: %v", err)
			}
			if instance.Len() != 0 {
				t.Fatalf("expected len 0 after delete, got %d", instance.Len())
			}
		})
	}
}

func TestParseKind(t *testing.T) {
	if _, err := ParseKind("bogus"); err == nil {
		t.Fatalf("expected error for unknown kind")
	}
	if k, err := ParseKind("mpt"); err != nil || k != KindMPT {
		t.Fatalf("ParseKind(mpt) = %v, %v", k, err)
	}
}
