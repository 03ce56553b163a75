package storagenode

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/dreamware/torua/internal/adserr"
)

// addResponse is the wire body for a successful or duplicate Add.
type addResponse struct {
	Message string `json:"message,omitempty"`
	Proof   []byte `json:"proof"`
	Root    []byte `json:"root_hash"`
}

// queryResponse is the wire body for Query.
type queryResponse struct {
	Fids  []string `json:"fids"`
	Proof []byte   `json:"proof"`
}

// errorResponse names the failing kind so the coordinator can make routing
// and retry decisions without string-matching messages.
type errorResponse struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

func writeError(w http.ResponseWriter, err error) {
	kind := adserr.KindOf(err)
	status := http.StatusInternalServerError
	switch kind {
	case adserr.KindNotMember, adserr.KindInvalidProof:
		status = http.StatusUnprocessableEntity
	case adserr.KindParseError:
		status = http.StatusBadRequest
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(errorResponse{Kind: kind.String(), Message: err.Error()})
}

// Handler builds the storage node's HTTP mux: PUT/DELETE on
// /keyword/{keyword}/fid/{fid} for Add/Delete, GET on /keyword/{keyword}
// for Query.
func (n *Node) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("/keyword/", n.handleKeyword)
	mux.HandleFunc("/stats", n.handleStats)
	return mux
}

// handleStats reports the snapshot store's statistics, for operators who
// configured one with WithSnapshotStore. With no snapshot store this
// reports the zero value rather than 404ing, since absence is a valid
// node configuration, not a missing route.
func (n *Node) handleStats(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(n.SnapshotStats()); err != nil {
		log.Printf("storagenode: encode stats response: %v", err)
	}
}

// handleKeyword dispatches on path shape: /keyword/{kw} is a plain Query;
// /keyword/{kw}/fid/{fid} is Add (PUT) or Delete (DELETE).
func (n *Node) handleKeyword(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/keyword/")
	keyword, tail, hasTail := strings.Cut(rest, "/fid/")
	if keyword == "" {
		http.Error(w, "keyword required", http.StatusBadRequest)
		return
	}

	if !hasTail {
		if r.Method != http.MethodGet {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		n.handleQuery(keyword, w, r)
		return
	}

	fid := tail
	if fid == "" {
		http.Error(w, "fid required", http.StatusBadRequest)
		return
	}
	switch r.Method {
	case http.MethodPut:
		n.handleAdd(keyword, fid, w, r)
	case http.MethodDelete:
		n.handleDelete(keyword, fid, w, r)
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

func (n *Node) handleAdd(keyword, fid string, w http.ResponseWriter, _ *http.Request) {
	proof, root, err := n.Add(keyword, fid)
	if err != nil && !errors.Is(err, adserr.ErrDuplicate) {
		writeError(w, err)
		return
	}
	resp := addResponse{Proof: proof, Root: root}
	if errors.Is(err, adserr.ErrDuplicate) {
		resp.Message = err.Error()
	}
	w.Header().Set("Content-Type", "application/json")
	if encErr := json.NewEncoder(w).Encode(resp); encErr != nil {
		log.Printf("storagenode: encode add response: %v", encErr)
	}
}

func (n *Node) handleDelete(keyword, fid string, w http.ResponseWriter, _ *http.Request) {
	proof, root, err := n.Delete(keyword, fid)
	if err != nil {
		writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	if encErr := json.NewEncoder(w).Encode(addResponse{Proof: proof, Root: root}); encErr != nil {
		log.Printf("storagenode: encode delete response: %v", encErr)
	}
}

func (n *Node) handleQuery(keyword string, w http.ResponseWriter, _ *http.Request) {
	fids, proof, err := n.Query(keyword)
	if err != nil {
		writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	if encErr := json.NewEncoder(w).Encode(queryResponse{Fids: fids, Proof: proof}); encErr != nil {
		log.Printf("storagenode: encode query response: %v", encErr)
	}
}
