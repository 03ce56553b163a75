// Package main implements the Torua coordinator: the process that routes
// keywords to storage nodes via a consistent-hash ring, verifies every
// proof a storage node returns before trusting it, tracks each node's
// latest root digest, and plans boolean queries across multiple keywords.
//
// Architecture:
//
//	┌─────────────────────────────────────────┐
//	│            Coordinator                   │
//	├─────────────────────────────────────────┤
//	│  HTTP API:                              │
//	│    /add, /query, /delete, /update        │
//	│      - the four keyword-index RPCs      │
//	│    /register     - admin node visibility│
//	│    /nodes        - list configured nodes│
//	│    /broadcast    - cluster-wide fan-out │
//	│    /health       - liveness             │
//	├─────────────────────────────────────────┤
//	│  Components:                            │
//	│    coordinator.KeywordRing - routing    │
//	│    coordinator.Verifier    - proofs     │
//	│    coordinator.RootRegistry- digests    │
//	│    coordinator.Planner     - boolean Qs │
//	│    coordinator.HealthMonitor            │
//	└─────────────────────────────────────────┘
//
// Configuration:
//   - --ads-mode accumulator|mpt: which proof verifier to apply (required
//     to match every storage node's positional <ads-kind> argument; a mismatch means every
//     proof fails to decode).
//   - --config path/to/nodes.yaml: static list of storage-node id/addr
//     pairs the ring is built from once at startup. The ring is immutable
//     after construction; dynamic membership changes are out of scope.
//   - --addr: listen address (default ":8080").
//
// Example usage:
//
//	./coordinator --ads-mode accumulator --config nodes.yaml --addr :8080
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"golang.org/x/exp/slices"
	"gopkg.in/yaml.v3"

	"github.com/dreamware/torua/internal/accumulator"
	"github.com/dreamware/torua/internal/ads"
	"github.com/dreamware/torua/internal/cluster"
	"github.com/dreamware/torua/internal/coordinator"
	"github.com/dreamware/torua/internal/rpcpb"
)

// Health status constants for the /nodes response shape.
const (
	healthStatusHealthy   = "healthy"
	healthStatusUnhealthy = "unhealthy"
	healthStatusUnknown   = "unknown"
)

// accumulatorSeed must match cmd/node's seed byte-for-byte: both sides load
// the same one-time parameter ceremony. Regenerating the trapdoor
// independently per process would make accumulators permanently
// incompatible across nodes.
var accumulatorSeed = []byte("torua-shared-ceremony-seed-v1")

// nodesConfig is the YAML shape of the static storage-node address list the
// coordinator's ring is built from once at startup.
type nodesConfig struct {
	Nodes []cluster.NodeInfo `yaml:"nodes"`
}

func loadNodesConfig(path string) (nodesConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nodesConfig{}, fmt.Errorf("read nodes config %s: %w", path, err)
	}
	var cfg nodesConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nodesConfig{}, fmt.Errorf("parse nodes config %s: %w", path, err)
	}
	return cfg, nil
}

func main() {
	adsMode := flag.String("ads-mode", "accumulator", "proof verifier to apply: accumulator|mpt")
	configPath := flag.String("config", "nodes.yaml", "path to the static storage-node address list")
	listenAddr := flag.String("addr", ":8080", "coordinator listen address")
	flag.Parse()

	kind, err := ads.ParseKind(*adsMode)
	if err != nil {
		log.Fatalf("bad --ads-mode: %v", err)
	}

	cfg, err := loadNodesConfig(*configPath)
	if err != nil {
		log.Fatalf("loading nodes config: %v", err)
	}

	var params *accumulator.PublicParams
	if kind == ads.KindAccumulator {
		params, err = accumulator.Setup(accumulatorSeed, accumulator.DefaultMaxDegree)
		if err != nil {
			log.Fatalf("accumulator setup: %v", err)
		}
	}

	srv := newServer(cfg.Nodes, kind, params)

	go srv.healthMonitor.Start(context.Background(), func() []cluster.NodeInfo {
		srv.mu.RLock()
		defer srv.mu.RUnlock()
		nodes := make([]cluster.NodeInfo, len(srv.nodes))
		copy(nodes, srv.nodes)
		return nodes
	})

	mux := http.NewServeMux()
	mux.HandleFunc("/register", srv.handleRegister)
	mux.HandleFunc("/nodes", srv.handleListNodes)
	mux.HandleFunc("/broadcast", srv.handleBroadcast)
	mux.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("/add", srv.handleAdd)
	mux.HandleFunc("/query", srv.handleQuery)
	mux.HandleFunc("/delete", srv.handleDelete)
	mux.HandleFunc("/update", srv.handleUpdate)

	httpSrv := &http.Server{
		Addr:              *listenAddr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.Printf("coordinator listening on %s (ads-mode=%s)", *listenAddr, kind)
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	log.Println("stopping health monitor...")
	srv.healthMonitor.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(ctx); err != nil {
		log.Printf("HTTP server shutdown error: %v", err)
	}
	log.Println("coordinator stopped")
}

// server encapsulates the coordinator's runtime state: the configured node
// list (address book), the keyword ring built from it once, and the
// planner tying ring + verifier + root registry together for every RPC.
type server struct {
	ring          *coordinator.KeywordRing
	healthMonitor *coordinator.HealthMonitor
	planner       *coordinator.Planner
	roots         *coordinator.RootRegistry

	nodes []cluster.NodeInfo
	mu    sync.RWMutex
}

// newServer builds a coordinator server from a fixed node list, constructing
// the ring once (it is immutable for the server's lifetime) and wiring the
// verifier matching kind.
func newServer(nodes []cluster.NodeInfo, kind ads.Kind, params *accumulator.PublicParams) *server {
	ring := coordinator.NewKeywordRing()
	ids := make([]string, len(nodes))
	for i, n := range nodes {
		ids[i] = n.ID
	}
	if err := ring.SetNodes(ids); err != nil {
		log.Printf("warning: could not build keyword ring from config: %v", err)
	}

	healthInterval := 5 * time.Second
	if envInterval := os.Getenv("HEALTH_CHECK_INTERVAL"); envInterval != "" {
		if parsed, err := time.ParseDuration(envInterval); err == nil {
			healthInterval = parsed
		}
	}

	srv := &server{
		ring:          ring,
		nodes:         append([]cluster.NodeInfo(nil), nodes...),
		healthMonitor: coordinator.NewHealthMonitor(healthInterval),
		roots:         coordinator.NewRootRegistry(),
	}
	verifier := coordinator.NewVerifier(kind, params)
	srv.planner = coordinator.NewPlanner(ring, srv, verifier, srv.roots)

	// The ring is immutable at runtime, so an unhealthy node cannot be
	// routed around; the only honest response is to mark its keyword range
	// degraded in /nodes so operators see it, rather than reassigning its
	// keywords to a neighbor.
	srv.healthMonitor.SetOnUnhealthy(func(nodeID string) {
		log.Printf("node %s is unhealthy; its keyword range is now degraded (ring is immutable)", nodeID)
		srv.markNodeUnhealthy(nodeID)
	})

	return srv
}

// AddrForNode implements coordinator.AddressBook.
func (s *server) AddrForNode(nodeID string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, n := range s.nodes {
		if n.ID == nodeID {
			return n.Addr, true
		}
	}
	return "", false
}

func (s *server) markNodeUnhealthy(nodeID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, n := range s.nodes {
		if n.ID == nodeID {
			s.nodes[i].Status = healthStatusUnhealthy
			return
		}
	}
}

// handleRegister lets a storage node announce a changed address for an id
// already present in the static config; it does NOT add new ids to the
// ring, since ring membership is fixed at startup.
func (s *server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req cluster.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}
	if req.Node.ID == "" || req.Node.Addr == "" {
		http.Error(w, "missing id/addr", http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	idx := slices.IndexFunc(s.nodes, func(n cluster.NodeInfo) bool { return n.ID == req.Node.ID })
	if idx < 0 {
		http.Error(w, fmt.Sprintf("node %s is not part of the configured ring", req.Node.ID), http.StatusBadRequest)
		return
	}
	s.nodes[idx].Addr = req.Node.Addr
	w.WriteHeader(http.StatusNoContent)
}

func (s *server) handleListNodes(w http.ResponseWriter, _ *http.Request) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	allHealth := s.healthMonitor.GetAllNodeHealth()
	nodes := make([]cluster.NodeInfo, len(s.nodes))
	for i, node := range s.nodes {
		nodes[i] = node
		if node.Status != healthStatusUnhealthy {
			if health := allHealth[node.ID]; health != nil {
				nodes[i].Status = health.Status
				nodes[i].LastHealthCheck = health.LastCheck
			} else {
				nodes[i].Status = healthStatusUnknown
			}
		}
	}

	if err := json.NewEncoder(w).Encode(struct {
		Nodes []cluster.NodeInfo `json:"nodes"`
	}{Nodes: nodes}); err != nil {
		log.Printf("error encoding nodes response: %v", err)
	}
}

// handleBroadcast fans a request out to every configured node, continuing
// past individual failures and reporting per-node results.
func (s *server) handleBroadcast(w http.ResponseWriter, r *http.Request) {
	var req cluster.BroadcastRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}
	if req.Path == "" || req.Path[0] != '/' {
		http.Error(w, "path must start with '/'", http.StatusBadRequest)
		return
	}

	s.mu.RLock()
	targets := append([]cluster.NodeInfo(nil), s.nodes...)
	s.mu.RUnlock()

	type result struct {
		NodeID string `json:"node_id"`
		Err    string `json:"err,omitempty"`
	}
	out := make([]result, 0, len(targets))

	ctx, cancel := context.WithTimeout(r.Context(), 4*time.Second)
	defer cancel()

	for _, n := range targets {
		url := n.Addr + req.Path
		err := cluster.PostJSON(ctx, url, req.Payload, nil)
		res := result{NodeID: n.ID}
		if err != nil {
			res.Err = err.Error()
		}
		out = append(out, res)
	}

	if err := json.NewEncoder(w).Encode(struct {
		Results []result `json:"results"`
		SentTo  int      `json:"sent_to"`
	}{Results: out, SentTo: len(out)}); err != nil {
		log.Printf("error encoding broadcast results: %v", err)
	}
}

// handleAdd implements the coordinator's Add RPC: POST /add.
func (s *server) handleAdd(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req rpcpb.AddRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}
	err := s.planner.AddFid(r.Context(), req.Fid, req.Keywords)
	writeMutateResponse(w, err)
}

// handleDelete implements the coordinator's Delete RPC: POST /delete.
func (s *server) handleDelete(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req rpcpb.DeleteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}
	err := s.planner.DeleteFid(r.Context(), req.Fid, req.Keywords)
	writeMutateResponse(w, err)
}

// handleUpdate implements the coordinator's Update RPC: POST /update.
func (s *server) handleUpdate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req rpcpb.UpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}
	err := s.planner.UpdateFid(r.Context(), req.Fid, req.OldKeyword, req.NewKeyword)
	writeMutateResponse(w, err)
}

// handleQuery implements the coordinator's Query RPC: POST /query.
func (s *server) handleQuery(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req rpcpb.QueryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}

	fids, _, err := s.planner.Execute(r.Context(), req.Expression)
	w.Header().Set("Content-Type", "application/json")
	if err != nil {
		json.NewEncoder(w).Encode(rpcpb.QueryResponse{Success: false, Message: err.Error()})
		return
	}
	json.NewEncoder(w).Encode(rpcpb.QueryResponse{Success: true, Fids: fids})
}

func writeMutateResponse(w http.ResponseWriter, err error) {
	w.Header().Set("Content-Type", "application/json")
	if err != nil {
		json.NewEncoder(w).Encode(rpcpb.MutateResponse{Success: false, Message: err.Error()})
		return
	}
	json.NewEncoder(w).Encode(rpcpb.MutateResponse{Success: true})
}
