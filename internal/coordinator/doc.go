// Package coordinator implements the orchestration layer for Torua's
// verifiable distributed keyword index: routing keyword operations to the
// storage node that owns them, verifying every proof a storage node
// returns, evaluating boolean query expressions over per-keyword results,
// and tracking each node's last-known root digest.
//
// # Overview
//
// The coordinator is the client-facing control plane. It never stores
// (file-id, keyword) associations itself — each association lives in the
// authenticated data structure instance on the storage node that owns the
// keyword. The coordinator's job is routing, verification, and boolean
// evaluation: it decides which node owns a keyword, calls that node,
// checks the cryptographic proof the node returns, and combines per-leaf
// results into the answer for a multi-keyword expression.
//
// # Architecture
//
//	┌─────────────────────────────────────┐
//	│           COORDINATOR                │
//	├─────────────────────────────────────┤
//	│                                     │
//	│  ┌──────────────────────────────┐  │
//	│  │   KeywordRing                 │  │
//	│  │   - keyword -> node (consistent│ │
//	│  │     hash, 150 vnodes/node)     │  │
//	│  │   - fixed at startup           │  │
//	│  └──────────────────────────────┘  │
//	│                                     │
//	│  ┌──────────────────────────────┐  │
//	│  │   Planner                     │  │
//	│  │   - parses boolean expressions│  │
//	│  │   - fans out to leaf keywords │  │
//	│  │   - evaluates AND/OR/NOT      │  │
//	│  └──────────────────────────────┘  │
//	│                                     │
//	│  ┌──────────────────────────────┐  │
//	│  │   Verifier                    │  │
//	│  │   - checks Add/Delete/Query   │  │
//	│  │     proofs against ADS kind   │  │
//	│  └──────────────────────────────┘  │
//	│                                     │
//	│  ┌──────────────────────────────┐  │
//	│  │   RootRegistry                │  │
//	│  │   - last verified root digest │  │
//	│  │     per storage node          │  │
//	│  └──────────────────────────────┘  │
//	│                                     │
//	│  ┌──────────────────────────────┐  │
//	│  │   HealthMonitor               │  │
//	│  │   - periodic /health polling  │  │
//	│  │   - marks nodes degraded      │  │
//	│  └──────────────────────────────┘  │
//	│                                     │
//	└─────────────────────────────────────┘
//
// # Keyword Routing
//
// Keyword ownership uses consistent hashing with virtual nodes, assigning
// keyword strings to nodes the same way a classic hash ring assigns shard
// indices:
//
//	Hash Ring (64-bit space, xxhash):
//	0                                    2^64
//	|──────────────────────────────────────|
//	 ↑     ↑      ↑       ↑       ↑      ↑
//	node-a node-c node-b  node-a  node-c node-b  (virtual nodes)
//
//	Keyword "rust"    → hash(keyword) → first node clockwise
//	Keyword "storage" → hash(keyword) → first node clockwise
//
// This ring is built once from the static node list at startup and never
// mutated at runtime: adding or
// removing a storage node requires a coordinator restart. An unhealthy
// node is marked degraded, not evicted from the ring — reassigning its
// keywords elsewhere would silently split a keyword's authenticated data
// structure instance across two nodes, which no verification step can
// detect or repair.
//
// # Query Evaluation
//
// A boolean expression is parsed once, then evaluated leaf by leaf:
//
//  1. Parse the expression into a tree over AND / OR / NOT and bare
//     keywords (package boolq).
//  2. For every leaf keyword, route via the ring, call the owning node's
//     Query, and verify the returned membership proof.
//  3. Evaluate the tree over the verified per-leaf fid sets, producing
//     the final fid list and a composite proof (the concatenation of
//     every leaf's proof, tagged with a count prefix).
//
// A leaf query failure — routing, transport, or proof verification —
// fails the whole expression; there is no partial-result mode.
//
// # Mutation Orchestration
//
// Add, Delete, and Update route each (keyword, fid) pair independently:
// a multi-keyword Add touches one ADS instance per keyword, on
// potentially different nodes, with no two-phase commit across them.
// Update is implemented as Delete-then-Add; if the Add half fails, the
// Delete is not rolled back, matching the system's explicit choice to
// favor simplicity over atomicity for multi-keyword operations.
//
// # Concurrency and Synchronization
//
// Lock Granularity:
//   - RootRegistry and the server's node-health view use RWMutex,
//     read-mostly workloads (queries vastly outnumber health transitions).
//   - KeywordRing guards its point set with its own RWMutex; it is built
//     once at startup and only read afterwards.
//
// Goroutine Patterns:
//   - HealthMonitor runs its polling loop on its own goroutine, started
//     once at process startup and stopped on shutdown.
//   - context.Context cancellation bounds every outbound call to a
//     storage node.
//
// # Failure Scenarios
//
// Node Failures:
//   - Detection: health check failures against a node's /health endpoint.
//   - Impact: that node's keywords become unreachable; queries touching
//     them fail rather than silently dropping results.
//   - Recovery: manual — operator fixes or replaces the node and
//     restarts the coordinator once it is healthy again.
//
// Partial Mutation Failures:
//   - A multi-keyword Add/Delete/Update that fails partway leaves some
//     keywords mutated and others not; the caller is told which keyword
//     failed and must decide whether to retry or compensate.
//
// # See Also
//
// Related packages:
//   - internal/cluster: node registration, health info, HTTP JSON helpers
//   - internal/boolq: the boolean query grammar the Planner evaluates
//   - internal/ads: the authenticated data structure interface storage
//     nodes expose per keyword
//   - internal/rpcpb: wire message shapes for the coordinator's RPCs
//   - cmd/coordinator: the coordinator server binary
package coordinator
