// Package cluster provides the core distributed system functionality for
// Torua, implementing cluster membership, health monitoring, and
// inter-node communication protocols between the coordinator and its
// storage nodes.
//
// # Overview
//
// The cluster package is the foundation of Torua's distributed
// architecture: it defines NodeInfo (a storage node's identity, address,
// and health status), the registration and broadcast wire types, and the
// small set of JSON-over-HTTP helpers (PostJSON, GetJSON, PutJSON,
// DeleteJSON) every coordinator-to-node call uses.
//
// # Architecture
//
// The package implements a hub-and-spoke topology, one coordinator and a
// static, coordinator-configured set of storage nodes:
//
//	              ┌──────────────┐
//	              │ Coordinator  │
//	              │              │
//	              │ - KeywordRing│
//	              │ - HealthMon  │
//	              │ - Planner    │
//	              └──────┬───────┘
//	                     │
//	      ┌──────────────┼──────────────────┐
//	      │              │                  │
//	┌─────▼─────┐  ┌─────▼─────┐      ┌─────▼─────┐
//	│  Node 1   │  │  Node 2   │      │  Node 3   │
//	│           │  │           │      │           │
//	│ keyword   │  │ keyword   │      │ keyword   │
//	│ -> ADS    │  │ -> ADS    │      │ -> ADS    │
//	└───────────┘  └───────────┘      └───────────┘
//
// Unlike a shard-per-range design, a node here does not own a numeric
// range — it owns whichever keywords the coordinator's consistent-hash
// ring assigns it, lazily creating an authenticated data structure
// instance the first time a keyword is mentioned.
//
// # Core Components
//
// NodeInfo: Identifies a storage node
//   - ID, address, and coordinator-observed health status
//   - No shard list: keyword ownership lives in the coordinator's ring,
//     not on the node record itself
//
// RegisterRequest / BroadcastRequest: Wire shapes for the coordinator's
// /register and /broadcast endpoints.
//
// # Communication Protocol
//
// The package uses HTTP/JSON for all coordinator-to-node communication:
//
// Node Registration (POST /register):
//   - A node announces its address to the coordinator at startup
//   - The coordinator accepts the address update only if the node ID is
//     already present in its static configuration; an unknown ID is
//     rejected rather than added, since the ring cannot grow at runtime
//
// Health Checking (GET /health):
//   - Periodic liveness probes from coordinator to nodes
//   - A node that fails enough consecutive checks is marked degraded;
//     its keywords stay assigned to it (the ring does not reassign them)
//
// State Broadcasting (POST /broadcast):
//   - Coordinator pushes arbitrary path+payload messages to every node
//   - Best-effort: a failed broadcast to one node is reported in that
//     node's entry of the response and does not stop delivery to the others
//
// # Concurrency Model
//
// The package is designed for high concurrency:
//   - NodeInfo and the request/response types carry no internal locking;
//     callers (the coordinator's server type) own synchronization
//   - The shared httpClient supports concurrent use and pools connections
//   - No operation holds a lock during network I/O
//
// # Failure Handling
//
// Network Failures:
//   - HTTP requests carry context-based cancellation; the caller sets
//     the deadline
//   - PutJSON/DeleteJSON decode a structured {kind, message} body on
//     non-2xx responses via decodeTaxonomyError, preserving the failing
//     operation's error kind across the wire
//
// Node Failures:
//   - Health checks run on an interval configured by the coordinator
//   - A node marked unhealthy keeps its keyword assignment; a human
//     restarts the coordinator with updated configuration to actually
//     move keywords off a dead node
//
// Coordinator Failures:
//   - A single coordinator process is a single point of failure; there
//     is no leader election or standby coordinator
//
// # See Also
//
// Related packages:
//   - internal/coordinator: keyword routing, verification, query planning
//   - internal/storagenode: per-node keyword -> ADS instance management
//   - internal/adserr: the error taxonomy decodeTaxonomyError reconstructs
package cluster
