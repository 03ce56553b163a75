// Package main implements the Torua storage node: the process that owns a
// lazily-created map of keyword → authenticated data structure instance,
// serving Add/Query/Delete over HTTP and returning a proof alongside every
// answer for the coordinator to verify.
//
// Architecture:
//
//	┌─────────────────────────────────────────┐
//	│              Storage Node                │
//	├─────────────────────────────────────────┤
//	│  HTTP API:                              │
//	│    /health                - liveness    │
//	│    /stats                 - snapshot    │
//	│    /keyword/{kw}          - Query       │
//	│    /keyword/{kw}/fid/{f}  - Add/Delete  │
//	├─────────────────────────────────────────┤
//	│  Components:                            │
//	│    storagenode.Node  - keyword -> ADS    │
//	│    ads.ADS           - accumulator | mpt │
//	└─────────────────────────────────────────┘
//
// CLI surface: two positional arguments, `<port> <ads-kind>` where
// ads-kind is "accumulator" or "mpt". Exit codes: 0 on graceful shutdown,
// non-zero on bind failure, bad arguments, or a fatal panic.
//
// Example usage:
//
//	# Start a storage node backed by the accumulator on port 9001
//	./node 9001 accumulator
//
//	# Start a storage node backed by the Merkle-Patricia index on port 9002
//	./node 9002 mpt
package main

import (
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dreamware/torua/internal/accumulator"
	"github.com/dreamware/torua/internal/ads"
	"github.com/dreamware/torua/internal/storage"
	"github.com/dreamware/torua/internal/storagenode"
)

// logFatal is a variable to allow mocking log.Fatal in tests. This
// indirection enables test code to intercept fatal errors without actually
// terminating the test process.
var logFatal = log.Fatalf

// accumulatorSeed is the shared "powers of tau" ceremony seed every storage
// node running in accumulator mode loads identically. Production deployment
// would instead distribute a parameter file generated once out of band (see
// internal/accumulator's Setup doc comment); a fixed seed serves the same
// purpose here and keeps the CLI surface to exactly the two positional
// arguments (port, kind).
var accumulatorSeed = []byte("torua-shared-ceremony-seed-v1")

func main() {
	args, err := parseArgs(os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	kind, err := ads.ParseKind(args.adsKind)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	var params *accumulator.PublicParams
	if kind == ads.KindAccumulator {
		params, err = accumulator.Setup(accumulatorSeed, accumulator.DefaultMaxDegree)
		if err != nil {
			logFatal("accumulator setup: %v", err)
			return
		}
	}

	// Mirror each keyword's fid list into an in-memory store so operators
	// can hit /stats for a rough size read without touching the ADS query
	// path; the store never answers a Query itself.
	node, err := storagenode.New(kind, params, storagenode.WithSnapshotStore(storage.NewMemoryStore()))
	if err != nil {
		logFatal("storagenode init: %v", err)
		return
	}

	addr := fmt.Sprintf(":%d", args.port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           node.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.Printf("storage node listening on %s (ads=%s)", addr, kind)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logFatal("listen: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	log.Println("storage node stopping")
}

// cliArgs is the parsed form of the node's two positional arguments.
type cliArgs struct {
	adsKind string
	port    int
}

// parseArgs validates the node's CLI surface: `<port> <ads-kind>`.
func parseArgs(args []string) (cliArgs, error) {
	if len(args) != 2 {
		return cliArgs{}, fmt.Errorf("usage: node <port> <accumulator|mpt>")
	}
	var port int
	if _, err := fmt.Sscanf(args[0], "%d", &port); err != nil || port <= 0 || port > 65535 {
		return cliArgs{}, fmt.Errorf("invalid port %q", args[0])
	}
	return cliArgs{port: port, adsKind: args[1]}, nil
}
