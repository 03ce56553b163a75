// Package main implements torua-client, a minimal command-line wrapper
// around the coordinator's four RPCs (Add, Query, Delete, Update). This
// binary exists so end-to-end scenarios are runnable from a shell,
// mirroring the style of the other cmd/ binaries: env/flag configuration,
// no framework.
//
// Usage:
//
//	torua-client -coordinator http://localhost:8080 add file1 rust,storage
//	torua-client -coordinator http://localhost:8080 query "rust AND storage"
//	torua-client -coordinator http://localhost:8080 delete file1 rust,storage
//	torua-client -coordinator http://localhost:8080 update file1 rust systems
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/dreamware/torua/internal/cluster"
	"github.com/dreamware/torua/internal/rpcpb"
)

func main() {
	coordAddr := flag.String("coordinator", "http://localhost:8080", "coordinator base URL")
	flag.Parse()

	args := flag.Args()
	if len(args) < 1 {
		usage()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var err error
	switch args[0] {
	case "add":
		err = runAdd(ctx, *coordAddr, args[1:])
	case "query":
		err = runQuery(ctx, *coordAddr, args[1:])
	case "delete":
		err = runDelete(ctx, *coordAddr, args[1:])
	case "update":
		err = runUpdate(ctx, *coordAddr, args[1:])
	default:
		usage()
	}
	if err != nil {
		log.Fatalf("%s: %v", args[0], err)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: torua-client [-coordinator url] <add|query|delete|update> ...")
	os.Exit(1)
}

func runAdd(ctx context.Context, coord string, args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("usage: add <fid> <comma-separated keywords>")
	}
	var resp rpcpb.MutateResponse
	req := rpcpb.AddRequest{Fid: args[0], Keywords: splitKeywords(args[1])}
	if err := cluster.PostJSON(ctx, coord+"/add", req, &resp); err != nil {
		return err
	}
	return printMutateResult(resp)
}

func runDelete(ctx context.Context, coord string, args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("usage: delete <fid> <comma-separated keywords>")
	}
	var resp rpcpb.MutateResponse
	req := rpcpb.DeleteRequest{Fid: args[0], Keywords: splitKeywords(args[1])}
	if err := cluster.PostJSON(ctx, coord+"/delete", req, &resp); err != nil {
		return err
	}
	return printMutateResult(resp)
}

func runUpdate(ctx context.Context, coord string, args []string) error {
	if len(args) != 3 {
		return fmt.Errorf("usage: update <fid> <old-keyword> <new-keyword>")
	}
	var resp rpcpb.MutateResponse
	req := rpcpb.UpdateRequest{Fid: args[0], OldKeyword: args[1], NewKeyword: args[2]}
	if err := cluster.PostJSON(ctx, coord+"/update", req, &resp); err != nil {
		return err
	}
	return printMutateResult(resp)
}

func runQuery(ctx context.Context, coord string, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: query <expression>")
	}
	var resp rpcpb.QueryResponse
	req := rpcpb.QueryRequest{Expression: args[0]}
	if err := cluster.PostJSON(ctx, coord+"/query", req, &resp); err != nil {
		return err
	}
	if !resp.Success {
		return fmt.Errorf("%s", resp.Message)
	}
	fmt.Println(strings.Join(resp.Fids, "\n"))
	return nil
}

func printMutateResult(resp rpcpb.MutateResponse) error {
	if !resp.Success {
		return fmt.Errorf("%s", resp.Message)
	}
	fmt.Println("ok")
	return nil
}

func splitKeywords(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
