package main

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dreamware/torua/internal/accumulator"
	"github.com/dreamware/torua/internal/ads"
	"github.com/dreamware/torua/internal/storagenode"
)

func TestParseArgs(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		wantErr bool
	}{
		{name: "valid accumulator", args: []string{"9001", "accumulator"}},
		{name: "valid mpt", args: []string{"9002", "mpt"}},
		{name: "missing ads-kind", args: []string{"9001"}, wantErr: true},
		{name: "too many args", args: []string{"9001", "mpt", "extra"}, wantErr: true},
		{name: "non-numeric port", args: []string{"abc", "mpt"}, wantErr: true},
		{name: "zero port", args: []string{"0", "mpt"}, wantErr: true},
		{name: "port out of range", args: []string{"99999", "mpt"}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parseArgs(tt.args)
			if (err != nil) != tt.wantErr {
				t.Fatalf("parseArgs(%v) error = %v, wantErr %v", tt.args, err, tt.wantErr)
			}
		})
	}
}

func TestParseArgsDefersKindValidationToParseKind(t *testing.T) {
	a, err := parseArgs([]string{"9001", "bogus"})
	if err != nil {
		t.Fatalf("parseArgs should accept any string for ads-kind, validated later: %v", err)
	}
	if _, err := ads.ParseKind(a.adsKind); err == nil {
		t.Fatal("expected ads.ParseKind to reject \"bogus\"")
	}
}

// TestNodeServesAddQueryDelete exercises the same storagenode.Node +
// Handler() pipeline main() wires up, without binding a privileged port,
// covering both ADS backends end-to-end over HTTP.
func TestNodeServesAddQueryDelete(t *testing.T) {
	for _, kind := range []ads.Kind{ads.KindAccumulator, ads.KindMPT} {
		t.Run(string(kind), func(t *testing.T) {
			var params *accumulator.PublicParams
			if kind == ads.KindAccumulator {
				var err error
				params, err = accumulator.Setup([]byte("test-seed"), 64)
				if err != nil {
					t.Fatalf("Setup: %v", err)
				}
			}
			node, err := storagenode.New(kind, params)
			if err != nil {
				t.Fatalf("New: %v", err)
			}
			srv := httptest.NewServer(node.Handler())
			defer srv.Close()

			req, _ := http.NewRequest(http.MethodPut, srv.URL+"/keyword/rust/fid/file1", nil)
			resp, err := http.DefaultClient.Do(req)
			if err != nil {
				t.Fatalf("Add: %v", err)
			}
			resp.Body.Close()
			if resp.StatusCode != http.StatusOK {
				t.Fatalf("Add status = %d", resp.StatusCode)
			}

			resp, err = http.Get(srv.URL + "/keyword/rust")
			if err != nil {
				t.Fatalf("Query: %v", err)
			}
			resp.Body.Close()
			if resp.StatusCode != http.StatusOK {
				t.Fatalf("Query status = %d", resp.StatusCode)
			}

			req, _ = http.NewRequest(http.MethodDelete, srv.URL+"/keyword/rust/fid/file1", nil)
			resp, err = http.DefaultClient.Do(req)
			if err != nil {
				t.Fatalf("Delete: %v", err)
			}
			resp.Body.Close()
			if resp.StatusCode != http.StatusOK {
				t.Fatalf("Delete status = %d", resp.StatusCode)
			}
		})
	}
}

func TestNodeHealthEndpoint(t *testing.T) {
	node, err := storagenode.New(ads.KindMPT, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	srv := httptest.NewServer(node.Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/health")
	if err != nil {
		t.Fatalf("health: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("health status = %d", resp.StatusCode)
	}
}
