package registry

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/canvaslabs/go-canvas/subgraph"
)

func indexedServer(t *testing.T, body string) *subgraph.Client {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return subgraph.NewClient(srv.URL)
}

func TestIndexedSourceMapsRecords(t *testing.T) {
	client := indexedServer(t, `{"data":{"canvasCreateds":[
		{"id":"0xb","creator":"0x0000000000000000000000000000000000000002",
		 "canvasContract":"0x0000000000000000000000000000000000000020",
		 "nftContract":"0x0000000000000000000000000000000000000021",
		 "marketplaceContract":"0x0000000000000000000000000000000000000022",
		 "width":"16","height":"8","initialMintPrice":"0"},
		{"id":"0xa","creator":"0x0000000000000000000000000000000000000001",
		 "canvasContract":"0x0000000000000000000000000000000000000010",
		 "nftContract":"0x0000000000000000000000000000000000000011",
		 "marketplaceContract":"0x0000000000000000000000000000000000000012",
		 "width":"32","height":"32","initialMintPrice":"1500000000000000"}
	]}}`)

	src := NewIndexedSource(client, nil)
	got, err := src.Canvases(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d descriptors, want 2", len(got))
	}

	// Indexer order (newest first) is preserved as-is.
	if got[0].CanvasContract != addr(0x20) || got[1].CanvasContract != addr(0x10) {
		t.Errorf("indexer order not preserved: %+v", got)
	}
	if got[0].Width != 16 || got[0].Height != 8 {
		t.Errorf("dimensions %dx%d, want 16x8", got[0].Width, got[0].Height)
	}
	if got[1].MintPriceDisplay() != "0.0015" {
		t.Errorf("mint price display %q, want 0.0015", got[1].MintPriceDisplay())
	}
}

func TestIndexedSourceSkipsMalformedRecords(t *testing.T) {
	client := indexedServer(t, `{"data":{"canvasCreateds":[
		{"id":"0xbad","creator":"not-an-address","canvasContract":"nope",
		 "nftContract":"","marketplaceContract":"","width":"x","height":"y","initialMintPrice":"z"},
		{"id":"0xa","creator":"0x0000000000000000000000000000000000000001",
		 "canvasContract":"0x0000000000000000000000000000000000000010",
		 "nftContract":"0x0000000000000000000000000000000000000011",
		 "marketplaceContract":"0x0000000000000000000000000000000000000012",
		 "width":"32","height":"32","initialMintPrice":"100"}
	]}}`)

	src := NewIndexedSource(client, nil)
	got, err := src.Canvases(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 {
		t.Fatalf("got %d descriptors, want 1 (malformed skipped)", len(got))
	}
}

func TestIndexedSourceQueryError(t *testing.T) {
	client := indexedServer(t, `{"errors":[{"message":"boom"}]}`)
	src := NewIndexedSource(client, nil)

	got, err := src.Canvases(context.Background())
	if err == nil {
		t.Fatal("expected error")
	}
	if len(got) != 0 {
		t.Errorf("expected empty result on error, got %d", len(got))
	}
}
