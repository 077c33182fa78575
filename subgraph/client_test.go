package subgraph

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestQueryDecodesData(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req Request
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("bad request body: %v", err)
		}
		if req.Query == "" {
			t.Error("empty query")
		}
		w.Write([]byte(`{"data":{"canvasCreateds":[{"id":"0xabc","width":"32","height":"32","initialMintPrice":"1500000000000000"}]}}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL)
	records, err := client.CanvasList(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 1 {
		t.Fatalf("got %d records, want 1", len(records))
	}
	if records[0].Width != "32" || records[0].InitialMintPrice != "1500000000000000" {
		t.Errorf("unexpected record: %+v", records[0])
	}
}

func TestQueryGraphQLError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"errors":[{"message":"field not found"}]}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL)
	if _, err := client.CanvasList(context.Background()); err == nil {
		t.Fatal("expected error from GraphQL errors field")
	}
}

func TestQueryHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	client := NewClient(srv.URL)
	if _, err := client.CanvasList(context.Background()); err == nil {
		t.Fatal("expected error from non-200 status")
	}
}

func TestActivityFeedVariables(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req Request
		json.NewDecoder(r.Body).Decode(&req)
		if got := req.Variables["first"]; got != float64(10) {
			t.Errorf("first variable = %v, want 10", got)
		}
		w.Write([]byte(`{"data":{"mints":[],"sales":[],"colorChanges":[]}}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL)
	feed, err := client.ActivityFeed(context.Background(), 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(feed.Mints) != 0 || len(feed.Sales) != 0 || len(feed.ColorChanges) != 0 {
		t.Errorf("expected empty feed, got %+v", feed)
	}
}
