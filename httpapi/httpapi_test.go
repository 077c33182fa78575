package httpapi

import (
	"context"
	"encoding/json"
	"math/big"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"

	"github.com/canvaslabs/go-canvas/app"
	"github.com/canvaslabs/go-canvas/chain"
	"github.com/canvaslabs/go-canvas/config"
	"github.com/canvaslabs/go-canvas/contracts"
	"github.com/canvaslabs/go-canvas/registry"
)

type fakeSource struct {
	canvases []registry.Descriptor
}

func (f *fakeSource) Canvases(context.Context) ([]registry.Descriptor, error) {
	return f.canvases, nil
}

type fakeCaller struct{}

func (fakeCaller) CallBatch(_ context.Context, calls []chain.Call) ([]chain.CallResult, error) {
	results := make([]chain.CallResult, len(calls))
	for i, call := range calls {
		if call.Method == contracts.MethodMintPrice {
			data, _ := contracts.Canvas.Methods[contracts.MethodMintPrice].Outputs.Pack(big.NewInt(1500000000000000))
			results[i] = chain.CallResult{OK: true, Data: data}
		}
	}
	return results, nil
}

type fakeSubmitter struct{}

func (fakeSubmitter) Submit(context.Context, chain.Call, *uint256.Int) (chain.TxHandle, error) {
	return chain.TxHandle{}, nil
}

func (fakeSubmitter) Wait(context.Context, chain.TxHandle) (chain.ReceiptStatus, error) {
	return chain.ReceiptConfirmed, nil
}

func testServer(t *testing.T) *Server {
	t.Helper()
	desc := registry.Descriptor{
		CanvasContract:      common.BytesToAddress([]byte{0x10}),
		NFTContract:         common.BytesToAddress([]byte{0x11}),
		MarketplaceContract: common.BytesToAddress([]byte{0x12}),
		Width:               2,
		Height:              2,
		MintPrice:           uint256.NewInt(1500000000000000),
	}
	cfg := config.Default()
	cfg.RPCURL = "http://unused"
	cfg.FactoryAddress = "0x0000000000000000000000000000000000000099"

	a := app.New(cfg, app.Deps{
		Source:    &fakeSource{canvases: []registry.Descriptor{desc}},
		Caller:    fakeCaller{},
		Submitter: fakeSubmitter{},
	}, nil)
	if _, err := a.DiscoverCanvases(context.Background()); err != nil {
		t.Fatal(err)
	}
	return New(a, ":0", nil)
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestCanvasesEndpoint(t *testing.T) {
	srv := testServer(t)

	rec := do(t, srv.Handler(), http.MethodGet, "/api/v1/canvases", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	var views []map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &views); err != nil {
		t.Fatal(err)
	}
	if len(views) != 1 {
		t.Fatalf("got %d canvases", len(views))
	}
	if views[0]["mintPrice"] != "0.0015" {
		t.Errorf("mintPrice = %v, want 0.0015", views[0]["mintPrice"])
	}
	if views[0]["width"].(float64) != 2 {
		t.Errorf("width = %v", views[0]["width"])
	}
}

func TestGridEndpoint(t *testing.T) {
	srv := testServer(t)

	rec := do(t, srv.Handler(), http.MethodGet, "/api/v1/grid", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body)
	}

	var view struct {
		Width     int    `json:"width"`
		MintPrice string `json:"mintPrice"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &view); err != nil {
		t.Fatal(err)
	}
	if view.Width != 2 || view.MintPrice != "0.0015" {
		t.Errorf("grid view = %+v", view)
	}
}

func TestSelectionRoundTrip(t *testing.T) {
	srv := testServer(t)
	h := srv.Handler()

	if rec := do(t, h, http.MethodGet, "/api/v1/selection", ""); rec.Code != http.StatusNotFound {
		t.Errorf("empty selection status = %d", rec.Code)
	}

	if rec := do(t, h, http.MethodPost, "/api/v1/selection", `{"x":1,"y":0}`); rec.Code != http.StatusOK {
		t.Fatalf("select status = %d: %s", rec.Code, rec.Body)
	}

	rec := do(t, h, http.MethodGet, "/api/v1/selection", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("selection status = %d", rec.Code)
	}
	var coord map[string]int
	if err := json.Unmarshal(rec.Body.Bytes(), &coord); err != nil {
		t.Fatal(err)
	}
	if coord["x"] != 1 || coord["y"] != 0 {
		t.Errorf("selection = %v", coord)
	}

	if rec := do(t, h, http.MethodDelete, "/api/v1/selection", ""); rec.Code != http.StatusOK {
		t.Errorf("clear status = %d", rec.Code)
	}
	if rec := do(t, h, http.MethodGet, "/api/v1/selection", ""); rec.Code != http.StatusNotFound {
		t.Errorf("cleared selection status = %d", rec.Code)
	}
}

func TestSelectPixelOutOfBoundsIsBadRequest(t *testing.T) {
	srv := testServer(t)
	rec := do(t, srv.Handler(), http.MethodPost, "/api/v1/selection", `{"x":9,"y":0}`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestMintWithoutSelectionIsNotFound(t *testing.T) {
	srv := testServer(t)
	rec := do(t, srv.Handler(), http.MethodPost, "/api/v1/intents/mint", `{"color":3}`)
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestMintHappyPath(t *testing.T) {
	srv := testServer(t)
	h := srv.Handler()

	if rec := do(t, h, http.MethodPost, "/api/v1/selection", `{"x":0,"y":1}`); rec.Code != http.StatusOK {
		t.Fatalf("select status = %d", rec.Code)
	}
	rec := do(t, h, http.MethodPost, "/api/v1/intents/mint", `{"color":3}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("mint status = %d: %s", rec.Code, rec.Body)
	}
}

func TestSequencerStateEndpoint(t *testing.T) {
	srv := testServer(t)
	rec := do(t, srv.Handler(), http.MethodGet, "/api/v1/sequencer", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if body["state"] != "idle" {
		t.Errorf("state = %q, want idle", body["state"])
	}
}

func TestBadJSONBodyIsBadRequest(t *testing.T) {
	srv := testServer(t)
	rec := do(t, srv.Handler(), http.MethodPost, "/api/v1/selection", `{`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}
