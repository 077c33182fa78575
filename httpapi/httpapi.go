// Package httpapi exposes the application over a small JSON HTTP
// surface: read endpoints for canvases, grid state and the activity
// feed, and intent endpoints that dispatch transactions. The handlers
// hold no state of their own; everything goes through app.App.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/canvaslabs/go-canvas/activity"
	"github.com/canvaslabs/go-canvas/app"
	"github.com/canvaslabs/go-canvas/grid"
	"github.com/canvaslabs/go-canvas/registry"
	"github.com/canvaslabs/go-canvas/sequencer"
	"github.com/canvaslabs/go-canvas/wei"
)

// Server serves the JSON API for one App.
type Server struct {
	app    *app.App
	logger *slog.Logger
	http   *http.Server
}

// New builds a Server listening on addr.
func New(a *app.App, addr string, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{app: a, logger: logger}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/api/v1/canvases", s.handleCanvases)
	r.Post("/api/v1/canvases/discover", s.handleDiscover)
	r.Post("/api/v1/canvases/select", s.handleSelectCanvas)
	r.Get("/api/v1/canvas", s.handleActiveCanvas)
	r.Get("/api/v1/grid", s.handleGrid)
	r.Post("/api/v1/grid/refresh", s.handleRefreshGrid)
	r.Get("/api/v1/activity", s.handleActivity)
	r.Get("/api/v1/selection", s.handleSelection)
	r.Post("/api/v1/selection", s.handleSelectPixel)
	r.Delete("/api/v1/selection", s.handleClearSelection)
	r.Get("/api/v1/sequencer", s.handleSequencer)
	r.Post("/api/v1/intents/mint", s.handleMint)
	r.Post("/api/v1/intents/color", s.handleChangeColor)
	r.Post("/api/v1/intents/buy", s.handleBuy)
	r.Post("/api/v1/intents/list", s.handleList)
	r.Post("/api/v1/intents/create", s.handleCreateCanvas)

	s.http = &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}
	return s
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.http.Handler
}

// ListenAndServe blocks serving requests until Shutdown.
func (s *Server) ListenAndServe() error {
	s.logger.Info("http api listening", slog.String("addr", s.http.Addr))
	err := s.http.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Shutdown drains in-flight requests and stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}

type canvasView struct {
	Creator          string `json:"creator"`
	Canvas           string `json:"canvas"`
	NFT              string `json:"nft"`
	Marketplace      string `json:"marketplace"`
	Width            int    `json:"width"`
	Height           int    `json:"height"`
	MintPrice        string `json:"mintPriceWei"`
	MintPriceDisplay string `json:"mintPrice"`
}

func viewCanvas(d registry.Descriptor) canvasView {
	v := canvasView{
		Creator:     d.Creator.Hex(),
		Canvas:      d.CanvasContract.Hex(),
		NFT:         d.NFTContract.Hex(),
		Marketplace: d.MarketplaceContract.Hex(),
		Width:       d.Width,
		Height:      d.Height,
	}
	if d.MintPrice != nil {
		v.MintPrice = d.MintPrice.Dec()
		v.MintPriceDisplay = d.MintPriceDisplay()
	}
	return v
}

type pixelView struct {
	X     int    `json:"x"`
	Y     int    `json:"y"`
	Owner string `json:"owner"`
	Color uint8  `json:"color"`
	Hex   string `json:"hex"`
}

type gridView struct {
	Width     int         `json:"width"`
	Height    int         `json:"height"`
	MintPrice string      `json:"mintPrice"`
	Pixels    []pixelView `json:"pixels"`
}

func viewGrid(snap *grid.Snapshot) gridView {
	v := gridView{Width: snap.Width, Height: snap.Height}
	if snap.MintPrice != nil {
		v.MintPrice = wei.Format(snap.MintPrice)
	}
	v.Pixels = make([]pixelView, 0, len(snap.Pixels))
	for y := 0; y < snap.Height; y++ {
		for x := 0; x < snap.Width; x++ {
			if p, ok := snap.Pixels[grid.Coord{X: x, Y: y}]; ok {
				v.Pixels = append(v.Pixels, pixelView{
					X: x, Y: y,
					Owner: p.Owner.Hex(),
					Color: p.Color,
					Hex:   grid.PaletteColor(p.Color),
				})
			}
		}
	}
	return v
}

func (s *Server) handleCanvases(w http.ResponseWriter, r *http.Request) {
	canvases := s.app.Canvases()
	views := make([]canvasView, len(canvases))
	for i, d := range canvases {
		views[i] = viewCanvas(d)
	}
	s.writeJSON(w, http.StatusOK, views)
}

func (s *Server) handleDiscover(w http.ResponseWriter, r *http.Request) {
	canvases, err := s.app.DiscoverCanvases(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	views := make([]canvasView, len(canvases))
	for i, d := range canvases {
		views[i] = viewCanvas(d)
	}
	s.writeJSON(w, http.StatusOK, views)
}

func (s *Server) handleSelectCanvas(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Canvas string `json:"canvas"`
	}
	if !s.readJSON(w, r, &req) {
		return
	}
	if !common.IsHexAddress(req.Canvas) {
		s.writeJSON(w, http.StatusBadRequest, errorBody{Error: "canvas must be a hex address"})
		return
	}
	if err := s.app.SelectCanvas(r.Context(), common.HexToAddress(req.Canvas)); err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, okBody{OK: true})
}

func (s *Server) handleActiveCanvas(w http.ResponseWriter, r *http.Request) {
	desc, ok := s.app.ActiveCanvas()
	if !ok {
		s.writeJSON(w, http.StatusNotFound, errorBody{Error: app.ErrNoCanvas.Error()})
		return
	}
	s.writeJSON(w, http.StatusOK, viewCanvas(desc))
}

func (s *Server) handleGrid(w http.ResponseWriter, r *http.Request) {
	snap := s.app.Grid()
	if snap == nil {
		s.writeJSON(w, http.StatusNotFound, errorBody{Error: app.ErrNoSnapshot.Error()})
		return
	}
	s.writeJSON(w, http.StatusOK, viewGrid(snap))
}

func (s *Server) handleRefreshGrid(w http.ResponseWriter, r *http.Request) {
	if err := s.app.RefreshGrid(r.Context()); err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, okBody{OK: true})
}

func (s *Server) handleActivity(w http.ResponseWriter, r *http.Request) {
	events := s.app.Feed()
	if events == nil {
		events = []activity.Event{}
	}
	s.writeJSON(w, http.StatusOK, events)
}

func (s *Server) handleSelection(w http.ResponseWriter, r *http.Request) {
	coord, ok := s.app.SelectedPixel()
	if !ok {
		s.writeJSON(w, http.StatusNotFound, errorBody{Error: app.ErrNoSelection.Error()})
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]int{"x": coord.X, "y": coord.Y})
}

func (s *Server) handleSelectPixel(w http.ResponseWriter, r *http.Request) {
	var req struct {
		X int `json:"x"`
		Y int `json:"y"`
	}
	if !s.readJSON(w, r, &req) {
		return
	}
	if err := s.app.SelectPixel(req.X, req.Y); err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, okBody{OK: true})
}

func (s *Server) handleClearSelection(w http.ResponseWriter, r *http.Request) {
	s.app.ClearSelection()
	s.writeJSON(w, http.StatusOK, okBody{OK: true})
}

func (s *Server) handleSequencer(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"state": string(s.app.SequencerState())})
}

func (s *Server) handleMint(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Color uint8 `json:"color"`
	}
	if !s.readJSON(w, r, &req) {
		return
	}
	s.dispatch(w, func() error { return s.app.MintSelected(r.Context(), req.Color) })
}

func (s *Server) handleChangeColor(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Color uint8 `json:"color"`
	}
	if !s.readJSON(w, r, &req) {
		return
	}
	s.dispatch(w, func() error { return s.app.ChangeColorSelected(r.Context(), req.Color) })
}

func (s *Server) handleBuy(w http.ResponseWriter, r *http.Request) {
	s.dispatch(w, func() error { return s.app.BuySelected(r.Context()) })
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Price string `json:"price"`
	}
	if !s.readJSON(w, r, &req) {
		return
	}
	s.dispatch(w, func() error { return s.app.ListSelected(r.Context(), req.Price) })
}

func (s *Server) handleCreateCanvas(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Width     int    `json:"width"`
		Height    int    `json:"height"`
		MintPrice string `json:"mintPrice"`
		FeeBps    int    `json:"feeBps"`
	}
	if !s.readJSON(w, r, &req) {
		return
	}
	s.dispatch(w, func() error {
		return s.app.CreateCanvas(r.Context(), req.Width, req.Height, req.MintPrice, req.FeeBps)
	})
}

// dispatch runs a blocking intent and maps its outcome to a response.
func (s *Server) dispatch(w http.ResponseWriter, intent func() error) {
	if err := intent(); err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, okBody{OK: true})
}

type okBody struct {
	OK bool `json:"ok"`
}

type errorBody struct {
	Error string `json:"error"`
}

func (s *Server) readJSON(w http.ResponseWriter, r *http.Request, out any) bool {
	if err := json.NewDecoder(r.Body).Decode(out); err != nil {
		s.writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid request body"})
		return false
	}
	return true
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		s.logger.Warn("response encode failed", slog.String("error", err.Error()))
	}
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, app.ErrNoCanvas),
		errors.Is(err, app.ErrNoSelection),
		errors.Is(err, app.ErrNoSnapshot):
		status = http.StatusNotFound
	case errors.Is(err, app.ErrUnknownCanvas),
		errors.Is(err, app.ErrOutOfBounds),
		errors.Is(err, app.ErrNotForSale),
		errors.Is(err, wei.ErrEmptyAmount),
		errors.Is(err, wei.ErrTooManyDigits):
		status = http.StatusBadRequest
	case errors.Is(err, sequencer.ErrBusy):
		status = http.StatusConflict
	}
	s.writeJSON(w, status, errorBody{Error: err.Error()})
}
