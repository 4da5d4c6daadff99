package httpserver

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"placepage/internal/adapters/netpolicy"
	"placepage/internal/adapters/regions"
	"placepage/internal/domain"
	"placepage/internal/placepage"
	"placepage/internal/view"
)

const maxBody = 1 << 20

// Runner executes fn on the page's control thread and waits for it.
type Runner interface {
	Do(ctx context.Context, fn func()) error
}

// Handlers expose the place page over HTTP. Every page call goes through
// Loop; Prompter is nil unless the network policy asks the user.
type Handlers struct {
	Page     *placepage.Page
	Loop     Runner
	View     *view.Model
	Prompter *netpolicy.Prompter
	Conn     *netpolicy.Connectivity
	Nav      *netpolicy.Navigation
	Regions  *regions.Store
	// Health checks backing stores; nil means always healthy.
	Health func(ctx context.Context) error
}

type problem struct {
	Type   string `json:"type"`
	Title  string `json:"title"`
	Status int    `json:"status"`
	Detail string `json:"detail,omitempty"`
}

type selectRequest struct {
	Object *domain.PlaceObject `json:"object"`
	Force  bool                `json:"force"`
}

type stateResponse struct {
	State       domain.PanelState `json:"state"`
	Docked      bool              `json:"docked"`
	Floating    bool              `json:"floating"`
	SelectionID string            `json:"selection_id,omitempty"`
	Completed   bool              `json:"completed"`
}

func (s *Server) MountHandlers(h *Handlers) {
	s.mux.Get("/healthz", h.health)

	s.mux.Route("/v1/panel", func(r chi.Router) {
		r.Get("/", h.getView)
		r.Get("/state", h.getState)
		r.Put("/state", h.putState)
		r.Post("/select", h.selectObject)
		r.Post("/refresh", h.simple(func(p *placepage.Page) { p.Refresh() }))
		r.Post("/restore", h.simple(func(p *placepage.Page) { p.Restore() }))
		r.Post("/hide", h.hide)
		r.Post("/location", h.location)
		r.Post("/azimuth", h.azimuth)
		r.Post("/layout-settled", h.simple(func(p *placepage.Page) { p.OnLayoutSettled() }))
		r.Post("/banner/open", h.simple(func(p *placepage.Page) { p.OnNeedOpenBanner() }))
		r.Post("/latlon/toggle", h.simple(func(p *placepage.Page) { p.ToggleLatLonFormat() }))
	})

	s.mux.Post("/v1/network/policy", h.resolvePolicy)
	s.mux.Put("/v1/network/connectivity", h.connectivity)
	s.mux.Put("/v1/navigation", h.navigation)

	s.mux.Get("/v1/regions", h.listRegions)
	s.mux.Put("/v1/regions/{id}", h.putRegion)
	s.mux.Put("/v1/regions/{id}/status", h.regionStatus)
	s.mux.Post("/v1/regions/{id}/progress", h.regionProgress)
}

func writeProblem(w http.ResponseWriter, status int, title, detail string) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(problem{Type: "about:blank", Title: title, Status: status, Detail: detail}); err != nil {
		log.Error().Err(err).Msg("write JSON problem response failed")
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("write JSON response failed")
	}
}

func decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBody)).Decode(dst); err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid body", err.Error())
		return false
	}
	return true
}

// calcETagAndBody marshals once and hashes once, returning both ETag and body.
func calcETagAndBody(v any) (string, []byte) {
	body, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Msg("failed to marshal object for ETag/body")
		return "", nil
	}
	sum := sha1.Sum(body)
	return `W/"` + hex.EncodeToString(sum[:]) + `"`, body
}

// run executes fn on the control thread and maps loop failures to 503.
func (h *Handlers) run(w http.ResponseWriter, r *http.Request, fn func()) bool {
	if err := h.Loop.Do(r.Context(), fn); err != nil {
		status := http.StatusServiceUnavailable
		if errors.Is(err, context.DeadlineExceeded) {
			status = http.StatusGatewayTimeout
		}
		writeProblem(w, status, "Control loop unavailable", err.Error())
		return false
	}
	return true
}

func (h *Handlers) simple(fn func(p *placepage.Page)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var st stateResponse
		if h.run(w, r, func() {
			fn(h.Page)
			st = h.snapshotState()
		}) {
			writeJSON(w, http.StatusOK, st)
		}
	}
}

// snapshotState must run on the control thread.
func (h *Handlers) snapshotState() stateResponse {
	mode := h.Page.Mode()
	return stateResponse{
		State:       h.Page.State(),
		Docked:      mode.Docked,
		Floating:    mode.Floating,
		SelectionID: h.Page.SelectionID(),
	}
}

func (h *Handlers) health(w http.ResponseWriter, r *http.Request) {
	if h.Health != nil {
		if err := h.Health(r.Context()); err != nil {
			writeProblem(w, http.StatusServiceUnavailable, "Unhealthy", err.Error())
			return
		}
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (h *Handlers) getView(w http.ResponseWriter, r *http.Request) {
	etag, body := calcETagAndBody(h.View.Snapshot())
	if inm := r.Header.Get("If-None-Match"); inm != "" && inm == etag {
		w.Header().Set("ETag", etag)
		w.WriteHeader(http.StatusNotModified)
		return
	}
	w.Header().Set("ETag", etag)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(body); err != nil {
		log.Error().Err(err).Msg("failed to write view body")
	}
}

func (h *Handlers) getState(w http.ResponseWriter, r *http.Request) {
	var st stateResponse
	if h.run(w, r, func() { st = h.snapshotState() }) {
		writeJSON(w, http.StatusOK, st)
	}
}

func (h *Handlers) putState(w http.ResponseWriter, r *http.Request) {
	var req struct {
		State domain.PanelState `json:"state"`
	}
	if !decode(w, r, &req) {
		return
	}
	if !req.State.Valid() {
		writeProblem(w, http.StatusBadRequest, "Invalid state", "state must be hidden, preview, details or fullscreen")
		return
	}
	var st stateResponse
	if h.run(w, r, func() {
		h.Page.SetState(req.State)
		st = h.snapshotState()
	}) {
		writeJSON(w, http.StatusOK, st)
	}
}

func (h *Handlers) selectObject(w http.ResponseWriter, r *http.Request) {
	var req selectRequest
	if !decode(w, r, &req) {
		return
	}
	if req.Object != nil && req.Object.Kind == "" {
		writeProblem(w, http.StatusBadRequest, "Invalid object", "object.kind is required")
		return
	}
	var st stateResponse
	if !h.run(w, r, func() {
		completed := false
		h.Page.SelectObject(req.Object, req.Force, func() { completed = true })
		st = h.snapshotState()
		st.Completed = completed
	}) {
		return
	}
	status := http.StatusOK
	if !st.Completed {
		// waiting for the network policy
		status = http.StatusAccepted
	}
	writeJSON(w, status, st)
}

func (h *Handlers) hide(w http.ResponseWriter, r *http.Request) {
	touch := r.URL.Query().Get("touch") == "true"
	h.simple(func(p *placepage.Page) {
		if touch {
			p.HideOnTouch()
			return
		}
		p.Hide()
	})(w, r)
}

func (h *Handlers) location(w http.ResponseWriter, r *http.Request) {
	var loc domain.Location
	if !decode(w, r, &loc) {
		return
	}
	if loc.Lat < -90 || loc.Lat > 90 || loc.Lon < -180 || loc.Lon > 180 {
		writeProblem(w, http.StatusBadRequest, "Invalid location", "lat/lon out of range")
		return
	}
	h.simple(func(p *placepage.Page) { p.RefreshLocation(loc) })(w, r)
}

func (h *Handlers) azimuth(w http.ResponseWriter, r *http.Request) {
	var req struct {
		North float64 `json:"north"`
	}
	if !decode(w, r, &req) {
		return
	}
	h.simple(func(p *placepage.Page) { p.RefreshAzimuth(req.North) })(w, r)
}

func (h *Handlers) resolvePolicy(w http.ResponseWriter, r *http.Request) {
	if h.Prompter == nil {
		writeProblem(w, http.StatusConflict, "No prompt", "network policy does not ask the user")
		return
	}
	var req struct {
		Allowed  bool `json:"allowed"`
		Remember bool `json:"remember"`
	}
	if !decode(w, r, &req) {
		return
	}
	n := h.Prompter.Resolve(req.Allowed, req.Remember)
	writeJSON(w, http.StatusOK, map[string]int{"resolved": n})
}

func (h *Handlers) connectivity(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Connected bool `json:"connected"`
	}
	if !decode(w, r, &req) {
		return
	}
	h.Conn.Set(req.Connected)
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handlers) navigation(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Navigating bool `json:"navigating"`
		Planning   bool `json:"planning"`
	}
	if !decode(w, r, &req) {
		return
	}
	h.Nav.Set(req.Navigating, req.Planning)
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handlers) listRegions(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.Regions.List())
}

func (h *Handlers) putRegion(w http.ResponseWriter, r *http.Request) {
	var reg domain.DownloadRegion
	if !decode(w, r, &reg) {
		return
	}
	reg.ID = chi.URLParam(r, "id")
	h.Regions.Put(reg)
	writeJSON(w, http.StatusOK, reg)
}

func (h *Handlers) regionStatus(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Status domain.RegionStatus `json:"status"`
	}
	if !decode(w, r, &req) {
		return
	}
	if !h.Regions.SetStatus(chi.URLParam(r, "id"), req.Status) {
		writeProblem(w, http.StatusNotFound, "Not Found", "region not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handlers) regionProgress(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Local  int64 `json:"local"`
		Remote int64 `json:"remote"`
	}
	if !decode(w, r, &req) {
		return
	}
	id := chi.URLParam(r, "id")
	if _, ok := h.Regions.Fill(id); !ok {
		writeProblem(w, http.StatusNotFound, "Not Found", "region not found")
		return
	}
	h.Regions.Progress(id, req.Local, req.Remote)
	w.WriteHeader(http.StatusNoContent)
}
