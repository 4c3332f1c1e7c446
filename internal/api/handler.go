// Package api exposes program execution and run history over HTTP, and
// streams live run events over a WebSocket.
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/IKKNIGHT/PureBlocks/internal/console"
	"github.com/IKKNIGHT/PureBlocks/internal/runner"
	"github.com/IKKNIGHT/PureBlocks/internal/script/executor"
	"github.com/IKKNIGHT/PureBlocks/internal/script/lexer"
	"github.com/IKKNIGHT/PureBlocks/internal/store"
)

// MaxSourceBytes bounds the request body of run and check requests.
const MaxSourceBytes = 1 << 20

// sourceRequest is the JSON body for POST /api/runs and POST /api/check.
type sourceRequest struct {
	Source string `json:"source"`
}

// runDetail is the response for GET /api/runs/{id}.
type runDetail struct {
	*store.Run
	Console []console.Entry `json:"console"`
}

// Handler holds all dependencies for HTTP request handling. Hub and
// RedisHealth are optional.
type Handler struct {
	Runner      *runner.Runner
	Store       *store.Store
	Hub         *Hub
	RedisHealth *console.HealthMonitor
}

// healthResponse is the response for GET /api/health.
type healthResponse struct {
	Status  string                `json:"status"`
	Clients int                   `json:"clients"`
	Redis   *console.StreamHealth `json:"redis,omitempty"`
}

// RegisterRoutes adds all API routes to the given ServeMux.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/runs", h.createRun)
	mux.HandleFunc("GET /api/runs", h.listRuns)
	mux.HandleFunc("GET /api/runs/{id}", h.getRun)
	mux.HandleFunc("GET /api/runs/{id}/png", h.exportPNG)
	mux.HandleFunc("GET /api/runs/{id}/pdf", h.exportPDF)
	mux.HandleFunc("POST /api/check", h.check)
	mux.HandleFunc("GET /api/health", h.health)
	if h.Hub != nil {
		mux.HandleFunc("GET /ws", h.Hub.HandleWebSocket)
	}
}

func decodeSource(w http.ResponseWriter, r *http.Request) (string, bool) {
	var req sourceRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, MaxSourceBytes)).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return "", false
	}
	return req.Source, true
}

func (h *Handler) createRun(w http.ResponseWriter, r *http.Request) {
	source, ok := decodeSource(w, r)
	if !ok {
		return
	}

	res, err := h.Runner.Run(r.Context(), source)
	if res == nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": fmt.Sprintf("failed to run program: %v", err)})
		return
	}
	// A cancelled run still has a partial result worth returning.
	writeJSON(w, http.StatusOK, res)
}

func (h *Handler) listRuns(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if s := r.URL.Query().Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n <= 0 {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "limit must be a positive integer"})
			return
		}
		limit = n
	}
	runs, err := h.Store.ListRuns(limit)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": fmt.Sprintf("failed to query runs: %v", err)})
		return
	}
	writeJSON(w, http.StatusOK, runs)
}

func (h *Handler) getRun(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	run, err := h.Store.GetRun(id)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	entries, err := h.Store.QueryConsole(id)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, runDetail{Run: run, Console: entries})
}

func (h *Handler) exportPNG(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	d, err := h.Store.GetDrawing(id)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Disposition", fmt.Sprintf("inline; filename=pureblocks-%s.png", id))
	if err := runner.WritePNG(w, *d, h.Runner.Config().Canvas.FontSize); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (h *Handler) exportPDF(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	d, err := h.Store.GetDrawing(id)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=pureblocks-%s.pdf", id))
	if err := runner.WritePDF(w, *d, h.Runner.Config().Canvas.FontSize); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (h *Handler) check(w http.ResponseWriter, r *http.Request) {
	source, ok := decodeSource(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, executor.Check(lexer.Split(source), nil))
}

func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	resp := healthResponse{Status: "ok"}
	if h.Hub != nil {
		resp.Clients = h.Hub.ClientCount()
	}
	if h.RedisHealth != nil {
		rh := h.RedisHealth.Health()
		resp.Redis = &rh
		if !rh.Connected {
			resp.Status = "degraded"
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

func writeStoreError(w http.ResponseWriter, err error) {
	if errors.Is(err, store.ErrNotFound) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "run not found"})
		return
	}
	writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
