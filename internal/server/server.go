// Package server exposes the current connection view over a read-only JSON
// API.
package server

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/tcpview/tcpview/internal/diff"
	"github.com/tcpview/tcpview/internal/output"
	"github.com/tcpview/tcpview/internal/pipeline"
	"github.com/tcpview/tcpview/internal/sorting"
)

type Handler struct {
	collector *pipeline.Collector
	// defaults apply when a request does not pass filter or sort.
	defaultFilter string
	defaultSort   sorting.State
}

func NewHandler(c *pipeline.Collector, filter string, sort sorting.State) *Handler {
	return &Handler{collector: c, defaultFilter: filter, defaultSort: sort}
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]any{"error": msg})
}

// Router returns the API routes wrapped in a permissive CORS policy for
// GET and POST.
func (h *Handler) Router() http.Handler {
	r := chi.NewRouter()
	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/connections", h.getConnections) // ?filter=&sort=&desc=
		r.Get("/summary", h.getSummary)
		r.Post("/refresh", h.postRefresh)
	})

	return cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	})(r)
}

func (h *Handler) getConnections(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	query := h.defaultFilter
	if q.Has("filter") {
		query = q.Get("filter")
	}

	st := h.defaultSort
	if key := q.Get("sort"); key != "" {
		col, ok := sorting.ParseColumn(key)
		if !ok {
			writeError(w, http.StatusBadRequest, "unknown sort column "+strconv.Quote(key))
			return
		}
		st = sorting.By(col, false)
	}
	if v := q.Get("desc"); v != "" {
		desc, err := strconv.ParseBool(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "desc: "+err.Error())
			return
		}
		st.Desc = desc
	}

	writeJSON(w, http.StatusOK, output.JSONView(h.collector.ViewWith(query, st)))
}

type summary struct {
	Counts diff.Counts `json:"counts"`
	Taken  time.Time   `json:"taken"`
	Error  string      `json:"error,omitempty"`
}

func summarize(set pipeline.DisplaySet) summary {
	s := summary{Counts: set.Counts, Taken: set.Taken}
	if set.Err != nil {
		s.Error = set.Err.Error()
	}
	return s
}

func (h *Handler) getSummary(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, summarize(h.collector.View()))
}

func (h *Handler) postRefresh(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, summarize(h.collector.Refresh(r.Context())))
}
