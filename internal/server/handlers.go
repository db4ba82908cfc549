package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"RatioChart/internal/calculator"
	"RatioChart/internal/model"
	"RatioChart/internal/recorder"
	"RatioChart/internal/session"
)

type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// statusFor maps an error kind onto an HTTP status.
func statusFor(kind string) int {
	switch kind {
	case "invalid":
		return http.StatusBadRequest
	case "no_data", "empty_overlap":
		return http.StatusNotFound
	case "transport", "format":
		return http.StatusBadGateway
	case "stale":
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, err error) {
	kind := model.ErrorKind(err)
	writeJSON(w, statusFor(kind), errorBody{Error: kind, Message: err.Error()})
}

// parseRequest reads the host input from the query string. Missing symbols
// fall back to the saved pair.
func (s *Server) parseRequest(r *http.Request) (model.Request, error) {
	q := r.URL.Query()
	req := model.Request{
		SymbolA: q.Get("symbolA"),
		SymbolB: q.Get("symbolB"),
	}
	if req.SymbolA == "" && req.SymbolB == "" && s.Prefs != nil {
		p := s.Prefs.Get()
		req.SymbolA, req.SymbolB, req.Order = p.SymbolA, p.SymbolB, p.Order
	}
	if o := q.Get("order"); o != "" {
		order, err := model.ParseRatioOrder(o)
		if err != nil {
			return model.Request{}, fmt.Errorf("%w: %v", model.ErrInvalidRequest, err)
		}
		req.Order = order
	}
	from, to, err := calculator.ResolveRange(q.Get("range"), q.Get("from"), q.Get("to"), s.now(), s.Location)
	if err != nil {
		return model.Request{}, err
	}
	req.From, req.To = from, to
	return req.Normalize(), nil
}

func (s *Server) handleRatio(w http.ResponseWriter, r *http.Request) {
	req, err := s.parseRequest(r)
	if err != nil {
		writeError(w, err)
		return
	}
	chart, err := s.Collector.Collect(r.Context(), req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, chart)
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	req, err := s.parseRequest(r)
	if err != nil {
		writeError(w, err)
		return
	}
	chart, err := s.Session.Refresh(r.Context(), "http", req)
	if err != nil {
		writeError(w, err)
		return
	}
	if s.Prefs != nil {
		if err := s.Prefs.SetPair(req.SymbolA, req.SymbolB, req.Order); err != nil {
			writeError(w, err)
			return
		}
	}
	writeJSON(w, http.StatusOK, chart)
}

func (s *Server) handleChart(w http.ResponseWriter, r *http.Request) {
	chart := s.Session.Current()
	if chart == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	writeJSON(w, http.StatusOK, chart)
}

type prefsBody struct {
	SymbolA string           `json:"symbol_a"`
	SymbolB string           `json:"symbol_b"`
	Order   model.RatioOrder `json:"order"`
}

func (s *Server) handleGetPrefs(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.Prefs.Get())
}

func (s *Server) handlePutPrefs(w http.ResponseWriter, r *http.Request) {
	var body prefsBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, fmt.Errorf("%w: decode body: %v", model.ErrInvalidRequest, err))
		return
	}
	order, err := model.ParseRatioOrder(string(body.Order))
	if err != nil {
		writeError(w, fmt.Errorf("%w: %v", model.ErrInvalidRequest, err))
		return
	}
	if err := s.Prefs.SetPair(body.SymbolA, body.SymbolB, order); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.Prefs.Get())
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	limit := 20
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			writeError(w, fmt.Errorf("%w: limit must be a positive integer", model.ErrInvalidRequest))
			return
		}
		limit = n
	}
	events, err := s.Recorder.Recent(limit)
	if err != nil {
		writeError(w, err)
		return
	}
	if events == nil {
		events = []recorder.RefreshEvent{}
	}
	writeJSON(w, http.StatusOK, events)
}

type healthBody struct {
	Status     string           `json:"status"`
	Provider   string           `json:"provider"`
	Uptime     string           `json:"uptime"`
	Generation uint64           `json:"generation"`
	Last       *session.Outcome `json:"last,omitempty"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	body := healthBody{
		Status:   "ok",
		Provider: s.Provider,
		Uptime:   time.Since(s.started).Round(time.Second).String(),
	}
	if s.Session != nil {
		body.Generation = s.Session.Generation()
		if out, ok := s.Session.LastOutcome(); ok {
			body.Last = &out
			if out.Kind == "transport" || out.Kind == "format" {
				body.Status = "degraded"
			}
		}
	}
	writeJSON(w, http.StatusOK, body)
}
