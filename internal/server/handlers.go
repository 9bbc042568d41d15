package server

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/goccy/go-json"

	"github.com/blackwell-systems/basketprune/internal/apriori"
	"github.com/blackwell-systems/basketprune/internal/logging"
	"github.com/blackwell-systems/basketprune/internal/mining"
)

// maxRequestBytes bounds JSON request bodies.
const maxRequestBytes = 1 << 20

// page is the data rendered into the index template.
type page struct {
	Title         string
	MinSupport    float64
	MinConfidence float64
	Itemsets      string
	Rules         string
	Error         string
}

func (s *Server) newPage() page {
	return page{
		Title:         s.title(),
		MinSupport:    s.cfg.MinSupport,
		MinConfidence: s.cfg.MinConfidence,
	}
}

func (s *Server) title() string {
	if s.name == "" {
		return "Sample Grocery Transactions"
	}
	return s.name
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, http.StatusOK, s.newPage())
}

func (s *Server) handleIndexSubmit(w http.ResponseWriter, r *http.Request) {
	p := s.newPage()

	minSupport, err := strconv.ParseFloat(strings.TrimSpace(r.FormValue("min_support")), 64)
	if err != nil {
		p.Error = "min_support must be a number between 0 and 1"
		s.render(w, r, http.StatusBadRequest, p)
		return
	}
	p.MinSupport = minSupport

	res, err := mining.Run(r.Context(), s.ds, mining.Params{
		MinSupport:    minSupport,
		MinConfidence: s.cfg.MinConfidence,
		MaxLen:        s.cfg.MaxLen,
		Workers:       s.cfg.Workers,
	})
	if err != nil {
		p.Error = err.Error()
		s.render(w, r, statusFor(err), p)
		return
	}

	p.Itemsets = apriori.FormatItemsets(res.Itemsets)
	p.Rules = apriori.NoRulesMessage
	if len(res.Rules) > 0 {
		p.Rules = apriori.FormatRules(res.Rules)
	}
	s.render(w, r, http.StatusOK, p)
}

func (s *Server) render(w http.ResponseWriter, r *http.Request, status int, p page) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := s.tmpl.Execute(w, p); err != nil {
		logging.Ctx(r.Context()).Error().Err(err).Msg("failed to render page")
	}
}

// mineRequest is the body of POST /api/mine. Omitted fields take the server
// defaults.
type mineRequest struct {
	MinSupport    *float64 `json:"min_support"`
	MinConfidence *float64 `json:"min_confidence"`
	MaxLen        *int     `json:"max_len"`
	SkipRules     bool     `json:"skip_rules"`
}

func (s *Server) handleMine(w http.ResponseWriter, r *http.Request) {
	req := mineRequest{}
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		respondError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	p := mining.Params{
		MinSupport:    s.cfg.MinSupport,
		MinConfidence: s.cfg.MinConfidence,
		MaxLen:        s.cfg.MaxLen,
		Workers:       s.cfg.Workers,
		SkipRules:     req.SkipRules,
	}
	if req.MinSupport != nil {
		p.MinSupport = *req.MinSupport
	}
	if req.MinConfidence != nil {
		p.MinConfidence = *req.MinConfidence
	}
	if req.MaxLen != nil {
		p.MaxLen = *req.MaxLen
	}

	res, err := mining.Run(r.Context(), s.ds, p)
	if err != nil {
		respondError(w, statusFor(err), err.Error())
		return
	}

	respondJSON(w, http.StatusOK, res.Report(s.name))
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{
		"status":       "ok",
		"dataset":      s.name,
		"transactions": s.ds.Len(),
		"items":        s.ds.NumItems(),
	})
}

// statusFor maps mining errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, apriori.ErrInvalidParameter), errors.Is(err, apriori.ErrInvalidInput):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logging.Error().Err(err).Msg("failed to encode response")
	}
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}
