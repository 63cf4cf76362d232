package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"EarningsRadar/internal/model"
	"EarningsRadar/internal/store"
	"EarningsRadar/internal/watchlist"
)

const (
	statusReady    = "ready"
	statusUpdating = "updating"
)

type symbolsRequest struct {
	Symbols []string `json:"symbols"`
}

type earningsResponse struct {
	Status string                   `json:"status"`
	Data   []model.EarningsSnapshot `json:"data"`
}

type profilesResponse struct {
	Status string                         `json:"status"`
	Data   map[string]model.ProfileRecord `json:"data"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleEarnings(w http.ResponseWriter, r *http.Request) {
	status := statusReady
	if s.earnings.Updating() {
		status = statusUpdating
	}
	s.respondJSON(w, http.StatusOK, earningsResponse{
		Status: status,
		Data:   s.cache.Snapshot(),
	})
}

func (s *Server) handleProfiles(w http.ResponseWriter, r *http.Request) {
	status := statusReady
	if s.profiles.Updating() {
		status = statusUpdating
	}
	s.respondJSON(w, http.StatusOK, profilesResponse{
		Status: status,
		Data:   s.store.All(),
	})
}

// handleRefresh registers new symbols and kicks both fetch cycles in the
// background. The response returns before any fetching happens; consumers
// poll the read endpoints until status flips back to ready.
func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	req, ok := s.decodeSymbols(w, r)
	if !ok {
		return
	}

	all := s.tracked.Union(req.Symbols)
	go s.earnings.Refresh(s.baseCtx, all)
	go s.profiles.Refresh(s.baseCtx, req.Symbols)

	s.respondJSON(w, http.StatusOK, map[string]string{"message": "Refresh started."})
}

func (s *Server) handleFinancials(w http.ResponseWriter, r *http.Request) {
	symbol := chi.URLParam(r, "symbol")
	if symbol == "" {
		s.respondError(w, http.StatusBadRequest, "Symbol is required")
		return
	}

	res, err := s.financials.Collect(r.Context(), symbol)
	if err != nil {
		s.log.Error().Err(err).Str("symbol", symbol).Msg("financials fetch failed")
		s.respondError(w, http.StatusInternalServerError, "Failed to fetch financials")
		return
	}
	s.respondJSON(w, http.StatusOK, res)
}

func (s *Server) handleSaveStocks(w http.ResponseWriter, r *http.Request) {
	req, ok := s.decodeSymbols(w, r)
	if !ok {
		return
	}

	if err := s.symbols.Save(req.Symbols); err != nil {
		s.log.Error().Err(err).Msg("save stocks failed")
		if errors.Is(err, store.ErrMarkerNotFound) {
			s.respondError(w, http.StatusInternalServerError, "Could not find the stock list marker in the document")
			return
		}
		s.respondError(w, http.StatusInternalServerError, "Failed to rewrite stock list")
		return
	}

	s.tracked.Replace(req.Symbols)
	s.respondJSON(w, http.StatusOK, map[string]any{"success": true, "count": len(req.Symbols)})
}

// handleImportWatchlist parses an uploaded .ebk watchlist body and unions the
// extracted symbols into the tracked set.
func (s *Server) handleImportWatchlist(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "Failed to read watchlist body")
		return
	}

	symbols := watchlist.Parse(string(body))
	if len(symbols) == 0 {
		s.respondError(w, http.StatusBadRequest, "No valid symbols found in watchlist")
		return
	}

	s.tracked.Union(symbols)
	s.respondJSON(w, http.StatusOK, map[string]any{"symbols": symbols, "count": len(symbols)})
}

// decodeSymbols parses a {"symbols": [...]} body, writing a 400 before any
// background work when the field is missing or not an array of strings.
func (s *Server) decodeSymbols(w http.ResponseWriter, r *http.Request) (symbolsRequest, bool) {
	var req symbolsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "Please provide an array of symbols")
		return req, false
	}
	if req.Symbols == nil {
		s.respondError(w, http.StatusBadRequest, "Please provide an array of symbols")
		return req, false
	}
	return req, true
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.log.Error().Err(err).Msg("encode response failed")
	}
}

func (s *Server) respondError(w http.ResponseWriter, status int, msg string) {
	s.respondJSON(w, status, map[string]string{"error": msg})
}
