package server

import (
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/bh2smith/jupiter-agent/internal/agent"
	"github.com/bh2smith/jupiter-agent/internal/apierr"
	"github.com/bh2smith/jupiter-agent/internal/metrics"
	"github.com/bh2smith/jupiter-agent/internal/tokens"
)

// maxQuoteAmount bounds the human-unit sell amount. Even at 9 decimals
// this stays well inside uint64 after scaling to atomic units.
const maxQuoteAmount = 1e9

// errorResponse is the wire shape of all error replies.
type errorResponse struct {
	ErrorType   string `json:"errorType"`
	Description any    `json:"description"`
	Code        string `json:"code,omitempty"`
}

func (s *Server) handleQuote(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	query, fieldErrs := parseQuoteQuery(r.URL.Query())
	if len(fieldErrs) > 0 {
		s.writeJSON(w, http.StatusBadRequest, errorResponse{
			ErrorType:   "InvalidInput",
			Description: fieldErrs,
		})
		return
	}

	outcome, err := s.quotes.Run(r.Context(), query)
	if err != nil {
		s.writeError(w, err)
		return
	}
	_ = s.metrics.RecordHistogram(r.Context(), metrics.MetricRequestTimeMilliseconds,
		float64(time.Since(start).Milliseconds()))

	if outcome.Candidates != nil {
		s.writeJSON(w, http.StatusMultipleChoices, map[string]any{
			"candidates": outcome.Candidates,
		})
		return
	}
	s.writeJSON(w, http.StatusOK, outcome.Executable)
}

func (s *Server) handlePortfolio(w http.ResponseWriter, r *http.Request) {
	address := r.URL.Query().Get("solAddress")
	if !tokens.IsAddress(address) {
		s.writeJSON(w, http.StatusBadRequest, errorResponse{
			ErrorType:   "InvalidInput",
			Description: map[string]string{"solAddress": "must be a valid Solana public key"},
		})
		return
	}

	holdings, err := s.provider.GetHoldings(r.Context(), address)
	if err != nil {
		s.writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(holdings)
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("query")
	if query == "" {
		s.writeJSON(w, http.StatusBadRequest, errorResponse{
			ErrorType:   "InvalidInput",
			Description: map[string]string{"query": "must not be empty"},
		})
		return
	}

	minScore := s.minScore
	if raw := r.URL.Query().Get("minScore"); raw != "" {
		parsed, err := strconv.ParseFloat(raw, 64)
		if err != nil || parsed < 0 {
			s.writeJSON(w, http.StatusBadRequest, errorResponse{
				ErrorType:   "InvalidInput",
				Description: map[string]string{"minScore": "must be a non-negative number"},
			})
			return
		}
		minScore = parsed
	}

	mints, err := s.provider.SearchToken(r.Context(), query, minScore)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"tokens": mints})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// parseQuoteQuery validates the raw query parameters, collecting
// field-level problems instead of failing on the first.
func parseQuoteQuery(values url.Values) (agent.QuoteQuery, map[string]string) {
	fieldErrs := make(map[string]string)

	solAddress := values.Get("solAddress")
	if !tokens.IsAddress(solAddress) {
		fieldErrs["solAddress"] = "must be a valid Solana public key"
	}

	inputMint := values.Get("inputMint")
	if inputMint == "" {
		fieldErrs["inputMint"] = "must not be empty"
	}
	outputMint := values.Get("outputMint")
	if outputMint == "" {
		fieldErrs["outputMint"] = "must not be empty"
	}

	var amount float64
	rawAmount := values.Get("amount")
	if rawAmount == "" {
		fieldErrs["amount"] = "must not be empty"
	} else {
		parsed, err := strconv.ParseFloat(rawAmount, 64)
		switch {
		case err != nil || parsed <= 0:
			fieldErrs["amount"] = "must be a positive number"
		case parsed > maxQuoteAmount:
			fieldErrs["amount"] = "must not exceed 1e9"
		default:
			amount = parsed
		}
	}

	if len(fieldErrs) > 0 {
		return agent.QuoteQuery{}, fieldErrs
	}
	return agent.QuoteQuery{
		SolAddress: solAddress,
		InputMint:  inputMint,
		OutputMint: outputMint,
		Amount:     amount,
	}, nil
}

// writeError maps an error to its HTTP reply: TokenNotFound keeps its
// fixed status and wire shape, everything else is normalized once.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	var notFound *apierr.TokenNotFoundError
	if errors.As(err, &notFound) {
		s.writeJSON(w, notFound.StatusCode(), notFound)
		return
	}

	ne := apierr.Normalize(err)
	status := ne.Status
	if status == 0 {
		status = http.StatusInternalServerError
	}
	s.GetLogger().Error("request failed", "error", ne.Message, "status", status, "code", ne.Code)
	s.writeJSON(w, status, errorResponse{
		ErrorType:   "InternalError",
		Description: ne.Message,
		Code:        ne.Code,
	})
}
