package api

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/seipay/custody/internal/app"
	"github.com/seipay/custody/internal/middleware"
	apperrors "github.com/seipay/custody/pkg/errors"
)

type updateAccessRequest struct {
	Enabled    bool   `json:"enabled"`
	Level      string `json:"level"`
	DailyLimit string `json:"daily_limit,omitempty"`
}

func (s *Server) updateAccess(w http.ResponseWriter, r *http.Request, walletID uuid.UUID) {
	var req updateAccessRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	var limit *decimal.Decimal
	if req.DailyLimit != "" {
		parsed, err := decimal.NewFromString(req.DailyLimit)
		if err != nil {
			writeError(w, r, apperrors.NewWithDetail(apperrors.ErrCodeBadRequest, "Invalid daily limit", req.DailyLimit, http.StatusBadRequest))
			return
		}
		limit = &parsed
	}

	err := s.vaultService.UpdateAgentAccess(r.Context(), middleware.OwnerFromContext(r.Context()), walletID, &app.UpdateAccessRequest{
		Enabled:    req.Enabled,
		Level:      req.Level,
		DailyLimit: limit,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"updated": true})
}

type spendRequest struct {
	Amount string `json:"amount"`
}

func (s *Server) parseAmount(w http.ResponseWriter, r *http.Request) (decimal.Decimal, bool) {
	var req spendRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return decimal.Zero, false
	}

	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		writeError(w, r, apperrors.NewWithDetail(apperrors.ErrCodeBadRequest, "Invalid amount", req.Amount, http.StatusBadRequest))
		return decimal.Zero, false
	}
	return amount, true
}

// authorizeSpend is the read-only policy check. It reports the decision
// without committing anything against the daily window.
func (s *Server) authorizeSpend(w http.ResponseWriter, r *http.Request, walletID uuid.UUID) {
	amount, ok := s.parseAmount(w, r)
	if !ok {
		return
	}

	decision, err := s.vaultService.AuthorizeAgentSpend(r.Context(), middleware.OwnerFromContext(r.Context()), walletID, amount)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"allowed": decision.Allowed,
		"reason":  decision.Reason,
	})
}

// recordSpend authorizes and commits a spend in one call
func (s *Server) recordSpend(w http.ResponseWriter, r *http.Request, walletID uuid.UUID) {
	amount, ok := s.parseAmount(w, r)
	if !ok {
		return
	}

	spent, err := s.vaultService.RecordAgentSpend(r.Context(), middleware.OwnerFromContext(r.Context()), walletID, amount)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"recorded":    true,
		"spent_today": spent.String(),
	})
}
