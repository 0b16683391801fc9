package api

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/seipay/custody/internal/app"
	"github.com/seipay/custody/internal/middleware"
	apperrors "github.com/seipay/custody/pkg/errors"
)

// handleWallets routes the collection endpoints:
//
//	GET  /v1/wallets        list wallets
//	POST /v1/wallets        generate a wallet
func (s *Server) handleWallets(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.listWallets(w, r)
	case http.MethodPost:
		s.generateWallet(w, r)
	default:
		methodNotAllowed(w)
	}
}

// handleWallet routes the per-wallet endpoints:
//
//	POST   /v1/wallets/import                 import a private key
//	GET    /v1/wallets/{id}                   wallet metadata
//	DELETE /v1/wallets/{id}                   delete wallet
//	POST   /v1/wallets/{id}/unlock            verify password, count failures
//	PUT    /v1/wallets/{id}/access            set agent access policy
//	POST   /v1/wallets/{id}/spend/authorize   dry-run spend check
//	POST   /v1/wallets/{id}/spend             commit a spend
//	POST   /v1/wallets/{id}/recovery-code     export recovery code
//	POST   /v1/wallets/{id}/recovery-shares   export recovery shares
func (s *Server) handleWallet(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/v1/wallets/")

	if rest == "import" {
		if r.Method != http.MethodPost {
			methodNotAllowed(w)
			return
		}
		s.importWallet(w, r)
		return
	}

	parts := strings.SplitN(rest, "/", 2)
	walletID, err := uuid.Parse(parts[0])
	if err != nil {
		writeError(w, r, apperrors.NewWithDetail(apperrors.ErrCodeBadRequest, "Invalid wallet ID", parts[0], http.StatusBadRequest))
		return
	}

	if len(parts) == 1 {
		switch r.Method {
		case http.MethodGet:
			s.getWallet(w, r, walletID)
		case http.MethodDelete:
			s.deleteWallet(w, r, walletID)
		default:
			methodNotAllowed(w)
		}
		return
	}

	switch parts[1] {
	case "unlock":
		s.requirePost(w, r, walletID, s.unlockWallet)
	case "access":
		if r.Method != http.MethodPut {
			methodNotAllowed(w)
			return
		}
		s.updateAccess(w, r, walletID)
	case "spend/authorize":
		s.requirePost(w, r, walletID, s.authorizeSpend)
	case "spend":
		s.requirePost(w, r, walletID, s.recordSpend)
	case "recovery-code":
		s.requirePost(w, r, walletID, s.exportRecoveryCode)
	case "recovery-shares":
		s.requirePost(w, r, walletID, s.exportRecoveryShares)
	default:
		writeError(w, r, apperrors.ErrNotFound)
	}
}

func (s *Server) requirePost(w http.ResponseWriter, r *http.Request, walletID uuid.UUID, handler func(http.ResponseWriter, *http.Request, uuid.UUID)) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	handler(w, r, walletID)
}

type generateWalletRequest struct {
	Password string `json:"password"`
	Label    string `json:"label,omitempty"`
}

func (s *Server) generateWallet(w http.ResponseWriter, r *http.Request) {
	var req generateWalletRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	resp, err := s.vaultService.Generate(r.Context(), &app.GenerateRequest{
		OwnerID:  middleware.OwnerFromContext(r.Context()),
		Password: req.Password,
		Label:    req.Label,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

type importWalletRequest struct {
	PrivateKey string `json:"private_key"`
	Password   string `json:"password"`
	Label      string `json:"label,omitempty"`
}

func (s *Server) importWallet(w http.ResponseWriter, r *http.Request) {
	var req importWalletRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	info, err := s.vaultService.Import(r.Context(), &app.ImportRequest{
		OwnerID:     middleware.OwnerFromContext(r.Context()),
		KeyMaterial: req.PrivateKey,
		Password:    req.Password,
		Label:       req.Label,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]interface{}{"wallet": info})
}

func (s *Server) listWallets(w http.ResponseWriter, r *http.Request) {
	infos, err := s.vaultService.ListWallets(r.Context(), middleware.OwnerFromContext(r.Context()))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"wallets": infos})
}

func (s *Server) getWallet(w http.ResponseWriter, r *http.Request, walletID uuid.UUID) {
	info, err := s.vaultService.GetWallet(r.Context(), middleware.OwnerFromContext(r.Context()), walletID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"wallet": info})
}

func (s *Server) deleteWallet(w http.ResponseWriter, r *http.Request, walletID uuid.UUID) {
	if err := s.vaultService.Delete(r.Context(), middleware.OwnerFromContext(r.Context()), walletID); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"deleted": true})
}

type unlockRequest struct {
	Password string `json:"password"`
}

// unlockWallet verifies the wallet password. The decrypted key lives only
// for the duration of the request; callers get a confirmation, never key
// material.
func (s *Server) unlockWallet(w http.ResponseWriter, r *http.Request, walletID uuid.UUID) {
	var req unlockRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	signer, err := s.vaultService.Unlock(r.Context(), middleware.OwnerFromContext(r.Context()), walletID, req.Password)
	if err != nil {
		writeError(w, r, err)
		return
	}
	defer signer.Close()

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"unlocked": true,
		"address":  signer.Address(),
	})
}

type exportRecoveryRequest struct {
	Password string `json:"password"`
}

func (s *Server) exportRecoveryCode(w http.ResponseWriter, r *http.Request, walletID uuid.UUID) {
	var req exportRecoveryRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	code, err := s.vaultService.ExportRecoveryCode(r.Context(), middleware.OwnerFromContext(r.Context()), walletID, req.Password)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"recovery_code": code})
}

type exportSharesRequest struct {
	Password  string `json:"password"`
	Parts     int    `json:"parts"`
	Threshold int    `json:"threshold"`
}

func (s *Server) exportRecoveryShares(w http.ResponseWriter, r *http.Request, walletID uuid.UUID) {
	var req exportSharesRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	shares, err := s.vaultService.ExportRecoveryShares(r.Context(), middleware.OwnerFromContext(r.Context()), walletID, req.Password, req.Parts, req.Threshold)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"shares": shares})
}

// handleAuditLogs returns the caller's recent audit entries
func (s *Server) handleAuditLogs(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 || parsed > 500 {
			writeError(w, r, apperrors.NewWithDetail(apperrors.ErrCodeBadRequest, "Invalid limit", raw, http.StatusBadRequest))
			return
		}
		limit = parsed
	}

	entries, err := s.vaultService.AuditTrail(r.Context(), middleware.OwnerFromContext(r.Context()), limit)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"entries": entries})
}

type restoreRecoveryRequest struct {
	RecoveryCode string `json:"recovery_code"`
	Password     string `json:"password"`
}

func (s *Server) handleRestoreRecovery(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}

	var req restoreRecoveryRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	restored, err := s.vaultService.RestoreRecoveryCode(r.Context(), middleware.OwnerFromContext(r.Context()), req.RecoveryCode, req.Password)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, restored)
}

type restoreSharesRequest struct {
	Shares   []string `json:"shares"`
	Password string   `json:"password"`
}

func (s *Server) handleRestoreShares(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}

	var req restoreSharesRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	restored, err := s.vaultService.RestoreRecoveryShares(r.Context(), middleware.OwnerFromContext(r.Context()), req.Shares, req.Password)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, restored)
}
