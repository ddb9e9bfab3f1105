package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/MerrickKing/walrusbot/internal/domain"
	"github.com/MerrickKing/walrusbot/internal/pkg/validate"
	"golang.org/x/crypto/bcrypt"
)

// TokenSigner issues ops API bearer tokens.
type TokenSigner interface {
	Sign(subject string) (string, error)
}

// RecordReader is the read-only view of the user record store the ops API
// needs.
type RecordReader interface {
	Get(ctx context.Context, userID string) (*domain.UserRecord, error)
	Stats(ctx context.Context) (total, verified int, err error)
}

// OpsHandler exposes read-only verification state to administrators.
type OpsHandler struct {
	records      RecordReader
	signer       TokenSigner
	passwordHash string // bcrypt hash of the admin password
}

func NewOpsHandler(records RecordReader, signer TokenSigner, passwordHash string) *OpsHandler {
	return &OpsHandler{records: records, signer: signer, passwordHash: passwordHash}
}

type loginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// Login exchanges the admin password for a bearer token.
func (h *OpsHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if err := validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if h.passwordHash == "" || h.signer == nil {
		writeError(w, http.StatusServiceUnavailable, "ops login not configured")
		return
	}
	if err := bcrypt.CompareHashAndPassword([]byte(h.passwordHash), []byte(req.Password)); err != nil {
		writeError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}
	bearer, err := h.signer.Sign(req.Username)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "could not issue token")
		return
	}
	writeJSON(w, http.StatusOK, TokenEnvelope{Bearer: bearer})
}

// GetVerification returns one user's verification record.
func (h *OpsHandler) GetVerification(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "id")
	rec, err := h.records.Get(r.Context(), userID)
	if errors.Is(err, domain.ErrNotFound) {
		writeError(w, http.StatusNotFound, "no record for that user")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "store error")
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

type statsEnvelope struct {
	Total    int `json:"total"`
	Verified int `json:"verified"`
}

// Stats returns aggregate verification counts.
func (h *OpsHandler) Stats(w http.ResponseWriter, r *http.Request) {
	total, verified, err := h.records.Stats(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "store error")
		return
	}
	writeJSON(w, http.StatusOK, statsEnvelope{Total: total, Verified: verified})
}
