package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/MerrickKing/walrusbot/internal/domain"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

// --- mocks ---

type mockRecordReader struct{ mock.Mock }

func (m *mockRecordReader) Get(ctx context.Context, userID string) (*domain.UserRecord, error) {
	args := m.Called(ctx, userID)
	if r, _ := args.Get(0).(*domain.UserRecord); r != nil {
		return r, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockRecordReader) Stats(ctx context.Context) (int, int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Int(1), args.Error(2)
}

type mockSigner struct{ mock.Mock }

func (m *mockSigner) Sign(subject string) (string, error) {
	args := m.Called(subject)
	return args.String(0), args.Error(1)
}

// --- helpers ---

func adminHash(t *testing.T, password string) string {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return string(hash)
}

func postLogin(h *OpsHandler, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/v1/ops/login", bytes.NewBufferString(body))
	rr := httptest.NewRecorder()
	h.Login(rr, req)
	return rr
}

// --- Login ---

func TestLogin_InvalidJSON(t *testing.T) {
	h := NewOpsHandler(&mockRecordReader{}, &mockSigner{}, adminHash(t, "secret"))
	rr := postLogin(h, "{not json")
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestLogin_MissingFields(t *testing.T) {
	h := NewOpsHandler(&mockRecordReader{}, &mockSigner{}, adminHash(t, "secret"))
	rr := postLogin(h, `{"username":"admin"}`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestLogin_NotConfigured(t *testing.T) {
	h := NewOpsHandler(&mockRecordReader{}, nil, "")
	rr := postLogin(h, `{"username":"admin","password":"secret"}`)
	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
}

func TestLogin_WrongPassword(t *testing.T) {
	h := NewOpsHandler(&mockRecordReader{}, &mockSigner{}, adminHash(t, "secret"))
	rr := postLogin(h, `{"username":"admin","password":"wrong"}`)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestLogin_IssuesToken(t *testing.T) {
	signer := &mockSigner{}
	signer.On("Sign", "admin").Return("tok123", nil)

	h := NewOpsHandler(&mockRecordReader{}, signer, adminHash(t, "secret"))
	rr := postLogin(h, `{"username":"admin","password":"secret"}`)

	require.Equal(t, http.StatusOK, rr.Code)
	var resp TokenEnvelope
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, "tok123", resp.Bearer)
	signer.AssertExpectations(t)
}

// --- GetVerification ---

func getWithID(h *OpsHandler, id string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/v1/verifications/"+id, nil)
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("id", id)
	req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
	rr := httptest.NewRecorder()
	h.GetVerification(rr, req)
	return rr
}

func TestGetVerification_Found(t *testing.T) {
	records := &mockRecordReader{}
	records.On("Get", mock.Anything, "u1").Return(&domain.UserRecord{UserID: "u1", Verified: true}, nil)

	h := NewOpsHandler(records, &mockSigner{}, "")
	rr := getWithID(h, "u1")

	require.Equal(t, http.StatusOK, rr.Code)
	var rec domain.UserRecord
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &rec))
	assert.True(t, rec.Verified)
}

func TestGetVerification_NotFound(t *testing.T) {
	records := &mockRecordReader{}
	records.On("Get", mock.Anything, "nobody").Return(nil, domain.ErrNotFound)

	h := NewOpsHandler(records, &mockSigner{}, "")
	rr := getWithID(h, "nobody")
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

// --- Stats ---

func TestStats(t *testing.T) {
	records := &mockRecordReader{}
	records.On("Stats", mock.Anything).Return(10, 7, nil)

	h := NewOpsHandler(records, &mockSigner{}, "")
	req := httptest.NewRequest(http.MethodGet, "/v1/verifications-stats", nil)
	rr := httptest.NewRecorder()
	h.Stats(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	var resp statsEnvelope
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, 10, resp.Total)
	assert.Equal(t, 7, resp.Verified)
}
