package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	hhservice "jobaggregator/internal/hh/service"
	tokenservice "jobaggregator/internal/hhtoken/service"
	"jobaggregator/pkg/middleware"
)

type mockTokens struct{ mock.Mock }

func (m *mockTokens) GetValidToken(ctx context.Context, userID int64) (string, error) {
	args := m.Called(ctx, userID)
	return args.String(0), args.Error(1)
}

type mockAPI struct{ mock.Mock }

func (m *mockAPI) GetResumes(ctx context.Context, token string) (json.RawMessage, error) {
	args := m.Called(ctx, token)
	raw, _ := args.Get(0).(json.RawMessage)
	return raw, args.Error(1)
}

func (m *mockAPI) GetResume(ctx context.Context, token, resumeID string) (json.RawMessage, error) {
	args := m.Called(ctx, token, resumeID)
	raw, _ := args.Get(0).(json.RawMessage)
	return raw, args.Error(1)
}

func (m *mockAPI) SimilarVacancies(ctx context.Context, token, resumeID string) (json.RawMessage, error) {
	args := m.Called(ctx, token, resumeID)
	raw, _ := args.Get(0).(json.RawMessage)
	return raw, args.Error(1)
}

func (m *mockAPI) CreateResume(ctx context.Context, token string, payload json.RawMessage) (json.RawMessage, error) {
	args := m.Called(ctx, token, payload)
	raw, _ := args.Get(0).(json.RawMessage)
	return raw, args.Error(1)
}

func (m *mockAPI) UpdateResume(ctx context.Context, token, resumeID string, payload json.RawMessage) error {
	return m.Called(ctx, token, resumeID, payload).Error(0)
}

func (m *mockAPI) PublishResume(ctx context.Context, token, resumeID string) error {
	return m.Called(ctx, token, resumeID).Error(0)
}

func (m *mockAPI) DeleteResume(ctx context.Context, token, resumeID string) error {
	return m.Called(ctx, token, resumeID).Error(0)
}

type mockResumes struct{ mock.Mock }

func (m *mockResumes) ActiveResume(ctx context.Context, userID int64) (string, error) {
	args := m.Called(ctx, userID)
	return args.String(0), args.Error(1)
}

func (m *mockResumes) SetActiveResume(ctx context.Context, userID int64, resumeID string) error {
	return m.Called(ctx, userID, resumeID).Error(0)
}

type fixture struct {
	tokens  *mockTokens
	api     *mockAPI
	resumes *mockResumes
	router  chi.Router
}

func newFixture() *fixture {
	f := &fixture{tokens: &mockTokens{}, api: &mockAPI{}, resumes: &mockResumes{}}
	h := NewHandler(f.tokens, f.api, f.resumes, zap.NewNop())

	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			ctx := context.WithValue(req.Context(), middleware.UserIDKey, int64(1))
			next.ServeHTTP(w, req.WithContext(ctx))
		})
	})
	r.Route("/api/v1/hh", h.Routes)
	f.router = r
	return f
}

func (f *fixture) do(method, target, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func TestGetResumesUsesValidToken(t *testing.T) {
	f := newFixture()
	f.tokens.On("GetValidToken", mock.Anything, int64(1)).Return("hh-token", nil)
	f.api.On("GetResumes", mock.Anything, "hh-token").Return(json.RawMessage(`{"items":[{"id":"r1"}]}`), nil)

	rec := f.do(http.MethodGet, "/api/v1/hh/resumes", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"items":[{"id":"r1"}]}`, rec.Body.String())
	f.api.AssertExpectations(t)
}

func TestNotLinkedIs401(t *testing.T) {
	f := newFixture()
	f.tokens.On("GetValidToken", mock.Anything, int64(1)).Return("", tokenservice.ErrAccountNotLinked)

	rec := f.do(http.MethodGet, "/api/v1/hh/resumes", "")
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.Contains(t, rec.Body.String(), "not connected")
	f.api.AssertNotCalled(t, "GetResumes", mock.Anything, mock.Anything)
}

func TestRefreshFailedIs401(t *testing.T) {
	f := newFixture()
	err := &tokenservice.RefreshFailedError{UserID: 1, Err: &tokenservice.AuthExchangeError{StatusCode: 400, Body: "invalid_grant"}}
	f.tokens.On("GetValidToken", mock.Anything, int64(1)).Return("", err)

	rec := f.do(http.MethodPost, "/api/v1/hh/resumes/r1/publish", "")
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.Contains(t, rec.Body.String(), "reauthorization required")
}

func TestAPIErrorStatusPassesThrough(t *testing.T) {
	f := newFixture()
	f.tokens.On("GetValidToken", mock.Anything, int64(1)).Return("hh-token", nil)
	f.api.On("DeleteResume", mock.Anything, "hh-token", "r9").
		Return(&hhservice.APIError{StatusCode: http.StatusForbidden, Action: "delete resume"})

	rec := f.do(http.MethodDelete, "/api/v1/hh/resumes/r9", "")
	require.Equal(t, http.StatusForbidden, rec.Code)
}

func TestSelectAndUseActiveResume(t *testing.T) {
	f := newFixture()
	f.resumes.On("SetActiveResume", mock.Anything, int64(1), "r5").Return(nil)

	rec := f.do(http.MethodPost, "/api/v1/hh/resumes/r5/select", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"status":"ok","active_resume_id":"r5"}`, rec.Body.String())
	f.tokens.AssertNotCalled(t, "GetValidToken", mock.Anything, mock.Anything)

	f.tokens.On("GetValidToken", mock.Anything, int64(1)).Return("hh-token", nil)
	f.resumes.On("ActiveResume", mock.Anything, int64(1)).Return("r5", nil)
	f.api.On("SimilarVacancies", mock.Anything, "hh-token", "r5").Return(json.RawMessage(`{"items":[]}`), nil)

	rec = f.do(http.MethodGet, "/api/v1/hh/resumes/active/vacancies", "")
	require.Equal(t, http.StatusOK, rec.Code)
	f.api.AssertExpectations(t)
}

func TestNoActiveResume(t *testing.T) {
	f := newFixture()
	f.tokens.On("GetValidToken", mock.Anything, int64(1)).Return("hh-token", nil)
	f.resumes.On("ActiveResume", mock.Anything, int64(1)).Return("", nil)

	rec := f.do(http.MethodGet, "/api/v1/hh/resumes/active", "")
	require.Equal(t, http.StatusNotFound, rec.Code)
	require.Contains(t, rec.Body.String(), "No active resume selected")
}

func TestCreateResumeRejectsInvalidJSON(t *testing.T) {
	f := newFixture()

	rec := f.do(http.MethodPost, "/api/v1/hh/resumes", "{not json")
	require.Equal(t, http.StatusBadRequest, rec.Code)
	f.tokens.AssertNotCalled(t, "GetValidToken", mock.Anything, mock.Anything)
}

func TestUpdateResume(t *testing.T) {
	f := newFixture()
	f.tokens.On("GetValidToken", mock.Anything, int64(1)).Return("hh-token", nil)
	f.api.On("UpdateResume", mock.Anything, "hh-token", "r1", json.RawMessage(`{"title":"Go developer"}`)).Return(nil)

	rec := f.do(http.MethodPut, "/api/v1/hh/resumes/r1", `{"title":"Go developer"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	f.api.AssertExpectations(t)
}

func TestTokenStoreFailureIs500(t *testing.T) {
	f := newFixture()
	storeErr := &tokenservice.StoreError{Op: "load hh token", Err: errors.New("connection refused")}
	f.tokens.On("GetValidToken", mock.Anything, int64(1)).Return("", storeErr)

	rec := f.do(http.MethodGet, "/api/v1/hh/resumes", "")
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	require.NotContains(t, rec.Body.String(), "hh.ru is unavailable")
	f.api.AssertNotCalled(t, "GetResumes", mock.Anything, mock.Anything)
}

func TestUserStoreFailureIs500(t *testing.T) {
	f := newFixture()
	f.resumes.On("SetActiveResume", mock.Anything, int64(1), "r5").Return(errors.New("disk full"))

	rec := f.do(http.MethodPost, "/api/v1/hh/resumes/r5/select", "")
	require.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestNetworkFailureIs502(t *testing.T) {
	f := newFixture()
	f.tokens.On("GetValidToken", mock.Anything, int64(1)).Return("hh-token", nil)
	f.api.On("GetResumes", mock.Anything, "hh-token").Return(nil, errors.New("dial tcp: connection reset"))

	rec := f.do(http.MethodGet, "/api/v1/hh/resumes", "")
	require.Equal(t, http.StatusBadGateway, rec.Code)
}
