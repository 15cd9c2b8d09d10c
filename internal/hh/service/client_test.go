package service

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"jobaggregator/internal/config"
	"jobaggregator/internal/hh"
)

func newTestClient(srv *httptest.Server) *Client {
	return NewClient(config.HHConfig{
		APIURL:    srv.URL,
		UserAgent: "JobAggregator/1.0 (test@example.com)",
	}, srv.Client(), zap.NewNop())
}

func TestSearchVacancies(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/vacancies", r.URL.Path)
		require.Equal(t, "Python", r.URL.Query().Get("text"))
		require.Equal(t, "1002", r.URL.Query().Get("area"))
		require.Equal(t, "10", r.URL.Query().Get("per_page"))
		require.Equal(t, "JobAggregator/1.0 (test@example.com)", r.Header.Get("User-Agent"))
		require.Empty(t, r.Header.Get("Authorization"))

		_, _ = w.Write([]byte(`{"found":1,"pages":1,"page":0,"per_page":10,"items":[
			{"id":"93","name":"Python developer","alternate_url":"https://hh.ru/vacancy/93",
			 "employer":{"id":"1","name":"Acme"},"area":{"id":"1002","name":"Минск"}}]}`))
	}))
	defer srv.Close()

	res, err := newTestClient(srv).SearchVacancies(context.Background(), hh.SearchQuery{Text: "Python", Area: 1002, PerPage: 10})
	require.NoError(t, err)
	require.Len(t, res.Items, 1)
	require.Equal(t, "Python developer", res.Items[0].Name)
	require.Equal(t, "Acme", res.Items[0].Employer.Name)
	require.Equal(t, "Минск", res.Items[0].Area.Name)
}

func TestResumeCallsSendBearerToken(t *testing.T) {
	var (
		mu    sync.Mutex
		calls []string
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		mu.Lock()
		calls = append(calls, r.Method+" "+r.URL.Path)
		mu.Unlock()
		switch r.Method {
		case http.MethodPost, http.MethodDelete:
			if r.URL.Path == "/resume_profile" {
				body, _ := io.ReadAll(r.Body)
				require.JSONEq(t, `{"entry_point":"x"}`, string(body))
				_, _ = w.Write([]byte(`{"id":"new"}`))
				return
			}
			w.WriteHeader(http.StatusNoContent)
		default:
			_, _ = w.Write([]byte(`{"items":[]}`))
		}
	}))
	defer srv.Close()

	c := newTestClient(srv)
	ctx := context.Background()

	_, err := c.GetResumes(ctx, "tok")
	require.NoError(t, err)
	_, err = c.GetResume(ctx, "tok", "r1")
	require.NoError(t, err)
	_, err = c.SimilarVacancies(ctx, "tok", "r1")
	require.NoError(t, err)
	require.NoError(t, c.PublishResume(ctx, "tok", "r1"))
	require.NoError(t, c.DeleteResume(ctx, "tok", "r1"))
	created, err := c.CreateResume(ctx, "tok", json.RawMessage(`{"entry_point":"x"}`))
	require.NoError(t, err)
	require.JSONEq(t, `{"id":"new"}`, string(created))

	mu.Lock()
	defer mu.Unlock()
	require.Equal(t, []string{
		"GET /resumes/mine",
		"GET /resumes/r1",
		"GET /resumes/r1/similar_vacancies",
		"POST /resumes/r1/publish",
		"DELETE /resumes/r1",
		"POST /resume_profile",
	}, calls)
}

func TestAPIErrorMapping(t *testing.T) {
	tests := []struct {
		status   int
		sentinel error
	}{
		{http.StatusBadRequest, ErrBadRequest},
		{http.StatusForbidden, ErrForbidden},
		{http.StatusNotFound, ErrNotFound},
		{http.StatusTooManyRequests, ErrTooManyRequests},
	}

	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(`{"errors":[{"type":"x"}]}`))
			}))
			defer srv.Close()

			_, err := newTestClient(srv).GetResumes(context.Background(), "tok")
			require.ErrorIs(t, err, tt.sentinel)

			var apiErr *APIError
			require.True(t, errors.As(err, &apiErr))
			require.Equal(t, tt.status, apiErr.StatusCode)
			require.Equal(t, "get resumes", apiErr.Action)
			require.NotEmpty(t, apiErr.Detail())
		})
	}
}

func TestClientErrorsDoNotTripBreaker(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	c := newTestClient(srv)
	for i := 0; i < 10; i++ {
		_, err := c.GetResume(context.Background(), "tok", "missing")
		require.ErrorIs(t, err, ErrNotFound)
	}
	require.Equal(t, int32(10), hits.Load())
	require.Equal(t, gobreaker.StateClosed, c.cb.State())
}

func TestServerErrorsOpenBreaker(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	c := newTestClient(srv)
	for i := 0; i < 5; i++ {
		_, err := c.GetResumes(context.Background(), "tok")
		require.Error(t, err)
	}

	_, err := c.GetResumes(context.Background(), "tok")
	require.ErrorIs(t, err, gobreaker.ErrOpenState)
	require.Equal(t, int32(5), hits.Load())
}
