package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	"jobaggregator/internal/config"
	"jobaggregator/internal/hh"
	"jobaggregator/internal/metrics"
	"jobaggregator/pkg/logger"
)

// Client: клиент REST API hh.ru. Все запросы идут через общий circuit breaker;
// ошибки 4xx (кроме 429) не считаются отказом hh.ru и breaker не размыкают.
type Client struct {
	baseURL    string
	userAgent  string
	httpClient *http.Client
	cb         *gobreaker.CircuitBreaker
	log        *zap.Logger
}

func NewClient(cfg config.HHConfig, httpClient *http.Client, log *zap.Logger) *Client {
	c := &Client{
		baseURL:    cfg.APIURL,
		userAgent:  cfg.UserAgent,
		httpClient: httpClient,
		log:        log,
	}

	c.cb = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "hh-api",
		MaxRequests: 3,
		Interval:    30 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= 5 && failureRatio >= 0.6
		},
		IsSuccessful: isBreakerSuccess,
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			log.Warn("circuit breaker state changed",
				zap.String("name", name), zap.String("from", from.String()), zap.String("to", to.String()))
		},
	})

	return c
}

func isBreakerSuccess(err error) bool {
	if err == nil {
		return true
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode < 500 && apiErr.StatusCode != http.StatusTooManyRequests
	}
	return false
}

type request struct {
	action string
	method string
	path   string
	token  string
	query  url.Values
	body   []byte
}

// do выполняет запрос и возвращает тело успешного ответа
func (c *Client) do(ctx context.Context, req request) ([]byte, error) {
	start := time.Now()

	result, err := c.cb.Execute(func() (interface{}, error) {
		return c.send(ctx, req)
	})

	metrics.HHAPIRequestDuration.WithLabelValues(req.action).Observe(time.Since(start).Seconds())
	metrics.HHAPIRequestsTotal.WithLabelValues(req.action, statusLabel(err)).Inc()

	if err != nil {
		return nil, err
	}
	return result.([]byte), nil
}

func (c *Client) send(ctx context.Context, req request) ([]byte, error) {
	reqURL := c.baseURL + req.path
	if len(req.query) > 0 {
		reqURL += "?" + req.query.Encode()
	}

	var body io.Reader
	if req.body != nil {
		body = bytes.NewReader(req.body)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.method, reqURL, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	// hh.ru отклоняет запросы без осмысленного User-Agent
	httpReq.Header.Set("User-Agent", c.userAgent)
	httpReq.Header.Set("Accept", "application/json")
	if req.token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+req.token)
	}
	if req.body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}

	c.log.Debug("hh api request",
		zap.String("action", req.action),
		zap.String("method", req.method),
		zap.String("path", req.path),
		zap.String("token", logger.TokenPreview(req.token)))

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("hh.ru %s: request failed: %w", req.action, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("hh.ru %s: failed to read response: %w", req.action, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{StatusCode: resp.StatusCode, Action: req.action, Body: string(respBody)}
		c.log.Warn("hh api error",
			zap.String("action", req.action),
			zap.Int("status", resp.StatusCode),
			zap.String("body", truncate(apiErr.Body, 500)))
		return nil, apiErr
	}

	return respBody, nil
}

func statusLabel(err error) string {
	if err == nil {
		return "ok"
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return strconv.Itoa(apiErr.StatusCode)
	}
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return "circuit_open"
	}
	return "error"
}

// SearchVacancies: публичный поиск вакансий, токен не нужен
func (c *Client) SearchVacancies(ctx context.Context, q hh.SearchQuery) (*hh.VacancySearchResult, error) {
	params := url.Values{}
	params.Set("text", q.Text)
	if q.Area > 0 {
		params.Set("area", strconv.Itoa(q.Area))
	}
	if q.PerPage > 0 {
		params.Set("per_page", strconv.Itoa(q.PerPage))
	}
	if q.Page > 0 {
		params.Set("page", strconv.Itoa(q.Page))
	}

	body, err := c.do(ctx, request{action: "search vacancies", method: http.MethodGet, path: "/vacancies", query: params})
	if err != nil {
		return nil, err
	}

	var result hh.VacancySearchResult
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("failed to parse vacancies response: %w", err)
	}
	return &result, nil
}

func (c *Client) GetResumes(ctx context.Context, token string) (json.RawMessage, error) {
	return c.doJSON(ctx, request{action: "get resumes", method: http.MethodGet, path: "/resumes/mine", token: token})
}

func (c *Client) GetResume(ctx context.Context, token, resumeID string) (json.RawMessage, error) {
	return c.doJSON(ctx, request{action: "get resume", method: http.MethodGet, path: "/resumes/" + url.PathEscape(resumeID), token: token})
}

func (c *Client) SimilarVacancies(ctx context.Context, token, resumeID string) (json.RawMessage, error) {
	return c.doJSON(ctx, request{
		action: "search vacancies",
		method: http.MethodGet,
		path:   "/resumes/" + url.PathEscape(resumeID) + "/similar_vacancies",
		token:  token,
	})
}

func (c *Client) CreateResume(ctx context.Context, token string, payload json.RawMessage) (json.RawMessage, error) {
	return c.doJSON(ctx, request{action: "create resume", method: http.MethodPost, path: "/resume_profile", token: token, body: payload})
}

func (c *Client) UpdateResume(ctx context.Context, token, resumeID string, payload json.RawMessage) error {
	_, err := c.do(ctx, request{action: "update resume", method: http.MethodPut, path: "/resumes/" + url.PathEscape(resumeID), token: token, body: payload})
	return err
}

func (c *Client) PublishResume(ctx context.Context, token, resumeID string) error {
	_, err := c.do(ctx, request{action: "publish resume", method: http.MethodPost, path: "/resumes/" + url.PathEscape(resumeID) + "/publish", token: token})
	return err
}

func (c *Client) DeleteResume(ctx context.Context, token, resumeID string) error {
	_, err := c.do(ctx, request{action: "delete resume", method: http.MethodDelete, path: "/resumes/" + url.PathEscape(resumeID), token: token})
	return err
}

func (c *Client) doJSON(ctx context.Context, req request) (json.RawMessage, error) {
	body, err := c.do(ctx, req)
	if err != nil {
		return nil, err
	}
	if len(bytes.TrimSpace(body)) == 0 {
		return json.RawMessage("null"), nil
	}
	if !json.Valid(body) {
		return nil, fmt.Errorf("hh.ru %s: response is not valid JSON", req.action)
	}
	return json.RawMessage(body), nil
}
