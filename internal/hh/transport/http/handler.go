package http

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	hhservice "jobaggregator/internal/hh/service"
	tokenservice "jobaggregator/internal/hhtoken/service"
	"jobaggregator/internal/user"
	"jobaggregator/pkg/middleware"
)

type TokenProvider interface {
	GetValidToken(ctx context.Context, userID int64) (string, error)
}

type ResumeAPI interface {
	GetResumes(ctx context.Context, token string) (json.RawMessage, error)
	GetResume(ctx context.Context, token, resumeID string) (json.RawMessage, error)
	SimilarVacancies(ctx context.Context, token, resumeID string) (json.RawMessage, error)
	CreateResume(ctx context.Context, token string, payload json.RawMessage) (json.RawMessage, error)
	UpdateResume(ctx context.Context, token, resumeID string, payload json.RawMessage) error
	PublishResume(ctx context.Context, token, resumeID string) error
	DeleteResume(ctx context.Context, token, resumeID string) error
}

// ActiveResumeStore: выбранное пользователем резюме; "" означает, что резюме не выбрано
type ActiveResumeStore interface {
	ActiveResume(ctx context.Context, userID int64) (string, error)
	SetActiveResume(ctx context.Context, userID int64, resumeID string) error
}

type Handler struct {
	tokens  TokenProvider
	api     ResumeAPI
	resumes ActiveResumeStore
	log     *zap.Logger
}

func NewHandler(tokens TokenProvider, api ResumeAPI, resumes ActiveResumeStore, log *zap.Logger) *Handler {
	return &Handler{tokens: tokens, api: api, resumes: resumes, log: log}
}

// Routes монтируется в /api/v1/hh за JWTAuth
func (h *Handler) Routes(r chi.Router) {
	r.Get("/resumes", h.GetResumes)
	r.Post("/resumes", h.CreateResume)
	r.Get("/resumes/active", h.GetActiveResume)
	r.Get("/resumes/active/vacancies", h.ActiveResumeVacancies)
	r.Post("/resumes/{id}/select", h.SelectResume)
	r.Get("/resumes/{id}/vacancies", h.ResumeVacancies)
	r.Post("/resumes/{id}/publish", h.PublishResume)
	r.Put("/resumes/{id}", h.UpdateResume)
	r.Delete("/resumes/{id}", h.DeleteResume)
}

// token возвращает действующий токен hh.ru или пишет ответ с ошибкой
func (h *Handler) token(w http.ResponseWriter, r *http.Request) (int64, string, bool) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		middleware.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return 0, "", false
	}

	tok, err := h.tokens.GetValidToken(r.Context(), userID)
	if err != nil {
		h.writeError(w, err)
		return 0, "", false
	}
	return userID, tok, true
}

func (h *Handler) GetResumes(w http.ResponseWriter, r *http.Request) {
	_, tok, ok := h.token(w, r)
	if !ok {
		return
	}

	body, err := h.api.GetResumes(r.Context(), tok)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeRaw(w, body)
}

func (h *Handler) CreateResume(w http.ResponseWriter, r *http.Request) {
	payload, ok := readPayload(w, r)
	if !ok {
		return
	}
	_, tok, ok := h.token(w, r)
	if !ok {
		return
	}

	body, err := h.api.CreateResume(r.Context(), tok, payload)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeRaw(w, body)
}

func (h *Handler) GetActiveResume(w http.ResponseWriter, r *http.Request) {
	userID, tok, ok := h.token(w, r)
	if !ok {
		return
	}
	resumeID, ok := h.activeResume(w, r, userID)
	if !ok {
		return
	}

	body, err := h.api.GetResume(r.Context(), tok, resumeID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeRaw(w, body)
}

func (h *Handler) ActiveResumeVacancies(w http.ResponseWriter, r *http.Request) {
	userID, tok, ok := h.token(w, r)
	if !ok {
		return
	}
	resumeID, ok := h.activeResume(w, r, userID)
	if !ok {
		return
	}

	body, err := h.api.SimilarVacancies(r.Context(), tok, resumeID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeRaw(w, body)
}

// SelectResume запоминает активное резюме; к hh.ru не обращается
func (h *Handler) SelectResume(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		middleware.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	resumeID := chi.URLParam(r, "id")

	if err := h.resumes.SetActiveResume(r.Context(), userID, resumeID); err != nil {
		h.writeStoreError(w, err)
		return
	}
	middleware.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok", "active_resume_id": resumeID})
}

func (h *Handler) ResumeVacancies(w http.ResponseWriter, r *http.Request) {
	_, tok, ok := h.token(w, r)
	if !ok {
		return
	}

	body, err := h.api.SimilarVacancies(r.Context(), tok, chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeRaw(w, body)
}

func (h *Handler) PublishResume(w http.ResponseWriter, r *http.Request) {
	_, tok, ok := h.token(w, r)
	if !ok {
		return
	}

	if err := h.api.PublishResume(r.Context(), tok, chi.URLParam(r, "id")); err != nil {
		h.writeError(w, err)
		return
	}
	middleware.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok", "message": "Publish resume successful"})
}

func (h *Handler) UpdateResume(w http.ResponseWriter, r *http.Request) {
	payload, ok := readPayload(w, r)
	if !ok {
		return
	}
	_, tok, ok := h.token(w, r)
	if !ok {
		return
	}

	if err := h.api.UpdateResume(r.Context(), tok, chi.URLParam(r, "id"), payload); err != nil {
		h.writeError(w, err)
		return
	}
	middleware.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok", "message": "Update resume successful"})
}

func (h *Handler) DeleteResume(w http.ResponseWriter, r *http.Request) {
	_, tok, ok := h.token(w, r)
	if !ok {
		return
	}

	if err := h.api.DeleteResume(r.Context(), tok, chi.URLParam(r, "id")); err != nil {
		h.writeError(w, err)
		return
	}
	middleware.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok", "message": "Delete resume successful"})
}

func (h *Handler) activeResume(w http.ResponseWriter, r *http.Request, userID int64) (string, bool) {
	resumeID, err := h.resumes.ActiveResume(r.Context(), userID)
	if err != nil {
		h.writeStoreError(w, err)
		return "", false
	}
	if resumeID == "" {
		middleware.WriteError(w, http.StatusNotFound, "No active resume selected")
		return "", false
	}
	return resumeID, true
}

// writeError переводит ошибки токенов и hh.ru в HTTP-ответ
func (h *Handler) writeError(w http.ResponseWriter, err error) {
	var apiErr *hhservice.APIError

	switch {
	case errors.Is(err, tokenservice.ErrAccountNotLinked):
		middleware.WriteError(w, http.StatusUnauthorized, "hh.ru account not connected")
	case errors.Is(err, tokenservice.ErrRefreshFailed):
		middleware.WriteError(w, http.StatusUnauthorized, "hh.ru reauthorization required")
	case errors.Is(err, tokenservice.ErrTokenStore):
		h.log.Error("hh token store failed", zap.Error(err))
		middleware.WriteError(w, http.StatusInternalServerError, "internal error")
	case errors.As(err, &apiErr):
		middleware.WriteError(w, apiErr.StatusCode, apiErr.Detail())
	case errors.Is(err, context.Canceled):
		// клиент ушел, отвечать некому
	default:
		h.log.Error("hh request failed", zap.Error(err))
		middleware.WriteError(w, http.StatusBadGateway, "hh.ru is unavailable")
	}
}

// writeStoreError отвечает на ошибки нашей базы пользователей
func (h *Handler) writeStoreError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, user.ErrNotFound):
		middleware.WriteError(w, http.StatusNotFound, "User not found")
	case errors.Is(err, context.Canceled):
	default:
		h.log.Error("user store failed", zap.Error(err))
		middleware.WriteError(w, http.StatusInternalServerError, "internal error")
	}
}

func readPayload(w http.ResponseWriter, r *http.Request) (json.RawMessage, bool) {
	body, err := io.ReadAll(r.Body)
	if err != nil || !json.Valid(body) {
		middleware.WriteError(w, http.StatusBadRequest, "invalid JSON body")
		return nil, false
	}
	return json.RawMessage(body), true
}

func writeRaw(w http.ResponseWriter, body json.RawMessage) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}
