package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"jobaggregator/internal/api/dto"
	"jobaggregator/internal/vacancy"
	"jobaggregator/internal/vacancy/service"
	"jobaggregator/pkg/middleware"
)

type VacancyHandler struct {
	Service *service.Service
	log     *zap.Logger
}

func NewVacancyHandler(s *service.Service, log *zap.Logger) *VacancyHandler {
	return &VacancyHandler{Service: s, log: log}
}

func (h *VacancyHandler) Routes(r chi.Router) {
	r.Get("/", h.List)
	r.Post("/", h.Create)
	r.Get("/{id}", h.Get)
	r.Put("/{id}", h.Update)
	r.Delete("/{id}", h.Delete)
}

func (h *VacancyHandler) List(w http.ResponseWriter, r *http.Request) {
	skip, err := queryInt(r, "skip", 0)
	if err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "invalid skip")
		return
	}
	limit, err := queryInt(r, "limit", service.DefaultLimit)
	if err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "invalid limit")
		return
	}

	list, err := h.Service.List(r.Context(), skip, limit)
	if err != nil {
		h.internalError(w, "list vacancies failed", err)
		return
	}
	middleware.WriteJSON(w, http.StatusOK, list)
}

func (h *VacancyHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateVacancyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "invalid request")
		return
	}
	if err := dto.Validate.Struct(req); err != nil {
		middleware.HandleValidationError(w, err)
		return
	}

	v, err := h.Service.Create(r.Context(), req.Title, req.Company, req.Location, req.URL)
	if err != nil {
		h.internalError(w, "create vacancy failed", err)
		return
	}
	middleware.WriteJSON(w, http.StatusOK, v)
}

func (h *VacancyHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	v, err := h.Service.Get(r.Context(), id)
	if err != nil {
		h.writeError(w, "get vacancy failed", err)
		return
	}
	middleware.WriteJSON(w, http.StatusOK, v)
}

func (h *VacancyHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	var req dto.UpdateVacancyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "invalid request")
		return
	}
	if err := dto.Validate.Struct(req); err != nil {
		middleware.HandleValidationError(w, err)
		return
	}

	v, err := h.Service.Update(r.Context(), id, vacancy.Update{
		Title:    req.Title,
		Company:  req.Company,
		Location: req.Location,
		URL:      req.URL,
	})
	if err != nil {
		h.writeError(w, "update vacancy failed", err)
		return
	}
	middleware.WriteJSON(w, http.StatusOK, v)
}

func (h *VacancyHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	if err := h.Service.Delete(r.Context(), id); err != nil {
		h.writeError(w, "delete vacancy failed", err)
		return
	}
	middleware.WriteJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func (h *VacancyHandler) writeError(w http.ResponseWriter, msg string, err error) {
	if errors.Is(err, vacancy.ErrNotFound) {
		middleware.WriteError(w, http.StatusNotFound, "Vacancy not found")
		return
	}
	h.internalError(w, msg, err)
}

func (h *VacancyHandler) internalError(w http.ResponseWriter, msg string, err error) {
	h.log.Error(msg, zap.Error(err))
	middleware.WriteError(w, http.StatusInternalServerError, "internal error")
}

func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		middleware.WriteError(w, http.StatusBadRequest, "invalid vacancy id")
		return 0, false
	}
	return id, true
}

func queryInt(r *http.Request, key string, def int) (int, error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return def, nil
	}
	return strconv.Atoi(raw)
}
