package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"jobaggregator/internal/api/dto"
	"jobaggregator/internal/token"
	"jobaggregator/internal/user"
	"jobaggregator/internal/user/service"
	"jobaggregator/pkg/hash"
	"jobaggregator/pkg/middleware"
)

type Handler struct {
	UserService *service.UserService
	log         *zap.Logger
}

func NewHandler(us *service.UserService, log *zap.Logger) *Handler {
	return &Handler{UserService: us, log: log}
}

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req dto.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "invalid request")
		return
	}
	if err := dto.Validate.Struct(req); err != nil {
		middleware.HandleValidationError(w, err)
		return
	}

	u, err := h.UserService.Register(r.Context(), req.Username, req.Email, req.Password)
	if err != nil {
		h.registerError(w, err)
		return
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "ok",
		"user_id": u.ID,
	})
}

// Create: POST /users, то же, что регистрация, но отвечает созданным пользователем
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "invalid request")
		return
	}
	if err := dto.Validate.Struct(req); err != nil {
		middleware.HandleValidationError(w, err)
		return
	}

	u, err := h.UserService.Register(r.Context(), req.Username, req.Email, req.Password)
	if err != nil {
		h.registerError(w, err)
		return
	}
	middleware.WriteJSON(w, http.StatusCreated, u)
}

func (h *Handler) RegisterTelegram(w http.ResponseWriter, r *http.Request) {
	u, ok := h.registerTelegram(w, r)
	if !ok {
		return
	}
	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"status":      "ok",
		"user_id":     u.ID,
		"telegram_id": *u.TelegramID,
	})
}

// CreateTelegramUser: POST /users/telegram, отвечает созданным пользователем
func (h *Handler) CreateTelegramUser(w http.ResponseWriter, r *http.Request) {
	u, ok := h.registerTelegram(w, r)
	if !ok {
		return
	}
	middleware.WriteJSON(w, http.StatusCreated, u)
}

func (h *Handler) registerTelegram(w http.ResponseWriter, r *http.Request) (*user.User, bool) {
	var req dto.TelegramRegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "invalid request")
		return nil, false
	}
	if err := dto.Validate.Struct(req); err != nil {
		middleware.HandleValidationError(w, err)
		return nil, false
	}

	u, err := h.UserService.RegisterTelegram(r.Context(), req.TelegramID, req.Username)
	if err != nil {
		h.registerError(w, err)
		return nil, false
	}
	return u, true
}

func (h *Handler) registerError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrUsernameTaken),
		errors.Is(err, service.ErrEmailTaken),
		errors.Is(err, service.ErrTelegramTaken),
		errors.Is(err, hash.ErrPasswordTooLong):
		middleware.WriteError(w, http.StatusBadRequest, err.Error())
	default:
		h.internalError(w, "register failed", err)
	}
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req dto.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "invalid request")
		return
	}
	if err := dto.Validate.Struct(req); err != nil {
		middleware.HandleValidationError(w, err)
		return
	}

	tokens, err := h.UserService.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCreds) {
			middleware.WriteError(w, http.StatusUnauthorized, "Invalid credentials")
			return
		}
		h.internalError(w, "login failed", err)
		return
	}

	middleware.WriteJSON(w, http.StatusOK, tokens)
}

func (h *Handler) Refresh(w http.ResponseWriter, r *http.Request) {
	var req dto.RefreshRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "invalid request")
		return
	}
	if err := dto.Validate.Struct(req); err != nil {
		middleware.HandleValidationError(w, err)
		return
	}

	tokens, err := h.UserService.Refresh(r.Context(), req.RefreshToken)
	if err != nil {
		if errors.Is(err, token.ErrInvalidToken) || errors.Is(err, token.ErrExpiredToken) {
			middleware.WriteError(w, http.StatusUnauthorized, "Invalid refresh token")
			return
		}
		h.internalError(w, "refresh failed", err)
		return
	}

	middleware.WriteJSON(w, http.StatusOK, tokens)
}

// Logout отзывает refresh-токен; access-токен доживает свои 15 минут
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	var req dto.RefreshRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "invalid request")
		return
	}
	if err := dto.Validate.Struct(req); err != nil {
		middleware.HandleValidationError(w, err)
		return
	}

	if err := h.UserService.Logout(r.Context(), req.RefreshToken); err != nil {
		if errors.Is(err, token.ErrInvalidToken) {
			middleware.WriteError(w, http.StatusUnauthorized, "Invalid refresh token")
			return
		}
		h.internalError(w, "logout failed", err)
		return
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) Current(w http.ResponseWriter, r *http.Request) {
	id, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		middleware.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	h.writeUser(w, r, id)
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "invalid user id")
		return
	}
	h.writeUser(w, r, id)
}

// Delete удаляет только собственную учетную запись
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "invalid user id")
		return
	}
	if current, _ := middleware.UserIDFromContext(r.Context()); current != id {
		middleware.WriteError(w, http.StatusForbidden, "cannot delete another user")
		return
	}

	if err := h.UserService.Delete(r.Context(), id); err != nil {
		if errors.Is(err, user.ErrNotFound) {
			middleware.WriteError(w, http.StatusNotFound, "User not found")
			return
		}
		h.internalError(w, "delete user failed", err)
		return
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]string{"message": "User deleted successfully"})
}

func (h *Handler) GetTelegramUser(w http.ResponseWriter, r *http.Request) {
	telegramID, err := strconv.ParseInt(chi.URLParam(r, "telegram_id"), 10, 64)
	if err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "invalid telegram id")
		return
	}

	u, err := h.UserService.GetByTelegramID(r.Context(), telegramID)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			middleware.WriteError(w, http.StatusNotFound, "Telegram user not found")
			return
		}
		h.internalError(w, "get telegram user failed", err)
		return
	}
	middleware.WriteJSON(w, http.StatusOK, u)
}

func (h *Handler) GetTelegramUserByUserID(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "user_id"), 10, 64)
	if err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "invalid user id")
		return
	}

	u, err := h.UserService.TelegramUser(r.Context(), id)
	if err != nil {
		switch {
		case errors.Is(err, user.ErrNotFound):
			middleware.WriteError(w, http.StatusNotFound, "User not found")
		case errors.Is(err, service.ErrNotTelegramUser):
			middleware.WriteError(w, http.StatusNotFound, err.Error())
		default:
			h.internalError(w, "get telegram user failed", err)
		}
		return
	}
	middleware.WriteJSON(w, http.StatusOK, u)
}

func (h *Handler) writeUser(w http.ResponseWriter, r *http.Request, id int64) {
	u, err := h.UserService.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			middleware.WriteError(w, http.StatusNotFound, "User not found")
			return
		}
		h.internalError(w, "get user failed", err)
		return
	}
	middleware.WriteJSON(w, http.StatusOK, u)
}

func (h *Handler) internalError(w http.ResponseWriter, msg string, err error) {
	h.log.Error(msg, zap.Error(err))
	middleware.WriteError(w, http.StatusInternalServerError, "internal error")
}
