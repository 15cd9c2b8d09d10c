package http

import (
	"context"
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"

	"jobaggregator/internal/hhtoken"
	"jobaggregator/internal/hhtoken/service"
	"jobaggregator/pkg/jwt"
	"jobaggregator/pkg/middleware"
)

// state живет ровно столько, сколько нужно пройти страницу согласия hh.ru
const stateTTL = 10 * time.Minute

type Linker interface {
	LinkAccount(ctx context.Context, userID int64, code string) (*hhtoken.ExternalToken, error)
	Status(ctx context.Context, userID int64) (bool, *time.Time, error)
	AuthorizeURL(state string) string
}

type Handler struct {
	manager   Linker
	jwtSecret string
	log       *zap.Logger
}

func NewHandler(manager Linker, jwtSecret string, log *zap.Logger) *Handler {
	return &Handler{manager: manager, jwtSecret: jwtSecret, log: log}
}

// Login перенаправляет пользователя на страницу авторизации hh.ru.
// В state подписан ID пользователя: callback приходит без нашего access-токена.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		middleware.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	state, err := jwt.Generate(h.jwtSecret, userID, jwt.PurposeState, stateTTL)
	if err != nil {
		h.log.Error("failed to sign oauth state", zap.Error(err))
		middleware.WriteError(w, http.StatusInternalServerError, "internal error")
		return
	}

	http.Redirect(w, r, h.manager.AuthorizeURL(state), http.StatusTemporaryRedirect)
}

func (h *Handler) Callback(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	if oauthErr := q.Get("error"); oauthErr != "" {
		middleware.WriteError(w, http.StatusBadRequest, "hh.ru authorization denied: "+oauthErr)
		return
	}

	code := q.Get("code")
	if code == "" {
		middleware.WriteError(w, http.StatusBadRequest, "missing code")
		return
	}

	userID, err := jwt.Parse(h.jwtSecret, q.Get("state"), jwt.PurposeState)
	if err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "invalid state")
		return
	}

	if _, err := h.manager.LinkAccount(r.Context(), userID, code); err != nil {
		var exErr *service.AuthExchangeError
		if errors.As(err, &exErr) {
			middleware.WriteJSON(w, http.StatusBadRequest, map[string]interface{}{
				"error":  "failed to get token from hh.ru",
				"status": exErr.StatusCode,
				"detail": exErr.Body,
			})
			return
		}
		h.log.Error("failed to link hh account", zap.Int64("user_id", userID), zap.Error(err))
		middleware.WriteError(w, http.StatusInternalServerError, "internal error")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type statusResponse struct {
	Linked    bool       `json:"linked"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
}

func (h *Handler) Status(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		middleware.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	linked, expiresAt, err := h.manager.Status(r.Context(), userID)
	if err != nil {
		h.log.Error("failed to read hh token status", zap.Int64("user_id", userID), zap.Error(err))
		middleware.WriteError(w, http.StatusInternalServerError, "internal error")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, statusResponse{Linked: linked, ExpiresAt: expiresAt})
}
