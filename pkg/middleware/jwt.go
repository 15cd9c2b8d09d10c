package middleware

import (
	"context"
	"net/http"
	"strings"

	"jobaggregator/pkg/jwt"
)

type ctxKey string

// UserIDKey: ключ контекста, под которым JWTAuth кладет ID пользователя (int64)
const UserIDKey ctxKey = "user_id"

// JWTAuth пропускает запрос только с действующим access-токеном в заголовке Authorization
func JWTAuth(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			tokenStr, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || tokenStr == "" {
				WriteError(w, http.StatusUnauthorized, "missing bearer token")
				return
			}

			userID, err := jwt.Parse(secret, tokenStr, jwt.PurposeAccess)
			if err != nil {
				WriteError(w, http.StatusUnauthorized, "invalid token")
				return
			}

			ctx := context.WithValue(r.Context(), UserIDKey, userID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// UserIDFromContext возвращает ID пользователя, положенный JWTAuth
func UserIDFromContext(ctx context.Context) (int64, bool) {
	id, ok := ctx.Value(UserIDKey).(int64)
	return id, ok
}
