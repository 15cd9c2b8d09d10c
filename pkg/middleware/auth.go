// pkg/middleware/auth.go
package middleware

import (
	"net/http"

	chimw "github.com/go-chi/chi/v5/middleware"
)

// BasicAuth закрывает служебные эндпоинты (/metrics). Пустой username отключает проверку.
func BasicAuth(username, password string) func(http.Handler) http.Handler {
	if username == "" {
		return func(next http.Handler) http.Handler { return next }
	}
	return chimw.BasicAuth("metrics", map[string]string{username: password})
}
