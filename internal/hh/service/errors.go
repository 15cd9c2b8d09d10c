package service

import (
	"errors"
	"fmt"
	"net/http"
	"unicode/utf8"
)

var (
	ErrBadRequest      = errors.New("hh.ru rejected the request")
	ErrForbidden       = errors.New("hh.ru denied access")
	ErrNotFound        = errors.New("hh.ru object not found")
	ErrTooManyRequests = errors.New("hh.ru rate limit exceeded")
)

// APIError: ответ hh.ru с кодом вне 2xx
type APIError struct {
	StatusCode int
	Action     string
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("hh.ru %s: status %d: %s", e.Action, e.StatusCode, e.Body)
}

func (e *APIError) Is(target error) bool {
	switch target {
	case ErrBadRequest:
		return e.StatusCode == http.StatusBadRequest
	case ErrForbidden:
		return e.StatusCode == http.StatusForbidden
	case ErrNotFound:
		return e.StatusCode == http.StatusNotFound
	case ErrTooManyRequests:
		return e.StatusCode == http.StatusTooManyRequests
	}
	return false
}

// Detail: текст для клиента нашего API
func (e *APIError) Detail() string {
	switch e.StatusCode {
	case http.StatusBadRequest:
		return fmt.Sprintf("%s невозможен: ошибка в теле запроса или резюме не заполнено. Details: %s", e.Action, truncate(e.Body, 500))
	case http.StatusForbidden:
		return "Ошибка авторизации. Убедитесь, что токен действителен и пользователь является соискателем."
	case http.StatusNotFound:
		return fmt.Sprintf("%s: объект не существует или недоступен для текущего пользователя", e.Action)
	case http.StatusTooManyRequests:
		return fmt.Sprintf("%s временно недоступно, попробуйте позже", e.Action)
	default:
		return fmt.Sprintf("неизвестная ошибка при %s: %s", e.Action, truncate(e.Body, 500))
	}
}

// truncate обрезает s до n байт, не разрывая UTF-8 символ
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}
