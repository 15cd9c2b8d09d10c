package service

import (
	"errors"
	"fmt"
)

var (
	// ErrAccountNotLinked: у пользователя нет записи токенов hh.ru
	ErrAccountNotLinked = errors.New("hh.ru account not connected")
	// ErrAuthExchange: hh.ru отклонил обмен или не ответил
	ErrAuthExchange = errors.New("hh.ru authorization exchange failed")
	// ErrRefreshFailed: обновить просроченный токен не удалось, нужна повторная авторизация
	ErrRefreshFailed = errors.New("hh.ru reauthorization required")
	// ErrTokenStore: сбой хранилища токенов, к hh.ru отношения не имеет
	ErrTokenStore = errors.New("hh token store failure")
)

// AuthExchangeError несет детали ответа токен-эндпоинта.
// StatusCode == 0 означает сетевую ошибку или таймаут.
type AuthExchangeError struct {
	StatusCode int
	Body       string
	Err        error
}

func (e *AuthExchangeError) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("hh.ru token exchange failed: %s", e.Body)
	}
	return fmt.Sprintf("hh.ru token exchange failed: status %d: %s", e.StatusCode, e.Body)
}

func (e *AuthExchangeError) Is(target error) bool { return target == ErrAuthExchange }

func (e *AuthExchangeError) Unwrap() error { return e.Err }

type RefreshFailedError struct {
	UserID int64
	Err    error
}

func (e *RefreshFailedError) Error() string {
	return fmt.Sprintf("refresh hh.ru token for user %d: %v", e.UserID, e.Err)
}

func (e *RefreshFailedError) Is(target error) bool { return target == ErrRefreshFailed }

func (e *RefreshFailedError) Unwrap() error { return e.Err }

type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string { return fmt.Sprintf("%s: %v", e.Op, e.Err) }

func (e *StoreError) Is(target error) bool { return target == ErrTokenStore }

func (e *StoreError) Unwrap() error { return e.Err }
