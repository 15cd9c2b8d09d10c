package hhtoken

import (
	"errors"
	"time"
)

var ErrNotFound = errors.New("hh token not found")

// ExternalToken: OAuth-токены hh.ru, одна запись на пользователя.
// Отсутствие записи означает, что аккаунт hh.ru не привязан.
type ExternalToken struct {
	UserID       int64      `json:"user_id"`
	AccessToken  string     `json:"-"`
	RefreshToken string     `json:"-"`
	IssuedAt     *time.Time `json:"issued_at"`
	ExpiresIn    int64      `json:"expires_in_seconds"`
}

// ExpiresAt возвращает момент истечения access-токена; false, если issued_at неизвестен
func (t *ExternalToken) ExpiresAt() (time.Time, bool) {
	if t.IssuedAt == nil {
		return time.Time{}, false
	}
	return t.IssuedAt.Add(time.Duration(t.ExpiresIn) * time.Second), true
}

// Expired: now > issued_at + expires_in. Ровно на границе токен ещё валиден.
// Без issued_at свежесть доказать нельзя, такой токен всегда считается истекшим.
func (t *ExternalToken) Expired(now time.Time) bool {
	expiresAt, ok := t.ExpiresAt()
	if !ok {
		return true
	}
	return now.After(expiresAt)
}
