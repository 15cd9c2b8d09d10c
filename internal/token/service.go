package token

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"time"
)

// RefreshTTL: срок жизни refresh-токена сессии
const RefreshTTL = 24 * time.Hour

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token expired")
)

func GenerateToken(length int) (string, error) {
	bytes := make([]byte, length)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	return hex.EncodeToString(bytes), nil
}

func NewRefreshToken(userID int64, now time.Time) (*Token, error) {
	tokenStr, err := GenerateToken(32)
	if err != nil {
		return nil, err
	}

	return &Token{
		UserID:    userID,
		Token:     tokenStr,
		ExpiresAt: now.Add(RefreshTTL),
		CreatedAt: now,
	}, nil
}
