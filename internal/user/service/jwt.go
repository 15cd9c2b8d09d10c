package service

import (
	"time"

	"jobaggregator/pkg/jwt"
)

// AccessTTL: срок жизни access-токена нашего API
const AccessTTL = 15 * time.Minute

type JWTManager struct {
	SecretKey string
	TTL       time.Duration
}

func NewJWTManager(secret string) *JWTManager {
	return &JWTManager{
		SecretKey: secret,
		TTL:       AccessTTL,
	}
}

// Generate выпускает access-токен; проверяет его middleware.JWTAuth
func (j *JWTManager) Generate(userID int64) (string, error) {
	return jwt.Generate(j.SecretKey, userID, jwt.PurposeAccess, j.TTL)
}
