package hash

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

// bcrypt молча обрезает всё, что длиннее 72 байт
var ErrPasswordTooLong = errors.New("password exceeds 72 bytes")

func HashPassword(p string) (string, error) {
	if len(p) > 72 {
		return "", ErrPasswordTooLong
	}
	bytes, err := bcrypt.GenerateFromPassword([]byte(p), bcrypt.DefaultCost)
	return string(bytes), err
}

func CheckPassword(hashed, plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hashed), []byte(plain)) == nil
}
