package user

import (
	"errors"
	"time"
)

var ErrNotFound = errors.New("user not found")

// User: email и пароль пусты у пользователей, пришедших из Telegram
type User struct {
	ID             int64     `json:"id"`
	Username       string    `json:"username"`
	Email          string    `json:"email,omitempty"`
	Password       string    `json:"-"` // будем хранить только хэш
	TelegramID     *int64    `json:"telegram_id,omitempty"`
	ActiveResumeID *string   `json:"active_resume_id"`
	CreatedAt      time.Time `json:"created_at"`
}

func (u *User) IsTelegram() bool {
	return u.TelegramID != nil
}
