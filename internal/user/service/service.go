package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"go.uber.org/zap"

	"jobaggregator/internal/token"
	"jobaggregator/internal/user"
	"jobaggregator/pkg/hash"
)

var (
	ErrUsernameTaken = errors.New("User with this username already exists")
	ErrEmailTaken    = errors.New("User with this email already exists")
	ErrInvalidCreds  = errors.New("invalid credentials")

	ErrTelegramTaken   = errors.New("User with this telegram_id already exists")
	ErrNotTelegramUser = errors.New("User is not a Telegram user")
)

type UserRepository interface {
	Create(context.Context, *user.User) error
	GetByEmail(context.Context, string) (*user.User, error)
	GetByUsername(context.Context, string) (*user.User, error)
	GetByTelegramID(context.Context, int64) (*user.User, error)
	GetByID(context.Context, int64) (*user.User, error)
	Delete(context.Context, int64) error
	SetActiveResume(context.Context, int64, string) error
}

type RefreshTokenRepository interface {
	GetByToken(ctx context.Context, tokenStr string) (*token.Token, error)
	Rotate(ctx context.Context, next *token.Token) error
	DeleteByToken(ctx context.Context, tokenStr string) error
}

// Tokens: пара токенов сессии
type Tokens struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

type UserService struct {
	repo   UserRepository
	tokens RefreshTokenRepository
	jwt    *JWTManager
	log    *zap.Logger
	now    func() time.Time
}

func NewUserService(repo UserRepository, tokens RefreshTokenRepository, jwtSecret string, log *zap.Logger) *UserService {
	return &UserService{
		repo:   repo,
		tokens: tokens,
		jwt:    NewJWTManager(jwtSecret),
		log:    log,
		now:    time.Now,
	}
}

func (s *UserService) Register(ctx context.Context, username, email, password string) (*user.User, error) {
	if err := s.ensureFree(ctx, username, email); err != nil {
		return nil, err
	}

	hashed, err := hash.HashPassword(password)
	if err != nil {
		return nil, err
	}

	u := &user.User{
		Username:  username,
		Email:     email,
		Password:  hashed,
		CreatedAt: s.now().UTC(),
	}
	if err := s.repo.Create(ctx, u); err != nil {
		return nil, err
	}

	s.log.Info("user registered", zap.Int64("user_id", u.ID))
	return u, nil
}

// RegisterTelegram заводит пользователя Telegram-бота без email и пароля.
// Без username используется "tg_<telegram_id>".
func (s *UserService) RegisterTelegram(ctx context.Context, telegramID int64, username string) (*user.User, error) {
	if username == "" {
		username = "tg_" + strconv.FormatInt(telegramID, 10)
	}

	if _, err := s.repo.GetByTelegramID(ctx, telegramID); err == nil {
		return nil, ErrTelegramTaken
	} else if !errors.Is(err, user.ErrNotFound) {
		return nil, err
	}
	if _, err := s.repo.GetByUsername(ctx, username); err == nil {
		return nil, ErrUsernameTaken
	} else if !errors.Is(err, user.ErrNotFound) {
		return nil, err
	}

	u := &user.User{
		Username:   username,
		TelegramID: &telegramID,
		CreatedAt:  s.now().UTC(),
	}
	if err := s.repo.Create(ctx, u); err != nil {
		return nil, err
	}

	s.log.Info("telegram user registered", zap.Int64("user_id", u.ID), zap.Int64("telegram_id", telegramID))
	return u, nil
}

func (s *UserService) GetByTelegramID(ctx context.Context, telegramID int64) (*user.User, error) {
	return s.repo.GetByTelegramID(ctx, telegramID)
}

// TelegramUser возвращает пользователя по ID, только если он пришел из Telegram
func (s *UserService) TelegramUser(ctx context.Context, userID int64) (*user.User, error) {
	u, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !u.IsTelegram() {
		return nil, ErrNotTelegramUser
	}
	return u, nil
}

func (s *UserService) ensureFree(ctx context.Context, username, email string) error {
	if _, err := s.repo.GetByUsername(ctx, username); err == nil {
		return ErrUsernameTaken
	} else if !errors.Is(err, user.ErrNotFound) {
		return err
	}

	if _, err := s.repo.GetByEmail(ctx, email); err == nil {
		return ErrEmailTaken
	} else if !errors.Is(err, user.ErrNotFound) {
		return err
	}
	return nil
}

// Login проверяет пароль и выдает новую пару токенов; прежние refresh-токены отзываются
func (s *UserService) Login(ctx context.Context, email, password string) (*Tokens, error) {
	u, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return nil, ErrInvalidCreds
		}
		return nil, err
	}

	if !hash.CheckPassword(u.Password, password) {
		return nil, ErrInvalidCreds
	}

	return s.issue(ctx, u.ID)
}

// Refresh меняет действующий refresh-токен на новую пару
func (s *UserService) Refresh(ctx context.Context, refreshToken string) (*Tokens, error) {
	t, err := s.tokens.GetByToken(ctx, refreshToken)
	if err != nil {
		if errors.Is(err, token.ErrInvalidToken) {
			s.log.Warn("refresh with unknown token")
		}
		return nil, err
	}

	if t.Expired(s.now()) {
		return nil, token.ErrExpiredToken
	}

	return s.issue(ctx, t.UserID)
}

// Logout отзывает переданный refresh-токен
func (s *UserService) Logout(ctx context.Context, refreshToken string) error {
	return s.tokens.DeleteByToken(ctx, refreshToken)
}

func (s *UserService) issue(ctx context.Context, userID int64) (*Tokens, error) {
	access, err := s.jwt.Generate(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to sign access token: %w", err)
	}

	refresh, err := token.NewRefreshToken(userID, s.now().UTC())
	if err != nil {
		return nil, fmt.Errorf("failed to generate refresh token: %w", err)
	}

	if err := s.tokens.Rotate(ctx, refresh); err != nil {
		return nil, err
	}

	return &Tokens{AccessToken: access, RefreshToken: refresh.Token}, nil
}

func (s *UserService) GetByID(ctx context.Context, id int64) (*user.User, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *UserService) Delete(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.log.Info("user deleted", zap.Int64("user_id", id))
	return nil
}

func (s *UserService) SetActiveResume(ctx context.Context, userID int64, resumeID string) error {
	return s.repo.SetActiveResume(ctx, userID, resumeID)
}

// ActiveResume возвращает ID выбранного резюме или "", если резюме не выбрано
func (s *UserService) ActiveResume(ctx context.Context, userID int64) (string, error) {
	u, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return "", err
	}
	if u.ActiveResumeID == nil {
		return "", nil
	}
	return *u.ActiveResumeID, nil
}
