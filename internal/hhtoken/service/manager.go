package service

import (
	"context"
	"errors"
	"strconv"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"jobaggregator/internal/hhtoken"
	"jobaggregator/internal/metrics"
	"jobaggregator/pkg/logger"
)

type TokenStore interface {
	Find(ctx context.Context, userID int64) (*hhtoken.ExternalToken, error)
	Upsert(ctx context.Context, t *hhtoken.ExternalToken) error
}

type Option func(*Manager)

// WithClock подменяет источник времени (для тестов)
func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

// WithRefreshTimeout ограничивает время одного обновления вместе с записью в хранилище
func WithRefreshTimeout(d time.Duration) Option {
	return func(m *Manager) {
		if d > 0 {
			m.refreshTimeout = d
		}
	}
}

// Manager выдает действующий access-токен hh.ru, обновляя его по необходимости.
// Обновления одного пользователя сериализуются: одновременные вызовы
// с просроченным токеном ждут один общий обмен.
type Manager struct {
	store          TokenStore
	exchanger      Exchanger
	log            *zap.Logger
	now            func() time.Time
	refreshTimeout time.Duration
	flights        singleflight.Group
}

func NewManager(store TokenStore, exchanger Exchanger, log *zap.Logger, opts ...Option) *Manager {
	m := &Manager{
		store:          store,
		exchanger:      exchanger,
		log:            log,
		now:            time.Now,
		refreshTimeout: 15 * time.Second,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// GetValidToken возвращает access-токен, действующий на момент проверки.
func (m *Manager) GetValidToken(ctx context.Context, userID int64) (string, error) {
	tok, err := m.find(ctx, userID)
	if err != nil {
		return "", err
	}

	if !tok.Expired(m.now()) {
		return tok.AccessToken, nil
	}

	ch := m.flights.DoChan(strconv.FormatInt(userID, 10), func() (interface{}, error) {
		// обмен не должен обрываться, если первый вызвавший ушел: результат ждут другие
		fctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), m.refreshTimeout)
		defer cancel()
		return m.refresh(fctx, userID)
	})

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return "", res.Err
		}
		return res.Val.(*hhtoken.ExternalToken).AccessToken, nil
	}
}

// refresh выполняется внутри flight. Запись перечитывается: пока мы ждали,
// ее мог обновить другой вызов.
func (m *Manager) refresh(ctx context.Context, userID int64) (*hhtoken.ExternalToken, error) {
	current, err := m.find(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !current.Expired(m.now()) {
		return current, nil
	}

	grant, err := m.exchanger.ExchangeRefresh(ctx, current.RefreshToken)
	if err != nil {
		metrics.HHTokenRefreshTotal.WithLabelValues("failed").Inc()
		m.log.Warn("hh token refresh failed", zap.Int64("user_id", userID), zap.Error(err))
		return nil, &RefreshFailedError{UserID: userID, Err: err}
	}

	issuedAt := m.now()
	next := &hhtoken.ExternalToken{
		UserID:       userID,
		AccessToken:  grant.AccessToken,
		RefreshToken: grant.RefreshToken,
		IssuedAt:     &issuedAt,
		ExpiresIn:    grant.ExpiresIn,
	}
	if next.RefreshToken == "" {
		next.RefreshToken = current.RefreshToken
	}

	if err := m.store.Upsert(ctx, next); err != nil {
		metrics.HHTokenRefreshTotal.WithLabelValues("store_error").Inc()
		return nil, &StoreError{Op: "save refreshed hh token", Err: err}
	}

	metrics.HHTokenRefreshTotal.WithLabelValues("ok").Inc()
	m.log.Info("hh token refreshed",
		zap.Int64("user_id", userID),
		zap.String("access_token", logger.TokenPreview(next.AccessToken)),
		zap.Int64("expires_in", next.ExpiresIn))

	return next, nil
}

// LinkAccount обменивает код авторизации и сохраняет полученные токены.
// При ошибке обмена хранилище не трогается.
func (m *Manager) LinkAccount(ctx context.Context, userID int64, code string) (*hhtoken.ExternalToken, error) {
	grant, err := m.exchanger.ExchangeCode(ctx, code)
	if err != nil {
		metrics.HHTokenLinkTotal.WithLabelValues("failed").Inc()
		m.log.Warn("hh authorization code exchange failed", zap.Int64("user_id", userID), zap.Error(err))
		return nil, err
	}

	issuedAt := m.now()
	tok := &hhtoken.ExternalToken{
		UserID:       userID,
		AccessToken:  grant.AccessToken,
		RefreshToken: grant.RefreshToken,
		IssuedAt:     &issuedAt,
		ExpiresIn:    grant.ExpiresIn,
	}

	if err := m.store.Upsert(ctx, tok); err != nil {
		metrics.HHTokenLinkTotal.WithLabelValues("store_error").Inc()
		return nil, &StoreError{Op: "save hh token", Err: err}
	}

	metrics.HHTokenLinkTotal.WithLabelValues("ok").Inc()
	m.log.Info("hh account linked", zap.Int64("user_id", userID))
	return tok, nil
}

// Status сообщает, привязан ли аккаунт, и когда истекает текущий access-токен
func (m *Manager) Status(ctx context.Context, userID int64) (bool, *time.Time, error) {
	tok, err := m.store.Find(ctx, userID)
	if errors.Is(err, hhtoken.ErrNotFound) {
		return false, nil, nil
	}
	if err != nil {
		return false, nil, err
	}

	if at, ok := tok.ExpiresAt(); ok {
		return true, &at, nil
	}
	return true, nil, nil
}

func (m *Manager) AuthorizeURL(state string) string {
	return m.exchanger.AuthCodeURL(state)
}

func (m *Manager) find(ctx context.Context, userID int64) (*hhtoken.ExternalToken, error) {
	tok, err := m.store.Find(ctx, userID)
	if errors.Is(err, hhtoken.ErrNotFound) {
		return nil, ErrAccountNotLinked
	}
	if err != nil {
		return nil, &StoreError{Op: "load hh token", Err: err}
	}
	return tok, nil
}
