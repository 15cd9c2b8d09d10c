package service

import (
	"context"
	"errors"
	"net/http"
	"time"

	"golang.org/x/oauth2"

	"jobaggregator/internal/config"
)

// Grant: результат успешного обмена на токен-эндпоинте hh.ru.
// RefreshToken пустой, если hh.ru не выдал новый.
type Grant struct {
	AccessToken  string
	RefreshToken string
	ExpiresIn    int64
}

type Exchanger interface {
	ExchangeCode(ctx context.Context, code string) (*Grant, error)
	ExchangeRefresh(ctx context.Context, refreshToken string) (*Grant, error)
	AuthCodeURL(state string) string
}

// OAuthExchanger обменивает коды и refresh-токены через golang.org/x/oauth2.
// Креды передаются в теле формы, как требует hh.ru.
type OAuthExchanger struct {
	conf       *oauth2.Config
	httpClient *http.Client
	timeout    time.Duration
}

func NewOAuthExchanger(cfg config.HHConfig, httpClient *http.Client) *OAuthExchanger {
	timeout := cfg.ExchangeTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: timeout}
	}

	return &OAuthExchanger{
		conf: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURI,
			Endpoint: oauth2.Endpoint{
				AuthURL:   cfg.AuthorizeURL,
				TokenURL:  cfg.TokenURL,
				AuthStyle: oauth2.AuthStyleInParams,
			},
		},
		httpClient: httpClient,
		timeout:    timeout,
	}
}

func (e *OAuthExchanger) ExchangeCode(ctx context.Context, code string) (*Grant, error) {
	ctx, cancel := e.exchangeContext(ctx)
	defer cancel()

	tok, err := e.conf.Exchange(ctx, code)
	if err != nil {
		return nil, toExchangeError(err)
	}
	return grantFromToken(tok), nil
}

func (e *OAuthExchanger) ExchangeRefresh(ctx context.Context, refreshToken string) (*Grant, error) {
	ctx, cancel := e.exchangeContext(ctx)
	defer cancel()

	// access-токена нет, поэтому TokenSource сразу идет на токен-эндпоинт
	tok, err := e.conf.TokenSource(ctx, &oauth2.Token{RefreshToken: refreshToken}).Token()
	if err != nil {
		return nil, toExchangeError(err)
	}
	return grantFromToken(tok), nil
}

func (e *OAuthExchanger) AuthCodeURL(state string) string {
	return e.conf.AuthCodeURL(state)
}

func (e *OAuthExchanger) exchangeContext(ctx context.Context) (context.Context, context.CancelFunc) {
	ctx = context.WithValue(ctx, oauth2.HTTPClient, e.httpClient)
	return context.WithTimeout(ctx, e.timeout)
}

func grantFromToken(tok *oauth2.Token) *Grant {
	g := &Grant{
		AccessToken:  tok.AccessToken,
		RefreshToken: tok.RefreshToken,
		ExpiresIn:    tok.ExpiresIn,
	}
	if g.ExpiresIn == 0 && !tok.Expiry.IsZero() {
		g.ExpiresIn = int64(time.Until(tok.Expiry).Round(time.Second) / time.Second)
	}
	return g
}

func toExchangeError(err error) error {
	var re *oauth2.RetrieveError
	if errors.As(err, &re) && re.Response != nil {
		return &AuthExchangeError{
			StatusCode: re.Response.StatusCode,
			Body:       string(re.Body),
			Err:        err,
		}
	}
	return &AuthExchangeError{Body: err.Error(), Err: err}
}
