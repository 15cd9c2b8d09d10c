package httpclient

import (
	"context"
	"net"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"
	"golang.org/x/net/proxy"
)

// New создает HTTP клиент с таймаутом; если указан proxyAddr, запросы идут через SOCKS5
func New(timeout time.Duration, proxyAddr string, log *zap.Logger) *http.Client {
	if proxyAddr == "" {
		return &http.Client{Timeout: timeout}
	}

	proxyURL := &url.URL{
		Scheme: "socks5h",
		Host:   proxyAddr,
	}

	dialer, err := proxy.FromURL(proxyURL, proxy.Direct)
	if err != nil {
		log.Warn("failed to create SOCKS5 dialer, falling back to direct connection",
			zap.String("proxy", proxyAddr), zap.Error(err))
		return &http.Client{Timeout: timeout}
	}

	transport := &http.Transport{
		DialContext: func(ctx context.Context, network, addr string) (net.Conn, error) {
			if cd, ok := dialer.(proxy.ContextDialer); ok {
				return cd.DialContext(ctx, network, addr)
			}
			return dialer.Dial(network, addr)
		},
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	}

	return &http.Client{
		Transport: transport,
		Timeout:   timeout,
	}
}
