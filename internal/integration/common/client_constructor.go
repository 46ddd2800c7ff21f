package common

import (
	"github.com/futig/lab-assistant/internal/config"
	pkgHTTP "github.com/futig/lab-assistant/pkg/http"
	"go.uber.org/zap"
)

const userAgent = "lab-assistant-bot"

// NewBaseConnector builds the shared outbound client: configured timeouts,
// debug logging of every exchange and the bearer token when one is set
func NewBaseConnector(cfg config.HTTPClientConfig, logger *zap.Logger) *pkgHTTP.Connector {
	return pkgHTTP.NewConnector(
		&pkgHTTP.ConnectorConfig{
			BaseURL: cfg.Url,
			Logger:  logger,
		},
		pkgHTTP.WithConnClientTimeout(cfg.ConnTimeout),
		pkgHTTP.WithClientKeepAlive(cfg.KeepAlive),
		pkgHTTP.WithRequestTimeout(cfg.RequestTimeout),
		pkgHTTP.WithResponseHeaderTimeout(cfg.ResponseHeaderTimeout),
		pkgHTTP.WithIdleConnTimeout(cfg.IdleConnTimeout),
		pkgHTTP.WithDefaultHeader("User-Agent", userAgent),
		pkgHTTP.WithAuthToken(cfg.Token),
		pkgHTTP.WithRequestLogging(),
	)
}
