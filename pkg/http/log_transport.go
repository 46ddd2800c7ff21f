package http

import (
	"net/http"
	"regexp"
	"time"

	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

// Telegram file URLs carry the bot token in the path
var botTokenInPath = regexp.MustCompile(`/bot[^/]+/`)

type logTransport struct {
	transport http.RoundTripper
}

func (t *logTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	ctx := req.Context()

	fields := []zap.Field{
		zap.String("method", req.Method),
		zap.String("url", redactURL(req)),
		zap.Any("headers", redactHeaders(req.Header)),
	}

	if req.ContentLength > 0 {
		fields = append(fields, zap.Int64("payload_size", req.ContentLength))
	}

	ctxzap.Debug(ctx, "HTTP outbound request", fields...)

	start := time.Now()
	resp, err := t.transport.RoundTrip(req)
	if err != nil {
		ctxzap.Debug(ctx, "HTTP outbound request failed", zap.Error(err), zap.Duration("elapsed", time.Since(start)))
		return nil, err
	}

	ctxzap.Debug(ctx, "HTTP outbound response",
		zap.Int("status", resp.StatusCode),
		zap.Int64("content_length", resp.ContentLength),
		zap.Duration("elapsed", time.Since(start)),
	)

	return resp, nil
}

func redactURL(req *http.Request) string {
	u := *req.URL
	u.RawQuery = ""
	return botTokenInPath.ReplaceAllString(u.String(), "/bot***/")
}

func redactHeaders(h http.Header) http.Header {
	out := h.Clone()
	if out.Get("Authorization") != "" {
		out.Set("Authorization", "***")
	}
	return out
}

// WithRequestLogging wraps the HTTP transport with logging of method, redacted URL, headers and payload size.
func WithRequestLogging() ClientOption {
	return WithMiddleware(func(rt http.RoundTripper) http.RoundTripper {
		return &logTransport{
			transport: rt,
		}
	})
}
