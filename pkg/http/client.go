package http

import (
	"net"
	"net/http"
	"time"
)

// Middleware decorates the round tripper of a client
type Middleware func(http.RoundTripper) http.RoundTripper

// ClientOption tunes the client built for a Connector
type ClientOption func(*clientSettings)

type clientSettings struct {
	dialTimeout           time.Duration
	keepAlive             time.Duration
	requestTimeout        time.Duration
	responseHeaderTimeout time.Duration
	idleConnTimeout       time.Duration
	tlsHandshakeTimeout   time.Duration
	maxIdlePerHost        int
	headers               http.Header
	middlewares           []Middleware
}

func newClientSettings() *clientSettings {
	return &clientSettings{
		dialTimeout:           10 * time.Second,
		keepAlive:             90 * time.Second,
		requestTimeout:        60 * time.Second,
		responseHeaderTimeout: 30 * time.Second,
		idleConnTimeout:       90 * time.Second,
		tlsHandshakeTimeout:   10 * time.Second,
		maxIdlePerHost:        4,
		headers:               http.Header{},
	}
}

func WithConnClientTimeout(d time.Duration) ClientOption {
	return func(s *clientSettings) { s.dialTimeout = d }
}

func WithClientKeepAlive(d time.Duration) ClientOption {
	return func(s *clientSettings) { s.keepAlive = d }
}

// WithRequestTimeout caps a whole exchange including reading the body
func WithRequestTimeout(d time.Duration) ClientOption {
	return func(s *clientSettings) { s.requestTimeout = d }
}

func WithResponseHeaderTimeout(d time.Duration) ClientOption {
	return func(s *clientSettings) { s.responseHeaderTimeout = d }
}

func WithIdleConnTimeout(d time.Duration) ClientOption {
	return func(s *clientSettings) { s.idleConnTimeout = d }
}

// WithDefaultHeader sets a header on every outbound request that does not carry it yet
func WithDefaultHeader(key, value string) ClientOption {
	return func(s *clientSettings) { s.headers.Set(key, value) }
}

// WithAuthToken sends the token as a bearer credential; an empty token is ignored
func WithAuthToken(token string) ClientOption {
	if token == "" {
		return func(*clientSettings) {}
	}
	return WithDefaultHeader("Authorization", "Bearer "+token)
}

// WithMiddleware wraps the transport; the last added middleware runs first
func WithMiddleware(m Middleware) ClientOption {
	return func(s *clientSettings) { s.middlewares = append(s.middlewares, m) }
}

func buildClient(opts ...ClientOption) *http.Client {
	s := newClientSettings()
	for _, opt := range opts {
		opt(s)
	}

	dialer := &net.Dialer{
		Timeout:   s.dialTimeout,
		KeepAlive: s.keepAlive,
	}

	var rt http.RoundTripper = &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		DialContext:           dialer.DialContext,
		MaxIdleConnsPerHost:   s.maxIdlePerHost,
		TLSHandshakeTimeout:   s.tlsHandshakeTimeout,
		ResponseHeaderTimeout: s.responseHeaderTimeout,
		IdleConnTimeout:       s.idleConnTimeout,
	}

	if len(s.headers) > 0 {
		rt = &headerTransport{headers: s.headers, next: rt}
	}
	for _, m := range s.middlewares {
		rt = m(rt)
	}

	return &http.Client{
		Timeout:   s.requestTimeout,
		Transport: rt,
	}
}

type headerTransport struct {
	headers http.Header
	next    http.RoundTripper
}

func (t *headerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	for key, values := range t.headers {
		if req.Header.Get(key) == "" {
			req.Header[key] = values
		}
	}
	return t.next.RoundTrip(req)
}
