package providers

import (
	"crypto/tls"
	"net"
	"net/http"
	"time"
)

const (
	defaultHTTPTimeout     = 60 * time.Second
	defaultDialTimeout     = 10 * time.Second
	defaultKeepAlive       = 30 * time.Second
	defaultIdleConnTimeout = 90 * time.Second
)

// Doer sends HTTP requests. *http.Client satisfies it.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// HTTPClientFunc returns the transport for a call. verifyTLS is false only when
// a custom endpoint explicitly disabled certificate verification.
type HTTPClientFunc func(verifyTLS bool) Doer

// DefaultHTTPClients returns an HTTPClientFunc backed by two shared clients,
// one verifying certificates and one that skips verification.
func DefaultHTTPClients(timeout time.Duration) HTTPClientFunc {
	if timeout <= 0 {
		timeout = defaultHTTPTimeout
	}
	secure := newHTTPClient(timeout, false)
	insecure := newHTTPClient(timeout, true)

	return func(verifyTLS bool) Doer {
		if verifyTLS {
			return secure
		}
		return insecure
	}
}

// StaticClient returns an HTTPClientFunc that always uses d
func StaticClient(d Doer) HTTPClientFunc {
	return func(bool) Doer { return d }
}

func newHTTPClient(timeout time.Duration, skipVerify bool) *http.Client {
	transport := &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		DialContext:           (&net.Dialer{Timeout: defaultDialTimeout, KeepAlive: defaultKeepAlive}).DialContext,
		ForceAttemptHTTP2:     true,
		MaxIdleConns:          50,
		IdleConnTimeout:       defaultIdleConnTimeout,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
		TLSClientConfig: &tls.Config{
			MinVersion:         tls.VersionTLS12,
			InsecureSkipVerify: skipVerify, //nolint:gosec // opt-in per custom endpoint
		},
	}

	return &http.Client{
		Timeout:   timeout,
		Transport: transport,
	}
}
