package fetch

import (
	"context"
	"net/http"
)

// CredentialProvider supplies per-request auth material (cookies, API keys).
// The fetch client queries it before each outbound request. A false second
// return means "unauthenticated": the request still goes out bare and the
// provider decides what that gets us.
type CredentialProvider interface {
	Headers(ctx context.Context) (http.Header, bool)
}

// StaticCookie sends a fixed session cookie with every request. An empty
// value is treated as no credentials.
type StaticCookie string

func (c StaticCookie) Headers(ctx context.Context) (http.Header, bool) {
	if c == "" {
		return nil, false
	}
	h := http.Header{}
	h.Set("Cookie", string(c))
	return h, true
}

// APIKeyHeader sends a fixed API key under the given header name.
type APIKeyHeader struct {
	Name  string
	Value string
}

func (k APIKeyHeader) Headers(ctx context.Context) (http.Header, bool) {
	if k.Value == "" {
		return nil, false
	}
	h := http.Header{}
	h.Set(k.Name, k.Value)
	return h, true
}
