package httpx

import (
	"net/http"
	"strings"
)

// AccessTokenCookie is the fallback cookie consulted when no Authorization
// header is present, for clients that cannot set headers.
const AccessTokenCookie = "access_token"

const bearerPrefix = "Bearer "

// CredentialSource is the narrow view of a request the credential extractor
// depends on. Thin adapters implement it per transport, keeping the
// extractor independent of concrete request types.
type CredentialSource interface {
	// HeaderValue returns the first value of the named header, or "".
	HeaderValue(name string) string
	// CookieValue returns the value of the named cookie, or "".
	CookieValue(name string) string
}

// RequestSource adapts an *http.Request to CredentialSource.
func RequestSource(r *http.Request) CredentialSource {
	return requestSource{r: r}
}

type requestSource struct {
	r *http.Request
}

func (s requestSource) HeaderValue(name string) string {
	return s.r.Header.Get(name)
}

func (s requestSource) CookieValue(name string) string {
	c, err := s.r.Cookie(name)
	if err != nil {
		return ""
	}
	return c.Value
}

// ExtractBearer locates a bearer credential. Precedence, first match wins:
//
//  1. Authorization header with the exact "Bearer " prefix.
//  2. The access-token cookie.
//
// A header value without the exact prefix is not a candidate and extraction
// falls through to the cookie. No other locations are consulted.
func ExtractBearer(src CredentialSource) (string, bool) {
	if authz := src.HeaderValue("Authorization"); strings.HasPrefix(authz, bearerPrefix) {
		if token := strings.TrimSpace(authz[len(bearerPrefix):]); token != "" {
			return token, true
		}
	}

	if token := src.CookieValue(AccessTokenCookie); token != "" {
		return token, true
	}

	return "", false
}
