package httpapi

import (
	"net"
	"net/http"
	"strings"

	"slidesmith/pkg/admission"
)

// identityKeyChars is how much of an API key survives into the identity.
// Enough to tell keys apart, short enough to keep full keys out of logs
// and diagnostics.
const identityKeyChars = 8

// identityFromRequest derives the admission partition key for one request:
// an authenticated key when present, otherwise the first forwarded address,
// otherwise the direct peer address.
func identityFromRequest(r *http.Request) admission.Identity {
	if key := apiKey(r); key != "" {
		if len(key) > identityKeyChars {
			key = key[:identityKeyChars]
		}
		return admission.Identity("user_" + key)
	}
	if forwarded := forwardedFor(r); forwarded != "" {
		return admission.Identity("ip_" + forwarded)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}
	return admission.Identity("ip_" + host)
}

func apiKey(r *http.Request) string {
	auth := strings.TrimSpace(r.Header.Get("Authorization"))
	if rest, ok := strings.CutPrefix(auth, "Bearer "); ok {
		return strings.TrimSpace(rest)
	}
	return strings.TrimSpace(r.Header.Get("X-API-Key"))
}

func forwardedFor(r *http.Request) string {
	chain := r.Header.Get("X-Forwarded-For")
	if chain == "" {
		return ""
	}
	first := chain
	if i := strings.IndexByte(chain, ','); i >= 0 {
		first = chain[:i]
	}
	return strings.TrimSpace(first)
}
