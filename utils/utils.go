package utils

import (
	"net/http"
	"strings"
)

// GetIP returns the client address, honoring X-Forwarded-For when a proxy
// sits in front.
func GetIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		return strings.TrimSpace(strings.Split(fwd, ",")[0])
	}
	return r.RemoteAddr
}
