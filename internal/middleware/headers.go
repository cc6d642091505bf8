package middleware

import (
	"net/http"

	"github.com/unrolled/secure"
)

// SecurityHeaders sets conservative response headers on every response.
func SecurityHeaders(next http.Handler) http.Handler {
	return secure.New(secure.Options{
		FrameDeny:               true,
		CustomFrameOptionsValue: "SAMEORIGIN",
		ContentTypeNosniff:      true,
		ReferrerPolicy:          "no-referrer",
		ContentSecurityPolicy:   "default-src 'none'; frame-ancestors 'none'",
		STSSeconds:              15552000,
		STSIncludeSubdomains:    true,
		ForceSTSHeader:          true,
	}).Handler(next)
}
