package middleware

import (
	"net/http"
	"strings"

	log "github.com/sirupsen/logrus"
)

var allowedOrigins = map[string]bool{
	"http://localhost:8080": true,
	"http://localhost:3000": true,
	"test":                  true,
}

// non-browser clients identify themselves by user agent
var allowedUserAgentPrefixes = []string{
	"fittimer/",
	"curl/",
	"test-agent",
}

var corsAllowedHeaders = strings.Join([]string{
	"Accept",
	"Content-Type",
	"Content-Length",
	"Accept-Encoding",
	"Authorization",
	AuthTokenHeader,
}, ", ")

func Cors() func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			if !clientAllowed(origin, r.Header.Get("User-Agent")) {
				log.Warnf("cors: client not allowed, path [%s], origin [%s]", r.URL.Path, origin)
				w.WriteHeader(http.StatusForbidden)
				return
			}

			w.Header().Add("Vary", "Origin")
			if origin != "" {
				w.Header().Set("Access-Control-Allow-Origin", origin)
			}
			w.Header().Set("Access-Control-Allow-Headers", corsAllowedHeaders)
			w.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS, PUT, DELETE")

			next.ServeHTTP(w, r)
		})
	}
}

func clientAllowed(origin, userAgent string) bool {
	if allowedOrigins[origin] {
		return true
	}
	for _, prefix := range allowedUserAgentPrefixes {
		if strings.HasPrefix(userAgent, prefix) {
			return true
		}
	}
	return false
}
