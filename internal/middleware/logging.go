package middleware

import (
	"net/http"
	"time"

	"github.com/2beens/fittrack/pkg"

	log "github.com/sirupsen/logrus"
)

// LogRequest traces every request with its client address and how long it took.
func LogRequest() func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !log.IsLevelEnabled(log.TraceLevel) {
				next.ServeHTTP(w, r)
				return
			}

			clientIP, err := pkg.ReadUserIP(r)
			if err != nil {
				clientIP = r.RemoteAddr
			}
			start := time.Now()
			next.ServeHTTP(w, r)

			log.WithFields(log.Fields{
				"method":   r.Method,
				"path":     r.URL.Path,
				"ua":       r.Header.Get("User-Agent"),
				"client":   clientIP,
				"duration": time.Since(start),
			}).Trace("request served")
		})
	}
}
