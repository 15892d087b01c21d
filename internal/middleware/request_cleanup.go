package middleware

import (
	"io"
	"net/http"
)

// maxDrainBytes caps how much of an unread body is consumed before closing it.
const maxDrainBytes = 64 << 10

// DrainAndCloseRequest consumes what the handler left of the request body and closes it,
// so the connection can be reused.
func DrainAndCloseRequest() func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if r.Body == nil || r.Body == http.NoBody {
					return
				}
				_, _ = io.CopyN(io.Discard, r.Body, maxDrainBytes)
				_ = r.Body.Close()
			}()
			next.ServeHTTP(w, r)
		})
	}
}
