package middleware

import (
	"net/http"
	"sync"

	"github.com/2beens/fittrack/internal/telemetry/tracing"
	"github.com/2beens/fittrack/pkg"

	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/codes"
)

const AuthTokenHeader = "X-FIT-TOKEN"

// AuthMiddlewareHandler guards the mutating requests with an API token,
// checked against a bcrypt hash. Reads are always allowed.
type AuthMiddlewareHandler struct {
	tokenHash string
	// bcrypt is slow on purpose, tokens that passed once are remembered
	verified sync.Map
}

func NewAuthMiddlewareHandler(tokenHash string) *AuthMiddlewareHandler {
	if tokenHash == "" {
		log.Warnln("no api token hash set, mutating requests are not protected")
	}
	return &AuthMiddlewareHandler{
		tokenHash: tokenHash,
	}
}

func isReadOnly(method string) bool {
	return method == http.MethodGet || method == http.MethodHead
}

func (h *AuthMiddlewareHandler) tokenValid(token string) bool {
	if _, ok := h.verified.Load(token); ok {
		return true
	}
	if !pkg.CheckPasswordHash(token, h.tokenHash) {
		return false
	}
	h.verified.Store(token, struct{}{})
	return true
}

func (h *AuthMiddlewareHandler) AuthCheck() func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, span := tracing.GlobalTracer.Start(r.Context(), "middleware.auth")
			defer span.End()

			if r.Method == http.MethodOptions {
				w.Header().Add("Allow", "GET, POST, PUT, DELETE, OPTIONS")
				w.WriteHeader(http.StatusOK)
				span.SetStatus(codes.Ok, "options-ok")
				return
			}

			if h.tokenHash == "" || isReadOnly(r.Method) {
				span.SetStatus(codes.Ok, "ok")
				next.ServeHTTP(w, r)
				return
			}

			// a non-standard req. header is set, and thus - browser makes a preflight/OPTIONS request:
			//	https://developer.mozilla.org/en-US/docs/Web/HTTP/CORS#preflighted_requests
			authToken := r.Header.Get(AuthTokenHeader)
			if authToken == "" {
				log.Tracef("[missing token] [auth middleware] unauthorized => %s %s", r.Method, r.URL.Path)
				http.Error(w, "no can do", http.StatusUnauthorized)
				span.SetStatus(codes.Error, "missing-auth-token")
				return
			}

			if !h.tokenValid(authToken) {
				reqIp, _ := pkg.ReadUserIP(r)
				log.Warnf("[invalid token] [auth middleware] unauthorized %s %s from %s", r.Method, r.URL.Path, reqIp)
				http.Error(w, "no can do", http.StatusUnauthorized)
				span.SetStatus(codes.Error, "invalid-auth-token")
				return
			}

			span.SetStatus(codes.Ok, "ok")
			next.ServeHTTP(w, r)
		})
	}
}
