//go:build integration_test || all_tests

package middleware

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/2beens/fittrack/internal/telemetry/metrics"
	testingpkg "github.com/2beens/fittrack/pkg/testing"

	"github.com/go-redis/redis_rate/v9"
	"github.com/stretchr/testify/assert"
)

func TestRateLimit_RedisLimiter(t *testing.T) {
	_, rdb := testingpkg.GetRedisClientAndCtx(t)

	routerName := fmt.Sprintf("live-%d", time.Now().UnixNano())
	handler := RateLimit(redis_rate.NewLimiter(rdb), routerName, 2, metrics.NewTestManager())(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusCreated)
		}),
	)

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodPost, "/workouts", nil)
		req.RemoteAddr = "10.1.2.3"
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		codes = append(codes, rec.Code)
	}

	assert.Equal(t, []int{http.StatusCreated, http.StatusCreated, http.StatusTooManyRequests}, codes)
}
