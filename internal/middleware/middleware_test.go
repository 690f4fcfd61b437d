package middleware

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/beerbuddy/beerbuddy/internal/auth"
	"github.com/beerbuddy/beerbuddy/pkg/logger"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestAuthenticateNeverRejects(t *testing.T) {
	tokens, err := auth.NewTokenManager("secret", time.Minute)
	require.NoError(t, err)
	good, err := tokens.Generate(7)
	require.NoError(t, err)

	r := gin.New()
	r.Use(Authenticate(tokens))
	r.GET("/whoami", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"user_id": GetViewer(c).UserID})
	})

	tests := []struct {
		name   string
		header string
		want   string
	}{
		{"valid token", "Bearer " + good, `{"user_id":7}`},
		{"no header", "", `{"user_id":0}`},
		{"wrong scheme", "Basic " + good, `{"user_id":0}`},
		{"garbage", "Bearer nope", `{"user_id":0}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			assert.Equal(t, http.StatusOK, w.Code)
			assert.JSONEq(t, tt.want, w.Body.String())
		})
	}
}

func TestGetViewerWithoutMiddleware(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	assert.False(t, GetViewer(c).Authenticated())
}

func TestRequestID(t *testing.T) {
	r := gin.New()
	r.Use(RequestID())
	r.GET("/", func(c *gin.Context) { c.String(http.StatusOK, GetRequestID(c)) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	generated := w.Header().Get(RequestIDHeader)
	assert.NotEmpty(t, generated)
	assert.Equal(t, generated, w.Body.String())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "abc-123", w.Header().Get(RequestIDHeader))
}

type fakeCounter struct {
	mu     sync.Mutex
	counts map[string]int64
	err    error
}

func (f *fakeCounter) IncrWithin(ctx context.Context, key string, window time.Duration) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return 0, f.err
	}
	if f.counts == nil {
		f.counts = make(map[string]int64)
	}
	f.counts[key]++
	return f.counts[key], nil
}

func rateLimitedRouter(counter Counter, limit int64) *gin.Engine {
	r := gin.New()
	r.POST("/login", RateLimit(counter, "auth", limit, time.Minute, logger.NewNop()), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	return r
}

func TestRateLimit(t *testing.T) {
	counter := &fakeCounter{}
	r := rateLimitedRouter(counter, 2)

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/login", nil))
		codes = append(codes, w.Code)
		if w.Code == http.StatusTooManyRequests {
			assert.JSONEq(t, `{"error":"Too many requests"}`, w.Body.String())
			assert.Equal(t, "60", w.Header().Get("Retry-After"))
		}
	}
	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)
	assert.Len(t, counter.counts, 1)
	for key := range counter.counts {
		assert.True(t, strings.HasPrefix(key, "ratelimit:auth:"))
	}
}

func TestRateLimitFailsOpen(t *testing.T) {
	r := rateLimitedRouter(&fakeCounter{err: errors.New("redis down")}, 1)

	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/login", nil))
		assert.Equal(t, http.StatusOK, w.Code)
	}
}

// expiryFailingCounter counts hits but reports an error from the expiry step,
// the way IncrWithin does when PEXPIRE fails after INCR.
type expiryFailingCounter struct {
	fakeCounter
}

func (f *expiryFailingCounter) IncrWithin(ctx context.Context, key string, window time.Duration) (int64, error) {
	n, _ := f.fakeCounter.IncrWithin(ctx, key, window)
	return n, errors.New("PEXPIRE: i/o timeout")
}

func TestRateLimitExpiryFailureAllowsRequest(t *testing.T) {
	counter := &expiryFailingCounter{}
	r := rateLimitedRouter(counter, 1)

	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/login", nil))
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Empty(t, w.Header().Get("Retry-After"))
	}
	for _, n := range counter.counts {
		assert.Equal(t, int64(3), n)
	}
}

func TestMetricsRecordsRoutePattern(t *testing.T) {
	m := NewMetrics()
	r := gin.New()
	r.Use(m.Middleware())
	r.GET("/posts/:id", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	for _, id := range []string{"1", "2"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/posts/"+id, nil))
	}

	w := httptest.NewRecorder()
	m.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	body, err := io.ReadAll(w.Body)
	require.NoError(t, err)

	assert.Contains(t, string(body), `beerbuddy_http_requests_total{method="GET",route="/posts/:id",status="204"} 2`)
	assert.Contains(t, string(body), "beerbuddy_http_request_duration_seconds_bucket")
}

func TestCORSPreflight(t *testing.T) {
	r := gin.New()
	r.Use(CORS())
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodOptions, "/", nil))
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}
