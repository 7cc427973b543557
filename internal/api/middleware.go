package api

import (
	"errors"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"github.com/yashankkothari/Lung-Cancer-Detection-Using-ML/internal/domain"
)

const identityKey = "identity"

// RequestID attaches a correlation id to each request for audit trails.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader("X-Request-ID")
		if requestID == "" {
			requestID = uuid.New().String()
		}
		c.Set("request_id", requestID)
		c.Header("X-Request-ID", requestID)
		c.Next()
	}
}

// CORS allows browser clients to reach the API.
func CORS() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Content-Length, Accept-Encoding, Authorization")
		c.Header("Access-Control-Expose-Headers", "Content-Length, X-Request-ID")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

// SecurityHeaders hardens responses carrying medical data.
func SecurityHeaders() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("X-Content-Type-Options", "nosniff")
		c.Header("X-Frame-Options", "DENY")
		c.Header("Referrer-Policy", "strict-origin-when-cross-origin")
		if gin.Mode() == gin.ReleaseMode {
			c.Header("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
		}
		c.Next()
	}
}

// RequestLogger emits one structured line per request.
func RequestLogger(log *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		log.WithFields(logrus.Fields{
			"request_id": c.GetString("request_id"),
			"method":     c.Request.Method,
			"path":       c.Request.URL.Path,
			"status":     c.Writer.Status(),
			"latency":    time.Since(start),
			"client_ip":  c.ClientIP(),
		}).Info("Request handled")
	}
}

// clientLimiter hands out one token bucket per client address. Idle buckets
// are dropped after an hour so the map does not grow without bound.
type clientLimiter struct {
	mu       sync.Mutex
	clients  map[string]*clientBucket
	rps      rate.Limit
	burst    int
	lastSeen time.Duration
}

type clientBucket struct {
	limiter *rate.Limiter
	seen    time.Time
}

func newClientLimiter(rps float64, burst int) *clientLimiter {
	return &clientLimiter{
		clients:  make(map[string]*clientBucket),
		rps:      rate.Limit(rps),
		burst:    burst,
		lastSeen: time.Hour,
	}
}

func (l *clientLimiter) allow(client string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	bucket, ok := l.clients[client]
	if !ok {
		bucket = &clientBucket{limiter: rate.NewLimiter(l.rps, l.burst)}
		l.clients[client] = bucket
	}
	bucket.seen = now

	if len(l.clients) > 1000 {
		for addr, b := range l.clients {
			if now.Sub(b.seen) > l.lastSeen {
				delete(l.clients, addr)
			}
		}
	}
	return bucket.limiter.Allow()
}

// RateLimit throttles per-client request rates.
func RateLimit(rps float64, burst int) gin.HandlerFunc {
	limiter := newClientLimiter(rps, burst)
	return func(c *gin.Context) {
		if !limiter.allow(c.ClientIP()) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, domain.NewAPIError(
				domain.CodeRateLimited,
				"too many requests",
				c.GetString("request_id"),
			))
			return
		}
		c.Next()
	}
}

// Authenticate resolves the bearer token and stores the acting clinician in
// the request context. Requests without a valid identity never reach the
// protected handlers.
func Authenticate(resolver domain.IdentityResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			abortWithError(c, domain.ErrUnauthorized)
			return
		}
		token := strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))

		identity, err := resolver.Resolve(c.Request.Context(), token)
		if err != nil {
			abortWithError(c, err)
			return
		}
		c.Set(identityKey, identity)
		c.Next()
	}
}

// actingIdentity returns the clinician resolved by the auth middleware.
func actingIdentity(c *gin.Context) *domain.Identity {
	v, _ := c.Get(identityKey)
	identity, _ := v.(*domain.Identity)
	return identity
}

// abortWithError translates a taxonomy error into its HTTP boundary.
func abortWithError(c *gin.Context, err error) {
	c.AbortWithStatusJSON(domain.HTTPStatus(err), domain.NewAPIError(
		domain.ErrorCode(err),
		publicMessage(err),
		c.GetString("request_id"),
	))
}

// publicMessage keeps internal detail out of payloads; the sentinel text is
// the whole message.
func publicMessage(err error) string {
	for _, sentinel := range []error{
		domain.ErrInvalidImage,
		domain.ErrInvalidInput,
		domain.ErrModelUnavailable,
		domain.ErrNoUsableArtifact,
		domain.ErrInferenceFailure,
		domain.ErrPersistenceFailure,
		domain.ErrUnauthorized,
		domain.ErrTokenExpired,
		domain.ErrNotFound,
		domain.ErrDuplicateEmail,
	} {
		if errors.Is(err, sentinel) {
			return sentinel.Error()
		}
	}
	return "internal server error"
}
