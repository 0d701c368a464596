// Package httpkit provides HTTP middleware infrastructure.
// This is part of the platform layer and contains no business logic.
package httpkit

import (
	"errors"
	"net/http"
	"strings"
	"sync"
	"time"

	"eventcraft_backend/platform/config"
	"eventcraft_backend/platform/logger"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/time/rate"
)

const (
	// ContextUserIDKey is the gin context key for the authenticated user ID.
	ContextUserIDKey = "userID"
	// ContextUserEmailKey is the gin context key for the user's email.
	ContextUserEmailKey = "userEmail"
	// ContextUserTypeKey is the gin context key for the account type (user or provider).
	ContextUserTypeKey = "userType"

	errMissingToken = "missing token"
	errInvalidToken = "invalid token"
)

// RequestLogger logs HTTP requests with timing.
func RequestLogger(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		latency := time.Since(start)
		status := c.Writer.Status()
		clientIP := c.ClientIP()

		log.HTTPRequest(c.Request.Method, path, status, float64(latency.Milliseconds()), clientIP)
	}
}

// SecurityHeaders adds security headers to responses.
func SecurityHeaders() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("X-Content-Type-Options", "nosniff")
		c.Header("X-Frame-Options", "DENY")
		c.Header("X-XSS-Protection", "1; mode=block")
		c.Header("Referrer-Policy", "strict-origin-when-cross-origin")
		c.Header("Permissions-Policy", "geolocation=(), microphone=(), camera=()")

		// Only add HSTS on TLS connections
		if c.Request.TLS != nil {
			c.Header("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
		}

		c.Next()
	}
}

// IPRateLimiter enforces a fixed request window per client IP.
// A window starts on the first request and every request inside it counts
// against the limit; once the window elapses the counter resets.
type IPRateLimiter struct {
	windows sync.Map
	limit   int
	window  time.Duration
	log     *logger.Logger
	now     func() time.Time
}

type ipWindow struct {
	mu      sync.Mutex
	started time.Time
	count   int
}

// NewIPRateLimiter creates a fixed-window rate limiter allowing limit
// requests per window for each client IP.
func NewIPRateLimiter(limit int, window time.Duration, log *logger.Logger) *IPRateLimiter {
	return &IPRateLimiter{
		limit:  limit,
		window: window,
		log:    log,
		now:    time.Now,
	}
}

// Allow reports whether a request from ip fits in the current window.
func (i *IPRateLimiter) Allow(ip string) bool {
	entry, _ := i.windows.LoadOrStore(ip, &ipWindow{})
	w := entry.(*ipWindow)

	w.mu.Lock()
	defer w.mu.Unlock()

	now := i.now()
	if w.started.IsZero() || now.Sub(w.started) >= i.window {
		w.started = now
		w.count = 0
	}

	if w.count >= i.limit {
		return false
	}

	w.count++
	return true
}

// RateLimit returns a middleware that rate limits by IP.
func (i *IPRateLimiter) RateLimit() gin.HandlerFunc {
	return func(c *gin.Context) {
		ip := c.ClientIP()

		if !i.Allow(ip) {
			if i.log != nil {
				i.log.RateLimitExceeded(ip, c.Request.URL.Path)
			}
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error": "Too many requests",
			})
			return
		}

		c.Next()
	}
}

// AuthRateLimiter is a stricter token-bucket limiter for auth endpoints,
// where brute-force pressure matters more than burst fairness.
type AuthRateLimiter struct {
	limiters sync.Map
	rate     rate.Limit
	burst    int
	log      *logger.Logger
}

// NewAuthRateLimiter creates a rate limiter for authentication endpoints
// (5 requests per minute per IP).
func NewAuthRateLimiter(log *logger.Logger) *AuthRateLimiter {
	return &AuthRateLimiter{
		rate:  rate.Limit(5.0 / 60.0),
		burst: 5,
		log:   log,
	}
}

func (a *AuthRateLimiter) getLimiter(ip string) *rate.Limiter {
	limiter, exists := a.limiters.Load(ip)
	if !exists {
		newLimiter := rate.NewLimiter(a.rate, a.burst)
		a.limiters.Store(ip, newLimiter)
		return newLimiter
	}
	return limiter.(*rate.Limiter)
}

// RateLimit returns a middleware that rate limits auth attempts by IP.
func (a *AuthRateLimiter) RateLimit() gin.HandlerFunc {
	return func(c *gin.Context) {
		ip := c.ClientIP()

		if !a.getLimiter(ip).Allow() {
			if a.log != nil {
				a.log.RateLimitExceeded(ip, c.Request.URL.Path)
			}
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error": "Too many requests",
			})
			return
		}

		c.Next()
	}
}

// AuthRequired returns middleware that validates JWT access tokens.
func AuthRequired(cfg config.JWTConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		rawToken, ok := extractBearerToken(c.GetHeader("Authorization"))
		if !ok {
			abortUnauthorized(c, errMissingToken)
			return
		}

		claims, err := parseAccessClaims(rawToken, cfg)
		if err != nil {
			abortUnauthorized(c, errInvalidToken)
			return
		}

		userID, err := parseUserID(claims)
		if err != nil {
			abortUnauthorized(c, errInvalidToken)
			return
		}

		email, _ := claims["email"].(string)
		userType, _ := claims["type"].(string)

		c.Set(ContextUserIDKey, userID)
		c.Set(ContextUserEmailKey, email)
		c.Set(ContextUserTypeKey, userType)
		c.Next()
	}
}

// OptionalAuth populates identity from a bearer token when one is present
// but never rejects the request. Used on public endpoints that record the
// viewer when known.
func OptionalAuth(cfg config.JWTConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		rawToken, ok := extractBearerToken(c.GetHeader("Authorization"))
		if !ok {
			c.Next()
			return
		}

		claims, err := parseAccessClaims(rawToken, cfg)
		if err != nil {
			c.Next()
			return
		}

		if userID, err := parseUserID(claims); err == nil {
			email, _ := claims["email"].(string)
			userType, _ := claims["type"].(string)
			c.Set(ContextUserIDKey, userID)
			c.Set(ContextUserEmailKey, email)
			c.Set(ContextUserTypeKey, userType)
		}
		c.Next()
	}
}

// RequireAccountType returns middleware that checks the account type set by
// AuthRequired. Providers-only surfaces use RequireAccountType("provider").
func RequireAccountType(accountType string) gin.HandlerFunc {
	return func(c *gin.Context) {
		value, ok := c.Get(ContextUserTypeKey)
		if !ok {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "forbidden"})
			return
		}

		if typed, ok := value.(string); !ok || typed != accountType {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "forbidden"})
			return
		}

		c.Next()
	}
}

func extractBearerToken(authHeader string) (string, bool) {
	if !strings.HasPrefix(authHeader, "Bearer ") {
		return "", false
	}

	rawToken := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
	if rawToken == "" {
		return "", false
	}

	return rawToken, true
}

func parseAccessClaims(rawToken string, cfg config.JWTConfig) (jwt.MapClaims, error) {
	parsed, err := jwt.Parse(rawToken, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("invalid signing method")
		}
		return []byte(cfg.GetJWTAccessSecret()), nil
	})
	if err != nil || !parsed.Valid {
		return nil, errors.New(errInvalidToken)
	}

	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return nil, errors.New(errInvalidToken)
	}

	if tokenType, _ := claims["token_type"].(string); tokenType != "access" {
		return nil, errors.New(errInvalidToken)
	}

	return claims, nil
}

func parseUserID(claims jwt.MapClaims) (uuid.UUID, error) {
	userIDRaw, _ := claims["sub"].(string)
	return uuid.Parse(userIDRaw)
}

func abortUnauthorized(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": message})
}
