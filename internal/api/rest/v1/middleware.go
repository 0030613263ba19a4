package v1

import (
	"crypto/subtle"
	"errors"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/linapoint/resortagents/internal/domain"
	"github.com/linapoint/resortagents/internal/logger"
	"github.com/linapoint/resortagents/internal/service"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const (
	profileKey        = "profile"
	rateLimiterIPs    = 4096
	unauthorizedBody  = "Unauthorized"
	rateLimitedBody   = "Too many requests"
	bookFlowAuthError = "Unauthorized: Please log in"
)

// bearerToken returns the token from an "Authorization: Bearer <token>"
// header, or "" when the header is missing or malformed.
func bearerToken(ctx *gin.Context) string {
	h := ctx.GetHeader("Authorization")
	if len(h) < 7 || !strings.EqualFold(h[:7], "bearer ") {
		return ""
	}
	return strings.TrimSpace(h[7:])
}

func unauthorized(ctx *gin.Context) {
	ctx.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized", Message: unauthorizedBody})
}

// RequireBearer resolves the bearer token to a profile and stores it on the
// context. deny writes the rejection; nil uses the standard error body.
func RequireBearer(auth service.AuthService, log logger.Logger, deny func(*gin.Context)) gin.HandlerFunc {
	if deny == nil {
		deny = unauthorized
	}
	return func(ctx *gin.Context) {
		token := bearerToken(ctx)
		if token == "" {
			deny(ctx)
			return
		}
		p, err := auth.Authenticate(ctx.Request.Context(), token)
		if err != nil {
			if !errors.Is(err, service.ErrUnauthorized) {
				log.Error("authenticating request", zap.Error(err))
			}
			deny(ctx)
			return
		}
		ctx.Set(profileKey, p)
		ctx.Next()
	}
}

// RequireAdmin must run after RequireBearer.
func RequireAdmin(auth service.AuthService) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		if !auth.IsAdmin(profileFrom(ctx)) {
			ctx.AbortWithStatusJSON(http.StatusForbidden, ErrorResponse{Error: "forbidden", Message: "Admin access required"})
			return
		}
		ctx.Next()
	}
}

// RequireCronSecret accepts "Authorization: Bearer <secret>". An unset
// secret rejects every request.
func RequireCronSecret(secret string) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		if secret == "" || !secretsEqual(bearerToken(ctx), secret) {
			unauthorized(ctx)
			return
		}
		ctx.Next()
	}
}

// RequireHeaderSecret compares a shared secret header. An unset secret lets
// every request through.
func RequireHeaderSecret(header, secret string) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		if secret != "" && !secretsEqual(ctx.GetHeader(header), secret) {
			unauthorized(ctx)
			return
		}
		ctx.Next()
	}
}

func secretsEqual(got, want string) bool {
	return subtle.ConstantTimeCompare([]byte(got), []byte(want)) == 1
}

func profileFrom(ctx *gin.Context) *domain.Profile {
	v, ok := ctx.Get(profileKey)
	if !ok {
		return nil
	}
	p, _ := v.(*domain.Profile)
	return p
}

// ClientIP picks the caller address from x-forwarded-for, then x-real-ip,
// then the connection.
func ClientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		first, _, _ := strings.Cut(fwd, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}
	if ip := strings.TrimSpace(r.Header.Get("X-Real-IP")); ip != "" {
		return ip
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// RateLimiter is a per-client token bucket. The least recently seen clients
// are evicted once the table is full.
type RateLimiter struct {
	mu       sync.Mutex
	limiters *lru.Cache[string, *rate.Limiter]
	limit    rate.Limit
	burst    int
}

// NewRateLimiter allows perMinute requests per client per minute. A
// non-positive perMinute returns nil, which disables limiting.
func NewRateLimiter(perMinute int) *RateLimiter {
	if perMinute <= 0 {
		return nil
	}
	cache, err := lru.New[string, *rate.Limiter](rateLimiterIPs)
	if err != nil {
		return nil
	}
	return &RateLimiter{
		limiters: cache,
		limit:    rate.Every(time.Minute / time.Duration(perMinute)),
		burst:    perMinute,
	}
}

func (l *RateLimiter) Allow(key string) bool {
	l.mu.Lock()
	lim, ok := l.limiters.Get(key)
	if !ok {
		lim = rate.NewLimiter(l.limit, l.burst)
		l.limiters.Add(key, lim)
	}
	l.mu.Unlock()
	return lim.Allow()
}

func (l *RateLimiter) Middleware() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		if l != nil && !l.Allow(ClientIP(ctx.Request)) {
			ctx.Header("Retry-After", "60")
			ctx.AbortWithStatusJSON(http.StatusTooManyRequests, ErrorResponse{Error: "rate_limited", Message: rateLimitedBody})
			return
		}
		ctx.Next()
	}
}

// RequestLogger logs every request and warns when one takes longer than slow.
func RequestLogger(log logger.Logger, slow time.Duration) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		start := time.Now()
		ctx.Next()
		elapsed := time.Since(start)

		path := ctx.FullPath()
		if path == "" {
			path = ctx.Request.URL.Path
		}
		fields := []zap.Field{
			zap.String("method", ctx.Request.Method),
			zap.String("path", path),
			zap.Int("status", ctx.Writer.Status()),
			zap.Duration("latency", elapsed),
			zap.String("client_ip", ClientIP(ctx.Request)),
		}
		switch {
		case slow > 0 && elapsed > slow:
			log.Warn("slow request", fields...)
		case ctx.Writer.Status() >= http.StatusInternalServerError:
			log.Error("request", fields...)
		default:
			log.Info("request", fields...)
		}
	}
}
