package middleware

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/angelmondragon/records-backend/api/responses"
	pkgerrors "github.com/angelmondragon/records-backend/pkg/errors"
	"github.com/angelmondragon/records-backend/pkg/logger"
	"golang.org/x/time/rate"
)

// maxScanBytes bounds how much of a body is buffered to find the email; it
// matches the decoder's own limit.
const maxScanBytes = 1 << 20

// Limiter decides whether one more hit on key fits limit per window and
// returns the hits counted so far.
type Limiter interface {
	Allow(ctx context.Context, key string, limit int64, window time.Duration) (bool, int64, error)
}

// WriteRateLimitPolicy throttles mutating requests per client IP and record
// creation per submitted email.
type WriteRateLimitPolicy struct {
	window     time.Duration
	ipLimit    int
	emailLimit int
}

// NewWriteRateLimitPolicy builds a policy with the supplied window and limits.
func NewWriteRateLimitPolicy(window time.Duration, ipLimit, emailLimit int) WriteRateLimitPolicy {
	return WriteRateLimitPolicy{
		window:     window,
		ipLimit:    ipLimit,
		emailLimit: emailLimit,
	}
}

func ipKey(ip string) string {
	return fmt.Sprintf("write:ip:%s", ip)
}

func emailKey(hash string) string {
	return fmt.Sprintf("create:email:%s", hash)
}

// WriteRateLimit enforces the per-IP limit on POST, PUT, PATCH and DELETE
// requests. Reads pass through untouched.
func WriteRateLimit(policy WriteRateLimitPolicy, limiter Limiter, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if policy.window <= 0 || policy.ipLimit <= 0 || limiter == nil {
			return next
		}

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !isWrite(r.Method) {
				next.ServeHTTP(w, r)
				return
			}
			ctx := r.Context()

			ip := clientIP(r)
			if ip != "" {
				allowed, count, err := limiter.Allow(ctx, ipKey(ip), int64(policy.ipLimit), policy.window)
				if err != nil {
					responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "rate limiting"))
					return
				}
				if !allowed {
					respondRateLimited(ctx, logg, w, policy, "ip", ip, "", count, policy.ipLimit)
					return
				}
			}

			next.ServeHTTP(w, r)
		})
	}
}

// SignupRateLimit caps account creation per submitted email. Mount it on the
// user creation route only; logins and orders legitimately repeat an email.
func SignupRateLimit(policy WriteRateLimitPolicy, limiter Limiter, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if policy.window <= 0 || policy.emailLimit <= 0 || limiter == nil {
			return next
		}

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost || r.Body == nil {
				next.ServeHTTP(w, r)
				return
			}
			ctx := r.Context()

			head, err := io.ReadAll(io.LimitReader(r.Body, maxScanBytes))
			if err != nil {
				responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "read request"))
				return
			}
			r.Body = replayBody{Reader: io.MultiReader(bytes.NewReader(head), r.Body), Closer: r.Body}

			if email := normalizeEmail(extractEmail(head)); email != "" {
				hash := hashValue(email)
				allowed, count, err := limiter.Allow(ctx, emailKey(hash), int64(policy.emailLimit), policy.window)
				if err != nil {
					responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "rate limiting"))
					return
				}
				if !allowed {
					respondRateLimited(ctx, logg, w, policy, "email", "", hash, count, policy.emailLimit)
					return
				}
			}

			next.ServeHTTP(w, r)
		})
	}
}

// replayBody serves the scanned prefix followed by the unread remainder.
type replayBody struct {
	io.Reader
	io.Closer
}

func isWrite(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
		return true
	}
	return false
}

func respondRateLimited(ctx context.Context, logg *logger.Logger, w http.ResponseWriter, policy WriteRateLimitPolicy, scope, ip, emailHash string, count int64, limit int) {
	if logg != nil {
		fields := map[string]any{
			"scope":          scope,
			"attempts":       count,
			"limit":          limit,
			"window_seconds": int(policy.window.Seconds()),
		}
		if ip != "" {
			fields["ip"] = ip
		}
		if emailHash != "" {
			fields["email_hash"] = emailHash
		}
		logg.Warn(logg.WithFields(ctx, fields), "write.rate_limit.blocked")
	}
	responses.WriteError(ctx, nil, w, pkgerrors.New(pkgerrors.CodeRateLimit, "rate limit exceeded"))
}

func clientIP(r *http.Request) string {
	if header := r.Header.Get("X-Forwarded-For"); header != "" {
		for _, part := range strings.Split(header, ",") {
			if ip := strings.TrimSpace(part); ip != "" {
				return ip
			}
		}
	}
	if ip := strings.TrimSpace(r.Header.Get("X-Real-IP")); ip != "" {
		return ip
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err == nil && host != "" {
		return host
	}
	return r.RemoteAddr
}

func extractEmail(payload []byte) string {
	var body struct {
		Email any `json:"email"`
	}
	if err := json.Unmarshal(payload, &body); err != nil {
		return ""
	}
	email, _ := body.Email.(string)
	return email
}

func normalizeEmail(value string) string {
	return strings.ToLower(strings.TrimSpace(value))
}

func hashValue(value string) string {
	sum := sha256.Sum256([]byte(value))
	return hex.EncodeToString(sum[:])
}

// LocalLimiter is the in-process token bucket used when Redis is not
// configured. Limits hold per replica only. Buckets idle for a full window are
// refilled anyway, so they are dropped on the next sweep.
type LocalLimiter struct {
	mu        sync.Mutex
	buckets   map[string]*bucket
	lastSweep time.Time
	now       func() time.Time
}

type bucket struct {
	limiter  *rate.Limiter
	window   time.Duration
	lastSeen time.Time
}

func NewLocalLimiter() *LocalLimiter {
	return &LocalLimiter{buckets: make(map[string]*bucket), now: time.Now}
}

func (l *LocalLimiter) Allow(_ context.Context, key string, limit int64, window time.Duration) (bool, int64, error) {
	if limit <= 0 || window <= 0 {
		return true, 0, nil
	}
	l.mu.Lock()
	now := l.now()
	if now.Sub(l.lastSweep) >= window {
		l.sweep(now)
	}
	b, ok := l.buckets[key]
	if !ok {
		b = &bucket{
			limiter: rate.NewLimiter(rate.Every(window/time.Duration(limit)), int(limit)),
			window:  window,
		}
		l.buckets[key] = b
	}
	b.lastSeen = now
	allowed := b.limiter.AllowN(now, 1)
	used := limit - int64(b.limiter.TokensAt(now))
	l.mu.Unlock()

	if !allowed {
		used = limit + 1
	}
	return allowed, used, nil
}

func (l *LocalLimiter) sweep(now time.Time) {
	for key, b := range l.buckets {
		if now.Sub(b.lastSeen) >= b.window {
			delete(l.buckets, key)
		}
	}
	l.lastSweep = now
}

func (l *LocalLimiter) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.buckets)
}
