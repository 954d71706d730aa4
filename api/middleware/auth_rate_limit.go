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
	"time"

	"github.com/medkitstore/medkit-backend/api/responses"
	"github.com/medkitstore/medkit-backend/pkg/config"
	pkgerrors "github.com/medkitstore/medkit-backend/pkg/errors"
	"github.com/medkitstore/medkit-backend/pkg/logger"
	"github.com/medkitstore/medkit-backend/pkg/redis"
)

// AuthRateLimitPolicy describes one fixed-window limit applied to an auth
// endpoint, counted per client IP and per submitted email.
type AuthRateLimitPolicy struct {
	Name       string
	Window     time.Duration
	IPLimit    int
	EmailLimit int
}

// LoginPolicy builds the login limit from config.
func LoginPolicy(cfg config.AuthRateLimitConfig) AuthRateLimitPolicy {
	return AuthRateLimitPolicy{
		Name:       "login",
		Window:     cfg.LoginWindow,
		IPLimit:    cfg.LoginIPLimit,
		EmailLimit: cfg.LoginEmailLimit,
	}
}

// RegisterPolicy builds the registration limit from config.
func RegisterPolicy(cfg config.AuthRateLimitConfig) AuthRateLimitPolicy {
	return AuthRateLimitPolicy{
		Name:       "register",
		Window:     cfg.RegisterWindow,
		IPLimit:    cfg.RegisterIPLimit,
		EmailLimit: cfg.RegisterEmailLimit,
	}
}

// AuthRateLimit enforces the policy before the wrapped handler runs. The
// request body is re-buffered so the handler can still decode it. A Redis
// outage fails open.
func AuthRateLimit(store *redis.Client, policy AuthRateLimitPolicy, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			ip := clientIP(r)
			if ip != "" && policy.IPLimit > 0 {
				scope := fmt.Sprintf("auth:%s:ip:%s", policy.Name, ip)
				count, err := store.IncrWithTTL(ctx, store.RateLimitKey(scope), policy.Window)
				if err != nil {
					logg.Warn(logg.WithField(ctx, "scope", scope), "rate limit check failed")
				} else if count > int64(policy.IPLimit) {
					respondRateLimited(ctx, logg, w, policy, "ip")
					return
				}
			}

			if email := peekEmail(r); email != "" && policy.EmailLimit > 0 {
				digest := sha256.Sum256([]byte(strings.ToLower(email)))
				scope := fmt.Sprintf("auth:%s:email:%s", policy.Name, hex.EncodeToString(digest[:]))
				count, err := store.IncrWithTTL(ctx, store.RateLimitKey(scope), policy.Window)
				if err != nil {
					logg.Warn(logg.WithField(ctx, "scope", scope), "rate limit check failed")
				} else if count > int64(policy.EmailLimit) {
					respondRateLimited(ctx, logg, w, policy, "email")
					return
				}
			}

			next.ServeHTTP(w, r)
		})
	}
}

func respondRateLimited(ctx context.Context, logg *logger.Logger, w http.ResponseWriter, policy AuthRateLimitPolicy, dimension string) {
	logCtx := logg.WithFields(ctx, map[string]any{
		"policy":    policy.Name,
		"dimension": dimension,
	})
	logg.Warn(logCtx, "auth.rate_limited")
	responses.WriteError(ctx, logg, w,
		pkgerrors.New(pkgerrors.CodeRateLimit, "too many attempts, try again later"))
}

// peekEmail reads the email field out of the JSON body without consuming it.
func peekEmail(r *http.Request) string {
	if r.Body == nil {
		return ""
	}
	body, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
	_ = r.Body.Close()
	r.Body = io.NopCloser(bytes.NewReader(body))
	if err != nil {
		return ""
	}

	var probe struct {
		Email string `json:"email"`
	}
	if err := json.Unmarshal(body, &probe); err != nil {
		return ""
	}
	return strings.TrimSpace(probe.Email)
}

func clientIP(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		parts := strings.Split(forwarded, ",")
		return strings.TrimSpace(parts[0])
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
