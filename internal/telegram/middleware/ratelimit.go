package middleware

import (
	"context"
	"sync"
	"time"

	"github.com/futig/lab-assistant/internal/entity"
	"github.com/futig/lab-assistant/internal/telegram/handlers"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

const (
	warningInterval   = 30 * time.Second
	cleanupInterval   = 10 * time.Minute
	inactiveThreshold = time.Hour
)

// userLimit tracks rate limit state for a single user
type userLimit struct {
	tokens        float64
	lastRefill    time.Time
	warningsSent  int
	lastWarningAt time.Time
	mu            sync.Mutex
}

// RateLimiterMiddleware implements token bucket rate limiting per user
type RateLimiterMiddleware struct {
	limits     map[int64]*userLimit
	mu         sync.Mutex
	maxTokens  float64 // bucket size, the allowed burst
	refillRate float64 // tokens added per second
	channel    handlers.Channel
	now        func() time.Time
}

// NewRateLimiterMiddleware creates a new rate limiter middleware.
// A non-positive burst falls back to requestsPerMinute.
func NewRateLimiterMiddleware(requestsPerMinute, burst int, channel handlers.Channel) *RateLimiterMiddleware {
	maxTokens := float64(burst)
	if burst <= 0 {
		maxTokens = float64(requestsPerMinute)
	}
	return &RateLimiterMiddleware{
		limits:     make(map[int64]*userLimit),
		maxTokens:  maxTokens,
		refillRate: float64(requestsPerMinute) / 60.0,
		channel:    channel,
		now:        time.Now,
	}
}

// Handle passes the event on when the user still has tokens and returns
// entity.ErrRateLimited otherwise. Events without a user are allowed.
func (rl *RateLimiterMiddleware) Handle(ctx context.Context, ev *handlers.Event, next Next) error {
	if ev.UserID == 0 {
		next(ctx, ev)
		return nil
	}

	allowed, warning := rl.allowRequest(ev.UserID)
	if !allowed {
		ctxzap.Warn(ctx, "rate limit exceeded",
			zap.Int64("user_id", ev.UserID),
			zap.Int64("chat_id", ev.ChatID),
		)
		if warning > 0 {
			rl.sendRateLimitWarning(ctx, ev.ChatID, warning)
		}
		return entity.ErrRateLimited
	}

	next(ctx, ev)
	return nil
}

// allowRequest takes a token. When the bucket is empty it reports the
// warning number to send, zero when a warning went out recently.
func (rl *RateLimiterMiddleware) allowRequest(userID int64) (bool, int) {
	now := rl.now()

	rl.mu.Lock()
	limit, exists := rl.limits[userID]
	if !exists {
		limit = &userLimit{
			tokens:     rl.maxTokens,
			lastRefill: now,
		}
		rl.limits[userID] = limit
	}
	rl.mu.Unlock()

	limit.mu.Lock()
	defer limit.mu.Unlock()

	elapsed := now.Sub(limit.lastRefill).Seconds()
	limit.tokens += elapsed * rl.refillRate
	if limit.tokens > rl.maxTokens {
		limit.tokens = rl.maxTokens
	}
	limit.lastRefill = now

	if limit.tokens >= 1.0 {
		limit.tokens -= 1.0
		limit.warningsSent = 0
		return true, 0
	}

	if now.Sub(limit.lastWarningAt) > warningInterval {
		limit.warningsSent++
		limit.lastWarningAt = now
		return false, limit.warningsSent
	}
	return false, 0
}

// sendRateLimitWarning sends a warning message to the user
func (rl *RateLimiterMiddleware) sendRateLimitWarning(ctx context.Context, chatID int64, warningCount int) {
	var text string

	switch {
	case warningCount == 1:
		text = "⚠️ Слишком много запросов. Пожалуйста, подождите немного."
	case warningCount == 2:
		text = "⚠️ Превышен лимит запросов. Подождите ~30 секунд перед следующей попыткой."
	default:
		text = "🛑 Вы отправляете запросы слишком часто. Пожалуйста, подождите минуту."
	}

	if _, err := rl.channel.Send(ctx, entity.OutgoingMessage{ChatID: chatID, Text: text}); err != nil {
		ctxzap.Error(ctx, "failed to send rate limit warning",
			zap.Error(err),
			zap.Int64("chat_id", chatID),
		)
	}
}

// Run removes users that have been inactive for an hour until ctx is done
func (rl *RateLimiterMiddleware) Run(ctx context.Context) {
	ticker := time.NewTicker(cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			rl.cleanup(ctx)
		}
	}
}

func (rl *RateLimiterMiddleware) cleanup(ctx context.Context) {
	now := rl.now()

	rl.mu.Lock()
	defer rl.mu.Unlock()

	for userID, limit := range rl.limits {
		limit.mu.Lock()
		if now.Sub(limit.lastRefill) > inactiveThreshold {
			delete(rl.limits, userID)
			ctxzap.Debug(ctx, "cleaned up inactive user from rate limiter",
				zap.Int64("user_id", userID),
			)
		}
		limit.mu.Unlock()
	}
}
