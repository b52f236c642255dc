package llm

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// RateLimiter throttles IntentAtlas's outbound LLM calls against a
// shared Redis counter, so concurrent genomectl workers don't
// collectively exceed the configured provider's quota mid-scan.
type RateLimiter struct {
	redis    *redis.Client
	logger   *slog.Logger
	rpmLimit int64
	tpmLimit int64
	rpdLimit int64
}

// Conservative defaults for a low-tier quota. NewRateLimiter always
// applies them; the limit fields are unexported and have no setter.
const (
	DefaultRPM = 1000      // requests per minute
	DefaultTPM = 1_000_000 // tokens per minute, input + output combined
	DefaultRPD = 10_000    // requests per day
)

// NewRateLimiter connects to the Redis instance at redisAddr and
// returns a RateLimiter backed by it, or an error if the connection
// check fails.
func NewRateLimiter(redisAddr string) (*RateLimiter, error) {
	client := redis.NewClient(&redis.Options{Addr: redisAddr, DB: 0})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("connect to redis at %s: %w", redisAddr, err)
	}

	return &RateLimiter{
		redis:    client,
		logger:   slog.Default().With("component", "llm_rate_limiter"),
		rpmLimit: DefaultRPM,
		tpmLimit: DefaultTPM,
		rpdLimit: DefaultRPD,
	}, nil
}

// CheckAndIncrement increments this minute/day's request and token
// counters and returns an error once any counter crosses its
// threshold (90% for RPM/TPM, 100% for the daily cap). The increment
// and the threshold check run inside one Lua script so concurrent
// callers across processes can't race past the limit between the two.
func (r *RateLimiter) CheckAndIncrement(ctx context.Context, estimatedTokens int64) error {
	now := time.Now()

	minuteKey := fmt.Sprintf("llm:rpm:%s", now.Format("2006-01-02T15:04"))
	tpmKey := fmt.Sprintf("llm:tpm:%s", now.Format("2006-01-02T15:04"))
	dayKey := fmt.Sprintf("llm:rpd:%s", now.Format("2006-01-02"))

	script := redis.NewScript(`
		local rpm_key = KEYS[1]
		local tpm_key = KEYS[2]
		local rpd_key = KEYS[3]
		local rpm_limit = tonumber(ARGV[1])
		local tpm_limit = tonumber(ARGV[2])
		local rpd_limit = tonumber(ARGV[3])
		local tokens = tonumber(ARGV[4])

		-- Increment counters atomically
		local rpm = redis.call('INCR', rpm_key)
		local tpm = redis.call('INCRBY', tpm_key, tokens)
		local rpd = redis.call('INCR', rpd_key)

		-- Set TTLs if keys are new (first increment)
		-- 70 seconds for minute keys (10s buffer for clock skew)
		-- 86400 seconds (24h) for daily keys
		if rpm == 1 then redis.call('EXPIRE', rpm_key, 70) end
		if tpm == tokens then redis.call('EXPIRE', tpm_key, 70) end
		if rpd == 1 then redis.call('EXPIRE', rpd_key, 86400) end

		-- Check thresholds (90% for proactive throttling, 100% for daily)
		-- We use 90% threshold to prevent hitting limits (proactive)
		if rpm >= rpm_limit * 0.9 then
			return {-1, 'RPM', rpm, rpm_limit}
		end
		if tpm >= tpm_limit * 0.9 then
			return {-2, 'TPM', tpm, tpm_limit}
		end
		if rpd >= rpd_limit then
			return {-3, 'RPD', rpd, rpd_limit}
		end

		-- Success: return current counter values
		return {0, 'OK', rpm, tpm, rpd}
	`)

	// Execute Lua script with keys and arguments
	result, err := script.Run(ctx, r.redis,
		[]string{minuteKey, tpmKey, dayKey},
		r.rpmLimit, r.tpmLimit, r.rpdLimit, estimatedTokens).Result()

	if err != nil {
		return fmt.Errorf("rate limiter Redis operation failed: %w", err)
	}

	// Parse result from Lua script
	resultSlice, ok := result.([]interface{})
	if !ok || len(resultSlice) < 2 {
		return fmt.Errorf("invalid rate limiter response format")
	}

	code := resultSlice[0].(int64)

	// Check if we hit a threshold
	if code < 0 {
		limitType := resultSlice[1].(string)
		current := resultSlice[2].(int64)
		limit := resultSlice[3].(int64)

		// Calculate wait time until next minute (for RPM/TPM) or next day (for RPD)
		var waitTime int
		if code == -3 {
			// Daily quota exceeded - calculate wait until midnight
			tomorrow := now.Add(24 * time.Hour)
			midnight := time.Date(tomorrow.Year(), tomorrow.Month(), tomorrow.Day(), 0, 0, 0, 0, tomorrow.Location())
			waitTime = int(midnight.Sub(now).Seconds())
			return fmt.Errorf("daily quota exceeded: %d/%d requests (resets in %ds)", current, limit, waitTime)
		}

		// For RPM/TPM limits, wait until next minute
		waitTime = 60 - now.Second()
		if waitTime <= 0 {
			waitTime = 1 // Minimum 1 second
		}

		return fmt.Errorf("approaching %s limit (%d/%d), wait %ds", limitType, current, limit, waitTime)
	}

	// Success - we're under all thresholds
	return nil
}

// CheckAndIncrementWithRetry wraps CheckAndIncrement, blocking and
// retrying across window resets instead of failing the caller
// immediately. A daily quota error is fatal and returned as-is;
// context cancellation during a wait returns ctx.Err().
func (r *RateLimiter) CheckAndIncrementWithRetry(ctx context.Context, estimatedTokens int64) error {
	for {
		err := r.CheckAndIncrement(ctx, estimatedTokens)
		if err == nil {
			return nil
		}
		if strings.Contains(err.Error(), "daily quota exceeded") {
			return err
		}
		if !strings.Contains(err.Error(), "wait") {
			return err
		}

		waitTime := extractWaitTime(err.Error())
		r.logger.Warn("throttling llm request", "wait_seconds", waitTime, "reason", err)

		select {
		case <-time.After(time.Duration(waitTime) * time.Second):
			continue
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

var waitTimePattern = regexp.MustCompile(`wait (\d+)s`)

// extractWaitTime pulls the wait duration out of a "... wait 45s"
// error message, defaulting to a full minute if the message doesn't
// match (defensive only; CheckAndIncrement always formats it this way).
func extractWaitTime(errMsg string) int {
	if matches := waitTimePattern.FindStringSubmatch(errMsg); len(matches) > 1 {
		if waitTime, err := strconv.Atoi(matches[1]); err == nil && waitTime > 0 {
			return waitTime
		}
	}
	return 60
}

// Close releases the underlying Redis connection.
func (r *RateLimiter) Close() error {
	if r.redis != nil {
		return r.redis.Close()
	}
	return nil
}
