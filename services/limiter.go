package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// ScanLimiter guards the detection pipeline against abusive scanning. Two
// implementations share the contract: a Redis-backed limiter for multi-process
// deployments and an in-memory one used when no Redis is configured.
type ScanLimiter interface {
	// AllowDaily reports whether the user is under the daily detection cap.
	AllowDaily(ctx context.Context, userID string) (bool, error)
	// AllowInterval reports whether enough time has passed since the user's
	// previous scan.
	AllowInterval(ctx context.Context, userID string) (bool, error)
	// RecordScan registers a successful detection against both limits.
	RecordScan(ctx context.Context, userID string) error
}

// LimiterConfig defines scan limit rules
type LimiterConfig struct {
	DailyLimit  int
	MinInterval time.Duration
}

// RedisScanLimiter tracks scan counters in Redis.
type RedisScanLimiter struct {
	rdb    *redis.Client
	config LimiterConfig
}

func NewRedisScanLimiter(rdb *redis.Client, config LimiterConfig) *RedisScanLimiter {
	return &RedisScanLimiter{rdb: rdb, config: config}
}

func dailyKey(userID string, now time.Time) string {
	return fmt.Sprintf("scan:daily:%s:%s", userID, now.Format("2006-01-02"))
}

func intervalKey(userID string) string {
	return fmt.Sprintf("scan:last:%s", userID)
}

func (rl *RedisScanLimiter) AllowDaily(ctx context.Context, userID string) (bool, error) {
	if rl == nil || rl.rdb == nil {
		return false, fmt.Errorf("Redis client not available")
	}

	count, err := rl.rdb.Get(ctx, dailyKey(userID, time.Now())).Int()
	if err == redis.Nil {
		return true, nil
	} else if err != nil {
		return false, err
	}
	return count < rl.config.DailyLimit, nil
}

func (rl *RedisScanLimiter) AllowInterval(ctx context.Context, userID string) (bool, error) {
	if rl == nil || rl.rdb == nil {
		return false, fmt.Errorf("Redis client not available")
	}

	exists, err := rl.rdb.Exists(ctx, intervalKey(userID)).Result()
	if err != nil {
		return false, err
	}
	return exists == 0, nil
}

func (rl *RedisScanLimiter) RecordScan(ctx context.Context, userID string) error {
	if rl == nil || rl.rdb == nil {
		return fmt.Errorf("Redis client not available")
	}

	key := dailyKey(userID, time.Now())
	pipe := rl.rdb.TxPipeline()
	pipe.Incr(ctx, key)
	pipe.Expire(ctx, key, 24*time.Hour)
	pipe.Set(ctx, intervalKey(userID), time.Now().Unix(), rl.config.MinInterval)
	_, err := pipe.Exec(ctx)
	return err
}

// MemoryScanLimiter keeps per-user counters in process memory.
type MemoryScanLimiter struct {
	mu       sync.Mutex
	config   LimiterConfig
	counts   map[string]int
	day      map[string]string
	lastScan map[string]time.Time
}

func NewMemoryScanLimiter(config LimiterConfig) *MemoryScanLimiter {
	return &MemoryScanLimiter{
		config:   config,
		counts:   make(map[string]int),
		day:      make(map[string]string),
		lastScan: make(map[string]time.Time),
	}
}

func (ml *MemoryScanLimiter) AllowDaily(_ context.Context, userID string) (bool, error) {
	ml.mu.Lock()
	defer ml.mu.Unlock()
	today := time.Now().Format("2006-01-02")
	if ml.day[userID] != today {
		return true, nil
	}
	return ml.counts[userID] < ml.config.DailyLimit, nil
}

func (ml *MemoryScanLimiter) AllowInterval(_ context.Context, userID string) (bool, error) {
	ml.mu.Lock()
	defer ml.mu.Unlock()
	last, ok := ml.lastScan[userID]
	if !ok {
		return true, nil
	}
	return time.Since(last) >= ml.config.MinInterval, nil
}

func (ml *MemoryScanLimiter) RecordScan(_ context.Context, userID string) error {
	ml.mu.Lock()
	defer ml.mu.Unlock()
	today := time.Now().Format("2006-01-02")
	if ml.day[userID] != today {
		ml.day[userID] = today
		ml.counts[userID] = 0
	}
	ml.counts[userID]++
	ml.lastScan[userID] = time.Now()
	return nil
}
