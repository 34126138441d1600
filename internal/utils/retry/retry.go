// Package retry runs an operation with bounded exponential backoff.
package retry

import (
	"context"
	"errors"
	"math/rand"
	"sync"
	"time"
)

var (
	randMu     sync.Mutex
	randSource = rand.New(rand.NewSource(time.Now().UnixNano()))
)

// Config controls the number of attempts and the delay between them.
// Config 控制尝试次数以及两次尝试之间的延迟。
type Config struct {
	MaxAttempts  int           `yaml:"max_attempts"`  // total attempts, at least 1 / 总尝试次数，至少为 1
	InitialDelay time.Duration `yaml:"initial_delay"` // delay before the second attempt / 第二次尝试前的延迟
	MaxDelay     time.Duration `yaml:"max_delay"`     // upper bound for any delay / 延迟上限
	Multiplier   float64       `yaml:"multiplier"`    // growth factor, typically 2 / 增长因子
	Jitter       bool          `yaml:"jitter"`        // add up to 25% randomness / 增加最多 25% 的随机抖动
}

// DefaultConfig returns 3 attempts between 100ms and 2s.
// DefaultConfig 返回 3 次尝试、100ms 到 2s 的默认配置。
func DefaultConfig() Config {
	return Config{
		MaxAttempts:  3,
		InitialDelay: 100 * time.Millisecond,
		MaxDelay:     2 * time.Second,
		Multiplier:   2.0,
		Jitter:       true,
	}
}

// Normalize fills unset fields with defaults and clamps invalid ones.
// Normalize 使用默认值填充未设置的字段并修正无效值。
func (c Config) Normalize() Config {
	def := DefaultConfig()
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = def.MaxAttempts
	}
	if c.InitialDelay <= 0 {
		c.InitialDelay = def.InitialDelay
	}
	if c.MaxDelay <= 0 {
		c.MaxDelay = def.MaxDelay
	}
	if c.MaxDelay < c.InitialDelay {
		c.MaxDelay = c.InitialDelay
	}
	if c.Multiplier < 1 {
		c.Multiplier = def.Multiplier
	}
	if c.Multiplier > 1000 {
		c.Multiplier = 1000
	}
	return c
}

// Do calls fn until it succeeds, attempts are exhausted or ctx is done.
// It returns the number of attempts made and the last error.
// onRetry, if non-nil, is called before each backoff sleep.
// Do 调用 fn 直到成功、尝试耗尽或 ctx 结束。
// 返回已尝试次数和最后一次错误。
func Do(ctx context.Context, cfg Config, fn func() error, onRetry func(attempt int, err error)) (int, error) {
	cfg = cfg.Normalize()
	delay := cfg.InitialDelay

	var lastErr error
	for attempt := 1; attempt <= cfg.MaxAttempts; attempt++ {
		lastErr = fn()
		if lastErr == nil {
			return attempt, nil
		}
		if attempt == cfg.MaxAttempts {
			return attempt, lastErr
		}
		if ctx.Err() != nil {
			return attempt, errors.Join(lastErr, ctx.Err())
		}
		if onRetry != nil {
			onRetry(attempt, lastErr)
		}

		timer := time.NewTimer(withJitter(delay, cfg.Jitter))
		select {
		case <-ctx.Done():
			timer.Stop()
			return attempt, errors.Join(lastErr, ctx.Err())
		case <-timer.C:
		}

		next := time.Duration(float64(delay) * cfg.Multiplier)
		if next > cfg.MaxDelay || next <= 0 {
			next = cfg.MaxDelay
		}
		delay = next
	}
	return cfg.MaxAttempts, lastErr
}

func withJitter(d time.Duration, enabled bool) time.Duration {
	if !enabled || d < 4 {
		return d
	}
	randMu.Lock()
	j := time.Duration(randSource.Int63n(int64(d / 4)))
	randMu.Unlock()
	return d + j
}
