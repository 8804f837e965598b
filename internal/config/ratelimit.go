package config

import "time"

// RateLimitConfig drives a Redis token bucket.  LoadRateLimitConfig returns
// the bucket shared by every /v1 request; Writes derives the tighter one
// that sits behind editor authentication on tracker writes.
type RateLimitConfig struct {
    Enabled        bool
    Capacity       int           // burst size
    RefillTokens   int           // tokens added per RefillInterval
    RefillInterval time.Duration
    TTL            time.Duration // idle buckets expire after this
    KeyStrategy    string        // ip, user, route, ip_user, ip_route or ip_user_route
    Prefix         string
    Debug          bool

    // WriteCapacity bounds tracker writes per editor.  Imports replace a
    // whole topic, so editors get a smaller burst than readers.
    WriteCapacity int
}

// LoadRateLimitConfig reads RATE_LIMIT_* variables.  Seating reads are cheap
// and cached, so the shared bucket is generous: 120 requests refilled at two
// per second, keyed by client IP and route.
func LoadRateLimitConfig() RateLimitConfig {
    c := RateLimitConfig{
        Enabled:        envBool("RATE_LIMIT_ENABLED", true),
        Capacity:       envInt("RATE_LIMIT_CAPACITY", 120),
        RefillTokens:   envInt("RATE_LIMIT_REFILL_TOKENS", 2),
        RefillInterval: envDur("RATE_LIMIT_REFILL_INTERVAL", time.Second),
        TTL:            envDur("RATE_LIMIT_TTL", 10*time.Minute),
        KeyStrategy:    envStr("RATE_LIMIT_KEY_STRATEGY", "ip_route"),
        Prefix:         envStr("RATE_LIMIT_PREFIX", "rl"),
        Debug:          envBool("RATE_LIMIT_DEBUG", false),
        WriteCapacity:  envInt("RATE_LIMIT_WRITE_CAPACITY", 20),
    }
    return c.normalized()
}

// Writes returns the bucket for tracker writes: keyed by editor, with its
// own key prefix and WriteCapacity as the burst.
func (c RateLimitConfig) Writes() RateLimitConfig {
    w := c
    w.Capacity = c.WriteCapacity
    w.RefillTokens = 1
    w.KeyStrategy = "user"
    w.Prefix = c.Prefix + ":write"
    return w.normalized()
}

func (c RateLimitConfig) normalized() RateLimitConfig {
    if c.Capacity < 1 {
        c.Capacity = 1
    }
    if c.WriteCapacity < 1 {
        c.WriteCapacity = 1
    }
    if c.RefillTokens < 1 {
        c.RefillTokens = 1
    }
    if c.RefillInterval <= 0 {
        c.RefillInterval = time.Second
    }
    // A bucket must outlive a full refill or it resets to Capacity early.
    if minTTL := time.Duration(c.Capacity/c.RefillTokens+1) * c.RefillInterval; c.TTL < minTTL {
        c.TTL = minTTL
    }
    return c
}
