package price

import (
	"context" // Context for Redis operations
	"errors"  // redis.Nil detection
	"time"    // Quote TTL and ticker

	"github.com/redis/go-redis/v9"  // Redis client
	"github.com/shopspring/decimal" // Fixed-point prices
	"github.com/sirupsen/logrus"    // Logrus for structured logging
)

// LastQuoteKey holds the most recently published quote.
const LastQuoteKey = "price:coinx:last"

// Feed publishes generated quotes to Redis so every replica sees the same last price.
type Feed struct {
	gen *Generator    // Price source
	rdb *redis.Client // Redis client
	ttl time.Duration // Lifetime of a published quote
}

// NewFeed creates a feed. Published quotes expire after ttl.
func NewFeed(gen *Generator, rdb *redis.Client, ttl time.Duration) *Feed {
	return &Feed{gen: gen, rdb: rdb, ttl: ttl}
}

// Quote generates a price and publishes it as the last quote.
func (f *Feed) Quote(ctx context.Context) (decimal.Decimal, error) {
	p := f.gen.Current()
	if err := f.rdb.Set(ctx, LastQuoteKey, p.String(), f.ttl).Err(); err != nil {
		return p, err
	}
	return p, nil
}

// LastQuote returns the last published quote. ok is false when none is live.
func (f *Feed) LastQuote(ctx context.Context) (p decimal.Decimal, ok bool, err error) {
	val, err := f.rdb.Get(ctx, LastQuoteKey).Result()
	if errors.Is(err, redis.Nil) {
		return decimal.Zero, false, nil // Nothing published yet
	} else if err != nil {
		return decimal.Zero, false, err
	}
	p, err = decimal.NewFromString(val)
	if err != nil {
		return decimal.Zero, false, err
	}
	return p, true, nil
}

// Run publishes a quote every interval until ctx is done.
func (f *Feed) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := f.Quote(ctx); err != nil && ctx.Err() == nil {
				logrus.WithError(err).Warn("Failed to publish price quote")
			}
		}
	}
}
