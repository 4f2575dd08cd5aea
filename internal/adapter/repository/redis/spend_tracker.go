package redis

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
)

// spendKeyTTL keeps a day's counter around past midnight in every timezone.
const spendKeyTTL = 48 * time.Hour

// SpendTracker implements usecase.DailySpendTracker using Redis. Spend is
// accumulated per wallet per calendar day and expires on its own.
type SpendTracker struct {
	client *redis.Client
}

// NewSpendTracker creates a new SpendTracker.
func NewSpendTracker(client *redis.Client) *SpendTracker {
	return &SpendTracker{client: client}
}

func spendKey(walletID string, day time.Time) string {
	return "spend:" + walletID + ":" + day.UTC().Format("2006-01-02")
}

// Add accumulates spend for the wallet's day.
func (s *SpendTracker) Add(ctx context.Context, walletID string, day time.Time, amount decimal.Decimal) error {
	key := spendKey(walletID, day)
	f, _ := amount.Float64()

	pipe := s.client.TxPipeline()
	pipe.IncrByFloat(ctx, key, f)
	pipe.Expire(ctx, key, spendKeyTTL)
	_, err := pipe.Exec(ctx)

	return err
}

// SpentOn returns the accumulated spend for the wallet's day.
func (s *SpendTracker) SpentOn(ctx context.Context, walletID string, day time.Time) (decimal.Decimal, error) {
	val, err := s.client.Get(ctx, spendKey(walletID, day)).Result()
	if err == redis.Nil {
		return decimal.Zero, nil
	}
	if err != nil {
		return decimal.Zero, err
	}

	return decimal.NewFromString(val)
}
