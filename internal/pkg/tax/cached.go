package tax

import (
	"context"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"
)

// Store is a string key-value cache with expiry.
type Store interface {
	Get(ctx context.Context, key string) (value string, found bool, err error)
	Set(ctx context.Context, key string, value string, ttl time.Duration) error
}

// CachedOracle memoizes another oracle per annual income. Cache errors are
// logged and otherwise ignored.
type CachedOracle struct {
	next  Oracle
	store Store
	ttl   time.Duration
}

func NewCachedOracle(next Oracle, store Store, ttl time.Duration) *CachedOracle {
	return &CachedOracle{next: next, store: store, ttl: ttl}
}

func cacheKey(income decimal.Decimal) string {
	return "tax:annual:" + income.StringFixed(2)
}

func (o *CachedOracle) AnnualTax(ctx context.Context, annualIncome decimal.Decimal) (decimal.Decimal, error) {
	key := cacheKey(annualIncome)

	if value, found, err := o.store.Get(ctx, key); err != nil {
		slog.Warn("tax cache read failed", "key", key, "error", err)
	} else if found {
		if tax, err := decimal.NewFromString(value); err == nil {
			return tax, nil
		}
	}

	tax, err := o.next.AnnualTax(ctx, annualIncome)
	if err != nil {
		return decimal.Zero, err
	}

	if err := o.store.Set(ctx, key, tax.String(), o.ttl); err != nil {
		slog.Warn("tax cache write failed", "key", key, "error", err)
	}
	return tax, nil
}
