package oracle

import (
	"context"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/no-ctrl/CSP/internal/domain"
	"github.com/no-ctrl/CSP/pkg/logger"
	"github.com/no-ctrl/CSP/pkg/safe"
)

// Quote is the most recently observed USD price for a symbol.
type Quote struct {
	USD        decimal.Decimal
	ObservedAt time.Time
}

type Config struct {
	PrimaryAPI      string // coingecko-style simple-price endpoint
	FallbackAPI     string // coinbase-style USD exchange-rate table endpoint
	RefreshInterval time.Duration
	SymbolDelay     time.Duration // pause between symbols, upstream rate limits
	Timeout         time.Duration
}

// Oracle keeps the latest USD quote per supported symbol, refreshed
// sequentially on a timer. A failed refresh keeps the previous quote; price
// staleness is acceptable, price corruption is not.
type Oracle struct {
	cfg    Config
	httpc  httpDoer
	mu     sync.RWMutex
	quotes map[domain.Currency]Quote
}

var _ domain.PriceOracle = (*Oracle)(nil)

// coingecko ids per symbol.
var externalIDs = map[domain.Currency]string{
	domain.CurrencyBTC:  "bitcoin",
	domain.CurrencyETH:  "ethereum",
	domain.CurrencyLTC:  "litecoin",
	domain.CurrencyBNB:  "binancecoin",
	domain.CurrencyUSDT: "tether",
}

func New(cfg Config) *Oracle {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Second
	}
	if cfg.RefreshInterval <= 0 {
		cfg.RefreshInterval = time.Minute
	}
	return &Oracle{
		cfg:    cfg,
		httpc:  newHTTPClient(cfg.Timeout),
		quotes: make(map[domain.Currency]Quote, len(domain.Currencies)),
	}
}

// UsdPrice returns the latest quote for the currency. ok=false means no
// good quote has ever been observed; callers must treat that as "unknown",
// never as zero.
func (o *Oracle) UsdPrice(currency domain.Currency) (decimal.Decimal, bool) {
	o.mu.RLock()
	q, ok := o.quotes[currency]
	o.mu.RUnlock()
	if !ok {
		return decimal.Zero, false
	}
	return q.USD, true
}

// Start refreshes once immediately, then on every tick until ctx is done.
// The loop never blocks request handling; readers go through UsdPrice only.
func (o *Oracle) Start(ctx context.Context) {
	safe.GoCtx(ctx, func(ctx context.Context) {
		o.RefreshAll(ctx)

		ticker := time.NewTicker(o.cfg.RefreshInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				o.RefreshAll(ctx)
			}
		}
	})
}

// RefreshAll walks the symbols sequentially with the configured inter-symbol
// delay. Primary first, fallback on any failure, previous quote kept when
// both fail.
func (o *Oracle) RefreshAll(ctx context.Context) {
	logger.Debug(ctx, "refreshing crypto prices")

	for i, currency := range domain.Currencies {
		if i > 0 && o.cfg.SymbolDelay > 0 {
			select {
			case <-ctx.Done():
				return
			case <-time.After(o.cfg.SymbolDelay):
			}
		}

		price, err := o.fetchPrimary(ctx, currency)
		if err != nil {
			logger.Warn(ctx, "primary price source failed",
				zap.String("symbol", currency.String()),
				zap.Error(err),
			)
			price, err = o.fetchFallback(ctx, currency)
		}
		if err != nil {
			// Stale quote beats a corrupt one; leave the previous value alone.
			logger.Warn(ctx, "price refresh failed, keeping previous quote",
				zap.String("symbol", currency.String()),
				zap.Error(err),
			)
			continue
		}

		o.mu.Lock()
		o.quotes[currency] = Quote{USD: price, ObservedAt: time.Now()}
		o.mu.Unlock()

		logger.Debug(ctx, "price updated",
			zap.String("symbol", currency.String()),
			zap.String("usd", price.String()),
		)
	}
}
