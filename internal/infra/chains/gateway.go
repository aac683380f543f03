package chains

import (
	"context"
	"fmt"
	"math/big"
	"net/http"
	"time"

	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/shopspring/decimal"
	"github.com/sony/gobreaker/v2"
	"go.uber.org/zap"

	"github.com/no-ctrl/CSP/internal/domain"
	"github.com/no-ctrl/CSP/pkg/logger"
)

type Config struct {
	BitcoinAPI       string // explorer base, GET {base}/{address} -> {"final_balance": satoshi}
	LitecoinAPI      string // same wire shape as BitcoinAPI
	EthereumNode     string // JSON-RPC endpoint
	BscAPI           string // etherscan-style, module=account&action=balance
	BscAPIKey        string
	TronAPI          string // base of the v1 accounts endpoint
	TronUSDTContract string // TRC-20 contract whose balance counts as USDT
	Timeout          time.Duration
}

// Gateway reads on-chain balances, one upstream per currency, each behind its
// own circuit breaker. A failed or open-circuit fetch is an explicit
// ErrBalanceUnavailable: callers must not confuse it with a true zero.
type Gateway struct {
	cfg      Config
	httpc    *http.Client
	eth      *ethclient.Client
	breakers map[domain.Currency]*gobreaker.CircuitBreaker[decimal.Decimal]
}

var _ domain.BalanceGateway = (*Gateway)(nil)

func New(cfg Config) (*Gateway, error) {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	eth, err := ethclient.Dial(cfg.EthereumNode)
	if err != nil {
		return nil, fmt.Errorf("dial ethereum node: %w", err)
	}

	g := &Gateway{
		cfg:      cfg,
		httpc:    &http.Client{Timeout: cfg.Timeout},
		eth:      eth,
		breakers: make(map[domain.Currency]*gobreaker.CircuitBreaker[decimal.Decimal], len(domain.Currencies)),
	}
	for _, c := range domain.Currencies {
		g.breakers[c] = gobreaker.NewCircuitBreaker[decimal.Decimal](gobreaker.Settings{
			Name:    "balance-" + c.String(),
			Timeout: 30 * time.Second,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= 5
			},
		})
	}
	return g, nil
}

func (g *Gateway) FetchBalance(ctx context.Context, currency domain.Currency, address string) (decimal.Decimal, error) {
	breaker, ok := g.breakers[currency]
	if !ok {
		return decimal.Zero, domain.ErrUnsupportedCurrency
	}

	amount, err := breaker.Execute(func() (decimal.Decimal, error) {
		return g.fetch(ctx, currency, address)
	})
	if err != nil {
		logger.Warn(ctx, "balance fetch failed",
			zap.String("currency", currency.String()),
			zap.String("address", address),
			zap.Error(err),
		)
		return decimal.Zero, fmt.Errorf("%s: %w", currency, domain.ErrBalanceUnavailable)
	}
	return amount, nil
}

func (g *Gateway) fetch(ctx context.Context, currency domain.Currency, address string) (decimal.Decimal, error) {
	switch currency {
	case domain.CurrencyBTC:
		return g.utxoBalance(ctx, g.cfg.BitcoinAPI, address)
	case domain.CurrencyLTC:
		return g.utxoBalance(ctx, g.cfg.LitecoinAPI, address)
	case domain.CurrencyETH:
		return g.ethBalance(ctx, address)
	case domain.CurrencyBNB:
		return g.bscBalance(ctx, address)
	case domain.CurrencyUSDT:
		return g.trc20Balance(ctx, address)
	}
	return decimal.Zero, domain.ErrUnsupportedCurrency
}

// smallestToUnit converts a smallest-unit integer into the chain's
// human-readable unit, e.g. satoshi -> BTC with decimals = 8.
func smallestToUnit(v *big.Int, decimals int32) decimal.Decimal {
	return decimal.NewFromBigInt(v, 0).Shift(-decimals)
}
