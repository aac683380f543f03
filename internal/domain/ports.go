package domain

import (
	"context"

	"github.com/shopspring/decimal"
)

// Wallet is a freshly provisioned deposit address with its secret material.
type Wallet struct {
	Address string
	Secret  string
}

// WalletProvisioner derives a new deposit wallet for a currency.
// Pure CPU work: a failure is fatal for the request, never retried.
type WalletProvisioner interface {
	Generate(currency Currency) (Wallet, error)
}

// BalanceGateway reads the current on-chain balance of an address in the
// chain's human-readable unit. An upstream failure is an explicit error
// (wrapping ErrBalanceUnavailable), never a sentinel zero.
type BalanceGateway interface {
	FetchBalance(ctx context.Context, currency Currency, address string) (decimal.Decimal, error)
}

// PriceOracle answers the latest known USD price for a currency.
// ok=false means "unknown", which is a valid state distinct from zero.
type PriceOracle interface {
	UsdPrice(currency Currency) (decimal.Decimal, bool)
}

// InvoiceRepo is the durable payment store keyed by (userID, currency).
type InvoiceRepo interface {
	// GetOrNone returns (nil, nil) when no row exists.
	GetOrNone(ctx context.Context, userID string, currency Currency) (*Invoice, error)
	// Create inserts a new invoice; a concurrent duplicate insert returns
	// ErrDuplicateInvoice and the loser must fall back to reading the winner.
	Create(ctx context.Context, inv *Invoice) error
	// UpdateRequiredAmount adjusts the USD target; ignored once completed.
	UpdateRequiredAmount(ctx context.Context, userID string, currency Currency, amount decimal.Decimal) error
	// RecordObservedPayment persists the last observed USD value.
	RecordObservedPayment(ctx context.Context, userID string, currency Currency, paidUSD decimal.Decimal) error
	// MarkCompletedWithCode completes the invoice, assigning code only if no
	// code exists yet. It returns the code actually stored, which under a
	// race may belong to a concurrent winner.
	MarkCompletedWithCode(ctx context.Context, userID string, currency Currency, code string) (string, error)
}
