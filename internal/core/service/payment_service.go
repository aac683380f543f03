package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/no-ctrl/CSP/internal/domain"
	"github.com/no-ctrl/CSP/pkg/logger"
)

// PaymentService is the reconciliation engine: it owns invoice creation and
// the per-check state machine Created -> Monitoring -> Completed.
type PaymentService struct {
	repo     domain.InvoiceRepo
	wallet   domain.WalletProvisioner
	balances domain.BalanceGateway
	oracle   domain.PriceOracle
}

func NewPaymentService(
	repo domain.InvoiceRepo,
	wallet domain.WalletProvisioner,
	balances domain.BalanceGateway,
	oracle domain.PriceOracle,
) *PaymentService {
	return &PaymentService{
		repo:     repo,
		wallet:   wallet,
		balances: balances,
		oracle:   oracle,
	}
}

// CheckResult is one reconciliation outcome; it carries no identity and is
// never persisted beyond the invoice fields it reflects.
type CheckResult struct {
	Completed bool
	Code      string
	PaidUSD   decimal.Decimal
}

// InvoiceDetails is the client-facing view of an invoice.
type InvoiceDetails struct {
	Address        string
	UnitPrice      decimal.Decimal
	RequiredNative decimal.Decimal
	PaidUSD        decimal.Decimal
}

// PaymentDetails returns the invoice for (userID, currency), creating it on
// first request. A creation race resolves to exactly one winner; the loser
// reads and returns the winner's row, so the address and secret for a key
// never change once assigned.
func (s *PaymentService) PaymentDetails(ctx context.Context, userID string, currency domain.Currency, requiredUSD decimal.Decimal) (*InvoiceDetails, error) {
	inv, err := s.repo.GetOrNone(ctx, userID, currency)
	if err != nil {
		return nil, err
	}

	switch {
	case inv == nil:
		w, err := s.wallet.Generate(currency)
		if err != nil {
			logger.Error(ctx, "wallet generation failed",
				zap.String("currency", currency.String()),
				zap.Error(err),
			)
			return nil, err
		}
		inv = &domain.Invoice{
			UserID:      userID,
			Currency:    currency,
			Address:     w.Address,
			Secret:      w.Secret,
			RequiredUSD: requiredUSD,
			PaidUSD:     decimal.Zero,
		}
		if err := s.repo.Create(ctx, inv); err != nil {
			if !errors.Is(err, domain.ErrDuplicateInvoice) {
				return nil, err
			}
			// Lost the creation race; the winner's address stands.
			inv, err = s.repo.GetOrNone(ctx, userID, currency)
			if err != nil {
				return nil, err
			}
			if inv == nil {
				return nil, domain.ErrNotFound
			}
		} else {
			logger.Info(ctx, "invoice created",
				zap.String("user", userID),
				zap.String("currency", currency.String()),
				zap.String("address", inv.Address),
			)
		}

	case !inv.Completed:
		// Target stays adjustable until the invoice completes.
		if err := s.repo.UpdateRequiredAmount(ctx, userID, currency, requiredUSD); err != nil {
			return nil, err
		}
		inv.RequiredUSD = requiredUSD
	}

	return s.details(inv), nil
}

func (s *PaymentService) details(inv *domain.Invoice) *InvoiceDetails {
	d := &InvoiceDetails{
		Address: inv.Address,
		PaidUSD: inv.PaidUSD,
	}
	if price, ok := s.oracle.UsdPrice(inv.Currency); ok && price.IsPositive() {
		d.UnitPrice = price
		d.RequiredNative = inv.RequiredUSD.Div(price)
	}
	return d
}

// Check runs one reconciliation cycle for (userID, currency).
//
// The observed USD value is re-derived from the absolute on-chain balance on
// every call, so checks are idempotent: repeating or retrying one can never
// double-count. An unavailable balance source yields a no-progress cycle
// (last persisted value, not completed), never a fake zero; an unknown price
// values the cycle at zero, so an unpriceable asset can never complete.
func (s *PaymentService) Check(ctx context.Context, userID string, currency domain.Currency) (*CheckResult, error) {
	inv, err := s.repo.GetOrNone(ctx, userID, currency)
	if err != nil {
		return nil, err
	}
	if inv == nil {
		return nil, domain.ErrNotFound
	}

	// Completed is terminal; the stored code is the answer forever.
	if inv.Completed && inv.ConfirmationCode != nil {
		return &CheckResult{Completed: true, Code: *inv.ConfirmationCode, PaidUSD: inv.PaidUSD}, nil
	}

	balance, err := s.balances.FetchBalance(ctx, currency, inv.Address)
	if err != nil {
		if errors.Is(err, domain.ErrBalanceUnavailable) {
			// No progress this cycle; do not overwrite the observed value.
			return &CheckResult{Completed: false, PaidUSD: inv.PaidUSD}, nil
		}
		return nil, err
	}

	observed := decimal.Zero
	if price, ok := s.oracle.UsdPrice(currency); ok {
		observed = balance.Mul(price)
	}

	// Persist regardless of outcome so partial progress survives restarts.
	if err := s.repo.RecordObservedPayment(ctx, userID, currency, observed); err != nil {
		logger.Error(ctx, "record observed payment failed",
			zap.String("user", userID),
			zap.String("currency", currency.String()),
			zap.Error(err),
		)
	}

	if observed.LessThan(inv.RequiredUSD) {
		return &CheckResult{Completed: false, PaidUSD: observed}, nil
	}

	// Payment satisfied. Minting is best-effort-then-reread: a concurrent
	// check may land its code first, and whichever code is stored wins.
	stored, err := s.repo.MarkCompletedWithCode(ctx, userID, currency, uuid.NewString())
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "invoice completed",
		zap.String("user", userID),
		zap.String("currency", currency.String()),
		zap.String("paid_usd", observed.String()),
	)

	return &CheckResult{Completed: true, Code: stored, PaidUSD: observed}, nil
}
