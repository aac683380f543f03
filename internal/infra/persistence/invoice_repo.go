package persistence

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/no-ctrl/CSP/internal/domain"
	"github.com/no-ctrl/CSP/pkg/xerr"
)

type Repo struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Repo {
	return &Repo{db: db}
}

var _ domain.InvoiceRepo = (*Repo)(nil)

func (r *Repo) GetOrNone(ctx context.Context, userID string, currency domain.Currency) (*domain.Invoice, error) {
	var inv domain.Invoice
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND currency = ?", userID, currency).
		First(&inv).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, xerr.New(xerr.DbError, fmt.Sprintf("query invoice failed: %v", err))
	}
	return &inv, nil
}

// Create inserts the invoice. The unique (user_id, currency) index is what
// resolves concurrent creation races to exactly one winner.
func (r *Repo) Create(ctx context.Context, inv *domain.Invoice) error {
	err := r.db.WithContext(ctx).Create(inv).Error
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return domain.ErrDuplicateInvoice
		}
		return xerr.New(xerr.DbError, fmt.Sprintf("create invoice failed: %v", err))
	}
	return nil
}

// UpdateRequiredAmount moves the USD target. The completed guard makes the
// call a no-op on finished invoices; RowsAffected == 0 is not an error.
func (r *Repo) UpdateRequiredAmount(ctx context.Context, userID string, currency domain.Currency, amount decimal.Decimal) error {
	res := r.db.WithContext(ctx).Model(&domain.Invoice{}).
		Where("user_id = ? AND currency = ? AND completed = ?", userID, currency, false).
		Update("required_usd", amount)
	if res.Error != nil {
		return xerr.New(xerr.DbError, fmt.Sprintf("update required amount failed: %v", res.Error))
	}
	return nil
}

func (r *Repo) RecordObservedPayment(ctx context.Context, userID string, currency domain.Currency, paidUSD decimal.Decimal) error {
	res := r.db.WithContext(ctx).Model(&domain.Invoice{}).
		Where("user_id = ? AND currency = ?", userID, currency).
		Update("paid_usd", paidUSD)
	if res.Error != nil {
		return xerr.New(xerr.DbError, fmt.Sprintf("record observed payment failed: %v", res.Error))
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// MarkCompletedWithCode assigns code only where no code is present yet, then
// re-reads the row. Two concurrent callers both end up returning the single
// code that actually landed.
func (r *Repo) MarkCompletedWithCode(ctx context.Context, userID string, currency domain.Currency, code string) (string, error) {
	res := r.db.WithContext(ctx).Model(&domain.Invoice{}).
		Where("user_id = ? AND currency = ? AND confirmation_code IS NULL", userID, currency).
		Updates(map[string]interface{}{
			"completed":         true,
			"confirmation_code": code,
		})
	if res.Error != nil {
		return "", xerr.New(xerr.DbError, fmt.Sprintf("mark completed failed: %v", res.Error))
	}

	// Whether this caller won or lost the assignment, the stored code wins.
	inv, err := r.GetOrNone(ctx, userID, currency)
	if err != nil {
		return "", err
	}
	if inv == nil {
		return "", domain.ErrNotFound
	}
	if inv.ConfirmationCode == nil {
		return "", xerr.New(xerr.DbError, "completed invoice has no confirmation code")
	}
	return *inv.ConfirmationCode, nil
}
