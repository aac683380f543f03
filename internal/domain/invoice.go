package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Invoice is the per-(user, currency) deposit record, tracked from creation
// through completion. Address and Secret are written once at creation and
// never regenerated; Completed only ever flips false -> true; the
// confirmation code is assigned exactly once and is immutable afterwards.
type Invoice struct {
	ID       int64    `gorm:"primaryKey"`
	UserID   string   `gorm:"uniqueIndex:idx_user_currency;size:64"`
	Currency Currency `gorm:"uniqueIndex:idx_user_currency;size:16"`

	Address string `gorm:"uniqueIndex;size:128"`
	// Chain-specific secret (mnemonic or raw key), plaintext by the stated
	// trust boundary of this core. Never serialized to clients.
	Secret string `json:"-" gorm:"size:512"`

	RequiredUSD decimal.Decimal `gorm:"type:decimal(36,18);default:0"`
	// Last observed USD value, recomputed from scratch every reconciliation.
	PaidUSD decimal.Decimal `gorm:"type:decimal(36,18);default:0"`

	Completed        bool
	ConfirmationCode *string `gorm:"size:64"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (Invoice) TableName() string { return "invoices" }
