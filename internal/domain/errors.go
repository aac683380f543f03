package domain

import "errors"

var (
	// ErrNotFound: operation referenced an invoice that does not exist.
	ErrNotFound = errors.New("invoice not found")
	// ErrDuplicateInvoice: a concurrent creator already inserted this key.
	ErrDuplicateInvoice = errors.New("invoice already exists")
	// ErrUnsupportedCurrency: caller asked for a currency outside the fixed set.
	ErrUnsupportedCurrency = errors.New("unsupported currency")
	// ErrBalanceUnavailable: the chain balance upstream failed; distinct from a
	// true zero balance, callers must treat it as "no progress this cycle".
	ErrBalanceUnavailable = errors.New("balance source unavailable")
)
