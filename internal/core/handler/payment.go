package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/no-ctrl/CSP/internal/core/service"
	"github.com/no-ctrl/CSP/internal/domain"
	"github.com/no-ctrl/CSP/pkg/common"
	"github.com/no-ctrl/CSP/pkg/xerr"
)

// Payment exposes the invoice query/create and payment check operations.
type Payment struct {
	svc *service.PaymentService
	db  *gorm.DB
}

func NewPayment(svc *service.PaymentService, db *gorm.DB) *Payment {
	return &Payment{svc: svc, db: db}
}

// Details handles GET /api/payment-details?currency=&userId=&amount=.
// Older clients send crypto= and total=; both spellings are accepted.
func (p *Payment) Details(c *gin.Context) {
	rawCurrency := c.Query("currency")
	if rawCurrency == "" {
		rawCurrency = c.Query("crypto")
	}
	rawAmount := c.Query("amount")
	if rawAmount == "" {
		rawAmount = c.Query("total")
	}
	userID := c.Query("userId")

	if rawCurrency == "" || rawAmount == "" || userID == "" {
		common.Fail(c, http.StatusBadRequest, xerr.RequestParamsError, "missing required parameters")
		return
	}

	currency, err := domain.ParseCurrency(rawCurrency)
	if err != nil {
		common.Fail(c, http.StatusBadRequest, xerr.UnsupportedCurrency, xerr.MapErrMsg(xerr.UnsupportedCurrency))
		return
	}

	amount, err := decimal.NewFromString(rawAmount)
	if err != nil || !amount.IsPositive() {
		common.Fail(c, http.StatusBadRequest, xerr.RequestParamsError, "amount must be a positive number")
		return
	}

	details, err := p.svc.PaymentDetails(c.Request.Context(), userID, currency, amount)
	if err != nil {
		common.FailLogged(c, http.StatusInternalServerError, xerr.ServerCommonError, "internal server error", err)
		return
	}

	common.Success(c, gin.H{
		"address":              details.Address,
		"unitPrice":            details.UnitPrice,
		"requiredNativeAmount": details.RequiredNative,
		"paidUsd":              details.PaidUSD,
	})
}

type checkPaymentReq struct {
	Currency string          `json:"currency"`
	Crypto   string          `json:"crypto"` // legacy spelling
	Amount   decimal.Decimal `json:"amount"`
	UserID   string          `json:"userId"`
}

// CheckPayment handles POST /api/check-payment.
func (p *Payment) CheckPayment(c *gin.Context) {
	var req checkPaymentReq
	if err := c.ShouldBindJSON(&req); err != nil {
		common.Fail(c, http.StatusBadRequest, xerr.RequestParamsError, "invalid request body")
		return
	}

	rawCurrency := req.Currency
	if rawCurrency == "" {
		rawCurrency = req.Crypto
	}
	if rawCurrency == "" || req.UserID == "" || !req.Amount.IsPositive() {
		common.Fail(c, http.StatusBadRequest, xerr.RequestParamsError, "missing required parameters")
		return
	}

	currency, err := domain.ParseCurrency(rawCurrency)
	if err != nil {
		common.Fail(c, http.StatusBadRequest, xerr.UnsupportedCurrency, xerr.MapErrMsg(xerr.UnsupportedCurrency))
		return
	}

	result, err := p.svc.Check(c.Request.Context(), req.UserID, currency)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			common.Fail(c, http.StatusNotFound, xerr.RecordNotFound, "no invoice for this user and currency")
			return
		}
		common.FailLogged(c, http.StatusInternalServerError, xerr.ServerCommonError, "internal server error", err)
		return
	}

	data := gin.H{
		"paymentCompleted": result.Completed,
		"amountPaid":       result.PaidUSD,
	}
	if result.Completed {
		data["uniqueCode"] = result.Code
	}
	common.Success(c, data)
}

// Health handles GET /health with a database ping.
func (p *Payment) Health(c *gin.Context) {
	sqlDB, err := p.db.DB()
	if err == nil {
		err = sqlDB.PingContext(c.Request.Context())
	}
	if err != nil {
		common.Fail(c, http.StatusInternalServerError, xerr.DbError, "database is not reachable")
		return
	}
	common.Success(c, gin.H{"status": "ok"})
}
