package ws

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/no-ctrl/CSP/internal/core/service"
	"github.com/no-ctrl/CSP/internal/domain"
	"github.com/no-ctrl/CSP/pkg/logger"
	"github.com/no-ctrl/CSP/pkg/ratelimit"
)

const (
	maxFrameBytes = 1 << 10
	writeWait     = 10 * time.Second
)

// clientFrame is one monitoring request from the browser.
type clientFrame struct {
	Currency string          `json:"currency"`
	Crypto   string          `json:"crypto"` // legacy spelling
	Amount   decimal.Decimal `json:"amount"`
	UserID   string          `json:"userId"`
}

// serverFrame answers each client frame: either an error, or the
// reconciliation outcome.
type serverFrame struct {
	Error            string           `json:"error,omitempty"`
	PaymentCompleted *bool            `json:"paymentCompleted,omitempty"`
	UniqueCode       string           `json:"uniqueCode,omitempty"`
	AmountPaid       *decimal.Decimal `json:"amountPaid,omitempty"`
}

// Handler runs the notification channel: one connection per client, the
// client paces the checks, every inbound frame triggers exactly one engine
// call. Nothing here closes the connection on a failed check.
type Handler struct {
	svc      *service.PaymentService
	limits   *ratelimit.Store
	upgrader websocket.Upgrader
}

func NewHandler(svc *service.PaymentService, limits *ratelimit.Store) *Handler {
	return &Handler{
		svc:    svc,
		limits: limits,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Browser origin enforcement lives on the HTTP layer.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// Serve upgrades the request and pumps frames until the client disconnects.
func (h *Handler) Serve(c *gin.Context) {
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logger.Warn(c, "websocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()
	conn.SetReadLimit(maxFrameBytes)

	ctx := c.Request.Context()

	for {
		_, payload, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logger.Debug(ctx, "websocket closed unexpectedly", zap.Error(err))
			}
			return
		}

		reply := h.handleFrame(c, payload)
		conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := conn.WriteJSON(reply); err != nil {
			logger.Debug(ctx, "websocket write failed", zap.Error(err))
			return
		}
	}
}

func (h *Handler) handleFrame(c *gin.Context, payload []byte) serverFrame {
	var frame clientFrame
	if err := json.Unmarshal(payload, &frame); err != nil {
		return serverFrame{Error: "invalid message format"}
	}

	rawCurrency := frame.Currency
	if rawCurrency == "" {
		rawCurrency = frame.Crypto
	}
	if rawCurrency == "" || frame.UserID == "" || !frame.Amount.IsPositive() {
		return serverFrame{Error: "invalid message format"}
	}

	currency, err := domain.ParseCurrency(rawCurrency)
	if err != nil {
		return serverFrame{Error: "unsupported currency"}
	}

	// Minimum interval per invoice key; a misbehaving client gets error
	// frames, not upstream traffic.
	if h.limits != nil && !h.limits.Allow(frame.UserID+"|"+currency.String()) {
		return serverFrame{Error: "rate limited"}
	}

	result, err := h.svc.Check(c.Request.Context(), frame.UserID, currency)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return serverFrame{Error: "payment record not found"}
		}
		logger.Error(c, "check failed",
			zap.String("user", frame.UserID),
			zap.String("currency", currency.String()),
			zap.Error(err),
		)
		return serverFrame{Error: "error processing message"}
	}

	completed := result.Completed
	if completed {
		return serverFrame{PaymentCompleted: &completed, UniqueCode: result.Code}
	}
	paid := result.PaidUSD
	return serverFrame{PaymentCompleted: &completed, AmountPaid: &paid}
}
