package httpserver

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	ginprom "github.com/zsais/go-gin-prometheus"

	"github.com/no-ctrl/CSP/internal/core/handler"
	"github.com/no-ctrl/CSP/internal/ws"
	"github.com/no-ctrl/CSP/pkg/middleware"
	"github.com/no-ctrl/CSP/pkg/ratelimit"
)

// New assembles the HTTP surface: REST API, health, metrics and the
// websocket notification channel.
func New(addr string, frontendOrigin string, store *ratelimit.Store, payment *handler.Payment, channel *ws.Handler) *http.Server {
	r := gin.New()

	p := ginprom.NewPrometheus("csp")
	p.Use(r)

	corsCfg := cors.DefaultConfig()
	if frontendOrigin != "" {
		corsCfg.AllowOrigins = []string{frontendOrigin}
	} else {
		corsCfg.AllowAllOrigins = true
	}
	corsCfg.AllowMethods = []string{http.MethodGet, http.MethodPost}
	corsCfg.AllowHeaders = []string{"Content-Type", "X-Request-Id"}

	r.Use(
		middleware.ReqId(),
		cors.New(corsCfg),
		middleware.Recover(),
		middleware.RateLimit(store),
	)

	api := r.Group("/api")
	api.GET("/payment-details", payment.Details)
	api.POST("/check-payment", payment.CheckPayment)

	r.GET("/health", payment.Health)
	r.GET("/ws", channel.Serve)

	return &http.Server{
		Addr:           addr,
		Handler:        r,
		ReadTimeout:    10 * time.Second,
		WriteTimeout:   0, // websocket connections are long-lived
		MaxHeaderBytes: 1 << 20,
	}
}
