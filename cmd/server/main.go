package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	appcfg "github.com/no-ctrl/CSP/config"
	"github.com/no-ctrl/CSP/internal/core/handler"
	"github.com/no-ctrl/CSP/internal/core/service"
	"github.com/no-ctrl/CSP/internal/domain"
	"github.com/no-ctrl/CSP/internal/httpserver"
	"github.com/no-ctrl/CSP/internal/infra/chains"
	"github.com/no-ctrl/CSP/internal/infra/persistence"
	"github.com/no-ctrl/CSP/internal/infra/wallet"
	"github.com/no-ctrl/CSP/internal/oracle"
	"github.com/no-ctrl/CSP/internal/ws"
	"github.com/no-ctrl/CSP/pkg/config"
	"github.com/no-ctrl/CSP/pkg/logger"
	"github.com/no-ctrl/CSP/pkg/orm"
	"github.com/no-ctrl/CSP/pkg/ratelimit"
)

func main() {
	var c appcfg.Config
	if _, err := config.LoadAndWatch("csp", &c); err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger.Init(c.Name, c.Log.Level)

	db := orm.NewMySQL(&orm.Config{
		DSN:         c.Mysql.DataSource,
		MaxIdle:     c.Mysql.MaxIdle,
		MaxOpen:     c.Mysql.MaxOpen,
		MaxLifetime: c.Mysql.MaxLifetime,
	})
	if err := db.AutoMigrate(&domain.Invoice{}); err != nil {
		log.Fatalf("migrate: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	priceOracle := oracle.New(oracle.Config{
		PrimaryAPI:      c.Oracle.PrimaryAPI,
		FallbackAPI:     c.Oracle.FallbackAPI,
		RefreshInterval: c.Oracle.RefreshInterval,
		SymbolDelay:     c.Oracle.SymbolDelay,
		Timeout:         c.Oracle.Timeout,
	})
	priceOracle.Start(ctx)

	balances, err := chains.New(chains.Config{
		BitcoinAPI:       c.Chains.BitcoinAPI,
		LitecoinAPI:      c.Chains.LitecoinAPI,
		EthereumNode:     c.Chains.EthereumNode,
		BscAPI:           c.Chains.BscAPI,
		BscAPIKey:        c.Chains.BscAPIKey,
		TronAPI:          c.Chains.TronAPI,
		TronUSDTContract: c.Chains.TronUSDTContract,
		Timeout:          c.Chains.Timeout,
	})
	if err != nil {
		log.Fatalf("chains gateway: %v", err)
	}

	repo := persistence.New(db)
	svc := service.NewPaymentService(repo, wallet.NewProvisioner(), balances, priceOracle)

	// Per-IP token buckets for the REST API.
	httpLimits := ratelimit.NewStore(rate.Limit(c.RateLimit.RPS), c.RateLimit.Burst, 10*time.Minute)
	httpLimits.StartJanitor(ctx, time.Minute)

	// Per-invoice minimum check interval for the notification channel.
	checkInterval := c.RateLimit.CheckInterval
	if checkInterval <= 0 {
		checkInterval = 5 * time.Second
	}
	checkBurst := c.RateLimit.CheckBurst
	if checkBurst <= 0 {
		checkBurst = 3
	}
	checkLimits := ratelimit.NewStore(rate.Every(checkInterval), checkBurst, 10*time.Minute)
	checkLimits.StartJanitor(ctx, time.Minute)

	payment := handler.NewPayment(svc, db)
	channel := ws.NewHandler(svc, checkLimits)

	srv := httpserver.New(c.HTTP.Addr, c.HTTP.FrontendOrigin, httpLimits, payment, channel)

	go func() {
		logger.Info(ctx, "server listening", zap.String("addr", c.HTTP.Addr))
		if err := srv.ListenAndServe(); err != nil {
			logger.Error(ctx, "http server stopped", zap.Error(err))
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	logger.Info(ctx, "shutdown signal received")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error(ctx, "shutdown failed", zap.Error(err))
	}
}
