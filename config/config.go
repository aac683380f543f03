package config

import "time"

// Config maps config/csp.yaml.
type Config struct {
	Name string
	Log  struct {
		Level string
	}

	HTTP struct {
		Addr           string
		FrontendOrigin string
	}

	Mysql struct {
		DataSource  string
		MaxIdle     int
		MaxOpen     int
		MaxLifetime int // seconds
	}

	RateLimit struct {
		RPS   float64
		Burst int
		// Minimum interval between reconciliation checks per invoice key.
		CheckInterval time.Duration
		CheckBurst    int
	}

	Oracle struct {
		PrimaryAPI      string
		FallbackAPI     string
		RefreshInterval time.Duration
		SymbolDelay     time.Duration
		Timeout         time.Duration
	}

	Chains struct {
		BitcoinAPI       string
		LitecoinAPI      string
		EthereumNode     string
		BscAPI           string
		BscAPIKey        string
		TronAPI          string
		TronUSDTContract string
		Timeout          time.Duration
	}
}
