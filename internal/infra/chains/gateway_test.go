package chains

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/no-ctrl/CSP/internal/domain"
	"github.com/no-ctrl/CSP/pkg/logger"
)

func init() {
	logger.Init("csp-test", "error")
}

const (
	testETHAddress  = "0x71C7656EC7ab88b098defB751B7401B5f6d8976F"
	testContract    = "TR7NHqjeKQxGTCi8q8ZY4pL8otSzgjLj6t"
	testBTCAddress  = "bc1qw508d6qejxtdg4y5r3zarvary0c5xw7kv8f3t4"
	testTronAddress = "TJRabPrwbZy45sbavfcjinPJC18kjpRTv8"
)

// ethRPCServer answers eth_getBalance with the given hex wei value and
// chainId probes from ethclient.Dial.
func ethRPCServer(t *testing.T, hexWei string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			ID     json.RawMessage `json:"id"`
			Method string          `json:"method"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))

		result := hexWei
		if req.Method == "eth_chainId" {
			result = "0x1"
		}
		fmt.Fprintf(w, `{"jsonrpc":"2.0","id":%s,"result":%q}`, req.ID, result)
	}))
}

func newTestGateway(t *testing.T, cfg Config) *Gateway {
	t.Helper()
	if cfg.EthereumNode == "" {
		node := ethRPCServer(t, "0x0")
		t.Cleanup(node.Close)
		cfg.EthereumNode = node.URL
	}
	cfg.Timeout = 2 * time.Second
	g, err := New(cfg)
	require.NoError(t, err)
	return g
}

func TestFetchBalance_UTXO(t *testing.T) {
	explorer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/"+testBTCAddress, r.URL.Path)
		fmt.Fprint(w, `{"final_balance":150000,"n_tx":3}`)
	}))
	defer explorer.Close()

	g := newTestGateway(t, Config{BitcoinAPI: explorer.URL, LitecoinAPI: explorer.URL})

	for _, currency := range []domain.Currency{domain.CurrencyBTC, domain.CurrencyLTC} {
		got, err := g.FetchBalance(context.Background(), currency, testBTCAddress)
		require.NoError(t, err)
		assert.True(t, decimal.RequireFromString("0.0015").Equal(got), "%s: got %s", currency, got)
	}
}

func TestFetchBalance_ETH(t *testing.T) {
	// 2 ETH in wei.
	node := ethRPCServer(t, "0x1bc16d674ec80000")
	defer node.Close()

	g := newTestGateway(t, Config{EthereumNode: node.URL})

	got, err := g.FetchBalance(context.Background(), domain.CurrencyETH, testETHAddress)
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(2).Equal(got), "got %s", got)
}

func TestFetchBalance_ETH_BadAddress(t *testing.T) {
	g := newTestGateway(t, Config{})

	_, err := g.FetchBalance(context.Background(), domain.CurrencyETH, "not-an-address")
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrBalanceUnavailable))
}

func TestFetchBalance_BSC(t *testing.T) {
	api := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "balance", r.URL.Query().Get("action"))
		assert.Equal(t, "test-key", r.URL.Query().Get("apikey"))
		fmt.Fprint(w, `{"status":"1","message":"OK","result":"1500000000000000000"}`)
	}))
	defer api.Close()

	g := newTestGateway(t, Config{BscAPI: api.URL, BscAPIKey: "test-key"})

	got, err := g.FetchBalance(context.Background(), domain.CurrencyBNB, testETHAddress)
	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("1.5").Equal(got), "got %s", got)
}

func TestFetchBalance_BSC_APIError(t *testing.T) {
	api := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"status":"0","message":"NOTOK","result":""}`)
	}))
	defer api.Close()

	g := newTestGateway(t, Config{BscAPI: api.URL})

	_, err := g.FetchBalance(context.Background(), domain.CurrencyBNB, testETHAddress)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrBalanceUnavailable))
}

func TestFetchBalance_TRC20(t *testing.T) {
	api := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/accounts/"+testTronAddress, r.URL.Path)
		fmt.Fprintf(w, `{"success":true,"data":[{"trc20":[{"TOtherContract":"5"},{%q:"42500000"}]}]}`, testContract)
	}))
	defer api.Close()

	g := newTestGateway(t, Config{TronAPI: api.URL, TronUSDTContract: testContract})

	got, err := g.FetchBalance(context.Background(), domain.CurrencyUSDT, testTronAddress)
	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("42.5").Equal(got), "got %s", got)
}

func TestFetchBalance_TRC20_UnseenAccountIsZero(t *testing.T) {
	// TronGrid answers success with empty data for addresses the chain has
	// never seen. That is a real zero balance, not an upstream failure.
	api := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"success":true,"data":[]}`)
	}))
	defer api.Close()

	g := newTestGateway(t, Config{TronAPI: api.URL, TronUSDTContract: testContract})

	got, err := g.FetchBalance(context.Background(), domain.CurrencyUSDT, testTronAddress)
	require.NoError(t, err)
	assert.True(t, got.IsZero())
}

func TestFetchBalance_UpstreamDown(t *testing.T) {
	api := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "maintenance", http.StatusServiceUnavailable)
	}))
	defer api.Close()

	g := newTestGateway(t, Config{BitcoinAPI: api.URL})

	_, err := g.FetchBalance(context.Background(), domain.CurrencyBTC, testBTCAddress)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrBalanceUnavailable))
}

func TestFetchBalance_BreakerOpensPerCurrency(t *testing.T) {
	btc := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusBadGateway)
	}))
	defer btc.Close()
	ltc := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"final_balance":100000000}`)
	}))
	defer ltc.Close()

	g := newTestGateway(t, Config{BitcoinAPI: btc.URL, LitecoinAPI: ltc.URL})

	for i := 0; i < 10; i++ {
		_, err := g.FetchBalance(context.Background(), domain.CurrencyBTC, testBTCAddress)
		require.Error(t, err)
		assert.True(t, errors.Is(err, domain.ErrBalanceUnavailable))
	}

	// BTC tripping its breaker must not affect the LTC path.
	got, err := g.FetchBalance(context.Background(), domain.CurrencyLTC, testBTCAddress)
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(1).Equal(got))
}
