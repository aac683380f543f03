package chains

import (
	"context"
	"encoding/json"
	"fmt"
	"math/big"
	"net/http"
	"net/url"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
)

// ethBalance reads the latest-state balance straight from a node.
func (g *Gateway) ethBalance(ctx context.Context, address string) (decimal.Decimal, error) {
	if !common.IsHexAddress(address) {
		return decimal.Zero, fmt.Errorf("invalid ethereum address %q", address)
	}
	wei, err := g.eth.BalanceAt(ctx, common.HexToAddress(address), nil)
	if err != nil {
		return decimal.Zero, err
	}
	return smallestToUnit(wei, 18), nil
}

// bscAccountResult is the etherscan-style envelope: status "1" means ok and
// result carries the wei balance as a decimal string.
type bscAccountResult struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Result  string `json:"result"`
}

func (g *Gateway) bscBalance(ctx context.Context, address string) (decimal.Decimal, error) {
	q := url.Values{}
	q.Set("module", "account")
	q.Set("action", "balance")
	q.Set("address", address)
	q.Set("tag", "latest")
	q.Set("apikey", g.cfg.BscAPIKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.cfg.BscAPI+"?"+q.Encode(), nil)
	if err != nil {
		return decimal.Zero, err
	}
	resp, err := g.httpc.Do(req)
	if err != nil {
		return decimal.Zero, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return decimal.Zero, fmt.Errorf("bsc api status %d", resp.StatusCode)
	}

	var doc bscAccountResult
	if err := json.NewDecoder(resp.Body).Decode(&doc); err != nil {
		return decimal.Zero, fmt.Errorf("decode bsc response: %w", err)
	}
	if doc.Status != "1" || doc.Result == "" {
		return decimal.Zero, fmt.Errorf("bsc api error: %s", doc.Message)
	}
	wei, ok := new(big.Int).SetString(doc.Result, 10)
	if !ok {
		return decimal.Zero, fmt.Errorf("bsc api non-numeric balance %q", doc.Result)
	}
	return smallestToUnit(wei, 18), nil
}
