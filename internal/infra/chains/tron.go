package chains

import (
	"context"
	"encoding/json"
	"fmt"
	"math/big"
	"net/http"

	"github.com/shopspring/decimal"
)

// tronAccount is the v1 accounts document; trc20 is a list of single-entry
// maps of contract address -> smallest-unit balance string.
type tronAccount struct {
	Success bool `json:"success"`
	Data    []struct {
		TRC20 []map[string]string `json:"trc20"`
	} `json:"data"`
}

// trc20Balance reads the USDT token balance of a TRON account. An account
// the chain has never seen comes back with empty data, which is a true zero,
// not an upstream failure.
func (g *Gateway) trc20Balance(ctx context.Context, address string) (decimal.Decimal, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.cfg.TronAPI+"/v1/accounts/"+address, nil)
	if err != nil {
		return decimal.Zero, err
	}
	resp, err := g.httpc.Do(req)
	if err != nil {
		return decimal.Zero, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return decimal.Zero, fmt.Errorf("tron api status %d", resp.StatusCode)
	}

	var doc tronAccount
	if err := json.NewDecoder(resp.Body).Decode(&doc); err != nil {
		return decimal.Zero, fmt.Errorf("decode tron response: %w", err)
	}
	if !doc.Success {
		return decimal.Zero, fmt.Errorf("tron api reported failure")
	}

	for _, data := range doc.Data {
		for _, tokens := range data.TRC20 {
			if raw, ok := tokens[g.cfg.TronUSDTContract]; ok {
				v, ok := new(big.Int).SetString(raw, 10)
				if !ok {
					return decimal.Zero, fmt.Errorf("tron api non-numeric balance %q", raw)
				}
				return smallestToUnit(v, 6), nil
			}
		}
	}
	return decimal.Zero, nil
}
