package chains

import (
	"context"
	"encoding/json"
	"fmt"
	"math/big"
	"net/http"

	"github.com/shopspring/decimal"
)

// addressSummary is the slice of a blockchain.info-style address document we
// care about: the confirmed balance in satoshi.
type addressSummary struct {
	FinalBalance int64 `json:"final_balance"`
}

// utxoBalance serves BTC and LTC: both explorers answer the same shape,
// smallest unit is 1e-8 of the coin on both chains.
func (g *Gateway) utxoBalance(ctx context.Context, base, address string) (decimal.Decimal, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, base+"/"+address, nil)
	if err != nil {
		return decimal.Zero, err
	}
	resp, err := g.httpc.Do(req)
	if err != nil {
		return decimal.Zero, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return decimal.Zero, fmt.Errorf("explorer status %d", resp.StatusCode)
	}

	var doc addressSummary
	if err := json.NewDecoder(resp.Body).Decode(&doc); err != nil {
		return decimal.Zero, fmt.Errorf("decode explorer response: %w", err)
	}
	return smallestToUnit(big.NewInt(doc.FinalBalance), 8), nil
}
