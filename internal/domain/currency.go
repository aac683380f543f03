package domain

import "strings"

// Currency is a supported deposit currency, stored canonically as the ticker.
type Currency string

const (
	CurrencyBTC  Currency = "BTC"
	CurrencyETH  Currency = "ETH"
	CurrencyLTC  Currency = "LTC"
	CurrencyBNB  Currency = "BNB"
	CurrencyUSDT Currency = "USDT"
)

// Currencies lists every supported currency in refresh order.
var Currencies = []Currency{CurrencyBTC, CurrencyETH, CurrencyLTC, CurrencyBNB, CurrencyUSDT}

// ParseCurrency accepts tickers and the long chain names older clients send.
func ParseCurrency(s string) (Currency, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "BTC", "BITCOIN":
		return CurrencyBTC, nil
	case "ETH", "ETHEREUM":
		return CurrencyETH, nil
	case "LTC", "LITECOIN":
		return CurrencyLTC, nil
	case "BNB":
		return CurrencyBNB, nil
	case "USDT", "TETHER":
		return CurrencyUSDT, nil
	}
	return "", ErrUnsupportedCurrency
}

func (c Currency) String() string { return string(c) }
