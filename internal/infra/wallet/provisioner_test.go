package wallet

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/no-ctrl/CSP/internal/domain"
)

func TestGenerate_AddressFormats(t *testing.T) {
	p := NewProvisioner()

	tests := []struct {
		name     string
		currency domain.Currency
		check    func(t *testing.T, addr string)
	}{
		{
			name:     "bitcoin segwit mainnet",
			currency: domain.CurrencyBTC,
			check: func(t *testing.T, addr string) {
				assert.True(t, strings.HasPrefix(addr, "bc1"), "got %s", addr)
			},
		},
		{
			name:     "litecoin segwit mainnet",
			currency: domain.CurrencyLTC,
			check: func(t *testing.T, addr string) {
				assert.True(t, strings.HasPrefix(addr, "ltc1"), "got %s", addr)
			},
		},
		{
			name:     "ethereum checksum address",
			currency: domain.CurrencyETH,
			check: func(t *testing.T, addr string) {
				assert.True(t, strings.HasPrefix(addr, "0x"), "got %s", addr)
				assert.Len(t, addr, 42)
			},
		},
		{
			name:     "bnb shares the evm scheme",
			currency: domain.CurrencyBNB,
			check: func(t *testing.T, addr string) {
				assert.True(t, strings.HasPrefix(addr, "0x"), "got %s", addr)
				assert.Len(t, addr, 42)
			},
		},
		{
			name:     "tron base58check",
			currency: domain.CurrencyUSDT,
			check: func(t *testing.T, addr string) {
				assert.True(t, strings.HasPrefix(addr, "T"), "got %s", addr)
				assert.Len(t, addr, 34)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, err := p.Generate(tt.currency)
			require.NoError(t, err)
			require.NotEmpty(t, w.Address)
			require.NotEmpty(t, w.Secret)
			tt.check(t, w.Address)
		})
	}
}

func TestGenerate_NoAddressReuse(t *testing.T) {
	p := NewProvisioner()

	for _, currency := range domain.Currencies {
		first, err := p.Generate(currency)
		require.NoError(t, err)
		second, err := p.Generate(currency)
		require.NoError(t, err)

		assert.NotEqual(t, first.Address, second.Address, "%s reused an address", currency)
		assert.NotEqual(t, first.Secret, second.Secret, "%s reused a secret", currency)
	}
}

func TestGenerate_MnemonicSecrets(t *testing.T) {
	p := NewProvisioner()

	// HD chains hand out a 12-word mnemonic; TRON hands out a raw hex key.
	for _, currency := range []domain.Currency{domain.CurrencyBTC, domain.CurrencyETH, domain.CurrencyLTC, domain.CurrencyBNB} {
		w, err := p.Generate(currency)
		require.NoError(t, err)
		assert.Len(t, strings.Fields(w.Secret), 12, "%s secret should be a mnemonic", currency)
	}

	w, err := p.Generate(domain.CurrencyUSDT)
	require.NoError(t, err)
	assert.Len(t, w.Secret, 64, "tron secret should be a 32-byte hex key")
}

func TestGenerate_UnsupportedCurrency(t *testing.T) {
	p := NewProvisioner()
	_, err := p.Generate(domain.Currency("DOGE"))
	assert.ErrorIs(t, err, domain.ErrUnsupportedCurrency)
}
