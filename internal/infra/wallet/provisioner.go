package wallet

import (
	"fmt"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/btcutil/base58"
	"github.com/btcsuite/btcd/btcutil/hdkeychain"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/tyler-smith/go-bip39"

	"github.com/no-ctrl/CSP/internal/domain"
)

// TRON mainnet address prefix (base58check version byte).
const tronAddressPrefix = 0x41

// Litecoin mainnet parameters, only the fields address encoding touches.
var litecoinParams = chaincfg.Params{
	Name:             "litecoin",
	Bech32HRPSegwit:  "ltc",
	PubKeyHashAddrID: 0x30,
	ScriptHashAddrID: 0x32,
	PrivateKeyID:     0xb0,
	HDPrivateKeyID:   [4]byte{0x01, 0x9d, 0x9c, 0xfe},
	HDPublicKeyID:    [4]byte{0x01, 0x9d, 0xa4, 0x62},
	HDCoinType:       2,
}

// Provisioner mints a fresh wallet per call: new BIP39 mnemonic, first
// account of the chain's standard derivation path. No I/O anywhere.
type Provisioner struct{}

func NewProvisioner() *Provisioner { return &Provisioner{} }

var _ domain.WalletProvisioner = (*Provisioner)(nil)

func (p *Provisioner) Generate(currency domain.Currency) (domain.Wallet, error) {
	switch currency {
	case domain.CurrencyBTC:
		// BIP84 m/84'/0'/0'/0/0, P2WPKH mainnet
		return segwitWallet(0, &chaincfg.MainNetParams)
	case domain.CurrencyLTC:
		// BIP84 m/84'/2'/0'/0/0, bech32 "ltc1..."
		return segwitWallet(2, &litecoinParams)
	case domain.CurrencyETH, domain.CurrencyBNB:
		// BIP44 m/44'/60'/0'/0/0, EIP-55 address; BNB shares the scheme
		return accountWallet()
	case domain.CurrencyUSDT:
		return tronWallet()
	}
	return domain.Wallet{}, domain.ErrUnsupportedCurrency
}

func newMnemonicSeed() (string, []byte, error) {
	entropy, err := bip39.NewEntropy(128)
	if err != nil {
		return "", nil, fmt.Errorf("entropy failed: %w", err)
	}
	mnemonic, err := bip39.NewMnemonic(entropy)
	if err != nil {
		return "", nil, fmt.Errorf("mnemonic failed: %w", err)
	}
	return mnemonic, bip39.NewSeed(mnemonic, ""), nil
}

func derive(master *hdkeychain.ExtendedKey, path []uint32) (*btcec.PrivateKey, error) {
	key := master
	var err error
	for _, idx := range path {
		key, err = key.Derive(idx)
		if err != nil {
			return nil, err
		}
	}
	return key.ECPrivKey()
}

func segwitWallet(coinType uint32, addrParams *chaincfg.Params) (domain.Wallet, error) {
	mnemonic, seed, err := newMnemonicSeed()
	if err != nil {
		return domain.Wallet{}, err
	}
	master, err := hdkeychain.NewMaster(seed, &chaincfg.MainNetParams)
	if err != nil {
		return domain.Wallet{}, err
	}
	privKey, err := derive(master, []uint32{
		84 + hdkeychain.HardenedKeyStart,       // purpose
		coinType + hdkeychain.HardenedKeyStart, // coin type
		0 + hdkeychain.HardenedKeyStart,        // account
		0,                                      // external chain
		0,                                      // first address
	})
	if err != nil {
		return domain.Wallet{}, err
	}
	addr, err := btcutil.NewAddressWitnessPubKeyHash(
		btcutil.Hash160(privKey.PubKey().SerializeCompressed()),
		addrParams,
	)
	if err != nil {
		return domain.Wallet{}, err
	}
	return domain.Wallet{Address: addr.EncodeAddress(), Secret: mnemonic}, nil
}

func accountWallet() (domain.Wallet, error) {
	mnemonic, seed, err := newMnemonicSeed()
	if err != nil {
		return domain.Wallet{}, err
	}
	master, err := hdkeychain.NewMaster(seed, &chaincfg.MainNetParams)
	if err != nil {
		return domain.Wallet{}, err
	}
	privKey, err := derive(master, []uint32{
		44 + hdkeychain.HardenedKeyStart,
		60 + hdkeychain.HardenedKeyStart,
		0 + hdkeychain.HardenedKeyStart,
		0,
		0,
	})
	if err != nil {
		return domain.Wallet{}, err
	}
	addr := crypto.PubkeyToAddress(privKey.ToECDSA().PublicKey)
	return domain.Wallet{Address: addr.Hex(), Secret: mnemonic}, nil
}

// tronWallet generates a standalone keypair; TRON deposits use a raw private
// key as the secret, not a mnemonic.
func tronWallet() (domain.Wallet, error) {
	privKey, err := btcec.NewPrivateKey()
	if err != nil {
		return domain.Wallet{}, err
	}
	// Same keccak-derived 20-byte body as an EVM address, base58check with
	// the 0x41 prefix.
	body := crypto.PubkeyToAddress(*privKey.PubKey().ToECDSA())
	address := base58.CheckEncode(body.Bytes(), tronAddressPrefix)
	return domain.Wallet{
		Address: address,
		Secret:  fmt.Sprintf("%x", privKey.Serialize()),
	}, nil
}
