package crypto

import (
	"crypto/ecdsa"
	"fmt"
	"strings"

	"github.com/btcsuite/btcd/btcutil/hdkeychain"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/ethereum/go-ethereum/accounts"
	eth_crypto "github.com/ethereum/go-ethereum/crypto"
	"github.com/tyler-smith/go-bip39"
)

// FlowDerivationPath is the BIP-44 path registered for Flow (coin type 539).
const FlowDerivationPath = "m/44'/539'/0'/0/0"

// Curve names the signature curve of a derived key.
type Curve string

const (
	CurveSecp256k1 Curve = "secp256k1"
	CurveP256      Curve = "P-256"
)

// KeyPair is a derived secp256k1 key. It is kept in memory only.
type KeyPair struct {
	PrivateKey *ecdsa.PrivateKey
	Path       accounts.DerivationPath
}

// PublicKey returns the 64 byte X || Y public key.
func (k *KeyPair) PublicKey() []byte {
	return EncodePublicKey(&k.PrivateKey.PublicKey)
}

// DeriveKey turns a BIP-39 mnemonic and passphrase into the key at path.
// An empty path selects FlowDerivationPath.
func DeriveKey(mnemonic, passphrase string, curve Curve, path string) (*KeyPair, error) {
	if curve != CurveSecp256k1 {
		return nil, fmt.Errorf("%w: unsupported curve %q", ErrInvalidSeed, curve)
	}
	mnemonic = NormalizeMnemonic(mnemonic)
	if !bip39.IsMnemonicValid(mnemonic) {
		return nil, fmt.Errorf("%w: mnemonic failed word list or checksum validation", ErrInvalidSeed)
	}
	if path == "" {
		path = FlowDerivationPath
	}
	dp, err := accounts.ParseDerivationPath(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidSeed, err)
	}

	seed := bip39.NewSeed(mnemonic, passphrase)
	key, err := hdkeychain.NewMaster(seed, &chaincfg.MainNetParams)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidSeed, err)
	}
	for _, idx := range dp {
		key, err = key.Derive(idx)
		if err != nil {
			return nil, fmt.Errorf("%w: derive child %d: %w", ErrInvalidSeed, idx, err)
		}
	}
	ecKey, err := key.ECPrivKey()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidSeed, err)
	}
	sk, err := eth_crypto.ToECDSA(ecKey.Serialize())
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidSeed, err)
	}
	return &KeyPair{PrivateKey: sk, Path: dp}, nil
}

// NormalizeMnemonic collapses whitespace so pasted phrases validate.
func NormalizeMnemonic(mnemonic string) string {
	return strings.Join(strings.Fields(mnemonic), " ")
}

// NewMnemonic returns a fresh 24 word mnemonic.
func NewMnemonic() (string, error) {
	entropy, err := bip39.NewEntropy(256)
	if err != nil {
		return "", err
	}
	return bip39.NewMnemonic(entropy)
}
