package crypto

import (
	"crypto/ecdsa"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	eth_crypto "github.com/ethereum/go-ethereum/crypto"
	keystorev4 "github.com/wealdtech/go-eth2-wallet-encryptor-keystorev4"
)

const (
	// DigestLength is the size of every digest accepted by SignDigest.
	DigestLength = 32
	// SignatureLength is r || s without the recovery id.
	SignatureLength = 64
)

var (
	ErrInvalidSeed = errors.New("invalid seed")
	ErrSigning     = errors.New("signing error")
)

// SignDigest signs a 32 byte digest with deterministic (RFC 6979) nonces and returns the
// 64 byte r || s form. The recovery id is dropped.
func SignDigest(sk *ecdsa.PrivateKey, digest []byte) ([]byte, error) {
	if len(digest) != DigestLength {
		return nil, fmt.Errorf("%w: digest must be %d bytes, got %d", ErrSigning, DigestLength, len(digest))
	}
	if err := ValidatePrivateKey(sk); err != nil {
		return nil, err
	}
	sig, err := eth_crypto.Sign(digest, sk)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSigning, err)
	}
	return sig[:SignatureLength], nil
}

// VerifySignature checks a 64 byte signature over digest against a serialized
// secp256k1 public key in raw, uncompressed or compressed form.
func VerifySignature(pubKey, digest, sig []byte) bool {
	if len(digest) != DigestLength || len(sig) != SignatureLength || len(pubKey) == 0 {
		return false
	}
	if len(pubKey) == 64 {
		pubKey = append([]byte{0x04}, pubKey...)
	}
	return eth_crypto.VerifySignature(pubKey, digest, sig)
}

// ValidatePrivateKey rejects nil, zero and out of range scalars as well as keys on a foreign curve.
func ValidatePrivateKey(sk *ecdsa.PrivateKey) error {
	if sk == nil || sk.D == nil {
		return fmt.Errorf("%w: missing private key", ErrSigning)
	}
	if sk.Curve != eth_crypto.S256() {
		return fmt.Errorf("%w: private key is not on secp256k1", ErrSigning)
	}
	if sk.D.Sign() <= 0 || sk.D.BitLen() > 256 {
		return fmt.Errorf("%w: private key scalar out of range", ErrSigning)
	}
	var scalar secp256k1.ModNScalar
	if overflow := scalar.SetByteSlice(sk.D.Bytes()); overflow || scalar.IsZero() {
		return fmt.Errorf("%w: private key scalar out of range", ErrSigning)
	}
	return nil
}

// PrivateKeyFromBytes builds a secp256k1 key from a 32 byte big endian scalar.
func PrivateKeyFromBytes(b []byte) (*ecdsa.PrivateKey, error) {
	sk, err := eth_crypto.ToECDSA(b)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSigning, err)
	}
	return sk, nil
}

// EncodePublicKey returns the 64 byte X || Y form used by account key registries.
func EncodePublicKey(pk *ecdsa.PublicKey) []byte {
	return eth_crypto.FromECDSAPub(pk)[1:]
}

// ParsePublicKey accepts the 64 byte raw, 65 byte uncompressed or 33 byte compressed forms.
func ParsePublicKey(b []byte) (*ecdsa.PublicKey, error) {
	switch len(b) {
	case 64:
		return eth_crypto.UnmarshalPubkey(append([]byte{0x04}, b...))
	case 65:
		return eth_crypto.UnmarshalPubkey(b)
	case 33:
		return eth_crypto.DecompressPubkey(b)
	default:
		return nil, fmt.Errorf("invalid public key length %d", len(b))
	}
}

// EncryptSecret wraps secret into an EIP-2335 keystore JSON document.
func EncryptSecret(secret []byte, password string, opts ...keystorev4.Option) ([]byte, error) {
	encrypted, err := keystorev4.New(opts...).Encrypt(secret, password)
	if err != nil {
		return nil, fmt.Errorf("failed to encrypt secret: %w", err)
	}
	return json.Marshal(encrypted)
}

// DecryptSecret opens a keystore JSON document produced by EncryptSecret.
func DecryptSecret(data []byte, password string) ([]byte, error) {
	var keystore map[string]interface{}
	if err := json.Unmarshal(data, &keystore); err != nil {
		return nil, fmt.Errorf("failed to parse keystore: %w", err)
	}
	secret, err := keystorev4.New().Decrypt(keystore, password)
	if err != nil {
		return nil, fmt.Errorf("failed to decrypt keystore: %w", err)
	}
	return secret, nil
}
