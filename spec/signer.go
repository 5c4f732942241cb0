package spec

import (
	"crypto/ecdsa"
	"fmt"

	"github.com/ssvlabs/coa-proof/pkgs/crypto"
)

// SignatureLength is the r || s width carried in proofs.
const SignatureLength = crypto.SignatureLength

type Signer interface {
	Sign(digest []byte) ([]byte, error)
}

// KeySigner signs domain tagged payloads with one account key.
type KeySigner struct {
	signer Signer
	alg    HashAlgorithm
}

func NewKeySigner(signer Signer, alg HashAlgorithm) *KeySigner {
	if alg == "" {
		alg = SHA2_256
	}
	return &KeySigner{
		signer: signer,
		alg:    alg,
	}
}

func ECDSASigner(sk *ecdsa.PrivateKey) *KeySigner {
	return NewKeySigner(crypto.ECDSASigner(sk), SHA2_256)
}

// Sign signs an already computed 32 byte digest.
func (s *KeySigner) Sign(digest []byte) ([]byte, error) {
	return s.signer.Sign(digest)
}

// SignTagged signs HashWith(alg, tag, payload).
func (s *KeySigner) SignTagged(tag DomainTag, payload []byte) ([]byte, error) {
	if !s.alg.Valid() {
		return nil, fmt.Errorf("%w: unsupported hash algorithm %q", ErrSigning, string(s.alg))
	}
	digest := HashWith(s.alg, tag, payload)
	return s.signer.Sign(digest[:])
}

func (s *KeySigner) SignUserMessage(payload []byte) ([]byte, error) {
	return s.SignTagged(UserDomainTag, payload)
}

// SignTransaction is the callback handed to source ledger transaction builders.
func (s *KeySigner) SignTransaction(payload []byte) ([]byte, error) {
	return s.SignTagged(TransactionDomainTag, payload)
}

func (s *KeySigner) HashAlgorithm() HashAlgorithm {
	return s.alg
}

// Verify checks sig over digest for a serialized secp256k1 public key.
func Verify(sig, digest, pubKey []byte) bool {
	return crypto.VerifySignature(pubKey, digest, sig)
}
