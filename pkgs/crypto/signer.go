package crypto

import (
	"crypto/ecdsa"
)

type Signer interface {
	Sign(digest []byte) ([]byte, error)
}

type ecdsaSigner struct {
	sk *ecdsa.PrivateKey
}

func ECDSASigner(sk *ecdsa.PrivateKey) Signer {
	return &ecdsaSigner{
		sk: sk,
	}
}

func (s *ecdsaSigner) Sign(digest []byte) ([]byte, error) {
	return SignDigest(s.sk, digest)
}
