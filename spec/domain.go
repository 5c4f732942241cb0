package spec

import (
	"crypto/sha256"
	"fmt"
	"hash"

	"golang.org/x/crypto/sha3"
)

// DomainTagLength is the fixed width every tag is normalized to.
const DomainTagLength = 32

const domainTagPrefix = "FLOW-V0.0-"

// DomainTag separates signatures made for different purposes.
type DomainTag [DomainTagLength]byte

var (
	// UserDomainTag prefixes arbitrary user messages, including ownership proofs.
	UserDomainTag = MustDomainTag(domainTagPrefix + "user")
	// TransactionDomainTag prefixes source ledger transaction payloads.
	TransactionDomainTag = MustDomainTag(domainTagPrefix + "transaction")
)

// NewDomainTag right-pads tag with zero bytes to DomainTagLength.
func NewDomainTag(tag string) (DomainTag, error) {
	var t DomainTag
	if len(tag) > DomainTagLength {
		return t, fmt.Errorf("domain tag %q is longer than %d bytes", tag, DomainTagLength)
	}
	copy(t[:], tag)
	return t, nil
}

func MustDomainTag(tag string) DomainTag {
	t, err := NewDomainTag(tag)
	if err != nil {
		panic(err)
	}
	return t
}

// String trims the zero padding.
func (t DomainTag) String() string {
	n := len(t)
	for n > 0 && t[n-1] == 0 {
		n--
	}
	return string(t[:n])
}

// HashAlgorithm is the account key hash algorithm used for domain hashing.
type HashAlgorithm string

const (
	SHA2_256 HashAlgorithm = "SHA2_256"
	SHA3_256 HashAlgorithm = "SHA3_256"
)

// ParseHashAlgorithm accepts the account key names. Empty selects SHA2_256.
func ParseHashAlgorithm(s string) (HashAlgorithm, error) {
	switch HashAlgorithm(s) {
	case "", SHA2_256:
		return SHA2_256, nil
	case SHA3_256:
		return SHA3_256, nil
	default:
		return "", fmt.Errorf("unsupported hash algorithm %q", s)
	}
}

// Valid reports whether ParseHashAlgorithm accepts a.
func (a HashAlgorithm) Valid() bool {
	_, err := ParseHashAlgorithm(string(a))
	return err == nil
}

func (a HashAlgorithm) new() hash.Hash {
	switch a {
	case "", SHA2_256:
		return sha256.New()
	case SHA3_256:
		return sha3.New256()
	default:
		panic(fmt.Sprintf("unsupported hash algorithm %q", string(a)))
	}
}

// Hash returns SHA-256(tag || payload).
func Hash(tag DomainTag, payload []byte) [32]byte {
	return HashWith(SHA2_256, tag, payload)
}

// HashWith returns alg(tag || payload). It panics for an algorithm that is not Valid.
func HashWith(alg HashAlgorithm, tag DomainTag, payload []byte) [32]byte {
	h := alg.new()
	h.Write(tag[:])
	h.Write(payload)
	var out [32]byte
	copy(out[:], h.Sum(nil))
	return out
}

// MessageDigest is the bytes32 handed to isValidSignature for msg.
func MessageDigest(msg []byte) [32]byte {
	return sha256.Sum256(msg)
}

// SigningDigest is the digest an account key signs for an ownership proof over messageDigest.
func SigningDigest(alg HashAlgorithm, messageDigest [32]byte) [32]byte {
	return HashWith(alg, UserDomainTag, messageDigest[:])
}
