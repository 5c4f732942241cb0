package spec

import (
	"errors"

	"github.com/ssvlabs/coa-proof/pkgs/crypto"
)

// Error classes returned by every layer. Callers classify with errors.Is.
var (
	// ErrInvalidSeed is returned when a mnemonic fails word list or checksum validation.
	ErrInvalidSeed = crypto.ErrInvalidSeed
	// ErrSigning is returned for a malformed digest or an unusable private key.
	ErrSigning = crypto.ErrSigning
	// ErrEncoding is returned when a proof cannot be encoded or decoded.
	ErrEncoding = errors.New("encoding error")
	// ErrTransport is returned when a remote endpoint could not be reached or answered out of band.
	ErrTransport = errors.New("transport error")
	// ErrVerificationFailed is returned when a verifier did not accept the proof.
	ErrVerificationFailed = errors.New("verification failed")
)

// IsRetryable reports whether err is a transport failure. Every other class is terminal
// for the given input.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrTransport)
}
