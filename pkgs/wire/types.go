package wire

import (
	"errors"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"

	"github.com/ssvlabs/coa-proof/spec"
)

// Error kinds reported by the proof service.
const (
	KindEncoding           = "encoding"
	KindTransport          = "transport"
	KindVerificationFailed = "verification_failed"
	KindSigning            = "signing"
	KindInvalidSeed        = "invalid_seed"
	KindInternal           = "internal"
)

// ProofRequest asks the service to sign message with its configured account keys.
type ProofRequest struct {
	Message        hexutil.Bytes `json:"message"`
	CapabilityPath string        `json:"capabilityPath,omitempty"`
}

type ProofResponse struct {
	Account        string        `json:"account"`
	CapabilityPath string        `json:"capabilityPath"`
	KeyIndices     []uint64      `json:"keyIndices"`
	MessageDigest  common.Hash   `json:"messageDigest"`
	Proof          hexutil.Bytes `json:"proof"`
}

// VerifyRequest names either the raw message or its digest, never both.
type VerifyRequest struct {
	Target  common.Address `json:"target"`
	Message hexutil.Bytes  `json:"message,omitempty"`
	Digest  *common.Hash   `json:"digest,omitempty"`
	Proof   hexutil.Bytes  `json:"proof"`
	Retry   bool           `json:"retry,omitempty"`
}

// MessageDigest returns the on-chain hash argument of the request.
func (r *VerifyRequest) MessageDigest() ([32]byte, error) {
	switch {
	case r.Digest != nil && len(r.Message) > 0:
		return [32]byte{}, errors.New("message and digest are mutually exclusive")
	case r.Digest != nil:
		return *r.Digest, nil
	case len(r.Message) > 0:
		return spec.MessageDigest(r.Message), nil
	default:
		return [32]byte{}, errors.New("message or digest is required")
	}
}

type VerifyResponse struct {
	Target      common.Address `json:"target"`
	Digest      common.Hash    `json:"digest"`
	Valid       bool           `json:"valid"`
	Value       hexutil.Bytes  `json:"value,omitempty"`
	BlockNumber uint64         `json:"blockNumber,omitempty"`
	ErrorKind   string         `json:"errorKind,omitempty"`
	Error       string         `json:"error,omitempty"`
}

type VerifyBatchRequest struct {
	Requests []VerifyRequest `json:"requests"`
}

type VerifyBatchResponse struct {
	Results []VerifyResponse `json:"results"`
}

type ResolveResponse struct {
	Account        string         `json:"account"`
	CapabilityPath string         `json:"capabilityPath"`
	Address        common.Address `json:"address"`
}

type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
	Network string `json:"network,omitempty"`
}

type ErrorResponse struct {
	Error     string `json:"error"`
	ErrorKind string `json:"errorKind,omitempty"`
	RequestID string `json:"requestId,omitempty"`
}

// ErrorKind maps err onto the error taxonomy.
func ErrorKind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, spec.ErrTransport):
		return KindTransport
	case errors.Is(err, spec.ErrVerificationFailed):
		return KindVerificationFailed
	case errors.Is(err, spec.ErrEncoding):
		return KindEncoding
	case errors.Is(err, spec.ErrSigning):
		return KindSigning
	case errors.Is(err, spec.ErrInvalidSeed):
		return KindInvalidSeed
	default:
		return KindInternal
	}
}
