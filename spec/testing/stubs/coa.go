package stubs

import (
	"bytes"

	"github.com/ethereum/go-ethereum"

	"github.com/ssvlabs/coa-proof/spec"
	"github.com/ssvlabs/coa-proof/spec/eip1271"
)

// COAContract simulates a cadence owned account answering isValidSignature. It decodes
// the ownership proof and checks it against the keys of the bound source account.
type COAContract struct {
	Account        []byte
	CapabilityPath string
	Keys           map[uint64]spec.AccountKey
}

func (c *COAContract) Call(call ethereum.CallMsg) ([]byte, error) {
	hash, sig, err := eip1271.UnpackIsValidSignatureInput(call.Data)
	if err != nil {
		return nil, &eip1271.RevertError{Reason: err.Error()}
	}
	proof, err := spec.DecodeOwnershipProof(sig)
	if err != nil {
		return nil, &eip1271.RevertError{Reason: err.Error()}
	}

	result := eip1271.MagicValue
	if !bytes.Equal(proof.Address, c.Account) || proof.CapabilityPath != c.CapabilityPath {
		result = eip1271.InvalidSigValue
	} else if err := spec.VerifyOwnershipProof(proof, hash, c.Keys); err != nil {
		result = eip1271.InvalidSigValue
	}
	return eip1271.PackIsValidSignatureOutput(result)
}
