package spec

import (
	"bytes"
	"fmt"
)

// ProofSigner is an account key able to sign for a proof.
type ProofSigner struct {
	KeyIndex uint64
	Signer   *KeySigner
}

// SignOwnershipProof signs messageDigest with every signer under the user tag and
// assembles the proof in signer order.
func SignOwnershipProof(address []byte, capabilityPath string, messageDigest [32]byte, signers ...ProofSigner) (*OwnershipProof, error) {
	if len(signers) == 0 {
		return nil, fmt.Errorf("%w: no signers", ErrSigning)
	}
	proof := &OwnershipProof{
		Address:        append([]byte(nil), address...),
		CapabilityPath: capabilityPath,
	}
	for _, s := range signers {
		sig, err := s.Signer.SignUserMessage(messageDigest[:])
		if err != nil {
			return nil, fmt.Errorf("key %d: %w", s.KeyIndex, err)
		}
		proof.KeyIndices = append(proof.KeyIndices, s.KeyIndex)
		proof.Signatures = append(proof.Signatures, sig)
	}
	if err := proof.Validate(); err != nil {
		return nil, err
	}
	return proof, nil
}

// VerifyOwnershipProof checks proof offline against the account keys of proof.Address.
// Every signature must verify under its key, keys may not repeat or be revoked and the
// accumulated weight must reach FullWeight.
func VerifyOwnershipProof(proof *OwnershipProof, messageDigest [32]byte, keys map[uint64]AccountKey) error {
	if err := proof.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrVerificationFailed, err)
	}
	seen := make(map[uint64]bool, len(proof.KeyIndices))
	var weight uint64
	for i, idx := range proof.KeyIndices {
		if seen[idx] {
			return fmt.Errorf("%w: key %d used twice", ErrVerificationFailed, idx)
		}
		seen[idx] = true

		key, ok := keys[idx]
		if !ok {
			return fmt.Errorf("%w: unknown key index %d", ErrVerificationFailed, idx)
		}
		if key.Revoked {
			return fmt.Errorf("%w: key %d is revoked", ErrVerificationFailed, idx)
		}
		if !key.HashAlgorithm.Valid() {
			return fmt.Errorf("%w: key %d uses unsupported hash algorithm %q", ErrVerificationFailed, idx, string(key.HashAlgorithm))
		}
		digest := SigningDigest(key.HashAlgorithm, messageDigest)
		if !Verify(proof.Signatures[i], digest[:], key.PublicKey) {
			return fmt.Errorf("%w: invalid signature for key %d", ErrVerificationFailed, idx)
		}
		weight += key.Weight
	}
	if weight < FullWeight {
		return fmt.Errorf("%w: key weight %d below %d", ErrVerificationFailed, weight, FullWeight)
	}
	return nil
}

// CheckBinding compares the address a source account resolves to with the contract a proof
// is verified against.
func CheckBinding(resolved, target [20]byte) error {
	if !bytes.Equal(resolved[:], target[:]) {
		return fmt.Errorf("%w: account is bound to 0x%x, not 0x%x", ErrVerificationFailed, resolved, target)
	}
	return nil
}
