package testing

import (
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"

	"github.com/ssvlabs/coa-proof/pkgs/crypto"
	"github.com/ssvlabs/coa-proof/spec"
	"github.com/ssvlabs/coa-proof/spec/testing/fixtures"
)

func TestKeySigner(t *testing.T) {
	sk := fixtures.KeySK(fixtures.TestKey1SK)
	pk := crypto.EncodePublicKey(&sk.PublicKey)
	signer := spec.ECDSASigner(sk)
	md := spec.MessageDigest(fixtures.TestMessage)

	t.Run("user message", func(t *testing.T) {
		sig, err := signer.SignUserMessage(md[:])
		require.NoError(t, err)
		require.Len(t, sig, spec.SignatureLength)

		digest := spec.SigningDigest(spec.SHA2_256, md)
		require.True(t, spec.Verify(sig, digest[:], pk))

		direct, err := signer.Sign(digest[:])
		require.NoError(t, err)
		require.Equal(t, direct, sig)
	})

	t.Run("transaction tag does not verify as user message", func(t *testing.T) {
		sig, err := signer.SignTransaction(md[:])
		require.NoError(t, err)

		userDigest := spec.SigningDigest(spec.SHA2_256, md)
		require.False(t, spec.Verify(sig, userDigest[:], pk))

		txDigest := spec.Hash(spec.TransactionDomainTag, md[:])
		require.True(t, spec.Verify(sig, txDigest[:], pk))
	})

	t.Run("sha3 key", func(t *testing.T) {
		s := spec.NewKeySigner(crypto.ECDSASigner(sk), spec.SHA3_256)
		require.Equal(t, spec.SHA3_256, s.HashAlgorithm())
		sig, err := s.SignUserMessage(md[:])
		require.NoError(t, err)

		digest := spec.SigningDigest(spec.SHA3_256, md)
		require.True(t, spec.Verify(sig, digest[:], pk))
	})

	t.Run("bad digest", func(t *testing.T) {
		_, err := signer.Sign(md[:16])
		require.ErrorIs(t, err, spec.ErrSigning)
	})

	t.Run("unsupported hash algorithm", func(t *testing.T) {
		s := spec.NewKeySigner(crypto.ECDSASigner(sk), spec.HashAlgorithm("SHA3_384"))
		_, err := s.SignUserMessage(md[:])
		require.ErrorIs(t, err, spec.ErrSigning)
	})
}

func TestVerifyOwnershipProofHashAlgorithm(t *testing.T) {
	md := spec.MessageDigest(fixtures.TestMessage)
	proof, err := spec.SignOwnershipProof(fixtures.TestFlowAddress, fixtures.TestCapabilityPath, md, fixtures.Signers(0)...)
	require.NoError(t, err)

	keys := fixtures.AccountKeys(spec.FullWeight)
	require.NoError(t, spec.VerifyOwnershipProof(proof, md, keys))

	key := keys[0]
	key.HashAlgorithm = spec.SHA3_256
	keys[0] = key
	require.ErrorIs(t, spec.VerifyOwnershipProof(proof, md, keys), spec.ErrVerificationFailed)

	key.HashAlgorithm = "SHA3_384"
	keys[0] = key
	err = spec.VerifyOwnershipProof(proof, md, keys)
	require.ErrorIs(t, err, spec.ErrVerificationFailed)
	require.Contains(t, err.Error(), "unsupported hash algorithm")
}

func TestSignOwnershipProof(t *testing.T) {
	md := spec.MessageDigest(fixtures.TestMessage)

	t.Run("single full weight key", func(t *testing.T) {
		proof, err := spec.SignOwnershipProof(fixtures.TestFlowAddress, fixtures.TestCapabilityPath, md, fixtures.Signers(0)...)
		require.NoError(t, err)
		require.Equal(t, []uint64{0}, proof.KeyIndices)
		require.Equal(t, fixtures.TestFlowAddress, proof.Address)
		require.Equal(t, "evm", proof.CapabilityPath)
		require.NoError(t, spec.VerifyOwnershipProof(proof, md, fixtures.AccountKeys(1000)))

		encoded, err := proof.Encode()
		require.NoError(t, err)
		decoded, err := spec.DecodeOwnershipProof(encoded)
		require.NoError(t, err)
		require.NoError(t, spec.VerifyOwnershipProof(decoded, md, fixtures.AccountKeys(1000)))
	})

	t.Run("multi key", func(t *testing.T) {
		proof, err := spec.SignOwnershipProof(fixtures.TestFlowAddress, fixtures.TestCapabilityPath, md, fixtures.Signers(0, 2)...)
		require.NoError(t, err)
		require.NoError(t, spec.VerifyOwnershipProof(proof, md, fixtures.AccountKeys(500, 1000, 500)))
	})

	t.Run("insufficient weight", func(t *testing.T) {
		proof, err := spec.SignOwnershipProof(fixtures.TestFlowAddress, fixtures.TestCapabilityPath, md, fixtures.Signers(0)...)
		require.NoError(t, err)
		require.ErrorIs(t, spec.VerifyOwnershipProof(proof, md, fixtures.AccountKeys(999)), spec.ErrVerificationFailed)
	})

	t.Run("revoked key", func(t *testing.T) {
		proof, err := spec.SignOwnershipProof(fixtures.TestFlowAddress, fixtures.TestCapabilityPath, md, fixtures.Signers(0)...)
		require.NoError(t, err)
		keys := fixtures.AccountKeys(1000)
		k := keys[0]
		k.Revoked = true
		keys[0] = k
		require.ErrorIs(t, spec.VerifyOwnershipProof(proof, md, keys), spec.ErrVerificationFailed)
	})

	t.Run("duplicate key", func(t *testing.T) {
		proof, err := spec.SignOwnershipProof(fixtures.TestFlowAddress, fixtures.TestCapabilityPath, md, fixtures.Signers(0, 0)...)
		require.NoError(t, err)
		require.ErrorIs(t, spec.VerifyOwnershipProof(proof, md, fixtures.AccountKeys(500)), spec.ErrVerificationFailed)
	})

	t.Run("unknown key", func(t *testing.T) {
		proof, err := spec.SignOwnershipProof(fixtures.TestFlowAddress, fixtures.TestCapabilityPath, md, fixtures.Signers(1)...)
		require.NoError(t, err)
		require.ErrorIs(t, spec.VerifyOwnershipProof(proof, md, fixtures.AccountKeys(1000)), spec.ErrVerificationFailed)
	})

	t.Run("signer mismatch", func(t *testing.T) {
		signers := fixtures.Signers(1)
		signers[0].KeyIndex = 0
		proof, err := spec.SignOwnershipProof(fixtures.TestFlowAddress, fixtures.TestCapabilityPath, md, signers...)
		require.NoError(t, err)
		require.ErrorIs(t, spec.VerifyOwnershipProof(proof, md, fixtures.AccountKeys(1000, 1000)), spec.ErrVerificationFailed)
	})

	t.Run("other message", func(t *testing.T) {
		proof, err := spec.SignOwnershipProof(fixtures.TestFlowAddress, fixtures.TestCapabilityPath, md, fixtures.Signers(0)...)
		require.NoError(t, err)
		other := spec.MessageDigest([]byte("this is another message"))
		require.ErrorIs(t, spec.VerifyOwnershipProof(proof, other, fixtures.AccountKeys(1000)), spec.ErrVerificationFailed)
	})

	t.Run("malformed proof", func(t *testing.T) {
		require.ErrorIs(t, spec.VerifyOwnershipProof(&spec.OwnershipProof{}, md, fixtures.AccountKeys(1000)), spec.ErrVerificationFailed)
	})

	t.Run("no signers", func(t *testing.T) {
		_, err := spec.SignOwnershipProof(fixtures.TestFlowAddress, fixtures.TestCapabilityPath, md)
		require.ErrorIs(t, err, spec.ErrSigning)
	})
}

func TestCheckBinding(t *testing.T) {
	require.NoError(t, spec.CheckBinding(fixtures.TestCOAAddress, fixtures.TestCOAAddress))
	require.ErrorIs(t, spec.CheckBinding(fixtures.TestCOAAddress, common.Address{1}), spec.ErrVerificationFailed)
}

func TestIsRetryable(t *testing.T) {
	require.True(t, spec.IsRetryable(spec.ErrTransport))
	require.False(t, spec.IsRetryable(spec.ErrVerificationFailed))
	require.False(t, spec.IsRetryable(spec.ErrEncoding))
}
