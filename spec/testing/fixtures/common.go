package fixtures

import (
	"crypto/ecdsa"
	"encoding/hex"

	"github.com/ethereum/go-ethereum/common"

	"github.com/ssvlabs/coa-proof/pkgs/crypto"
	"github.com/ssvlabs/coa-proof/spec"
)

const (
	TestMnemonic = "abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon about"

	TestKey1SK = "4c0883a69102937d6231471b5dbb6204fe5129617082792ae468d01a3f362318"
	TestKey2SK = "ae6ae8e5ccbfb04590405997ee2d52d2b330726137b875053c36d94e974d162f"
	TestKey3SK = "b71c71a67e1177ad4e901695e1b4b9ee17ae16c6668d313eac2f96dbcda3f291"

	TestCapabilityPath = "evm"
)

var (
	TestFlowAddress = []byte{0xf8, 0xd6, 0xe0, 0x58, 0x6b, 0x0a, 0x20, 0xc7}
	TestCOAAddress  = common.HexToAddress("0x0000000000000000000000020000000000000001")
	TestMessage     = []byte("this is a message")
)

var testKeys = []string{TestKey1SK, TestKey2SK, TestKey3SK}

func KeySK(str string) *ecdsa.PrivateKey {
	sk, err := crypto.PrivateKeyFromBytes(DecodeHexNoError(str))
	if err != nil {
		panic(err)
	}
	return sk
}

// AccountKeys registers test key i under index i with the given weights.
func AccountKeys(weights ...uint64) map[uint64]spec.AccountKey {
	keys := make(map[uint64]spec.AccountKey, len(weights))
	for i, w := range weights {
		keys[uint64(i)] = spec.AccountKey{
			PublicKey:     crypto.EncodePublicKey(&KeySK(testKeys[i]).PublicKey),
			HashAlgorithm: spec.SHA2_256,
			Weight:        w,
		}
	}
	return keys
}

// Signers returns proof signers for the given test key indices.
func Signers(indices ...uint64) []spec.ProofSigner {
	ret := make([]spec.ProofSigner, 0, len(indices))
	for _, idx := range indices {
		ret = append(ret, spec.ProofSigner{
			KeyIndex: idx,
			Signer:   spec.ECDSASigner(KeySK(testKeys[idx])),
		})
	}
	return ret
}

func DecodeHexNoError(str string) []byte {
	ret, _ := hex.DecodeString(str)
	return ret
}
