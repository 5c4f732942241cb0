package eip1271

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"
)

type answerCaller struct {
	answer []byte
	data   []byte
	to     *common.Address
}

func (c *answerCaller) CodeAt(context.Context, common.Address, *big.Int) ([]byte, error) {
	return []byte{0x60}, nil
}

func (c *answerCaller) CallContract(_ context.Context, call ethereum.CallMsg, _ *big.Int) ([]byte, error) {
	c.data, c.to = call.Data, call.To
	return c.answer, nil
}

func TestEip1271Caller(t *testing.T) {
	target := common.HexToAddress("0x0000000000000000000000020000000000000001")
	var hash [32]byte
	hash[0] = 0x11
	sig := []byte{9, 8, 7}

	answer, err := PackIsValidSignatureOutput(MagicValue)
	require.NoError(t, err)
	backend := &answerCaller{answer: answer}
	caller, err := NewEip1271Caller(target, backend)
	require.NoError(t, err)

	value, err := caller.IsValidSignature(&bind.CallOpts{Context: context.Background()}, hash, sig)
	require.NoError(t, err)
	require.Equal(t, MagicValue, value)
	require.Equal(t, &target, backend.to)

	gotHash, gotSig, err := UnpackIsValidSignatureInput(backend.data)
	require.NoError(t, err)
	require.Equal(t, hash, gotHash)
	require.Equal(t, sig, gotSig)
}

func TestPackIsValidSignature(t *testing.T) {
	var hash [32]byte
	hash[0], hash[31] = 0xaa, 0xbb
	sig := []byte{1, 2, 3, 4, 5}

	data, err := PackIsValidSignature(hash, sig)
	require.NoError(t, err)
	require.Equal(t, MagicValue[:], data[:4], "selector of isValidSignature(bytes32,bytes)")

	gotHash, gotSig, err := UnpackIsValidSignatureInput(data)
	require.NoError(t, err)
	require.Equal(t, hash, gotHash)
	require.Equal(t, sig, gotSig)

	_, _, err = UnpackIsValidSignatureInput([]byte{0x20, 0xc1, 0x3b, 0x0b})
	require.Error(t, err)
}

func TestPackIsValidSignatureOutput(t *testing.T) {
	out, err := PackIsValidSignatureOutput(MagicValue)
	require.NoError(t, err)
	require.Len(t, out, 32)
	require.Equal(t, MagicValue[:], out[:4])
}

func TestIsRevert(t *testing.T) {
	require.True(t, IsRevert(&RevertError{Reason: "bad proof"}))
	require.True(t, IsRevert(fmt.Errorf("call: %w", &RevertError{})))
	require.True(t, IsRevert(errors.New("execution reverted")))
	require.False(t, IsRevert(errors.New("connection refused")))
	require.False(t, IsRevert(nil))
}
