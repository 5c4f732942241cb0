package eip1271

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/rpc"
)

var MagicValue = [4]byte{0x16, 0x26, 0xba, 0x7e}
var InvalidSigValue = [4]byte{0xff, 0xff, 0xff, 0xff}

const methodName = "isValidSignature"

// revertErrorCode is the JSON-RPC code nodes use for execution reverts.
const revertErrorCode = 3

type ETHClient interface {
	BlockNumber(ctx context.Context) (uint64, error)
	bind.ContractBackend
}

// PackIsValidSignature returns the calldata for isValidSignature(hash, sig).
func PackIsValidSignature(hash [32]byte, sig []byte) ([]byte, error) {
	parsed, err := Eip1271MetaData.GetAbi()
	if err != nil {
		return nil, err
	}
	return parsed.Pack(methodName, hash, sig)
}

// UnpackIsValidSignatureInput reverses PackIsValidSignature.
func UnpackIsValidSignatureInput(data []byte) ([32]byte, []byte, error) {
	var hash [32]byte
	parsed, err := Eip1271MetaData.GetAbi()
	if err != nil {
		return hash, nil, err
	}
	method, ok := parsed.Methods[methodName]
	if !ok {
		return hash, nil, fmt.Errorf("method %s missing from abi", methodName)
	}
	if len(data) < 4 || !bytes.Equal(data[:4], method.ID) {
		return hash, nil, errors.New("calldata does not target isValidSignature")
	}
	args, err := method.Inputs.Unpack(data[4:])
	if err != nil {
		return hash, nil, err
	}
	hash, ok = args[0].([32]byte)
	if !ok {
		return hash, nil, errors.New("unexpected hash argument type")
	}
	sig, ok := args[1].([]byte)
	if !ok {
		return hash, nil, errors.New("unexpected signature argument type")
	}
	return hash, sig, nil
}

// PackIsValidSignatureOutput encodes a bytes4 return value.
func PackIsValidSignatureOutput(value [4]byte) ([]byte, error) {
	parsed, err := Eip1271MetaData.GetAbi()
	if err != nil {
		return nil, err
	}
	return parsed.Methods[methodName].Outputs.Pack(value)
}

// IsRevert reports whether err carries an execution revert from the node.
func IsRevert(err error) bool {
	if err == nil {
		return false
	}
	var rpcErr rpc.Error
	if errors.As(err, &rpcErr) && rpcErr.ErrorCode() == revertErrorCode {
		return true
	}
	return strings.Contains(err.Error(), "execution reverted")
}

// RevertError is returned by simulated backends for a reverted call.
type RevertError struct {
	Reason string
}

func (e *RevertError) Error() string {
	if e.Reason == "" {
		return "execution reverted"
	}
	return "execution reverted: " + e.Reason
}

func (e *RevertError) ErrorCode() int { return revertErrorCode }

func (e *RevertError) ErrorData() interface{} { return e.Reason }
