package eip1271

import (
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
)

// Eip1271MetaData contains the read-only ERC-1271 interface exposed by cadence owned accounts.
var Eip1271MetaData = &bind.MetaData{
	ABI: "[{\"inputs\":[{\"internalType\":\"bytes32\",\"name\":\"_hash\",\"type\":\"bytes32\"},{\"internalType\":\"bytes\",\"name\":\"_sig\",\"type\":\"bytes\"}],\"name\":\"isValidSignature\",\"outputs\":[{\"internalType\":\"bytes4\",\"name\":\"\",\"type\":\"bytes4\"}],\"stateMutability\":\"view\",\"type\":\"function\"}]",
}

// Eip1271Caller is a read-only Go binding around an ERC-1271 contract.
type Eip1271Caller struct {
	contract *bind.BoundContract // Generic contract wrapper for the low level calls
}

// NewEip1271Caller creates a new read-only instance of Eip1271, bound to a specific deployed contract.
func NewEip1271Caller(address common.Address, caller bind.ContractCaller) (*Eip1271Caller, error) {
	parsed, err := Eip1271MetaData.GetAbi()
	if err != nil {
		return nil, err
	}
	return &Eip1271Caller{contract: bind.NewBoundContract(address, *parsed, caller, nil, nil)}, nil
}

// IsValidSignature is a free data retrieval call binding the contract method 0x1626ba7e.
//
// Solidity: function isValidSignature(bytes32 _hash, bytes _sig) view returns(bytes4)
func (_Eip1271 *Eip1271Caller) IsValidSignature(opts *bind.CallOpts, _hash [32]byte, _sig []byte) ([4]byte, error) {
	var out []interface{}
	err := _Eip1271.contract.Call(opts, &out, "isValidSignature", _hash, _sig)

	if err != nil {
		return *new([4]byte), err
	}

	out0 := *abi.ConvertType(out[0], new([4]byte)).(*[4]byte)

	return out0, err

}
