package flow

import (
	"context"
	"encoding/hex"
	"fmt"
	"regexp"
	"strings"

	"github.com/ethereum/go-ethereum/common"

	"github.com/ssvlabs/coa-proof/spec"
)

// DefaultStoragePath is where wallets keep an account's cadence owned account.
const DefaultStoragePath = "evm"

const boundAddressScript = `import EVM from %s

access(all)
fun main(address: Address, path: String): String {
    let account = getAuthAccount<auth(Storage) &Account>(address)
    let storagePath = StoragePath(identifier: path) ?? panic("Invalid storage path identifier")
    let coa = account.storage.borrow<&EVM.CadenceOwnedAccount>(from: storagePath)
        ?? panic("Could not borrow reference to the COA")
    let bytes: [UInt8] = []
    for byte in coa.address().bytes {
        bytes.append(byte)
    }
    return String.encodeHex(bytes)
}
`

var identifierRE = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// BoundAddressScript returns the Cadence query reading the EVM address of the COA an
// account stores, importing EVM from evmContract.
func BoundAddressScript(evmContract Address) string {
	return fmt.Sprintf(boundAddressScript, evmContract.Hex())
}

// ResolveBoundAddress reads the EVM address of the COA stored by account under storagePath.
// The result is not compared with any proof.
func (c *Client) ResolveBoundAddress(ctx context.Context, evmContract, account Address, storagePath string) (common.Address, error) {
	if storagePath == "" {
		storagePath = DefaultStoragePath
	}
	if !identifierRE.MatchString(storagePath) {
		return common.Address{}, fmt.Errorf("%w: invalid storage path identifier %q", spec.ErrEncoding, storagePath)
	}
	v, err := c.ExecuteScript(ctx, BoundAddressScript(evmContract), AddressValue(account), StringValue(storagePath))
	if err != nil {
		return common.Address{}, err
	}
	s, err := v.ToString()
	if err != nil {
		return common.Address{}, err
	}
	return parseEVMAddress(s)
}

func parseEVMAddress(s string) (common.Address, error) {
	b, err := hex.DecodeString(strings.TrimPrefix(s, "0x"))
	if err != nil {
		return common.Address{}, fmt.Errorf("invalid evm address %q: %w", s, err)
	}
	if len(b) != common.AddressLength {
		return common.Address{}, fmt.Errorf("evm address %q must be %d bytes", s, common.AddressLength)
	}
	return common.BytesToAddress(b), nil
}
