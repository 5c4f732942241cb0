package flags

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ssvlabs/coa-proof/pkgs/crypto"
	"github.com/ssvlabs/coa-proof/pkgs/flow"
)

// Flag names.
const (
	mnemonicFile    = "mnemonicFile"
	passwordFile    = "passwordFile"
	passphrase      = "passphrase"
	derivationPaths = "derivationPaths"
	keyIndices      = "keyIndices"
	hashAlgorithm   = "hashAlgorithm"
	account         = "account"
	capabilityPath  = "capabilityPath"
)

// key flags
var (
	MnemonicFile    string
	PasswordFile    string
	Passphrase      string
	DerivationPaths []string
	KeyIndices      []uint64
	HashAlgorithm   string
	Account         flow.Address
	CapabilityPath  string
)

func SetKeyFlags(cmd *cobra.Command) {
	MnemonicFileFlag(cmd)
	PasswordFileFlag(cmd)
	AddPersistentStringFlag(cmd, passphrase, "", "Optional BIP-39 passphrase", false)
	AddPersistentStringSliceFlag(cmd, derivationPaths, []string{crypto.FlowDerivationPath}, "Derivation paths of the signing keys", false)
	AddPersistentStringSliceFlag(cmd, keyIndices, []string{"0"}, "Account key index of every derivation path", false)
	AddPersistentStringFlag(cmd, hashAlgorithm, "SHA2_256", "Hash algorithm of the account keys: SHA2_256 or SHA3_256", false)
}

// BindKeyFlags binds flags to yaml config parameters for commands that derive keys
func BindKeyFlags(cmd *cobra.Command) error {
	if err := bindMnemonicFlags(cmd); err != nil {
		return err
	}
	if err := bindPersistent(cmd, passphrase, derivationPaths, keyIndices, hashAlgorithm); err != nil {
		return err
	}
	Passphrase = viper.GetString(passphrase)
	DerivationPaths = viper.GetStringSlice(derivationPaths)
	HashAlgorithm = viper.GetString(hashAlgorithm)
	indices, err := StringSliceToUintArray(viper.GetStringSlice(keyIndices))
	if err != nil {
		return fmt.Errorf("😥 wrong keyIndices flag: %w", err)
	}
	if len(indices) != len(DerivationPaths) {
		return fmt.Errorf("😥 %d key indices given for %d derivation paths", len(indices), len(DerivationPaths))
	}
	KeyIndices = indices
	return nil
}

func bindMnemonicFlags(cmd *cobra.Command) error {
	if err := bindPersistent(cmd, mnemonicFile, passwordFile); err != nil {
		return err
	}
	if viper.GetString(mnemonicFile) == "" {
		return fmt.Errorf("😥 mnemonicFile flag is required")
	}
	MnemonicFile = filepath.Clean(viper.GetString(mnemonicFile))
	if strings.Contains(MnemonicFile, "..") {
		return fmt.Errorf("😥 wrong mnemonicFile flag")
	}
	PasswordFile = viper.GetString(passwordFile)
	if PasswordFile != "" {
		PasswordFile = filepath.Clean(PasswordFile)
		if strings.Contains(PasswordFile, "..") {
			return fmt.Errorf("😥 wrong passwordFile flag")
		}
	}
	return nil
}

func SetAccountFlags(cmd *cobra.Command) {
	AddPersistentStringFlag(cmd, account, "", "Flow account address", false)
	CapabilityPathFlag(cmd)
}

// BindAccountFlags binds the source ledger account flags
func BindAccountFlags(cmd *cobra.Command) error {
	if err := bindPersistent(cmd, account, capabilityPath); err != nil {
		return err
	}
	if viper.GetString(account) == "" {
		return fmt.Errorf("😥 account flag is required")
	}
	var err error
	Account, err = flow.HexToAddress(viper.GetString(account))
	if err != nil {
		return fmt.Errorf("😥 wrong account flag: %w", err)
	}
	CapabilityPath = viper.GetString(capabilityPath)
	return nil
}

// MnemonicFileFlag adds path to a plaintext or encrypted mnemonic file flag to the command
func MnemonicFileFlag(c *cobra.Command) {
	AddPersistentStringFlag(c, mnemonicFile, "", "Path to a plaintext or keystore encrypted mnemonic file", false)
}

// PasswordFileFlag adds path to the mnemonic keystore password file flag to the command
func PasswordFileFlag(c *cobra.Command) {
	AddPersistentStringFlag(c, passwordFile, "", "Path to a file holding the mnemonic keystore password", false)
}

// CapabilityPathFlag adds the COA storage path flag to the command
func CapabilityPathFlag(c *cobra.Command) {
	AddPersistentStringFlag(c, capabilityPath, flow.DefaultStoragePath, "Storage path identifier of the COA resource", false)
}

func StringSliceToUintArray(flagdata []string) ([]uint64, error) {
	partsarr := make([]uint64, 0, len(flagdata))
	for i := 0; i < len(flagdata); i++ {
		opid, err := strconv.ParseUint(strings.TrimSpace(flagdata[i]), 10, strconv.IntSize)
		if err != nil {
			return nil, fmt.Errorf("😥 cant load key index: %s, err: %v", flagdata[i], err)
		}
		partsarr = append(partsarr, opid)
	}
	return partsarr, nil
}
