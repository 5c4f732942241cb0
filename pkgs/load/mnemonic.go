package load

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/tyler-smith/go-bip39"
	keystorev4 "github.com/wealdtech/go-eth2-wallet-encryptor-keystorev4"

	"github.com/ssvlabs/coa-proof/pkgs/crypto"
)

// Password reads a password file, trimming the trailing newline editors leave behind.
func Password(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read password file: %w", err)
	}
	return strings.TrimRight(string(data), "\r\n"), nil
}

// Mnemonic loads a mnemonic from path. A keystore document is decrypted with the password
// stored at passwordPath, anything else is read as a plaintext phrase.
func Mnemonic(path, passwordPath string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read mnemonic file: %w", err)
	}
	data = bytes.TrimSpace(data)
	if !isKeystore(data) {
		return crypto.NormalizeMnemonic(string(data)), nil
	}
	if passwordPath == "" {
		return "", fmt.Errorf("mnemonic file %s is encrypted, a password file is required", path)
	}
	password, err := Password(passwordPath)
	if err != nil {
		return "", err
	}
	secret, err := crypto.DecryptSecret(data, password)
	if err != nil {
		return "", err
	}
	return string(secret), nil
}

// EncryptMnemonic writes mnemonic to path as a keystore document protected by password.
func EncryptMnemonic(path, mnemonic, password string, opts ...keystorev4.Option) error {
	mnemonic = crypto.NormalizeMnemonic(mnemonic)
	if !bip39.IsMnemonicValid(mnemonic) {
		return fmt.Errorf("%w: mnemonic failed validation", crypto.ErrInvalidSeed)
	}
	if password == "" {
		return fmt.Errorf("empty password")
	}
	data, err := crypto.EncryptSecret([]byte(mnemonic), password, opts...)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}

func isKeystore(data []byte) bool {
	if len(data) == 0 || data[0] != '{' {
		return false
	}
	var doc struct {
		Checksum json.RawMessage `json:"checksum"`
		Cipher   json.RawMessage `json:"cipher"`
	}
	return json.Unmarshal(data, &doc) == nil && doc.Cipher != nil
}
