package utils

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/ssvlabs/coa-proof/cli/flags"
	"github.com/ssvlabs/coa-proof/pkgs/crypto"
	"github.com/ssvlabs/coa-proof/pkgs/load"
	"github.com/ssvlabs/coa-proof/pkgs/logging"
	"github.com/ssvlabs/coa-proof/pkgs/utils"
	"github.com/ssvlabs/coa-proof/spec"
)

// SetViperConfig reads a yaml config file if provided
func SetViperConfig(cmd *cobra.Command) error {
	if err := viper.BindPFlag("configYAML", cmd.PersistentFlags().Lookup("configYAML")); err != nil {
		return err
	}
	configYAML := viper.GetString("configYAML")
	if configYAML != "" {
		if _, err := os.Stat(configYAML); os.IsNotExist(err) {
			return err
		}
		viper.SetConfigType("yaml")
		viper.SetConfigFile(configYAML)
		if err := viper.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return err
			}
		}
		fmt.Fprintf(os.Stderr, "🗄️ config yaml file found at %s, using it \n", configYAML)
	}
	return nil
}

// SetGlobalLogger creates a logger
func SetGlobalLogger(cmd *cobra.Command, name string) (*zap.Logger, error) {
	if err := logging.SetGlobalLogger(flags.LogLevel, flags.LogLevelFormat, flags.LogFormat, &logging.LogFileOptions{FileName: flags.LogFilePath}); err != nil {
		return nil, fmt.Errorf("logging.SetGlobalLogger: %w", err)
	}
	logger := zap.L().Named(name)
	return logger, nil
}

// LoadMnemonic opens the mnemonic file named by the key flags.
func LoadMnemonic() (string, error) {
	mnemonic, err := load.Mnemonic(flags.MnemonicFile, flags.PasswordFile)
	if err != nil {
		return "", errors.Wrap(err, "😥 failed to load mnemonic")
	}
	return mnemonic, nil
}

// DeriveKeys derives one key pair per derivation path flag.
func DeriveKeys() ([]*crypto.KeyPair, error) {
	mnemonic, err := LoadMnemonic()
	if err != nil {
		return nil, err
	}
	keys := make([]*crypto.KeyPair, 0, len(flags.DerivationPaths))
	for _, path := range flags.DerivationPaths {
		kp, err := crypto.DeriveKey(mnemonic, flags.Passphrase, crypto.CurveSecp256k1, path)
		if err != nil {
			return nil, errors.Wrapf(err, "😥 failed to derive key at %s", path)
		}
		keys = append(keys, kp)
	}
	return keys, nil
}

// LoadSigners derives the signing keys and pairs them with their account key indices.
func LoadSigners() ([]spec.ProofSigner, []*crypto.KeyPair, error) {
	alg, err := spec.ParseHashAlgorithm(flags.HashAlgorithm)
	if err != nil {
		return nil, nil, errors.Wrap(err, "😥 wrong hashAlgorithm flag")
	}
	keys, err := DeriveKeys()
	if err != nil {
		return nil, nil, err
	}
	signers := make([]spec.ProofSigner, len(keys))
	for i, kp := range keys {
		signers[i] = spec.ProofSigner{
			KeyIndex: flags.KeyIndices[i],
			Signer:   spec.NewKeySigner(crypto.ECDSASigner(kp.PrivateKey), alg),
		}
	}
	return signers, keys, nil
}

// WriteResult stores data as name under the output path flag. Nothing is written without one.
func WriteResult(logger *zap.Logger, name string, data any) error {
	if flags.OutputPath == "" {
		return nil
	}
	if err := CreateDirIfNotExist(flags.OutputPath); err != nil {
		return err
	}
	path := filepath.Join(flags.OutputPath, name)
	if err := utils.WriteJSON(path, data); err != nil {
		return errors.Wrapf(err, "😥 failed to write %s", path)
	}
	logger.Info("💾 result written", zap.String("path", path))
	return nil
}

func CreateDirIfNotExist(path string) error {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return os.MkdirAll(path, os.ModePerm)
		}
		return err
	}
	return nil
}
