package prover

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/ssvlabs/coa-proof/cli/flags"
	cli_utils "github.com/ssvlabs/coa-proof/cli/utils"
	"github.com/ssvlabs/coa-proof/pkgs/load"
)

func init() {
	flags.SetBaseFlags(EncryptMnemonic)
	flags.MnemonicFileFlag(EncryptMnemonic)
	flags.PasswordFileFlag(EncryptMnemonic)
}

var EncryptMnemonic = &cobra.Command{
	Use:   "encrypt-mnemonic",
	Short: "Encrypts a plaintext mnemonic file into a keystore",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cli_utils.SetViperConfig(cmd); err != nil {
			return err
		}
		if err := flags.BindBaseFlags(cmd); err != nil {
			return err
		}
		if err := viper.BindPFlag("mnemonicFile", cmd.PersistentFlags().Lookup("mnemonicFile")); err != nil {
			return err
		}
		if err := viper.BindPFlag("passwordFile", cmd.PersistentFlags().Lookup("passwordFile")); err != nil {
			return err
		}
		logger, err := cli_utils.SetGlobalLogger(cmd, "encrypt-mnemonic")
		if err != nil {
			return err
		}
		mnemonicFile, passwordFile := viper.GetString("mnemonicFile"), viper.GetString("passwordFile")
		if mnemonicFile == "" || passwordFile == "" {
			return fmt.Errorf("😥 mnemonicFile and passwordFile flags are required")
		}
		mnemonic, err := load.Mnemonic(mnemonicFile, "")
		if err != nil {
			return errors.Wrap(err, "😥 failed to read plaintext mnemonic")
		}
		password, err := load.Password(passwordFile)
		if err != nil {
			return err
		}
		outDir := flags.OutputPath
		if outDir == "" {
			outDir = "."
		}
		if err := cli_utils.CreateDirIfNotExist(outDir); err != nil {
			return err
		}
		out := filepath.Join(outDir, "encrypted_mnemonic.json")
		if _, err := os.Stat(out); err == nil {
			return fmt.Errorf("😥 %s already exists", out)
		}
		if err := load.EncryptMnemonic(out, mnemonic, password); err != nil {
			return errors.Wrap(err, "😥 failed to encrypt mnemonic")
		}
		logger.Info("🔐 encrypted mnemonic written, the plaintext file can now be removed", zap.String("path", out))
		return nil
	},
}
