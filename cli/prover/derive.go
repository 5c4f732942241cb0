package prover

import (
	"encoding/hex"
	"fmt"
	"os"

	"github.com/aquasecurity/table"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ssvlabs/coa-proof/cli/flags"
	cli_utils "github.com/ssvlabs/coa-proof/cli/utils"
)

func init() {
	flags.SetBaseFlags(Derive)
	flags.SetKeyFlags(Derive)
}

// DerivedKey is the public part of a derived account key.
type DerivedKey struct {
	KeyIndex  uint64 `json:"keyIndex"`
	Path      string `json:"path"`
	PublicKey string `json:"publicKey"`
}

var Derive = &cobra.Command{
	Use:   "derive",
	Short: "Derives account public keys from a mnemonic",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := bindKeyCommand(cmd); err != nil {
			return err
		}
		logger, err := cli_utils.SetGlobalLogger(cmd, "derive")
		if err != nil {
			return err
		}
		keys, err := cli_utils.DeriveKeys()
		if err != nil {
			logger.Error("😥 Failed to derive keys", zap.Error(err))
			return err
		}
		derived := make([]DerivedKey, len(keys))
		tbl := table.New(os.Stdout)
		tbl.SetHeaders("Key Index", "Derivation Path", "Public Key")
		for i, kp := range keys {
			derived[i] = DerivedKey{
				KeyIndex:  flags.KeyIndices[i],
				Path:      kp.Path.String(),
				PublicKey: hex.EncodeToString(kp.PublicKey()),
			}
			tbl.AddRow(fmt.Sprintf("%d", derived[i].KeyIndex), derived[i].Path, derived[i].PublicKey)
		}
		tbl.Render()
		return cli_utils.WriteResult(logger, "public_keys.json", derived)
	},
}

func bindKeyCommand(cmd *cobra.Command) error {
	if err := cli_utils.SetViperConfig(cmd); err != nil {
		return err
	}
	if err := flags.BindBaseFlags(cmd); err != nil {
		return err
	}
	return flags.BindKeyFlags(cmd)
}
