package verifier

import (
	"context"
	"encoding/hex"
	"fmt"
	"os"

	"github.com/aquasecurity/table"
	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ssvlabs/coa-proof/cli/flags"
	cli_utils "github.com/ssvlabs/coa-proof/cli/utils"
	"github.com/ssvlabs/coa-proof/pkgs/bridge"
	"github.com/ssvlabs/coa-proof/pkgs/wire"
)

func init() {
	flags.SetBaseFlags(Verify)
	flags.SetNetworkFlags(Verify)
	flags.SetVerifyFlags(Verify)
}

var Verify = &cobra.Command{
	Use:   "verify",
	Short: "Verifies a COA ownership proof with isValidSignature on Flow EVM",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := bindNetworkCommand(cmd); err != nil {
			return err
		}
		if err := flags.BindVerifyFlags(cmd); err != nil {
			return err
		}
		logger, err := cli_utils.SetGlobalLogger(cmd, "verify")
		if err != nil {
			return err
		}
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		b, err := bridge.Dial(ctx, flags.BridgeConfig, logger)
		if err != nil {
			return err
		}
		defer b.Close()

		var res *bridge.VerificationResult
		switch {
		case flags.Target == (common.Address{}):
			res, err = b.VerifyAccountProof(ctx, flags.MessageDigest, flags.Proof)
		case flags.Retry:
			res, err = b.VerifyWithRetry(ctx, flags.Target, flags.MessageDigest, flags.Proof)
		default:
			res, err = b.VerifyOnChain(ctx, flags.Target, flags.MessageDigest, flags.Proof)
		}

		tbl := table.New(os.Stdout)
		tbl.SetHeaders("Target", "Message Digest", "Block", "Answer", "Valid", "Error")
		row := []string{flags.Target.Hex(), "0x" + hex.EncodeToString(flags.MessageDigest[:]), "", "", "false", wire.ErrorKind(err)}
		if res != nil {
			row[0] = res.Target.Hex()
			row[2] = fmt.Sprintf("%d", res.BlockNumber)
			row[3] = fmt.Sprintf("0x%x", res.Value)
			row[4] = fmt.Sprintf("%t", res.Valid)
		}
		tbl.AddRow(row...)
		tbl.Render()

		if err != nil {
			logger.Error("😥 Proof is not valid", zap.String("kind", wire.ErrorKind(err)), zap.Error(err))
			return err
		}
		logger.Info("✅ Proof is valid")
		return nil
	},
}

func bindNetworkCommand(cmd *cobra.Command) error {
	if err := cli_utils.SetViperConfig(cmd); err != nil {
		return err
	}
	if err := flags.BindBaseFlags(cmd); err != nil {
		return err
	}
	return flags.BindNetworkFlags(cmd)
}
