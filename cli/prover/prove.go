package prover

import (
	"encoding/hex"
	"fmt"
	"os"

	"github.com/aquasecurity/table"
	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ssvlabs/coa-proof/cli/flags"
	cli_utils "github.com/ssvlabs/coa-proof/cli/utils"
	"github.com/ssvlabs/coa-proof/pkgs/logging"
	"github.com/ssvlabs/coa-proof/pkgs/wire"
	"github.com/ssvlabs/coa-proof/spec"
)

func init() {
	flags.SetBaseFlags(Prove)
	flags.SetKeyFlags(Prove)
	flags.SetAccountFlags(Prove)
	flags.MessageFlag(Prove)
}

var Prove = &cobra.Command{
	Use:   "prove",
	Short: "Signs a message and encodes the COA ownership proof",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := bindKeyCommand(cmd); err != nil {
			return err
		}
		if err := flags.BindAccountFlags(cmd); err != nil {
			return err
		}
		if err := flags.BindMessageFlag(cmd); err != nil {
			return err
		}
		logger, err := cli_utils.SetGlobalLogger(cmd, "prove")
		if err != nil {
			return err
		}
		signers, _, err := cli_utils.LoadSigners()
		if err != nil {
			logger.Error("😥 Failed to load signing keys", zap.Error(err))
			return err
		}
		proof, err := spec.SignOwnershipProof(flags.Account.Bytes(), flags.CapabilityPath, flags.MessageDigest, signers...)
		if err != nil {
			return errors.Wrap(err, "😥 failed to sign proof")
		}
		encoded, err := proof.Encode()
		if err != nil {
			return errors.Wrap(err, "😥 failed to encode proof")
		}
		logger.Info("✍️ ownership proof signed",
			zap.String(logging.FieldAccount, flags.Account.Hex()),
			zap.String(logging.FieldPath, flags.CapabilityPath),
			zap.Int("signatures", len(proof.Signatures)))

		tbl := table.New(os.Stdout)
		tbl.SetHeaders("Account", "Capability Path", "Key Indices", "Message Digest", "Proof")
		tbl.AddRow(
			flags.Account.Hex(),
			flags.CapabilityPath,
			fmt.Sprint(proof.KeyIndices),
			"0x"+hex.EncodeToString(flags.MessageDigest[:]),
			"0x"+hex.EncodeToString(encoded),
		)
		tbl.Render()

		return cli_utils.WriteResult(logger, "proof.json", &wire.ProofResponse{
			Account:        flags.Account.Hex(),
			CapabilityPath: flags.CapabilityPath,
			KeyIndices:     proof.KeyIndices,
			MessageDigest:  common.Hash(flags.MessageDigest),
			Proof:          encoded,
		})
	},
}
