package verifier

import (
	"context"
	"os"

	"github.com/aquasecurity/table"
	"github.com/spf13/cobra"

	"github.com/ssvlabs/coa-proof/cli/flags"
	cli_utils "github.com/ssvlabs/coa-proof/cli/utils"
	"github.com/ssvlabs/coa-proof/pkgs/bridge"
	"github.com/ssvlabs/coa-proof/pkgs/wire"
)

func init() {
	flags.SetBaseFlags(Resolve)
	flags.SetNetworkFlags(Resolve)
	flags.SetAccountFlags(Resolve)
}

var Resolve = &cobra.Command{
	Use:   "resolve",
	Short: "Resolves the Flow EVM address of the COA stored in a Flow account",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := bindNetworkCommand(cmd); err != nil {
			return err
		}
		if err := flags.BindAccountFlags(cmd); err != nil {
			return err
		}
		logger, err := cli_utils.SetGlobalLogger(cmd, "resolve")
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

		addr, err := b.ResolveBoundAddress(ctx, flags.Account, flags.CapabilityPath)
		if err != nil {
			return err
		}
		tbl := table.New(os.Stdout)
		tbl.SetHeaders("Account", "Capability Path", "COA Address")
		tbl.AddRow(flags.Account.Hex(), flags.CapabilityPath, addr.Hex())
		tbl.Render()

		return cli_utils.WriteResult(logger, "coa.json", &wire.ResolveResponse{
			Account:        flags.Account.Hex(),
			CapabilityPath: flags.CapabilityPath,
			Address:        addr,
		})
	},
}
