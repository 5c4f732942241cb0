package verifier

import (
	"context"
	"fmt"
	"os"

	"github.com/aquasecurity/table"
	"github.com/spf13/cobra"

	"github.com/ssvlabs/coa-proof/cli/flags"
	cli_utils "github.com/ssvlabs/coa-proof/cli/utils"
	"github.com/ssvlabs/coa-proof/pkgs/client"
)

func init() {
	flags.SetBaseFlags(Ping)
	flags.SetPingFlags(Ping)
}

var Ping = &cobra.Command{
	Use:   "ping",
	Short: "Checks the health of running proof services",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cli_utils.SetViperConfig(cmd); err != nil {
			return err
		}
		if err := flags.BindBaseFlags(cmd); err != nil {
			return err
		}
		if err := flags.BindPingFlags(cmd); err != nil {
			return err
		}
		logger, err := cli_utils.SetGlobalLogger(cmd, "ping")
		if err != nil {
			return err
		}
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		results := client.Ping(ctx, flags.Services, logger, client.Options{
			Version:     cmd.Version,
			CACerts:     flags.ClientCACertPath,
			TLSInsecure: flags.TLSInsecure,
		})

		tbl := table.New(os.Stdout)
		tbl.SetHeaders("Service", "Status", "Version", "Network")
		unhealthy := 0
		for _, res := range results {
			switch {
			case res.Health == nil:
				unhealthy++
				tbl.AddRow(res.Addr, res.Err.Error(), "", "")
			case res.Err != nil:
				unhealthy++
				tbl.AddRow(res.Addr, res.Health.Status, res.Health.Version, res.Health.Network)
			default:
				tbl.AddRow(res.Addr, res.Health.Status, res.Health.Version, res.Health.Network)
			}
		}
		tbl.Render()
		if unhealthy > 0 {
			return fmt.Errorf("%d of %d services not healthy", unhealthy, len(results))
		}
		logger.Info("🌞 All services are up and ready")
		return nil
	},
}
