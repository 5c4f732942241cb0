package operator

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ssvlabs/coa-proof/cli/flags"
	cli_utils "github.com/ssvlabs/coa-proof/cli/utils"
	"github.com/ssvlabs/coa-proof/pkgs/bridge"
	"github.com/ssvlabs/coa-proof/pkgs/server"
)

func init() {
	flags.SetBaseFlags(Serve)
	flags.SetNetworkFlags(Serve)
	flags.SetServeFlags(Serve)
	flags.SetKeyFlags(Serve)
	flags.SetAccountFlags(Serve)
}

var Serve = &cobra.Command{
	Use:   "serve",
	Short: "Starts the COA ownership proof service",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cli_utils.SetViperConfig(cmd); err != nil {
			return err
		}
		if err := flags.BindBaseFlags(cmd); err != nil {
			return err
		}
		if err := flags.BindNetworkFlags(cmd); err != nil {
			return err
		}
		if err := flags.BindServeFlags(cmd); err != nil {
			return err
		}
		logger, err := cli_utils.SetGlobalLogger(cmd, "coa-proof-server")
		if err != nil {
			return err
		}

		opts := server.Options{
			Version:          cmd.Version,
			MinClientVersion: flags.MinClientVersion,
			Network:          string(flags.BridgeConfig.Network),
		}
		if flags.EnableProver {
			if err := flags.BindKeyFlags(cmd); err != nil {
				return err
			}
			if err := flags.BindAccountFlags(cmd); err != nil {
				return err
			}
			signers, _, err := cli_utils.LoadSigners()
			if err != nil {
				return err
			}
			opts.Prover = &server.Prover{
				Account:        flags.Account,
				CapabilityPath: flags.CapabilityPath,
				Signers:        signers,
			}
			logger.Info("🔑 proof signing enabled", zap.String("account", flags.Account.Hex()), zap.Int("keys", len(signers)))
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		b, err := bridge.Dial(ctx, flags.BridgeConfig, logger.Named("bridge"))
		if err != nil {
			return err
		}
		defer b.Close()

		srv, err := server.New(b, logger, opts)
		if err != nil {
			return err
		}
		errCh := make(chan error, 1)
		go func() {
			errCh <- srv.Start(uint16(flags.Port))
		}()
		select {
		case err := <-errCh:
			return err
		case <-ctx.Done():
			logger.Info("shutting down")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return srv.Stop(shutdownCtx)
		}
	},
}
