package cli

import (
	"log"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ssvlabs/coa-proof/cli/operator"
	"github.com/ssvlabs/coa-proof/cli/prover"
	"github.com/ssvlabs/coa-proof/cli/verifier"
)

func init() {
	RootCmd.AddCommand(prover.Derive)
	RootCmd.AddCommand(prover.Prove)
	RootCmd.AddCommand(prover.EncryptMnemonic)
	RootCmd.AddCommand(verifier.Verify)
	RootCmd.AddCommand(verifier.Resolve)
	RootCmd.AddCommand(verifier.Ping)
	RootCmd.AddCommand(operator.Serve)
}

// RootCmd represents the root command of the COA ownership proof CLI
var RootCmd = &cobra.Command{
	Use:          "coa-proof",
	Short:        "CLI for proving ownership of Flow cadence owned accounts",
	SilenceUsage: true,
}

// Execute executes the root command
func Execute(appName, version string) {
	RootCmd.Short = appName
	RootCmd.Version = version
	for _, c := range RootCmd.Commands() {
		c.Version = version
	}

	if err := RootCmd.Execute(); err != nil {
		log.Fatal("failed to execute root command", zap.Error(err))
	}
}
