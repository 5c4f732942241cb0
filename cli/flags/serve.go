package flags

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Flag names.
const (
	port             = "port"
	minClientVersion = "minClientVersion"
	enableProver     = "enableProver"
)

// serve flags
var (
	Port             uint64
	MinClientVersion string
	EnableProver     bool
)

func SetServeFlags(cmd *cobra.Command) {
	AddPersistentIntFlag(cmd, port, 3030, "Proof service listening port", false)
	AddPersistentStringFlag(cmd, minClientVersion, "", "Reject clients announcing an older version", false)
	AddPersistentBoolFlag(cmd, enableProver, false, "Sign proofs with keys derived from --mnemonicFile", false)
}

// BindServeFlags binds flags to yaml config parameters for the proof service
func BindServeFlags(cmd *cobra.Command) error {
	if err := bindPersistent(cmd, port, minClientVersion, enableProver); err != nil {
		return err
	}
	Port = viper.GetUint64(port)
	if Port == 0 || Port > 65535 {
		return fmt.Errorf("😥 Wrong port provided")
	}
	MinClientVersion = viper.GetString(minClientVersion)
	EnableProver = viper.GetBool(enableProver)
	return nil
}
