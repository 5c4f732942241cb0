package flags

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// AddPersistentStringFlag adds a string flag to the command
func AddPersistentStringFlag(c *cobra.Command, flag, value, description string, isRequired bool) {
	c.PersistentFlags().String(flag, value, withRequired(description, isRequired))
	if isRequired {
		_ = c.MarkPersistentFlagRequired(flag)
	}
}

// AddPersistentIntFlag adds a int flag to the command
func AddPersistentIntFlag(c *cobra.Command, flag string, value uint64, description string, isRequired bool) {
	c.PersistentFlags().Uint64(flag, value, withRequired(description, isRequired))
	if isRequired {
		_ = c.MarkPersistentFlagRequired(flag)
	}
}

// AddPersistentStringSliceFlag adds a string slice flag to the command
func AddPersistentStringSliceFlag(c *cobra.Command, flag string, value []string, description string, isRequired bool) {
	c.PersistentFlags().StringSlice(flag, value, withRequired(description, isRequired))
	if isRequired {
		_ = c.MarkPersistentFlagRequired(flag)
	}
}

// AddPersistentBoolFlag adds a bool flag to the command
func AddPersistentBoolFlag(c *cobra.Command, flag string, value bool, description string, isRequired bool) {
	c.PersistentFlags().Bool(flag, value, withRequired(description, isRequired))
	if isRequired {
		_ = c.MarkPersistentFlagRequired(flag)
	}
}

// AddPersistentDurationFlag adds a duration flag to the command
func AddPersistentDurationFlag(c *cobra.Command, flag string, value time.Duration, description string, isRequired bool) {
	c.PersistentFlags().Duration(flag, value, withRequired(description, isRequired))
	if isRequired {
		_ = c.MarkPersistentFlagRequired(flag)
	}
}

func withRequired(description string, isRequired bool) string {
	req := ""
	if isRequired {
		req = " (required)"
	}
	return fmt.Sprintf("%s%s", description, req)
}

// bindPersistent binds every named persistent flag of cmd to the viper key of the same name
func bindPersistent(cmd *cobra.Command, names ...string) error {
	for _, name := range names {
		if err := viper.BindPFlag(name, cmd.PersistentFlags().Lookup(name)); err != nil {
			return err
		}
	}
	return nil
}
