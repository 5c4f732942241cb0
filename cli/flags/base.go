package flags

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Flag names.
const (
	logLevel       = "logLevel"
	logFormat      = "logFormat"
	logLevelFormat = "logLevelFormat"
	logFilePath    = "logFilePath"
	configYAML     = "configYAML"
	outputPath     = "outputPath"
)

// global base flags
var (
	OutputPath     string
	LogLevel       string
	LogFormat      string
	LogLevelFormat string
	LogFilePath    string
)

func SetBaseFlags(cmd *cobra.Command) {
	ConfigYAMLFlag(cmd)
	OutputPathFlag(cmd)
	LogLevelFlag(cmd)
	LogFormatFlag(cmd)
	LogLevelFormatFlag(cmd)
	LogFilePathFlag(cmd)
}

// BindBaseFlags binds flags to yaml config parameters
func BindBaseFlags(cmd *cobra.Command) error {
	if err := bindPersistent(cmd, outputPath, logLevel, logFormat, logLevelFormat, logFilePath); err != nil {
		return err
	}
	OutputPath = viper.GetString(outputPath)
	if OutputPath != "" {
		OutputPath = filepath.Clean(OutputPath)
	}
	if strings.Contains(OutputPath, "..") {
		return fmt.Errorf("😥 outputPath cant contain traversal")
	}
	LogLevel = viper.GetString(logLevel)
	LogFormat = viper.GetString(logFormat)
	LogLevelFormat = viper.GetString(logLevelFormat)
	LogFilePath = viper.GetString(logFilePath)
	if strings.Contains(LogFilePath, "..") {
		return fmt.Errorf("😥 logFilePath cant contain traversal")
	}
	return nil
}

// ConfigYAMLFlag adds path to a yaml config file flag to the command
func ConfigYAMLFlag(c *cobra.Command) {
	AddPersistentStringFlag(c, configYAML, "", "Path to a yaml file overriding flag values", false)
}

// LogLevelFlag logger's log level flag to the command
func LogLevelFlag(c *cobra.Command) {
	AddPersistentStringFlag(c, logLevel, "info", "Defines logger's log level", false)
}

// LogFormatFlag logger's encoding flag to the command
func LogFormatFlag(c *cobra.Command) {
	AddPersistentStringFlag(c, logFormat, "console", "Defines logger's encoding, valid values are 'json' and 'console' (default)", false)
}

// LogLevelFormatFlag logger's level format flag to the command
func LogLevelFormatFlag(c *cobra.Command) {
	AddPersistentStringFlag(c, logLevelFormat, "capitalColor", "Defines logger's level format, valid values are 'capitalColor' (default), 'capital' or 'lowercase'", false)
}

// LogFilePathFlag file path to write logs into
func LogFilePathFlag(c *cobra.Command) {
	AddPersistentStringFlag(c, logFilePath, "debug.log", "Defines a file path to write logs into", false)
}

// OutputPathFlag sets the path to store resulting files
func OutputPathFlag(c *cobra.Command) {
	AddPersistentStringFlag(c, outputPath, "", "Path to store results, nothing is written when empty", false)
}
