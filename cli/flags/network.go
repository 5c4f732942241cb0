package flags

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ssvlabs/coa-proof/pkgs/config"
)

// Flag names.
const (
	network           = "network"
	accessURL         = "accessURL"
	evmRPCURL         = "evmRPCURL"
	evmContract       = "evmContract"
	callTimeout       = "callTimeout"
	retryAttempts     = "retryAttempts"
	requestsPerSecond = "requestsPerSecond"
	concurrency       = "concurrency"
)

// network flags
var (
	BridgeConfig *config.Config
)

func SetNetworkFlags(cmd *cobra.Command) {
	NetworkFlag(cmd)
	AddPersistentStringFlag(cmd, accessURL, "", "Flow Access REST endpoint, defaults to the network preset", false)
	AddPersistentStringFlag(cmd, evmRPCURL, "", "Flow EVM JSON-RPC endpoint, defaults to the network preset", false)
	AddPersistentStringFlag(cmd, evmContract, "", "Address the EVM contract is imported from, defaults to the network preset", false)
	AddPersistentDurationFlag(cmd, callTimeout, config.DefaultCallTimeout, "Timeout of a single remote call", false)
	AddPersistentIntFlag(cmd, retryAttempts, uint64(config.DefaultRetryConfig.MaxAttempts), "Attempts made on transport failures", false)
	AddPersistentIntFlag(cmd, requestsPerSecond, config.DefaultRequestsPerSecond, "Flow Access requests per second", false)
	AddPersistentIntFlag(cmd, concurrency, config.DefaultConcurrency, "Concurrent verifications of a batch", false)
}

// BindNetworkFlags binds flags to yaml config parameters and builds BridgeConfig
func BindNetworkFlags(cmd *cobra.Command) error {
	if err := bindPersistent(cmd, network, accessURL, evmRPCURL, evmContract, callTimeout, retryAttempts, requestsPerSecond, concurrency); err != nil {
		return err
	}
	cfg := &config.Config{
		Network:           config.NetworkName(viper.GetString(network)),
		AccessURL:         viper.GetString(accessURL),
		EVMRPCURL:         viper.GetString(evmRPCURL),
		EVMContract:       viper.GetString(evmContract),
		CallTimeout:       viper.GetDuration(callTimeout),
		RequestsPerSecond: float64(viper.GetUint64(requestsPerSecond)),
		Concurrency:       viper.GetInt(concurrency),
	}
	cfg.Retry = config.DefaultRetryConfig
	cfg.Retry.MaxAttempts = viper.GetInt(retryAttempts)
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("😥 invalid network configuration: %w", err)
	}
	BridgeConfig = cfg
	return nil
}

// NetworkFlag adds the Flow network name flag to the command
func NetworkFlag(c *cobra.Command) {
	AddPersistentStringFlag(c, network, string(config.Mainnet), "Network name: mainnet, testnet, previewnet, emulator", false)
}
