package config

import (
	"fmt"
	"net/url"
	"time"

	"k8s.io/apimachinery/pkg/util/validation/field"

	"github.com/ssvlabs/coa-proof/pkgs/flow"
)

type NetworkName string

const (
	Mainnet    NetworkName = "mainnet"
	Testnet    NetworkName = "testnet"
	Previewnet NetworkName = "previewnet"
	Emulator   NetworkName = "emulator"
)

// Network holds the public endpoints of a Flow network and its EVM environment.
type Network struct {
	Name NetworkName
	// AccessURL Flow Access node REST API
	AccessURL string
	// EVMRPCURL Flow EVM JSON-RPC gateway
	EVMRPCURL string
	// EVMContract address of the EVM system contract on Flow
	EVMContract string
	EVMChainID  uint64
}

var Networks = map[NetworkName]Network{
	Mainnet: {
		Name:        Mainnet,
		AccessURL:   "https://rest-mainnet.onflow.org",
		EVMRPCURL:   "https://mainnet.evm.nodes.onflow.org",
		EVMContract: "0xe467b9dd11fa00df",
		EVMChainID:  747,
	},
	Testnet: {
		Name:        Testnet,
		AccessURL:   "https://rest-testnet.onflow.org",
		EVMRPCURL:   "https://testnet.evm.nodes.onflow.org",
		EVMContract: "0x8c5303eaa26202d6",
		EVMChainID:  545,
	},
	Previewnet: {
		Name:        Previewnet,
		AccessURL:   "https://rest-previewnet.onflow.org",
		EVMRPCURL:   "https://previewnet.evm.nodes.onflow.org",
		EVMContract: "0xb6763b4399a888c8",
		EVMChainID:  646,
	},
	Emulator: {
		Name:        Emulator,
		AccessURL:   "http://localhost:8888",
		EVMRPCURL:   "http://localhost:8545",
		EVMContract: "0xf8d6e0586b0a20c7",
		EVMChainID:  646,
	},
}

// RetryConfig configures retry behavior for transport failures
type RetryConfig struct {
	MaxAttempts     int           `json:"maxAttempts" yaml:"maxAttempts"`
	InitialBackoff  time.Duration `json:"initialBackoff" yaml:"initialBackoff"`
	MaxBackoff      time.Duration `json:"maxBackoff" yaml:"maxBackoff"`
	BackoffMultiple float64       `json:"backoffMultiple" yaml:"backoffMultiple"`
}

// DefaultRetryConfig provides default retry settings
var DefaultRetryConfig = RetryConfig{
	MaxAttempts:     5,
	InitialBackoff:  100 * time.Millisecond,
	MaxBackoff:      5 * time.Second,
	BackoffMultiple: 2.0,
}

const (
	DefaultCallTimeout       = 10 * time.Second
	DefaultRequestsPerSecond = 20
	DefaultConcurrency       = 8
)

// Config is everything the verification bridge needs to reach both ledgers.
type Config struct {
	Network     NetworkName `json:"network" yaml:"network"`
	AccessURL   string      `json:"accessURL" yaml:"accessURL"`
	EVMRPCURL   string      `json:"evmRPCURL" yaml:"evmRPCURL"`
	EVMContract string      `json:"evmContract" yaml:"evmContract"`
	// CallTimeout bounds every single remote call
	CallTimeout time.Duration `json:"callTimeout" yaml:"callTimeout"`
	Retry       RetryConfig   `json:"retry" yaml:"retry"`
	// RequestsPerSecond throttles Flow Access requests
	RequestsPerSecond float64 `json:"requestsPerSecond" yaml:"requestsPerSecond"`
	// Concurrency bounds batch verification
	Concurrency int `json:"concurrency" yaml:"concurrency"`
}

// ForNetwork returns the preset configuration of a known network.
func ForNetwork(name NetworkName) (*Config, error) {
	if _, ok := Networks[name]; !ok {
		return nil, fmt.Errorf("unsupported network %q", name)
	}
	c := &Config{Network: name}
	c.ApplyDefaults()
	return c, nil
}

// ApplyDefaults fills unset fields from the network preset and package defaults.
func (c *Config) ApplyDefaults() {
	if n, ok := Networks[c.Network]; ok {
		if c.AccessURL == "" {
			c.AccessURL = n.AccessURL
		}
		if c.EVMRPCURL == "" {
			c.EVMRPCURL = n.EVMRPCURL
		}
		if c.EVMContract == "" {
			c.EVMContract = n.EVMContract
		}
	}
	if c.CallTimeout == 0 {
		c.CallTimeout = DefaultCallTimeout
	}
	if c.Retry == (RetryConfig{}) {
		c.Retry = DefaultRetryConfig
	}
	if c.RequestsPerSecond == 0 {
		c.RequestsPerSecond = DefaultRequestsPerSecond
	}
	if c.Concurrency == 0 {
		c.Concurrency = DefaultConcurrency
	}
}

// Validate reports every invalid field at once.
func (c *Config) Validate() error {
	var allErrors field.ErrorList
	if c.Network != "" {
		if _, ok := Networks[c.Network]; !ok {
			allErrors = append(allErrors, field.NotSupported(field.NewPath("network"), c.Network,
				[]NetworkName{Mainnet, Testnet, Previewnet, Emulator}))
		}
	}
	allErrors = append(allErrors, validateURL(field.NewPath("accessURL"), c.AccessURL)...)
	allErrors = append(allErrors, validateURL(field.NewPath("evmRPCURL"), c.EVMRPCURL)...)
	if c.EVMContract == "" {
		allErrors = append(allErrors, field.Required(field.NewPath("evmContract"), "evmContract is required"))
	} else if _, err := flow.HexToAddress(c.EVMContract); err != nil {
		allErrors = append(allErrors, field.Invalid(field.NewPath("evmContract"), c.EVMContract, err.Error()))
	}
	if c.CallTimeout <= 0 {
		allErrors = append(allErrors, field.Invalid(field.NewPath("callTimeout"), c.CallTimeout.String(), "must be positive"))
	}
	retry := field.NewPath("retry")
	if c.Retry.MaxAttempts < 1 {
		allErrors = append(allErrors, field.Invalid(retry.Child("maxAttempts"), c.Retry.MaxAttempts, "must be at least 1"))
	}
	if c.Retry.InitialBackoff < 0 || c.Retry.MaxBackoff < c.Retry.InitialBackoff {
		allErrors = append(allErrors, field.Invalid(retry.Child("maxBackoff"), c.Retry.MaxBackoff.String(), "must not be below initialBackoff"))
	}
	if c.Retry.BackoffMultiple < 1 {
		allErrors = append(allErrors, field.Invalid(retry.Child("backoffMultiple"), c.Retry.BackoffMultiple, "must be at least 1"))
	}
	if c.RequestsPerSecond <= 0 {
		allErrors = append(allErrors, field.Invalid(field.NewPath("requestsPerSecond"), c.RequestsPerSecond, "must be positive"))
	}
	if c.Concurrency < 1 {
		allErrors = append(allErrors, field.Invalid(field.NewPath("concurrency"), c.Concurrency, "must be at least 1"))
	}
	if len(allErrors) > 0 {
		return allErrors.ToAggregate()
	}
	return nil
}

func validateURL(path *field.Path, raw string) field.ErrorList {
	if raw == "" {
		return field.ErrorList{field.Required(path, "url is required")}
	}
	u, err := url.ParseRequestURI(raw)
	if err != nil {
		return field.ErrorList{field.Invalid(path, raw, err.Error())}
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return field.ErrorList{field.Invalid(path, raw, "scheme must be http or https")}
	}
	return nil
}
