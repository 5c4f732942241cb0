package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestForNetwork(t *testing.T) {
	for name, n := range Networks {
		c, err := ForNetwork(name)
		require.NoError(t, err)
		require.Equal(t, n.AccessURL, c.AccessURL)
		require.Equal(t, n.EVMRPCURL, c.EVMRPCURL)
		require.Equal(t, n.EVMContract, c.EVMContract)
		require.Equal(t, DefaultCallTimeout, c.CallTimeout)
		require.Equal(t, DefaultRetryConfig, c.Retry)
		require.NoError(t, c.Validate(), name)
	}

	_, err := ForNetwork("devnet")
	require.Error(t, err)
}

func TestApplyDefaultsKeepsOverrides(t *testing.T) {
	c := &Config{
		Network:     Testnet,
		AccessURL:   "http://127.0.0.1:8888",
		CallTimeout: time.Second,
		Retry:       RetryConfig{MaxAttempts: 1, BackoffMultiple: 1},
	}
	c.ApplyDefaults()
	require.Equal(t, "http://127.0.0.1:8888", c.AccessURL)
	require.Equal(t, Networks[Testnet].EVMRPCURL, c.EVMRPCURL)
	require.Equal(t, time.Second, c.CallTimeout)
	require.Equal(t, 1, c.Retry.MaxAttempts)
	require.NoError(t, c.Validate())
}

func TestValidate(t *testing.T) {
	t.Run("custom endpoints without a network", func(t *testing.T) {
		c := &Config{
			AccessURL:   "http://127.0.0.1:1",
			EVMRPCURL:   "http://127.0.0.1:2",
			EVMContract: "f8d6e0586b0a20c7",
		}
		c.ApplyDefaults()
		require.NoError(t, c.Validate())
	})

	t.Run("aggregates every problem", func(t *testing.T) {
		c := &Config{
			Network:     "devnet",
			AccessURL:   "ftp://example.com",
			EVMRPCURL:   "",
			EVMContract: "0xnothex",
			Retry:       RetryConfig{MaxAttempts: 0, BackoffMultiple: 0.5},
		}
		err := c.Validate()
		require.Error(t, err)
		for _, f := range []string{"network", "accessURL", "evmRPCURL", "evmContract", "callTimeout", "retry.maxAttempts", "retry.backoffMultiple", "requestsPerSecond", "concurrency"} {
			require.Contains(t, err.Error(), f)
		}
	})
}
