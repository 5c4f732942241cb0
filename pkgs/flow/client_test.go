package flow_test

import (
	"context"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ssvlabs/coa-proof/pkgs/flow"
	"github.com/ssvlabs/coa-proof/spec"
	"github.com/ssvlabs/coa-proof/spec/testing/fixtures"
	"github.com/ssvlabs/coa-proof/spec/testing/stubs"
)

var evmContract = flow.Address{0xf8, 0xd6, 0xe0, 0x58, 0x6b, 0x0a, 0x20, 0xc7}

func newClient(url string) *flow.Client {
	return flow.NewClient(flow.ClientConfig{AccessURL: url, Timeout: 2 * time.Second}, zap.NewNop())
}

func TestResolveBoundAddress(t *testing.T) {
	account, err := flow.BytesToAddress(fixtures.TestFlowAddress)
	require.NoError(t, err)

	access := stubs.NewFlowAccess()
	access.Bind(account, "evm", fixtures.TestCOAAddress)
	srv := access.Server()
	defer srv.Close()
	client := newClient(srv.URL)

	t.Run("bound account", func(t *testing.T) {
		addr, err := client.ResolveBoundAddress(context.Background(), evmContract, account, "")
		require.NoError(t, err)
		require.Equal(t, fixtures.TestCOAAddress, addr)

		scripts := access.Scripts()
		require.NotEmpty(t, scripts)
		require.True(t, strings.HasPrefix(scripts[len(scripts)-1], "import EVM from 0xf8d6e0586b0a20c7"))
	})

	t.Run("no coa at path", func(t *testing.T) {
		_, err := client.ResolveBoundAddress(context.Background(), evmContract, account, "other")
		require.ErrorIs(t, err, flow.ErrScriptFailed)
		require.ErrorIs(t, err, spec.ErrVerificationFailed)
		require.False(t, spec.IsRetryable(err))
	})

	t.Run("invalid path identifier", func(t *testing.T) {
		_, err := client.ResolveBoundAddress(context.Background(), evmContract, account, "/storage/evm")
		require.ErrorIs(t, err, spec.ErrEncoding)
		require.False(t, spec.IsRetryable(err))
	})

	t.Run("chain id", func(t *testing.T) {
		id, err := client.ChainID(context.Background())
		require.NoError(t, err)
		require.Equal(t, "flow-emulator", id)
	})
}

func TestExecuteScriptTransportErrors(t *testing.T) {
	account := flow.Address{1}

	t.Run("server unavailable", func(t *testing.T) {
		access := stubs.NewFlowAccess()
		access.SetStatus(http.StatusServiceUnavailable)
		srv := access.Server()
		defer srv.Close()

		_, err := newClient(srv.URL).ResolveBoundAddress(context.Background(), evmContract, account, "evm")
		require.ErrorIs(t, err, spec.ErrTransport)
		require.True(t, spec.IsRetryable(err))
	})

	t.Run("rate limited", func(t *testing.T) {
		access := stubs.NewFlowAccess()
		access.SetStatus(http.StatusTooManyRequests)
		srv := access.Server()
		defer srv.Close()

		_, err := newClient(srv.URL).ResolveBoundAddress(context.Background(), evmContract, account, "evm")
		require.ErrorIs(t, err, spec.ErrTransport)
	})

	t.Run("unreachable", func(t *testing.T) {
		start := time.Now()
		_, err := newClient("http://127.0.0.1:1").ResolveBoundAddress(context.Background(), evmContract, account, "evm")
		require.ErrorIs(t, err, spec.ErrTransport)
		require.Less(t, time.Since(start), 5*time.Second)
	})

	t.Run("cancelled", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := newClient("http://127.0.0.1:1").ResolveBoundAddress(ctx, evmContract, account, "evm")
		require.ErrorIs(t, err, spec.ErrTransport)
	})

	t.Run("not found is not retryable", func(t *testing.T) {
		access := stubs.NewFlowAccess()
		access.SetStatus(http.StatusNotFound)
		srv := access.Server()
		defer srv.Close()

		_, err := newClient(srv.URL).ResolveBoundAddress(context.Background(), evmContract, account, "evm")
		require.Error(t, err)
		require.False(t, spec.IsRetryable(err))
	})
}

func TestRateLimit(t *testing.T) {
	access := stubs.NewFlowAccess()
	srv := access.Server()
	defer srv.Close()

	client := flow.NewClient(flow.ClientConfig{AccessURL: srv.URL, Timeout: time.Second, RequestsPerSecond: 1}, zap.NewNop())
	_, err := client.ChainID(context.Background())
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err = client.ChainID(ctx)
	require.ErrorIs(t, err, spec.ErrTransport)
	require.EqualValues(t, 1, access.Requests())
}
