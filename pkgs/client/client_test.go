package client_test

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ssvlabs/coa-proof/pkgs/bridge"
	"github.com/ssvlabs/coa-proof/pkgs/client"
	"github.com/ssvlabs/coa-proof/pkgs/flow"
	"github.com/ssvlabs/coa-proof/pkgs/server"
	"github.com/ssvlabs/coa-proof/pkgs/wire"
	"github.com/ssvlabs/coa-proof/spec"
	"github.com/ssvlabs/coa-proof/spec/testing/fixtures"
)

// fakeVerifier accepts proofs that verify off-chain against the fixture account keys.
type fakeVerifier struct {
	unhealthy atomic.Bool
	offline   atomic.Bool
}

func (v *fakeVerifier) verify(target common.Address, digest [32]byte, encoded []byte) (*bridge.VerificationResult, error) {
	if v.offline.Load() {
		return nil, fmt.Errorf("%w: connection refused", spec.ErrTransport)
	}
	res := &bridge.VerificationResult{Target: target, Digest: digest, BlockNumber: 7}
	proof, err := spec.DecodeOwnershipProof(encoded)
	if err != nil {
		return res, fmt.Errorf("%w: %w", spec.ErrVerificationFailed, err)
	}
	if err := spec.VerifyOwnershipProof(proof, digest, fixtures.AccountKeys(500, 500, 1000)); err != nil {
		return res, err
	}
	res.Valid = true
	return res, nil
}

func (v *fakeVerifier) VerifyOnChain(_ context.Context, target common.Address, digest [32]byte, encoded []byte) (*bridge.VerificationResult, error) {
	return v.verify(target, digest, encoded)
}

func (v *fakeVerifier) VerifyWithRetry(_ context.Context, target common.Address, digest [32]byte, encoded []byte) (*bridge.VerificationResult, error) {
	return v.verify(target, digest, encoded)
}

func (v *fakeVerifier) VerifyBatch(_ context.Context, reqs []bridge.Request) []bridge.BatchResult {
	results := make([]bridge.BatchResult, len(reqs))
	for i, r := range reqs {
		res, err := v.verify(r.Target, r.Digest, r.Proof)
		results[i] = bridge.BatchResult{Result: res, Err: err}
	}
	return results
}

func (v *fakeVerifier) ResolveBoundAddress(_ context.Context, account flow.Address, _ string) (common.Address, error) {
	if v.offline.Load() {
		return common.Address{}, fmt.Errorf("%w: connection refused", spec.ErrTransport)
	}
	if account.Hex() != "0xf8d6e0586b0a20c7" {
		return common.Address{}, fmt.Errorf("%w: no COA bound", spec.ErrVerificationFailed)
	}
	return fixtures.TestCOAAddress, nil
}

func (v *fakeVerifier) Health(context.Context) error {
	if v.unhealthy.Load() {
		return errors.New("evm rpc unreachable")
	}
	return nil
}

func newService(t *testing.T, opts server.Options) (string, *fakeVerifier) {
	account, err := flow.BytesToAddress(fixtures.TestFlowAddress)
	require.NoError(t, err)
	if opts.Prover == nil {
		opts.Prover = &server.Prover{
			Account:        account,
			CapabilityPath: fixtures.TestCapabilityPath,
			Signers:        fixtures.Signers(0, 1),
		}
	}
	v := &fakeVerifier{}
	s, err := server.New(v, zap.NewNop(), opts)
	require.NoError(t, err)
	srv := httptest.NewServer(s.Router)
	t.Cleanup(srv.Close)
	return srv.URL, v
}

func TestProveAndVerify(t *testing.T) {
	url, _ := newService(t, server.Options{Version: "v0.1.0"})
	c := client.New(url, zap.NewNop(), client.Options{Version: "v0.1.0"})
	ctx := context.Background()

	proof, err := c.Prove(ctx, fixtures.TestMessage, "")
	require.NoError(t, err)
	require.Equal(t, []uint64{0, 1}, proof.KeyIndices)
	require.Equal(t, fixtures.TestCapabilityPath, proof.CapabilityPath)

	resp, err := c.Verify(ctx, &wire.VerifyRequest{
		Target:  fixtures.TestCOAAddress,
		Message: fixtures.TestMessage,
		Proof:   proof.Proof,
	})
	require.NoError(t, err)
	require.True(t, resp.Valid)
	require.EqualValues(t, 7, resp.BlockNumber)

	t.Run("other message", func(t *testing.T) {
		resp, err := c.Verify(ctx, &wire.VerifyRequest{
			Target:  fixtures.TestCOAAddress,
			Message: []byte("another message"),
			Proof:   proof.Proof,
		})
		require.ErrorIs(t, err, spec.ErrVerificationFailed)
		require.NotNil(t, resp)
		require.False(t, resp.Valid)
	})
	t.Run("malformed proof", func(t *testing.T) {
		_, err := c.Verify(ctx, &wire.VerifyRequest{
			Target:  fixtures.TestCOAAddress,
			Message: fixtures.TestMessage,
			Proof:   []byte{0x01, 0x02},
		})
		require.ErrorIs(t, err, spec.ErrEncoding)
	})
}

func TestVerifyTransport(t *testing.T) {
	url, v := newService(t, server.Options{})
	c := client.New(url, zap.NewNop(), client.Options{})
	ctx := context.Background()

	proof, err := c.Prove(ctx, fixtures.TestMessage, "")
	require.NoError(t, err)

	v.offline.Store(true)
	_, err = c.Verify(ctx, &wire.VerifyRequest{
		Target:  fixtures.TestCOAAddress,
		Message: fixtures.TestMessage,
		Proof:   proof.Proof,
	})
	require.ErrorIs(t, err, spec.ErrTransport)
	require.True(t, spec.IsRetryable(err))
}

func TestVerifyBatch(t *testing.T) {
	url, _ := newService(t, server.Options{})
	c := client.New(url, zap.NewNop(), client.Options{})
	ctx := context.Background()

	proof, err := c.Prove(ctx, fixtures.TestMessage, "")
	require.NoError(t, err)

	results, err := c.VerifyBatch(ctx, []wire.VerifyRequest{
		{Target: fixtures.TestCOAAddress, Message: fixtures.TestMessage, Proof: proof.Proof},
		{Target: fixtures.TestCOAAddress, Message: []byte("another message"), Proof: proof.Proof},
	})
	require.NoError(t, err)
	require.Len(t, results, 2)
	require.NoError(t, client.ResultError(&results[0]))
	require.ErrorIs(t, client.ResultError(&results[1]), spec.ErrVerificationFailed)

	_, err = c.VerifyBatch(ctx, nil)
	require.Error(t, err)
	require.NotErrorIs(t, err, spec.ErrTransport)
}

func TestResolve(t *testing.T) {
	url, v := newService(t, server.Options{})
	c := client.New(url, zap.NewNop(), client.Options{})
	ctx := context.Background()

	account, err := flow.BytesToAddress(fixtures.TestFlowAddress)
	require.NoError(t, err)
	addr, err := c.Resolve(ctx, account, "")
	require.NoError(t, err)
	require.Equal(t, fixtures.TestCOAAddress, addr)

	other, err := flow.HexToAddress("0x01cf0e2f2f715450")
	require.NoError(t, err)
	_, err = c.Resolve(ctx, other, fixtures.TestCapabilityPath)
	require.ErrorIs(t, err, spec.ErrVerificationFailed)

	v.offline.Store(true)
	_, err = c.Resolve(ctx, account, "")
	require.ErrorIs(t, err, spec.ErrTransport)
}

func TestClientVersion(t *testing.T) {
	url, _ := newService(t, server.Options{MinClientVersion: "v0.2.0"})

	old := client.New(url, zap.NewNop(), client.Options{Version: "v0.1.0"})
	_, err := old.Prove(context.Background(), fixtures.TestMessage, "")
	require.Error(t, err)
	require.Contains(t, err.Error(), fmt.Sprint(http.StatusUpgradeRequired))

	current := client.New(url, zap.NewNop(), client.Options{Version: "v0.2.1"})
	_, err = current.Prove(context.Background(), fixtures.TestMessage, "")
	require.NoError(t, err)
}

func TestPing(t *testing.T) {
	healthy, _ := newService(t, server.Options{Version: "v0.1.0", Network: "emulator"})
	unhealthy, v := newService(t, server.Options{})
	v.unhealthy.Store(true)

	results := client.Ping(context.Background(), []string{healthy, unhealthy, "http://127.0.0.1:1"}, zap.NewNop(), client.Options{})
	require.Len(t, results, 3)

	require.NoError(t, results[0].Err)
	require.Equal(t, healthy, results[0].Addr)
	require.Equal(t, "v0.1.0", results[0].Health.Version)
	require.Equal(t, "emulator", results[0].Health.Network)

	require.ErrorIs(t, results[1].Err, spec.ErrTransport)
	require.Equal(t, "evm rpc unreachable", results[1].Health.Status)

	require.ErrorIs(t, results[2].Err, spec.ErrTransport)
	require.Nil(t, results[2].Health)
}
