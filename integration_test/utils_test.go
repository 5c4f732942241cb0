package integration_test

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/stretchr/testify/require"

	"github.com/ssvlabs/coa-proof/pkgs/config"
	"github.com/ssvlabs/coa-proof/pkgs/crypto"
	"github.com/ssvlabs/coa-proof/pkgs/flow"
	"github.com/ssvlabs/coa-proof/spec"
	"github.com/ssvlabs/coa-proof/spec/eip1271"
	"github.com/ssvlabs/coa-proof/spec/testing/fixtures"
	"github.com/ssvlabs/coa-proof/spec/testing/stubs"
)

const blockNumber = 100

type rpcRequest struct {
	ID     json.RawMessage   `json:"id"`
	Method string            `json:"method"`
	Params []json.RawMessage `json:"params"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    string `json:"data,omitempty"`
}

type rpcResponse struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id"`
	Result  interface{}     `json:"result,omitempty"`
	Error   *rpcError       `json:"error,omitempty"`
}

// fakeEVM answers the JSON-RPC methods a read-only isValidSignature call needs,
// routing eth_call to simulated COA contracts.
type fakeEVM struct {
	mtx       sync.Mutex
	contracts map[common.Address]*stubs.COAContract
	calls     int
}

func newFakeEVM() *fakeEVM {
	return &fakeEVM{contracts: make(map[common.Address]*stubs.COAContract)}
}

func (f *fakeEVM) deploy(addr common.Address, coa *stubs.COAContract) {
	f.mtx.Lock()
	defer f.mtx.Unlock()
	f.contracts[addr] = coa
}

func (f *fakeEVM) ethCalls() int {
	f.mtx.Lock()
	defer f.mtx.Unlock()
	return f.calls
}

func (f *fakeEVM) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req rpcRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	resp := rpcResponse{JSONRPC: "2.0", ID: req.ID}
	switch req.Method {
	case "eth_blockNumber":
		resp.Result = hexutil.Uint64(blockNumber)
	case "eth_chainId":
		resp.Result = hexutil.Uint64(646)
	case "eth_getCode":
		var addr common.Address
		_ = json.Unmarshal(req.Params[0], &addr)
		resp.Result = hexutil.Bytes{}
		if f.contract(addr) != nil {
			resp.Result = hexutil.Bytes{0x60, 0x80, 0x60, 0x40}
		}
	case "eth_call":
		out, err := f.call(req.Params[0])
		var revert *eip1271.RevertError
		switch {
		case errors.As(err, &revert):
			resp.Error = &rpcError{Code: revert.ErrorCode(), Message: revert.Error(), Data: "0x"}
		case err != nil:
			resp.Error = &rpcError{Code: -32000, Message: err.Error()}
		default:
			resp.Result = hexutil.Bytes(out)
		}
	default:
		resp.Error = &rpcError{Code: -32601, Message: "the method " + req.Method + " does not exist/is not available"}
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(resp)
}

func (f *fakeEVM) contract(addr common.Address) *stubs.COAContract {
	f.mtx.Lock()
	defer f.mtx.Unlock()
	return f.contracts[addr]
}

func (f *fakeEVM) call(raw json.RawMessage) ([]byte, error) {
	var arg struct {
		To    *common.Address `json:"to"`
		Input hexutil.Bytes   `json:"input"`
		Data  hexutil.Bytes   `json:"data"`
	}
	if err := json.Unmarshal(raw, &arg); err != nil {
		return nil, err
	}
	f.mtx.Lock()
	f.calls++
	f.mtx.Unlock()
	if arg.To == nil {
		return nil, errors.New("missing call target")
	}
	data := arg.Input
	if len(data) == 0 {
		data = arg.Data
	}
	coa := f.contract(*arg.To)
	if coa == nil {
		return nil, nil
	}
	return coa.Call(ethereum.CallMsg{To: arg.To, Data: data})
}

type testEnv struct {
	evm       *fakeEVM
	evmURL    string
	access    *stubs.FlowAccess
	accessURL string
	account   flow.Address
	keys      []*crypto.KeyPair
}

// newTestEnv deploys a COA at fixtures.TestCOAAddress controlled by the key the test
// mnemonic derives at the Flow path.
func newTestEnv(t *testing.T) *testEnv {
	account, err := flow.BytesToAddress(fixtures.TestFlowAddress)
	require.NoError(t, err)
	kp, err := crypto.DeriveKey(fixtures.TestMnemonic, "", crypto.CurveSecp256k1, crypto.FlowDerivationPath)
	require.NoError(t, err)

	evm := newFakeEVM()
	evm.deploy(fixtures.TestCOAAddress, &stubs.COAContract{
		Account:        fixtures.TestFlowAddress,
		CapabilityPath: fixtures.TestCapabilityPath,
		Keys: map[uint64]spec.AccountKey{
			0: {PublicKey: kp.PublicKey(), HashAlgorithm: spec.SHA2_256, Weight: spec.FullWeight},
		},
	})
	evmSrv := httptest.NewServer(evm)
	t.Cleanup(evmSrv.Close)

	access := stubs.NewFlowAccess()
	access.Bind(account, fixtures.TestCapabilityPath, fixtures.TestCOAAddress)
	accessSrv := access.Server()
	t.Cleanup(accessSrv.Close)

	return &testEnv{
		evm:       evm,
		evmURL:    evmSrv.URL,
		access:    access,
		accessURL: accessSrv.URL,
		account:   account,
		keys:      []*crypto.KeyPair{kp},
	}
}

func (e *testEnv) config() *config.Config {
	return &config.Config{
		Network:     config.Emulator,
		AccessURL:   e.accessURL,
		EVMRPCURL:   e.evmURL,
		CallTimeout: 2 * time.Second,
		Retry: config.RetryConfig{
			MaxAttempts:     2,
			InitialBackoff:  10 * time.Millisecond,
			MaxBackoff:      10 * time.Millisecond,
			BackoffMultiple: 1,
		},
	}
}

func (e *testEnv) proof(t *testing.T, tag spec.DomainTag, message []byte) ([32]byte, []byte) {
	md := spec.MessageDigest(message)
	sig, err := spec.ECDSASigner(e.keys[0].PrivateKey).SignTagged(tag, md[:])
	require.NoError(t, err)
	p := &spec.OwnershipProof{
		KeyIndices:     []uint64{0},
		Address:        e.account.Bytes(),
		CapabilityPath: fixtures.TestCapabilityPath,
		Signatures:     [][]byte{sig},
	}
	encoded, err := p.Encode()
	require.NoError(t, err)
	return md, encoded
}

func writeMnemonic(t *testing.T) string {
	path := filepath.Join(t.TempDir(), "mnemonic.txt")
	require.NoError(t, os.WriteFile(path, []byte(fixtures.TestMnemonic+"\n"), 0o600))
	return path
}
