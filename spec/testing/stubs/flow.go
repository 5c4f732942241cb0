package stubs

import (
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/ethereum/go-ethereum/common"

	"github.com/ssvlabs/coa-proof/pkgs/flow"
)

// FlowAccess fakes the parts of the Flow Access REST API the bound address query uses.
type FlowAccess struct {
	status   atomic.Int64
	mtx      sync.Mutex
	bindings map[string]common.Address
	scripts  []string
	requests atomic.Int64
}

func NewFlowAccess() *FlowAccess {
	return &FlowAccess{bindings: make(map[string]common.Address)}
}

// Bind stores coa under path in account.
func (f *FlowAccess) Bind(account flow.Address, path string, coa common.Address) {
	f.mtx.Lock()
	defer f.mtx.Unlock()
	f.bindings[bindingKey(account, path)] = coa
}

// SetStatus forces every response to status. Zero restores normal answers.
func (f *FlowAccess) SetStatus(status int) {
	f.status.Store(int64(status))
}

// Requests returns the number of requests served.
func (f *FlowAccess) Requests() int64 {
	return f.requests.Load()
}

// Scripts returns the decoded scripts received so far.
func (f *FlowAccess) Scripts() []string {
	f.mtx.Lock()
	defer f.mtx.Unlock()
	return append([]string(nil), f.scripts...)
}

// Server starts an httptest server answering with f. Callers close it.
func (f *FlowAccess) Server() *httptest.Server {
	return httptest.NewServer(f)
}

func (f *FlowAccess) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.requests.Add(1)
	if status := int(f.status.Load()); status != 0 {
		writeFlowError(w, status, http.StatusText(status))
		return
	}
	switch {
	case r.Method == http.MethodGet && r.URL.Path == "/v1/network/parameters":
		_ = json.NewEncoder(w).Encode(map[string]string{"chain_id": "flow-emulator"})
	case r.Method == http.MethodPost && r.URL.Path == "/v1/scripts":
		f.executeScript(w, r)
	default:
		writeFlowError(w, http.StatusNotFound, "not found")
	}
}

func (f *FlowAccess) executeScript(w http.ResponseWriter, r *http.Request) {
	if r.URL.Query().Get("block_height") != "sealed" {
		writeFlowError(w, http.StatusBadRequest, "block_height must be sealed")
		return
	}
	var body struct {
		Script    string   `json:"script"`
		Arguments []string `json:"arguments"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || len(body.Arguments) != 2 {
		writeFlowError(w, http.StatusBadRequest, "invalid script request")
		return
	}
	script, err := base64.StdEncoding.DecodeString(body.Script)
	if err != nil {
		writeFlowError(w, http.StatusBadRequest, "invalid script encoding")
		return
	}
	var args [2]flow.Value
	for i, a := range body.Arguments {
		raw, err := base64.StdEncoding.DecodeString(a)
		if err != nil || json.Unmarshal(raw, &args[i]) != nil {
			writeFlowError(w, http.StatusBadRequest, "invalid argument encoding")
			return
		}
	}
	account, err := args[0].ToAddress()
	if err != nil {
		writeFlowError(w, http.StatusBadRequest, err.Error())
		return
	}
	path, err := args[1].ToString()
	if err != nil {
		writeFlowError(w, http.StatusBadRequest, err.Error())
		return
	}

	f.mtx.Lock()
	f.scripts = append(f.scripts, string(script))
	coa, ok := f.bindings[bindingKey(account, path)]
	f.mtx.Unlock()
	if !ok {
		writeFlowError(w, http.StatusBadRequest, "[Error Code: 1101] error caused by: panic: Could not borrow reference to the COA")
		return
	}

	value, _ := json.Marshal(flow.StringValue(hex.EncodeToString(coa.Bytes())))
	_ = json.NewEncoder(w).Encode(base64.StdEncoding.EncodeToString(value))
}

func bindingKey(account flow.Address, path string) string {
	return strings.ToLower(account.Hex()) + "/" + path
}

func writeFlowError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]interface{}{"code": status, "message": msg})
}
