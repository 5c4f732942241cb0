package client

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"
	"github.com/imroc/req/v3"
	"go.uber.org/zap"

	"github.com/ssvlabs/coa-proof/pkgs/flow"
	"github.com/ssvlabs/coa-proof/pkgs/logging"
	"github.com/ssvlabs/coa-proof/pkgs/server"
	"github.com/ssvlabs/coa-proof/pkgs/wire"
	"github.com/ssvlabs/coa-proof/spec"
)

const defaultTimeout = 30 * time.Second

type Options struct {
	// Version is announced to the service in the client version header
	Version string
	Timeout time.Duration
	// CACerts are PEM files used to verify the service certificate
	CACerts     []string
	TLSInsecure bool
}

// Client sends requests to a proof service and maps its answers back onto the error taxonomy.
type Client struct {
	Logger *zap.Logger
	Client *req.Client
	Addr   string
}

// New creates a client for the proof service at addr
func New(addr string, logger *zap.Logger, opts Options) *Client {
	client := req.C().
		SetBaseURL(strings.TrimSuffix(addr, "/")).
		SetCommonHeader("Accept", "application/json")
	if opts.Version != "" {
		client.SetCommonHeader(server.ClientVersionHeader, opts.Version)
	}
	if opts.TLSInsecure {
		logger.Warn("Dangerous, not secure!!! TLS 'InsecureSkipVerify' is set to true, accepting any TLS certificates authorities.")
		client.SetTLSClientConfig(&tls.Config{InsecureSkipVerify: true})
	} else if len(opts.CACerts) > 0 {
		client.SetRootCertsFromFile(opts.CACerts...)
	}
	timeout := opts.Timeout
	if timeout == 0 {
		timeout = defaultTimeout
	}
	client.SetTimeout(timeout)
	return &Client{Logger: logger, Client: client, Addr: addr}
}

// Prove asks the service to sign message with its account keys.
func (c *Client) Prove(ctx context.Context, message []byte, capabilityPath string) (*wire.ProofResponse, error) {
	resp := &wire.ProofResponse{}
	if err := c.send(ctx, http.MethodPost, "/proof", &wire.ProofRequest{Message: message, CapabilityPath: capabilityPath}, resp); err != nil {
		return nil, err
	}
	return resp, nil
}

// Verify submits a proof for on-chain verification. A rejected proof returns the response
// together with an error wrapping spec.ErrVerificationFailed.
func (c *Client) Verify(ctx context.Context, request *wire.VerifyRequest) (*wire.VerifyResponse, error) {
	resp := &wire.VerifyResponse{}
	if err := c.send(ctx, http.MethodPost, "/verify", request, resp); err != nil {
		return nil, err
	}
	return resp, ResultError(resp)
}

// VerifyBatch submits independent proofs. Per request failures are reported in the results,
// see ResultError.
func (c *Client) VerifyBatch(ctx context.Context, requests []wire.VerifyRequest) ([]wire.VerifyResponse, error) {
	resp := &wire.VerifyBatchResponse{}
	if err := c.send(ctx, http.MethodPost, "/verify_batch", &wire.VerifyBatchRequest{Requests: requests}, resp); err != nil {
		return nil, err
	}
	if len(resp.Results) != len(requests) {
		return nil, fmt.Errorf("service returned %d results for %d requests", len(resp.Results), len(requests))
	}
	return resp.Results, nil
}

// Resolve returns the target ledger address bound to account at path.
func (c *Client) Resolve(ctx context.Context, account flow.Address, path string) (common.Address, error) {
	resp := &wire.ResolveResponse{}
	r := c.Client.R().SetQueryParam("account", account.Hex())
	if path != "" {
		r.SetQueryParam("path", path)
	}
	if err := c.do(ctx, r, http.MethodGet, "/resolve", resp); err != nil {
		return common.Address{}, err
	}
	return resp.Address, nil
}

// Health returns the service health report. An unhealthy service returns its report and an
// error wrapping spec.ErrTransport.
func (c *Client) Health(ctx context.Context) (*wire.HealthResponse, error) {
	res, err := c.Client.R().SetContext(ctx).Get("/health_check")
	if err != nil {
		return nil, fmt.Errorf("%w: %w", spec.ErrTransport, ProcessError(err))
	}
	data, err := res.ToBytes()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", spec.ErrTransport, err)
	}
	c.Logger.Debug("proof service responded", zap.String("addr", c.Addr), zap.String("method", "health_check"), zap.Int("status", res.StatusCode))
	resp := &wire.HealthResponse{}
	if err := json.Unmarshal(data, resp); err != nil {
		return nil, responseError(res.StatusCode, data)
	}
	switch {
	case res.StatusCode == http.StatusOK:
		return resp, nil
	case res.StatusCode == http.StatusServiceUnavailable:
		return resp, fmt.Errorf("%w: service unhealthy: %s", spec.ErrTransport, resp.Status)
	default:
		return nil, responseError(res.StatusCode, data)
	}
}

// PongResult is the outcome of pinging a single service.
type PongResult struct {
	Addr   string
	Health *wire.HealthResponse
	Err    error
}

// Ping checks the health of every service in addrs concurrently. Results keep the order of addrs.
func Ping(ctx context.Context, addrs []string, logger *zap.Logger, opts Options) []PongResult {
	type indexed struct {
		i   int
		res PongResult
	}
	resc := make(chan indexed, len(addrs))
	for i, addr := range addrs {
		go func(i int, addr string) {
			health, err := New(addr, logger, opts).Health(ctx)
			resc <- indexed{i: i, res: PongResult{Addr: addr, Health: health, Err: err}}
		}(i, addr)
	}
	results := make([]PongResult, len(addrs))
	for range addrs {
		r := <-resc
		results[r.i] = r.res
		if r.res.Err != nil {
			logger.Error("🔴 service not healthy", zap.String("addr", r.res.Addr), zap.Error(r.res.Err))
			continue
		}
		logger.Info("🟢 service online and healthy",
			zap.String("addr", r.res.Addr),
			zap.String("version", r.res.Health.Version),
			zap.String("network", r.res.Health.Network))
	}
	return results
}

// ResultError returns the error a verification result carries, if any.
func ResultError(resp *wire.VerifyResponse) error {
	if resp.ErrorKind == "" {
		if !resp.Valid {
			return fmt.Errorf("%w: target returned %x", spec.ErrVerificationFailed, []byte(resp.Value))
		}
		return nil
	}
	if kindErr := kindError(resp.ErrorKind); kindErr != nil {
		return fmt.Errorf("%w: %s", kindErr, resp.Error)
	}
	return errors.New(resp.Error)
}

// ProcessError replaces common dial errors with a readable explanation
func ProcessError(err error) error {
	if strings.Contains(err.Error(), "context deadline exceeded") {
		return fmt.Errorf("the requested server is not responding: %w", err)
	}
	if strings.Contains(err.Error(), "no such host") {
		return fmt.Errorf("the requested server is not reachable: %w", err)
	}
	return err
}

func (c *Client) send(ctx context.Context, method, path string, body, out interface{}) error {
	r := c.Client.R()
	if body != nil {
		r.SetBodyJsonMarshal(body)
	}
	return c.do(ctx, r, method, path, out)
}

func (c *Client) do(ctx context.Context, r *req.Request, method, path string, out interface{}) error {
	id := uuid.New().String()
	r.SetContext(ctx).SetHeader(server.RequestIDHeader, id)
	logger := c.Logger.With(zap.String(logging.FieldRequestID, id))

	res, err := r.Send(method, path)
	if err != nil {
		return fmt.Errorf("%w: %w", spec.ErrTransport, ProcessError(err))
	}
	data, err := res.ToBytes()
	if err != nil {
		return fmt.Errorf("%w: %w", spec.ErrTransport, err)
	}
	logger.Debug("proof service responded", zap.String("addr", c.Addr), zap.String("method", path), zap.Int("status", res.StatusCode))
	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return responseError(res.StatusCode, data)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("unexpected response from %s: %w", path, err)
	}
	return nil
}

// responseError rebuilds the error class of a failed request from the error body.
func responseError(status int, data []byte) error {
	errResp := &wire.ErrorResponse{}
	if err := json.Unmarshal(data, errResp); err != nil || errResp.Error == "" {
		errResp.Error = strings.TrimSpace(string(data))
	}
	kindErr := kindError(errResp.ErrorKind)
	if kindErr == nil && (status == http.StatusTooManyRequests || status >= 500) {
		kindErr = spec.ErrTransport
	}
	if kindErr != nil {
		return fmt.Errorf("%w: service returned %d: %s", kindErr, status, errResp.Error)
	}
	return fmt.Errorf("service returned %d: %s", status, errResp.Error)
}

func kindError(kind string) error {
	switch kind {
	case wire.KindTransport:
		return spec.ErrTransport
	case wire.KindVerificationFailed:
		return spec.ErrVerificationFailed
	case wire.KindEncoding:
		return spec.ErrEncoding
	case wire.KindSigning:
		return spec.ErrSigning
	case wire.KindInvalidSeed:
		return spec.ErrInvalidSeed
	default:
		return nil
	}
}
