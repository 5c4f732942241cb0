package flow

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/imroc/req/v3"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/ssvlabs/coa-proof/spec"
)

// ErrScriptFailed marks a script the Access node executed and rejected.
var ErrScriptFailed = errors.New("script execution failed")

type ClientConfig struct {
	// AccessURL Flow Access node REST API base URL
	AccessURL string
	// Timeout bounds every request
	Timeout time.Duration
	// RequestsPerSecond throttles outgoing requests, zero disables throttling
	RequestsPerSecond float64
}

// Client talks to the Flow Access node REST API.
type Client struct {
	client  *req.Client
	limiter *rate.Limiter
	logger  *zap.Logger
}

type scriptRequest struct {
	Script    string   `json:"script"`
	Arguments []string `json:"arguments"`
}

type apiError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func NewClient(cfg ClientConfig, logger *zap.Logger) *Client {
	client := req.C().
		SetBaseURL(strings.TrimSuffix(cfg.AccessURL, "/")).
		SetTimeout(cfg.Timeout).
		SetCommonHeader("Accept", "application/json")

	limiter := rate.NewLimiter(rate.Inf, 1)
	if cfg.RequestsPerSecond > 0 {
		burst := int(cfg.RequestsPerSecond)
		if burst < 1 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), burst)
	}
	return &Client{
		client:  client,
		limiter: limiter,
		logger:  logger,
	}
}

// ExecuteScript runs a read-only Cadence script at the latest sealed block.
func (c *Client) ExecuteScript(ctx context.Context, script string, args ...Value) (Value, error) {
	body := scriptRequest{
		Script:    base64.StdEncoding.EncodeToString([]byte(script)),
		Arguments: make([]string, 0, len(args)),
	}
	for _, arg := range args {
		encoded, err := encodeArgument(arg)
		if err != nil {
			return Value{}, fmt.Errorf("failed to encode script argument: %w", err)
		}
		body.Arguments = append(body.Arguments, encoded)
	}

	data, err := c.do(ctx, http.MethodPost, "/v1/scripts", body)
	if err != nil {
		return Value{}, err
	}
	var encoded string
	if err := json.Unmarshal(data, &encoded); err != nil {
		return Value{}, fmt.Errorf("unexpected script response: %w", err)
	}
	return decodeValue(encoded)
}

// ChainID returns the chain the Access node serves, e.g. flow-testnet.
func (c *Client) ChainID(ctx context.Context) (string, error) {
	data, err := c.do(ctx, http.MethodGet, "/v1/network/parameters", nil)
	if err != nil {
		return "", err
	}
	var params struct {
		ChainID string `json:"chain_id"`
	}
	if err := json.Unmarshal(data, &params); err != nil {
		return "", fmt.Errorf("unexpected network parameters response: %w", err)
	}
	return params.ChainID, nil
}

func (c *Client) do(ctx context.Context, method, path string, body interface{}) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("%w: %w", spec.ErrTransport, err)
	}
	r := c.client.R().SetContext(ctx)
	if method == http.MethodPost {
		r.SetQueryParam("block_height", "sealed")
		r.SetBodyJsonMarshal(body)
	}
	start := time.Now()
	res, err := r.Send(method, path)
	if err != nil {
		return nil, fmt.Errorf("%w: flow access %s: %w", spec.ErrTransport, path, err)
	}
	data, err := res.ToBytes()
	if err != nil {
		return nil, fmt.Errorf("%w: flow access %s: %w", spec.ErrTransport, path, err)
	}
	c.logger.Debug("flow access responded",
		zap.String("path", path),
		zap.Int("status", res.StatusCode),
		zap.Duration("took", time.Since(start)))

	switch {
	case res.StatusCode >= 200 && res.StatusCode < 300:
		return data, nil
	case res.StatusCode == http.StatusTooManyRequests || res.StatusCode >= 500:
		return nil, fmt.Errorf("%w: flow access %s returned %d: %s", spec.ErrTransport, path, res.StatusCode, errorMessage(data))
	case res.StatusCode == http.StatusBadRequest && path == "/v1/scripts":
		return nil, fmt.Errorf("%w: %w: %s", spec.ErrVerificationFailed, ErrScriptFailed, errorMessage(data))
	default:
		return nil, fmt.Errorf("flow access %s returned %d: %s", path, res.StatusCode, errorMessage(data))
	}
}

func errorMessage(data []byte) string {
	var apiErr apiError
	if err := json.Unmarshal(data, &apiErr); err == nil && apiErr.Message != "" {
		return apiErr.Message
	}
	return string(data)
}
