package bridge

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"
	"go.uber.org/zap"

	"github.com/ssvlabs/coa-proof/pkgs/config"
	"github.com/ssvlabs/coa-proof/pkgs/flow"
	"github.com/ssvlabs/coa-proof/spec"
	"github.com/ssvlabs/coa-proof/spec/eip1271"
)

// FlowQuerier answers read-only questions about source ledger accounts.
type FlowQuerier interface {
	ResolveBoundAddress(ctx context.Context, evmContract, account flow.Address, storagePath string) (common.Address, error)
	ChainID(ctx context.Context) (string, error)
}

// VerificationResult is the answer of a target contract to one proof.
type VerificationResult struct {
	Target      common.Address
	Digest      [32]byte
	Value       [4]byte
	BlockNumber uint64
	Valid       bool
}

// Bridge verifies ownership proofs against the target ledger and queries the source ledger.
type Bridge struct {
	cfg         config.Config
	evm         eip1271.ETHClient
	flow        FlowQuerier
	evmContract flow.Address
	logger      *zap.Logger
	closer      func()
}

// New builds a bridge over already constructed clients.
func New(cfg *config.Config, evm eip1271.ETHClient, flowClient FlowQuerier, logger *zap.Logger) (*Bridge, error) {
	if cfg == nil {
		return nil, errors.New("missing bridge config")
	}
	c := *cfg
	c.ApplyDefaults()
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("invalid bridge config: %w", err)
	}
	evmContract, err := flow.HexToAddress(c.EVMContract)
	if err != nil {
		return nil, err
	}
	return &Bridge{
		cfg:         c,
		evm:         evm,
		flow:        flowClient,
		evmContract: evmContract,
		logger:      logger,
	}, nil
}

// Dial connects to the endpoints named by cfg.
func Dial(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Bridge, error) {
	if cfg == nil {
		return nil, errors.New("missing bridge config")
	}
	c := *cfg
	c.ApplyDefaults()
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("invalid bridge config: %w", err)
	}
	evm, err := ethclient.DialContext(ctx, c.EVMRPCURL)
	if err != nil {
		return nil, fmt.Errorf("%w: dial evm rpc: %w", spec.ErrTransport, err)
	}
	flowClient := flow.NewClient(flow.ClientConfig{
		AccessURL:         c.AccessURL,
		Timeout:           c.CallTimeout,
		RequestsPerSecond: c.RequestsPerSecond,
	}, logger.Named("flow"))
	b, err := New(&c, evm, flowClient, logger)
	if err != nil {
		evm.Close()
		return nil, err
	}
	b.closer = evm.Close
	return b, nil
}

func (b *Bridge) Close() {
	if b.closer != nil {
		b.closer()
	}
}

func (b *Bridge) Config() config.Config {
	return b.cfg
}

// VerifyOnChain calls isValidSignature(digest, encodedProof) on target. The proof is valid
// only when the contract answers with the magic value. A revert, a missing contract or
// any other answer is ErrVerificationFailed; failing to reach the node is ErrTransport.
func (b *Bridge) VerifyOnChain(ctx context.Context, target common.Address, digest [32]byte, encodedProof []byte) (*VerificationResult, error) {
	ctx, cancel := context.WithTimeout(ctx, b.cfg.CallTimeout)
	defer cancel()

	block, err := b.evm.BlockNumber(ctx)
	if err != nil {
		return nil, classify(err)
	}
	caller, err := eip1271.NewEip1271Caller(target, b.evm)
	if err != nil {
		return nil, err
	}
	value, err := caller.IsValidSignature(&bind.CallOpts{
		Context:     ctx,
		BlockNumber: new(big.Int).SetUint64(block),
	}, digest, encodedProof)
	if err != nil {
		err = classify(err)
		b.logger.Debug("isValidSignature call failed",
			zap.String("target", target.Hex()),
			zap.Uint64("block", block),
			zap.Error(err))
		return nil, err
	}

	res := &VerificationResult{
		Target:      target,
		Digest:      digest,
		Value:       value,
		BlockNumber: block,
		Valid:       value == eip1271.MagicValue,
	}
	b.logger.Debug("isValidSignature answered",
		zap.String("target", target.Hex()),
		zap.Uint64("block", block),
		zap.String("value", fmt.Sprintf("0x%x", value)))
	if !res.Valid {
		return res, fmt.Errorf("%w: contract %s returned 0x%x", spec.ErrVerificationFailed, target.Hex(), value)
	}
	return res, nil
}

// ResolveBoundAddress returns the EVM address of the COA account keeps under storagePath.
// It is not compared with any proof; use CheckBinding for that.
func (b *Bridge) ResolveBoundAddress(ctx context.Context, account flow.Address, storagePath string) (common.Address, error) {
	ctx, cancel := context.WithTimeout(ctx, b.cfg.CallTimeout)
	defer cancel()
	addr, err := b.flow.ResolveBoundAddress(ctx, b.evmContract, account, storagePath)
	if err != nil {
		if ctx.Err() != nil && !errors.Is(err, spec.ErrTransport) {
			return common.Address{}, fmt.Errorf("%w: %w", spec.ErrTransport, err)
		}
		return common.Address{}, err
	}
	return addr, nil
}

// CheckBinding fails with ErrVerificationFailed when account does not resolve to target.
func (b *Bridge) CheckBinding(ctx context.Context, account flow.Address, storagePath string, target common.Address) error {
	resolved, err := b.ResolveBoundAddress(ctx, account, storagePath)
	if err != nil {
		return err
	}
	return spec.CheckBinding(resolved, target)
}

// VerifyAccountProof resolves the COA of the account named in the proof and verifies the
// proof against it.
func (b *Bridge) VerifyAccountProof(ctx context.Context, digest [32]byte, encodedProof []byte) (*VerificationResult, error) {
	proof, err := spec.DecodeOwnershipProof(encodedProof)
	if err != nil {
		return nil, err
	}
	account, err := flow.BytesToAddress(proof.Address)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", spec.ErrEncoding, err)
	}
	target, err := b.ResolveBoundAddress(ctx, account, proof.CapabilityPath)
	if err != nil {
		return nil, err
	}
	b.logger.Debug("resolved proof target",
		zap.String("account", account.Hex()),
		zap.String("path", proof.CapabilityPath),
		zap.String("target", target.Hex()))
	return b.VerifyOnChain(ctx, target, digest, encodedProof)
}

func classify(err error) error {
	switch {
	case errors.Is(err, spec.ErrTransport), errors.Is(err, spec.ErrVerificationFailed):
		return err
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return fmt.Errorf("%w: %w", spec.ErrTransport, err)
	case errors.Is(err, bind.ErrNoCode):
		return fmt.Errorf("%w: no contract at target: %w", spec.ErrVerificationFailed, err)
	case eip1271.IsRevert(err):
		return fmt.Errorf("%w: %w", spec.ErrVerificationFailed, err)
	case strings.HasPrefix(err.Error(), "abi:"):
		return fmt.Errorf("%w: malformed contract answer: %w", spec.ErrVerificationFailed, err)
	default:
		return fmt.Errorf("%w: %w", spec.ErrTransport, err)
	}
}
