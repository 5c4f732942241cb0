package bridge

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/sourcegraph/conc/iter"
	"github.com/sourcegraph/conc/pool"
)

// Request is one proof to verify against one target.
type Request struct {
	Target common.Address
	Digest [32]byte
	Proof  []byte
}

type BatchResult struct {
	Result *VerificationResult
	Err    error
}

// VerifyBatch verifies independent proofs concurrently. Results keep the order of reqs and
// a failure of one request does not affect the others.
func (b *Bridge) VerifyBatch(ctx context.Context, reqs []Request) []BatchResult {
	mapper := iter.Mapper[Request, BatchResult]{MaxGoroutines: b.cfg.Concurrency}
	return mapper.Map(reqs, func(r *Request) BatchResult {
		res, err := b.VerifyWithRetry(ctx, r.Target, r.Digest, r.Proof)
		return BatchResult{Result: res, Err: err}
	})
}

// Health checks both ledgers can be reached.
func (b *Bridge) Health(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, b.cfg.CallTimeout)
	defer cancel()

	p := pool.New().WithContext(ctx)
	p.Go(func(ctx context.Context) error {
		if _, err := b.evm.BlockNumber(ctx); err != nil {
			return fmt.Errorf("evm rpc: %w", classify(err))
		}
		return nil
	})
	p.Go(func(ctx context.Context) error {
		if _, err := b.flow.ChainID(ctx); err != nil {
			return fmt.Errorf("flow access: %w", err)
		}
		return nil
	})
	return p.Wait()
}
