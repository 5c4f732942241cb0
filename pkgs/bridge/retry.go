package bridge

import (
	"context"
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"github.com/ssvlabs/coa-proof/spec"
)

// VerifyWithRetry repeats VerifyOnChain while it fails with ErrTransport, backing off
// between attempts. Any other outcome is returned at once.
func (b *Bridge) VerifyWithRetry(ctx context.Context, target common.Address, digest [32]byte, encodedProof []byte) (*VerificationResult, error) {
	var (
		res *VerificationResult
		err error
	)
	backoff := b.cfg.Retry.InitialBackoff
	for attempt := 1; attempt <= b.cfg.Retry.MaxAttempts; attempt++ {
		res, err = b.VerifyOnChain(ctx, target, digest, encodedProof)
		if err == nil || !spec.IsRetryable(err) {
			return res, err
		}
		if attempt == b.cfg.Retry.MaxAttempts {
			break
		}
		b.logger.Warn("verification attempt failed, retrying",
			zap.Int("attempt", attempt),
			zap.Duration("backoff", backoff),
			zap.Error(err))
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("%w: %w", spec.ErrTransport, ctx.Err())
		case <-time.After(backoff):
		}
		backoff = time.Duration(float64(backoff) * b.cfg.Retry.BackoffMultiple)
		if backoff > b.cfg.Retry.MaxBackoff {
			backoff = b.cfg.Retry.MaxBackoff
		}
	}
	return nil, fmt.Errorf("after %d attempts: %w", b.cfg.Retry.MaxAttempts, err)
}
