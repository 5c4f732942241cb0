package stubs

import (
	"context"
	"math/big"
	"sync/atomic"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

// Client is an in-memory EVM backend. Calls go to CallContractF when set, otherwise
// to the contract registered at the call target.
type Client struct {
	CallContractF func(call ethereum.CallMsg) ([]byte, error)
	CodeAtMap     map[common.Address]bool
	Contracts     map[common.Address]*COAContract

	calls atomic.Int64
}

// Calls returns how many CallContract requests were served.
func (c *Client) Calls() int64 {
	return c.calls.Load()
}

func (c *Client) BlockNumber(ctx context.Context) (uint64, error) {
	return 100, nil
}

func (c *Client) CodeAt(ctx context.Context, contract common.Address, blockNumber *big.Int) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if c.CodeAtMap[contract] || c.Contracts[contract] != nil {
		return make([]byte, 1024), nil
	}
	return make([]byte, 0), nil
}

func (c *Client) CallContract(ctx context.Context, call ethereum.CallMsg, blockNumber *big.Int) ([]byte, error) {
	c.calls.Add(1)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if c.CallContractF != nil {
		return c.CallContractF(call)
	}
	if call.To != nil {
		if coa := c.Contracts[*call.To]; coa != nil {
			return coa.Call(call)
		}
	}
	return nil, nil
}

func (c *Client) HeaderByNumber(ctx context.Context, number *big.Int) (*types.Header, error) {
	return &types.Header{Number: big.NewInt(100)}, nil
}

func (c *Client) PendingCodeAt(ctx context.Context, account common.Address) ([]byte, error) {
	return c.CodeAt(ctx, account, nil)
}

func (c *Client) PendingNonceAt(ctx context.Context, account common.Address) (uint64, error) {
	panic("implement")
}

func (c *Client) SuggestGasPrice(ctx context.Context) (*big.Int, error) {
	panic("implement")
}

func (c *Client) SuggestGasTipCap(ctx context.Context) (*big.Int, error) {
	panic("implement")
}

func (c *Client) EstimateGas(ctx context.Context, call ethereum.CallMsg) (gas uint64, err error) {
	panic("implement")
}

func (c *Client) SendTransaction(ctx context.Context, tx *types.Transaction) error {
	panic("implement")
}

func (c *Client) FilterLogs(ctx context.Context, query ethereum.FilterQuery) ([]types.Log, error) {
	panic("implement")
}

func (c *Client) SubscribeFilterLogs(ctx context.Context, query ethereum.FilterQuery, ch chan<- types.Log) (ethereum.Subscription, error) {
	panic("implement")
}
