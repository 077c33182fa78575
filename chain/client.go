package chain

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/ethereum/go-ethereum/rpc"
	"github.com/holiman/uint256"
)

// receiptPollInterval is how often Wait re-checks for a mined receipt.
// Inclusion has no timeout: a stuck transaction keeps Wait blocked until
// the caller cancels ctx or replaces the transaction at the wallet level.
const receiptPollInterval = 2 * time.Second

// Client implements LogReader, BatchCaller and TxSubmitter over a single
// go-ethereum RPC connection. The signer is optional; a Client without
// one serves reads and rejects Submit with ErrNoSigner.
type Client struct {
	eth    *ethclient.Client
	rpc    *rpc.Client
	signer *bind.TransactOpts
	logger *slog.Logger
}

// Dial connects to an RPC endpoint. signer may be nil for read-only use.
func Dial(ctx context.Context, url string, signer *bind.TransactOpts, logger *slog.Logger) (*Client, error) {
	if logger == nil {
		logger = slog.Default()
	}
	rc, err := rpc.DialContext(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("chain: dial %s: %w", url, err)
	}
	return &Client{
		eth:    ethclient.NewClient(rc),
		rpc:    rc,
		signer: signer,
		logger: logger,
	}, nil
}

// Close releases the underlying RPC connection.
func (c *Client) Close() {
	c.rpc.Close()
}

// LatestBlock returns the current head block number.
func (c *Client) LatestBlock(ctx context.Context) (uint64, error) {
	n, err := c.eth.BlockNumber(ctx)
	if err != nil {
		return 0, fmt.Errorf("chain: latest block: %w", err)
	}
	return n, nil
}

// FilterLogs returns logs emitted by addr with the given topic0 over
// [fromBlock, toBlock]. The range is passed through as-is; window
// partitioning for range-limited providers lives in LogFetcher.
func (c *Client) FilterLogs(ctx context.Context, addr common.Address, topic common.Hash, fromBlock, toBlock uint64) ([]types.Log, error) {
	q := ethereum.FilterQuery{
		FromBlock: new(big.Int).SetUint64(fromBlock),
		ToBlock:   new(big.Int).SetUint64(toBlock),
		Addresses: []common.Address{addr},
		Topics:    [][]common.Hash{{topic}},
	}
	logs, err := c.eth.FilterLogs(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("chain: filter logs [%d,%d]: %w", fromBlock, toBlock, err)
	}
	return logs, nil
}

// CallBatch packs every call and issues them as one JSON-RPC batch of
// eth_call requests. Each batch element carries its own error, so a
// single reverted call (an unminted token, say) surfaces as a failed
// item rather than failing the round trip.
func (c *Client) CallBatch(ctx context.Context, calls []Call) ([]CallResult, error) {
	if len(calls) == 0 {
		return nil, nil
	}

	elems := make([]rpc.BatchElem, len(calls))
	outs := make([]hexutil.Bytes, len(calls))
	for i, call := range calls {
		data, err := call.ABI.Pack(call.Method, call.Args...)
		if err != nil {
			return nil, fmt.Errorf("chain: pack %s: %w", call.Method, err)
		}
		elems[i] = rpc.BatchElem{
			Method: "eth_call",
			Args: []any{
				map[string]any{
					"to":   call.To,
					"data": hexutil.Bytes(data),
				},
				"latest",
			},
			Result: &outs[i],
		}
	}

	if err := c.rpc.BatchCallContext(ctx, elems); err != nil {
		return nil, fmt.Errorf("chain: batch call: %w", err)
	}

	results := make([]CallResult, len(calls))
	for i := range elems {
		if elems[i].Error != nil {
			results[i] = CallResult{OK: false}
			continue
		}
		results[i] = CallResult{OK: true, Data: outs[i]}
	}
	return results, nil
}

// Submit packs and sends a state-changing call, returning the pending
// transaction handle. The value, when non-nil, is attached as msg.value.
func (c *Client) Submit(ctx context.Context, call Call, value *uint256.Int) (TxHandle, error) {
	if c.signer == nil {
		return TxHandle{}, ErrNoSigner
	}

	opts := *c.signer
	opts.Context = ctx
	if value != nil {
		opts.Value = value.ToBig()
	}

	bound := bind.NewBoundContract(call.To, *call.ABI, c.eth, c.eth, c.eth)
	tx, err := bound.Transact(&opts, call.Method, call.Args...)
	if err != nil {
		return TxHandle{}, fmt.Errorf("chain: submit %s: %w", call.Method, err)
	}

	c.logger.Info("transaction submitted",
		slog.String("method", call.Method),
		slog.String("to", call.To.Hex()),
		slog.String("tx", tx.Hash().Hex()))
	return TxHandle{Hash: tx.Hash()}, nil
}

// Wait blocks until the transaction is mined, then reports whether it
// succeeded or reverted.
func (c *Client) Wait(ctx context.Context, handle TxHandle) (ReceiptStatus, error) {
	ticker := time.NewTicker(receiptPollInterval)
	defer ticker.Stop()

	for {
		receipt, err := c.eth.TransactionReceipt(ctx, handle.Hash)
		switch {
		case err == nil:
			if receipt.Status == types.ReceiptStatusSuccessful {
				return ReceiptConfirmed, nil
			}
			return ReceiptFailed, nil
		case errors.Is(err, ethereum.NotFound):
			// Still pending.
		default:
			return ReceiptFailed, fmt.Errorf("chain: receipt %s: %w", handle.Hash.Hex(), err)
		}

		select {
		case <-ctx.Done():
			return ReceiptFailed, ctx.Err()
		case <-ticker.C:
		}
	}
}
