// Package chain defines the narrow ledger surface the rest of the module
// depends on: filtered log reads, batched contract reads with per-item
// failure, and write submission with receipt waiting. The production
// implementation is Client, backed by a go-ethereum RPC connection;
// tests substitute in-memory fakes.
package chain

import (
	"context"
	"errors"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/holiman/uint256"
)

var (
	ErrNoSigner    = errors.New("chain: no transaction signer configured")
	ErrBatchLength = errors.New("chain: batch result length mismatch")
)

// Call describes one contract function invocation, read or write.
type Call struct {
	To     common.Address
	ABI    *abi.ABI
	Method string
	Args   []any
}

// CallResult is the outcome of a single call within a batch. A failed
// item (reverted call, nonexistent token) is not a batch error; callers
// inspect OK per item.
type CallResult struct {
	OK   bool
	Data []byte
}

// TxHandle identifies a submitted transaction awaiting inclusion.
type TxHandle struct {
	Hash common.Hash
}

// ReceiptStatus is the terminal outcome of a submitted transaction.
type ReceiptStatus int

const (
	ReceiptFailed ReceiptStatus = iota
	ReceiptConfirmed
)

// LogReader retrieves historical event logs over a bounded block range.
type LogReader interface {
	FilterLogs(ctx context.Context, addr common.Address, topic common.Hash, fromBlock, toBlock uint64) ([]types.Log, error)
	LatestBlock(ctx context.Context) (uint64, error)
}

// BatchCaller issues many independent read calls in one round trip.
// The returned slice always has one result per call, in call order; the
// error return covers transport failure only.
type BatchCaller interface {
	CallBatch(ctx context.Context, calls []Call) ([]CallResult, error)
}

// TxSubmitter sends state-changing calls and waits for their inclusion.
// Signing is delegated to the configured wallet; Wait blocks until the
// transaction is mined or ctx is cancelled.
type TxSubmitter interface {
	Submit(ctx context.Context, call Call, value *uint256.Int) (TxHandle, error)
	Wait(ctx context.Context, handle TxHandle) (ReceiptStatus, error)
}
