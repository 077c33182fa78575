package sequencer

import (
	"context"
	"errors"
	"math/big"
	"sync"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"

	"github.com/canvaslabs/go-canvas/chain"
	"github.com/canvaslabs/go-canvas/contracts"
)

// fakeSubmitter records every submitted call and answers Wait from a
// scripted list of receipt statuses.
type fakeSubmitter struct {
	mu        sync.Mutex
	submitted []chain.Call
	values    []*uint256.Int
	statuses  []chain.ReceiptStatus
	submitErr error
	block     chan struct{} // when set, Wait blocks until closed
}

func (f *fakeSubmitter) Submit(_ context.Context, call chain.Call, value *uint256.Int) (chain.TxHandle, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.submitErr != nil {
		return chain.TxHandle{}, f.submitErr
	}
	f.submitted = append(f.submitted, call)
	f.values = append(f.values, value)
	return chain.TxHandle{Hash: common.BigToHash(common.Big1)}, nil
}

func (f *fakeSubmitter) Wait(ctx context.Context, _ chain.TxHandle) (chain.ReceiptStatus, error) {
	if f.block != nil {
		select {
		case <-f.block:
		case <-ctx.Done():
			return chain.ReceiptFailed, ctx.Err()
		}
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.statuses) == 0 {
		return chain.ReceiptConfirmed, nil
	}
	status := f.statuses[0]
	f.statuses = f.statuses[1:]
	return status, nil
}

func TestListFlowTwoWritesInOrder(t *testing.T) {
	submitter := &fakeSubmitter{}
	var confirmed []string
	seq := New(submitter, Hook{
		Confirmed: func(op Operation) { confirmed = append(confirmed, op.Kind) },
	}, nil)

	price, _ := uint256.FromDecimal("2000000000000000000")
	nft, market := common.BytesToAddress([]byte{1}), common.BytesToAddress([]byte{2})

	if err := seq.Execute(context.Background(), ListOp(nft, market, 42, price)); err != nil {
		t.Fatal(err)
	}

	if len(submitter.submitted) != 2 {
		t.Fatalf("made %d writes, want 2", len(submitter.submitted))
	}
	if submitter.submitted[0].Method != contracts.MethodApprove {
		t.Errorf("first write = %s, want approve", submitter.submitted[0].Method)
	}
	if submitter.submitted[1].Method != contracts.MethodListPixel {
		t.Errorf("second write = %s, want listPixel", submitter.submitted[1].Method)
	}

	// The continuation must carry the originally captured price.
	listArgs := submitter.submitted[1].Args
	if got := listArgs[1].(*big.Int); got.String() != "2000000000000000000" {
		t.Errorf("listed price = %v, want captured 2000000000000000000", got)
	}

	if seq.State() != StateConfirmed {
		t.Errorf("state after success = %s, want confirmed", seq.State())
	}
	if len(confirmed) != 1 || confirmed[0] != KindList {
		t.Errorf("confirmed hooks = %v", confirmed)
	}
}

func TestListFlowApproveRevertDiscardsContinuation(t *testing.T) {
	submitter := &fakeSubmitter{statuses: []chain.ReceiptStatus{chain.ReceiptFailed}}
	var failures []error
	seq := New(submitter, Hook{
		Failed: func(_ Operation, err error) { failures = append(failures, err) },
	}, nil)

	err := seq.Execute(context.Background(), ListOp(common.Address{}, common.Address{}, 1, uint256.NewInt(100)))
	if !errors.Is(err, ErrReverted) {
		t.Fatalf("err = %v, want ErrReverted", err)
	}

	if len(submitter.submitted) != 1 {
		t.Fatalf("made %d writes, want exactly 1 (no listPixel after failed approve)", len(submitter.submitted))
	}
	if submitter.submitted[0].Method != contracts.MethodApprove {
		t.Errorf("write = %s, want approve", submitter.submitted[0].Method)
	}
	if seq.State() != StateFailed {
		t.Errorf("state after failure = %s, want failed", seq.State())
	}
	if len(failures) != 1 {
		t.Errorf("failed hooks = %d, want 1", len(failures))
	}
}

func TestMintCarriesValue(t *testing.T) {
	submitter := &fakeSubmitter{}
	seq := New(submitter, Hook{}, nil)

	price := uint256.NewInt(1500000000000000)
	if err := seq.Execute(context.Background(), MintOp(common.Address{}, 3, 4, 2, price)); err != nil {
		t.Fatal(err)
	}

	if len(submitter.submitted) != 1 || submitter.submitted[0].Method != contracts.MethodMintPixel {
		t.Fatalf("unexpected writes: %+v", submitter.submitted)
	}
	if submitter.values[0] == nil || !submitter.values[0].Eq(price) {
		t.Errorf("mint value = %v, want %s", submitter.values[0], price.Dec())
	}
}

func TestSecondIntentRejectedWhileInFlight(t *testing.T) {
	submitter := &fakeSubmitter{block: make(chan struct{})}
	seq := New(submitter, Hook{}, nil)

	done := make(chan error, 1)
	go func() {
		done <- seq.Execute(context.Background(), ChangeColorOp(common.Address{}, 1, 3))
	}()

	// Wait for the first operation to reach Confirming.
	for seq.State() != StateConfirming {
		time.Sleep(time.Millisecond)
	}

	if err := seq.Execute(context.Background(), ChangeColorOp(common.Address{}, 2, 4)); !errors.Is(err, ErrBusy) {
		t.Errorf("second intent err = %v, want ErrBusy", err)
	}

	close(submitter.block)
	if err := <-done; err != nil {
		t.Fatal(err)
	}
	if seq.State() != StateConfirmed {
		t.Errorf("state = %s, want confirmed", seq.State())
	}

	// Terminal states are quiescent: the next intent must be accepted.
	if err := seq.Execute(context.Background(), ChangeColorOp(common.Address{}, 2, 4)); err != nil {
		t.Errorf("intent after terminal state err = %v", err)
	}
}

func TestSubmitErrorFails(t *testing.T) {
	submitter := &fakeSubmitter{submitErr: errors.New("wallet rejected")}
	seq := New(submitter, Hook{}, nil)

	if err := seq.Execute(context.Background(), BuyOp(common.Address{}, 1, uint256.NewInt(1))); err == nil {
		t.Fatal("expected error from submit failure")
	}
	if seq.State() != StateFailed {
		t.Errorf("state = %s, want failed", seq.State())
	}
}
