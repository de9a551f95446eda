package memstore

import (
	"context"
	"fmt"
	"sync"

	"github.com/ethereum/go-ethereum/common"

	"treasury/domain"
)

// Store keeps the ledger in process memory. Operations are serialized by one mutex
// and run against a copy of the ledger that replaces the committed one only when the
// operation succeeds.
type Store struct {
	mu       sync.Mutex
	ledger   *domain.Ledger
	receipts []domain.Receipt
}

func New(assets []common.Address) *Store {
	return &Store{
		ledger:   domain.NewLedger(assets),
		receipts: make([]domain.Receipt, 0),
	}
}

func (store *Store) Atomically(ctx context.Context, work domain.Work) (*domain.Receipt, error) {
	store.mu.Lock()
	defer store.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	working := store.ledger.Clone()
	receipt, err := work(ctx, working)
	if err != nil {
		return nil, err
	}
	if receipt == nil {
		return nil, fmt.Errorf("operation returned no receipt")
	}

	store.ledger = working
	store.receipts = append(store.receipts, *receipt)
	return receipt, nil
}

func (store *Store) Snapshot(ctx context.Context) (*domain.Ledger, error) {
	store.mu.Lock()
	defer store.mu.Unlock()
	return store.ledger.Clone(), nil
}

// Receipts returns at most limit receipts, newest first. A non-positive limit returns all.
func (store *Store) Receipts(ctx context.Context, limit int) ([]domain.Receipt, error) {
	store.mu.Lock()
	defer store.mu.Unlock()

	count := len(store.receipts)
	if limit > 0 && limit < count {
		count = limit
	}
	result := make([]domain.Receipt, 0, count)
	for i := len(store.receipts) - 1; i >= 0 && len(result) < count; i-- {
		result = append(result, store.receipts[i])
	}
	return result, nil
}
