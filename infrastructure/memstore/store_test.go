package memstore

import (
	"context"
	"fmt"
	"sync"
	"testing"

	sdkmath "cosmossdk.io/math"
	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"treasury/domain"
)

var usdc = common.HexToAddress("0x52D800ca262522580CeBAD275395ca6e7598C014")

func credit(amount int64) domain.Work {
	return func(ctx context.Context, ledger *domain.Ledger) (*domain.Receipt, error) {
		if err := ledger.Credit(usdc, sdkmath.NewInt(amount)); err != nil {
			return nil, err
		}
		return domain.NewReceipt(domain.OperationDeposit, usdc, usdc, sdkmath.NewInt(amount)), nil
	}
}

func custodied(t *testing.T, store *Store) sdkmath.Int {
	t.Helper()
	ledger, err := store.Snapshot(context.Background())
	require.NoError(t, err)
	entry, err := ledger.Entry(usdc)
	require.NoError(t, err)
	return entry.Custodied
}

func TestAtomicallyCommits(t *testing.T) {
	store := New([]common.Address{usdc})

	receipt, err := store.Atomically(context.Background(), credit(10))
	require.NoError(t, err)
	assert.True(t, custodied(t, store).Equal(sdkmath.NewInt(10)))

	receipts, err := store.Receipts(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, receipts, 1)
	assert.Equal(t, receipt.ID, receipts[0].ID)
}

func TestAtomicallyDiscardsOnError(t *testing.T) {
	store := New([]common.Address{usdc})
	_, err := store.Atomically(context.Background(), credit(10))
	require.NoError(t, err)

	_, err = store.Atomically(context.Background(), func(ctx context.Context, ledger *domain.Ledger) (*domain.Receipt, error) {
		require.NoError(t, ledger.Debit(usdc, sdkmath.NewInt(10)))
		return nil, fmt.Errorf("push failed")
	})
	assert.Error(t, err)
	assert.True(t, custodied(t, store).Equal(sdkmath.NewInt(10)))

	receipts, _ := store.Receipts(context.Background(), 0)
	assert.Len(t, receipts, 1)
}

func TestAtomicallyRequiresReceipt(t *testing.T) {
	store := New([]common.Address{usdc})
	_, err := store.Atomically(context.Background(), func(ctx context.Context, ledger *domain.Ledger) (*domain.Receipt, error) {
		return nil, ledger.Credit(usdc, sdkmath.NewInt(1))
	})
	assert.Error(t, err)
	assert.True(t, custodied(t, store).IsZero())
}

func TestAtomicallyCancelledContext(t *testing.T) {
	store := New([]common.Address{usdc})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := store.Atomically(ctx, credit(1))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestReceiptsNewestFirst(t *testing.T) {
	store := New([]common.Address{usdc})
	for i := int64(1); i <= 3; i++ {
		_, err := store.Atomically(context.Background(), credit(i))
		require.NoError(t, err)
	}

	receipts, err := store.Receipts(context.Background(), 2)
	require.NoError(t, err)
	require.Len(t, receipts, 2)
	assert.True(t, receipts[0].Requested.Equal(sdkmath.NewInt(3)))
	assert.True(t, receipts[1].Requested.Equal(sdkmath.NewInt(2)))
}

func TestAtomicallySerializes(t *testing.T) {
	store := New([]common.Address{usdc})

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = store.Atomically(context.Background(), credit(1))
		}()
	}
	wg.Wait()

	assert.True(t, custodied(t, store).Equal(sdkmath.NewInt(50)))
}
