package domain

import (
	"context"
	"sync"
)

// Work is the body of one atomic treasury operation. It mutates the ledger it is
// given and returns the receipt to commit together with the mutations.
type Work func(ctx context.Context, ledger *Ledger) (*Receipt, error)

type txLogKey struct{}

// TxLog collects the hashes of the on-chain transactions sent while one operation runs.
type TxLog struct {
	mu     sync.Mutex
	hashes []string
}

func WithTxLog(ctx context.Context) (context.Context, *TxLog) {
	txLog := &TxLog{hashes: make([]string, 0)}
	return context.WithValue(ctx, txLogKey{}, txLog), txLog
}

// RecordTx appends hash to the TxLog carried by ctx, if any.
func RecordTx(ctx context.Context, hash string) {
	txLog, ok := ctx.Value(txLogKey{}).(*TxLog)
	if !ok {
		return
	}
	txLog.mu.Lock()
	txLog.hashes = append(txLog.hashes, hash)
	txLog.mu.Unlock()
}

func (txLog *TxLog) Hashes() []string {
	txLog.mu.Lock()
	defer txLog.mu.Unlock()
	result := make([]string, len(txLog.hashes))
	copy(result, txLog.hashes)
	return result
}
