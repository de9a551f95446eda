package domain

import (
	"time"

	sdkmath "cosmossdk.io/math"
	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"
)

type OperationKind string

const (
	OperationDeposit  OperationKind = "deposit"
	OperationWithdraw OperationKind = "withdraw"
	OperationSwap     OperationKind = "swap"
	OperationInvest   OperationKind = "invest"
	OperationDivest   OperationKind = "divest"
)

// ReceiptStatus reports how much of a divest request the lending pool honoured, or
// that a transaction of the operation was submitted but not seen mined. Both partial
// and pending operations are committed.
type ReceiptStatus string

const (
	DivestComplete ReceiptStatus = "complete"
	DivestPartial  ReceiptStatus = "partial"
	ReceiptPending ReceiptStatus = "pending"
)

// Receipt is written in the same transaction as the ledger mutations of a committed
// operation. Failed operations leave no receipt.
type Receipt struct {
	ID        uuid.UUID      `json:"id" yaml:"id"`
	Kind      OperationKind  `json:"kind" yaml:"kind"`
	Caller    common.Address `json:"caller" yaml:"caller"`
	AssetIn   common.Address `json:"asset_in" yaml:"asset_in"`
	AssetOut  common.Address `json:"asset_out,omitempty" yaml:"asset_out,omitempty"`
	Requested sdkmath.Int    `json:"requested" yaml:"requested"`
	Actual    sdkmath.Int    `json:"actual" yaml:"actual"`
	Yield     sdkmath.Int    `json:"yield" yaml:"yield"`
	Status    ReceiptStatus  `json:"status,omitempty" yaml:"status,omitempty"`
	TxHashes  []string       `json:"tx_hashes,omitempty" yaml:"tx_hashes,omitempty"`
	CreatedAt time.Time      `json:"created_at" yaml:"created_at"`
}

func NewReceipt(kind OperationKind, caller common.Address, assetIn common.Address, requested sdkmath.Int) *Receipt {
	return &Receipt{
		ID:        uuid.New(),
		Kind:      kind,
		Caller:    caller,
		AssetIn:   assetIn,
		Requested: requested,
		Actual:    requested,
		Yield:     sdkmath.ZeroInt(),
		TxHashes:  make([]string, 0),
		CreatedAt: time.Now().UTC(),
	}
}

// Drift is the difference between the on-chain balance of the treasury account and
// the custodied balance the ledger records for the same asset.
type Drift struct {
	Asset     Asset       `json:"asset" yaml:"asset"`
	Custodied sdkmath.Int `json:"custodied" yaml:"custodied"`
	Deployed  sdkmath.Int `json:"deployed" yaml:"deployed"`
	OnChain   sdkmath.Int `json:"on_chain" yaml:"on_chain"`
	Delta     sdkmath.Int `json:"delta" yaml:"delta"`
}

func (drift Drift) Balanced() bool {
	return drift.Delta.IsZero()
}
