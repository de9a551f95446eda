package usecase

import (
	"context"
	"time"

	sdkmath "cosmossdk.io/math"
	"github.com/ethereum/go-ethereum/common"

	"treasury/domain"
)

// Token is the fungible asset primitive. A transfer the token refuses (a false
// return or a revert) must be reported as an error.
type Token interface {
	BalanceOf(ctx context.Context, holder common.Address) (sdkmath.Int, error)
	Transfer(ctx context.Context, to common.Address, amount sdkmath.Int) error
	TransferFrom(ctx context.Context, from common.Address, to common.Address, amount sdkmath.Int) error
	Approve(ctx context.Context, spender common.Address, amount sdkmath.Int) error
}

// SwapRouter is a constant-product exchange router. The returned amount is what the
// recipient actually received.
type SwapRouter interface {
	Address() common.Address
	SwapExactTokensForTokens(ctx context.Context, amountIn sdkmath.Int, amountOutMin sdkmath.Int, path []common.Address, recipient common.Address, deadline time.Time) (sdkmath.Int, error)
}

// LendingPool is the yield venue. Withdraw returns the amount actually paid to the
// recipient, which may exceed the request (accrued interest) or fall short of it
// (constrained liquidity).
type LendingPool interface {
	Address() common.Address
	Supply(ctx context.Context, asset common.Address, amount sdkmath.Int, onBehalfOf common.Address) error
	Withdraw(ctx context.Context, asset common.Address, amount sdkmath.Int, to common.Address) (sdkmath.Int, error)
}

// LedgerStore serializes operations on the treasury ledger. Atomically commits the
// ledger mutations and the receipt of work only when work returns no error;
// otherwise nothing is kept.
type LedgerStore interface {
	Atomically(ctx context.Context, work domain.Work) (*domain.Receipt, error)
	Snapshot(ctx context.Context) (*domain.Ledger, error)
	Receipts(ctx context.Context, limit int) ([]domain.Receipt, error)
}
