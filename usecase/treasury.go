package usecase

import (
	"context"
	"errors"
	"fmt"

	sdkmath "cosmossdk.io/math"
	"github.com/ethereum/go-ethereum/common"
	"github.com/rs/zerolog"

	"treasury/domain"
	"treasury/domain/util"
	"treasury/interface/exporter"
)

// TreasuryInteractor is the public surface of the treasury. Every operation runs as
// one unit of work on the ledger store: either the ledger mutations and the receipt
// are committed together or nothing is.
type TreasuryInteractor struct {
	registry *AssetRegistry
	access   *AccessControl
	store    LedgerStore
	swap     *SwapInteractor
	yield    *YieldInteractor
	treasury common.Address
	log      zerolog.Logger
}

func NewTreasuryInteractor(registry *AssetRegistry,
	access *AccessControl,
	store LedgerStore,
	swap *SwapInteractor,
	yield *YieldInteractor,
	treasury common.Address,
	log zerolog.Logger) *TreasuryInteractor {
	interactor := &TreasuryInteractor{
		registry: registry,
		access:   access,
		store:    store,
		swap:     swap,
		yield:    yield,
		treasury: treasury,
		log:      log,
	}
	return interactor
}

func (interactor *TreasuryInteractor) Owner() common.Address {
	return interactor.access.Owner()
}

// Deposit pulls amount of asset from caller into the treasury. Anyone may deposit.
func (interactor *TreasuryInteractor) Deposit(ctx context.Context, caller common.Address, asset common.Address, amount sdkmath.Int) (*domain.Receipt, error) {
	receipt := domain.NewReceipt(domain.OperationDeposit, caller, asset, amount)
	return interactor.run(ctx, receipt, func(ctx context.Context, ledger *domain.Ledger, receipt *domain.Receipt) error {
		if err := requirePositive(amount); err != nil {
			return err
		}
		handle, err := interactor.registry.Resolve(asset)
		if err != nil {
			return err
		}

		if err := ledger.Credit(asset, amount); err != nil {
			return err
		}
		if err := handle.Token.TransferFrom(ctx, caller, interactor.treasury, amount); err != nil {
			return fmt.Errorf("%w: pulling %v from %v - %w", domain.ErrorTransferFailed, amount, caller.Hex(), err)
		}
		return nil
	})
}

// Withdraw pushes amount of asset from custody to the owner.
func (interactor *TreasuryInteractor) Withdraw(ctx context.Context, caller common.Address, asset common.Address, amount sdkmath.Int) (*domain.Receipt, error) {
	receipt := domain.NewReceipt(domain.OperationWithdraw, caller, asset, amount)
	return interactor.run(ctx, receipt, func(ctx context.Context, ledger *domain.Ledger, receipt *domain.Receipt) error {
		if err := interactor.access.RequireOwner(caller); err != nil {
			return err
		}
		if err := requirePositive(amount); err != nil {
			return err
		}
		handle, err := interactor.registry.Resolve(asset)
		if err != nil {
			return err
		}

		if err := ledger.Debit(asset, amount); err != nil {
			return err
		}
		if err := handle.Token.Transfer(ctx, caller, amount); err != nil {
			return fmt.Errorf("%w: pushing %v to %v - %w", domain.ErrorTransferFailed, amount, caller.Hex(), err)
		}
		return nil
	})
}

// Rebalance swaps custodied assetIn for assetOut, requiring at least minAmountOut back.
func (interactor *TreasuryInteractor) Rebalance(ctx context.Context,
	caller common.Address,
	assetIn common.Address,
	assetOut common.Address,
	amountIn sdkmath.Int,
	minAmountOut sdkmath.Int) (*domain.Receipt, error) {
	receipt := domain.NewReceipt(domain.OperationSwap, caller, assetIn, amountIn)
	receipt.AssetOut = assetOut
	receipt.Actual = sdkmath.ZeroInt()
	return interactor.run(ctx, receipt, func(ctx context.Context, ledger *domain.Ledger, receipt *domain.Receipt) error {
		if err := interactor.access.RequireOwner(caller); err != nil {
			return err
		}
		amountOut, err := interactor.swap.Swap(ctx, ledger, assetIn, assetOut, amountIn, minAmountOut)
		if err != nil {
			return err
		}
		receipt.Actual = amountOut
		return nil
	})
}

func (interactor *TreasuryInteractor) AllocateToYield(ctx context.Context, caller common.Address, asset common.Address, amount sdkmath.Int) (*domain.Receipt, error) {
	receipt := domain.NewReceipt(domain.OperationInvest, caller, asset, amount)
	return interactor.run(ctx, receipt, func(ctx context.Context, ledger *domain.Ledger, receipt *domain.Receipt) error {
		if err := interactor.access.RequireOwner(caller); err != nil {
			return err
		}
		return interactor.yield.Invest(ctx, ledger, asset, amount)
	})
}

// ReclaimFromYield withdraws principal from the lending pool. A short payment from
// the pool is committed with a partial status.
func (interactor *TreasuryInteractor) ReclaimFromYield(ctx context.Context, caller common.Address, asset common.Address, amount sdkmath.Int) (*domain.Receipt, error) {
	receipt := domain.NewReceipt(domain.OperationDivest, caller, asset, amount)
	receipt.Actual = sdkmath.ZeroInt()
	return interactor.run(ctx, receipt, func(ctx context.Context, ledger *domain.Ledger, receipt *domain.Receipt) error {
		if err := interactor.access.RequireOwner(caller); err != nil {
			return err
		}
		result, err := interactor.yield.Divest(ctx, ledger, asset, amount)
		if err != nil {
			return err
		}
		receipt.Actual = result.Returned
		receipt.Yield = result.Yield
		receipt.Status = result.Status
		return nil
	})
}

// Balances returns the committed ledger entries in registration order.
func (interactor *TreasuryInteractor) Balances(ctx context.Context) ([]domain.LedgerEntry, error) {
	ledger, err := interactor.store.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return ledger.Entries(), nil
}

// Receipts returns the most recent receipts, newest first.
func (interactor *TreasuryInteractor) Receipts(ctx context.Context, limit int) ([]domain.Receipt, error) {
	return interactor.store.Receipts(ctx, limit)
}

// operation mutates the ledger and fills in the receipt of one treasury operation.
type operation func(ctx context.Context, ledger *domain.Ledger, receipt *domain.Receipt) error

// run executes op as one unit of work. Any error rolls the unit back, except
// ErrorTxPending: a submitted transaction may still be mined, so the ledger is
// committed as if it was, with a pending receipt, and the error is returned along
// with that receipt. The drift reported by Reconcile tells whether the pending
// transaction landed.
func (interactor *TreasuryInteractor) run(ctx context.Context, receipt *domain.Receipt, op operation) (*domain.Receipt, error) {
	ctx, txLog := domain.WithTxLog(ctx)

	var pending error
	committed, err := interactor.store.Atomically(ctx, func(ctx context.Context, ledger *domain.Ledger) (*domain.Receipt, error) {
		result := *receipt
		if err := op(ctx, ledger, &result); err != nil {
			if !errors.Is(err, domain.ErrorTxPending) {
				return nil, err
			}
			pending = err
			result.Status = domain.ReceiptPending
		}
		result.TxHashes = txLog.Hashes()
		return &result, nil
	})
	if err == nil {
		err = pending
	} else if pending != nil {
		err = fmt.Errorf("%w, ledger not committed - %v", pending, err)
	}
	exporter.ObserveOperation(receipt.Kind, err)

	if committed == nil {
		event := interactor.log.Warn()
		if domain.ErrorKind(err) == "internal" {
			event = interactor.log.Error()
		}
		event.Err(err).
			Str("operation", string(receipt.Kind)).
			Strs("transactions", txLog.Hashes()).
			Msg("operation rolled back")
		return nil, err
	}

	if err != nil {
		interactor.log.Error().Err(err).
			Str("operation", string(receipt.Kind)).
			Str("receipt", committed.ID.String()).
			Str("requested", interactor.amountString(committed.Requested, committed.AssetIn)).
			Strs("transactions", committed.TxHashes).
			Msg("⏳ operation committed as pending, do not retry before reconcile")
		return committed, err
	}

	interactor.log.Info().
		Str("operation", string(receipt.Kind)).
		Str("receipt", committed.ID.String()).
		Str("requested", interactor.amountString(committed.Requested, committed.AssetIn)).
		Str("actual", interactor.amountString(committed.Actual, actualAsset(committed))).
		Str("status", string(committed.Status)).
		Msg("operation committed")
	return committed, nil
}

func (interactor *TreasuryInteractor) amountString(amount sdkmath.Int, asset common.Address) string {
	handle, err := interactor.registry.Resolve(asset)
	if err != nil {
		return amount.String()
	}
	return util.AssetAmountString(amount, handle.Asset)
}

func actualAsset(receipt *domain.Receipt) common.Address {
	if receipt.Kind == domain.OperationSwap {
		return receipt.AssetOut
	}
	return receipt.AssetIn
}
