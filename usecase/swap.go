package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	sdkmath "cosmossdk.io/math"
	"github.com/ethereum/go-ethereum/common"
	"github.com/rs/zerolog"

	"treasury/domain"
)

// SwapInteractor trades custodied balance of one asset for another on the swap router.
// It runs inside the caller's atomic operation: every error it returns aborts the
// operation, so the debit of the input asset is never kept without the credit of the
// output asset.
type SwapInteractor struct {
	registry *AssetRegistry
	router   SwapRouter
	treasury common.Address
	deadline time.Duration
	via      *common.Address
	log      zerolog.Logger

	now func() time.Time
}

func NewSwapInteractor(registry *AssetRegistry,
	router SwapRouter,
	treasury common.Address,
	deadline time.Duration,
	via *common.Address,
	log zerolog.Logger) *SwapInteractor {
	interactor := &SwapInteractor{
		registry: registry,
		router:   router,
		treasury: treasury,
		deadline: deadline,
		via:      via,
		log:      log,
		now:      time.Now,
	}
	return interactor
}

// Swap returns the amount of assetOut the router actually delivered.
func (interactor *SwapInteractor) Swap(ctx context.Context,
	ledger *domain.Ledger,
	assetIn common.Address,
	assetOut common.Address,
	amountIn sdkmath.Int,
	minAmountOut sdkmath.Int) (sdkmath.Int, error) {

	if assetIn == assetOut {
		return sdkmath.ZeroInt(), domain.ErrorSameAsset
	}
	if err := requirePositive(amountIn); err != nil {
		return sdkmath.ZeroInt(), err
	}
	if minAmountOut.IsNil() || minAmountOut.IsNegative() {
		return sdkmath.ZeroInt(), fmt.Errorf("%w: minimum output %v", domain.ErrorInvalidAmount, minAmountOut)
	}

	handleIn, err := interactor.registry.Resolve(assetIn)
	if err != nil {
		return sdkmath.ZeroInt(), err
	}
	handleOut, err := interactor.registry.Resolve(assetOut)
	if err != nil {
		return sdkmath.ZeroInt(), err
	}

	if err := ledger.Debit(assetIn, amountIn); err != nil {
		return sdkmath.ZeroInt(), err
	}

	if err := handleIn.Token.Approve(ctx, interactor.router.Address(), amountIn); err != nil {
		return sdkmath.ZeroInt(), fmt.Errorf("%w: approving router - %w", domain.ErrorSwapFailed, err)
	}

	deadline := interactor.now().Add(interactor.deadline)
	path := interactor.path(assetIn, assetOut)
	amountOut, err := interactor.router.SwapExactTokensForTokens(ctx, amountIn, minAmountOut, path, interactor.treasury, deadline)
	if errors.Is(err, domain.ErrorSlippageExceeded) {
		return sdkmath.ZeroInt(), err
	}
	if err != nil {
		return sdkmath.ZeroInt(), fmt.Errorf("%w: %w", domain.ErrorSwapFailed, err)
	}
	if amountOut.IsNil() || amountOut.LT(minAmountOut) {
		return sdkmath.ZeroInt(), fmt.Errorf("%w: received %v, minimum %v", domain.ErrorSlippageExceeded, amountOut, minAmountOut)
	}

	if err := ledger.Credit(assetOut, amountOut); err != nil {
		interactor.log.Error().Err(err).
			Str("asset", handleOut.String()).
			Str("amount", amountOut.String()).
			Msg("🔴 swap output could not be recorded, reconcile will report the surplus")
		return sdkmath.ZeroInt(), err
	}

	interactor.log.Debug().
		Str("in", handleIn.String()).
		Str("out", handleOut.String()).
		Str("amount_in", amountIn.String()).
		Str("amount_out", amountOut.String()).
		Msg("swap executed")

	return amountOut, nil
}

func (interactor *SwapInteractor) path(assetIn, assetOut common.Address) []common.Address {
	if interactor.via == nil || *interactor.via == assetIn || *interactor.via == assetOut {
		return []common.Address{assetIn, assetOut}
	}
	return []common.Address{assetIn, *interactor.via, assetOut}
}

func requirePositive(amount sdkmath.Int) error {
	if amount.IsNil() || !amount.IsPositive() {
		return fmt.Errorf("%w: %v", domain.ErrorInvalidAmount, amount)
	}
	return nil
}
