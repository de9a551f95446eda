package usecase

import (
	"context"
	"fmt"

	sdkmath "cosmossdk.io/math"
	"github.com/ethereum/go-ethereum/common"
	"github.com/rs/zerolog"

	"treasury/domain"
)

// YieldInteractor moves principal between custody and the lending pool.
type YieldInteractor struct {
	registry *AssetRegistry
	pool     LendingPool
	treasury common.Address
	log      zerolog.Logger
}

// DivestResult is what the pool paid back for a divest request.
type DivestResult struct {
	Returned  sdkmath.Int
	Principal sdkmath.Int
	Yield     sdkmath.Int
	Status    domain.ReceiptStatus
}

func NewYieldInteractor(registry *AssetRegistry,
	pool LendingPool,
	treasury common.Address,
	log zerolog.Logger) *YieldInteractor {
	interactor := &YieldInteractor{
		registry: registry,
		pool:     pool,
		treasury: treasury,
		log:      log,
	}
	return interactor
}

// Invest supplies amount of asset to the pool and marks it as deployed.
func (interactor *YieldInteractor) Invest(ctx context.Context, ledger *domain.Ledger, asset common.Address, amount sdkmath.Int) error {
	if err := requirePositive(amount); err != nil {
		return err
	}
	handle, err := interactor.registry.Resolve(asset)
	if err != nil {
		return err
	}

	// Discarded together with the operation if the pool refuses the supply.
	if err := ledger.MoveToDeployed(asset, amount); err != nil {
		return err
	}

	if err := handle.Token.Approve(ctx, interactor.pool.Address(), amount); err != nil {
		return fmt.Errorf("%w: approving pool - %w", domain.ErrorInvestFailed, err)
	}
	if err := interactor.pool.Supply(ctx, asset, amount, interactor.treasury); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrorInvestFailed, err)
	}

	interactor.log.Debug().Str("asset", handle.String()).Str("amount", amount.String()).Msg("supplied to pool")
	return nil
}

// Divest withdraws amount of principal from the pool. Anything paid on top of the
// principal is realized as yield. A short payment is accepted and reported as
// a partial divest; a zero payment fails.
func (interactor *YieldInteractor) Divest(ctx context.Context, ledger *domain.Ledger, asset common.Address, amount sdkmath.Int) (*DivestResult, error) {
	if err := requirePositive(amount); err != nil {
		return nil, err
	}
	handle, err := interactor.registry.Resolve(asset)
	if err != nil {
		return nil, err
	}

	entry, err := ledger.Entry(asset)
	if err != nil {
		return nil, err
	}
	if amount.GT(entry.Deployed) {
		return nil, fmt.Errorf("%w: deployed %v, requested %v", domain.ErrorInsufficientBalance, entry.Deployed, amount)
	}

	returned, err := interactor.pool.Withdraw(ctx, asset, amount, interactor.treasury)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrorDivestFailed, err)
	}
	if returned.IsNil() || !returned.IsPositive() {
		return nil, fmt.Errorf("%w: pool returned nothing", domain.ErrorDivestFailed)
	}

	result := &DivestResult{Returned: returned, Yield: sdkmath.ZeroInt()}
	if returned.GTE(amount) {
		result.Principal = amount
		result.Yield = returned.Sub(amount)
		result.Status = domain.DivestComplete
	} else {
		result.Principal = returned
		result.Status = domain.DivestPartial
	}

	if err := ledger.MoveToCustodied(asset, result.Principal); err != nil {
		return nil, err
	}
	if result.Yield.IsPositive() {
		if err := ledger.RealizeYield(asset, result.Yield); err != nil {
			return nil, err
		}
	}

	event := interactor.log.Debug()
	if result.Status == domain.DivestPartial {
		event = interactor.log.Warn()
	}
	event.Str("asset", handle.String()).
		Str("requested", amount.String()).
		Str("returned", returned.String()).
		Str("status", string(result.Status)).
		Msg("withdrawn from pool")

	return result, nil
}
