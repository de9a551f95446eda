package usecase

import (
	"context"
	"fmt"

	sdkmath "cosmossdk.io/math"
	"github.com/ethereum/go-ethereum/common"
	"github.com/rs/zerolog"

	"treasury/domain"
	"treasury/interface/exporter"
)

// ReconcileInteractor compares the custodied balances of the ledger against what the
// treasury account actually holds on chain.
type ReconcileInteractor struct {
	registry *AssetRegistry
	store    LedgerStore
	treasury common.Address
	log      zerolog.Logger
}

func NewReconcileInteractor(registry *AssetRegistry,
	store LedgerStore,
	treasury common.Address,
	log zerolog.Logger) *ReconcileInteractor {
	interactor := &ReconcileInteractor{
		registry: registry,
		store:    store,
		treasury: treasury,
		log:      log,
	}
	return interactor
}

func (interactor *ReconcileInteractor) Reconcile(ctx context.Context) ([]domain.Drift, error) {
	ledger, err := interactor.store.Snapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load ledger - %w", err)
	}

	result := make([]domain.Drift, 0, len(interactor.registry.Assets()))
	for _, asset := range interactor.registry.Assets() {
		handle, err := interactor.registry.Resolve(asset.Address)
		if err != nil {
			return nil, err
		}
		entry, err := ledger.Entry(asset.Address)
		if err != nil {
			return nil, err
		}

		onChain, err := handle.Token.BalanceOf(ctx, interactor.treasury)
		if err != nil {
			return nil, fmt.Errorf("failed to read %v balance - %w", asset, err)
		}
		onChain = zeroIfNil(onChain)

		item := domain.Drift{
			Asset:     asset,
			Custodied: entry.Custodied,
			Deployed:  entry.Deployed,
			OnChain:   onChain,
			Delta:     onChain.Sub(entry.Custodied),
		}
		exporter.ObserveDrift(item)

		if !item.Balanced() {
			interactor.log.Warn().
				Str("asset", asset.String()).
				Str("custodied", item.Custodied.String()).
				Str("on_chain", item.OnChain.String()).
				Str("delta", item.Delta.String()).
				Msg("⚠️ ledger drift detected")
		}
		result = append(result, item)
	}

	return result, nil
}

func zeroIfNil(value sdkmath.Int) sdkmath.Int {
	if value.IsNil() {
		return sdkmath.ZeroInt()
	}
	return value
}
