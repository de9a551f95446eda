package cmd

import (
	"context"
	"fmt"
	"time"

	"treasury/domain/config"
	"treasury/infrastructure/dbhandler"
	"treasury/infrastructure/evm"
	"treasury/infrastructure/logger"
	"treasury/infrastructure/memstore"
	"treasury/interface/repository"
	"treasury/interface/venue"
	"treasury/usecase"
)

var ErrorMemoryStoreOneShot = fmt.Errorf("the memory store only lives as long as the 'start' process, use 'postgres' for other commands")

// checkStore allows the memory store only for a long running process.
func checkStore(memory bool, longRunning bool) error {
	if memory && !longRunning {
		return ErrorMemoryStoreOneShot
	}
	return nil
}

func defaultDependencyInject(ctx context.Context, longRunning bool) error {
	var err error

	if err := checkStore(config.IsMemoryStore(), longRunning); err != nil {
		return err
	}

	evmClient, err = evm.Dial(ctx, config.GetRpcUrl(), config.GetTreasuryKey(), config.GetTxTimeout(), logger.GetForComponent("evm"))
	if err != nil {
		return err
	}

	handles := make([]usecase.AssetHandle, 0)
	for _, asset := range config.GetAssets() {
		handles = append(handles, usecase.AssetHandle{
			Asset: asset,
			Token: venue.NewERC20(evmClient, asset.Address),
		})
	}
	registry, err = usecase.NewAssetRegistry(handles)
	if err != nil {
		return err
	}

	if config.IsMemoryStore() {
		ledgerStore = memstore.New(registry.Addresses())
		logger.Logger.Warn().Msg("⚠️ Using the in-memory ledger, nothing survives this process")
	} else {
		ledgerStore, err = postgresStore(registry)
		if err != nil {
			return err
		}
	}

	treasury := config.GetTreasuryAddress()
	router := venue.NewUniswapV2Router(evmClient, config.GetRouterAddress())
	pool := venue.NewAaveV3Pool(evmClient, config.GetPoolAddress())

	swapInteractor := usecase.NewSwapInteractor(registry, router, treasury, config.GetSwapDeadline(), config.GetSwapVia(), logger.GetForComponent("swap"))
	yieldInteractor := usecase.NewYieldInteractor(registry, pool, treasury, logger.GetForComponent("yield"))

	treasuryInteractor = usecase.NewTreasuryInteractor(registry,
		usecase.NewAccessControl(config.GetOwnerAddress()),
		ledgerStore,
		swapInteractor,
		yieldInteractor,
		treasury,
		logger.GetForComponent("treasury"))
	reconcileInteractor = usecase.NewReconcileInteractor(registry, ledgerStore, treasury, logger.GetForComponent("reconcile"))

	return nil
}

func postgresStore(registry *usecase.AssetRegistry) (*repository.LedgerRepository, error) {
	var err error
	dbHandler, err = dbhandler.Open(config.GetDbUri())
	if err != nil {
		return nil, fmt.Errorf("unable to connect to database - %w", err)
	}
	dbHandler.DB.SetMaxOpenConns(20)
	dbHandler.DB.SetMaxIdleConns(5)
	dbHandler.DB.SetConnMaxIdleTime(1 * time.Minute)
	dbHandler.DB.SetConnMaxLifetime(4 * time.Hour)

	ledgerRepository := repository.NewLedgerRepository(dbHandler)
	if err := ledgerRepository.EnsureSchema(); err != nil {
		return nil, fmt.Errorf("unable to create ledger tables - %w", err)
	}
	if err := ledgerRepository.Seed(registry.Addresses()); err != nil {
		return nil, fmt.Errorf("unable to seed ledger - %w", err)
	}
	return ledgerRepository, nil
}

func closeDependencies() {
	if evmClient != nil {
		evmClient.Close()
	}
	if dbHandler != nil {
		dbHandler.Close()
	}
}

var dbHandler *dbhandler.DBHandler
var evmClient *evm.Client
var registry *usecase.AssetRegistry
var ledgerStore usecase.LedgerStore
var treasuryInteractor *usecase.TreasuryInteractor
var reconcileInteractor *usecase.ReconcileInteractor
