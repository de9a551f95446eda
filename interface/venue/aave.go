package venue

import (
	"context"

	sdkmath "cosmossdk.io/math"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
)

const aaveV3PoolDefinition = `[
	{"type":"function","name":"supply","stateMutability":"nonpayable",
	 "inputs":[{"name":"asset","type":"address"},{"name":"amount","type":"uint256"},
	           {"name":"onBehalfOf","type":"address"},{"name":"referralCode","type":"uint16"}],
	 "outputs":[]},
	{"type":"function","name":"withdraw","stateMutability":"nonpayable",
	 "inputs":[{"name":"asset","type":"address"},{"name":"amount","type":"uint256"},{"name":"to","type":"address"}],
	 "outputs":[{"name":"","type":"uint256"}]}
]`

var aaveV3PoolABI = mustParseABI(aaveV3PoolDefinition)

// AaveV3Pool is the lending pool. Withdraw reports what the recipient's balance
// gained, which includes any interest paid out with the principal.
type AaveV3Pool struct {
	chain    Chain
	address  common.Address
	contract *bind.BoundContract
}

func NewAaveV3Pool(chain Chain, address common.Address) *AaveV3Pool {
	return &AaveV3Pool{
		chain:    chain,
		address:  address,
		contract: chain.Bind(address, aaveV3PoolABI),
	}
}

func (pool *AaveV3Pool) Address() common.Address {
	return pool.address
}

func (pool *AaveV3Pool) Supply(ctx context.Context, asset common.Address, amount sdkmath.Int, onBehalfOf common.Address) error {
	_, err := pool.chain.Send(ctx, pool.contract, "supply", asset, amount.BigInt(), onBehalfOf, uint16(0))
	return err
}

func (pool *AaveV3Pool) Withdraw(ctx context.Context, asset common.Address, amount sdkmath.Int, to common.Address) (sdkmath.Int, error) {
	token := NewERC20(pool.chain, asset)
	return received(ctx, token, to, func() error {
		_, err := pool.chain.Send(ctx, pool.contract, "withdraw", asset, amount.BigInt(), to)
		return err
	})
}
