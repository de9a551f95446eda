package venue

import (
	"context"
	"fmt"
	"math/big"
	"strings"

	sdkmath "cosmossdk.io/math"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

// Chain is the signing EVM client the adapters submit through.
type Chain interface {
	Bind(address common.Address, parsed abi.ABI) *bind.BoundContract
	Call(ctx context.Context, contract *bind.BoundContract, method string, params ...interface{}) ([]interface{}, error)
	Send(ctx context.Context, contract *bind.BoundContract, method string, params ...interface{}) (*types.Receipt, error)
}

func mustParseABI(definition string) abi.ABI {
	parsed, err := abi.JSON(strings.NewReader(definition))
	if err != nil {
		panic(err)
	}
	return parsed
}

func toInt(out []interface{}) (sdkmath.Int, error) {
	if len(out) == 0 {
		return sdkmath.Int{}, fmt.Errorf("empty call result")
	}
	value, ok := out[0].(*big.Int)
	if !ok || value == nil {
		return sdkmath.Int{}, fmt.Errorf("unexpected call result %T", out[0])
	}
	return sdkmath.NewIntFromBigInt(value), nil
}

func lastOfInts(out []interface{}) (sdkmath.Int, error) {
	if len(out) == 0 {
		return sdkmath.Int{}, fmt.Errorf("empty call result")
	}
	values, ok := out[0].([]*big.Int)
	if !ok || len(values) == 0 || values[len(values)-1] == nil {
		return sdkmath.Int{}, fmt.Errorf("unexpected call result %T", out[0])
	}
	return sdkmath.NewIntFromBigInt(values[len(values)-1]), nil
}

// received reads how much holder gained of token while fn ran.
func received(ctx context.Context, token *ERC20, holder common.Address, fn func() error) (sdkmath.Int, error) {
	before, err := token.BalanceOf(ctx, holder)
	if err != nil {
		return sdkmath.Int{}, err
	}
	if err := fn(); err != nil {
		return sdkmath.Int{}, err
	}
	after, err := token.BalanceOf(ctx, holder)
	if err != nil {
		return sdkmath.Int{}, err
	}
	if after.LT(before) {
		return sdkmath.ZeroInt(), nil
	}
	return after.Sub(before), nil
}
