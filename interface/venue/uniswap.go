package venue

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	sdkmath "cosmossdk.io/math"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"

	"treasury/domain"
)

const uniswapV2RouterDefinition = `[
	{"type":"function","name":"getAmountsOut","stateMutability":"view",
	 "inputs":[{"name":"amountIn","type":"uint256"},{"name":"path","type":"address[]"}],
	 "outputs":[{"name":"amounts","type":"uint256[]"}]},
	{"type":"function","name":"swapExactTokensForTokens","stateMutability":"nonpayable",
	 "inputs":[{"name":"amountIn","type":"uint256"},{"name":"amountOutMin","type":"uint256"},
	           {"name":"path","type":"address[]"},{"name":"to","type":"address"},{"name":"deadline","type":"uint256"}],
	 "outputs":[{"name":"amounts","type":"uint256[]"}]}
]`

const revertInsufficientOutput = "INSUFFICIENT_OUTPUT_AMOUNT"

var uniswapV2RouterABI = mustParseABI(uniswapV2RouterDefinition)

// UniswapV2Router swaps through a constant-product router. The output amount is what
// the recipient's balance actually gained, fees on transfer included.
type UniswapV2Router struct {
	chain    Chain
	address  common.Address
	contract *bind.BoundContract
}

func NewUniswapV2Router(chain Chain, address common.Address) *UniswapV2Router {
	return &UniswapV2Router{
		chain:    chain,
		address:  address,
		contract: chain.Bind(address, uniswapV2RouterABI),
	}
}

func (router *UniswapV2Router) Address() common.Address {
	return router.address
}

// Quote returns the output the router would give for amountIn along path right now.
func (router *UniswapV2Router) Quote(ctx context.Context, amountIn sdkmath.Int, path []common.Address) (sdkmath.Int, error) {
	out, err := router.chain.Call(ctx, router.contract, "getAmountsOut", amountIn.BigInt(), path)
	if err != nil {
		return sdkmath.Int{}, err
	}
	return lastOfInts(out)
}

func (router *UniswapV2Router) SwapExactTokensForTokens(ctx context.Context,
	amountIn sdkmath.Int,
	amountOutMin sdkmath.Int,
	path []common.Address,
	recipient common.Address,
	deadline time.Time) (sdkmath.Int, error) {

	if len(path) < 2 {
		return sdkmath.Int{}, fmt.Errorf("swap path needs at least two assets")
	}

	// Reject before sending when the current quote is already below the floor.
	quoted, err := router.Quote(ctx, amountIn, path)
	if err != nil {
		return sdkmath.Int{}, err
	}
	if quoted.LT(amountOutMin) {
		return sdkmath.Int{}, fmt.Errorf("%w: quoted %v, minimum %v", domain.ErrorSlippageExceeded, quoted, amountOutMin)
	}

	output := NewERC20(router.chain, path[len(path)-1])
	return received(ctx, output, recipient, func() error {
		_, err := router.chain.Send(ctx, router.contract, "swapExactTokensForTokens",
			amountIn.BigInt(), amountOutMin.BigInt(), path, recipient, big.NewInt(deadline.Unix()))
		return router.slippageOrError(ctx, amountIn, amountOutMin, path, err)
	})
}

// slippageOrError reports a revert caused by the price moving below the floor after
// the quote as ErrorSlippageExceeded. The reason is in the error when the revert
// happens in gas estimation; a revert while mining carries no reason, so the price
// is quoted again.
func (router *UniswapV2Router) slippageOrError(ctx context.Context,
	amountIn sdkmath.Int,
	amountOutMin sdkmath.Int,
	path []common.Address,
	err error) error {

	if err == nil || errors.Is(err, domain.ErrorTxPending) {
		return err
	}
	if strings.Contains(err.Error(), revertInsufficientOutput) {
		return fmt.Errorf("%w: %v", domain.ErrorSlippageExceeded, err)
	}
	if errors.Is(err, domain.ErrorTxReverted) {
		quoted, quoteErr := router.Quote(ctx, amountIn, path)
		if quoteErr == nil && quoted.LT(amountOutMin) {
			return fmt.Errorf("%w: quoted %v after revert, minimum %v - %v", domain.ErrorSlippageExceeded, quoted, amountOutMin, err)
		}
	}
	return err
}
