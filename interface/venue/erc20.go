package venue

import (
	"context"
	"errors"
	"fmt"

	sdkmath "cosmossdk.io/math"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"

	"treasury/domain"
)

const erc20Definition = `[
	{"type":"function","name":"balanceOf","stateMutability":"view",
	 "inputs":[{"name":"account","type":"address"}],"outputs":[{"name":"","type":"uint256"}]},
	{"type":"function","name":"transfer","stateMutability":"nonpayable",
	 "inputs":[{"name":"to","type":"address"},{"name":"value","type":"uint256"}],"outputs":[{"name":"","type":"bool"}]},
	{"type":"function","name":"transferFrom","stateMutability":"nonpayable",
	 "inputs":[{"name":"from","type":"address"},{"name":"to","type":"address"},{"name":"value","type":"uint256"}],"outputs":[{"name":"","type":"bool"}]},
	{"type":"function","name":"approve","stateMutability":"nonpayable",
	 "inputs":[{"name":"spender","type":"address"},{"name":"value","type":"uint256"}],"outputs":[{"name":"","type":"bool"}]}
]`

var (
	erc20ABI = mustParseABI(erc20Definition)

	ErrorTransferRejected = fmt.Errorf("token did not move the requested amount")
)

// ERC20 is a token contract the treasury account signs for. Tokens that report a
// failed transfer by returning false instead of reverting are caught by checking the
// recipient's balance after the transfer is mined.
type ERC20 struct {
	chain    Chain
	address  common.Address
	contract *bind.BoundContract
}

func NewERC20(chain Chain, address common.Address) *ERC20 {
	return &ERC20{
		chain:    chain,
		address:  address,
		contract: chain.Bind(address, erc20ABI),
	}
}

func (token *ERC20) Address() common.Address {
	return token.address
}

func (token *ERC20) BalanceOf(ctx context.Context, holder common.Address) (sdkmath.Int, error) {
	out, err := token.chain.Call(ctx, token.contract, "balanceOf", holder)
	if err != nil {
		return sdkmath.Int{}, err
	}
	return toInt(out)
}

func (token *ERC20) Transfer(ctx context.Context, to common.Address, amount sdkmath.Int) error {
	return token.checked(ctx, to, amount, func() error {
		_, err := token.chain.Send(ctx, token.contract, "transfer", to, amount.BigInt())
		return err
	})
}

func (token *ERC20) TransferFrom(ctx context.Context, from common.Address, to common.Address, amount sdkmath.Int) error {
	return token.checked(ctx, to, amount, func() error {
		_, err := token.chain.Send(ctx, token.contract, "transferFrom", from, to, amount.BigInt())
		return err
	})
}

// Approve never reports a pending transaction: an approval that is mined later only
// leaves an allowance behind and moves no funds, so the operation can be aborted.
func (token *ERC20) Approve(ctx context.Context, spender common.Address, amount sdkmath.Int) error {
	_, err := token.chain.Send(ctx, token.contract, "approve", spender, amount.BigInt())
	if errors.Is(err, domain.ErrorTxPending) {
		return fmt.Errorf("approval not mined: %v", err)
	}
	return err
}

func (token *ERC20) checked(ctx context.Context, to common.Address, amount sdkmath.Int, send func() error) error {
	moved, err := received(ctx, token, to, send)
	if err != nil {
		return err
	}
	if moved.LT(amount) {
		return fmt.Errorf("%w: expected %v, moved %v", ErrorTransferRejected, amount, moved)
	}
	return nil
}
