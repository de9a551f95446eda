package usecase

import (
	"context"
	"fmt"
	"sync"
	"time"

	sdkmath "cosmossdk.io/math"
	"github.com/ethereum/go-ethereum/common"

	"treasury/domain"
)

var (
	usdc     = common.HexToAddress("0x52D800ca262522580CeBAD275395ca6e7598C014")
	dai      = common.HexToAddress("0xc8c0Cf9436F4862a8F60Ce680Ca5a9f0f99b5ded")
	weth     = common.HexToAddress("0x7ceB23fD6bC0adD59E62ac25578270cFf1b9f619")
	owner    = common.HexToAddress("0x1fdE0eCc619726f4cD597887C9F3b4c8740e19e2")
	stranger = common.HexToAddress("0x0000000000000000000000000000000000000bad")
	vault    = common.HexToAddress("0x00000000000000000000000000000000000ca5e0")
	routerAt = common.HexToAddress("0x8954AfA98594b838bda56FE4C12a09D7739D179b")
	poolAt   = common.HexToAddress("0xcC6114B983E4Ed2737E9BD3961c9924e6216c704")
)

// fakeToken is an ERC-20 balance sheet. Transfer moves funds out of the treasury
// account, as the treasury signer is the sender of every transfer.
type fakeToken struct {
	mu       sync.Mutex
	treasury common.Address
	balances map[common.Address]sdkmath.Int
	approved map[common.Address]sdkmath.Int

	failTransfer     bool
	failTransferFrom bool
	failApprove      bool
	hash             string

	// pendingTransfer submits transfers without mining them: the call fails with
	// ErrorTxPending and the funds move only when mine runs.
	pendingTransfer bool
	unmined         []func()
}

func newFakeToken(treasury common.Address) *fakeToken {
	return &fakeToken{
		treasury: treasury,
		balances: make(map[common.Address]sdkmath.Int),
		approved: make(map[common.Address]sdkmath.Int),
	}
}

func (m *fakeToken) mint(holder common.Address, amount int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.balances[holder] = m.balanceLocked(holder).Add(sdkmath.NewInt(amount))
}

func (m *fakeToken) balance(holder common.Address) sdkmath.Int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.balanceLocked(holder)
}

func (m *fakeToken) balanceLocked(holder common.Address) sdkmath.Int {
	if value, ok := m.balances[holder]; ok {
		return value
	}
	return sdkmath.ZeroInt()
}

func (m *fakeToken) move(from, to common.Address, amount sdkmath.Int) error {
	if m.balanceLocked(from).LT(amount) {
		return fmt.Errorf("transfer amount exceeds balance")
	}
	m.balances[from] = m.balanceLocked(from).Sub(amount)
	m.balances[to] = m.balanceLocked(to).Add(amount)
	return nil
}

func (m *fakeToken) mine() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, apply := range m.unmined {
		apply()
	}
	m.unmined = nil
}

func (m *fakeToken) BalanceOf(ctx context.Context, holder common.Address) (sdkmath.Int, error) {
	return m.balance(holder), nil
}

func (m *fakeToken) Transfer(ctx context.Context, to common.Address, amount sdkmath.Int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failTransfer {
		return fmt.Errorf("transfer returned false")
	}
	if m.pendingTransfer {
		domain.RecordTx(ctx, m.hash)
		m.unmined = append(m.unmined, func() { _ = m.move(m.treasury, to, amount) })
		return fmt.Errorf("%w: transfer %v - context deadline exceeded", domain.ErrorTxPending, m.hash)
	}
	if err := m.move(m.treasury, to, amount); err != nil {
		return err
	}
	if m.hash != "" {
		domain.RecordTx(ctx, m.hash)
	}
	return nil
}

func (m *fakeToken) TransferFrom(ctx context.Context, from common.Address, to common.Address, amount sdkmath.Int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failTransferFrom {
		return fmt.Errorf("transferFrom returned false")
	}
	if err := m.move(from, to, amount); err != nil {
		return err
	}
	if m.hash != "" {
		domain.RecordTx(ctx, m.hash)
	}
	return nil
}

func (m *fakeToken) Approve(ctx context.Context, spender common.Address, amount sdkmath.Int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failApprove {
		return fmt.Errorf("approve returned false")
	}
	m.approved[spender] = amount
	return nil
}

// fakeRouter swaps at a fixed rate of numerator/denominator units of output per unit of
// input. With enforceMin it reverts like a real router when the output is below the
// floor; without it the swap goes through and the output is reported as is.
type fakeRouter struct {
	mu          sync.Mutex
	tokens      map[common.Address]*fakeToken
	numerator   int64
	denominator int64
	enforceMin  bool
	fail        bool

	lastPath     []common.Address
	lastDeadline time.Time
}

func (m *fakeRouter) Address() common.Address {
	return routerAt
}

func (m *fakeRouter) SwapExactTokensForTokens(ctx context.Context, amountIn sdkmath.Int, amountOutMin sdkmath.Int, path []common.Address, recipient common.Address, deadline time.Time) (sdkmath.Int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastPath = path
	m.lastDeadline = deadline

	if m.fail {
		return sdkmath.Int{}, fmt.Errorf("execution reverted")
	}
	amountOut := amountIn.MulRaw(m.numerator).QuoRaw(m.denominator)
	if m.enforceMin && amountOut.LT(amountOutMin) {
		return sdkmath.Int{}, fmt.Errorf("%w: INSUFFICIENT_OUTPUT_AMOUNT", domain.ErrorSlippageExceeded)
	}

	in := m.tokens[path[0]]
	out := m.tokens[path[len(path)-1]]
	in.mu.Lock()
	err := in.move(recipient, routerAt, amountIn)
	in.mu.Unlock()
	if err != nil {
		return sdkmath.Int{}, err
	}
	out.mu.Lock()
	err = out.move(routerAt, recipient, amountOut)
	out.mu.Unlock()
	if err != nil {
		return sdkmath.Int{}, err
	}
	return amountOut, nil
}

// fakePool pays back what payout returns for a withdraw request.
type fakePool struct {
	mu         sync.Mutex
	tokens     map[common.Address]*fakeToken
	failSupply bool
	failWith   bool
	payout     func(requested sdkmath.Int) sdkmath.Int
	supplied   map[common.Address]sdkmath.Int
}

func (m *fakePool) Address() common.Address {
	return poolAt
}

func (m *fakePool) Supply(ctx context.Context, asset common.Address, amount sdkmath.Int, onBehalfOf common.Address) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failSupply {
		return fmt.Errorf("supply cap exceeded")
	}
	token := m.tokens[asset]
	token.mu.Lock()
	err := token.move(onBehalfOf, poolAt, amount)
	token.mu.Unlock()
	if err != nil {
		return err
	}
	if m.supplied == nil {
		m.supplied = make(map[common.Address]sdkmath.Int)
	}
	if current, ok := m.supplied[asset]; ok {
		m.supplied[asset] = current.Add(amount)
	} else {
		m.supplied[asset] = amount
	}
	return nil
}

func (m *fakePool) Withdraw(ctx context.Context, asset common.Address, amount sdkmath.Int, to common.Address) (sdkmath.Int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWith {
		return sdkmath.Int{}, fmt.Errorf("withdraw reverted")
	}
	paid := amount
	if m.payout != nil {
		paid = m.payout(amount)
	}
	if paid.IsZero() {
		return paid, nil
	}
	token := m.tokens[asset]
	token.mu.Lock()
	err := token.move(poolAt, to, paid)
	token.mu.Unlock()
	if err != nil {
		return sdkmath.Int{}, err
	}
	return paid, nil
}
