package usecase

import (
	"context"
	"testing"
	"time"

	sdkmath "cosmossdk.io/math"
	"github.com/ethereum/go-ethereum/common"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"treasury/domain"
)

func TestSwapPathAndDeadline(t *testing.T) {
	f := newFixture(t)
	via := weth
	swap := NewSwapInteractor(f.registry, f.router, vault, 5*time.Minute, &via, zerolog.Nop())
	fixed := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	swap.now = func() time.Time { return fixed }

	ledger := domain.NewLedger(f.registry.Addresses())
	require.NoError(t, ledger.Credit(usdc, sdkmath.NewInt(100)))
	f.tokens[usdc].mint(vault, 100)

	out, err := swap.Swap(context.Background(), ledger, usdc, dai, sdkmath.NewInt(100), sdkmath.NewInt(100))
	require.NoError(t, err)
	assertAmount(t, 100, out)
	assert.Equal(t, []common.Address{usdc, weth, dai}, f.router.lastPath)
	assert.Equal(t, fixed.Add(5*time.Minute), f.router.lastDeadline)

	entry, err := ledger.Entry(dai)
	require.NoError(t, err)
	assertAmount(t, 100, entry.Custodied)
}

func TestSwapPathSkipsViaEndpoint(t *testing.T) {
	via := weth
	swap := &SwapInteractor{via: &via}

	assert.Equal(t, []common.Address{weth, dai}, swap.path(weth, dai))
	assert.Equal(t, []common.Address{usdc, weth}, swap.path(usdc, weth))
	assert.Equal(t, []common.Address{usdc, weth, dai}, swap.path(usdc, dai))

	direct := &SwapInteractor{}
	assert.Equal(t, []common.Address{usdc, dai}, direct.path(usdc, dai))
}

func TestSwapNegativeFloor(t *testing.T) {
	f := newFixture(t)
	swap := NewSwapInteractor(f.registry, f.router, vault, time.Minute, nil, zerolog.Nop())
	ledger := domain.NewLedger(f.registry.Addresses())

	_, err := swap.Swap(context.Background(), ledger, usdc, dai, sdkmath.NewInt(1), sdkmath.NewInt(-1))
	assert.ErrorIs(t, err, domain.ErrorInvalidAmount)
}
