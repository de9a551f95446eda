package cmd

import (
	"bytes"
	"encoding/json"
	"io"
	"testing"

	sdkmath "cosmossdk.io/math"
	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"treasury/domain"
	"treasury/usecase"
)

var (
	usdc  = common.HexToAddress("0x52D800ca262522580CeBAD275395ca6e7598C014")
	dai   = common.HexToAddress("0xc8c0Cf9436F4862a8F60Ce680Ca5a9f0f99b5ded")
	owner = common.HexToAddress("0x1fdE0eCc619726f4cD597887C9F3b4c8740e19e2")
)

type nopToken struct {
	usecase.Token
}

func testRegistry(t *testing.T) *usecase.AssetRegistry {
	t.Helper()
	registry, err := usecase.NewAssetRegistry([]usecase.AssetHandle{
		{Asset: domain.Asset{Symbol: "USDC", Address: usdc, Decimals: 6}, Token: nopToken{}},
		{Asset: domain.Asset{Symbol: "DAI", Address: dai, Decimals: 18}, Token: nopToken{}},
	})
	require.NoError(t, err)
	return registry
}

func TestRenderFormats(t *testing.T) {
	views := []entryView{{Asset: "USDC", Custodied: "52", Deployed: "0", Realized: "2"}}

	var out bytes.Buffer
	require.NoError(t, render(&out, "json", views, nil))
	var fromJson []entryView
	require.NoError(t, json.Unmarshal(out.Bytes(), &fromJson))
	assert.Equal(t, views, fromJson)

	out.Reset()
	require.NoError(t, render(&out, "yaml", views, nil))
	var fromYaml []entryView
	require.NoError(t, yaml.Unmarshal(out.Bytes(), &fromYaml))
	assert.Equal(t, views, fromYaml)

	out.Reset()
	require.NoError(t, render(&out, "text", views, func(w io.Writer) { printEntries(w, views) }))
	assert.Contains(t, out.String(), "custodied 52")

	assert.ErrorIs(t, render(&out, "xml", views, nil), ErrorInvalidOutput)
}

func TestReceiptViewOfSwap(t *testing.T) {
	receipt := domain.NewReceipt(domain.OperationSwap, owner, usdc, sdkmath.NewInt(1_500_000))
	receipt.AssetOut = dai
	receipt.Actual = sdkmath.NewIntWithDecimal(149, 16)

	view := receiptViewOf(testRegistry(t), *receipt)
	assert.Equal(t, "USDC", view.AssetIn)
	assert.Equal(t, "DAI", view.AssetOut)
	assert.Equal(t, "1.5", view.Requested)
	assert.Equal(t, "1.49", view.Actual)
	assert.Empty(t, view.Yield)
}

func TestReceiptViewOfDivest(t *testing.T) {
	receipt := domain.NewReceipt(domain.OperationDivest, owner, usdc, sdkmath.NewInt(30_000_000))
	receipt.Actual = sdkmath.NewInt(32_000_000)
	receipt.Yield = sdkmath.NewInt(2_000_000)
	receipt.Status = domain.DivestComplete

	view := receiptViewOf(testRegistry(t), *receipt)
	assert.Equal(t, "32", view.Actual)
	assert.Equal(t, "2", view.Yield)
	assert.Equal(t, "complete", view.Status)

	var out bytes.Buffer
	printReceipt(&out, view)
	assert.Contains(t, out.String(), "yield 2 USDC")
}

func TestParseCaller(t *testing.T) {
	caller, err := parseCaller("", owner)
	require.NoError(t, err)
	assert.Equal(t, owner, caller)

	caller, err = parseCaller(dai.Hex(), owner)
	require.NoError(t, err)
	assert.Equal(t, dai, caller)

	_, err = parseCaller("alice", owner)
	assert.Error(t, err)
}

func TestParseAssetAmount(t *testing.T) {
	registry := testRegistry(t)

	asset, amount, err := parseAssetAmount(registry, "usdc", "12.5")
	require.NoError(t, err)
	assert.Equal(t, usdc, asset.Address)
	assert.Equal(t, "12500000", amount.String())

	_, _, err = parseAssetAmount(registry, "WETH", "1")
	assert.ErrorIs(t, err, domain.ErrorUnknownAsset)
}
