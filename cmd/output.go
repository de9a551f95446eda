package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	sdkmath "cosmossdk.io/math"
	"github.com/ethereum/go-ethereum/common"
	"gopkg.in/yaml.v3"

	"treasury/domain"
	"treasury/domain/util"
	"treasury/usecase"
)

var ErrorInvalidOutput = fmt.Errorf("output must be one of 'text', 'json' or 'yaml'")

type entryView struct {
	Asset     string `json:"asset" yaml:"asset"`
	Address   string `json:"address" yaml:"address"`
	Custodied string `json:"custodied" yaml:"custodied"`
	Deployed  string `json:"deployed" yaml:"deployed"`
	Realized  string `json:"realized_yield" yaml:"realized_yield"`
}

type receiptView struct {
	ID        string   `json:"id" yaml:"id"`
	Kind      string   `json:"kind" yaml:"kind"`
	Caller    string   `json:"caller" yaml:"caller"`
	AssetIn   string   `json:"asset_in" yaml:"asset_in"`
	AssetOut  string   `json:"asset_out,omitempty" yaml:"asset_out,omitempty"`
	Requested string   `json:"requested" yaml:"requested"`
	Actual    string   `json:"actual" yaml:"actual"`
	Yield     string   `json:"yield,omitempty" yaml:"yield,omitempty"`
	Status    string   `json:"status,omitempty" yaml:"status,omitempty"`
	TxHashes  []string `json:"tx_hashes,omitempty" yaml:"tx_hashes,omitempty"`
	CreatedAt string   `json:"created_at" yaml:"created_at"`
}

type driftView struct {
	Asset     string `json:"asset" yaml:"asset"`
	Custodied string `json:"custodied" yaml:"custodied"`
	Deployed  string `json:"deployed" yaml:"deployed"`
	OnChain   string `json:"on_chain" yaml:"on_chain"`
	Delta     string `json:"delta" yaml:"delta"`
	Balanced  bool   `json:"balanced" yaml:"balanced"`
}

// render writes value as json or yaml, or calls text for the human readable form.
func render(out io.Writer, format string, value interface{}, text func(io.Writer)) error {
	switch format {
	case "json":
		encoder := json.NewEncoder(out)
		encoder.SetIndent("", "  ")
		return encoder.Encode(value)
	case "yaml":
		encoder := yaml.NewEncoder(out)
		encoder.SetIndent(2)
		if err := encoder.Encode(value); err != nil {
			return err
		}
		return encoder.Close()
	case "text", "":
		text(out)
		return nil
	default:
		return ErrorInvalidOutput
	}
}

// assetOf describes an address by its registered asset, falling back to the hex form.
func assetOf(registry *usecase.AssetRegistry, address common.Address) domain.Asset {
	if registry != nil {
		if handle, err := registry.Resolve(address); err == nil {
			return handle.Asset
		}
	}
	return domain.Asset{Symbol: address.Hex()}
}

func entryViews(registry *usecase.AssetRegistry, entries []domain.LedgerEntry) []entryView {
	result := make([]entryView, 0, len(entries))
	for _, entry := range entries {
		asset := assetOf(registry, entry.Asset)
		result = append(result, entryView{
			Asset:     asset.String(),
			Address:   entry.Asset.Hex(),
			Custodied: util.FormatAmount(entry.Custodied, asset.Decimals),
			Deployed:  util.FormatAmount(entry.Deployed, asset.Decimals),
			Realized:  util.FormatAmount(entry.Realized, asset.Decimals),
		})
	}
	return result
}

func receiptViewOf(registry *usecase.AssetRegistry, receipt domain.Receipt) receiptView {
	assetIn := assetOf(registry, receipt.AssetIn)
	amountAsset := assetIn

	view := receiptView{
		ID:        receipt.ID.String(),
		Kind:      string(receipt.Kind),
		Caller:    receipt.Caller.Hex(),
		AssetIn:   assetIn.String(),
		Requested: util.FormatAmount(receipt.Requested, assetIn.Decimals),
		Status:    string(receipt.Status),
		TxHashes:  receipt.TxHashes,
		CreatedAt: receipt.CreatedAt.Format(time.RFC3339),
	}
	if receipt.AssetOut != (common.Address{}) {
		amountAsset = assetOf(registry, receipt.AssetOut)
		view.AssetOut = amountAsset.String()
	}
	view.Actual = util.FormatAmount(receipt.Actual, amountAsset.Decimals)
	if !receipt.Yield.IsNil() && receipt.Yield.IsPositive() {
		view.Yield = util.FormatAmount(receipt.Yield, assetIn.Decimals)
	}
	return view
}

func driftViews(drifts []domain.Drift) []driftView {
	result := make([]driftView, 0, len(drifts))
	for _, item := range drifts {
		result = append(result, driftView{
			Asset:     item.Asset.String(),
			Custodied: util.FormatAmount(item.Custodied, item.Asset.Decimals),
			Deployed:  util.FormatAmount(item.Deployed, item.Asset.Decimals),
			OnChain:   util.FormatAmount(item.OnChain, item.Asset.Decimals),
			Delta:     util.FormatAmount(item.Delta, item.Asset.Decimals),
			Balanced:  item.Balanced(),
		})
	}
	return result
}

func printReceipt(out io.Writer, view receiptView) {
	fmt.Fprintf(out, "✅ %v committed [%v]\n", view.Kind, view.ID)
	if view.AssetOut != "" {
		fmt.Fprintf(out, "   %v %v → %v %v\n", view.Requested, view.AssetIn, view.Actual, view.AssetOut)
	} else {
		fmt.Fprintf(out, "   requested %v %v, actual %v %v\n", view.Requested, view.AssetIn, view.Actual, view.AssetIn)
	}
	if view.Yield != "" {
		fmt.Fprintf(out, "   yield %v %v\n", view.Yield, view.AssetIn)
	}
	switch view.Status {
	case string(domain.DivestPartial):
		fmt.Fprintf(out, "   ⚠️ the pool paid back less than requested\n")
	case string(domain.ReceiptPending):
		fmt.Fprintf(out, "   ⏳ not mined yet, run reconcile before retrying\n")
	}
	for _, hash := range view.TxHashes {
		fmt.Fprintf(out, "   tx %v\n", hash)
	}
}

func printEntries(out io.Writer, views []entryView) {
	fmt.Fprintf(out, "------------- TREASURY LEDGER -----------------\n")
	for i, view := range views {
		fmt.Fprintf(out, "#%03d - %-6v custodied %v, deployed %v, realized yield %v\n",
			i+1, view.Asset, view.Custodied, view.Deployed, view.Realized)
	}
}

func printReceipts(out io.Writer, views []receiptView) {
	fmt.Fprintf(out, "------------- RECEIPTS -----------------\n")
	for _, view := range views {
		line := fmt.Sprintf("%v %-8v %v %v", view.CreatedAt, view.Kind, view.Actual, view.AssetIn)
		if view.AssetOut != "" {
			line = fmt.Sprintf("%v %-8v %v %v → %v %v", view.CreatedAt, view.Kind, view.Requested, view.AssetIn, view.Actual, view.AssetOut)
		}
		if view.Status != "" {
			line += " (" + view.Status + ")"
		}
		fmt.Fprintln(out, line)
	}
}

func printDrifts(out io.Writer, views []driftView) {
	fmt.Fprintf(out, "------------- RECONCILIATION -----------------\n")
	for _, view := range views {
		mark := "✅"
		if !view.Balanced {
			mark = "⚠️"
		}
		fmt.Fprintf(out, "%v %-6v ledger %v, on chain %v, drift %v, deployed %v\n",
			mark, view.Asset, view.Custodied, view.OnChain, view.Delta, view.Deployed)
	}
}

func parseCaller(text string, owner common.Address) (common.Address, error) {
	if text == "" {
		return owner, nil
	}
	if !common.IsHexAddress(text) {
		return common.Address{}, fmt.Errorf("invalid caller address %q", text)
	}
	return common.HexToAddress(text), nil
}

func parseAssetAmount(registry *usecase.AssetRegistry, assetText string, amountText string) (domain.Asset, sdkmath.Int, error) {
	handle, err := registry.Lookup(assetText)
	if err != nil {
		return domain.Asset{}, sdkmath.Int{}, err
	}
	amount, err := util.ParseAmount(amountText, handle.Decimals)
	if err != nil {
		return domain.Asset{}, sdkmath.Int{}, err
	}
	return handle.Asset, amount, nil
}
