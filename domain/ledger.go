package domain

import (
	"fmt"

	sdkmath "cosmossdk.io/math"
	"github.com/ethereum/go-ethereum/common"
)

// LedgerEntry is the accounting row of one asset. Deployed is tracked at principal
// cost; Realized accumulates the yield returned on top of the principal.
type LedgerEntry struct {
	Asset     common.Address `json:"asset" yaml:"asset"`
	Custodied sdkmath.Int    `json:"custodied" yaml:"custodied"`
	Deployed  sdkmath.Int    `json:"deployed" yaml:"deployed"`
	Realized  sdkmath.Int    `json:"realized" yaml:"realized"`
}

func NewLedgerEntry(asset common.Address) LedgerEntry {
	return LedgerEntry{
		Asset:     asset,
		Custodied: sdkmath.ZeroInt(),
		Deployed:  sdkmath.ZeroInt(),
		Realized:  sdkmath.ZeroInt(),
	}
}

// Total is custodied plus deployed principal.
func (entry LedgerEntry) Total() sdkmath.Int {
	return entry.Custodied.Add(entry.Deployed)
}

func (entry LedgerEntry) Equal(other LedgerEntry) bool {
	return entry.Asset == other.Asset &&
		entry.Custodied.Equal(other.Custodied) &&
		entry.Deployed.Equal(other.Deployed) &&
		entry.Realized.Equal(other.Realized)
}

// Ledger is the authoritative book of the treasury. It only does bookkeeping and
// never talks to a token, router or pool.
type Ledger struct {
	order   []common.Address
	entries map[common.Address]*LedgerEntry
}

// NewLedger creates one zero entry per asset.
func NewLedger(assets []common.Address) *Ledger {
	ledger := &Ledger{
		order:   make([]common.Address, 0, len(assets)),
		entries: make(map[common.Address]*LedgerEntry, len(assets)),
	}
	for _, asset := range assets {
		entry := NewLedgerEntry(asset)
		ledger.put(entry)
	}
	return ledger
}

// LoadLedger rebuilds a ledger from persisted entries.
func LoadLedger(entries []LedgerEntry) *Ledger {
	ledger := NewLedger(nil)
	for _, entry := range entries {
		ledger.put(entry)
	}
	return ledger
}

func (ledger *Ledger) put(entry LedgerEntry) {
	if _, exist := ledger.entries[entry.Asset]; !exist {
		ledger.order = append(ledger.order, entry.Asset)
	}
	e := entry
	ledger.entries[entry.Asset] = &e
}

func (ledger *Ledger) entry(asset common.Address) (*LedgerEntry, error) {
	entry, exist := ledger.entries[asset]
	if !exist {
		return nil, fmt.Errorf("%w: %v", ErrorUnknownAsset, asset.Hex())
	}
	return entry, nil
}

func (ledger *Ledger) Entry(asset common.Address) (LedgerEntry, error) {
	entry, err := ledger.entry(asset)
	if err != nil {
		return LedgerEntry{}, err
	}
	return *entry, nil
}

// Entries returns a copy of all entries in registration order.
func (ledger *Ledger) Entries() []LedgerEntry {
	result := make([]LedgerEntry, 0, len(ledger.order))
	for _, asset := range ledger.order {
		result = append(result, *ledger.entries[asset])
	}
	return result
}

func (ledger *Ledger) Clone() *Ledger {
	return LoadLedger(ledger.Entries())
}

// Changed returns the entries that differ from the ones in before.
func (ledger *Ledger) Changed(before *Ledger) []LedgerEntry {
	changed := make([]LedgerEntry, 0)
	for _, entry := range ledger.Entries() {
		old, err := before.Entry(entry.Asset)
		if err != nil || !old.Equal(entry) {
			changed = append(changed, entry)
		}
	}
	return changed
}

// Credit increases the custodied balance of asset.
func (ledger *Ledger) Credit(asset common.Address, amount sdkmath.Int) error {
	entry, err := ledger.entry(asset)
	if err != nil {
		return err
	}
	if err := checkAmount(amount); err != nil {
		return err
	}
	custodied, err := safeAdd(entry.Custodied, amount)
	if err != nil {
		return err
	}
	entry.Custodied = custodied
	return nil
}

// Debit decreases the custodied balance of asset.
func (ledger *Ledger) Debit(asset common.Address, amount sdkmath.Int) error {
	entry, err := ledger.entry(asset)
	if err != nil {
		return err
	}
	if err := checkAmount(amount); err != nil {
		return err
	}
	if amount.GT(entry.Custodied) {
		return fmt.Errorf("%w: custodied %v, requested %v", ErrorInsufficientBalance, entry.Custodied, amount)
	}
	entry.Custodied = entry.Custodied.Sub(amount)
	return nil
}

// MoveToDeployed moves amount of principal from the custodied to the deployed bucket.
func (ledger *Ledger) MoveToDeployed(asset common.Address, amount sdkmath.Int) error {
	entry, err := ledger.entry(asset)
	if err != nil {
		return err
	}
	if err := checkAmount(amount); err != nil {
		return err
	}
	if amount.GT(entry.Custodied) {
		return fmt.Errorf("%w: custodied %v, requested %v", ErrorInsufficientBalance, entry.Custodied, amount)
	}
	deployed, err := safeAdd(entry.Deployed, amount)
	if err != nil {
		return err
	}
	entry.Custodied = entry.Custodied.Sub(amount)
	entry.Deployed = deployed
	return nil
}

// MoveToCustodied moves amount of principal from the deployed back to the custodied bucket.
func (ledger *Ledger) MoveToCustodied(asset common.Address, amount sdkmath.Int) error {
	entry, err := ledger.entry(asset)
	if err != nil {
		return err
	}
	if err := checkAmount(amount); err != nil {
		return err
	}
	if amount.GT(entry.Deployed) {
		return fmt.Errorf("%w: deployed %v, requested %v", ErrorInsufficientBalance, entry.Deployed, amount)
	}
	custodied, err := safeAdd(entry.Custodied, amount)
	if err != nil {
		return err
	}
	entry.Deployed = entry.Deployed.Sub(amount)
	entry.Custodied = custodied
	return nil
}

// RealizeYield credits custodied with yield earned above the deployed principal.
func (ledger *Ledger) RealizeYield(asset common.Address, amount sdkmath.Int) error {
	entry, err := ledger.entry(asset)
	if err != nil {
		return err
	}
	if err := checkAmount(amount); err != nil {
		return err
	}
	custodied, err := safeAdd(entry.Custodied, amount)
	if err != nil {
		return err
	}
	realized, err := safeAdd(entry.Realized, amount)
	if err != nil {
		return err
	}
	entry.Custodied = custodied
	entry.Realized = realized
	return nil
}

func checkAmount(amount sdkmath.Int) error {
	if amount.IsNil() || amount.IsNegative() {
		return fmt.Errorf("%w: %v", ErrorInvalidAmount, amount)
	}
	return nil
}

func safeAdd(a, b sdkmath.Int) (sdkmath.Int, error) {
	sum, err := a.SafeAdd(b)
	if err != nil {
		return sdkmath.Int{}, fmt.Errorf("%w: %v + %v", ErrorOverflow, a, b)
	}
	return sum, nil
}
