package repository

import (
	"encoding/json"
	"fmt"
	"testing"
	"time"

	sdkmath "cosmossdk.io/math"
	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"treasury/domain"
)

var usdc = common.HexToAddress("0x52D800ca262522580CeBAD275395ca6e7598C014")

// scanner returns a scan function that copies values into the destinations the way
// database/sql does for the types used by the repository.
func scanner(values ...interface{}) func(...interface{}) error {
	return func(dest ...interface{}) error {
		if len(dest) != len(values) {
			return fmt.Errorf("expected %d destinations, got %d", len(values), len(dest))
		}
		for i, value := range values {
			switch d := dest[i].(type) {
			case *string:
				*d = value.(string)
			case *[]byte:
				*d = value.([]byte)
			case *time.Time:
				*d = value.(time.Time)
			case interface{ Scan(interface{}) error }:
				if err := d.Scan(value); err != nil {
					return err
				}
			default:
				return fmt.Errorf("unsupported destination %T", dest[i])
			}
		}
		return nil
	}
}

func TestReadAllEntries(t *testing.T) {
	memo, err := readAllEntries(make([]domain.LedgerEntry, 0), scanner(usdc.Hex(), "52", "0", "2"))
	require.NoError(t, err)

	list := memo.([]domain.LedgerEntry)
	require.Len(t, list, 1)
	assert.Equal(t, usdc, list[0].Asset)
	assert.True(t, list[0].Custodied.Equal(sdkmath.NewInt(52)))
	assert.True(t, list[0].Deployed.IsZero())
	assert.True(t, list[0].Realized.Equal(sdkmath.NewInt(2)))
}

func TestReadAllEntriesInvalidNumeric(t *testing.T) {
	_, err := readAllEntries(make([]domain.LedgerEntry, 0), scanner(usdc.Hex(), "1.5", "0", "0"))
	assert.Error(t, err)
}

func TestReceiptRoundTripThroughCommand(t *testing.T) {
	receipt := domain.NewReceipt(domain.OperationDivest, usdc, usdc, sdkmath.NewInt(30))
	receipt.Actual = sdkmath.NewInt(32)
	receipt.Yield = sdkmath.NewInt(2)
	receipt.Status = domain.DivestComplete
	receipt.TxHashes = []string{"0xabc"}

	command, err := receiptInsertCommand(receipt)
	require.NoError(t, err)
	require.Len(t, command.Args, 11)
	assert.Nil(t, command.Args[4])

	hashes, _ := json.Marshal(receipt.TxHashes)
	memo, err := readAllReceipts(make([]domain.Receipt, 0), scanner(
		receipt.ID.String(), "divest", usdc.Hex(), usdc.Hex(), nil,
		"30", "32", "2", "complete", hashes, receipt.CreatedAt,
	))
	require.NoError(t, err)

	list := memo.([]domain.Receipt)
	require.Len(t, list, 1)
	assert.Equal(t, receipt.ID, list[0].ID)
	assert.Equal(t, domain.OperationDivest, list[0].Kind)
	assert.Equal(t, common.Address{}, list[0].AssetOut)
	assert.True(t, list[0].Yield.Equal(sdkmath.NewInt(2)))
	assert.Equal(t, domain.DivestComplete, list[0].Status)
	assert.Equal(t, []string{"0xabc"}, list[0].TxHashes)
}

func TestReceiptInsertCommandRequiresReceipt(t *testing.T) {
	_, err := receiptInsertCommand(nil)
	assert.Error(t, err)
}
