package domain

import (
	"errors"
	"fmt"
)

var (
	ErrorUnknownAsset        = fmt.Errorf("unknown asset")
	ErrorUnauthorized        = fmt.Errorf("caller is not the owner")
	ErrorInsufficientBalance = fmt.Errorf("insufficient balance")
	ErrorOverflow            = fmt.Errorf("amount overflow")
	ErrorInvalidAmount       = fmt.Errorf("amount must be positive")
	ErrorSameAsset           = fmt.Errorf("input and output assets must differ")

	ErrorTransferFailed   = fmt.Errorf("token transfer failed")
	ErrorSwapFailed       = fmt.Errorf("swap failed")
	ErrorSlippageExceeded = fmt.Errorf("swap output below minimum")
	ErrorInvestFailed     = fmt.Errorf("supply to lending pool failed")
	ErrorDivestFailed     = fmt.Errorf("withdraw from lending pool failed")

	// ErrorTxPending means a transaction was submitted but its outcome is unknown. It
	// may still be mined, so the operation must not be treated as rolled back.
	ErrorTxPending  = fmt.Errorf("transaction submitted but not mined")
	ErrorTxReverted = fmt.Errorf("transaction reverted")
)

var errorKinds = []struct {
	err  error
	kind string
}{
	{ErrorTxPending, "tx_pending"},
	{ErrorUnknownAsset, "unknown_asset"},
	{ErrorUnauthorized, "unauthorized"},
	{ErrorInsufficientBalance, "insufficient_balance"},
	{ErrorOverflow, "overflow"},
	{ErrorInvalidAmount, "invalid_amount"},
	{ErrorSameAsset, "same_asset"},
	{ErrorTransferFailed, "transfer_failed"},
	{ErrorSlippageExceeded, "slippage_exceeded"},
	{ErrorSwapFailed, "swap_failed"},
	{ErrorInvestFailed, "invest_failed"},
	{ErrorDivestFailed, "divest_failed"},
}

// ErrorKind returns a stable label for the failure carried by err, suitable for metrics.
func ErrorKind(err error) string {
	if err == nil {
		return "none"
	}
	for _, known := range errorKinds {
		if errors.Is(err, known.err) {
			return known.kind
		}
	}
	return "internal"
}
