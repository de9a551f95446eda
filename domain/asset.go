package domain

import (
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

// Asset is a fungible token the treasury is able to custody. It is registered at
// construction and never changes afterwards.
type Asset struct {
	Symbol   string         `json:"symbol" yaml:"symbol"`
	Address  common.Address `json:"address" yaml:"address"`
	Decimals int32          `json:"decimals" yaml:"decimals"`
}

func (asset Asset) String() string {
	return strings.ToUpper(asset.Symbol)
}
