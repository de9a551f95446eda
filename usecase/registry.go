package usecase

import (
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"

	"treasury/domain"
)

var (
	ErrorDuplicateAsset = fmt.Errorf("asset is registered more than once")
	ErrorNilToken       = fmt.Errorf("asset has no token handle")
)

// AssetHandle couples an asset with the token contract used to move it.
type AssetHandle struct {
	domain.Asset
	Token Token
}

// AssetRegistry is the fixed set of assets the treasury supports.
type AssetRegistry struct {
	order     []common.Address
	byAddress map[common.Address]AssetHandle
	bySymbol  map[string]common.Address
}

func NewAssetRegistry(handles []AssetHandle) (*AssetRegistry, error) {
	registry := &AssetRegistry{
		order:     make([]common.Address, 0, len(handles)),
		byAddress: make(map[common.Address]AssetHandle, len(handles)),
		bySymbol:  make(map[string]common.Address, len(handles)),
	}

	for _, handle := range handles {
		symbol := strings.ToUpper(handle.Symbol)
		if _, exist := registry.byAddress[handle.Address]; exist {
			return nil, fmt.Errorf("%w: %v", ErrorDuplicateAsset, handle.Address.Hex())
		}
		if _, exist := registry.bySymbol[symbol]; exist {
			return nil, fmt.Errorf("%w: %v", ErrorDuplicateAsset, symbol)
		}
		if handle.Token == nil {
			return nil, fmt.Errorf("%w: %v", ErrorNilToken, symbol)
		}
		registry.order = append(registry.order, handle.Address)
		registry.byAddress[handle.Address] = handle
		registry.bySymbol[symbol] = handle.Address
	}

	return registry, nil
}

func (registry *AssetRegistry) Resolve(asset common.Address) (AssetHandle, error) {
	handle, exist := registry.byAddress[asset]
	if !exist {
		return AssetHandle{}, fmt.Errorf("%w: %v", domain.ErrorUnknownAsset, asset.Hex())
	}
	return handle, nil
}

// Lookup resolves either a symbol (case insensitive) or a hex address.
func (registry *AssetRegistry) Lookup(symbolOrAddress string) (AssetHandle, error) {
	key := strings.TrimSpace(symbolOrAddress)
	if address, exist := registry.bySymbol[strings.ToUpper(key)]; exist {
		return registry.byAddress[address], nil
	}
	if common.IsHexAddress(key) {
		return registry.Resolve(common.HexToAddress(key))
	}
	return AssetHandle{}, fmt.Errorf("%w: %v", domain.ErrorUnknownAsset, key)
}

func (registry *AssetRegistry) Assets() []domain.Asset {
	result := make([]domain.Asset, 0, len(registry.order))
	for _, address := range registry.order {
		result = append(result, registry.byAddress[address].Asset)
	}
	return result
}

func (registry *AssetRegistry) Addresses() []common.Address {
	result := make([]common.Address, len(registry.order))
	copy(result, registry.order)
	return result
}
