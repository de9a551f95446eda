package config

import (
	"crypto/ecdsa"
	"fmt"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"

	"treasury/domain"
)

const (
	StorePostgres = "postgres"
	StoreMemory   = "memory"
)

var (
	ErrorInvalidStore = fmt.Errorf("store must be equal to 'postgres' or 'memory' only")
	ErrorNoDbUri      = fmt.Errorf("service_db_uri is required for the postgres store")
	ErrorNoRpcUrl     = fmt.Errorf("rpc_url is required")

	ErrorNoPrivateKey          = fmt.Errorf("no private key is defined")
	ErrorPrivateKeyConflict    = fmt.Errorf("only one of private_key or private_key_file must be defined")
	ErrorReadingPrivateKeyFile = fmt.Errorf("error in reading private key file")
	ErrorInvalidPrivateKey     = fmt.Errorf("invalid private key")

	ErrorInvalidOwnerAddress  = fmt.Errorf("invalid owner address")
	ErrorOwnerIsTreasury      = fmt.Errorf("owner_address must not be the treasury signer address")
	ErrorInvalidRouterAddress = fmt.Errorf("invalid swap router address")
	ErrorInvalidPoolAddress   = fmt.Errorf("invalid lending pool address")
	ErrorInvalidAsset         = fmt.Errorf("invalid asset definition")
	ErrorNoAssets             = fmt.Errorf("at least one asset must be defined")
	ErrorInvalidSwapVia       = fmt.Errorf("swap_via must name a registered asset")

	ErrorInvalidSwapDeadline      = fmt.Errorf("invalid time interval for swap deadline")
	ErrorInvalidTxTimeout         = fmt.Errorf("invalid time interval for transaction timeout")
	ErrorInvalidReconcileInterval = fmt.Errorf("invalid time interval for reconcile process")
)

var (
	TrailingSlashRE = regexp.MustCompile("/+$")
)

type assetConfig struct {
	Symbol   string `mapstructure:"symbol"`
	Address  string `mapstructure:"address"`
	Decimals int32  `mapstructure:"decimals"`
}

var (
	store    string
	dbUri    string
	rpcUrl   string
	logLevel string

	privateKey      string
	privateKeyFile  string
	treasuryKey     *ecdsa.PrivateKey
	treasuryAddress common.Address

	ownerAddress  common.Address
	routerAddress common.Address
	poolAddress   common.Address
	assets        []domain.Asset
	swapVia       *common.Address

	swapDeadline      time.Duration
	txTimeout         time.Duration
	reconcileInterval time.Duration
	metricsAddr       string
)

func init() {
	setDefaults()
}

func setDefaults() {
	viper.SetDefault("store", StorePostgres)
	viper.SetDefault("log_level", "info")
	viper.SetDefault("swap_deadline", "5m")
	viper.SetDefault("tx_timeout", "2m")
	viper.SetDefault("reconcile_interval", "1m")
	viper.SetDefault("metrics_addr", ":9102")
}

func ReadConfig(filePath string) error {
	viper.SetConfigFile(filePath)

	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		log.Warn().Err(err).Str("path", filePath).Msg("⚠️ Failed reading config file")
	}

	if err := initializeVariables(); err != nil {
		return fmt.Errorf("configuration error - %w", err)
	}
	return nil
}

// This method processes the configuration parameters and keeps the processed values
// in some variables for later accesses rapidly.
func initializeVariables() error {
	var err error

	logLevel = strings.TrimSpace(strings.ToLower(viper.GetString("log_level")))

	// Storage stuff
	store = strings.TrimSpace(strings.ToLower(viper.GetString("store")))
	if store != StorePostgres && store != StoreMemory {
		return ErrorInvalidStore
	}
	dbUri = TrailingSlashRE.ReplaceAllString(viper.GetString("service_db_uri"), "")
	if store == StorePostgres && dbUri == "" {
		return ErrorNoDbUri
	}

	// Chain stuff
	rpcUrl = strings.TrimSpace(viper.GetString("rpc_url"))
	if rpcUrl == "" {
		return ErrorNoRpcUrl
	}

	// Treasury signer stuff
	privateKey = strings.TrimSpace(viper.GetString("private_key"))
	privateKeyFile = strings.TrimSpace(viper.GetString("private_key_file"))
	if privateKey == "" && privateKeyFile == "" {
		return ErrorNoPrivateKey
	}
	if privateKey != "" && privateKeyFile != "" {
		return ErrorPrivateKeyConflict
	}

	hexKey := privateKey
	if privateKeyFile != "" {
		hexKey, err = readPrivateKeyFile(privateKeyFile)
		if err != nil {
			return ErrorReadingPrivateKeyFile
		}
	}

	treasuryKey, err = crypto.HexToECDSA(strings.TrimPrefix(strings.TrimSpace(hexKey), "0x"))
	if err != nil {
		return ErrorInvalidPrivateKey
	}
	treasuryAddress = crypto.PubkeyToAddress(treasuryKey.PublicKey)

	// Owner and venues
	ownerAddress, err = parseAddress("owner_address", ErrorInvalidOwnerAddress)
	if err != nil {
		return err
	}
	if ownerAddress == treasuryAddress {
		return fmt.Errorf("%w: %v", ErrorOwnerIsTreasury, ownerAddress.Hex())
	}
	routerAddress, err = parseAddress("swap_router_address", ErrorInvalidRouterAddress)
	if err != nil {
		return err
	}
	poolAddress, err = parseAddress("lending_pool_address", ErrorInvalidPoolAddress)
	if err != nil {
		return err
	}

	// Assets
	assets, err = readAssets()
	if err != nil {
		return err
	}

	swapVia = nil
	if via := strings.TrimSpace(viper.GetString("swap_via")); via != "" {
		found := false
		for _, asset := range assets {
			if strings.EqualFold(asset.Symbol, via) || strings.EqualFold(asset.Address.Hex(), via) {
				address := asset.Address
				swapVia = &address
				found = true
				break
			}
		}
		if !found {
			return ErrorInvalidSwapVia
		}
	}

	//---------------------------------------------------------------
	// swap deadline
	swapDeadline, err = time.ParseDuration(viper.GetString("swap_deadline"))
	if err != nil || swapDeadline <= 0 {
		return ErrorInvalidSwapDeadline
	}

	//---------------------------------------------------------------
	// transaction timeout
	txTimeout, err = time.ParseDuration(viper.GetString("tx_timeout"))
	if err != nil || txTimeout <= 0 {
		return ErrorInvalidTxTimeout
	}

	//---------------------------------------------------------------
	// reconcile interval
	reconcileInterval, err = time.ParseDuration(viper.GetString("reconcile_interval"))
	if err != nil || reconcileInterval <= 0 {
		return ErrorInvalidReconcileInterval
	}

	metricsAddr = strings.TrimSpace(viper.GetString("metrics_addr"))

	return nil
}

func parseAddress(key string, invalid error) (common.Address, error) {
	value := strings.TrimSpace(viper.GetString(key))
	if !common.IsHexAddress(value) {
		return common.Address{}, invalid
	}
	return common.HexToAddress(value), nil
}

func readAssets() ([]domain.Asset, error) {
	var raw []assetConfig
	if err := viper.UnmarshalKey("assets", &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrorInvalidAsset, err.Error())
	}
	if len(raw) == 0 {
		return nil, ErrorNoAssets
	}

	result := make([]domain.Asset, 0, len(raw))
	for _, item := range raw {
		symbol := strings.TrimSpace(item.Symbol)
		if symbol == "" || !common.IsHexAddress(item.Address) || item.Decimals < 0 || item.Decimals > 77 {
			return nil, fmt.Errorf("%w: %+v", ErrorInvalidAsset, item)
		}
		result = append(result, domain.Asset{
			Symbol:   symbol,
			Address:  common.HexToAddress(item.Address),
			Decimals: item.Decimals,
		})
	}
	return result, nil
}

func readPrivateKeyFile(filePath string) (string, error) {

	fileContent, err := os.ReadFile(filePath)
	if err != nil {
		log.Error().Err(err).Str("path", filePath).Msg("Failed to read private key file")
		return "", err
	}

	return string(fileContent), nil
}

//-------------------------------------------------------------------
// Processed values

func GetTreasuryKey() *ecdsa.PrivateKey {
	return treasuryKey
}

func GetTreasuryAddress() common.Address {
	return treasuryAddress
}

func GetOwnerAddress() common.Address {
	return ownerAddress
}

func GetAssets() []domain.Asset {
	result := make([]domain.Asset, len(assets))
	copy(result, assets)
	return result
}

func GetSwapVia() *common.Address {
	return swapVia
}

//-------------------------------------------------------------------
// Normal configuration values

func GetDbUri() string {
	return dbUri
}

func GetRpcUrl() string {
	return rpcUrl
}

func GetLogLevel() string {
	return logLevel
}

func GetRouterAddress() common.Address {
	return routerAddress
}

func GetPoolAddress() common.Address {
	return poolAddress
}

func GetSwapDeadline() time.Duration {
	return swapDeadline
}

func GetTxTimeout() time.Duration {
	return txTimeout
}

func GetReconcileInterval() time.Duration {
	return reconcileInterval
}

func GetMetricsAddr() string {
	return metricsAddr
}

// -------------------------------------------------------------------
// Evaluating values

func IsMemoryStore() bool {
	return store == StoreMemory
}
