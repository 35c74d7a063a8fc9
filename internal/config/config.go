package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

const (
	// DatadirKey is the local data directory to store the internal state of the daemon.
	DatadirKey = "DATADIR"
	// LogLevelKey are the different logging levels. For reference on the values https://godoc.org/github.com/sirupsen/logrus#Level
	LogLevelKey = "LOG_LEVEL"
	// ListenAddrKey is the address where the HTTP interface will listen on.
	ListenAddrKey = "LISTEN_ADDR"
	// AdminAddressKey is the administrative identity of the marketplace, also acting as fee recipient.
	AdminAddressKey = "ADMIN_ADDRESS"
	// ExchangeAddressKey is the identity under which the exchange holds the custody of deposited assets.
	ExchangeAddressKey = "EXCHANGE_ADDRESS"
	// FeePercentageKey is the percentage of each sale kept by the exchange, in range [0, 100].
	FeePercentageKey = "FEE_PERCENTAGE"
	// AuthSecretKey is the HS256 secret validating the bearer tokens of API callers.
	AuthSecretKey = "AUTH_SECRET"
	// DbTypeKey selects the storage backend, either "badger" or "inmemory".
	DbTypeKey = "DB_TYPE"
	// ChainBackendKey selects the registry/bank backend, either "eth" or "inmemory".
	ChainBackendKey = "CHAIN_BACKEND"
	// EthRpcURLKey is the RPC endpoint of the ethereum node to connect to.
	EthRpcURLKey = "ETH_RPC_URL"
	// RegistryContractKey is the address of the ERC-721 asset registry contract.
	RegistryContractKey = "REGISTRY_CONTRACT"
	// SettlementTokenContractKey is the address of the ERC-20 settlement currency contract.
	SettlementTokenContractKey = "SETTLEMENT_TOKEN_CONTRACT"
	// EthPrivateKeyKey is the hex private key signing the exchange's on-chain transfers.
	EthPrivateKeyKey = "ETH_PRIVATE_KEY"
	// StatsIntervalKey defines the interval in seconds for printing basic memory statistics, 0 disables them.
	StatsIntervalKey = "STATS_INTERVAL"

	DbTypeBadger   = "badger"
	DbTypeInMemory = "inmemory"

	ChainBackendEth      = "eth"
	ChainBackendInMemory = "inmemory"
)

var vip *viper.Viper

func init() {
	vip = viper.New()
	vip.SetEnvPrefix("MARKETD")
	vip.AutomaticEnv()

	homeDir, _ := os.UserHomeDir()

	vip.SetDefault(DatadirKey, filepath.Join(homeDir, ".marketd"))
	vip.SetDefault(LogLevelKey, 4)
	vip.SetDefault(ListenAddrKey, ":9945")
	vip.SetDefault(FeePercentageKey, 2)
	vip.SetDefault(DbTypeKey, DbTypeBadger)
	vip.SetDefault(ChainBackendKey, ChainBackendInMemory)
	vip.SetDefault(StatsIntervalKey, 600)
}

// GetString ...
func GetString(key string) string {
	return vip.GetString(key)
}

// GetInt ...
func GetInt(key string) int {
	return vip.GetInt(key)
}

// GetUint ...
func GetUint(key string) uint {
	return vip.GetUint(key)
}

// GetDuration returns the value of the key as a duration in seconds.
func GetDuration(key string) time.Duration {
	return time.Duration(vip.GetInt(key)) * time.Second
}

// Set overrides the value of the given key, meant for tests.
func Set(key string, value interface{}) {
	vip.Set(key, value)
}

// Validate makes sure the required configuration is in place and consistent,
// returning a detailed error otherwise.
func Validate() error {
	if len(GetString(AdminAddressKey)) <= 0 {
		return fmt.Errorf("%s must be defined", AdminAddressKey)
	}
	if len(GetString(ExchangeAddressKey)) <= 0 {
		return fmt.Errorf("%s must be defined", ExchangeAddressKey)
	}
	if len(GetString(AuthSecretKey)) <= 0 {
		return fmt.Errorf("%s must be defined", AuthSecretKey)
	}
	if pct := GetUint(FeePercentageKey); pct > 100 {
		return fmt.Errorf("%s must be in range [0, 100]", FeePercentageKey)
	}

	switch dbType := GetString(DbTypeKey); dbType {
	case DbTypeBadger, DbTypeInMemory:
	default:
		return fmt.Errorf("unknown %s %s", DbTypeKey, dbType)
	}

	switch backend := GetString(ChainBackendKey); backend {
	case ChainBackendInMemory:
	case ChainBackendEth:
		for _, key := range []string{
			EthRpcURLKey, RegistryContractKey,
			SettlementTokenContractKey, EthPrivateKeyKey,
		} {
			if len(GetString(key)) <= 0 {
				return fmt.Errorf(
					"%s must be defined with %s backend", key, ChainBackendEth,
				)
			}
		}
	default:
		return fmt.Errorf("unknown %s %s", ChainBackendKey, backend)
	}

	return nil
}
