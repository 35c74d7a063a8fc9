package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ethereum/go-ethereum/crypto"
	log "github.com/sirupsen/logrus"

	"github.com/escrowmarket/marketd/internal/config"
	"github.com/escrowmarket/marketd/internal/core/application/listing"
	"github.com/escrowmarket/marketd/internal/core/application/operator"
	appspubsub "github.com/escrowmarket/marketd/internal/core/application/pubsub"
	"github.com/escrowmarket/marketd/internal/core/application/settings"
	"github.com/escrowmarket/marketd/internal/core/application/trade"
	"github.com/escrowmarket/marketd/internal/core/ports"
	ethbank "github.com/escrowmarket/marketd/internal/infrastructure/bank/eth"
	inmemorybank "github.com/escrowmarket/marketd/internal/infrastructure/bank/inmemory"
	webhookpubsub "github.com/escrowmarket/marketd/internal/infrastructure/pubsub"
	ethregistry "github.com/escrowmarket/marketd/internal/infrastructure/registry/eth"
	inmemoryregistry "github.com/escrowmarket/marketd/internal/infrastructure/registry/inmemory"
	dbbadger "github.com/escrowmarket/marketd/internal/infrastructure/storage/db/badger"
	"github.com/escrowmarket/marketd/internal/infrastructure/storage/db/inmemory"
	httpinterface "github.com/escrowmarket/marketd/internal/interfaces/http"
	"github.com/escrowmarket/marketd/pkg/stats"
)

func main() {
	log.SetLevel(log.Level(config.GetInt(config.LogLevelKey)))
	if err := config.Validate(); err != nil {
		log.WithError(err).Fatal("invalid configuration")
	}

	repoManager, err := newRepoManager()
	if err != nil {
		log.WithError(err).Fatal("error while opening storage")
	}
	defer repoManager.Close()

	registry, bank, registryFactory, err := newChainBackend()
	if err != nil {
		log.WithError(err).Fatal("error while connecting to chain backend")
	}

	marketSettings, err := settings.NewSettings(
		config.GetString(config.AdminAddressKey),
		config.GetString(config.ExchangeAddressKey),
		config.GetUint(config.FeePercentageKey),
		registry,
	)
	if err != nil {
		log.WithError(err).Fatal("invalid marketplace settings")
	}

	eventHub := httpinterface.NewEventHub()
	pubsubSvc, err := appspubsub.NewService(webhookpubsub.NewService(), eventHub)
	if err != nil {
		log.WithError(err).Fatal("error while setting up pubsub service")
	}

	listingSvc, err := listing.NewService(marketSettings, pubsubSvc, repoManager)
	if err != nil {
		log.WithError(err).Fatal("error while setting up listing service")
	}
	tradeSvc, err := trade.NewService(
		marketSettings, pubsubSvc, repoManager, bank,
	)
	if err != nil {
		log.WithError(err).Fatal("error while setting up trade service")
	}
	operatorSvc, err := operator.NewService(
		marketSettings, pubsubSvc, repoManager,
	)
	if err != nil {
		log.WithError(err).Fatal("error while setting up operator service")
	}

	// The listing service is the acceptance hook for transfers into the
	// exchange's custody.
	if r, ok := registry.(*inmemoryregistry.Registry); ok {
		r.RegisterReceiver(marketSettings.ExchangeAccount(), listingSvc)
	}

	srv, err := httpinterface.NewServer(httpinterface.ServerOpts{
		ListenAddr:      config.GetString(config.ListenAddrKey),
		AuthSecret:      []byte(config.GetString(config.AuthSecretKey)),
		ListingSvc:      listingSvc,
		TradeSvc:        tradeSvc,
		OperatorSvc:     operatorSvc,
		EventHub:        eventHub,
		RegistryFactory: registryFactory,
	})
	if err != nil {
		log.WithError(err).Fatal("error while setting up HTTP interface")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if interval := config.GetDuration(config.StatsIntervalKey); interval > 0 {
		stats.EnableMemoryStatistics(ctx, interval)
	}

	go func() {
		log.Infof(
			"HTTP interface is listening on %s",
			config.GetString(config.ListenAddrKey),
		)
		if err := srv.Start(); err != nil {
			log.WithError(err).Fatal("error while serving HTTP interface")
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT)
	<-sigChan

	log.Info("shutting down daemon")
	shutdownCtx, shutdownCancel := context.WithTimeout(
		context.Background(), 10*time.Second,
	)
	defer shutdownCancel()
	if err := srv.Stop(shutdownCtx); err != nil {
		log.WithError(err).Warn("error while shutting down HTTP interface")
	}
	log.Info("exiting")
}

func newRepoManager() (ports.RepoManager, error) {
	if config.GetString(config.DbTypeKey) == config.DbTypeInMemory {
		return inmemory.NewRepoManager(), nil
	}
	return dbbadger.NewRepoManager(
		config.GetString(config.DatadirKey), nil,
	)
}

func newChainBackend() (
	ports.AssetRegistry, ports.Bank, httpinterface.RegistryFactory, error,
) {
	if config.GetString(config.ChainBackendKey) == config.ChainBackendInMemory {
		return inmemoryregistry.NewRegistry(), inmemorybank.NewBank(), nil, nil
	}

	privateKey, err := crypto.HexToECDSA(
		config.GetString(config.EthPrivateKeyKey),
	)
	if err != nil {
		return nil, nil, nil, err
	}

	rpcURL := config.GetString(config.EthRpcURLKey)
	registry, err := ethregistry.NewRegistry(
		rpcURL, config.GetString(config.RegistryContractKey), privateKey,
	)
	if err != nil {
		return nil, nil, nil, err
	}

	bank, err := ethbank.NewBank(
		rpcURL, config.GetString(config.SettlementTokenContractKey), privateKey,
	)
	if err != nil {
		return nil, nil, nil, err
	}

	factory := func(contractAddress string) (ports.AssetRegistry, error) {
		return ethregistry.NewRegistry(rpcURL, contractAddress, privateKey)
	}
	return registry, bank, factory, nil
}
