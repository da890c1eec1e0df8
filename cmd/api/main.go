package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/ethereum/go-ethereum/rpc"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	"token-transfer-wallet/internal/config"
	"token-transfer-wallet/internal/contract"
	"token-transfer-wallet/internal/db"
	"token-transfer-wallet/internal/graph"
	"token-transfer-wallet/internal/logger"
	"token-transfer-wallet/internal/metrics"
	"token-transfer-wallet/internal/server"
	"token-transfer-wallet/internal/transfer"
	"token-transfer-wallet/internal/ui"
	"token-transfer-wallet/internal/wallet"
	"token-transfer-wallet/pkg/graphql"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	log := logger.New(cfg.LogLevel)
	defer log.Sync()

	if err := run(cfg, log); err != nil {
		log.Fatal("server stopped", zap.Error(err))
	}
}

func run(cfg *config.Config, log *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rpcClient, err := rpc.DialContext(ctx, cfg.RPCURL)
	if err != nil {
		return fmt.Errorf("dial %s: %w", cfg.RPCURL, err)
	}
	defer rpcClient.Close()
	eth := ethclient.NewClient(rpcClient)

	provider, closeProvider, err := newProvider(cfg, rpcClient, eth, log)
	if err != nil {
		return err
	}
	defer closeProvider()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	hub := server.NewHub(log)
	defer hub.Close()

	display := ui.NewState()
	opts := []transfer.Option{
		transfer.WithMetrics(metrics.New(reg)),
		transfer.WithNotifier(hub),
	}

	var transfers graph.TransferLister
	if cfg.DatabaseURL != "" {
		if err := db.InitDB(cfg.DatabaseURL); err != nil {
			return fmt.Errorf("init database: %w", err)
		}
		defer db.CloseDB()
		opts = append(opts, transfer.WithJournal(db.Journal{}))
		transfers = db.ListTransfers
	} else {
		log.Info("DATABASE_URL not set, transfer journal disabled")
	}

	contracts := contract.NewEthClient(eth, provider, cfg.ReceiptPollInterval)
	workflow := transfer.New(provider, contracts, display, cfg.ABISource, common.HexToAddress(contract.TokenAddress), log, opts...)
	workflow.Start()
	defer workflow.Close()

	resolver := &graph.Resolver{
		Workflow:  workflow,
		Display:   display,
		Transfers: transfers,
		Log:       log,
	}
	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           server.NewRouter(graphql.NewHandler(resolver), hub, reg),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		log.Info("Server starting", zap.String("addr", cfg.HTTPAddr), zap.String("wallet_mode", cfg.WalletMode))
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// newProvider returns a nil provider when no wallet is configured.
func newProvider(cfg *config.Config, rpcClient *rpc.Client, eth *ethclient.Client, log *zap.Logger) (wallet.Provider, func(), error) {
	switch cfg.WalletMode {
	case config.WalletModeRPC:
		p := wallet.NewRPCProvider(rpcClient, cfg.AccountPollInterval, log)
		return p, p.Close, nil
	case config.WalletModeKey:
		p, err := wallet.NewKeyProvider(cfg.WalletPrivateKey, eth)
		if err != nil {
			return nil, nil, err
		}
		log.Info("local key wallet", zap.String("account", p.Address().Hex()))
		return p, func() {}, nil
	default:
		return nil, func() {}, nil
	}
}
