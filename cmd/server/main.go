// Command gomint-api starts the custodial transaction-assembly HTTP server.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/gomintco/gomint-api/internal/config"
	"github.com/gomintco/gomint-api/internal/hedera"
	"github.com/gomintco/gomint-api/internal/limiter"
	"github.com/gomintco/gomint-api/internal/migrate"
	"github.com/gomintco/gomint-api/internal/repository/postgres"
	httpserver "github.com/gomintco/gomint-api/internal/server/http"
	"github.com/gomintco/gomint-api/internal/service"
)

var (
	version   = "dev"
	buildDate = "unknown"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		zap.NewExample().Fatal("load config", zap.Error(err))
	}

	logger := newLogger(cfg.LogLevel)
	defer func() { _ = logger.Sync() }()
	logger.Info("starting",
		zap.String("version", version),
		zap.String("buildDate", buildDate),
		zap.String("addr", cfg.Address()),
	)

	// Context with OS signals
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := migrate.Up(ctx, cfg.DatabaseURL); err != nil {
		logger.Fatal("migrate up", zap.Error(err))
	}

	// DB pool
	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Fatal("pgxpool.New", zap.Error(err))
	}
	defer pool.Close()

	// Repositories
	db := &postgres.DB{Pool: pool}
	userRepo := postgres.NewUserRepo(db)
	accountRepo := postgres.NewAccountRepo(db)
	keyPairRepo := postgres.NewKeyPairRepo(db)
	dealRepo := postgres.NewDealRepo(db)

	lim := limiter.NewPG(pool, 15*time.Minute, 5, 15*time.Minute)

	// Ledger connections and operators per configured network
	ledgers := make(map[hedera.Network]service.Ledger)
	operators := make(map[hedera.Network]service.Operator)
	for network, op := range cfg.Operators {
		id, err := hedera.ParseEntityID(op.ID)
		if err != nil {
			logger.Fatal("operator id", zap.String("network", string(network)), zap.Error(err))
		}
		key, err := hedera.ParsePrivateKey(hedera.KeyTypeED25519, op.Key)
		if err != nil {
			logger.Fatal("operator key", zap.String("network", string(network)), zap.Error(err))
		}
		ledgers[network] = hedera.NewInMemoryLedger(network)
		operators[network] = service.Operator{ID: id, Key: key}
	}
	clients := service.NewClientSet(ledgers, operators)
	mirror := hedera.NewMirrorClient(cfg.MirrorURL)

	// Services
	authSvc := service.NewAuthService(userRepo, []byte(cfg.JWTKey), cfg.AccessTTL, lim)
	vault := service.NewKeyVault(keyPairRepo)
	ids := service.NewIdentityResolver(accountRepo)
	signers := service.NewSignerSetBuilder(ids, clients)
	accountSvc := service.NewAccountService(userRepo, accountRepo, vault, clients, logger)
	tokenSvc := service.NewTokenService(userRepo, ids, clients)
	topicSvc := service.NewTopicService(userRepo, ids, clients)
	dealSvc := service.NewDealService(dealRepo, userRepo, ids, signers, mirror)

	srv := httpserver.New(httpserver.Deps{
		Auth:     authSvc,
		Accounts: accountSvc,
		Tokens:   tokenSvc,
		Topics:   topicSvc,
		Deals:    dealSvc,
		JWTKey:   []byte(cfg.JWTKey),
		Logger:   logger,
	})

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", zap.String("addr", cfg.Address()))
		errCh <- srv.Listen(cfg.Address())
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownPeriod)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("shutdown", zap.Error(err))
		}
	case err := <-errCh:
		logger.Error("server error", zap.Error(err))
		os.Exit(1)
	}

	logger.Info("shutdown complete")
}

// newLogger builds a production logger at the configured level.
func newLogger(level string) *zap.Logger {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		lvl = zapcore.InfoLevel
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	logger, err := cfg.Build()
	if err != nil {
		logger = zap.NewExample()
	}
	return logger
}
