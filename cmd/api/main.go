package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"chamba-onchain-backend/config"
	_ "chamba-onchain-backend/docs" // Important for Swagger
	v1 "chamba-onchain-backend/internal/delivery/http/v1"
	"chamba-onchain-backend/internal/domain"
	"chamba-onchain-backend/internal/repository/catalog"
	"chamba-onchain-backend/internal/repository/chain"
	"chamba-onchain-backend/internal/repository/nonce"
	"chamba-onchain-backend/internal/repository/record"
	"chamba-onchain-backend/internal/repository/storage"
	"chamba-onchain-backend/internal/usecase"
	"chamba-onchain-backend/pkg/auth"
	"chamba-onchain-backend/pkg/database"
	"chamba-onchain-backend/pkg/logger"
	"chamba-onchain-backend/pkg/redis"
	"chamba-onchain-backend/pkg/security"
	"chamba-onchain-backend/pkg/security/antivirus"
	"chamba-onchain-backend/pkg/validation"
	"chamba-onchain-backend/pkg/wallet"
)

// @title           Chamba On Chain API
// @version         1.0
// @description     Wallet-gated document sharing and job board backend.
// @host            localhost:8080
// @BasePath        /v1
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	// 1. Load Config
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// 2. Setup Logger
	logger.Init(cfg.IsDevelopment())
	securityLogger := security.InitSecurityLogger("chamba-onchain", cfg.AppEnv)
	defer securityLogger.Sync()
	logger.Log.Info("Starting chamba on chain backend", "port", cfg.Port, "chain_id", cfg.ChainID, "record_store", cfg.RecordStore)

	ctx := context.Background()
	checks := map[string]usecase.HealthCheck{}

	// 3. Setup Redis (optional)
	if cfg.RedisURL != "" {
		if err := redis.Initialize(redis.Config{URL: cfg.RedisURL, Password: cfg.RedisPassword}); err != nil {
			logger.Log.Warn("Redis unavailable, using in-memory fallbacks", "error", err)
		} else {
			defer redis.Close()
			checks["redis"] = redis.HealthCheck
		}
	}

	// 4. Setup Record Store
	store, closeStore, err := openRecordStore(ctx, cfg, checks)
	if err != nil {
		logger.Log.Error("Failed to open record store", "store", cfg.RecordStore, "error", err)
		os.Exit(1)
	}
	defer closeStore()

	// 5. Setup Wallet Session
	provider, err := openWalletProvider(cfg)
	if err != nil {
		logger.Log.Error("Failed to open wallet provider", "error", err)
		os.Exit(1)
	}
	session := wallet.NewSession(provider, cfg.ChainID)
	if err := session.Init(ctx); err != nil {
		logger.Log.Warn("Wallet session init failed", "error", err)
	}
	defer session.Close()

	// 6. Setup Contract Gateway and Storage
	gateway, err := chain.Dial(ctx, chain.Config{
		RPCURL:          cfg.RPCURL,
		ContractAddress: cfg.ContractAddress,
		RateLimit:       cfg.RPCRateLimit,
		CallTimeout:     cfg.RPCTimeout,
		ConfirmTimeout:  cfg.ConfirmTimeout,
	}, session)
	if err != nil {
		logger.Log.Error("Failed to connect to chain", "rpc", cfg.RPCURL, "error", err)
		os.Exit(1)
	}
	defer gateway.Close()

	backend, err := storage.New(ctx, cfg)
	if err != nil {
		logger.Log.Error("Failed to set up storage backend", "error", err)
		os.Exit(1)
	}

	// 7. Setup Repositories
	jobRepo := catalog.NewJobRepository(time.Now())
	profileRepo := record.NewProfileRepository(store)
	applicationRepo := record.NewApplicationRepository(store)

	var nonces domain.NonceStore = nonce.NewMemoryStore()
	if c := redis.Client(); c != nil {
		nonces = nonce.NewRedisStore(c)
	}

	issuer, err := auth.NewIssuer(cfg.JWTSecret, cfg.JWTTTL)
	if err != nil {
		logger.Log.Error("Failed to set up token issuer", "error", err)
		os.Exit(1)
	}

	// 8. Setup UseCases
	signIns := security.NewSignInTracker(redis.Client(), security.DefaultSignInTrackerConfig())
	authUC := usecase.NewAuthUsecase(session, nonces, issuer, signIns)
	jobUC := usecase.NewJobUsecase(jobRepo)
	applicationUC := usecase.NewApplicationUsecase(applicationRepo, jobRepo)
	profileUC := usecase.NewProfileUsecase(profileRepo, validation.New())
	accessUC := usecase.NewAccessUsecase(gateway)
	assetUC := usecase.NewAssetUsecase(gateway, backend, session, usecase.AssetOptions{
		MaxUploadBytes: cfg.UploadMaxBytes,
		Scanner:        openScanner(ctx, cfg),
	})
	defer assetUC.Close()
	healthUC := usecase.NewHealthUsecase(checks)

	// 9. Setup Router
	router := v1.NewRouter(v1.RouterDeps{
		Session:       session,
		Tokens:        issuer,
		AuthUC:        authUC,
		JobUC:         jobUC,
		ApplicationUC: applicationUC,
		ProfileUC:     profileUC,
		AssetUC:       assetUC,
		AccessUC:      accessUC,
		HealthUC:      healthUC,
		UploadLimiter: security.NewUploadLimiter(redis.Client(), cfg.UploadPerMinute, cfg.UploadPerDay),
		Config:        cfg,
	})

	// 10. Start Server
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.Error("Listen failed", "error", err)
		}
	}()

	// Graceful Shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Log.Error("Server forced to shutdown", "error", err)
	}

	logger.Log.Info("Server exiting")
}

// openRecordStore selects the record backend named by RECORD_STORE and
// runs its migrations.
func openRecordStore(ctx context.Context, cfg *config.Config, checks map[string]usecase.HealthCheck) (domain.RecordStore, func(), error) {
	switch cfg.RecordStore {
	case "postgres":
		pool, err := database.NewPostgresConnection(ctx, cfg.DBUrl)
		if err != nil {
			return nil, nil, err
		}
		if err := database.MigratePool(pool); err != nil {
			pool.Close()
			return nil, nil, err
		}
		checks["records"] = pool.Ping
		return record.Instrument("postgres", record.NewPostgresStore(pool)), pool.Close, nil

	case "sqlite":
		db, err := database.NewSQLiteConnection(cfg.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		if err := database.RunMigrations(db.DB, "sqlite"); err != nil {
			_ = db.Close()
			return nil, nil, err
		}
		checks["records"] = db.PingContext
		return record.Instrument("sqlite", record.NewSQLiteStore(db)), func() { _ = db.Close() }, nil

	case "redis":
		c := redis.Client()
		if c == nil {
			logger.Log.Warn("RECORD_STORE=redis but Redis is unavailable, falling back to memory")
			break
		}
		return record.Instrument("redis", record.NewRedisStore(c)), func() {}, nil

	case "memory":
	default:
		logger.Log.Warn("Unknown RECORD_STORE, using memory", "value", cfg.RecordStore)
	}
	return record.Instrument("memory", record.NewMemoryStore()), func() {}, nil
}

// openWalletProvider prefers a keystore directory over raw keys. Without
// either the session runs with no provider and connect reports it.
func openWalletProvider(cfg *config.Config) (wallet.Provider, error) {
	switch {
	case cfg.WalletKeystoreDir != "":
		return wallet.NewKeystoreProvider(wallet.OpenKeystore(cfg.WalletKeystoreDir), cfg.WalletPassphrase), nil
	case len(cfg.WalletPrivateKeys) > 0:
		return wallet.NewKeyedProvider(cfg.WalletPrivateKeys)
	default:
		logger.Log.Warn("No wallet provider configured; install a keystore or set WALLET_PRIVATE_KEYS")
		return nil, nil
	}
}

// openScanner returns nil when CLAMAV_ADDRESS is unset. An unreachable clamd
// is kept so uploads fail closed until it comes back.
func openScanner(ctx context.Context, cfg *config.Config) antivirus.Scanner {
	if cfg.ClamAVAddress == "" {
		return nil
	}
	scanner := antivirus.NewClamAVScanner(cfg.ClamAVAddress, 30*time.Second)
	if !scanner.Available(ctx) {
		logger.Log.Warn("clamd not reachable, uploads will be rejected until it is", "address", cfg.ClamAVAddress)
	}
	return scanner
}
