package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Known chain ids and their default public RPC endpoints
const (
	ChainIDSepolia   int64 = 11155111
	ChainIDLocalhost int64 = 31337
)

var defaultRPCURLs = map[int64]string{
	ChainIDSepolia:   "https://rpc.sepolia.org",
	ChainIDLocalhost: "http://127.0.0.1:8545",
}

type Config struct {
	Port        string
	AppEnv      string
	FrontendURL string
	// Session tokens
	JWTSecret string
	JWTTTL    time.Duration
	// Chain / gateway contract
	ContractAddress string
	ChainID         int64
	RPCURL          string
	RPCRateLimit    float64 // requests per second, 0 disables throttling
	RPCTimeout      time.Duration
	ConfirmTimeout  time.Duration
	// Wallet provider
	WalletKeystoreDir string
	WalletPassphrase  string
	WalletPrivateKeys []string
	// Local record stores: memory | postgres | redis | sqlite
	RecordStore string
	DBUrl       string
	SQLitePath  string
	// Redis
	RedisURL      string
	RedisPassword string
	// Content-addressed storage backends, first configured wins
	Web3StorageKey  string
	PinataAPIKey    string
	PinataSecretKey string
	IPFSAPIURL      string
	S3Bucket        string
	S3Region        string
	S3AccessKeyID   string
	S3SecretKey     string
	S3Endpoint      string
	// Upload limits
	UploadMaxBytes  int64
	UploadPerMinute int
	UploadPerDay    int
	// clamd address (host:port), empty disables scanning
	ClamAVAddress string
	// Rate Limiting Configuration
	RateLimitWindowSeconds   int
	RateLimitGlobalThreshold int
	RateLimitWalletThreshold int
	// API docs
	SwaggerEnabled bool
}

func LoadConfig() (*Config, error) {
	// .env is only present in local development
	_ = godotenv.Load()

	chainID := getEnvInt64("CHAIN_ID", ChainIDSepolia)
	if _, ok := defaultRPCURLs[chainID]; !ok {
		log.Printf("WARNING: unknown CHAIN_ID %d, falling back to Sepolia", chainID)
		chainID = ChainIDSepolia
	}

	cfg := &Config{
		Port:        getEnv("PORT", "8080"),
		AppEnv:      getEnv("APP_ENV", "production"),
		FrontendURL: strings.TrimRight(getEnv("FRONTEND_URL", "http://localhost:3000"), "/"),
		JWTSecret:   getEnv("JWT_SECRET", ""),
		JWTTTL:      getEnvDuration("JWT_TTL", 12*time.Hour),
		// Chain
		ContractAddress: strings.TrimSpace(getEnv("CONTRACT_ADDRESS", "")),
		ChainID:         chainID,
		RPCURL:          strings.TrimSpace(getEnv("RPC_URL", "")),
		RPCRateLimit:    getEnvFloat("RPC_RATE_LIMIT", 10),
		RPCTimeout:      getEnvDuration("RPC_TIMEOUT", 30*time.Second),
		ConfirmTimeout:  getEnvDuration("CONFIRM_TIMEOUT", 5*time.Minute),
		// Wallet
		WalletKeystoreDir: getEnv("WALLET_KEYSTORE_DIR", ""),
		WalletPassphrase:  getEnv("WALLET_PASSPHRASE", ""),
		WalletPrivateKeys: splitList(getEnv("WALLET_PRIVATE_KEYS", "")),
		// Records
		RecordStore: strings.ToLower(getEnv("RECORD_STORE", "memory")),
		DBUrl:       getEnv("DATABASE_URL", ""),
		SQLitePath:  getEnv("SQLITE_PATH", "data/chamba.db"),
		// Redis
		RedisURL:      getEnv("REDIS_URL", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		// Storage
		Web3StorageKey:  getEnv("WEB3_STORAGE_KEY", ""),
		PinataAPIKey:    getEnv("PINATA_API_KEY", ""),
		PinataSecretKey: getEnv("PINATA_SECRET_KEY", ""),
		IPFSAPIURL:      strings.TrimRight(getEnv("IPFS_API_URL", ""), "/"),
		S3Bucket:        getEnv("S3_BUCKET", ""),
		S3Region:        getEnv("S3_REGION", "us-east-1"),
		S3AccessKeyID:   getEnv("S3_ACCESS_KEY_ID", ""),
		S3SecretKey:     getEnv("S3_SECRET_ACCESS_KEY", ""),
		S3Endpoint:      strings.TrimRight(getEnv("S3_ENDPOINT", ""), "/"),
		// Upload limits
		UploadMaxBytes:  getEnvInt64("UPLOAD_MAX_BYTES", 10<<20), // 10 MiB
		UploadPerMinute: getEnvInt("UPLOAD_PER_MINUTE", 10),
		UploadPerDay:    getEnvInt("UPLOAD_PER_DAY", 50),
		ClamAVAddress:   strings.TrimSpace(getEnv("CLAMAV_ADDRESS", "")),
		// Rate limiting
		RateLimitWindowSeconds:   getEnvInt("RATE_LIMIT_WINDOW_SECONDS", 60),
		RateLimitGlobalThreshold: getEnvInt("RATE_LIMIT_GLOBAL_THRESHOLD", 100),
		RateLimitWalletThreshold: getEnvInt("RATE_LIMIT_WALLET_THRESHOLD", 60),
		SwaggerEnabled:           getEnvBool("SWAGGER_ENABLED", true),
	}

	if cfg.RPCURL == "" {
		cfg.RPCURL = defaultRPCURLs[cfg.ChainID]
	}
	if cfg.RecordStore == "" {
		cfg.RecordStore = "memory"
	}

	if cfg.ContractAddress == "" {
		log.Println("WARNING: CONTRACT_ADDRESS is missing. Contract operations will be rejected as misconfigured.")
	}
	if cfg.JWTSecret == "" {
		log.Println("WARNING: JWT_SECRET is missing. A random per-process secret will be used.")
	}
	if cfg.RedisURL == "" {
		log.Println("WARNING: REDIS_URL not configured. Rate limiting will use in-memory fallback.")
	}

	return cfg, nil
}

// IsDevelopment reports whether the process runs with development defaults
func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development" || c.AppEnv == "dev"
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

// getEnvInt returns an integer environment variable or fallback if not set/invalid
func getEnvInt(key string, fallback int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return fallback
}

func getEnvInt64(key string, fallback int64) int64 {
	if value, exists := os.LookupEnv(key); exists {
		if intVal, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intVal
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if value, exists := os.LookupEnv(key); exists {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return fallback
}

// getEnvBool returns a boolean environment variable or fallback if not set/invalid
func getEnvBool(key string, fallback bool) bool {
	if value, exists := os.LookupEnv(key); exists {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return fallback
}

// getEnvDuration accepts Go duration strings ("30s", "5m")
func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value, exists := os.LookupEnv(key); exists {
		if d, err := time.ParseDuration(value); err == nil && d > 0 {
			return d
		}
	}
	return fallback
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
