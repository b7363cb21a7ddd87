package config

import (
	"context"
	"fmt"
	"slices"

	"github.com/sethvargo/go-envconfig"
)

// Storage driver names accepted by STORAGE_USERS_DRIVER and STORAGE_ACCOUNTS_DRIVER.
const (
	DriverPostgres = "postgres"
	DriverMongo    = "mongo"
	DriverBolt     = "bolt"
	DriverMemory   = "memory"
)

const (
	minJWTSecretLength    = 32
	minVaultSecretLength  = 16
	minKDFIterations      = 100_000
	productionEnvironment = "production"
)

type Config struct {
	Server   ServerConfig   `env:",prefix=SERVER_"`
	Postgres PostgresConfig `env:",prefix=POSTGRES_"`
	Redis    RedisConfig    `env:",prefix=REDIS_"`
	Mongo    MongoConfig    `env:",prefix=MONGO_"`
	Bolt     BoltConfig     `env:",prefix=BOLT_"`
	Storage  StorageConfig  `env:",prefix=STORAGE_"`
	JWT      JWTConfig      `env:",prefix=JWT_"`
	Vault    VaultConfig    `env:",prefix=VAULT_"`
	Security SecurityConfig `env:",prefix=SECURITY_"`
	Cookie   CookieConfig   `env:",prefix=COOKIE_"`
	CORS     CORSConfig     `env:",prefix=CORS_"`
	Env      string         `env:"ENV,default=development"`
}

type ServerConfig struct {
	Port            string   `env:"PORT,default=8080"`
	Host            string   `env:"HOST,default=0.0.0.0"`
	ReadTimeout     Duration `env:"READ_TIMEOUT,default=15s"`
	WriteTimeout    Duration `env:"WRITE_TIMEOUT,default=15s"`
	ShutdownTimeout Duration `env:"SHUTDOWN_TIMEOUT,default=30s"`
	AutoMigrate     bool     `env:"AUTO_MIGRATE,default=false"`
}

type PostgresConfig struct {
	Host         string `env:"HOST,default=localhost"`
	Port         string `env:"PORT,default=5432"`
	User         string `env:"USER,default=biology_engine"`
	Password     string `env:"PASSWORD,default=biology_engine_password"`
	DBName       string `env:"DB,default=biology_engine"`
	SSLMode      string `env:"SSLMODE,default=disable"`
	MaxOpenConns int    `env:"MAX_OPEN_CONNS,default=25"`
	MaxIdleConns int    `env:"MAX_IDLE_CONNS,default=5"`
}

type RedisConfig struct {
	Enabled  bool   `env:"ENABLED,default=true"`
	Host     string `env:"HOST,default=localhost"`
	Port     string `env:"PORT,default=6379"`
	Password string `env:"PASSWORD,default="`
	DB       int    `env:"DB,default=0"`
}

type MongoConfig struct {
	URI            string   `env:"URI,default=mongodb://localhost:27017"`
	Database       string   `env:"DATABASE,default=space_biology"`
	Collection     string   `env:"COLLECTION,default=users"`
	ConnectTimeout Duration `env:"CONNECT_TIMEOUT,default=10s"`
}

type BoltConfig struct {
	Path    string   `env:"PATH,default=data/accounts.db"`
	Timeout Duration `env:"TIMEOUT,default=1s"`
}

// StorageConfig selects the repository implementation behind each identity namespace.
type StorageConfig struct {
	UsersDriver    string `env:"USERS_DRIVER,default=postgres"`
	AccountsDriver string `env:"ACCOUNTS_DRIVER,default=postgres"`
}

type JWTConfig struct {
	Secret              string   `env:"SECRET,required"`
	Issuer              string   `env:"ISSUER,default=space-biology-engine"`
	OAuthAudience       string   `env:"OAUTH_AUDIENCE,default=space-biology-frontend"`
	PasswordAudience    string   `env:"PASSWORD_AUDIENCE,default=space-biology-local"`
	OAuthTokenExpiry    Duration `env:"OAUTH_TOKEN_EXPIRY,default=7d"`
	PasswordTokenExpiry Duration `env:"PASSWORD_TOKEN_EXPIRY,default=24h"`
}

// VaultConfig holds the master secret used to derive per-value encryption keys.
type VaultConfig struct {
	MasterSecret  string `env:"MASTER_SECRET,required"`
	KDFIterations int    `env:"KDF_ITERATIONS,default=480000"`
}

type SecurityConfig struct {
	PasswordHashIterations int      `env:"PASSWORD_HASH_ITERATIONS,default=100000"`
	PasswordMinLength      int      `env:"PASSWORD_MIN_LENGTH,default=6"`
	RateLimitRequests      int      `env:"RATE_LIMIT_REQUESTS,default=10"`
	RateLimitWindow        Duration `env:"RATE_LIMIT_WINDOW,default=1m"`
}

type CookieConfig struct {
	OAuthName   string `env:"OAUTH_NAME,default=auth_token"`
	SessionName string `env:"SESSION_NAME,default=session_token"`
	Domain      string `env:"DOMAIN,default="`
	Secure      bool   `env:"SECURE,default=false"`
}

type CORSConfig struct {
	AllowedOrigins []string `env:"ALLOWED_ORIGINS,default=http://localhost:3000"`
	AllowedMethods []string `env:"ALLOWED_METHODS,default=GET,POST,PUT,DELETE,OPTIONS"`
	AllowedHeaders []string `env:"ALLOWED_HEADERS,default=Content-Type,Authorization"`
}

// DSN returns PostgreSQL connection string
func (p PostgresConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.DBName, p.SSLMode)
}

// URL returns the postgres URL form expected by golang-migrate.
func (p PostgresConfig) URL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		p.User, p.Password, p.Host, p.Port, p.DBName, p.SSLMode)
}

// Address returns Redis connection address
func (r RedisConfig) Address() string {
	return fmt.Sprintf("%s:%s", r.Host, r.Port)
}

// UsesPostgres reports whether any repository is backed by postgres.
func (s StorageConfig) UsesPostgres() bool {
	return s.UsersDriver == DriverPostgres || s.AccountsDriver == DriverPostgres
}

// IsProduction reports whether the service runs with production settings.
func (c *Config) IsProduction() bool {
	return c.Env == productionEnvironment
}

// Load loads configuration from environment variables
func Load(ctx context.Context) (*Config, error) {
	var config Config

	if err := envconfig.Process(ctx, &config); err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	if err := config.validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

// LoadWithDefaults loads configuration with default context
func LoadWithDefaults() (*Config, error) {
	return Load(context.Background())
}

func (c *Config) validate() error {
	if len(c.JWT.Secret) < minJWTSecretLength {
		return fmt.Errorf("JWT_SECRET must be at least %d characters long", minJWTSecretLength)
	}
	if len(c.Vault.MasterSecret) < minVaultSecretLength {
		return fmt.Errorf("VAULT_MASTER_SECRET must be at least %d characters long", minVaultSecretLength)
	}
	if c.Vault.KDFIterations < minKDFIterations {
		return fmt.Errorf("VAULT_KDF_ITERATIONS must be at least %d", minKDFIterations)
	}
	if c.Security.PasswordHashIterations < minKDFIterations {
		return fmt.Errorf("SECURITY_PASSWORD_HASH_ITERATIONS must be at least %d", minKDFIterations)
	}
	if c.JWT.OAuthAudience == c.JWT.PasswordAudience {
		return fmt.Errorf("JWT_OAUTH_AUDIENCE and JWT_PASSWORD_AUDIENCE must differ")
	}
	if c.JWT.OAuthTokenExpiry.Duration <= 0 || c.JWT.PasswordTokenExpiry.Duration <= 0 {
		return fmt.Errorf("token expiry must be positive")
	}

	if !slices.Contains([]string{DriverPostgres, DriverMongo, DriverMemory}, c.Storage.UsersDriver) {
		return fmt.Errorf("unknown STORAGE_USERS_DRIVER %q", c.Storage.UsersDriver)
	}
	if !slices.Contains([]string{DriverPostgres, DriverBolt, DriverMemory}, c.Storage.AccountsDriver) {
		return fmt.Errorf("unknown STORAGE_ACCOUNTS_DRIVER %q", c.Storage.AccountsDriver)
	}

	return nil
}
