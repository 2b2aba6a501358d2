package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	EnvPrefix = "twofly"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	EnvDBDSN  = "TWOFLY_DB_DSN"
	EnvDBHost = "TWOFLY_DB_HOST"
	EnvDBUser = "TWOFLY_DB_USER"
	EnvDBName = "TWOFLY_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}

type Config struct {
	App          AppConfig
	DB           DBConfig
	Redis        RedisConfig
	JWT          JWTConfig
	Courier      CourierConfig
	Cache        CacheConfig
	FeatureFlags FeatureFlagsConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"TWOFLY_APP_ENV" required:"true"`
	Port         string `envconfig:"TWOFLY_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"TWOFLY_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"TWOFLY_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"TWOFLY_DB_DSN"`
	Driver string `envconfig:"TWOFLY_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"TWOFLY_DB_HOST"`
	LegacyPort     int    `envconfig:"TWOFLY_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"TWOFLY_DB_USER"`
	LegacyPassword string `envconfig:"TWOFLY_DB_PASSWORD"`
	LegacyName     string `envconfig:"TWOFLY_DB_NAME"`
	LegacySSLMode  string `envconfig:"TWOFLY_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"TWOFLY_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"TWOFLY_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"TWOFLY_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"TWOFLY_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"TWOFLY_REDIS_URL"`
	Address      string        `envconfig:"TWOFLY_REDIS_ADDR"`
	Password     string        `envconfig:"TWOFLY_REDIS_PASSWORD"`
	DB           int           `envconfig:"TWOFLY_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"TWOFLY_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"TWOFLY_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"TWOFLY_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"TWOFLY_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"TWOFLY_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"TWOFLY_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"TWOFLY_JWT_ISSUER" required:"true"`
	ExpirationMinutes int    `envconfig:"TWOFLY_JWT_EXPIRATION_MINUTES" default:"720"`
}

// CourierConfig carries the region rate table used to cost online shipments.
type CourierConfig struct {
	Rates map[string]string `envconfig:"TWOFLY_COURIER_RATES" default:"luzon:120,visayas:150,mindanao:180"`
}

type CacheConfig struct {
	CatalogTTL time.Duration `envconfig:"TWOFLY_CATALOG_CACHE_TTL" default:"5m"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"TWOFLY_AUTO_MIGRATE" default:"false"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}

	missing := []string{}
	legacyValues := map[string]string{
		EnvDBHost: db.LegacyHost,
		EnvDBUser: db.LegacyUser,
		EnvDBName: db.LegacyName,
	}
	for _, env := range legacyDBEnvVars {
		if legacyValues[env] == "" {
			missing = append(missing, env)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
	}

	userInfo := url.User(db.LegacyUser)
	if db.LegacyPassword != "" {
		userInfo = url.UserPassword(db.LegacyUser, db.LegacyPassword)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.LegacyHost, db.LegacyPort),
		Path:   db.LegacyName,
	}

	if db.LegacySSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.LegacySSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}
