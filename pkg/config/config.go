package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App          AppConfig
	Service      ServiceConfig
	DB           DBConfig
	Redis        RedisConfig
	JWT          JWTConfig
	CORS         CORSConfig
	FeatureFlags FeatureFlagsConfig
	Webhook      WebhookConfig
	Intake       IntakeConfig
	Yalidine     YalidineConfig
	Aramex       AramexConfig
	GoogleSheets GoogleSheetsConfig
	Cron         CronConfig
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
	Env          string `envconfig:"DZORDERS_APP_ENV" required:"true"`
	Port         string `envconfig:"DZORDERS_APP_PORT" default:"8080"`
	LogLevel     string `envconfig:"DZORDERS_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"DZORDERS_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type ServiceConfig struct {
	Kind string `envconfig:"DZORDERS_SERVICE_KIND" default:"api"`
}

type DBConfig struct {
	DSN    string `envconfig:"DZORDERS_DB_DSN"`
	Driver string `envconfig:"DZORDERS_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"DZORDERS_DB_HOST"`
	LegacyPort     int    `envconfig:"DZORDERS_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"DZORDERS_DB_USER"`
	LegacyPassword string `envconfig:"DZORDERS_DB_PASSWORD"`
	LegacyName     string `envconfig:"DZORDERS_DB_NAME"`
	LegacySSLMode  string `envconfig:"DZORDERS_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"DZORDERS_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"DZORDERS_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"DZORDERS_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"DZORDERS_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

// IsSQLite reports whether the local sqlite driver was requested.
func (db DBConfig) IsSQLite() bool {
	return strings.EqualFold(strings.TrimSpace(db.Driver), DBDriverSQLite)
}

type RedisConfig struct {
	URL          string        `envconfig:"DZORDERS_REDIS_URL"`
	Address      string        `envconfig:"DZORDERS_REDIS_ADDR"`
	Password     string        `envconfig:"DZORDERS_REDIS_PASSWORD"`
	DB           int           `envconfig:"DZORDERS_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"DZORDERS_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"DZORDERS_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"DZORDERS_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"DZORDERS_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"DZORDERS_REDIS_WRITE_TIMEOUT" default:"5s"`
}

// Enabled reports whether any redis endpoint is configured.
func (r RedisConfig) Enabled() bool {
	return r.URL != "" || r.Address != ""
}

// JWTConfig drives optional operator auth. An empty secret disables it.
type JWTConfig struct {
	Secret            string `envconfig:"DZORDERS_JWT_SECRET"`
	Issuer            string `envconfig:"DZORDERS_JWT_ISSUER" default:"dzorders"`
	ExpirationMinutes int    `envconfig:"DZORDERS_JWT_EXPIRATION_MINUTES" default:"720"`
}

func (j JWTConfig) Enabled() bool {
	return strings.TrimSpace(j.Secret) != ""
}

type CORSConfig struct {
	AllowedOrigins []string `envconfig:"DZORDERS_CORS_ALLOWED_ORIGINS"`
}

type FeatureFlagsConfig struct {
	AutoMigrate       bool `envconfig:"DZORDERS_AUTO_MIGRATE" default:"false"`
	StrictTransitions bool `envconfig:"DZORDERS_ORDER_STRICT_TRANSITIONS" default:"false"`
}

type WebhookConfig struct {
	Secret         string        `envconfig:"DZORDERS_WEBHOOK_SECRET"`
	IdempotencyTTL time.Duration `envconfig:"DZORDERS_WEBHOOK_IDEMPOTENCY_TTL" default:"24h"`
}

type IntakeConfig struct {
	DefaultCountryCode string `envconfig:"DZORDERS_INTAKE_COUNTRY_CODE" default:"213"`
}

type YalidineConfig struct {
	APIKey  string `envconfig:"DZORDERS_YALIDINE_API_KEY"`
	BaseURL string `envconfig:"DZORDERS_YALIDINE_BASE_URL" default:"https://api.yalidine.app/v1"`
}

func (y YalidineConfig) Enabled() bool {
	return strings.TrimSpace(y.APIKey) != ""
}

type AramexConfig struct {
	UserName           string `envconfig:"DZORDERS_ARAMEX_USERNAME"`
	Password           string `envconfig:"DZORDERS_ARAMEX_PASSWORD"`
	AccountNumber      string `envconfig:"DZORDERS_ARAMEX_ACCOUNT_NUMBER"`
	AccountPin         string `envconfig:"DZORDERS_ARAMEX_ACCOUNT_PIN"`
	AccountEntity      string `envconfig:"DZORDERS_ARAMEX_ACCOUNT_ENTITY" default:"ALG"`
	AccountCountryCode string `envconfig:"DZORDERS_ARAMEX_ACCOUNT_COUNTRY_CODE" default:"DZ"`
	BaseURL            string `envconfig:"DZORDERS_ARAMEX_BASE_URL" default:"https://ws.aramex.net/ShippingAPI.V2/Shipping/Service_1_0.svc"`
}

func (a AramexConfig) Enabled() bool {
	return strings.TrimSpace(a.UserName) != "" && strings.TrimSpace(a.Password) != ""
}

type GoogleSheetsConfig struct {
	SpreadsheetID   string `envconfig:"DZORDERS_GOOGLE_SHEETS_SPREADSHEET_ID"`
	APIKey          string `envconfig:"DZORDERS_GOOGLE_SHEETS_API_KEY"`
	CredentialsJSON string `envconfig:"DZORDERS_GOOGLE_SHEETS_CREDENTIALS_JSON"`
	DefaultRange    string `envconfig:"DZORDERS_GOOGLE_SHEETS_RANGE" default:"Sheet1!A:Z"`
}

func (g GoogleSheetsConfig) Enabled() bool {
	return g.SpreadsheetID != "" && (g.APIKey != "" || g.CredentialsJSON != "")
}

type CronConfig struct {
	TrackingSyncInterval time.Duration `envconfig:"DZORDERS_CRON_TRACKING_SYNC_INTERVAL" default:"1h"`
	TrackingSyncBatch    int           `envconfig:"DZORDERS_CRON_TRACKING_SYNC_BATCH" default:"200"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}
	if db.IsSQLite() {
		db.DSN = "file:dzorders.db?cache=shared"
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
