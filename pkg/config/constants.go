package config

// EnvPrefix is handed to envconfig; every field carries an explicit tag so the
// prefix only matters for fields without one.
const EnvPrefix = "DZORDERS"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	DBDriverPostgres = "postgres"
	DBDriverSQLite   = "sqlite"
)

const (
	EnvAppEnv   = "DZORDERS_APP_ENV"
	EnvPort     = "DZORDERS_APP_PORT"
	EnvLogLevel = "DZORDERS_LOG_LEVEL"

	EnvDBDSN    = "DZORDERS_DB_DSN"
	EnvDBDriver = "DZORDERS_DB_DRIVER"
	EnvDBHost   = "DZORDERS_DB_HOST"
	EnvDBUser   = "DZORDERS_DB_USER"
	EnvDBName   = "DZORDERS_DB_NAME"

	EnvRedisURL = "DZORDERS_REDIS_URL"

	EnvJWTSecret  = "DZORDERS_JWT_SECRET"
	EnvJWTIssuer  = "DZORDERS_JWT_ISSUER"
	EnvJWTExpMins = "DZORDERS_JWT_EXPIRATION_MINUTES"

	EnvCORSOrigins = "DZORDERS_CORS_ALLOWED_ORIGINS"

	EnvStrictTransitions = "DZORDERS_ORDER_STRICT_TRANSITIONS"
	EnvWebhookSecret     = "DZORDERS_WEBHOOK_SECRET"

	EnvYalidineAPIKey = "DZORDERS_YALIDINE_API_KEY"
	EnvAramexUserName = "DZORDERS_ARAMEX_USERNAME"

	EnvSheetsSpreadsheetID = "DZORDERS_GOOGLE_SHEETS_SPREADSHEET_ID"
	EnvSheetsAPIKey        = "DZORDERS_GOOGLE_SHEETS_API_KEY"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
