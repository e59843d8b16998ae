package config

// EnvPrefix is handed to envconfig; every field carries an explicit key so it only
// matters for error messages.
const EnvPrefix = "RECORDS"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	DriverPostgres = "postgres"
	DriverMySQL    = "mysql"
	DriverSQLite   = "sqlite"
)

const (
	EnvAppEnv   = "RECORDS_APP_ENV"
	EnvPort     = "RECORDS_APP_PORT"
	EnvLogLevel = "RECORDS_LOG_LEVEL"

	EnvDBDSN         = "RECORDS_DB_DSN"
	EnvDBDriver      = "RECORDS_DB_DRIVER"
	EnvDBAutoMigrate = "RECORDS_DB_AUTO_MIGRATE"
	EnvDBHost        = "RECORDS_DB_HOST"
	EnvDBPort        = "RECORDS_DB_PORT"
	EnvDBUser        = "RECORDS_DB_USER"
	EnvDBPassword    = "RECORDS_DB_PASSWORD"
	EnvDBName        = "RECORDS_DB_NAME"

	EnvRedisURL = "RECORDS_REDIS_URL"

	EnvRateLimitWindow = "RECORDS_RATE_LIMIT_WINDOW"

	EnvKafkaBrokers = "RECORDS_KAFKA_BROKERS"
	EnvKafkaTopics  = "RECORDS_KAFKA_TOPICS"
)

var discreteDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
