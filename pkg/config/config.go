package config

import (
	"fmt"
	"net"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App       AppConfig
	DB        DBConfig
	Redis     RedisConfig
	RateLimit RateLimitConfig
	Kafka     KafkaConfig
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

// ConsumerConfig is the subset the CDC consumer needs; it has no database.
type ConsumerConfig struct {
	App   AppConfig
	Kafka KafkaConfig
}

// LoadConsumer reads ConsumerConfig from the environment.
func LoadConsumer() (*ConsumerConfig, error) {
	var cfg ConsumerConfig
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return &cfg, nil
}

type AppConfig struct {
	Env             string        `envconfig:"RECORDS_APP_ENV" default:"dev"`
	Port            string        `envconfig:"RECORDS_APP_PORT" default:"8000"`
	LogLevel        string        `envconfig:"RECORDS_LOG_LEVEL" default:"info"`
	LogWarnStack    bool          `envconfig:"RECORDS_LOG_WARN_STACK" default:"false"`
	ShutdownTimeout time.Duration `envconfig:"RECORDS_SHUTDOWN_TIMEOUT" default:"10s"`
	CORSOrigins     []string      `envconfig:"RECORDS_CORS_ORIGINS" default:"http://localhost:3000,http://localhost:5173"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN         string `envconfig:"RECORDS_DB_DSN"`
	Driver      string `envconfig:"RECORDS_DB_DRIVER" default:"postgres"`
	AutoMigrate bool   `envconfig:"RECORDS_DB_AUTO_MIGRATE" default:"false"`

	Host     string `envconfig:"RECORDS_DB_HOST"`
	Port     int    `envconfig:"RECORDS_DB_PORT"`
	User     string `envconfig:"RECORDS_DB_USER"`
	Password string `envconfig:"RECORDS_DB_PASSWORD"`
	Name     string `envconfig:"RECORDS_DB_NAME"`
	SSLMode  string `envconfig:"RECORDS_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"RECORDS_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"RECORDS_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"RECORDS_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"RECORDS_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

// NormalizedDriver returns the lower-cased driver name, defaulting to postgres.
func (db DBConfig) NormalizedDriver() string {
	driver := strings.ToLower(strings.TrimSpace(db.Driver))
	if driver == "" {
		return DriverPostgres
	}
	return driver
}

type RedisConfig struct {
	URL          string        `envconfig:"RECORDS_REDIS_URL"`
	Address      string        `envconfig:"RECORDS_REDIS_ADDR"`
	Password     string        `envconfig:"RECORDS_REDIS_PASSWORD"`
	DB           int           `envconfig:"RECORDS_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"RECORDS_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"RECORDS_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"RECORDS_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"RECORDS_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"RECORDS_REDIS_WRITE_TIMEOUT" default:"5s"`
}

// Enabled reports whether a Redis endpoint was configured.
func (r RedisConfig) Enabled() bool {
	return strings.TrimSpace(r.URL) != "" || strings.TrimSpace(r.Address) != ""
}

type RateLimitConfig struct {
	Window           time.Duration `envconfig:"RECORDS_RATE_LIMIT_WINDOW" default:"1m"`
	WriteIPLimit     int           `envconfig:"RECORDS_RATE_LIMIT_WRITE_IP_LIMIT" default:"120"`
	CreateEmailLimit int           `envconfig:"RECORDS_RATE_LIMIT_CREATE_EMAIL_LIMIT" default:"20"`
}

type KafkaConfig struct {
	Brokers       []string      `envconfig:"RECORDS_KAFKA_BROKERS" default:"kafka:9092"`
	GroupID       string        `envconfig:"RECORDS_KAFKA_GROUP_ID" default:"cdc-consumer-group"`
	ClientID      string        `envconfig:"RECORDS_KAFKA_CLIENT_ID" default:"cdc-consumer"`
	Topics        []string      `envconfig:"RECORDS_KAFKA_TOPICS" default:"users,orders"`
	ConnectTries  int           `envconfig:"RECORDS_KAFKA_CONNECT_TRIES" default:"30"`
	ConnectPause  time.Duration `envconfig:"RECORDS_KAFKA_CONNECT_PAUSE" default:"5s"`
	HandleTimeout time.Duration `envconfig:"RECORDS_KAFKA_HANDLE_TIMEOUT" default:"10s"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}

	driver := db.NormalizedDriver()
	if driver == DriverSQLite {
		if db.Name == "" {
			return fmt.Errorf("either %s or %s are required for sqlite", EnvDBDSN, EnvDBName)
		}
		db.DSN = db.Name
		return nil
	}

	missing := []string{}
	discreteValues := map[string]string{
		EnvDBHost: db.Host,
		EnvDBUser: db.User,
		EnvDBName: db.Name,
	}
	for _, env := range discreteDBEnvVars {
		if discreteValues[env] == "" {
			missing = append(missing, env)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
	}

	switch driver {
	case DriverMySQL:
		db.DSN = db.mysqlDSN()
	case DriverPostgres:
		db.DSN = db.postgresDSN()
	default:
		return fmt.Errorf("unsupported %s %q", EnvDBDriver, db.Driver)
	}
	return nil
}

func (db *DBConfig) postgresDSN() string {
	userInfo := url.User(db.User)
	if db.Password != "" {
		userInfo = url.UserPassword(db.User, db.Password)
	}

	port := db.Port
	if port == 0 {
		port = 5432
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.Host, port),
		Path:   db.Name,
	}

	if db.SSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.SSLMode)
		u.RawQuery = q.Encode()
	}

	return u.String()
}

// mysqlDSN builds a go-sql-driver DSN; TiDB listens on 4000 by default.
func (db *DBConfig) mysqlDSN() string {
	port := db.Port
	if port == 0 {
		port = 4000
	}
	mc := mysql.NewConfig()
	mc.User = db.User
	mc.Passwd = db.Password
	mc.Net = "tcp"
	mc.Addr = net.JoinHostPort(db.Host, strconv.Itoa(port))
	mc.DBName = db.Name
	mc.ParseTime = true
	mc.Loc = time.UTC
	return mc.FormatDSN()
}
