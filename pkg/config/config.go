package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App           AppConfig
	DB            DBConfig
	Redis         RedisConfig
	JWT           JWTConfig
	Password      PasswordConfig
	AuthRateLimit AuthRateLimitConfig
	Orders        OrdersConfig
	Reviews       ReviewsConfig
	FeatureFlags  FeatureFlagsConfig
	GCP           GCPConfig
	PubSub        PubSubConfig
	Outbox        OutboxConfig
	Cron          CronConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	if _, err := cfg.Orders.Location(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string   `envconfig:"EXPRESSKART_APP_ENV" required:"true"`
	Port         string   `envconfig:"EXPRESSKART_APP_PORT" required:"true"`
	LogLevel     string   `envconfig:"EXPRESSKART_LOG_LEVEL" default:"info"`
	LogWarnStack bool     `envconfig:"EXPRESSKART_LOG_WARN_STACK" default:"false"`
	CORSOrigins  []string `envconfig:"EXPRESSKART_CORS_ORIGINS" default:"http://localhost:3000"`
	// MetricsAddr is where worker binaries expose /metrics; empty disables it.
	MetricsAddr string `envconfig:"EXPRESSKART_WORKER_METRICS_ADDR" default:":9091"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

type DBConfig struct {
	DSN    string `envconfig:"EXPRESSKART_DB_DSN"`
	Driver string `envconfig:"EXPRESSKART_DB_DRIVER" default:"postgres"`

	Host     string `envconfig:"EXPRESSKART_DB_HOST"`
	Port     int    `envconfig:"EXPRESSKART_DB_PORT" default:"5432"`
	User     string `envconfig:"EXPRESSKART_DB_USER"`
	Password string `envconfig:"EXPRESSKART_DB_PASSWORD"`
	Name     string `envconfig:"EXPRESSKART_DB_NAME"`
	SSLMode  string `envconfig:"EXPRESSKART_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"EXPRESSKART_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"EXPRESSKART_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"EXPRESSKART_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"EXPRESSKART_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"EXPRESSKART_REDIS_URL" required:"true"`
	Address      string        `envconfig:"EXPRESSKART_REDIS_ADDR"`
	Password     string        `envconfig:"EXPRESSKART_REDIS_PASSWORD"`
	DB           int           `envconfig:"EXPRESSKART_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"EXPRESSKART_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"EXPRESSKART_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"EXPRESSKART_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"EXPRESSKART_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"EXPRESSKART_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"EXPRESSKART_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"EXPRESSKART_JWT_ISSUER" required:"true"`
	ExpirationMinutes int    `envconfig:"EXPRESSKART_JWT_EXPIRATION_MINUTES" required:"true"`
}

// TTL returns the access token lifetime.
func (j JWTConfig) TTL() time.Duration {
	if j.ExpirationMinutes <= 0 {
		return 0
	}
	return time.Duration(j.ExpirationMinutes) * time.Minute
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"EXPRESSKART_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"EXPRESSKART_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"EXPRESSKART_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"EXPRESSKART_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"EXPRESSKART_ARGON_KEY_LEN" default:"32"`
}

type AuthRateLimitConfig struct {
	LoginWindow        time.Duration `envconfig:"EXPRESSKART_AUTH_RATE_LIMIT_LOGIN_WINDOW" default:"1m"`
	LoginEmailLimit    int           `envconfig:"EXPRESSKART_AUTH_RATE_LIMIT_LOGIN_EMAIL_LIMIT" default:"5"`
	LoginIPLimit       int           `envconfig:"EXPRESSKART_AUTH_RATE_LIMIT_LOGIN_IP_LIMIT" default:"20"`
	RegisterWindow     time.Duration `envconfig:"EXPRESSKART_AUTH_RATE_LIMIT_REGISTER_WINDOW" default:"5m"`
	RegisterEmailLimit int           `envconfig:"EXPRESSKART_AUTH_RATE_LIMIT_REGISTER_EMAIL_LIMIT" default:"3"`
	RegisterIPLimit    int           `envconfig:"EXPRESSKART_AUTH_RATE_LIMIT_REGISTER_IP_LIMIT" default:"20"`
}

type OrdersConfig struct {
	ExpressShippingFee  string        `envconfig:"EXPRESSKART_SHIPPING_EXPRESS_FEE" default:"100"`
	StandardShippingFee string        `envconfig:"EXPRESSKART_SHIPPING_STANDARD_FEE" default:"50"`
	TaxRatePercent      string        `envconfig:"EXPRESSKART_TAX_RATE_PERCENT" default:"0"`
	NumberMaxAttempts   int           `envconfig:"EXPRESSKART_ORDER_NUMBER_MAX_ATTEMPTS" default:"5"`
	NumberTimezone      string        `envconfig:"EXPRESSKART_ORDER_NUMBER_TZ" default:"Asia/Kolkata"`
	IdempotencyTTL      time.Duration `envconfig:"EXPRESSKART_ORDER_IDEMPOTENCY_TTL" default:"24h"`
}

// Location resolves the timezone that defines the daily order-number boundary.
func (o OrdersConfig) Location() (*time.Location, error) {
	name := strings.TrimSpace(o.NumberTimezone)
	if name == "" {
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("loading %s %q: %w", EnvOrderNumberTZ, name, err)
	}
	return loc, nil
}

type ReviewsConfig struct {
	RequireModeration bool `envconfig:"EXPRESSKART_REVIEWS_REQUIRE_MODERATION" default:"false"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"EXPRESSKART_AUTO_MIGRATE" default:"false"`
	Outbox      bool `envconfig:"EXPRESSKART_FEATURE_OUTBOX" default:"true"`
}

type GCPConfig struct {
	ProjectID              string `envconfig:"EXPRESSKART_GCP_PROJECT_ID"`
	CredentialsJSON        string `envconfig:"EXPRESSKART_GCP_CREDENTIALS_JSON"`
	ApplicationCredentials string `envconfig:"EXPRESSKART_GOOGLE_APPLICATION_CREDENTIALS"`
}

type PubSubConfig struct {
	OrdersTopic string `envconfig:"EXPRESSKART_PUBSUB_ORDERS_TOPIC" default:"ek-order-events"`
}

type OutboxConfig struct {
	BatchSize      int           `envconfig:"EXPRESSKART_OUTBOX_PUBLISH_BATCH_SIZE" default:"50"`
	PollIntervalMS int           `envconfig:"EXPRESSKART_OUTBOX_PUBLISH_POLL_MS" default:"500"`
	MaxAttempts    int           `envconfig:"EXPRESSKART_OUTBOX_MAX_ATTEMPTS" default:"10"`
	Retention      time.Duration `envconfig:"EXPRESSKART_OUTBOX_RETENTION" default:"720h"`
}

type CronConfig struct {
	Interval time.Duration `envconfig:"EXPRESSKART_CRON_INTERVAL" default:"15m"`
	LockTTL  time.Duration `envconfig:"EXPRESSKART_CRON_LOCK_TTL" default:"10m"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}

	missing := []string{}
	values := map[string]string{
		EnvDBHost: db.Host,
		EnvDBUser: db.User,
		EnvDBName: db.Name,
	}
	for _, env := range dbPartEnvVars {
		if values[env] == "" {
			missing = append(missing, env)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
	}

	userInfo := url.User(db.User)
	if db.Password != "" {
		userInfo = url.UserPassword(db.User, db.Password)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.Host, db.Port),
		Path:   db.Name,
	}

	if db.SSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.SSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}
