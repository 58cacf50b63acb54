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
	FeatureFlags  FeatureFlagsConfig
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
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"PROCURE_APP_ENV" required:"true"`
	Port         string `envconfig:"PROCURE_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"PROCURE_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"PROCURE_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"PROCURE_DB_DSN"`
	Driver string `envconfig:"PROCURE_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"PROCURE_DB_HOST"`
	LegacyPort     int    `envconfig:"PROCURE_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"PROCURE_DB_USER"`
	LegacyPassword string `envconfig:"PROCURE_DB_PASSWORD"`
	LegacyName     string `envconfig:"PROCURE_DB_NAME"`
	LegacySSLMode  string `envconfig:"PROCURE_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"PROCURE_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"PROCURE_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"PROCURE_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"PROCURE_DB_CONN_MAX_IDLE_TIME" default:"10m"`

	ConnectAttempts uint64        `envconfig:"PROCURE_DB_CONNECT_ATTEMPTS" default:"5"`
	ConnectBackoff  time.Duration `envconfig:"PROCURE_DB_CONNECT_BACKOFF" default:"500ms"`
}

type RedisConfig struct {
	URL          string        `envconfig:"PROCURE_REDIS_URL" required:"true"`
	Address      string        `envconfig:"PROCURE_REDIS_ADDR"`
	Password     string        `envconfig:"PROCURE_REDIS_PASSWORD"`
	DB           int           `envconfig:"PROCURE_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"PROCURE_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"PROCURE_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"PROCURE_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"PROCURE_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"PROCURE_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret                 string `envconfig:"PROCURE_JWT_SECRET" required:"true"`
	Issuer                 string `envconfig:"PROCURE_JWT_ISSUER" required:"true"`
	ExpirationMinutes      int    `envconfig:"PROCURE_JWT_EXPIRATION_MINUTES" required:"true"`
	RefreshTokenTTLMinutes int    `envconfig:"PROCURE_REFRESH_TOKEN_TTL_MINUTES" default:"43200"`
}

// RefreshTokenTTL returns the refresh token TTL configured in minutes.
func (j JWTConfig) RefreshTokenTTL() time.Duration {
	if j.RefreshTokenTTLMinutes <= 0 {
		return 0
	}
	return time.Duration(j.RefreshTokenTTLMinutes) * time.Minute
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"PROCURE_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"PROCURE_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"PROCURE_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"PROCURE_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"PROCURE_ARGON_KEY_LEN" default:"32"`
}

type AuthRateLimitConfig struct {
	LoginWindow     time.Duration `envconfig:"PROCURE_AUTH_RATE_LIMIT_LOGIN_WINDOW" default:"1m"`
	LoginEmailLimit int           `envconfig:"PROCURE_AUTH_RATE_LIMIT_LOGIN_EMAIL_LIMIT" default:"5"`
	LoginIPLimit    int           `envconfig:"PROCURE_AUTH_RATE_LIMIT_LOGIN_IP_LIMIT" default:"20"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"PROCURE_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"PROCURE_AUTO_MIGRATE" default:"false"`
}

type CronConfig struct {
	NotificationRetentionDays int           `envconfig:"PROCURE_CRON_NOTIFICATION_RETENTION_DAYS" default:"90"`
	PendingReminderAge        time.Duration `envconfig:"PROCURE_CRON_PENDING_REMINDER_AGE" default:"72h"`
	TickInterval              time.Duration `envconfig:"PROCURE_CRON_TICK_INTERVAL" default:"1h"`
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
