package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	EnvPrefix = ""

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	EnvDBDSN  = "MONOLOGUE_DB_DSN"
	EnvDBHost = "MONOLOGUE_DB_HOST"
	EnvDBUser = "MONOLOGUE_DB_USER"
	EnvDBName = "MONOLOGUE_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}

type Config struct {
	App          AppConfig
	DB           DBConfig
	Redis        RedisConfig
	Password     PasswordConfig
	Media        MediaConfig
	Sendgrid     SendgridConfig
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
	Env          string `envconfig:"MONOLOGUE_APP_ENV" required:"true"`
	Port         string `envconfig:"MONOLOGUE_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"MONOLOGUE_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"MONOLOGUE_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"MONOLOGUE_DB_DSN"`
	Driver string `envconfig:"MONOLOGUE_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"MONOLOGUE_DB_HOST"`
	LegacyPort     int    `envconfig:"MONOLOGUE_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"MONOLOGUE_DB_USER"`
	LegacyPassword string `envconfig:"MONOLOGUE_DB_PASSWORD"`
	LegacyName     string `envconfig:"MONOLOGUE_DB_NAME"`
	LegacySSLMode  string `envconfig:"MONOLOGUE_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"MONOLOGUE_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"MONOLOGUE_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"MONOLOGUE_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"MONOLOGUE_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"MONOLOGUE_REDIS_URL"`
	Address      string        `envconfig:"MONOLOGUE_REDIS_ADDR"`
	Password     string        `envconfig:"MONOLOGUE_REDIS_PASSWORD"`
	DB           int           `envconfig:"MONOLOGUE_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"MONOLOGUE_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"MONOLOGUE_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"MONOLOGUE_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"MONOLOGUE_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"MONOLOGUE_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"MONOLOGUE_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"MONOLOGUE_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"MONOLOGUE_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"MONOLOGUE_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"MONOLOGUE_ARGON_KEY_LEN" default:"32"`
}

// MediaConfig controls where origin images live and how icons are derived.
type MediaConfig struct {
	Root             string        `envconfig:"MONOLOGUE_MEDIA_ROOT" default:"media"`
	PlaceholderImage string        `envconfig:"MONOLOGUE_MEDIA_PLACEHOLDER" default:"static/photos/fish_jellyfish.png"`
	IconQuality      int           `envconfig:"MONOLOGUE_MEDIA_ICON_QUALITY" default:"90"`
	IconCacheTTL     time.Duration `envconfig:"MONOLOGUE_MEDIA_ICON_CACHE_TTL" default:"24h"`
}

type SendgridConfig struct {
	APIKey      string `envconfig:"MONOLOGUE_SENDGRID_API_KEY"`
	DefaultFrom string `envconfig:"MONOLOGUE_SENDGRID_FROM_EMAIL"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"MONOLOGUE_AUTO_MIGRATE" default:"false"`
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
