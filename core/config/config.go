package config

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server      ServerConfig      `mapstructure:"server"`
	Database    DatabaseConfig    `mapstructure:"database"`
	Redis       RedisConfig       `mapstructure:"redis"`
	JWT         JWTConfig         `mapstructure:"jwt"`
	Reservation ReservationConfig `mapstructure:"reservation"`
	Worker      WorkerConfig      `mapstructure:"worker"`
	Assets      AssetsConfig      `mapstructure:"assets"`
	Log         LogConfig         `mapstructure:"log"`
}

type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	RequestTimeout  time.Duration `mapstructure:"request_timeout"`
}

type DatabaseConfig struct {
	Host             string        `mapstructure:"host"`
	Port             int           `mapstructure:"port"`
	User             string        `mapstructure:"user"`
	Password         string        `mapstructure:"password"`
	DBName           string        `mapstructure:"dbname"`
	SSLMode          string        `mapstructure:"sslmode"`
	MaxOpenConns     int           `mapstructure:"max_open_conns"`
	MaxIdleConns     int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime  time.Duration `mapstructure:"conn_max_lifetime"`
	StatementTimeout time.Duration `mapstructure:"statement_timeout"`
	MigrateOnStart   bool          `mapstructure:"migrate_on_start"`
}

type RedisConfig struct {
	Addr        string        `mapstructure:"addr"`
	Password    string        `mapstructure:"password"`
	DB          int           `mapstructure:"db"`
	TagCacheTTL time.Duration `mapstructure:"tag_cache_ttl"`
}

type JWTConfig struct {
	Secret    string        `mapstructure:"secret"`
	AccessTTL time.Duration `mapstructure:"access_ttl"`
	Issuer    string        `mapstructure:"issuer"`
}

// ReservationConfig describes the bookable horizon and the slot grid inside it.
type ReservationConfig struct {
	TermStart        time.Time     `mapstructure:"term_start"`
	TermEnd          time.Time     `mapstructure:"term_end"`
	SlotWidth        time.Duration `mapstructure:"slot_width"`
	SlotCapacity     int64         `mapstructure:"slot_capacity"`
	ProvisionOnStart bool          `mapstructure:"provision_on_start"`
	LockTimeout      time.Duration `mapstructure:"lock_timeout"`
	RateLimitRPS     float64       `mapstructure:"rate_limit_rps"`
	RateLimitBurst   int           `mapstructure:"rate_limit_burst"`
}

type WorkerConfig struct {
	Enabled     bool   `mapstructure:"enabled"`
	Concurrency int    `mapstructure:"concurrency"`
	Queue       string `mapstructure:"queue"`
	MaxRetry    int    `mapstructure:"max_retry"`
}

type AssetsConfig struct {
	FallbackIconPath string `mapstructure:"fallback_icon_path"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

var (
	mu  sync.RWMutex
	cfg *Config
)

// Init loads .env, config.yaml and APP_* environment variables and stores the
// result for Get.
func Init() (*Config, error) {
	// .env is optional
	_ = godotenv.Load()

	loaded, err := Load(viper.New(), ".", "./config")
	if err != nil {
		return nil, err
	}

	mu.Lock()
	cfg = loaded
	mu.Unlock()
	return loaded, nil
}

// Load reads configuration into v from the given search paths. A missing
// config file is not an error.
func Load(v *viper.Viper, paths ...string) (*Config, error) {
	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	for _, p := range paths {
		v.AddConfigPath(p)
	}

	v.SetEnvPrefix("APP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	out := new(Config)
	hook := viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToTimeHookFunc(time.RFC3339),
		mapstructure.StringToSliceHookFunc(","),
	))
	if err := v.Unmarshal(out, hook); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	if err := out.Validate(); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Config) Validate() error {
	r := c.Reservation
	if !r.TermEnd.After(r.TermStart) {
		return fmt.Errorf("reservation.term_end (%s) must be after reservation.term_start (%s)", r.TermEnd, r.TermStart)
	}
	if r.SlotWidth <= 0 {
		return fmt.Errorf("reservation.slot_width must be positive, got %s", r.SlotWidth)
	}
	if r.SlotCapacity < 0 {
		return fmt.Errorf("reservation.slot_capacity must not be negative, got %d", r.SlotCapacity)
	}
	if c.JWT.Secret == "" {
		return errors.New("jwt.secret is required")
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.shutdown_timeout", "15s")
	v.SetDefault("server.request_timeout", "10s")

	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "isucon")
	v.SetDefault("database.password", "isucon")
	v.SetDefault("database.dbname", "isupipe")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_open_conns", 25)
	v.SetDefault("database.max_idle_conns", 10)
	v.SetDefault("database.conn_max_lifetime", "30m")
	v.SetDefault("database.statement_timeout", "0s")
	v.SetDefault("database.migrate_on_start", true)

	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.tag_cache_ttl", "10m")

	v.SetDefault("jwt.secret", "")
	v.SetDefault("jwt.access_ttl", "24h")
	v.SetDefault("jwt.issuer", "livestream-api")

	v.SetDefault("reservation.term_start", "2023-11-25T01:00:00Z")
	v.SetDefault("reservation.term_end", "2024-11-25T01:00:00Z")
	v.SetDefault("reservation.slot_width", "1h")
	v.SetDefault("reservation.slot_capacity", 2)
	v.SetDefault("reservation.provision_on_start", true)
	v.SetDefault("reservation.lock_timeout", "3s")
	v.SetDefault("reservation.rate_limit_rps", 5.0)
	v.SetDefault("reservation.rate_limit_burst", 10)

	v.SetDefault("worker.enabled", true)
	v.SetDefault("worker.concurrency", 5)
	v.SetDefault("worker.queue", "default")
	v.SetDefault("worker.max_retry", 5)

	v.SetDefault("assets.fallback_icon_path", "./assets/NoImage.jpg")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
}

// Get returns the loaded configuration. It panics if Init has not run.
func Get() *Config {
	mu.RLock()
	defer mu.RUnlock()
	if cfg == nil {
		panic("config: Get called before Init")
	}
	return cfg
}

func GetSafe() (*Config, bool) {
	mu.RLock()
	defer mu.RUnlock()
	return cfg, cfg != nil
}
