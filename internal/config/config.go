package config

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	RunAddress    string `env:"RUN_ADDRESS"`
	DatabaseDSN   string `env:"DATABASE_URI"`
	MigrationsDir string `env:"MIGRATIONS_DIR"`
	JWTUserSecret string `env:"JWT_USER_SECRET"`

	// RedisAddr пустой адрес - рейтинг читается из postgres без кэша.
	RedisAddr       string        `env:"REDIS_ADDR"`
	RedisPassword   string        `env:"REDIS_PASSWORD"`
	RedisDB         int           `env:"REDIS_DB"`
	RankingCacheTTL time.Duration `env:"RANKING_CACHE_TTL"`

	RateLimitRPS    float64       `env:"RATE_LIMIT_RPS"`
	RateLimitBurst  int           `env:"RATE_LIMIT_BURST"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT"`
}

const (
	defaultRankingCacheTTL = 10 * time.Minute
	defaultRateLimitRPS    = 20
	defaultRateLimitBurst  = 40
	defaultShutdownTimeout = 10 * time.Second
)

// LoadConfig собирает конфиг из переменных окружения и флагов. Переменные окружения приоритетнее флагов.
// Файл .env, если есть, подгружается в окружение до разбора.
func LoadConfig() (*Config, error) {
	return loadConfig(flag.CommandLine, os.Args[1:])
}

func loadConfig(fs *flag.FlagSet, arguments []string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %s", err.Error())
	}

	var flagsConfig, envConfig Config

	if envParseErr := env.Parse(&envConfig); envParseErr != nil {
		return nil, fmt.Errorf("parse env config: %s", envParseErr.Error())
	}

	if err := loadFlags(fs, arguments, &flagsConfig); err != nil {
		return nil, fmt.Errorf("parse flags: %s", err.Error())
	}

	conf := mergeConfig(&envConfig, &flagsConfig)
	if conf.DatabaseDSN == "" {
		return nil, errors.New("database DSN is not set")
	}
	if conf.JWTUserSecret == "" {
		return nil, errors.New("jwt secret is not set")
	}
	return conf, nil
}

func MustLoadConfig() *Config {
	config, err := LoadConfig()
	if err != nil {
		panic(err)
	}
	return config
}

func loadFlags(fs *flag.FlagSet, arguments []string, flagConfig *Config) error {
	fs.StringVar(&flagConfig.RunAddress, "a", "localhost:8080", "Run address in format host:port")
	fs.StringVar(&flagConfig.DatabaseDSN, "d", "", "Database DSN")
	fs.StringVar(&flagConfig.MigrationsDir, "m", "internal/db/migrations", "Database migrations directory")
	fs.StringVar(&flagConfig.JWTUserSecret, "j", "", "JWT secret for user tokens")
	fs.StringVar(&flagConfig.RedisAddr, "r", "", "Redis address for ranking cache, empty disables cache")
	fs.IntVar(&flagConfig.RedisDB, "redis-db", 0, "Redis database number")
	fs.DurationVar(&flagConfig.RankingCacheTTL, "ranking-ttl", defaultRankingCacheTTL, "Ranking cache TTL")
	fs.Float64Var(&flagConfig.RateLimitRPS, "rps", defaultRateLimitRPS, "Requests per second per client ip, 0 disables limit")
	fs.IntVar(&flagConfig.RateLimitBurst, "burst", defaultRateLimitBurst, "Rate limit burst")
	fs.DurationVar(&flagConfig.ShutdownTimeout, "shutdown-timeout", defaultShutdownTimeout, "Graceful shutdown timeout")

	return fs.Parse(arguments) //nolint:wrapcheck
}

func mergeConfig(envConfig, flagsConfig *Config) *Config {
	return &Config{
		RunAddress:    defaultIfBlank(envConfig.RunAddress, flagsConfig.RunAddress),
		DatabaseDSN:   defaultIfBlank(envConfig.DatabaseDSN, flagsConfig.DatabaseDSN),
		MigrationsDir: defaultIfBlank(envConfig.MigrationsDir, flagsConfig.MigrationsDir),
		JWTUserSecret: defaultIfBlank(envConfig.JWTUserSecret, flagsConfig.JWTUserSecret),

		RedisAddr:       defaultIfBlank(envConfig.RedisAddr, flagsConfig.RedisAddr),
		RedisPassword:   defaultIfBlank(envConfig.RedisPassword, flagsConfig.RedisPassword),
		RedisDB:         defaultIfBlank(envConfig.RedisDB, flagsConfig.RedisDB),
		RankingCacheTTL: defaultIfBlank(envConfig.RankingCacheTTL, flagsConfig.RankingCacheTTL),

		RateLimitRPS:    defaultIfBlank(envConfig.RateLimitRPS, flagsConfig.RateLimitRPS),
		RateLimitBurst:  defaultIfBlank(envConfig.RateLimitBurst, flagsConfig.RateLimitBurst),
		ShutdownTimeout: defaultIfBlank(envConfig.ShutdownTimeout, flagsConfig.ShutdownTimeout),
	}
}

func defaultIfBlank[T comparable](value T, defaultValue T) T {
	var zero T
	if value == zero {
		return defaultValue
	}
	return value
}
