package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	DriverFile     = "file"
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

const (
	defaultConfirmedURL = "https://raw.githubusercontent.com/CSSEGISandData/COVID-19/master/csse_covid_19_data/csse_covid_19_time_series/time_series_covid19_confirmed_global.csv"
	defaultDeathsURL    = "https://raw.githubusercontent.com/CSSEGISandData/COVID-19/master/csse_covid_19_data/csse_covid_19_time_series/time_series_covid19_deaths_global.csv"
	defaultRecoveredURL = "https://raw.githubusercontent.com/CSSEGISandData/COVID-19/master/csse_covid_19_data/csse_covid_19_time_series/time_series_covid19_recovered_global.csv"
)

type Config struct {
	Server ServerConfig `mapstructure:"server"`
	Source SourceConfig `mapstructure:"source"`
	Store  StoreConfig  `mapstructure:"store"`
	Log    LogConfig    `mapstructure:"log"`
}

type ServerConfig struct {
	Addr         string   `mapstructure:"addr" validate:"required"`
	AllowOrigins []string `mapstructure:"allow_origins"`
}

// SourceConfig points at the three published time-series tables.
type SourceConfig struct {
	ConfirmedURL string        `mapstructure:"confirmed_url" validate:"required,url"`
	DeathsURL    string        `mapstructure:"deaths_url" validate:"required,url"`
	RecoveredURL string        `mapstructure:"recovered_url" validate:"required,url"`
	Timeout      time.Duration `mapstructure:"timeout" validate:"gte=0"`
	MaxRetries   uint64        `mapstructure:"max_retries"`
	UserAgent    string        `mapstructure:"user_agent"`
}

type StoreConfig struct {
	Driver      string `mapstructure:"driver" validate:"oneof=file postgres sqlite"`
	Dir         string `mapstructure:"dir" validate:"required_if=Driver file"`
	DatabaseURL string `mapstructure:"database_url" validate:"required_unless=Driver file"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format" validate:"oneof=json console"`
}

// Load reads config.yaml (optional), a .env file (optional) and COVID_* env vars.
func Load(paths ...string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	for _, p := range paths {
		v.AddConfigPath(p)
	}

	v.SetEnvPrefix("COVID")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.addr", ":8050")
	v.SetDefault("server.allow_origins", []string{"*"})
	v.SetDefault("source.confirmed_url", defaultConfirmedURL)
	v.SetDefault("source.deaths_url", defaultDeathsURL)
	v.SetDefault("source.recovered_url", defaultRecoveredURL)
	v.SetDefault("source.timeout", 60*time.Second)
	v.SetDefault("source.max_retries", 0)
	v.SetDefault("source.user_agent", "covid-dashboard/1.0")
	v.SetDefault("store.driver", DriverFile)
	v.SetDefault("store.dir", "data")
	v.SetDefault("store.database_url", "")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
}

func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("validate config: %w", err)
	}
	return nil
}
