package config

import (
	"os"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"codeberg.org/mikkl/hwmond/internal/errors"
)

const (
	DefaultLogLevel = "info"

	defaultTickIntervalMS     = 50
	defaultTelemetryTimeoutMS = 5000
	defaultCooldownMS         = 3000
	defaultClockRefreshMS     = 60000
	defaultEnvironRefreshMS   = 900000
	defaultFetchTimeoutMS     = 5000
	defaultAssociateTimeoutMS = 10000

	defaultListenAddr  = ":5577"
	defaultPortalAddr  = ":8080"
	defaultCredentials = "/var/lib/hwmond/credentials.json"
	defaultHistoryDB   = "/var/lib/hwmond/history.db"
)

type Config struct {
	TickIntervalMS     int    `mapstructure:"tick_interval_ms"`
	TelemetryTimeoutMS int    `mapstructure:"telemetry_timeout_ms"`
	CooldownMS         int    `mapstructure:"cooldown_ms"`
	ClockRefreshMS     int    `mapstructure:"clock_refresh_ms"`
	EnvironRefreshMS   int    `mapstructure:"environ_refresh_ms"`
	FetchTimeoutMS     int    `mapstructure:"fetch_timeout_ms"`
	AssociateTimeoutMS int    `mapstructure:"associate_timeout_ms"`
	ListenAddr         string `mapstructure:"listen_addr"`
	PortalAddr         string `mapstructure:"portal_addr"`
	Credentials        string `mapstructure:"credentials"`
	History            bool   `mapstructure:"history"`
	HistoryDB          string `mapstructure:"history_db"`
	LogLevel           string `mapstructure:"log_level"`
	LogFile            string `mapstructure:"log_file"`
}

// Load reads configuration from /etc/hwmond.conf (or HWMOND_CONFIG),
// environment variables prefixed HWMOND, and command line flags, in
// ascending order of precedence.
func Load() (*Config, error) {
	errFactory := errors.New()

	v := viper.New()
	setDefaults(v)

	fs := pflag.NewFlagSet("hwmond", pflag.ContinueOnError)
	fs.ParseErrorsWhitelist.UnknownFlags = true
	fs.String("config", "", "Path to configuration file")
	fs.String("log-level", "", "Log level (debug, info, warning, error)")
	fs.String("listen-addr", "", "Telemetry feed listen address")
	fs.String("portal-addr", "", "Provisioning portal listen address")
	fs.Bool("history", true, "Record decoded telemetry to the history database")
	fs.String("history-db", "", "Path to the history database")
	if err := fs.Parse(os.Args[1:]); err != nil {
		return nil, errFactory.Wrap(errors.ErrBindFlags, err)
	}

	configPath, _ := fs.GetString("config")
	if configPath == "" {
		configPath = os.Getenv("HWMOND_CONFIG")
	}

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("hwmond.conf")
		v.SetConfigType("toml")
		v.AddConfigPath("/etc")
	}

	v.SetEnvPrefix("HWMOND")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, errFactory.Wrap(errors.ErrReadConfig, err)
		}
	}

	applyFlags(v, fs)

	config := &Config{}
	if err := v.Unmarshal(config); err != nil {
		return nil, errFactory.Wrap(errors.ErrInvalidConfig, err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("tick_interval_ms", defaultTickIntervalMS)
	v.SetDefault("telemetry_timeout_ms", defaultTelemetryTimeoutMS)
	v.SetDefault("cooldown_ms", defaultCooldownMS)
	v.SetDefault("clock_refresh_ms", defaultClockRefreshMS)
	v.SetDefault("environ_refresh_ms", defaultEnvironRefreshMS)
	v.SetDefault("fetch_timeout_ms", defaultFetchTimeoutMS)
	v.SetDefault("associate_timeout_ms", defaultAssociateTimeoutMS)
	v.SetDefault("listen_addr", defaultListenAddr)
	v.SetDefault("portal_addr", defaultPortalAddr)
	v.SetDefault("credentials", defaultCredentials)
	v.SetDefault("history", true)
	v.SetDefault("history_db", defaultHistoryDB)
	v.SetDefault("log_level", DefaultLogLevel)
	v.SetDefault("log_file", "")
}

// applyFlags overrides file and environment values with flags that were
// set explicitly on the command line.
func applyFlags(v *viper.Viper, fs *pflag.FlagSet) {
	overrides := map[string]string{
		"log-level":   "log_level",
		"listen-addr": "listen_addr",
		"portal-addr": "portal_addr",
		"history":     "history",
		"history-db":  "history_db",
	}
	fs.Visit(func(f *pflag.Flag) {
		if key, ok := overrides[f.Name]; ok {
			v.Set(key, f.Value.String())
		}
	})
}

func (c *Config) Validate() error {
	errFactory := errors.New()

	switch c.LogLevel {
	case "debug", "info", "warning", "error":
	default:
		return errFactory.WithData(errors.ErrInvalidLogLevel, c.LogLevel)
	}

	for _, iv := range []int{
		c.TickIntervalMS, c.TelemetryTimeoutMS, c.CooldownMS,
		c.ClockRefreshMS, c.EnvironRefreshMS, c.FetchTimeoutMS,
		c.AssociateTimeoutMS,
	} {
		if iv <= 0 {
			return errFactory.WithData(errors.ErrInvalidInterval, iv)
		}
	}

	return nil
}

func (c *Config) TickInterval() time.Duration { return ms(c.TickIntervalMS) }

func (c *Config) TelemetryTimeout() time.Duration { return ms(c.TelemetryTimeoutMS) }

func (c *Config) Cooldown() time.Duration { return ms(c.CooldownMS) }

func (c *Config) ClockRefresh() time.Duration { return ms(c.ClockRefreshMS) }

func (c *Config) EnvironRefresh() time.Duration { return ms(c.EnvironRefreshMS) }

func (c *Config) FetchTimeout() time.Duration { return ms(c.FetchTimeoutMS) }

func (c *Config) AssociateTimeout() time.Duration { return ms(c.AssociateTimeoutMS) }

func ms(v int) time.Duration {
	return time.Duration(v) * time.Millisecond
}
