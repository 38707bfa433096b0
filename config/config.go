package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"custodash/api"
)

const appDirName = "custodash"

// Config holds the runtime settings for the dashboard client.
type Config struct {
	APIURL   string `mapstructure:"api_url"`
	Region   string `mapstructure:"region"`
	DemoMode bool   `mapstructure:"demo_mode"`
	Debug    bool   `mapstructure:"debug"`
}

// Dir returns the application config directory, creating it if needed.
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("error getting user home directory: %w", err)
	}

	dir := filepath.Join(home, ".config", appDirName)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return "", fmt.Errorf("error creating config directory: %w", err)
	}

	return dir, nil
}

// Load reads settings from defaults, an optional config file and
// CUSTODASH-prefixed environment variables, with flag values taking
// precedence over all of them.
func Load(flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	if dir, err := Dir(); err == nil {
		v.AddConfigPath(dir)
	}
	v.AddConfigPath(".")

	v.SetDefault("api_url", api.DefaultBaseURL)
	v.SetDefault("region", api.DefaultRegion)
	v.SetDefault("demo_mode", false)
	v.SetDefault("debug", false)

	v.SetEnvPrefix("CUSTODASH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if flags != nil {
		bindFlags(v, flags)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	if err := setupLogging(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Flags returns the flag set understood by Load.
func Flags() *pflag.FlagSet {
	flags := pflag.NewFlagSet(appDirName, pflag.ContinueOnError)
	flags.String("api-url", api.DefaultBaseURL, "base URL of the dashboard API")
	flags.String("region", api.DefaultRegion, "default AWS region for credentials")
	flags.Bool("demo", false, "allow a demo session when SSO is unreachable")
	flags.Bool("debug", false, "write debug logs to the config directory")
	return flags
}

func bindFlags(v *viper.Viper, flags *pflag.FlagSet) {
	v.BindPFlag("api_url", flags.Lookup("api-url"))
	v.BindPFlag("region", flags.Lookup("region"))
	v.BindPFlag("demo_mode", flags.Lookup("demo"))
	v.BindPFlag("debug", flags.Lookup("debug"))
}

// setupLogging routes logrus output to a log file in debug mode. The
// terminal belongs to the TUI, so logs never go to stderr.
func setupLogging(cfg *Config) error {
	if !cfg.Debug {
		logrus.SetOutput(io.Discard)
		return nil
	}

	dir, err := Dir()
	if err != nil {
		return err
	}

	f, err := os.OpenFile(filepath.Join(dir, appDirName+".log"), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
	if err != nil {
		return fmt.Errorf("error opening log file: %w", err)
	}

	logrus.SetOutput(f)
	logrus.SetLevel(logrus.DebugLevel)
	logrus.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
	})

	return nil
}
