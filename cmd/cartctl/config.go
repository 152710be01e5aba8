package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type cliConfig struct {
	APIURL    string        `mapstructure:"api_url"`
	CartFile  string        `mapstructure:"cart_file"`
	TokenFile string        `mapstructure:"token_file"`
	Timeout   time.Duration `mapstructure:"timeout"`
	LogLevel  string        `mapstructure:"log_level"`
	Password  string        `mapstructure:"password"`
}

func stateDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".cartctl"
	}
	return filepath.Join(home, ".cartctl")
}

// loadConfig reads cartctl.yaml from the working directory or ~/.cartctl,
// then CARTCTL_* environment variables, then bound flags.
func loadConfig(v *viper.Viper, configFile string) (*cliConfig, error) {
	dir := stateDir()
	v.SetDefault("api_url", "http://localhost:8080")
	v.SetDefault("cart_file", filepath.Join(dir, "cart.json"))
	v.SetDefault("token_file", filepath.Join(dir, "session.json"))
	v.SetDefault("timeout", 10*time.Second)
	v.SetDefault("log_level", "warn")

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("cartctl")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath(dir)
	}
	v.SetEnvPrefix("CARTCTL")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	_ = v.BindEnv("password")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg cliConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	return &cfg, nil
}
