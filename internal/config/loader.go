package config

import (
	"os"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

// configName is the config file name without extension.
const configName = ".ostbench"

// configType is the config file format.
const configType = "yaml"

// envPrefix is the environment variable prefix for ostbench settings.
const envPrefix = "OSTBENCH"

// envKeySeparator is the nested key separator in environment variable names.
const envKeySeparator = "_"

// LoadConfig loads configuration from file, env vars, and defaults.
// If configPath is non-empty, it is used as the explicit config file path.
// Otherwise, the config file is searched in CWD and $HOME.
// Missing config file is not an error; defaults are used.
func LoadConfig(configPath string) (*Config, error) {
	return load(viper.New(), configPath)
}

// load into v, which may already carry flag bindings.
func load(v *viper.Viper, configPath string) (*Config, error) {
	applyDefaults(v)

	v.SetConfigType(configType)
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", envKeySeparator))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName(configName)
		v.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			v.AddConfigPath(home)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, errors.Wrap(err, "read config")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrap(err, "unmarshal config")
	}
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "validate config")
	}
	return &cfg, nil
}

// LoadWith is LoadConfig with settings already bound into v, e.g. command line flags.
func LoadWith(v *viper.Viper, configPath string) (*Config, error) {
	return load(v, configPath)
}

func applyDefaults(v *viper.Viper) {
	v.SetDefault("sizes", DefaultSizes)
	v.SetDefault("workloads", []string{})
	v.SetDefault("variants", []string{})
	v.SetDefault("repeat", DefaultRepeat)
	v.SetDefault("seed", DefaultSeed)
	v.SetDefault("width", DefaultWidth)
	v.SetDefault("output.csv", DefaultCSV)
	v.SetDefault("output.metrics", "")
	v.SetDefault("debug", false)
}
