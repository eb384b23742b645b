// Package config loads cmd/splitloaderd's demo configuration via viper.
// This is an external collaborator to the CORE package: splitloader itself
// never imports viper, consuming only the resulting Options/Session values.
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"

	splitloader "github.com/lakequery/splitloader"
)

// DemoConfig stores the settings the demo binary reads from file or
// environment variables.
type DemoConfig struct {
	RootPath                  string `mapstructure:"rootPath"`
	LoaderConcurrency         int    `mapstructure:"loaderConcurrency"`
	RecursiveDirWalkerEnabled bool   `mapstructure:"recursiveDirWalkerEnabled"`
	MaxConcurrentIO           int64  `mapstructure:"maxConcurrentIO"`
	SinkCapacity              int    `mapstructure:"sinkCapacity"`
	ForceLocalScheduling      bool   `mapstructure:"forceLocalScheduling"`
	LogLevel                  string `mapstructure:"logLevel"`
}

// Load reads configPath (if non-empty) or the current/parent directory's
// splitloaderd.yaml, falling back to defaults when no file is found.
func Load(configPath string) (*DemoConfig, error) {
	v := viper.New()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.AddConfigPath(".")
		v.AddConfigPath("..")
		v.SetConfigName("splitloaderd")
		v.SetConfigType("yaml")
	}

	v.SetDefault("rootPath", ".")
	v.SetDefault("loaderConcurrency", 4)
	v.SetDefault("recursiveDirWalkerEnabled", true)
	v.SetDefault("maxConcurrentIO", 0)
	v.SetDefault("sinkCapacity", 64)
	v.SetDefault("forceLocalScheduling", false)
	v.SetDefault("logLevel", "info")

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg DemoConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unable to decode into struct: %w", err)
	}
	return &cfg, nil
}

// ToOptions produces the CORE's plain Options struct from the demo config
func (c *DemoConfig) ToOptions() splitloader.Options {
	return splitloader.Options{
		LoaderConcurrency:         c.LoaderConcurrency,
		RecursiveDirWalkerEnabled: c.RecursiveDirWalkerEnabled,
		MaxConcurrentIO:           c.MaxConcurrentIO,
	}
}

// staticSession is the demo binary's fixed Session implementation
type staticSession struct{ forceLocal bool }

func (s staticSession) ForceLocalScheduling() bool { return s.forceLocal }

// ToSession produces the CORE's Session collaborator from the demo config
func (c *DemoConfig) ToSession() splitloader.Session {
	return staticSession{forceLocal: c.ForceLocalScheduling}
}
