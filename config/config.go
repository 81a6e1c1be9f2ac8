// Package config loads the chaincode process configuration from defaults, an optional
// YAML file and the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

// TLS holds the chaincode server's TLS material paths.
type TLS struct {
	Disabled     bool   `mapstructure:"disabled"`
	KeyFile      string `mapstructure:"key_file"`
	CertFile     string `mapstructure:"cert_file"`
	ClientCAFile string `mapstructure:"client_ca_file"`
}

// Config is the chaincode process configuration.
type Config struct {
	// CCID is the package ID the peer assigned to this chaincode. Required with Address.
	CCID string `mapstructure:"ccid"`
	// Address enables external chaincode-as-a-service mode when set.
	Address string `mapstructure:"address"`
	// LogSpec is a flogging spec such as "info" or "certledger.registry=debug:info".
	LogSpec string `mapstructure:"log_spec"`
	TLS     TLS    `mapstructure:"tls"`
}

var defaults = map[string]any{
	"log_spec":     "info",
	"tls.disabled": true,
}

// envAliases binds keys to the variable names the Fabric external builder tooling sets.
var envAliases = map[string][]string{
	"ccid":               {"CHAINCODE_ID", "CHAINCODE_CCID"},
	"address":            {"CHAINCODE_SERVER_ADDRESS"},
	"log_spec":           {"CORE_CHAINCODE_LOGGING_LEVEL"},
	"tls.disabled":       {"CHAINCODE_TLS_DISABLED"},
	"tls.key_file":       {"CHAINCODE_TLS_KEY"},
	"tls.cert_file":      {"CHAINCODE_TLS_CERT"},
	"tls.client_ca_file": {"CHAINCODE_CLIENT_CA_CERT"},
}

// Load reads configuration. configFile may be empty; a missing file is not an error,
// a malformed one is. Environment variables CERTLEDGER_<KEY> take precedence over the
// Fabric names, which take precedence over the file.
func Load(configFile string) (*Config, error) {
	v := viper.New()

	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	v.SetConfigType("yaml")
	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) && !errors.Is(err, os.ErrNotExist) {
				return nil, fmt.Errorf("failed to read config file %s: %w", configFile, err)
			}
		}
	}

	v.SetEnvPrefix("certledger")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, names := range envAliases {
		envPrefixed := "CERTLEDGER_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
		args := append([]string{key, envPrefixed}, names...)
		if err := v.BindEnv(args...); err != nil {
			return nil, fmt.Errorf("failed to bind environment for %s: %w", key, err)
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// External reports whether the chaincode runs as an external service.
func (c *Config) External() bool {
	return c.Address != ""
}

// Validate checks that the settings required by the selected mode are present.
func (c *Config) Validate() error {
	if !c.External() {
		return nil
	}
	if c.CCID == "" {
		return errors.New("ccid is required when address is set")
	}
	if !c.TLS.Disabled && (c.TLS.KeyFile == "" || c.TLS.CertFile == "") {
		return errors.New("tls.key_file and tls.cert_file are required unless tls.disabled is true")
	}
	return nil
}
