// Package config loads cadyn settings from YAML over built-in defaults and
// validates the result.
package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/danielpatrickdp/cadynamics/internal/analysis"
	"github.com/danielpatrickdp/cadynamics/internal/logging"
)

// #region types

// Config is the root of the cadyn configuration file.
type Config struct {
	Analysis analysis.Config `yaml:"analysis" json:"analysis"`
	Store    StoreConfig     `yaml:"store" json:"store"`
	Server   ServerConfig    `yaml:"server" json:"server"`
	Log      logging.Config  `yaml:"log" json:"log"`
}

// StoreConfig locates the report database.
type StoreConfig struct {
	Path string `yaml:"path" json:"path" validate:"required"`
}

// ServerConfig holds the listen addresses of the serve command.
type ServerConfig struct {
	HTTPAddr        string        `yaml:"http_addr" json:"http_addr" validate:"required,listenaddr"`
	GRPCAddr        string        `yaml:"grpc_addr" json:"grpc_addr" validate:"required,listenaddr"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" json:"shutdown_timeout" validate:"gte=0"`
	MaxBodyBytes    int64         `yaml:"max_body_bytes" json:"max_body_bytes" validate:"gt=0"`
}

// #endregion types

// #region defaults

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Analysis: analysis.DefaultConfig(),
		Store:    StoreConfig{Path: "cadyn.db"},
		Server: ServerConfig{
			HTTPAddr:        ":8080",
			GRPCAddr:        ":50061",
			ShutdownTimeout: 10 * time.Second,
			MaxBodyBytes:    8 << 20,
		},
		Log: logging.DefaultConfig(),
	}
}

// #endregion defaults

// #region validate

var validate *validator.Validate

func init() {
	validate = validator.New()
	_ = validate.RegisterValidation("listenaddr", validateListenAddr)
}

// validateListenAddr accepts host:port with an empty or named host and a
// port in [0, 65535].
func validateListenAddr(fl validator.FieldLevel) bool {
	_, port, err := net.SplitHostPort(fl.Field().String())
	if err != nil {
		return false
	}
	p, err := strconv.Atoi(port)
	return err == nil && p >= 0 && p <= 65535
}

// Validate checks every section.
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return fmt.Errorf("invalid config: %s failed %q (value %v)", fe.Namespace(), fe.Tag(), fe.Value())
		}
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// #endregion validate

// #region load

// Load reads path over the defaults and validates the result. An empty path
// returns the validated defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	cfg.ApplyEnv(os.Getenv)
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Environment overrides read by ApplyEnv.
const (
	EnvStorePath = "CADYN_STORE_PATH"
	EnvHTTPAddr  = "CADYN_HTTP_ADDR"
	EnvGRPCAddr  = "CADYN_GRPC_ADDR"
	EnvLogLevel  = "CADYN_LOG_LEVEL"
)

// ApplyEnv overrides fields from non-empty environment variables.
func (c *Config) ApplyEnv(getenv func(string) string) {
	if v := getenv(EnvStorePath); v != "" {
		c.Store.Path = v
	}
	if v := getenv(EnvHTTPAddr); v != "" {
		c.Server.HTTPAddr = v
	}
	if v := getenv(EnvGRPCAddr); v != "" {
		c.Server.GRPCAddr = v
	}
	if v := getenv(EnvLogLevel); v != "" {
		c.Log.Level = v
	}
}

// Marshal renders c as YAML.
func (c Config) Marshal() ([]byte, error) {
	return yaml.Marshal(c)
}

// #endregion load
