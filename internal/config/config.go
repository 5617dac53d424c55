package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

type ServerConfig struct {
	Name             string  `toml:"name"`
	Addr             string  `toml:"addr"`
	MetricsAddr      string  `toml:"metrics_addr"`
	Codec            string  `toml:"codec"`
	Separator        string  `toml:"separator"`
	AckTimeoutMS     int     `toml:"ack_timeout_ms"`
	ReceiveTimeoutMS int     `toml:"receive_timeout_ms"`
	LineLimit        int     `toml:"line_limit"`
	RequestRate      float64 `toml:"request_rate"`
	RequestBurst     int     `toml:"request_burst"`
}

type ClientConfig struct {
	Addr             string `toml:"addr"`
	Codec            string `toml:"codec"`
	Separator        string `toml:"separator"`
	AckTimeoutMS     int    `toml:"ack_timeout_ms"`
	ReceiveTimeoutMS int    `toml:"receive_timeout_ms"`
	LineLimit        int    `toml:"line_limit"`
}

func LoadServerConfig(path string) (ServerConfig, error) {
	var cfg ServerConfig
	if err := loadToml(path, &cfg); err != nil {
		return ServerConfig{}, err
	}
	if cfg.Name == "" {
		cfg.Name = "formd"
	}
	if cfg.Addr == "" {
		cfg.Addr = ":9430"
	}
	if cfg.Codec == "" {
		cfg.Codec = "json"
	}
	if err := ValidateServerConfig(cfg); err != nil {
		return ServerConfig{}, err
	}
	return cfg, nil
}

func LoadClientConfig(path string) (ClientConfig, error) {
	var cfg ClientConfig
	if err := loadToml(path, &cfg); err != nil {
		return ClientConfig{}, err
	}
	if cfg.Codec == "" {
		cfg.Codec = "json"
	}
	if err := ValidateClientConfig(cfg); err != nil {
		return ClientConfig{}, err
	}
	return cfg, nil
}

func loadToml(path string, out any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("config load failed (%s): %w", path, err)
	}
	if err := toml.Unmarshal(data, out); err != nil {
		return fmt.Errorf("config parse failed (%s): %w", path, err)
	}
	return nil
}

func ValidateServerConfig(cfg ServerConfig) error {
	if strings.TrimSpace(cfg.Name) == "" {
		return fmt.Errorf("server config missing name")
	}
	if strings.TrimSpace(cfg.Addr) == "" {
		return fmt.Errorf("server config missing addr")
	}
	if err := validateCodecName(cfg.Codec); err != nil {
		return err
	}
	if err := validateSeparator(cfg.Separator); err != nil {
		return err
	}
	if cfg.RequestRate < 0 {
		return fmt.Errorf("server config request_rate must not be negative")
	}
	return nil
}

func ValidateClientConfig(cfg ClientConfig) error {
	if strings.TrimSpace(cfg.Addr) == "" {
		return fmt.Errorf("client config missing addr")
	}
	if err := validateCodecName(cfg.Codec); err != nil {
		return err
	}
	return validateSeparator(cfg.Separator)
}

func validateCodecName(name string) error {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "json", "gob", "zstd-json", "zstd-gob":
		return nil
	default:
		return fmt.Errorf("unknown codec: %s", name)
	}
}

// validateSeparator rejects values the wire layer could never frame
// with. Empty means use the protocol default.
func validateSeparator(sep string) error {
	if sep == "" {
		return nil
	}
	if strings.Contains(sep, "\n") {
		return fmt.Errorf("separator must not contain a newline")
	}
	if strings.TrimSpace(sep) == "" {
		return fmt.Errorf("separator must not be blank")
	}
	return nil
}
