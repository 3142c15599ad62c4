package config

import (
	"fmt"
	"os"
	"regexp"
	"strings"
	"time"

	"gopkg.in/yaml.v2"

	"github.com/jo-hoe/go-custom-uploader/app/transport"
)

type Config struct {
	// Definitions lists definition files. More than one runs them as a chain, the last one uploads.
	Definitions      []string             `yaml:"definitions"`
	LogLevel         string               `yaml:"logLevel"`    // logging level: "debug" | "info" | "warn" | "error"
	Timeout          string               `yaml:"timeout"`     // request timeout, e.g. "60s"
	MaxFileSize      string               `yaml:"maxFileSize"` // e.g. "200Mi"; empty means unlimited
	MaxFileSizeBytes int64                `yaml:"-"`
	Concurrency      int                  `yaml:"concurrency"` // parallel uploads
	RateLimit        float64              `yaml:"rateLimit"`   // uploads per second; 0 means unlimited
	Output           string               `yaml:"output"`      // "text" | "json"
	Auth             transport.AuthConfig `yaml:"auth"`
}

// NewConfigFromYaml parses a configuration. ${VAR} references in path and credential
// fields are replaced with environment variables; a bare '$' is kept as is.
func NewConfigFromYaml(yamlBytes []byte) (*Config, error) {
	var cfg Config
	err := yaml.UnmarshalStrict(yamlBytes, &cfg)
	if err != nil {
		return nil, err
	}

	expandEnv(&cfg)
	setDefaults(&cfg)
	if err := validateConfig(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// NewConfigFromFile reads and parses the configuration file at path.
func NewConfigFromFile(path string) (*Config, error) {
	yamlBytes, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return NewConfigFromYaml(yamlBytes)
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	cfg := &Config{}
	setDefaults(cfg)
	return cfg
}

// TimeoutDuration returns the parsed request timeout.
func (c *Config) TimeoutDuration() time.Duration {
	d, err := time.ParseDuration(c.Timeout)
	if err != nil {
		return defaultTimeout
	}
	return d
}

const defaultTimeout = 60 * time.Second

var envReference = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)\}`)

func expandString(s string) string {
	return envReference.ReplaceAllStringFunc(s, func(ref string) string {
		return os.Getenv(ref[2 : len(ref)-1])
	})
}

func expandEnv(config *Config) {
	for i := range config.Definitions {
		config.Definitions[i] = expandString(config.Definitions[i])
	}
	a := &config.Auth
	for _, field := range []*string{
		&a.Token,
		&a.ClientID, &a.ClientSecret, &a.AuthURL, &a.TokenURL, &a.RedirectURL, &a.TokenFile,
		&a.ConsumerKey, &a.ConsumerSecret, &a.AccessToken, &a.AccessSecret,
	} {
		*field = expandString(*field)
	}
}

func setDefaults(config *Config) {
	// Default log level
	if strings.TrimSpace(config.LogLevel) == "" {
		config.LogLevel = "info"
	}
	if strings.TrimSpace(config.Timeout) == "" {
		config.Timeout = defaultTimeout.String()
	}
	if config.Concurrency == 0 {
		config.Concurrency = 4
	}
	if strings.TrimSpace(config.Output) == "" {
		config.Output = "text"
	}
	if strings.TrimSpace(config.Auth.Type) == "" {
		config.Auth.Type = transport.AuthNone
	}
}

func validateConfig(config *Config) error {
	// Normalize and validate log level
	level := strings.ToLower(strings.TrimSpace(config.LogLevel))
	switch level {
	case "debug", "info", "warn", "error":
		config.LogLevel = level
	default:
		return fmt.Errorf("invalid logLevel '%s' (supported: debug, info, warn, error)", config.LogLevel)
	}

	d, err := time.ParseDuration(config.Timeout)
	if err != nil {
		return fmt.Errorf("invalid timeout '%s' - error: %s", config.Timeout, err)
	}
	if d <= 0 {
		return fmt.Errorf("timeout must be > 0 (got '%s')", config.Timeout)
	}

	if strings.TrimSpace(config.MaxFileSize) != "" {
		size, err := parseSizeString(config.MaxFileSize)
		if err != nil {
			return fmt.Errorf("invalid maxFileSize '%s' - error: %s", config.MaxFileSize, err)
		}
		config.MaxFileSizeBytes = size
	}

	if config.Concurrency < 1 {
		return fmt.Errorf("concurrency must be >= 1 (got %d)", config.Concurrency)
	}
	if config.RateLimit < 0 {
		return fmt.Errorf("rateLimit must be >= 0 (got %g)", config.RateLimit)
	}

	output := strings.ToLower(strings.TrimSpace(config.Output))
	switch output {
	case "text", "json":
		config.Output = output
	default:
		return fmt.Errorf("invalid output '%s' (supported: text, json)", config.Output)
	}

	for i, d := range config.Definitions {
		if strings.TrimSpace(d) == "" {
			return fmt.Errorf("definitions[%d] is empty", i)
		}
	}

	return config.Auth.Validate()
}
