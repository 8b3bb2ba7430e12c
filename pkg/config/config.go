// Package config loads and validates the Seedr adapter's configuration.
package config

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/knadh/koanf"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"

	"github.com/l3uddz/seedr-adapter/pkg/logger"
)

// instanceTagPattern is the format required for an instance tag (§6):
// alphanumeric, dash, underscore.
var instanceTagPattern = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// Configuration holds the recognised options from §6.
type Configuration struct {
	Email    string `validate:"required" koanf:"email"`
	Password string `validate:"required" koanf:"password"`

	DownloadDirectory string `validate:"required" koanf:"download_directory"`

	// DeleteFromCloud gates whether MarkItemAsImported deletes cloud state.
	DeleteFromCloud bool `koanf:"delete_from_cloud"`

	// SharedAccount enables multi-instance ownership coordination via C2.
	SharedAccount bool   `koanf:"shared_account"`
	InstanceTag   string `koanf:"instance_tag"`

	RedisConnectionString string `koanf:"redis_connection_string"`
}

const (
	Delimiter = "."
	envPrefix = "SEEDR__"
)

var log = logger.GetLogger("config")

// Load reads configFilePath (YAML) and overlays SEEDR__-prefixed environment
// variables, the same two-source precedence as the teacher's koanf setup.
func Load(configFilePath string) (*Configuration, error) {
	k := koanf.New(Delimiter)

	if configFilePath != "" {
		if err := k.Load(file.Provider(configFilePath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("load file: %w", err)
		}
	}

	if err := k.Load(env.Provider(envPrefix, ".", func(s string) string {
		return strings.Replace(strings.ToLower(strings.TrimPrefix(s, envPrefix)), "__", ".", -1)
	}), nil); err != nil {
		return nil, fmt.Errorf("load env: %w", err)
	}

	cfg := &Configuration{DeleteFromCloud: true}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshal: %w", err)
	}

	if errs := ValidateStruct(*cfg); len(errs) > 0 {
		return nil, fmt.Errorf("validate config: %v", errs)
	}

	if cfg.SharedAccount {
		if cfg.InstanceTag == "" {
			return nil, fmt.Errorf("instance_tag is required when shared_account is enabled")
		}
		if !instanceTagPattern.MatchString(cfg.InstanceTag) {
			return nil, fmt.Errorf("instance_tag %q must match %s", cfg.InstanceTag, instanceTagPattern.String())
		}
	}

	log.Debugf("Loaded config for %s (shared_account=%v)", cfg.Email, cfg.SharedAccount)
	return cfg, nil
}

// MultiTenancyConfigured reports whether shared-account mode has everything
// it needs to actually coordinate ownership (§4.2, §4.5 Test).
func (c *Configuration) MultiTenancyConfigured() bool {
	return c.SharedAccount && c.InstanceTag != "" && c.RedisConnectionString != ""
}
