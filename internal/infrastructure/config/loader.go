package config

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/cockroachdb/errors"
	"gopkg.in/yaml.v3"

	"github.com/doeshing/panel-go/assets"
	"github.com/doeshing/panel-go/internal/domain"
	"github.com/doeshing/panel-go/internal/pkg/filesystem"
	"github.com/doeshing/panel-go/internal/ports"
)

// EnvConfigPath overrides the config file location.
const EnvConfigPath = "PANEL_CONFIG"

// FileLoader loads YAML configuration from ~/.panel/config.yaml (overridable via PANEL_CONFIG).
type FileLoader struct {
	overridePath string
}

// NewFileLoader builds a new loader. An empty path uses the environment or the default location.
func NewFileLoader(path string) *FileLoader {
	return &FileLoader{overridePath: path}
}

// Load implements ports.ConfigProvider. A missing file is created from the
// embedded defaults; keys absent from an existing file keep their defaults.
func (l *FileLoader) Load(context.Context) (domain.Config, error) {
	path := l.Path()
	if err := os.MkdirAll(filepath.Dir(path), domain.DirectoryPermissions); err != nil {
		return domain.Config{}, errors.Wrapf(err, "create config directory for %s", path)
	}

	cfg, err := Defaults()
	if err != nil {
		return domain.Config{}, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			if err := os.WriteFile(path, assets.DefaultConfigYAML, domain.SecureFilePermissions); err != nil {
				return domain.Config{}, errors.Wrapf(err, "write default config to %s", path)
			}
			return cfg, nil
		}
		return domain.Config{}, errors.Wrapf(err, "read config %s", path)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return domain.Config{}, domain.NewConfigErrorWithCause(path, "invalid YAML", err)
	}
	return cfg, nil
}

// Path returns the file Load reads.
func (l *FileLoader) Path() string {
	if l.overridePath != "" {
		return filesystem.ExpandPath(l.overridePath)
	}
	if custom := os.Getenv(EnvConfigPath); custom != "" {
		return filesystem.ExpandPath(custom)
	}
	return filesystem.AppPath("config.yaml")
}

// Defaults parses the embedded default configuration.
func Defaults() (domain.Config, error) {
	var cfg domain.Config
	if err := yaml.Unmarshal(assets.DefaultConfigYAML, &cfg); err != nil {
		return domain.Config{}, errors.Wrap(err, "parse embedded default config")
	}
	return cfg, nil
}

var _ ports.ConfigProvider = (*FileLoader)(nil)
