package config

import (
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Load builds the effective configuration: defaults, then the yaml file
// (if one exists), then environment overrides. path == "" means the
// default location; a missing file there is not an error.
func Load(path string) (*Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = DefaultFilePath()
	}

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, errors.Wrapf(err, "parse config file %s", path)
			}
		case os.IsNotExist(err) && !explicit:
			// No config file is fine; defaults apply.
		default:
			return nil, errors.Wrapf(err, "read config file %s", path)
		}
	}

	LoadFromEnv(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid configuration")
	}
	return cfg, nil
}
