package defaults

import (
	"os"

	homedir "github.com/mitchellh/go-homedir"
	e "github.com/pkg/errors"
	"github.com/sahib/config"
)

// CurrentVersion is the current version of arbor's config
const CurrentVersion = 0

// DefaultPath is where the CLI looks for a config if none was given.
const DefaultPath = "~/.arbor.yml"

// Defaults is the default validation for arbor
var Defaults = DefaultsV0

// OpenMigratedConfig takes the config.yml at path and loads it.
// If required, it also migrates the config structure to the newest
// version, so arbor can always rely on the latest config keys to be present.
// A leading "~" in `path` is expanded.
func OpenMigratedConfig(path string) (*config.Config, error) {
	path, err := homedir.Expand(path)
	if err != nil {
		return nil, e.Wrap(err, "failed to expand config path")
	}

	fd, err := os.Open(path)
	if err != nil {
		return nil, e.Wrap(err, "failed to open config")
	}

	defer fd.Close()

	// Add here any migrations with mgr.Add if needed.
	mgr := config.NewMigrater(CurrentVersion, config.StrictnessPanic)
	mgr.Add(0, nil, DefaultsV0)

	cfg, err := mgr.Migrate(config.NewYamlDecoder(fd))
	if err != nil {
		return nil, e.Wrap(err, "failed to migrate")
	}

	return cfg, nil
}

// OpenDefaultConfig returns a config that only holds the defaults.
func OpenDefaultConfig() (*config.Config, error) {
	return config.Open(nil, Defaults, config.StrictnessPanic)
}

// OpenConfigOrDefaults loads the config at `path`. A missing file at the
// default location is not an error; the defaults are used instead.
func OpenConfigOrDefaults(path string) (*config.Config, error) {
	if path == "" {
		path = DefaultPath
	}

	cfg, err := OpenMigratedConfig(path)
	if err == nil {
		return cfg, nil
	}

	if path == DefaultPath && os.IsNotExist(e.Cause(err)) {
		return OpenDefaultConfig()
	}

	return nil, err
}
