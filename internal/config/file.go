package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/conneroisu/sitepack/internal/errors"
)

// DefaultFileName is the configuration file looked up in the working directory.
const DefaultFileName = ".sitepack.yml"

// Marshal renders the configuration as YAML in the file layout Load reads.
func (c *Config) Marshal() ([]byte, error) {
	return yaml.Marshal(c)
}

// WriteFile writes the configuration to path. An existing file is only
// replaced when overwrite is set.
func (c *Config) WriteFile(path string, overwrite bool) error {
	if !overwrite {
		if _, err := os.Stat(path); err == nil {
			return errors.NewConfigError(errors.ErrCodeConfigInvalid, fmt.Sprintf("%s already exists", path))
		}
	}

	data, err := c.Marshal()
	if err != nil {
		return err
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errors.NewIOError(errors.ErrCodeConfigInvalid, "cannot write "+path, err)
	}
	return nil
}
