package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

const DbkitYamlFile = ".dbkit.yml"

// DbkitConfig is the structure of .dbkit.yml files in an installation root.
// It overrides what wp-config.php defines, e.g. to point a checkout at a
// local database.
type DbkitConfig struct {
	Constants   map[string]string `yaml:"constants"`
	TablePrefix *string           `yaml:"tablePrefix"`
}

func ReadFromYaml(root string) (DbkitConfig, error) {
	var dbkitConfig DbkitConfig
	fileName := filepath.Join(root, DbkitYamlFile)
	file, err := os.ReadFile(fileName)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			// we return the empty config
			return dbkitConfig, nil
		}
		return dbkitConfig, err
	}
	err = yaml.Unmarshal(file, &dbkitConfig)
	if err != nil {
		return dbkitConfig, fmt.Errorf("malformed YAML in %s: %w", fileName, err)
	}
	return dbkitConfig, nil
}

func (d DbkitConfig) applyTo(cfg *Config) {
	for name, value := range d.Constants {
		cfg.Set(name, value)
	}
	if d.TablePrefix != nil {
		cfg.TablePrefix = *d.TablePrefix
	}
}
