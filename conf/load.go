package conf

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

func (c *Core) configDir() string {
	return filepath.Join(c.AppRoot, "config")
}

// loadConfFile decodes the first of base.json, base.yaml and base.yml found in dir into v.
func loadConfFile(dir, base string, v any) error {
	for _, ext := range []string{".json", ".yaml", ".yml"} {
		path := filepath.Join(dir, base+ext)
		data, err := os.ReadFile(path)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return err
		}
		if ext == ".json" {
			err = json.Unmarshal(data, v)
		} else {
			err = yaml.Unmarshal(data, v)
		}
		if err != nil {
			return fmt.Errorf("failed to decode %s: %w", path, err)
		}
		return nil
	}
	return fmt.Errorf("%s{.json,.yaml,.yml} not found in %s: %w", base, dir, fs.ErrNotExist)
}
