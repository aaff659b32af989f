package model

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"TomSelectAPI/internal/logger"

	"gopkg.in/yaml.v3"
)

// LoadModelsFromDir loads every *.yml in dir into the Registry. The
// file name (without extension) becomes the logical model name.
func LoadModelsFromDir(dir string) error {
	files, err := filepath.Glob(filepath.Join(dir, "*.yml"))
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return fmt.Errorf("no model definitions (*.yml) found in %s", dir)
	}

	for _, path := range files {
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}

		var model Model
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&model); err != nil {
			return fmt.Errorf("YAML parse error in %s: %w", path, err)
		}
		if strings.TrimSpace(model.Table) == "" {
			return fmt.Errorf("model %s: missing table", path)
		}

		name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
		model.Name = name
		Registry[name] = &model
		logger.Info("model_loaded", map[string]any{
			"model":     name,
			"relations": len(model.Relations),
		})
	}
	return nil
}
