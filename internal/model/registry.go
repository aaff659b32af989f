package model

import (
	"errors"
	"fmt"
)

var Registry = map[string]*Model{}

// ErrUnknownModel is returned when a descriptor references a model
// name that is not (or no longer) registered.
var ErrUnknownModel = errors.New("unknown model")

func InitRegistry(dir string) error {
	if err := LoadModelsFromDir(dir); err != nil {
		return fmt.Errorf("load error: %w", err)
	}
	if err := LinkModelRelations(); err != nil {
		return fmt.Errorf("link error: %w", err)
	}
	return nil
}

// Get resolves a logical model name.
func Get(name string) (*Model, error) {
	if m, ok := Registry[name]; ok {
		return m, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownModel, name)
}

func (m *Model) GetRelation(name string) *ModelRelation {
	if m == nil || m.Relations == nil {
		return nil
	}
	return m.Relations[name]
}

// LinkModelRelations resolves relation targets and fills defaults.
// Invalid relations are configuration errors: fail at startup, not at
// the first AJAX search that happens to traverse them.
func LinkModelRelations() error {
	for name, m := range Registry {
		for relName, rel := range m.Relations {
			switch rel.Type {
			case "belongs_to", "has_one", "has_many":
			default:
				return fmt.Errorf("model %s: relation %s: unknown type %q", name, relName, rel.Type)
			}

			ref, ok := Registry[rel.Model]
			if !ok {
				return fmt.Errorf("model %s: relation %s: target model %q not registered", name, relName, rel.Model)
			}
			rel.SetModelRef(ref)

			if rel.Table == "" {
				rel.Table = ref.Table
			}
			if rel.PK == "" {
				rel.PK = "id"
			}
			if rel.Through != "" {
				if rel.Type != "has_many" {
					return fmt.Errorf("model %s: relation %s: through requires has_many", name, relName)
				}
				if rel.ThroughFK == "" {
					rel.ThroughFK = name + "_id"
				}
				if rel.ThroughRefFK == "" {
					rel.ThroughRefFK = rel.Model + "_id"
				}
				continue
			}
			if rel.FK == "" {
				switch rel.Type {
				case "belongs_to":
					rel.FK = relName + "_id"
				default:
					// fk lives on the related table and points back here
					rel.FK = name + "_id"
				}
			}
		}
	}
	return nil
}
