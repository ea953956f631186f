package model

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/hashcol/hashcol/pkg/types"
)

// ModelFile is the YAML declaration format consumed by the hashcol CLI.
type ModelFile struct {
	Entities []EntityDecl `yaml:"entities"`
}

// EntityDecl declares one entity in a model file.
type EntityDecl struct {
	Name       string         `yaml:"name"`
	Properties []PropertyDecl `yaml:"properties"`
}

// PropertyDecl declares one property in a model file.
type PropertyDecl struct {
	Name     string    `yaml:"name"`
	Kind     string    `yaml:"kind"`
	Nullable bool      `yaml:"nullable"`
	Type     string    `yaml:"type"` // optional explicit storage type
	Hash     *HashDecl `yaml:"hash"`
}

// HashDecl declares a computed hash on a property.
type HashDecl struct {
	Algorithm string   `yaml:"algorithm"`
	Sources   []string `yaml:"sources"`
}

// LoadFile parses a YAML model declaration file and builds the model through
// the standard builder path.
func LoadFile(path string) (*Model, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("model: failed to read model file: %w", err)
	}
	return LoadBytes(data)
}

// LoadBytes builds a model from YAML declaration bytes.
func LoadBytes(data []byte) (*Model, error) {
	var file ModelFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("model: failed to parse model file: %w", err)
	}

	b := NewBuilder()
	for _, ed := range file.Entities {
		if ed.Name == "" {
			return nil, fmt.Errorf("model: entity with empty name in model file")
		}
		entity := b.Entity(ed.Name)
		for _, pd := range ed.Properties {
			if pd.Name == "" {
				return nil, fmt.Errorf("model: entity %s has a property with empty name", ed.Name)
			}
			pb := entity.Property(pd.Name)
			if pd.Kind != "" {
				kind, err := types.ParseKind(pd.Kind)
				if err != nil {
					return nil, fmt.Errorf("model: %s.%s: %w", ed.Name, pd.Name, err)
				}
				setKind(pb, kind)
			}
			if pd.Nullable {
				pb.Nullable()
			}
			if pd.Type != "" {
				pb.HasColumnType(pd.Type)
			}
			if pd.Hash != nil {
				pb.HashOf(pd.Hash.Algorithm, pd.Hash.Sources...)
			}
		}
	}
	return b.Build()
}
