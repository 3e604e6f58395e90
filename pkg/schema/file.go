package schema

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// TypeSpec is one record type declaration in a schema file.
type TypeSpec struct {
	Name   string      `json:"name" yaml:"name"`
	Fields []FieldSpec `json:"fields" yaml:"fields"`
}

type schemaFile struct {
	Types []TypeSpec `yaml:"types"`
}

// LoadFile reads a YAML schema file and registers every declared type, in
// file order, into a fresh dynamic registry. Types may reference any type
// declared earlier in the same file.
//
// Example:
//
//	types:
//	  - name: Address
//	    fields:
//	      - {name: street, type: string}
//	      - {name: zip, type: string}
//	  - name: User
//	    fields:
//	      - {name: name, type: string}
//	      - {name: age, type: int}
//	      - {name: address, type: Address, optional: true}
//	      - {name: scores, type: map, key: string, value: int}
func LoadFile(path string) (*DynamicRegistry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read schema file: %w", err)
	}

	var file schemaFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse schema file: %w", err)
	}

	registry := NewDynamicRegistry()
	for _, spec := range file.Types {
		if _, err := registry.Register(spec.Name, spec.Fields); err != nil {
			return nil, err
		}
	}
	return registry, nil
}
