package form

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed schemas.yaml
var builtinSchemas []byte

// ErrUnknownKind is returned for a form kind the registry has no schema for.
var ErrUnknownKind = errors.New("form: unknown form kind")

// Registry maps form kinds to their schemas. It is read-only after loading and safe
// for concurrent use.
type Registry struct {
	schemas map[Kind]*Schema
	order   []Kind
}

type registryFile struct {
	Forms []*Schema `yaml:"forms"`
}

// LoadRegistry parses a YAML schema document. Unknown keys, unknown rule kinds,
// invalid patterns and equalsField rules pointing at missing fields are rejected.
func LoadRegistry(r io.Reader) (*Registry, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var file registryFile
	if err := dec.Decode(&file); err != nil {
		return nil, fmt.Errorf("decode form schemas: %w", err)
	}

	reg := &Registry{schemas: make(map[Kind]*Schema, len(file.Forms))}
	for _, s := range file.Forms {
		if s == nil {
			return nil, errors.New("decode form schemas: empty form entry")
		}
		if err := s.validate(); err != nil {
			return nil, err
		}
		if _, dup := reg.schemas[s.Kind]; dup {
			return nil, fmt.Errorf("duplicate schema for kind %q", s.Kind)
		}
		reg.schemas[s.Kind] = s
		reg.order = append(reg.order, s.Kind)
	}

	return reg, nil
}

var defaultRegistry = sync.OnceValue(func() *Registry {
	reg, err := LoadRegistry(bytes.NewReader(builtinSchemas))
	if err != nil {
		panic(fmt.Sprintf("form: built-in schemas are invalid: %v", err))
	}
	return reg
})

// DefaultRegistry returns the registry of the built-in register, login and contact forms.
func DefaultRegistry() *Registry {
	return defaultRegistry()
}

// Schema returns the schema of kind.
func (r *Registry) Schema(kind Kind) (*Schema, error) {
	s, ok := r.schemas[kind]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}
	return s, nil
}

// Kinds returns the registered kinds in document order.
func (r *Registry) Kinds() []Kind {
	return append([]Kind(nil), r.order...)
}
