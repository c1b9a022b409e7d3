package schema

import (
	"bytes"
	"embed"
	"fmt"

	"glassrelay/internal/domain/relay"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed schemas/*.schema.json
var files embed.FS

const baseURL = "https://glassrelay.local/schemas/"

// Registry holds one compiled JSON schema per webhook event type. Schemas
// only constrain known fields; anything else the producer sends passes.
type Registry struct {
	schemas map[relay.EventType]*jsonschema.Schema
}

func NewRegistry() (*Registry, error) {
	c := jsonschema.NewCompiler()
	c.Draft = jsonschema.Draft2020

	r := &Registry{schemas: make(map[relay.EventType]*jsonschema.Schema, len(relay.KnownEventTypes))}
	for _, typ := range relay.KnownEventTypes {
		name := string(typ) + ".schema.json"
		raw, err := files.ReadFile("schemas/" + name)
		if err != nil {
			return nil, fmt.Errorf("read schema %s: %w", name, err)
		}
		url := baseURL + name
		if err := c.AddResource(url, bytes.NewReader(raw)); err != nil {
			return nil, fmt.Errorf("schema load failed for %s: %w", typ, err)
		}
		compiled, err := c.Compile(url)
		if err != nil {
			return nil, fmt.Errorf("schema compile failed for %s: %w", typ, err)
		}
		r.schemas[typ] = compiled
	}
	return r, nil
}

func MustRegistry() *Registry {
	r, err := NewRegistry()
	if err != nil {
		panic(err)
	}
	return r
}

func (r *Registry) Validate(eventType relay.EventType, data relay.Data) error {
	s, ok := r.schemas[eventType]
	if !ok {
		return fmt.Errorf("no schema for event type %q", eventType)
	}
	if err := s.Validate(data.Any()); err != nil {
		return fmt.Errorf("schema validation failed: %w", err)
	}
	return nil
}
