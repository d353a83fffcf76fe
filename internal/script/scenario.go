package script

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Scenario describes one scripted run: a seed value for the root
// future, an optional settlement delay or failure, and a sequence of
// steps issued against bound handles.
type Scenario struct {
	// Name uniquely identifies this scenario. It doubles as the golden
	// file name.
	Name string `yaml:"name"`

	// Description explains what this scenario exercises.
	Description string `yaml:"description,omitempty"`

	// Seed is the root future's eventual value, as plain YAML data.
	// Maps become live objects, sequences become iterables.
	Seed any `yaml:"seed,omitempty"`

	// SeedFunc names a builtin callable to seed the root future with
	// instead of Seed. See builtins in runner.go.
	SeedFunc string `yaml:"seed_func,omitempty"`

	// DelayMS delays the seed settlement, so steps issued before it
	// queue against a still-pending future. Zero settles immediately.
	DelayMS int `yaml:"delay_ms,omitempty"`

	// FailWith rejects the seed with this message instead of resolving
	// it. The delay still applies.
	FailWith string `yaml:"fail_with,omitempty"`

	// Steps is the operation sequence, executed in order.
	Steps []Step `yaml:"steps"`
}

// Step is one scripted operation. Op selects the operation; the other
// fields parameterize it. Steps that produce a handle can bind it with
// As for later steps to reference through Of or {ref: name} operands.
type Step struct {
	// Op is one of: get, set, delete, call, new, has, keys, descriptor,
	// define, await, all, enumerate, next, collect, release.
	Op string `yaml:"op"`

	// Of names the target binding. Defaults to "root". For next and
	// collect it names an iterator binding created by enumerate.
	Of string `yaml:"of,omitempty"`

	// Key is the property key for get, set, delete, has, descriptor
	// and define.
	Key string `yaml:"key,omitempty"`

	// Value is the operand for set and define. A map of the form
	// {ref: name} passes the named binding's handle instead.
	Value any `yaml:"value,omitempty"`

	// Args are the operands for call, new and all, with the same
	// {ref: name} convention as Value.
	Args []any `yaml:"args,omitempty"`

	// As binds the step's resulting handle (or iterator) under this
	// name. Ignored for steps that produce no handle.
	As string `yaml:"as,omitempty"`

	// Count is how many iteration steps next requests. Defaults to 1.
	Count int `yaml:"count,omitempty"`
}

// Known step operations.
const (
	OpGet        = "get"
	OpSet        = "set"
	OpDelete     = "delete"
	OpCall       = "call"
	OpNew        = "new"
	OpHas        = "has"
	OpKeys       = "keys"
	OpDescriptor = "descriptor"
	OpAwait      = "await"
	OpAll        = "all"
	OpEnumerate  = "enumerate"
	OpNext       = "next"
	OpCollect    = "collect"
	OpRelease    = "release"
)

// Load reads, schema-validates and parses a scenario YAML file.
func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	return Parse(data)
}

// Parse schema-validates and decodes scenario YAML from memory.
func Parse(data []byte) (*Scenario, error) {
	if err := Validate(data); err != nil {
		return nil, err
	}

	// Strict decode catches typos the schema's open fields would let
	// through.
	var sc Scenario
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&sc); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := checkScenario(&sc); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &sc, nil
}

// checkScenario enforces the structural rules the schema cannot
// express, like cross-field requirements.
func checkScenario(sc *Scenario) error {
	if sc.Name == "" {
		return fmt.Errorf("name is required")
	}
	if sc.SeedFunc != "" && sc.Seed != nil {
		return fmt.Errorf("seed and seed_func are mutually exclusive")
	}
	if len(sc.Steps) == 0 {
		return fmt.Errorf("steps list is required and must be non-empty")
	}
	for i, st := range sc.Steps {
		switch st.Op {
		case OpGet, OpDelete, OpHas, OpDescriptor:
			if st.Key == "" {
				return fmt.Errorf("step %d: %s requires key", i, st.Op)
			}
		case OpSet:
			if st.Key == "" {
				return fmt.Errorf("step %d: set requires key", i)
			}
		case OpNext, OpCollect:
			if st.Of == "" {
				return fmt.Errorf("step %d: %s requires an iterator binding in of", i, st.Op)
			}
		case OpAll:
			if len(st.Args) == 0 {
				return fmt.Errorf("step %d: all requires args", i)
			}
		case OpCall, OpNew, OpKeys, OpAwait, OpEnumerate, OpRelease:
			// No extra requirements.
		default:
			return fmt.Errorf("step %d: unknown op %q", i, st.Op)
		}
	}
	return nil
}
