// Package registry declares the configuration surface each UI component
// exposes to the hosting design tool. The prop schema is a binding
// contract: renaming a prop key breaks every saved design referencing it.
package registry

import (
	"fmt"
	"sort"
)

// PropType enumerates the value kinds the design tool can edit.
type PropType string

const (
	TypeString       PropType = "string"
	TypeNumber       PropType = "number"
	TypeBoolean      PropType = "boolean"
	TypeObject       PropType = "object"
	TypeChoice       PropType = "choice"
	TypeSlot         PropType = "slot"
	TypeFunction     PropType = "function"
	TypeEventHandler PropType = "eventHandler"
)

var validTypes = map[PropType]struct{}{
	TypeString: {}, TypeNumber: {}, TypeBoolean: {}, TypeObject: {},
	TypeChoice: {}, TypeSlot: {}, TypeFunction: {}, TypeEventHandler: {},
}

// ArgType describes one argument of an event-handler prop.
type ArgType struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

// Prop describes one entry of a component's configuration surface.
type Prop struct {
	Type        PropType  `json:"type"`
	Default     any       `json:"defaultValue,omitempty"`
	Description string    `json:"description,omitempty"`
	Options     []string  `json:"options,omitempty"`
	ArgTypes    []ArgType `json:"argTypes,omitempty"`
}

// Component describes one registered UI component.
type Component struct {
	Name        string          `json:"name"`
	DisplayName string          `json:"displayName"`
	Description string          `json:"description,omitempty"`
	ImportPath  string          `json:"importPath"`
	Props       map[string]Prop `json:"props"`
}

// Table is the full catalog keyed by component name.
type Table struct {
	components map[string]Component
	order      []string
}

// NewTable builds and validates a catalog. An invalid descriptor is a
// startup error, not a runtime degradation.
func NewTable(components []Component) (*Table, error) {
	t := &Table{components: make(map[string]Component, len(components))}
	for _, c := range components {
		if err := validateComponent(c); err != nil {
			return nil, err
		}
		if _, exists := t.components[c.Name]; exists {
			return nil, fmt.Errorf("registry: duplicate component %q", c.Name)
		}
		t.components[c.Name] = c
		t.order = append(t.order, c.Name)
	}
	sort.Strings(t.order)
	return t, nil
}

// Get returns one component descriptor.
func (t *Table) Get(name string) (Component, bool) {
	c, ok := t.components[name]
	return c, ok
}

// Manifest returns all descriptors in stable name order.
func (t *Table) Manifest() []Component {
	out := make([]Component, 0, len(t.order))
	for _, name := range t.order {
		out = append(out, t.components[name])
	}
	return out
}

func validateComponent(c Component) error {
	if c.Name == "" {
		return fmt.Errorf("registry: component with empty name")
	}
	if c.DisplayName == "" {
		return fmt.Errorf("registry: %s: empty display name", c.Name)
	}
	if c.ImportPath == "" {
		return fmt.Errorf("registry: %s: empty import path", c.Name)
	}
	for key, prop := range c.Props {
		if err := validateProp(prop); err != nil {
			return fmt.Errorf("registry: %s.%s: %w", c.Name, key, err)
		}
	}
	return nil
}

func validateProp(p Prop) error {
	if _, ok := validTypes[p.Type]; !ok {
		return fmt.Errorf("unknown type %q", p.Type)
	}
	if p.Type == TypeChoice && len(p.Options) == 0 {
		return fmt.Errorf("choice prop without options")
	}
	if p.Type != TypeChoice && len(p.Options) > 0 {
		return fmt.Errorf("options on non-choice prop")
	}
	if p.Type != TypeEventHandler && len(p.ArgTypes) > 0 {
		return fmt.Errorf("argTypes on non-eventHandler prop")
	}
	return validateDefault(p)
}

func validateDefault(p Prop) error {
	if p.Default == nil {
		return nil
	}
	switch p.Type {
	case TypeString:
		if _, ok := p.Default.(string); !ok {
			return fmt.Errorf("default is not a string")
		}
	case TypeNumber:
		switch p.Default.(type) {
		case int, int64, float64:
		default:
			return fmt.Errorf("default is not a number")
		}
	case TypeBoolean:
		if _, ok := p.Default.(bool); !ok {
			return fmt.Errorf("default is not a boolean")
		}
	case TypeChoice:
		value, ok := p.Default.(string)
		if !ok {
			return fmt.Errorf("choice default is not a string")
		}
		for _, opt := range p.Options {
			if opt == value {
				return nil
			}
		}
		return fmt.Errorf("choice default %q not among options", value)
	case TypeSlot, TypeFunction, TypeEventHandler:
		return fmt.Errorf("%s prop cannot carry a default", p.Type)
	}
	return nil
}
