// Package catalog describes the selectable input sources and output channels.
//
// The wizard core only ever looks at an option's ID. Names, descriptions and
// Meta are display data for renderers.
package catalog

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/aretw0/agentforge/pkg/domain"
	"github.com/aretw0/agentforge/pkg/schema"
	"gopkg.in/yaml.v3"
)

//go:embed default.yaml
var defaultCatalog []byte

// Option is a selectable input source or output channel.
type Option struct {
	ID          string            `yaml:"id" json:"id"`
	Name        string            `yaml:"name" json:"name"`
	Description string            `yaml:"description,omitempty" json:"description,omitempty"`
	Meta        map[string]string `yaml:"meta,omitempty" json:"meta,omitempty"`

	// Fields, when set, replace the built-in requirements for this id.
	Fields []domain.Field `yaml:"fields,omitempty" json:"fields,omitempty"`
}

// Catalog is the set of options shown on the selection steps.
type Catalog struct {
	Inputs  []Option `yaml:"inputs" json:"inputs"`
	Outputs []Option `yaml:"outputs" json:"outputs"`
}

// Default returns the embedded catalog.
func Default() *Catalog {
	c, err := Parse(defaultCatalog, ".yaml")
	if err != nil {
		panic(fmt.Sprintf("embedded catalog is invalid: %v", err))
	}
	return c
}

// Load reads a catalog file (YAML or JSON, chosen by extension).
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog: %w", err)
	}
	return Parse(data, filepath.Ext(path))
}

// Parse decodes and checks a catalog document. ext selects the format (".json" or YAML).
func Parse(data []byte, ext string) (*Catalog, error) {
	var c Catalog
	if strings.EqualFold(ext, ".json") {
		if err := json.Unmarshal(data, &c); err != nil {
			return nil, fmt.Errorf("failed to parse catalog json: %w", err)
		}
	} else {
		if err := yaml.Unmarshal(data, &c); err != nil {
			return nil, fmt.Errorf("failed to parse catalog yaml: %w", err)
		}
	}

	if err := c.validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

func (c *Catalog) validate() error {
	check := func(kind string, opts []Option) error {
		seen := make(map[string]bool)
		for i, o := range opts {
			if o.ID == "" {
				return fmt.Errorf("%s option %d has no id", kind, i)
			}
			if seen[o.ID] {
				return fmt.Errorf("duplicate %s option '%s'", kind, o.ID)
			}
			seen[o.ID] = true
			for _, f := range o.Fields {
				if f.Name == "" {
					return fmt.Errorf("%s option '%s' has a field without name", kind, o.ID)
				}
			}
		}
		return nil
	}
	if err := check("input", c.Inputs); err != nil {
		return err
	}
	return check("output", c.Outputs)
}

// InputIDs returns the ids of the input options in catalog order.
func (c *Catalog) InputIDs() []string {
	return ids(c.Inputs)
}

// OutputIDs returns the ids of the output options in catalog order.
func (c *Catalog) OutputIDs() []string {
	return ids(c.Outputs)
}

// Input looks up an input option.
func (c *Catalog) Input(id string) (Option, bool) {
	return find(c.Inputs, id)
}

// Output looks up an output option.
func (c *Catalog) Output(id string) (Option, bool) {
	return find(c.Outputs, id)
}

// Rules returns the requirement table declared by the catalog.
// Merge it over schema.DefaultRules to extend the built-in table.
func (c *Catalog) Rules() schema.Rules {
	rules := schema.Rules{
		Inputs:  make(map[string][]domain.Field),
		Outputs: make(map[string][]domain.Field),
	}
	for _, o := range c.Inputs {
		if len(o.Fields) > 0 {
			rules.Inputs[o.ID] = o.Fields
		}
	}
	for _, o := range c.Outputs {
		if len(o.Fields) > 0 {
			rules.Outputs[o.ID] = o.Fields
		}
	}
	return rules
}

func ids(opts []Option) []string {
	out := make([]string, len(opts))
	for i, o := range opts {
		out[i] = o.ID
	}
	return out
}

func find(opts []Option, id string) (Option, bool) {
	for _, o := range opts {
		if o.ID == id {
			return o, true
		}
	}
	return Option{}, false
}
