package compiler

import (
	"fmt"
	"io"

	"github.com/goccy/go-yaml"
)

type location struct {
	Line   int `yaml:"line"`
	Column int `yaml:"column"`
}

// resolution is one entry of the YAML dump. Declared is omitted for the
// predeclared classes, which have no source position.
type resolution struct {
	Name     string    `yaml:"name"`
	Kind     string    `yaml:"kind"`
	At       location  `yaml:"at"`
	Declared *location `yaml:"declared,omitempty"`
}

// DumpResolutions writes every identifier the analyzer bound, in source order
// of the analysis, together with the position of its declaration.
func (p *Program) DumpResolutions(out io.Writer) error {
	entries := make([]resolution, 0, len(p.result.Resolutions))
	for _, r := range p.result.Resolutions {
		entry := resolution{
			Name: r.Name,
			Kind: r.Kind,
			At:   location{Line: r.Position.Line, Column: r.Position.Column},
		}
		if r.Declared.IsValid() {
			entry.Declared = &location{Line: r.Declared.Line, Column: r.Declared.Column}
		}
		entries = append(entries, entry)
	}
	data, err := yaml.Marshal(entries)
	if err != nil {
		return fmt.Errorf("encoding resolutions: %w", err)
	}
	_, err = out.Write(data)
	return err
}
