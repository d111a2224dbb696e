package invest

import (
	"fmt"
	"io"
	"os"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// DefaultTolerance applies to targets that declare none.
var DefaultTolerance = decimal.NewFromFloat(0.02)

// strategyFile is the on-disk YAML shape of a strategy.
type strategyFile struct {
	Name    string `yaml:"name"`
	Targets []struct {
		Type      string  `yaml:"type"`
		Key       string  `yaml:"key"`
		Weight    float64 `yaml:"weight"`
		Tolerance float64 `yaml:"tolerance"`
	} `yaml:"targets"`
}

// ReadStrategy decodes a YAML strategy definition into its targets.
func ReadStrategy(r io.Reader) (string, []Target, error) {
	var file strategyFile
	if err := yaml.NewDecoder(r).Decode(&file); err != nil {
		return "", nil, fmt.Errorf("invalid strategy file: %w", err)
	}
	if file.Name == "" {
		return "", nil, fmt.Errorf("strategy has no name")
	}
	if len(file.Targets) == 0 {
		return "", nil, fmt.Errorf("strategy %q has no targets", file.Name)
	}

	targets := make([]Target, 0, len(file.Targets))
	for i, raw := range file.Targets {
		kind, err := ParseTargetType(raw.Type)
		if err != nil {
			return "", nil, fmt.Errorf("strategy %q target #%d: %w", file.Name, i+1, err)
		}
		if raw.Key == "" {
			return "", nil, fmt.Errorf("strategy %q target #%d has no key", file.Name, i+1)
		}
		if raw.Weight <= 0 || raw.Weight > 1 {
			return "", nil, fmt.Errorf("strategy %q target %q: weight %v out of (0, 1]", file.Name, raw.Key, raw.Weight)
		}
		tolerance := DefaultTolerance
		if raw.Tolerance > 0 {
			tolerance = decimal.NewFromFloat(raw.Tolerance)
		}
		targets = append(targets, Target{
			Strategy:  file.Name,
			Type:      kind,
			Key:       raw.Key,
			Weight:    decimal.NewFromFloat(raw.Weight),
			Tolerance: tolerance,
		})
	}
	return file.Name, targets, nil
}

// LoadStrategy reads a strategy definition from a YAML file.
func LoadStrategy(path string) (string, []Target, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", nil, err
	}
	defer f.Close()
	return ReadStrategy(f)
}
