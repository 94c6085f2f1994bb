package agent

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Definition describes a user-defined agent.
type Definition struct {
	Name         string `yaml:"name"`
	SystemPrompt string `yaml:"system_prompt"`
	// UserPrompt replaces the task text when set.
	UserPrompt  string   `yaml:"user_prompt,omitempty"`
	Temperature *float64 `yaml:"temperature,omitempty"`
	Model       string   `yaml:"model,omitempty"`
}

// Validate checks required fields.
func (d Definition) Validate() error {
	if d.Name == "" {
		return errors.New("agent definition: name is required")
	}
	if d.SystemPrompt == "" {
		return fmt.Errorf("agent %q: system_prompt is required", d.Name)
	}
	if d.Temperature != nil && (*d.Temperature < 0 || *d.Temperature > 2) {
		return fmt.Errorf("agent %q: temperature %v out of range [0, 2]", d.Name, *d.Temperature)
	}
	return nil
}

type definitionsFile struct {
	Agents []Definition `yaml:"agents"`
}

// ParseDefinitions decodes an agents document:
//
//	agents:
//	  - name: summarizer
//	    system_prompt: You summarize text.
//	    temperature: 0.2
func ParseDefinitions(data []byte) ([]Definition, error) {
	var f definitionsFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing agent definitions: %w", err)
	}

	seen := make(map[string]bool, len(f.Agents))
	var errs []error
	for _, d := range f.Agents {
		if err := d.Validate(); err != nil {
			errs = append(errs, err)
			continue
		}
		if seen[d.Name] {
			errs = append(errs, fmt.Errorf("agent %q defined more than once", d.Name))
		}
		seen[d.Name] = true
	}
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return f.Agents, nil
}

// LoadDefinitions reads agent definitions from a YAML file.
func LoadDefinitions(path string) ([]Definition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading agent definitions: %w", err)
	}
	return ParseDefinitions(data)
}
