// Package config loads the pin table and the host runtime settings.
package config

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"golang.org/x/exp/slices"
	"gopkg.in/yaml.v3"

	"gpiotwin/core"
)

//go:embed pins.yaml
var rawPins []byte

// PinFile is the YAML layout of a pin table.
type PinFile struct {
	Pins []PinEntry `yaml:"pins"`
}

// PinEntry is one pin as written in YAML.
type PinEntry struct {
	Name      string                  `yaml:"name"`
	Direction string                  `yaml:"direction"`
	Pull      string                  `yaml:"pull"`
	Mappings  map[string]MappingEntry `yaml:"mappings"`
}

// MappingEntry is a platform mapping as written in YAML.
type MappingEntry struct {
	Port uint8  `yaml:"port"`
	Bit  uint8  `yaml:"bit"`
	Line string `yaml:"line"`
}

var mappingKinds = []core.MappingKind{
	core.MappingRegmap,
	core.MappingPeriph,
	core.MappingRP2040,
	core.MappingArduino,
	core.MappingExpander,
}

// DefaultPins returns the embedded pin table.
func DefaultPins() ([]core.PinConfig, error) {
	return LoadPins(rawPins)
}

// LoadPinsFile loads a pin table from path, or the embedded default when
// path is empty.
func LoadPinsFile(path string) ([]core.PinConfig, error) {
	if path == "" {
		return DefaultPins()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read pin table: %w", err)
	}
	return LoadPins(data)
}

// LoadPins parses and validates a YAML pin table.
func LoadPins(data []byte) ([]core.PinConfig, error) {
	var file PinFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, core.Errf(core.ConfigInvalid, "load_pins", "", err)
	}

	if len(file.Pins) > core.MaxPins {
		return nil, core.Errf(core.ConfigInvalid, "load_pins", "",
			fmt.Errorf("%d pins, at most %d supported", len(file.Pins), core.MaxPins))
	}

	cfgs := make([]core.PinConfig, 0, len(file.Pins))
	seen := make([]string, 0, len(file.Pins))
	for i, p := range file.Pins {
		cfg, err := p.pinConfig()
		if err != nil {
			return nil, core.Errf(core.ConfigInvalid, "load_pins", p.Name,
				fmt.Errorf("pin %d: %w", i, err))
		}
		if slices.Contains(seen, cfg.Name) {
			return nil, core.Errf(core.ConfigInvalid, "load_pins", cfg.Name,
				fmt.Errorf("pin %d: duplicate name", i))
		}
		seen = append(seen, cfg.Name)
		cfgs = append(cfgs, cfg)
	}
	return cfgs, nil
}

func (p PinEntry) pinConfig() (core.PinConfig, error) {
	if err := validName(p.Name); err != nil {
		return core.PinConfig{}, err
	}
	dir, err := ParseDirection(p.Direction)
	if err != nil {
		return core.PinConfig{}, err
	}
	pull, err := ParsePull(p.Pull)
	if err != nil {
		return core.PinConfig{}, err
	}

	cfg := core.PinConfig{Name: p.Name, Direction: dir, Pull: pull}

	kinds := make([]string, 0, len(p.Mappings))
	for k := range p.Mappings {
		kinds = append(kinds, k)
	}
	slices.Sort(kinds)
	for _, k := range kinds {
		kind := core.MappingKind(k)
		if !slices.Contains(mappingKinds, kind) {
			return core.PinConfig{}, fmt.Errorf("unknown mapping kind %q", k)
		}
		m := p.Mappings[k]
		cfg.Mappings = append(cfg.Mappings, core.Mapping{Kind: kind, Port: m.Port, Bit: m.Bit, Line: m.Line})
	}
	return cfg, nil
}

func validName(name string) error {
	if name == "" {
		return fmt.Errorf("empty name")
	}
	if len(name) > core.MaxPinNameLen {
		return fmt.Errorf("name %q longer than %d", name, core.MaxPinNameLen)
	}
	if strings.ContainsAny(name, " \t\r\n\"\\{}/") {
		return fmt.Errorf("name %q contains reserved characters", name)
	}
	// Names become file names under the filesim directory.
	if strings.Contains(name, "..") {
		return fmt.Errorf("name %q contains reserved sequence \"..\"", name)
	}
	return nil
}

// ParseDirection parses "input" or "output" (empty means input).
func ParseDirection(s string) (core.Direction, error) {
	switch strings.ToLower(s) {
	case "", "input", "in":
		return core.DirInput, nil
	case "output", "out":
		return core.DirOutput, nil
	}
	return core.DirInput, fmt.Errorf("unknown direction %q", s)
}

// ParsePull parses "none", "up" or "down" (empty means none).
func ParsePull(s string) (core.Pull, error) {
	switch strings.ToLower(s) {
	case "", "none":
		return core.PullNone, nil
	case "up":
		return core.PullUp, nil
	case "down":
		return core.PullDown, nil
	}
	return core.PullNone, fmt.Errorf("unknown pull %q", s)
}
