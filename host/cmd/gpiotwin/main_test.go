package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/spf13/pflag"

	"gpiotwin/config"
	"gpiotwin/core"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

type settings struct {
	Backend string
	Device  string
	Level   string
	Console bool
	Pins    []string
}

func TestLoadSettingsPrecedence(t *testing.T) {
	defaults, err := config.DefaultPins()
	if err != nil {
		t.Fatal(err)
	}
	var defaultNames []string
	for _, p := range defaults {
		defaultNames = append(defaultNames, p.Name)
	}

	hostYAML := writeFile(t, "host.yaml",
		"backend: file\nserial:\n  device: /dev/ttyACM0\nlog:\n  level: debug\n  console: true\n")
	pinsYAML := writeFile(t, "pins.yaml", "pins:\n  - name: RELAY\n    direction: output\n")

	tests := []struct {
		name string
		args []string
		want settings
	}{
		{
			name: "defaults",
			want: settings{Backend: "regmap", Level: "info", Pins: defaultNames},
		},
		{
			name: "settings file",
			args: []string{"--config", hostYAML},
			want: settings{Backend: "file", Device: "/dev/ttyACM0", Level: "debug", Console: true, Pins: defaultNames},
		},
		{
			name: "flags win over settings file",
			args: []string{"-c", hostYAML, "--backend", "http", "-d", "/dev/ttyUSB1", "--log-level", "warn", "--log-console=false"},
			want: settings{Backend: "http", Device: "/dev/ttyUSB1", Level: "warn", Pins: defaultNames},
		},
		{
			name: "pin table flag",
			args: []string{"--pins", pinsYAML},
			want: settings{Backend: "regmap", Level: "info", Pins: []string{"RELAY"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var opts rootOptions
			flags := pflag.NewFlagSet("gpiotwin", pflag.ContinueOnError)
			opts.register(flags)
			if err := flags.Parse(tt.args); err != nil {
				t.Fatalf("Parse failed: %v", err)
			}

			cfg, pins, err := opts.load(flags)
			if err != nil {
				t.Fatalf("load failed: %v", err)
			}

			got := settings{
				Backend: cfg.Backend,
				Device:  cfg.Serial.Device,
				Level:   cfg.Log.Level,
				Console: cfg.Log.Console,
			}
			for _, p := range pins {
				got.Pins = append(got.Pins, p.Name)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("settings mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestLoadSettingsErrors(t *testing.T) {
	badPins := writeFile(t, "pins.yaml", "pins:\n  - name: ../escape\n")

	tests := []struct {
		name   string
		args   []string
		config bool
	}{
		{"unknown backend", []string{"--backend", "gpiochip"}, true},
		{"invalid pin table", []string{"--pins", badPins}, true},
		{"bad log level", []string{"--log-level", "loud"}, false},
		{"missing settings file", []string{"--config", filepath.Join(t.TempDir(), "none.yaml")}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var opts rootOptions
			flags := pflag.NewFlagSet("gpiotwin", pflag.ContinueOnError)
			opts.register(flags)
			if err := flags.Parse(tt.args); err != nil {
				t.Fatalf("Parse failed: %v", err)
			}

			_, _, err := opts.load(flags)
			if err == nil {
				t.Fatal("Expected error")
			}
			if tt.config && !core.IsCode(err, core.ConfigInvalid) {
				t.Errorf("Expected config_invalid, got %v", err)
			}
		})
	}
}
