// Command gpiotwin runs GPIO devices, the HTTP GPIO simulator and the
// serial tools around them.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"gpiotwin/config"
	"gpiotwin/core"
	"gpiotwin/host/serial"
)

// rootOptions are the flags shared by every subcommand.
type rootOptions struct {
	config     string
	pins       string
	backend    string
	device     string
	logLevel   string
	logConsole bool
}

var (
	rootOpts rootOptions

	rootCmd = &cobra.Command{
		Use:           "gpiotwin",
		Short:         "GPIO digital-twin device runtime and tools",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	log zerolog.Logger
)

func init() {
	rootOpts.register(rootCmd.PersistentFlags())
	rootCmd.AddCommand(serveCmd, simCmd, bridgeCmd, clientCmd, pinsCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func (o *rootOptions) register(pf *pflag.FlagSet) {
	pf.StringVarP(&o.config, "config", "c", "", "Host settings YAML file")
	pf.StringVarP(&o.pins, "pins", "p", "", "Pin table YAML file (default: embedded table)")
	pf.StringVarP(&o.backend, "backend", "b", "", "GPIO backend: regmap, expander, periph, http or file")
	pf.StringVarP(&o.device, "device", "d", "", "Serial device path")
	pf.StringVar(&o.logLevel, "log-level", "", "Log level (debug, info, warn, error)")
	pf.BoolVar(&o.logConsole, "log-console", false, "Human-readable log output")
}

// loadSettings reads the host settings and pin table, applies command
// line overrides and sets up logging.
func loadSettings(cmd *cobra.Command) (*config.Config, []core.PinConfig, error) {
	return rootOpts.load(cmd.Flags())
}

// load applies flags that were set explicitly on top of the settings
// file, so a flag always wins over YAML and YAML over defaults.
func (o *rootOptions) load(flags *pflag.FlagSet) (*config.Config, []core.PinConfig, error) {
	cfg, err := config.LoadConfigFile(o.config)
	if err != nil {
		return nil, nil, err
	}

	if flags.Changed("pins") {
		cfg.PinsFile = o.pins
	}
	if flags.Changed("backend") {
		cfg.Backend = o.backend
	}
	if flags.Changed("device") {
		cfg.Serial.Device = o.device
	}
	if flags.Changed("log-level") {
		cfg.Log.Level = o.logLevel
	}
	if flags.Changed("log-console") {
		cfg.Log.Console = o.logConsole
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}

	if err := setupLogging(cfg.Log); err != nil {
		return nil, nil, err
	}

	pins, err := config.LoadPinsFile(cfg.PinsFile)
	if err != nil {
		return nil, nil, err
	}
	return cfg, pins, nil
}

func setupLogging(lc config.LogConfig) error {
	level, err := zerolog.ParseLevel(lc.Level)
	if err != nil {
		return fmt.Errorf("log level: %w", err)
	}

	if lc.Console {
		log = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()
	} else {
		log = zerolog.New(os.Stderr).With().Timestamp().Logger()
	}
	log = log.Level(level)
	core.SetLogger(log)
	return nil
}

// signalContext is cancelled on SIGINT or SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

// openSerial opens the configured serial device.
func openSerial(cfg *config.Config) (serial.Port, error) {
	if cfg.Serial.Device == "" {
		return nil, fmt.Errorf("no serial device; use --device or serial.device")
	}
	return serial.Open(&serial.Config{
		Device:      cfg.Serial.Device,
		Baud:        cfg.Serial.Baud,
		ReadTimeout: cfg.Serial.ReadTimeout,
	})
}
