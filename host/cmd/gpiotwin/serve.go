package main

import (
	"io"
	"os"

	"github.com/spf13/cobra"

	"gpiotwin/host/runtime"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run a device on this host",
	Long: "Run the device main loop with the selected GPIO backend. Command lines are read " +
		"from the serial device when one is configured, otherwise from stdin; responses " +
		"and sync lines go back the same way.",
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, pins, err := loadSettings(cmd)
		if err != nil {
			return err
		}

		drv, closer, err := runtime.NewDriver(cfg, pins, log)
		if err != nil {
			return err
		}
		if closer != nil {
			defer closer.Close()
		}

		var (
			in  io.Reader = os.Stdin
			out io.Writer = os.Stdout
		)
		if cfg.Serial.Device != "" {
			port, err := openSerial(cfg)
			if err != nil {
				return err
			}
			defer port.Close()
			in, out = port, port
		}

		rt, err := runtime.New(drv, pins, out, cfg.PollInterval, log)
		if err != nil {
			return err
		}

		ctx, cancel := signalContext()
		defer cancel()
		log.Info().Str("backend", cfg.Backend).Str("device", cfg.Serial.Device).Msg("serving")
		return rt.Run(ctx, in)
	},
}
