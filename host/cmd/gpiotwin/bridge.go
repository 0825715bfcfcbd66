package main

import (
	"github.com/spf13/cobra"

	"gpiotwin/host/bridge"
)

var (
	bridgeURL string

	bridgeCmd = &cobra.Command{
		Use:   "bridge",
		Short: "Forward sync lines from a serial device to the simulator",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := loadSettings(cmd)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("url") {
				cfg.HTTP.BaseURL = bridgeURL
			}

			port, err := openSerial(cfg)
			if err != nil {
				return err
			}

			ctx, cancel := signalContext()
			defer cancel()
			log.Info().Str("device", cfg.Serial.Device).Str("simulator", cfg.HTTP.BaseURL).Msg("bridging")
			return bridge.New(cfg.HTTP.BaseURL, nil, log).Run(ctx, port)
		},
	}
)

func init() {
	bridgeCmd.Flags().StringVarP(&bridgeURL, "url", "u", "", "Simulator base URL")
}
