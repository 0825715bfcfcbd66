package main

import (
	"github.com/spf13/cobra"

	"gpiotwin/host/simserver"
)

var (
	simListen string

	simCmd = &cobra.Command{
		Use:   "sim",
		Short: "Run the HTTP GPIO simulator",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, pins, err := loadSettings(cmd)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("listen") {
				cfg.Sim.Listen = simListen
			}

			ctx, cancel := signalContext()
			defer cancel()
			return simserver.New(pins, log).ListenAndServe(ctx, cfg.Sim.Listen)
		},
	}
)

func init() {
	simCmd.Flags().StringVarP(&simListen, "listen", "l", ":8080", "Listen address")
}
