package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"gpiotwin/core"
	"gpiotwin/host/client"
	"gpiotwin/host/serial"
)

var clientCmd = &cobra.Command{
	Use:   "client [command...]",
	Short: "Send commands to a device over serial",
	Long: "With arguments, send them as one command line and print the response. " +
		"Without, start an interactive prompt.",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, pins, err := loadSettings(cmd)
		if err != nil {
			return err
		}
		if cfg.Serial.Device == "" {
			return fmt.Errorf("no serial device; use --device or serial.device")
		}

		c, err := client.Connect(&serial.Config{
			Device:      cfg.Serial.Device,
			Baud:        cfg.Serial.Baud,
			ReadTimeout: cfg.Serial.ReadTimeout,
		}, core.PinNames(pins), log)
		if err != nil {
			return err
		}
		defer c.Close()

		if len(args) == 0 {
			return c.REPL(os.Stdin, os.Stdout)
		}
		resp, err := c.Command(strings.Join(args, " "))
		if err != nil {
			return err
		}
		fmt.Println(resp)
		return nil
	},
}
