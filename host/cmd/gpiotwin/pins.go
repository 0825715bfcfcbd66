package main

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"gpiotwin/core"
)

var pinsCmd = &cobra.Command{
	Use:   "pins",
	Short: "Print the validated pin table",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, pins, err := loadSettings(cmd)
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "NAME\tDIRECTION\tPULL\tMAPPINGS")
		for _, p := range pins {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", p.Name, p.Direction, p.Pull, formatMappings(p.Mappings))
		}
		return w.Flush()
	},
}

func formatMappings(ms []core.Mapping) string {
	parts := make([]string, 0, len(ms))
	for _, m := range ms {
		switch {
		case m.Line != "":
			parts = append(parts, fmt.Sprintf("%s=%s", m.Kind, m.Line))
		case m.Kind == core.MappingRegmap || m.Kind == core.MappingExpander:
			parts = append(parts, fmt.Sprintf("%s=%d.%d", m.Kind, m.Port, m.Bit))
		default:
			parts = append(parts, fmt.Sprintf("%s=%d", m.Kind, m.Bit))
		}
	}
	return strings.Join(parts, " ")
}
