package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/nishad/tcgaimport/internal/rules"
)

var platformsCmd = &cobra.Command{
	Use:   "platforms",
	Short: "List supported platforms and their outputs",
	Args:  cobra.NoArgs,
	RunE:  runPlatforms,
}

func runPlatforms(cmd *cobra.Command, args []string) error {
	w := tabwriter.NewWriter(stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "PLATFORM\tSHAPE\tDATA SUB TYPES\tADVERTISED")
	for _, name := range rules.Platforms() {
		p, err := rules.Lookup(name)
		if err != nil {
			return err
		}
		dsts := make([]string, 0, len(p.Rules))
		for _, r := range p.Rules {
			dsts = append(dsts, r.DataSubType)
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", name, p.Shape(), strings.Join(dsts, ","), strings.Join(rules.Outputs(p), ","))
	}
	return w.Flush()
}
