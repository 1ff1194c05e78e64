package main

import (
	"encoding/json"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func newTemplatesCmd() *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "templates",
		Short: "List the template catalog",
		Long: `List every topology template with its layout and the quantity keys a
survey can set. Templates from templates.dir in the config replace builtin
ones of the same kind.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			catalog, err := loadCatalog(cfg)
			if err != nil {
				return err
			}
			templates := catalog.Templates()
			out := cmd.OutOrStdout()

			if jsonOutput {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(templates)
			}

			w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "KIND\tTITLE\tLAYOUT\tSIZE\tQUANTITIES")
			for _, t := range templates {
				fmt.Fprintf(w, "%s\t%s\t%s\t%gx%g\t%s\n",
					t.Kind, t.Title, t.Layout.Algorithm, t.Layout.Width, t.Layout.Height,
					strings.Join(t.QuantityKeys(), ","))
			}
			return w.Flush()
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "JSON output")
	return cmd
}
