package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func newListCmd(g *globals) *cobra.Command {
	var params bool
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the effects in the catalog",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			snap, err := g.discover("", "")
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tVERSION\tNAME\tTAGS")
			for _, d := range snap.All() {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", d.ID, d.Version, d.Name, strings.Join(d.Tags, ","))
				if !params {
					continue
				}
				for _, p := range d.Parameters {
					fmt.Fprintf(w, "  %s\t%s\t%v\t%s\n", p.ID, p.Type, p.Default, p.Name)
				}
			}
			if err := w.Flush(); err != nil {
				return err
			}
			for _, f := range snap.Failures() {
				fmt.Fprintf(cmd.ErrOrStderr(), "skipped %s: %v\n", f.Ref, f.Err)
			}
			return nil
		},
	}
	cmd.Flags().BoolVarP(&params, "params", "p", false, "Show the parameters of each effect")
	return cmd
}
