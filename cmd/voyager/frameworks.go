package main

import (
	"fmt"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"voyager.app/generator/internal/prompt"
)

func newFrameworksCmd() *cobra.Command {
	var target string

	cmd := &cobra.Command{
		Use:   "frameworks",
		Short: "List the frameworks a target can be generated with",
		RunE: func(cmd *cobra.Command, _ []string) error {
			t := prompt.Target(target)
			if !t.IsValid() {
				return prompt.ErrInvalidTarget
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tNAME\tDATABASES")
			for _, f := range prompt.Frameworks(t) {
				dbs := make([]string, 0, len(f.Databases))
				for db := range f.Databases {
					dbs = append(dbs, string(db))
				}
				sort.Strings(dbs)
				fmt.Fprintf(tw, "%s\t%s\t%s\n", f.ID, f.Name, strings.Join(dbs, ","))
			}
			return tw.Flush()
		},
	}

	cmd.Flags().StringVar(&target, "target", string(prompt.TargetBackend), "backend or frontend")
	return cmd
}
