package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"voyager.app/generator/internal/codegen"
)

func newStatusCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "status <job-id>...",
		Short: "Show the normalized status of code-generation jobs",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := codegen.NewClient(a.cfg.CodeGen, nil)

			for _, jobID := range args {
				job, err := client.CheckStatus(cmd.Context(), jobID)
				if err != nil {
					return fmt.Errorf("%s: %w", jobID, err)
				}
				if job == nil {
					fmt.Fprintf(cmd.ErrOrStderr(), "%s: not found\n", jobID)
					continue
				}
				printJob(cmd.OutOrStdout(), job, time.Now())
			}
			return nil
		},
	}
}
