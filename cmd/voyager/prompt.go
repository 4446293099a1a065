package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"voyager.app/generator/internal/prompt"
)

func newPromptCmd() *cobra.Command {
	var p struct {
		target, framework, database, repository, deployment, specFile string
	}

	cmd := &cobra.Command{
		Use:   "prompt",
		Short: "Print the code-generation prompt for a spec without submitting it",
		RunE: func(cmd *cobra.Command, _ []string) error {
			var specText string
			if p.specFile != "" {
				data, err := os.ReadFile(p.specFile)
				if err != nil {
					return fmt.Errorf("reading spec: %w", err)
				}
				specText = string(data)
			}

			text, err := prompt.BuildCodeGenPrompt(prompt.CodeGenParams{
				Target:     prompt.Target(p.target),
				Framework:  p.framework,
				Spec:       specText,
				Database:   prompt.Database(p.database),
				Repository: p.repository,
				Deployment: prompt.DeploymentMode(p.deployment),
			})
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), text)
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&p.target, "target", string(prompt.TargetBackend), "backend or frontend")
	f.StringVar(&p.framework, "framework", "", "framework id from `voyager frameworks`")
	f.StringVar(&p.database, "database", "", "backend database")
	f.StringVar(&p.repository, "repo", "", "repository the pull request targets")
	f.StringVar(&p.deployment, "deployment", string(prompt.DeploymentDocker), "docker or local")
	f.StringVar(&p.specFile, "spec", "", "spec file to embed")
	_ = cmd.MarkFlagRequired("framework")
	return cmd
}
