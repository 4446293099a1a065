package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"voyager.app/generator/internal/model"
)

func newSpecCmd(a *app) *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "spec <idea>",
		Short: "Enhance an idea and generate its OpenAPI specification",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := a.specify(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return writeSpec(cmd, sess, out)
		},
	}

	cmd.Flags().StringVarP(&out, "output", "o", "", "write the spec to this file instead of stdout")
	return cmd
}

// specify runs enhance then specify in a fresh session.
func (a *app) specify(ctx context.Context, idea string) (*model.Session, error) {
	gen := a.services.Generation()

	sess, err := gen.Start(ctx, idea)
	if err != nil {
		return nil, err
	}
	return gen.GenerateSpec(ctx, sess.ID)
}

func writeSpec(cmd *cobra.Command, sess *model.Session, path string) error {
	if sess.SpecWarning != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "warning: %s\n", *sess.SpecWarning)
	}
	if path == "" {
		fmt.Fprintln(cmd.OutOrStdout(), sess.Spec)
		return nil
	}
	if err := os.WriteFile(path, []byte(sess.Spec), 0o644); err != nil {
		return fmt.Errorf("writing spec: %w", err)
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "spec written to %s\n", path)
	return nil
}
