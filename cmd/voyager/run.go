package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"voyager.app/generator/common/id"
	"voyager.app/generator/internal/codegen"
	"voyager.app/generator/internal/model"
	"voyager.app/generator/internal/prompt"
	"voyager.app/generator/internal/service"
)

type runOptions struct {
	specFile     string
	out          string
	backend      string
	database     string
	backendRepo  string
	frontend     string
	frontendRepo string
	deployment   string
	watch        bool
}

func newRunCmd(a *app) *cobra.Command {
	var o runOptions

	cmd := &cobra.Command{
		Use:   "run [idea]",
		Short: "Run the whole pipeline and submit code-generation jobs",
		Long: `run enhances the idea, generates the spec and submits one job per
requested target. With --spec an existing spec file is used instead and no
text-generation provider is called.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if o.backend == "" && o.frontend == "" {
				return codegen.ErrNoTargets
			}
			ctx := cmd.Context()

			sess, err := a.prepare(ctx, o, args)
			if err != nil {
				return err
			}
			if o.out != "" {
				if err := writeSpec(cmd, sess, o.out); err != nil {
					return err
				}
			}

			jobs := a.services.CodeGen()
			submitted, err := jobs.Submit(ctx, sess.ID, o.submitOptions())
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			for jobType, err := range submitted.Errors {
				fmt.Fprintf(cmd.ErrOrStderr(), "%s submission failed: %v\n", jobType, err)
			}
			printJobs(w, submitted.Session.Jobs)

			if !o.watch {
				return nil
			}
			return jobs.Watch(ctx, sess.ID, func(_ context.Context, out service.StatusOutcome) {
				printJobs(w, out.Session.Jobs)
			})
		},
	}

	f := cmd.Flags()
	f.StringVar(&o.specFile, "spec", "", "use this spec file instead of generating one")
	f.StringVarP(&o.out, "output", "o", "", "also write the spec to this file")
	f.StringVar(&o.backend, "backend", "", "backend framework, e.g. \"Ruby on Rails\"")
	f.StringVar(&o.database, "database", "", "backend database: postgresql, mysql, mariadb or sqlite")
	f.StringVar(&o.backendRepo, "backend-repo", "", "repository the backend pull request targets")
	f.StringVar(&o.frontend, "frontend", "", "frontend framework, e.g. \"Astro\"")
	f.StringVar(&o.frontendRepo, "frontend-repo", "", "repository the frontend pull request targets")
	f.StringVar(&o.deployment, "deployment", string(prompt.DeploymentDocker), "docker or local")
	f.BoolVarP(&o.watch, "watch", "w", false, "poll until every job finishes")
	return cmd
}

// prepare yields a session holding a spec, generated or read from --spec.
func (a *app) prepare(ctx context.Context, o runOptions, args []string) (*model.Session, error) {
	if o.specFile == "" {
		if len(args) == 0 {
			return nil, fmt.Errorf("an idea argument or --spec is required")
		}
		return a.specify(ctx, args[0])
	}

	data, err := os.ReadFile(o.specFile)
	if err != nil {
		return nil, fmt.Errorf("reading spec: %w", err)
	}

	// Uploaded specs skip enhancement, so the session is seeded directly.
	sess := &model.Session{ID: id.New()}
	if err := a.stores.Sessions().Create(ctx, sess); err != nil {
		return nil, err
	}
	return a.services.Generation().UploadSpec(ctx, sess.ID, string(data))
}

func (o runOptions) submitOptions() codegen.SubmitOptions {
	opts := codegen.SubmitOptions{Deployment: prompt.DeploymentMode(o.deployment)}
	if o.backend != "" {
		opts.Backend = &codegen.TargetOptions{
			Framework:  o.backend,
			Database:   prompt.Database(o.database),
			Repository: o.backendRepo,
		}
	}
	if o.frontend != "" {
		opts.Frontend = &codegen.TargetOptions{Framework: o.frontend, Repository: o.frontendRepo}
	}
	return opts
}

func printJobs(w io.Writer, jobs model.TrackedJobs) {
	now := time.Now()
	for _, j := range jobs.All() {
		printJob(w, j, now)
	}
}

func printJob(w io.Writer, j *model.CodeGenJob, now time.Time) {
	fmt.Fprintf(w, "%-8s %-24s %-9s %3d%%  %s", j.Type, j.ID, j.Status, j.Progress, model.FormatDuration(j.Duration(now)))
	if j.PullRequestURL != nil {
		fmt.Fprintf(w, "  %s", *j.PullRequestURL)
	}
	if j.Error != nil {
		fmt.Fprintf(w, "  error: %s", *j.Error)
	}
	fmt.Fprintln(w)
}
