package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"voyager.app/generator/common/id"
	"voyager.app/generator/common/logger"
	"voyager.app/generator/core/config"
	"voyager.app/generator/internal/llm"
	"voyager.app/generator/internal/queue"
	"voyager.app/generator/internal/service"
	"voyager.app/generator/internal/store"
)

// app is what every subcommand shares once config is loaded.
type app struct {
	cfg      config.Config
	services *service.Services
	stores   *store.Stores
}

func newRootCmd() *cobra.Command {
	var verbose bool
	a := &app{}

	root := &cobra.Command{
		Use:   "voyager",
		Short: "Turn a plain-language idea into an OpenAPI spec and generated code",
		Long: `voyager runs the generation pipeline from a terminal:

  idea -> enhanced prompt -> OpenAPI spec -> code-generation jobs -> status

Examples:
  voyager spec "a todo list API" -o todo.yaml
  voyager run "a todo list API" --backend "Ruby on Rails" --database postgresql --watch
  voyager status run-123
  voyager frameworks --target frontend`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			level := slog.LevelWarn
			if verbose {
				level = slog.LevelDebug
			}
			slog.SetDefault(slog.New(logger.NewTraceHandler(
				slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))))

			cfg, err := config.Load()
			if err != nil {
				return err
			}
			// Node 2 keeps CLI ids apart from the server's.
			if err := id.Init(2); err != nil {
				return err
			}

			a.cfg = cfg
			a.stores = store.NewStores()
			a.services = service.NewServices(cfg, a.stores,
				llm.NewConfigured(cfg.OpenAI, cfg.Anthropic), queue.NopPublisher{})
			return nil
		},
	}

	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log pipeline progress to stderr")

	root.AddCommand(
		newSpecCmd(a),
		newRunCmd(a),
		newStatusCmd(a),
		newPromptCmd(),
		newFrameworksCmd(),
		newEventsCmd(a),
	)
	return root
}
