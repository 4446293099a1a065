package service

import (
	"log/slog"
	"net/http"
	"time"

	"voyager.app/generator/core/config"
	"voyager.app/generator/internal/codegen"
	"voyager.app/generator/internal/llm"
	"voyager.app/generator/internal/poller"
	"voyager.app/generator/internal/queue"
	"voyager.app/generator/internal/store"
)

type Services struct {
	stores     *store.Stores
	router     *llm.Router
	providers  map[string]llm.Provider
	publisher  queue.Publisher
	codegen    *codegen.Client
	poller     *poller.Poller
	archive    store.SpecArchive
	httpClient *http.Client
	cfg        config.Config
}

func NewServices(cfg config.Config, stores *store.Stores, providers map[string]llm.Provider, publisher queue.Publisher) *Services {
	httpClient := &http.Client{Timeout: 30 * time.Second}
	client := codegen.NewClient(cfg.CodeGen, httpClient)

	var archive store.SpecArchive
	if cfg.Archive.Enabled() {
		local, err := store.NewLocalSpecArchive(cfg.Archive.Dir)
		if err != nil {
			slog.Warn("spec archive disabled", "dir", cfg.Archive.Dir, "error", err)
		} else {
			archive = local
		}
	}

	return &Services{
		archive:    archive,
		cfg:        cfg,
		stores:     stores,
		providers:  providers,
		router:     llm.NewRouter(llm.Policy(cfg.LLMPolicy), providers),
		publisher:  publisher,
		codegen:    client,
		poller:     poller.New(client, cfg.CodeGen.PollInterval),
		httpClient: httpClient,
	}
}

func (s *Services) Generation() GenerationService {
	if s.archive == nil {
		return NewGenerationService(s.router, s.stores.Sessions())
	}
	return NewGenerationService(s.router, s.stores.Sessions(), WithSpecArchive(s.archive))
}

func (s *Services) CodeGen() CodeGenService {
	return NewCodeGenService(s.codegen, s.poller, s.publisher, s.stores.Sessions())
}

func (s *Services) Repositories() RepositoryService {
	return NewRepositoryService(s.cfg.GitHub, s.cfg.GitLab, s.httpClient)
}

func (s *Services) Webhook() WebhookService {
	return NewWebhookService(s.cfg.Webhook, s.stores.Sessions(), s.httpClient)
}

func (s *Services) Provider() ProviderService {
	return NewProviderService(s.router, llm.Policy(s.cfg.LLMPolicy), s.providers)
}
