// Command descry is the Descry deep-research CLI.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/custodia-labs/descry-cli/internal/adapters/driven/config/file"
	"github.com/custodia-labs/descry-cli/internal/adapters/driven/llm/anthropic"
	"github.com/custodia-labs/descry-cli/internal/adapters/driven/llm/ollama"
	"github.com/custodia-labs/descry-cli/internal/adapters/driven/llm/openai"
	"github.com/custodia-labs/descry-cli/internal/adapters/driven/notify/smtp"
	"github.com/custodia-labs/descry-cli/internal/adapters/driven/search/duckduckgo"
	"github.com/custodia-labs/descry-cli/internal/adapters/driven/search/github"
	"github.com/custodia-labs/descry-cli/internal/adapters/driven/search/googlecse"
	"github.com/custodia-labs/descry-cli/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/descry-cli/internal/adapters/driven/trace"
	"github.com/custodia-labs/descry-cli/internal/adapters/driving/cli"
	"github.com/custodia-labs/descry-cli/internal/core/ports/driven"
	"github.com/custodia-labs/descry-cli/internal/core/services"
	"github.com/custodia-labs/descry-cli/internal/logger"
)

// version is set at build time via -ldflags "-X main.version=...".
var version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	config, err := file.NewConfigStore("")
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}

	reports, err := sqlite.NewStore("")
	if err != nil {
		return fmt.Errorf("opening report archive: %w", err)
	}
	defer func() {
		if err := reports.Close(); err != nil {
			logger.Warn("closing report archive: %v", err)
		}
	}()

	prompts, err := file.NewPromptStore("")
	if err != nil {
		return fmt.Errorf("opening prompt store: %w", err)
	}
	if err := prompts.Watch(); err != nil {
		logger.Debug("prompt watcher unavailable: %v", err)
	}
	defer prompts.StopWatch()

	llm, err := buildCompletionService(config)
	if err != nil {
		return err
	}

	searcher, err := buildSearchProvider(ctx, config)
	if err != nil {
		return err
	}

	notifier, err := buildNotifier(config)
	if err != nil {
		return err
	}

	sink := trace.NewLogSink()

	gateway := services.NewCompletionGateway(llm, sink)
	gateway.SetPromptStore(prompts)

	orchestrator := services.NewResearchOrchestrator(gateway, searcher, notifier, reports, sink)

	cli.SetVersion(version)
	cli.SetServices(orchestrator, reports, config)
	return cli.Execute(ctx)
}

// buildCompletionService constructs the configured completion provider.
// Defaults to OpenAI when nothing is configured.
func buildCompletionService(config driven.ConfigStore) (driven.CompletionService, error) {
	provider := config.GetString(driven.ConfigLLMProvider)
	apiKey := config.GetString(driven.ConfigLLMAPIKey)
	model := config.GetString(driven.ConfigLLMModel)

	switch provider {
	case "anthropic":
		svc, err := anthropic.NewCompletionService(anthropic.Config{APIKey: apiKey, Model: model})
		if err != nil {
			return nil, fmt.Errorf("configuring anthropic: %w (run 'descry settings setup')", err)
		}
		return svc, nil

	case "ollama":
		return ollama.NewCompletionService(ollama.Config{Model: model}), nil

	case "openai", "":
		svc, err := openai.NewCompletionService(openai.Config{APIKey: apiKey, Model: model})
		if err != nil {
			return nil, fmt.Errorf("configuring openai: %w (run 'descry settings setup')", err)
		}
		return svc, nil

	default:
		return nil, fmt.Errorf("unknown completion provider %q", provider)
	}
}

// buildSearchProvider constructs the configured search provider.
// Defaults to DuckDuckGo, which needs no credentials.
func buildSearchProvider(ctx context.Context, config driven.ConfigStore) (driven.SearchProvider, error) {
	switch provider := config.GetString(driven.ConfigSearchProvider); provider {
	case "google":
		svc, err := googlecse.New(ctx, googlecse.Config{
			APIKey:   config.GetString(driven.ConfigGoogleAPIKey),
			EngineID: config.GetString(driven.ConfigGoogleEngineID),
		})
		if err != nil {
			return nil, fmt.Errorf("configuring google search: %w (run 'descry settings setup')", err)
		}
		return svc, nil

	case "github":
		return github.New(ctx, github.Config{
			Token: config.GetString(driven.ConfigGitHubToken),
		}), nil

	case "duckduckgo", "":
		return duckduckgo.New(), nil

	default:
		return nil, fmt.Errorf("unknown search provider %q", provider)
	}
}

// buildNotifier constructs the SMTP notifier when delivery is configured.
// Returns nil when no SMTP host is set; delivery is optional.
func buildNotifier(config driven.ConfigStore) (driven.Notifier, error) {
	host := config.GetString(driven.ConfigSMTPHost)
	if host == "" {
		return nil, nil
	}

	notifier, err := smtp.New(smtp.Config{
		Host:     host,
		Port:     config.GetInt(driven.ConfigSMTPPort),
		Username: config.GetString(driven.ConfigSMTPUser),
		Password: config.GetString(driven.ConfigSMTPPassword),
		From:     config.GetString(driven.ConfigSMTPFrom),
		To:       config.GetString(driven.ConfigSMTPTo),
	})
	if err != nil {
		return nil, fmt.Errorf("configuring delivery: %w", err)
	}
	return notifier, nil
}
