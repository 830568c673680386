package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	awsdynamodb "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	awsssm "github.com/aws/aws-sdk-go-v2/service/ssm"

	"ask-web/handler"
	"ask-web/internal/config"
	"ask-web/internal/integrations/openai"
	"ask-web/internal/integrations/paramstore"
	"ask-web/internal/repository"
	"ask-web/internal/usecase"
	"ask-web/internal/web"
)

// loadConfig reads the dotenv file and the environment, then installs the
// default logger at the configured level.
func loadConfig(envFile string) (config.Config, error) {
	if err := config.LoadDotEnv(envFile); err != nil {
		return config.Config{}, err
	}
	cfg, err := config.Load()
	if err != nil {
		return config.Config{}, err
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.SlogLevel()})))
	cfg.LogFallbacks(slog.Default())
	return cfg, nil
}

func newAskService(ctx context.Context, cfg config.Config) (*usecase.AskService, error) {
	var keys openai.KeySource = openai.StaticKey(cfg.OpenAIAPIKey)
	var recorder usecase.ExchangeRecorder

	if cfg.NeedsAWS() {
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx)
		if err != nil {
			return nil, fmt.Errorf("load AWS config: %w", err)
		}
		if cfg.OpenAIAPIKey == "" {
			ssmClient, err := paramstore.New(awsssm.NewFromConfig(awsCfg))
			if err != nil {
				return nil, fmt.Errorf("create SSM client: %w", err)
			}
			tokens, err := paramstore.NewTokenSource(ssmClient, paramstore.TokenParameterName(cfg.ParamPrefix))
			if err != nil {
				return nil, fmt.Errorf("create token source: %w", err)
			}
			keys = tokens
			slog.Info("reading API key from parameter store", "prefix", cfg.ParamPrefix)
		}
		if cfg.ExchangeTable != "" {
			repo, err := repository.New(awsdynamodb.NewFromConfig(awsCfg), cfg.ExchangeTable)
			if err != nil {
				return nil, fmt.Errorf("create exchange log: %w", err)
			}
			recorder = repo
			slog.Info("exchange log enabled", "table", cfg.ExchangeTable)
		}
	}

	llm, err := openai.NewClient(keys,
		openai.WithBaseURL(cfg.OpenAIBaseURL),
		openai.WithHTTPClient(&http.Client{Timeout: cfg.UpstreamTimeout}),
	)
	if err != nil {
		return nil, fmt.Errorf("create completion client: %w", err)
	}

	svc, err := usecase.NewAskService(llm, usecase.Settings{
		Model:          cfg.Model,
		MaxTokens:      cfg.MaxTokens,
		SystemPrompt:   cfg.SystemPrompt,
		MaxQuestionLen: cfg.MaxQuestionLen,
		Moderation:     cfg.Moderation,
		Recorder:       recorder,
	})
	if err != nil {
		return nil, fmt.Errorf("create ask service: %w", err)
	}
	return svc, nil
}

func newHandler(ctx context.Context, cfg config.Config) (*handler.Handler, error) {
	svc, err := newAskService(ctx, cfg)
	if err != nil {
		return nil, err
	}
	pages, err := web.NewRenderer()
	if err != nil {
		return nil, err
	}
	return handler.NewHandler(svc, pages)
}
