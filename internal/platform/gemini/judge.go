package gemini

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"text/template"

	"github.com/phrazzld/vocab-api/internal/config"
	"github.com/phrazzld/vocab-api/internal/domain"
	"github.com/phrazzld/vocab-api/internal/judge"
	"github.com/phrazzld/vocab-api/internal/platform/logger"
	"google.golang.org/genai"
)

// contentGenerator is the slice of the genai Models API used by the judge.
type contentGenerator interface {
	GenerateContent(
		ctx context.Context,
		model string,
		contents []*genai.Content,
		config *genai.GenerateContentConfig,
	) (*genai.GenerateContentResponse, error)
}

// Judge implements judge.Judge on top of the Gemini API.
type Judge struct {
	logger      *slog.Logger
	generator   contentGenerator
	prompt      *template.Template
	model       string
	temperature float32
}

var _ judge.Judge = (*Judge)(nil)

// NewJudge creates a Gemini-backed judge from the judge configuration.
func NewJudge(ctx context.Context, logger *slog.Logger, cfg config.JudgeConfig) (*Judge, error) {
	if cfg.GeminiAPIKey == "" {
		return nil, fmt.Errorf("%w: gemini API key cannot be empty", judge.ErrInvalidConfig)
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.GeminiAPIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create Gemini client: %v", judge.ErrInvalidConfig, err)
	}

	return newJudge(client.Models, logger, cfg)
}

func newJudge(gen contentGenerator, logger *slog.Logger, cfg config.JudgeConfig) (*Judge, error) {
	if gen == nil {
		return nil, fmt.Errorf("%w: content generator cannot be nil", judge.ErrInvalidConfig)
	}
	if cfg.ModelName == "" {
		return nil, fmt.Errorf("%w: model name cannot be empty", judge.ErrInvalidConfig)
	}
	if logger == nil {
		logger = slog.Default()
	}

	tmpl, err := loadPromptTemplate(cfg.PromptTemplatePath)
	if err != nil {
		return nil, err
	}

	return &Judge{
		logger:      logger.With(slog.String("component", "gemini_judge")),
		generator:   gen,
		prompt:      tmpl,
		model:       cfg.ModelName,
		temperature: cfg.Temperature,
	}, nil
}

// Judge asks the model for a verdict on vc. API failures are reported as
// judge.ErrTransientFailure; the caller decides whether to retry.
func (j *Judge) Judge(ctx context.Context, vc domain.ValidationContext, hints []string) (*judge.Result, error) {
	log := logger.FromContextOrDefault(ctx, j.logger)

	prompt, err := renderPrompt(j.prompt, vc, hints)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", judge.ErrInvalidConfig, err)
	}

	log.DebugContext(ctx, "calling Gemini judge",
		slog.String("model", j.model),
		slog.Int("prompt_length", len(prompt)),
		slog.Int("hints", len(hints)))

	resp, err := j.generator.GenerateContent(ctx, j.model, genai.Text(prompt), &genai.GenerateContentConfig{
		Temperature:      genai.Ptr(j.temperature),
		ResponseMIMEType: "application/json",
	})
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, err
		}
		var apiErr genai.APIError
		if errors.As(err, &apiErr) {
			log.WarnContext(ctx, "Gemini API error",
				slog.Int("code", apiErr.Code),
				slog.String("status", apiErr.Status))
		}
		return nil, fmt.Errorf("%w: %v", judge.ErrTransientFailure, err)
	}

	text, err := extractText(resp)
	if err != nil {
		return nil, err
	}

	result, err := parseResult(text)
	if err != nil {
		log.WarnContext(ctx, "unparsable judge response",
			slog.Int("response_length", len(text)),
			slog.String("error", err.Error()))
		return nil, err
	}
	return result, nil
}

func trim(s string) string {
	return strings.TrimSpace(s)
}
