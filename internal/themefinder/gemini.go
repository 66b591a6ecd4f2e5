package themefinder

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"google.golang.org/api/googleapi"
	"google.golang.org/genai"

	"github.com/surveyassist/themefinder/internal/survey"
)

// Retry settings for transient model API failures.
const (
	maxStageRetries     = 2 // attempts = retries + 1
	initialRetryWait    = 2 * time.Second
	retryWaitMultiplier = 2
)

// GeminiAnalyzer implements Analyzer against a hosted Gemini model. The
// analysis runs in stages (sentiment, theme generation, theme mapping,
// evidence detection), each a single GenerateContent call returning JSON.
type GeminiAnalyzer struct {
	client *genai.Client
	model  string
	logger *slog.Logger
}

// NewGeminiAnalyzer builds the analyzer. With an empty apiKey the client
// falls back to application-default credentials, matching how the job
// authenticates to Cloud Storage.
func NewGeminiAnalyzer(ctx context.Context, model, apiKey string, logger *slog.Logger) (*GeminiAnalyzer, error) {
	clientConfig := &genai.ClientConfig{}
	if apiKey != "" {
		clientConfig.APIKey = apiKey
	}
	client, err := genai.NewClient(ctx, clientConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	return &GeminiAnalyzer{client: client, model: model, logger: logger}, nil
}

func (a *GeminiAnalyzer) FindThemes(ctx context.Context, question string, responses []survey.Response) (*Result, error) {
	if len(responses) == 0 {
		return nil, errors.New("no responses to analyse")
	}

	var sentiment sentimentStage
	if err := a.generateJSON(ctx, "sentiment", buildSentimentPrompt(question, responses), &sentiment); err != nil {
		return nil, err
	}
	result, processable := reconcileSentiment(responses, sentiment)

	if len(processable) == 0 {
		a.logger.Warn("no processable responses, skipping theme stages")
		return result, nil
	}

	var themes themeStage
	if err := a.generateJSON(ctx, "themes", buildThemePrompt(question, processable), &themes); err != nil {
		return nil, err
	}
	result.Themes = reconcileThemes(themes)

	var mapping mappingStage
	if err := a.generateJSON(ctx, "mapping", buildMappingPrompt(question, processable, result.Themes), &mapping); err != nil {
		return nil, err
	}
	result.Mapping = reconcileMapping(processable, result.Themes, mapping)

	var evidence evidenceStage
	if err := a.generateJSON(ctx, "evidence", buildEvidencePrompt(question, processable), &evidence); err != nil {
		return nil, err
	}
	result.DetailedResponses = reconcileEvidence(processable, evidence)

	return result, nil
}

// generateJSON runs one analysis stage: prompt the model, extract the JSON
// value from its reply, and decode into out. Transient API failures are
// retried with exponential backoff; anything else fails the stage.
func (a *GeminiAnalyzer) generateJSON(ctx context.Context, stage, prompt string, out any) error {
	a.logger.Debug("running analysis stage", "stage", stage, "model", a.model)

	contents := []*genai.Content{genai.NewContentFromText(prompt, genai.RoleUser)}
	generateConfig := &genai.GenerateContentConfig{
		Temperature:       genai.Ptr(float32(0)),
		ResponseMIMEType:  "application/json",
		SystemInstruction: genai.NewContentFromText(systemPrompt, genai.RoleUser),
	}

	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = initialRetryWait
	policy.Multiplier = retryWaitMultiplier

	var text string
	operation := func() error {
		resp, err := a.client.Models.GenerateContent(ctx, a.model, contents, generateConfig)
		if err != nil {
			if isRetryableAPIError(err) {
				a.logger.Warn("transient model API error, retrying", "stage", stage, "error", err)
				return err
			}
			return backoff.Permanent(err)
		}
		text, err = responseText(resp)
		if err != nil {
			return backoff.Permanent(err)
		}
		return nil
	}

	if err := backoff.Retry(operation, backoff.WithContext(backoff.WithMaxRetries(policy, maxStageRetries), ctx)); err != nil {
		return fmt.Errorf("%s stage failed: %w", stage, err)
	}

	cleaned := extractJSON(text)
	if err := json.Unmarshal([]byte(cleaned), out); err != nil {
		return fmt.Errorf("%s stage returned malformed JSON: %w", stage, err)
	}
	return nil
}

func responseText(resp *genai.GenerateContentResponse) (string, error) {
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", errors.New("no response candidates from Gemini")
	}
	var result strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if part.Text != "" {
			result.WriteString(part.Text)
		}
	}
	if result.Len() == 0 {
		return "", errors.New("empty response from Gemini")
	}
	return result.String(), nil
}

// isRetryableAPIError reports whether an API failure is worth retrying:
// quota and rate limiting, timeouts, and server-side 5xx conditions.
func isRetryableAPIError(err error) bool {
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		switch apiErr.Code {
		case http.StatusTooManyRequests,
			http.StatusInternalServerError,
			http.StatusBadGateway,
			http.StatusServiceUnavailable,
			http.StatusGatewayTimeout:
			return true
		}
		return false
	}

	lower := strings.ToLower(err.Error())
	if strings.Contains(lower, "rate") && strings.Contains(lower, "limit") {
		return true
	}
	for _, marker := range []string{
		"resource_exhausted",
		"quota",
		"deadline exceeded",
		"timeout",
		"temporarily unavailable",
		"unavailable",
		"internal error",
		"429",
		"500",
		"503",
	} {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}
