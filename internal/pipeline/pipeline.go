// Package pipeline runs the job end to end: download the feedback CSV,
// analyse it, and upload the JSON results. Straight-line, single-shot; every
// failure is fatal.
package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/surveyassist/themefinder/internal/config"
	"github.com/surveyassist/themefinder/internal/gcs"
	"github.com/surveyassist/themefinder/internal/survey"
	"github.com/surveyassist/themefinder/internal/themefinder"
)

const outputStem = "themefinder"

// ObjectStore is the slice of the storage client the pipeline needs.
type ObjectStore interface {
	Download(ctx context.Context, bucket, object string) ([]byte, error)
	Upload(ctx context.Context, bucket, object string, data []byte, contentType string) error
}

// Document is the JSON artifact written to the output bucket. Every section
// is always present; empty sections serialise as [], never null.
type Document struct {
	Question          string                           `json:"question"`
	Sentiment         []themefinder.SentimentEntry     `json:"sentiment"`
	Themes            []themefinder.Theme              `json:"themes"`
	Mapping           []themefinder.MappingEntry       `json:"mapping"`
	DetailedResponses []themefinder.DetailedResponse   `json:"detailed_responses"`
	Unprocessables    []themefinder.UnprocessableEntry `json:"unprocessables"`
}

type Pipeline struct {
	cfg      *config.Config
	store    ObjectStore
	analyzer themefinder.Analyzer
	logger   *slog.Logger
	now      func() time.Time
}

func New(cfg *config.Config, store ObjectStore, analyzer themefinder.Analyzer, logger *slog.Logger) *Pipeline {
	return &Pipeline{
		cfg:      cfg,
		store:    store,
		analyzer: analyzer,
		logger:   logger,
		now:      time.Now,
	}
}

// Run executes the pipeline and returns the object name the results were
// written under.
func (p *Pipeline) Run(ctx context.Context) (string, error) {
	p.logger.Info("loading feedback", "bucket", p.cfg.InputBucket, "object", p.cfg.InputFile)
	data, err := p.store.Download(ctx, p.cfg.InputBucket, p.cfg.InputFile)
	if err != nil {
		return "", fmt.Errorf("failed to load feedback: %w", err)
	}

	responses, err := survey.Parse(bytes.NewReader(data), p.cfg.IDColumn, p.cfg.FeedbackColumn)
	if err != nil {
		return "", fmt.Errorf("failed to parse feedback: %w", err)
	}
	if len(responses) == 0 {
		return "", fmt.Errorf("input gs://%s/%s contains no responses", p.cfg.InputBucket, p.cfg.InputFile)
	}
	p.logger.Info("loaded survey responses", "count", len(responses))

	p.logger.Info("running theme analysis", "question", p.cfg.Question)
	result, err := p.analyzer.FindThemes(ctx, p.cfg.Question, responses)
	if err != nil {
		return "", fmt.Errorf("theme analysis failed: %w", err)
	}
	p.logger.Info("analysis complete",
		"themes", len(result.Themes),
		"sentiment", len(result.Sentiment),
		"unprocessable", len(result.Unprocessables))

	payload, err := json.MarshalIndent(newDocument(p.cfg.Question, result), "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to serialise results: %w", err)
	}

	object := gcs.TimestampedObjectName(p.cfg.OutputPrefix, outputStem, p.now())
	if err := p.store.Upload(ctx, p.cfg.OutputBucket, object, payload, "application/json"); err != nil {
		return "", fmt.Errorf("failed to save results: %w", err)
	}
	p.logger.Info("results saved", "bucket", p.cfg.OutputBucket, "object", object)
	return object, nil
}

// newDocument assembles the output, replacing nil sections with empty slices
// so the JSON always carries every field.
func newDocument(question string, result *themefinder.Result) *Document {
	doc := &Document{
		Question:          question,
		Sentiment:         result.Sentiment,
		Themes:            result.Themes,
		Mapping:           result.Mapping,
		DetailedResponses: result.DetailedResponses,
		Unprocessables:    result.Unprocessables,
	}
	if doc.Sentiment == nil {
		doc.Sentiment = []themefinder.SentimentEntry{}
	}
	if doc.Themes == nil {
		doc.Themes = []themefinder.Theme{}
	}
	if doc.Mapping == nil {
		doc.Mapping = []themefinder.MappingEntry{}
	}
	if doc.DetailedResponses == nil {
		doc.DetailedResponses = []themefinder.DetailedResponse{}
	}
	if doc.Unprocessables == nil {
		doc.Unprocessables = []themefinder.UnprocessableEntry{}
	}
	return doc
}
