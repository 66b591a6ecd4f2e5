// Package themefinder extracts themes, sentiment positions, and evidence
// flags from free-text survey responses using a hosted Gemini model.
package themefinder

import (
	"context"

	"github.com/surveyassist/themefinder/internal/survey"
)

// Position classifies a response's stance towards the survey question.
type Position string

const (
	PositionAgreement    Position = "AGREEMENT"
	PositionDisagreement Position = "DISAGREEMENT"
	PositionUnclear      Position = "UNCLEAR"
)

// EvidenceRich flags whether a response carries substantive supporting
// detail.
type EvidenceRich string

const (
	EvidenceRichYes EvidenceRich = "YES"
	EvidenceRichNo  EvidenceRich = "NO"
)

// SentimentEntry is one response's stance classification.
type SentimentEntry struct {
	ResponseID int      `json:"response_id"`
	Response   string   `json:"response"`
	Position   Position `json:"position"`
}

// Theme is a cluster label summarising a common subject across responses.
// TopicID is a single-letter code referenced from Mapping labels.
type Theme struct {
	Topic            string `json:"topic"`
	SourceTopicCount int    `json:"source_topic_count"`
	TopicID          string `json:"topic_id"`
}

// MappingEntry assigns a response to one or more themes by topic id.
type MappingEntry struct {
	ResponseID int      `json:"response_id"`
	Response   string   `json:"response"`
	Labels     []string `json:"labels"`
}

// DetailedResponse carries the evidence-rich flag for one response.
type DetailedResponse struct {
	ResponseID   int          `json:"response_id"`
	Response     string       `json:"response"`
	EvidenceRich EvidenceRich `json:"evidence_rich"`
}

// UnprocessableEntry is a response the analysis could not classify.
type UnprocessableEntry struct {
	ResponseID int    `json:"response_id"`
	Response   string `json:"response"`
}

// Result is the full analysis for one batch of responses. Every response id
// appearing in any section corresponds to an input response, and every
// mapping label references a theme's topic id.
type Result struct {
	Sentiment         []SentimentEntry
	Themes            []Theme
	Mapping           []MappingEntry
	DetailedResponses []DetailedResponse
	Unprocessables    []UnprocessableEntry
}

// Analyzer is the single-call analysis contract the pipeline depends on.
type Analyzer interface {
	FindThemes(ctx context.Context, question string, responses []survey.Response) (*Result, error)
}
