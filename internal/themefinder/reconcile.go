package themefinder

import (
	"strings"

	"github.com/surveyassist/themefinder/internal/survey"
)

// Stage payloads as the model returns them. Only ids and classifications are
// trusted; response text always comes from the input.
type sentimentStage struct {
	Sentiment []struct {
		ResponseID int    `json:"response_id"`
		Position   string `json:"position"`
	} `json:"sentiment"`
	Unprocessables []struct {
		ResponseID int `json:"response_id"`
	} `json:"unprocessables"`
}

type themeStage struct {
	Themes []struct {
		Topic            string `json:"topic"`
		SourceTopicCount int    `json:"source_topic_count"`
		TopicID          string `json:"topic_id"`
	} `json:"themes"`
}

type mappingStage struct {
	Mapping []struct {
		ResponseID int      `json:"response_id"`
		Labels     []string `json:"labels"`
	} `json:"mapping"`
}

type evidenceStage struct {
	DetailedResponses []struct {
		ResponseID   int    `json:"response_id"`
		EvidenceRich string `json:"evidence_rich"`
	} `json:"detailed_responses"`
}

// reconcileSentiment enforces the id invariants on the sentiment stage:
// ids the model invented are dropped, ids it omitted become unprocessable,
// and every input id lands in exactly one of the two sections. Output
// follows input order. The returned slice holds the responses that continue
// through the remaining stages.
func reconcileSentiment(responses []survey.Response, stage sentimentStage) (*Result, []survey.Response) {
	positions := make(map[int]Position, len(stage.Sentiment))
	for _, entry := range stage.Sentiment {
		if _, seen := positions[entry.ResponseID]; !seen {
			positions[entry.ResponseID] = normalizePosition(entry.Position)
		}
	}
	unprocessable := make(map[int]bool, len(stage.Unprocessables))
	for _, entry := range stage.Unprocessables {
		unprocessable[entry.ResponseID] = true
	}

	result := &Result{
		Sentiment:         []SentimentEntry{},
		Themes:            []Theme{},
		Mapping:           []MappingEntry{},
		DetailedResponses: []DetailedResponse{},
		Unprocessables:    []UnprocessableEntry{},
	}
	var processable []survey.Response

	for _, r := range responses {
		position, classified := positions[r.ID]
		if classified && !unprocessable[r.ID] {
			result.Sentiment = append(result.Sentiment, SentimentEntry{
				ResponseID: r.ID,
				Response:   r.Feedback,
				Position:   position,
			})
			processable = append(processable, r)
			continue
		}
		result.Unprocessables = append(result.Unprocessables, UnprocessableEntry{
			ResponseID: r.ID,
			Response:   r.Feedback,
		})
	}
	return result, processable
}

// reconcileThemes drops themes without a usable topic id and deduplicates by
// topic id, keeping the first occurrence.
func reconcileThemes(stage themeStage) []Theme {
	themes := make([]Theme, 0, len(stage.Themes))
	seen := make(map[string]bool, len(stage.Themes))
	for _, t := range stage.Themes {
		id := strings.ToUpper(strings.TrimSpace(t.TopicID))
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		count := t.SourceTopicCount
		if count < 1 {
			count = 1
		}
		themes = append(themes, Theme{
			Topic:            strings.TrimSpace(t.Topic),
			SourceTopicCount: count,
			TopicID:          id,
		})
	}
	return themes
}

// reconcileMapping keeps one entry per processable response in input order,
// with labels restricted to known topic ids.
func reconcileMapping(responses []survey.Response, themes []Theme, stage mappingStage) []MappingEntry {
	known := make(map[string]bool, len(themes))
	for _, t := range themes {
		known[t.TopicID] = true
	}

	labelsByID := make(map[int][]string, len(stage.Mapping))
	for _, entry := range stage.Mapping {
		if _, seen := labelsByID[entry.ResponseID]; seen {
			continue
		}
		labels := make([]string, 0, len(entry.Labels))
		for _, label := range entry.Labels {
			label = strings.ToUpper(strings.TrimSpace(label))
			if known[label] {
				labels = append(labels, label)
			}
		}
		labelsByID[entry.ResponseID] = labels
	}

	mapping := make([]MappingEntry, 0, len(responses))
	for _, r := range responses {
		labels := labelsByID[r.ID]
		if labels == nil {
			labels = []string{}
		}
		mapping = append(mapping, MappingEntry{
			ResponseID: r.ID,
			Response:   r.Feedback,
			Labels:     labels,
		})
	}
	return mapping
}

// reconcileEvidence keeps one entry per processable response in input order.
// Responses the model skipped or answered ambiguously default to NO.
func reconcileEvidence(responses []survey.Response, stage evidenceStage) []DetailedResponse {
	flags := make(map[int]EvidenceRich, len(stage.DetailedResponses))
	for _, entry := range stage.DetailedResponses {
		if _, seen := flags[entry.ResponseID]; !seen {
			flags[entry.ResponseID] = normalizeEvidence(entry.EvidenceRich)
		}
	}

	detailed := make([]DetailedResponse, 0, len(responses))
	for _, r := range responses {
		flag, ok := flags[r.ID]
		if !ok {
			flag = EvidenceRichNo
		}
		detailed = append(detailed, DetailedResponse{
			ResponseID:   r.ID,
			Response:     r.Feedback,
			EvidenceRich: flag,
		})
	}
	return detailed
}

func normalizePosition(s string) Position {
	switch Position(strings.ToUpper(strings.TrimSpace(s))) {
	case PositionAgreement:
		return PositionAgreement
	case PositionDisagreement:
		return PositionDisagreement
	default:
		return PositionUnclear
	}
}

func normalizeEvidence(s string) EvidenceRich {
	if EvidenceRich(strings.ToUpper(strings.TrimSpace(s))) == EvidenceRichYes {
		return EvidenceRichYes
	}
	return EvidenceRichNo
}
