package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/surveyassist/themefinder/internal/config"
	"github.com/surveyassist/themefinder/internal/survey"
	"github.com/surveyassist/themefinder/internal/themefinder"
)

type fakeStore struct {
	objects map[string][]byte

	uploadedBucket      string
	uploadedObject      string
	uploadedData        []byte
	uploadedContentType string
	uploadErr           error
}

func (s *fakeStore) Download(_ context.Context, bucket, object string) ([]byte, error) {
	data, ok := s.objects[bucket+"/"+object]
	if !ok {
		return nil, errors.New("object not found")
	}
	return data, nil
}

func (s *fakeStore) Upload(_ context.Context, bucket, object string, data []byte, contentType string) error {
	if s.uploadErr != nil {
		return s.uploadErr
	}
	s.uploadedBucket = bucket
	s.uploadedObject = object
	s.uploadedData = data
	s.uploadedContentType = contentType
	return nil
}

type stubAnalyzer struct {
	result   *themefinder.Result
	err      error
	question string
	got      []survey.Response
}

func (a *stubAnalyzer) FindThemes(_ context.Context, question string, responses []survey.Response) (*themefinder.Result, error) {
	a.question = question
	a.got = responses
	return a.result, a.err
}

func testConfig() *config.Config {
	return &config.Config{
		InputBucket:    "in-bucket",
		InputFile:      "input/example_feedback_v2.csv",
		OutputBucket:   "out-bucket",
		OutputPrefix:   "output",
		Question:       "Do you have any other feedback about this survey?",
		IDColumn:       "user",
		FeedbackColumn: "feedback_comments",
	}
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestRunEndToEnd(t *testing.T) {
	store := &fakeStore{objects: map[string][]byte{
		"in-bucket/input/example_feedback_v2.csv": []byte("user|feedback_comments\n4521|No \n417|All great\n"),
	}}
	analyzer := &stubAnalyzer{result: &themefinder.Result{
		Sentiment: []themefinder.SentimentEntry{
			{ResponseID: 4521, Response: "No ", Position: themefinder.PositionUnclear},
			{ResponseID: 417, Response: "All great", Position: themefinder.PositionAgreement},
		},
		Themes: []themefinder.Theme{
			{Topic: "Overall satisfaction", SourceTopicCount: 1, TopicID: "A"},
		},
		Mapping: []themefinder.MappingEntry{
			{ResponseID: 417, Response: "All great", Labels: []string{"A"}},
		},
		DetailedResponses: []themefinder.DetailedResponse{
			{ResponseID: 417, Response: "All great", EvidenceRich: themefinder.EvidenceRichNo},
		},
	}}

	p := New(testConfig(), store, analyzer, discardLogger())
	p.now = func() time.Time { return time.Date(2026, 8, 23, 10, 0, 0, 0, time.UTC) }

	object, err := p.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if object != "output/themefinder_2026-08-23T10-00-00Z.json" {
		t.Errorf("object = %q", object)
	}
	if store.uploadedBucket != "out-bucket" || store.uploadedObject != object {
		t.Errorf("uploaded to %s/%s", store.uploadedBucket, store.uploadedObject)
	}
	if store.uploadedContentType != "application/json" {
		t.Errorf("content type = %q", store.uploadedContentType)
	}

	if analyzer.question != "Do you have any other feedback about this survey?" {
		t.Errorf("analyzer received question %q", analyzer.question)
	}
	wantResponses := []survey.Response{
		{ID: 4521, Feedback: "No "},
		{ID: 417, Feedback: "All great"},
	}
	if len(analyzer.got) != 2 || analyzer.got[0] != wantResponses[0] || analyzer.got[1] != wantResponses[1] {
		t.Errorf("analyzer received %+v, want %+v", analyzer.got, wantResponses)
	}

	var doc Document
	if err := json.Unmarshal(store.uploadedData, &doc); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if doc.Question != "Do you have any other feedback about this survey?" {
		t.Errorf("question = %q", doc.Question)
	}
	ids := map[int]bool{}
	for _, s := range doc.Sentiment {
		ids[s.ResponseID] = true
	}
	if !ids[4521] || !ids[417] {
		t.Errorf("sentiment is missing input ids: %+v", doc.Sentiment)
	}

	// Empty sections must serialise as [], never null or absent.
	raw := string(store.uploadedData)
	if !strings.Contains(raw, `"unprocessables": []`) {
		t.Errorf("unprocessables not serialised as empty array:\n%s", raw)
	}
}

func TestRunEmptySectionsAlwaysPresent(t *testing.T) {
	store := &fakeStore{objects: map[string][]byte{
		"in-bucket/input/example_feedback_v2.csv": []byte("1|fine\n"),
	}}
	analyzer := &stubAnalyzer{result: &themefinder.Result{}}

	p := New(testConfig(), store, analyzer, discardLogger())
	if _, err := p.Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(store.uploadedData, &fields); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	for _, section := range []string{"sentiment", "themes", "mapping", "detailed_responses", "unprocessables"} {
		raw, ok := fields[section]
		if !ok {
			t.Errorf("section %q absent from output", section)
			continue
		}
		if strings.TrimSpace(string(raw)) != "[]" {
			t.Errorf("section %q = %s, want []", section, raw)
		}
	}
}

func TestRunFailures(t *testing.T) {
	validCSV := []byte("user|feedback_comments\n1|ok\n")

	tests := []struct {
		name     string
		store    *fakeStore
		analyzer *stubAnalyzer
		wantErr  string
	}{
		{
			name:     "input object missing",
			store:    &fakeStore{objects: map[string][]byte{}},
			analyzer: &stubAnalyzer{result: &themefinder.Result{}},
			wantErr:  "failed to load feedback",
		},
		{
			name: "malformed csv",
			store: &fakeStore{objects: map[string][]byte{
				"in-bucket/input/example_feedback_v2.csv": []byte("user|feedback_comments\nnot-a-number|oops\n"),
			}},
			analyzer: &stubAnalyzer{result: &themefinder.Result{}},
			wantErr:  "failed to parse feedback",
		},
		{
			name: "empty input",
			store: &fakeStore{objects: map[string][]byte{
				"in-bucket/input/example_feedback_v2.csv": []byte("user|feedback_comments\n"),
			}},
			analyzer: &stubAnalyzer{result: &themefinder.Result{}},
			wantErr:  "contains no responses",
		},
		{
			name: "analysis error propagates",
			store: &fakeStore{objects: map[string][]byte{
				"in-bucket/input/example_feedback_v2.csv": validCSV,
			}},
			analyzer: &stubAnalyzer{err: errors.New("quota exceeded")},
			wantErr:  "quota exceeded",
		},
		{
			name: "upload failure propagates",
			store: &fakeStore{
				objects: map[string][]byte{
					"in-bucket/input/example_feedback_v2.csv": validCSV,
				},
				uploadErr: errors.New("permission denied"),
			},
			analyzer: &stubAnalyzer{result: &themefinder.Result{}},
			wantErr:  "failed to save results",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := New(testConfig(), tt.store, tt.analyzer, discardLogger())
			_, err := p.Run(context.Background())
			if err == nil {
				t.Fatalf("Run() = nil, want error containing %q", tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Run() error = %q, want it to contain %q", err, tt.wantErr)
			}
		})
	}
}
