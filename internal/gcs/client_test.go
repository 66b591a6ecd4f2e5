package gcs

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"cloud.google.com/go/storage"
	"google.golang.org/api/googleapi"
)

func TestClassifyError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
	}{
		{
			name: "object does not exist",
			err:  storage.ErrObjectNotExist,
			want: ErrNotFound,
		},
		{
			name: "bucket does not exist",
			err:  storage.ErrBucketNotExist,
			want: ErrNotFound,
		},
		{
			name: "wrapped object not exist",
			err:  fmt.Errorf("reader: %w", storage.ErrObjectNotExist),
			want: ErrNotFound,
		},
		{
			name: "api 404",
			err:  &googleapi.Error{Code: 404, Message: "Not Found"},
			want: ErrNotFound,
		},
		{
			name: "api 403",
			err:  &googleapi.Error{Code: 403, Message: "Forbidden"},
			want: ErrAccessDenied,
		},
		{
			name: "api 401",
			err:  &googleapi.Error{Code: 401, Message: "Unauthorized"},
			want: ErrAccessDenied,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := classifyError(tt.err)
			if !errors.Is(got, tt.want) {
				t.Errorf("classifyError(%v) = %v, want errors.Is %v", tt.err, got, tt.want)
			}
		})
	}
}

func TestClassifyErrorPassesThroughUnknown(t *testing.T) {
	unknown := errors.New("connection reset")
	got := classifyError(unknown)
	if !errors.Is(got, unknown) {
		t.Errorf("classifyError lost the original error: %v", got)
	}
	if errors.Is(got, ErrNotFound) || errors.Is(got, ErrAccessDenied) {
		t.Errorf("classifyError misclassified %v as %v", unknown, got)
	}
}

func TestTimestampedObjectName(t *testing.T) {
	now := time.Date(2026, 8, 23, 14, 2, 11, 0, time.UTC)

	tests := []struct {
		name   string
		prefix string
		stem   string
		want   string
	}{
		{
			name:   "with prefix",
			prefix: "output",
			stem:   "themefinder",
			want:   "output/themefinder_2026-08-23T14-02-11Z.json",
		},
		{
			name:   "prefix slashes trimmed",
			prefix: "/output/",
			stem:   "themefinder",
			want:   "output/themefinder_2026-08-23T14-02-11Z.json",
		},
		{
			name:   "no prefix",
			prefix: "",
			stem:   "themefinder",
			want:   "themefinder_2026-08-23T14-02-11Z.json",
		},
		{
			name:   "stem sanitised",
			prefix: "output",
			stem:   "survey results",
			want:   "output/survey_results_2026-08-23T14-02-11Z.json",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := TimestampedObjectName(tt.prefix, tt.stem, now)
			if got != tt.want {
				t.Errorf("TimestampedObjectName() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSanitize(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"plain-name_1.json", "plain-name_1.json"},
		{"has space.json", "has_space.json"},
		{"colons:and/slashes", "colons_and_slashes"},
		{"ünïcode", "_n_code"},
	}

	for _, tt := range tests {
		if got := Sanitize(tt.in); got != tt.want {
			t.Errorf("Sanitize(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
