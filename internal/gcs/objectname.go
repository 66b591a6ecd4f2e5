package gcs

import (
	"fmt"
	"strings"
	"time"
)

// TimestampedObjectName builds the destination key for one run's results,
// e.g. "output/themefinder_2026-08-23T14-02-11Z.json". The prefix may be
// empty.
func TimestampedObjectName(prefix, stem string, now time.Time) string {
	timestamp := now.UTC().Format("2006-01-02T15-04-05Z")
	name := Sanitize(fmt.Sprintf("%s_%s.json", stem, timestamp))
	prefix = strings.Trim(prefix, "/")
	if prefix == "" {
		return name
	}
	return prefix + "/" + name
}

// Sanitize replaces characters outside [A-Za-z0-9._-] so object names stay
// safe across storage backends and downstream tooling.
func Sanitize(name string) string {
	var result strings.Builder
	for _, c := range name {
		if (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9') || c == '-' || c == '_' || c == '.' {
			result.WriteRune(c)
		} else {
			result.WriteRune('_')
		}
	}
	return result.String()
}
