// Package survey parses pipe-delimited survey feedback files into
// respondent records.
package survey

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Response is one respondent's free-text answer. IDs are unique per input
// file; the feedback text is preserved verbatim apart from NFC normalisation.
type Response struct {
	ID       int    `json:"response_id"`
	Feedback string `json:"response"`
}

// Parse reads a pipe-delimited, two-column CSV of survey responses. The
// first row may be a header naming idColumn and feedbackColumn (in either
// order); headerless input is assumed to be id then feedback. Any malformed
// row fails the whole read.
func Parse(r io.Reader, idColumn, feedbackColumn string) ([]Response, error) {
	reader := csv.NewReader(r)
	reader.Comma = '|'
	reader.FieldsPerRecord = 2
	reader.LazyQuotes = true

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("malformed feedback CSV: %w", err)
	}
	if len(rows) == 0 {
		return nil, nil
	}
	rows[0][0] = stripBOM(rows[0][0])

	idIdx, feedbackIdx := 0, 1
	start := 0
	if isHeader(rows[0]) {
		idIdx, feedbackIdx, err = headerIndexes(rows[0], idColumn, feedbackColumn)
		if err != nil {
			return nil, err
		}
		start = 1
	}

	responses := make([]Response, 0, len(rows)-start)
	for i, row := range rows[start:] {
		id, err := strconv.Atoi(strings.TrimSpace(row[idIdx]))
		if err != nil {
			return nil, fmt.Errorf("row %d: respondent id %q is not an integer", start+i+1, row[idIdx])
		}
		responses = append(responses, Response{
			ID:       id,
			Feedback: norm.NFC.String(row[feedbackIdx]),
		})
	}
	return responses, nil
}

// isHeader reports whether the first row is a header. A data row always
// carries an integer in one of its cells (the respondent id); a header never
// does.
func isHeader(row []string) bool {
	for _, cell := range row {
		if _, err := strconv.Atoi(strings.TrimSpace(stripBOM(cell))); err == nil {
			return false
		}
	}
	return true
}

func headerIndexes(header []string, idColumn, feedbackColumn string) (int, int, error) {
	idIdx, feedbackIdx := -1, -1
	for i, cell := range header {
		name := strings.TrimSpace(stripBOM(cell))
		switch {
		case strings.EqualFold(name, idColumn):
			idIdx = i
		case strings.EqualFold(name, feedbackColumn):
			feedbackIdx = i
		default:
			return 0, 0, fmt.Errorf("unknown column %q in header, expected %q and %q", name, idColumn, feedbackColumn)
		}
	}
	if idIdx < 0 || feedbackIdx < 0 {
		return 0, 0, fmt.Errorf("header must name both %q and %q columns", idColumn, feedbackColumn)
	}
	return idIdx, feedbackIdx, nil
}

func stripBOM(s string) string {
	return strings.TrimPrefix(s, "\ufeff")
}
