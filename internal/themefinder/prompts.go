package themefinder

import (
	"fmt"
	"strings"

	"github.com/surveyassist/themefinder/internal/survey"
)

// systemPrompt frames every model call.
const systemPrompt = "You are an AI assistant working for a UK government policy team. " +
	"You carefully analyse free-text survey responses to identify key " +
	"themes, sentiments and concerns raised by respondents."

func formatResponses(responses []survey.Response) string {
	var b strings.Builder
	for _, r := range responses {
		fmt.Fprintf(&b, "response_id %d: %s\n", r.ID, r.Feedback)
	}
	return b.String()
}

func buildSentimentPrompt(question string, responses []survey.Response) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Survey question: %s\n\n", question)
	b.WriteString("Classify each survey response's stance towards the question as ")
	b.WriteString("AGREEMENT, DISAGREEMENT or UNCLEAR. If a response cannot be ")
	b.WriteString("classified at all (empty, gibberish, or unrelated noise), list it ")
	b.WriteString("as unprocessable instead.\n\n")
	b.WriteString("Responses:\n")
	b.WriteString(formatResponses(responses))
	b.WriteString("\nReturn only JSON of the form ")
	b.WriteString(`{"sentiment": [{"response_id": 1, "position": "AGREEMENT"}], `)
	b.WriteString(`"unprocessables": [{"response_id": 2}]}`)
	b.WriteString(" covering every response exactly once.")
	return b.String()
}

func buildThemePrompt(question string, responses []survey.Response) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Survey question: %s\n\n", question)
	b.WriteString("Identify the distinct themes raised across these survey responses. ")
	b.WriteString("Give each theme a short topic label, the number of source topics it ")
	b.WriteString("condenses, and a single capital letter as its topic_id (A, B, C, ...).\n\n")
	b.WriteString("Responses:\n")
	b.WriteString(formatResponses(responses))
	b.WriteString("\nReturn only JSON of the form ")
	b.WriteString(`{"themes": [{"topic": "Ease of use", "source_topic_count": 3, "topic_id": "A"}]}`)
	return b.String()
}

func buildMappingPrompt(question string, responses []survey.Response, themes []Theme) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Survey question: %s\n\n", question)
	b.WriteString("Assign each survey response to one or more of these themes:\n")
	for _, theme := range themes {
		fmt.Fprintf(&b, "%s: %s\n", theme.TopicID, theme.Topic)
	}
	b.WriteString("\nResponses:\n")
	b.WriteString(formatResponses(responses))
	b.WriteString("\nReturn only JSON of the form ")
	b.WriteString(`{"mapping": [{"response_id": 1, "labels": ["A", "C"]}]}`)
	b.WriteString(" using only the topic_id letters listed above.")
	return b.String()
}

func buildEvidencePrompt(question string, responses []survey.Response) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Survey question: %s\n\n", question)
	b.WriteString("For each survey response, decide whether it is evidence-rich: does ")
	b.WriteString("it contain substantive supporting detail (specific examples, ")
	b.WriteString("reasons, or concrete observations) rather than a bare opinion? ")
	b.WriteString("Answer YES or NO per response.\n\n")
	b.WriteString("Responses:\n")
	b.WriteString(formatResponses(responses))
	b.WriteString("\nReturn only JSON of the form ")
	b.WriteString(`{"detailed_responses": [{"response_id": 1, "evidence_rich": "YES"}]}`)
	return b.String()
}
