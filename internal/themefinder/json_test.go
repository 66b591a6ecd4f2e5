package themefinder

import "testing"

func TestExtractJSON(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "bare object",
			in:   `{"themes": []}`,
			want: `{"themes": []}`,
		},
		{
			name: "markdown code fence",
			in:   "```json\n{\"themes\": []}\n```",
			want: `{"themes": []}`,
		},
		{
			name: "prose before the JSON",
			in:   "Here is the analysis you asked for:\n{\"sentiment\": []}",
			want: `{"sentiment": []}`,
		},
		{
			name: "braces inside JSON strings",
			in:   `{"topic": "use of {placeholders}"}`,
			want: `{"topic": "use of {placeholders}"}`,
		},
		{
			name: "array value",
			in:   "```\n[1, 2, 3]\n```",
			want: `[1, 2, 3]`,
		},
		{
			name: "trailing prose ignored",
			in:   `{"mapping": []} Let me know if you need more.`,
			want: `{"mapping": []}`,
		},
		{
			name: "no JSON returns trimmed input",
			in:   "  sorry, I cannot help with that  ",
			want: "sorry, I cannot help with that",
		},
		{
			name: "empty input",
			in:   "",
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := extractJSON(tt.in); got != tt.want {
				t.Errorf("extractJSON(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
