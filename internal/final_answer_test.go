package internal

import (
	"testing"
)

func TestExtractFinalAnswer(t *testing.T) {
	tests := []struct {
		name   string
		text   string
		want   string
		wantOK bool
	}{
		{
			name:   "final_answer key",
			text:   `{"final_answer": "The build passes."}`,
			want:   "The build passes.",
			wantOK: true,
		},
		{
			name:   "answer key",
			text:   `{"answer": "Done."}`,
			want:   "Done.",
			wantOK: true,
		},
		{
			name:   "priority order",
			text:   `{"content": "lower", "final_answer": "higher"}`,
			want:   "higher",
			wantOK: true,
		},
		{
			name:   "surrounding whitespace",
			text:   "  {\"output\": \"ok\"}\n",
			want:   "ok",
			wantOK: true,
		},
		{
			name:   "empty string value skipped",
			text:   `{"final_answer": "", "response": "fallback"}`,
			want:   "fallback",
			wantOK: true,
		},
		{
			name:   "plain text passes through",
			text:   "The answer is 42.",
			wantOK: false,
		},
		{
			name:   "object without known keys",
			text:   `{"status": "complete"}`,
			wantOK: false,
		},
		{
			name:   "non-string value",
			text:   `{"answer": 42}`,
			wantOK: false,
		},
		{
			name:   "malformed JSON",
			text:   `{"answer": }`,
			wantOK: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ExtractFinalAnswer(tt.text)
			if ok != tt.wantOK {
				t.Fatalf("ExtractFinalAnswer() ok = %v, want %v", ok, tt.wantOK)
			}
			if ok && got != tt.want {
				t.Errorf("ExtractFinalAnswer() = %q, want %q", got, tt.want)
			}
		})
	}
}
