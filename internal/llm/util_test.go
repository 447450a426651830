package llm

import (
	"testing"
)

func TestCleanJSONBlock_MarkdownCodeBlock(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "json code block",
			input:    "```json\n{\"key\": \"value\"}\n```",
			expected: `{"key": "value"}`,
		},
		{
			name:     "generic code block",
			input:    "```\n{\"key\": \"value\"}\n```",
			expected: `{"key": "value"}`,
		},
		{
			name:     "plain JSON",
			input:    `{"key": "value"}`,
			expected: `{"key": "value"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := CleanJSONBlock(tt.input)
			if result != tt.expected {
				t.Errorf("CleanJSONBlock() = %q, want %q", result, tt.expected)
			}
		})
	}
}

func TestCleanJSONBlock_SurroundingProse(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "preamble before JSON object",
			input:    "Here is the evaluation:\n{\"ats_score\": 78}",
			expected: `{"ats_score": 78}`,
		},
		{
			name:     "trailing commentary",
			input:    "{\"ats_score\": 78}\n\nLet me know if you need anything else!",
			expected: `{"ats_score": 78}`,
		},
		{
			name:     "nested objects",
			input:    "Output:\n{\"outer\": {\"inner\": \"value\"}}",
			expected: `{"outer": {"inner": "value"}}`,
		},
		{
			name:     "array payload",
			input:    "The sections are:\n[\"EXPERIENCE\", \"SKILLS\"]",
			expected: `["EXPERIENCE", "SKILLS"]`,
		},
		{
			name:     "braces inside strings",
			input:    `{"feedback": "add { and } sparingly"} trailing`,
			expected: `{"feedback": "add { and } sparingly"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := CleanJSONBlock(tt.input)
			if result != tt.expected {
				t.Errorf("CleanJSONBlock() = %q, want %q", result, tt.expected)
			}
		})
	}
}

func TestTruncateForLog(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		limit    int
		expected string
	}{
		{"short string unchanged", "hello", 10, "hello"},
		{"long string truncated", "hello world", 5, "hello..."},
		{"zero limit", "hello", 0, ""},
		{"trims whitespace", "  hi  ", 10, "hi"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := TruncateForLog(tt.input, tt.limit); got != tt.expected {
				t.Errorf("TruncateForLog() = %q, want %q", got, tt.expected)
			}
		})
	}
}
