package htmlsanitize

import (
	"strings"
	"testing"
)

func TestPlainText(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		want     string
		excludes []string
	}{
		{name: "empty", input: "", want: ""},
		{name: "plain text untouched", input: "Top 10 Recipes", want: "Top 10 Recipes"},
		{name: "ampersand kept", input: "Rock & Roll", want: "Rock & Roll"},
		{name: "comparison kept", input: "5 < 6", want: "5 < 6"},
		{name: "trims", input: "  padded  ", want: "padded"},
		{name: "formatting stripped", input: "<b>Bold</b> title", want: "Bold title"},
		{
			name:     "script removed",
			input:    "Title<script>alert('xss')</script>",
			want:     "Title",
			excludes: []string{"<script>", "alert"},
		},
		{
			name:     "attributes removed",
			input:    `<a href="javascript:alert(1)" onclick="x()">Link</a>`,
			want:     "Link",
			excludes: []string{"javascript", "onclick"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := PlainText(tt.input)
			if got != tt.want {
				t.Errorf("PlainText(%q) = %q, want %q", tt.input, got, tt.want)
			}
			for _, ex := range tt.excludes {
				if strings.Contains(got, ex) {
					t.Errorf("PlainText(%q) = %q, should not contain %q", tt.input, got, ex)
				}
			}
		})
	}
}

func TestPlainText_Idempotent(t *testing.T) {
	in := "<p>Hello <em>there</em> & welcome</p>"
	once := PlainText(in)
	if twice := PlainText(once); twice != once {
		t.Errorf("PlainText not idempotent: %q then %q", once, twice)
	}
}

func TestHasMarkup(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"", false},
		{"hello", false},
		{"a < b", false},
		{"a > b", false},
		{"b > a < c", false},
		{"a < b > c", true},
		{"<b>x</b>", true},
	}
	for _, tt := range tests {
		if got := hasMarkup(tt.input); got != tt.want {
			t.Errorf("hasMarkup(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}
