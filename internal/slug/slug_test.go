package slug

import "testing"

func TestMake(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "simple title",
			input: "Pasta Carbonara",
			want:  "pasta-carbonara",
		},
		{
			name:  "accents folded",
			input: "Crème Brûlée",
			want:  "creme-brulee",
		},
		{
			name:  "punctuation dropped",
			input: "Mom's Best Chili!",
			want:  "moms-best-chili",
		},
		{
			name:  "rename suffix",
			input: "Pasta Carbonara (2)",
			want:  "pasta-carbonara-2",
		},
		{
			name:  "underscores and whitespace collapse",
			input: "weeknight_dinners  \t fast",
			want:  "weeknight-dinners-fast",
		},
		{
			name:  "surrounding junk trimmed",
			input: "  --Tacos--  ",
			want:  "tacos",
		},
		{
			name:  "german umlauts",
			input: "Grüner Spargel süß-sauer",
			want:  "gruner-spargel-su-sauer",
		},
		{
			name:  "no latin equivalent",
			input: "北京烤鸭",
			want:  "",
		},
		{
			name:  "empty",
			input: "",
			want:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Make(tt.input); got != tt.want {
				t.Errorf("Make(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}
