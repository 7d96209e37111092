package oracle

import "testing"

func TestExtractObject(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{
			name: "bare object",
			raw:  `{"tool":"x"}`,
			want: `{"tool":"x"}`,
		},
		{
			name: "object inside code fence",
			raw:  "```json\n{\"finish\":\"42\"}\n```",
			want: `{"finish":"42"}`,
		},
		{
			name: "prose before and after",
			raw:  `Sure! Here you go: {"a":1} hope that helps`,
			want: `{"a":1}`,
		},
		{
			name: "nested objects",
			raw:  `{"params":{"inner":{"x":1}}}`,
			want: `{"params":{"inner":{"x":1}}}`,
		},
		{
			name: "braces inside strings",
			raw:  `{"why":"use {x} carefully"}`,
			want: `{"why":"use {x} carefully"}`,
		},
		{
			name: "escaped quotes inside strings",
			raw:  `{"why":"he said \"}\" loudly"}`,
			want: `{"why":"he said \"}\" loudly"}`,
		},
		{
			name: "no object at all",
			raw:  "plain prose",
			want: "",
		},
		{
			name: "unbalanced object",
			raw:  `{"oops": {"never closed"`,
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExtractObject(tt.raw); got != tt.want {
				t.Errorf("ExtractObject(%q) = %q, want %q", tt.raw, got, tt.want)
			}
		})
	}
}
