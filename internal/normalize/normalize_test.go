package normalize

import "testing"

func TestAnswer(t *testing.T) {
	tests := []struct {
		name     string
		question string
		text     string
		want     string
	}{
		{
			name:     "numeric extraction",
			question: "How many albums did she release?",
			text:     "She released 12 studio albums in total.",
			want:     "12",
		},
		{
			name:     "numeric strips thousands separators",
			question: "How many residents live there?",
			text:     "About 1,234,567 residents.",
			want:     "1234567",
		},
		{
			name:     "numeric leading zeros collapse",
			question: "What is the highest number on the list?",
			text:     "007",
			want:     "7",
		},
		{
			name:     "spelled out number",
			question: "How many legs does a spider have?",
			text:     "eight",
			want:     "8",
		},
		{
			name:     "spelled out compound number",
			question: "How many players are on the field?",
			text:     "twenty two",
			want:     "22",
		},
		{
			name:     "spelled out number split by carriage return",
			question: "How many chapters does it have?",
			text:     "twenty\rseven",
			want:     "27",
		},
		{
			name:     "numeric rule with no number passes through",
			question: "How many moons does it have?",
			text:     "unknown",
			want:     "unknown",
		},
		{
			name:     "first name only",
			question: "Give only the first name of the inventor.",
			text:     "Alexander Graham Bell",
			want:     "Alexander",
		},
		{
			name:     "ioc country code",
			question: "What is the IOC country code for Italy?",
			text:     "The code is ITA.",
			want:     "ITA",
		},
		{
			name:     "csv alphabetize",
			question: "List them comma separated. Alphabetize the list.",
			text:     "banana\ncherry; Apple",
			want:     "Apple, banana, cherry",
		},
		{
			name:     "csv preserves order without alphabetize cue",
			question: "Return a comma separated list of the stops.",
			text:     "Paris, Lyon, Nice",
			want:     "Paris, Lyon, Nice",
		},
		{
			name:     "usd two decimals",
			question: "What is the total in USD with two decimals?",
			text:     "The total is 19.5 dollars",
			want:     "$19.50",
		},
		{
			name:     "chess algebraic notation",
			question: "Give the winning move in algebraic notation.",
			text:     "The winning move is Nf3, developing the knight.",
			want:     "Nf3",
		},
		{
			name:     "default trims whitespace",
			question: "Who wrote it?",
			text:     "  Jane Austen  ",
			want:     "Jane Austen",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Answer(tt.question, tt.text); got != tt.want {
				t.Errorf("Answer(%q, %q) = %q, want %q", tt.question, tt.text, got, tt.want)
			}
		})
	}
}

func TestPlausible(t *testing.T) {
	tests := []struct {
		name      string
		question  string
		candidate string
		want      bool
	}{
		{"numeric accepts digits", "How many siblings?", "4", true},
		{"numeric rejects prose", "How many siblings?", "four siblings", false},
		{"ioc accepts code", "What is the IOC country code?", "FRA", true},
		{"ioc rejects lowercase", "What is the IOC country code?", "fra", false},
		{"san accepts move", "Answer in algebraic notation.", "Nf3", true},
		{"san rejects prose", "Answer in algebraic notation.", "move the knight", false},
		{"csv requires a comma", "Give a comma separated list.", "alpha, beta", true},
		{"csv rejects single item", "Give a comma separated list.", "alpha", false},
		{"usd accepts exact shape", "Total in USD with two decimals?", "$12.00", true},
		{"usd rejects missing cents", "Total in USD with two decimals?", "$12", false},
		{"first name accepts single word", "Give only the first name.", "Marie", true},
		{"first name rejects full name", "Give only the first name.", "Marie Curie", false},
		{"default accepts non-empty", "Who wrote it?", "Austen", true},
		{"default rejects empty", "Who wrote it?", "   ", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Plausible(tt.question, tt.candidate); got != tt.want {
				t.Errorf("Plausible(%q, %q) = %v, want %v", tt.question, tt.candidate, got, tt.want)
			}
		})
	}
}

func TestEarlyFinish(t *testing.T) {
	ok, final := EarlyFinish("How many planets are there?", "There are 8 planets.")
	if !ok || final != "8" {
		t.Errorf("EarlyFinish() = (%v, %q), want (true, \"8\")", ok, final)
	}

	ok, _ = EarlyFinish("How many planets are there?", "quite a few of them")
	if ok {
		t.Error("EarlyFinish() accepted an implausible numeric candidate")
	}

	ok, _ = EarlyFinish("Who wrote it?", "")
	if ok {
		t.Error("EarlyFinish() accepted an empty observation")
	}
}
