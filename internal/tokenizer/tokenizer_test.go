package tokenizer

import (
	"reflect"
	"testing"
)

func TestTokenize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []Token
	}{
		{
			name:  "lowercases and splits on punctuation",
			input: "Quick, Brown; Fox!",
			want: []Token{
				{Term: "quick", Position: 0},
				{Term: "brown", Position: 1},
				{Term: "fox", Position: 2},
			},
		},
		{
			name:  "drops stop words without gaps in positions",
			input: "the cat and the dog",
			want: []Token{
				{Term: "cat", Position: 0},
				{Term: "dog", Position: 1},
			},
		},
		{
			name:  "stems plural forms",
			input: "cats dogs",
			want: []Token{
				{Term: "cat", Position: 0},
				{Term: "dog", Position: 1},
			},
		},
		{
			name:  "drops single characters",
			input: "x y cat",
			want: []Token{
				{Term: "cat", Position: 0},
			},
		},
		{
			name:  "empty input",
			input: "",
			want:  []Token{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Tokenize(tt.input)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Tokenize(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestStem(t *testing.T) {
	tests := []struct {
		word string
		want string
	}{
		{"running", "runn"},
		{"jumped", "jump"},
		{"flies", "fly"},
		{"quickly", "quick"},
		{"educational", "educate"},
		{"class", "class"},
		{"cat", "cat"},
	}
	for _, tt := range tests {
		if got := stem(tt.word); got != tt.want {
			t.Errorf("stem(%q) = %q, want %q", tt.word, got, tt.want)
		}
	}
}

func TestTermsMatchesTokenize(t *testing.T) {
	input := "the quick brown fox jumps over the lazy dog"
	tokens := Tokenize(input)
	terms := Terms(input)
	if len(terms) != len(tokens) {
		t.Fatalf("Terms returned %d entries, Tokenize %d", len(terms), len(tokens))
	}
	for i, tok := range tokens {
		if terms[i] != tok.Term {
			t.Errorf("terms[%d] = %q, want %q", i, terms[i], tok.Term)
		}
	}
}
