package utils

import "testing"

func TestTokenSplit(t *testing.T) {
	var cases = []struct {
		name          string
		authorization string
		want          []string
	}{
		{"bearer single", "Bearer abc123", []string{"abc123"}},
		{"bare token", "abc123", []string{"abc123"}},
		{"multiple", "Bearer tok1, tok2 ,tok3", []string{"tok1", "tok2", "tok3"}},
		{"regional prefix kept", "Bearer us-tok1", []string{"us-tok1"}},
		{"empty", "", nil},
		{"bearer only", "Bearer ", nil},
		{"stray commas", "Bearer ,,", nil},
	}
	for _, c := range cases {
		got := TokenSplit(c.authorization)
		if len(got) != len(c.want) {
			t.Fatalf("%s: got %v, want %v", c.name, got, c.want)
		}
		for i := range c.want {
			if got[i] != c.want[i] {
				t.Fatalf("%s: got %v, want %v", c.name, got, c.want)
			}
		}
	}
}

func TestSampleToken(t *testing.T) {
	if SampleToken(nil) != "" {
		t.Fatalf("empty slice should sample to empty string")
	}
	if SampleToken([]string{"only"}) != "only" {
		t.Fatalf("single token should be returned as-is")
	}
	tokens := []string{"tok1", "tok2", "tok3"}
	for i := 0; i < 20; i++ {
		sampled := SampleToken(tokens)
		if sampled != "tok1" && sampled != "tok2" && sampled != "tok3" {
			t.Fatalf("sampled unexpected token %q", sampled)
		}
	}
}
