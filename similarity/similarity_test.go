package similarity

import "testing"

func TestRatio_Identity(t *testing.T) {
	texts := []string{
		"hello world",
		"a single page with quite a lot of repeated words and words and words",
		"x",
	}
	for _, s := range texts {
		if got := Ratio(s, s); got != 1 {
			t.Errorf("Ratio(%q, same): got %v, want 1", s, got)
		}
	}
}

func TestRatio_Empty(t *testing.T) {
	if got := Ratio("", ""); got != 1 {
		t.Errorf("Ratio(empty, empty): got %v, want 1", got)
	}
	if got := Ratio("some content here", ""); got != 0 {
		t.Errorf("Ratio(text, empty): got %v, want 0", got)
	}
	if got := Ratio("", "some content here"); got != 0 {
		t.Errorf("Ratio(empty, text): got %v, want 0", got)
	}
	// Whitespace-only counts as empty after tokenization.
	if got := Ratio("   \n\t ", ""); got != 1 {
		t.Errorf("Ratio(whitespace, empty): got %v, want 1", got)
	}
}

func TestRatio_Disjoint(t *testing.T) {
	if got := Ratio("alpha beta gamma", "one two three"); got != 0 {
		t.Errorf("Ratio(disjoint): got %v, want 0", got)
	}
}

func TestRatio_Monotonic(t *testing.T) {
	ref := "the quick brown fox jumps over the lazy dog near the river bank"
	closer := "the quick brown fox jumps over the lazy dog near the river"
	farther := "the quick brown fox"
	c := Ratio(ref, closer)
	f := Ratio(ref, farther)
	if c <= f {
		t.Errorf("more shared content should score higher: closer=%v farther=%v", c, f)
	}
	if c <= 0 || c >= 1 {
		t.Errorf("closer score out of open interval: %v", c)
	}
}

func TestRatio_Bounds(t *testing.T) {
	pairs := [][2]string{
		{"a b c d", "b c d e"},
		{"x y", "x y z w q"},
		{"lorem ipsum dolor sit amet", "dolor sit amet lorem ipsum"},
	}
	for _, p := range pairs {
		got := Ratio(p[0], p[1])
		if got < 0 || got > 1 {
			t.Errorf("Ratio(%q, %q) = %v out of [0,1]", p[0], p[1], got)
		}
	}
}

func TestRatio_KnownValue(t *testing.T) {
	// 3 matched tokens out of 4+4: 2*3/8 = 0.75.
	got := Ratio("a b c d", "a b c x")
	if got != 0.75 {
		t.Errorf("Ratio: got %v, want 0.75", got)
	}
}

func TestRatio_NearSymmetric(t *testing.T) {
	a := "navigation content main article body footer text words"
	b := "content main article body extra words trailing"
	ab := Ratio(a, b)
	ba := Ratio(b, a)
	if diff := ab - ba; diff > 0.05 || diff < -0.05 {
		t.Errorf("direction skew too large: %v vs %v", ab, ba)
	}
}
