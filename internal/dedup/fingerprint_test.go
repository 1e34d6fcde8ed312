package dedup

import (
	"strings"
	"testing"
)

// --- NormalizeCaption ---

func TestNormalizeCaption_Basics(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"lowercase", "Hello World", "hello world"},
		{"keeps hashtags", "sunset #Vibes #2024", "sunset #vibes #2024"},
		{"strips urls", "watch this https://example.com/v/abc now", "watch this now"},
		{"strips emoji", "fire 🔥🔥 content", "fire content"},
		{"strips punctuation", "wow!!! really, really?", "wow really really"},
		{"collapses whitespace", "  a \t b \n c  ", "a b c"},
		{"empty", "", ""},
		{"only noise", "🔥🔥 !!! ...", ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := NormalizeCaption(tc.in); got != tc.want {
				t.Fatalf("NormalizeCaption(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}

func TestNormalizeCaption_Idempotent(t *testing.T) {
	inputs := []string{
		"Hello World!",
		"🔥 Check https://t.co/x #reels NOW",
		"  already   normalized text  ",
		"",
		"ünïcödé çhārs über",
	}
	for _, in := range inputs {
		once := NormalizeCaption(in)
		twice := NormalizeCaption(once)
		if once != twice {
			t.Fatalf("not idempotent for %q: %q != %q", in, once, twice)
		}
	}
}

// --- HammingDistance ---

func TestHammingDistance_SelfIsZero(t *testing.T) {
	for _, h := range []string{"0", "ff", "deadbeef", "0123456789abcdef", "ABCDEF"} {
		if d := HammingDistance(h, h); d != 0 {
			t.Fatalf("HammingDistance(%q, %q) = %d, want 0", h, h, d)
		}
	}
}

func TestHammingDistance_Symmetric(t *testing.T) {
	pairs := [][2]string{
		{"00", "ff"},
		{"deadbeef", "deadbee0"},
		{"abc", "def"},
	}
	for _, p := range pairs {
		ab := HammingDistance(p[0], p[1])
		ba := HammingDistance(p[1], p[0])
		if ab != ba {
			t.Fatalf("asymmetric: d(%q,%q)=%d, d(%q,%q)=%d", p[0], p[1], ab, p[1], p[0], ba)
		}
	}
}

func TestHammingDistance_KnownValues(t *testing.T) {
	cases := []struct {
		a, b string
		want int
	}{
		{"0", "f", 4},
		{"00", "ff", 8},
		{"00", "01", 1},
		{"f0f0", "0f0f", 16},
		{"deadbeef", "deadbeef", 0},
		{"AB", "ab", 0}, // case-insensitive hex
	}
	for _, tc := range cases {
		if got := HammingDistance(tc.a, tc.b); got != tc.want {
			t.Fatalf("HammingDistance(%q, %q) = %d, want %d", tc.a, tc.b, got, tc.want)
		}
	}
}

func TestHammingDistance_AbsentOrInvalid_IsMaxDistance(t *testing.T) {
	cases := [][2]string{
		{"", ""},
		{"", "deadbeef"},
		{"deadbeef", ""},
		{"   ", "deadbeef"}, // whitespace-only is absent
		{"abc", "abcd"},     // width mismatch
		{"zz", "ff"},        // non-hex digit
		{"ff", "g0"},
	}
	for _, p := range cases {
		if d := HammingDistance(p[0], p[1]); d != MaxDistance {
			t.Fatalf("HammingDistance(%q, %q) = %d, want MaxDistance", p[0], p[1], d)
		}
		// The contract behind "never a false visual duplicate".
		if d := HammingDistance(p[0], p[1]); d <= VisualHashMaxBits {
			t.Fatalf("absent/invalid hash produced a matchable distance %d", d)
		}
	}
}

// --- TokenCosineSimilarity ---

func TestTokenCosineSimilarity_IdenticalIsExactlyOne(t *testing.T) {
	inputs := []string{
		"hello",
		"hello world",
		"a a a b b c",
		strings.Repeat("token ", 50),
	}
	for _, in := range inputs {
		if got := TokenCosineSimilarity(in, in); got != 1 {
			t.Fatalf("cosine(%q, same) = %v, want exactly 1", in, got)
		}
	}
}

func TestTokenCosineSimilarity_EmptyIsZero(t *testing.T) {
	cases := [][2]string{
		{"", ""},
		{"", "hello world"},
		{"hello world", ""},
		{"   ", "hello"},
	}
	for _, p := range cases {
		if got := TokenCosineSimilarity(p[0], p[1]); got != 0 {
			t.Fatalf("cosine(%q, %q) = %v, want 0", p[0], p[1], got)
		}
	}
}

func TestTokenCosineSimilarity_Disjoint(t *testing.T) {
	if got := TokenCosineSimilarity("alpha beta", "gamma delta"); got != 0 {
		t.Fatalf("disjoint cosine = %v, want 0", got)
	}
}

func TestTokenCosineSimilarity_Partial(t *testing.T) {
	// "a b" vs "a c": dot = 1, norms = sqrt(2) each → 0.5.
	got := TokenCosineSimilarity("a b", "a c")
	if got < 0.4999 || got > 0.5001 {
		t.Fatalf("cosine(a b, a c) = %v, want 0.5", got)
	}
	// Multiset counts matter: "a a" vs "a" is still 1 (parallel vectors).
	if got := TokenCosineSimilarity("a a", "a"); got != 1 {
		t.Fatalf("cosine(a a, a) = %v, want 1", got)
	}
}

func TestTokenCosineSimilarity_BoundedByOne(t *testing.T) {
	pairs := [][2]string{
		{"x y z x y", "x y z"},
		{"one two three four", "four three two one"},
	}
	for _, p := range pairs {
		got := TokenCosineSimilarity(p[0], p[1])
		if got < 0 || got > 1 {
			t.Fatalf("cosine(%q, %q) = %v out of [0,1]", p[0], p[1], got)
		}
	}
}
