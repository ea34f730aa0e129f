package taxonomy

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	testCases := []struct {
		name string
		in   string
		want string
	}{
		{name: "already canonical", in: "ai", want: "ai"},
		{name: "case and padding", in: "  AI ", want: "ai"},
		{name: "internal whitespace", in: "Machine \t  Learning\n", want: "machine learning"},
		{name: "non-breaking space", in: "machine\u00a0learning", want: "machine learning"},
		{name: "fullwidth letters", in: "ＡＩ", want: "ai"},
		{name: "empty", in: "", want: ""},
		{name: "whitespace only", in: " \t\n ", want: ""},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Normalize(tc.in))
		})
	}
}

func TestNormalize_Idempotent(t *testing.T) {
	inputs := []string{"", "  AI ", "Machine   Learning", "Café  Culture", "ＡＩ", "ǅ", " x y", "İstanbul", "\U000103d2\u0301", "ai\xff"}
	for _, in := range inputs {
		once := Normalize(in)
		assert.Equal(t, once, Normalize(once), "normalize(normalize(%q))", in)
		assert.Equal(t, strings.ToLower(once), once, "normalize(%q) keeps an uppercase letter", in)
	}
	assert.Equal(t, Normalize("ai"), Normalize("  AI "))
}

func assertCanonical(t *testing.T, in string) {
	t.Helper()
	once := Normalize(in)
	if twice := Normalize(once); twice != once {
		t.Fatalf("Normalize not idempotent for %q: %q then %q", in, once, twice)
	}
	if !utf8.ValidString(once) {
		t.Fatalf("Normalize(%q) = %q is not valid UTF-8", in, once)
	}
	if strings.TrimSpace(once) != once || strings.Contains(once, "  ") {
		t.Fatalf("Normalize(%q) = %q has untrimmed whitespace", in, once)
	}
}

func TestNormalize_IdempotentForEveryRune(t *testing.T) {
	if testing.Short() {
		t.Skip("walks the whole code space")
	}
	for r := rune(0); r <= utf8.MaxRune; r++ {
		if !utf8.ValidRune(r) {
			continue
		}
		s := string(r)
		assertCanonical(t, s)
		assertCanonical(t, s+"\u0301")
		assertCanonical(t, "X"+s)
	}
}

func FuzzNormalize(f *testing.F) {
	seeds := []string{
		"",
		"  AI ",
		"Machine \t Learning",
		"Café",
		"Cafe\u0301",
		"\U000103d2\u0301",
		"A\u030a\u0301",
		"\u1e9b\u0323",
		"ＡＩ",
		"\ufb01ne",
		"\u2460\u00bd",
		"\u212a\u2126",
		"ǅ",
		"İstanbul",
		"\u00a0\u3000x",
		"\xff\xfe",
		"ai\xc3",
		"\xed\xa0\x80",
	}
	for _, s := range seeds {
		f.Add(s)
	}
	f.Fuzz(func(t *testing.T, s string) {
		assertCanonical(t, s)
	})
}
