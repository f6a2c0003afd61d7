package textnorm

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", ""},
		{"only spaces", "   \t\n ", ""},
		{"lowercases", "Jalan RUSAK", "jalan rusak"},
		{"drops digits and punctuation", "Lubang 3 meter!!! di Jl. Sudirman, no.12", "lubang meter di jl sudirman no"},
		{"drops emoji", "banjir lagi 😡😡", "banjir lagi"},
		{"collapses whitespace", "sampah\t\tmenumpuk\n\n  di   pasar", "sampah menumpuk di pasar"},
		{"trims", "  kotor  ", "kotor"},
		{"non latin letters removed", "café über naïve", "caf ber nave"},
		{"symbols between words keep the gap", "air-mati", "airmati"},
		{"digits only", "081234567890", ""},
		{"no-break space separates words", "jalan\u00a0rusak", "jalan rusak"},
		{"em space separates words", "lampu\u2003mati", "lampu mati"},
		{"next line separates words", "air\u0085keruh", "air keruh"},
		{"unicode spaces only", "\u00a0\u2003\u0085", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, Normalize(tt.in))
		})
	}
}

func TestTokens(t *testing.T) {
	t.Parallel()

	assert.Equal(t, []string{"jalan", "rusak", "parah"}, Tokens(Normalize("Jalan rusak, PARAH!")))
	assert.Empty(t, Tokens(""))
}

func FuzzNormalizeIdempotent(f *testing.F) {
	f.Add("")
	f.Add("Terjadi kebakaran besar di pasar, sangat darurat!")
	f.Add("  \t multiple   spaces \n")
	f.Add("\x00\xff\xfe invalid utf8")
	f.Add("jalan\u00a0rusak\u2003parah\u0085")
	f.Add(strings.Repeat("ab 1 ", 1000))

	f.Fuzz(func(t *testing.T, s string) {
		once := Normalize(s)
		twice := Normalize(once)
		if once != twice {
			t.Fatalf("Normalize not idempotent: %q -> %q -> %q", s, once, twice)
		}
		if strings.TrimSpace(once) != once {
			t.Fatalf("Normalize(%q) = %q has surrounding whitespace", s, once)
		}
		if strings.Contains(once, "  ") {
			t.Fatalf("Normalize(%q) = %q has a double space", s, once)
		}
		for _, r := range once {
			if r != ' ' && (r < 'a' || r > 'z') {
				t.Fatalf("Normalize(%q) = %q contains %q", s, once, r)
			}
		}
	})
}
