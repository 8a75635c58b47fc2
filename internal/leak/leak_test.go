package leak

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

var dictionary = []string{
	"the", "and", "for", "with", "your", "this", "that", "from", "have", "will",
	"calculate", "calculator", "details", "summary", "results",
}

var allowlist = []string{"BMI", "Quick Calculator", "Calculate your total results and details"}

func TestCheck(t *testing.T) {
	d := New(dictionary, nil, DefaultThresholds)

	tests := []struct {
		name    string
		text    string
		tokens  int
		matches int
		leaked  bool
	}{
		{"english sentence", "Calculate your total results and details", 6, 5, true},
		{"spanish sentence", "Calcula tus resultados totales y detalles", 6, 0, false},
		{"too short", "the results", 2, 2, false},
		{"one hit in five", "the uno dos tres cuatro", 5, 1, false},
		{"four tokens two hits", "The cálculo and resultado", 4, 2, true},
		{"punctuation is trimmed", "Calculate, your (results) now!", 4, 3, true},
		{"case folded", "THE AND FOR WITH", 4, 4, true},
		{"empty", "", 0, 0, false},
		{"whitespace only", "  \t\n", 0, 0, false},
		{"punctuation tokens count", "Calcule o total — results", 5, 1, false},
		{"punctuation only", "-- !! ?? ..", 4, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := d.Check(tt.text)
			assert.Equal(t, tt.tokens, res.Tokens)
			assert.Equal(t, tt.matches, res.Matches)
			assert.Equal(t, tt.leaked, res.Leaked)
		})
	}
}

func TestRatioBoundary(t *testing.T) {
	d := New(dictionary, nil, DefaultThresholds)

	// 1 of 5 is exactly 0.2, which is not above the ratio.
	assert.False(t, d.IsLeak("the a b c d"))
	// 2 of 5 is above it.
	assert.True(t, d.IsLeak("the and b c d"))
}

func TestAllowlistIsExactMatch(t *testing.T) {
	d := New(dictionary, allowlist, DefaultThresholds)

	res := d.Check("Calculate your total results and details")
	assert.True(t, res.Allowlisted)
	assert.False(t, res.Leaked)

	assert.True(t, d.IsLeak("Calculate your total results and details."))
}

func TestConfigurableThresholds(t *testing.T) {
	strict := New(dictionary, nil, Thresholds{MinTokens: 2, MatchRatio: 0.4})
	assert.True(t, strict.IsLeak("the results"))
	assert.False(t, strict.IsLeak("the uno dos"))
	assert.Equal(t, 2, strict.Thresholds().MinTokens)
}

func TestDetectIsPure(t *testing.T) {
	text := "Calculate your total results and details"
	first := Detect(text, dictionary, nil, DefaultThresholds)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, Detect(text, dictionary, nil, DefaultThresholds))
	}
}

func TestTokenize(t *testing.T) {
	assert.Equal(t, []string{"hello,", "world!"}, Tokenize("  Hello,   WORLD! "))
	assert.Equal(t, []string{"école"}, Tokenize("ÉCOLE"))
	assert.Equal(t, []string{"--", "!!"}, Tokenize("-- !!"))
	assert.Empty(t, Tokenize(" \t\n"))
}
