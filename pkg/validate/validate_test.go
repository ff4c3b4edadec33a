package validate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckNumberWithRange(t *testing.T) {
	tests := []struct {
		name  string
		rng   string
		value string
		want  bool
	}{
		{name: "inclusive lower bound", rng: "[10,MAX)", value: "10", want: true},
		{name: "large value unbounded above", rng: "[10,MAX)", value: "999999", want: true},
		{name: "below inclusive bound", rng: "[10,MAX)", value: "9", want: false},
		{name: "non numeric", rng: "[10,MAX)", value: "ten", want: false},
		{name: "exclusive lower bound", rng: "(0,MAX)", value: "0", want: false},
		{name: "just above exclusive bound", rng: "(0,MAX)", value: "1", want: true},
		{name: "inclusive upper bound", rng: "[1,50000]", value: "50000", want: true},
		{name: "above inclusive upper bound", rng: "[1,50000]", value: "50001", want: false},
		{name: "exclusive upper bound", rng: "[1,100)", value: "100", want: false},
		{name: "empty minimum", rng: "(,100]", value: "0", want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := New(PatternNumber, WithRange(tt.rng))
			require.NoError(t, err)
			assert.Equal(t, tt.want, v.Check(tt.value))
		})
	}
}

func TestCheckEmptyNotRequired(t *testing.T) {
	v, err := New(PatternEmail, WithRequired(false))
	require.NoError(t, err)
	assert.True(t, v.Check(""))
	assert.False(t, v.Check("not-an-email"))
	assert.True(t, v.Check("ops@example.com"))

	required, err := New(PatternEmail, WithRequired(true))
	require.NoError(t, err)
	assert.False(t, required.Check(""))
}

func TestCheckPasswordLength(t *testing.T) {
	older, err := New(PatternPassword, WithPatterns(DefaultPatterns(5)))
	require.NoError(t, err)
	newer, err := New(PatternPassword, WithPatterns(DefaultPatterns(6)))
	require.NoError(t, err)

	assert.True(t, older.Check("abcde"))
	assert.False(t, newer.Check("abcde"))
	assert.True(t, newer.Check("abcdef"))
}

func TestCheckRegexFallback(t *testing.T) {
	v, err := New(`^[a-z_]+\.xml$`)
	require.NoError(t, err)
	assert.True(t, v.Check("sitemap_web.xml"))
	assert.False(t, v.Check("Sitemap.txt"))

	_, err = New(`([`)
	assert.ErrorIs(t, err, ErrInvalidPattern)
}

func TestCustomNamedPattern(t *testing.T) {
	patterns := DefaultPatterns(6).With("even", func(v string) bool {
		return len(v)%2 == 0
	})
	v, err := New("even", WithPatterns(patterns))
	require.NoError(t, err)
	assert.True(t, v.Check("ab"))
	assert.False(t, v.Check("abc"))
}

func TestParseRange(t *testing.T) {
	r, err := ParseRange("[10,MAX)")
	require.NoError(t, err)
	assert.True(t, r.MinInclusive)
	assert.False(t, r.MaxInclusive)
	assert.Equal(t, float64(10), r.Min)
	assert.Equal(t, "[10,MAX)", r.String())

	for _, bad := range []string{"", "10,20", "[a,b]", "[20,10]", "{1,2}"} {
		_, err := ParseRange(bad)
		assert.ErrorIs(t, err, ErrInvalidRange, bad)
	}
}

func TestRangeOnNonNumericPattern(t *testing.T) {
	_, err := New(PatternEmail, WithRange("[1,2]"))
	assert.ErrorIs(t, err, ErrInvalidRange)
}

func TestHint(t *testing.T) {
	v := MustNew(PatternNumber, WithRange("[1,MAX)"))
	assert.Equal(t, "Range=[1,MAX)", v.Hint())
	assert.Equal(t, "[1,MAX)", v.Range())

	plain := MustNew(PatternNumber)
	assert.Empty(t, plain.Hint())
}

func TestPredefinedPatterns(t *testing.T) {
	p := DefaultPatterns(6)
	assert.True(t, p[PatternDate]("2024-02-29"))
	assert.False(t, p[PatternDate]("2024-13-01"))
	assert.True(t, p[PatternTime]("23:59"))
	assert.False(t, p[PatternTime]("24:01"))
	assert.True(t, p[PatternHost]("www.example.com"))
	assert.True(t, p[PatternHost]("127.0.0.1"))
	assert.False(t, p[PatternHost]("bad host"))
	assert.True(t, p[PatternURL]("http://www.google.com/ping?sitemap="))
	assert.False(t, p[PatternURL]("/relative"))
}
