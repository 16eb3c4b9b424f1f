package dictionary

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatic_ContainsIsCaseInsensitive(t *testing.T) {
	d := NewStatic()
	d.Load("en", []string{"Cat", "DOG", " bird "})

	assert.True(t, d.Contains("en", "cat"))
	assert.True(t, d.Contains("en", "CAT"))
	assert.True(t, d.Contains("en", "bird"), "entries are trimmed on load")
	assert.False(t, d.Contains("en", "fish"))
	assert.False(t, d.Contains("de", "cat"), "languages are isolated")
}

func TestStatic_HasPrefix(t *testing.T) {
	d := NewStatic()
	d.Load("en", []string{"stream"})

	for _, p := range []string{"s", "st", "stre", "stream"} {
		assert.True(t, d.HasPrefix("en", p), "prefix %q", p)
	}
	assert.False(t, d.HasPrefix("en", "str2"))
	assert.False(t, d.HasPrefix("de", "st"))
}

func TestStatic_WordsDedupes(t *testing.T) {
	d := NewStatic()
	d.Load("en", []string{"cat", "cat", "", "dog"})
	assert.ElementsMatch(t, []string{"cat", "dog"}, d.Words("en"))
}

func TestStatic_LoadReplaces(t *testing.T) {
	d := NewStatic()
	d.Load("en", []string{"cat"})
	d.Load("en", []string{"dog"})
	assert.False(t, d.Contains("en", "cat"))
	assert.True(t, d.Contains("en", "dog"))
}

func TestNoArbiter_RejectsEverything(t *testing.T) {
	verdict, err := NoArbiter{}.Verdict(context.Background(), "en", "anything")
	require.NoError(t, err)
	assert.False(t, verdict)
}
