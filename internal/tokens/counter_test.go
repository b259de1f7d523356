package tokens

import (
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// wordEncoder emits one token per whitespace separated field.
type wordEncoder struct{}

func (wordEncoder) Encode(text string, _, _ []string) []int {
	return make([]int, len(strings.Fields(text)))
}

type panicEncoder struct{}

func (panicEncoder) Encode(string, []string, []string) []int {
	panic("boom")
}

func stubEncodings(t *testing.T, available map[string]Encoder) *[]string {
	t.Helper()
	var tried []string
	orig := getEncoding
	getEncoding = func(name string) (Encoder, error) {
		tried = append(tried, name)
		if enc, ok := available[name]; ok {
			return enc, nil
		}
		return nil, errors.New("not available")
	}
	t.Cleanup(func() { getEncoding = orig })
	return &tried
}

func TestNewCounter_Fallback(t *testing.T) {
	t.Run("default", func(t *testing.T) {
		stubEncodings(t, map[string]Encoder{DefaultEncoding: wordEncoder{}})
		c := NewCounter("")
		assert.Equal(t, DefaultEncoding, c.Encoding())
	})

	t.Run("requested then fallbacks", func(t *testing.T) {
		tried := stubEncodings(t, map[string]Encoder{"cl100k_base": wordEncoder{}})
		c := NewCounter("p50k_base")
		assert.Equal(t, "cl100k_base", c.Encoding())
		assert.Equal(t, []string{"p50k_base", DefaultEncoding, "cl100k_base"}, *tried)
	})

	t.Run("heuristic", func(t *testing.T) {
		stubEncodings(t, nil)
		c := NewCounter("")
		assert.Equal(t, "heuristic", c.Encoding())
		assert.Equal(t, 2, c.CountTokens("12345678", "a.txt"))
		assert.Equal(t, 1, c.CountTokens("héllo", "a.txt"))
	})
}

func TestCounter_CountTokens(t *testing.T) {
	c := NewCounterWithEncoder("words", wordEncoder{})

	assert.Equal(t, 0, c.CountTokens("", "empty.txt"))
	assert.Equal(t, 3, c.CountTokens("one two three", "a.txt"))
	// Pure: repeated calls do not change the answer.
	assert.Equal(t, 3, c.CountTokens("one two three", "b.txt"))
}

func TestCounter_RecoversFromEncoderPanic(t *testing.T) {
	c := NewCounterWithEncoder("broken", panicEncoder{})
	assert.Equal(t, 2, c.CountTokens("abcdefgh", "x.go"))
}

func TestCounter_Free(t *testing.T) {
	c := NewCounterWithEncoder("words", wordEncoder{})
	require.NoError(t, c.Free())

	err := c.Free()
	assert.ErrorIs(t, err, ErrFreed)
	assert.Equal(t, 0, c.CountTokens("after free", "a.txt"))
}

func TestCounter_Concurrent(t *testing.T) {
	c := NewCounterWithEncoder("words", wordEncoder{})
	defer c.Free()

	var wg sync.WaitGroup
	results := make([]int, 32)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = c.CountTokens(strings.Repeat("w ", i), "f")
		}(i)
	}
	wg.Wait()

	for i, got := range results {
		assert.Equal(t, i, got)
	}
}
