// Package tokens counts tokens the way the target model's tokenizer does.
//
// A Counter wraps one tiktoken encoding. Encodings are resolved by name and
// fall back through a fixed list; if none can be loaded (for example when
// the BPE ranks cannot be fetched offline) the counter degrades to the
// ~4 characters per token heuristic rather than failing the run.
package tokens

import (
	"errors"
	"fmt"
	"sync/atomic"
	"unicode/utf8"

	"github.com/pkoukk/tiktoken-go"

	"repopack/internal/logging"
)

// DefaultEncoding is the encoding used by gpt-4o class models.
const DefaultEncoding = "o200k_base"

// fallbackEncodings are tried in order after the requested encoding.
var fallbackEncodings = []string{DefaultEncoding, "cl100k_base"}

// charsPerToken is the heuristic ratio used when no encoding is available.
const charsPerToken = 4.0

// ErrFreed is returned by Free when the counter was already released.
var ErrFreed = errors.New("token counter already freed")

// Encoder is the subset of *tiktoken.Tiktoken the counter needs.
type Encoder interface {
	Encode(text string, allowedSpecial []string, disallowedSpecial []string) []int
}

// Counter converts text to a token count. It is safe for concurrent use
// until Free is called.
type Counter struct {
	encoding string
	enc      Encoder
	freed    atomic.Bool
}

// getEncoding is swapped in tests to avoid fetching BPE ranks.
var getEncoding = func(name string) (Encoder, error) {
	return tiktoken.GetEncoding(name)
}

// NewCounter loads the named encoding (DefaultEncoding when empty).
func NewCounter(encoding string) *Counter {
	timer := logging.StartTimer(logging.CategoryMetrics, "Load tokenizer")
	defer timer.Stop()

	candidates := fallbackEncodings
	if encoding != "" && encoding != DefaultEncoding {
		candidates = append([]string{encoding}, fallbackEncodings...)
	}

	for _, name := range candidates {
		enc, err := getEncoding(name)
		if err != nil {
			logging.MetricsWarn("Failed to load encoding %s: %v", name, err)
			continue
		}
		logging.MetricsDebug("Using encoding %s", name)
		return &Counter{encoding: name, enc: enc}
	}

	logging.MetricsWarn("No tokenizer available, estimating %.0f characters per token", charsPerToken)
	return &Counter{encoding: "heuristic"}
}

// NewCounterWithEncoder wraps an already loaded encoder.
func NewCounterWithEncoder(name string, enc Encoder) *Counter {
	return &Counter{encoding: name, enc: enc}
}

// Encoding returns the name of the encoding in use.
func (c *Counter) Encoding() string {
	return c.encoding
}

// CountTokens returns the number of tokens in content. filePath is only used
// for diagnostics. Calling it after Free logs an error and returns 0.
func (c *Counter) CountTokens(content, filePath string) (count int) {
	if c.freed.Load() {
		logging.Get(logging.CategoryMetrics).Error("CountTokens called after Free (file %s)", filePath)
		return 0
	}
	if content == "" {
		return 0
	}
	if c.enc == nil {
		return estimate(content)
	}

	defer func() {
		if r := recover(); r != nil {
			logging.MetricsWarn("Tokenizer failed on %s, estimating: %v", filePath, r)
			count = estimate(content)
		}
	}()
	return len(c.enc.Encode(content, nil, nil))
}

// Free releases the encoder. It must be called exactly once.
func (c *Counter) Free() error {
	if !c.freed.CompareAndSwap(false, true) {
		return fmt.Errorf("%w (%s)", ErrFreed, c.encoding)
	}
	c.enc = nil
	logging.MetricsDebug("Token counter freed (%s)", c.encoding)
	return nil
}

// estimate mirrors the character heuristic: rune count / 4.
func estimate(s string) int {
	return int(float64(utf8.RuneCountInString(s)) / charsPerToken)
}
