package metrics

import (
	"fmt"
	"strings"
	"sync"

	"github.com/pkoukk/tiktoken-go"
)

// DefaultTiktokenModel selects the encoding used by NewTiktokenCounter when
// no model is given.
const DefaultTiktokenModel = "gpt-3.5-turbo"

// Counter measures template source or rendered output.
type Counter interface {
	Count(text string) (bytes, tokens, lines int)
}

func countLines(text string) int {
	return strings.Count(text, "\n") + 1
}

// SimpleCounter estimates one token per four bytes.
type SimpleCounter struct{}

func (*SimpleCounter) Count(text string) (int, int, int) {
	return len(text), len(text) / 4, countLines(text)
}

// TiktokenCounter counts tokens with a tiktoken encoding. It is safe for
// use by the metric workers.
type TiktokenCounter struct {
	mu  sync.Mutex
	enc *tiktoken.Tiktoken
}

// NewTiktokenCounter loads the encoding of model.
func NewTiktokenCounter(model string) (*TiktokenCounter, error) {
	if model == "" {
		model = DefaultTiktokenModel
	}
	enc, err := tiktoken.EncodingForModel(model)
	if err != nil {
		return nil, fmt.Errorf("unsupported model for tiktoken %s: %w", model, err)
	}
	return &TiktokenCounter{enc: enc}, nil
}

func (c *TiktokenCounter) Count(text string) (int, int, int) {
	c.mu.Lock()
	tokens := len(c.enc.Encode(strings.TrimSpace(text), nil, nil))
	c.mu.Unlock()
	return len(text), tokens, countLines(text)
}
