package narrative

import (
	"fmt"

	"github.com/pkoukk/tiktoken-go"
)

// Estimator measures text in abstract budget units. Estimates must be
// consistent and monotonic: the same text always costs the same, and more
// text never costs less.
type Estimator interface {
	Estimate(text string) int
}

// EstimatorFunc adapts a function to the Estimator interface.
type EstimatorFunc func(text string) int

// Estimate implements Estimator.
func (f EstimatorFunc) Estimate(text string) int {
	return f(text)
}

// CharCount returns the default estimator: one unit per byte of text. It
// assumes nothing about any particular tokenizer.
func CharCount() Estimator {
	return EstimatorFunc(func(text string) int {
		return len(text)
	})
}

// Tiktoken returns an estimator backed by the tokenizer for an OpenAI
// model, so budget units line up with real prompt tokens.
func Tiktoken(model string) (Estimator, error) {
	encoding, err := tiktoken.EncodingForModel(model)
	if err != nil {
		return nil, fmt.Errorf("load tokenizer for %s: %w", model, err)
	}
	return EstimatorFunc(func(text string) int {
		return len(encoding.Encode(text, nil, nil))
	}), nil
}
