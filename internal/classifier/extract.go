package classifier

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrNoClassification signals that the model output carried no usable
// classification payload. The orchestrator treats it as a fallback trigger,
// never as a fatal error.
var ErrNoClassification = errors.New("no classification payload in model output")

// RawClassification is the undecoded model answer. Confidence is typed any
// because models occasionally return it as a string or omit it; coercion
// happens in the orchestrator.
type RawClassification struct {
	Category           string   `json:"category"`
	CategoryReasoning  string   `json:"category_reasoning"`
	Sentiment          string   `json:"sentiment"`
	SentimentReasoning string   `json:"sentiment_reasoning"`
	Confidence         any      `json:"confidence"`
	Keywords           []string `json:"keywords"`
}

// Extract locates and decodes the JSON object embedded in free-form model
// output. Models wrap their answer in prose or code fences, so the heuristic
// takes the greedy span from the first '{' to the last '}' and decodes that;
// when no brace pair exists the whole text is tried as-is. Best effort by
// construction: a malformed span or a payload without a category yields
// ErrNoClassification.
func Extract(raw string) (*RawClassification, error) {
	candidate := raw
	open := strings.Index(raw, "{")
	close := strings.LastIndex(raw, "}")
	if open >= 0 && close > open {
		candidate = raw[open : close+1]
	}

	var rc RawClassification
	if err := json.Unmarshal([]byte(candidate), &rc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNoClassification, err)
	}
	if strings.TrimSpace(rc.Category) == "" {
		return nil, fmt.Errorf("%w: missing category", ErrNoClassification)
	}
	return &rc, nil
}
