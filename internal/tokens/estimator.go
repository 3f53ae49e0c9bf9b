// Package tokens estimates token counts for prompts and transcripts,
// using tiktoken when its BPE tables are available and a character
// heuristic otherwise.
package tokens

import (
	"strings"
	"sync"

	tiktoken "github.com/pkoukk/tiktoken-go"

	"openwork/internal/state"
)

// Estimator counts tokens for display purposes. It never fails: when the
// encoder cannot be initialized (offline, no BPE cache) it degrades to a
// heuristic.
type Estimator struct {
	encoder      *tiktoken.Tiktoken
	encodingName string
	fallback     bool
	mu           sync.RWMutex
}

var (
	defaultEstimator     *Estimator
	defaultEstimatorOnce sync.Once
)

// Default returns the shared cl100k_base estimator.
func Default() *Estimator {
	defaultEstimatorOnce.Do(func() {
		defaultEstimator = New("cl100k_base")
	})
	return defaultEstimator
}

// New creates an estimator for the named encoding.
func New(encodingName string) *Estimator {
	e := &Estimator{encodingName: encodingName}
	enc, err := tiktoken.GetEncoding(encodingName)
	if err != nil {
		e.fallback = true
		return e
	}
	e.encoder = enc
	return e
}

// ForModel picks the encoding that matches the model id.
func ForModel(ref state.ModelRef) *Estimator {
	return New(modelToEncoding(ref.ModelID))
}

// CountText counts tokens in a single string.
func (e *Estimator) CountText(text string) int {
	if text == "" {
		return 0
	}
	if e.fallback {
		return heuristicCount(text)
	}
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.encoder.Encode(text, nil, nil))
}

// CountTranscript estimates the token footprint of a transcript,
// including per-message structure overhead.
func (e *Estimator) CountTranscript(messages []state.Message) int {
	total := 0
	for _, msg := range messages {
		total += e.countMessage(msg)
	}
	return total
}

// IsPrecise reports whether the real encoder is in use.
func (e *Estimator) IsPrecise() bool {
	return !e.fallback
}

// EncodingName returns the encoding name.
func (e *Estimator) EncodingName() string {
	return e.encodingName
}

func (e *Estimator) countMessage(msg state.Message) int {
	// ~4 tokens of structure overhead per message
	tokens := 4
	tokens += e.CountText(msg.Info.Role)
	for _, part := range msg.Parts {
		switch {
		case part.Tool != nil:
			tokens += e.CountText(part.Tool.Name)
			tokens += e.CountText(part.Tool.Output)
			tokens += 8 // tool invocation structure overhead
		default:
			tokens += e.CountText(part.Text)
		}
	}
	return tokens
}

// heuristicCount approximates tokens for mixed CJK/ASCII text.
func heuristicCount(text string) int {
	cjkCount := 0
	asciiCount := 0
	for _, r := range text {
		if isCJK(r) {
			cjkCount++
		} else {
			asciiCount++
		}
	}
	// CJK: ~1.5 tokens per character, ASCII: ~0.25 tokens per character
	estimate := int(float64(cjkCount)*1.5 + float64(asciiCount)*0.25)
	if estimate < 1 {
		estimate = 1
	}
	return estimate
}

func isCJK(r rune) bool {
	return (r >= 0x4E00 && r <= 0x9FFF) || // CJK Unified
		(r >= 0x3400 && r <= 0x4DBF) || // CJK Extension A
		(r >= 0x3000 && r <= 0x303F) || // CJK Symbols
		(r >= 0xFF00 && r <= 0xFFEF) || // Fullwidth Forms
		(r >= 0xAC00 && r <= 0xD7AF) // Korean Hangul
}

func modelToEncoding(modelID string) string {
	m := strings.ToLower(strings.TrimSpace(modelID))
	if m == "" {
		return "cl100k_base"
	}
	if strings.HasPrefix(m, "o1") || strings.HasPrefix(m, "o3") {
		return "o200k_base"
	}
	if strings.HasPrefix(m, "gpt-4o") || strings.HasPrefix(m, "gpt-5") || strings.HasPrefix(m, "chatgpt-4o") {
		return "o200k_base"
	}
	return "cl100k_base"
}
