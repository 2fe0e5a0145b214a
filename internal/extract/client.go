// Package extract turns statement images into transaction candidates using
// a vision model. The extractor is an external collaborator: its output is
// untrusted and every field is re-validated by the review engine.
package extract

import (
	"context"
	"fmt"
	"time"
)

// ExtractedItem is one raw transaction row as returned by the vision model.
// Date is an ISO calendar string and may be malformed; Amount is decoded
// tolerantly (see UnmarshalJSON) and is NaN when the model returned
// something unreadable. Nothing here is validated.
type ExtractedItem struct {
	Date        string  `json:"date"`
	Description string  `json:"description"`
	Amount      float64 `json:"amount"`
}

// Extractor defines the interface for statement extraction providers.
type Extractor interface {
	ExtractTransactions(ctx context.Context, image []byte, mimeType string) ([]ExtractedItem, error)
}

// Config holds extraction provider configuration.
type Config struct {
	Provider    string
	APIKey      string
	Model       string
	Timeout     time.Duration
	MaxTokens   int
	Temperature float64
}

// NewExtractor creates an extraction client based on the configured provider.
func NewExtractor(cfg Config) (Extractor, error) {
	switch cfg.Provider {
	case "openai", "":
		return newOpenAIExtractor(cfg)
	default:
		return nil, fmt.Errorf("unknown extraction provider: %s", cfg.Provider)
	}
}
