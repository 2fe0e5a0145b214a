package extract

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/centsible/centsible/internal/common"
)

// UnmarshalJSON decodes one extraction row without trusting the amount
// shape. Models occasionally return amounts as strings ("12,50", "$4.50");
// a row like that must reach the review engine to be flagged, not abort the
// whole batch. Amounts that cannot be read become NaN.
func (e *ExtractedItem) UnmarshalJSON(data []byte) error {
	var raw struct {
		Date        string          `json:"date"`
		Description string          `json:"description"`
		Amount      json.RawMessage `json:"amount"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	e.Date = raw.Date
	e.Description = raw.Description
	e.Amount = decodeAmount(raw.Amount)
	return nil
}

func decodeAmount(raw json.RawMessage) float64 {
	if len(raw) == 0 || string(raw) == "null" {
		return math.NaN()
	}

	var n float64
	if err := json.Unmarshal(raw, &n); err == nil {
		return n
	}

	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return math.NaN()
	}

	s = strings.TrimSpace(strings.TrimLeft(s, "$€£ "))
	// A single comma with no dot is a decimal comma.
	if strings.Count(s, ",") == 1 && !strings.Contains(s, ".") {
		s = strings.Replace(s, ",", ".", 1)
	}

	n, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return math.NaN()
	}
	return n
}

// parseExtraction decodes the model's response into extraction rows. The
// response is untrusted: rows are passed through as-is so the review engine
// can flag malformed fields instead of losing them here. Only a completely
// undecodable payload is an error.
func parseExtraction(content string) ([]ExtractedItem, error) {
	content = cleanMarkdownFence(content)

	var wrapped struct {
		Expenses []ExtractedItem `json:"expenses"`
	}
	if err := json.Unmarshal([]byte(content), &wrapped); err == nil && wrapped.Expenses != nil {
		return wrapped.Expenses, nil
	}

	// Some models return a bare array despite the prompt.
	var items []ExtractedItem
	if err := json.Unmarshal([]byte(content), &items); err != nil {
		return nil, fmt.Errorf("%w: unparseable model output: %v", common.ErrExtractionFailed, err)
	}

	return items, nil
}

// cleanMarkdownFence strips a ```json ... ``` wrapper if the model added one.
func cleanMarkdownFence(content string) string {
	content = strings.TrimSpace(content)

	if strings.HasPrefix(content, "```") {
		if idx := strings.Index(content, "\n"); idx != -1 {
			content = content[idx+1:]
		}
		content = strings.TrimSuffix(strings.TrimSpace(content), "```")
	}

	return strings.TrimSpace(content)
}
