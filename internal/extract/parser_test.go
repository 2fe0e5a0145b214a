package extract

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/centsible/centsible/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseExtraction(t *testing.T) {
	want := []ExtractedItem{
		{Date: "2024-01-05", Description: "STARBUCKS #123", Amount: 4.50},
		{Date: "2024-01-06", Description: "TRADER JOES", Amount: 32.18},
	}

	tests := []struct {
		name    string
		content string
	}{
		{
			name:    "wrapped object",
			content: `{"expenses":[{"date":"2024-01-05","description":"STARBUCKS #123","amount":4.5},{"date":"2024-01-06","description":"TRADER JOES","amount":32.18}]}`,
		},
		{
			name:    "bare array",
			content: `[{"date":"2024-01-05","description":"STARBUCKS #123","amount":4.5},{"date":"2024-01-06","description":"TRADER JOES","amount":32.18}]`,
		},
		{
			name: "json markdown fence",
			content: "```json\n" +
				`{"expenses":[{"date":"2024-01-05","description":"STARBUCKS #123","amount":4.5},{"date":"2024-01-06","description":"TRADER JOES","amount":32.18}]}` +
				"\n```",
		},
		{
			name: "bare markdown fence with surrounding whitespace",
			content: "\n\n```\n" +
				`[{"date":"2024-01-05","description":"STARBUCKS #123","amount":4.5},{"date":"2024-01-06","description":"TRADER JOES","amount":32.18}]` +
				"\n```\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseExtraction(tt.content)
			require.NoError(t, err)
			assert.Equal(t, want, got)
		})
	}
}

func TestParseExtraction_EmptyStatement(t *testing.T) {
	got, err := parseExtraction(`{"expenses":[]}`)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestParseExtraction_MalformedFieldsPassThrough(t *testing.T) {
	// Bad dates are not this layer's problem; the review engine flags them.
	got, err := parseExtraction(`{"expenses":[{"date":"01/05/2024","description":"ODD DATE","amount":4.5}]}`)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "01/05/2024", got[0].Date)
}

func TestParseExtraction_StringAmounts(t *testing.T) {
	// One unreadable amount must not cost the rest of the batch.
	got, err := parseExtraction(`{"expenses":[
		{"date":"2024-01-05","description":"GOOD","amount":4.5},
		{"date":"2024-01-06","description":"STRING AMOUNT","amount":"unknown"},
		{"date":"2024-01-07","description":"ALSO GOOD","amount":9.99}
	]}`)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, 4.5, got[0].Amount)
	assert.True(t, math.IsNaN(got[1].Amount), "unreadable amount decodes to NaN for flagging")
	assert.Equal(t, 9.99, got[2].Amount)
}

func TestDecodeAmount(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want float64
	}{
		{name: "plain number", raw: `4.5`, want: 4.5},
		{name: "quoted number", raw: `"12.50"`, want: 12.5},
		{name: "decimal comma", raw: `"12,50"`, want: 12.5},
		{name: "currency prefix", raw: `"$4.50"`, want: 4.5},
		{name: "whitespace", raw: `" 7.00 "`, want: 7},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, decodeAmount(json.RawMessage(tt.raw)))
		})
	}

	for _, raw := range []string{``, `"abc"`, `"1,234,56"`, `null`, `{}`} {
		assert.True(t, math.IsNaN(decodeAmount(json.RawMessage(raw))), "raw %q", raw)
	}
}

func TestParseExtraction_Unparseable(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{name: "prose", content: "I could not find any expenses in this image."},
		{name: "truncated json", content: `{"expenses":[{"date":"2024-`},
		{name: "empty", content: ""},
		{name: "wrong shape", content: `{"transactions":[]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parseExtraction(tt.content)
			assert.ErrorIs(t, err, common.ErrExtractionFailed)
		})
	}
}
