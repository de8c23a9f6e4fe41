// Package tokens normalizes token-usage accounting across providers.
// Providers disagree on usage field names and sometimes omit usage
// entirely; a character/word heuristic fills the gaps.
package tokens

import (
	"encoding/json"
	"math"
	"strings"
)

// Source values for Info.Source
const (
	SourceAPI       = "api"
	SourceEstimated = "estimated"
)

// Info is the normalized token accounting attached to a history entry.
type Info struct {
	Input  int    `json:"input"`
	Output int    `json:"output"`
	Total  int    `json:"total"`
	Source string `json:"source"`
}

// EstimateText approximates the token count of a text blob:
// max(1, max(round(chars/4), round(words*1.2))).
func EstimateText(text string) int {
	if text == "" {
		return 0
	}
	chars := len(text)
	words := len(strings.Fields(text))
	byChars := int(math.Round(float64(chars) / 4))
	byWords := int(math.Round(float64(words) * 1.2))
	est := byChars
	if byWords > est {
		est = byWords
	}
	if est < 1 {
		est = 1
	}
	return est
}

// apiTokens carries the fields actually found in a provider usage payload.
// Nil means the provider did not report that field.
type apiTokens struct {
	input  *int
	output *int
	total  *int
}

var (
	promptKeys     = []string{"prompt_tokens", "input_tokens", "promptTokens", "prompt"}
	completionKeys = []string{"completion_tokens", "output_tokens", "completionTokens", "completion"}
	totalKeys      = []string{"total_tokens", "total"}
)

func numberField(usage map[string]any, keys []string) *int {
	for _, key := range keys {
		v, ok := usage[key]
		if !ok || v == nil {
			continue
		}
		switch n := v.(type) {
		case float64:
			i := int(math.Round(n))
			return &i
		case int:
			i := n
			return &i
		case int64:
			i := int(n)
			return &i
		case json.Number:
			if f, err := n.Float64(); err == nil {
				i := int(math.Round(f))
				return &i
			}
		}
	}
	return nil
}

// extractFromUsage pulls token counts out of a raw provider usage payload,
// deriving a missing field from the other two where possible. Returns nil
// when no usable field exists at all.
func extractFromUsage(usage map[string]any) *apiTokens {
	if usage == nil {
		return nil
	}
	prompt := numberField(usage, promptKeys)
	completion := numberField(usage, completionKeys)
	total := numberField(usage, totalKeys)
	if prompt == nil && completion == nil && total == nil {
		return nil
	}

	out := &apiTokens{input: prompt, output: completion, total: total}
	if out.input == nil && total != nil && completion != nil {
		v := *total - *completion
		out.input = &v
	}
	if out.output == nil && total != nil && prompt != nil {
		v := *total - *prompt
		out.output = &v
	}
	if out.total == nil && prompt != nil && completion != nil {
		v := *prompt + *completion
		out.total = &v
	}
	return out
}

// Build derives the token accounting for one interaction. When the provider
// reported at least one usage field the source is "api" and any missing
// field is filled by the per-blob estimate; otherwise everything is
// estimated.
func Build(usage map[string]any, promptText, inputTextUsed, modelResponse string) Info {
	inputEst := EstimateText(promptText + "\n" + inputTextUsed)
	outputEst := EstimateText(modelResponse)

	api := extractFromUsage(usage)
	if api == nil {
		return Info{
			Input:  inputEst,
			Output: outputEst,
			Total:  inputEst + outputEst,
			Source: SourceEstimated,
		}
	}

	input := inputEst
	if api.input != nil {
		input = *api.input
	}
	output := outputEst
	if api.output != nil {
		output = *api.output
	}
	total := input + output
	if api.total != nil {
		total = *api.total
	}
	return Info{
		Input:  input,
		Output: output,
		Total:  total,
		Source: SourceAPI,
	}
}
