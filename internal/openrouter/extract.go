package openrouter

import (
	"context"
	"encoding/json"
	"regexp"
	"strings"

	"github.com/felixgeelhaar/issueforge/internal/errors"
)

// extractionTemperature keeps structured extraction close to deterministic
const extractionTemperature = 0.3

const extractionSystemPrompt = "You are an expert project manager and software architect. " +
	"Respond only with valid JSON. Do not include any explanations or markdown formatting."

// Reasoning models wrap their chain of thought in delimiters that have to
// be stripped before the JSON payload can be located.
var (
	kimiThinkRE = regexp.MustCompile(`(?s)◁think▷.*?(\{|$)`)
	xmlThinkRE  = regexp.MustCompile(`(?s)<think>.*?</think>`)
)

// ExtractStructured sends an extraction prompt and decodes the reply into a
// loosely-typed JSON tree. The normalization into domain types happens in
// the plan package; this function only crosses the trust boundary.
func (c *Client) ExtractStructured(ctx context.Context, prompt, model string) (map[string]any, error) {
	resp, err := c.ChatCompletion(ctx, ChatRequest{
		Model: model,
		Messages: []ChatMessage{
			{Role: "system", Content: extractionSystemPrompt},
			{Role: "user", Content: prompt},
		},
		Temperature: extractionTemperature,
	})
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeAIRequest, "chat completion request could not be built", err)
	}
	if !resp.OK {
		return nil, errors.New(errors.ErrCodeAIProvider, "AI request failed: "+resp.Err)
	}

	return DecodeJSONContent(resp.Content)
}

// DecodeJSONContent locates and parses the first JSON object in a model
// reply, tolerating thinking delimiters, markdown fences, and surrounding
// prose.
func DecodeJSONContent(content string) (map[string]any, error) {
	cleaned := strings.TrimSpace(content)

	cleaned = kimiThinkRE.ReplaceAllString(cleaned, "$1")
	cleaned = xmlThinkRE.ReplaceAllString(cleaned, "")

	cleaned = strings.TrimSpace(cleaned)
	cleaned = strings.TrimPrefix(cleaned, "```json")
	cleaned = strings.TrimPrefix(cleaned, "```")
	cleaned = strings.TrimSuffix(cleaned, "```")
	cleaned = strings.TrimSpace(cleaned)

	// Greedy span from the first '{' to the last '}' so nested objects
	// survive prose on either side.
	start := strings.Index(cleaned, "{")
	end := strings.LastIndex(cleaned, "}")
	if start == -1 || end <= start {
		return nil, errors.NewResponseFormatError("no JSON object found", nil)
	}
	cleaned = cleaned[start : end+1]

	var tree map[string]any
	if err := json.Unmarshal([]byte(cleaned), &tree); err != nil {
		detail := cleaned
		if len(detail) > 500 {
			detail = detail[:500]
		}
		return nil, errors.NewResponseFormatError(detail, err)
	}

	return tree, nil
}
