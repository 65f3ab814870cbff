package profile

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"dreamroom/internal/llm"
)

// ErrNoJSON indicates the backend response contained no parseable JSON object.
var ErrNoJSON = errors.New("no_json")

// ErrBadOutput indicates the backend returned JSON that fails the
// personality/products schema.
var ErrBadOutput = errors.New("bad_llm_output")

const topTagLimit = 8

const systemPrompt = `You are an interior stylist and product curator for bedroom setups. Given user Q&A pairs and tags, infer a concise personality and propose exactly 6 purchasable bedroom product ideas.
Return STRICT JSON only matching this schema:
{
  "personality": {"label": "string","description": "string","palette": ["string","string","string"],"vibe": "string","materials": ["string","string"],"budget": "LOW|MID|HIGH"},
  "products": [{"name":"string","searchQuery":"string","category":"BED|DESK|LAMP|RUG|WALL_ART|PLANT|STORAGE|DECOR|CHAIR|BEDDING","styleHints":["string"],"colorHints":["string"],"rationale":"string"}]
}`

// Service infers a personality profile and product list from survey answers.
type Service struct {
	Client llm.Client
}

// Infer runs one inference call. The answers slice must be non-empty; the
// caller is expected to reject empty payloads before invoking.
func (s Service) Infer(ctx context.Context, answers []SurveyAnswer) (Inference, error) {
	userPrompt := buildUserPrompt(answers)

	content, err := s.Client.ChatCompletion(ctx, []llm.ChatMessage{
		{Role: "system", Content: systemPrompt},
		{Role: "user", Content: userPrompt},
	}, llm.Options{Temperature: 0.5, JSONOnly: true})
	if err != nil {
		return Inference{}, err
	}

	return parseInference(content)
}

func buildUserPrompt(answers []SurveyAnswer) string {
	var parts []string
	for _, a := range answers {
		parts = append(parts, fmt.Sprintf("%s (tags: %s)", a.ChoiceText, strings.Join(a.Tags, ", ")))
	}
	return fmt.Sprintf("Top tags: %s\nAnswers: %s",
		strings.Join(TopTags(answers, topTagLimit), ", "),
		strings.Join(parts, "; "))
}

type inferenceEnvelope struct {
	Personality json.RawMessage  `json:"personality"`
	Products    []map[string]any `json:"products"`
}

// parseInference attempts a direct JSON parse, then falls back to extracting
// the outermost {...} block before giving up.
func parseInference(content string) (Inference, error) {
	var envelope inferenceEnvelope
	if err := json.Unmarshal([]byte(content), &envelope); err != nil {
		extracted, ok := extractJSONObject(content)
		if !ok {
			return Inference{}, ErrNoJSON
		}
		if err := json.Unmarshal([]byte(extracted), &envelope); err != nil {
			return Inference{}, ErrNoJSON
		}
	}

	if len(envelope.Personality) == 0 || string(envelope.Personality) == "null" || envelope.Products == nil {
		return Inference{}, ErrBadOutput
	}

	var personality PersonalityProfile
	if err := json.Unmarshal(envelope.Personality, &personality); err != nil {
		return Inference{}, ErrBadOutput
	}

	return Inference{
		Personality: personality,
		Products:    normalizeProducts(envelope.Products),
	}, nil
}

func extractJSONObject(content string) (string, bool) {
	start := strings.Index(content, "{")
	end := strings.LastIndex(content, "}")
	if start < 0 || end <= start {
		return "", false
	}
	return content[start : end+1], true
}

// normalizeProducts coerces loose product objects into the fixed six-entry
// contract: missing fields default, extras are truncated, short lists padded.
func normalizeProducts(raw []map[string]any) []ProductIdea {
	if len(raw) > ProductCount {
		raw = raw[:ProductCount]
	}

	products := make([]ProductIdea, 0, ProductCount)
	for _, item := range raw {
		name := asString(item["name"])
		searchQuery := asString(item["searchQuery"])
		if searchQuery == "" {
			searchQuery = name
		}
		products = append(products, ProductIdea{
			Name:        name,
			SearchQuery: searchQuery,
			Category:    asString(item["category"]),
			StyleHints:  asStringList(item["styleHints"]),
			ColorHints:  asStringList(item["colorHints"]),
			Rationale:   asString(item["rationale"]),
		})
	}

	for len(products) < ProductCount {
		products = append(products, defaultProduct())
	}
	return products
}

func asString(value any) string {
	switch v := value.(type) {
	case string:
		return v
	case nil:
		return ""
	default:
		return fmt.Sprintf("%v", v)
	}
}

func asStringList(value any) []string {
	items, ok := value.([]any)
	if !ok {
		return []string{}
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}
