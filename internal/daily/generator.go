package daily

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"dreamroom/internal/llm"
	"dreamroom/internal/profile"
)

// ErrNoResponse indicates the backend answered with empty content.
var ErrNoResponse = errors.New("no response from backend")

// InvalidResponseError carries the raw backend text when it cannot be parsed
// into the expected question structure. The raw response is part of the error
// payload so callers can diagnose the model output.
type InvalidResponseError struct {
	Raw string
	Err error
}

func (e *InvalidResponseError) Error() string {
	return fmt.Sprintf("invalid ai response: %v", e.Err)
}

func (e *InvalidResponseError) Unwrap() error { return e.Err }

// Choice is one selectable answer carrying personality tags.
type Choice struct {
	ID   string   `json:"id"`
	Text string   `json:"text"`
	Tags []string `json:"tags"`
}

// Question is a generated multiple-choice check-in question.
type Question struct {
	ID      string   `json:"id"`
	Text    string   `json:"text"`
	Choices []Choice `json:"choices"`
}

// DayQuestions groups previously asked questions by date, used to avoid repeats.
type DayQuestions struct {
	Date      string     `json:"date"`
	Questions []Question `json:"questions"`
}

// Result is the generated question set with its tag context.
type Result struct {
	Questions   []Question `json:"questions"`
	GeneratedAt time.Time  `json:"generatedAt"`
	UserTags    []string   `json:"userTags"`
}

const topTagLimit = 8

// Generator synthesizes personalized daily questions from prior answers.
// Identical input does not guarantee identical output: the backend runs at
// temperature 0.8.
type Generator struct {
	Client llm.Client
}

// Generate asks the backend for three fresh questions distinct from history.
func (g Generator) Generate(ctx context.Context, answers []profile.SurveyAnswer, history []DayQuestions) (Result, error) {
	topTags := profile.TopTags(answers, topTagLimit)

	content, err := g.Client.ChatCompletion(ctx, []llm.ChatMessage{
		{Role: "system", Content: "You are an expert at creating personalized survey questions. Always respond with valid JSON only."},
		{Role: "user", Content: buildPrompt(answers, history, topTags)},
	}, llm.Options{Temperature: 0.8, MaxTokens: 1500})
	if err != nil {
		return Result{}, err
	}

	content = strings.TrimSpace(content)
	if content == "" {
		return Result{}, ErrNoResponse
	}

	var parsed struct {
		Questions []Question `json:"questions"`
	}
	cleaned := stripCodeFences(content)
	if err := json.Unmarshal([]byte(cleaned), &parsed); err != nil {
		return Result{}, &InvalidResponseError{Raw: content, Err: err}
	}
	if parsed.Questions == nil {
		return Result{}, &InvalidResponseError{Raw: content, Err: errors.New("missing questions array")}
	}

	return Result{
		Questions:   parsed.Questions,
		GeneratedAt: time.Now(),
		UserTags:    topTags,
	}, nil
}

func buildPrompt(answers []profile.SurveyAnswer, history []DayQuestions, topTags []string) string {
	var answerParts []string
	for _, a := range answers {
		answerParts = append(answerParts, fmt.Sprintf("%q (tags: %s)", a.ChoiceText, strings.Join(a.Tags, ", ")))
	}

	var historyParts []string
	for _, day := range history {
		var texts []string
		for _, q := range day.Questions {
			texts = append(texts, q.Text)
		}
		historyParts = append(historyParts, fmt.Sprintf("- %s: %s", day.Date, strings.Join(texts, "; ")))
	}

	return fmt.Sprintf(`You are creating personalized daily check-in questions for a user based on their personality profile.

User's personality profile based on survey responses:
- Top personality tags: %s
- Full answers: %s

Previous daily questions asked (to avoid repetition):
%s

Create exactly 3 new daily check-in questions that:
1. Are personalized to the user's personality tags and previous choices
2. Are different from any previously asked questions
3. Help understand their current mood/priorities/interests
4. Each question should have 2-4 multiple choice options
5. Each choice should include relevant personality tags for design recommendations

Return ONLY a JSON object with this exact structure:
{
  "questions": [
    {
      "id": "unique_question_id",
      "text": "Question text?",
      "choices": [
        {
          "id": "unique_choice_id",
          "text": "Choice text",
          "tags": ["tag1", "tag2"]
        }
      ]
    }
  ]
}

Make the questions feel fresh, engaging, and relevant to their personality. Focus on current mood, daily priorities, or design preferences that would help create their ideal room.`,
		strings.Join(topTags, ", "),
		strings.Join(answerParts, "; "),
		strings.Join(historyParts, "\n"))
}

// stripCodeFences removes an optional Markdown code-fence wrapper around the
// backend response. A fragment too short to hold both fences, such as a bare
// "```", passes through unchanged and fails JSON parsing downstream.
func stripCodeFences(content string) string {
	for _, prefix := range []string{"```json", "```"} {
		if strings.HasPrefix(content, prefix) &&
			strings.HasSuffix(content, "```") &&
			len(content) >= len(prefix)+len("```") {
			return strings.TrimSpace(content[len(prefix) : len(content)-len("```")])
		}
	}
	return content
}
