package remote

import (
	"context"
	"fmt"
	"strings"

	"github.com/abhisek/speedlearn/internal/cache"
	"github.com/abhisek/speedlearn/internal/content"
	"github.com/abhisek/speedlearn/internal/llm"
	"github.com/abhisek/speedlearn/internal/speed"
)

// LessonWriterConfig tunes LLM lesson writing.
type LessonWriterConfig struct {
	MaxTokens   int
	Temperature float64
}

// DefaultLessonWriterConfig returns sensible defaults.
func DefaultLessonWriterConfig() LessonWriterConfig {
	return LessonWriterConfig{MaxTokens: 1500, Temperature: 0.4}
}

// LessonSchema is the structured output expected from the lesson writer.
var LessonSchema = &llm.Schema{
	Name:        "adaptive-lesson",
	Description: "A short K-12 science lesson written for a learner's pace",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"title": map[string]any{
				"type":        "string",
				"description": "Lesson title (2-8 words)",
			},
			"text": map[string]any{
				"type":        "string",
				"description": "Lesson body. Paragraphs separated by a blank line.",
			},
			"key_terms": map[string]any{
				"type":        "array",
				"description": "Three to six central vocabulary words used in the text",
				"items":       map[string]any{"type": "string"},
			},
		},
		"required":             []any{"title", "text", "key_terms"},
		"additionalProperties": false,
	},
}

// LLMLessonSource writes lesson material with a language model. When the
// catalog holds the lesson, its material is given to the model as a
// reference to rewrite; otherwise the lesson id is treated as the topic.
type LLMLessonSource struct {
	provider llm.Provider
	catalog  *Catalog
	cfg      LessonWriterConfig
}

// NewLLMLessonSource creates an LLM-backed lesson source. catalog may be nil.
func NewLLMLessonSource(provider llm.Provider, catalog *Catalog, cfg LessonWriterConfig) *LLMLessonSource {
	return &LLMLessonSource{provider: provider, catalog: catalog, cfg: cfg}
}

type lessonOutput struct {
	Title    string   `json:"title"`
	Text     string   `json:"text"`
	KeyTerms []string `json:"key_terms"`
}

// GetAdaptiveLesson implements cache.LessonSource.
func (s *LLMLessonSource) GetAdaptiveLesson(ctx context.Context, lessonID, _ string, sp speed.Speed) (*cache.Lesson, error) {
	profile, err := speed.Lookup(sp)
	if err != nil {
		return nil, err
	}

	var ref *content.Source
	if s.catalog != nil {
		if src, ok := s.catalog.Get(lessonID); ok {
			ref = &src
		}
	}

	resp, err := s.provider.Generate(llm.WithPurpose(ctx, llm.PurposeLessonWriter), llm.Request{
		System:      lessonWriterSystemPrompt,
		Messages:    llm.UserMessage(buildLessonMessage(lessonID, profile, ref)),
		Schema:      LessonSchema,
		MaxTokens:   s.cfg.MaxTokens,
		Temperature: s.cfg.Temperature,
	})
	if err != nil {
		return nil, fmt.Errorf("lesson writer: %w", err)
	}

	out, err := llm.Decode[lessonOutput](resp)
	if err != nil {
		return nil, fmt.Errorf("parse lesson response: %w", err)
	}
	if strings.TrimSpace(out.Text) == "" {
		return nil, &llm.ErrInvalidResponse{Content: resp.Content, Err: fmt.Errorf("empty lesson text")}
	}

	return &cache.Lesson{Source: content.Source{
		LessonID: lessonID,
		Title:    out.Title,
		Text:     out.Text,
		KeyTerms: out.KeyTerms,
	}}, nil
}

const lessonWriterSystemPrompt = `You write short science lessons for K-12 learners. Keep facts accurate, use plain language, and avoid markdown, LaTeX or bullet lists. Separate paragraphs with a blank line.`

func buildLessonMessage(lessonID string, p speed.Profile, ref *content.Source) string {
	var b strings.Builder

	if ref != nil {
		fmt.Fprintf(&b, "Topic: %s\n", ref.Title)
	} else {
		fmt.Fprintf(&b, "Topic: %s\n", strings.ReplaceAll(lessonID, "-", " "))
	}
	fmt.Fprintf(&b, "Learner pace: %s (speed %d of 5)\n", p.Name, p.Speed)
	fmt.Fprintf(&b, "Chunking: %s\nComplexity: %s\nRepetition: %s\n",
		p.Characteristics.ContentChunking, p.Characteristics.Complexity, p.Characteristics.Repetition)
	fmt.Fprintf(&b, "Preferred modes: %s, then %s\n", p.Primary, p.Secondary)

	if ref != nil {
		b.WriteString("\nReference material:\n")
		b.WriteString(ref.Text)
		b.WriteString("\n")
	}

	b.WriteString(`
Instructions:
1. Write three or four paragraphs pitched at the pace above.
2. Slower paces get shorter sentences and more everyday examples. Faster paces may introduce precise vocabulary and a challenge question at the end.
3. List the central vocabulary words in key_terms, each one appearing in the text.`)
	return b.String()
}
