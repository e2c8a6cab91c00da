// Package view renders engine state as styled terminal text.
package view

import (
	"fmt"
	"strings"
	"time"

	"github.com/abhisek/speedlearn/internal/cache"
	"github.com/abhisek/speedlearn/internal/content"
	"github.com/abhisek/speedlearn/internal/recommend"
	"github.com/abhisek/speedlearn/internal/session"
	"github.com/abhisek/speedlearn/internal/speed"
	"github.com/abhisek/speedlearn/internal/tutor"
	"github.com/abhisek/speedlearn/internal/ui/components"
	"github.com/abhisek/speedlearn/internal/ui/theme"
)

// Lesson renders an adapted lesson: header, paragraphs, sections and the
// lesson's hint list.
func Lesson(th theme.Theme, e *cache.Entry, fromCache bool) string {
	if e == nil {
		return ""
	}
	p := e.Content
	var b strings.Builder

	name := fmt.Sprintf("speed %d", e.Speed)
	if prof, err := speed.Lookup(e.Speed); err == nil {
		name = fmt.Sprintf("%s (speed %d)", prof.Name, e.Speed)
	}
	origin := "generated"
	if fromCache {
		origin = "cached"
	}
	b.WriteString(th.Title.Render(p.Title) + "\n")
	b.WriteString(th.Subtitle.Render(fmt.Sprintf("%s · level %d · %s", name, e.DifficultyLevel, origin)) + "\n")
	b.WriteString(components.NewMeter("difficulty", p.Difficulty, true, th.Width).View(th) + "\n\n")

	gap := strings.Repeat("\n", th.ParagraphGap+1)
	for i, para := range p.Paragraphs {
		if i > 0 {
			b.WriteString(gap)
		}
		b.WriteString(th.Body.Render(para))
	}
	b.WriteString("\n")

	for _, s := range p.Sections {
		b.WriteString("\n" + Section(th, s) + "\n")
	}

	if len(p.Hints) > 0 {
		b.WriteString("\n" + th.Label.Render("Hints") + "\n")
		for i, h := range p.Hints {
			b.WriteString(th.Hint.Render(fmt.Sprintf("%d. %s", i+1, h)) + "\n")
		}
	}
	return b.String()
}

// Section renders one content section as a card.
func Section(th theme.Theme, s content.Section) string {
	var lines []string
	switch s := s.(type) {
	case content.VisualSection:
		lines = append(lines, th.Label.Render("Visual: "+s.Title))
		for _, el := range s.Elements {
			lines = append(lines, fmt.Sprintf("[%s] %s", el.Type, el.Description))
		}
	case content.InteractiveSection:
		title := "Activity: " + s.Title
		if s.Guided {
			title += " (guided)"
		}
		lines = append(lines, th.Label.Render(title))
		for i, step := range s.Steps {
			lines = append(lines, fmt.Sprintf("%d) %s", i+1, step))
		}
	case content.ConversationalSection:
		lines = append(lines, th.Label.Render("Let's talk"))
		for _, p := range s.Prompts {
			lines = append(lines, "> "+p)
		}
	}
	return th.Card.Render(strings.Join(lines, "\n"))
}

// Hint renders a tutor hint.
func Hint(th theme.Theme, h *tutor.Hint) string {
	if h == nil {
		return th.Subtitle.Render("No hint available.")
	}
	head := th.Label.Render(fmt.Sprintf("%s hint", h.Type)) +
		th.Subtitle.Render(fmt.Sprintf("  confidence %.2f", h.Confidence))
	return th.Card.Render(head + "\n" + th.Hint.Render(h.Text))
}

// Question renders a question with its options.
func Question(th theme.Theme, q *tutor.Question) string {
	if q == nil {
		return th.Subtitle.Render("No question available.")
	}
	lines := []string{
		th.Label.Render(string(q.Type)) + th.Subtitle.Render(fmt.Sprintf("  difficulty %.2f", q.Difficulty)),
		th.Body.Render(q.Text),
	}
	for i, opt := range q.Options {
		lines = append(lines, fmt.Sprintf("  %c) %s", 'a'+i, opt))
	}
	return th.Card.Render(strings.Join(lines, "\n"))
}

// Feedback renders tutor feedback.
func Feedback(th theme.Theme, f *tutor.Feedback) string {
	if f == nil {
		return ""
	}
	style := th.Incorrect
	if f.IsCorrect {
		style = th.Correct
	}
	lines := []string{style.Render(f.Text)}
	for _, s := range f.Suggestions {
		lines = append(lines, th.Hint.Render("- "+s))
	}
	return th.Card.Render(strings.Join(lines, "\n"))
}

// ErrorAnalysis renders an error analysis.
func ErrorAnalysis(th theme.Theme, a *tutor.ErrorAnalysis) string {
	if a == nil {
		return ""
	}
	lines := []string{
		th.Label.Render(string(a.ErrorType)) + th.Subtitle.Render(fmt.Sprintf("  confidence %.2f", a.Confidence)),
		th.Body.Render(a.Description),
	}
	for _, step := range a.Remediation {
		lines = append(lines, th.Hint.Render("- "+step))
	}
	return th.Card.Render(strings.Join(lines, "\n"))
}

// Recommendation renders a speed recommendation, marking whether it would
// be surfaced to the learner.
func Recommendation(th theme.Theme, r *recommend.Recommendation, surfaced bool) string {
	if r == nil {
		return th.Subtitle.Render("No new recommendation (throttled or no suggestion).")
	}
	head := fmt.Sprintf("speed %d → %d", r.CurrentSpeed, r.SuggestedSpeed)
	if surfaced {
		head = th.Highlight.Render(head + "  suggested")
	} else {
		head = th.Label.Render(head)
	}
	return th.Card.Render(strings.Join([]string{
		head,
		th.Body.Render(r.Reason),
		components.NewMeter("confidence", r.Confidence, true, th.Width-8).View(th),
	}, "\n"))
}

// Metrics renders aggregated session metrics.
func Metrics(th theme.Theme, m session.Metrics) string {
	completion := 0.0
	if m.TotalSessions > 0 {
		completion = float64(m.CompletedSessions) / float64(m.TotalSessions)
	}
	return strings.Join([]string{
		th.Title.Render("Sessions"),
		fmt.Sprintf("total %d · completed %d · replaced %d · interactions %d",
			m.TotalSessions, m.CompletedSessions, m.ReplacedSessions, m.TotalInteractions),
		fmt.Sprintf("avg duration %s · avg interactions %.1f", m.AvgSessionDuration.Round(time.Second), m.AvgInteractions),
		components.NewMeter("engagement", m.AvgEngagement, true, th.Width).View(th),
		components.NewMeter("completion", completion, true, th.Width).View(th),
	}, "\n")
}
