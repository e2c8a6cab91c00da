package content

import (
	"fmt"

	"github.com/abhisek/speedlearn/internal/speed"
)

// visualElementCount maps a profile's visual-support level to the number of
// visual aids generated.
var visualElementCount = map[string]int{
	"extensive":  3,
	"high":       2,
	"moderate":   1,
	"supporting": 1,
	"minimal":    1,
}

// promptCount maps a profile's repetition level to check-in prompts.
var promptCount = map[string]int{
	"high":          3,
	"moderate-high": 2,
	"moderate":      2,
	"low":           1,
	"minimal":       1,
}

var visualKinds = []string{"diagram", "illustration", "highlight"}

func buildVisual(p speed.Profile, title string, terms []string) VisualSection {
	n := visualElementCount[p.Characteristics.VisualSupport]
	if n == 0 {
		n = 1
	}
	elems := make([]VisualElement, 0, n)
	for i := range n {
		term := termAt(terms, i)
		elems = append(elems, VisualElement{
			Type:        visualKinds[i%len(visualKinds)],
			Description: fmt.Sprintf("%s showing %s", visualKinds[i%len(visualKinds)], term),
		})
	}
	return VisualSection{Title: fmt.Sprintf("See it: %s", title), Elements: elems}
}

func buildInteractive(p speed.Profile, terms []string) InteractiveSection {
	guided := p.Characteristics.Navigation == "guided"
	steps := []string{
		fmt.Sprintf("Find the card that names %s.", termAt(terms, 0)),
		fmt.Sprintf("Drag it next to the example that shows %s.", termAt(terms, 1)),
		"Press check to see if your match is right.",
	}
	if guided {
		steps = append([]string{"Watch the short demo first."}, steps...)
	}
	activity := "sort"
	if p.Characteristics.Complexity == "challenging" || p.Characteristics.Complexity == "advanced" {
		activity = "simulate"
		steps = append(steps, "Change one setting in the simulation and predict the result before you run it.")
	}
	return InteractiveSection{
		Title:    "Try it",
		Activity: activity,
		Steps:    steps,
		Guided:   guided,
	}
}

func buildConversational(p speed.Profile, terms []string, interests []string) ConversationalSection {
	templates := []string{
		"Can you tell me what %s means in your own words?",
		"Where have you seen %s before?",
		"What question do you still have about %s?",
	}
	n := promptCount[p.Characteristics.Repetition]
	if n == 0 {
		n = 1
	}
	prompts := make([]string, 0, n+len(interests))
	for i := range n {
		prompts = append(prompts, fmt.Sprintf(templates[i%len(templates)], termAt(terms, i)))
	}
	for _, interest := range interests {
		prompts = append(prompts, fmt.Sprintf("How might %s show up in %s?", termAt(terms, 0), interest))
	}
	tone := "friendly"
	if p.Characteristics.Complexity == "challenging" {
		tone = "socratic"
	}
	return ConversationalSection{Prompts: prompts, Tone: tone}
}

var hintTemplates = []string{
	"Look again at the part that talks about %s.",
	"Try explaining %s to a friend in one sentence.",
	"What would change if there were no %s?",
}

// hintCount is the number of hints generated per speed.
var hintCount = map[speed.Speed]int{1: 3, 2: 3, 3: 2, 4: 1, 5: 1}

var hookTriggers = []HintTrigger{TriggerStruggle, TriggerIdle, TriggerSkip}

func buildHints(s speed.Speed, terms []string, paragraphs int) ([]string, []HintHook) {
	n := hintCount[s]
	hints := make([]string, 0, n)
	hooks := make([]HintHook, 0, n)
	for i := range n {
		hints = append(hints, fmt.Sprintf(hintTemplates[i%len(hintTemplates)], termAt(terms, i)))
		para := 0
		if paragraphs > 0 {
			para = min(i*paragraphs/n, paragraphs-1)
		}
		hooks = append(hooks, HintHook{Paragraph: para, Hint: i, Trigger: hookTriggers[i%len(hookTriggers)]})
	}
	return hints, hooks
}

func termAt(terms []string, i int) string {
	if len(terms) == 0 {
		return "this idea"
	}
	return terms[i%len(terms)]
}
