package tutor

import (
	"math"
	"strings"

	"github.com/abhisek/speedlearn/internal/speed"
)

// differentApproach is prepended when a new hint would open the same way
// as one the learner has already seen.
const differentApproach = "Let me try a different approach. "

// repeatPrefixRunes is how many leading runes two hints must share to
// count as repeats.
const repeatPrefixRunes = 20

var hintTemplates = map[HintType][]string{
	HintConceptual: {
		"Think about the big idea behind this part of the lesson.",
		"Try connecting this to something you already know from everyday life.",
		"Look at the key words again. What do they tell you about how this works?",
		"Picture what is happening. What changes, and what stays the same?",
	},
	HintProcedural: {
		"Break the problem into smaller steps and tackle them one at a time.",
		"Start with the first step you are sure about, then look at what comes next.",
		"Go back to where things last made sense and walk forward from there.",
		"Write down each step as you do it so you can spot where it goes off track.",
	},
	HintStrategic: {
		"Try working backwards from what the question is asking for.",
		"Draw a quick sketch or diagram to organise what you know.",
		"Compare this with an example from the lesson that looks similar.",
		"Rule out the answers you know are wrong first.",
	},
	HintMetacognitive: {
		"Pause and ask yourself which part feels unclear.",
		"Explain the idea out loud as if you were teaching a friend.",
		"Check what you already understand before moving on to the tricky part.",
		"Notice where you got stuck. What question would help you get unstuck?",
	},
}

type styleWrap struct {
	prefix string
	suffix string
}

var styleWraps = map[HintStyle]styleWrap{
	StyleGentle:      {prefix: "Take your time. ", suffix: " You're doing fine."},
	StyleDirect:      {},
	StyleEncouraging: {prefix: "You've got this! ", suffix: " Keep going!"},
	StyleDetailed:    {suffix: " Go slowly and check each part before moving on, then reread the paragraph that matches."},
}

// DefaultStyle picks a hint tone for a speed.
func DefaultStyle(s speed.Speed) HintStyle {
	switch {
	case s <= 2:
		return StyleGentle
	case s == 3:
		return StyleEncouraging
	default:
		return StyleDirect
	}
}

// composeHint builds hint text for the request. The template is drawn with
// rng; the style defaults by speed.
func composeHint(rng Rand, t HintType, req HintRequest) string {
	templates := hintTemplates[t]
	body := templates[rng.IntN(len(templates))]

	style := req.Style
	if _, ok := styleWraps[style]; !ok {
		style = DefaultStyle(req.Speed)
	}
	w := styleWraps[style]
	text := w.prefix + body + w.suffix

	if repeatsAny(text, req.PreviousHints) {
		text = differentApproach + text
	}
	return text
}

func repeatsAny(text string, previous []string) bool {
	head := leadingRunes(text, repeatPrefixRunes)
	for _, p := range previous {
		if leadingRunes(p, repeatPrefixRunes) == head {
			return true
		}
	}
	return false
}

func leadingRunes(s string, n int) string {
	r := []rune(strings.TrimSpace(s))
	if len(r) > n {
		r = r[:n]
	}
	return string(r)
}

// hintConfidence draws a confidence in [0.7, 1.0].
func hintConfidence(rng Rand) float64 {
	return math.Round((0.7+0.3*rng.Float64())*100) / 100
}
