package tutor

import "strings"

// HintRule maps a struggle context to a hint type.
// Returns ("", false) if the rule doesn't apply.
type HintRule interface {
	Name() string
	Match(struggle string) (HintType, bool)
}

// keywordRule matches when the lowercased context contains any keyword.
type keywordRule struct {
	name     string
	hintType HintType
	keywords []string
}

func (r keywordRule) Name() string { return r.name }

func (r keywordRule) Match(struggle string) (HintType, bool) {
	lower := strings.ToLower(struggle)
	for _, k := range r.keywords {
		if strings.Contains(lower, k) {
			return r.hintType, true
		}
	}
	return "", false
}

// DefaultHintRules returns hint rules in priority order.
func DefaultHintRules() []HintRule {
	return []HintRule{
		keywordRule{"procedural", HintProcedural, []string{"step", "process"}},
		keywordRule{"strategic", HintStrategic, []string{"strategy", "approach"}},
		keywordRule{"metacognitive", HintMetacognitive, []string{"understanding", "confused"}},
	}
}

// ClassifyStruggle returns the hint type of the first matching rule, or
// conceptual when none match.
func ClassifyStruggle(rules []HintRule, struggle string) HintType {
	for _, r := range rules {
		if t, ok := r.Match(struggle); ok {
			return t
		}
	}
	return HintConceptual
}

// ErrorClassifier is a rule-based error classifier.
// Returns ("", false) if the rule doesn't apply.
type ErrorClassifier interface {
	Name() string
	Classify(req ErrorRequest) (ErrorType, bool)
}

// carelessMaxRunes is the response length below which a wrong answer is
// treated as a slip.
const carelessMaxRunes = 10

// misconceptionMinErrors is how many prior errors must exceed before a
// wrong answer is read as a misconception.
const misconceptionMinErrors = 2

// CarelessClassifier flags very short responses.
type CarelessClassifier struct{}

func (CarelessClassifier) Name() string { return "careless" }

func (CarelessClassifier) Classify(req ErrorRequest) (ErrorType, bool) {
	if len([]rune(req.Response)) < carelessMaxRunes {
		return ErrorCareless, true
	}
	return "", false
}

// RepeatedErrorClassifier flags a learner who keeps getting it wrong.
type RepeatedErrorClassifier struct{}

func (RepeatedErrorClassifier) Name() string { return "repeated-error" }

func (RepeatedErrorClassifier) Classify(req ErrorRequest) (ErrorType, bool) {
	if len(req.PreviousErrors) > misconceptionMinErrors {
		return ErrorMisconception, true
	}
	return "", false
}

// DefaultErrorClassifiers returns classifiers in priority order.
func DefaultErrorClassifiers() []ErrorClassifier {
	return []ErrorClassifier{
		CarelessClassifier{},
		RepeatedErrorClassifier{},
	}
}

// ClassifyError runs classifiers in order and returns the first match, or
// knowledge-gap when none apply.
func ClassifyError(classifiers []ErrorClassifier, req ErrorRequest) ErrorType {
	for _, c := range classifiers {
		if t, ok := c.Classify(req); ok {
			return t
		}
	}
	return ErrorKnowledgeGap
}
