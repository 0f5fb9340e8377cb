// Package quiz normalizes extracted quiz questions: external type
// vocabulary maps to a closed canonical set, and correct-answer strings
// are encoded per type onto the options.
package quiz

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/medprep/importer/internal/entities"
)

// ValidationError marks a question the import should skip rather than
// abort on: unknown type, unparsable or out-of-range answer indices.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Reason
}

func validationErrorf(format string, args ...any) *ValidationError {
	return &ValidationError{Reason: fmt.Sprintf(format, args...)}
}

// externalTypes is the closed, exhaustive mapping from the extraction
// vocabulary to canonical question types. Unknown inputs are a validation
// error, never a silent default.
var externalTypes = map[string]entities.QuestionType{
	"SATA":            entities.QuestionTypeSelectAll,
	"MC":              entities.QuestionTypeMultipleChoice,
	"multiple_choice": entities.QuestionTypeMultipleChoice,
	"FITB":            entities.QuestionTypeFillInBlank,
	"fill_in_blank":   entities.QuestionTypeFillInBlank,
	"MATRIX":          entities.QuestionTypeMatrixGrid,
	"matrix_grid":     entities.QuestionTypeMatrixGrid,
	"prioritization":  entities.QuestionTypePrioritization,
}

// OptionInput is one normalized option ready for insertion.
type OptionInput struct {
	Text      string
	IsCorrect bool
}

// Canonical is the normalized form of a question.
type Canonical struct {
	Type    entities.QuestionType
	Options []OptionInput
}

// Normalize maps an external question type to the canonical set and
// encodes the correct answer onto the options.
//
// For index-based types the correct answer is comma-separated 1-based
// option indices. For PRIORITIZATION a single synthetic option is created
// whose text is the normalized ordering sequence; correctness of such a
// question is a sequence match at grading time, not a set of
// independently-correct choices.
func Normalize(externalType string, options []string, correctAnswer string) (*Canonical, error) {
	canonicalType, ok := externalTypes[strings.TrimSpace(externalType)]
	if !ok {
		return nil, validationErrorf("unknown question type %q", externalType)
	}

	if canonicalType == entities.QuestionTypePrioritization {
		sequence, err := normalizeSequence(correctAnswer)
		if err != nil {
			return nil, err
		}
		return &Canonical{
			Type: canonicalType,
			Options: []OptionInput{
				{Text: sequence, IsCorrect: true},
			},
		}, nil
	}

	correct, err := parseAnswerIndices(correctAnswer, len(options))
	if err != nil {
		return nil, err
	}

	switch canonicalType {
	case entities.QuestionTypeMultipleChoice:
		if len(correct) != 1 {
			return nil, validationErrorf("multiple choice question must have exactly one correct option, got %d", len(correct))
		}
	case entities.QuestionTypeSelectAll:
		if len(correct) < 1 {
			return nil, validationErrorf("select-all question must have at least one correct option")
		}
	}

	normalized := make([]OptionInput, 0, len(options))
	for i, text := range options {
		_, isCorrect := correct[i+1]
		normalized = append(normalized, OptionInput{Text: text, IsCorrect: isCorrect})
	}

	return &Canonical{Type: canonicalType, Options: normalized}, nil
}

// parseAnswerIndices parses comma-separated 1-based indices into a set.
// Duplicate indices collapse; anything non-numeric or out of range fails.
func parseAnswerIndices(correctAnswer string, optionCount int) (map[int]struct{}, error) {
	indices := make(map[int]struct{})
	for _, token := range strings.Split(correctAnswer, ",") {
		token = strings.TrimSpace(token)
		if token == "" {
			continue
		}
		index, err := strconv.Atoi(token)
		if err != nil {
			return nil, validationErrorf("correct answer index %q is not a number", token)
		}
		if index < 1 || index > optionCount {
			return nil, validationErrorf("correct answer index %d out of range (1-%d)", index, optionCount)
		}
		indices[index] = struct{}{}
	}
	if len(indices) == 0 {
		return nil, validationErrorf("no correct answer indices in %q", correctAnswer)
	}
	return indices, nil
}

// normalizeSequence trims each ordering token and rejoins with ", ",
// preserving the original order.
func normalizeSequence(correctAnswer string) (string, error) {
	var tokens []string
	for _, token := range strings.Split(correctAnswer, ",") {
		token = strings.TrimSpace(token)
		if token == "" {
			continue
		}
		tokens = append(tokens, token)
	}
	if len(tokens) == 0 {
		return "", validationErrorf("prioritization question has empty ordering sequence")
	}
	return strings.Join(tokens, ", "), nil
}
