// Package evaluation scores captured model responses against expected
// structured criteria. It consumes recorded (input, expected, response)
// triples and is fully decoupled from live serving.
package evaluation

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/health-coach-server/internal/domain"
)

// ExpectedCriteria is the structured expectation attached to a test case.
type ExpectedCriteria struct {
	ConditionLevel         domain.ConditionLevel `json:"condition_level"`
	Keywords               []string              `json:"keywords"`
	ShouldCiteBuchheit     bool                  `json:"should_cite_buchheit"`
	ShouldCiteMilewski     bool                  `json:"should_cite_milewski"`
	Concepts               map[string]bool       `json:"concepts,omitempty"`
	MinLength              int                   `json:"min_length"`
	MaxLength              int                   `json:"max_length"`
	ExerciseRecommendation domain.IntensityLevel `json:"exercise_recommendation,omitempty"`
}

// conceptGroups maps a concept flag to the synonym keywords that count as
// applying it. Broader than the strict citation author names.
var conceptGroups = map[string][]string{
	"karvonen":             {"karvonen", "heart rate reserve", "hrr", "target heart rate"},
	"progressive_overload": {"progressive overload", "gradually increase", "progression"},
	"recovery":             {"recovery", "rest day", "deload", "overtraining"},
	"sleep_hygiene":        {"sleep hygiene", "sleep schedule", "consistent bedtime"},
}

// citationAuthors maps the strict citation flags to the author-name
// keyword that must literally appear.
var citationAuthors = map[string]string{
	"buchheit": "buchheit",
	"milewski": "milewski",
}

var (
	scorePattern = regexp.MustCompile(`(\d{1,3})\s*/\s*100`)
	scoreLabeled = regexp.MustCompile(`(?i)score[^0-9]{0,10}(\d{1,3})`)
)

var gradeKeywords = []string{
	"grade", "optimal", "excellent", "good", "moderate", "average", "caution", "warning",
}

var basisKeywords = []string{
	"based on", "because", "sleep", "steps", "heart rate", "bmi", "oxygen", "data",
}

// errorResponsePattern recognizes captured responses that themselves
// encode a failure; such cases score 0 across the board.
var errorResponsePattern = regexp.MustCompile(`^\s*\{\s*"error"`)

// IsErrorResponse reports whether a captured response encodes an error.
func IsErrorResponse(response string) bool {
	return errorResponsePattern.MatchString(response)
}

// KeywordMatchScore is the fraction of expected keywords found in the
// response by case-insensitive substring match; 0 when none are expected.
func KeywordMatchScore(response string, keywords []string) float64 {
	if len(keywords) == 0 {
		return 0
	}
	lower := strings.ToLower(response)
	hits := 0
	for _, kw := range keywords {
		if kw != "" && strings.Contains(lower, strings.ToLower(kw)) {
			hits++
		}
	}
	return float64(hits) / float64(len(keywords))
}

// LengthScore is 1.0 inside [minLen, maxLen] and falls off linearly
// outside: len/min below the range, max/len above it. Degenerate bounds
// (min <= 0) disable the check.
func LengthScore(response string, minLen, maxLen int) float64 {
	if minLen <= 0 || maxLen <= 0 {
		return 1.0
	}
	n := len(response)
	switch {
	case n >= minLen && n <= maxLen:
		return 1.0
	case n < minLen:
		return float64(n) / float64(minLen)
	default:
		return float64(maxLen) / float64(n)
	}
}

// TextConsistencyScore is the Jaccard overlap of whitespace token sets
// across all responses. Fewer than two responses, or an empty union, is
// trivially consistent (1.0).
func TextConsistencyScore(responses []string) float64 {
	if len(responses) < 2 {
		return 1.0
	}

	sets := make([]map[string]bool, len(responses))
	for i, r := range responses {
		sets[i] = tokenSet(r)
	}

	union := make(map[string]bool)
	for _, set := range sets {
		for tok := range set {
			union[tok] = true
		}
	}
	if len(union) == 0 {
		return 1.0
	}

	intersection := 0
	for tok := range sets[0] {
		inAll := true
		for _, set := range sets[1:] {
			if !set[tok] {
				inAll = false
				break
			}
		}
		if inAll {
			intersection++
		}
	}

	return float64(intersection) / float64(len(union))
}

// ScoreConsistency is the structured-response variant: the fraction of
// repeats whose primary numeric score differs from the first response by
// at most 5 points.
func ScoreConsistency(scores []int) float64 {
	if len(scores) < 2 {
		return 1.0
	}
	consistent := 0
	for _, s := range scores[1:] {
		diff := s - scores[0]
		if diff < 0 {
			diff = -diff
		}
		if diff <= 5 {
			consistent++
		}
	}
	return float64(consistent) / float64(len(scores)-1)
}

func tokenSet(s string) map[string]bool {
	set := make(map[string]bool)
	for _, tok := range strings.Fields(strings.ToLower(s)) {
		set[tok] = true
	}
	return set
}

// StructureScore averages three boolean structural-marker checks (numeric
// score pattern, grade keyword, judgment-basis keyword) scaled to 0-100.
func StructureScore(response string) float64 {
	lower := strings.ToLower(response)

	checks := 0
	if scorePattern.MatchString(response) || scoreLabeled.MatchString(response) {
		checks++
	}
	if containsAny(lower, gradeKeywords) {
		checks++
	}
	if containsAny(lower, basisKeywords) {
		checks++
	}

	return float64(checks) / 3 * 100
}

func containsAny(lower string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

// CitationStrictScore is the fraction of required citations whose author
// name literally appears in the response. Zero required citations is a
// pass (1.0), not neutral.
func CitationStrictScore(response string, expected *ExpectedCriteria) float64 {
	required := make([]string, 0, 2)
	if expected.ShouldCiteBuchheit {
		required = append(required, citationAuthors["buchheit"])
	}
	if expected.ShouldCiteMilewski {
		required = append(required, citationAuthors["milewski"])
	}
	if len(required) == 0 {
		return 1.0
	}

	lower := strings.ToLower(response)
	hits := 0
	for _, author := range required {
		if strings.Contains(lower, author) {
			hits++
		}
	}
	return float64(hits) / float64(len(required))
}

// ConceptScore is the analogous fraction over concept synonym groups;
// required=0 scores 1.0. Unknown concept flags count as misses only when
// flagged required.
func ConceptScore(response string, expected *ExpectedCriteria) float64 {
	required := 0
	hits := 0
	lower := strings.ToLower(response)

	for concept, wanted := range expected.Concepts {
		if !wanted {
			continue
		}
		required++
		if containsAny(lower, conceptGroups[concept]) {
			hits++
		}
	}
	if required == 0 {
		return 1.0
	}
	return float64(hits) / float64(required)
}

// ExtractScore pulls the primary numeric score out of a response, first
// from an "N/100" marker, then from a labeled "score" figure. ok is false
// when neither appears or the value is out of range.
func ExtractScore(response string) (int, bool) {
	if m := scorePattern.FindStringSubmatch(response); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil && n >= 0 && n <= 100 {
			return n, true
		}
	}
	if m := scoreLabeled.FindStringSubmatch(response); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil && n >= 0 && n <= 100 {
			return n, true
		}
	}
	return 0, false
}

// GradeMatch compares the response's score-derived condition level to the
// expectation: exact match plus an adjacent-band leniency used for partial
// credit.
func GradeMatch(response string, expected domain.ConditionLevel) (match, adjacent bool) {
	score, ok := ExtractScore(response)
	if !ok {
		return false, false
	}
	got := domain.ConditionForScore(score)
	return got == expected, got.IsAdjacent(expected)
}

// HealthAccuracy is the health-service weighted aggregate, 0-100:
// 40 points for the grade (25 when merely adjacent), 30 for the intensity
// label, 30 scaled by keyword fraction.
func HealthAccuracy(response string, expected *ExpectedCriteria) float64 {
	accuracy := 0.0

	match, adjacent := GradeMatch(response, expected.ConditionLevel)
	switch {
	case match:
		accuracy += 40
	case adjacent:
		accuracy += 25
	}

	if expected.ExerciseRecommendation != "" &&
		strings.Contains(strings.ToLower(response), strings.ToLower(string(expected.ExerciseRecommendation))) {
		accuracy += 30
	}

	accuracy += 30 * KeywordMatchScore(response, expected.Keywords)
	return accuracy
}

// ExerciseAccuracy is the exercise-service weighted aggregate, 0-100:
// 40 points for the intensity label, 30 scaled by concept application,
// 30 scaled by keyword fraction.
func ExerciseAccuracy(response string, expected *ExpectedCriteria) float64 {
	accuracy := 0.0

	if expected.ExerciseRecommendation != "" &&
		strings.Contains(strings.ToLower(response), strings.ToLower(string(expected.ExerciseRecommendation))) {
		accuracy += 40
	}

	accuracy += 30 * ConceptScore(response, expected)
	accuracy += 30 * KeywordMatchScore(response, expected.Keywords)
	return accuracy
}
