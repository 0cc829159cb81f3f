package resumes

import (
	"encoding/json"
	"math"
	"time"
)

// NormalizeAnalysis turns the model's raw JSON into a complete AnalysisData.
// It never fails: a malformed or missing category degrades to a zero-score
// placeholder instead of rejecting the whole response, since re-running the
// model costs real time and money. The overall score is always recomputed
// from the five category scores and analyzedAt is stamped server-side; both
// are untrusted when upstream supplies them. Category scores pass through
// unclamped.
func NormalizeAnalysis(raw json.RawMessage, now time.Time) AnalysisData {
	var fields map[string]json.RawMessage
	_ = json.Unmarshal(raw, &fields)

	data := AnalysisData{
		LogicStructure:         normalizeCategory(fields["logicStructure"]),
		JobSuitability:         normalizeCategory(fields["jobSuitability"]),
		Differentiation:        normalizeCategory(fields["differentiation"]),
		WritingQuality:         normalizeCategory(fields["writingQuality"]),
		InterviewerPerspective: normalizeCategory(fields["interviewerPerspective"]),
		Summary:                decodeString(fields["summary"]),
		AnalyzedAt:             now.UTC(),
	}

	sum := 0
	for _, cat := range data.Categories() {
		sum += cat.Score
	}
	data.OverallScore = int(math.Round(float64(sum) / 5.0))

	return data
}

type rawCategory struct {
	Score       *float64 `json:"score"`
	Feedback    string   `json:"feedback"`
	Suggestions []string `json:"suggestions"`
}

// normalizeCategory copies a well-formed category through and substitutes
// the zero-valued placeholder otherwise. Score must be present for the
// category to count as well-formed.
func normalizeCategory(raw json.RawMessage) AnalysisCategory {
	zero := AnalysisCategory{Suggestions: []string{}}
	if len(raw) == 0 {
		return zero
	}
	var cat rawCategory
	if err := json.Unmarshal(raw, &cat); err != nil || cat.Score == nil {
		return zero
	}
	suggestions := cat.Suggestions
	if suggestions == nil {
		suggestions = []string{}
	}
	return AnalysisCategory{
		Score:       int(math.Round(*cat.Score)),
		Feedback:    cat.Feedback,
		Suggestions: suggestions,
	}
}

func decodeString(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return ""
	}
	return s
}
