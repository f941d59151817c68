// Package report projects an analysis result into a display model and
// renders it as HTML or plain text. Rendering has no state of its own.
package report

import (
	"errors"
	"fmt"
	"strconv"

	"resume-seo-web/internal/analysis"
)

// ErrMalformedResult marks a result missing a part the backend always
// sends. It is surfaced to the caller rather than rendered around.
var ErrMalformedResult = errors.New("malformed analysis result")

// View is the display model of one report.
type View struct {
	CurrentRole     string
	TargetIndustry  string
	Overall         Score
	Breakdown       []Score
	Explanation     string
	Summary         string
	MissingKeywords []string
	Recommendations []RecommendationView
}

// Score is one rendered score with its classification.
type Score struct {
	Label    string
	Icon     string
	Value    float64
	Severity analysis.Severity
}

// Display formats the score as "<value>/10".
func (s Score) Display() string {
	return strconv.FormatFloat(s.Value, 'f', -1, 64) + "/10"
}

// Class is the stylesheet class for the score.
func (s Score) Class() string {
	return s.Severity.CSSClass()
}

// RecommendationView is one recommendation in received order.
type RecommendationView struct {
	Category       string
	Priority       string
	Class          analysis.PriorityClass
	Recommendation string
	Implementation string
}

// PriorityLabel reads like "High Priority".
func (r RecommendationView) PriorityLabel() string {
	return r.Priority + " Priority"
}

// Glyph is the marker shown before the recommendation.
func (r RecommendationView) Glyph() string {
	return r.Class.Glyph()
}

// BadgeClass is the stylesheet class for the priority badge.
func (r RecommendationView) BadgeClass() string {
	return r.Class.CSSClass()
}

// HasMissingKeywords reports whether the keywords section is shown at all.
func (v *View) HasMissingKeywords() bool {
	return v != nil && len(v.MissingKeywords) > 0
}

// RecommendationCount is the number of recommendations received.
func (v *View) RecommendationCount() int {
	if v == nil {
		return 0
	}
	return len(v.Recommendations)
}

// Build projects result into a View. A nil result yields a nil View and no
// error. A result without a score breakdown or recommendations list is
// reported as ErrMalformedResult.
func Build(result *analysis.Result) (*View, error) {
	if result == nil {
		return nil, nil
	}
	if result.ScoreBreakdown == nil {
		return nil, fmt.Errorf("%w: score_breakdown missing", ErrMalformedResult)
	}
	if result.SEORecommendations == nil {
		return nil, fmt.Errorf("%w: seo_recommendations missing", ErrMalformedResult)
	}

	b := result.ScoreBreakdown
	view := &View{
		CurrentRole:    result.CurrentRole,
		TargetIndustry: result.TargetIndustry,
		Overall:        newScore("Overall SEO Score", "", result.OverallScore),
		Breakdown: []Score{
			newScore("Keywords", "🔤", b.KeywordScore),
			newScore("ATS Compatibility", "🤖", b.ATSCompatibility),
			newScore("Industry Terms", "🏭", b.IndustryTerms),
			newScore("Skills Optimization", "💪", b.SkillsOptimization),
			newScore("Format & Structure", "📄", b.FormatStructure),
		},
		Explanation: b.Explanation,
		Summary:     result.Summary,
	}
	if len(result.MissingKeywords) > 0 {
		view.MissingKeywords = append([]string(nil), result.MissingKeywords...)
	}
	view.Recommendations = make([]RecommendationView, 0, len(result.SEORecommendations))
	for _, rec := range result.SEORecommendations {
		view.Recommendations = append(view.Recommendations, RecommendationView{
			Category:       rec.Category,
			Priority:       rec.Priority,
			Class:          analysis.ClassifyPriority(rec.Priority),
			Recommendation: rec.Recommendation,
			Implementation: rec.Implementation,
		})
	}
	return view, nil
}

func newScore(label, icon string, value float64) Score {
	return Score{
		Label:    label,
		Icon:     icon,
		Value:    value,
		Severity: analysis.ClassifyScore(value),
	}
}
