package analysis

// Request is the payload sent to the analysis backend for one resume.
type Request struct {
	ResumeText string  `json:"resume_text" validate:"required_trimmed"`
	UserEmail  *string `json:"user_email" validate:"omitempty,email"`
}

// Result is the scoring report returned by the backend. It is treated as
// immutable once decoded.
type Result struct {
	CurrentRole        string           `json:"current_role"`
	TargetIndustry     string           `json:"target_industry"`
	OverallScore       float64          `json:"overall_score"`
	ScoreBreakdown     *ScoreBreakdown  `json:"score_breakdown"`
	Summary            string           `json:"summary"`
	MissingKeywords    []string         `json:"missing_keywords"`
	SEORecommendations []Recommendation `json:"seo_recommendations"`
}

// ScoreBreakdown holds the five sub-scores, each expected in 0..10.
type ScoreBreakdown struct {
	KeywordScore       float64 `json:"keyword_score"`
	ATSCompatibility   float64 `json:"ats_compatibility"`
	IndustryTerms      float64 `json:"industry_terms"`
	SkillsOptimization float64 `json:"skills_optimization"`
	FormatStructure    float64 `json:"format_structure"`
	Explanation        string  `json:"explanation"`
}

// Recommendation is one prioritized suggestion within a report.
type Recommendation struct {
	Category       string `json:"category"`
	Priority       string `json:"priority"`
	Recommendation string `json:"recommendation"`
	Implementation string `json:"implementation"`
}

// Submission describes what the controller should send: either the built-in
// sample or a text request.
type Submission struct {
	Sample  bool
	Request Request
}

// Mode returns a short label used in logs and metrics.
func (s Submission) Mode() string {
	if s.Sample {
		return "sample"
	}
	return "text"
}
