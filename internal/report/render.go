package report

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io"
	"strings"

	"resume-seo-web/internal/analysis"
)

//go:embed templates/*.html.tmpl
var templateFS embed.FS

var htmlTemplates = template.Must(template.ParseFS(templateFS, "templates/*.html.tmpl"))

// Templates parses a fresh copy of the report templates so pages can add
// their own definitions around the "report" block.
func Templates() (*template.Template, error) {
	return template.ParseFS(templateFS, "templates/*.html.tmpl")
}

// HTML writes the report section for result. Nothing is written for a nil
// result.
func HTML(w io.Writer, result *analysis.Result) error {
	view, err := Build(result)
	if err != nil || view == nil {
		return err
	}
	var buf bytes.Buffer
	if err := htmlTemplates.ExecuteTemplate(&buf, "report", view); err != nil {
		return fmt.Errorf("render report: %w", err)
	}
	_, err = buf.WriteTo(w)
	return err
}

// Text writes a plain-text rendition of the report for terminals.
func Text(w io.Writer, result *analysis.Result) error {
	view, err := Build(result)
	if err != nil || view == nil {
		return err
	}

	var b strings.Builder
	b.WriteString("✅ Analysis Complete!\n\n")
	fmt.Fprintf(&b, "Current Role:      %s\n", view.CurrentRole)
	fmt.Fprintf(&b, "Target Industry:   %s\n", view.TargetIndustry)
	fmt.Fprintf(&b, "Overall SEO Score: %s [%s]\n\n", view.Overall.Display(), view.Overall.Severity)

	b.WriteString("📊 Score Breakdown\n")
	for _, s := range view.Breakdown {
		fmt.Fprintf(&b, "  %s %-20s %6s [%s]\n", s.Icon, s.Label, s.Display(), s.Severity)
	}
	fmt.Fprintf(&b, "  💡 Explanation: %s\n\n", view.Explanation)

	fmt.Fprintf(&b, "📝 Summary\n  %s\n\n", view.Summary)

	if view.HasMissingKeywords() {
		b.WriteString("🔍 Missing Keywords\n  ")
		b.WriteString(strings.Join(view.MissingKeywords, ", "))
		b.WriteString("\n\n")
	}

	fmt.Fprintf(&b, "💡 SEO Recommendations (%d total)\n", view.RecommendationCount())
	for i, rec := range view.Recommendations {
		fmt.Fprintf(&b, "\n%d. %s %s (%s)\n", i+1, rec.Glyph(), rec.Category, rec.PriorityLabel())
		fmt.Fprintf(&b, "   💡 Recommendation: %s\n", rec.Recommendation)
		fmt.Fprintf(&b, "   🛠️ How to implement: %s\n", rec.Implementation)
	}

	_, err = io.WriteString(w, b.String())
	return err
}
