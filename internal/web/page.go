package web

import (
	"bytes"
	"embed"
	"errors"
	"html/template"
	"net/http"

	"github.com/gin-gonic/gin"

	"resume-seo-web/internal/analysis"
	"resume-seo-web/internal/identity"
	"resume-seo-web/internal/report"
	"resume-seo-web/internal/session"
	"resume-seo-web/internal/shared/telemetry"
	"resume-seo-web/internal/workflow"
)

//go:embed templates/*.html.tmpl
var pageFS embed.FS

func parsePages() (*template.Template, error) {
	base, err := report.Templates()
	if err != nil {
		return nil, err
	}
	return base.ParseFS(pageFS, "templates/*.html.tmpl")
}

type tab struct {
	Mode   workflow.Mode
	Label  string
	Active bool
}

type identityView struct {
	Settings *identity.Settings
	Profile  *identity.Profile
	// CSRFToken is repeated by the sign-in form as g_csrf_token.
	CSRFToken string
}

type pageData struct {
	Tabs         []tab
	Mode         workflow.Mode
	Draft        workflow.Draft
	Preview      string
	CanAnalyze   bool
	Warning      string
	Analyzing    bool
	Error        string
	Report       *report.View
	SampleResume string
	Identity     identityView
}

func (h *Handler) page(c *gin.Context) {
	ctx := c.Request.Context()
	sess := currentSession(c)

	mode := sess.Draft.Mode
	if raw := c.Query("mode"); raw != "" {
		if parsed, err := workflow.ParseMode(raw); err == nil {
			mode = parsed
		}
	}
	if mode == "" {
		mode = workflow.ModePaste
	}

	var warning string
	updated, err := h.update(c, func(s *session.Session) error {
		s.Draft.Mode = mode
		warning = s.TakeWarning()
		return nil
	})
	if err != nil {
		telemetry.Warn(ctx, "session.update_failed", map[string]any{"session_id": sess.ID, "error": err})
	} else {
		sess = updated
	}

	data := pageData{
		Mode:         mode,
		Draft:        sess.Draft,
		Preview:      sess.Draft.Preview(),
		CanAnalyze:   sess.Draft.CanAnalyze() && !sess.State.IsAnalyzing,
		Warning:      warning,
		Analyzing:    sess.State.IsAnalyzing,
		Error:        sess.State.Error,
		SampleResume: workflow.SampleResume,
		Identity:     h.identityView(c, sess),
	}
	for _, m := range workflow.Modes {
		data.Tabs = append(data.Tabs, tab{Mode: m, Label: m.Label(), Active: m == mode})
	}

	view, err := report.Build(sess.State.Result)
	switch {
	case errors.Is(err, report.ErrMalformedResult):
		telemetry.Warn(ctx, "report.malformed", map[string]any{"session_id": sess.ID, "error": err})
		data.Error = "The analysis result could not be displayed"
	case err != nil:
		data.Error = err.Error()
	default:
		data.Report = view
	}

	var buf bytes.Buffer
	if err := h.pages.ExecuteTemplate(&buf, "page", data); err != nil {
		telemetry.Error(ctx, "page.render_failed", map[string]any{"session_id": sess.ID, "error": err})
		c.String(http.StatusInternalServerError, "Unexpected server error")
		return
	}
	c.Header("Cache-Control", "no-store")
	c.Data(http.StatusOK, "text/html; charset=utf-8", buf.Bytes())
}

func (h *Handler) identityView(c *gin.Context, sess *session.Session) identityView {
	view := identityView{Profile: sess.Profile}
	if h.identity == nil {
		return view
	}
	settings, err := h.identity.Ensure(c.Request.Context())
	if err != nil {
		return view
	}
	view.Settings = settings
	if sess.Profile == nil {
		view.CSRFToken = h.csrfToken(c)
	}
	return view
}

// sessionView is the JSON projection of a page session.
type sessionView struct {
	ID         string            `json:"id"`
	Mode       workflow.Mode     `json:"mode"`
	CanAnalyze bool              `json:"can_analyze"`
	Phase      analysis.Phase    `json:"phase"`
	State      analysis.State    `json:"state"`
	Profile    *identity.Profile `json:"profile,omitempty"`
}

func newSessionView(sess *session.Session) sessionView {
	return sessionView{
		ID:         sess.ID,
		Mode:       sess.Draft.Mode,
		CanAnalyze: sess.Draft.CanAnalyze() && !sess.State.IsAnalyzing,
		Phase:      sess.State.Phase(),
		State:      sess.State,
		Profile:    sess.Profile,
	}
}
