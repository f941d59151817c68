package web

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"resume-seo-web/internal/analysis"
	"resume-seo-web/internal/session"
	"resume-seo-web/internal/shared/server/respond"
	"resume-seo-web/internal/shared/telemetry"
	"resume-seo-web/internal/shared/util"
	"resume-seo-web/internal/workflow"
)

const (
	msgAnalysisInFlight = "An analysis is already in progress"
	msgTooManyRequests  = "Too many analyses; please wait a moment and try again"
	msgUploadFailed     = "Could not read the uploaded file"
)

// saveDraft stores pasted text without analyzing it.
func (h *Handler) saveDraft(c *gin.Context) {
	text := c.PostForm("text")
	if _, err := h.update(c, func(s *session.Session) error {
		s.Draft = workflow.Draft{Mode: workflow.ModePaste, Text: text}
		return nil
	}); err != nil {
		telemetry.Warn(c.Request.Context(), "draft.save_failed", map[string]any{"error": err})
	}
	redirectToMode(c, workflow.ModePaste)
}

// upload reads a .txt file into the draft. Rejected files leave the draft
// untouched and flash a warning.
func (h *Handler) upload(c *gin.Context) {
	ctx := c.Request.Context()
	fh, err := c.FormFile("file")
	if err != nil {
		h.flash(c, msgUploadFailed)
		redirectToMode(c, workflow.ModeUpload)
		return
	}
	f, err := fh.Open()
	if err != nil {
		telemetry.Warn(ctx, "upload.open_failed", map[string]any{"filename": util.DisplayFileName(fh.Filename), "error": err})
		h.flash(c, msgUploadFailed)
		redirectToMode(c, workflow.ModeUpload)
		return
	}
	defer f.Close()

	text, err := workflow.LoadTextFile(fh.Header.Get("Content-Type"), f)
	if err != nil {
		if w, ok := workflow.AsWarning(err); ok {
			telemetry.Info(ctx, "upload.rejected", map[string]any{
				"filename": util.DisplayFileName(fh.Filename),
				"size":     fh.Size,
				"reason":   w.Err,
			})
			h.flash(c, w.Message)
		} else {
			telemetry.Warn(ctx, "upload.read_failed", map[string]any{"filename": util.DisplayFileName(fh.Filename), "error": err})
			h.flash(c, msgUploadFailed)
		}
		redirectToMode(c, workflow.ModeUpload)
		return
	}

	if _, err := h.update(c, func(s *session.Session) error {
		s.Draft = workflow.Draft{Mode: workflow.ModeUpload, Text: text}
		return nil
	}); err != nil {
		telemetry.Warn(ctx, "draft.save_failed", map[string]any{"error": err})
	}
	redirectToMode(c, workflow.ModeUpload)
}

// analyze builds a submission from the posted mode and the session draft
// and runs it to completion before redirecting back to the page.
func (h *Handler) analyze(c *gin.Context) {
	ctx := c.Request.Context()
	sess := currentSession(c)

	mode, err := workflow.ParseMode(c.PostForm("mode"))
	if err != nil {
		mode = sess.Draft.Mode
	}
	draft := workflow.Draft{Mode: mode, Text: sess.Draft.Text}
	if text, ok := c.GetPostForm("text"); ok && mode == workflow.ModePaste {
		draft.Text = text
	}
	if _, err := h.update(c, func(s *session.Session) error {
		s.Draft = draft
		return nil
	}); err != nil {
		telemetry.Warn(ctx, "draft.save_failed", map[string]any{"error": err})
	}

	// The profile email is not forwarded; the backend treats it as optional.
	sub, err := h.workflow.Build(draft, nil)
	if err != nil {
		if w, ok := workflow.AsWarning(err); ok {
			h.flash(c, w.Message)
			redirectToMode(c, mode)
			return
		}
		telemetry.Error(ctx, "analysis.build_failed", map[string]any{"error": err})
		h.flash(c, err.Error())
		redirectToMode(c, mode)
		return
	}

	_, err = h.controller.Submit(ctx, sess.ID, sub)
	switch {
	case errors.Is(err, analysis.ErrAnalysisInFlight):
		h.flash(c, msgAnalysisInFlight)
	case errors.Is(err, analysis.ErrSessionGone):
		// Session expired mid-flight; the next page load starts fresh.
	case err != nil:
		telemetry.Error(ctx, "analysis.submit_failed", map[string]any{"session_id": sess.ID, "error": err})
	}
	redirectToMode(c, mode)
}

func (h *Handler) analyzeLimited(c *gin.Context, retryAfter time.Duration) {
	telemetry.Warn(c.Request.Context(), "analysis.rate_limited", map[string]any{
		"retry_after_ms": retryAfter.Milliseconds(),
	})
	h.flash(c, msgTooManyRequests)
	mode, err := workflow.ParseMode(c.PostForm("mode"))
	if err != nil {
		mode = workflow.ModePaste
	}
	redirectToMode(c, mode)
}

func (h *Handler) sessionState(c *gin.Context) {
	respond.OK(c, newSessionView(currentSession(c)))
}

func (h *Handler) backendHealth(c *gin.Context) {
	if h.backend == nil {
		respond.Error(c, http.StatusServiceUnavailable, "backend_unavailable", "API is not available", nil)
		return
	}
	status, err := h.backend.CheckHealth(c.Request.Context())
	if err != nil {
		respond.Error(c, http.StatusServiceUnavailable, "backend_unavailable", err.Error(), nil)
		return
	}
	respond.OK(c, status)
}
