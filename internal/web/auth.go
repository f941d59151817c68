package web

import (
	"crypto/subtle"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"resume-seo-web/internal/identity"
	"resume-seo-web/internal/session"
	"resume-seo-web/internal/shared/server/respond"
	"resume-seo-web/internal/shared/telemetry"
	"resume-seo-web/internal/shared/util"
)

// gsiCSRFCookie is the double-submit token the page's sign-in form repeats as
// a form field when posting an Identity Services credential. The form posts
// same-origin from the button callback so the Lax session cookie travels too.
const gsiCSRFCookie = "g_csrf_token"

func (h *Handler) csrfToken(c *gin.Context) string {
	if token, err := c.Cookie(gsiCSRFCookie); err == nil && token != "" {
		return token
	}
	token := uuid.NewString()
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(gsiCSRFCookie, token, 0, "/", "", h.secure, true)
	return token
}

func (h *Handler) googleStart(c *gin.Context) {
	if h.identity == nil {
		respond.Error(c, http.StatusNotFound, "not_configured", identity.ErrNotConfigured.Error(), nil)
		return
	}
	url, err := h.identity.AuthCodeURL(c.Request.Context())
	if err != nil {
		respond.Error(c, http.StatusNotFound, "not_configured", err.Error(), nil)
		return
	}
	c.Redirect(http.StatusFound, url)
}

func (h *Handler) googleCallback(c *gin.Context) {
	ctx := c.Request.Context()
	if h.identity == nil {
		respond.Error(c, http.StatusNotFound, "not_configured", identity.ErrNotConfigured.Error(), nil)
		return
	}
	if errParam := c.Query("error"); errParam != "" {
		telemetry.Info(ctx, "identity.denied", map[string]any{"reason": errParam})
		c.Redirect(http.StatusSeeOther, "/")
		return
	}
	profile, err := h.identity.Exchange(ctx, c.Query("state"), c.Query("code"))
	if err != nil {
		telemetry.Warn(ctx, "identity.exchange_failed", map[string]any{"error": err})
		if errors.Is(err, identity.ErrInvalidState) {
			respond.Error(c, http.StatusBadRequest, "invalid_state", err.Error(), nil)
			return
		}
		// Undecodable tokens leave the visitor signed out.
		c.Redirect(http.StatusSeeOther, "/")
		return
	}
	h.signIn(c, profile)
}

// googleCredential receives the Identity Services button's POST.
func (h *Handler) googleCredential(c *gin.Context) {
	ctx := c.Request.Context()
	if h.identity == nil {
		respond.Error(c, http.StatusNotFound, "not_configured", identity.ErrNotConfigured.Error(), nil)
		return
	}
	if _, err := h.identity.Ensure(ctx); err != nil {
		respond.Error(c, http.StatusNotFound, "not_configured", err.Error(), nil)
		return
	}

	cookie, _ := c.Cookie(gsiCSRFCookie)
	field := c.PostForm(gsiCSRFCookie)
	if cookie == "" || subtle.ConstantTimeCompare([]byte(cookie), []byte(field)) != 1 {
		respond.Error(c, http.StatusBadRequest, "invalid_csrf", "Failed to verify double submit cookie", nil)
		return
	}

	profile, err := identity.Decode(c.PostForm("credential"))
	if err != nil {
		telemetry.Warn(ctx, "identity.decode_failed", map[string]any{"error": err})
		c.Redirect(http.StatusSeeOther, "/")
		return
	}
	h.signIn(c, profile)
}

func (h *Handler) signIn(c *gin.Context, profile identity.Profile) {
	if _, err := h.update(c, func(s *session.Session) error {
		s.Profile = &profile
		return nil
	}); err != nil {
		telemetry.Warn(c.Request.Context(), "identity.store_failed", map[string]any{"error": err})
	} else {
		telemetry.Info(c.Request.Context(), "identity.signed_in", map[string]any{"profile": util.Fingerprint(profile.ID)})
	}
	c.Redirect(http.StatusSeeOther, "/")
}

// signOut clears the profile in this page session only.
func (h *Handler) signOut(c *gin.Context) {
	if _, err := h.update(c, func(s *session.Session) error {
		s.Profile = nil
		return nil
	}); err != nil {
		telemetry.Warn(c.Request.Context(), "identity.signout_failed", map[string]any{"error": err})
	}
	c.Redirect(http.StatusSeeOther, "/")
}
