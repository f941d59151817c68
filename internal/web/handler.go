package web

import (
	"context"
	"errors"
	"html/template"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"resume-seo-web/internal/analysis"
	"resume-seo-web/internal/analysisapi"
	"resume-seo-web/internal/identity"
	"resume-seo-web/internal/session"
	"resume-seo-web/internal/shared/server/middleware"
	"resume-seo-web/internal/shared/telemetry"
	"resume-seo-web/internal/workflow"
)

const (
	sessionCookie = "rsa_session"
	sessionKey    = "session"
)

// HealthChecker probes the analysis backend.
type HealthChecker interface {
	CheckHealth(ctx context.Context) (analysisapi.HealthStatus, error)
}

// Deps are the collaborators the web surface needs.
type Deps struct {
	Sessions   session.Store
	Controller *analysis.Controller
	Workflow   *workflow.Workflow
	Backend    HealthChecker
	Identity   *identity.Provider
	// Secure marks cookies Secure; set in production.
	Secure bool
	// SessionTTL bounds the session cookie lifetime.
	SessionTTL time.Duration
	// AnalyzeLimit throttles POST /analyze per page session. Zero disables.
	AnalyzeLimit middleware.RateLimitRule
}

// Handler serves the analyzer page, its form actions and the JSON API.
type Handler struct {
	sessions   session.Store
	controller *analysis.Controller
	workflow   *workflow.Workflow
	backend    HealthChecker
	identity   *identity.Provider
	secure     bool
	ttl        time.Duration
	limit      middleware.RateLimitRule
	pages      *template.Template
}

// NewHandler constructs a Handler.
func NewHandler(deps Deps) (*Handler, error) {
	if deps.Sessions == nil || deps.Controller == nil || deps.Workflow == nil {
		return nil, errors.New("web: sessions, controller and workflow are required")
	}
	pages, err := parsePages()
	if err != nil {
		return nil, err
	}
	ttl := deps.SessionTTL
	if ttl <= 0 {
		ttl = session.DefaultTTL
	}
	return &Handler{
		sessions:   deps.Sessions,
		controller: deps.Controller,
		workflow:   deps.Workflow,
		backend:    deps.Backend,
		identity:   deps.Identity,
		secure:     deps.Secure,
		ttl:        ttl,
		limit:      deps.AnalyzeLimit,
		pages:      pages,
	}, nil
}

// RegisterRoutes attaches the page, form actions and identity routes.
func (h *Handler) RegisterRoutes(r gin.IRouter) {
	pages := r.Group("", h.sessionMiddleware())
	pages.GET("/", h.page)
	pages.POST("/draft", h.saveDraft)
	pages.POST("/upload", h.upload)
	pages.POST("/analyze", middleware.RateLimit(middleware.RateLimitConfig{
		Rule:      h.limit,
		OnLimited: h.analyzeLimited,
	}), h.analyze)

	auth := pages.Group("/auth")
	auth.GET("/google/start", h.googleStart)
	auth.GET("/google/callback", h.googleCallback)
	auth.POST("/google/credential", h.googleCredential)
	auth.POST("/signout", h.signOut)
}

// RegisterAPI attaches the JSON endpoints.
func (h *Handler) RegisterAPI(rg *gin.RouterGroup) {
	rg.GET("/session", h.sessionMiddleware(), h.sessionState)
	rg.GET("/backend/health", h.backendHealth)
}

// sessionMiddleware loads the page session from its cookie, creating a new
// one when the cookie is missing or the session has expired.
func (h *Handler) sessionMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		var sess *session.Session
		if id, err := c.Cookie(sessionCookie); err == nil && id != "" {
			sess, err = h.sessions.Get(ctx, id)
			if err != nil && !errors.Is(err, session.ErrNotFound) {
				telemetry.Error(ctx, "session.load_failed", map[string]any{"error": err})
				c.AbortWithStatus(http.StatusInternalServerError)
				return
			}
		}
		if sess == nil {
			created, err := h.sessions.Create(ctx)
			if err != nil {
				telemetry.Error(ctx, "session.create_failed", map[string]any{"error": err})
				c.AbortWithStatus(http.StatusInternalServerError)
				return
			}
			sess = created
		}
		h.setSessionCookie(c, sess.ID)
		middleware.SetSession(c, sess.ID, sess.Profile != nil)
		c.Set(sessionKey, sess)
		c.Next()
	}
}

func (h *Handler) setSessionCookie(c *gin.Context, id string) {
	c.SetSameSite(http.SameSiteLaxMode)
	// MaxAge 0 keeps it a browser-session cookie; the store enforces the TTL.
	c.SetCookie(sessionCookie, id, 0, "/", "", h.secure, true)
}

func currentSession(c *gin.Context) *session.Session {
	v, ok := c.Get(sessionKey)
	if !ok {
		return nil
	}
	sess, _ := v.(*session.Session)
	return sess
}

// update applies fn to the current page session and refreshes the copy held
// on the request context.
func (h *Handler) update(c *gin.Context, fn func(*session.Session) error) (*session.Session, error) {
	sess := currentSession(c)
	if sess == nil {
		return nil, session.ErrNotFound
	}
	updated, err := h.sessions.Update(c.Request.Context(), sess.ID, fn)
	if updated != nil {
		c.Set(sessionKey, updated)
	}
	return updated, err
}

func (h *Handler) flash(c *gin.Context, message string) {
	if _, err := h.update(c, func(s *session.Session) error {
		s.Warning = message
		return nil
	}); err != nil {
		telemetry.Warn(c.Request.Context(), "session.flash_failed", map[string]any{
			"session_id": middleware.SessionIDFromContext(c),
			"error":      err,
		})
	}
}

func redirectToMode(c *gin.Context, mode workflow.Mode) {
	c.Redirect(http.StatusSeeOther, "/?mode="+string(mode))
}
