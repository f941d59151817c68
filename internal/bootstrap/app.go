package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"resume-seo-web/internal/analysis"
	"resume-seo-web/internal/analysisapi"
	"resume-seo-web/internal/identity"
	"resume-seo-web/internal/services/health"
	"resume-seo-web/internal/session"
	"resume-seo-web/internal/shared/config"
	"resume-seo-web/internal/shared/metrics"
	"resume-seo-web/internal/shared/server"
	"resume-seo-web/internal/shared/server/middleware"
	"resume-seo-web/internal/shared/telemetry"
	"resume-seo-web/internal/web"
	"resume-seo-web/internal/workflow"
)

// analyzeLimit allows a short burst of submissions per page session, then
// one every five seconds.
var analyzeLimit = middleware.RateLimitRule{Rate: 0.2, Burst: 3}

// App holds shared dependencies.
type App struct {
	Config     config.Config
	Router     *gin.Engine
	API        *analysisapi.Client
	Sessions   session.Store
	Controller *analysis.Controller
	Metrics    *metrics.Registry
	Identity   *identity.Provider

	redis *redis.Client
}

// Build wires the client: API client, page sessions, controller, identity,
// metrics and routes.
func Build(ctx context.Context, cfg config.Config) (*App, error) {
	if strings.TrimSpace(cfg.Env) == "" {
		cfg.Env = "dev"
	}
	if strings.TrimSpace(cfg.APIBaseURL) == "" {
		cfg.APIBaseURL = config.ResolveAPIBaseURL("", "", cfg.Env, cfg.PublicURL)
	}

	app := &App{
		Config:  cfg,
		API:     analysisapi.New(cfg.APIBaseURL),
		Metrics: metrics.NewRegistry(),
	}

	checks := map[string]health.Check{}
	sessions, err := app.buildSessions(ctx, checks)
	if err != nil {
		return nil, err
	}
	app.Sessions = sessions

	app.Controller = analysis.NewController(app.API, session.StateStore{Store: sessions})
	app.Controller.Subscribe(recordMetrics(app.Metrics))

	app.Identity = identity.NewProvider(identity.Config{
		ClientID:     cfg.GoogleClientID,
		ClientSecret: cfg.GoogleClientSecret,
		RedirectURL:  cfg.GoogleRedirectURL,
		LoginURI:     strings.TrimRight(cfg.PublicURL, "/") + "/auth/google/credential",
	})
	if _, err := app.Identity.Ensure(ctx); err != nil {
		if !errors.Is(err, identity.ErrNotConfigured) {
			return nil, fmt.Errorf("init google sign-in: %w", err)
		}
		telemetry.Info(ctx, "bootstrap.identity_disabled", map[string]any{"reason": err})
	}

	handler, err := web.NewHandler(web.Deps{
		Sessions:     sessions,
		Controller:   app.Controller,
		Workflow:     workflow.New(),
		Backend:      app.API,
		Identity:     app.Identity,
		Secure:       cfg.IsProduction(),
		SessionTTL:   cfg.SessionTTL,
		AnalyzeLimit: analyzeLimit,
	})
	if err != nil {
		_ = app.Close()
		return nil, err
	}

	app.Router = server.NewRouter(server.RouterDeps{
		Config:  cfg,
		Web:     handler,
		Metrics: app.Metrics,
		Health:  health.NewService(checks),
	})

	telemetry.Info(ctx, "bootstrap.ready", map[string]any{
		"env":           cfg.Env,
		"api_base_url":  app.API.BaseURL(),
		"session_store": cfg.SessionStore,
	})
	return app, nil
}

func (a *App) buildSessions(ctx context.Context, checks map[string]health.Check) (session.Store, error) {
	if a.Config.SessionStore != "redis" {
		return session.NewMemoryStore(a.Config.SessionTTL), nil
	}
	client, err := session.NewRedisClient(ctx, a.Config.RedisURL)
	if err != nil {
		return nil, err
	}
	a.redis = client
	checks["redis"] = func(ctx context.Context) error {
		return client.Ping(ctx).Err()
	}
	return session.NewRedisStore(client, a.Config.SessionTTL), nil
}

// Close releases connections held by the app.
func (a *App) Close() error {
	if a.redis != nil {
		return a.redis.Close()
	}
	return nil
}

func recordMetrics(reg *metrics.Registry) func(analysis.Event) {
	return func(ev analysis.Event) {
		switch {
		case ev.Rejected:
			reg.IncRejected()
		case ev.To == analysis.PhaseAnalyzing:
			reg.IncSubmitted(ev.Mode == "sample")
		case ev.From == analysis.PhaseAnalyzing:
			reg.ObserveDurationMs(float64(ev.Duration.Microseconds()) / 1000.0)
			if ev.To == analysis.PhaseFailed {
				reg.IncFailed()
			} else {
				reg.IncCompleted()
			}
		}
	}
}
