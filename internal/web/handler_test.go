package web_test

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"time"

	"github.com/gin-gonic/gin"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"resume-seo-web/internal/analysis"
	"resume-seo-web/internal/analysisapi"
	"resume-seo-web/internal/identity"
	"resume-seo-web/internal/session"
	"resume-seo-web/internal/shared/server/middleware"
	"resume-seo-web/internal/web"
	"resume-seo-web/internal/workflow"
)

var _ = Describe("Handler", func() {
	var (
		analyzer *mockAnalyzer
		backend  *mockBackend
		store    *session.MemoryStore
		provider *identity.Provider
		limit    middleware.RateLimitRule
		b        *browser
	)

	build := func() {
		controller := analysis.NewController(analyzer, session.StateStore{Store: store})
		h, err := web.NewHandler(web.Deps{
			Sessions:     store,
			Controller:   controller,
			Workflow:     workflow.New(),
			Backend:      backend,
			Identity:     provider,
			AnalyzeLimit: limit,
		})
		Expect(err).NotTo(HaveOccurred())

		router := gin.New()
		h.RegisterRoutes(router)
		h.RegisterAPI(router.Group("/api/v1"))
		b = newBrowser(router)
	}

	BeforeEach(func() {
		gin.SetMode(gin.TestMode)
		analyzer = &mockAnalyzer{result: reportResult()}
		backend = &mockBackend{status: analysisapi.HealthStatus{"status": "healthy"}}
		store = session.NewMemoryStore(time.Minute)
		provider = identity.NewProvider(identity.Config{ClientID: "client-1"})
		limit = middleware.RateLimitRule{}
		build()
	})

	sessionJSON := func() map[string]any {
		w := b.get("/api/v1/session")
		Expect(w.Code).To(Equal(http.StatusOK))
		var out map[string]any
		Expect(json.Unmarshal(w.Body.Bytes(), &out)).To(Succeed())
		return out
	}

	Describe("page", func() {
		It("issues a page session cookie and renders the paste tab", func() {
			w := b.get("/")

			Expect(w.Code).To(Equal(http.StatusOK))
			Expect(b.cookies).To(HaveKey("rsa_session"))
			Expect(b.cookies["rsa_session"].HttpOnly).To(BeTrue())
			Expect(w.Body.String()).To(ContainSubstring("Paste Text"))
			Expect(w.Body.String()).To(ContainSubstring("Upload File"))
			Expect(w.Body.String()).To(ContainSubstring("Try Sample"))
			Expect(w.Body.String()).To(ContainSubstring(`name="text"`))
			Expect(w.Body.String()).NotTo(ContainSubstring("Analysis Complete!"))
		})

		It("keeps the same session across requests", func() {
			b.get("/")
			first := b.cookies["rsa_session"].Value
			b.get("/")
			Expect(b.cookies["rsa_session"].Value).To(Equal(first))
		})

		It("starts a new session when the cookie is stale", func() {
			b.cookies["rsa_session"] = &http.Cookie{Name: "rsa_session", Value: "gone"}
			b.get("/")
			Expect(b.cookies["rsa_session"].Value).NotTo(Equal("gone"))
		})

		It("switches tabs and retains the draft", func() {
			b.postForm("/draft", url.Values{"text": {"My resume"}})
			w := b.get("/?mode=upload")
			Expect(w.Body.String()).To(ContainSubstring("Preview:"))
			Expect(w.Body.String()).To(ContainSubstring("My resume"))

			w = b.get("/?mode=sample")
			Expect(w.Body.String()).To(ContainSubstring("Analyze Sample Resume"))
			Expect(w.Body.String()).To(ContainSubstring("John Smith"))
		})

		It("renders the sign-in widget when identity is configured", func() {
			w := b.get("/")
			Expect(w.Body.String()).To(ContainSubstring(identity.GSIScriptURL))
			Expect(w.Body.String()).To(ContainSubstring(`data-client_id="client-1"`))
			Expect(b.cookies).To(HaveKey("g_csrf_token"))
		})

		It("omits the sign-in widget when identity is not configured", func() {
			provider = identity.NewProvider(identity.Config{})
			build()
			w := b.get("/")
			Expect(w.Code).To(Equal(http.StatusOK))
			Expect(w.Body.String()).NotTo(ContainSubstring(identity.GSIScriptURL))
		})
	})

	Describe("analyze", func() {
		It("warns about empty text without calling the backend", func() {
			w := b.postForm("/analyze", url.Values{"mode": {"paste"}, "text": {"   "}})
			Expect(w.Code).To(Equal(http.StatusSeeOther))
			Expect(w.Header().Get("Location")).To(Equal("/?mode=paste"))

			page := b.get("/?mode=paste").Body.String()
			Expect(page).To(ContainSubstring("Please provide resume text"))
			Expect(analyzer.textCalls).To(BeEmpty())

			// the flash is shown once
			Expect(b.get("/").Body.String()).NotTo(ContainSubstring("Please provide resume text"))
		})

		It("submits trimmed text and renders the report", func() {
			b.postForm("/analyze", url.Values{"mode": {"paste"}, "text": {"  Jane Doe, Engineer  "}})

			Expect(analyzer.textCalls).To(Equal([]string{"Jane Doe, Engineer"}))
			page := b.get("/").Body.String()
			Expect(page).To(ContainSubstring("Analysis Complete!"))
			Expect(page).To(ContainSubstring("6.5/10"))
			Expect(page).To(ContainSubstring("score-yellow"))
			Expect(page).To(ContainSubstring("Kubernetes"))
			Expect(page).To(ContainSubstring("SEO Recommendations (1 total)"))
			Expect(page).To(ContainSubstring("priority-high"))

			state := sessionJSON()
			Expect(state["phase"]).To(Equal("report_ready"))
		})

		It("shows the backend message when analysis fails", func() {
			analyzer.result = nil
			analyzer.err = &analysisapi.Error{Op: analysisapi.OpAnalyze, StatusCode: 500, Message: "Failed to analyze resume"}

			b.postForm("/analyze", url.Values{"mode": {"paste"}, "text": {"resume"}})

			page := b.get("/").Body.String()
			Expect(page).To(ContainSubstring("Analysis Failed:"))
			Expect(page).To(ContainSubstring("Failed to analyze resume"))
			Expect(page).NotTo(ContainSubstring("Analysis Complete!"))

			state := sessionJSON()
			Expect(state["phase"]).To(Equal("failed"))
		})

		It("clears a previous error on the next success", func() {
			analyzer.err = errors.New("API is not available")
			analyzer.result = nil
			b.postForm("/analyze", url.Values{"mode": {"paste"}, "text": {"resume"}})

			analyzer.err = nil
			analyzer.result = reportResult()
			b.postForm("/analyze", url.Values{"mode": {"paste"}, "text": {"resume"}})

			page := b.get("/").Body.String()
			Expect(page).NotTo(ContainSubstring("Analysis Failed:"))
			Expect(page).To(ContainSubstring("Analysis Complete!"))
		})

		It("runs the sample without sending draft text", func() {
			b.postForm("/draft", url.Values{"text": {"ignored"}})
			w := b.postForm("/analyze", url.Values{"mode": {"sample"}})

			Expect(w.Header().Get("Location")).To(Equal("/?mode=sample"))
			Expect(analyzer.sampleCalls).To(Equal(1))
			Expect(analyzer.textCalls).To(BeEmpty())
		})

		It("reports a malformed result as an error", func() {
			analyzer.result = &analysis.Result{OverallScore: 5}
			b.postForm("/analyze", url.Values{"mode": {"paste"}, "text": {"resume"}})

			page := b.get("/").Body.String()
			Expect(page).To(ContainSubstring("Analysis Failed:"))
			Expect(page).NotTo(ContainSubstring("Analysis Complete!"))
		})

		It("rate limits repeated submissions per session", func() {
			limit = middleware.RateLimitRule{Rate: 0.01, Burst: 1}
			build()

			b.postForm("/analyze", url.Values{"mode": {"paste"}, "text": {"resume"}})
			w := b.postForm("/analyze", url.Values{"mode": {"paste"}, "text": {"resume"}})

			Expect(w.Code).To(Equal(http.StatusSeeOther))
			Expect(w.Header().Get("Retry-After")).NotTo(BeEmpty())
			Expect(analyzer.textCalls).To(HaveLen(1))
			Expect(b.get("/").Body.String()).To(ContainSubstring("Too many analyses"))
		})
	})

	Describe("upload", func() {
		It("loads a text file into the draft with a preview", func() {
			w := b.upload("resume.txt", "text/plain", "Hello World")
			Expect(w.Code).To(Equal(http.StatusSeeOther))
			Expect(w.Header().Get("Location")).To(Equal("/?mode=upload"))

			page := b.get("/?mode=upload").Body.String()
			Expect(page).To(ContainSubstring("Hello World"))

			b.postForm("/analyze", url.Values{"mode": {"upload"}})
			Expect(analyzer.textCalls).To(Equal([]string{"Hello World"}))
		})

		It("rejects non-text files and keeps the draft", func() {
			b.upload("resume.txt", "text/plain", "Original")
			b.upload("resume.pdf", "application/pdf", "%PDF-1.4")

			page := b.get("/?mode=upload").Body.String()
			Expect(page).To(ContainSubstring("Please upload a .txt file"))
			Expect(page).To(ContainSubstring("Original"))
		})

		It("warns when no file is posted", func() {
			b.postForm("/upload", url.Values{})
			Expect(b.get("/?mode=upload").Body.String()).To(ContainSubstring("Could not read the uploaded file"))
		})
	})

	Describe("JSON API", func() {
		It("projects the idle session", func() {
			state := sessionJSON()
			Expect(state["phase"]).To(Equal("idle"))
			Expect(state["mode"]).To(Equal("paste"))
			Expect(state["can_analyze"]).To(BeFalse())
			Expect(state).NotTo(HaveKey("profile"))
		})

		It("proxies backend health", func() {
			w := b.get("/api/v1/backend/health")
			Expect(w.Code).To(Equal(http.StatusOK))
			Expect(w.Body.String()).To(ContainSubstring(`"status":"healthy"`))
		})

		It("returns 503 when the backend is down", func() {
			backend.err = &analysisapi.Error{Op: analysisapi.OpHealth, Message: "API is not available"}
			w := b.get("/api/v1/backend/health")
			Expect(w.Code).To(Equal(http.StatusServiceUnavailable))
			Expect(w.Body.String()).To(ContainSubstring("API is not available"))
		})
	})

	Describe("identity", func() {
		credential := unsignedToken(`{"sub":"u1","name":"Ada Lovelace","email":"ada@example.com","picture":"https://example.com/a.png"}`)

		It("rejects a credential without the double-submit token", func() {
			b.get("/")
			w := b.postForm("/auth/google/credential", url.Values{"credential": {credential}, "g_csrf_token": {"wrong"}})
			Expect(w.Code).To(Equal(http.StatusBadRequest))
		})

		It("signs in and out within the page session", func() {
			b.get("/")
			token := b.cookies["g_csrf_token"].Value

			w := b.postForm("/auth/google/credential", url.Values{"credential": {credential}, "g_csrf_token": {token}})
			Expect(w.Code).To(Equal(http.StatusSeeOther))

			page := b.get("/").Body.String()
			Expect(page).To(ContainSubstring("Ada Lovelace"))
			Expect(page).To(ContainSubstring("ada@example.com"))
			Expect(page).To(ContainSubstring("Sign Out"))
			Expect(sessionJSON()["profile"]).To(HaveKeyWithValue("email", "ada@example.com"))

			b.postForm("/auth/signout", url.Values{})
			page = b.get("/").Body.String()
			Expect(page).NotTo(ContainSubstring("Ada Lovelace"))
		})

		It("stays signed out for an undecodable credential", func() {
			b.get("/")
			token := b.cookies["g_csrf_token"].Value
			w := b.postForm("/auth/google/credential", url.Values{"credential": {"garbage"}, "g_csrf_token": {token}})
			Expect(w.Code).To(Equal(http.StatusSeeOther))
			Expect(sessionJSON()).NotTo(HaveKey("profile"))
		})

		It("reports the redirect flow as unavailable without a client secret", func() {
			w := b.get("/auth/google/start")
			Expect(w.Code).To(Equal(http.StatusNotFound))
		})

		It("redirects to Google when the code flow is configured", func() {
			provider = identity.NewProvider(identity.Config{
				ClientID:     "client-1",
				ClientSecret: "secret",
				RedirectURL:  "http://localhost:8080/auth/google/callback",
			})
			build()
			w := b.get("/auth/google/start")
			Expect(w.Code).To(Equal(http.StatusFound))
			Expect(w.Header().Get("Location")).To(HavePrefix("https://accounts.google.com/"))

			w = b.get("/auth/google/callback?state=bogus&code=x")
			Expect(w.Code).To(Equal(http.StatusBadRequest))
		})
	})
})
