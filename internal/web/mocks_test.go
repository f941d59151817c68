package web_test

import (
	"bytes"
	"context"
	"encoding/base64"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"net/url"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"

	"resume-seo-web/internal/analysis"
	"resume-seo-web/internal/analysisapi"
)

type mockAnalyzer struct {
	mu          sync.Mutex
	textCalls   []string
	sampleCalls int
	result      *analysis.Result
	err         error
}

func (m *mockAnalyzer) SubmitText(_ context.Context, resumeText string, _ *string) (*analysis.Result, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.textCalls = append(m.textCalls, resumeText)
	return m.result, m.err
}

func (m *mockAnalyzer) SubmitSample(_ context.Context) (*analysis.Result, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sampleCalls++
	return m.result, m.err
}

type mockBackend struct {
	status analysisapi.HealthStatus
	err    error
}

func (m *mockBackend) CheckHealth(context.Context) (analysisapi.HealthStatus, error) {
	return m.status, m.err
}

func reportResult() *analysis.Result {
	return &analysis.Result{
		CurrentRole:    "Software Developer",
		TargetIndustry: "Technology",
		OverallScore:   6.5,
		ScoreBreakdown: &analysis.ScoreBreakdown{
			KeywordScore:       5,
			ATSCompatibility:   7,
			IndustryTerms:      6,
			SkillsOptimization: 4,
			FormatStructure:    8,
			Explanation:        "Solid base",
		},
		Summary:         "Needs more keywords",
		MissingKeywords: []string{"Kubernetes"},
		SEORecommendations: []analysis.Recommendation{
			{Category: "Keywords", Priority: "High", Recommendation: "Add keywords", Implementation: "Skills section"},
		},
	}
}

// browser replays cookies between requests like a real user agent would.
type browser struct {
	router  *gin.Engine
	cookies map[string]*http.Cookie
}

func newBrowser(router *gin.Engine) *browser {
	return &browser{router: router, cookies: map[string]*http.Cookie{}}
}

func (b *browser) do(req *http.Request) *httptest.ResponseRecorder {
	for _, c := range b.cookies {
		req.AddCookie(c)
	}
	w := httptest.NewRecorder()
	b.router.ServeHTTP(w, req)
	for _, c := range w.Result().Cookies() {
		b.cookies[c.Name] = c
	}
	return w
}

func (b *browser) get(path string) *httptest.ResponseRecorder {
	return b.do(httptest.NewRequest(http.MethodGet, path, nil))
}

func (b *browser) postForm(path string, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return b.do(req)
}

func (b *browser) upload(filename, contentType, content string) *httptest.ResponseRecorder {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", `form-data; name="file"; filename="`+filename+`"`)
	h.Set("Content-Type", contentType)
	part, _ := mw.CreatePart(h)
	_, _ = part.Write([]byte(content))
	_ = mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/upload", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return b.do(req)
}

func unsignedToken(payload string) string {
	enc := base64.RawURLEncoding
	return enc.EncodeToString([]byte(`{"alg":"RS256","typ":"JWT"}`)) + "." +
		enc.EncodeToString([]byte(payload)) + "." + enc.EncodeToString([]byte("sig"))
}
