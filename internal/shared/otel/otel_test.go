package otel

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
)

func TestSetupDisabled(t *testing.T) {
	tel, err := Setup(context.Background(), Config{})
	require.NoError(t, err)
	assert.Nil(t, tel)
	assert.NoError(t, tel.Shutdown(context.Background()))
}

func TestParseHeaders(t *testing.T) {
	got := parseHeaders("Authorization=Bearer abc, x-team = web ,broken")
	assert.Equal(t, map[string]string{
		"Authorization": "Bearer abc",
		"x-team":        "web",
	}, got)
	assert.Empty(t, parseHeaders(""))
}

func TestNewResourceMergesWithSDKDefaults(t *testing.T) {
	res, err := newResource(Config{ServiceName: "resume-seo-web", ServiceVersion: "1.2.3"})
	require.NoError(t, err)

	name, ok := res.Set().Value(semconv.ServiceNameKey)
	require.True(t, ok)
	assert.Equal(t, "resume-seo-web", name.AsString())
	version, ok := res.Set().Value(semconv.ServiceVersionKey)
	require.True(t, ok)
	assert.Equal(t, "1.2.3", version.AsString())
}

func TestSetupWithEndpoint(t *testing.T) {
	collector := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer collector.Close()

	tel, err := Setup(context.Background(), Config{
		Endpoint:       collector.URL + "/",
		Headers:        "x-team=web",
		ServiceName:    "resume-seo-web",
		ServiceVersion: "test",
	})
	require.NoError(t, err)
	require.NotNil(t, tel)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	assert.NoError(t, tel.Shutdown(ctx))
}
