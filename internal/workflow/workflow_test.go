package workflow

import (
	"bytes"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMode(t *testing.T) {
	for _, raw := range []string{"paste", " Upload ", "SAMPLE"} {
		_, err := ParseMode(raw)
		assert.NoError(t, err, raw)
	}
	_, err := ParseMode("fax")
	assert.ErrorIs(t, err, ErrUnknownMode)
}

func TestDraftCanAnalyze(t *testing.T) {
	assert.False(t, Draft{Mode: ModePaste}.CanAnalyze())
	assert.False(t, Draft{Mode: ModePaste, Text: " \n\t "}.CanAnalyze())
	assert.True(t, Draft{Mode: ModePaste, Text: "Jane"}.CanAnalyze())
	assert.False(t, Draft{Mode: ModeUpload, Text: "   "}.CanAnalyze())
	assert.True(t, Draft{Mode: ModeSample}.CanAnalyze())
}

func TestDraftPreview(t *testing.T) {
	short := Draft{Text: "Hello World"}
	assert.Equal(t, "Hello World", short.Preview())

	long := Draft{Text: strings.Repeat("é", 600)}
	preview := long.Preview()
	assert.Equal(t, strings.Repeat("é", 500)+"...", preview)
}

func TestBuildTrimsAndValidates(t *testing.T) {
	w := New()

	sub, err := w.Build(Draft{Mode: ModePaste, Text: "  Jane Doe\nEngineer  \n"}, nil)
	require.NoError(t, err)
	assert.False(t, sub.Sample)
	assert.Equal(t, "Jane Doe\nEngineer", sub.Request.ResumeText)
	assert.Nil(t, sub.Request.UserEmail)
}

func TestBuildEmptyTextIsWarning(t *testing.T) {
	w := New()

	for _, mode := range []Mode{ModePaste, ModeUpload} {
		_, err := w.Build(Draft{Mode: mode, Text: "   "}, nil)
		require.Error(t, err)
		warn, ok := AsWarning(err)
		require.True(t, ok, "mode %s", mode)
		assert.Equal(t, "Please provide resume text", warn.Message)
		assert.ErrorIs(t, err, ErrEmptyResume)
	}
}

func TestBuildSampleIgnoresDraft(t *testing.T) {
	w := New()

	for _, text := range []string{"", "   ", "some drafted text"} {
		sub, err := w.Build(Draft{Mode: ModeSample, Text: text}, nil)
		require.NoError(t, err)
		assert.True(t, sub.Sample)
		assert.Empty(t, sub.Request.ResumeText)
	}
}

func TestBuildRejectsInvalidEmail(t *testing.T) {
	w := New()

	bad := "not-an-email"
	_, err := w.Build(Draft{Mode: ModePaste, Text: "Jane"}, &bad)
	assert.ErrorIs(t, err, ErrInvalidEmail)

	good := "jane@example.com"
	sub, err := w.Build(Draft{Mode: ModePaste, Text: "Jane"}, &good)
	require.NoError(t, err)
	assert.Equal(t, &good, sub.Request.UserEmail)
}

func TestLoadTextFile(t *testing.T) {
	text, err := LoadTextFile("text/plain", strings.NewReader("Hello World"))
	require.NoError(t, err)
	assert.Equal(t, "Hello World", text)

	text, err = LoadTextFile("text/plain; charset=utf-8", strings.NewReader("  keep  whitespace \n"))
	require.NoError(t, err)
	assert.Equal(t, "  keep  whitespace \n", text)
}

func TestLoadTextFileDecodesLegacyEncodings(t *testing.T) {
	cases := []struct {
		name        string
		contentType string
		data        []byte
		want        string
	}{
		{"latin-1 without charset", "text/plain", []byte("Jos\xe9 Garc\xeda\nIngeniero de Software\n"), "José García\nIngeniero de Software\n"},
		{"declared windows-1252", "text/plain; charset=windows-1252", []byte("Caf\xe9 \x93quoted\x94"), "Café \u201cquoted\u201d"},
		{"utf-16le with bom", "text/plain", []byte("\xff\xfeH\x00i\x00 \x00\xe9\x00"), "Hi é"},
		{"utf-16be with bom", "text/plain", []byte("\xfe\xff\x00H\x00i"), "Hi"},
		{"utf-8 with bom", "text/plain", []byte("\xef\xbb\xbfJane Doe"), "Jane Doe"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			text, err := LoadTextFile(tc.contentType, bytes.NewReader(tc.data))
			require.NoError(t, err)
			assert.Equal(t, tc.want, text)
			assert.True(t, utf8.ValidString(text))
		})
	}
}

func TestLoadTextFileRejectsOtherTypes(t *testing.T) {
	for _, ct := range []string{"application/pdf", "", "text/html", "application/vnd.openxmlformats-officedocument.wordprocessingml.document"} {
		_, err := LoadTextFile(ct, strings.NewReader("Hello World"))
		require.Error(t, err, ct)
		warn, ok := AsWarning(err)
		require.True(t, ok)
		assert.Equal(t, "Please upload a .txt file", warn.Message)
		assert.ErrorIs(t, err, ErrUnsupportedFile)
	}
}

func TestLoadTextFileRejectsBinaryContent(t *testing.T) {
	pdf := []byte("%PDF-1.7\n%\xe2\xe3\xcf\xd3\n1 0 obj\n")
	_, err := LoadTextFile("text/plain", bytes.NewReader(pdf))
	assert.ErrorIs(t, err, ErrUnsupportedFile)
}

func TestLoadTextFileRejectsOversize(t *testing.T) {
	big := strings.Repeat("a", MaxUploadBytes+1)
	_, err := LoadTextFile("text/plain", strings.NewReader(big))
	assert.ErrorIs(t, err, ErrFileTooLarge)
}
