package workflow

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"resume-seo-web/internal/analysis"
)

// Mode selects where resume text comes from.
type Mode string

const (
	ModePaste  Mode = "paste"
	ModeUpload Mode = "upload"
	ModeSample Mode = "sample"
)

// Modes lists the modes in tab order.
var Modes = []Mode{ModePaste, ModeUpload, ModeSample}

// ErrUnknownMode is returned by ParseMode.
var ErrUnknownMode = errors.New("unknown input mode")

// ParseMode parses a mode name. Callers that need a fallback use ModePaste.
func ParseMode(raw string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(raw))) {
	case ModePaste:
		return ModePaste, nil
	case ModeUpload:
		return ModeUpload, nil
	case ModeSample:
		return ModeSample, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownMode, raw)
	}
}

// Label is the tab caption for the mode.
func (m Mode) Label() string {
	switch m {
	case ModeUpload:
		return "Upload File"
	case ModeSample:
		return "Try Sample"
	default:
		return "Paste Text"
	}
}

const previewLimit = 500

// Draft is the text being prepared for submission. Paste and upload modes
// share the same text.
type Draft struct {
	Mode Mode   `json:"mode"`
	Text string `json:"text"`
}

// CanAnalyze reports whether the analyze action is enabled.
func (d Draft) CanAnalyze() bool {
	if d.Mode == ModeSample {
		return true
	}
	return strings.TrimSpace(d.Text) != ""
}

// Preview returns the first 500 characters of the draft, marking truncation
// with an ellipsis.
func (d Draft) Preview() string {
	runes := []rune(d.Text)
	if len(runes) <= previewLimit {
		return d.Text
	}
	return string(runes[:previewLimit]) + "..."
}

// Workflow turns drafts into submissions.
type Workflow struct {
	validate *validator.Validate
}

// New constructs a Workflow with its request validator.
func New() *Workflow {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation("required_trimmed", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
	return &Workflow{validate: v}
}

// Build validates the draft and produces the submission to run. Sample mode
// ignores the draft text entirely. A *Warning is returned for input problems;
// no submission should be dispatched in that case.
func (w *Workflow) Build(d Draft, userEmail *string) (analysis.Submission, error) {
	if d.Mode == ModeSample {
		return analysis.Submission{Sample: true}, nil
	}
	req := analysis.Request{
		ResumeText: strings.TrimSpace(d.Text),
		UserEmail:  userEmail,
	}
	if err := w.validate.Struct(req); err != nil {
		return analysis.Submission{}, warningFromValidation(err)
	}
	return analysis.Submission{Request: req}, nil
}

func warningFromValidation(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return &Warning{Message: "Invalid submission", Err: err}
	}
	for _, fe := range verrs {
		switch fe.Field() {
		case "ResumeText":
			return &Warning{Message: msgEmptyResume, Err: ErrEmptyResume}
		case "UserEmail":
			return &Warning{Message: "Please provide a valid email address", Err: ErrInvalidEmail}
		}
	}
	return &Warning{Message: "Invalid submission", Err: err}
}
