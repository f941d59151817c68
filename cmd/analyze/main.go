package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"resume-seo-web/internal/analysis"
	"resume-seo-web/internal/analysisapi"
	"resume-seo-web/internal/report"
	"resume-seo-web/internal/session"
	"resume-seo-web/internal/shared/config"
	"resume-seo-web/internal/shared/telemetry"
	"resume-seo-web/internal/workflow"
)

func main() {
	cfg := config.Load()

	filePath := flag.String("file", "", "Path to a .txt resume (reads stdin when empty)")
	sample := flag.Bool("sample", false, "Analyze the backend's built-in sample resume")
	apiURL := flag.String("api", "", "Analysis backend origin (defaults to API_URL)")
	email := flag.String("email", "", "Email to attach to the request (optional)")
	asJSON := flag.Bool("json", false, "Print the raw result as JSON")
	flag.Parse()

	telemetry.Setup(telemetry.Options{ServiceName: "resume-seo-analyze", Output: os.Stderr})

	draft, err := readDraft(*sample, *filePath)
	if err != nil {
		exitErr(err.Error())
	}
	var userEmail *string
	if e := strings.TrimSpace(*email); e != "" {
		userEmail = &e
	}
	sub, err := workflow.New().Build(draft, userEmail)
	if err != nil {
		exitErr(err.Error())
	}

	baseURL := config.ResolveAPIBaseURL(*apiURL, cfg.APIBaseURL, cfg.Env, cfg.PublicURL)
	client := analysisapi.New(baseURL)

	result, err := run(context.Background(), client, sub)
	if err != nil {
		exitErr("Analysis Failed: " + err.Error())
	}

	if *asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(result); err != nil {
			exitErr(fmt.Sprintf("encode result: %v", err))
		}
		return
	}
	if err := report.Text(os.Stdout, result); err != nil {
		exitErr(err.Error())
	}
}

func readDraft(sample bool, path string) (workflow.Draft, error) {
	if sample {
		return workflow.Draft{Mode: workflow.ModeSample}, nil
	}
	if strings.TrimSpace(path) == "" {
		data, err := io.ReadAll(io.LimitReader(os.Stdin, workflow.MaxUploadBytes+1))
		if err != nil {
			return workflow.Draft{}, fmt.Errorf("read stdin: %w", err)
		}
		return workflow.Draft{Mode: workflow.ModePaste, Text: string(data)}, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return workflow.Draft{}, fmt.Errorf("open resume: %w", err)
	}
	defer f.Close()
	text, err := workflow.LoadTextFile(contentTypeFor(path), f)
	if err != nil {
		return workflow.Draft{}, err
	}
	return workflow.Draft{Mode: workflow.ModeUpload, Text: text}, nil
}

func contentTypeFor(path string) string {
	if strings.HasSuffix(strings.ToLower(path), ".txt") {
		return "text/plain"
	}
	return "application/octet-stream"
}

// run drives one submission through the same controller the web client
// uses, backed by a single throwaway page session.
func run(ctx context.Context, analyzer analysis.Analyzer, sub analysis.Submission) (*analysis.Result, error) {
	sessions := session.NewMemoryStore(0)
	sess, err := sessions.Create(ctx)
	if err != nil {
		return nil, err
	}
	ctrl := analysis.NewController(analyzer, session.StateStore{Store: sessions})
	final, err := ctrl.Submit(ctx, sess.ID, sub)
	if err != nil {
		return nil, err
	}
	if final.Error != "" {
		return nil, errors.New(final.Error)
	}
	return final.Result, nil
}

func exitErr(msg string) {
	fmt.Fprintln(os.Stderr, msg)
	os.Exit(1)
}
