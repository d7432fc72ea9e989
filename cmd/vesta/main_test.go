package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/url"
	"strings"
	"testing"
	"time"

	"mercator-hq/vesta/pkg/cli"
	"mercator-hq/vesta/pkg/config"
	"mercator-hq/vesta/pkg/moderation"
	"mercator-hq/vesta/pkg/moderation/content"
	"mercator-hq/vesta/pkg/moderation/engine"
)

func TestReadComments(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		stdin   string
		lines   bool
		want    []string
		wantErr bool
	}{
		{"args", []string{"one", "two"}, "", false, []string{"one", "two"}, false},
		{"stdin whole", nil, "first line\nsecond line\n", false, []string{"first line\nsecond line"}, false},
		{"stdin lines", nil, "a\n\n  b  \nc\n", true, []string{"a", "b", "c"}, false},
		{"empty stdin", nil, "\n", false, nil, true},
		{"no lines", nil, "\n\n", true, nil, true},
		{"lines with args", []string{"x"}, "", true, nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := readComments(tt.args, strings.NewReader(tt.stdin), tt.lines)
			if (err != nil) != tt.wantErr {
				t.Fatalf("readComments() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				if cli.ExitCode(err) != cli.ExitUsage {
					t.Errorf("Expected usage error, got %v", err)
				}
				return
			}
			if strings.Join(got, "|") != strings.Join(tt.want, "|") {
				t.Errorf("readComments() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestCountAtLeast(t *testing.T) {
	results := []*moderation.AnalysisResult{
		{RecommendedAction: moderation.ActionApprove},
		{RecommendedAction: moderation.ActionReview},
		{RecommendedAction: moderation.ActionReject},
	}

	tests := []struct {
		threshold moderation.Action
		want      int
	}{
		{moderation.ActionApprove, 3},
		{moderation.ActionReview, 2},
		{moderation.ActionAutoHide, 1},
		{moderation.ActionReject, 1},
	}
	for _, tt := range tests {
		if got := countAtLeast(results, tt.threshold); got != tt.want {
			t.Errorf("countAtLeast(%s) = %d, want %d", tt.threshold, got, tt.want)
		}
	}
}

func TestEngineConfig(t *testing.T) {
	mc := config.Default().Moderation
	mc.FailureMode = "closed"
	mc.BatchWorkers = 3
	mc.CacheSize = 128
	mc.Language.Detector = "hybrid"
	mc.Language.Fallback = "de"
	mc.Terms.Severe = []string{"grotesque"}

	ec, err := engineConfig(mc)
	if err != nil {
		t.Fatalf("engineConfig() failed: %v", err)
	}
	if ec.FailureMode != engine.FailClosed || ec.BatchWorkers != 3 || ec.CacheSize != 128 {
		t.Errorf("Unexpected engine config %+v", ec)
	}
	if ec.Content.Mode != content.LanguageHybrid || ec.Content.Fallback != "de" {
		t.Errorf("Unexpected content config %+v", ec.Content)
	}
	if len(ec.ExtraSevereTerms) != 1 {
		t.Errorf("Expected extra severe term, got %v", ec.ExtraSevereTerms)
	}

	mc.FailureMode = "sideways"
	if _, err := engineConfig(mc); cli.ExitCode(err) != cli.ExitConfig {
		t.Errorf("Expected config error, got %v", err)
	}
}

func TestAuditValues(t *testing.T) {
	saved := auditFlags
	defer func() { auditFlags = saved }()

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	hash := func(s string) string { return "h:" + s }

	auditFlags = saved
	auditFlags.minToxicity = -1
	auditFlags.maxToxicity = -1
	auditFlags.since = 24 * time.Hour
	auditFlags.action = "reject"
	auditFlags.text = "hello"
	auditFlags.minToxicity = 0
	auditFlags.limit = 25

	v := auditValues(now, hash)
	want := url.Values{
		"start_time":   {"2026-02-28T12:00:00Z"},
		"action":       {"reject"},
		"content_hash": {"h:hello"},
		"min_toxicity": {"0"},
		"limit":        {"25"},
	}
	if v.Encode() != want.Encode() {
		t.Errorf("auditValues() = %s, want %s", v.Encode(), want.Encode())
	}

	auditFlags = saved
	auditFlags.minToxicity = -1
	auditFlags.maxToxicity = -1
	if v := auditValues(now, hash); len(v) != 0 {
		t.Errorf("Expected no values for unset flags, got %s", v.Encode())
	}
}

func TestAuditContext_BuildQuery(t *testing.T) {
	saved := auditFlags
	defer func() { auditFlags = saved }()

	ac := &auditContext{defaultLimit: 50, maxLimit: 100, hash: func(s string) string { return s }}

	auditFlags = saved
	auditFlags.minToxicity = -1
	auditFlags.maxToxicity = -1
	q, err := ac.buildQuery(ac.defaultLimit)
	if err != nil {
		t.Fatalf("buildQuery() failed: %v", err)
	}
	if q.Limit != 50 {
		t.Errorf("Expected default limit 50, got %d", q.Limit)
	}

	auditFlags.limit = 500
	if _, err := ac.buildQuery(ac.defaultLimit); cli.ExitCode(err) != cli.ExitUsage {
		t.Errorf("Expected usage error for limit above max, got %v", err)
	}

	auditFlags.limit = 0
	auditFlags.action = "obliterate"
	if _, err := ac.buildQuery(ac.defaultLimit); cli.ExitCode(err) != cli.ExitUsage {
		t.Errorf("Expected usage error for bad action, got %v", err)
	}
}

func TestVersionCommand(t *testing.T) {
	var buf bytes.Buffer
	versionCmd.SetOut(&buf)
	defer versionCmd.SetOut(nil)

	versionCmd.Run(versionCmd, nil)

	out := buf.String()
	for _, want := range []string{"Vesta " + Version, "Git Commit: " + GitCommit, "Go Version:"} {
		if !strings.Contains(out, want) {
			t.Errorf("Expected output to contain %q, got %q", want, out)
		}
	}

	info := versionInfo()
	if info.Version != Version {
		t.Errorf("Expected version %s, got %s", Version, info.Version)
	}
}

func TestAnalyzeCommand_JSON(t *testing.T) {
	saved := analyzeFlags
	defer func() { analyzeFlags = saved }()

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&bytes.Buffer{})
	rootCmd.SetArgs([]string{"analyze", "--format", "json", "Thanks, this was really helpful!"})
	defer func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
	}()

	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("analyze failed: %v", err)
	}

	var results []moderation.AnalysisResult
	if err := json.Unmarshal(out.Bytes(), &results); err != nil {
		t.Fatalf("Failed to decode output %q: %v", out.String(), err)
	}
	if len(results) != 1 {
		t.Fatalf("Expected 1 result, got %d", len(results))
	}
	if results[0].RecommendedAction != moderation.ActionApprove {
		t.Errorf("Expected approve, got %s", results[0].RecommendedAction)
	}
}

func TestAnalyzeCommand_UsageErrors(t *testing.T) {
	saved := analyzeFlags
	defer func() { analyzeFlags = saved }()

	tests := []struct {
		name string
		args []string
	}{
		{"csv format", []string{"analyze", "--format", "csv", "hi"}},
		{"bad fail-on", []string{"analyze", "--fail-on", "explode", "hi"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			analyzeFlags = saved
			rootCmd.SetOut(&bytes.Buffer{})
			rootCmd.SetErr(&bytes.Buffer{})
			rootCmd.SetArgs(tt.args)
			defer rootCmd.SetArgs(nil)

			err := rootCmd.Execute()
			var usage *cli.UsageError
			if !errors.As(err, &usage) {
				t.Errorf("Expected UsageError, got %v", err)
			}
		})
	}
}
