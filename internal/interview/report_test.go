package interview

import (
	"strings"
	"testing"
)

func TestParseReportHandlesCodeBlock(t *testing.T) {
	raw := "```json\n{\"overall_score\": \"8\", \"selected\": true, \"selection_reason\": \"Strong answers\", \"strengths\": [\"Go\"], \"summary\": \"Good fit\"}\n```"

	report, err := parseReport(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if report.OverallScore != 8 {
		t.Fatalf("expected score 8, got %d", report.OverallScore)
	}
	if !report.Selected {
		t.Fatalf("expected selected true")
	}
	if report.Summary != "Good fit" {
		t.Fatalf("unexpected summary: %q", report.Summary)
	}
	if report.Degraded {
		t.Fatalf("parsed report must not be marked degraded")
	}
}

func TestParseReportScoreNormalization(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		raw    string
		expect int
	}{
		{name: "missing score stays neutral", raw: `{"selected": false}`, expect: neutralScore},
		{name: "too low clamped", raw: `{"overall_score": -3}`, expect: minScore},
		{name: "too high clamped", raw: `{"overall_score": 42}`, expect: maxScore},
		{name: "in range untouched", raw: `{"overall_score": 7}`, expect: 7},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			report, err := parseReport(tt.raw)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if report.OverallScore != tt.expect {
				t.Fatalf("expected score %d, got %d", tt.expect, report.OverallScore)
			}
		})
	}
}

func TestParseReportRejectsGarbage(t *testing.T) {
	if _, err := parseReport("not json at all"); err == nil {
		t.Fatalf("expected an error for unparseable input")
	}
}

func TestFallbackReport(t *testing.T) {
	report := fallbackReport("")

	if report.OverallScore != neutralScore {
		t.Fatalf("expected neutral score, got %d", report.OverallScore)
	}
	if report.Selected {
		t.Fatalf("fallback report must not select the candidate")
	}
	if !report.Degraded {
		t.Fatalf("fallback report must be marked degraded")
	}
	if report.Summary == "" {
		t.Fatalf("expected a placeholder summary")
	}
}

func TestBuildReportPromptReplacesPlaceholders(t *testing.T) {
	history := []QA{{Number: 1, Question: "Introduce yourself.", Answer: "I am Alex."}}

	prompt := buildReportPrompt(history, testResume(), nil,
		[]string{"Go"}, nil, []string{"teamwork"})

	if strings.Contains(prompt, "{{") {
		t.Fatalf("prompt still contains placeholders: %s", prompt)
	}
	if !strings.Contains(prompt, "I am Alex.") {
		t.Fatalf("expected the answer in the prompt")
	}
}
