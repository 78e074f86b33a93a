package interview

import (
	"encoding/json"
	"fmt"
	"strings"

	_ "embed"

	"github.com/mitchellh/mapstructure"

	"github.com/talvox/talvox/internal/profile"
)

//go:embed report_prompt.md
var reportPromptTemplate string

const (
	neutralScore = 5

	minScore = 1
	maxScore = 10
)

// Report is the final structured evaluation of an interview.
type Report struct {
	OverallScore        int      `mapstructure:"overall_score" json:"overall_score"`
	Selected            bool     `mapstructure:"selected" json:"selected"`
	SelectionReason     string   `mapstructure:"selection_reason" json:"selection_reason"`
	Strengths           []string `mapstructure:"strengths" json:"strengths"`
	ImprovementAreas    []string `mapstructure:"improvement_areas" json:"improvement_areas"`
	Recommendations     []string `mapstructure:"recommendations" json:"recommendations"`
	TechnicalCompetency string   `mapstructure:"technical_competency" json:"technical_competency"`
	CommunicationSkills string   `mapstructure:"communication_skills" json:"communication_skills"`
	ProblemSolving      string   `mapstructure:"problem_solving" json:"problem_solving"`
	CulturalFit         string   `mapstructure:"cultural_fit" json:"cultural_fit"`
	AnswerQuality       string   `mapstructure:"answer_quality" json:"answer_quality"`
	Summary             string   `mapstructure:"summary" json:"summary"`

	// Degraded marks a neutral fallback report produced after an
	// evaluation failure.
	Degraded bool `mapstructure:"-" json:"degraded,omitempty"`
}

// buildReportPrompt assembles the single evaluation request from the full
// interview context.
func buildReportPrompt(history []QA, resume *profile.Resume, job *profile.Job, skills, projects, topics []string) string {
	replacements := map[string]string{
		"{{HISTORY_JSON}}":       marshalForPrompt(history),
		"{{RESUME_JSON}}":        marshalForPrompt(resume),
		"{{JOB_JSON}}":           marshalForPrompt(job),
		"{{SKILLS_DISCUSSED}}":   joinForPrompt(skills),
		"{{PROJECTS_DISCUSSED}}": joinForPrompt(projects),
		"{{TOPICS_COVERED}}":     joinForPrompt(topics),
	}

	prompt := reportPromptTemplate
	for placeholder, value := range replacements {
		prompt = strings.ReplaceAll(prompt, placeholder, value)
	}

	return prompt
}

// parseReport decodes the evaluator response, tolerating code fences, string
// scores and other weakly typed output.
func parseReport(raw string) (*Report, error) {
	cleaned := profile.ExtractJSON(raw)

	var data map[string]any
	if err := json.Unmarshal([]byte(cleaned), &data); err != nil {
		return nil, fmt.Errorf("parse evaluation response: %w", err)
	}

	var report Report
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           &report,
	})
	if err != nil {
		return nil, err
	}

	if err := decoder.Decode(data); err != nil {
		return nil, fmt.Errorf("decode evaluation response: %w", err)
	}

	switch {
	case report.OverallScore == 0:
		// Missing score in otherwise valid output: stay neutral.
		report.OverallScore = neutralScore
	case report.OverallScore < minScore:
		report.OverallScore = minScore
	case report.OverallScore > maxScore:
		report.OverallScore = maxScore
	}

	return &report, nil
}

// fallbackReport is returned whenever evaluation fails or produces
// unparseable output. The interview always ends with some report.
func fallbackReport(summary string) *Report {
	if strings.TrimSpace(summary) == "" {
		summary = "Evaluation was unavailable; a neutral assessment was recorded."
	}

	return &Report{
		OverallScore: neutralScore,
		Selected:     false,
		Summary:      summary,
		Degraded:     true,
	}
}
