package interview

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// WriteTranscript saves a human-readable record of the finished interview and
// returns the file path. The directory is created on demand.
func WriteTranscript(dir string, s *Session, report *Report) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create transcript directory: %w", err)
	}

	filename := filepath.Join(dir, fmt.Sprintf("interview_%s_%s.txt",
		s.ID, time.Now().Format("20060102_150405")))

	var b strings.Builder

	b.WriteString("INTERVIEW TRANSCRIPT\n")
	b.WriteString(strings.Repeat("=", 60) + "\n")
	fmt.Fprintf(&b, "Session:   %s\n", s.ID)
	fmt.Fprintf(&b, "Candidate: %s\n", s.Resume.Name)
	fmt.Fprintf(&b, "Position:  %s\n", s.Job.Title)
	fmt.Fprintf(&b, "Date:      %s\n\n", time.Now().Format("2006-01-02 15:04:05"))

	for _, qa := range s.History() {
		fmt.Fprintf(&b, "Q%d [%s]: %s\n", qa.Number, qa.Category, qa.Question)
		fmt.Fprintf(&b, "A%d: %s\n\n", qa.Number, qa.Answer)
	}

	b.WriteString(strings.Repeat("=", 60) + "\n")
	b.WriteString("EVALUATION\n")
	b.WriteString(strings.Repeat("=", 60) + "\n")
	fmt.Fprintf(&b, "Overall score: %d/10\n", report.OverallScore)
	fmt.Fprintf(&b, "Selected:      %t\n", report.Selected)
	if report.SelectionReason != "" {
		fmt.Fprintf(&b, "Reason:        %s\n", report.SelectionReason)
	}
	if len(report.Strengths) > 0 {
		fmt.Fprintf(&b, "Strengths:     %s\n", strings.Join(report.Strengths, "; "))
	}
	if len(report.ImprovementAreas) > 0 {
		fmt.Fprintf(&b, "Improve:       %s\n", strings.Join(report.ImprovementAreas, "; "))
	}
	if report.Summary != "" {
		fmt.Fprintf(&b, "\n%s\n", report.Summary)
	}
	if report.Degraded {
		b.WriteString("\n(Automated evaluation was unavailable for this interview.)\n")
	}

	if err := os.WriteFile(filename, []byte(b.String()), 0o644); err != nil {
		return "", fmt.Errorf("write transcript: %w", err)
	}

	return filename, nil
}
