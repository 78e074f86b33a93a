package interview

import (
	"encoding/json"
	"fmt"
	"strings"

	_ "embed"

	"github.com/talvox/talvox/internal/profile"
)

//go:embed question_prompt.md
var questionPromptTemplate string

// categoryPriority is the fixed tie-break order for dynamic question
// categories: earlier entries win when usage counts are equal.
var categoryPriority = []Category{
	CategoryTechnicalSkills,
	CategoryProjectsDeepDive,
	CategoryCertifications,
	CategoryBehavioral,
	CategorySituational,
	CategoryLeadership,
	CategoryProblemSolving,
	CategoryCommunication,
	CategoryCareerGoals,
}

// Scheduler decides the category and resume material for the next dynamic
// question. It is stateless: all bookkeeping lives in the session's
// DiversityTracker.
type Scheduler struct {
	maxQuestions int
}

func NewScheduler(maxQuestions int) *Scheduler {
	if maxQuestions <= 0 {
		maxQuestions = DefaultMaxQuestions
	}
	return &Scheduler{maxQuestions: maxQuestions}
}

// CategoryCap is the maximum number of times any single category may be
// used in one interview: ceil(maxQuestions / number of categories).
func (s *Scheduler) CategoryCap() int {
	n := len(categoryPriority)
	return (s.maxQuestions + n - 1) / n
}

// NextCategory picks the least-used category below the cap, breaking ties by
// the fixed priority order. With every category at the cap it falls back to
// behavioral, which cannot happen within a single interview's budget.
func (s *Scheduler) NextCategory(d *DiversityTracker) Category {
	limit := s.CategoryCap()

	best := CategoryBehavioral
	bestCount := -1

	for _, c := range categoryPriority {
		n := d.CategoryCount(c)
		if n >= limit {
			continue
		}
		if bestCount == -1 || n < bestCount {
			best = c
			bestCount = n
		}
	}

	return best
}

// PromptContext is a consistent snapshot of the session state a generation
// prompt is built from.
type PromptContext struct {
	QuestionNumber int
	TotalQuestions int
	Category       Category
	Resume         *profile.Resume
	Job            *profile.Job
	History        []QA
	TopicsCovered  []string
	Skills         []string
	Projects       []string
	UnusedSkills   []string
	UnusedProjects []string
	CategoryUsage  map[Category]int
}

// BuildPrompt assembles the generation request for a dynamic question. The
// prompt explicitly steers the generator away from covered material and the
// three fixed starter questions.
func (s *Scheduler) BuildPrompt(pc PromptContext) string {
	unusedSkills := pc.UnusedSkills
	if len(unusedSkills) > 3 {
		unusedSkills = unusedSkills[:3]
	}
	unusedProjects := pc.UnusedProjects
	if len(unusedProjects) > 2 {
		unusedProjects = unusedProjects[:2]
	}

	replacements := map[string]string{
		"{{QUESTION_NUMBER}}":    fmt.Sprintf("%d", pc.QuestionNumber),
		"{{TOTAL_QUESTIONS}}":    fmt.Sprintf("%d", pc.TotalQuestions),
		"{{RESUME_JSON}}":        marshalForPrompt(pc.Resume),
		"{{JOB_JSON}}":           marshalForPrompt(pc.Job),
		"{{HISTORY_JSON}}":       marshalForPrompt(pc.History),
		"{{CATEGORY}}":           string(pc.Category),
		"{{TOPICS_COVERED}}":     joinForPrompt(pc.TopicsCovered),
		"{{SKILLS_DISCUSSED}}":   joinForPrompt(pc.Skills),
		"{{PROJECTS_DISCUSSED}}": joinForPrompt(pc.Projects),
		"{{UNUSED_SKILLS}}":      joinForPrompt(unusedSkills),
		"{{UNUSED_PROJECTS}}":    joinForPrompt(unusedProjects),
		"{{CATEGORY_USAGE}}":     marshalForPrompt(pc.CategoryUsage),
	}

	prompt := questionPromptTemplate
	for placeholder, value := range replacements {
		prompt = strings.ReplaceAll(prompt, placeholder, value)
	}

	return prompt
}

func marshalForPrompt(v any) string {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return string(data)
}

func joinForPrompt(items []string) string {
	if len(items) == 0 {
		return "none"
	}
	return strings.Join(items, ", ")
}
