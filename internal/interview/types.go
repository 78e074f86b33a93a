package interview

import "time"

// Status describes the lifecycle stage of a session.
type Status string

const (
	StatusCreated    Status = "created"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
)

// Category classifies an interview question.
type Category string

const (
	CategoryIntroduction     Category = "introduction"
	CategoryTechnicalSkills  Category = "technical_skills"
	CategoryProjectsDeepDive Category = "projects_deep_dive"
	CategoryCertifications   Category = "certifications"
	CategoryBehavioral       Category = "behavioral"
	CategorySituational      Category = "situational"
	CategoryLeadership       Category = "leadership"
	CategoryProblemSolving   Category = "problem_solving"
	CategoryCommunication    Category = "communication"
	CategoryCareerGoals      Category = "career_goals"
)

// Question sources recorded for observability.
const (
	SourceFixedStarter  = "fixed_starter"
	SourceGenerated     = "generated"
	SourceGeneratedSync = "generated_sync"
	SourceFallback      = "fallback"
)

// QA is a single answered question in the interview history.
type QA struct {
	Number   int       `json:"question_number"`
	Question string    `json:"question"`
	Category Category  `json:"question_type"`
	Answer   string    `json:"answer"`
	AskedAt  time.Time `json:"timestamp"`
}

// Question is a deliverable interview question. Audio is nil when the
// question is text-only, either by design or after a synthesis failure.
type Question struct {
	Text     string
	Audio    []byte
	Category Category
	Source   string
}

// HasAudio reports whether spoken audio accompanies the question.
func (q *Question) HasAudio() bool {
	return q != nil && len(q.Audio) > 0
}

// fixedStarters are asked verbatim, in order, at the start of every
// interview. Their wording never changes so their audio can be synthesized
// the moment a session is created.
var fixedStarters = []Question{
	{Text: "Introduce yourself.", Category: CategoryIntroduction, Source: SourceFixedStarter},
	{Text: "Why are you interested in this role and company?", Category: CategoryBehavioral, Source: SourceFixedStarter},
	{Text: "What's your biggest weakness and how are you improving it?", Category: CategoryBehavioral, Source: SourceFixedStarter},
}

// FixedStarterCount is the number of invariant opening questions.
const FixedStarterCount = 3

// fallbackQuestions keep the interview moving when the text generation
// collaborator is unavailable.
var fallbackQuestions = []string{
	"Describe a time when you had to work under pressure. How did you handle it?",
	"Tell me about a challenging technical problem you solved recently.",
	"How do you stay updated with new technologies in your field?",
	"Describe your approach to debugging complex issues.",
	"Tell me about a time you disagreed with a team member. How did you resolve it?",
	"What's your process for learning a new technology or framework?",
	"Describe a project where you had to work with unclear requirements.",
	"How do you ensure code quality in your projects?",
	"Tell me about a time you had to explain a technical concept to a non-technical person.",
	"What motivates you to work in this field?",
	"How do you approach testing your code?",
	"Describe a time when you had to optimize performance in an application.",
}

// TranscriptionFailedSentinel replaces the answer text when the
// transcription collaborator fails. It keeps the interview moving instead of
// surfacing the failure to the candidate.
const TranscriptionFailedSentinel = "[Transcription failed]"
