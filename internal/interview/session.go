package interview

import (
	"context"
	"sync"
	"time"

	"github.com/talvox/talvox/internal/profile"
)

// Session holds all state for one candidate's interview. The resume and job
// profiles are immutable after creation; everything else is guarded by mu.
type Session struct {
	ID     string
	Resume *profile.Resume
	Job    *profile.Job

	queue        *QuestionQueue
	maxQuestions int

	ctx    context.Context
	cancel context.CancelFunc

	mu           sync.Mutex
	status       Status
	history      []QA
	asked        int
	current      *Question
	diversity    *DiversityTracker
	starterAudio [][]byte
	createdAt    time.Time
	lastActive   time.Time
}

func newSession(id string, resume *profile.Resume, job *profile.Job, maxQuestions, queueSize int) *Session {
	ctx, cancel := context.WithCancel(context.Background())
	now := time.Now()

	return &Session{
		ID:           id,
		Resume:       resume,
		Job:          job,
		queue:        NewQuestionQueue(queueSize),
		maxQuestions: maxQuestions,
		ctx:          ctx,
		cancel:       cancel,
		status:       StatusCreated,
		diversity:    NewDiversityTracker(),
		starterAudio: make([][]byte, FixedStarterCount),
		createdAt:    now,
		lastActive:   now,
	}
}

// Context is cancelled when the session is cleaned up; background tasks use
// it to discard their work quietly.
func (s *Session) Context() context.Context {
	return s.ctx
}

// Cancelled reports whether the session was torn down.
func (s *Session) Cancelled() bool {
	select {
	case <-s.ctx.Done():
		return true
	default:
		return false
	}
}

func (s *Session) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

func (s *Session) setStatus(status Status) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status = status
}

// Asked returns the number of answered questions.
func (s *Session) Asked() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.asked
}

// History returns a copy of the answered question history.
func (s *Session) History() []QA {
	s.mu.Lock()
	defer s.mu.Unlock()
	history := make([]QA, len(s.history))
	copy(history, s.history)
	return history
}

// LastActive returns the time of the last session-facing operation.
func (s *Session) LastActive() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastActive
}

func (s *Session) touchLocked() {
	s.lastActive = time.Now()
}

// SetStarterAudio stores pre-synthesized audio for the fixed starter with
// the given index. Out-of-range indexes are ignored.
func (s *Session) SetStarterAudio(index int, audio []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if index < 0 || index >= len(s.starterAudio) {
		return
	}
	s.starterAudio[index] = audio
}

// NextDelivery hands out the question for the next ordinal when no external
// call is needed: the already delivered but unanswered question, or a fixed
// starter. When it returns false the caller must obtain a dynamic question
// (queue or synchronous generation) and install it with InstallDelivery.
func (s *Session) NextDelivery() (*Question, int, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.asked >= s.maxQuestions {
		return nil, 0, false, ErrInterviewCompleted
	}

	s.touchLocked()
	if s.status == StatusCreated {
		s.status = StatusInProgress
	}

	if s.current != nil {
		return s.current, s.asked + 1, true, nil
	}

	if s.asked < FixedStarterCount {
		starter := fixedStarters[s.asked]
		s.current = &Question{
			Text:     starter.Text,
			Audio:    s.starterAudio[s.asked],
			Category: starter.Category,
			Source:   starter.Source,
		}
		return s.current, s.asked + 1, true, nil
	}

	return nil, s.asked + 1, false, nil
}

// InstallDelivery records a dynamic question as the one delivered for the
// next ordinal. If a concurrent call installed one first, the existing
// question wins and the new one is returned to the queue.
func (s *Session) InstallDelivery(q *Question) (*Question, int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current != nil {
		s.queue.Push(q)
		return s.current, s.asked + 1
	}

	s.current = q
	return q, s.asked + 1
}

// RecordAnswer appends the answer to history against the question actually
// delivered for this ordinal and advances the counter. This is the only
// place questionsAsked is incremented.
func (s *Session) RecordAnswer(answer string) (QA, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	question := "Unknown question"
	category := CategoryBehavioral
	if s.current != nil {
		question = s.current.Text
		category = s.current.Category
	} else if s.asked < FixedStarterCount {
		question = fixedStarters[s.asked].Text
		category = fixedStarters[s.asked].Category
	}

	s.asked++
	s.current = nil
	s.touchLocked()
	if s.status == StatusCreated {
		s.status = StatusInProgress
	}

	qa := QA{
		Number:   s.asked,
		Question: question,
		Category: category,
		Answer:   answer,
		AskedAt:  time.Now(),
	}
	s.history = append(s.history, qa)

	s.diversity.Update(question, answer, s.Resume)

	return qa, s.asked < s.maxQuestions
}

// PlanDynamic picks and reserves the category for the next dynamic question
// and builds a consistent prompt snapshot for it, all under one lock. The
// reservation is what keeps concurrent planners from converging on the same
// category; a caller whose generation fails must hand it back with
// ReleaseCategory.
func (s *Session) PlanDynamic(scheduler *Scheduler) (Category, PromptContext) {
	s.mu.Lock()
	defer s.mu.Unlock()

	category := scheduler.NextCategory(s.diversity)
	s.diversity.NoteCategory(category)
	unusedSkills, unusedProjects := s.diversity.Unused(s.Resume)

	history := make([]QA, len(s.history))
	copy(history, s.history)

	return category, PromptContext{
		QuestionNumber: s.asked + 1,
		TotalQuestions: s.maxQuestions,
		Category:       category,
		Resume:         s.Resume,
		Job:            s.Job,
		History:        history,
		TopicsCovered:  s.diversity.TopicsCovered(),
		Skills:         s.diversity.SkillsDiscussed(s.Resume),
		Projects:       s.diversity.ProjectsDiscussed(s.Resume),
		UnusedSkills:   unusedSkills,
		UnusedProjects: unusedProjects,
		CategoryUsage:  s.diversity.CategoryUsage(),
	}
}

// ReleaseCategory returns a category reserved by PlanDynamic after a failed
// generation, so the canned fallback does not consume the category budget.
func (s *Session) ReleaseCategory(c Category) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.diversity.ReleaseCategory(c)
}

// FallbackIndex selects a canned question for the current progress so
// consecutive fallbacks do not repeat.
func (s *Session) FallbackIndex() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.asked - FixedStarterCount
	if idx < 0 {
		idx = 0
	}
	if idx >= len(fallbackQuestions) {
		idx = len(fallbackQuestions) - 1
	}
	return idx
}

// Progress returns the status snapshot exposed by the orchestrator.
func (s *Session) Progress() StatusInfo {
	s.mu.Lock()
	defer s.mu.Unlock()

	return StatusInfo{
		SessionID:         s.ID,
		QuestionsAsked:    s.asked,
		TotalQuestions:    s.maxQuestions,
		ProgressPercent:   float64(s.asked) / float64(s.maxQuestions) * 100,
		SkillsDiscussed:   s.diversity.SkillsDiscussed(s.Resume),
		ProjectsDiscussed: s.diversity.ProjectsDiscussed(s.Resume),
		TopicsCovered:     s.diversity.TopicsCovered(),
		IsComplete:        s.asked >= s.maxQuestions,
	}
}
