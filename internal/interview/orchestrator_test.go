package interview

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/talvox/talvox/internal/ai"
	"github.com/talvox/talvox/internal/logger"
	"github.com/talvox/talvox/internal/profile"
)

const (
	testResumeText = "RESUME-MARKER Alex Doe, Go engineer."
	testJobText    = "JOB-MARKER Backend Engineer opening."

	testResumeJSON = `{
		"name": "Alex Doe",
		"skills": ["Go", "Kubernetes", "PostgreSQL"],
		"projects": [{"name": "Orderflow", "description": "order pipeline"}]
	}`

	testJobJSON = `{"job_title": "Backend Engineer", "required_skills": ["Go"]}`

	testReportJSON = `{"overall_score": 9, "selected": true, "selection_reason": "Consistent depth", "summary": "Strong candidate"}`
)

// scriptedAI routes stub responses by the request content so one fake serves
// profile extraction, question generation and evaluation.
type scriptedAI struct {
	mu            sync.Mutex
	questionCount int

	generateErr   error
	evaluateErr   error
	synthesizeErr error
	transcribeErr error
}

func (a *scriptedAI) GenerateContent(_ context.Context, system, prompt string) (string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	switch {
	case strings.Contains(prompt, "RESUME-MARKER"):
		return testResumeJSON, nil
	case strings.Contains(prompt, "JOB-MARKER"):
		return testJobJSON, nil
	case strings.Contains(system, "evaluation"):
		if a.evaluateErr != nil {
			return "", a.evaluateErr
		}
		return testReportJSON, nil
	default:
		if a.generateErr != nil {
			return "", a.generateErr
		}
		a.questionCount++
		return fmt.Sprintf("Scripted question %d?", a.questionCount), nil
	}
}

func (a *scriptedAI) Synthesize(_ context.Context, text string) ([]byte, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.synthesizeErr != nil {
		return nil, a.synthesizeErr
	}
	return []byte("audio:" + text), nil
}

func (a *scriptedAI) Transcribe(_ context.Context, _ []byte, _ string) (string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.transcribeErr != nil {
		return "", a.transcribeErr
	}
	return "transcribed answer", nil
}

func newTestOrchestrator(t *testing.T, stub *scriptedAI, cfg Config) *Orchestrator {
	t.Helper()

	o := NewOrchestrator(cfg, Deps{
		Suite: ai.Suite{
			Generator:   stub,
			Synthesizer: stub,
			Transcriber: stub,
		},
		Profiles: profile.NewParser(stub, zap.NewNop(), 0),
		Logger:   zap.NewNop(),
	})
	t.Cleanup(o.Close)

	return o
}

func TestInterviewEndToEnd(t *testing.T) {
	stub := &scriptedAI{}
	o := newTestOrchestrator(t, stub, Config{TranscriptDir: t.TempDir()})
	ctx := context.Background()

	info, err := o.CreateSession(ctx, testJobText, testResumeText)
	if err != nil {
		t.Fatalf("create session: %v", err)
	}
	if info.CandidateName != "Alex Doe" || info.JobTitle != "Backend Engineer" {
		t.Fatalf("unexpected session info: %+v", info)
	}
	if info.TotalQuestions != DefaultMaxQuestions {
		t.Fatalf("expected %d questions, got %d", DefaultMaxQuestions, info.TotalQuestions)
	}

	for i := 1; i <= DefaultMaxQuestions; i++ {
		q, err := o.NextQuestion(ctx, info.SessionID)
		if err != nil {
			t.Fatalf("question %d: %v", i, err)
		}
		if q.Number != i {
			t.Fatalf("expected question number %d, got %d", i, q.Number)
		}
		if i <= FixedStarterCount && q.Text != fixedStarters[i-1].Text {
			t.Fatalf("question %d: expected fixed starter, got %q", i, q.Text)
		}

		result, err := o.SubmitAnswer(ctx, info.SessionID, []byte("wav-bytes"), "audio/wav")
		if err != nil {
			t.Fatalf("answer %d: %v", i, err)
		}
		if result.QuestionNumber != i {
			t.Fatalf("expected answered number %d, got %d", i, result.QuestionNumber)
		}
		if result.Degraded {
			t.Fatalf("answer %d unexpectedly degraded", i)
		}
		if (i < DefaultMaxQuestions) != result.NextAvailable {
			t.Fatalf("answer %d: unexpected next_available %t", i, result.NextAvailable)
		}
	}

	if _, err := o.NextQuestion(ctx, info.SessionID); !errors.Is(err, ErrInterviewCompleted) {
		t.Fatalf("expected ErrInterviewCompleted, got %v", err)
	}

	status, err := o.Status(info.SessionID)
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	if !status.IsComplete || status.QuestionsAsked != DefaultMaxQuestions {
		t.Fatalf("unexpected final status: %+v", status)
	}

	report, err := o.FinalReport(ctx, info.SessionID)
	if err != nil {
		t.Fatalf("final report: %v", err)
	}
	if report.OverallScore < minScore || report.OverallScore > maxScore {
		t.Fatalf("score out of range: %d", report.OverallScore)
	}
	if report.Degraded || !report.Selected {
		t.Fatalf("unexpected report: %+v", report)
	}

	entries, err := os.ReadDir(o.cfg.TranscriptDir)
	if err != nil || len(entries) != 1 {
		t.Fatalf("expected one transcript file, got %d (err=%v)", len(entries), err)
	}

	o.Cleanup(info.SessionID)
	if _, err := o.Status(info.SessionID); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("expected session to be gone, got %v", err)
	}

	// Cleaning up twice must be a no-op.
	o.Cleanup(info.SessionID)
}

func TestFixedStartersIdenticalAcrossSessions(t *testing.T) {
	stub := &scriptedAI{}
	o := newTestOrchestrator(t, stub, Config{})
	ctx := context.Background()

	openings := make([][]string, 0, 2)
	for i := 0; i < 2; i++ {
		info, err := o.CreateSession(ctx, testJobText, testResumeText)
		if err != nil {
			t.Fatalf("create session: %v", err)
		}

		texts := make([]string, 0, FixedStarterCount)
		for j := 0; j < FixedStarterCount; j++ {
			q, err := o.NextQuestion(ctx, info.SessionID)
			if err != nil {
				t.Fatalf("question %d: %v", j+1, err)
			}
			texts = append(texts, q.Text)
			if _, err := o.SubmitAnswerText(ctx, info.SessionID, "answer"); err != nil {
				t.Fatalf("answer %d: %v", j+1, err)
			}
		}
		openings = append(openings, texts)
		o.Cleanup(info.SessionID)
	}

	for i := range openings[0] {
		if openings[0][i] != openings[1][i] {
			t.Fatalf("opening question %d differs between sessions: %q vs %q",
				i+1, openings[0][i], openings[1][i])
		}
	}
}

func TestTranscriptionFailureDegrades(t *testing.T) {
	stub := &scriptedAI{transcribeErr: errors.New("stt offline")}
	o := newTestOrchestrator(t, stub, Config{})
	ctx := context.Background()

	info, err := o.CreateSession(ctx, testJobText, testResumeText)
	if err != nil {
		t.Fatalf("create session: %v", err)
	}

	if _, err := o.NextQuestion(ctx, info.SessionID); err != nil {
		t.Fatalf("next question: %v", err)
	}

	result, err := o.SubmitAnswer(ctx, info.SessionID, []byte("wav-bytes"), "audio/wav")
	if err != nil {
		t.Fatalf("submit answer: %v", err)
	}
	if !result.Degraded {
		t.Fatalf("expected degraded result")
	}
	if result.Transcription != TranscriptionFailedSentinel {
		t.Fatalf("expected sentinel transcription, got %q", result.Transcription)
	}
	if result.QuestionNumber != 1 {
		t.Fatalf("expected the interview to progress, got number %d", result.QuestionNumber)
	}
}

func TestGenerationFailureFallsBackToCannedQuestion(t *testing.T) {
	stub := &scriptedAI{generateErr: errors.New("llm offline")}
	o := newTestOrchestrator(t, stub, Config{})
	ctx := context.Background()

	info, err := o.CreateSession(ctx, testJobText, testResumeText)
	if err != nil {
		t.Fatalf("create session: %v", err)
	}

	for i := 0; i < FixedStarterCount; i++ {
		if _, err := o.NextQuestion(ctx, info.SessionID); err != nil {
			t.Fatalf("starter %d: %v", i+1, err)
		}
		if _, err := o.SubmitAnswerText(ctx, info.SessionID, "answer"); err != nil {
			t.Fatalf("starter answer %d: %v", i+1, err)
		}
	}

	q, err := o.NextQuestion(ctx, info.SessionID)
	if err != nil {
		t.Fatalf("dynamic question: %v", err)
	}

	found := false
	for _, canned := range fallbackQuestions {
		if q.Text == canned {
			found = true
			break
		}
	}
	if !found {
		t.Fatalf("expected a canned fallback question, got %q", q.Text)
	}
	if q.Category != CategoryBehavioral {
		t.Fatalf("expected behavioral fallback category, got %s", q.Category)
	}
}

func TestSynthesisFailureDeliversTextOnly(t *testing.T) {
	stub := &scriptedAI{synthesizeErr: errors.New("tts offline")}
	o := newTestOrchestrator(t, stub, Config{})
	ctx := context.Background()

	info, err := o.CreateSession(ctx, testJobText, testResumeText)
	if err != nil {
		t.Fatalf("create session: %v", err)
	}

	q, err := o.NextQuestion(ctx, info.SessionID)
	if err != nil {
		t.Fatalf("next question: %v", err)
	}
	if q.HasAudio {
		t.Fatalf("expected text-only delivery after synthesis failure")
	}
	if q.Text == "" {
		t.Fatalf("expected question text to survive")
	}
}

func TestFinalReportDegradesOnEvaluationFailure(t *testing.T) {
	stub := &scriptedAI{evaluateErr: errors.New("llm offline")}
	o := newTestOrchestrator(t, stub, Config{})
	ctx := context.Background()

	info, err := o.CreateSession(ctx, testJobText, testResumeText)
	if err != nil {
		t.Fatalf("create session: %v", err)
	}

	report, err := o.FinalReport(ctx, info.SessionID)
	if err != nil {
		t.Fatalf("final report: %v", err)
	}
	if !report.Degraded {
		t.Fatalf("expected degraded report")
	}
	if report.OverallScore != neutralScore || report.Selected {
		t.Fatalf("expected neutral non-selecting report, got %+v", report)
	}
}

// gatedAI blocks dynamic question generation until released, holding several
// pipeline workers in flight at once.
type gatedAI struct {
	*scriptedAI
	arrivals chan struct{}
	release  chan struct{}
}

func (a *gatedAI) GenerateContent(ctx context.Context, system, prompt string) (string, error) {
	if strings.Contains(prompt, "RESUME-MARKER") ||
		strings.Contains(prompt, "JOB-MARKER") ||
		strings.Contains(system, "evaluation") {
		return a.scriptedAI.GenerateContent(ctx, system, prompt)
	}

	a.arrivals <- struct{}{}
	<-a.release
	return a.scriptedAI.GenerateContent(ctx, system, prompt)
}

func TestConcurrentPlanningRespectsCategoryCap(t *testing.T) {
	stub := &gatedAI{
		scriptedAI: &scriptedAI{},
		arrivals:   make(chan struct{}, DefaultPrefetch+DefaultWorkers),
		release:    make(chan struct{}),
	}

	o := NewOrchestrator(Config{}, Deps{
		Suite: ai.Suite{
			Generator:   stub,
			Synthesizer: stub.scriptedAI,
			Transcriber: stub.scriptedAI,
		},
		Profiles: profile.NewParser(stub, zap.NewNop(), 0),
		Logger:   zap.NewNop(),
	})
	defer o.Close()

	info, err := o.CreateSession(context.Background(), testJobText, testResumeText)
	if err != nil {
		t.Fatalf("create session: %v", err)
	}

	// All pool workers are now planning dynamic questions concurrently.
	for i := 0; i < DefaultWorkers; i++ {
		<-stub.arrivals
	}

	s, err := o.store.Get(info.SessionID)
	if err != nil {
		t.Fatalf("get session: %v", err)
	}

	s.mu.Lock()
	usage := s.diversity.CategoryUsage()
	s.mu.Unlock()

	limit := o.scheduler.CategoryCap()
	total := 0
	for c, n := range usage {
		if n > limit {
			t.Fatalf("category %s reserved %d times, cap is %d", c, n, limit)
		}
		total += n
	}
	if total != DefaultWorkers || len(usage) != DefaultWorkers {
		t.Fatalf("expected %d distinct in-flight categories, got %v", DefaultWorkers, usage)
	}

	close(stub.release)
}

func TestGenerationFailureReleasesCategoryBudget(t *testing.T) {
	stub := &scriptedAI{generateErr: errors.New("llm offline")}
	o := NewOrchestrator(Config{}, Deps{
		Suite: ai.Suite{
			Generator:   stub,
			Synthesizer: stub,
			Transcriber: stub,
		},
		Logger: zap.NewNop(),
	})
	defer o.Close()

	s := newTestSession("s1")

	q := o.generateDynamic(context.Background(), s, SourceGeneratedSync)
	if q.Source != SourceFallback {
		t.Fatalf("expected a fallback question, got source %q", q.Source)
	}

	s.mu.Lock()
	usage := s.diversity.CategoryUsage()
	s.mu.Unlock()

	for c, n := range usage {
		if n != 0 {
			t.Fatalf("category %s still holds %d reservations after a failed generation", c, n)
		}
	}
}

func TestCreateSessionRequiresResume(t *testing.T) {
	stub := &scriptedAI{}
	o := newTestOrchestrator(t, stub, Config{})

	if _, err := o.CreateSession(context.Background(), testJobText, "   "); !errors.Is(err, profile.ErrResumeUnavailable) {
		t.Fatalf("expected ErrResumeUnavailable, got %v", err)
	}
}

func TestOrchestratorLogsCarrySessionField(t *testing.T) {
	core, observed := observer.New(zapcore.InfoLevel)
	stub := &scriptedAI{}

	o := NewOrchestrator(Config{}, Deps{
		Suite: ai.Suite{
			Generator:   stub,
			Synthesizer: stub,
			Transcriber: stub,
		},
		Profiles: profile.NewParser(stub, zap.NewNop(), 0),
		Logger:   zap.New(core),
	})
	defer o.Close()

	info, err := o.CreateSession(context.Background(), testJobText, testResumeText)
	if err != nil {
		t.Fatalf("create session: %v", err)
	}

	entries := observed.FilterMessage("interview session created").All()
	if len(entries) != 1 {
		t.Fatalf("expected 1 creation entry, got %d", len(entries))
	}

	ctx := entries[0].ContextMap()
	if ctx[logger.FieldSession] != info.SessionID {
		t.Fatalf("expected %s field to be %q, got %q", logger.FieldSession, info.SessionID, ctx[logger.FieldSession])
	}
}

func TestNextQuestionUnknownSession(t *testing.T) {
	stub := &scriptedAI{}
	o := newTestOrchestrator(t, stub, Config{})

	if _, err := o.NextQuestion(context.Background(), "missing"); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}
}
