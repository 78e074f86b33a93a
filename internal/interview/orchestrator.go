package interview

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/talvox/talvox/internal/ai"
	"github.com/talvox/talvox/internal/logger"
	"github.com/talvox/talvox/internal/profile"
	"github.com/talvox/talvox/internal/utils"
)

// Defaults for the orchestrator configuration.
const (
	DefaultMaxQuestions = 15
	DefaultWorkers      = 3
	DefaultPrefetch     = 7
	DefaultQueueSize    = 12
	DefaultCallTimeout  = 15 * time.Second
)

const interviewerSystem = "You are a professional interviewer conducting a voice interview. Respond with the question text only."

const evaluatorSystem = "You are an expert interviewer producing a structured candidate evaluation. Respond with a single JSON object and nothing else."

// Config tunes the orchestrator. Zero values fall back to the defaults.
type Config struct {
	MaxQuestions  int
	Workers       int
	Prefetch      int
	QueueSize     int
	CallTimeout   time.Duration
	TranscriptDir string
}

func (c Config) withDefaults() Config {
	if c.MaxQuestions <= 0 {
		c.MaxQuestions = DefaultMaxQuestions
	}
	if c.Workers <= 0 {
		c.Workers = DefaultWorkers
	}
	if c.Prefetch <= 0 {
		c.Prefetch = DefaultPrefetch
	}
	if c.QueueSize <= 0 {
		c.QueueSize = DefaultQueueSize
	}
	if c.CallTimeout <= 0 {
		c.CallTimeout = DefaultCallTimeout
	}
	return c
}

// Deps aggregates the external collaborators the orchestrator composes.
type Deps struct {
	Suite    ai.Suite
	Profiles *profile.Parser
	Logger   *zap.Logger
}

// SessionInfo is returned on session creation.
type SessionInfo struct {
	SessionID      string `json:"session_id"`
	CandidateName  string `json:"candidate_name"`
	JobTitle       string `json:"job_title"`
	TotalQuestions int    `json:"total_questions"`
}

// QuestionDelivery is one question handed to the driving layer.
type QuestionDelivery struct {
	Number   int      `json:"question_number"`
	Text     string   `json:"question_text"`
	Category Category `json:"question_type"`
	HasAudio bool     `json:"has_audio"`
	Audio    []byte   `json:"-"`
}

// AnswerResult reports the outcome of an answer submission. Degraded marks a
// sentinel transcription substituted after a transcription failure.
type AnswerResult struct {
	Transcription  string `json:"transcription"`
	Degraded       bool   `json:"degraded,omitempty"`
	QuestionNumber int    `json:"question_number"`
	NextAvailable  bool   `json:"next_available"`
}

// StatusInfo is the progress snapshot for one session.
type StatusInfo struct {
	SessionID         string   `json:"session_id"`
	QuestionsAsked    int      `json:"questions_asked"`
	TotalQuestions    int      `json:"total_questions"`
	ProgressPercent   float64  `json:"progress_percent"`
	SkillsDiscussed   []string `json:"skills_discussed"`
	ProjectsDiscussed []string `json:"projects_discussed"`
	TopicsCovered     []string `json:"topics_covered"`
	IsComplete        bool     `json:"is_complete"`
}

// Orchestrator is the public operation surface of the interview system. It
// owns the session store and the worker pool performing all blocking
// external calls.
type Orchestrator struct {
	cfg       Config
	deps      Deps
	store     *Store
	scheduler *Scheduler
	pool      *Pool
	logger    *zap.Logger
}

func NewOrchestrator(cfg Config, deps Deps) *Orchestrator {
	cfg = cfg.withDefaults()

	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Orchestrator{
		cfg:       cfg,
		deps:      deps,
		store:     NewStore(logger),
		scheduler: NewScheduler(cfg.MaxQuestions),
		pool:      NewPool(cfg.Workers, cfg.Workers*8, logger),
		logger:    logger,
	}
}

// Store exposes the session registry for status inspection.
func (o *Orchestrator) Store() *Store {
	return o.store
}

// Close drains the worker pool. Live sessions stay readable but no further
// background generation happens.
func (o *Orchestrator) Close() {
	o.pool.Close()
}

// CreateSession parses the profiles, registers a new session and kicks off
// audio pre-generation: synthesis for the three fixed starters plus the
// configured number of speculative dynamic questions.
func (o *Orchestrator) CreateSession(ctx context.Context, jobText, resumeText string) (*SessionInfo, error) {
	if strings.TrimSpace(resumeText) == "" {
		return nil, profile.ErrResumeUnavailable
	}

	resume, err := o.deps.Profiles.ParseResume(ctx, resumeText)
	if err != nil {
		return nil, err
	}

	job, err := o.deps.Profiles.AnalyzeJob(ctx, jobText)
	if err != nil {
		return nil, err
	}

	s := newSession(NewID(), resume, job, o.cfg.MaxQuestions, o.cfg.QueueSize)
	o.store.Add(s)

	o.preloadStarters(s)
	for i := 0; i < o.cfg.Prefetch; i++ {
		o.submitDynamic(s)
	}

	o.logger.Info("interview session created",
		zap.String(logger.FieldSession, s.ID),
		zap.String("candidate", resume.Name),
		zap.String("job_title", job.Title),
	)

	return &SessionInfo{
		SessionID:      s.ID,
		CandidateName:  resume.Name,
		JobTitle:       job.Title,
		TotalQuestions: o.cfg.MaxQuestions,
	}, nil
}

// NextQuestion returns the question for the next ordinal. Questions 1-3 are
// the fixed starters; later ones are dequeued from the pipeline or, on
// underrun, generated synchronously so a question is always produced.
func (o *Orchestrator) NextQuestion(ctx context.Context, sessionID string) (*QuestionDelivery, error) {
	s, err := o.store.Get(sessionID)
	if err != nil {
		return nil, err
	}

	q, number, ok, err := s.NextDelivery()
	if err != nil {
		return nil, err
	}

	if !ok {
		dynamic, popped := s.queue.TryPop()
		if !popped {
			o.logger.Debug("question queue underrun, generating synchronously",
				zap.String(logger.FieldSession, sessionID),
				zap.Int("question_number", number),
			)
			dynamic = o.generateDynamic(ctx, s, SourceGeneratedSync)
		}
		q, number = s.InstallDelivery(dynamic)
	}

	o.logger.Info("question delivered",
		zap.String(logger.FieldSession, sessionID),
		zap.Int("question_number", number),
		zap.String("category", string(q.Category)),
		zap.String("source", q.Source),
		zap.Bool("has_audio", q.HasAudio()),
	)

	return &QuestionDelivery{
		Number:   number,
		Text:     q.Text,
		Category: q.Category,
		HasAudio: q.HasAudio(),
		Audio:    q.Audio,
	}, nil
}

// SubmitAnswer transcribes the candidate audio and records the answer. A
// transcription failure degrades to the sentinel text instead of blocking
// interview progression.
func (o *Orchestrator) SubmitAnswer(ctx context.Context, sessionID string, audio []byte, mimeType string) (*AnswerResult, error) {
	s, err := o.store.Get(sessionID)
	if err != nil {
		return nil, err
	}

	transcription, degraded := o.transcribe(ctx, audio, mimeType)

	return o.recordAnswer(s, transcription, degraded), nil
}

// SubmitAnswerText records an already textual answer. Used by drivers that
// collect typed answers instead of audio.
func (o *Orchestrator) SubmitAnswerText(_ context.Context, sessionID, answer string) (*AnswerResult, error) {
	s, err := o.store.Get(sessionID)
	if err != nil {
		return nil, err
	}

	return o.recordAnswer(s, answer, false), nil
}

func (o *Orchestrator) recordAnswer(s *Session, transcription string, degraded bool) *AnswerResult {
	qa, nextAvailable := s.RecordAnswer(transcription)

	// Replenish the pipeline once the interview is past the fixed starters.
	if nextAvailable && qa.Number >= FixedStarterCount {
		o.submitDynamic(s)
	}

	o.logger.Info("answer recorded",
		zap.String(logger.FieldSession, s.ID),
		zap.Int("question_number", qa.Number),
		zap.Bool("transcription_degraded", degraded),
		zap.Bool("next_available", nextAvailable),
	)

	return &AnswerResult{
		Transcription:  transcription,
		Degraded:       degraded,
		QuestionNumber: qa.Number,
		NextAvailable:  nextAvailable,
	}
}

// Status returns the progress snapshot for the session.
func (o *Orchestrator) Status(sessionID string) (*StatusInfo, error) {
	s, err := o.store.Get(sessionID)
	if err != nil {
		return nil, err
	}

	info := s.Progress()
	return &info, nil
}

// FinalReport produces the structured evaluation. Evaluation failures
// degrade to a neutral report; the interview always ends with one.
func (o *Orchestrator) FinalReport(ctx context.Context, sessionID string) (*Report, error) {
	s, err := o.store.Get(sessionID)
	if err != nil {
		return nil, err
	}

	info := s.Progress()
	prompt := buildReportPrompt(s.History(), s.Resume, s.Job,
		info.SkillsDiscussed, info.ProjectsDiscussed, info.TopicsCovered)

	callCtx, cancel := o.callContext(ctx)
	raw, err := o.deps.Suite.Generator.GenerateContent(callCtx, evaluatorSystem, prompt)
	cancel()

	var report *Report
	switch {
	case err != nil:
		o.logger.Warn("evaluation request failed, using neutral report",
			zap.String(logger.FieldSession, sessionID),
			zap.Error(err),
		)
		report = fallbackReport("")
	default:
		report, err = parseReport(raw)
		if err != nil {
			o.logger.Warn("evaluation response unparseable, using neutral report",
				zap.String(logger.FieldSession, sessionID),
				zap.Error(err),
				zap.String("response_preview", utils.TruncateForLog(raw, 200)),
			)
			report = fallbackReport(raw)
		}
	}

	s.setStatus(StatusCompleted)

	if o.cfg.TranscriptDir != "" {
		filename, werr := WriteTranscript(o.cfg.TranscriptDir, s, report)
		if werr != nil {
			o.logger.Warn("could not save interview transcript", zap.Error(werr))
		} else {
			o.logger.Info("interview transcript saved", zap.String("filename", filename))
		}
	}

	o.logger.Info("final report produced",
		zap.String(logger.FieldSession, sessionID),
		zap.Int("overall_score", report.OverallScore),
		zap.Bool("selected", report.Selected),
		zap.Bool("degraded", report.Degraded),
	)

	return report, nil
}

// Cleanup removes the session. It is idempotent; unknown ids are ignored.
func (o *Orchestrator) Cleanup(sessionID string) {
	o.store.Delete(sessionID)
}

// StartJanitor evicts idle sessions periodically until ctx is cancelled.
func (o *Orchestrator) StartJanitor(ctx context.Context, interval, maxIdle time.Duration) {
	if interval <= 0 || maxIdle <= 0 {
		return
	}

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if evicted := o.store.EvictIdle(maxIdle); evicted > 0 {
					o.logger.Info("janitor pass", zap.Int("evicted", evicted))
				}
			}
		}
	}()
}

// preloadStarters schedules synthesis for the three fixed starter questions.
// Each worker fills a dedicated audio slot, so delivery order never depends
// on synthesis completion order.
func (o *Orchestrator) preloadStarters(s *Session) {
	for i := range fixedStarters {
		index := i
		o.pool.Submit(func() {
			if s.Cancelled() {
				return
			}

			audio := o.synthesize(s.Context(), fixedStarters[index].Text)

			if _, err := o.store.Get(s.ID); err != nil {
				return
			}
			s.SetStarterAudio(index, audio)
		})
	}
}

// submitDynamic schedules one speculative dynamic-question generation task.
func (o *Orchestrator) submitDynamic(s *Session) {
	o.pool.Submit(func() {
		if s.Cancelled() {
			return
		}
		if s.Asked() >= o.cfg.MaxQuestions {
			return
		}

		q := o.generateDynamic(s.Context(), s, SourceGenerated)

		if _, err := o.store.Get(s.ID); err != nil {
			return
		}
		if !s.queue.Push(q) {
			// A dropped question must not keep its category budget.
			if q.Source != SourceFallback {
				s.ReleaseCategory(q.Category)
			}
			o.logger.Debug("question queue full, dropping speculative question",
				zap.String(logger.FieldSession, s.ID),
			)
		}
	})
}

// generateDynamic produces one dynamic question. It is shared by the
// background pipeline and the synchronous underrun fallback so that both
// paths keep identical diversity and category accounting. It never fails: a
// generation error degrades to a canned behavioral question, a synthesis
// error degrades to text-only delivery.
func (o *Orchestrator) generateDynamic(ctx context.Context, s *Session, source string) *Question {
	category, pc := s.PlanDynamic(o.scheduler)
	prompt := o.scheduler.BuildPrompt(pc)

	callCtx, cancel := o.callContext(ctx)
	text, err := o.deps.Suite.Generator.GenerateContent(callCtx, interviewerSystem, prompt)
	cancel()

	if err != nil {
		s.ReleaseCategory(category)
		o.logger.Warn("question generation failed, using canned fallback",
			zap.String(logger.FieldSession, s.ID),
			zap.String("category", string(category)),
			zap.Error(err),
		)
		return &Question{
			Text:     fallbackQuestions[s.FallbackIndex()],
			Category: CategoryBehavioral,
			Source:   SourceFallback,
		}
	}

	text = strings.TrimSpace(text)

	return &Question{
		Text:     text,
		Audio:    o.synthesize(ctx, text),
		Category: category,
		Source:   source,
	}
}

// synthesize returns audio for the text, or nil after any synthesis failure.
func (o *Orchestrator) synthesize(ctx context.Context, text string) []byte {
	callCtx, cancel := o.callContext(ctx)
	defer cancel()

	audio, err := o.deps.Suite.Synthesizer.Synthesize(callCtx, text)
	if err != nil {
		o.logger.Warn("speech synthesis failed, question will be text-only", zap.Error(err))
		return nil
	}

	return audio
}

// transcribe returns the answer text, degrading to the sentinel when the
// collaborator fails or no audio was supplied.
func (o *Orchestrator) transcribe(ctx context.Context, audio []byte, mimeType string) (string, bool) {
	if len(audio) == 0 {
		return TranscriptionFailedSentinel, true
	}

	callCtx, cancel := o.callContext(ctx)
	defer cancel()

	transcription, err := o.deps.Suite.Transcriber.Transcribe(callCtx, audio, mimeType)
	if err != nil || strings.TrimSpace(transcription) == "" {
		if err != nil {
			o.logger.Warn("transcription failed, using sentinel text", zap.Error(err))
		}
		return TranscriptionFailedSentinel, true
	}

	return transcription, false
}

func (o *Orchestrator) callContext(parent context.Context) (context.Context, context.CancelFunc) {
	if parent == nil {
		parent = context.Background()
	}
	return context.WithTimeout(parent, o.cfg.CallTimeout)
}
