package interview

import (
	"errors"
	"testing"
)

func TestSessionStarterDelivery(t *testing.T) {
	s := newTestSession("s1")
	s.SetStarterAudio(0, []byte("wav"))

	q, number, ok, err := s.NextDelivery()
	if err != nil || !ok {
		t.Fatalf("expected starter delivery, got ok=%t err=%v", ok, err)
	}
	if number != 1 {
		t.Fatalf("expected question number 1, got %d", number)
	}
	if q.Text != fixedStarters[0].Text {
		t.Fatalf("unexpected starter text: %q", q.Text)
	}
	if !q.HasAudio() {
		t.Fatalf("expected preloaded starter audio")
	}

	// Asking again without answering returns the same question.
	again, number, ok, err := s.NextDelivery()
	if err != nil || !ok || number != 1 || again.Text != q.Text {
		t.Fatalf("expected repeated delivery of the same question")
	}
}

func TestSessionRecordAnswerIncrementsOnce(t *testing.T) {
	s := newTestSession("s1")

	s.NextDelivery()
	qa, next := s.RecordAnswer("my answer")

	if qa.Number != 1 {
		t.Fatalf("expected question number 1, got %d", qa.Number)
	}
	if qa.Question != fixedStarters[0].Text {
		t.Fatalf("expected starter question in history, got %q", qa.Question)
	}
	if !next {
		t.Fatalf("expected more questions to be available")
	}
	if s.Asked() != 1 {
		t.Fatalf("expected asked counter 1, got %d", s.Asked())
	}

	history := s.History()
	if len(history) != 1 || history[0].Answer != "my answer" {
		t.Fatalf("unexpected history: %+v", history)
	}
}

func TestSessionDynamicDeliveryNeedsInstall(t *testing.T) {
	s := newTestSession("s1")

	for i := 0; i < FixedStarterCount; i++ {
		s.NextDelivery()
		s.RecordAnswer("answer")
	}

	q, number, ok, err := s.NextDelivery()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok || q != nil {
		t.Fatalf("expected no ready question past the starters")
	}
	if number != FixedStarterCount+1 {
		t.Fatalf("expected question number %d, got %d", FixedStarterCount+1, number)
	}

	installed, number := s.InstallDelivery(&Question{Text: "dynamic", Category: CategoryTechnicalSkills})
	if installed.Text != "dynamic" || number != FixedStarterCount+1 {
		t.Fatalf("unexpected install result: %+v number=%d", installed, number)
	}
}

func TestSessionInstallDeliveryRaceLoserRequeued(t *testing.T) {
	s := newTestSession("s1")

	for i := 0; i < FixedStarterCount; i++ {
		s.NextDelivery()
		s.RecordAnswer("answer")
	}

	winner, _ := s.InstallDelivery(&Question{Text: "winner"})
	loserResult, _ := s.InstallDelivery(&Question{Text: "loser"})

	if winner.Text != "winner" || loserResult.Text != "winner" {
		t.Fatalf("expected the first install to win")
	}

	requeued, ok := s.queue.TryPop()
	if !ok || requeued.Text != "loser" {
		t.Fatalf("expected the losing question back on the queue, got %+v", requeued)
	}
}

func TestSessionCompletion(t *testing.T) {
	s := newSession("s1", testResume(), nil, 4, DefaultQueueSize)

	for i := 0; i < 4; i++ {
		_, _, ok, err := s.NextDelivery()
		if err != nil {
			t.Fatalf("question %d: %v", i+1, err)
		}
		if !ok {
			s.InstallDelivery(&Question{Text: "dynamic"})
		}
		_, next := s.RecordAnswer("answer")
		if i < 3 && !next {
			t.Fatalf("expected next question after %d answers", i+1)
		}
		if i == 3 && next {
			t.Fatalf("expected completion after the final answer")
		}
	}

	if _, _, _, err := s.NextDelivery(); !errors.Is(err, ErrInterviewCompleted) {
		t.Fatalf("expected ErrInterviewCompleted, got %v", err)
	}
}

func TestSessionPlanDynamicReservesCategory(t *testing.T) {
	s := newTestSession("s1")
	sched := NewScheduler(DefaultMaxQuestions)

	c1, _ := s.PlanDynamic(sched)
	c2, _ := s.PlanDynamic(sched)
	if c1 == c2 {
		t.Fatalf("expected the second plan to see the first reservation, both got %s", c1)
	}

	s.ReleaseCategory(c2)
	c3, _ := s.PlanDynamic(sched)
	if c3 != c2 {
		t.Fatalf("expected the released category %s to be reusable, got %s", c2, c3)
	}
}

func TestSessionFallbackIndexClamped(t *testing.T) {
	s := newTestSession("s1")

	if idx := s.FallbackIndex(); idx != 0 {
		t.Fatalf("expected index 0 at interview start, got %d", idx)
	}

	s.mu.Lock()
	s.asked = FixedStarterCount + len(fallbackQuestions) + 5
	s.mu.Unlock()

	if idx := s.FallbackIndex(); idx != len(fallbackQuestions)-1 {
		t.Fatalf("expected clamped index, got %d", idx)
	}
}

func TestSessionProgress(t *testing.T) {
	s := newTestSession("s1")

	s.NextDelivery()
	s.RecordAnswer("I worked with Kubernetes on Orderflow.")

	info := s.Progress()
	if info.QuestionsAsked != 1 || info.TotalQuestions != DefaultMaxQuestions {
		t.Fatalf("unexpected progress: %+v", info)
	}
	if info.IsComplete {
		t.Fatalf("expected interview to be incomplete")
	}
	if len(info.SkillsDiscussed) == 0 {
		t.Fatalf("expected discussed skills to be tracked")
	}
}
