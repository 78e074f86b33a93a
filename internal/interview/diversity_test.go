package interview

import (
	"reflect"
	"testing"

	"github.com/talvox/talvox/internal/profile"
)

func testResume() *profile.Resume {
	return &profile.Resume{
		Name:   "Alex Doe",
		Skills: []string{"Go", "Kubernetes", "PostgreSQL"},
		Projects: []profile.Project{
			{Name: "Orderflow", Description: "order pipeline"},
			{Name: "Shipmate", Description: "logistics tracker"},
		},
	}
}

func TestDiversityTrackerUpdate(t *testing.T) {
	d := NewDiversityTracker()
	resume := testResume()

	d.Update(
		"Tell me about Orderflow and how you used KUBERNETES there.",
		"We had a difficult scaling problem and the team solved it together.",
		resume,
	)

	skills := d.SkillsDiscussed(resume)
	if !reflect.DeepEqual(skills, []string{"Kubernetes"}) {
		t.Fatalf("unexpected skills discussed: %v", skills)
	}

	projects := d.ProjectsDiscussed(resume)
	if !reflect.DeepEqual(projects, []string{"Orderflow"}) {
		t.Fatalf("unexpected projects discussed: %v", projects)
	}

	topics := d.TopicsCovered()
	if !reflect.DeepEqual(topics, []string{"challenges", "leadership", "teamwork"}) {
		t.Fatalf("unexpected topics covered: %v", topics)
	}
}

func TestDiversityTrackerUnusedKeepsResumeOrder(t *testing.T) {
	d := NewDiversityTracker()
	resume := testResume()

	d.Update("How do you use PostgreSQL?", "Mostly for analytics.", resume)

	skills, projects := d.Unused(resume)
	if !reflect.DeepEqual(skills, []string{"Go", "Kubernetes"}) {
		t.Fatalf("unexpected unused skills: %v", skills)
	}
	if !reflect.DeepEqual(projects, []string{"Orderflow", "Shipmate"}) {
		t.Fatalf("unexpected unused projects: %v", projects)
	}
}

func TestDiversityTrackerNilResume(t *testing.T) {
	d := NewDiversityTracker()

	d.Update("question", "answer", nil)

	skills, projects := d.Unused(nil)
	if skills != nil || projects != nil {
		t.Fatalf("expected nil slices for nil resume, got %v / %v", skills, projects)
	}
}

func TestDiversityTrackerReleaseCategoryStopsAtZero(t *testing.T) {
	d := NewDiversityTracker()

	d.ReleaseCategory(CategoryBehavioral)
	if got := d.CategoryCount(CategoryBehavioral); got != 0 {
		t.Fatalf("expected count to stay at 0, got %d", got)
	}

	d.NoteCategory(CategoryBehavioral)
	d.ReleaseCategory(CategoryBehavioral)
	if got := d.CategoryCount(CategoryBehavioral); got != 0 {
		t.Fatalf("expected release to undo the note, got %d", got)
	}
}

func TestDiversityTrackerCategoryUsageIsACopy(t *testing.T) {
	d := NewDiversityTracker()
	d.NoteCategory(CategoryBehavioral)
	d.NoteCategory(CategoryBehavioral)

	usage := d.CategoryUsage()
	usage[CategoryBehavioral] = 99

	if got := d.CategoryCount(CategoryBehavioral); got != 2 {
		t.Fatalf("expected count 2 after mutating the copy, got %d", got)
	}
}
