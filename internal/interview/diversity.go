package interview

import (
	"sort"
	"strings"

	"github.com/talvox/talvox/internal/profile"
)

// topicKeywords is the fixed vocabulary for topic coverage detection. The
// matching is a deliberate substring heuristic carried over from the original
// behaviour: false positives and negatives are tolerated.
var topicKeywords = map[string][]string{
	"leadership":    {"lead", "manage", "team", "mentor"},
	"challenges":    {"challenge", "problem", "difficult", "issue"},
	"learning":      {"learn", "new", "study", "research"},
	"teamwork":      {"team", "collaborate", "work together"},
	"communication": {"explain", "present", "communicate", "document"},
}

// DiversityTracker records which resume skills, projects, general topics and
// question categories have already been touched during a session. It carries
// no lock of its own: all mutation happens under the owning session's mutex.
type DiversityTracker struct {
	skills     map[string]struct{}
	projects   map[string]struct{}
	topics     map[string]struct{}
	categories map[Category]int
}

func NewDiversityTracker() *DiversityTracker {
	return &DiversityTracker{
		skills:     make(map[string]struct{}),
		projects:   make(map[string]struct{}),
		topics:     make(map[string]struct{}),
		categories: make(map[Category]int),
	}
}

// Update scans the question and answer text for resume skills, project names
// and topic keywords, case-insensitively, and records the hits.
func (d *DiversityTracker) Update(question, answer string, resume *profile.Resume) {
	if resume == nil {
		return
	}

	questionLower := strings.ToLower(question)
	answerLower := strings.ToLower(answer)

	contains := func(needle string) bool {
		return strings.Contains(questionLower, needle) || strings.Contains(answerLower, needle)
	}

	for _, skill := range resume.Skills {
		if skill == "" {
			continue
		}
		if contains(strings.ToLower(skill)) {
			d.skills[skill] = struct{}{}
		}
	}

	for _, project := range resume.Projects {
		name := strings.ToLower(project.Name)
		if name == "" {
			continue
		}
		if contains(name) {
			d.projects[project.Name] = struct{}{}
		}
	}

	for topic, keywords := range topicKeywords {
		for _, keyword := range keywords {
			if contains(keyword) {
				d.topics[topic] = struct{}{}
				break
			}
		}
	}
}

// NoteCategory records one use of the category by a generated question.
func (d *DiversityTracker) NoteCategory(c Category) {
	d.categories[c]++
}

// ReleaseCategory undoes one NoteCategory after a failed generation.
func (d *DiversityTracker) ReleaseCategory(c Category) {
	if d.categories[c] > 0 {
		d.categories[c]--
	}
}

// CategoryCount returns how many generated questions used the category.
func (d *DiversityTracker) CategoryCount(c Category) int {
	return d.categories[c]
}

// Unused returns resume skills and project names not yet discussed, in
// resume order.
func (d *DiversityTracker) Unused(resume *profile.Resume) (skills, projects []string) {
	if resume == nil {
		return nil, nil
	}

	for _, skill := range resume.Skills {
		if _, ok := d.skills[skill]; !ok && skill != "" {
			skills = append(skills, skill)
		}
	}

	for _, project := range resume.Projects {
		if project.Name == "" {
			continue
		}
		if _, ok := d.projects[project.Name]; !ok {
			projects = append(projects, project.Name)
		}
	}

	return skills, projects
}

// SkillsDiscussed returns the discussed skills in resume order.
func (d *DiversityTracker) SkillsDiscussed(resume *profile.Resume) []string {
	discussed := make([]string, 0, len(d.skills))
	if resume == nil {
		return discussed
	}
	for _, skill := range resume.Skills {
		if _, ok := d.skills[skill]; ok {
			discussed = append(discussed, skill)
		}
	}
	return discussed
}

// ProjectsDiscussed returns the discussed project names in resume order.
func (d *DiversityTracker) ProjectsDiscussed(resume *profile.Resume) []string {
	discussed := make([]string, 0, len(d.projects))
	if resume == nil {
		return discussed
	}
	for _, project := range resume.Projects {
		if _, ok := d.projects[project.Name]; ok {
			discussed = append(discussed, project.Name)
		}
	}
	return discussed
}

// TopicsCovered returns the covered topics sorted alphabetically.
func (d *DiversityTracker) TopicsCovered() []string {
	topics := make([]string, 0, len(d.topics))
	for topic := range d.topics {
		topics = append(topics, topic)
	}
	sort.Strings(topics)
	return topics
}

// CategoryUsage returns a copy of the per-category use counts.
func (d *DiversityTracker) CategoryUsage() map[Category]int {
	usage := make(map[Category]int, len(d.categories))
	for c, n := range d.categories {
		usage[c] = n
	}
	return usage
}
