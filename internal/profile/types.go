package profile

// Resume holds the structured facts extracted from a candidate resume.
// It is immutable after session creation.
type Resume struct {
	Name           string       `mapstructure:"name" json:"name"`
	Skills         []string     `mapstructure:"skills" json:"skills"`
	Certifications []string     `mapstructure:"certifications" json:"certifications"`
	Projects       []Project    `mapstructure:"projects" json:"projects"`
	Experience     []Experience `mapstructure:"experience" json:"experience"`
	Education      []Education  `mapstructure:"education" json:"education"`
	SoftSkills     []string     `mapstructure:"soft_skills" json:"soft_skills"`
}

type Project struct {
	Name         string   `mapstructure:"name" json:"name"`
	Description  string   `mapstructure:"description" json:"description"`
	Technologies []string `mapstructure:"technologies" json:"technologies"`
	KeyFeatures  []string `mapstructure:"key_features" json:"key_features"`
}

type Experience struct {
	Company      string   `mapstructure:"company" json:"company"`
	Role         string   `mapstructure:"role" json:"role"`
	Duration     string   `mapstructure:"duration" json:"duration"`
	Achievements []string `mapstructure:"achievements" json:"achievements"`
}

type Education struct {
	Degree      string `mapstructure:"degree" json:"degree"`
	Institution string `mapstructure:"institution" json:"institution"`
	Year        string `mapstructure:"year" json:"year"`
}

// Job holds the requirements extracted from a job description.
type Job struct {
	Title            string   `mapstructure:"job_title" json:"job_title"`
	RequiredSkills   []string `mapstructure:"required_skills" json:"required_skills"`
	PreferredSkills  []string `mapstructure:"preferred_skills" json:"preferred_skills"`
	ExperienceLevel  string   `mapstructure:"experience_level" json:"experience_level"`
	Responsibilities []string `mapstructure:"key_responsibilities" json:"key_responsibilities"`
	SoftSkills       []string `mapstructure:"soft_skills_needed" json:"soft_skills_needed"`
	FocusAreas       []string `mapstructure:"interview_focus_areas" json:"interview_focus_areas"`
}

// ProjectNames returns the project names in resume order.
func (r *Resume) ProjectNames() []string {
	names := make([]string, 0, len(r.Projects))
	for _, p := range r.Projects {
		if p.Name != "" {
			names = append(names, p.Name)
		}
	}
	return names
}
