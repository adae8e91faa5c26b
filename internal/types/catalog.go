// Package types provides type definitions for structured data shared across the aria system.
package types

// Project represents one entry in the candidate's project catalog.
type Project struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Stack       []string `json:"stack"`
	Readme      string   `json:"readme,omitempty"` // path relative to the data dir
	GitHub      string   `json:"github,omitempty"`
}

// Experience represents one entry in the candidate's experience catalog.
type Experience struct {
	Organization string   `json:"organization"`
	Title        string   `json:"title"`
	Location     string   `json:"location"`
	StartDate    string   `json:"start_date"`
	EndDate      string   `json:"end_date"`
	Achievements []string `json:"achievements"`
}

// Skill represents a single skill with a self-assessed expertise score (1-10).
type Skill struct {
	Name  string `json:"name"`
	Score int    `json:"score"`
}

// SkillCategory groups skills under a section heading such as "Languages"
// or "Cloud & DevOps".
type SkillCategory struct {
	Category string  `json:"category"`
	Skills   []Skill `json:"skills"`
}
