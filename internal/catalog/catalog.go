// Package catalog loads the static, read-only reference data consulted by
// pipeline stages: the candidate's experiences, skill categories, and
// project portfolio. Data files are JSON under a data directory and are
// validated against embedded JSON Schemas on load.
package catalog

import (
	"embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	"github.com/amirrezaskh/aria/internal/types"
)

//go:embed schemas/*.json
var schemaFiles embed.FS

// Default data file names, relative to the data directory.
const (
	ExperiencesFile = "experiences.json"
	SkillsFile      = "technical_skills.json"
	ProjectsFile    = "projects.json"
)

// maxReadmeChars bounds the project documentation excerpt fed into prompts.
const maxReadmeChars = 3000

// Catalog holds the loaded reference data. It is immutable after Load and
// safe to share across concurrent pipeline runs.
type Catalog struct {
	dataDir     string
	Experiences []types.Experience
	Skills      []types.SkillCategory
	Projects    []types.Project
}

// ValidationError reports a data file that failed schema validation.
type ValidationError struct {
	File   string
	Issues []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("catalog file %s failed validation: %s", e.File, strings.Join(e.Issues, "; "))
}

// Load reads and validates all catalog files from dataDir.
func Load(dataDir string) (*Catalog, error) {
	c := &Catalog{dataDir: dataDir}

	if err := loadFile(dataDir, ExperiencesFile, "schemas/experiences.json", &c.Experiences); err != nil {
		return nil, err
	}
	if err := loadFile(dataDir, SkillsFile, "schemas/skills.json", &c.Skills); err != nil {
		return nil, err
	}
	if err := loadFile(dataDir, ProjectsFile, "schemas/projects.json", &c.Projects); err != nil {
		return nil, err
	}

	return c, nil
}

// LookupProject finds a project by title. The second return reports whether
// the title exists; selection output referencing unknown titles is a normal
// occurrence the caller must tolerate.
func (c *Catalog) LookupProject(title string) (types.Project, bool) {
	for _, p := range c.Projects {
		if p.Title == title {
			return p, true
		}
	}
	// Tolerate near-miss titles from the selection stage.
	lower := strings.ToLower(title)
	for _, p := range c.Projects {
		pt := strings.ToLower(p.Title)
		if strings.Contains(pt, lower) || strings.Contains(lower, pt) {
			return p, true
		}
	}
	return types.Project{}, false
}

// ProjectReadme returns the project's long-form documentation, truncated for
// prompt use. Missing or unreadable readme files yield an empty string, not
// an error: documentation is optional context.
func (c *Catalog) ProjectReadme(p types.Project) string {
	if p.Readme == "" {
		return ""
	}
	data, err := os.ReadFile(filepath.Join(c.dataDir, p.Readme))
	if err != nil {
		return ""
	}
	text := string(data)
	if len(text) > maxReadmeChars {
		text = text[:maxReadmeChars]
	}
	return text
}

// ExperiencesJSON renders the experience entries as indented JSON for prompt
// interpolation.
func (c *Catalog) ExperiencesJSON() string {
	return marshalIndent(c.Experiences)
}

// SkillsJSON renders the skill categories as indented JSON for prompt
// interpolation.
func (c *Catalog) SkillsJSON() string {
	return marshalIndent(c.Skills)
}

// ProjectsJSON renders the project entries as indented JSON for prompt
// interpolation.
func (c *Catalog) ProjectsJSON() string {
	return marshalIndent(c.Projects)
}

func marshalIndent(v any) string {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return ""
	}
	return string(data)
}

func loadFile(dataDir, name, schemaPath string, out any) error {
	path := filepath.Join(dataDir, name)
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read catalog file %s: %w", path, err)
	}

	if err := validate(data, schemaPath, name); err != nil {
		return err
	}

	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to parse catalog file %s: %w", path, err)
	}
	return nil
}

func validate(data []byte, schemaPath, name string) error {
	schemaBytes, err := schemaFiles.ReadFile(schemaPath)
	if err != nil {
		return fmt.Errorf("failed to read embedded schema %s: %w", schemaPath, err)
	}

	result, err := gojsonschema.Validate(
		gojsonschema.NewBytesLoader(schemaBytes),
		gojsonschema.NewBytesLoader(data),
	)
	if err != nil {
		return fmt.Errorf("schema validation of %s failed to run: %w", name, err)
	}

	if !result.Valid() {
		issues := make([]string, 0, len(result.Errors()))
		for _, desc := range result.Errors() {
			issues = append(issues, fmt.Sprintf("%s: %s", desc.Field(), desc.Description()))
		}
		return &ValidationError{File: name, Issues: issues}
	}
	return nil
}
