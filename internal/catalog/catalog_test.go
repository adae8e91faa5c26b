package catalog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeDataDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()

	files := map[string]string{
		ExperiencesFile: `[
			{"organization": "Acme Corp", "title": "Software Engineer", "location": "Winnipeg, MB",
			 "start_date": "01/2022", "end_date": "Present",
			 "achievements": ["Built a Go service handling 10k rps"]}
		]`,
		SkillsFile: `[
			{"category": "Languages", "skills": [{"name": "Go", "score": 8}, {"name": "Python", "score": 7}]}
		]`,
		ProjectsFile: `[
			{"title": "Aria", "description": "Resume generation agent", "stack": ["Go", "PostgreSQL"],
			 "readme": "projects/aria.md", "github": "https://github.com/x/aria"},
			{"title": "Lattice", "description": "TUI dashboard", "stack": ["Go"]}
		]`,
	}
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0644))
	}

	require.NoError(t, os.MkdirAll(filepath.Join(dir, "projects"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "projects", "aria.md"), []byte("# Aria\nA pipeline."), 0644))

	return dir
}

func TestLoad_ValidData(t *testing.T) {
	dir := writeDataDir(t)

	c, err := Load(dir)
	require.NoError(t, err)

	assert.Len(t, c.Experiences, 1)
	assert.Len(t, c.Skills, 1)
	assert.Len(t, c.Projects, 2)
	assert.Equal(t, "Acme Corp", c.Experiences[0].Organization)
}

func TestLoad_SchemaViolation(t *testing.T) {
	dir := writeDataDir(t)
	// Project missing required title.
	bad := `[{"description": "no title", "stack": []}]`
	require.NoError(t, os.WriteFile(filepath.Join(dir, ProjectsFile), []byte(bad), 0644))

	_, err := Load(dir)
	require.Error(t, err)
	var verr *ValidationError
	assert.ErrorAs(t, err, &verr)
	assert.Equal(t, ProjectsFile, verr.File)
}

func TestLoad_MissingFile(t *testing.T) {
	dir := writeDataDir(t)
	require.NoError(t, os.Remove(filepath.Join(dir, SkillsFile)))

	_, err := Load(dir)
	assert.Error(t, err)
}

func TestLookupProject(t *testing.T) {
	dir := writeDataDir(t)
	c, err := Load(dir)
	require.NoError(t, err)

	p, ok := c.LookupProject("Aria")
	assert.True(t, ok)
	assert.Equal(t, "Aria", p.Title)

	// Near-miss titles resolve to the catalog entry.
	p, ok = c.LookupProject("the aria project")
	assert.True(t, ok)
	assert.Equal(t, "Aria", p.Title)

	_, ok = c.LookupProject("Nonexistent")
	assert.False(t, ok)
}

func TestProjectReadme(t *testing.T) {
	dir := writeDataDir(t)
	c, err := Load(dir)
	require.NoError(t, err)

	p, _ := c.LookupProject("Aria")
	assert.Contains(t, c.ProjectReadme(p), "A pipeline.")

	// Missing readme is empty, not an error.
	p, _ = c.LookupProject("Lattice")
	assert.Empty(t, c.ProjectReadme(p))
}

func TestJSONRenderings(t *testing.T) {
	dir := writeDataDir(t)
	c, err := Load(dir)
	require.NoError(t, err)

	assert.Contains(t, c.ExperiencesJSON(), "Acme Corp")
	assert.Contains(t, c.SkillsJSON(), `"score": 8`)
	assert.Contains(t, c.ProjectsJSON(), "Lattice")
}
