package prompts

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGet_KnownKeys(t *testing.T) {
	for _, key := range []string{
		"experiences", "skills", "project_selection",
		"project_summary", "highlights", "cover_letter", "cover_letter_only",
	} {
		prompt, err := Get(key)
		require.NoError(t, err, "key %s", key)
		assert.NotEmpty(t, prompt)
	}
}

func TestGet_UnknownKey(t *testing.T) {
	_, err := Get("does_not_exist")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "does_not_exist")
}

func TestRender(t *testing.T) {
	prompt, err := Render("skills", map[string]string{
		"Job":    "posting text",
		"Skills": "skills json",
	})
	require.NoError(t, err)

	assert.Contains(t, prompt, "posting text")
	assert.Contains(t, prompt, "skills json")
	assert.NotContains(t, prompt, "{{.Job}}")
	assert.NotContains(t, prompt, "{{.Skills}}")
}

func TestRender_MissingValueLeftVisible(t *testing.T) {
	prompt, err := Render("skills", map[string]string{"Job": "posting text"})
	require.NoError(t, err)

	assert.Contains(t, prompt, "{{.Skills}}")
}

func TestKeys(t *testing.T) {
	keys, err := Keys()
	require.NoError(t, err)
	assert.Contains(t, keys, "cover_letter")
	assert.Len(t, keys, 7)
}
