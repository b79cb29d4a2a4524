package note

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitFullDocument(t *testing.T) {
	text := "---\nstart_date: \"2024-01-15 14:00\"\ntags:\n  - meeting\n---\n\naccount:: [[Acme]]\n\n# Title\nbody\n"
	r := Split(text)

	require.True(t, r.HasFrontmatter)
	assert.Equal(t, []string{`start_date: "2024-01-15 14:00"`, "tags:", "  - meeting"}, r.Frontmatter)
	assert.Equal(t, []string{"", "account:: [[Acme]]", ""}, r.Structured)
	assert.Equal(t, []string{"# Title", "body", ""}, r.Content)
}

func TestSplitNoHeading(t *testing.T) {
	r := Split("---\na: b\n---\nkey:: value\n")
	require.True(t, r.HasFrontmatter)
	assert.Equal(t, []string{"key:: value", ""}, r.Structured)
	assert.Empty(t, r.Content)
}

func TestSplitNoFrontmatter(t *testing.T) {
	r := Split("preamble\n# Notes\nbody")
	assert.False(t, r.HasFrontmatter)
	assert.Empty(t, r.Frontmatter)
	assert.Empty(t, r.Structured)
	assert.Equal(t, []string{"# Notes", "body"}, r.Content)
}

func TestSplitNoFrontmatterNoHeading(t *testing.T) {
	r := Split("just\nsome text")
	assert.False(t, r.HasFrontmatter)
	assert.Equal(t, []string{"just", "some text"}, r.Content)
}

func TestSplitUnterminatedDelimiter(t *testing.T) {
	r := Split("---\na: b\nno closing line")
	assert.False(t, r.HasFrontmatter, "a lone delimiter does not open a frontmatter block")
}
