package manifest //nolint:testpackage // tests unexported parser internals

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPoetryLockParser_Parse(t *testing.T) {
	t.Parallel()

	t.Run("should parse package blocks", func(t *testing.T) {
		t.Parallel()

		// given
		content := []byte(`[[package]]
name = "click"
version = "8.1.7"
description = "Composable command line interface toolkit"

[package.dependencies]
colorama = {version = "*", markers = "platform_system == \"Windows\""}

[[package]]
name = "flask"
version = "3.0.0"

[metadata]
lock-version = "2.0"
`)
		p := NewPoetryLockParser()

		// when
		out := p.Parse("poetry.lock", content)

		// then
		require.Len(t, out.Dependencies, 2)
		assert.Equal(t, "click", out.Dependencies[0].Name)
		assert.Equal(t, "8.1.7", out.Dependencies[0].Version)
		assert.Equal(t, "flask", out.Dependencies[1].Name)
		assert.Equal(t, "3.0.0", out.Dependencies[1].Version)
	})

	t.Run("should skip blocks missing name or version", func(t *testing.T) {
		t.Parallel()

		// given
		content := []byte(`[[package]]
name = "orphaned"

[[package]]
name = "kept"
version = "1.2.3"
`)
		p := NewPoetryLockParser()

		// when
		out := p.Parse("poetry.lock", content)

		// then
		require.Len(t, out.Dependencies, 1)
		assert.Equal(t, "kept", out.Dependencies[0].Name)
		assert.Equal(t, 1, out.Skipped)
	})
}

func TestPyprojectParser_Parse(t *testing.T) {
	t.Parallel()

	t.Run("should parse pinned entries of the PEP 621 array", func(t *testing.T) {
		t.Parallel()

		// given
		content := []byte(`[project]
name = "demo"
dependencies = [
    "requests==2.31.0",
    "httpx>=0.24",
    "pyyaml === 6.0.1",
]
`)
		p := NewPyprojectParser()

		// when
		out := p.Parse("pyproject.toml", content)

		// then
		require.Len(t, out.Dependencies, 2)
		assert.Equal(t, "requests", out.Dependencies[0].Name)
		assert.Equal(t, "2.31.0", out.Dependencies[0].Version)
		assert.Equal(t, "pyyaml", out.Dependencies[1].Name)
		assert.Equal(t, 1, out.Skipped)
	})

	t.Run("should accept numeric poetry constraints only", func(t *testing.T) {
		t.Parallel()

		// given
		content := []byte(`[tool.poetry.dependencies]
python = "3.11"
flask = "2.3.3"
celery = "^5.3"
internal = { git = "https://github.com/org/internal.git" }
`)
		p := NewPyprojectParser()

		// when
		out := p.Parse("pyproject.toml", content)

		// then
		require.Len(t, out.Dependencies, 1)
		assert.Equal(t, "flask", out.Dependencies[0].Name)
		assert.Equal(t, "2.3.3", out.Dependencies[0].Version)
		assert.Equal(t, 2, out.Skipped)
	})

	t.Run("should ignore other tables entirely", func(t *testing.T) {
		t.Parallel()

		// given
		content := []byte(`[tool.poetry.group.dev.dependencies]
pytest = "7.4.2"

[build-system]
requires = ["poetry-core"]
`)
		p := NewPyprojectParser()

		// when
		out := p.Parse("pyproject.toml", content)

		// then
		assert.Empty(t, out.Dependencies)
	})
}
