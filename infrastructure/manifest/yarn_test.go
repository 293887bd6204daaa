package manifest //nolint:testpackage // tests unexported parser internals

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestYarnLockParser_Parse(t *testing.T) {
	t.Parallel()

	t.Run("should parse plain and scoped blocks", func(t *testing.T) {
		t.Parallel()

		// given
		content := []byte(`# THIS IS AN AUTOGENERATED FILE.
# yarn lockfile v1

lodash@^4.17.0:
  version "4.17.21"
  resolved "https://registry.yarnpkg.com/lodash/-/lodash-4.17.21.tgz"

"@babel/core@^7.0.0", "@babel/core@^7.1.2":
  version "7.23.5"
  dependencies:
    semver "^6.3.1"
`)
		p := NewYarnLockParser()

		// when
		out := p.Parse("yarn.lock", content)

		// then
		require.Len(t, out.Dependencies, 2)
		assert.Equal(t, "lodash", out.Dependencies[0].Name)
		assert.Equal(t, "4.17.21", out.Dependencies[0].Version)
		assert.Equal(t, "@babel/core", out.Dependencies[1].Name)
		assert.Equal(t, "7.23.5", out.Dependencies[1].Version)
	})

	t.Run("should not treat nested dependencies lines as blocks", func(t *testing.T) {
		t.Parallel()

		// given
		content := []byte(`ms@2.1.3:
  version "2.1.3"
  dependencies:
    debug "^4.0.0"
`)
		p := NewYarnLockParser()

		// when
		out := p.Parse("yarn.lock", content)

		// then
		require.Len(t, out.Dependencies, 1)
		assert.Equal(t, "ms", out.Dependencies[0].Name)
	})

	t.Run("should return nothing for garbage input", func(t *testing.T) {
		t.Parallel()

		// given
		p := NewYarnLockParser()

		// when
		out := p.Parse("yarn.lock", []byte("完全 unrelated text\nwithout blocks"))

		// then
		assert.Empty(t, out.Dependencies)
	})
}

func TestYarnBlockName(t *testing.T) {
	t.Parallel()

	t.Run("should take the first selector and cut at last @", func(t *testing.T) {
		t.Parallel()

		// given
		header := `"@types/node@^18.0.0", "@types/node@*":`

		// when
		name := yarnBlockName(header)

		// then
		assert.Equal(t, "@types/node", name)
	})

	t.Run("should reject selector without version separator", func(t *testing.T) {
		t.Parallel()

		// given
		header := `"@lonescope":`

		// when
		name := yarnBlockName(header)

		// then
		assert.Empty(t, name)
	})
}
