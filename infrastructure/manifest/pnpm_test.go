package manifest //nolint:testpackage // tests unexported parser internals

import (
	"fmt"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPnpmLockParser_Parse(t *testing.T) {
	t.Parallel()

	t.Run("should parse packages section keys", func(t *testing.T) {
		t.Parallel()

		// given
		content := []byte(`lockfileVersion: '6.0'

packages:

  /lodash@4.17.21:
    resolution: {integrity: sha512-abc}

  /@vue/shared@3.3.4:
    resolution: {integrity: sha512-def}
`)
		p := NewPnpmLockParser()

		// when
		out := p.Parse("pnpm-lock.yaml", content)

		// then
		require.Len(t, out.Dependencies, 2)
		byName := map[string]string{}
		for _, d := range out.Dependencies {
			byName[d.Name] = d.Version
		}
		assert.Equal(t, "4.17.21", byName["lodash"])
		assert.Equal(t, "3.3.4", byName["@vue/shared"])
	})

	t.Run("should strip peer dependency suffix", func(t *testing.T) {
		t.Parallel()

		// given
		content := []byte(`packages:
  /vue-router@4.2.5(vue@3.3.4):
    resolution: {integrity: sha512-ghi}
`)
		p := NewPnpmLockParser()

		// when
		out := p.Parse("pnpm-lock.yaml", content)

		// then
		require.Len(t, out.Dependencies, 1)
		assert.Equal(t, "vue-router", out.Dependencies[0].Name)
		assert.Equal(t, "4.2.5", out.Dependencies[0].Version)
	})

	t.Run("should yield a stable order across repeated parses", func(t *testing.T) {
		t.Parallel()

		// given
		content := "packages:\n"
		for i := 0; i < 25; i++ {
			content += fmt.Sprintf("  /pkg%02d@1.0.0:\n    resolution: {integrity: sha512-x}\n", i)
		}
		p := NewPnpmLockParser()

		// when
		first := p.Parse("pnpm-lock.yaml", []byte(content))

		// then
		require.Len(t, first.Dependencies, 25)
		assert.True(t, sort.SliceIsSorted(first.Dependencies, func(i, j int) bool {
			return first.Dependencies[i].Name < first.Dependencies[j].Name
		}))
		for run := 0; run < 5; run++ {
			assert.Equal(t, first.Dependencies, p.Parse("pnpm-lock.yaml", []byte(content)).Dependencies)
		}
	})

	t.Run("should fail open on invalid YAML", func(t *testing.T) {
		t.Parallel()

		// given
		p := NewPnpmLockParser()

		// when
		out := p.Parse("pnpm-lock.yaml", []byte("\tpackages:\n  broken"))

		// then
		assert.Empty(t, out.Dependencies)
		assert.Contains(t, out.Note, "not valid YAML")
	})
}

func TestSplitPnpmKey(t *testing.T) {
	t.Parallel()

	t.Run("should reject keys without version", func(t *testing.T) {
		t.Parallel()

		// given
		key := "/loneName"

		// when
		_, _, ok := splitPnpmKey(key)

		// then
		assert.False(t, ok)
	})

	t.Run("should keep scope marker out of the split", func(t *testing.T) {
		t.Parallel()

		// given
		key := "/@scope/pkg@1.0.0(peer@2.0.0)"

		// when
		name, version, ok := splitPnpmKey(key)

		// then
		require.True(t, ok)
		assert.Equal(t, "@scope/pkg", name)
		assert.Equal(t, "1.0.0", version)
	})
}
