package registry

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	return p
}

func TestLoadSpecsFromFile_Text(t *testing.T) {
	p := writeFile(t, "specs.txt", `
# arithmetic
math/*

str/concat
`)

	specs, err := LoadSpecsFromFile(p)
	require.NoError(t, err)
	assert.Equal(t, []string{"math/*", "str/concat"}, specs)
}

func TestLoadSpecsFromFile_JSON(t *testing.T) {
	list := writeFile(t, "specs.json", `["a/*", "b"]`)
	specs, err := LoadSpecsFromFile(list)
	require.NoError(t, err)
	assert.Equal(t, []string{"a/*", "b"}, specs)

	obj := writeFile(t, "obj.json", `{"tests": ["c"]}`)
	specs, err = LoadSpecsFromFile(obj)
	require.NoError(t, err)
	assert.Equal(t, []string{"c"}, specs)
}

func TestLoadSpecsFromFile_YAML(t *testing.T) {
	list := writeFile(t, "specs.yaml", "- a/*\n- b\n")
	specs, err := LoadSpecsFromFile(list)
	require.NoError(t, err)
	assert.Equal(t, []string{"a/*", "b"}, specs)

	obj := writeFile(t, "specs.yml", "tests:\n  - c\n")
	specs, err = LoadSpecsFromFile(obj)
	require.NoError(t, err)
	assert.Equal(t, []string{"c"}, specs)

	empty := writeFile(t, "empty.yaml", "")
	specs, err = LoadSpecsFromFile(empty)
	require.NoError(t, err)
	assert.Empty(t, specs)
}

func TestLoadSpecsFromFile_NotFound(t *testing.T) {
	_, err := LoadSpecsFromFile("/nonexistent/specs.txt")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read spec file")
}

func TestLoadSpecsFromFile_Invalid(t *testing.T) {
	p := writeFile(t, "bad.json", `{"tests": [1,`)
	_, err := LoadSpecsFromFile(p)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse spec file")
}
