package env

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeEnvFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadDotEnv(t *testing.T) {
	path := writeEnvFile(t, `# comment
API_KEY=secret123
export HOST=api.local
QUOTED="value with spaces"
SINGLE='x=y'
TRAILING=plain # note
EMPTY=
`)

	vars, err := LoadDotEnv(path)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{
		"API_KEY":  "secret123",
		"HOST":     "api.local",
		"QUOTED":   "value with spaces",
		"SINGLE":   "x=y",
		"TRAILING": "plain",
		"EMPTY":    "",
	}, vars)
}

func TestLoadDotEnv_Errors(t *testing.T) {
	_, err := LoadDotEnv(filepath.Join(t.TempDir(), "missing"))
	assert.Error(t, err)

	_, err = LoadDotEnv(writeEnvFile(t, "NOT_AN_ASSIGNMENT\n"))
	assert.ErrorContains(t, err, ":1:")

	_, err = LoadDotEnv(writeEnvFile(t, "=value\n"))
	assert.ErrorContains(t, err, "empty key")
}

func TestResolver_Variables(t *testing.T) {
	r := NewResolver()
	r.SetVariables(map[string]string{"host": "api.local", "token": "abc"})

	assert.Equal(t, "http://api.local/users", r.Resolve("http://{{host}}/users"))
	assert.Equal(t, "Bearer abc", r.Resolve("Bearer {{ token }}"))
	assert.Equal(t, "no placeholders", r.Resolve("no placeholders"))
}

func TestResolver_Unresolved(t *testing.T) {
	r := NewResolver()
	var warnings []string
	r.SetWarnFunc(func(format string, args ...any) {
		warnings = append(warnings, format)
	})

	assert.Equal(t, "{{missing}}", r.Resolve("{{missing}}"))
	assert.Equal(t, "{{$ASYNCHTTP_SURELY_UNSET}}", r.Resolve("{{$ASYNCHTTP_SURELY_UNSET}}"))
	assert.Len(t, warnings, 2)
}

func TestResolver_OSEnvironment(t *testing.T) {
	t.Setenv("ASYNCHTTP_TEST_TOKEN", "from-env")
	r := NewResolver()
	assert.Equal(t, "from-env", r.Resolve("{{$ASYNCHTTP_TEST_TOKEN}}"))
}

func TestResolver_Generated(t *testing.T) {
	r := NewResolver()
	r.now = func() time.Time { return time.Unix(1700000000, 0) }

	assert.Equal(t, "1700000000", r.Resolve("{{timestamp}}"))

	a, b := r.Resolve("{{uuid}}"), r.Resolve("{{uuid()}}")
	assert.Len(t, a, 36)
	assert.NotEqual(t, a, b)
}

func TestParseAssignment(t *testing.T) {
	name, value, ok := ParseAssignment("user=alice=admin")
	assert.True(t, ok)
	assert.Equal(t, "user", name)
	assert.Equal(t, "alice=admin", value)

	_, _, ok = ParseAssignment("novalue")
	assert.False(t, ok)
	_, _, ok = ParseAssignment("=x")
	assert.False(t, ok)
}
