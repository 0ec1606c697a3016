//nolint:goconst // test cases intentionally repeat strings for readability
package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/llehouerou/deskbell/internal/notify"
)

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skipf("Could not get home dir: %v", err)
	}

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "tilde expands to home",
			input:    "~/icons/bell.png",
			expected: filepath.Join(home, "icons", "bell.png"),
		},
		{
			name:     "absolute path unchanged",
			input:    "/usr/share/icons/bell.png",
			expected: "/usr/share/icons/bell.png",
		},
		{
			name:     "icon name unchanged",
			input:    "dialog-information",
			expected: "dialog-information",
		},
		{
			name:     "empty string unchanged",
			input:    "",
			expected: "",
		},
		{
			name:     "tilde only",
			input:    "~",
			expected: home,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := expandPath(tt.input)
			if result != tt.expected {
				t.Errorf("expandPath(%q) = %q, want %q", tt.input, result, tt.expected)
			}
		})
	}
}

// clearEnv hides DESKBELL_* variables set on the machine running the tests.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, kv := range os.Environ() {
		if k, _, ok := strings.Cut(kv, "="); ok && strings.HasPrefix(k, envPrefix) {
			t.Setenv(k, "")
			os.Unsetenv(k)
		}
	}
}

func writeConfig(t *testing.T, dir, name, content string) string {
	t.Helper()
	clearEnv(t)
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadNoFiles(t *testing.T) {
	clearEnv(t)
	cfg, err := load([]string{filepath.Join(t.TempDir(), "missing.toml")})
	require.NoError(t, err)

	assert.Equal(t, "deskbell", cfg.AppName)
	assert.Equal(t, notify.Options{Urgency: notify.UrgencyUnset}, cfg.DefaultOptions())
}

func TestLoadLaterFileWins(t *testing.T) {
	dir := t.TempDir()
	user := writeConfig(t, dir, "user.toml", `
app_name = "builds"

[defaults]
body = "from user"
urgency = "low"
delay = 3000

[defaults.hints]
category = "transfer"
`)
	local := writeConfig(t, dir, "local.toml", `
[defaults]
body = "from local"
`)

	cfg, err := load([]string{user, local})
	require.NoError(t, err)

	assert.Equal(t, "builds", cfg.AppName)
	opts := cfg.DefaultOptions()
	assert.Equal(t, "from local", opts.Body)
	assert.Equal(t, notify.UrgencyLow, opts.Urgency)
	assert.Equal(t, 3*time.Second, opts.Delay)
	assert.Equal(t, "transfer", opts.Hints["category"])
}

func TestLoadEnvOverrides(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, "config.toml", `
[defaults]
delay = 1000
`)
	t.Setenv("DESKBELL_DEFAULTS__DELAY", "2500")
	t.Setenv("DESKBELL_DEFAULTS__URGENCY", "critical")

	cfg, err := load([]string{path})
	require.NoError(t, err)

	assert.Equal(t, 2500*time.Millisecond, cfg.DefaultOptions().Delay)
	assert.Equal(t, notify.UrgencyCritical, cfg.DefaultOptions().Urgency)
}

func TestLoadInvalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"bad urgency", "[defaults]\nurgency = \"loud\"\n"},
		{"negative delay", "[defaults]\ndelay = -5\n"},
		{"timeout below -1", "[defaults]\ntimeout = -2\n"},
		{"malformed toml", "[defaults\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeConfig(t, t.TempDir(), "config.toml", tt.content)
			_, err := load([]string{path})
			assert.Error(t, err)
		})
	}
}

func TestLoadExpandsIcon(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skipf("Could not get home dir: %v", err)
	}
	path := writeConfig(t, t.TempDir(), "config.toml", "[defaults]\nicon = \"~/bell.png\"\n")

	cfg, err := load([]string{path})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "bell.png"), cfg.Defaults.Icon)
}

func TestTransformEnv(t *testing.T) {
	assert.Equal(t, "defaults.delay", transformEnv("DESKBELL_DEFAULTS__DELAY"))
	assert.Equal(t, "app_name", transformEnv("DESKBELL_APP_NAME"))
}

func TestGetConfigPaths(t *testing.T) {
	paths := getConfigPaths()
	require.Len(t, paths, 2)
	assert.Equal(t, "config.toml", filepath.Base(paths[0]))
	assert.Equal(t, "deskbell.toml", paths[1])
}
