package paths

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/arthur-debert/myquest/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name     string
		dataDir  string
		envSetup map[string]string
		validate func(t *testing.T, p Paths)
	}{
		{
			name:    "explicit data dir",
			dataDir: "/tmp/quest",
			validate: func(t *testing.T, p Paths) {
				assert.Equal(t, "/tmp/quest", p.DataDir())
			},
		},
		{
			name: "from MYQUEST_DATA_DIR env",
			envSetup: map[string]string{
				EnvDataDir: "/env/quest",
			},
			validate: func(t *testing.T, p Paths) {
				assert.Equal(t, "/env/quest", p.DataDir())
			},
		},
		{
			name: "documents fallback",
			validate: func(t *testing.T, p Paths) {
				assert.True(t, filepath.IsAbs(p.DataDir()), "Path should be absolute")
				assert.Equal(t, AppDirName, filepath.Base(p.DataDir()))
			},
		},
		{
			name:    "expand tilde in explicit path",
			dataDir: "~/quest",
			validate: func(t *testing.T, p Paths) {
				homeDir, _ := os.UserHomeDir()
				assert.Equal(t, filepath.Join(homeDir, "quest"), p.DataDir())
			},
		},
		{
			name: "custom config and state directories",
			envSetup: map[string]string{
				EnvConfigDir: "/custom/config",
				EnvStateDir:  "/custom/state",
			},
			validate: func(t *testing.T, p Paths) {
				assert.Equal(t, "/custom/config", p.ConfigDir())
				assert.Equal(t, "/custom/config/config.toml", p.ConfigFile())
				assert.Equal(t, "/custom/state", p.StateDir())
				assert.Equal(t, "/custom/state/myquest.log", p.LogFilePath())
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(EnvDataDir, "")
			t.Setenv(EnvConfigDir, "")
			t.Setenv(EnvStateDir, "")

			for k, v := range tt.envSetup {
				t.Setenv(k, v)
			}

			p, err := New(tt.dataDir)
			require.NoError(t, err)
			require.NotNil(t, p)

			if tt.validate != nil {
				tt.validate(t, p)
			}
		})
	}
}

func TestDocumentPaths(t *testing.T) {
	p, err := New("/quest")
	require.NoError(t, err)

	assert.Equal(t, "/quest/habits", p.HabitsDir())
	assert.Equal(t, "/quest/habits/habits.json", p.HabitsFile("json"))
	assert.Equal(t, "/quest/habits/habits.yaml", p.HabitsFile(".yaml"))
	assert.Equal(t, "/quest/todos.json", p.TodosFile("json"))
	assert.Equal(t, "/quest/timelines", p.TimelinesDir())

	file, err := p.TimelineFile("default", "yaml")
	require.NoError(t, err)
	assert.Equal(t, "/quest/timelines/default.yaml", file)
	assert.Equal(t, "default", p.TimelineName(file))
}

func TestTimelineFileRejectsBadNames(t *testing.T) {
	p, err := New("/quest")
	require.NoError(t, err)

	for _, name := range []string{"", "  ", "../escape", `a\b`, ".hidden"} {
		t.Run(name, func(t *testing.T) {
			_, err := p.TimelineFile(name, "yaml")
			require.Error(t, err)
			assert.True(t, errors.IsErrorCode(err, errors.ErrInvalidInput))
		})
	}
}

func TestExpandHome(t *testing.T) {
	homeDir, err := os.UserHomeDir()
	require.NoError(t, err)

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"empty string", "", ""},
		{"just tilde", "~", homeDir},
		{"tilde with path", "~/quest", filepath.Join(homeDir, "quest")},
		{"tilde other user", "~other/path", "~other/path"},
		{"no tilde", "/absolute/path", "/absolute/path"},
		{"relative path", "relative/path", "relative/path"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ExpandHome(tt.input))
		})
	}
}
