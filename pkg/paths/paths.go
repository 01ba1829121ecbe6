package paths

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
	"github.com/arthur-debert/myquest/pkg/errors"
	"github.com/arthur-debert/myquest/pkg/types"
)

// Environment variable names
const (
	// EnvDataDir overrides the data root
	EnvDataDir = "MYQUEST_DATA_DIR"

	// EnvConfigDir overrides the XDG config directory for myquest
	EnvConfigDir = "MYQUEST_CONFIG_DIR"

	// EnvStateDir overrides the XDG state directory for myquest
	EnvStateDir = "MYQUEST_STATE_DIR"

	// EnvHome is the standard home directory variable
	EnvHome = "HOME"
)

// Default directories and files
const (
	// AppDirName is the directory name used under every root
	AppDirName = "myquest"

	// HabitsDirName holds the habits document
	HabitsDirName = "habits"

	// HabitsBaseName is the habits document name without extension
	HabitsBaseName = "habits"

	// TodosBaseName is the todos document name without extension
	TodosBaseName = "todos"

	// TimelinesDirName holds one document per timeline
	TimelinesDirName = "timelines"

	// ConfigFileName is the user configuration file
	ConfigFileName = "config.toml"

	// LogFileName is the name of the log file
	LogFileName = "myquest.log"
)

// Paths provides centralized path management for myquest
type Paths interface {
	types.Pather
	ConfigFile() string
	LogFilePath() string
	HabitsDir() string
	HabitsFile(ext string) string
	TodosFile(ext string) string
	TimelinesDir() string
	TimelineFile(name, ext string) (string, error)
	TimelineName(path string) string
}

type paths struct {
	dataDir   string
	configDir string
	stateDir  string
}

// New creates a Paths instance. An empty dataDir is resolved from the
// environment, then from the user's Documents directory.
func New(dataDir string) (Paths, error) {
	p := &paths{}

	if dataDir == "" {
		dataDir = defaultDataDir()
	}
	abs, err := filepath.Abs(expandHome(dataDir))
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrInit, "failed to get absolute path for data directory")
	}
	p.dataDir = abs

	if dir := os.Getenv(EnvConfigDir); dir != "" {
		p.configDir = expandHome(dir)
	} else {
		p.configDir = filepath.Join(xdg.ConfigHome, AppDirName)
	}

	if dir := os.Getenv(EnvStateDir); dir != "" {
		p.stateDir = expandHome(dir)
	} else {
		p.stateDir = filepath.Join(xdg.StateHome, AppDirName)
	}

	return p, nil
}

func defaultDataDir() string {
	if dir := os.Getenv(EnvDataDir); dir != "" {
		return dir
	}
	if docs := xdg.UserDirs.Documents; docs != "" {
		return filepath.Join(docs, AppDirName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		home = os.Getenv(EnvHome)
	}
	return filepath.Join(home, AppDirName)
}

func (p *paths) DataDir() string {
	return p.dataDir
}

func (p *paths) ConfigDir() string {
	return p.configDir
}

func (p *paths) StateDir() string {
	return p.stateDir
}

func (p *paths) ConfigFile() string {
	return filepath.Join(p.configDir, ConfigFileName)
}

func (p *paths) LogFilePath() string {
	return filepath.Join(p.stateDir, LogFileName)
}

func (p *paths) HabitsDir() string {
	return filepath.Join(p.dataDir, HabitsDirName)
}

func (p *paths) HabitsFile(ext string) string {
	return filepath.Join(p.HabitsDir(), withExt(HabitsBaseName, ext))
}

func (p *paths) TodosFile(ext string) string {
	return filepath.Join(p.dataDir, withExt(TodosBaseName, ext))
}

func (p *paths) TimelinesDir() string {
	return filepath.Join(p.dataDir, TimelinesDirName)
}

// TimelineFile returns the document path for a named timeline
func (p *paths) TimelineFile(name, ext string) (string, error) {
	if err := ValidateName(name); err != nil {
		return "", err
	}
	return filepath.Join(p.TimelinesDir(), withExt(name, ext)), nil
}

// TimelineName is the inverse of TimelineFile
func (p *paths) TimelineName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// ValidateName rejects names that would escape their directory or hide
// the file.
func ValidateName(name string) error {
	switch {
	case strings.TrimSpace(name) == "":
		return errors.New(errors.ErrInvalidInput, "name must not be empty")
	case strings.ContainsAny(name, `/\`):
		return errors.New(errors.ErrInvalidInput, "name must not contain path separators").
			WithDetail("name", name)
	case strings.HasPrefix(name, "."):
		return errors.New(errors.ErrInvalidInput, "name must not start with a dot").
			WithDetail("name", name)
	}
	return nil
}

func withExt(base, ext string) string {
	ext = strings.TrimPrefix(ext, ".")
	if ext == "" {
		return base
	}
	return base + "." + ext
}

// ExpandHome expands ~ to the user's home directory
func ExpandHome(path string) string {
	return expandHome(path)
}

func expandHome(path string) string {
	if path == "" || path[0] != '~' {
		return path
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		homeDir = os.Getenv(EnvHome)
		if homeDir == "" {
			return path
		}
	}

	if len(path) == 1 {
		return homeDir
	}
	if path[1] == '/' || path[1] == filepath.Separator {
		return filepath.Join(homeDir, path[2:])
	}
	// ~user is not expanded
	return path
}
