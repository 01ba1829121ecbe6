package storage

// Config is fixed at construction and never mutated afterwards
type Config struct {
	// CreateDirs creates the parent directories of the file and writes the
	// default document when the file does not exist yet.
	CreateDirs bool
	// BackupOnSave rotates backup slots before every save.
	BackupOnSave bool
	// MaxBackups bounds the number of backup slots kept.
	MaxBackups int
	// Extension names the data format ("json", "yaml", "toml"). Empty means
	// infer it from the file path.
	Extension string
}

// DefaultConfig returns the configuration used when none is supplied
func DefaultConfig() Config {
	return Config{
		CreateDirs:   true,
		BackupOnSave: true,
		MaxBackups:   5,
		Extension:    "json",
	}
}
