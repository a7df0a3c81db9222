package conventions

import "path/filepath"

const (
	// DefaultDataDir is the default ttdproj data directory name (relative to home).
	DefaultDataDir = ".ttdproj"
	// DBFile is the SQLite database filename inside the data directory.
	DBFile = "ttdproj.db"
	// EnvarPrefix is the prefix of the environment variables that set flags.
	EnvarPrefix = "TTDPROJ"
)

// DataDir returns the data directory for a home directory.
func DataDir(home string) string {
	return filepath.Join(home, DefaultDataDir)
}

// DBPath returns the default database path for a home directory.
func DBPath(home string) string {
	return filepath.Join(DataDir(home), DBFile)
}
