// ABOUTME: Standard filesystem paths for termport configuration
// ABOUTME: Resolves ~/.termport/ for global and .termport/ for project-local files

package config

import (
	"os"
	"path/filepath"
)

const (
	globalDirName  = ".termport"
	projectDirName = ".termport"
)

// configNames lists accepted file names in lookup order.
var configNames = []string{"config.json", "config.yaml", "config.yml"}

// GlobalDir returns the user-global config directory (~/.termport/).
func GlobalDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", globalDirName)
	}
	return filepath.Join(home, globalDirName)
}

// ProjectDir returns the project-local config directory (.termport/ in root).
func ProjectDir(projectRoot string) string {
	return filepath.Join(projectRoot, projectDirName)
}

// GlobalConfigFiles returns candidate global config files in lookup order.
func GlobalConfigFiles() []string {
	return candidates(GlobalDir())
}

// ProjectConfigFiles returns candidate project config files in lookup order.
func ProjectConfigFiles(projectRoot string) []string {
	return candidates(ProjectDir(projectRoot))
}

// WatchPaths returns every file whose change can alter Load's result.
func WatchPaths(projectRoot string) []string {
	return append(GlobalConfigFiles(), ProjectConfigFiles(projectRoot)...)
}

// DefaultLogFile returns the log path used when logging to a file is
// requested without an explicit path.
func DefaultLogFile() string {
	return filepath.Join(GlobalDir(), "termport.log")
}

// EnsureDir creates a directory and all parents if they don't exist.
func EnsureDir(path string) error {
	return os.MkdirAll(path, 0o700)
}

func candidates(dir string) []string {
	paths := make([]string, len(configNames))
	for i, name := range configNames {
		paths[i] = filepath.Join(dir, name)
	}
	return paths
}
