package validation

import (
	"os"
	"path/filepath"
)

// PathHandler provides secure path operations with validation
type PathHandler struct {
	validator *FilePathValidator
}

// NewSecurePathHandler creates a path handler with secure validation
func NewSecurePathHandler() *PathHandler {
	return &PathHandler{
		validator: NewFilePathValidator(),
	}
}

// NewPermissivePathHandler creates a path handler for user-supplied locations
func NewPermissivePathHandler() *PathHandler {
	return &PathHandler{
		validator: NewPermissiveFilePathValidator(),
	}
}

// GetSecureDBPath returns a validated database path
func (ph *PathHandler) GetSecureDBPath(userPath string) (string, error) {
	if userPath == "" {
		// Default secure location
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		userPath = filepath.Join(homeDir, ".hkrnws", "hkrnws.db")
	}

	return ph.validator.ValidateFile(userPath)
}

// GetSecureConfigPath returns a validated configuration path
func (ph *PathHandler) GetSecureConfigPath(userPath string) (string, error) {
	if userPath == "" {
		// Default secure location
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		userPath = filepath.Join(homeDir, ".config", "hkrnws", "config.toml")
	}

	return ph.validator.ValidateFile(userPath)
}

// GetSecureLogPath returns a validated log file path
func (ph *PathHandler) GetSecureLogPath(userPath string) (string, error) {
	if userPath == "" {
		// Default secure location
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		userPath = filepath.Join(homeDir, ".hkrnws", "hkrnws.log")
	}

	return ph.validator.ValidateFile(userPath)
}

// EnsureSecureDirectory creates a directory safely after validation
func (ph *PathHandler) EnsureSecureDirectory(path string) (string, error) {
	return ph.validator.ValidateDirectory(path, true)
}
