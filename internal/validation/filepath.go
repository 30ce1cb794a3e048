package validation

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// FilePathValidator provides secure file path validation and sanitization
type FilePathValidator struct {
	// AllowedBaseDirs restricts file operations to specific base directories
	AllowedBaseDirs []string
	// AllowHomeExpansion determines if tilde expansion is permitted
	AllowHomeExpansion bool
	// AllowRelativePaths determines if relative paths are permitted
	AllowRelativePaths bool
	// MaxPathLength is the maximum allowed path length
	MaxPathLength int
}

// NewFilePathValidator creates a new validator with secure defaults
func NewFilePathValidator() *FilePathValidator {
	homeDir, _ := os.UserHomeDir()
	return &FilePathValidator{
		AllowedBaseDirs: []string{
			filepath.Join(homeDir, ".hkrnws"),
			filepath.Join(homeDir, ".config", "hkrnws"),
			os.TempDir(),
		},
		AllowHomeExpansion: true,
		AllowRelativePaths: false,
		MaxPathLength:      4096,
	}
}

// NewPermissiveFilePathValidator creates a validator for user-supplied
// locations. Paths still go through character and traversal checks, but
// may live anywhere on the filesystem.
func NewPermissiveFilePathValidator() *FilePathValidator {
	return &FilePathValidator{
		AllowedBaseDirs:    []string{}, // Empty means allow all directories
		AllowHomeExpansion: true,
		AllowRelativePaths: true,
		MaxPathLength:      4096,
	}
}

// ValidateAndSanitize validates and normalizes a file path
func (v *FilePathValidator) ValidateAndSanitize(path string) (string, error) {
	if path == "" {
		return "", fmt.Errorf("path cannot be empty")
	}

	if len(path) > v.MaxPathLength {
		return "", fmt.Errorf("path too long (max %d characters)", v.MaxPathLength)
	}

	if err := v.validateCharacters(path); err != nil {
		return "", err
	}

	normalizedPath, err := v.normalizePath(path)
	if err != nil {
		return "", fmt.Errorf("path normalization failed: %w", err)
	}

	if err := v.validateTraversal(normalizedPath); err != nil {
		return "", err
	}

	if err := v.validateBaseDirs(normalizedPath); err != nil {
		return "", err
	}

	return normalizedPath, nil
}

// validateCharacters checks for dangerous characters in the path
func (v *FilePathValidator) validateCharacters(path string) error {
	// Null bytes are a classic traversal technique
	if strings.Contains(path, "\x00") {
		return fmt.Errorf("path contains null bytes")
	}

	for _, char := range path {
		if char < 32 && char != '\t' {
			return fmt.Errorf("path contains control characters")
		}
	}

	// Traversal sequences are never allowed, UNC paths neither
	dangerous := []string{"../", "..\\", "\\\\"}
	for _, seq := range dangerous {
		if strings.Contains(path, seq) {
			return fmt.Errorf("path contains dangerous sequence: %s", seq)
		}
	}

	return nil
}

// normalizePath expands the home directory and makes the path absolute
// when relative paths are not permitted
func (v *FilePathValidator) normalizePath(path string) (string, error) {
	if v.AllowHomeExpansion && len(path) >= 2 && path[:2] == "~/" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("cannot determine home directory: %w", err)
		}
		path = filepath.Join(homeDir, path[2:])
	} else if strings.HasPrefix(path, "~") {
		return "", fmt.Errorf("tilde expansion not allowed or invalid tilde usage")
	}

	if !v.AllowRelativePaths && !filepath.IsAbs(path) {
		absPath, err := filepath.Abs(path)
		if err != nil {
			return "", fmt.Errorf("cannot make path absolute: %w", err)
		}
		path = absPath
	}

	return filepath.Clean(path), nil
}

// validateTraversal ensures no component of the cleaned path escapes upward
func (v *FilePathValidator) validateTraversal(path string) error {
	components := strings.Split(filepath.ToSlash(path), "/")
	for _, component := range components {
		if component == ".." {
			return fmt.Errorf("directory traversal not allowed")
		}
	}
	return nil
}

// validateBaseDirs ensures the path is within allowed base directories
func (v *FilePathValidator) validateBaseDirs(path string) error {
	// If no allowed base directories are specified, allow all paths
	if len(v.AllowedBaseDirs) == 0 {
		return nil
	}

	absPath := path
	if !filepath.IsAbs(path) {
		var err error
		absPath, err = filepath.Abs(path)
		if err != nil {
			return fmt.Errorf("cannot resolve absolute path: %w", err)
		}
	}

	for _, baseDir := range v.AllowedBaseDirs {
		absBaseDir, err := filepath.Abs(baseDir)
		if err != nil {
			continue // Skip invalid base directories
		}

		relPath, err := filepath.Rel(absBaseDir, absPath)
		if err != nil {
			continue
		}

		// If relative path doesn't start with "..", it's within this base
		if !strings.HasPrefix(relPath, "..") {
			return nil
		}
	}

	return fmt.Errorf("path not within allowed directories: %v", v.AllowedBaseDirs)
}

// ValidateDirectory ensures a directory path is safe and creates it if necessary
func (v *FilePathValidator) ValidateDirectory(path string, createIfNotExist bool) (string, error) {
	validatedPath, err := v.ValidateAndSanitize(path)
	if err != nil {
		return "", err
	}

	info, err := os.Stat(validatedPath)
	if err != nil {
		if os.IsNotExist(err) {
			if createIfNotExist {
				if mkErr := os.MkdirAll(validatedPath, 0o755); mkErr != nil {
					return "", fmt.Errorf("failed to create directory: %w", mkErr)
				}
			}
			// A missing directory is fine when we're not creating it;
			// callers may only need the validated name
			return validatedPath, nil
		}
		return "", fmt.Errorf("checking directory: %w", err)
	}

	if !info.IsDir() {
		return "", fmt.Errorf("path exists but is not a directory: %s", validatedPath)
	}

	return validatedPath, nil
}

// ValidateFile ensures a file path is safe for read/write operations
func (v *FilePathValidator) ValidateFile(path string) (string, error) {
	validatedPath, err := v.ValidateAndSanitize(path)
	if err != nil {
		return "", err
	}

	// The parent directory must be within allowed paths too
	parentDir := filepath.Dir(validatedPath)
	if err := v.validateBaseDirs(parentDir); err != nil {
		return "", fmt.Errorf("parent directory not allowed: %w", err)
	}

	if info, err := os.Stat(validatedPath); err == nil {
		if info.IsDir() {
			return "", fmt.Errorf("path is a directory, not a file: %s", validatedPath)
		}
	}

	return validatedPath, nil
}
