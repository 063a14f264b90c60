package errors

import (
	"regexp"
	"strings"
	"unicode"
)

// maxNameLength bounds cell, pin and net identifiers.
const maxNameLength = 256

// ValidateName validates a design identifier (cell, pin or net name).
//
// The validation rules are intentionally conservative:
//   - No empty names
//   - No whitespace (the symmetric-net file is whitespace separated)
//   - No control characters
//   - Maximum length of 256 characters
//
// kind is used in the error message only ("pin", "net", "cell").
func ValidateName(kind, name string) error {
	if name == "" {
		return New(ErrCodeInvalidInput, "%s name cannot be empty", kind)
	}

	if len(name) > maxNameLength {
		return New(ErrCodeInvalidInput, "%s name too long (max %d characters)", kind, maxNameLength)
	}

	for _, r := range name {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "%s name %q contains control characters", kind, name)
		}
		if unicode.IsSpace(r) {
			return New(ErrCodeInvalidInput, "%s name %q contains whitespace", kind, name)
		}
	}

	return nil
}

// ValidatePath validates a file path supplied through the HTTP service or a
// configuration file.
//
// Validation rules:
//   - Path cannot be empty
//   - Maximum length of 500 characters
//   - No null bytes or control characters
//   - No path traversal sequences (..)
func ValidatePath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidPath, "path cannot be empty")
	}

	const maxPathLength = 500
	if len(path) > maxPathLength {
		return New(ErrCodeInvalidPath, "path too long (max %d characters)", maxPathLength)
	}

	for _, r := range path {
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "path contains invalid characters")
		}
	}

	for _, part := range strings.Split(path, "/") {
		if part == ".." {
			return New(ErrCodeInvalidPath, "path cannot contain path traversal sequences (..)")
		}
	}

	return nil
}

// objectiveNameRegex matches objective policy names (kebab-case).
var objectiveNameRegex = regexp.MustCompile(`^[a-z][a-z0-9]*(-[a-z0-9]+)*$`)

// ValidatePolicyName validates the spelling of a pluggable policy name
// (objective or backend). It does not check that the policy is registered.
func ValidatePolicyName(kind, name string) error {
	if !objectiveNameRegex.MatchString(name) {
		return New(ErrCodeInvalidConfig, "invalid %s name: %q", kind, name)
	}
	return nil
}
