package errors

import (
	"strings"
	"unicode"
)

// maxGroupNameLength bounds group names, which usually become bundle or file
// names downstream.
const maxGroupNameLength = 200

// ValidateGroupName checks that a computed or configured group name can be
// used as an output identifier.
//
// The rules are intentionally conservative:
//   - No empty names
//   - No control characters
//   - No path separators (/ or \)
//   - No path traversal sequences (..)
//   - Maximum length of 200 characters
func ValidateGroupName(name string) error {
	if strings.TrimSpace(name) == "" {
		return New(ErrCodeInvalidInput, "group name cannot be empty")
	}

	if len(name) > maxGroupNameLength {
		return New(ErrCodeInvalidInput, "group name too long (max %d characters)", maxGroupNameLength)
	}

	for _, r := range name {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "group name contains invalid control characters")
		}
	}

	if strings.ContainsAny(name, "/\\") {
		return New(ErrCodeInvalidInput, "group name cannot contain path separators: %q", name)
	}

	if strings.Contains(name, "..") {
		return New(ErrCodeInvalidInput, "group name cannot contain path traversal sequences: %q", name)
	}

	return nil
}

// ValidateTemplateName checks a packaging template identifier supplied by
// an output rule. Templates are opaque to the engine but must be present.
func ValidateTemplateName(name string) error {
	if strings.TrimSpace(name) == "" {
		return New(ErrCodeMissingTemplate, "template name cannot be empty")
	}
	for _, r := range name {
		if unicode.IsControl(r) {
			return New(ErrCodeConfig, "template name contains invalid control characters")
		}
	}
	return nil
}

// ValidatePath validates a file path received over an untrusted surface.
// It prevents path traversal and rejects absolute paths.
func ValidatePath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidInput, "path cannot be empty")
	}

	const maxPathLength = 500
	if len(path) > maxPathLength {
		return New(ErrCodeInvalidInput, "path too long (max %d characters)", maxPathLength)
	}

	for _, r := range path {
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "path contains invalid characters")
		}
	}

	if strings.HasPrefix(path, "/") {
		return New(ErrCodeInvalidInput, "path must be relative (cannot start with /)")
	}

	if strings.Contains(path, "..") {
		return New(ErrCodeInvalidInput, "path cannot contain path traversal sequences (..)")
	}

	return nil
}
