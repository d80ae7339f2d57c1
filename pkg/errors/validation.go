package errors

import (
	"strings"
	"unicode"
)

const (
	maxRevisionIDLength = 256
	maxRefLength        = 256
	maxRepoPathLength   = 4096
)

// ValidateRevisionID validates a revision identifier received from outside
// the process, such as in an API request body.
//
// Identifiers are opaque to layout, so only safety rules apply:
//   - No empty identifiers
//   - No whitespace or control characters
//   - Maximum length of 256 characters
func ValidateRevisionID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidRevision, "revision id cannot be empty")
	}
	if len(id) > maxRevisionIDLength {
		return New(ErrCodeInvalidRevision, "revision id too long (max %d characters)", maxRevisionIDLength)
	}
	for _, r := range id {
		if unicode.IsControl(r) || unicode.IsSpace(r) {
			return New(ErrCodeInvalidRevision, "revision id %q contains whitespace or control characters", id)
		}
	}
	return nil
}

// ValidateRef validates a ref or revision expression before it is handed
// to git.
//
// Expressions such as "main", "origin/main", "v1.2" and "HEAD~3" are
// accepted. Rejected:
//   - Leading '-', which git would parse as an option
//   - Whitespace and control characters
//   - Range and path syntax ("..", ":")
//   - Reflog syntax ("@{")
func ValidateRef(ref string) error {
	if ref == "" {
		return New(ErrCodeInvalidRef, "ref cannot be empty")
	}
	if len(ref) > maxRefLength {
		return New(ErrCodeInvalidRef, "ref too long (max %d characters)", maxRefLength)
	}
	if strings.HasPrefix(ref, "-") {
		return New(ErrCodeInvalidRef, "ref cannot start with '-'")
	}
	for _, r := range ref {
		if unicode.IsControl(r) || unicode.IsSpace(r) {
			return New(ErrCodeInvalidRef, "ref contains whitespace or control characters")
		}
	}
	for _, pattern := range []string{"..", ":", "@{", "\\"} {
		if strings.Contains(ref, pattern) {
			return New(ErrCodeInvalidRef, "ref contains invalid sequence %q", pattern)
		}
	}
	return nil
}

// ValidateRepoPath validates a repository path given on the command line
// or in configuration. Both absolute and relative paths are allowed.
func ValidateRepoPath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidPath, "repository path cannot be empty")
	}
	if len(path) > maxRepoPathLength {
		return New(ErrCodeInvalidPath, "repository path too long (max %d characters)", maxRepoPathLength)
	}
	for _, r := range path {
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "repository path contains invalid characters")
		}
	}
	return nil
}
