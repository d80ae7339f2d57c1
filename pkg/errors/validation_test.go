package errors

import (
	"strings"
	"testing"
)

func TestValidateRevisionID(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"full hash", strings.Repeat("a", 40), false},
		{"short name", "R1", false},
		{"with slash", "feature/x", false},

		{"empty", "", true},
		{"too long", strings.Repeat("a", 300), true},
		{"space", "a b", true},
		{"tab", "a\tb", true},
		{"null byte", "a\x00b", true},
		{"newline", "a\n", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateRevisionID(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateRevisionID(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err != nil && !Is(err, ErrCodeInvalidRevision) {
				t.Errorf("ValidateRevisionID(%q) code = %s", tt.input, GetCode(err))
			}
		})
	}
}

func TestValidateRef(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"HEAD", "HEAD", false},
		{"branch", "main", false},
		{"remote branch", "origin/main", false},
		{"tag", "v1.2.3", false},
		{"ancestor", "HEAD~3", false},
		{"parent", "main^2", false},

		{"empty", "", true},
		{"option injection", "--output=/tmp/x", true},
		{"range", "main..topic", true},
		{"path syntax", "HEAD:README.md", true},
		{"reflog", "main@{1}", true},
		{"space", "my branch", true},
		{"control", "main\x01", true},
		{"backslash", "a\\b", true},
		{"too long", strings.Repeat("r", 300), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateRef(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateRef(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestValidateRepoPath(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"relative", ".", false},
		{"absolute", "/home/me/src/project", false},
		{"parent", "../other", false},

		{"empty", "", true},
		{"null byte", "repo\x00", true},
		{"control", "repo\x07", true},
		{"too long", strings.Repeat("p", 5000), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateRepoPath(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateRepoPath(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestErrorCodesAreUnique(t *testing.T) {
	codes := []Code{
		ErrCodeInvalidInput,
		ErrCodeInvalidRevision,
		ErrCodeInvalidRef,
		ErrCodeInvalidFormat,
		ErrCodeInvalidPath,
		ErrCodeInvalidConfig,
		ErrCodeInvalidHistory,
		ErrCodeDuplicateRevision,
		ErrCodeOutOfOrder,
		ErrCodeLaneInvariant,
		ErrCodeNotFound,
		ErrCodeRepositoryNotFound,
		ErrCodeRefNotFound,
		ErrCodeFileNotFound,
		ErrCodeGit,
		ErrCodeCacheUnavailable,
		ErrCodeTimeout,
		ErrCodeInternal,
		ErrCodeUnsupported,
	}

	seen := make(map[Code]bool)
	for _, code := range codes {
		if seen[code] {
			t.Errorf("Duplicate error code: %s", code)
		}
		seen[code] = true
	}
}
