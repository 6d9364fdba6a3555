package errors

import (
	"path/filepath"
	"strings"
	"unicode"
)

const (
	maxPathLength = 4096
	maxNameLength = 255
)

// ValidateInputPath checks a user-supplied input path before it touches
// the filesystem.
//
// Validation rules:
//   - Path cannot be empty
//   - Maximum length of 4096 bytes
//   - No null bytes or control characters
func ValidateInputPath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidPath, "input path cannot be empty")
	}
	if len(path) > maxPathLength {
		return New(ErrCodeInvalidPath, "path too long (max %d bytes)", maxPathLength)
	}
	for _, r := range path {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "path contains invalid characters")
		}
	}
	return nil
}

// ValidateOutputName checks that name is a plain file name that can be
// placed inside an output directory.
func ValidateOutputName(name string) error {
	if name == "" {
		return New(ErrCodeInvalidPath, "output name cannot be empty")
	}
	if len(name) > maxNameLength {
		return New(ErrCodeInvalidPath, "output name too long (max %d bytes)", maxNameLength)
	}
	if strings.ContainsAny(name, "/\\") {
		return New(ErrCodeInvalidPath, "output name cannot contain path separators")
	}
	if name == "." || name == ".." {
		return New(ErrCodeInvalidPath, "output name cannot be %q", name)
	}
	for _, r := range name {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "output name contains invalid characters")
		}
	}
	return nil
}

// SanitizeName turns a file name into a safe directory component: the
// extension is dropped and anything outside [A-Za-z0-9._-] becomes '_'.
func SanitizeName(name string) string {
	base := filepath.Base(name)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	var b strings.Builder
	for _, r := range base {
		switch {
		case r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)), r == '-', r == '_', r == '.':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	out := strings.Trim(b.String(), ".")
	if out == "" {
		return "_"
	}
	if len(out) > maxNameLength {
		out = out[:maxNameLength]
	}
	return out
}
