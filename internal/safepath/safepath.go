// Package safepath validates filenames and path containment for session
// directories. It is the gate in front of every file read: a name must pass
// IsSafeName and the resolved path must pass IsWithinDirectory before any I/O.
package safepath

import (
	"path/filepath"
	"strings"
)

// forbiddenSubstrings are rejected anywhere in a filename.
var forbiddenSubstrings = []string{"..", "/", "\\", ":", "*", "?", "\"", "<", ">", "|"}

// reservedNames are Windows device names, matched case-insensitively against
// the filename with its extension stripped.
var reservedNames = map[string]bool{
	"CON": true, "PRN": true, "AUX": true, "NUL": true,
	"COM1": true, "COM2": true, "COM3": true, "COM4": true, "COM5": true,
	"COM6": true, "COM7": true, "COM8": true, "COM9": true,
	"LPT1": true, "LPT2": true, "LPT3": true, "LPT4": true, "LPT5": true,
	"LPT6": true, "LPT7": true, "LPT8": true, "LPT9": true,
}

// IsSafeName reports whether name is acceptable as a bare filename inside a
// session directory. It rejects path separators and traversal sequences,
// Windows reserved device names, empty names, names starting with a dot, and
// leading or trailing whitespace.
func IsSafeName(name string) bool {
	if name == "" {
		return false
	}

	for _, s := range forbiddenSubstrings {
		if strings.Contains(name, s) {
			return false
		}
	}

	base := strings.TrimSuffix(name, filepath.Ext(name))
	if reservedNames[strings.ToUpper(base)] {
		return false
	}

	if strings.HasPrefix(name, ".") || strings.HasPrefix(name, " ") || strings.HasSuffix(name, " ") {
		return false
	}

	return true
}

// IsWithinDirectory reports whether path resolves to a location inside
// baseDir. Both are resolved to absolute cleaned paths and compared on a path
// boundary, so a sibling like /a/bfoo is not considered within /a/b.
func IsWithinDirectory(path, baseDir string) bool {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return false
	}
	absBase, err := filepath.Abs(baseDir)
	if err != nil {
		return false
	}

	if absPath == absBase {
		return true
	}

	return strings.HasPrefix(absPath, absBase+string(filepath.Separator))
}
