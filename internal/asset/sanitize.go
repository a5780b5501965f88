package asset

import (
	"path/filepath"
	"regexp"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

var unsafeFilenameChars = regexp.MustCompile(`[^A-Za-z0-9_.-]`)

// Windows reserves these names regardless of extension
var windowsDeviceNames = map[string]struct{}{
	"CON": {}, "PRN": {}, "AUX": {}, "NUL": {},
	"COM1": {}, "COM2": {}, "COM3": {}, "COM4": {}, "COM5": {}, "COM6": {}, "COM7": {}, "COM8": {}, "COM9": {},
	"LPT1": {}, "LPT2": {}, "LPT3": {}, "LPT4": {}, "LPT5": {}, "LPT6": {}, "LPT7": {}, "LPT8": {}, "LPT9": {},
}

// Sanitize returns a filename safe to join onto the asset directory.
//
// Non-ASCII characters are decomposed and dropped, path separators become
// word breaks, whitespace runs collapse to "_", anything outside
// [A-Za-z0-9_.-] is removed and leading/trailing dots and underscores are
// trimmed. The result may be empty
func Sanitize(filename string) string {
	decomposed := norm.NFKD.String(filename)

	var b strings.Builder
	b.Grow(len(decomposed))
	for _, r := range decomposed {
		if r < utf8.RuneSelf {
			b.WriteRune(r)
		}
	}
	name := b.String()

	name = strings.NewReplacer("/", " ", "\\", " ").Replace(name)
	name = strings.Join(strings.Fields(name), "_")
	name = unsafeFilenameChars.ReplaceAllString(name, "")
	name = strings.Trim(name, "._")

	if name != "" {
		stem, _, _ := strings.Cut(name, ".")
		if _, reserved := windowsDeviceNames[strings.ToUpper(stem)]; reserved {
			name = "_" + name
		}
	}

	return name
}

// Extension returns the lower-cased extension of filename without the dot,
// or "" when there is none
func Extension(filename string) string {
	ext := filepath.Ext(filename)
	if ext == "" || ext == "." {
		return ""
	}
	return strings.ToLower(ext[1:])
}

// IsSanitized reports whether ref is already in the form Sanitize produces
func IsSanitized(ref string) bool {
	return ref != "" && Sanitize(ref) == ref
}
