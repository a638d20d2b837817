package session

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

var (
	illegalChars  = regexp.MustCompile(`[\x00-\x1f\x80-\x9f/?<>\\:*|"]`)
	reservedNames = regexp.MustCompile(`^(con|prn|aux|nul|com[0-9]|lpt[0-9])(\..*)?$`)
	trailingJunk  = regexp.MustCompile(`[. ]+$`)
)

// SanitizeFilename turns an arbitrary string into a name safe to use as a
// file on common filesystems. Illegal and control characters are replaced,
// Windows-reserved device names are prefixed, trailing dots and spaces are
// stripped, and the result is capped at 255 bytes.
func SanitizeFilename(name string) string {
	name = illegalChars.ReplaceAllString(name, "_")
	name = trailingJunk.ReplaceAllString(name, "")
	if reservedNames.MatchString(strings.ToLower(name)) {
		name = "_" + name
	}
	if name == "" || name == "." || name == ".." {
		name = "_"
	}
	if len(name) > 255 {
		// Cut on a rune boundary so the result stays valid UTF-8.
		cut := 255
		for cut > 0 && !utf8.RuneStart(name[cut]) {
			cut--
		}
		name = name[:cut]
	}
	return name
}
