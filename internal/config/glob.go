package config

import "strings"

// matchGlob reports whether name matches a shell-style pattern
// extended with "**" (matches zero or more path segments, the way
// Python's pathlib.match and gitignore-style excludes treat it).
// path/filepath.Match has no "**" support, and no doublestar-style
// dependency appears anywhere in the reference corpus, so this is a
// small hand-rolled matcher rather than a stdlib workaround for
// something a library would otherwise own — see DESIGN.md.
func matchGlob(pattern, name string) bool {
	return matchSegments(strings.Split(pattern, "/"), strings.Split(name, "/"))
}

func matchSegments(pattern, name []string) bool {
	if len(pattern) == 0 {
		return len(name) == 0
	}
	if pattern[0] == "**" {
		if matchSegments(pattern[1:], name) {
			return true
		}
		if len(name) == 0 {
			return false
		}
		return matchSegments(pattern, name[1:])
	}
	if len(name) == 0 {
		return false
	}
	if !matchSegment(pattern[0], name[0]) {
		return false
	}
	return matchSegments(pattern[1:], name[1:])
}

// matchSegment matches one path component against a glob segment
// supporting "*" and "?".
func matchSegment(pattern, name string) bool {
	return matchRunes([]rune(pattern), []rune(name))
}

func matchRunes(pattern, name []rune) bool {
	if len(pattern) == 0 {
		return len(name) == 0
	}
	switch pattern[0] {
	case '*':
		if matchRunes(pattern[1:], name) {
			return true
		}
		if len(name) == 0 {
			return false
		}
		return matchRunes(pattern, name[1:])
	case '?':
		if len(name) == 0 {
			return false
		}
		return matchRunes(pattern[1:], name[1:])
	default:
		if len(name) == 0 || pattern[0] != name[0] {
			return false
		}
		return matchRunes(pattern[1:], name[1:])
	}
}
