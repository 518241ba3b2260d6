package fsutil

import "regexp"

// IgnorePattern pairs a compiled regular expression with the source string
// it was compiled from, so dependencies.json can serialise the source
// verbatim for the watcher to recompile (spec §9 "Ignore list" design
// note). Keeping the pairing explicit, rather than deriving one from the
// other at write time, is the point of this type.
type IgnorePattern struct {
	Source   string
	Compiled *regexp.Regexp
}

// IgnoreList is the ordered set of patterns applied to basenames during
// copies and scans (spec §6 "Ignore patterns").
type IgnoreList []IgnorePattern

// MatchesBasename reports whether any pattern in the list matches name.
func (l IgnoreList) MatchesBasename(name string) bool {
	for _, p := range l {
		if p.Compiled.MatchString(name) {
			return true
		}
	}
	return false
}

// Sources returns the ordered list of original pattern source strings, the
// shape dependencies.json's "exclude" field requires.
func (l IgnoreList) Sources() []string {
	out := make([]string, len(l))
	for i, p := range l {
		out[i] = p.Source
	}
	return out
}

// mustPattern compiles source into an IgnorePattern, panicking on failure —
// acceptable here because DefaultIgnoreList's patterns are all
// compile-time-constant literals, never user input.
func mustPattern(source string) IgnorePattern {
	return IgnorePattern{Source: source, Compiled: regexp.MustCompile(source)}
}

// DefaultIgnoreList is the fixed ignore-pattern list spec §6 names: trailing
// "~"; leading ".#"; "#...#"; .DS_Store; ehthumbs.db; "Icon\r"; Thumbs.db;
// .meteor; .git.
func DefaultIgnoreList() IgnoreList {
	return IgnoreList{
		mustPattern(`~$`),
		mustPattern(`^\.#`),
		mustPattern(`^#.*#$`),
		mustPattern(`^\.DS_Store$`),
		mustPattern(`^ehthumbs\.db$`),
		mustPattern("^Icon\r$"),
		mustPattern(`^Thumbs\.db$`),
		mustPattern(`^\.meteor$`),
		mustPattern(`^\.git$`),
	}
}
