package registry

import (
	"strings"
	"unicode/utf8"
)

// Spec selects tests by name. '*' matches any run of
// characters, '/' included, and '?' matches exactly one
// character. A spec without wildcards must equal the name; an
// empty spec matches every name.
type Spec string

// HasWildcard reports whether the spec contains '*' or '?'.
func (s Spec) HasWildcard() bool {
	return strings.ContainsAny(string(s), "*?")
}

// Matches reports whether name is selected by the spec.
func (s Spec) Matches(name string) bool {
	if s == "" {
		return true
	}
	if !s.HasWildcard() {
		return string(s) == name
	}
	return glob(string(s), name)
}

// glob matches name against pattern with single-star
// backtracking, so it runs in O(len(pattern)*len(name)).
func glob(pattern, name string) bool {
	p, n := 0, 0
	starP, starN := -1, 0

	for n < len(name) {
		if p < len(pattern) {
			switch pattern[p] {
			case '*':
				starP, starN = p, n
				p++
				continue
			case '?':
				_, size := utf8.DecodeRuneInString(name[n:])
				p++
				n += size
				continue
			default:
				pr, psize := utf8.DecodeRuneInString(pattern[p:])
				nr, nsize := utf8.DecodeRuneInString(name[n:])
				if pr == nr {
					p += psize
					n += nsize
					continue
				}
			}
		}
		if starP < 0 {
			return false
		}
		// Let the last star absorb one more character.
		_, size := utf8.DecodeRuneInString(name[starN:])
		starN += size
		p, n = starP+1, starN
	}

	for p < len(pattern) && pattern[p] == '*' {
		p++
	}
	return p == len(pattern)
}
