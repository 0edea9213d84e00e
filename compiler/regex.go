package compiler

import (
	"fmt"
	"regexp"
	"strings"
)

// ECMA-262 whitespace, which is wider than RE2's ASCII \s.
const ecmaSpace = `\t\n\v\f\r \x{00A0}\x{1680}\x{2000}-\x{200A}\x{2028}\x{2029}\x{202F}\x{205F}\x{3000}\x{FEFF}`

// ecmaRegex is the default RegexFactory. Patterns are unanchored, as in
// ECMA-262, and translated to RE2 syntax where the two differ.
func ecmaRegex(pattern string) (func(string) bool, error) {
	translated, err := translateECMA(pattern)
	if err != nil {
		return nil, err
	}
	re, err := regexp.Compile(translated)
	if err != nil {
		return nil, err
	}
	return re.MatchString, nil
}

// translateECMA rewrites \s, \S and \uXXXX escapes.
func translateECMA(pattern string) (string, error) {
	var b strings.Builder
	b.Grow(len(pattern))
	inClass := false
	for i := 0; i < len(pattern); i++ {
		c := pattern[i]
		switch {
		case c == '\\' && i+1 < len(pattern):
			next := pattern[i+1]
			switch next {
			case 's':
				if inClass {
					b.WriteString(ecmaSpace)
				} else {
					b.WriteString("[" + ecmaSpace + "]")
				}
				i++
			case 'S':
				if inClass {
					// RE2 cannot nest a negated class inside a class.
					b.WriteString(`\S`)
				} else {
					b.WriteString("[^" + ecmaSpace + "]")
				}
				i++
			case 'u':
				if i+6 > len(pattern) || !isHex(pattern[i+2:i+6]) {
					return "", fmt.Errorf("invalid unicode escape in %q", pattern)
				}
				b.WriteString(`\x{` + pattern[i+2:i+6] + `}`)
				i += 5
			default:
				b.WriteByte(c)
				b.WriteByte(next)
				i++
			}
		case c == '[' && !inClass:
			inClass = true
			b.WriteByte(c)
		case c == ']' && inClass:
			inClass = false
			b.WriteByte(c)
		default:
			b.WriteByte(c)
		}
	}
	return b.String(), nil
}

func isHex(s string) bool {
	for i := 0; i < len(s); i++ {
		c := s[i]
		if !('0' <= c && c <= '9' || 'a' <= c && c <= 'f' || 'A' <= c && c <= 'F') {
			return false
		}
	}
	return true
}
