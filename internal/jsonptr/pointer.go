package jsonptr

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// Pointer is an encoded JSON Pointer.
type Pointer string

// Root addresses the whole document.
const Root Pointer = ""

var (
	escaper   = strings.NewReplacer("~", "~0", "/", "~1")
	unescaper = strings.NewReplacer("~1", "/", "~0", "~")
)

// Escape encodes a reference token.
func Escape(token string) string {
	if !strings.ContainsAny(token, "~/") {
		return token
	}
	return escaper.Replace(token)
}

// Unescape decodes a reference token.
func Unescape(token string) string {
	if !strings.Contains(token, "~") {
		return token
	}
	return unescaper.Replace(token)
}

// Parse validates s as an encoded pointer.
func Parse(s string) (Pointer, error) {
	if s == "" {
		return Root, nil
	}
	if s[0] != '/' {
		return "", fmt.Errorf("json pointer %q must start with '/'", s)
	}
	for i := 0; i < len(s); i++ {
		if s[i] != '~' {
			continue
		}
		if i+1 >= len(s) || (s[i+1] != '0' && s[i+1] != '1') {
			return "", fmt.Errorf("json pointer %q has an invalid escape at offset %d", s, i)
		}
	}
	return Pointer(s), nil
}

// ParseFragment parses a URI fragment (without '#') as a pointer,
// percent-decoding it first.
func ParseFragment(fragment string) (Pointer, error) {
	decoded, err := url.PathUnescape(fragment)
	if err != nil {
		return "", fmt.Errorf("json pointer fragment %q: %w", fragment, err)
	}
	return Parse(decoded)
}

// IsFragmentPointer reports whether a URI fragment uses pointer syntax
// rather than naming an anchor.
func IsFragmentPointer(fragment string) bool {
	return fragment == "" || fragment[0] == '/'
}

// FromTokens builds a pointer from unescaped tokens.
func FromTokens(tokens ...string) Pointer {
	p := Root
	for _, t := range tokens {
		p = p.Append(t)
	}
	return p
}

// String returns the encoded form.
func (p Pointer) String() string {
	return string(p)
}

// IsRoot reports whether p addresses the whole document.
func (p Pointer) IsRoot() bool {
	return p == Root
}

// Append adds one unescaped token.
func (p Pointer) Append(token string) Pointer {
	return p + "/" + Pointer(Escape(token))
}

// AppendIndex adds an array index token.
func (p Pointer) AppendIndex(i int) Pointer {
	return p + "/" + Pointer(strconv.Itoa(i))
}

// Concat appends all tokens of q to p.
func (p Pointer) Concat(q Pointer) Pointer {
	return p + q
}

// Tokens returns the unescaped reference tokens.
func (p Pointer) Tokens() []string {
	if p == Root {
		return nil
	}
	parts := strings.Split(string(p)[1:], "/")
	for i, part := range parts {
		parts[i] = Unescape(part)
	}
	return parts
}

// Parent returns p without its last token. ok is false for the root.
func (p Pointer) Parent() (parent Pointer, ok bool) {
	if p == Root {
		return Root, false
	}
	i := strings.LastIndexByte(string(p), '/')
	return p[:i], true
}

// Last returns the last unescaped token, or "" for the root.
func (p Pointer) Last() string {
	if p == Root {
		return ""
	}
	i := strings.LastIndexByte(string(p), '/')
	return Unescape(string(p[i+1:]))
}

// HasPrefix reports whether q is p or an ancestor of p, comparing whole tokens.
func (p Pointer) HasPrefix(q Pointer) bool {
	if !strings.HasPrefix(string(p), string(q)) {
		return false
	}
	return len(p) == len(q) || p[len(q)] == '/'
}

// TrimPrefix removes the ancestor q from p. p must have prefix q.
func (p Pointer) TrimPrefix(q Pointer) Pointer {
	if !p.HasPrefix(q) {
		return p
	}
	return p[len(q):]
}

// Resolve walks doc along p. Arrays accept only canonical decimal indexes.
func Resolve(doc any, p Pointer) (any, bool) {
	cur := doc
	for _, token := range p.Tokens() {
		switch node := cur.(type) {
		case map[string]any:
			v, ok := node[token]
			if !ok {
				return nil, false
			}
			cur = v
		case []any:
			i, ok := ParseIndex(token)
			if !ok || i >= len(node) {
				return nil, false
			}
			cur = node[i]
		default:
			return nil, false
		}
	}
	return cur, true
}

// ParseIndex parses an array index token, rejecting leading zeros and signs.
func ParseIndex(token string) (int, bool) {
	if token == "" || (len(token) > 1 && token[0] == '0') {
		return 0, false
	}
	for i := 0; i < len(token); i++ {
		if token[i] < '0' || token[i] > '9' {
			return 0, false
		}
	}
	i, err := strconv.Atoi(token)
	if err != nil {
		return 0, false
	}
	return i, true
}
