package format

import (
	"net/netip"
	"net/url"
	"regexp"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/yosida95/uritemplate/v3"
	"golang.org/x/net/idna"
	"golang.org/x/text/unicode/norm"

	"github.com/erraggy/jsonschema/internal/jsonptr"
)

var (
	emailRegex    = regexp.MustCompile(`^[a-zA-Z0-9._%+\-!#$&'*/=?^{|}~]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
	labelRegex    = regexp.MustCompile(`^[A-Za-z0-9](?:[A-Za-z0-9-]{0,61}[A-Za-z0-9])?$`)
	uuidRegex     = regexp.MustCompile(`^[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}$`)
	durationRegex = regexp.MustCompile(`^P(?:(?:\d+D|\d+M(?:\d+D)?|\d+Y(?:\d+M(?:\d+D)?)?)(?:T(?:\d+H(?:\d+M(?:\d+S)?)?|\d+M(?:\d+S)?|\d+S))?|T(?:\d+H(?:\d+M(?:\d+S)?)?|\d+M(?:\d+S)?|\d+S)|\d+W)$`)
)

// IsDateTime checks RFC 3339 date-time, accepting a leap second.
func IsDateTime(s string) bool {
	i := strings.IndexAny(s, "Tt")
	if i < 0 {
		return false
	}
	return IsDate(s[:i]) && IsTime(s[i+1:])
}

// IsDate checks RFC 3339 full-date.
func IsDate(s string) bool {
	_, err := time.Parse(time.DateOnly, s)
	return err == nil
}

// IsTime checks RFC 3339 full-time. A leap second is accepted only at
// 23:59:60 UTC.
func IsTime(s string) bool {
	s = strings.ToUpper(s)
	if len(s) < 9 {
		return false
	}
	leap := s[6:8] == "60"
	if leap {
		s = s[:6] + "59" + s[8:]
	}
	t, err := time.Parse("15:04:05Z07:00", s)
	if err != nil {
		return false
	}
	if leap {
		u := t.UTC()
		return u.Hour() == 23 && u.Minute() == 59
	}
	return true
}

// IsDuration checks an ISO 8601 duration.
func IsDuration(s string) bool {
	return durationRegex.MatchString(s)
}

// IsEmail checks an RFC 5321 mailbox with an ASCII domain.
func IsEmail(s string) bool {
	return emailRegex.MatchString(s)
}

// IsIDNEmail checks a mailbox whose local part and domain may be internationalized.
func IsIDNEmail(s string) bool {
	at := strings.LastIndexByte(s, '@')
	if at <= 0 || at == len(s)-1 {
		return false
	}
	local := norm.NFC.String(s[:at])
	if strings.ContainsFunc(local, func(r rune) bool { return unicode.IsSpace(r) || unicode.IsControl(r) || r == '@' }) {
		return false
	}
	return IsIDNHostname(s[at+1:])
}

// IsHostname checks an RFC 1123 host name.
func IsHostname(s string) bool {
	s = strings.TrimSuffix(s, ".")
	if s == "" || len(s) > 253 {
		return false
	}
	for label := range strings.SplitSeq(s, ".") {
		if !labelRegex.MatchString(label) {
			return false
		}
	}
	return true
}

// IsIDNHostname checks an internationalized host name via IDNA 2008.
func IsIDNHostname(s string) bool {
	ascii, err := idna.Registration.ToASCII(s)
	if err != nil {
		return false
	}
	return IsHostname(ascii)
}

// IsIPv4 checks a dotted-quad address without leading zeros.
func IsIPv4(s string) bool {
	addr, err := netip.ParseAddr(s)
	return err == nil && addr.Is4()
}

// IsIPv6 checks an RFC 4291 address without a zone.
func IsIPv6(s string) bool {
	if strings.Contains(s, "%") {
		return false
	}
	addr, err := netip.ParseAddr(s)
	return err == nil && addr.Is6()
}

// IsURI checks an absolute RFC 3986 URI.
func IsURI(s string) bool {
	return isASCII(s) && IsIRI(s)
}

// IsURIReference checks an RFC 3986 URI or relative reference.
func IsURIReference(s string) bool {
	return isASCII(s) && IsIRIReference(s)
}

// IsIRI checks an absolute RFC 3987 IRI.
func IsIRI(s string) bool {
	u, ok := parseReference(s)
	return ok && u.IsAbs()
}

// IsIRIReference checks an RFC 3987 IRI or relative reference.
func IsIRIReference(s string) bool {
	_, ok := parseReference(s)
	return ok
}

func parseReference(s string) (*url.URL, bool) {
	if strings.ContainsAny(s, " \\<>\"{}|^`") {
		return nil, false
	}
	u, err := url.Parse(s)
	if err != nil {
		return nil, false
	}
	return u, true
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= utf8.RuneSelf {
			return false
		}
	}
	return true
}

// IsURITemplate checks an RFC 6570 URI template.
func IsURITemplate(s string) bool {
	_, err := uritemplate.New(s)
	return err == nil
}

// IsUUID checks an RFC 4122 UUID.
func IsUUID(s string) bool {
	return uuidRegex.MatchString(s)
}

// IsRegex checks that s compiles as a regular expression.
func IsRegex(s string) bool {
	_, err := regexp.Compile(s)
	return err == nil
}

// IsJSONPointer checks an RFC 6901 JSON pointer.
func IsJSONPointer(s string) bool {
	_, err := jsonptr.Parse(s)
	return err == nil
}

// IsRelativeJSONPointer checks a relative JSON pointer: a non-negative
// integer followed by "#" or a JSON pointer.
func IsRelativeJSONPointer(s string) bool {
	i := 0
	for i < len(s) && s[i] >= '0' && s[i] <= '9' {
		i++
	}
	if i == 0 || (i > 1 && s[0] == '0') {
		return false
	}
	rest := s[i:]
	return rest == "#" || IsJSONPointer(rest)
}
